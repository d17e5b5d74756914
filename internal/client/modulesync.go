package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"

	"gitdocsync/internal/model"
)

// SyncModuleDirectory mirrors the local module directory into the
// target's module directory (clear, then copy) and drops a
// `<sha>.commit` marker recording the pushed client data.
func SyncModuleDirectory(targetDir, localDir string, data model.ClientData) error {
	entries, err := os.ReadDir(targetDir)
	if err != nil {
		return fmt.Errorf("read module directory %s: %w", targetDir, err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(targetDir, entry.Name())); err != nil {
			return fmt.Errorf("clear module directory: %w", err)
		}
	}
	if err := cp.Copy(localDir, targetDir); err != nil {
		return fmt.Errorf("copy module files: %w", err)
	}
	marker, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return err
	}
	markerPath := filepath.Join(targetDir, data.CurrentSHAHash+".commit")
	return os.WriteFile(markerPath, marker, 0o644)
}
