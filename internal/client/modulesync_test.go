package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gitdocsync/internal/model"
)

func TestSyncModuleDirectory(t *testing.T) {
	localDir := t.TempDir()
	targetDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "module.md"), []byte("new"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(localDir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "sub", "nested.md"), []byte("deep"), 0o644))

	// Stale content in the target must not survive the sync.
	require.NoError(t, os.WriteFile(filepath.Join(targetDir, "stale.md"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(targetDir, "deadbeef.commit"), []byte("{}"), 0o644))

	data := model.ClientData{
		CurrentBranch:    "main",
		CurrentSHAHash:   "abc123",
		CurrentCommitMsg: "update module",
		VersionType:      "minor",
	}
	require.NoError(t, SyncModuleDirectory(targetDir, localDir, data))

	_, err := os.Stat(filepath.Join(targetDir, "stale.md"))
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(targetDir, "deadbeef.commit"))
	require.ErrorIs(t, err, os.ErrNotExist)

	content, err := os.ReadFile(filepath.Join(targetDir, "module.md"))
	require.NoError(t, err)
	require.Equal(t, "new", string(content))
	content, err = os.ReadFile(filepath.Join(targetDir, "sub", "nested.md"))
	require.NoError(t, err)
	require.Equal(t, "deep", string(content))

	raw, err := os.ReadFile(filepath.Join(targetDir, "abc123.commit"))
	require.NoError(t, err)
	var marker model.ClientData
	require.NoError(t, json.Unmarshal(raw, &marker))
	require.Equal(t, data, marker)
}

func TestSyncModuleDirectoryMissingTarget(t *testing.T) {
	err := SyncModuleDirectory(filepath.Join(t.TempDir(), "gone"), t.TempDir(), model.ClientData{})
	require.Error(t, err)
}
