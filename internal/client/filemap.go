package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"gitdocsync/internal/pkg/logutil"
)

// TargetMap is one target's section of the filemap: local relative paths
// mapped to remote document ids, plus an optional module directory that is
// mirrored on push.
type TargetMap struct {
	DocumentProfiles map[string]string `json:"_document_profiles"`
	ModuleDirectory  string            `json:"_module_directory"`
}

type fileMapDoc struct {
	Targets map[string]TargetMap `json:"_targets"`
}

// FileMap is the persisted local-path-to-document-id mapping, loaded from
// the git toplevel.
type FileMap struct {
	Root    string
	Targets map[string]TargetMap
}

func LoadFileMap(root, filename string) (*FileMap, error) {
	path := filepath.Join(root, filename)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc fileMapDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse filemap %s: %w", path, err)
	}
	fm := &FileMap{Root: root, Targets: doc.Targets}
	if err := fm.validate(); err != nil {
		return nil, err
	}
	return fm, nil
}

// WriteTemplate creates a skeleton filemap for the user to fill in.
func WriteTemplate(root, filename string) error {
	template := fileMapDoc{
		Targets: map[string]TargetMap{
			"<target name>": {
				DocumentProfiles: map[string]string{
					"<filename>": "<document id>",
				},
				ModuleDirectory: "<module directory path>",
			},
		},
	}
	raw, err := json.MarshalIndent(template, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, filename), raw, 0o644)
}

func (m *FileMap) validate() error {
	if len(m.Targets) == 0 {
		return fmt.Errorf("filemap has no _targets")
	}
	for target, tm := range m.Targets {
		seen := make(map[string]string, len(tm.DocumentProfiles))
		for filename, docID := range tm.DocumentProfiles {
			if docID == "" {
				return fmt.Errorf("target %s: %s has an empty document id", target, filename)
			}
			if other, dup := seen[docID]; dup {
				return fmt.Errorf("target %s: document id %s mapped by both %s and %s", target, docID, other, filename)
			}
			seen[docID] = filename
			path := filepath.Join(m.Root, filename)
			if info, err := os.Stat(path); err != nil || info.IsDir() {
				return fmt.Errorf("target %s: mapped file %s does not exist on disk", target, filename)
			}
		}
		if tm.ModuleDirectory != "" {
			if info, err := os.Stat(tm.ModuleDirectory); err != nil || !info.IsDir() {
				return fmt.Errorf("target %s: module directory %s does not exist or is not a directory", target, tm.ModuleDirectory)
			}
			local := filepath.Join(m.Root, filepath.Base(tm.ModuleDirectory))
			if info, err := os.Stat(local); err != nil || !info.IsDir() {
				return fmt.Errorf("target %s: local module directory %s does not exist or is not a directory", target, local)
			}
		}
	}
	return nil
}

// HasAllTargets checks every requested target has a filemap section.
func (m *FileMap) HasAllTargets(names []string) error {
	var missing []string
	for _, name := range names {
		if _, ok := m.Targets[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("filemap is missing targets: %v", missing)
	}
	return nil
}

func (m *FileMap) Profiles(target string) map[string]string {
	return m.Targets[target].DocumentProfiles
}

func (m *FileMap) ModuleDirectory(target string) string {
	return m.Targets[target].ModuleDirectory
}

// DocIDs returns the mapped document ids for a target in stable order.
func (m *FileMap) DocIDs(target string) []string {
	profiles := m.Profiles(target)
	ids := make([]string, 0, len(profiles))
	for _, id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FilenamesByDocID reverses a target's profiles for remapping responses.
func (m *FileMap) FilenamesByDocID(target string) map[string]string {
	profiles := m.Profiles(target)
	reversed := make(map[string]string, len(profiles))
	for filename, docID := range profiles {
		reversed[docID] = filename
	}
	return reversed
}

// ReadMappedFiles loads the content of every mapped file for a target.
// Files missing on disk are logged and skipped.
func (m *FileMap) ReadMappedFiles(target string) ([]UploadFile, error) {
	profiles := m.Profiles(target)
	filenames := make([]string, 0, len(profiles))
	for filename := range profiles {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)

	files := make([]UploadFile, 0, len(filenames))
	for _, filename := range filenames {
		path := filepath.Join(m.Root, filename)
		content, err := os.ReadFile(path)
		if err != nil {
			logutil.L().Error("mapped file not readable, skipping", zap.String("file", path), zap.Error(err))
			continue
		}
		files = append(files, UploadFile{
			DocID:   profiles[filename],
			Name:    filename,
			Content: content,
		})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("target %s has no readable mapped files", target)
	}
	return files, nil
}
