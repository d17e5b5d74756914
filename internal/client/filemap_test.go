package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFileMapFixture(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitdocmap.json"), []byte(content), 0o644))
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func TestLoadFileMap(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "README.md"))
	touch(t, filepath.Join(root, "docs", "guide.md"))
	writeFileMapFixture(t, root, `{
        "_targets": {
            "prod": {
                "_document_profiles": {
                    "README.md": "DOC-1",
                    "docs/guide.md": "DOC-2"
                },
                "_module_directory": ""
            }
        }
    }`)

	fm, err := LoadFileMap(root, ".gitdocmap.json")
	require.NoError(t, err)
	require.Equal(t, root, fm.Root)
	require.Equal(t, []string{"DOC-1", "DOC-2"}, fm.DocIDs("prod"))
	require.Equal(t, map[string]string{
		"DOC-1": "README.md",
		"DOC-2": "docs/guide.md",
	}, fm.FilenamesByDocID("prod"))
	require.NoError(t, fm.HasAllTargets([]string{"prod"}))
	require.Error(t, fm.HasAllTargets([]string{"prod", "staging"}))
}

func TestLoadFileMapRejectsDuplicateDocIDs(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.md"))
	touch(t, filepath.Join(root, "b.md"))
	writeFileMapFixture(t, root, `{
        "_targets": {
            "prod": {
                "_document_profiles": {"a.md": "DOC-1", "b.md": "DOC-1"}
            }
        }
    }`)

	_, err := LoadFileMap(root, ".gitdocmap.json")
	require.ErrorContains(t, err, "DOC-1")
}

func TestLoadFileMapRejectsMissingFiles(t *testing.T) {
	root := t.TempDir()
	writeFileMapFixture(t, root, `{
        "_targets": {
            "prod": {
                "_document_profiles": {"gone.md": "DOC-1"}
            }
        }
    }`)

	_, err := LoadFileMap(root, ".gitdocmap.json")
	require.ErrorContains(t, err, "gone.md")
}

func TestLoadFileMapRejectsEmptyTargets(t *testing.T) {
	root := t.TempDir()
	writeFileMapFixture(t, root, `{"_targets": {}}`)
	_, err := LoadFileMap(root, ".gitdocmap.json")
	require.ErrorContains(t, err, "_targets")
}

func TestLoadFileMapMissingFileSurfacesNotExist(t *testing.T) {
	_, err := LoadFileMap(t.TempDir(), ".gitdocmap.json")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteTemplateRoundTrips(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, WriteTemplate(root, ".gitdocmap.json"))

	raw, err := os.ReadFile(filepath.Join(root, ".gitdocmap.json"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "_targets")
	require.Contains(t, string(raw), "_document_profiles")
	require.Contains(t, string(raw), "_module_directory")
}

func TestReadMappedFilesSkipsUnreadable(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.md"))
	touch(t, filepath.Join(root, "b.md"))
	writeFileMapFixture(t, root, `{
        "_targets": {
            "prod": {
                "_document_profiles": {"a.md": "DOC-1", "b.md": "DOC-2"}
            }
        }
    }`)
	fm, err := LoadFileMap(root, ".gitdocmap.json")
	require.NoError(t, err)

	// A file can disappear between validation and read.
	require.NoError(t, os.Remove(filepath.Join(root, "b.md")))

	files, err := fm.ReadMappedFiles("prod")
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "DOC-1", files[0].DocID)
	require.Equal(t, "a.md", files[0].Name)
	require.Equal(t, "content", string(files[0].Content))
}
