package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunPullOverwritesMappedFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "README.md"))
	writeFileMapFixture(t, root, `{
        "_targets": {
            "prod": {
                "_document_profiles": {"README.md": "DOC-1"}
            }
        }
    }`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "pull", r.URL.Query().Get("route"))
		_ = json.NewEncoder(w).Encode(map[string]PullRecord{
			"DOC-1": {
				DocVerID:     "VER-1",
				VersionLabel: "2.0",
				FileName:     "README.md",
				Content:      base64.StdEncoding.EncodeToString([]byte("remote content")),
			},
			"DOC-UNMAPPED": {
				DocVerID: "VER-2",
				Content:  base64.StdEncoding.EncodeToString([]byte("should be ignored")),
			},
		})
	}))
	defer srv.Close()

	fm, err := LoadFileMap(root, ".gitdocmap.json")
	require.NoError(t, err)
	err = RunPull(context.Background(), bridgeConfig(srv.URL), fm, PullOptions{
		Targets:   []string{"prod"},
		Username:  "alice",
		Password:  "secret",
		AssumeYes: true,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(root, "README.md"))
	require.NoError(t, err)
	require.Equal(t, "remote content", string(content))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 2, "only the mapped file and the filemap itself")
}

func TestRunPullNothingWritten(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "README.md"))
	writeFileMapFixture(t, root, `{
        "_targets": {
            "prod": {
                "_document_profiles": {"README.md": "DOC-1"}
            }
        }
    }`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]PullRecord{})
	}))
	defer srv.Close()

	fm, err := LoadFileMap(root, ".gitdocmap.json")
	require.NoError(t, err)
	err = RunPull(context.Background(), bridgeConfig(srv.URL), fm, PullOptions{
		Targets:   []string{"prod"},
		AssumeYes: true,
	})
	require.ErrorContains(t, err, "no files pulled")
}
