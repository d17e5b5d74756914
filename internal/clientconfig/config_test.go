package clientconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
default_username: alice
targets:
    prod:
        url: https://docs.example.com/bridge
        tranx_num: "42"
    staging:
        url: https://staging.example.com
        tranx_num: "7"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultMapFilename, cfg.MapFilename)
	require.Equal(t, "alice", cfg.DefaultUsername)

	target, err := cfg.Target("prod")
	require.NoError(t, err)
	require.Equal(t, "https://docs.example.com/bridge", target.URL)
	require.Equal(t, "42", target.TranxNum)

	_, err = cfg.Target("missing")
	require.ErrorContains(t, err, "missing")
}

func TestLoadRejectsBadTargets(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no targets", content: "default_username: alice\n"},
		{name: "plain http", content: "targets:\n    prod:\n        url: http://docs.example.com\n        tranx_num: \"42\"\n"},
		{name: "missing tranx_num", content: "targets:\n    prod:\n        url: https://docs.example.com\n"},
		{name: "relative url", content: "targets:\n    prod:\n        url: /bridge\n        tranx_num: \"42\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestValidateTargetURL(t *testing.T) {
	require.NoError(t, ValidateTargetURL("https://docs.example.com"))
	require.NoError(t, ValidateTargetURL("http://localhost:8080"))
	require.NoError(t, ValidateTargetURL("http://127.0.0.1:8080"))
	require.Error(t, ValidateTargetURL("http://docs.example.com"))
	require.Error(t, ValidateTargetURL("ftp://docs.example.com"))
	require.Error(t, ValidateTargetURL("docs.example.com"))
}
