package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type localConfig struct {
	Dir       string `json:"dir"`
	PublicURL string `json:"public_url"`
}

type localStore struct {
	dir       string
	publicURL string
}

func init() {
	Register("local", createLocalStore)
}

func createLocalStore(args interface{}) (Store, error) {
	config := &localConfig{}
	if err := decodeConfig(args, config); err != nil {
		return nil, err
	}
	if config.Dir == "" {
		return nil, fmt.Errorf("local store dir is required")
	}
	return &localStore{dir: config.Dir, publicURL: config.PublicURL}, nil
}

func (s *localStore) Save(ctx context.Context, key string, r io.Reader, size int64) error {
	_ = ctx
	_ = size
	if err := validKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	out, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, r)
	return err
}

func (s *localStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	_ = ctx
	if err := validKey(key); err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.dir, key))
}

func (s *localStore) URL(key string) string {
	key = strings.TrimPrefix(key, "/")
	if s.publicURL != "" {
		return strings.TrimSuffix(s.publicURL, "/") + "/" + key
	}
	return "file://" + filepath.Join(s.dir, key)
}

func validKey(key string) error {
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("invalid file key")
	}
	return nil
}
