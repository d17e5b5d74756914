package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	Port               int             `json:"port"`
	TranxNum           string          `json:"tranx_num"`
	LogLevel           string          `json:"log_level"`
	LogConsole         bool            `json:"log_console"`
	TempDir            string          `json:"temp_dir"`
	CheckoutTTLMinutes int             `json:"checkout_ttl_minutes"`
	Users              []AuthUser      `json:"users"`
	DocStore           string          `json:"doc_store"`
	Database           DatabaseConfig  `json:"database"`
	FileStore          FileStoreConfig `json:"file_store"`
}

type AuthUser struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.TranxNum == "" {
		return nil, fmt.Errorf("tranx_num is required")
	}
	if len(cfg.Users) == 0 {
		return nil, fmt.Errorf("at least one user is required")
	}
	for _, u := range cfg.Users {
		if u.Username == "" || u.PasswordHash == "" {
			return nil, fmt.Errorf("users entries need username and password_hash")
		}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.CheckoutTTLMinutes == 0 {
		cfg.CheckoutTTLMinutes = 60
	}
	if cfg.DocStore == "" {
		cfg.DocStore = "postgres"
	}
	switch cfg.DocStore {
	case "postgres":
		if cfg.Database.DSN == "" && (cfg.Database.Host == "" || cfg.Database.DBName == "") {
			return nil, fmt.Errorf("database host/dbname (or dsn) are required for postgres doc store")
		}
		if cfg.FileStore.Type == "" {
			return nil, fmt.Errorf("file_store.type is required for postgres doc store")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("doc_store must be postgres or memory")
	}
	return &cfg, nil
}
