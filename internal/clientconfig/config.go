package clientconfig

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/viper"
)

const DefaultMapFilename = ".gitdocmap.json"

type Target struct {
	URL      string `mapstructure:"url"`
	TranxNum string `mapstructure:"tranx_num"`
}

type Config struct {
	MapFilename     string            `mapstructure:"map_filename"`
	DefaultUsername string            `mapstructure:"default_username"`
	Targets         map[string]Target `mapstructure:"targets"`
}

// Load reads the client configuration from path, or from
// .gitdocsync.yaml in the home directory / cwd when path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".gitdocsync")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}
	v.SetDefault("map_filename", DefaultMapFilename)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read client config: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode client config: %w", err)
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets configured")
	}
	for name, target := range cfg.Targets {
		if err := ValidateTargetURL(target.URL); err != nil {
			return nil, fmt.Errorf("target %s: %w", name, err)
		}
		if target.TranxNum == "" {
			return nil, fmt.Errorf("target %s: tranx_num is required", name)
		}
	}
	return &cfg, nil
}

func (c *Config) Target(name string) (Target, error) {
	target, ok := c.Targets[name]
	if !ok {
		return Target{}, fmt.Errorf("target %s is not configured", name)
	}
	return target, nil
}

// ValidateTargetURL enforces the shape the bridge expects: absolute
// with a host, and https except for loopback targets.
func ValidateTargetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	switch u.Scheme {
	case "https":
	case "http":
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("url %q must use https", raw)
		}
	default:
		return fmt.Errorf("url %q scheme must be https", raw)
	}
	return nil
}
