// Package config loads the CLI settings: defaults, then an optional TOML file,
// then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fuad-daoud/disma/integrations/digitalocean"
)

const (
	EnvToken  = "DISMA_TOKEN"
	EnvGuild  = "DISMA_GUILD"
	EnvLogDir = "DISMA_LOG_DIR"
	EnvConfig = "DISMA_CONFIG"
)

type Config struct {
	Token         string
	Guild         string
	LogDir        string
	DriftSchedule string
	Spaces        digitalocean.Config
}

func Default() Config {
	return Config{
		DriftSchedule: "@every 1h",
		Spaces: digitalocean.Config{
			Endpoint: "https://fra1.digitaloceanspaces.com",
			Region:   "fra1",
			Prefix:   "disma",
		},
	}
}

type fileConfig struct {
	Token         string              `toml:"token"`
	Guild         string              `toml:"guild"`
	LogDir        string              `toml:"log_dir"`
	DriftSchedule string              `toml:"drift_schedule"`
	Spaces        digitalocean.Config `toml:"spaces"`
}

// DefaultPath is $DISMA_CONFIG, or config.toml under the user config directory.
func DefaultPath() string {
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "disma", "config.toml")
}

// Load reads path when it exists. An explicit path that does not exist is an
// error, the default one is optional.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config %s: unknown key %s", path, undecoded[0])
	}

	if meta.IsDefined("token") {
		cfg.Token = strings.TrimSpace(raw.Token)
	}
	if meta.IsDefined("guild") {
		cfg.Guild = strings.TrimSpace(raw.Guild)
	}
	if meta.IsDefined("log_dir") {
		cfg.LogDir = strings.TrimSpace(raw.LogDir)
	}
	if meta.IsDefined("drift_schedule") {
		cfg.DriftSchedule = strings.TrimSpace(raw.DriftSchedule)
	}
	for _, field := range []struct {
		key   string
		value string
		set   *string
	}{
		{"key", raw.Spaces.Key, &cfg.Spaces.Key},
		{"secret", raw.Spaces.Secret, &cfg.Spaces.Secret},
		{"endpoint", raw.Spaces.Endpoint, &cfg.Spaces.Endpoint},
		{"region", raw.Spaces.Region, &cfg.Spaces.Region},
		{"bucket", raw.Spaces.Bucket, &cfg.Spaces.Bucket},
		{"prefix", raw.Spaces.Prefix, &cfg.Spaces.Prefix},
	} {
		if meta.IsDefined("spaces", field.key) {
			*field.set = strings.TrimSpace(field.value)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvToken); ok {
		cfg.Token = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvGuild); ok {
		cfg.Guild = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvLogDir); ok {
		cfg.LogDir = strings.TrimSpace(v)
	}
}
