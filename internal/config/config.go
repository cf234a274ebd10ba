// Package config reads the service settings from an optional YAML file,
// a .env file and the environment, in increasing priority.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"payroll-engine/internal/model/payerr"
)

type Config struct {
	DataDir        string `yaml:"data_dir"`
	TablesDir      string `yaml:"tables_dir"`
	Port           string `yaml:"port"`
	LogLevel       string `yaml:"log_level"`
	LogDevelopment bool   `yaml:"log_development"`
}

func Defaults() Config {
	return Config{
		DataDir:  "./data",
		Port:     "8080",
		LogLevel: "info",
	}
}

// Load builds the configuration. path may be empty; a missing file at a
// non-empty path is an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, payerr.Wrap(err, payerr.KindConfigMissing, "config file not found").WithField(path)
			}
			return Config{}, err
		}
		if err := Parse(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.TablesDir == "" {
		cfg.TablesDir = filepath.Join(cfg.DataDir, "baremes")
	}
	return cfg, nil
}

// Parse overlays the YAML document b on cfg.
func Parse(b []byte, cfg *Config) error {
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return payerr.Wrap(err, payerr.KindConfigInvalid, "malformed config file")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PAYROLL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("PAYROLL_TABLES_DIR"); v != "" {
		cfg.TablesDir = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return payerr.Wrap(err, payerr.KindConfigInvalid, "LOG_DEVELOPMENT must be a boolean").WithField("LOG_DEVELOPMENT")
		}
		cfg.LogDevelopment = dev
	}
	return nil
}
