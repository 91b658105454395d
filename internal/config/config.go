// Package config resolves runtime settings from flags, environment, a .env
// file and an optional config.yaml in the data directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. IELTSPREP_STORE.
const EnvPrefix = "IELTSPREP"

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds resolved settings.
type Config struct {
	Store            string        `mapstructure:"store" validate:"oneof=sqlite file redis memory"`
	DataDir          string        `mapstructure:"data_dir" validate:"required"`
	DBPath           string        `mapstructure:"db_path" validate:"required_if=Store sqlite"`
	RedisURL         string        `mapstructure:"redis_url" validate:"required_if=Store redis"`
	RedisPrefix      string        `mapstructure:"redis_prefix"`
	AutosaveInterval time.Duration `mapstructure:"autosave_interval" validate:"gte=1s"`
	LogFile          string        `mapstructure:"log_file"`
	LogLevel         string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error disabled"`
	ContentDir       string        `mapstructure:"content_dir" validate:"omitempty,dir"`
}

// Overrides carries values from command-line flags. Empty fields are ignored.
type Overrides struct {
	ConfigFile string
	Store      string
	DBPath     string
}

var validate = validator.New()

// Load resolves the configuration. Priority, highest first: flags,
// IELTSPREP_* environment variables (including those set by .env),
// config file, defaults.
func Load(ov Overrides) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	dataDir, err := DefaultDataDir()
	if err != nil {
		return nil, err
	}
	v.SetDefault("store", StoreSQLite)
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("db_path", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_prefix", "ieltsprep:")
	v.SetDefault("autosave_interval", "10s")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("content_dir", "")

	if ov.ConfigFile != "" {
		v.SetConfigFile(ov.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("data_dir"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if ov.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if ov.Store != "" {
		v.Set("store", ov.Store)
	}
	if ov.DBPath != "" {
		v.Set("db_path", ov.DBPath)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "ieltsprep.db")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "ieltsprep.log")
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ProgressDir is where the file backend keeps its JSON files.
func (c *Config) ProgressDir() string {
	return filepath.Join(c.DataDir, "progress")
}

// DefaultDataDir resolves the data directory:
// 1. $XDG_DATA_HOME/ieltsprep
// 2. ~/.local/share/ieltsprep
func DefaultDataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "ieltsprep"), nil
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
