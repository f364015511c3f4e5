package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

type Config struct {
	DataDir      string
	Backend      string
	DatabasePath string
	LogLevel     string
}

// Load resolves configuration from defaults, an optional config.yaml in the
// data directory, and GARAGE_* environment variables, in increasing
// precedence.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("backend", BackendSQLite)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("GARAGE")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("data_dir"))
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	config := Config{
		DataDir:      v.GetString("data_dir"),
		Backend:      v.GetString("backend"),
		DatabasePath: v.GetString("database_path"),
		LogLevel:     v.GetString("log_level"),
	}
	if config.DatabasePath == "" {
		config.DatabasePath = filepath.Join(config.DataDir, "garage.db")
	}

	switch config.Backend {
	case BackendSQLite, BackendFile:
	default:
		return Config{}, fmt.Errorf("unsupported backend %q", config.Backend)
	}

	return config, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".garage")
}
