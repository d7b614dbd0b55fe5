// Package config loads server configuration from a file, environment
// variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all server configuration. It is built by Load and handed
// to the components that need it.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Collection CollectionConfig `mapstructure:"collection"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Log        LogConfig        `mapstructure:"log"`
	Cohorts    []CohortConfig   `mapstructure:"cohorts"`
}

// ServerConfig identifies this server and its HTTP listener.
type ServerConfig struct {
	Name         string `mapstructure:"name"`
	Organization string `mapstructure:"organization"`
	ListenAddr   string `mapstructure:"listen_addr"`
	// PageURLBase is prepended to follow-on page links in paged
	// responses. Empty disables absolute links.
	PageURLBase string `mapstructure:"page_url_base"`
}

// CollectionConfig identifies the local metadata collection.
type CollectionConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// StorageConfig selects and parameterises the instance store backend.
type StorageConfig struct {
	Driver      string `mapstructure:"driver"` // memory, sqlite, postgres
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// ArchiveConfig selects and parameterises the instance-graph archive
// backend.
type ArchiveConfig struct {
	Driver    string `mapstructure:"driver"` // fs, s3, memory
	Root      string `mapstructure:"root"`   // fs driver
	Bucket    string `mapstructure:"bucket"` // s3 driver
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// CohortConfig names a cohort this server should connect to at startup.
type CohortConfig struct {
	Name string `mapstructure:"name"`
}

// Load builds a Config from defaults, an optional config file, and
// METAREPO_* environment variables.
func Load(configPath string) (*Config, error) {
	cfg := defaultConfig()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("metarepo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/metarepo/")
		v.AddConfigPath("$HOME/.metarepo")
	}

	v.SetEnvPrefix("METAREPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; defaults and env still apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:       "metarepo",
			ListenAddr: ":8080",
		},
		Collection: CollectionConfig{
			Name: "Local Metadata Collection",
		},
		Storage: StorageConfig{
			Driver:      "memory",
			SQLitePath:  "metarepo.db",
			PostgresDSN: "postgres://localhost/metarepo?sslmode=disable",
		},
		Archive: ArchiveConfig{
			Driver: "fs",
			Root:   "./archives",
			Region: "us-east-1",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}
	switch c.Archive.Driver {
	case "fs", "s3", "memory":
	default:
		return fmt.Errorf("unknown archive driver: %s", c.Archive.Driver)
	}
	if c.Archive.Driver == "s3" && c.Archive.Bucket == "" {
		return errors.New("archive.bucket is required for the s3 driver")
	}
	if c.Server.Name == "" {
		return errors.New("server.name is required")
	}
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	for i, cohort := range c.Cohorts {
		if cohort.Name == "" {
			return fmt.Errorf("cohorts[%d].name is required", i)
		}
	}
	return nil
}
