// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported values of DB_DRIVER.
const (
	DriverBadger   = "badger"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env             string        `mapstructure:"APP_ENV"`
	Port            string        `mapstructure:"PORT"`
	DBDriver        string        `mapstructure:"DB_DRIVER"`
	BadgerPath      string        `mapstructure:"BADGER_PATH"`
	DatabaseDSN     string        `mapstructure:"DATABASE_DSN"`
	BackupDir       string        `mapstructure:"BACKUP_DIR"`
	PostsPerPage    int           `mapstructure:"POSTS_PER_PAGE"`
	CommentsPerPage int           `mapstructure:"COMMENTS_PER_PAGE"`
	CreatedAtOffset time.Duration `mapstructure:"CREATED_AT_OFFSET"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
}

// SetDefaults registers the development defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", DriverBadger)
	v.SetDefault("BADGER_PATH", "data/badger")
	v.SetDefault("DATABASE_DSN", "data/blog.db")
	v.SetDefault("BACKUP_DIR", "data/backups")
	v.SetDefault("POSTS_PER_PAGE", 10)
	v.SetDefault("COMMENTS_PER_PAGE", 5)
	v.SetDefault("CREATED_AT_OFFSET", "2h")
	v.SetDefault("LOG_LEVEL", "info")
}

// LoadConfig loads application configuration from file and environment variables
// using the global viper instance, so flags bound with viper.BindPFlag apply.
func LoadConfig() (*Config, error) {
	return Load(viper.GetViper())
}

// Load reads config.yml (and config.<APP_ENV>.yml outside development) into v,
// layers environment variables and defaults on top and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	// The base file is optional.
	_ = v.ReadInConfig()

	env := v.GetString("APP_ENV")
	if env != "" && env != "development" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config.%s.yml: %w", env, err)
			}
		} else {
			slog.Info("Loaded profile-specific configuration", "file", "config."+env+".yml")
		}
	}

	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.DBDriver = strings.ToLower(strings.TrimSpace(config.DBDriver))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and usable.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.PostsPerPage < 1 {
		return errors.New("POSTS_PER_PAGE must be positive")
	}
	if c.CommentsPerPage < 1 {
		return errors.New("COMMENTS_PER_PAGE must be positive")
	}

	switch c.DBDriver {
	case DriverBadger:
		if c.BadgerPath == "" {
			return errors.New("BADGER_PATH is required for the badger driver")
		}
	case DriverSQLite, DriverPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the %s driver", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.IsProduction() && c.CreatedAtOffset != 0 {
		slog.Warn("CREATED_AT_OFFSET is set in production; timestamps will be shifted", "offset", c.CreatedAtOffset)
	}
	return nil
}

// IsProduction reports whether the app runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
