package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Canonical store
	StorePath string `mapstructure:"STORE_PATH"`
	BackupDir string `mapstructure:"BACKUP_DIR"`

	// Audit trail
	AuditDBPath string `mapstructure:"AUDIT_DB_PATH"`

	// Redis (optional; empty disables the response cache)
	RedisURL string `mapstructure:"REDIS_URL"`

	// Sources
	SourcesDir   string        `mapstructure:"SOURCES_DIR"`
	SourceURLs   []string      `mapstructure:"SOURCE_URLS"`
	FetchRate    float64       `mapstructure:"FETCH_RATE_LIMIT"`
	RefreshEvery time.Duration `mapstructure:"REFRESH_INTERVAL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("STORE_PATH", "data/players.json")
	viper.SetDefault("BACKUP_DIR", "data/backups")
	viper.SetDefault("AUDIT_DB_PATH", "data/audit.db")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("SOURCES_DIR", "data/sources")
	viper.SetDefault("SOURCE_URLS", "")
	viper.SetDefault("FETCH_RATE_LIMIT", 1.0) // requests per second
	viper.SetDefault("REFRESH_INTERVAL", "12h")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Comma-separated list values come in as plain strings.
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}
	if urlStr := viper.GetString("SOURCE_URLS"); urlStr != "" {
		config.SourceURLs = strings.Split(urlStr, ",")
	}

	if config.RefreshEvery <= 0 {
		config.RefreshEvery = 12 * time.Hour
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
