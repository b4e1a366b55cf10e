// Package config loads process configuration from the environment (and an
// optional .env file for local development), following the settings layout
// of the source project's pydantic Settings class.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config is the single point of configuration for the process.
type Config struct {
	Environment Environment
	LogLevel    string
	Timezone    string

	DatabaseType     string
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	RedisURL string

	FernetKey string // base64-encoded 32-byte AEAD key

	HTTPPort string

	StagingDir     string
	MaxUploadMiB   int64
	UploadChunkKiB int64
}

// Load reads `.env` (if present) then the process environment, applying the
// same defaults as the source project's Settings class.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetDefault("ENVIRONMENT", string(EnvDevelopment))
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIMEZONE", "Asia/Kolkata")
	v.SetDefault("DATABASE_TYPE", "postgres")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("STAGING_DIR", "./staging")
	v.SetDefault("MAX_UPLOAD_MIB", 200)
	v.SetDefault("UPLOAD_CHUNK_KIB", 5*1024)

	cfg := &Config{
		Environment:      Environment(strings.ToLower(v.GetString("ENVIRONMENT"))),
		LogLevel:         v.GetString("LOG_LEVEL"),
		Timezone:         v.GetString("TIMEZONE"),
		DatabaseType:     v.GetString("DATABASE_TYPE"),
		DatabaseHost:     v.GetString("DATABASE_HOST"),
		DatabasePort:     v.GetString("DATABASE_PORT"),
		DatabaseName:     v.GetString("DATABASE_NAME"),
		DatabaseUser:     v.GetString("DATABASE_USER"),
		DatabasePassword: v.GetString("DATABASE_PASSWORD"),
		RedisURL:         v.GetString("REDIS_URL"),
		FernetKey:        v.GetString("FERNET_KEY"),
		HTTPPort:         v.GetString("HTTP_PORT"),
		StagingDir:       v.GetString("STAGING_DIR"),
		MaxUploadMiB:     v.GetInt64("MAX_UPLOAD_MIB"),
		UploadChunkKiB:   v.GetInt64("UPLOAD_CHUNK_KIB"),
	}

	if cfg.DatabaseHost == "" || cfg.DatabaseName == "" || cfg.DatabaseUser == "" {
		return nil, fmt.Errorf("config: DATABASE_HOST, DATABASE_NAME and DATABASE_USER are required")
	}
	if cfg.FernetKey == "" {
		return nil, fmt.Errorf("config: FERNET_KEY is required")
	}

	return cfg, nil
}

// DSN builds a libpq-style connection string for pgx.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.DatabaseUser, c.DatabasePassword, c.DatabaseHost, c.DatabasePort, c.DatabaseName)
}
