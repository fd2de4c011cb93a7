// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. A .env file in the working directory is read first, so local
// development does not need exported variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host        string
	Port        string
	Env         string // "development", "production", "testing"
	CORSOrigins []string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible page cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible asset host
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
	AssetsRoot  string // key prefix for blog images, e.g. "blogs"

	// Admin authentication
	JWTSecret         string
	AdminPasswordHash string // bcrypt hash
	AdminTOTPSecret   string // optional base32 TOTP secret

	// Work-experience service
	LinkedInDataURL string
	LinkedInToken   string

	// Upload limits in bytes, parsed from human sizes ("50MB").
	MaxUploadSize int64
	MaxResumeSize int64
	MaxImageSize  int64

	// Logging
	Log      string // "dev" selects the zap development logger
	LogLevel string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(".env")

	cfg := &Config{
		Host:        envOrDefault("APP_HOST", "0.0.0.0"),
		Port:        envOrDefault("APP_PORT", "8080"),
		Env:         strings.ToLower(envOrDefault("APP_ENV", "development")),
		CORSOrigins: splitList(envOrDefault("CORS_ORIGINS", "http://localhost:3000")),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "folio"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "folio"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "folio-assets"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
		AssetsRoot:  strings.Trim(envOrDefault("ASSETS_ROOT", "blogs"), "/"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminTOTPSecret:   os.Getenv("ADMIN_TOTP_SECRET"),

		LinkedInDataURL: strings.TrimRight(envOrDefault("LINKEDIN_DATA_URL", "http://localhost:8000"), "/"),
		LinkedInToken:   os.Getenv("LINKEDIN_TOKEN"),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(envOrDefault("LOGLEVEL", "info")),
	}

	var err error
	if cfg.MaxUploadSize, err = parseSize("MAX_UPLOAD_SIZE", "50MB"); err != nil {
		return nil, err
	}
	if cfg.MaxResumeSize, err = parseSize("MAX_RESUME_SIZE", "20MB"); err != nil {
		return nil, err
	}
	if cfg.MaxImageSize, err = parseSize("MAX_IMAGE_SIZE", "10MB"); err != nil {
		return nil, err
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// DSNSafe returns the connection string with the password masked, for logs.
func (c *Config) DSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// StorageEnabled reports whether the asset host is configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// parseSize reads a human-readable size such as "50MB" from key.
func parseSize(key, fallback string) (int64, error) {
	raw := envOrDefault(key, fallback)
	size, err := units.FromHumanSize(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if size <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return size, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
