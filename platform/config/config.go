// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketPhotos() string
	IsMinIOEnabled() bool
}

// PhotoConfig provides settings for the photo pipeline.
type PhotoConfig interface {
	// GetPhotoNamespace is the storage key prefix grouping all objects of
	// this deployment ("{namespace}/{listingID}/{variant}/{filename}").
	GetPhotoNamespace() string
	// GetPhotoURLMode selects how retrievable URLs are produced:
	// "presigned" or "public".
	GetPhotoURLMode() string
	// GetPhotoURLTTL is the expiry for presigned photo URLs.
	GetPhotoURLTTL() time.Duration
	// GetStorageTimeout bounds every object-storage call.
	GetStorageTimeout() time.Duration
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env               string
	HTTPAddr          string
	DatabaseURL       string
	JWTSecret         string
	CORSAllowAll      bool
	CORSOrigins       []string
	CORSAllowCreds    bool
	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOUseSSL       bool
	MinIOMaxFileSize  int64
	MinioBucketPhotos string
	PhotoNamespace    string
	PhotoURLMode      string
	PhotoURLTTL       time.Duration
	StorageTimeout    time.Duration
	RedisURL          string
	RedisTLSInsecure  bool
	AsynqQueueName    string
	AsynqConcurrency  int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTSecret() string { return c.JWTSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string    { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string   { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string   { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool        { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64  { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketPhotos() string { return c.MinioBucketPhotos }
func (c *Config) IsMinIOEnabled() bool        { return c.MinIOEndpoint != "" }

// PhotoConfig implementation
func (c *Config) GetPhotoNamespace() string       { return c.PhotoNamespace }
func (c *Config) GetPhotoURLMode() string         { return c.PhotoURLMode }
func (c *Config) GetPhotoURLTTL() time.Duration   { return c.PhotoURLTTL }
func (c *Config) GetStorageTimeout() time.Duration { return c.StorageTimeout }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		CORSAllowAll:      corsAllowAll,
		CORSOrigins:       corsOrigins,
		CORSAllowCreds:    strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		MinIOEndpoint:     getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:    getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:    getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:       strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:  mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "20971520")),
		MinioBucketPhotos: getEnv("MINIO_BUCKET_PHOTOS", "car-listing-photos"),
		PhotoNamespace:    getEnv("PHOTO_NAMESPACE", "mhk"),
		PhotoURLMode:      strings.ToLower(getEnv("PHOTO_URL_MODE", "presigned")),
		PhotoURLTTL:       mustDuration(getEnv("PHOTO_URL_TTL", "168h")),
		StorageTimeout:    mustDuration(getEnv("STORAGE_TIMEOUT", "30s")),
		RedisURL:          getEnv("REDIS_URL", ""),
		RedisTLSInsecure:  strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:    getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:  int(mustInt64(getEnv("ASYNQ_CONCURRENCY", "10"))),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.PhotoURLMode != "presigned" && cfg.PhotoURLMode != "public" {
		return nil, fmt.Errorf("PHOTO_URL_MODE must be presigned or public, got %q", cfg.PhotoURLMode)
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
