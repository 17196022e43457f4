// Package config provides application configuration management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config defines the application configuration interface.
type Config interface {
	GetServerPort() string
	GetDatabasePath() string
	GetJWTSecret() string
	GetEnvironment() string
	GetLogLevel() string
	IsProduction() bool
}

// ServerConfig interface for server-specific configuration.
type ServerConfig interface {
	GetServerPort() string
	GetReadTimeout() time.Duration
	GetWriteTimeout() time.Duration
	GetIdleTimeout() time.Duration
	GetAllowedOrigins() []string
}

// RedisConfig interface for the token store connection.
type RedisConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

// UndoConfig interface for undo token lifetimes.
type UndoConfig interface {
	GetUndoTTL() time.Duration
	GetBatchUndoTTL() time.Duration
}

// SecurityConfig interface for security-related configuration.
type SecurityConfig interface {
	GetJWTSecret() string
	GetJWTExpiration() time.Duration
}

// AppConfig implements all configuration interfaces.
type AppConfig struct {
	serverPort     string
	databasePath   string
	redisAddr      string
	redisPassword  string
	redisDB        int
	jwtSecret      string
	jwtExpiration  time.Duration
	environment    string
	logLevel       string
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
	undoTTL        time.Duration
	batchUndoTTL   time.Duration
	allowedOrigins []string
}

// NewConfig creates a new configuration instance with default values
// and overrides from environment variables.
func NewConfig() *AppConfig {
	return &AppConfig{
		serverPort:     getEnvString("SERVER_PORT", "8080"),
		databasePath:   getEnvString("DATABASE_PATH", "data/todo.db"),
		redisAddr:      getEnvString("REDIS_ADDR", "localhost:6379"),
		redisPassword:  getEnvString("REDIS_PASSWORD", ""),
		redisDB:        getEnvInt("REDIS_DB", 0),
		jwtSecret:      getEnvString("JWT_SECRET", defaultJWTSecret),
		jwtExpiration:  getEnvDuration("JWT_EXPIRATION", "24h"),
		environment:    getEnvString("ENVIRONMENT", "development"),
		logLevel:       getEnvString("LOG_LEVEL", "info"),
		readTimeout:    getEnvDuration("READ_TIMEOUT", "15s"),
		writeTimeout:   getEnvDuration("WRITE_TIMEOUT", "15s"),
		idleTimeout:    getEnvDuration("IDLE_TIMEOUT", "60s"),
		undoTTL:        getEnvDuration("UNDO_TTL", "60s"),
		batchUndoTTL:   getEnvDuration("BATCH_UNDO_TTL", "2m"),
		allowedOrigins: getEnvStringSlice("ALLOWED_ORIGINS", nil),
	}
}

// GetServerPort returns the server port configuration.
func (c *AppConfig) GetServerPort() string { return c.serverPort }

// GetDatabasePath returns the SQLite database file path.
func (c *AppConfig) GetDatabasePath() string { return c.databasePath }

// GetRedisAddr returns the Redis address for the token store.
func (c *AppConfig) GetRedisAddr() string { return c.redisAddr }

// GetRedisPassword returns the Redis password.
func (c *AppConfig) GetRedisPassword() string { return c.redisPassword }

// GetRedisDB returns the Redis database index.
func (c *AppConfig) GetRedisDB() int { return c.redisDB }

// GetJWTSecret returns the JWT signing secret.
func (c *AppConfig) GetJWTSecret() string { return c.jwtSecret }

// GetJWTExpiration returns the access token lifetime.
func (c *AppConfig) GetJWTExpiration() time.Duration { return c.jwtExpiration }

// GetEnvironment returns the deployment environment name.
func (c *AppConfig) GetEnvironment() string { return c.environment }

// GetLogLevel returns the log level.
func (c *AppConfig) GetLogLevel() string { return c.logLevel }

// GetReadTimeout returns the HTTP read timeout.
func (c *AppConfig) GetReadTimeout() time.Duration { return c.readTimeout }

// GetWriteTimeout returns the HTTP write timeout.
func (c *AppConfig) GetWriteTimeout() time.Duration { return c.writeTimeout }

// GetIdleTimeout returns the HTTP idle timeout.
func (c *AppConfig) GetIdleTimeout() time.Duration { return c.idleTimeout }

// GetUndoTTL returns how long single-entity undo tokens live.
func (c *AppConfig) GetUndoTTL() time.Duration { return c.undoTTL }

// GetBatchUndoTTL returns how long composite batch tokens live.
func (c *AppConfig) GetBatchUndoTTL() time.Duration { return c.batchUndoTTL }

// GetAllowedOrigins returns the CORS allowlist.
func (c *AppConfig) GetAllowedOrigins() []string { return c.allowedOrigins }

// IsProduction reports whether the app runs in production.
func (c *AppConfig) IsProduction() bool { return c.environment == "production" }

// Validate checks the configuration for values that cannot work.
func (c *AppConfig) Validate() error {
	if c.serverPort == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if _, err := strconv.Atoi(c.serverPort); err != nil {
		return fmt.Errorf("server port must be numeric: %q", c.serverPort)
	}
	if c.databasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.redisAddr == "" {
		return fmt.Errorf("redis address cannot be empty")
	}
	if c.IsProduction() && c.jwtSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if len(c.jwtSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.undoTTL <= 0 || c.batchUndoTTL <= 0 {
		return fmt.Errorf("undo TTLs must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Second
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

const defaultJWTSecret = "todo-me-development-jwt-secret-key-32chars-minimum-length"
