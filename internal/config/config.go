// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage driver names. The driver is chosen here at startup and injected
// into the engine by the caller; nothing in the engine reads ambient state.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Dynamo   DynamoConfig
	Redis    RedisConfig
	Log      LogConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name string
	Env  string
}

// StorageConfig selects the catalog store backing the engine.
type StorageConfig struct {
	Driver string
	// CacheEnabled turns on the Redis read-through group cache.
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// DynamoConfig holds DynamoDB configuration.
type DynamoConfig struct {
	Region    string
	Table     string
	AccessKey string
	SecretKey string
	// Endpoint overrides the AWS endpoint for local development
	// (dynamodb-local, localstack).
	Endpoint string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr returns the Redis address.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "systiva-accessctl"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Storage: StorageConfig{
			Driver:       getEnv("STORAGE_DRIVER", DriverMemory),
			CacheEnabled: getEnvBool("STORAGE_CACHE_ENABLED", false),
			CacheTTL:     getEnvDuration("STORAGE_CACHE_TTL", 5*time.Minute),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "systiva"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "accessctl"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Dynamo: DynamoConfig{
			Region:    getEnv("DYNAMO_REGION", "us-east-1"),
			Table:     getEnv("DYNAMO_TABLE", "accessctl-catalog"),
			AccessKey: getEnv("DYNAMO_ACCESS_KEY", ""),
			SecretKey: getEnv("DYNAMO_SECRET_KEY", ""),
			Endpoint:  getEnv("DYNAMO_ENDPOINT", ""),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverPostgres, DriverDynamoDB:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER: %s (must be %s, %s, or %s)",
			c.Storage.Driver, DriverMemory, DriverPostgres, DriverDynamoDB)
	}

	if c.Storage.Driver == DriverPostgres && c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required with the postgres driver")
	}
	if c.Storage.Driver == DriverDynamoDB && c.Dynamo.Table == "" {
		return fmt.Errorf("DYNAMO_TABLE is required with the dynamodb driver")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid LOG_LEVEL: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid LOG_FORMAT: %s (must be json or text)", c.Log.Format)
	}

	return nil
}

// IsProduction returns true if the application is in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
