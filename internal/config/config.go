package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort       string        // Application port
	DBDriver      string        // Database driver: mysql, postgres or sqlite
	DBDSN         string        // Full DSN, overrides the individual DB fields
	DBUser        string        // Database user
	DBPassword    string        // Database password
	DBHost        string        // Database host
	DBPort        string        // Database port
	DBName        string        // Database name
	JWTSecret     string        // Session token signing key
	SessionTTL    time.Duration // Session lifetime
	SessionStore  string        // Session registry: memory or redis
	RedisAddr     string        // Redis server address, empty disables Redis
	RedisPass     string        // Redis password
	RedisDB       int           // Redis database number
	CacheTTL      time.Duration // Read cache lifetime
	RetentionDays int           // Read notifications older than this are pruned, 0 keeps them
	IsProd        bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	retention, _ := strconv.Atoi(os.Getenv("NOTIFICATION_RETENTION_DAYS"))
	return &Config{
		AppPort:       getenv("APP_PORT", "5000"),
		DBDriver:      getenv("DB_DRIVER", "mysql"),
		DBDSN:         os.Getenv("DB_DSN"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        os.Getenv("DB_PORT"),
		DBName:        os.Getenv("DB_NAME"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionTTL:    duration("SESSION_TTL", 24*time.Hour),
		SessionStore:  getenv("SESSION_STORE", "memory"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPass:     os.Getenv("REDIS_PASS"),
		RedisDB:       redisDB,
		CacheTTL:      duration("CACHE_TTL", 30*time.Second),
		RetentionDays: retention,
		IsProd:        os.Getenv("IS_PROD") == "true",
	}
}

// getenv returns the variable or a fallback when unset
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// duration parses a Go duration string such as "30s" or "24h"
func duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
