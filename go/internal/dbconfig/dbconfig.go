package dbconfig

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds Postgres connection and pool settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

// NewConfigFromEnv reads DB_* environment variables (with defaults). The
// pool ceiling stays modest: the simulation core runs long batches on few
// concurrent connections rather than many short queries.
func NewConfigFromEnv() Config {
	return Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     intEnv("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		Database: getEnv("DB_NAME", "gaffer"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		MaxConns: intEnv("DB_MAX_CONNS", 8),
		MinConns: intEnv("DB_MIN_CONNS", 2),
	}
}

// DSN returns the Postgres connection URL. Pool sizing rides in the URL;
// pgxpool parses pool_max_conns and pool_min_conns natively.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode, c.MaxConns, c.MinConns,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
