package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the database settings used by integration tests.
// Missing TEST_DB_* variables yield a Config whose DSN is empty, which lets
// tests fall back to a local default DSN.
func LoadTestConfig() (*Config, error) {
	_ = godotenv.Load("./../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	fields := []struct {
		env string
		dst *string
	}{
		{"TEST_DB_HOST", &cfg.Database.Host},
		{"TEST_DB_USER", &cfg.Database.User},
		{"TEST_DB_PASSWORD", &cfg.Database.Password},
		{"TEST_DB_NAME", &cfg.Database.DBName},
	}
	for _, f := range fields {
		value := os.Getenv(f.env)
		if value == "" {
			return &Config{}, nil
		}
		*f.dst = value
	}

	portStr := os.Getenv("TEST_DB_PORT")
	if portStr == "" {
		return &Config{}, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}
	cfg.Database.Port = port

	return cfg, nil
}
