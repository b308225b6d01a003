// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers supported by the application
const (
	StorageDriverS3    = "s3"
	StorageDriverLocal = "local"
)

const defaultElevenLabsURL = "https://api.elevenlabs.io/v1/text-to-speech"

// Config holds all configuration for the application
type Config struct {
	Database   DatabaseConfig
	ElevenLabs ElevenLabsConfig
	Storage    StorageConfig
	Pipeline   PipelineConfig
	Logging    LoggingConfig
	// StoriesPath is the local stories.json uploaded by the update/stories script
	StoriesPath string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	// MigrationsPath, when set, is applied with golang-migrate before the script runs
	MigrationsPath string
}

// ElevenLabsConfig holds text-to-speech API settings
type ElevenLabsConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// StorageConfig holds object storage settings
type StorageConfig struct {
	Driver    string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	// Endpoint overrides the AWS endpoint for S3-compatible stores
	Endpoint  string
	LocalPath string
}

// PipelineConfig holds batch pacing settings
type PipelineConfig struct {
	ChunkSize   int
	BatchDelay  time.Duration
	StaggerStep time.Duration
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName
	cfg.Database.MigrationsPath = os.Getenv("DB_MIGRATIONS_PATH")

	// Text-to-speech configuration
	apiKey := os.Getenv("ELEVENLABS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY is required")
	}
	cfg.ElevenLabs.APIKey = apiKey

	cfg.ElevenLabs.BaseURL = os.Getenv("ELEVENLABS_API_URL")
	if cfg.ElevenLabs.BaseURL == "" {
		cfg.ElevenLabs.BaseURL = defaultElevenLabsURL
	}

	if cfg.ElevenLabs.Timeout, err = durationEnv("SYNTHESIS_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	// Storage configuration
	cfg.Storage.Driver = os.Getenv("STORAGE_DRIVER")
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageDriverS3
	}
	switch cfg.Storage.Driver {
	case StorageDriverS3:
		if err := loadS3(cfg); err != nil {
			return nil, err
		}
	case StorageDriverLocal:
		cfg.Storage.LocalPath = os.Getenv("LOCAL_STORAGE_PATH")
		if cfg.Storage.LocalPath == "" {
			return nil, fmt.Errorf("LOCAL_STORAGE_PATH is required for local storage")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER: %s", cfg.Storage.Driver)
	}

	// Pipeline configuration
	chunkSizeStr := os.Getenv("CHUNK_SIZE")
	if chunkSizeStr == "" {
		chunkSizeStr = "2"
	}
	chunkSize, err := strconv.Atoi(chunkSizeStr)
	if err != nil || chunkSize < 1 {
		return nil, fmt.Errorf("invalid CHUNK_SIZE: %s", chunkSizeStr)
	}
	cfg.Pipeline.ChunkSize = chunkSize

	if cfg.Pipeline.BatchDelay, err = durationEnv("BATCH_DELAY", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Pipeline.StaggerStep, err = durationEnv("STAGGER_STEP", 100*time.Millisecond); err != nil {
		return nil, err
	}

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	cfg.StoriesPath = os.Getenv("STORIES_PATH")
	if cfg.StoriesPath == "" {
		cfg.StoriesPath = "stories.json"
	}

	return cfg, nil
}

func loadS3(cfg *Config) error {
	required := map[string]*string{
		"AWS_ACCESS_KEY": &cfg.Storage.AccessKey,
		"AWS_SECRET_KEY": &cfg.Storage.SecretKey,
		"AWS_REGION":     &cfg.Storage.Region,
		"AWS_BUCKET":     &cfg.Storage.Bucket,
	}
	for name, dst := range required {
		value := os.Getenv(name)
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
		*dst = value
	}
	cfg.Storage.Endpoint = os.Getenv("S3_ENDPOINT")
	return nil
}

// durationEnv parses a Go duration (e.g. "10s", "100ms") from the named variable
func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(name)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", name)
	}
	return d, nil
}

// DSN returns the database connection string
//
// clientFoundRows makes UPDATE report matched rows instead of changed rows,
// which the single-row update checks rely on.
func (c *Config) DSN() string {
	if c.Database.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// MigrationDSN returns the DSN used only to apply schema migrations.
// Migration files hold several statements, which the server accepts only with multiStatements.
func (c *Config) MigrationDSN() string {
	dsn := c.DSN()
	if dsn == "" {
		return ""
	}
	return dsn + "&multiStatements=true"
}
