package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "bewize")
	t.Setenv("ELEVENLABS_API_KEY", "xi-key")
	t.Setenv("AWS_ACCESS_KEY", "ak")
	t.Setenv("AWS_SECRET_KEY", "sk")
	t.Setenv("AWS_REGION", "eu-west-3")
	t.Setenv("AWS_BUCKET", "bewize-media")
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(t *testing.T)
		expectedError string
		validate      func(t *testing.T, cfg *Config)
	}{
		{
			name:  "defaults",
			setup: setRequiredEnv,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3306, cfg.Database.Port)
				assert.Equal(t, "xi-key", cfg.ElevenLabs.APIKey)
				assert.Equal(t, defaultElevenLabsURL, cfg.ElevenLabs.BaseURL)
				assert.Equal(t, 60*time.Second, cfg.ElevenLabs.Timeout)
				assert.Equal(t, StorageDriverS3, cfg.Storage.Driver)
				assert.Equal(t, "bewize-media", cfg.Storage.Bucket)
				assert.Equal(t, 2, cfg.Pipeline.ChunkSize)
				assert.Equal(t, 10*time.Second, cfg.Pipeline.BatchDelay)
				assert.Equal(t, 100*time.Millisecond, cfg.Pipeline.StaggerStep)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "stories.json", cfg.StoriesPath)
				assert.Empty(t, cfg.Database.MigrationsPath)
			},
		},
		{
			name: "migrations path",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("DB_MIGRATIONS_PATH", "./migrations")
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "./migrations", cfg.Database.MigrationsPath)
			},
		},
		{
			name: "custom pacing",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("CHUNK_SIZE", "5")
				t.Setenv("BATCH_DELAY", "2s")
				t.Setenv("STAGGER_STEP", "0s")
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 5, cfg.Pipeline.ChunkSize)
				assert.Equal(t, 2*time.Second, cfg.Pipeline.BatchDelay)
				assert.Equal(t, time.Duration(0), cfg.Pipeline.StaggerStep)
			},
		},
		{
			name: "local storage",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("STORAGE_DRIVER", "local")
				t.Setenv("LOCAL_STORAGE_PATH", "/tmp/audio")
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, StorageDriverLocal, cfg.Storage.Driver)
				assert.Equal(t, "/tmp/audio", cfg.Storage.LocalPath)
			},
		},
		{
			name: "missing api key is fatal",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("ELEVENLABS_API_KEY", "")
			},
			expectedError: "ELEVENLABS_API_KEY is required",
		},
		{
			name: "missing bucket",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("AWS_BUCKET", "")
			},
			expectedError: "AWS_BUCKET is required",
		},
		{
			name: "invalid port",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("DB_PORT", "abc")
			},
			expectedError: "invalid DB_PORT",
		},
		{
			name: "invalid chunk size",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("CHUNK_SIZE", "0")
			},
			expectedError: "invalid CHUNK_SIZE",
		},
		{
			name: "invalid batch delay",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("BATCH_DELAY", "soon")
			},
			expectedError: "invalid BATCH_DELAY",
		},
		{
			name: "unknown storage driver",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("STORAGE_DRIVER", "ftp")
			},
			expectedError: "invalid STORAGE_DRIVER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)

			cfg, err := Load()

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 3307, User: "u", Password: "p", DBName: "bewize",
	}}

	assert.Equal(t, "u:p@tcp(db:3307)/bewize?parseTime=true&charset=utf8mb4&clientFoundRows=true", cfg.DSN())
	assert.Empty(t, (&Config{}).DSN())
}

func TestConfig_MigrationDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 3307, User: "u", Password: "p", DBName: "bewize",
	}}

	assert.Equal(t, cfg.DSN()+"&multiStatements=true", cfg.MigrationDSN())
	assert.NotContains(t, cfg.DSN(), "multiStatements")
	assert.Empty(t, (&Config{}).MigrationDSN())
}
