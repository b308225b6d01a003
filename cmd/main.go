package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bewize/audio-generator/internal/config"
	"github.com/bewize/audio-generator/internal/handlers"
	"github.com/bewize/audio-generator/internal/logger"
	"github.com/bewize/audio-generator/internal/models"
	"github.com/bewize/audio-generator/internal/repositories"
	"github.com/bewize/audio-generator/internal/services"
	"github.com/bewize/audio-generator/internal/storage"
	"github.com/bewize/audio-generator/internal/tts"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

func main() {
	// Parse arguments before anything touches the network
	args, err := handlers.ParseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, args)
	stop()
	logger.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args models.ScriptArgs) error {
	appLogger := logger.Logger

	// Connect to database
	db, err := connectDB(ctx, cfg.DSN())
	if err != nil {
		appLogger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	// Run migrations
	if cfg.Database.MigrationsPath != "" {
		if err := repositories.RunMigrations(cfg.MigrationDSN(), cfg.Database.MigrationsPath); err != nil {
			appLogger.Error("Failed to run migrations", zap.Error(err))
			return err
		}
	}

	// Initialize storage
	store, err := newStorage(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize storage", zap.Error(err))
		return err
	}

	// Initialize repositories
	contentRepo := repositories.NewContentRepository(db, appLogger)
	maintenanceRepo := repositories.NewMaintenanceRepository(db, appLogger)

	// Initialize services
	synthesizer := tts.NewElevenLabsClient(cfg.ElevenLabs.BaseURL, cfg.ElevenLabs.APIKey, cfg.ElevenLabs.Timeout, appLogger)
	processor := services.NewItemProcessor(contentRepo, synthesizer, store, cfg.Pipeline.StaggerStep, appLogger)
	scheduler := services.NewBatchScheduler(processor, cfg.Pipeline.ChunkSize, cfg.Pipeline.BatchDelay, appLogger)
	pipelineService := services.NewPipelineService(contentRepo, scheduler, appLogger)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, store, handlers.NewStdinConfirmer(os.Stdin, os.Stdout), appLogger)

	// Initialize handler
	scriptHandler := handlers.NewScriptHandler(pipelineService, maintenanceService, cfg.StoriesPath, os.Stdout, appLogger)

	return scriptHandler.Handle(ctx, args)
}

// connectDB connects to the database
func connectDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", services.ErrDatabaseConnection, err)
	}

	return db, nil
}

// newStorage builds the object store selected by STORAGE_DRIVER
func newStorage(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (services.ObjectStorage, error) {
	if cfg.Storage.Driver == config.StorageDriverLocal {
		return storage.NewLocalStorage(cfg.Storage.LocalPath), nil
	}
	s3Storage, err := storage.NewS3Storage(ctx, cfg.Storage, appLogger)
	if err != nil {
		return nil, err
	}
	return s3Storage, nil
}
