package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bewize/audio-generator/internal/models"
	"github.com/bewize/audio-generator/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrLevelRequired is returned when a run is started without a level
	ErrLevelRequired = errors.New("level is required")
	// ErrDatabaseConnection is returned when pending records could not be loaded because
	// the database is unreachable
	ErrDatabaseConnection = errors.New("database connection failed")
)

// PendingContentRepository is the interface that wraps the selection of records without audio
type PendingContentRepository interface {
	// Method FindPending retrieves records of "kind" for a level and an optional subject whose
	// audio reference is NULL or blank.
	//
	// An empty subject means every subject of the level.
	// An empty non-nil slice is returned when nothing is pending.
	FindPending(ctx context.Context, kind models.ContentKind, level, subject string) ([]models.ContentRecord, error)
}

// BatchRunner is the interface that wraps the chunked processing of records
type BatchRunner interface {
	// Method Run processes records and returns the committed ones.
	Run(ctx context.Context, records []models.ContentRecord) ([]models.ContentRecord, error)
}

type pipelineService struct {
	repo      PendingContentRepository
	scheduler BatchRunner
	logger    *zap.Logger
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(repo PendingContentRepository, scheduler BatchRunner, logger *zap.Logger) *pipelineService {
	return &pipelineService{
		repo:      repo,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Run narrates every pending record of kind for level and subject and returns the updated records
func (s *pipelineService) Run(ctx context.Context, kind models.ContentKind, level, subject string) ([]models.ContentRecord, error) {
	if level == "" {
		return nil, ErrLevelRequired
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}

	log := s.logger.With(zap.String("kind", string(kind)), zap.String("level", level), zap.String("subject", subject))

	records, err := s.repo.FindPending(ctx, kind, level, subject)
	if err != nil {
		if repositories.IsConnectionError(err) {
			log.Error("database unreachable", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrDatabaseConnection, err)
		}
		log.Error("failed to load pending records", zap.Error(err))
		return nil, fmt.Errorf("failed to load pending records: %w", err)
	}
	if len(records) == 0 {
		log.Info("nothing to process")
		return []models.ContentRecord{}, nil
	}

	log.Info("processing pending records", zap.Int("count", len(records)))
	results, err := s.scheduler.Run(ctx, records)
	if err != nil {
		return nil, err
	}

	log.Info("pipeline finished", zap.Int("pending", len(records)), zap.Int("generated", len(results)))
	return results, nil
}

// FlashcardQuestions narrates flashcard questions
func (s *pipelineService) FlashcardQuestions(ctx context.Context, level, subject string) ([]models.ContentRecord, error) {
	return s.Run(ctx, models.ContentKindFlashcardQuestion, level, subject)
}

// FlashcardAnswers narrates flashcard answers
func (s *pipelineService) FlashcardAnswers(ctx context.Context, level, subject string) ([]models.ContentRecord, error) {
	return s.Run(ctx, models.ContentKindFlashcardAnswer, level, subject)
}

// QuizFeedbacks narrates quiz feedback messages
func (s *pipelineService) QuizFeedbacks(ctx context.Context, level, subject string) ([]models.ContentRecord, error) {
	return s.Run(ctx, models.ContentKindQuizFeedback, level, subject)
}

// QuizQuestions narrates quiz questions
func (s *pipelineService) QuizQuestions(ctx context.Context, level, subject string) ([]models.ContentRecord, error) {
	return s.Run(ctx, models.ContentKindQuizQuestion, level, subject)
}

// All runs every content kind concurrently and returns the updated records per kind.
// Every run is awaited; the first error is returned.
func (s *pipelineService) All(ctx context.Context, level, subject string) (map[models.ContentKind][]models.ContentRecord, error) {
	if level == "" {
		return nil, ErrLevelRequired
	}

	var (
		mu      sync.Mutex
		g       errgroup.Group
		results = make(map[models.ContentKind][]models.ContentRecord, len(models.ContentKinds()))
	)
	for _, kind := range models.ContentKinds() {
		g.Go(func() error {
			records, err := s.Run(ctx, kind, level, subject)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			mu.Lock()
			results[kind] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
