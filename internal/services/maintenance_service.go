package services

import (
	"context"
	"fmt"
	"os"

	"github.com/bewize/audio-generator/internal/models"
	"github.com/bewize/audio-generator/internal/storage"
	"go.uber.org/zap"
)

// StoriesKey is the storage key of the stories catalogue
const StoriesKey = "stories.json"

// StoriesContentType is the content type of the stories catalogue
const StoriesContentType = "application/json"

// MaintenanceRepository is the interface that wraps bulk audio reference operations
type MaintenanceRepository interface {
	// Method AudioStats counts non-NULL audio references of question, feedback and answer columns.
	AudioStats(ctx context.Context) (models.AudioStats, error)
	// Method AudioURLs lists every non-empty audio reference.
	AudioURLs(ctx context.Context) ([]string, error)
	// Method ClearAllAudio sets every audio column counted in "stats" to NULL in a single transaction.
	//
	// Columns with a zero count are left untouched.
	ClearAllAudio(ctx context.Context, stats models.AudioStats) error
	// Method CountQuizQuestionAudio counts quiz questions of "level" (and "subject" when not empty) with an audio reference.
	CountQuizQuestionAudio(ctx context.Context, level, subject string) (int, error)
	// Method ClearQuizQuestionAudio clears the references counted by CountQuizQuestionAudio in a single transaction
	// and returns the number of rows cleared.
	ClearQuizQuestionAudio(ctx context.Context, level, subject string) (int64, error)
}

// Confirmer asks the operator to approve a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type maintenanceService struct {
	repo      MaintenanceRepository
	storage   ObjectStorage
	confirmer Confirmer
	logger    *zap.Logger
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(repo MaintenanceRepository, store ObjectStorage, confirmer Confirmer, logger *zap.Logger) *maintenanceService {
	return &maintenanceService{
		repo:      repo,
		storage:   store,
		confirmer: confirmer,
		logger:    logger,
	}
}

// ClearAudio deletes every referenced narration from storage and clears all audio columns.
//
// Nothing is asked when no reference exists. A failed object deletion is logged and counted out,
// it never stops the run. Declining the prompt returns a Cancelled result without changes.
func (s *maintenanceService) ClearAudio(ctx context.Context) (models.ClearAudioResult, error) {
	stats, err := s.repo.AudioStats(ctx)
	if err != nil {
		return models.ClearAudioResult{}, err
	}
	result := models.ClearAudioResult{Initial: stats, Remaining: stats}

	s.logger.Info("audio references found",
		zap.Int("questions", stats.Questions),
		zap.Int("feedbacks", stats.Feedbacks),
		zap.Int("answers", stats.Answers),
	)
	if stats.Total() == 0 {
		s.logger.Info("no audio references to clear")
		return result, nil
	}

	ok, err := s.confirmer.Confirm(ctx, fmt.Sprintf(
		"This will delete %d audio files (%d questions, %d feedbacks, %d answers) and clear their references. Continue? (yes/no): ",
		stats.Total(), stats.Questions, stats.Feedbacks, stats.Answers))
	if err != nil {
		return result, fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !ok {
		s.logger.Info("clear audio cancelled")
		result.Cancelled = true
		return result, nil
	}

	urls, err := s.repo.AudioURLs(ctx)
	if err != nil {
		return result, err
	}
	result.ReferencedURL = len(urls)

	for _, url := range urls {
		if url == models.AudioProcessingSentinel {
			continue
		}
		key := storage.KeyFromURL(url)
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete audio file", zap.String("key", key), zap.Error(err))
			continue
		}
		result.DeletedFiles++
	}
	s.logger.Info("audio files deleted", zap.Int("deleted", result.DeletedFiles), zap.Int("referenced", len(urls)))

	if err := s.repo.ClearAllAudio(ctx, stats); err != nil {
		return result, err
	}

	remaining, err := s.repo.AudioStats(ctx)
	if err != nil {
		return result, err
	}
	result.Remaining = remaining

	s.logger.Info("audio references cleared", zap.Int("remaining", remaining.Total()))
	return result, nil
}

// ClearQuizQuestions clears quiz question audio references of a level and optional subject.
// Objects in storage are left in place.
func (s *maintenanceService) ClearQuizQuestions(ctx context.Context, level, subject string) (models.ClearQuizQuestionsResult, error) {
	if level == "" {
		return models.ClearQuizQuestionsResult{}, ErrLevelRequired
	}
	log := s.logger.With(zap.String("level", level), zap.String("subject", subject))

	count, err := s.repo.CountQuizQuestionAudio(ctx, level, subject)
	if err != nil {
		return models.ClearQuizQuestionsResult{}, err
	}
	if count == 0 {
		log.Info("no quiz question audio to clear")
		return models.ClearQuizQuestionsResult{}, nil
	}

	scope := "level " + level
	if subject != "" {
		scope += ", subject " + subject
	}
	ok, err := s.confirmer.Confirm(ctx, fmt.Sprintf(
		"This will clear %d quiz question audio references for %s. Continue? (yes/no): ", count, scope))
	if err != nil {
		return models.ClearQuizQuestionsResult{}, fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !ok {
		log.Info("clear quiz questions cancelled")
		return models.ClearQuizQuestionsResult{Cancelled: true}, nil
	}

	cleared, err := s.repo.ClearQuizQuestionAudio(ctx, level, subject)
	if err != nil {
		return models.ClearQuizQuestionsResult{}, err
	}

	log.Info("quiz question audio cleared", zap.Int64("cleared", cleared))
	return models.ClearQuizQuestionsResult{ClearedCount: cleared}, nil
}

// UpdateStories uploads the stories catalogue found at path
func (s *maintenanceService) UpdateStories(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("failed to read stories file", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("failed to read stories file: %w", err)
	}

	url, err := s.storage.Put(ctx, StoriesKey, data, StoriesContentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload stories: %w", err)
	}

	s.logger.Info("stories updated", zap.String("url", url), zap.Int("bytes", len(data)))
	return url, nil
}
