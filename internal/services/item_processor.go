package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bewize/audio-generator/internal/models"
	"github.com/bewize/audio-generator/internal/repositories"
	"github.com/bewize/audio-generator/internal/storage"
	"github.com/bewize/audio-generator/internal/text"
	"github.com/bewize/audio-generator/internal/tts"
	"go.uber.org/zap"
)

var (
	// ErrInitialUpdateFailed is returned when the processing marker could not be written
	ErrInitialUpdateFailed = errors.New("initial update failed")
	// ErrUploadFailed is returned when the narration could not be stored
	ErrUploadFailed = errors.New("storage upload failed")
	// ErrFinalUpdateFailed is returned when the storage key could not be saved on the record
	ErrFinalUpdateFailed = errors.New("final update failed")
	// ErrResetFailed is returned when the audio reference could not be set back to NULL
	// after a failed final update. The record may be left in an inconsistent state.
	ErrResetFailed = errors.New("failed to reset audio reference")
)

// AudioUpdater is the interface that wraps the transactional audio update of a record
type AudioUpdater interface {
	// Method BeginAudioUpdate opens a transaction on a dedicated connection for the audio column of "kind".
	//
	// The returned transaction must always be released, whatever the outcome.
	// An error is returned together with "nil" value if the kind is unknown or no connection could be acquired.
	BeginAudioUpdate(ctx context.Context, kind models.ContentKind) (repositories.AudioTx, error)
}

// Synthesizer is the interface that wraps the text-to-speech call
type Synthesizer interface {
	// Method Synthesize narrates params.Text with the configured voice.
	//
	// API failures are returned as *tts.APIError, timeouts and cancellations wrap tts.ErrSynthesisCancelled.
	Synthesize(ctx context.Context, params models.SynthesisParameters) (models.AudioArtifact, error)
}

// ObjectStorage is the interface that wraps object upload and removal
type ObjectStorage interface {
	// Method Put stores data under key and returns the object URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Method Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
}

// sleepFunc waits for d or until ctx is done
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type itemProcessor struct {
	repo        AudioUpdater
	synthesizer Synthesizer
	storage     ObjectStorage
	staggerStep time.Duration
	sleep       sleepFunc
	logger      *zap.Logger
}

// NewItemProcessor creates a processor narrating one record at a time
func NewItemProcessor(repo AudioUpdater, synthesizer Synthesizer, store ObjectStorage, staggerStep time.Duration, logger *zap.Logger) *itemProcessor {
	return &itemProcessor{
		repo:        repo,
		synthesizer: synthesizer,
		storage:     store,
		staggerStep: staggerStep,
		sleep:       sleepContext,
		logger:      logger,
	}
}

// Process narrates a single record and stores the resulting key on it.
//
// "index" is the position of the record inside its batch; synthesis starts after index*staggerStep.
// A record without speakable text is rejected with a nil error. Every other failure aborts the record
// and is returned, leaving the audio column as it was before the call (or NULL after a failed final update).
func (p *itemProcessor) Process(ctx context.Context, record models.ContentRecord, index int) (models.Outcome, error) {
	log := p.logger.With(zap.String("record_id", record.ID), zap.String("kind", string(record.Kind)))

	tx, err := p.repo.BeginAudioUpdate(ctx, record.Kind)
	if err != nil {
		log.Error("failed to open audio update", zap.Error(err))
		return models.Aborted(record, models.ItemStateStart, err), err
	}
	defer func() {
		if err := tx.Release(); err != nil {
			log.Warn("failed to release connection", zap.Error(err))
		}
	}()

	sanitized, reason := text.Validate(record.Text)
	if reason != "" {
		if err := tx.Rollback(); err != nil {
			return p.abort(tx, log, record, models.ItemStateValidating, err)
		}
		log.Info("record skipped", zap.String("reason", reason))
		return models.Rejected(record, reason), nil
	}

	if err := p.sleep(ctx, time.Duration(index)*p.staggerStep); err != nil {
		return p.abort(tx, log, record, models.ItemStateValidating, err)
	}

	params := tts.ResolveParameters(record.Language, sanitized)
	artifact, err := p.synthesizer.Synthesize(ctx, params)
	if err != nil {
		return p.abort(tx, log, record, models.ItemStateSynthesizing, err)
	}
	if artifact.Size() == 0 {
		return p.abort(tx, log, record, models.ItemStateSynthesizing, tts.ErrEmptyAudio)
	}

	key, err := storage.AudioKey(record.Kind, record.ID)
	if err != nil {
		return p.abort(tx, log, record, models.ItemStateMarking, err)
	}

	if err := tx.MarkProcessing(ctx, record.ID); err != nil {
		return p.abort(tx, log, record, models.ItemStateMarking,
			fmt.Errorf("%w for ID: %s: %w", ErrInitialUpdateFailed, record.ID, err))
	}

	if _, err := p.storage.Put(ctx, key, artifact.Data, artifact.ContentType); err != nil {
		return p.abort(tx, log, record, models.ItemStateUploading,
			fmt.Errorf("%w for %s: %w", ErrUploadFailed, record.ID, err))
	}

	if err := tx.SetAudioRef(ctx, record.ID, key); err != nil {
		return p.compensate(ctx, tx, log, record, key, err)
	}
	if err := tx.Commit(); err != nil {
		return p.compensate(ctx, tx, log, record, key, err)
	}

	log.Info("audio generated", zap.String("key", key), zap.Int("bytes", artifact.Size()))
	return models.Committed(record.WithAudioRef(key)), nil
}

// abort rolls back the open transaction and reports the failure
func (p *itemProcessor) abort(tx repositories.AudioTx, log *zap.Logger, record models.ContentRecord, state models.ItemState, err error) (models.Outcome, error) {
	if rbErr := tx.Rollback(); rbErr != nil {
		log.Warn("rollback failed", zap.Error(rbErr))
	}
	log.Error("record aborted", zap.String("state", string(state)), zap.Error(err))
	return models.Aborted(record, state, err), err
}

// compensate undoes a stored narration whose key could not be saved: the audio column is
// set back to NULL outside the rolled-back transaction and the object is deleted.
// Both steps run even if ctx was cancelled.
func (p *itemProcessor) compensate(ctx context.Context, tx repositories.AudioTx, log *zap.Logger, record models.ContentRecord, key string, cause error) (models.Outcome, error) {
	if err := tx.Rollback(); err != nil {
		log.Warn("rollback failed", zap.Error(err))
	}

	cleanupCtx := context.WithoutCancel(ctx)

	resetErr := tx.ResetAudioRef(cleanupCtx, record.ID)
	if resetErr != nil {
		log.Error("failed to reset audio reference", zap.Error(resetErr))
	}

	if err := p.storage.Delete(cleanupCtx, key); err != nil {
		log.Error("failed to delete orphaned audio", zap.String("key", key), zap.Error(err))
	}

	if resetErr != nil {
		err := fmt.Errorf("%w for ID: %s: %w: %w: %w", ErrFinalUpdateFailed, record.ID, cause, ErrResetFailed, resetErr)
		log.Error("record aborted", zap.String("state", string(models.ItemStatePersisting)), zap.Error(err))
		return models.Aborted(record, models.ItemStatePersisting, err), err
	}

	err := fmt.Errorf("%w for ID: %s: %w", ErrFinalUpdateFailed, record.ID, cause)
	log.Error("record aborted", zap.String("state", string(models.ItemStatePersisting)), zap.Error(err))
	return models.Aborted(record, models.ItemStatePersisting, err), err
}
