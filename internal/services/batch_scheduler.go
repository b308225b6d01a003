package services

import (
	"context"
	"time"

	"github.com/bewize/audio-generator/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecordProcessor is the interface that wraps the processing of a single record
type RecordProcessor interface {
	// Method Process narrates one record.
	//
	// "index" is the record's position inside its chunk. A rejected record is reported
	// through the outcome with a nil error; an aborted record returns its error.
	Process(ctx context.Context, record models.ContentRecord, index int) (models.Outcome, error)
}

// DefaultChunkSize is the number of records narrated concurrently
const DefaultChunkSize = 2

// DefaultBatchDelay is the pause between two chunks
const DefaultBatchDelay = 10 * time.Second

type batchScheduler struct {
	processor  RecordProcessor
	chunkSize  int
	batchDelay time.Duration
	sleep      sleepFunc
	logger     *zap.Logger
}

// NewBatchScheduler creates a scheduler running chunkSize records at a time.
// Non-positive values fall back to the defaults.
func NewBatchScheduler(processor RecordProcessor, chunkSize int, batchDelay time.Duration, logger *zap.Logger) *batchScheduler {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if batchDelay < 0 {
		batchDelay = DefaultBatchDelay
	}
	return &batchScheduler{
		processor:  processor,
		chunkSize:  chunkSize,
		batchDelay: batchDelay,
		sleep:      sleepContext,
		logger:     logger,
	}
}

// Run processes records chunk by chunk and returns the committed ones, in input order.
//
// Records of a chunk run concurrently and all of them finish before the chunk is judged.
// The first aborted record fails the whole run and later chunks are not started.
func (s *batchScheduler) Run(ctx context.Context, records []models.ContentRecord) ([]models.ContentRecord, error) {
	results := []models.ContentRecord{}
	if len(records) == 0 {
		return results, nil
	}

	chunks := (len(records) + s.chunkSize - 1) / s.chunkSize
	for c := 0; c < chunks; c++ {
		start := c * s.chunkSize
		end := min(start+s.chunkSize, len(records))
		chunk := records[start:end]

		s.logger.Debug("processing chunk",
			zap.Int("chunk", c+1),
			zap.Int("chunks", chunks),
			zap.Int("size", len(chunk)),
		)

		outcomes := make([]models.Outcome, len(chunk))
		var g errgroup.Group
		for i, record := range chunk {
			g.Go(func() error {
				outcome, err := s.processor.Process(ctx, record, i)
				outcomes[i] = outcome
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for _, outcome := range outcomes {
			if outcome.Kind == models.OutcomeCommitted {
				results = append(results, outcome.Record)
			}
		}

		if c < chunks-1 {
			if err := s.sleep(ctx, s.batchDelay); err != nil {
				return nil, err
			}
		}
	}

	s.logger.Info("batch finished", zap.Int("records", len(records)), zap.Int("committed", len(results)))
	return results, nil
}
