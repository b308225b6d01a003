package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bewize/audio-generator/internal/models"
	"go.uber.org/zap"
)

// ErrNoRowsAffected is returned when a single-row audio update matched nothing
var ErrNoRowsAffected = errors.New("no rows affected")

// AudioTx is a transaction on a dedicated connection, scoped to one kind's audio column
type AudioTx interface {
	// MarkProcessing writes the processing sentinel for the record inside the transaction.
	//
	// Exactly one row must be affected, otherwise ErrNoRowsAffected is returned.
	MarkProcessing(ctx context.Context, id string) error
	// SetAudioRef writes the final storage key for the record inside the transaction.
	//
	// Exactly one row must be affected, otherwise ErrNoRowsAffected is returned.
	SetAudioRef(ctx context.Context, id, key string) error
	// Commit commits the transaction
	Commit() error
	// Rollback rolls the transaction back. Calling it on a finished transaction is a no-op.
	Rollback() error
	// ResetAudioRef sets the audio column back to NULL outside the transaction,
	// autocommitted on the same connection. It must be called after Rollback.
	ResetAudioRef(ctx context.Context, id string) error
	// Release rolls back an unfinished transaction and returns the connection to the pool
	Release() error
}

type audioTx struct {
	conn     *sql.Conn
	tx       *sql.Tx
	source   models.ContentSource
	finished bool
	logger   *zap.Logger
}

func (t *audioTx) updateOne(ctx context.Context, exec func(context.Context, string, ...any) (sql.Result, error), value any, id string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", t.source.Table, t.source.AudioColumn)

	result, err := exec(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("failed to update %s.%s: %w", t.source.Table, t.source.AudioColumn, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected != 1 {
		return fmt.Errorf("%w: %d rows for id %s", ErrNoRowsAffected, affected, id)
	}
	return nil
}

// MarkProcessing writes the processing sentinel inside the transaction
func (t *audioTx) MarkProcessing(ctx context.Context, id string) error {
	return t.updateOne(ctx, t.tx.ExecContext, models.AudioProcessingSentinel, id)
}

// SetAudioRef writes the final key inside the transaction
func (t *audioTx) SetAudioRef(ctx context.Context, id, key string) error {
	return t.updateOne(ctx, t.tx.ExecContext, key, id)
}

// Commit commits the transaction
func (t *audioTx) Commit() error {
	t.finished = true
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back the transaction once
func (t *audioTx) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// ResetAudioRef nulls the audio column with an autocommitted statement
func (t *audioTx) ResetAudioRef(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = NULL WHERE id = ?", t.source.Table, t.source.AudioColumn)
	if _, err := t.conn.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to reset %s.%s: %w", t.source.Table, t.source.AudioColumn, err)
	}
	return nil
}

// Release returns the connection to the pool
func (t *audioTx) Release() error {
	if err := t.Rollback(); err != nil {
		t.logger.Warn("rollback on release failed", zap.Error(err))
	}
	if err := t.conn.Close(); err != nil {
		return fmt.Errorf("failed to release connection: %w", err)
	}
	return nil
}
