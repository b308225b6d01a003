package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bewize/audio-generator/internal/models"
	"go.uber.org/zap"
)

type contentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewContentRepository creates a new instance of the content repository
func NewContentRepository(db *sql.DB, logger *zap.Logger) *contentRepository {
	return &contentRepository{
		db:     db,
		logger: logger,
	}
}

// pendingQuery builds the selection query of records of the given kind that have no audio yet.
// Table and column names come from the fixed kind mapping; level and subject are bound parameters.
func pendingQuery(kind models.ContentKind, level, subject string) (string, []any, error) {
	src, err := kind.Source()
	if err != nil {
		return "", nil, err
	}

	alias := "que"
	join := ""
	if src.Table == "answer" {
		alias = "ans"
		join = `
		JOIN sub_question sub_q ON que.id = sub_q.question_id
		JOIN answer ans ON sub_q.id = ans.sub_question_id`
	}

	query := fmt.Sprintf(`
		SELECT %[1]s.id, s.title AS language, %[1]s.%[2]s, %[1]s.%[3]s
		FROM subject s
		JOIN course c ON s.id = c.subject_id
		JOIN level l ON l.id = c.level_id
		JOIN quiz qui ON c.id = qui.course_id
		JOIN question que ON qui.id = que.quiz_id%[4]s
		WHERE l.level_name = ?
		AND qui.type = ?
		AND (%[1]s.%[3]s IS NULL OR TRIM(%[1]s.%[3]s) = '')`,
		alias, src.TextColumn, src.AudioColumn, join)
	args := []any{level, string(src.QuizType)}

	if subject != "" {
		query += `
		AND s.title = ?`
		args = append(args, subject)
	}
	query += fmt.Sprintf(`
		ORDER BY %s.id`, alias)

	return query, args, nil
}

// FindPending retrieves every record of the given kind, level and optional subject
// whose audio reference is NULL or blank.
func (r *contentRepository) FindPending(ctx context.Context, kind models.ContentKind, level, subject string) ([]models.ContentRecord, error) {
	query, args, err := pendingQuery(kind, level, subject)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query pending records", zap.String("kind", string(kind)), zap.Error(err))
		return nil, fmt.Errorf("failed to query pending records: %w", err)
	}
	defer rows.Close()

	records := []models.ContentRecord{}
	for rows.Next() {
		var (
			record models.ContentRecord
			text   sql.NullString
			audio  sql.NullString
		)
		if err := rows.Scan(&record.ID, &record.Language, &text, &audio); err != nil {
			r.logger.Error("failed to scan pending record", zap.Error(err))
			return nil, fmt.Errorf("failed to scan pending record: %w", err)
		}
		record.Kind = kind
		record.Text = text.String
		if audio.Valid {
			record.AudioRef = &audio.String
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// BeginAudioUpdate checks out a dedicated connection from the pool and opens a
// transaction on it. The returned AudioTx must always be released.
func (r *contentRepository) BeginAudioUpdate(ctx context.Context, kind models.ContentKind) (AudioTx, error) {
	src, err := kind.Source()
	if err != nil {
		return nil, err
	}

	conn, err := r.db.Conn(ctx)
	if err != nil {
		r.logger.Error("failed to acquire connection", zap.Error(err))
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		conn.Close()
		r.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &audioTx{
		conn:   conn,
		tx:     tx,
		source: src,
		logger: r.logger,
	}, nil
}
