package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bewize/audio-generator/internal/models"
	"go.uber.org/zap"
)

const audioStatsQuery = `
	SELECT
		(SELECT COUNT(*) FROM question WHERE question_audio IS NOT NULL) AS questions,
		(SELECT COUNT(*) FROM question WHERE feedback_audio IS NOT NULL) AS feedbacks,
		(SELECT COUNT(*) FROM answer WHERE answer_audio IS NOT NULL) AS answers`

const audioURLsQuery = `
	SELECT question_audio AS url FROM question WHERE question_audio IS NOT NULL
	UNION ALL
	SELECT feedback_audio AS url FROM question WHERE feedback_audio IS NOT NULL
	UNION ALL
	SELECT answer_audio AS url FROM answer WHERE answer_audio IS NOT NULL`

type maintenanceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMaintenanceRepository creates a new instance of the maintenance repository
func NewMaintenanceRepository(db *sql.DB, logger *zap.Logger) *maintenanceRepository {
	return &maintenanceRepository{
		db:     db,
		logger: logger,
	}
}

// AudioStats counts non-NULL audio references per column
func (r *maintenanceRepository) AudioStats(ctx context.Context) (models.AudioStats, error) {
	var stats models.AudioStats
	err := r.db.QueryRowContext(ctx, audioStatsQuery).Scan(&stats.Questions, &stats.Feedbacks, &stats.Answers)
	if err != nil {
		r.logger.Error("failed to count audio references", zap.Error(err))
		return models.AudioStats{}, fmt.Errorf("failed to count audio references: %w", err)
	}
	return stats, nil
}

// AudioURLs lists every non-empty audio reference across all columns
func (r *maintenanceRepository) AudioURLs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, audioURLsQuery)
	if err != nil {
		r.logger.Error("failed to query audio references", zap.Error(err))
		return nil, fmt.Errorf("failed to query audio references: %w", err)
	}
	defer rows.Close()

	urls := []string{}
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan audio reference: %w", err)
		}
		if url != "" {
			urls = append(urls, url)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return urls, nil
}

// ClearAllAudio nulls every audio column counted in stats, in one transaction
func (r *maintenanceRepository) ClearAllAudio(ctx context.Context, stats models.AudioStats) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updates := []struct {
		count int
		query string
	}{
		{stats.Questions, "UPDATE question SET question_audio = NULL WHERE question_audio IS NOT NULL"},
		{stats.Feedbacks, "UPDATE question SET feedback_audio = NULL WHERE feedback_audio IS NOT NULL"},
		{stats.Answers, "UPDATE answer SET answer_audio = NULL WHERE answer_audio IS NOT NULL"},
	}
	for _, u := range updates {
		if u.count == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, u.query); err != nil {
			r.logger.Error("failed to clear audio column", zap.String("query", u.query), zap.Error(err))
			return fmt.Errorf("failed to clear audio references: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// quizQuestionFilter is the join and filter shared by the quiz question count and clear queries
func quizQuestionFilter(level, subject string) (string, []any) {
	clause := `
		JOIN quiz qui ON q.quiz_id = qui.id
		JOIN course c ON qui.course_id = c.id
		JOIN subject s ON c.subject_id = s.id
		JOIN level l ON l.id = c.level_id`
	where := `
		WHERE l.level_name = ?
		AND qui.type = ?
		AND q.question_audio IS NOT NULL`
	args := []any{level, string(models.QuizTypeQuiz)}
	if subject != "" {
		where += `
		AND s.title = ?`
		args = append(args, subject)
	}
	return clause + "%s" + where, args
}

// CountQuizQuestionAudio counts quiz questions of a level (and optional subject) that reference audio
func (r *maintenanceRepository) CountQuizQuestionAudio(ctx context.Context, level, subject string) (int, error) {
	filter, args := quizQuestionFilter(level, subject)
	query := "SELECT COUNT(*) FROM question q" + fmt.Sprintf(filter, "")

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		r.logger.Error("failed to count quiz question audio", zap.Error(err))
		return 0, fmt.Errorf("failed to count quiz question audio: %w", err)
	}
	return count, nil
}

// ClearQuizQuestionAudio nulls question_audio of the quiz questions counted by
// CountQuizQuestionAudio, in one transaction, and returns the number of rows cleared.
func (r *maintenanceRepository) ClearQuizQuestionAudio(ctx context.Context, level, subject string) (int64, error) {
	filter, args := quizQuestionFilter(level, subject)
	query := "UPDATE question q" + fmt.Sprintf(filter, `
		SET q.question_audio = NULL`)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to clear quiz question audio", zap.Error(err))
		return 0, fmt.Errorf("failed to clear quiz question audio: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return affected, nil
}
