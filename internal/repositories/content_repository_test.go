package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bewize/audio-generator/internal/models"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestRepository creates a content repository with a mock database
func setupTestRepository(t *testing.T) (*contentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	repo := NewContentRepository(db, logger)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewContentRepository(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	db := &sql.DB{}

	repo := NewContentRepository(db, logger)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, logger, repo.logger)
}

func TestPendingQuery(t *testing.T) {
	tests := []struct {
		name         string
		kind         models.ContentKind
		subject      string
		contains     []string
		notContains  []string
		expectedArgs []any
		expectedErr  bool
	}{
		{
			name: "flashcard questions",
			kind: models.ContentKindFlashcardQuestion,
			contains: []string{
				"SELECT que.id, s.title AS language, que.question, que.question_audio",
				"(que.question_audio IS NULL OR TRIM(que.question_audio) = '')",
				"ORDER BY que.id",
			},
			notContains:  []string{"sub_question", "AND s.title = ?"},
			expectedArgs: []any{"A1", "FLASHCARD"},
		},
		{
			name: "flashcard answers join sub questions",
			kind: models.ContentKindFlashcardAnswer,
			contains: []string{
				"SELECT ans.id, s.title AS language, ans.answer, ans.answer_audio",
				"JOIN sub_question sub_q ON que.id = sub_q.question_id",
				"JOIN answer ans ON sub_q.id = ans.sub_question_id",
				"ORDER BY ans.id",
			},
			expectedArgs: []any{"A1", "FLASHCARD"},
		},
		{
			name:         "quiz feedbacks",
			kind:         models.ContentKindQuizFeedback,
			contains:     []string{"que.feedback, que.feedback_audio"},
			expectedArgs: []any{"A1", "QUIZ"},
		},
		{
			name:         "quiz questions with subject",
			kind:         models.ContentKindQuizQuestion,
			subject:      "ENGLISH",
			contains:     []string{"que.question, que.question_audio", "AND s.title = ?"},
			expectedArgs: []any{"A1", "QUIZ", "ENGLISH"},
		},
		{
			name:        "unknown kind",
			kind:        "stories",
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := pendingQuery(tt.kind, "A1", tt.subject)
			if tt.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, query, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, query, s)
			}
			assert.Equal(t, tt.expectedArgs, args)
		})
	}
}

func TestContentRepository_FindPending(t *testing.T) {
	columns := []string{"id", "language", "question", "question_audio"}
	query := `SELECT que\.id, s\.title AS language, que\.question, que\.question_audio FROM subject s`

	tests := []struct {
		name          string
		subject       string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expected      []models.ContentRecord
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(columns).
					AddRow("q1", "ENGLISH", "What is your name?", nil).
					AddRow("q2", "FRENSH", "Bonjour", "  ")
				mock.ExpectQuery(query).
					WithArgs("A1", "FLASHCARD").
					WillReturnRows(rows)
			},
			expected: []models.ContentRecord{
				{ID: "q1", Kind: models.ContentKindFlashcardQuestion, Language: models.LanguageEnglish, Text: "What is your name?"},
				{ID: "q2", Kind: models.ContentKindFlashcardQuestion, Language: models.LanguageFrench, Text: "Bonjour", AudioRef: strPtr("  ")},
			},
		},
		{
			name:    "subject filter",
			subject: "MATH",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(columns).AddRow("q3", "MATH", "2 + 2 = ?", nil)
				mock.ExpectQuery(query+`.*AND s\.title = \?`).
					WithArgs("A1", "FLASHCARD", "MATH").
					WillReturnRows(rows)
			},
			expected: []models.ContentRecord{
				{ID: "q3", Kind: models.ContentKindFlashcardQuestion, Language: models.LanguageMath, Text: "2 + 2 = ?"},
			},
		},
		{
			name: "empty result",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).
					WithArgs("A1", "FLASHCARD").
					WillReturnRows(sqlmock.NewRows(columns))
			},
			expected: []models.ContentRecord{},
		},
		{
			name: "database query error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).
					WithArgs("A1", "FLASHCARD").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
		{
			name: "rows iteration error",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(columns).
					AddRow("q1", "ENGLISH", "Hello", nil).
					RowError(0, errors.New("row error"))
				mock.ExpectQuery(query).
					WithArgs("A1", "FLASHCARD").
					WillReturnRows(rows)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			result, err := repo.FindPending(context.Background(), models.ContentKindFlashcardQuestion, "A1", tt.subject)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, result)
				assert.Equal(t, tt.expected, result)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestContentRepository_FindPending_UnknownKind(t *testing.T) {
	repo, mock, cleanup := setupTestRepository(t)
	defer cleanup()

	result, err := repo.FindPending(context.Background(), "stories", "A1", "")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_BeginAudioUpdate(t *testing.T) {
	const (
		updateAudio = `UPDATE answer SET answer_audio = \? WHERE id = \?`
		resetAudio  = `UPDATE answer SET answer_audio = NULL WHERE id = \?`
		key         = "audios-bewize/flashcards/answers/a1.mp3"
	)

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		run       func(t *testing.T, tx AudioTx)
	}{
		{
			name: "commit path",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(updateAudio).WithArgs(models.AudioProcessingSentinel, "a1").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(updateAudio).WithArgs(key, "a1").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			run: func(t *testing.T, tx AudioTx) {
				require.NoError(t, tx.MarkProcessing(context.Background(), "a1"))
				require.NoError(t, tx.SetAudioRef(context.Background(), "a1", key))
				require.NoError(t, tx.Commit())
			},
		},
		{
			name: "no row matched",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(updateAudio).WithArgs(models.AudioProcessingSentinel, "a1").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			run: func(t *testing.T, tx AudioTx) {
				err := tx.MarkProcessing(context.Background(), "a1")
				assert.ErrorIs(t, err, ErrNoRowsAffected)
			},
		},
		{
			name: "exec error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(updateAudio).WithArgs(models.AudioProcessingSentinel, "a1").WillReturnError(errors.New("lock wait timeout"))
				mock.ExpectRollback()
			},
			run: func(t *testing.T, tx AudioTx) {
				err := tx.MarkProcessing(context.Background(), "a1")
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to update answer.answer_audio")
			},
		},
		{
			name: "rollback then reset outside transaction",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(updateAudio).WithArgs(models.AudioProcessingSentinel, "a1").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectRollback()
				mock.ExpectExec(resetAudio).WithArgs("a1").WillReturnResult(sqlmock.NewResult(0, 1))
			},
			run: func(t *testing.T, tx AudioTx) {
				require.NoError(t, tx.MarkProcessing(context.Background(), "a1"))
				require.NoError(t, tx.Rollback())
				require.NoError(t, tx.Rollback())
				require.NoError(t, tx.ResetAudioRef(context.Background(), "a1"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			tx, err := repo.BeginAudioUpdate(context.Background(), models.ContentKindFlashcardAnswer)
			require.NoError(t, err)

			tt.run(t, tx)
			require.NoError(t, tx.Release())

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestContentRepository_BeginAudioUpdate_Errors(t *testing.T) {
	t.Run("unknown kind", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		tx, err := repo.BeginAudioUpdate(context.Background(), "stories")
		assert.Error(t, err)
		assert.Nil(t, tx)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin fails", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		tx, err := repo.BeginAudioUpdate(context.Background(), models.ContentKindQuizQuestion)
		require.Error(t, err)
		assert.Nil(t, tx)
		assert.Contains(t, err.Error(), "failed to begin transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "conn done", err: sql.ErrConnDone, expected: false},
		{name: "driver bad conn", err: fmt.Errorf("failed to query pending records: %w", driver.ErrBadConn), expected: true},
		{name: "invalid conn", err: fmt.Errorf("failed to query pending records: %w", mysql.ErrInvalidConn), expected: true},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:3306: connect: connection refused"), expected: true},
		{name: "legacy message", err: errors.New("Database connection failed"), expected: true},
		{name: "syntax error", err: errors.New("Error 1064: You have an error in your SQL syntax"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsConnectionError(tt.err))
		})
	}
}

func strPtr(s string) *string {
	return &s
}
