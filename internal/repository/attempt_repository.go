package repository

import (
	"context"
	"fmt"
	"time"

	"daily-spark/internal/domain"
	"daily-spark/internal/util"

	"github.com/jmoiron/sqlx"
)

// AttemptDatabaseAdapter implements domain.AttemptRepository using sqlx.
type AttemptDatabaseAdapter struct {
	db *sqlx.DB
}

// NewAttemptDatabaseAdapter creates a new instance of AttemptDatabaseAdapter.
func NewAttemptDatabaseAdapter(db *sqlx.DB) domain.AttemptRepository {
	return &AttemptDatabaseAdapter{db: db}
}

// CreateAttempt appends one answer to the attempt log.
func (a *AttemptDatabaseAdapter) CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) error {
	executor := GetExecutor(ctx, a.db)

	attempt.ID = util.NewULID()
	attempt.CreatedAt = time.Now()

	query := `INSERT INTO quiz_attempts (id, user_id, question_id, topic_id, selected_option,
			is_correct, attempt_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := executor.ExecContext(ctx, query,
		attempt.ID,
		attempt.UserID,
		attempt.QuestionID,
		attempt.TopicID,
		attempt.SelectedOption,
		attempt.IsCorrect,
		attempt.AttemptNumber,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz attempt: %w", err)
	}
	return nil
}

// CountByUserAndTopic counts prior attempts for the (user, topic) pair.
func (a *AttemptDatabaseAdapter) CountByUserAndTopic(ctx context.Context, userID, topicID string) (int, error) {
	executor := GetExecutor(ctx, a.db)

	var count int
	query := `SELECT COUNT(*) FROM quiz_attempts WHERE user_id = $1 AND topic_id = $2`
	if err := executor.GetContext(ctx, &count, query, userID, topicID); err != nil {
		return 0, fmt.Errorf("failed to count quiz attempts: %w", err)
	}
	return count, nil
}
