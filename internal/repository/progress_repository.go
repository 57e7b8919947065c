package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daily-spark/internal/domain"
	"daily-spark/internal/repository/models"
	"daily-spark/internal/util"

	"github.com/jmoiron/sqlx"
)

const progressColumns = `id, user_id, topic_id, status, difficulty_chosen, marked_as_read_at,
	quiz_completed, quiz_score, quiz_completed_at, completed_at, created_at, updated_at`

// ProgressDatabaseAdapter implements domain.ProgressRepository using sqlx.
type ProgressDatabaseAdapter struct {
	db *sqlx.DB
}

// NewProgressDatabaseAdapter creates a new instance of ProgressDatabaseAdapter.
func NewProgressDatabaseAdapter(db *sqlx.DB) domain.ProgressRepository {
	return &ProgressDatabaseAdapter{db: db}
}

// GetProgress returns the progress record for the (user, topic) pair, or
// nil when the topic has never been touched.
func (a *ProgressDatabaseAdapter) GetProgress(ctx context.Context, userID, topicID string) (*domain.UserProgress, error) {
	executor := GetExecutor(ctx, a.db)

	var row models.UserProgress
	query := `SELECT ` + progressColumns + `
		FROM user_progress
		WHERE user_id = $1 AND topic_id = $2`
	err := executor.GetContext(ctx, &row, query, userID, topicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress for user %s topic %s: %w", userID, topicID, err)
	}
	return models.ToDomainProgress(&row), nil
}

// CreateProgress inserts a fresh progress record and fills in its generated
// fields.
func (a *ProgressDatabaseAdapter) CreateProgress(ctx context.Context, progress *domain.UserProgress) error {
	executor := GetExecutor(ctx, a.db)

	progress.ID = util.NewULID()
	progress.CreatedAt = time.Now()
	progress.UpdatedAt = progress.CreatedAt

	query := `INSERT INTO user_progress (id, user_id, topic_id, status, difficulty_chosen,
			marked_as_read_at, quiz_completed, quiz_score, quiz_completed_at, completed_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := executor.ExecContext(ctx, query,
		progress.ID,
		progress.UserID,
		progress.TopicID,
		string(progress.Status),
		util.StringToNullString(string(progress.DifficultyChosen)),
		util.TimePtrToNullTime(progress.MarkedAsReadAt),
		progress.QuizCompleted,
		progress.QuizScore,
		util.TimePtrToNullTime(progress.QuizCompletedAt),
		util.TimePtrToNullTime(progress.CompletedAt),
		progress.CreatedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create progress: %w", err)
	}
	return nil
}

// MarkAsRead upserts the (user, topic) record, stamping marked_as_read_at
// and forcing the status to IN_PROGRESS. COMPLETED records keep their
// status; a non-empty difficulty always overwrites the chosen tier.
func (a *ProgressDatabaseAdapter) MarkAsRead(ctx context.Context, userID, topicID string, difficulty domain.Difficulty, at time.Time) error {
	executor := GetExecutor(ctx, a.db)

	query := `INSERT INTO user_progress (id, user_id, topic_id, status, difficulty_chosen,
			marked_as_read_at, quiz_completed, quiz_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, 0, $7, $7)
		ON CONFLICT (user_id, topic_id) DO UPDATE SET
			status = CASE WHEN user_progress.status = 'COMPLETED' THEN user_progress.status ELSE EXCLUDED.status END,
			difficulty_chosen = COALESCE(EXCLUDED.difficulty_chosen, user_progress.difficulty_chosen),
			marked_as_read_at = EXCLUDED.marked_as_read_at,
			updated_at = EXCLUDED.updated_at`
	_, err := executor.ExecContext(ctx, query,
		util.NewULID(),
		userID,
		topicID,
		string(domain.ProgressInProgress),
		util.StringToNullString(string(difficulty)),
		at,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to mark topic %s as read: %w", topicID, err)
	}
	return nil
}

// CompleteQuiz transitions the record to COMPLETED with the final score.
func (a *ProgressDatabaseAdapter) CompleteQuiz(ctx context.Context, userID, topicID string, score int, at time.Time) error {
	executor := GetExecutor(ctx, a.db)

	query := `UPDATE user_progress SET
			status = $1,
			quiz_completed = TRUE,
			quiz_score = $2,
			quiz_completed_at = $3,
			completed_at = $3,
			updated_at = $4
		WHERE user_id = $5 AND topic_id = $6`
	result, err := executor.ExecContext(ctx, query,
		string(domain.ProgressCompleted),
		score,
		at,
		time.Now(),
		userID,
		topicID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete quiz for topic %s: %w", topicID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetCompletedTopicIDs returns the IDs of every topic the user has completed.
func (a *ProgressDatabaseAdapter) GetCompletedTopicIDs(ctx context.Context, userID string) ([]string, error) {
	executor := GetExecutor(ctx, a.db)

	var ids []string
	query := `SELECT topic_id FROM user_progress WHERE user_id = $1 AND status = $2`
	if err := executor.SelectContext(ctx, &ids, query, userID, string(domain.ProgressCompleted)); err != nil {
		return nil, fmt.Errorf("failed to get completed topic ids: %w", err)
	}
	return ids, nil
}

// CountCompleted counts how many of topicIDs the user has completed.
func (a *ProgressDatabaseAdapter) CountCompleted(ctx context.Context, userID string, topicIDs []string) (int, error) {
	if len(topicIDs) == 0 {
		return 0, nil
	}
	executor := GetExecutor(ctx, a.db)

	query, args, err := sqlx.In(`SELECT COUNT(*) FROM user_progress
		WHERE user_id = ? AND status = ? AND topic_id IN (?)`,
		userID, string(domain.ProgressCompleted), topicIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to build count-completed query: %w", err)
	}

	var count int
	if err := executor.GetContext(ctx, &count, a.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count completed topics: %w", err)
	}
	return count, nil
}
