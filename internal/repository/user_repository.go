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

const userColumns = `id, email, password_hash, is_email_verified, verification_token,
	verification_token_expiry, password_reset_token, password_reset_token_expiry,
	total_topics_completed, current_streak, longest_streak, last_activity_date,
	created_at, updated_at, deleted_at`

// UserDatabaseAdapter implements domain.UserRepository using sqlx.
type UserDatabaseAdapter struct {
	db *sqlx.DB
}

// NewUserDatabaseAdapter creates a new instance of UserDatabaseAdapter.
func NewUserDatabaseAdapter(db *sqlx.DB) domain.UserRepository {
	return &UserDatabaseAdapter{db: db}
}

// CreateUser inserts a new user and fills in its generated fields.
func (a *UserDatabaseAdapter) CreateUser(ctx context.Context, user *domain.User) error {
	executor := GetExecutor(ctx, a.db)

	user.ID = util.NewULID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	row := models.FromDomainUser(user)

	query := `INSERT INTO users (id, email, password_hash, is_email_verified,
			verification_token, verification_token_expiry, total_topics_completed,
			current_streak, longest_streak, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :is_email_verified,
			:verification_token, :verification_token_expiry, :total_topics_completed,
			:current_streak, :longest_streak, :created_at, :updated_at)`
	if _, err := executor.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (a *UserDatabaseAdapter) getUser(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	executor := GetExecutor(ctx, a.db)

	var row models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` AND deleted_at IS NULL`
	err := executor.GetContext(ctx, &row, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return models.ToDomainUser(&row), nil
}

// GetUserByEmail retrieves a user by email, or nil when none exists.
func (a *UserDatabaseAdapter) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return a.getUser(ctx, "email = $1", email)
}

// GetUserByID retrieves a user by internal ID, or nil when none exists.
func (a *UserDatabaseAdapter) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return a.getUser(ctx, "id = $1", userID)
}

// GetUserByVerificationToken retrieves the user holding an email
// verification token, or nil.
func (a *UserDatabaseAdapter) GetUserByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	return a.getUser(ctx, "verification_token = $1", token)
}

// GetUserByResetToken retrieves the user holding a password reset token,
// or nil.
func (a *UserDatabaseAdapter) GetUserByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return a.getUser(ctx, "password_reset_token = $1", token)
}

// MarkEmailVerified flips the verification flag and clears the token.
func (a *UserDatabaseAdapter) MarkEmailVerified(ctx context.Context, userID string) error {
	executor := GetExecutor(ctx, a.db)

	query := `UPDATE users SET
			is_email_verified = TRUE,
			verification_token = NULL,
			verification_token_expiry = NULL,
			updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL`
	return a.execOne(ctx, executor, query, time.Now(), userID)
}

// SetPasswordResetToken stores a reset token with its expiry.
func (a *UserDatabaseAdapter) SetPasswordResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	executor := GetExecutor(ctx, a.db)

	query := `UPDATE users SET
			password_reset_token = $1,
			password_reset_token_expiry = $2,
			updated_at = $3
		WHERE id = $4 AND deleted_at IS NULL`
	return a.execOne(ctx, executor, query, token, expiry, time.Now(), userID)
}

// UpdatePassword swaps the password hash and clears any reset token.
func (a *UserDatabaseAdapter) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	executor := GetExecutor(ctx, a.db)

	query := `UPDATE users SET
			password_hash = $1,
			password_reset_token = NULL,
			password_reset_token_expiry = NULL,
			updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL`
	return a.execOne(ctx, executor, query, passwordHash, time.Now(), userID)
}

// GetInterestCategoryIDs returns the user's chosen category IDs.
func (a *UserDatabaseAdapter) GetInterestCategoryIDs(ctx context.Context, userID string) ([]string, error) {
	executor := GetExecutor(ctx, a.db)

	var ids []string
	query := `SELECT category_id FROM user_interests WHERE user_id = $1`
	if err := executor.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user interests: %w", err)
	}
	return ids, nil
}

// ReplaceInterests swaps the user's interest rows for the given category
// set. Meant to run inside a transaction.
func (a *UserDatabaseAdapter) ReplaceInterests(ctx context.Context, userID string, categoryIDs []string) error {
	executor := GetExecutor(ctx, a.db)

	if _, err := executor.ExecContext(ctx, `DELETE FROM user_interests WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear user interests: %w", err)
	}

	query := `INSERT INTO user_interests (user_id, category_id, created_at) VALUES ($1, $2, $3)`
	now := time.Now()
	for _, categoryID := range categoryIDs {
		if _, err := executor.ExecContext(ctx, query, userID, categoryID, now); err != nil {
			return fmt.Errorf("failed to insert user interest: %w", err)
		}
	}
	return nil
}

// GetStats returns the statistics slice of the user record, or nil when the
// user does not exist.
func (a *UserDatabaseAdapter) GetStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	executor := GetExecutor(ctx, a.db)

	var row struct {
		CurrentStreak        int          `db:"current_streak"`
		LongestStreak        int          `db:"longest_streak"`
		TotalTopicsCompleted int          `db:"total_topics_completed"`
		LastActivityDate     sql.NullTime `db:"last_activity_date"`
	}
	query := `SELECT current_streak, longest_streak, total_topics_completed, last_activity_date
		FROM users WHERE id = $1 AND deleted_at IS NULL`
	err := executor.GetContext(ctx, &row, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return &domain.UserStats{
		CurrentStreak:        row.CurrentStreak,
		LongestStreak:        row.LongestStreak,
		TotalTopicsCompleted: row.TotalTopicsCompleted,
		LastActivityDate:     util.NullTimeToTimePtr(row.LastActivityDate),
	}, nil
}

// RecordCompletion bumps the completion counter, streak bookkeeping and
// last-activity date for one completed topic. The streak arithmetic runs in
// Go so the day-boundary rules live in one place.
func (a *UserDatabaseAdapter) RecordCompletion(ctx context.Context, userID string, now time.Time) error {
	stats, err := a.GetStats(ctx, userID)
	if err != nil {
		return err
	}
	if stats == nil {
		return sql.ErrNoRows
	}
	current, longest := stats.NextStreak(now)

	executor := GetExecutor(ctx, a.db)
	query := `UPDATE users SET
			total_topics_completed = total_topics_completed + 1,
			current_streak = $1,
			longest_streak = $2,
			last_activity_date = $3,
			updated_at = $4
		WHERE id = $5 AND deleted_at IS NULL`
	return a.execOne(ctx, executor, query, current, longest, domain.Midnight(now), time.Now(), userID)
}

func (a *UserDatabaseAdapter) execOne(ctx context.Context, executor DBTX, query string, args ...interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
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
