package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"daily-spark/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userTestCols = []string{
	"id", "email", "password_hash", "is_email_verified", "verification_token",
	"verification_token_expiry", "password_reset_token", "password_reset_token_expiry",
	"total_topics_completed", "current_streak", "longest_streak", "last_activity_date",
	"created_at", "updated_at", "deleted_at",
}

func TestUserDatabaseAdapter_GetUserByEmail(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserDatabaseAdapter(db)
	defer db.Close()

	now := time.Now()

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows(userTestCols).
			AddRow("user1", "learner@example.com", "$2a$10$hash", true, nil, nil, nil, nil,
				7, 3, 5, now, now, now, nil)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1 AND deleted_at IS NULL`).
			WithArgs("learner@example.com").
			WillReturnRows(rows)

		user, err := repo.GetUserByEmail(context.Background(), "learner@example.com")

		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "user1", user.ID)
		assert.True(t, user.IsEmailVerified)
		assert.Equal(t, 3, user.CurrentStreak)
		assert.Equal(t, 7, user.TotalTopicsCompleted)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1 AND deleted_at IS NULL`).
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetUserByEmail(context.Background(), "nobody@example.com")

		assert.NoError(t, err)
		assert.Nil(t, user)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDatabaseAdapter_CreateUser(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserDatabaseAdapter(db)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &domain.User{
		Email:             "new@example.com",
		PasswordHash:      "$2a$10$hash",
		VerificationToken: "tok",
	}
	err := repo.CreateUser(context.Background(), user)

	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID, "CreateUser should assign an ID")
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDatabaseAdapter_RecordCompletion(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserDatabaseAdapter(db)
	defer db.Close()

	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	yesterday := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)

	statsRows := sqlmock.NewRows([]string{"current_streak", "longest_streak", "total_topics_completed", "last_activity_date"}).
		AddRow(3, 5, 7, yesterday)
	mock.ExpectQuery(`SELECT current_streak, longest_streak, total_topics_completed, last_activity_date`).
		WithArgs("user1").
		WillReturnRows(statsRows)

	// Active yesterday, so the streak extends to 4; longest stays 5.
	mock.ExpectExec(`UPDATE users SET\s+total_topics_completed = total_topics_completed \+ 1`).
		WithArgs(4, 5, domain.Midnight(now), sqlmock.AnyArg(), "user1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RecordCompletion(context.Background(), "user1", now)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDatabaseAdapter_RecordCompletion_StreakReset(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserDatabaseAdapter(db)
	defer db.Close()

	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	lastWeek := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	statsRows := sqlmock.NewRows([]string{"current_streak", "longest_streak", "total_topics_completed", "last_activity_date"}).
		AddRow(6, 6, 20, lastWeek)
	mock.ExpectQuery(`SELECT current_streak, longest_streak, total_topics_completed, last_activity_date`).
		WithArgs("user1").
		WillReturnRows(statsRows)

	// Gap since the last activity, so the streak restarts at 1.
	mock.ExpectExec(`UPDATE users SET\s+total_topics_completed = total_topics_completed \+ 1`).
		WithArgs(1, 6, domain.Midnight(now), sqlmock.AnyArg(), "user1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RecordCompletion(context.Background(), "user1", now)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDatabaseAdapter_ReplaceInterests(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserDatabaseAdapter(db)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM user_interests WHERE user_id = \$1`).
		WithArgs("user1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_interests (user_id, category_id, created_at) VALUES ($1, $2, $3)`)).
		WithArgs("user1", "cat1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_interests (user_id, category_id, created_at) VALUES ($1, $2, $3)`)).
		WithArgs("user1", "cat2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ReplaceInterests(context.Background(), "user1", []string{"cat1", "cat2"})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
