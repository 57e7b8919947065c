package repository

import (
	"context"
	"testing"

	"daily-spark/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestAttemptDatabaseAdapter_CreateAttempt(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAttemptDatabaseAdapter(db)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO quiz_attempts`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	attempt := &domain.QuizAttempt{
		UserID:         "user1",
		QuestionID:     "q1",
		TopicID:        "topic1",
		SelectedOption: "B",
		IsCorrect:      true,
		AttemptNumber:  1,
	}
	err := repo.CreateAttempt(context.Background(), attempt)

	assert.NoError(t, err)
	assert.NotEmpty(t, attempt.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptDatabaseAdapter_CountByUserAndTopic(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAttemptDatabaseAdapter(db)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM quiz_attempts WHERE user_id = \$1 AND topic_id = \$2`).
		WithArgs("user1", "topic1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountByUserAndTopic(context.Background(), "user1", "topic1")

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
