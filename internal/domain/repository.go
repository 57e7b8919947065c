package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateDailySet is returned by DailySetRepository.Create when another
// writer already created the (user, day) set. The caller re-reads and uses
// the winner's set.
var ErrDuplicateDailySet = errors.New("daily topic set already exists for this user and day")

// CatalogRepository is the read side of the content catalog: categories,
// topics and their tiered questions. The core never writes through it except
// for content-management tooling.
type CatalogRepository interface {
	GetCategories(ctx context.Context) ([]*Category, error)
	GetTopicByID(ctx context.Context, topicID string) (*Topic, error)
	GetAllTopics(ctx context.Context) ([]*Topic, error)
	// GetActiveTopics returns every active topic with its category preloaded.
	// Randomization happens in the service with an injected source, so the
	// repository returns the full candidate set in stable order.
	GetActiveTopics(ctx context.Context) ([]*Topic, error)
	GetActiveTopicsByCategories(ctx context.Context, categoryIDs []string) ([]*Topic, error)
	GetQuestions(ctx context.Context, topicID string, difficulty Difficulty) ([]*Question, error)
	CreateTopic(ctx context.Context, topic *Topic) error
}

// ProgressRepository persists per (user, topic) lifecycle records.
type ProgressRepository interface {
	// GetProgress returns nil, nil when no record exists (UNSEEN).
	GetProgress(ctx context.Context, userID, topicID string) (*UserProgress, error)
	CreateProgress(ctx context.Context, progress *UserProgress) error
	// MarkAsRead upserts the record, stamping markedAsReadAt and forcing
	// status to IN_PROGRESS. A non-empty difficulty overwrites the chosen
	// tier on an existing record.
	MarkAsRead(ctx context.Context, userID, topicID string, difficulty Difficulty, at time.Time) error
	// CompleteQuiz transitions the record to COMPLETED with the final score.
	CompleteQuiz(ctx context.Context, userID, topicID string, score int, at time.Time) error
	GetCompletedTopicIDs(ctx context.Context, userID string) ([]string, error)
	// CountCompleted counts how many of topicIDs are COMPLETED for the user.
	CountCompleted(ctx context.Context, userID string, topicIDs []string) (int, error)
}

// DailySetRepository persists daily topic sets and their ordered entries.
type DailySetRepository interface {
	// GetByUserAndDay returns nil, nil when no set exists for the day.
	// Entries come back ordered by display order with topics and categories
	// preloaded.
	GetByUserAndDay(ctx context.Context, userID string, day time.Time) (*DailyTopicSet, error)
	// Create persists a new set with display orders 1..len(topicIDs). It
	// returns ErrDuplicateDailySet when the (user, day) uniqueness
	// constraint rejects the insert.
	Create(ctx context.Context, userID string, day time.Time, topicIDs []string) (*DailyTopicSet, error)
	Delete(ctx context.Context, userID string, day time.Time) error
	UpdateCompletion(ctx context.Context, setID string, completedCount int, isFullyCompleted bool) error
}

// AttemptRepository is the append-only quiz answer log.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *QuizAttempt) error
	CountByUserAndTopic(ctx context.Context, userID, topicID string) (int, error)
}

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*User, error)
	GetUserByResetToken(ctx context.Context, token string) (*User, error)
	MarkEmailVerified(ctx context.Context, userID string) error
	SetPasswordResetToken(ctx context.Context, userID, token string, expiry time.Time) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	GetInterestCategoryIDs(ctx context.Context, userID string) ([]string, error)
	ReplaceInterests(ctx context.Context, userID string, categoryIDs []string) error

	GetStats(ctx context.Context, userID string) (*UserStats, error)
	// RecordCompletion bumps the completion counter, last-activity date and
	// streak bookkeeping for one completed topic.
	RecordCompletion(ctx context.Context, userID string, now time.Time) error
}

// TransactionManager runs a function inside a store transaction. Repositories
// participate by pulling the transaction out of the context.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
