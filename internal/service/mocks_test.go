package service

import (
	"context"
	"time"

	"daily-spark/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockCatalogRepository ---

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetCategories(ctx context.Context) ([]*domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *MockCatalogRepository) GetTopicByID(ctx context.Context, topicID string) (*domain.Topic, error) {
	args := m.Called(ctx, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Topic), args.Error(1)
}

func (m *MockCatalogRepository) GetAllTopics(ctx context.Context) ([]*domain.Topic, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Topic), args.Error(1)
}

func (m *MockCatalogRepository) GetActiveTopics(ctx context.Context) ([]*domain.Topic, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Topic), args.Error(1)
}

func (m *MockCatalogRepository) GetActiveTopicsByCategories(ctx context.Context, categoryIDs []string) ([]*domain.Topic, error) {
	args := m.Called(ctx, categoryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Topic), args.Error(1)
}

func (m *MockCatalogRepository) GetQuestions(ctx context.Context, topicID string, difficulty domain.Difficulty) ([]*domain.Question, error) {
	args := m.Called(ctx, topicID, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Question), args.Error(1)
}

func (m *MockCatalogRepository) CreateTopic(ctx context.Context, topic *domain.Topic) error {
	args := m.Called(ctx, topic)
	return args.Error(0)
}

// --- MockProgressRepository ---

type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) GetProgress(ctx context.Context, userID, topicID string) (*domain.UserProgress, error) {
	args := m.Called(ctx, userID, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) CreateProgress(ctx context.Context, progress *domain.UserProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func (m *MockProgressRepository) MarkAsRead(ctx context.Context, userID, topicID string, difficulty domain.Difficulty, at time.Time) error {
	args := m.Called(ctx, userID, topicID, difficulty, at)
	return args.Error(0)
}

func (m *MockProgressRepository) CompleteQuiz(ctx context.Context, userID, topicID string, score int, at time.Time) error {
	args := m.Called(ctx, userID, topicID, score, at)
	return args.Error(0)
}

func (m *MockProgressRepository) GetCompletedTopicIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProgressRepository) CountCompleted(ctx context.Context, userID string, topicIDs []string) (int, error) {
	args := m.Called(ctx, userID, topicIDs)
	return args.Int(0), args.Error(1)
}

// --- MockDailySetRepository ---

type MockDailySetRepository struct {
	mock.Mock
}

func (m *MockDailySetRepository) GetByUserAndDay(ctx context.Context, userID string, day time.Time) (*domain.DailyTopicSet, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyTopicSet), args.Error(1)
}

func (m *MockDailySetRepository) Create(ctx context.Context, userID string, day time.Time, topicIDs []string) (*domain.DailyTopicSet, error) {
	args := m.Called(ctx, userID, day, topicIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyTopicSet), args.Error(1)
}

func (m *MockDailySetRepository) Delete(ctx context.Context, userID string, day time.Time) error {
	args := m.Called(ctx, userID, day)
	return args.Error(0)
}

func (m *MockDailySetRepository) UpdateCompletion(ctx context.Context, setID string, completedCount int, isFullyCompleted bool) error {
	args := m.Called(ctx, setID, completedCount, isFullyCompleted)
	return args.Error(0)
}

// --- MockAttemptRepository ---

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) CountByUserAndTopic(ctx context.Context, userID, topicID string) (int, error) {
	args := m.Called(ctx, userID, topicID)
	return args.Int(0), args.Error(1)
}

// --- MockUserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByResetToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) MarkEmailVerified(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) SetPasswordResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	args := m.Called(ctx, userID, token, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) GetInterestCategoryIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserRepository) ReplaceInterests(ctx context.Context, userID string, categoryIDs []string) error {
	args := m.Called(ctx, userID, categoryIDs)
	return args.Error(0)
}

func (m *MockUserRepository) GetStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserStats), args.Error(1)
}

func (m *MockUserRepository) RecordCompletion(ctx context.Context, userID string, now time.Time) error {
	args := m.Called(ctx, userID, now)
	return args.Error(0)
}

// --- MockNotifier ---

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerificationEmail(ctx context.Context, to, token string) error {
	args := m.Called(ctx, to, token)
	return args.Error(0)
}

func (m *MockNotifier) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	args := m.Called(ctx, to, token)
	return args.Error(0)
}

// --- MockCache ---

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- test doubles shared across service tests ---

// fixedClock pins "now" for day-boundary behavior.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// passthroughTxManager runs the function without a real transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
