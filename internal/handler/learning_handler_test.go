package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"daily-spark/internal/domain"
	"daily-spark/internal/dto"
	"daily-spark/internal/handler"
	"daily-spark/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUserID  = "01HGZ8VNRYXS8QKNJV5GRWPWDQ"
	testTopicID = "01HGZ8VNRYXS8QKNJV5GRWPWDR"
)

// --- Manual Mocks ---

type MockRotationService struct {
	GetDailyTopicsFunc     func(ctx context.Context, userID string) (*dto.DailyTopicsResponse, error)
	RefreshDailyTopicsFunc func(ctx context.Context, userID string) (*dto.DailyTopicsResponse, error)
}

func (m *MockRotationService) GetDailyTopics(ctx context.Context, userID string) (*dto.DailyTopicsResponse, error) {
	if m.GetDailyTopicsFunc != nil {
		return m.GetDailyTopicsFunc(ctx, userID)
	}
	panic("MockRotationService.GetDailyTopicsFunc not implemented")
}
func (m *MockRotationService) RefreshDailyTopics(ctx context.Context, userID string) (*dto.DailyTopicsResponse, error) {
	if m.RefreshDailyTopicsFunc != nil {
		return m.RefreshDailyTopicsFunc(ctx, userID)
	}
	panic("MockRotationService.RefreshDailyTopicsFunc not implemented")
}

type MockLearningService struct {
	GetTopicContentFunc func(ctx context.Context, userID, topicID, difficulty string) (*dto.TopicContentResponse, error)
	MarkTopicAsReadFunc func(ctx context.Context, userID, topicID, difficulty string) (*dto.MessageResponse, error)
	GetQuizFunc         func(ctx context.Context, userID, topicID string) (*dto.QuizResponse, error)
	SubmitQuizFunc      func(ctx context.Context, userID, topicID string, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error)
	GetUserProgressFunc func(ctx context.Context, userID string) (*dto.UserProgressResponse, error)
}

func (m *MockLearningService) GetTopicContent(ctx context.Context, userID, topicID, difficulty string) (*dto.TopicContentResponse, error) {
	if m.GetTopicContentFunc != nil {
		return m.GetTopicContentFunc(ctx, userID, topicID, difficulty)
	}
	panic("MockLearningService.GetTopicContentFunc not implemented")
}
func (m *MockLearningService) MarkTopicAsRead(ctx context.Context, userID, topicID, difficulty string) (*dto.MessageResponse, error) {
	if m.MarkTopicAsReadFunc != nil {
		return m.MarkTopicAsReadFunc(ctx, userID, topicID, difficulty)
	}
	panic("MockLearningService.MarkTopicAsReadFunc not implemented")
}
func (m *MockLearningService) GetQuiz(ctx context.Context, userID, topicID string) (*dto.QuizResponse, error) {
	if m.GetQuizFunc != nil {
		return m.GetQuizFunc(ctx, userID, topicID)
	}
	panic("MockLearningService.GetQuizFunc not implemented")
}
func (m *MockLearningService) SubmitQuiz(ctx context.Context, userID, topicID string, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error) {
	if m.SubmitQuizFunc != nil {
		return m.SubmitQuizFunc(ctx, userID, topicID, req)
	}
	panic("MockLearningService.SubmitQuizFunc not implemented")
}
func (m *MockLearningService) GetUserProgress(ctx context.Context, userID string) (*dto.UserProgressResponse, error) {
	if m.GetUserProgressFunc != nil {
		return m.GetUserProgressFunc(ctx, userID)
	}
	panic("MockLearningService.GetUserProgressFunc not implemented")
}

// newLearningApp wires the handler into a fiber app with the error handler and
// a fake auth layer that injects userID into the request locals.
func newLearningApp(rotationSvc *MockRotationService, learningSvc *MockLearningService, userID string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
	})
	h := handler.NewLearningHandler(rotationSvc, learningSvc)

	authed := func(next fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if userID != "" {
				c.Locals(middleware.UserIDKey, userID)
			}
			return next(c)
		}
	}

	app.Get("/api/daily", authed(h.GetDailyTopics))
	app.Post("/api/daily/refresh", authed(h.RefreshDailyTopics))
	app.Get("/api/topic/:topicId", authed(h.GetTopicContent))
	app.Post("/api/topic/:topicId/mark-read", authed(h.MarkTopicAsRead))
	app.Get("/api/quiz/:topicId", authed(h.GetQuiz))
	app.Post("/api/quiz/:topicId/submit", authed(h.SubmitQuiz))
	app.Get("/api/progress", authed(h.GetUserProgress))
	return app
}

func decodeBody(t *testing.T, body io.Reader, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(out))
}

func TestLearningHandler_GetDailyTopics(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		rotationSvc := &MockRotationService{
			GetDailyTopicsFunc: func(ctx context.Context, userID string) (*dto.DailyTopicsResponse, error) {
				assert.Equal(t, testUserID, userID)
				return &dto.DailyTopicsResponse{
					Date: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
					Topics: []dto.DailyTopicItem{
						{ID: "t1", Title: "Interfaces", DisplayOrder: 1},
						{ID: "t2", Title: "Channels", DisplayOrder: 2},
						{ID: "t3", Title: "Generics", DisplayOrder: 3},
					},
				}, nil
			},
		}
		app := newLearningApp(rotationSvc, &MockLearningService{}, testUserID)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/daily", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body dto.DailyTopicsResponse
		decodeBody(t, resp.Body, &body)
		assert.Len(t, body.Topics, 3)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		app := newLearningApp(&MockRotationService{}, &MockLearningService{}, "")

		resp, err := app.Test(httptest.NewRequest("GET", "/api/daily", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("CatalogTooSmall", func(t *testing.T) {
		rotationSvc := &MockRotationService{
			GetDailyTopicsFunc: func(ctx context.Context, userID string) (*dto.DailyTopicsResponse, error) {
				return nil, domain.NewCatalogTooSmallError(2)
			},
		}
		app := newLearningApp(rotationSvc, &MockLearningService{}, testUserID)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/daily", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

		var body middleware.ErrorResponse
		decodeBody(t, resp.Body, &body)
		assert.Equal(t, string(domain.CodeCatalogTooSmall), body.Code)
	})
}

func TestLearningHandler_GetTopicContent(t *testing.T) {
	t.Run("PassesDifficultyQuery", func(t *testing.T) {
		learningSvc := &MockLearningService{
			GetTopicContentFunc: func(ctx context.Context, userID, topicID, difficulty string) (*dto.TopicContentResponse, error) {
				assert.Equal(t, testTopicID, topicID)
				assert.Equal(t, "ADVANCED", difficulty)
				return &dto.TopicContentResponse{ID: topicID, Difficulty: difficulty}, nil
			},
		}
		app := newLearningApp(&MockRotationService{}, learningSvc, testUserID)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/topic/"+testTopicID+"?difficulty=ADVANCED", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("InvalidTopicID", func(t *testing.T) {
		app := newLearningApp(&MockRotationService{}, &MockLearningService{}, testUserID)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/topic/not-a-ulid", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body middleware.ValidationErrorResponse
		decodeBody(t, resp.Body, &body)
		assert.Equal(t, string(domain.CodeValidation), body.Code)
	})

	t.Run("InvalidDifficulty", func(t *testing.T) {
		app := newLearningApp(&MockRotationService{}, &MockLearningService{}, testUserID)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/topic/"+testTopicID+"?difficulty=BRUTAL", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("UnknownTopic", func(t *testing.T) {
		learningSvc := &MockLearningService{
			GetTopicContentFunc: func(ctx context.Context, userID, topicID, difficulty string) (*dto.TopicContentResponse, error) {
				return nil, domain.NewTopicNotFoundError(topicID)
			},
		}
		app := newLearningApp(&MockRotationService{}, learningSvc, testUserID)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/topic/"+testTopicID, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestLearningHandler_MarkTopicAsRead(t *testing.T) {
	t.Run("WithDifficultyBody", func(t *testing.T) {
		learningSvc := &MockLearningService{
			MarkTopicAsReadFunc: func(ctx context.Context, userID, topicID, difficulty string) (*dto.MessageResponse, error) {
				assert.Equal(t, "SIMPLE", difficulty)
				return &dto.MessageResponse{Message: "Marked as read"}, nil
			},
		}
		app := newLearningApp(&MockRotationService{}, learningSvc, testUserID)

		reqBody, _ := json.Marshal(dto.MarkReadRequest{Difficulty: "SIMPLE"})
		req := httptest.NewRequest("POST", "/api/topic/"+testTopicID+"/mark-read", bytes.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("EmptyBodyAllowed", func(t *testing.T) {
		learningSvc := &MockLearningService{
			MarkTopicAsReadFunc: func(ctx context.Context, userID, topicID, difficulty string) (*dto.MessageResponse, error) {
				assert.Empty(t, difficulty)
				return &dto.MessageResponse{Message: "Marked as read"}, nil
			},
		}
		app := newLearningApp(&MockRotationService{}, learningSvc, testUserID)

		resp, err := app.Test(httptest.NewRequest("POST", "/api/topic/"+testTopicID+"/mark-read", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestLearningHandler_GetQuiz(t *testing.T) {
	t.Run("ReadGateClosed", func(t *testing.T) {
		learningSvc := &MockLearningService{
			GetQuizFunc: func(ctx context.Context, userID, topicID string) (*dto.QuizResponse, error) {
				return nil, domain.NewPreconditionFailedError("Topic must be marked as read before taking the quiz")
			},
		}
		app := newLearningApp(&MockRotationService{}, learningSvc, testUserID)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/quiz/"+testTopicID, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusPreconditionFailed, resp.StatusCode)

		var body middleware.ErrorResponse
		decodeBody(t, resp.Body, &body)
		assert.Equal(t, string(domain.CodePreconditionFailed), body.Code)
	})

	t.Run("Success", func(t *testing.T) {
		learningSvc := &MockLearningService{
			GetQuizFunc: func(ctx context.Context, userID, topicID string) (*dto.QuizResponse, error) {
				return &dto.QuizResponse{
					TopicID:    topicID,
					Difficulty: "MEDIUM",
					Questions: []dto.QuizQuestion{
						{ID: "q1", QuestionText: "What is a goroutine?", Options: map[string]string{"A": "a thread", "B": "a function"}},
					},
				}, nil
			},
		}
		app := newLearningApp(&MockRotationService{}, learningSvc, testUserID)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/quiz/"+testTopicID, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestLearningHandler_SubmitQuiz(t *testing.T) {
	validSubmission := dto.SubmitQuizRequest{
		Answers: []dto.QuizAnswer{
			{QuestionID: "01HGZ8VNRYXS8QKNJV5GRWPWDS", SelectedOption: "A"},
		},
	}

	t.Run("Success", func(t *testing.T) {
		learningSvc := &MockLearningService{
			SubmitQuizFunc: func(ctx context.Context, userID, topicID string, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error) {
				assert.Len(t, req.Answers, 1)
				return &dto.SubmitQuizResponse{Score: 1, TotalQuestions: 1, Percentage: 100, Passed: true}, nil
			},
		}
		app := newLearningApp(&MockRotationService{}, learningSvc, testUserID)

		reqBody, _ := json.Marshal(validSubmission)
		req := httptest.NewRequest("POST", "/api/quiz/"+testTopicID+"/submit", bytes.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body dto.SubmitQuizResponse
		decodeBody(t, resp.Body, &body)
		assert.True(t, body.Passed)
		assert.Equal(t, 100, body.Percentage)
	})

	t.Run("EmptyAnswers", func(t *testing.T) {
		app := newLearningApp(&MockRotationService{}, &MockLearningService{}, testUserID)

		reqBody, _ := json.Marshal(dto.SubmitQuizRequest{})
		req := httptest.NewRequest("POST", "/api/quiz/"+testTopicID+"/submit", bytes.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("AlreadyCompleted", func(t *testing.T) {
		learningSvc := &MockLearningService{
			SubmitQuizFunc: func(ctx context.Context, userID, topicID string, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error) {
				return nil, domain.NewQuizAlreadyCompletedError(topicID)
			},
		}
		app := newLearningApp(&MockRotationService{}, learningSvc, testUserID)

		reqBody, _ := json.Marshal(validSubmission)
		req := httptest.NewRequest("POST", "/api/quiz/"+testTopicID+"/submit", bytes.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

		var body middleware.ErrorResponse
		decodeBody(t, resp.Body, &body)
		assert.Equal(t, string(domain.CodeQuizAlreadyDone), body.Code)
	})
}

func TestLearningHandler_GetUserProgress(t *testing.T) {
	learningSvc := &MockLearningService{
		GetUserProgressFunc: func(ctx context.Context, userID string) (*dto.UserProgressResponse, error) {
			return &dto.UserProgressResponse{
				CurrentStreak:        4,
				LongestStreak:        9,
				TotalTopicsCompleted: 27,
				TodayProgress:        &dto.TodayProgress{CompletedCount: 1, TotalCount: 3},
			}, nil
		},
	}
	app := newLearningApp(&MockRotationService{}, learningSvc, testUserID)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/progress", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.UserProgressResponse
	decodeBody(t, resp.Body, &body)
	assert.Equal(t, 4, body.CurrentStreak)
	assert.Equal(t, 3, body.TodayProgress.TotalCount)
}
