package handler

import (
	"daily-spark/internal/domain"
	"daily-spark/internal/dto"
	"daily-spark/internal/middleware"
	"daily-spark/internal/service"
	"daily-spark/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// LearningHandler serves the daily set, topic content, quizzes and progress.
type LearningHandler struct {
	rotationService service.RotationService
	learningService service.LearningService
	validator       *validation.Validator
}

// NewLearningHandler creates a new LearningHandler instance.
func NewLearningHandler(rotationService service.RotationService, learningService service.LearningService) *LearningHandler {
	return &LearningHandler{
		rotationService: rotationService,
		learningService: learningService,
		validator:       validation.NewValidator(),
	}
}

// GetDailyTopics handles GET /api/daily.
func (h *LearningHandler) GetDailyTopics(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	resp, err := h.rotationService.GetDailyTopics(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RefreshDailyTopics handles POST /api/daily/refresh.
func (h *LearningHandler) RefreshDailyTopics(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	resp, err := h.rotationService.RefreshDailyTopics(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetTopicContent handles GET /api/topic/:topicId.
func (h *LearningHandler) GetTopicContent(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	topicID := c.Params("topicId")
	difficulty := c.Query("difficulty")
	if errs := h.validator.ValidateTopicID(topicID); len(errs) > 0 {
		return errs
	}
	if errs := h.validator.ValidateDifficulty(difficulty); len(errs) > 0 {
		return errs
	}

	resp, err := h.learningService.GetTopicContent(c.Context(), userID, topicID, difficulty)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// MarkTopicAsRead handles POST /api/topic/:topicId/mark-read.
func (h *LearningHandler) MarkTopicAsRead(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	topicID := c.Params("topicId")
	if errs := h.validator.ValidateTopicID(topicID); len(errs) > 0 {
		return errs
	}

	var req dto.MarkReadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewError(domain.CodeInvalidInput, "Invalid request body", err)
		}
	}
	if errs := h.validator.ValidateDifficulty(req.Difficulty); len(errs) > 0 {
		return errs
	}

	resp, err := h.learningService.MarkTopicAsRead(c.Context(), userID, topicID, req.Difficulty)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetQuiz handles GET /api/quiz/:topicId.
func (h *LearningHandler) GetQuiz(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	topicID := c.Params("topicId")
	if errs := h.validator.ValidateTopicID(topicID); len(errs) > 0 {
		return errs
	}

	resp, err := h.learningService.GetQuiz(c.Context(), userID, topicID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitQuiz handles POST /api/quiz/:topicId/submit.
func (h *LearningHandler) SubmitQuiz(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	topicID := c.Params("topicId")
	if errs := h.validator.ValidateTopicID(topicID); len(errs) > 0 {
		return errs
	}

	var req dto.SubmitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewError(domain.CodeInvalidInput, "Invalid request body", err)
	}
	if errs := h.validator.ValidateSubmitQuizRequest(&req); len(errs) > 0 {
		return errs
	}

	resp, err := h.learningService.SubmitQuiz(c.Context(), userID, topicID, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetUserProgress handles GET /api/progress.
func (h *LearningHandler) GetUserProgress(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	resp, err := h.learningService.GetUserProgress(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// userIDFromCtx extracts the authenticated user ID set by the auth middleware.
func userIDFromCtx(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return "", domain.NewUnauthorizedError("Authentication required")
	}
	return userID, nil
}
