package handler

import (
	"strings"

	"daily-spark/internal/domain"
	"daily-spark/internal/dto"
	"daily-spark/internal/service"
	"daily-spark/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the category and topic catalog.
type CatalogHandler struct {
	catalogService service.CatalogService
	validator      *validation.Validator
}

// NewCatalogHandler creates a new CatalogHandler instance.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validation.NewValidator(),
	}
}

// GetCategories handles GET /api/categories.
func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.catalogService.GetCategories(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

// GetTopics handles GET /api/topics.
func (h *CatalogHandler) GetTopics(c *fiber.Ctx) error {
	topics, err := h.catalogService.GetTopics(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(topics)
}

// CreateTopic handles POST /api/topics.
func (h *CatalogHandler) CreateTopic(c *fiber.Ctx) error {
	var req dto.CreateTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewError(domain.CodeInvalidInput, "Invalid request body", err)
	}

	var errs domain.ValidationErrors
	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, domain.NewMissingFieldError("title"))
	}
	if strings.TrimSpace(req.CategoryID) == "" {
		errs = append(errs, domain.NewMissingFieldError("categoryId"))
	}
	if len(errs) > 0 {
		return errs
	}

	topic, err := h.catalogService.CreateTopic(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(topic)
}

// UpdateInterests handles PUT /api/users/me/interests.
func (h *CatalogHandler) UpdateInterests(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	var req dto.UpdateInterestsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewError(domain.CodeInvalidInput, "Invalid request body", err)
	}
	if errs := h.validator.ValidateInterests(req.CategoryIDs); len(errs) > 0 {
		return errs
	}

	if err := h.catalogService.UpdateInterests(c.Context(), userID, req.CategoryIDs); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Interests updated"})
}
