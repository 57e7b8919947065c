package handler

import (
	"daily-spark/internal/domain"
	"daily-spark/internal/dto"
	"daily-spark/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler serves registration, login and the email token flows.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewError(domain.CodeInvalidInput, "Invalid request body", err)
	}

	resp, err := h.authService.Register(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewError(domain.CodeInvalidInput, "Invalid request body", err)
	}

	resp, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// VerifyEmail handles GET /api/auth/verify?token=.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")

	resp, err := h.authService.VerifyEmail(c.Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RequestPasswordReset handles POST /api/auth/request-password-reset.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewError(domain.CodeInvalidInput, "Invalid request body", err)
	}

	resp, err := h.authService.RequestPasswordReset(c.Context(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewError(domain.CodeInvalidInput, "Invalid request body", err)
	}

	resp, err := h.authService.ResetPassword(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
