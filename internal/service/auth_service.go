package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"daily-spark/internal/config"
	"daily-spark/internal/domain"
	"daily-spark/internal/dto"
	"daily-spark/internal/logger"
	"daily-spark/internal/mailer"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess = "access"

	verificationTokenTTL = 24 * time.Hour
	passwordResetTTL     = 1 * time.Hour
	minPasswordLength    = 8
)

// ErrInvalidJWTToken is returned when a bearer token fails validation.
var ErrInvalidJWTToken = errors.New("invalid jwt token")

// AuthService is the identity provider: registration, email verification,
// login and password reset. Emails it triggers are best-effort.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	VerifyEmail(ctx context.Context, token string) (*dto.MessageResponse, error)
	RequestPasswordReset(ctx context.Context, email string) (*dto.MessageResponse, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*dto.MessageResponse, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type authService struct {
	userRepo domain.UserRepository
	notifier mailer.Notifier
	cfg      *config.Config
	clock    domain.Clock
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo domain.UserRepository, notifier mailer.Notifier, cfg *config.Config, clock domain.Clock) (AuthService, error) {
	if len(cfg.JWT.SecretKey) < 32 {
		return nil, errors.New("jwt secret key must be at least 32 bytes long")
	}
	return &authService{
		userRepo: userRepo,
		notifier: notifier,
		cfg:      cfg,
		clock:    clock,
	}, nil
}

// Register implements AuthService. A failed verification email never fails
// the registration itself.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateCredentials(email, req.Password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("Failed to check existing user", err)
	}
	if existing != nil {
		return nil, domain.NewUserAlreadyExistsError(email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("Failed to hash password", err)
	}

	verificationToken, err := randomToken()
	if err != nil {
		return nil, domain.NewInternalError("Failed to generate verification token", err)
	}
	expiry := s.clock.Now().Add(verificationTokenTTL)

	user := &domain.User{
		Email:                   email,
		PasswordHash:            string(hash),
		VerificationToken:       verificationToken,
		VerificationTokenExpiry: &expiry,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, domain.NewInternalError("Failed to create user", err)
	}
	logger.Get().Info("User registered", zap.String("userID", user.ID), zap.String("email", email))

	if err := s.notifier.SendVerificationEmail(ctx, email, verificationToken); err != nil {
		logger.Get().Warn("Verification email failed, registration continues",
			zap.String("userID", user.ID), zap.Error(err))
	}

	return &dto.RegisterResponse{
		Message: "Registration successful. Please check your email to verify your account.",
		UserID:  user.ID,
	}, nil
}

// Login implements AuthService.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get user", err)
	}
	if user == nil {
		return nil, domain.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.NewInvalidCredentialsError()
	}
	if !user.IsEmailVerified {
		return nil, domain.NewEmailNotVerifiedError()
	}

	token, err := s.createJWT(user)
	if err != nil {
		return nil, domain.NewInternalError("Failed to issue token", err)
	}

	logger.Get().Info("User logged in", zap.String("userID", user.ID))
	return &dto.LoginResponse{
		User:  dto.UserInfo{ID: user.ID, Email: user.Email},
		Token: token,
	}, nil
}

// VerifyEmail implements AuthService.
func (s *authService) VerifyEmail(ctx context.Context, token string) (*dto.MessageResponse, error) {
	if token == "" {
		return nil, domain.NewInvalidTokenError("Verification token is required")
	}

	user, err := s.userRepo.GetUserByVerificationToken(ctx, token)
	if err != nil {
		return nil, domain.NewInternalError("Failed to look up verification token", err)
	}
	if user == nil {
		return nil, domain.NewInvalidTokenError("Verification token is invalid")
	}
	if user.VerificationTokenExpiry != nil && s.clock.Now().After(*user.VerificationTokenExpiry) {
		return nil, domain.NewInvalidTokenError("Verification token has expired")
	}

	if err := s.userRepo.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, domain.NewInternalError("Failed to verify email", err)
	}
	logger.Get().Info("Email verified", zap.String("userID", user.ID))
	return &dto.MessageResponse{Message: "Email verified. You can now log in."}, nil
}

// RequestPasswordReset implements AuthService. The response never reveals
// whether the email exists.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) (*dto.MessageResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	resp := &dto.MessageResponse{Message: "If that email is registered, a reset link has been sent."}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get user", err)
	}
	if user == nil {
		return resp, nil
	}

	token, err := randomToken()
	if err != nil {
		return nil, domain.NewInternalError("Failed to generate reset token", err)
	}
	expiry := s.clock.Now().Add(passwordResetTTL)
	if err := s.userRepo.SetPasswordResetToken(ctx, user.ID, token, expiry); err != nil {
		return nil, domain.NewInternalError("Failed to store reset token", err)
	}

	if err := s.notifier.SendPasswordResetEmail(ctx, email, token); err != nil {
		logger.Get().Warn("Password reset email failed",
			zap.String("userID", user.ID), zap.Error(err))
	}
	return resp, nil
}

// ResetPassword implements AuthService.
func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*dto.MessageResponse, error) {
	if req.Token == "" {
		return nil, domain.NewInvalidTokenError("Reset token is required")
	}
	if len(req.NewPassword) < minPasswordLength {
		return nil, domain.NewError(domain.CodeValidation,
			fmt.Sprintf("Password must be at least %d characters", minPasswordLength), nil)
	}

	user, err := s.userRepo.GetUserByResetToken(ctx, req.Token)
	if err != nil {
		return nil, domain.NewInternalError("Failed to look up reset token", err)
	}
	if user == nil {
		return nil, domain.NewInvalidTokenError("Reset token is invalid")
	}
	if user.PasswordResetTokenExpiry == nil || s.clock.Now().After(*user.PasswordResetTokenExpiry) {
		return nil, domain.NewInvalidTokenError("Reset token has expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("Failed to hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, domain.NewInternalError("Failed to update password", err)
	}

	logger.Get().Info("Password reset", zap.String("userID", user.ID))
	return &dto.MessageResponse{Message: "Password has been reset. You can now log in."}, nil
}

func (s *authService) createJWT(user *domain.User) (string, error) {
	now := s.clock.Now()
	claims := dto.AuthClaims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWT.SecretKey))
}

// ValidateJWT implements AuthService.
func (s *authService) ValidateJWT(_ context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Warn("JWT token expired", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	if claims, ok := token.Claims.(*dto.AuthClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidJWTToken
}

func validateCredentials(email, password string) error {
	var errs domain.ValidationErrors
	if email == "" || !strings.Contains(email, "@") {
		errs = append(errs, domain.NewInvalidFormatError("email", email))
	}
	if len(password) < minPasswordLength {
		errs = append(errs, domain.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", minPasswordLength),
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
