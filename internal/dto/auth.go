package dto

import "github.com/golang-jwt/jwt/v5"

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse acknowledges a registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo is the public slice of a user record.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginResponse carries the issued JWT.
type LoginResponse struct {
	User  UserInfo `json:"user"`
	Token string   `json:"token"`
}

// PasswordResetRequest is the body of POST /auth/request-password-reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// AuthClaims is the decoded JWT payload attached to authenticated requests.
type AuthClaims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}
