package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Learning specific errors
	CodeTopicNotFound       ErrorCode = "TOPIC_NOT_FOUND"
	CodeQuizNotFound        ErrorCode = "QUIZ_NOT_FOUND"
	CodePreconditionFailed  ErrorCode = "PRECONDITION_FAILED"
	CodeQuizAlreadyDone     ErrorCode = "QUIZ_ALREADY_COMPLETED"
	CodeCatalogTooSmall     ErrorCode = "CATALOG_TOO_SMALL"
	CodeUserAlreadyExists   ErrorCode = "USER_ALREADY_EXISTS"
	CodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	CodeEmailNotVerified    ErrorCode = "EMAIL_NOT_VERIFIED"
	CodeInvalidToken        ErrorCode = "INVALID_TOKEN"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for common errors

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewTopicNotFoundError(topicID string) *DomainError {
	return NewError(CodeTopicNotFound, fmt.Sprintf("Topic not found with ID: %s", topicID), nil)
}

func NewQuizNotFoundError(topicID string, difficulty Difficulty) *DomainError {
	return NewError(CodeQuizNotFound,
		fmt.Sprintf("No questions available for topic %s at difficulty %s", topicID, difficulty), nil)
}

// NewPreconditionFailedError is returned when the read-gate has not been passed.
func NewPreconditionFailedError(message string) *DomainError {
	return NewError(CodePreconditionFailed, message, nil)
}

// NewQuizAlreadyCompletedError is returned on quiz resubmission. One submission
// per (user, topic) is terminal, pass or fail.
func NewQuizAlreadyCompletedError(topicID string) *DomainError {
	return NewError(CodeQuizAlreadyDone,
		fmt.Sprintf("Quiz already completed for topic %s", topicID), nil)
}

// NewCatalogTooSmallError signals that the active catalog cannot supply a full
// daily set. This is an operator problem, not a user problem.
func NewCatalogTooSmallError(available int) *DomainError {
	return NewError(CodeCatalogTooSmall,
		fmt.Sprintf("Active topic catalog has only %d topics; at least 3 are required", available), nil)
}

func NewUserAlreadyExistsError(email string) *DomainError {
	return NewError(CodeUserAlreadyExists, fmt.Sprintf("User already exists with email: %s", email), nil)
}

func NewInvalidCredentialsError() *DomainError {
	return NewError(CodeInvalidCredentials, "Invalid credentials", nil)
}

func NewEmailNotVerifiedError() *DomainError {
	return NewError(CodeEmailNotVerified, "Please verify your email before logging in", nil)
}

func NewInvalidTokenError(message string) *DomainError {
	return NewError(CodeInvalidToken, message, nil)
}

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of field validation failures that itself
// satisfies error, so a handler can return it directly.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", e[0].Error())
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("has invalid format: %v", value)}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("value %d is out of range [%d, %d]", value, min, max)}
}
