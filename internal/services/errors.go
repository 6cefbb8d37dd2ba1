package services

import (
	"errors"
	"fmt"

	apperrors "github.com/quizforge/quiz-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Quiz specific errors
	ErrQuizNotFound = errors.New("quiz not found")
	ErrQuizInactive = errors.New("quiz is not active")

	// Access gate errors. Both read as "access denied" to callers of
	// the attempt lifecycle; the distinction only drives messaging.
	ErrAccessCodeRequired = errors.New("access code is required")
	ErrAccessCodeInvalid  = errors.New("invalid access code")

	// Question specific errors
	ErrQuestionNotFound    = errors.New("question not found in this quiz")
	ErrQuestionInvalidType = errors.New("invalid question type")

	// Attempt specific errors
	ErrAttemptNotFound         = errors.New("attempt not found or already submitted")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from the errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     uint   `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsAccessDenied checks if error represents a failed access-code gate
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessCodeRequired) ||
		errors.Is(err, ErrAccessCodeInvalid)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrInvalidCredentials) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAttemptAlreadySubmitted) ||
		errors.Is(err, ErrEmailTaken)
}
