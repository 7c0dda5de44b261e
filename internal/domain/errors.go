package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Domain Error Types
// ============================================================================

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError carrying the same code, so wrapped variants
// compare equal to their sentinel with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// PublicMessage returns the message without the code or cause
func (e *DomainError) PublicMessage() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ============================================================================
// Common Domain Errors
// ============================================================================

var (
	// Session Errors
	ErrUnauthenticated = &DomainError{
		Code:    "UNAUTHENTICATED",
		Message: "authentication required",
	}

	// Resource Errors
	ErrJobNotFound = &DomainError{
		Code:    "JOB_NOT_FOUND",
		Message: "job not found",
	}
	ErrApplicationNotFound = &DomainError{
		Code:    "APPLICATION_NOT_FOUND",
		Message: "application not found",
	}
	ErrResumeNotFound = &DomainError{
		Code:    "RESUME_NOT_FOUND",
		Message: "resume not found",
	}
	ErrProfileNotFound = &DomainError{
		Code:    "PROFILE_NOT_FOUND",
		Message: "profile not found",
	}

	// Validation Errors
	ErrValidationFailed = &DomainError{
		Code:    "VALIDATION_FAILED",
		Message: "validation failed",
	}
	ErrRequiredFieldMissing = &DomainError{
		Code:    "REQUIRED_FIELD_MISSING",
		Message: "required field is missing",
	}

	// Infrastructure Errors
	ErrDatabaseOperation = &DomainError{
		Code:    "DATABASE_OPERATION_FAILED",
		Message: "database operation failed",
	}
)

// ============================================================================
// Error Wrapping Helpers
// ============================================================================

// WrapNotFound wraps a not-found sentinel with the id that was looked up
func WrapNotFound(sentinel *DomainError, id string, cause error) error {
	return &DomainError{
		Code:    sentinel.Code,
		Message: fmt.Sprintf("%s: %s", sentinel.Message, id),
		Cause:   cause,
	}
}

// WrapValidationError wraps a validation failure for a field
func WrapValidationError(field string, cause error) error {
	return &DomainError{
		Code:    ErrValidationFailed.Code,
		Message: fmt.Sprintf("validation failed for %s: %v", field, cause),
		Cause:   cause,
	}
}

// WrapDatabaseOperation wraps an error as a database operation failure
func WrapDatabaseOperation(operation string, cause error) error {
	return &DomainError{
		Code:    ErrDatabaseOperation.Code,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Cause:   cause,
	}
}

// ============================================================================
// Error Checking Helpers
// ============================================================================

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrJobNotFound.Code ||
			domainErr.Code == ErrApplicationNotFound.Code ||
			domainErr.Code == ErrResumeNotFound.Code ||
			domainErr.Code == ErrProfileNotFound.Code
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrValidationFailed.Code ||
			domainErr.Code == ErrRequiredFieldMissing.Code
	}
	return false
}

// IsInfrastructureError checks if an error is an infrastructure error
func IsInfrastructureError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrDatabaseOperation.Code
	}
	return false
}
