package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Event errors
var (
	ErrEventNotFound     = fmt.Errorf("event not found: %w", ErrResourceNotFound)
	ErrCapacityExceeded  = errors.New("event capacity exceeded")
	ErrEventClosed       = errors.New("event is not accepting participants")
	ErrInvalidCapacity   = fmt.Errorf("capacity must be a positive integer: %w", ErrValidationFailed)
	ErrInvalidEventState = fmt.Errorf("invalid event status: %w", ErrValidationFailed)
)

// Survey errors
var (
	ErrSurveyNotFound   = fmt.Errorf("survey not found: %w", ErrResourceNotFound)
	ErrQuestionNotFound = fmt.Errorf("question not found: %w", ErrResourceNotFound)
	ErrInvalidOption    = errors.New("option is not configured for this question")
	ErrSurveyClosed     = errors.New("survey is closed")
)

// Post errors
var (
	ErrPostNotFound    = fmt.Errorf("post not found: %w", ErrResourceNotFound)
	ErrCommentNotFound = fmt.Errorf("comment not found: %w", ErrResourceNotFound)
	ErrEmptyContent    = fmt.Errorf("content must not be empty: %w", ErrValidationFailed)
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewValidationError creates a new custom error for rejected input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}
