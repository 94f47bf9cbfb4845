package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeEmptyIndex       = "EMPTY_INDEX"
	ErrCodeGenerationParse  = "GENERATION_PARSE"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyTopic          = NewDomainError(ErrCodeValidation, "topic cannot be empty")
	ErrInvalidLearningMode = NewDomainError(ErrCodeValidation, "invalid learning mode")
	ErrInvalidBlockType    = NewDomainError(ErrCodeValidation, "invalid lesson block type")
)

// Not found errors
var (
	ErrCourseNotFound = NewDomainError(ErrCodeNotFound, "course not found")
)

// RAG errors
var (
	// ErrEmptyIndex is returned when a similarity query is issued against an
	// index that holds no chunks. Callers must build the index first.
	ErrEmptyIndex = NewDomainError(ErrCodeEmptyIndex, "index is empty, add documents before querying")
)

// Generation errors
var (
	ErrMalformedModules = NewDomainError(ErrCodeGenerationParse, "model output is not a valid module list")
	ErrMalformedLessons = NewDomainError(ErrCodeGenerationParse, "model output is not a valid lesson list")
	ErrMalformedLesson  = NewDomainError(ErrCodeGenerationParse, "model output is not a valid lesson")
	ErrNoModules        = NewDomainError(ErrCodeUpstream, "module generation produced no modules")
)
