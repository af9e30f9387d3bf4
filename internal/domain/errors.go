package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest signals search parameters rejected before the pipeline starts.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a provider rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEnhancementUnavailable signals that no explanation could be generated.
	ErrEnhancementUnavailable = errors.New("enhancement unavailable")
	// ErrIndexUnavailable signals a candidate index failure.
	ErrIndexUnavailable = errors.New("candidate index unavailable")
)

// ValidationError wraps ErrInvalidRequest with the offending parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidRequest.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

// NewValidationError creates a validation error for a single parameter.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
