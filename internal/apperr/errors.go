package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrConfig     = errors.New("configuration error")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidation builds a ValidationError for a single field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConfigError reports a missing required credential or setting. It is fatal
// for the operation that needs the setting, not for the whole process.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Key)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// ProviderError reports a non-success or malformed response from the
// messaging provider. Detail carries the provider-supplied message when one
// could be parsed out of the response body.
type ProviderError struct {
	StatusCode int
	Detail     string
}

func (e *ProviderError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("provider error (status %d)", e.StatusCode)
}

// StoreError wraps a persistence failure. External callers see a generic
// message; the wrapped cause is for internal logs only.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
