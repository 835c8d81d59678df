package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of a pipeline error.
type ErrorType string

const (
	// ErrorTypeConfiguration indicates missing or invalid provider
	// credentials. Fatal at startup, never recovered at request time.
	ErrorTypeConfiguration ErrorType = "configuration"

	// ErrorTypeAuthentication indicates the provider rejected the
	// credential exchange. Surfaced per-provider, not retried.
	ErrorTypeAuthentication ErrorType = "authentication"

	// ErrorTypeUnavailable indicates a network error, timeout or 5xx
	// from the provider. Triggers serve-stale or degraded status.
	ErrorTypeUnavailable ErrorType = "unavailable"

	// ErrorTypeDataQuality indicates a single malformed record. Logged
	// and skipped, never fatal to a fetch.
	ErrorTypeDataQuality ErrorType = "data_quality"
)

// ProviderError is the canonical error carried through the data pipeline.
// Fetchers and token managers produce it; the aggregator and API surface
// classify on Type rather than parsing messages.
type ProviderError struct {
	Type     ErrorType   `json:"type"`
	Provider ProviderTag `json:"provider,omitempty"`
	Message  string      `json:"message"`

	// StatusCode is the upstream HTTP status when one was received.
	StatusCode int `json:"-"`

	// Err is the wrapped cause, if any.
	Err error `json:"-"`
}

func (e *ProviderError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Type, e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode maps the error type to the status the API surface returns.
func (e *ProviderError) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeConfiguration:
		return http.StatusInternalServerError
	case ErrorTypeAuthentication:
		return http.StatusBadGateway
	case ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithCause attaches the wrapped cause.
func (e *ProviderError) WithCause(err error) *ProviderError {
	e.Err = err
	return e
}

// WithStatusCode records the upstream HTTP status.
func (e *ProviderError) WithStatusCode(code int) *ProviderError {
	e.StatusCode = code
	return e
}

// Convenience constructors for the error taxonomy.

// ErrConfiguration creates a configuration error.
func ErrConfiguration(provider ProviderTag, message string) *ProviderError {
	return &ProviderError{Type: ErrorTypeConfiguration, Provider: provider, Message: message}
}

// ErrAuthentication creates an authentication error.
func ErrAuthentication(provider ProviderTag, message string) *ProviderError {
	return &ProviderError{Type: ErrorTypeAuthentication, Provider: provider, Message: message}
}

// ErrUnavailable creates a provider-unavailable error.
func ErrUnavailable(provider ProviderTag, message string) *ProviderError {
	return &ProviderError{Type: ErrorTypeUnavailable, Provider: provider, Message: message}
}

// ErrDataQuality creates a data-quality error for a single record.
func ErrDataQuality(provider ProviderTag, message string) *ProviderError {
	return &ProviderError{Type: ErrorTypeDataQuality, Provider: provider, Message: message}
}

// IsType reports whether err is a ProviderError of the given type.
func IsType(err error, t ErrorType) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Type == t
}

// IsAuthentication reports whether err is an authentication failure.
func IsAuthentication(err error) bool { return IsType(err, ErrorTypeAuthentication) }

// IsUnavailable reports whether err is a provider-unavailable condition.
func IsUnavailable(err error) bool { return IsType(err, ErrorTypeUnavailable) }

// IsConfiguration reports whether err is a configuration failure.
func IsConfiguration(err error) bool { return IsType(err, ErrorTypeConfiguration) }
