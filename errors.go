package pdfparse

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Parser].
	ErrClosed = errors.New("pdfparse: parser is closed")
)

// NotFoundError is returned when an input path does not resolve to a
// readable file. It is reported before any backend work happens.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pdfparse: file not found: %s", e.Path)
}

// ConfigurationError is returned by [New] when a required credential or
// backend option is missing or invalid. Credentials are validated at
// construction so that misconfiguration surfaces before the first call.
type ConfigurationError struct {
	Backend Backend
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("pdfparse: %s: %s", e.Backend, e.Reason)
}

// UnsupportedModalityError is returned when a requested modality is not
// implemented by the selected backend. It is reported before any backend
// network or compute call is made.
type UnsupportedModalityError struct {
	Backend  Backend
	Modality Modality
}

func (e *UnsupportedModalityError) Error() string {
	return fmt.Sprintf("pdfparse: backend %s does not support modality %q", e.Backend, e.Modality)
}

// BackendError wraps a failure of the underlying parsing engine: a network
// error, an API quota rejection, a malformed document. The original cause
// is available through [errors.Unwrap]. Backend failures are never retried
// by this layer.
type BackendError struct {
	Backend Backend
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("pdfparse: backend %s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
