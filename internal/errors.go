package internal

import (
	"errors"
	"fmt"
)

// ErrNoWebhookConfigured is returned when neither a selected nor a default webhook can be resolved
var ErrNoWebhookConfigured = errors.New("no webhook URL configured")

// StorageError represents errors reading or writing the key-value store
type StorageError struct {
	Key string
	Op  string // "get", "set", "remove", "scan", "parse"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError represents rejected user input (webhook name/URL, empty message, attachments)
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError represents a reference to an unknown webhook or session
type NotFoundError struct {
	Kind string // "webhook", "session"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// TransportError represents a webhook that could not be reached
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError represents a webhook that answered with a non-2xx status
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d, message: %s", e.Status, e.Body)
}

// MalformedResponseError represents a 2xx answer without a usable output field
type MalformedResponseError struct {
	Body string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed webhook response: %v", e.Err)
	}
	return "malformed webhook response: missing [0].output"
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
