package internal

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStorageError(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := &StorageError{
		Key: "chatHistory_abc",
		Op:  "set",
		Err: originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "storage error") {
		t.Errorf("StorageError.Error() should contain 'storage error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "chatHistory_abc") {
		t.Errorf("StorageError.Error() should contain key, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("StorageError.Unwrap() should return original error")
	}
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("add webhook: %w", &ValidationError{Field: "url", Reason: "must start with http:// or https://"})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatal("errors.As should find *ValidationError through wrapping")
	}
	if vErr.Field != "url" {
		t.Errorf("Field = %q, want url", vErr.Field)
	}
	if !strings.Contains(err.Error(), "invalid url") {
		t.Errorf("Error() = %q, want it to mention the field", err.Error())
	}
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Kind: "webhook", Name: "prod"}
	if got := err.Error(); got != "webhook not found: prod" {
		t.Errorf("Error() = %q", got)
	}
}

func TestHTTPError(t *testing.T) {
	err := &HTTPError{Status: 500, Body: "boom"}
	if got := err.Error(); got != "HTTP error! status: 500, message: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestTransportError(t *testing.T) {
	originalErr := errors.New("connection refused")
	err := &TransportError{URL: "http://localhost:1", Err: originalErr}
	if err.Error() != "connection refused" {
		t.Errorf("Error() = %q, want the transport error text", err.Error())
	}
	if !errors.Is(err, originalErr) {
		t.Error("TransportError.Unwrap() should return original error")
	}
}

func TestMalformedResponseError(t *testing.T) {
	plain := &MalformedResponseError{Body: "[]"}
	if !strings.Contains(plain.Error(), "[0].output") {
		t.Errorf("Error() = %q", plain.Error())
	}

	inner := errors.New("unexpected end of JSON input")
	wrapped := &MalformedResponseError{Body: "[", Err: inner}
	if !errors.Is(wrapped, inner) {
		t.Error("MalformedResponseError.Unwrap() should return original error")
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{
		Format: "jsonl",
		Path:   "/output/file.jsonl",
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "export error") {
		t.Errorf("ExportError.Error() should contain 'export error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "jsonl") {
		t.Errorf("ExportError.Error() should contain format, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}
