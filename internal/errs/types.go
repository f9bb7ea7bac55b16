package errs

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ValidationError is a local, field-scoped rejection. It never reaches the network.
type ValidationError struct {
	Fields map[string]string // field -> message
}

// NewValidationError returns a ValidationError with a single field set.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add records a message for field, keeping the first message per field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool { return e == nil || len(e.Fields) == 0 }

// OrNil returns e as an error, or nil when no field failed.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AuthenticationError means the backend rejected a login attempt.
type AuthenticationError struct {
	Message string // user-displayable
	Err     error
}

func (e *AuthenticationError) Error() string { return e.Message }
func (e *AuthenticationError) Unwrap() error { return e.Err }

// RequestError is a non-2xx backend response.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

// maxBodyRunes bounds the response body quoted in RequestError messages.
const maxBodyRunes = 200

func (e *RequestError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if r := []rune(body); len(r) > maxBodyRunes {
		body = string(r[:maxBodyRunes]) + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// Unwrap maps well-known statuses onto sentinels so callers can use errors.Is.
func (e *RequestError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrSessionExpired
	}
	return nil
}

// NetworkError is a transport-level failure (dial, TLS, timeout, broken body).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return "network: " + e.Op + ": " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }
