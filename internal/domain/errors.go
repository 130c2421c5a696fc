package domain

import (
	"fmt"
	"strings"
	"time"
)

// MCPError represents a standardized error response
type MCPError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *MCPError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput   = "INVALID_INPUT"
	ErrDatabaseError  = "DATABASE_ERROR"
	ErrExternalAPI    = "EXTERNAL_API_ERROR"
	ErrClassification = "CLASSIFICATION_ERROR"
	ErrRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"
	ErrNotFoundCode   = "NOT_FOUND"
)

// InvalidInputError reports a finding set that does not match the shape its
// protocol expects: a missing field, a value outside the field's enumeration,
// or findings built for a different protocol. It is a caller error, never a
// clinical outcome.
type InvalidInputError struct {
	Protocol Protocol `json:"protocol,omitempty"`
	Field    string   `json:"field,omitempty"`
	Value    any      `json:"value,omitempty"`
	Allowed  []string `json:"allowed,omitempty"`
	Message  string   `json:"message"`
}

// Error implements the error interface
func (e *InvalidInputError) Error() string {
	var b strings.Builder
	b.WriteString("invalid input")
	if e.Protocol != "" {
		fmt.Fprintf(&b, " for %s", e.Protocol)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field '%s'", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if len(e.Allowed) > 0 {
		fmt.Fprintf(&b, " (allowed: %s)", strings.Join(e.Allowed, ", "))
	}
	return b.String()
}

// NewMCPError creates a new MCPError with timestamp
func NewMCPError(code, message, details, requestID string) *MCPError {
	return &MCPError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewInvalidInputError creates an InvalidInputError for a single field.
func NewInvalidInputError(protocol Protocol, field, message string, value any) *InvalidInputError {
	return &InvalidInputError{
		Protocol: protocol,
		Field:    field,
		Value:    value,
		Message:  message,
	}
}

// enumError builds the error for a value outside its enumeration. An empty
// value is reported as missing.
func enumError(protocol Protocol, field, value string, allowed []string) *InvalidInputError {
	msg := fmt.Sprintf("value %q is not allowed", value)
	if value == "" {
		msg = "value is required"
	}
	return &InvalidInputError{
		Protocol: protocol,
		Field:    field,
		Value:    value,
		Allowed:  allowed,
		Message:  msg,
	}
}
