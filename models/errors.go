package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrAuth is deliberately vague so callers cannot tell a wrong email from a wrong password.
	ErrAuth             = errors.New("invalid email or password")
	ErrNetwork          = errors.New("the service is temporarily unavailable, please try again")
	ErrInvalidCode      = errors.New("invalid discount code")
	ErrInvalidResetCode = errors.New("invalid or expired code")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("access denied")
	ErrConflict         = errors.New("already exists")
)

// ValidationError collects field messages for input rejected at the boundary.
type ValidationError struct {
	Fields map[string]string
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

// PaymentError is a decline or an extra action required by the processor.
type PaymentError struct {
	Status       PaymentStatus
	Message      string
	ClientSecret string
}

func (e *PaymentError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("payment %s", e.Status)
	}
	return fmt.Sprintf("payment %s: %s", e.Status, e.Message)
}
