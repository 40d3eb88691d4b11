package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pageza/recipe-catalog/backend/internal/authz"
)

var (
	// ErrNotFound is returned when the addressed entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with existing state.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials is returned by Login for any bad email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries per-field messages for a rejected input.
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
		if k == "" {
			parts = append(parts, e.Fields[k])
			continue
		}
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// AuthorizationError reports a denied operation.
type AuthorizationError struct {
	Operation authz.Operation
	Resource  authz.Resource
	// Anonymous is set when the caller presented no credentials.
	Anonymous bool
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user is unauthorized to perform %s operation on %s", e.Operation, e.Resource)
}

// asValidationError converts ozzo validation output into a ValidationError.
// Internal validator failures are returned unchanged.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}

	var fields validation.Errors
	if errors.As(err, &fields) {
		out := make(map[string]string, len(fields))
		for k, v := range fields {
			if v != nil {
				out[k] = v.Error()
			}
		}
		return &ValidationError{Fields: out}
	}

	return &ValidationError{Fields: map[string]string{"": err.Error()}}
}
