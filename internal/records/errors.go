package records

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("record already exists")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("validation failed")
	// ErrConfirmationRequired guards destructive actions without an explicit confirmation.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrInvalidTransition indicates a workflow status change that is not allowed.
	ErrInvalidTransition = errors.New("status transition invalid")
)

// FieldErrors lists invalid input fields with a message each. It matches
// ErrValidation under errors.Is.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap ties FieldErrors to ErrValidation.
func (e FieldErrors) Unwrap() error { return ErrValidation }
