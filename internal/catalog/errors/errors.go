// Package errors provides the error values returned by the catalog.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation marks a candidate product rejected before reaching the store.
	ErrValidation = errors.New("validation failed")
	// ErrStorageUnavailable wraps any failure to talk to the backing store.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrProductNotFound    = errors.New("product not found")
)

// ValidationError lists every offending field of a candidate, keyed by its JSON name.
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
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
