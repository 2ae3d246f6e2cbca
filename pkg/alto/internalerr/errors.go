package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicateID   = errors.New("duplicate element id")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// PatternError reports a malformed regular expression handed to a find step.
// The find call that received the pattern fails immediately; no elements are
// mutated by that call.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// ProviderError reports a failure from a dictionary or NER provider.
// Recoverable failures are treated as an empty result for the element that
// triggered them; anything else aborts the running chain.
type ProviderError struct {
	Provider    string
	Recoverable bool
	Err         error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Recoverable wraps a provider failure that should degrade to "no match"
// for the element being evaluated.
func Recoverable(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Recoverable: true, Err: err}
}

// ModelIntegrityError reports a corrupt element model, such as a duplicate
// or missing element id. It is fatal: corpus construction halts.
type ModelIntegrityError struct {
	File string
	ID   string
	Err  error
}

func (e *ModelIntegrityError) Error() string {
	return fmt.Sprintf("model integrity: file %q, element %q: %v", e.File, e.ID, e.Err)
}

func (e *ModelIntegrityError) Unwrap() error { return e.Err }
