package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals hyperparameters or input that cannot produce a usable index.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrNotFitted signals a transform against an index that was never fitted.
	ErrNotFitted = errors.New("index not fitted")
	// ErrNotIndexed signals scoring against an index that was never built.
	ErrNotIndexed = errors.New("corpus not indexed")
	// ErrVectorMismatch signals a query vector produced by a different index.
	ErrVectorMismatch = errors.New("query vector belongs to a different index")
	// ErrLoad signals a corrupt, missing or incompatible persisted artifact.
	ErrLoad = errors.New("load failed")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrPolicyChannel signals a policy channel transport failure.
	ErrPolicyChannel = errors.New("policy channel error")
	// ErrPolicyQuotaExceeded signals an exhausted policy channel token budget.
	ErrPolicyQuotaExceeded = errors.New("policy token quota exceeded")
)

// LoadError wraps ErrLoad with the artifact that failed to load.
type LoadError struct {
	Artifact string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s %s: %v", ErrLoad.Error(), e.Artifact, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is.
func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// NewLoadError creates a load error for the named artifact.
func NewLoadError(artifact string, err error) error {
	return &LoadError{Artifact: artifact, Err: err}
}

// Configurationf formats a configuration error wrapping ErrConfiguration.
func Configurationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
