package analyses

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("analysis not found")
	ErrValidation       = errors.New("analysis response failed validation")
	ErrStoreUnavailable = errors.New("analysis store unavailable")
	ErrUpstream         = errors.New("analysis provider failed")
	ErrInvalidInput     = errors.New("invalid analysis input")
)

// ValidationError reports the first structural problem found in a model response.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return e.Path + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InputError names the request field that was rejected.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(path, format string, args ...any) error {
	return &ValidationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
