package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrMissingAttribute = errors.New("missing attribute")
	ErrUnparsable       = errors.New("not a number")
)

// ValidationReason says why a raw attribute was rejected.
type ValidationReason string

const (
	ReasonMissing         ValidationReason = "missing"
	ReasonUnparsable      ValidationReason = "unparsable"
	ReasonUnknownCategory ValidationReason = "unknown_category"
)

// ValidationError reports a raw attribute that cannot enter a feature vector.
type ValidationError struct {
	Field  string
	Reason ValidationReason
	Err    error
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonMissing:
		return fmt.Sprintf("%s is required", e.Field)
	case ReasonUnparsable:
		return fmt.Sprintf("%s must be a number", e.Field)
	case ReasonUnknownCategory:
		return fmt.Sprintf("%s has an unknown value", e.Field)
	default:
		return fmt.Sprintf("%s is invalid", e.Field)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InferenceError wraps a failure raised by the classifier. Retrying with the
// same vector reproduces it.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	if e.Err == nil {
		return "inference failed"
	}
	return "inference failed: " + e.Err.Error()
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsInferenceError reports whether err is, or wraps, an InferenceError.
func IsInferenceError(err error) bool {
	var i *InferenceError
	return errors.As(err, &i)
}
