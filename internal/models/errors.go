// Package models defines the data structures for the churn prediction engine.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrMissingField        = errors.New("required field is missing")
	ErrNonFiniteValue      = errors.New("value must be a finite number")
	ErrInvalidArtifact     = errors.New("invalid model artifact")
	ErrUnsupportedModel    = errors.New("unsupported model type")
	ErrFeatureMismatch     = errors.New("feature vector does not match model")
	ErrNonFiniteFeature    = errors.New("feature is not a finite number")
	ErrInvalidProbability  = errors.New("churn probability outside [0, 1]")
	ErrArtifactNotFound    = errors.New("model artifact not found")
	ErrArtifactExists      = errors.New("model artifact version already published")
	ErrUnknownModelSource  = errors.New("unknown model source")
	ErrInvalidThreshold    = errors.New("churn threshold must be between 0 and 1")
	ErrClassifierNotLoaded = errors.New("classifier not loaded")
)

// InvalidNumericInputError is returned when a required field cannot be parsed
// as the numeric type it is declared with.
type InvalidNumericInputError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidNumericInputError) Error() string {
	if errors.Is(e.Err, ErrMissingField) {
		return fmt.Sprintf("missing required field %s", e.Field)
	}
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Field, e.Err)
}

func (e *InvalidNumericInputError) Unwrap() error {
	return e.Err
}

// UnknownCategoryError is returned when a categorical field does not belong
// to the encoder's known set after normalization.
type UnknownCategoryError struct {
	Field string
	Value string
	Known []string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s %q (expected one of: %s)", strings.ToLower(e.Field), e.Value, strings.Join(e.Known, ", "))
}

// ClassifierUnavailableError means the model artifact could not be loaded.
// It is only raised at startup and is not recoverable.
type ClassifierUnavailableError struct {
	Source string
	Err    error
}

func (e *ClassifierUnavailableError) Error() string {
	return fmt.Sprintf("classifier unavailable (source: %s): %v", e.Source, e.Err)
}

func (e *ClassifierUnavailableError) Unwrap() error {
	return e.Err
}
