package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrUntrainedModel  = errors.New("model has not been trained")
	ErrModelNotFound   = errors.New("model artifact not found")
	ErrEmptyDataset    = errors.New("dataset contains no rows")
	ErrFeatureMismatch = errors.New("feature vector does not match trained column order")
	ErrUnknownTeam     = errors.New("unknown team")
)

// ValidationError reports an input that violates a rating or form constraint.
// The message names the constraint and the offending value or count.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ComputationError wraps a numeric failure inside the pipeline. It is
// propagated to the caller, never retried or replaced with a default.
type ComputationError struct {
	Stage string
	Err   error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation failed during %s: %v", e.Stage, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}
