package transform

import (
	"fmt"

	"github.com/rgehrsitz/cantontax/internal/calculation"
)

// RequestTransform defines a what-if modification of a calculation request.
// Transforms are composable: comparison and the TUI apply them to a base request to
// answer questions like "what if we married" or "what if we moved to Zug".
type RequestTransform interface {
	// Apply returns a modified copy of base. base itself is never changed.
	Apply(base calculation.Request) (calculation.Request, error)

	// Name returns a short identifier for this transform (e.g., "set_status").
	Name() string

	// Description returns a human-readable description of what this transform does.
	Description() string

	// Validate checks the transform parameters against base without applying it.
	Validate(base calculation.Request) error
}

// ApplyTransforms applies a sequence of transforms to a base request, each transform
// receiving the output of the previous one.
func ApplyTransforms(base calculation.Request, transforms []RequestTransform) (calculation.Request, error) {
	current := base
	for i, transform := range transforms {
		if transform == nil {
			return calculation.Request{}, fmt.Errorf("transform at index %d is nil", i)
		}

		if err := transform.Validate(current); err != nil {
			return calculation.Request{}, fmt.Errorf("transform %s validation failed: %w", transform.Name(), err)
		}

		next, err := transform.Apply(current)
		if err != nil {
			return calculation.Request{}, fmt.Errorf("transform %s failed: %w", transform.Name(), err)
		}
		current = next
	}
	return current, nil
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}
