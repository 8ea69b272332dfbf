package nn

import (
	"errors"
	"fmt"

	"github.com/born-ml/fastnet/internal/activation"
)

// Common errors.
var (
	// ErrShape reports a count or shape mismatch between the network
	// configuration and supplied data (construction, LoadWeights, training sets).
	ErrShape = errors.New("shape mismatch")

	// ErrDimension reports a single input or target vector of the wrong length.
	ErrDimension = errors.New("dimension mismatch")

	// ErrUnknownActivation reports an unrecognized transfer function name.
	ErrUnknownActivation = activation.ErrUnknownActivation
)

// UnknownActivationError is the detailed form of ErrUnknownActivation.
type UnknownActivationError = activation.UnknownActivationError

// ShapeError provides detailed information about a shape mismatch.
type ShapeError struct {
	Op      string // Operation that failed (e.g., "New", "LoadWeights")
	Layer   int    // 1-based layer index, 0 when the error is not layer specific
	Details string // What was expected and what was supplied
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Layer > 0 {
		return fmt.Sprintf("%s: layer %d: %s: %s", e.Op, e.Layer, ErrShape, e.Details)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrShape, e.Details)
}

// Unwrap returns ErrShape.
func (e *ShapeError) Unwrap() error {
	return ErrShape
}

// DimensionError provides detailed information about a vector length mismatch.
type DimensionError struct {
	Op    string // Operation that failed (e.g., "PropagateInput", "Sim")
	What  string // Which vector ("input", "target")
	Index int    // Row or sample index, -1 for single-vector calls
	Want  int
	Got   int
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s %d: %s: expected length %d, got %d",
			e.Op, e.What, e.Index, ErrDimension, e.Want, e.Got)
	}
	return fmt.Sprintf("%s: %s: %s: expected length %d, got %d",
		e.Op, e.What, ErrDimension, e.Want, e.Got)
}

// Unwrap returns ErrDimension.
func (e *DimensionError) Unwrap() error {
	return ErrDimension
}
