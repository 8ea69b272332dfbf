// Package activation implements the elementwise transfer functions used by
// network layers.
//
// Every layer picks its transfer function by name when the network is built.
// Names are resolved once into a Kind, which indexes a small dispatch table of
// (function, derivative) pairs:
//
//	kind, err := activation.Parse("tansig")
//	kind.Apply(out, pre)
//	kind.Derivative(grad, pre)
package activation

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownActivation is returned (wrapped) when a transfer function name is
// not recognized.
var ErrUnknownActivation = errors.New("unknown activation")

// UnknownActivationError reports which name failed to resolve.
type UnknownActivationError struct {
	Name  string // The offending name
	Layer int    // 1-based layer index, 0 when not known
}

// Error implements the error interface.
func (e *UnknownActivationError) Error() string {
	if e.Layer > 0 {
		return fmt.Sprintf("layer %d: unknown activation %q", e.Layer, e.Name)
	}
	return fmt.Sprintf("unknown activation %q", e.Name)
}

// Unwrap returns ErrUnknownActivation.
func (e *UnknownActivationError) Unwrap() error {
	return ErrUnknownActivation
}

// Kind identifies a transfer function.
type Kind uint8

// Supported transfer functions. Names follow the MATLAB toolbox convention.
const (
	Purelin Kind = iota // identity: f(x) = x
	Tansig              // hyperbolic tangent: f(x) = tanh(x)
	Logsig              // logistic sigmoid: f(x) = 1 / (1 + exp(-x))
	Poslin              // rectified linear: f(x) = max(0, x)
	numKinds
)

type entry struct {
	name  string
	fn    func(float64) float64
	deriv func(float64) float64 // derivative with respect to the pre-activation
}

var table = [numKinds]entry{
	Purelin: {
		name:  "purelin",
		fn:    func(x float64) float64 { return x },
		deriv: func(float64) float64 { return 1 },
	},
	Tansig: {
		name: "tansig",
		fn:   math.Tanh,
		deriv: func(x float64) float64 {
			t := math.Tanh(x)
			return 1 - t*t
		},
	},
	Logsig: {
		name: "logsig",
		fn:   sigmoid,
		deriv: func(x float64) float64 {
			s := sigmoid(x)
			return s * (1 - s)
		},
	},
	Poslin: {
		name: "poslin",
		fn:   func(x float64) float64 { return math.Max(0, x) },
		deriv: func(x float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		},
	},
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Parse resolves a transfer function name.
func Parse(name string) (Kind, error) {
	for k := range numKinds {
		if table[k].name == name {
			return k, nil
		}
	}
	return 0, &UnknownActivationError{Name: name}
}

// Names returns every recognized name in Kind order.
func Names() []string {
	names := make([]string, numKinds)
	for k := range numKinds {
		names[k] = table[k].name
	}
	return names
}

// String returns the canonical name of the transfer function.
func (k Kind) String() string {
	if k >= numKinds {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return table[k].name
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k < numKinds
}

// Eval applies the transfer function to a single value.
func (k Kind) Eval(x float64) float64 {
	return table[k].fn(x)
}

// Apply writes f(src[i]) into dst[i]. dst and src may alias.
//
// Panics if the lengths differ.
func (k Kind) Apply(dst, src []float64) {
	if len(dst) != len(src) {
		panic("activation: Apply length mismatch")
	}
	fn := table[k].fn
	for i, v := range src {
		dst[i] = fn(v)
	}
}

// Derivative writes f'(pre[i]) into dst[i], where pre holds the
// pre-activation values. dst and pre may alias.
//
// Panics if the lengths differ.
func (k Kind) Derivative(dst, pre []float64) {
	if len(dst) != len(pre) {
		panic("activation: Derivative length mismatch")
	}
	deriv := table[k].deriv
	for i, v := range pre {
		dst[i] = deriv(v)
	}
}
