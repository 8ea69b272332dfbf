// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/fastnet/internal/activation"
	"github.com/born-ml/fastnet/internal/nn"
)

// Network is a feedforward network of dense layers.
type Network = nn.Network

// Layer is one dense layer of a Network.
type Layer = nn.Layer

// New creates a network with every weight and bias at zero.
//
// topology lists the node count of each layer, input first, so a network
// with topology [2, 4, 1] has two layers. activations and trainable need
// one entry per layer.
//
// Example:
//
//	net, err := nn.New([]int{10, 12, 10, 20},
//	    []string{"tansig", "purelin", "purelin"},
//	    []bool{true, false, true})
func New(topology []int, activations []string, trainable []bool) (*Network, error) {
	return nn.New(topology, activations, trainable)
}

// Activation names a transfer function.
type Activation = activation.Kind

// Transfer functions.
const (
	Purelin = activation.Purelin
	Tansig  = activation.Tansig
	Logsig  = activation.Logsig
	Poslin  = activation.Poslin
)

// ParseActivation resolves a transfer function name such as "tansig".
func ParseActivation(name string) (Activation, error) {
	return activation.Parse(name)
}

// Activations lists every transfer function name New accepts.
func Activations() []string {
	return activation.Names()
}

// Errors

var (
	// ErrShape reports a count or shape mismatch between configuration and data.
	ErrShape = nn.ErrShape

	// ErrDimension reports a single vector of the wrong length.
	ErrDimension = nn.ErrDimension

	// ErrUnknownActivation reports an unrecognized transfer function name.
	ErrUnknownActivation = nn.ErrUnknownActivation
)

// ShapeError is the detailed form of ErrShape.
type ShapeError = nn.ShapeError

// DimensionError is the detailed form of ErrDimension.
type DimensionError = nn.DimensionError

// UnknownActivationError is the detailed form of ErrUnknownActivation.
type UnknownActivationError = nn.UnknownActivationError
