// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the feedforward network: layers of dense affine
// transforms, each followed by a named transfer function.
//
// # Overview
//
// This package contains:
//   - Network: topology, per-layer activation and trainable flags
//   - Layer: weight matrix [out, in], bias vector [out], frozen nodes
//   - Errors: ShapeError, DimensionError, UnknownActivationError
//   - Persistence: Save, Load and ExportSafeTensors
//
// # Basic Usage
//
//	import "github.com/born-ml/fastnet/nn"
//
//	func main() {
//	    net, err := nn.New(
//	        []int{2, 4, 1},
//	        []string{"tansig", "purelin"},
//	        []bool{true, true},
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    net.InitWeights(0.5, 1)
//
//	    out, err := net.PropagateInput([]float64{0, 1})
//	}
//
// # Activations
//
// Layers name their transfer function when the network is built:
//
//	purelin  f(x) = x
//	tansig   f(x) = tanh(x)
//	logsig   f(x) = 1 / (1 + exp(-x))
//	poslin   f(x) = max(0, x)
//
// Unknown names fail New with an *UnknownActivationError.
//
// # Loading Weights
//
// LoadWeights replaces every layer's weights and biases at once. Shapes are
// checked for all layers before any value changes, so a failed load leaves
// the network exactly as it was:
//
//	err := net.LoadWeights(
//	    []*mat.Dense{w1, w2},
//	    [][]float64{b1, b2},
//	)
//	if errors.Is(err, nn.ErrShape) {
//	    // network unchanged
//	}
//
// # Batch Propagation
//
// Sim propagates every row of a batch and returns the outputs in order.
// Each row is bit-identical to PropagateInput on that row:
//
//	outputs, err := net.Sim([][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}})
package nn
