// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/fastnet/internal/nn"
)

// Parameter is a live view of one layer's weight matrix or bias vector.
//
// Example:
//
//	for _, p := range net.Parameters() {
//	    rows, cols := p.Dims()
//	    fmt.Println(p.Name(), rows, cols, p.Trainable())
//	}
//
// Methods:
//
//	Name() string
//	    Returns "layerN.weight" or "layerN.bias".
//
//	Data() []float64
//	    Returns the values, aliasing the layer's storage.
//
//	Grad() []float64
//	    Returns the accumulated gradient.
//
//	Updatable(i int) bool
//	    Reports whether training may change element i.
//
// Parameter is a type alias so values returned by Network.Parameters can be
// passed straight to the optim package.
type Parameter = nn.Parameter

// Loss is the training error measure.
type Loss = nn.Loss

// SquaredError reports the mean squared error and back-propagates y - t.
type SquaredError = nn.SquaredError
