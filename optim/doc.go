// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the weight update rules used for training.
//
// # Overview
//
// This package contains:
//   - SGD: gradient descent with momentum and learning rate decay ("traingd")
//   - RProp: resilient backpropagation ("trainrp")
//   - Adam: Adaptive Moment Estimation with bias correction ("trainadam")
//   - Optimizer interface for custom update rules
//
// Most callers pick an algorithm by name through train.Config and never use
// this package directly. It is useful for custom training loops.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/fastnet/nn"
//	    "github.com/born-ml/fastnet/optim"
//	)
//
//	func main() {
//	    optimizer, err := optim.New("trainrp", optim.Config{})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    for epoch := range 100 {
//	        // Accumulate gradients into every p.Grad()
//	        computeGradients(net, data)
//
//	        // Update parameters and clear gradients
//	        optimizer.Step(net.Parameters())
//	        optimizer.EndEpoch()
//	    }
//	}
//
// # Update Rules
//
// SGD (gradient descent):
//
//	optimizer := optim.NewSGD(optim.SGDConfig{
//	    LR:        0.05,
//	    Momentum:  0.9,
//	    DecFactor: 0.99,
//	})
//
// RProp (sign-based, per-element step sizes):
//
//	optimizer := optim.NewRProp(optim.RPropConfig{
//	    DeltaMax: 50,
//	    InitEta:  0.1,
//	})
//
// Adam (Adaptive Moment Estimation):
//
//	optimizer := optim.NewAdam(optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
//
// Every rule skips parameters of non-trainable layers, weight rows and bias
// entries of frozen nodes, and bias of layers that do not use bias.
package optim
