// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/fastnet/internal/optim"
)

// Algorithm names accepted by New.
const (
	TrainGD   = optim.TrainGD
	TrainRP   = optim.TrainRP
	TrainAdam = optim.TrainAdam
)

// ErrUnknownAlgorithm is returned by New for an unrecognized name.
var ErrUnknownAlgorithm = optim.ErrUnknownAlgorithm

// Optimizer interface defines the common interface for all update rules.
type Optimizer = optim.Optimizer

// Config holds the hyperparameters of every update rule.
type Config = optim.Config

// New creates an update rule by algorithm name.
//
// Example:
//
//	optimizer, err := optim.New(optim.TrainGD, optim.Config{LR: 0.1, Momentum: 0.5})
func New(name string, cfg Config) (Optimizer, error) {
	return optim.New(name, cfg)
}

// Algorithms lists the names New accepts.
func Algorithms() []string {
	return optim.Algorithms()
}

// SGD (gradient descent)

// SGD represents gradient descent with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// RProp (resilient backpropagation)

// RProp represents resilient backpropagation.
type RProp = optim.RProp

// RPropConfig contains configuration for RProp.
type RPropConfig = optim.RPropConfig

// NewRProp creates a new RProp optimizer.
func NewRProp(config RPropConfig) *RProp {
	return optim.NewRProp(config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// Example:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{LR: 0.01})
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}
