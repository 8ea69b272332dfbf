// Package optim implements the weight update rules used by training.
//
// This package provides:
//   - Optimizer interface: Base interface for all update rules
//   - SGD: gradient descent with optional momentum and learning rate decay ("traingd")
//   - RProp: resilient backpropagation ("trainrp")
//   - Adam: Adaptive Moment Estimation ("trainadam")
//
// Optimizers read the gradient accumulated in each nn.Parameter, update only
// the elements the parameter reports as updatable, and clear the gradient.
//
// Example usage:
//
//	opt, err := optim.New("trainrp", optim.Config{})
//	if err != nil {
//	    return err
//	}
//
//	for epoch := range epochs {
//	    accumulateGradients(net, data) // fills p.Grad() for every parameter
//	    opt.Step(net.Parameters())
//	    opt.EndEpoch()
//	}
package optim

import (
	"errors"
	"fmt"

	"github.com/born-ml/fastnet/internal/nn"
)

// Algorithm names, following the MATLAB toolbox convention.
const (
	TrainGD   = "traingd"
	TrainRP   = "trainrp"
	TrainAdam = "trainadam"
)

// ErrUnknownAlgorithm is returned by New for an unrecognized algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown training algorithm")

// Optimizer is the base interface for all update rules.
//
// Optimizers update network parameters based on accumulated gradients to
// minimize the loss during training.
type Optimizer interface {
	// Step applies the accumulated gradients to every updatable element and
	// zeroes the gradients. Elements that are not updatable (non-trainable
	// layers, frozen nodes, disabled bias) are left untouched.
	Step(params []*nn.Parameter)

	// EndEpoch is called once after every training epoch.
	EndEpoch()

	// GetLR returns the current learning rate (0 for rules that have none).
	GetLR() float64

	// Name returns the algorithm name.
	Name() string
}

// Config is the union of every optimizer's hyperparameters. Zero values
// select each optimizer's defaults.
type Config struct {
	LR        float64 // Learning rate (SGD, Adam)
	DecFactor float64 // Learning rate multiplier applied after each epoch (SGD)
	Momentum  float64 // Momentum factor (SGD)
	RProp     RPropConfig
	Adam      AdamConfig
}

// New creates an optimizer by algorithm name.
func New(name string, cfg Config) (Optimizer, error) {
	switch name {
	case TrainGD, "":
		return NewSGD(SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum, DecFactor: cfg.DecFactor}), nil
	case TrainRP:
		return NewRProp(cfg.RProp), nil
	case TrainAdam:
		ac := cfg.Adam
		if ac.LR == 0 {
			ac.LR = cfg.LR
		}
		return NewAdam(ac), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// DefaultLR returns the learning rate the named algorithm uses when none is
// configured. RProp has no global learning rate and gets 0.
func DefaultLR(name string) float64 {
	switch name {
	case TrainAdam:
		return 0.001
	case TrainRP:
		return 0
	default:
		return 0.05
	}
}

// Algorithms lists the names New accepts.
func Algorithms() []string {
	return []string{TrainGD, TrainRP, TrainAdam}
}
