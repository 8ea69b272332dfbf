package optim

import (
	"github.com/born-ml/fastnet/internal/nn"
)

// SGD implements gradient descent with optional momentum and a per-epoch
// learning rate decay.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// After every epoch the learning rate is multiplied by DecFactor, so a
// DecFactor of 0.98 shrinks it by 2% per epoch to damp oscillation around
// the minimum.
//
// Example:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{
//	    LR:        0.05,
//	    DecFactor: 0.99,
//	})
type SGD struct {
	lr         float64
	momentum   float64
	decFactor  float64
	velocities map[*nn.Parameter][]float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR        float64 // Learning rate (default: 0.05)
	Momentum  float64 // Momentum factor (default: 0.0, range: [0, 1))
	DecFactor float64 // Per-epoch learning rate multiplier (default: 1, range: (0, 1])
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.05
	}
	if config.DecFactor == 0 {
		config.DecFactor = 1
	}

	return &SGD{
		lr:         config.LR,
		momentum:   config.Momentum,
		decFactor:  config.DecFactor,
		velocities: make(map[*nn.Parameter][]float64),
	}
}

// Step performs a single optimization step.
func (s *SGD) Step(params []*nn.Parameter) {
	for _, p := range params {
		if !p.Trainable() {
			p.ZeroGrad()
			continue
		}
		if s.momentum == 0 {
			s.updateParameter(p)
		} else {
			s.updateParameterWithMomentum(p)
		}
		p.ZeroGrad()
	}
}

// updateParameter performs simple update without momentum.
func (s *SGD) updateParameter(p *nn.Parameter) {
	data, grad := p.Data(), p.Grad()
	for i := range data {
		if p.Updatable(i) {
			data[i] -= s.lr * grad[i]
		}
	}
}

// updateParameterWithMomentum performs update with momentum.
func (s *SGD) updateParameterWithMomentum(p *nn.Parameter) {
	velocity, exists := s.velocities[p]
	if !exists {
		velocity = make([]float64, p.Len())
		s.velocities[p] = velocity
	}

	data, grad := p.Data(), p.Grad()
	for i := range data {
		if !p.Updatable(i) {
			continue
		}
		velocity[i] = s.momentum*velocity[i] + grad[i]
		data[i] -= s.lr * velocity[i]
	}
}

// EndEpoch applies the learning rate decay.
func (s *SGD) EndEpoch() {
	s.lr *= s.decFactor
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// Name returns "traingd".
func (s *SGD) Name() string {
	return TrainGD
}
