package optim

import (
	"math"

	"github.com/born-ml/fastnet/internal/nn"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Adam combines ideas from RMSprop and momentum:
//   - Maintains exponential moving averages of gradients (first moment)
//   - Maintains exponential moving averages of squared gradients (second moment)
//   - Applies bias correction to compensate for initialization at zero
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)  // Parameter update
//
// Moments are only advanced for updatable elements, so frozen nodes keep
// zero state and resume cleanly when unfrozen.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
//
// Example:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
type Adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	t     int                          // Timestep for bias correction
	m     map[*nn.Parameter][]float64 // First moment estimates
	v     map[*nn.Parameter][]float64 // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam(config AdamConfig) *Adam {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		lr:    config.LR,
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
		m:     make(map[*nn.Parameter][]float64),
		v:     make(map[*nn.Parameter][]float64),
	}
}

// Step performs a single optimization step using Adam algorithm.
func (a *Adam) Step(params []*nn.Parameter) {
	// Increment timestep
	a.t++

	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for _, p := range params {
		if !p.Trainable() {
			p.ZeroGrad()
			continue
		}

		m, ok := a.m[p]
		if !ok {
			m = make([]float64, p.Len())
			a.m[p] = m
		}
		v, ok := a.v[p]
		if !ok {
			v = make([]float64, p.Len())
			a.v[p] = v
		}

		a.updateParameter(p, m, v, biasCorrection1, biasCorrection2)
		p.ZeroGrad()
	}
}

// updateParameter performs Adam update for a single parameter.
func (a *Adam) updateParameter(p *nn.Parameter, m, v []float64, biasCorrection1, biasCorrection2 float64) {
	data, grad := p.Data(), p.Grad()
	for i := range data {
		if !p.Updatable(i) {
			continue
		}
		g := grad[i]

		m[i] = a.beta1*m[i] + (1.0-a.beta1)*g
		v[i] = a.beta2*v[i] + (1.0-a.beta2)*g*g

		mHat := m[i] / biasCorrection1
		vHat := v[i] / biasCorrection2

		data[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
	}
}

// EndEpoch is a no-op for Adam.
func (a *Adam) EndEpoch() {}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// Name returns "trainadam".
func (a *Adam) Name() string {
	return TrainAdam
}
