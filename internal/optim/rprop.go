package optim

import (
	"math"

	"github.com/born-ml/fastnet/internal/nn"
)

// RProp implements resilient backpropagation.
//
// Only the sign of each gradient is used. Every element keeps its own step
// size, which grows by IncEta while the gradient keeps its sign and shrinks
// by DecEta when the sign flips:
//
//	if g_prev * g > 0: delta = min(delta * IncEta, DeltaMax)
//	if g_prev * g < 0: delta = max(delta * DecEta, DeltaMin)
//	param = param - sign(g) * delta
//
// Because gradient magnitudes are ignored, RProp is insensitive to how the
// per-sample gradients were weighted.
type RProp struct {
	cfg   RPropConfig
	state map[*nn.Parameter]*rpropState
}

type rpropState struct {
	delta    []float64
	prevGrad []float64
}

// RPropConfig holds configuration for RProp.
type RPropConfig struct {
	DeltaMax float64 // Largest step size (default: 50)
	DeltaMin float64 // Smallest step size (default: 1e-6)
	IncEta   float64 // Growth factor (default: 1.1)
	DecEta   float64 // Shrink factor (default: 0.5)
	InitEta  float64 // Initial step size (default: 0.1)
}

// NewRProp creates a new RProp optimizer.
func NewRProp(config RPropConfig) *RProp {
	if config.DeltaMax == 0 {
		config.DeltaMax = 50
	}
	if config.DeltaMin == 0 {
		config.DeltaMin = 1e-6
	}
	if config.IncEta == 0 {
		config.IncEta = 1.1
	}
	if config.DecEta == 0 {
		config.DecEta = 0.5
	}
	if config.InitEta == 0 {
		config.InitEta = 0.1
	}
	return &RProp{
		cfg:   config,
		state: make(map[*nn.Parameter]*rpropState),
	}
}

// Step performs a single optimization step.
func (r *RProp) Step(params []*nn.Parameter) {
	for _, p := range params {
		if !p.Trainable() {
			p.ZeroGrad()
			continue
		}
		st := r.stateFor(p)
		data, grad := p.Data(), p.Grad()
		for i := range data {
			if !p.Updatable(i) {
				continue
			}
			g := grad[i]
			switch v := st.prevGrad[i] * g; {
			case v > 0:
				st.delta[i] = math.Min(st.delta[i]*r.cfg.IncEta, r.cfg.DeltaMax)
			case v < 0:
				st.delta[i] = math.Max(st.delta[i]*r.cfg.DecEta, r.cfg.DeltaMin)
			}
			data[i] -= sign(g) * st.delta[i]
			st.prevGrad[i] = g
		}
		p.ZeroGrad()
	}
}

func (r *RProp) stateFor(p *nn.Parameter) *rpropState {
	st, ok := r.state[p]
	if !ok {
		st = &rpropState{
			delta:    make([]float64, p.Len()),
			prevGrad: make([]float64, p.Len()),
		}
		for i := range st.delta {
			st.delta[i] = r.cfg.InitEta
		}
		r.state[p] = st
	}
	return st
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// EndEpoch is a no-op; RProp adapts step sizes in Step.
func (r *RProp) EndEpoch() {}

// GetLR returns 0: RProp has no global learning rate.
func (r *RProp) GetLR() float64 {
	return 0
}

// Name returns "trainrp".
func (r *RProp) Name() string {
	return TrainRP
}
