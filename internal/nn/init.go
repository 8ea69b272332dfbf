package nn

import (
	"math"
	"math/rand/v2"
)

// initStream decorrelates the PCG stream from the user-visible seed.
const initStream = 0x9e3779b97f4a7c15

// InitWeights fills every weight and bias with values drawn uniformly from
// [-r, r], using a PCG generator seeded with seed. Layers are visited in
// order, weights row by row before the bias, so the same seed always
// produces bit-identical parameters.
//
// Bias stays zero for layers that do not use bias. Trainable flags and
// frozen nodes do not matter here: initialization is not training.
func (n *Network) InitWeights(r float64, seed uint64) {
	//nolint:gosec // Weight initialization is not security sensitive.
	rng := rand.New(rand.NewPCG(seed, initStream))
	uniform := func() float64 {
		return (rng.Float64()*2 - 1) * r
	}

	for _, l := range n.layers {
		w := l.weight.RawMatrix().Data
		for i := range w {
			w[i] = uniform()
		}
		if !l.usingBias {
			continue
		}
		b := l.bias.RawVector().Data
		for i := range b {
			b[i] = uniform()
		}
	}
}

// Xavier fills the weights using Xavier/Glorot uniform initialization,
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))) per layer, and
// zeroes the biases. Deterministic for a given seed.
func (n *Network) Xavier(seed uint64) {
	//nolint:gosec // Weight initialization is not security sensitive.
	rng := rand.New(rand.NewPCG(seed, initStream))
	for _, l := range n.layers {
		bound := math.Sqrt(6.0 / float64(l.inFeatures+l.outFeatures))
		w := l.weight.RawMatrix().Data
		for i := range w {
			w[i] = (rng.Float64()*2 - 1) * bound
		}
		l.bias.Zero()
	}
}
