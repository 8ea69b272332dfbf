package train

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/fastnet/internal/nn"
)

// sample is one weighted training pair of an epoch plan.
type sample struct {
	input  []float64
	target []float64
	weight float64 // contribution of this sample to the epoch gradient
}

// workspace is one worker's private forward cache and gradient accumulators.
// Workers never share a workspace, so accumulation needs no locking.
type workspace struct {
	pre   [][]float64 // pre-activation per layer
	post  [][]float64 // activated output per layer
	deriv [][]float64 // transfer function derivative per layer
	delta [][]float64 // error at each layer output, then its local gradient
	gradW []*mat.Dense
	gradB [][]float64
	err   float64 // summed sample error
}

func newWorkspace(net *nn.Network) *workspace {
	layers := net.Layers()
	ws := &workspace{
		pre:   make([][]float64, len(layers)),
		post:  make([][]float64, len(layers)),
		deriv: make([][]float64, len(layers)),
		delta: make([][]float64, len(layers)),
		gradW: make([]*mat.Dense, len(layers)),
		gradB: make([][]float64, len(layers)),
	}
	for i, l := range layers {
		out := l.OutFeatures()
		ws.pre[i] = make([]float64, out)
		ws.post[i] = make([]float64, out)
		ws.deriv[i] = make([]float64, out)
		ws.delta[i] = make([]float64, out)
		ws.gradW[i] = mat.NewDense(out, l.InFeatures(), nil)
		ws.gradB[i] = make([]float64, out)
	}
	return ws
}

func (ws *workspace) reset() {
	for i := range ws.gradW {
		ws.gradW[i].Zero()
		clear(ws.gradB[i])
	}
	ws.err = 0
}

// backprop runs the error back-propagation algorithm over a network.
type backprop struct {
	net    *nn.Network
	loss   nn.Loss
	layers []*nn.Layer
	// first is the index of the earliest trainable layer; the backward pass
	// stops there.
	first int
}

func newBackprop(net *nn.Network, loss nn.Loss) *backprop {
	b := &backprop{net: net, loss: loss, layers: net.Layers(), first: -1}
	for i, l := range b.layers {
		if l.IsTrainable() {
			b.first = i
			break
		}
	}
	return b
}

// accumulate adds s.weight times the loss gradient of one sample to ws and
// returns the sample error.
func (b *backprop) accumulate(ws *workspace, s sample) float64 {
	in := s.input
	for i, l := range b.layers {
		l.ForwardInto(ws.pre[i], ws.post[i], in)
		in = ws.post[i]
	}

	last := len(b.layers) - 1
	out := ws.post[last]
	e := b.loss.Error(out, s.target)
	ws.err += e
	if b.first < 0 {
		return e
	}

	b.loss.Gradient(ws.delta[last], out, s.target)
	for i := last; i >= b.first; i-- {
		l := b.layers[i]
		d := ws.delta[i]
		l.Activation().Derivative(ws.deriv[i], ws.pre[i])
		floats.Mul(d, ws.deriv[i])

		if l.IsTrainable() {
			input := s.input
			if i > 0 {
				input = ws.post[i-1]
			}
			ws.gradW[i].RankOne(ws.gradW[i], s.weight, mat.NewVecDense(len(d), d), mat.NewVecDense(len(input), input))
			floats.AddScaled(ws.gradB[i], s.weight, d)
		}
		if i > b.first {
			l.BackwardInto(ws.delta[i-1], d)
		}
	}
	return e
}

// reduce adds every workspace's gradients to the network parameters in
// workspace order.
func (b *backprop) reduce(wss []*workspace) {
	for i, l := range b.layers {
		if !l.IsTrainable() {
			continue
		}
		params := l.Parameters()
		gw, gb := params[0].Grad(), params[1].Grad()
		for _, ws := range wss {
			floats.Add(gw, ws.gradW[i].RawMatrix().Data)
			floats.Add(gb, ws.gradB[i])
		}
	}
}
