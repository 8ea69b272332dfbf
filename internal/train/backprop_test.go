package train

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/fastnet/internal/nn"
)

// flatParams returns the network parameters concatenated in order.
func flatParams(net *nn.Network) []float64 {
	var x []float64
	for _, p := range net.Parameters() {
		x = append(x, p.Data()...)
	}
	return x
}

func setParams(net *nn.Network, x []float64) {
	for _, p := range net.Parameters() {
		n := copy(p.Data(), x)
		x = x[n:]
	}
}

func flatGrads(ws *workspace) []float64 {
	var g []float64
	for i := range ws.gradW {
		g = append(g, ws.gradW[i].RawMatrix().Data...)
		g = append(g, ws.gradB[i]...)
	}
	return g
}

func TestBackprop_MatchesFiniteDifferences(t *testing.T) {
	net, err := nn.New([]int{3, 4, 3, 2}, []string{"tansig", "logsig", "purelin"}, []bool{true, true, true})
	require.NoError(t, err)
	net.InitWeights(0.8, 42)

	x := []float64{0.3, -1.2, 0.7}
	target := []float64{0.5, -0.25}

	bp := newBackprop(net, nn.SquaredError{})
	ws := newWorkspace(net)
	e := bp.accumulate(ws, sample{input: x, target: target, weight: 1})
	analytic := flatGrads(ws)

	// ½‖y − t‖², the loss whose gradient is y − t.
	orig := flatParams(net)
	half := func(p []float64) float64 {
		setParams(net, p)
		y, err := net.PropagateInput(x)
		if err != nil {
			panic(err)
		}
		var s float64
		for i := range y {
			d := y[i] - target[i]
			s += d * d
		}
		return s / 2
	}
	numeric := fd.Gradient(nil, half, orig, &fd.Settings{Formula: fd.Central})
	setParams(net, orig)

	require.Len(t, analytic, len(numeric))
	for i := range numeric {
		assert.InDelta(t, numeric[i], analytic[i], 1e-7, "parameter %d", i)
	}
	// Two outputs: the mean squared error equals ½‖y − t‖².
	assert.InDelta(t, half(orig), e, 1e-12)
}

func TestBackprop_SampleWeightScalesGradient(t *testing.T) {
	net, err := nn.New([]int{2, 3, 1}, []string{"tansig", "purelin"}, []bool{true, true})
	require.NoError(t, err)
	net.InitWeights(0.5, 3)
	bp := newBackprop(net, nn.SquaredError{})

	s := sample{input: []float64{1, -1}, target: []float64{0.2}, weight: 1}
	one := newWorkspace(net)
	bp.accumulate(one, s)

	s.weight = 0.25
	quarter := newWorkspace(net)
	bp.accumulate(quarter, s)

	g1, gq := flatGrads(one), flatGrads(quarter)
	for i := range g1 {
		assert.InDelta(t, 0.25*g1[i], gq[i], 1e-15)
	}
	assert.InDelta(t, one.err, quarter.err, 0, "error is not weighted")
}

func TestBackprop_StopsAtFirstTrainableLayer(t *testing.T) {
	net, err := nn.New([]int{2, 3, 1}, []string{"tansig", "tansig"}, []bool{false, true})
	require.NoError(t, err)
	net.InitWeights(0.5, 9)
	bp := newBackprop(net, nn.SquaredError{})
	assert.Equal(t, 1, bp.first)

	ws := newWorkspace(net)
	bp.accumulate(ws, sample{input: []float64{1, 2}, target: []float64{1}, weight: 1})
	assert.Equal(t, make([]float64, 6), ws.gradW[0].RawMatrix().Data, "no gradient for a fixed layer")
	assert.NotEqual(t, make([]float64, 3), ws.gradW[1].RawMatrix().Data)

	frozen, err := nn.New([]int{2, 1}, []string{"tansig"}, []bool{false})
	require.NoError(t, err)
	assert.Equal(t, -1, newBackprop(frozen, nn.SquaredError{}).first)
}

func TestBackprop_ReduceSumsWorkspaces(t *testing.T) {
	net, err := nn.New([]int{1, 1}, []string{"purelin"}, []bool{true})
	require.NoError(t, err)
	bp := newBackprop(net, nn.SquaredError{})

	a, b := newWorkspace(net), newWorkspace(net)
	a.gradW[0].Set(0, 0, 1.5)
	a.gradB[0][0] = -1
	b.gradW[0].Set(0, 0, 0.5)
	b.gradB[0][0] = 3

	bp.reduce([]*workspace{a, b})
	params := net.Parameters()
	assert.Equal(t, []float64{2}, params[0].Grad())
	assert.Equal(t, []float64{2}, params[1].Grad())

	a.reset()
	assert.Equal(t, 0.0, a.gradW[0].At(0, 0))
	assert.Equal(t, []float64{0}, a.gradB[0])
}

func TestSP(t *testing.T) {
	t.Run("perfect separation", func(t *testing.T) {
		assert.InDelta(t, 1.0, SP([]float64{0.9, 1, 0.4}, []float64{-1, -0.2}, 1, -1), 1e-15)
	})
	t.Run("no separation", func(t *testing.T) {
		assert.InDelta(t, 0.0, SP([]float64{0, 0}, []float64{0, 0}, 1, -1), 1e-15)
	})
	t.Run("partial", func(t *testing.T) {
		// Best threshold keeps half the signal and all the noise.
		want := 0.75 * math.Sqrt(0.5)
		assert.InDelta(t, want, SP([]float64{1, -1}, []float64{-1}, 1, -1), 1e-12)
	})
	t.Run("empty class", func(t *testing.T) {
		assert.Equal(t, 0.0, SP(nil, []float64{1}, 1, -1))
		assert.Equal(t, 0.0, SP([]float64{1}, nil, 1, -1))
	})
	t.Run("inputs untouched", func(t *testing.T) {
		sig := []float64{0.5, -0.3, 0.9}
		SP(sig, []float64{-0.5}, 1, -1)
		assert.Equal(t, []float64{0.5, -0.3, 0.9}, sig)
	})
}
