package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/fastnet/internal/activation"
	"github.com/born-ml/fastnet/internal/parallel"
	"gonum.org/v1/gonum/mat"
)

// Network is a feedforward multi-layer perceptron: an ordered chain of
// Layers where each layer's output is the next layer's input.
//
// The network owns its layers exclusively. Layers are created by New and are
// never added or removed afterwards; only their parameter values change,
// through LoadWeights, InitWeights or training.
//
// Network has no internal locking. PropagateInput and Sim only read the
// parameters and may run concurrently with each other; anything that writes
// parameters (loading, training) must be serialized against them by the caller.
//
// Example:
//
//	net, err := nn.New([]int{3, 2, 1}, []string{"tansig", "purelin"}, []bool{true, true})
//	if err != nil {
//	    return err
//	}
//	out, err := net.PropagateInput([]float64{1, 2, 3})
type Network struct {
	topology []int
	layers   []*Layer
	par      parallel.Config
}

// New builds a network from a topology descriptor.
//
// topology has L+1 entries: topology[0] is the input width and topology[i]
// the output width of layer i. activations and trainable must each have L
// entries, otherwise a *ShapeError is returned. Activation names are resolved
// here, so an unknown name fails construction with an
// *UnknownActivationError instead of failing later during propagation.
//
// Every weight and bias starts at exactly zero. Use LoadWeights or
// InitWeights to set real values.
func New(topology []int, activations []string, trainable []bool) (*Network, error) {
	if len(topology) < 2 {
		return nil, &ShapeError{
			Op:      "New",
			Details: fmt.Sprintf("topology needs at least 2 entries (input and one layer), got %d", len(topology)),
		}
	}
	numLayers := len(topology) - 1
	if len(activations) != numLayers {
		return nil, &ShapeError{
			Op:      "New",
			Details: fmt.Sprintf("got %d activation names for %d layers", len(activations), numLayers),
		}
	}
	if len(trainable) != numLayers {
		return nil, &ShapeError{
			Op:      "New",
			Details: fmt.Sprintf("got %d trainable flags for %d layers", len(trainable), numLayers),
		}
	}
	for i, n := range topology {
		if n < 1 {
			return nil, &ShapeError{
				Op:      "New",
				Details: fmt.Sprintf("topology[%d] = %d, sizes must be positive", i, n),
			}
		}
	}

	kinds := make([]activation.Kind, numLayers)
	for i, name := range activations {
		k, err := activation.Parse(name)
		if err != nil {
			return nil, &activation.UnknownActivationError{Name: name, Layer: i + 1}
		}
		kinds[i] = k
	}

	net := &Network{
		topology: append([]int(nil), topology...),
		layers:   make([]*Layer, numLayers),
		par:      parallel.DefaultConfig(),
	}
	for i := range numLayers {
		net.layers[i] = newLayer(i+1, topology[i], topology[i+1], kinds[i], trainable[i])
	}
	return net, nil
}

// NumLayers returns the number of layers, len(topology) - 1.
func (n *Network) NumLayers() int {
	return len(n.layers)
}

// Topology returns a copy of the topology descriptor.
func (n *Network) Topology() []int {
	return append([]int(nil), n.topology...)
}

// InputSize returns topology[0].
func (n *Network) InputSize() int {
	return n.topology[0]
}

// OutputSize returns the width of the last layer.
func (n *Network) OutputSize() int {
	return n.topology[len(n.topology)-1]
}

// Layer returns layer i, counting from 0.
//
// Panics if i is out of range.
func (n *Network) Layer(i int) *Layer {
	if i < 0 || i >= len(n.layers) {
		panic(fmt.Sprintf("Network.Layer: index %d out of range [0, %d)", i, len(n.layers)))
	}
	return n.layers[i]
}

// Layers returns the layers in propagation order. The slice is a copy but
// the layers are the network's own.
func (n *Network) Layers() []*Layer {
	return append([]*Layer(nil), n.layers...)
}

// Activations returns each layer's transfer function name.
func (n *Network) Activations() []string {
	names := make([]string, len(n.layers))
	for i, l := range n.layers {
		names[i] = l.act.String()
	}
	return names
}

// TrainableFlags returns each layer's trainable flag.
func (n *Network) TrainableFlags() []bool {
	flags := make([]bool, len(n.layers))
	for i, l := range n.layers {
		flags[i] = l.trainable
	}
	return flags
}

// Parameters returns every layer's live parameters in layer order.
func (n *Network) Parameters() []*Parameter {
	params := make([]*Parameter, 0, 2*len(n.layers))
	for _, l := range n.layers {
		params = append(params, l.params...)
	}
	return params
}

// SetParallel sets the worker configuration used by Sim.
func (n *Network) SetParallel(cfg parallel.Config) {
	n.par = cfg
}

// LoadWeights assigns every layer's weight matrix and bias vector,
// positionally.
//
// The operation is all-or-nothing: every layer's shapes are checked before
// any layer is written, so a *ShapeError leaves the whole network unchanged.
func (n *Network) LoadWeights(weights []*mat.Dense, biases [][]float64) error {
	if len(weights) != len(n.layers) || len(biases) != len(n.layers) {
		return &ShapeError{
			Op: "LoadWeights",
			Details: fmt.Sprintf("got %d weight matrices and %d bias vectors for %d layers",
				len(weights), len(biases), len(n.layers)),
		}
	}
	for i, l := range n.layers {
		if weights[i] == nil {
			return &ShapeError{Op: "LoadWeights", Layer: i + 1, Details: "nil weight matrix"}
		}
		if err := l.checkShapes(weights[i], biases[i]); err != nil {
			return relabel(err, "LoadWeights")
		}
	}
	for i, l := range n.layers {
		l.assign(weights[i], biases[i])
	}
	return nil
}

// LoadWeightSlices is LoadWeights for nested slices, as produced by a
// binding layer or a JSON document. weights[i] is row-major with one row per
// output node. Ragged rows are rejected with a *ShapeError; nothing is
// truncated or padded.
func (n *Network) LoadWeightSlices(weights [][][]float64, biases [][]float64) error {
	if len(weights) != len(n.layers) {
		return &ShapeError{
			Op:      "LoadWeights",
			Details: fmt.Sprintf("got %d weight matrices for %d layers", len(weights), len(n.layers)),
		}
	}
	dense := make([]*mat.Dense, len(weights))
	for i, rows := range weights {
		l := n.layers[i]
		if len(rows) != l.outFeatures {
			return &ShapeError{
				Op:      "LoadWeights",
				Layer:   i + 1,
				Details: fmt.Sprintf("weight: expected %d rows, got %d", l.outFeatures, len(rows)),
			}
		}
		data := make([]float64, 0, l.outFeatures*l.inFeatures)
		for j, row := range rows {
			if len(row) != l.inFeatures {
				return &ShapeError{
					Op:      "LoadWeights",
					Layer:   i + 1,
					Details: fmt.Sprintf("weight row %d: expected %d columns, got %d", j, l.inFeatures, len(row)),
				}
			}
			data = append(data, row...)
		}
		dense[i] = mat.NewDense(l.outFeatures, l.inFeatures, data)
	}
	return n.LoadWeights(dense, biases)
}

func relabel(err error, op string) error {
	if se, ok := err.(*ShapeError); ok {
		c := *se
		c.Op = op
		return &c
	}
	return err
}

// Weights returns copies of every layer's weight matrix.
func (n *Network) Weights() []*mat.Dense {
	w := make([]*mat.Dense, len(n.layers))
	for i, l := range n.layers {
		w[i] = l.Weights()
	}
	return w
}

// Biases returns copies of every layer's bias vector.
func (n *Network) Biases() [][]float64 {
	b := make([][]float64, len(n.layers))
	for i, l := range n.layers {
		b[i] = l.Bias()
	}
	return b
}

// PropagateInput runs x through every layer in order and returns the output
// of the last layer.
//
// The result depends only on the current parameters and x; no state is kept
// between calls. Returns a *DimensionError if len(x) != InputSize().
func (n *Network) PropagateInput(x []float64) ([]float64, error) {
	if len(x) != n.topology[0] {
		return nil, &DimensionError{Op: "PropagateInput", What: "input", Index: -1, Want: n.topology[0], Got: len(x)}
	}
	return n.propagate(x), nil
}

// propagate assumes len(x) has been validated.
func (n *Network) propagate(x []float64) []float64 {
	in := x
	for _, l := range n.layers {
		out := make([]float64, l.outFeatures)
		l.ForwardInto(out, out, in)
		in = out
	}
	return in
}

// Sim propagates every row of X and returns the outputs in row order.
//
// Sim(X)[k] is bit-identical to PropagateInput(X[k]): each row goes through
// the same code path, possibly on a different goroutine. Every row is
// validated first; a bad row fails the whole call with a *DimensionError
// naming it and no output is returned.
func (n *Network) Sim(X [][]float64) ([][]float64, error) {
	for k, x := range X {
		if len(x) != n.topology[0] {
			return nil, &DimensionError{Op: "Sim", What: "row", Index: k, Want: n.topology[0], Got: len(x)}
		}
	}

	out := make([][]float64, len(X))
	parallel.For(len(X), func(k int) {
		out[k] = n.propagate(X[k])
	}, n.par)
	return out, nil
}

// Clone returns a deep copy of the network. Gradients are not copied.
func (n *Network) Clone() *Network {
	c := &Network{
		topology: append([]int(nil), n.topology...),
		layers:   make([]*Layer, len(n.layers)),
		par:      n.par,
	}
	for i, l := range n.layers {
		c.layers[i] = l.clone()
	}
	return c
}

// String describes the network configuration, one line per layer.
func (n *Network) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Network: %d layers, topology %v\n", len(n.layers), n.topology)
	for _, l := range n.layers {
		fmt.Fprintf(&sb, "  layer %d: %d -> %d, %s, trainable=%t, bias=%t",
			l.index, l.inFeatures, l.outFeatures, l.act, l.trainable, l.usingBias)
		if frozen := l.FrozenNodes(); len(frozen) > 0 {
			fmt.Fprintf(&sb, ", frozen=%v", frozen)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
