package nn

import (
	"fmt"

	"github.com/born-ml/fastnet/internal/activation"
	"gonum.org/v1/gonum/mat"
)

// Layer is one affine transform followed by an elementwise transfer function.
//
// Performs the transformation: y = f(W·x + b)
// where:
//   - x is the input vector with length in_features
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with length out_features
//   - f is the layer's transfer function
//
// The shapes of W and b are fixed when the layer is created; loading and
// training only ever change element values.
//
// A layer that is not trainable still takes part in propagation and passes
// error back to earlier layers, but its parameters never receive updates.
// Individual output nodes can be frozen with SetFrozen, which pins the
// node's weight row and bias.
type Layer struct {
	index       int // 1-based position in the network
	inFeatures  int
	outFeatures int
	weight      *mat.Dense    // [out_features, in_features]
	bias        *mat.VecDense // [out_features]
	act         activation.Kind
	trainable   bool
	usingBias   bool
	frozen      []bool // per output node
	params      []*Parameter
}

func newLayer(index, inFeatures, outFeatures int, act activation.Kind, trainable bool) *Layer {
	l := &Layer{
		index:       index,
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      mat.NewDense(outFeatures, inFeatures, nil),
		bias:        mat.NewVecDense(outFeatures, nil),
		act:         act,
		trainable:   trainable,
		usingBias:   true,
		frozen:      make([]bool, outFeatures),
	}
	l.params = []*Parameter{
		newParameter(fmt.Sprintf("layer%d.weight", index), l, outFeatures, inFeatures, l.weight.RawMatrix().Data, false),
		newParameter(fmt.Sprintf("layer%d.bias", index), l, outFeatures, 1, l.bias.RawVector().Data, true),
	}
	return l
}

// clone returns a deep copy with fresh parameter storage and no gradients.
func (l *Layer) clone() *Layer {
	c := newLayer(l.index, l.inFeatures, l.outFeatures, l.act, l.trainable)
	c.weight.Copy(l.weight)
	c.bias.CopyVec(l.bias)
	c.usingBias = l.usingBias
	copy(c.frozen, l.frozen)
	return c
}

// Forward computes f(W·input + b).
//
// Returns a *DimensionError if len(input) != InFeatures().
func (l *Layer) Forward(input []float64) ([]float64, error) {
	if len(input) != l.inFeatures {
		return nil, &DimensionError{
			Op:    fmt.Sprintf("Layer(%d).Forward", l.index),
			What:  "input",
			Index: -1,
			Want:  l.inFeatures,
			Got:   len(input),
		}
	}
	out := make([]float64, l.outFeatures)
	l.ForwardInto(out, out, input)
	return out, nil
}

// ForwardInto computes the pre-activation W·input + b into pre and the
// activated output into post. pre and post may be the same slice, in which
// case only the activated output survives.
//
// Lengths are not validated beyond what gonum enforces; callers check them
// first. Panics on mismatch.
func (l *Layer) ForwardInto(pre, post, input []float64) {
	z := mat.NewVecDense(l.outFeatures, pre)
	z.MulVec(l.weight, mat.NewVecDense(l.inFeatures, input))
	z.AddVec(z, l.bias)
	l.act.Apply(post, pre)
}

// BackwardInto writes Wᵀ·delta into dst, the error seen at the layer input.
// dst must have InFeatures entries and delta OutFeatures entries.
func (l *Layer) BackwardInto(dst, delta []float64) {
	e := mat.NewVecDense(l.inFeatures, dst)
	e.MulVec(l.weight.T(), mat.NewVecDense(l.outFeatures, delta))
}

// SetWeights replaces the weight matrix and bias vector.
//
// w must be [OutFeatures, InFeatures] and b must have OutFeatures entries,
// otherwise a *ShapeError is returned and the layer is left unchanged.
// Values are copied. Loading into a non-trainable layer is allowed.
// When the layer does not use bias, b is validated but the bias stays zero.
func (l *Layer) SetWeights(w mat.Matrix, b []float64) error {
	if err := l.checkShapes(w, b); err != nil {
		return err
	}
	l.assign(w, b)
	return nil
}

func (l *Layer) checkShapes(w mat.Matrix, b []float64) error {
	if d, ok := w.(*mat.Dense); w == nil || (ok && d == nil) {
		return &ShapeError{Op: "SetWeights", Layer: l.index, Details: "nil weight matrix"}
	}
	r, c := w.Dims()
	if r != l.outFeatures || c != l.inFeatures {
		return &ShapeError{
			Op:      "SetWeights",
			Layer:   l.index,
			Details: fmt.Sprintf("weight: expected %dx%d, got %dx%d", l.outFeatures, l.inFeatures, r, c),
		}
	}
	if len(b) != l.outFeatures {
		return &ShapeError{
			Op:      "SetWeights",
			Layer:   l.index,
			Details: fmt.Sprintf("bias: expected length %d, got %d", l.outFeatures, len(b)),
		}
	}
	return nil
}

func (l *Layer) assign(w mat.Matrix, b []float64) {
	l.weight.Copy(w)
	if l.usingBias {
		copy(l.bias.RawVector().Data, b)
	}
}

// IsTrainable reports whether the layer's parameters receive training updates.
func (l *Layer) IsTrainable() bool {
	return l.trainable
}

// SetFrozen freezes or unfreezes a single output node. A frozen node's
// weight row and bias are never updated by training.
func (l *Layer) SetFrozen(node int, frozen bool) error {
	if node < 0 || node >= l.outFeatures {
		return &ShapeError{
			Op:      "SetFrozen",
			Layer:   l.index,
			Details: fmt.Sprintf("node %d out of range [0, %d)", node, l.outFeatures),
		}
	}
	l.frozen[node] = frozen
	return nil
}

// IsFrozen reports whether an output node is frozen. Nodes out of range are
// never frozen.
func (l *Layer) IsFrozen(node int) bool {
	return node >= 0 && node < l.outFeatures && l.frozen[node]
}

// FrozenNodes returns the indices of frozen output nodes.
func (l *Layer) FrozenNodes() []int {
	var nodes []int
	for i, f := range l.frozen {
		if f {
			nodes = append(nodes, i)
		}
	}
	return nodes
}

// SetUsingBias enables or disables the bias term. Disabling it zeroes the
// bias, which then stays zero through loading and training.
func (l *Layer) SetUsingBias(using bool) {
	l.usingBias = using
	if !using {
		l.bias.Zero()
	}
}

// UsingBias reports whether the layer has a bias term.
func (l *Layer) UsingBias() bool {
	return l.usingBias
}

// Weights returns a copy of the weight matrix.
func (l *Layer) Weights() *mat.Dense {
	return mat.DenseCopyOf(l.weight)
}

// Bias returns a copy of the bias vector.
func (l *Layer) Bias() []float64 {
	return append([]float64(nil), l.bias.RawVector().Data...)
}

// Activation returns the layer's transfer function.
func (l *Layer) Activation() activation.Kind {
	return l.act
}

// InFeatures returns the number of inputs.
func (l *Layer) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of outputs.
func (l *Layer) OutFeatures() int {
	return l.outFeatures
}

// Index returns the 1-based position of the layer in its network.
func (l *Layer) Index() int {
	return l.index
}

// Parameters returns the layer's live parameters: weight first, then bias.
//
// The returned Parameters alias the layer's storage so optimizers can update
// them in place.
func (l *Layer) Parameters() []*Parameter {
	return l.params
}
