package nn

// Parameter is a live view of one of a layer's trainable values: the weight
// matrix (row-major, one row per output node) or the bias vector.
//
// Optimizers update Data in place and must consult Updatable, which folds the
// layer's trainable flag, frozen nodes and bias usage into a per-element
// answer.
//
// Example:
//
//	for _, p := range layer.Parameters() {
//	    data, grad := p.Data(), p.Grad()
//	    for i := range data {
//	        if p.Updatable(i) {
//	            data[i] -= lr * grad[i]
//	        }
//	    }
//	    p.ZeroGrad()
//	}
type Parameter struct {
	name   string    // Parameter name (e.g., "layer1.weight")
	layer  *Layer    // Owning layer
	rows   int       // Output nodes
	cols   int       // Inputs per node (1 for bias)
	data   []float64 // Aliases the layer's storage
	grad   []float64 // Gradient accumulator, allocated on first use
	isBias bool
}

func newParameter(name string, layer *Layer, rows, cols int, data []float64, isBias bool) *Parameter {
	return &Parameter{
		name:   name,
		layer:  layer,
		rows:   rows,
		cols:   cols,
		data:   data,
		isBias: isBias,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Layer returns the owning layer.
func (p *Parameter) Layer() *Layer {
	return p.layer
}

// Dims returns the parameter shape as [rows, cols]. Bias parameters have one column.
func (p *Parameter) Dims() (rows, cols int) {
	return p.rows, p.cols
}

// Len returns the number of elements.
func (p *Parameter) Len() int {
	return len(p.data)
}

// IsBias reports whether this is the bias vector.
func (p *Parameter) IsBias() bool {
	return p.isBias
}

// Data returns the live parameter values.
func (p *Parameter) Data() []float64 {
	return p.data
}

// Grad returns the gradient accumulator, allocating zeros on first use.
func (p *Parameter) Grad() []float64 {
	if p.grad == nil {
		p.grad = make([]float64, len(p.data))
	}
	return p.grad
}

// ZeroGrad resets the gradient accumulator.
func (p *Parameter) ZeroGrad() {
	clear(p.grad)
}

// Updatable reports whether element i may be changed by training.
func (p *Parameter) Updatable(i int) bool {
	l := p.layer
	if !l.trainable {
		return false
	}
	if p.isBias && !l.usingBias {
		return false
	}
	return !l.frozen[i/p.cols]
}

// Trainable reports whether any element of the parameter may be changed.
func (p *Parameter) Trainable() bool {
	l := p.layer
	if !l.trainable || (p.isBias && !l.usingBias) {
		return false
	}
	for _, f := range l.frozen {
		if !f {
			return true
		}
	}
	return false
}
