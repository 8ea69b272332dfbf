package train

import (
	"fmt"

	"github.com/born-ml/fastnet/internal/nn"
)

// Dataset is an optional set of (input, target) pairs.
//
// The zero value and NoData() are the absent variant. Training with an
// absent or empty dataset does nothing.
type Dataset struct {
	inputs  [][]float64
	targets [][]float64
	present bool
}

// NoData returns the absent dataset.
func NoData() Dataset {
	return Dataset{}
}

// NewDataset pairs inputs[k] with targets[k]. The slices are not copied.
func NewDataset(inputs, targets [][]float64) Dataset {
	return Dataset{inputs: inputs, targets: targets, present: true}
}

// Present reports whether data was supplied, even if it holds no samples.
func (d Dataset) Present() bool {
	return d.present
}

// Empty reports whether the dataset is absent or has no samples.
func (d Dataset) Empty() bool {
	return !d.present || (len(d.inputs) == 0 && len(d.targets) == 0)
}

// Len returns the number of samples.
func (d Dataset) Len() int {
	return len(d.inputs)
}

// Inputs returns the input vectors.
func (d Dataset) Inputs() [][]float64 {
	return d.inputs
}

// Targets returns the target vectors.
func (d Dataset) Targets() [][]float64 {
	return d.targets
}

// validate checks every sample against the network's input and output widths.
func (d Dataset) validate(op string, net *nn.Network) error {
	if len(d.inputs) != len(d.targets) {
		return &nn.ShapeError{
			Op:      op,
			Details: fmt.Sprintf("%d inputs but %d targets", len(d.inputs), len(d.targets)),
		}
	}
	in, out := net.InputSize(), net.OutputSize()
	for k := range d.inputs {
		if len(d.inputs[k]) != in {
			return &nn.DimensionError{Op: op, What: "input", Index: k, Want: in, Got: len(d.inputs[k])}
		}
		if len(d.targets[k]) != out {
			return &nn.DimensionError{Op: op, What: "target", Index: k, Want: out, Got: len(d.targets[k])}
		}
	}
	return nil
}

// PatternSet holds the input vectors of each class for pattern recognition
// training. Targets are generated: with two classes the network has one
// output, +1 for class 0 and -1 for class 1; with more classes output c is
// +1 for class c and -1 elsewhere.
//
// Each class carries the same total weight in the gradient regardless of
// how many samples it has.
type PatternSet struct {
	classes [][][]float64
	present bool
}

// NoPatterns returns the absent pattern set.
func NoPatterns() PatternSet {
	return PatternSet{}
}

// NewPatternSet builds a pattern set from per-class inputs. The slices are
// not copied.
func NewPatternSet(classes ...[][]float64) PatternSet {
	return PatternSet{classes: classes, present: true}
}

// Present reports whether a pattern set was supplied.
func (s PatternSet) Present() bool {
	return s.present
}

// Empty reports whether the set is absent or holds no samples at all.
func (s PatternSet) Empty() bool {
	return s.Len() == 0
}

// NumClasses returns the number of classes.
func (s PatternSet) NumClasses() int {
	return len(s.classes)
}

// Class returns the inputs of class c.
func (s PatternSet) Class(c int) [][]float64 {
	return s.classes[c]
}

// Len returns the total number of samples over all classes.
func (s PatternSet) Len() int {
	n := 0
	for _, c := range s.classes {
		n += len(c)
	}
	return n
}

// OutputSize returns the network output width the set trains: 1 for two
// classes, the class count otherwise.
func (s PatternSet) OutputSize() int {
	if len(s.classes) == 2 {
		return 1
	}
	return len(s.classes)
}

// Targets returns the generated target vector of every class.
func (s PatternSet) Targets() [][]float64 {
	n := s.OutputSize()
	targets := make([][]float64, len(s.classes))
	for c := range targets {
		t := make([]float64, n)
		for i := range t {
			t[i] = -1
		}
		if n == 1 {
			if c == 0 {
				t[0] = 1
			}
		} else {
			t[c] = 1
		}
		targets[c] = t
	}
	return targets
}

func (s PatternSet) validate(op string, net *nn.Network) error {
	if len(s.classes) < 2 {
		return &nn.ShapeError{Op: op, Details: fmt.Sprintf("pattern set needs at least 2 classes, got %d", len(s.classes))}
	}
	if out := s.OutputSize(); net.OutputSize() != out {
		return &nn.ShapeError{
			Op:      op,
			Details: fmt.Sprintf("%d classes need %d outputs, network has %d", len(s.classes), out, net.OutputSize()),
		}
	}
	in := net.InputSize()
	for c, class := range s.classes {
		if len(class) == 0 {
			return &nn.ShapeError{Op: op, Details: fmt.Sprintf("class %d has no samples", c)}
		}
		for k, x := range class {
			if len(x) != in {
				return &nn.DimensionError{Op: op, What: fmt.Sprintf("class %d input", c), Index: k, Want: in, Got: len(x)}
			}
		}
	}
	return nil
}
