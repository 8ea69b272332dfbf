package nn

// Loss measures the discrepancy between a network output and its target.
type Loss interface {
	// Error returns the scalar error of one sample.
	Error(output, target []float64) float64

	// Gradient writes dLoss/dOutput into dst.
	Gradient(dst, output, target []float64)

	// Name identifies the loss in reports and saved files.
	Name() string
}

// SquaredError is the default training loss, L = ½·Σ(y − t)².
//
// Gradient returns y − t. Error reports the mean squared error
// Σ(y − t)² / n, which is the figure progress reports and stopping goals
// are expressed in.
type SquaredError struct{}

// Error returns Σ(output − target)² / len(output).
func (SquaredError) Error(output, target []float64) float64 {
	var sum float64
	for i, y := range output {
		d := y - target[i]
		sum += d * d
	}
	return sum / float64(len(output))
}

// Gradient writes output − target into dst.
func (SquaredError) Gradient(dst, output, target []float64) {
	for i, y := range output {
		dst[i] = y - target[i]
	}
}

// Name returns "mse".
func (SquaredError) Name() string {
	return "mse"
}
