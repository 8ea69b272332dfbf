package train

import (
	"errors"
	"fmt"

	"github.com/born-ml/fastnet/internal/optim"
	"github.com/born-ml/fastnet/internal/parallel"
	"github.com/born-ml/fastnet/internal/report"
)

// ErrConfig reports an invalid training configuration.
var ErrConfig = errors.New("invalid training configuration")

// Config holds the training parameters.
//
// Zero values select the defaults listed next to each field.
type Config struct {
	Algorithm    string  // "traingd" (default), "trainrp" or "trainadam"
	LearningRate float64 // Step size for traingd (default: 0.05) and trainadam (default: 0.001)
	DecFactor    float64 // Learning rate multiplier applied after every epoch (default: 1)
	Momentum     float64 // traingd momentum (default: 0)
	Epochs       int     // Maximum number of epochs (default: 100)
	Goal         float64 // Stop once the training error is at or below Goal (0 disables)
	MaxFail      int     // Stop after MaxFail epochs without validation improvement (0 disables)
	Show         int     // Report status every Show epochs (0 is silent)
	EpochSize    int     // Samples drawn per epoch, per class for pattern sets (0 uses every sample)
	Seed         uint64  // Seeds sample drawing when EpochSize > 0
	Workers      int     // Gradient workers (0 picks from the CPU, 1 is sequential)
	UseSP        bool    // Pattern sets only: validate with the SP product instead of MSE

	// Reporter receives status lines. Nil discards them.
	Reporter report.Reporter
}

// DefaultConfig returns the configuration used when every field is zero.
func DefaultConfig() Config {
	return Config{
		Algorithm:    optim.TrainGD,
		LearningRate: 0.05,
		DecFactor:    1,
		Epochs:       100,
	}
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Algorithm == "" {
		c.Algorithm = d.Algorithm
	}
	if c.LearningRate == 0 {
		c.LearningRate = optim.DefaultLR(c.Algorithm)
	}
	if c.DecFactor == 0 {
		c.DecFactor = d.DecFactor
	}
	if c.Epochs == 0 {
		c.Epochs = d.Epochs
	}
	if c.Reporter == nil {
		c.Reporter = report.Discard()
	}
	return c
}

// Validate reports whether c (after defaults) describes a runnable training.
func (c Config) Validate() error {
	c = c.withDefaults()
	if _, err := optim.New(c.Algorithm, optim.Config{}); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	switch {
	case c.LearningRate < 0:
		return fmt.Errorf("%w: learning rate must be positive, got %g", ErrConfig, c.LearningRate)
	case c.DecFactor < 0 || c.DecFactor > 1:
		return fmt.Errorf("%w: dec factor must be in (0, 1], got %g", ErrConfig, c.DecFactor)
	case c.Momentum < 0 || c.Momentum >= 1:
		return fmt.Errorf("%w: momentum must be in [0, 1), got %g", ErrConfig, c.Momentum)
	case c.Epochs < 0:
		return fmt.Errorf("%w: epochs must be positive, got %d", ErrConfig, c.Epochs)
	case c.Goal < 0:
		return fmt.Errorf("%w: goal must not be negative, got %g", ErrConfig, c.Goal)
	case c.MaxFail < 0:
		return fmt.Errorf("%w: max fail must not be negative, got %d", ErrConfig, c.MaxFail)
	case c.Show < 0:
		return fmt.Errorf("%w: show must not be negative, got %d", ErrConfig, c.Show)
	case c.EpochSize < 0:
		return fmt.Errorf("%w: epoch size must not be negative, got %d", ErrConfig, c.EpochSize)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrConfig, c.Workers)
	}
	return nil
}

func (c Config) optimizer() (optim.Optimizer, error) {
	return optim.New(c.Algorithm, optim.Config{
		LR:        c.LearningRate,
		DecFactor: c.DecFactor,
		Momentum:  c.Momentum,
		Adam:      optim.AdamConfig{LR: c.LearningRate},
	})
}

// parallelism maps Workers onto a parallel.Config. A fixed worker count gives
// a fixed chunk split and therefore reproducible gradient sums.
func (c Config) parallelism() parallel.Config {
	switch c.Workers {
	case 0:
		return parallel.DefaultConfig()
	case 1:
		return parallel.Sequential()
	default:
		return parallel.Config{Enabled: true, NumWorkers: c.Workers, MinChunkSize: 1}
	}
}
