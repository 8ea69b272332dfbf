// Package config loads network and training settings from YAML files.
//
// A file has two sections:
//
//	network:
//	  topology: [2, 4, 1]
//	  activations: [tansig, purelin]
//	  trainable: [true, true]      # default: every layer trainable
//	  using_bias: [true, true]     # default: every layer uses bias
//	  frozen_nodes: {1: [0, 3]}    # 1-based layer -> output nodes
//	  init: uniform                # "uniform" (default), "xavier" or "zero"
//	  init_range: 0.5
//	  seed: 7
//	training:
//	  algorithm: trainrp
//	  epochs: 500
//	  goal: 0.001
//	  max_fail: 50
//	  show: 10
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/fastnet/internal/nn"
	"github.com/born-ml/fastnet/internal/optim"
	"github.com/born-ml/fastnet/internal/report"
	"github.com/born-ml/fastnet/internal/train"
)

// ErrInvalidConfig reports a configuration file that cannot describe a network.
var ErrInvalidConfig = errors.New("invalid configuration")

// Weight initialization schemes.
const (
	InitUniform = "uniform"
	InitXavier  = "xavier"
	InitZero    = "zero"
)

// DefaultInitRange bounds uniform initialization when init_range is unset.
const DefaultInitRange = 0.5

// File is a parsed configuration file.
type File struct {
	Network  Network  `yaml:"network"`
	Training Training `yaml:"training"`
}

// Network describes the network to build.
type Network struct {
	Topology    []int         `yaml:"topology"`
	Activations []string      `yaml:"activations"`
	Trainable   []bool        `yaml:"trainable"`
	UsingBias   []bool        `yaml:"using_bias"`
	FrozenNodes map[int][]int `yaml:"frozen_nodes"`
	Init        string        `yaml:"init"`
	InitRange   float64       `yaml:"init_range"`
	Seed        uint64        `yaml:"seed"`
}

// Training mirrors train.Config.
type Training struct {
	Algorithm    string  `yaml:"algorithm"`
	LearningRate float64 `yaml:"learning_rate"`
	DecFactor    float64 `yaml:"dec_factor"`
	Momentum     float64 `yaml:"momentum"`
	Epochs       int     `yaml:"epochs"`
	Goal         float64 `yaml:"goal"`
	MaxFail      int     `yaml:"max_fail"`
	Show         int     `yaml:"show"`
	EpochSize    int     `yaml:"epoch_size"`
	Seed         uint64  `yaml:"seed"`
	Workers      int     `yaml:"workers"`
	UseSP        bool    `yaml:"use_sp"`
}

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*File, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for config loading
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a YAML document, applies defaults and validates the result.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Default returns a file describing an untrained network of the given
// topology with tansig layers and default training settings.
func Default(topology ...int) *File {
	f := &File{Network: Network{Topology: topology}}
	f.applyDefaults()
	return f
}

func (f *File) applyDefaults() {
	n := &f.Network
	layers := max(len(n.Topology)-1, 0)
	if len(n.Activations) == 0 {
		n.Activations = repeat("tansig", layers)
	}
	if len(n.Trainable) == 0 {
		n.Trainable = repeat(true, layers)
	}
	if len(n.UsingBias) == 0 {
		n.UsingBias = repeat(true, layers)
	}
	if n.Init == "" {
		n.Init = InitUniform
	}
	if n.InitRange == 0 {
		n.InitRange = DefaultInitRange
	}

	t := &f.Training
	d := train.DefaultConfig()
	if t.Algorithm == "" {
		t.Algorithm = d.Algorithm
	}
	if t.LearningRate == 0 {
		t.LearningRate = optim.DefaultLR(t.Algorithm)
	}
	if t.DecFactor == 0 {
		t.DecFactor = d.DecFactor
	}
	if t.Epochs == 0 {
		t.Epochs = d.Epochs
	}
}

func repeat[T any](v T, n int) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// Validate checks the cross-field constraints that the YAML types cannot.
// Node ranges and activation names are checked when the network is built.
func (f *File) Validate() error {
	n := f.Network
	if len(n.Topology) < 2 {
		return fmt.Errorf("%w: topology needs at least 2 entries, got %v", ErrInvalidConfig, n.Topology)
	}
	layers := len(n.Topology) - 1
	for name, got := range map[string]int{
		"activations": len(n.Activations),
		"trainable":   len(n.Trainable),
		"using_bias":  len(n.UsingBias),
	} {
		if got != layers {
			return fmt.Errorf("%w: %s has %d entries for %d layers", ErrInvalidConfig, name, got, layers)
		}
	}
	for layer := range n.FrozenNodes {
		if layer < 1 || layer > layers {
			return fmt.Errorf("%w: frozen_nodes refers to layer %d, network has layers 1..%d", ErrInvalidConfig, layer, layers)
		}
	}
	switch n.Init {
	case InitUniform, InitXavier, InitZero:
	default:
		return fmt.Errorf("%w: unknown init %q", ErrInvalidConfig, n.Init)
	}
	if n.InitRange < 0 {
		return fmt.Errorf("%w: init_range must not be negative, got %g", ErrInvalidConfig, n.InitRange)
	}
	if err := f.Training.TrainConfig(nil).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Build constructs and initializes the described network.
func (n Network) Build() (*nn.Network, error) {
	net, err := nn.New(n.Topology, n.Activations, n.Trainable)
	if err != nil {
		return nil, err
	}
	for i, l := range net.Layers() {
		l.SetUsingBias(n.UsingBias[i])
		for _, node := range n.FrozenNodes[i+1] {
			if err := l.SetFrozen(node, true); err != nil {
				return nil, err
			}
		}
	}
	switch n.Init {
	case InitXavier:
		net.Xavier(n.Seed)
	case InitUniform:
		net.InitWeights(n.InitRange, n.Seed)
	}
	return net, nil
}

// TrainConfig converts the section to a train.Config reporting to rep.
func (t Training) TrainConfig(rep report.Reporter) train.Config {
	return train.Config{
		Algorithm:    t.Algorithm,
		LearningRate: t.LearningRate,
		DecFactor:    t.DecFactor,
		Momentum:     t.Momentum,
		Epochs:       t.Epochs,
		Goal:         t.Goal,
		MaxFail:      t.MaxFail,
		Show:         t.Show,
		EpochSize:    t.EpochSize,
		Seed:         t.Seed,
		Workers:      t.Workers,
		UseSP:        t.UseSP,
		Reporter:     rep,
	}
}

// Map returns the training settings as a flat map for file metadata.
func (t Training) Map() map[string]any {
	return map[string]any{
		"algorithm":     t.Algorithm,
		"learning_rate": t.LearningRate,
		"dec_factor":    t.DecFactor,
		"momentum":      t.Momentum,
		"epochs":        t.Epochs,
		"goal":          t.Goal,
		"max_fail":      t.MaxFail,
		"epoch_size":    t.EpochSize,
		"seed":          t.Seed,
		"use_sp":        t.UseSP,
	}
}
