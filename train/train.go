// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"log/slog"

	"github.com/born-ml/fastnet/internal/nn"
	"github.com/born-ml/fastnet/internal/report"
	"github.com/born-ml/fastnet/internal/train"
)

// Config holds the training parameters.
type Config = train.Config

// DefaultConfig returns the configuration used when every field is zero.
func DefaultConfig() Config {
	return train.DefaultConfig()
}

// ErrConfig reports an invalid training configuration.
var ErrConfig = train.ErrConfig

// Trainer trains one network.
type Trainer = train.Trainer

// New creates a Trainer for net. The configuration is validated here.
func New(net *nn.Network, cfg Config) (*Trainer, error) {
	return train.New(net, cfg)
}

// Train is a convenience for New followed by Trainer.Train without
// validation data.
func Train(net *nn.Network, data Dataset, cfg Config) (Summary, error) {
	return train.Train(net, data, cfg)
}

// Data

// Dataset pairs input rows with target rows.
type Dataset = train.Dataset

// NewDataset creates a dataset. Row i of inputs belongs to row i of targets.
func NewDataset(inputs, targets [][]float64) Dataset {
	return train.NewDataset(inputs, targets)
}

// NoData returns an absent dataset.
func NoData() Dataset {
	return train.NoData()
}

// PatternSet holds one input set per class.
type PatternSet = train.PatternSet

// NewPatternSet creates a pattern set, one argument per class.
//
// Example:
//
//	set := train.NewPatternSet(signalRows, noiseRows)
func NewPatternSet(classes ...[][]float64) PatternSet {
	return train.NewPatternSet(classes...)
}

// NoPatterns returns an absent pattern set.
func NoPatterns() PatternSet {
	return train.NoPatterns()
}

// Results

// Summary describes a finished training call.
type Summary = train.Summary

// EpochRecord is the training evolution of one epoch.
type EpochRecord = train.EpochRecord

// StopReason tells why training ended.
type StopReason = train.StopReason

// Stop reasons.
const (
	StopNone    = train.StopNone
	StopEpochs  = train.StopEpochs
	StopGoal    = train.StopGoal
	StopMaxFail = train.StopMaxFail
)

// SP returns the signal/noise efficiency product of two output sets.
func SP(signal, noise []float64, signalTarget, noiseTarget float64) float64 {
	return train.SP(signal, noise, signalTarget, noiseTarget)
}

// Reporting

// Reporter receives training status lines.
type Reporter = report.Reporter

// NewReporter returns a Reporter that writes to l. A nil logger uses
// slog.Default().
//
// Example:
//
//	cfg := train.Config{Show: 10, Reporter: train.NewReporter(slog.Default())}
func NewReporter(l *slog.Logger) Reporter {
	return report.New(l)
}
