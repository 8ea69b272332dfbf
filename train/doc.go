// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train fits the trainable weights of an nn.Network to data.
//
// # Overview
//
// This package contains:
//   - Trainer: full-batch error back-propagation driven by Config
//   - Dataset: paired input and target rows
//   - PatternSet: one input set per class, with implicit ±1 targets
//   - SP: the signal/noise efficiency product used as a stopping criterion
//
// # Basic Usage
//
//	net, _ := nn.New([]int{2, 4, 1}, []string{"tansig", "tansig"}, []bool{true, true})
//	net.InitWeights(0.5, 1)
//
//	summary, err := train.Train(net,
//	    train.NewDataset(
//	        [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
//	        [][]float64{{-1}, {1}, {1}, {-1}},
//	    ),
//	    train.Config{Algorithm: "trainrp", Epochs: 1000, Goal: 1e-3},
//	)
//
// # Validation and Early Stopping
//
// With a validation set the trainer keeps the weights that scored best on
// it and stops after MaxFail epochs without improvement:
//
//	tr, err := train.New(net, train.Config{MaxFail: 20, Show: 10,
//	    Reporter: train.NewReporter(slog.Default())})
//	summary, err := tr.Train(trainSet, valSet)
//
// # Empty Data
//
// Training on NoData(), NoPatterns() or a set without rows is a no-op that
// returns the zero Summary and leaves the network untouched.
package train
