// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/born-ml/fastnet/nn"
)

// TestNew verifies construction and error reporting through the public API.
func TestNew(t *testing.T) {
	net, err := nn.New([]int{2, 3, 1}, []string{"tansig", "purelin"}, []bool{true, false})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if net.NumLayers() != 2 {
		t.Errorf("Expected 2 layers, got %d", net.NumLayers())
	}

	_, err = nn.New([]int{2, 1}, []string{"softplus"}, []bool{true})
	var actErr *nn.UnknownActivationError
	if !errors.As(err, &actErr) || !errors.Is(err, nn.ErrUnknownActivation) {
		t.Errorf("Expected UnknownActivationError, got %v", err)
	}

	_, err = nn.New([]int{2}, nil, nil)
	if !errors.Is(err, nn.ErrShape) {
		t.Errorf("Expected ErrShape, got %v", err)
	}
}

func TestActivations(t *testing.T) {
	for _, name := range []string{"purelin", "tansig", "logsig", "poslin"} {
		if !slices.Contains(nn.Activations(), name) {
			t.Errorf("Activations() is missing %q", name)
		}
		k, err := nn.ParseActivation(name)
		if err != nil || k.String() != name {
			t.Errorf("ParseActivation(%q) = %v, %v", name, k, err)
		}
	}
	if nn.Tansig.Eval(0) != 0 {
		t.Error("tansig(0) should be 0")
	}
}

// TestSaveLoad verifies the saved network propagates identically.
func TestSaveLoad(t *testing.T) {
	net, err := nn.New([]int{2, 3, 2}, []string{"logsig", "tansig"}, []bool{true, true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	net.InitWeights(1, 5)

	path := filepath.Join(t.TempDir(), "model.fnet")
	if err := nn.Save(path, net, nn.SaveOptions{Metadata: map[string]string{"k": "v"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, header, err := nn.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if header.Metadata["k"] != "v" {
		t.Errorf("metadata lost: %v", header.Metadata)
	}

	x := []float64{0.25, -1.5}
	want, _ := net.PropagateInput(x)
	got, _ := loaded.PropagateInput(x)
	if !slices.Equal(want, got) {
		t.Errorf("loaded network output %v, want %v", got, want)
	}

	if _, _, err := nn.Load(filepath.Join(t.TempDir(), "missing.fnet")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSafeTensors(t *testing.T) {
	net, err := nn.New([]int{1, 1}, []string{"purelin"}, []bool{true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	net.InitWeights(1, 2)
	path := filepath.Join(t.TempDir(), "m.safetensors")
	if err := nn.ExportSafeTensors(path, net, nil); err != nil {
		t.Fatalf("ExportSafeTensors failed: %v", err)
	}

	fresh, err := nn.New([]int{1, 1}, []string{"purelin"}, []bool{true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := nn.ImportSafeTensors(path, fresh); err != nil {
		t.Fatalf("ImportSafeTensors failed: %v", err)
	}
	if !slices.Equal(net.Biases()[0], fresh.Biases()[0]) {
		t.Errorf("imported bias %v, want %v", fresh.Biases(), net.Biases())
	}
}
