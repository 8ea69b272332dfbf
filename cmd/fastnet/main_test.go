package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/fastnet/internal/dataio"
	"github.com/born-ml/fastnet/internal/serialization"
)

const xorConfig = `network:
  topology: [2, 4, 1]
  activations: [tansig, tansig]
  seed: 7
training:
  algorithm: trainrp
  epochs: 3000
  goal: 0.01
  show: 500
  workers: 1
`

// run executes the CLI with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCLI_TrainSimInfoExport(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "xor.yaml", xorConfig)
	in := writeFile(t, dir, "in.csv", "0,0\n0,1\n1,0\n1,1\n")
	target := writeFile(t, dir, "target.csv", "-1\n1\n1\n-1\n")
	model := filepath.Join(dir, "xor.fnet")

	_, logs, err := run(t, "train", "--config", cfg, "--input", in, "--target", target, "--out", model)
	require.NoError(t, err)
	assert.Contains(t, logs, "msg=epoch")
	assert.Contains(t, logs, "msg=saved")

	m, err := serialization.Load(model)
	require.NoError(t, err)
	require.NotNil(t, m.Header.Training)
	assert.Equal(t, "trainrp", m.Header.Training.Algorithm)
	assert.Equal(t, "goal", m.Header.Training.StopReason)
	assert.Equal(t, cfg, m.Header.Metadata["config"])

	out, _, err := run(t, "sim", "--model", model, "--input", in)
	require.NoError(t, err)
	rows, err := dataio.Read(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for k, want := range []float64{-1, 1, 1, -1} {
		assert.Equal(t, want > 0, rows[k][0] > 0, "row %d: %v", k, rows[k])
	}

	simFile := filepath.Join(dir, "sim.csv")
	_, _, err = run(t, "sim", "-m", model, "-i", in, "-o", simFile)
	require.NoError(t, err)
	fromFile, err := dataio.ReadFile(simFile)
	require.NoError(t, err)
	assert.Equal(t, rows, fromFile)

	out, _, err = run(t, "info", "--model", model)
	require.NoError(t, err)
	assert.Contains(t, out, m.Header.ModelID.String())
	assert.Contains(t, out, "[2 4 1]")
	assert.Contains(t, out, "trainrp")
	assert.Contains(t, out, "4x2")

	st := filepath.Join(dir, "xor.safetensors")
	out, _, err = run(t, "export", "--model", model, "--out", st)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 4 parameters")
	raw, err := os.ReadFile(st)
	require.NoError(t, err)
	headerLen := binary.LittleEndian.Uint64(raw[:8])
	assert.Contains(t, string(raw[8:8+headerLen]), m.Header.ModelID.String())

	imported := filepath.Join(dir, "imported.fnet")
	out, _, err = run(t, "import", "--config", cfg, "--weights", st, "--out", imported)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 4 parameters")
	back, err := serialization.Load(imported)
	require.NoError(t, err)
	assert.Equal(t, st, back.Header.Metadata["imported_from"])
	for i := range m.Network.Layers() {
		assert.Equal(t, m.Network.Layer(i).Weights().RawMatrix().Data, back.Network.Layer(i).Weights().RawMatrix().Data)
		assert.Equal(t, m.Network.Layer(i).Bias(), back.Network.Layer(i).Bias())
	}
}

func TestCLI_TrainPatterns(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "sp.yaml", `network:
  topology: [1, 2, 1]
  seed: 1
training:
  algorithm: trainrp
  epochs: 50
  max_fail: 10
  use_sp: true
  workers: 1
`)
	signal := writeFile(t, dir, "signal.csv", "1\n0.8\n0.9\n")
	noise := writeFile(t, dir, "noise.csv", "-1\n-0.7\n-0.9\n")
	model := filepath.Join(dir, "sp.fnet")

	_, logs, err := run(t, "train", "-c", cfg, "--class", signal, "--class", noise,
		"--val-class", signal, "--val-class", noise, "-o", model)
	require.NoError(t, err)
	assert.Contains(t, logs, "msg=saved")

	m, err := serialization.Load(model)
	require.NoError(t, err)
	assert.Greater(t, m.Header.Training.BestValidation, 0.0)
}

func TestCLI_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "net.yaml", "network: {topology: [2, 1]}\n")
	in := writeFile(t, dir, "in.csv", "0,0,0\n")
	target := writeFile(t, dir, "target.csv", "1\n")

	tests := map[string][]string{
		"missing config":  {"train", "--input", in, "--target", target},
		"no data":         {"train", "--config", cfg},
		"input and class": {"train", "--config", cfg, "--input", in, "--target", target, "--class", in},
		"bad width":       {"train", "--config", cfg, "--input", in, "--target", target, "--out", filepath.Join(dir, "m.fnet")},
		"one class":       {"train", "--config", cfg, "--class", in, "--out", filepath.Join(dir, "m.fnet")},
		"missing model":   {"sim", "--model", filepath.Join(dir, "none.fnet"), "--input", in},
		"info args":       {"info", "extra"},
		"unknown command": {"serve"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := run(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestCLI_Version(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "fastnet "+serialization.FastnetVersion+" (file format 1)\n", out)
}
