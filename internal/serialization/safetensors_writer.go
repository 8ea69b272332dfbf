package serialization

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/born-ml/fastnet/internal/nn"
)

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// ExportSafeTensors writes the weights of net to a SafeTensors file.
func ExportSafeTensors(path string, net *nn.Network, metadata map[string]string) (err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model export
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	return WriteSafeTensors(file, net, metadata)
}

// WriteSafeTensors writes every parameter of net as an F64 tensor.
//
// Format:
// [8 bytes: header_size (uint64 LE)]
// [header_size bytes: JSON header]
// [tensor data: raw bytes]
//
// Tensors are written in alphabetical order by name (SafeTensors requirement).
// Layer configuration is not part of SafeTensors; it goes into the
// __metadata__ entry as "topology" and "activations" unless metadata already
// sets those keys.
func WriteSafeTensors(w io.Writer, net *nn.Network, metadata map[string]string) error {
	params := net.Parameters()
	slices.SortFunc(params, func(a, b *nn.Parameter) int {
		return strings.Compare(a.Name(), b.Name())
	})

	meta := map[string]string{
		"format":      "fastnet",
		"topology":    fmt.Sprint(net.Topology()),
		"activations": fmt.Sprint(net.Activations()),
	}
	for k, v := range metadata {
		meta[k] = v
	}

	header := make(map[string]any, len(params)+1)
	header["__metadata__"] = meta

	var currentOffset int64
	for _, p := range params {
		rows, cols := p.Dims()
		shape := []int64{int64(rows), int64(cols)}
		if p.IsBias() {
			shape = []int64{int64(rows)}
		}
		size := int64(8 * p.Len())
		header[p.Name()] = SafeTensorHeader{
			DType:       SafeTensorsF64,
			Shape:       shape,
			DataOffsets: [2]int64{currentOffset, currentOffset + size},
		}
		currentOffset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	// Write header size (8 bytes, little-endian uint64)
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}

	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write tensor data in alphabetical order
	for _, p := range params {
		buf := make([]byte, 0, 8*p.Len())
		for _, v := range p.Data() {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", p.Name(), err)
		}
	}

	return nil
}
