package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/fastnet/internal/nn"
)

// ReaderOptions configures loading.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// Model is a loaded .fnet file.
type Model struct {
	Header   Header
	Checksum Checksum     // Stored checksum of the data section
	Network  *nn.Network // Freshly built network holding the stored weights
}

// Load reads a .fnet file with default options (strict validation).
func Load(path string) (*Model, error) {
	return LoadWithOptions(path, ReaderOptions{ValidationLevel: ValidationStrict})
}

// LoadWithOptions reads a .fnet file with custom options.
func LoadWithOptions(path string, opts ReaderOptions) (*Model, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close() // Read-only, nothing to flush
	}()

	m, err := Decode(bufio.NewReader(file), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode reads a .fnet stream and builds the stored network.
//
// Nothing is returned unless the whole file checks out: magic, version,
// sizes, tensor table, checksum and every tensor shape.
func Decode(r io.Reader, opts ReaderOptions) (*Model, error) {
	fixedHeader := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixedHeader); err != nil {
		return nil, fmt.Errorf("failed to read fixed header: %w", err)
	}

	// 0x00-0x03: magic
	if string(fixedHeader[0:4]) != MagicBytes {
		return nil, fmt.Errorf("%w: got %q, expected %q", ErrInvalidMagic, fixedHeader[0:4], MagicBytes)
	}

	// 0x04-0x07: version
	if version := binary.LittleEndian.Uint32(fixedHeader[4:8]); version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	// 0x10-0x17: header size, 0x18-0x1F: data size
	headerSize := binary.LittleEndian.Uint64(fixedHeader[16:24])
	dataSize := binary.LittleEndian.Uint64(fixedHeader[24:32])
	if headerSize > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}
	if dataSize > MaxDataSize {
		return nil, &ValidationError{Type: "out_of_bounds", Details: fmt.Sprintf("data section of %d bytes", dataSize)}
	}

	// 0x20-0x3F: checksum
	var m Model
	copy(m.Checksum[:], fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header JSON: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &m.Header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	if pad := padding(int64(FixedHeaderSize) + int64(headerSize)); pad > 0 {
		if _, err := io.CopyN(io.Discard, r, pad); err != nil {
			return nil, fmt.Errorf("failed to read padding: %w", err)
		}
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(data), m.Checksum); err != nil {
			return nil, err
		}
	}

	//nolint:gosec // G115: dataSize is bounded by MaxDataSize
	if err := ValidateHeader(&m.Header, int64(dataSize), opts.ValidationLevel); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	net, err := buildNetwork(&m.Header, data, opts.ValidationLevel)
	if err != nil {
		return nil, err
	}
	m.Network = net
	return &m, nil
}

// buildNetwork constructs the network described by h and loads its tensors.
func buildNetwork(h *Header, data []byte, level ValidationLevel) (*nn.Network, error) {
	if len(h.Layers) != len(h.Topology)-1 {
		return nil, &ValidationError{
			Type:    "layer_count",
			Details: fmt.Sprintf("topology %v needs %d layers, header lists %d", h.Topology, len(h.Topology)-1, len(h.Layers)),
		}
	}

	if err := ValidateTopology(h.Topology, int64(len(data))); err != nil {
		return nil, err
	}

	activations := make([]string, len(h.Layers))
	trainable := make([]bool, len(h.Layers))
	for i, l := range h.Layers {
		activations[i] = l.Activation
		trainable[i] = l.Trainable
	}
	net, err := nn.New(h.Topology, activations, trainable)
	if err != nil {
		return nil, fmt.Errorf("invalid network configuration: %w", err)
	}
	for i, meta := range h.Layers {
		l := net.Layer(i)
		l.SetUsingBias(meta.UsingBias)
		for _, node := range meta.FrozenNodes {
			if err := l.SetFrozen(node, true); err != nil {
				return nil, fmt.Errorf("invalid frozen nodes: %w", err)
			}
		}
	}

	byName := make(map[string]TensorMeta, len(h.Tensors))
	for _, t := range h.Tensors {
		byName[t.Name] = t
	}

	layers := net.Layers()
	weights := make([]*mat.Dense, len(layers))
	biases := make([][]float64, len(layers))
	for _, p := range net.Parameters() {
		meta, ok := byName[p.Name()]
		if !ok {
			return nil, &ValidationError{Type: "missing_tensor", Tensor: p.Name(), Details: "not in tensor table"}
		}
		delete(byName, p.Name())

		values, err := decodeTensor(meta, p, data)
		if err != nil {
			return nil, err
		}
		i := p.Layer().Index() - 1
		if p.IsBias() {
			biases[i] = values
		} else {
			rows, cols := p.Dims()
			weights[i] = mat.NewDense(rows, cols, values)
		}
	}
	if level == ValidationStrict && len(byName) > 0 {
		extra := make([]string, 0, len(byName))
		for name := range byName {
			extra = append(extra, name)
		}
		slices.Sort(extra)
		return nil, &ValidationError{Type: "unexpected_tensor", Tensor: extra[0], Details: "no such parameter"}
	}

	if err := net.LoadWeights(weights, biases); err != nil {
		return nil, fmt.Errorf("failed to load weights: %w", err)
	}
	return net, nil
}

// decodeTensor checks meta against the parameter it should fill and decodes it.
func decodeTensor(meta TensorMeta, p *nn.Parameter, data []byte) ([]float64, error) {
	if meta.DType != DTypeFloat64 {
		return nil, &ValidationError{Type: "unsupported_dtype", Tensor: meta.Name, Details: meta.DType}
	}
	rows, cols := p.Dims()
	want := []int{rows, cols}
	if p.IsBias() {
		want = []int{rows}
	}
	if !slices.Equal(meta.Shape, want) {
		return nil, &ValidationError{
			Type:    "tensor_shape",
			Tensor:  meta.Name,
			Details: fmt.Sprintf("expected shape %v, got %v", want, meta.Shape),
		}
	}
	if meta.Size != int64(8*p.Len()) {
		return nil, &ValidationError{
			Type:    "tensor_size",
			Tensor:  meta.Name,
			Details: fmt.Sprintf("expected %d bytes, got %d", 8*p.Len(), meta.Size),
		}
	}
	if err := checkBounds(meta, int64(len(data))); err != nil {
		return nil, err
	}

	raw := data[meta.Offset : meta.Offset+meta.Size]
	values := make([]float64, p.Len())
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	return values, nil
}
