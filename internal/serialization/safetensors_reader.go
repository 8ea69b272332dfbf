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

// SafeTensors data types accepted on import. F32 values are widened to float64.
const (
	SafeTensorsF32 = "F32"
	SafeTensorsF64 = "F64"
)

// maxSafeTensorsHeader bounds the JSON header of an imported file.
const maxSafeTensorsHeader = 100 * 1024 * 1024

// SafeTensorsFile is a parsed SafeTensors header.
type SafeTensorsFile struct {
	Metadata map[string]string
	Tensors  map[string]SafeTensorHeader
}

// UnmarshalJSON splits the __metadata__ entry from the tensor entries.
func (f *SafeTensorsFile) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap["__metadata__"]; ok {
		if err := json.Unmarshal(metadataRaw, &f.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		delete(rawMap, "__metadata__")
	}

	f.Tensors = make(map[string]SafeTensorHeader, len(rawMap))
	for key, value := range rawMap {
		var info SafeTensorHeader
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		f.Tensors[key] = info
	}
	return nil
}

// ImportSafeTensors loads the weights stored in a SafeTensors file into net
// and returns the file's metadata.
func ImportSafeTensors(path string, net *nn.Network) (map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model import
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close() // Read-only, nothing to flush
	}()

	meta, err := ReadSafeTensors(bufio.NewReader(file), net)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return meta, nil
}

// ReadSafeTensors reads a SafeTensors stream holding one tensor per network
// parameter ("layerN.weight" [out, in], "layerN.bias" [out]) and loads them
// into net. Every tensor is checked before any weight changes, so on error
// net is left as it was. Tensors that match no parameter are ignored.
func ReadSafeTensors(r io.Reader, net *nn.Network) (map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > maxSafeTensorsHeader {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	var f SafeTensorsFile
	if err := json.Unmarshal(headerBytes, &f); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	layers := net.Layers()
	weights := make([]*mat.Dense, len(layers))
	biases := make([][]float64, len(layers))
	for _, p := range net.Parameters() {
		info, ok := f.Tensors[p.Name()]
		if !ok {
			return nil, &ValidationError{Type: "missing_tensor", Tensor: p.Name(), Details: "not in SafeTensors file"}
		}
		values, err := decodeSafeTensor(p, info, data)
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

	if err := net.LoadWeights(weights, biases); err != nil {
		return nil, fmt.Errorf("failed to load weights: %w", err)
	}
	return f.Metadata, nil
}

func decodeSafeTensor(p *nn.Parameter, info SafeTensorHeader, data []byte) ([]float64, error) {
	rows, cols := p.Dims()
	want := []int64{int64(rows), int64(cols)}
	if p.IsBias() {
		want = []int64{int64(rows)}
	}
	if !slices.Equal(info.Shape, want) {
		return nil, &ValidationError{
			Type:    "tensor_shape",
			Tensor:  p.Name(),
			Details: fmt.Sprintf("expected shape %v, got %v", want, info.Shape),
		}
	}

	var width int64
	switch info.DType {
	case SafeTensorsF64:
		width = 8
	case SafeTensorsF32:
		width = 4
	default:
		return nil, &ValidationError{Type: "unsupported_dtype", Tensor: p.Name(), Details: info.DType}
	}

	start, end := info.DataOffsets[0], info.DataOffsets[1]
	if err := checkBounds(TensorMeta{Name: p.Name(), Offset: start, Size: end - start}, int64(len(data))); err != nil {
		return nil, err
	}
	if end-start != width*int64(p.Len()) {
		return nil, &ValidationError{
			Type:    "tensor_size",
			Tensor:  p.Name(),
			Details: fmt.Sprintf("expected %d bytes, got %d", width*int64(p.Len()), end-start),
		}
	}

	raw := data[start:end]
	values := make([]float64, p.Len())
	for i := range values {
		if width == 8 {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
		} else {
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:])))
		}
	}
	return values, nil
}
