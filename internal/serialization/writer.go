package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/fastnet/internal/nn"
)

// FastnetVersion is recorded in every file written.
const FastnetVersion = "0.3.0"

// WriteOptions carries the optional parts of a .fnet header.
type WriteOptions struct {
	ModelID   uuid.UUID         // Zero value generates a new random ID
	CreatedAt time.Time         // Zero value uses the current time
	Metadata  map[string]string // Custom metadata
	Training  *TrainingMeta     // Training summary
}

// Writer writes networks in .fnet format.
type Writer struct {
	file   *os.File
	buf    *bufio.Writer
	closed bool
}

// NewWriter creates a new .fnet file writer.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &Writer{
		file: file,
		buf:  bufio.NewWriter(file),
	}, nil
}

// WriteModel writes net to the file.
func (w *Writer) WriteModel(net *nn.Network, opts WriteOptions) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}
	if err := Encode(w.buf, net, opts); err != nil {
		return err
	}
	return w.buf.Flush()
}

// Close closes the writer and the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// Save writes net to path in .fnet format.
func Save(path string, net *nn.Network, opts WriteOptions) (err error) {
	w, err := NewWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, w.Close())
	}()
	return w.WriteModel(net, opts)
}

// BuildHeader returns the header describing net, without the tensor table.
func BuildHeader(net *nn.Network, opts WriteOptions) Header {
	h := Header{
		FormatVersion:  FormatVersion,
		FastnetVersion: FastnetVersion,
		ModelID:        opts.ModelID,
		CreatedAt:      opts.CreatedAt,
		Topology:       net.Topology(),
		Loss:           nn.SquaredError{}.Name(),
		Layers:         make([]LayerMeta, net.NumLayers()),
		Metadata:       opts.Metadata,
		Training:       opts.Training,
	}
	if h.ModelID == uuid.Nil {
		h.ModelID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	if h.Metadata == nil {
		h.Metadata = make(map[string]string)
	}
	for i, l := range net.Layers() {
		h.Layers[i] = LayerMeta{
			Activation:  l.Activation().String(),
			Trainable:   l.IsTrainable(),
			UsingBias:   l.UsingBias(),
			FrozenNodes: l.FrozenNodes(),
		}
	}
	return h
}

// Encode writes net to dst in .fnet format.
func Encode(dst io.Writer, net *nn.Network, opts WriteOptions) error {
	header := BuildHeader(net, opts)

	// One tensor per parameter, in parameter order.
	params := net.Parameters()
	header.Tensors = make([]TensorMeta, 0, len(params))
	var data []byte
	for _, p := range params {
		rows, cols := p.Dims()
		shape := []int{rows, cols}
		if p.IsBias() {
			shape = []int{rows}
		}
		offset := int64(len(data))
		for _, v := range p.Data() {
			data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
		}
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   p.Name(),
			DType:  DTypeFloat64,
			Shape:  shape,
			Offset: offset,
			Size:   int64(len(data)) - offset,
		})
	}

	checksum := ComputeChecksum(data)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	// Fixed header (64 bytes)
	fixedHeader := make([]byte, FixedHeaderSize)

	// 0x00-0x03: Magic bytes "FNET"
	copy(fixedHeader[0:4], MagicBytes)

	// 0x04-0x07: Version
	binary.LittleEndian.PutUint32(fixedHeader[4:8], uint32(FormatVersion))

	// 0x08-0x0B: Flags
	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.Training != nil {
		flags |= FlagHasTraining
	}
	binary.LittleEndian.PutUint32(fixedHeader[8:12], flags)

	// 0x0C-0x0F: Reserved (0)

	// 0x10-0x17: Header size
	binary.LittleEndian.PutUint64(fixedHeader[16:24], uint64(len(headerJSON)))

	// 0x18-0x1F: Data size
	binary.LittleEndian.PutUint64(fixedHeader[24:32], uint64(len(data)))

	// 0x20-0x3F: SHA-256 checksum
	copy(fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := dst.Write(fixedHeader); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := dst.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}

	// Align tensor data to a 64-byte boundary
	if pad := padding(int64(FixedHeaderSize + len(headerJSON))); pad > 0 {
		if _, err := dst.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := dst.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}
