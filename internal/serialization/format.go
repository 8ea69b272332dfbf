package serialization

import (
	"time"

	"github.com/google/uuid"
)

// Format constants.
const (
	MagicBytes      = "FNET"
	FormatVersion   = 1
	HeaderAlignment = 64   // Align tensor data to 64 bytes
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// DTypeFloat64 is the only tensor data type stored in .fnet files.
const DTypeFloat64 = "float64"

// Flags for the .fnet format.
const (
	FlagHasMetadata uint32 = 1 << 0 // bit 0: custom metadata included
	FlagHasTraining uint32 = 1 << 1 // bit 1: training summary included
)

// Header represents the JSON header in a .fnet file.
type Header struct {
	FormatVersion  int               `json:"format_version"`     // Version of the .fnet format
	FastnetVersion string            `json:"fastnet_version"`    // Version of fastnet that created this file
	ModelID        uuid.UUID         `json:"model_id"`           // Unique model identifier
	CreatedAt      time.Time         `json:"created_at"`         // When the file was created
	Topology       []int             `json:"topology"`           // Node count per layer, input first
	Loss           string            `json:"loss"`               // Training loss name
	Layers         []LayerMeta       `json:"layers"`             // Per-layer configuration
	Tensors        []TensorMeta      `json:"tensors"`            // Tensor table
	Metadata       map[string]string `json:"metadata"`           // Custom metadata
	Training       *TrainingMeta     `json:"training,omitempty"` // Training summary (optional)
}

// LayerMeta describes one layer's configuration.
type LayerMeta struct {
	Activation  string `json:"activation"`             // Transfer function name
	Trainable   bool   `json:"trainable"`              // Whether training may change the layer
	UsingBias   bool   `json:"using_bias"`             // Whether the bias is in use
	FrozenNodes []int  `json:"frozen_nodes,omitempty"` // Output nodes pinned during training
}

// TensorMeta describes a tensor in the .fnet file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "layer1.weight")
	DType  string `json:"dtype"`  // Always "float64"
	Shape  []int  `json:"shape"`  // [out, in] for weights, [out] for biases
	Offset int64  `json:"offset"` // Offset in the data section (bytes from start of tensor data)
	Size   int64  `json:"size"`   // Size in bytes
}

// TrainingMeta records how the stored weights were obtained.
type TrainingMeta struct {
	Algorithm      string         `json:"algorithm"`                 // Update rule ("traingd", "trainrp", "trainadam")
	Epochs         int            `json:"epochs"`                    // Epochs run
	FinalLoss      float64        `json:"final_loss"`                // Training MSE of the stored weights
	BestValidation float64        `json:"best_validation,omitempty"` // Best validation criterion
	StopReason     string         `json:"stop_reason"`               // Why training ended
	Config         map[string]any `json:"config,omitempty"`          // Training hyperparameters
}

// padding returns the bytes needed after pos to reach HeaderAlignment.
func padding(pos int64) int64 {
	return (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
}
