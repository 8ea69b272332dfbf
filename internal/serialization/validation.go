package serialization

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 16 * 1024 * 1024 // 16MB - maximum JSON header size
	MaxDataSize      = 1 << 34          // 16GB - maximum data section size
	MaxTensorCount   = 2 * 10_000       // Two tensors per layer
	MaxTensorNameLen = 256              // Maximum tensor name length
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default, recommended for production).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal performs basic validation checks only.
	ValidationNormal
	// ValidationNone skips validation (dangerous! Use only with trusted input).
	ValidationNone
)

// ValidateTensorOffsets checks for overlapping tensor offsets and out-of-bounds access.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	// Sort tensors by offset for efficient overlap detection.
	sorted := slices.Clone(tensors)
	slices.SortFunc(sorted, func(a, b TensorMeta) int {
		return cmp.Compare(a.Offset, b.Offset)
	})

	for i, t := range sorted {
		if err := checkBounds(t, dataSize); err != nil {
			return err
		}

		// Check for overlap with next tensor.
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// checkBounds rejects negative or out-of-range tensor regions. It runs at
// every validation level because decoding depends on it.
func checkBounds(t TensorMeta, dataSize int64) error {
	if t.Offset < 0 || t.Size < 0 {
		return &ValidationError{
			Type:    "negative_offset",
			Tensor:  t.Name,
			Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
		}
	}
	if t.Offset > dataSize || t.Size > dataSize-t.Offset {
		return &ValidationError{
			Type:    "out_of_bounds",
			Tensor:  t.Name,
			Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
		}
	}
	return nil
}

// ValidateTensorName checks tensor names for path separators and other
// characters that have no place in a parameter name.
func ValidateTensorName(name string) error {
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}

	if name == "" {
		return &ValidationError{
			Type:    "invalid_name",
			Details: "empty tensor name",
		}
	}

	if strings.Contains(name, "..") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains '..'",
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains path separator (/ or \\)",
		}
	}

	if strings.Contains(name, "\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains null byte",
		}
	}

	return nil
}

// ValidateTopology checks that a network of the given topology, stored as
// float64 weights and biases, fits in dataSize bytes. It runs before the
// network is allocated so a crafted header cannot request more memory than
// the file carries. Sizes below 1 are left for nn.New to report.
func ValidateTopology(topology []int, dataSize int64) error {
	budget := dataSize / 8 // float64 values left in the data section
	for i := 1; i < len(topology); i++ {
		in, out := int64(topology[i-1]), int64(topology[i])
		if in < 1 || out < 1 {
			continue
		}
		// in+1 cannot overflow once in <= budget.
		if in > budget || out > budget/(in+1) {
			return &ValidationError{
				Type:    "out_of_bounds",
				Details: fmt.Sprintf("topology %v needs more than the %d byte data section", topology, dataSize),
			}
		}
		budget -= out * (in + 1)
	}
	return nil
}

// ValidateHeader performs comprehensive header validation.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}

	if len(h.Topology) < 2 {
		return &ValidationError{
			Type:    "topology",
			Details: fmt.Sprintf("need at least 2 entries, got %v", h.Topology),
		}
	}
	if len(h.Layers) != len(h.Topology)-1 {
		return &ValidationError{
			Type:    "layer_count",
			Details: fmt.Sprintf("topology %v has %d layers, header lists %d", h.Topology, len(h.Topology)-1, len(h.Layers)),
		}
	}

	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
	}

	// Overlap detection only in strict mode.
	if level == ValidationStrict {
		if err := ValidateTensorOffsets(h.Tensors, dataSize); err != nil {
			return err
		}
	}

	return nil
}
