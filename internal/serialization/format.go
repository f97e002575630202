package serialization

import (
	"encoding/json"
	"time"
)

// Format constants.
const (
	MagicBytes      = "BORN"
	FormatVersion   = 2    // Fixed header with SHA-256 checksum
	HeaderAlignment = 64   // Align tensor data to 64 bytes
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// DTypeFloat64 is the only element type checkpoints carry.
const DTypeFloat64 = "float64"

// Flags for the .born format.
const (
	FlagHasMetadata uint32 = 1 << 2 // bit 2: custom metadata included
	FlagHasModel    uint32 = 1 << 3 // bit 3: model description included
)

// Header represents the JSON header in a .born file.
type Header struct {
	FormatVersion int               `json:"format_version"`  // Version of the .born format
	ModelType     string            `json:"model_type"`      // Type of model (e.g., "FeedForward", "Autoencoder")
	CreatedAt     time.Time         `json:"created_at"`      // When the file was created
	Tensors       []TensorMeta      `json:"tensors"`         // Tensor metadata
	Metadata      map[string]string `json:"metadata"`        // Custom metadata
	Model         json.RawMessage   `json:"model,omitempty"` // Model description needed to rebuild it
}

// TensorMeta describes a tensor in the .born file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "dense.0.weight")
	DType  string `json:"dtype"`  // Data type, always "float64"
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section (bytes from start of tensor data)
	Size   int64  `json:"size"`   // Size in bytes
}

// Tensor is a named float64 buffer stored in a checkpoint.
type Tensor struct {
	Name  string
	Shape []int
	Data  []float64
}

// numElements returns the product of the shape.
func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// alignedOffset returns the position of the data section for a header of the given size.
func alignedOffset(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	padding := (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
	return pos + padding
}
