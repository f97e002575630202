package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// Checkpoint is a decoded .born file.
type Checkpoint struct {
	Header  Header
	Flags   uint32
	tensors map[string]Tensor
}

// Read decodes a checkpoint from r, verifying the data checksum.
func Read(r io.Reader) (*Checkpoint, error) {
	return read(r, -1)
}

// read decodes a checkpoint whose total size is at most limit bytes. A negative
// limit leaves the size unbounded.
func read(r io.Reader, limit int64) (*Checkpoint, error) {
	fixedHeader := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixedHeader); err != nil {
		return nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixedHeader[0:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(fixedHeader[4:8]); version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	flags := binary.LittleEndian.Uint32(fixedHeader[8:12])
	headerSize := binary.LittleEndian.Uint64(fixedHeader[16:24])
	dataSize := binary.LittleEndian.Uint64(fixedHeader[24:32])
	var stored [ChecksumSize]byte
	copy(stored[:], fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}
	if dataSize > math.MaxInt64/2 {
		return nil, &ValidationError{Reason: "out_of_bounds", Details: fmt.Sprintf("data size %d", dataSize)}
	}
	//nolint:gosec // G115: both sizes are bounded above
	if limit >= 0 && int64(FixedHeaderSize)+int64(headerSize)+int64(dataSize) > limit {
		return nil, &ValidationError{
			Reason:  "out_of_bounds",
			Details: fmt.Sprintf("header %d + data %d exceed file size %d", headerSize, dataSize, limit),
		}
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header JSON: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}
	//nolint:gosec // G115: dataSize is bounded above
	if err := ValidateHeader(&header, int64(dataSize)); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	headerEnd := int64(FixedHeaderSize) + int64(headerSize)
	if padding := alignedOffset(int64(headerSize)) - headerEnd; padding > 0 {
		if _, err := io.CopyN(io.Discard, r, padding); err != nil {
			return nil, fmt.Errorf("failed to read padding: %w", err)
		}
	}

	// Grows with the bytes actually present rather than the declared size.
	data, err := io.ReadAll(io.LimitReader(r, int64(dataSize))) //nolint:gosec // G115: bounded above
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if uint64(len(data)) != dataSize {
		return nil, fmt.Errorf("failed to read tensor data: %w", io.ErrUnexpectedEOF)
	}
	if err := verifyChecksum(data, stored); err != nil {
		return nil, err
	}

	ckpt := &Checkpoint{
		Header:  header,
		Flags:   flags,
		tensors: make(map[string]Tensor, len(header.Tensors)),
	}
	for _, meta := range header.Tensors {
		values := make([]float64, meta.Size/8)
		for i := range values {
			off := meta.Offset + int64(i)*8
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[off : off+8]))
		}
		ckpt.tensors[meta.Name] = Tensor{Name: meta.Name, Shape: meta.Shape, Data: values}
	}
	return ckpt, nil
}

// ReadFile reads a checkpoint from path.
func ReadFile(path string) (*Checkpoint, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	ckpt, err := read(bufio.NewReader(file), info.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ckpt, nil
}

// TensorNames returns the tensor names in file order.
func (c *Checkpoint) TensorNames() []string {
	names := make([]string, len(c.Header.Tensors))
	for i, meta := range c.Header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// Tensor returns the tensor stored under name.
func (c *Checkpoint) Tensor(name string) (Tensor, error) {
	t, ok := c.tensors[name]
	if !ok {
		return Tensor{}, fmt.Errorf("%w: %s", ErrTensorNotFound, name)
	}
	return t, nil
}

// Metadata returns the metadata map from the header.
func (c *Checkpoint) Metadata() map[string]string {
	return c.Header.Metadata
}
