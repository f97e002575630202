package serialization

import (
	"bytes"
	"encoding/json"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTensors() []Tensor {
	return []Tensor{
		{Name: "dense.0.weight", Shape: []int{2, 3}, Data: []float64{1, 2, 3, 4, 5, 6}},
		{Name: "dense.0.bias", Shape: []int{3}, Data: []float64{-0.5, 0, 0.5}},
		{Name: "empty", Shape: []int{0, 4}, Data: nil},
	}
}

func TestRoundTrip(t *testing.T) {
	model := json.RawMessage(`{"layers":[{"type":"dense","units":3}]}`)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Header{
		ModelType: "FeedForward",
		Metadata:  map[string]string{"trainer": "test"},
		Model:     model,
	}, sampleTensors()))

	ckpt, err := Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, FormatVersion, ckpt.Header.FormatVersion)
	assert.Equal(t, "FeedForward", ckpt.Header.ModelType)
	assert.JSONEq(t, string(model), string(ckpt.Header.Model))
	assert.Equal(t, "test", ckpt.Metadata()["trainer"])
	assert.Equal(t, FlagHasMetadata|FlagHasModel, ckpt.Flags)
	assert.Equal(t, []string{"dense.0.weight", "dense.0.bias", "empty"}, ckpt.TensorNames())

	w, err := ckpt.Tensor("dense.0.weight")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, w.Shape)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, w.Data)

	b, err := ckpt.Tensor("dense.0.bias")
	require.NoError(t, err)
	assert.Equal(t, []float64{-0.5, 0, 0.5}, b.Data)

	_, err = ckpt.Tensor("missing")
	assert.ErrorIs(t, err, ErrTensorNotFound)
}

func TestDataIsAligned(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Header{ModelType: "x"}, sampleTensors()))

	// 9 float64 values follow the aligned header.
	assert.Equal(t, 0, (buf.Len()-9*8)%HeaderAlignment)
}

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.born")
	require.NoError(t, WriteFile(path, Header{ModelType: "Autoencoder"}, sampleTensors()))

	ckpt, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Autoencoder", ckpt.Header.ModelType)
	assert.Equal(t, uint32(0), ckpt.Flags)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.born"))
	assert.Error(t, err)
}

func TestChecksumDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.born")
	require.NoError(t, WriteFile(path, Header{ModelType: "FeedForward"}, sampleTensors()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = ReadFile(path)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestReadRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Header{}, sampleTensors()))
	good := buf.Bytes()

	badMagic := append([]byte(nil), good...)
	copy(badMagic, "NROB")
	_, err := Read(bytes.NewReader(badMagic))
	assert.ErrorIs(t, err, ErrInvalidMagic)

	badVersion := append([]byte(nil), good...)
	badVersion[4] = 9
	_, err = Read(bytes.NewReader(badVersion))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Read(bytes.NewReader(good[:len(good)-4]))
	assert.Error(t, err)
}

func TestReadRejectsOversizedData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.born")
	require.NoError(t, WriteFile(path, Header{ModelType: "FeedForward"}, sampleTensors()))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	binary.LittleEndian.PutUint64(raw[24:32], 1<<40)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = ReadFile(path)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "out_of_bounds", verr.Reason)

	_, err = Read(bytes.NewReader(raw))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriteValidatesTensors(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Header{}, []Tensor{{Name: "w", Shape: []int{2, 2}, Data: []float64{1}}})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "size_mismatch", verr.Reason)

	err = Write(&buf, Header{}, []Tensor{{Name: "../w", Shape: []int{1}, Data: []float64{1}}})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "invalid_name", verr.Reason)
}

func TestValidateTensorOffsets(t *testing.T) {
	tests := []struct {
		name     string
		tensors  []TensorMeta
		dataSize int64
		wantType string
	}{
		{
			name: "exact boundary",
			tensors: []TensorMeta{
				{Name: "tensor1", Offset: 0, Size: 100},
				{Name: "tensor2", Offset: 100, Size: 100},
			},
			dataSize: 200,
		},
		{
			name: "overlap",
			tensors: []TensorMeta{
				{Name: "tensor1", Offset: 0, Size: 100},
				{Name: "tensor2", Offset: 99, Size: 100},
			},
			dataSize: 200,
			wantType: "offset_overlap",
		},
		{
			name:     "out of bounds",
			tensors:  []TensorMeta{{Name: "tensor1", Offset: 150, Size: 100}},
			dataSize: 200,
			wantType: "out_of_bounds",
		},
		{
			name:     "offset overflow",
			tensors:  []TensorMeta{{Name: "tensor1", Offset: math.MaxInt64 - 4, Size: 16}},
			dataSize: 200,
			wantType: "out_of_bounds",
		},
		{
			name:     "negative",
			tensors:  []TensorMeta{{Name: "tensor1", Offset: -8, Size: 8}},
			dataSize: 200,
			wantType: "negative_offset",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantType, verr.Reason)
		})
	}
}

func TestValidateHeader(t *testing.T) {
	h := &Header{Tensors: []TensorMeta{
		{Name: "a", DType: DTypeFloat64, Shape: []int{2}, Offset: 0, Size: 16},
		{Name: "a", DType: DTypeFloat64, Shape: []int{1}, Offset: 16, Size: 8},
	}}
	assert.ErrorContains(t, ValidateHeader(h, 24), "duplicate_name")

	h.Tensors[1].Name = "b"
	assert.NoError(t, ValidateHeader(h, 24))

	h.Tensors[1].DType = "float32"
	assert.ErrorContains(t, ValidateHeader(h, 24), "unsupported_dtype")

	h.Tensors[1].DType = DTypeFloat64
	h.Tensors[1].Size = 16
	assert.ErrorContains(t, ValidateHeader(h, 32), "size_mismatch")
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	sum := checksum(data)
	assert.Equal(t, sum, checksum([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.NoError(t, verifyChecksum(data, sum))

	data[3] = 0
	assert.ErrorIs(t, verifyChecksum(data, sum), ErrChecksumMismatch)
}
