package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB - maximum header size
	MaxTensorCount   = 100_000           // Maximum number of tensors in a file
	MaxTensorNameLen = 4096              // Maximum tensor name length
)

// ValidateTensorOffsets checks for overlapping tensor offsets and out-of-bounds access.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Reason:  "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Reason:  "negative_offset",
				Name:    t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
			}
		}

		if t.Size > dataSize || t.Offset > dataSize-t.Size {
			return &ValidationError{
				Reason:  "out_of_bounds",
				Name:    t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Reason:  "offset_overlap",
					Name:    t.Name,
					Other:   next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// ValidateTensorName rejects empty, overlong and path-like tensor names.
func ValidateTensorName(name string) error {
	if name == "" {
		return &ValidationError{Reason: "invalid_name", Details: "empty tensor name"}
	}
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Reason:  "name_too_long",
			Name:    name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") {
		return &ValidationError{
			Reason:  "invalid_name",
			Name:    name,
			Details: "contains '..', a path separator or a null byte",
		}
	}
	return nil
}

// ValidateHeader checks tensor names, dtypes, shapes and offsets against the data size.
func ValidateHeader(h *Header, dataSize int64) error {
	seen := make(map[string]bool, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if seen[t.Name] {
			return &ValidationError{Reason: "duplicate_name", Name: t.Name, Details: "tensor listed twice"}
		}
		seen[t.Name] = true

		if t.DType != DTypeFloat64 {
			return &ValidationError{Reason: "unsupported_dtype", Name: t.Name, Details: t.DType}
		}
		for _, d := range t.Shape {
			if d < 0 {
				return &ValidationError{Reason: "invalid_shape", Name: t.Name, Details: fmt.Sprint(t.Shape)}
			}
		}
		if want := int64(numElements(t.Shape)) * 8; want != t.Size {
			return &ValidationError{
				Reason:  "size_mismatch",
				Name:    t.Name,
				Details: fmt.Sprintf("shape %v needs %d bytes, header says %d", t.Shape, want, t.Size),
			}
		}
	}
	return ValidateTensorOffsets(h.Tensors, dataSize)
}
