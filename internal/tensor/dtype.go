// Package tensor provides the shaped buffers that every surrogate stage exchanges.
package tensor

import (
	"fmt"
	"reflect"
)

// DType is the set of element types an Array can hold. Shape adaptation never
// performs arithmetic, so every DType round-trips bit for bit.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~bool
}

// DataType tags the element type of an Array at runtime.
type DataType int

// Element types.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
)

var dataTypeNames = [...]string{
	Float32: "float32",
	Float64: "float64",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Bool:    "bool",
}

// String returns the Go name of the element type.
func (dt DataType) String() string {
	if dt < 0 || int(dt) >= len(dataTypeNames) {
		return fmt.Sprintf("DataType(%d)", int(dt))
	}
	return dataTypeNames[dt]
}

// TypeOf returns the DataType of T. Named types report their underlying kind.
func TypeOf[T DType]() DataType {
	switch k := reflect.TypeFor[T]().Kind(); k {
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	case reflect.Int32:
		return Int32
	case reflect.Int64:
		return Int64
	case reflect.Uint8:
		return Uint8
	case reflect.Bool:
		return Bool
	default:
		panic(fmt.Sprintf("tensor: unsupported element kind %v", k))
	}
}
