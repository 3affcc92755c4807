// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

import (
	"encoding/binary"
	"fmt"
	"reflect"
)

// StandardExtensions returns fresh copies of the extensions every
// codec registers unless told otherwise: "c" for complex numbers and
// "ndarray" for typed numeric arrays.
func StandardExtensions() []*Extension {
	return []*Extension{ComplexExtension(), NDArrayExtension()}
}

// ComplexExtension encodes complex64 and complex128 values as a
// two-element list [real, imag] and decodes them as complex128.
func ComplexExtension() *Extension {
	return &Extension{
		Name: "c",
		Match: func(v any) bool {
			switch v.(type) {
			case complex64, complex128:
				return true
			}
			return false
		},
		Encode: func(v any) (any, error) {
			var number complex128
			switch value := v.(type) {
			case complex64:
				number = complex128(value)
			case complex128:
				number = value
			default:
				return nil, fmt.Errorf("complex extension cannot encode %T", v)
			}
			return []any{real(number), imag(number)}, nil
		},
		Decode: func(v any) (any, error) {
			parts, ok := v.([]any)
			if !ok || len(parts) != 2 {
				return nil, fmt.Errorf("complex value must be a two-element list, got %T", v)
			}
			realPart, ok := toFloat64(parts[0])
			if !ok {
				return nil, fmt.Errorf("complex real part is %T, not a number", parts[0])
			}
			imagPart, ok := toFloat64(parts[1])
			if !ok {
				return nil, fmt.Errorf("complex imaginary part is %T, not a number", parts[1])
			}
			return complex(realPart, imagPart), nil
		},
	}
}

// dtypes maps element type names to constructors for a typed slice of
// that element type. Names are the lowercase element type names used
// by numpy and by JavaScript typed arrays without their "Array" suffix.
var dtypes = map[string]func(length int) any{
	"int8":    func(n int) any { return make([]int8, n) },
	"int16":   func(n int) any { return make([]int16, n) },
	"int32":   func(n int) any { return make([]int32, n) },
	"int64":   func(n int) any { return make([]int64, n) },
	"uint8":   func(n int) any { return make([]uint8, n) },
	"uint16":  func(n int) any { return make([]uint16, n) },
	"uint32":  func(n int) any { return make([]uint32, n) },
	"uint64":  func(n int) any { return make([]uint64, n) },
	"float32": func(n int) any { return make([]float32, n) },
	"float64": func(n int) any { return make([]float64, n) },
}

// DType returns the element type name of a typed numeric slice.
func DType(data any) (string, bool) {
	switch data.(type) {
	case []int8:
		return "int8", true
	case []int16:
		return "int16", true
	case []int32:
		return "int32", true
	case []int64:
		return "int64", true
	case []uint8:
		return "uint8", true
	case []uint16:
		return "uint16", true
	case []uint32:
		return "uint32", true
	case []uint64:
		return "uint64", true
	case []float32:
		return "float32", true
	case []float64:
		return "float64", true
	}
	return "", false
}

// Len returns the number of elements in the array.
func (a NDArray) Len() int {
	if _, ok := DType(a.Data); !ok {
		return 0
	}
	return reflect.ValueOf(a.Data).Len()
}

// DType returns the element type name, or "" if Data is not a
// supported typed slice.
func (a NDArray) DType() string {
	name, _ := DType(a.Data)
	return name
}

// NDArrayExtension encodes NDArray values and bare typed numeric
// slices as a map {shape, dtype, data}, with data holding the elements
// as little-endian bytes. It decodes to NDArray.
func NDArrayExtension() *Extension {
	return &Extension{
		Name: "ndarray",
		Match: func(v any) bool {
			switch value := v.(type) {
			case NDArray, *NDArray:
				return true
			default:
				// []byte never reaches extensions: it is a blob.
				_, ok := DType(value)
				return ok
			}
		},
		Encode: encodeNDArray,
		Decode: decodeNDArray,
	}
}

func encodeNDArray(v any) (any, error) {
	var array NDArray
	switch value := v.(type) {
	case NDArray:
		array = value
	case *NDArray:
		array = *value
	default:
		array = NDArray{Data: value}
	}

	dtype, ok := DType(array.Data)
	if !ok {
		return nil, fmt.Errorf("ndarray data is %T, not a typed numeric slice", array.Data)
	}
	length := reflect.ValueOf(array.Data).Len()

	shape := array.Shape
	if shape == nil {
		shape = []int{length}
	}
	if count := shapeCount(shape); count != length {
		return nil, fmt.Errorf("ndarray shape %v holds %d elements but data has %d", shape, count, length)
	}

	encodedShape := make([]any, len(shape))
	for i, dimension := range shape {
		encodedShape[i] = int64(dimension)
	}

	data, err := binary.Append(nil, binary.LittleEndian, array.Data)
	if err != nil {
		return nil, fmt.Errorf("ndarray data: %w", err)
	}

	return map[string]any{
		"shape": encodedShape,
		"dtype": dtype,
		"data":  data,
	}, nil
}

func decodeNDArray(v any) (any, error) {
	fields, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("ndarray value must be a map, got %T", v)
	}

	dtype, ok := fields["dtype"].(string)
	if !ok {
		return nil, fmt.Errorf("ndarray dtype must be a string, got %T", fields["dtype"])
	}
	construct, ok := dtypes[dtype]
	if !ok {
		return nil, fmt.Errorf("ndarray dtype %q is not supported", dtype)
	}

	data, ok := fields["data"].([]byte)
	if !ok {
		return nil, fmt.Errorf("ndarray data must be bytes, got %T", fields["data"])
	}

	rawShape, ok := fields["shape"].([]any)
	if !ok {
		return nil, fmt.Errorf("ndarray shape must be a list, got %T", fields["shape"])
	}
	shape := make([]int, len(rawShape))
	for i, dimension := range rawShape {
		size, ok := dimension.(int64)
		if !ok || size < 0 {
			return nil, fmt.Errorf("ndarray shape[%d] must be a non-negative integer, got %v", i, dimension)
		}
		shape[i] = int(size)
	}

	elementSize := binary.Size(construct(1))
	if len(data)%elementSize != 0 {
		return nil, fmt.Errorf("ndarray data length %d is not a multiple of the %s element size %d",
			len(data), dtype, elementSize)
	}
	length := len(data) / elementSize
	if count := shapeCount(shape); count != length {
		return nil, fmt.Errorf("ndarray shape %v holds %d elements but data has %d", shape, count, length)
	}

	elements := construct(length)
	if _, err := binary.Decode(data, binary.LittleEndian, elements); err != nil {
		return nil, fmt.Errorf("ndarray data: %w", err)
	}
	return NDArray{Shape: shape, Data: elements}, nil
}

func shapeCount(shape []int) int {
	count := 1
	for _, dimension := range shape {
		count *= dimension
	}
	return count
}

// toFloat64 converts any decoded number to float64.
func toFloat64(v any) (float64, bool) {
	switch number := v.(type) {
	case int64:
		return float64(number), true
	case float64:
		return number, true
	case float32:
		return float64(number), true
	}
	return 0, false
}
