// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/bureau-foundation/bsdf/lib/bsdf"
)

// Keys of the single-entry maps that carry BSDF values with no native
// representation in the interchange formats.
const (
	// BytesKey holds a blob as standard base64 text. CBOR output uses
	// native byte strings instead.
	BytesKey = "$bytes"

	// ComplexKey holds a complex number as [real, imag].
	ComplexKey = "$complex"

	// NDArrayKey holds a typed array as {shape, dtype, data} with data
	// a flat list of numbers.
	NDArrayKey = "$ndarray"
)

var ndarrayElementTypes = map[string]reflect.Type{
	"int8":    reflect.TypeFor[int8](),
	"int16":   reflect.TypeFor[int16](),
	"int32":   reflect.TypeFor[int32](),
	"int64":   reflect.TypeFor[int64](),
	"uint8":   reflect.TypeFor[uint8](),
	"uint16":  reflect.TypeFor[uint16](),
	"uint32":  reflect.TypeFor[uint32](),
	"uint64":  reflect.TypeFor[uint64](),
	"float32": reflect.TypeFor[float32](),
	"float64": reflect.TypeFor[float64](),
}

// ToInterchange converts a decoded BSDF value tree into one the target
// format's marshaler represents faithfully. The input is not modified.
func ToInterchange(v any, format Format) (any, error) {
	switch value := v.(type) {
	case nil, bool, int64, float64, float32, string:
		return value, nil

	case []byte:
		if format == FormatCBOR {
			return value, nil
		}
		return map[string]any{BytesKey: base64.StdEncoding.EncodeToString(value)}, nil

	case complex128:
		return map[string]any{ComplexKey: []any{real(value), imag(value)}}, nil

	case complex64:
		return ToInterchange(complex128(value), format)

	case bsdf.NDArray:
		return ndarrayToInterchange(value)

	case []any:
		result := make([]any, len(value))
		for index, element := range value {
			converted, err := ToInterchange(element, format)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", index, err)
			}
			result[index] = converted
		}
		return result, nil

	case map[string]any:
		result := make(map[string]any, len(value))
		for key, element := range value {
			converted, err := ToInterchange(element, format)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			result[key] = converted
		}
		return result, nil

	default:
		return nil, fmt.Errorf("%T has no %s representation", v, format)
	}
}

func ndarrayToInterchange(array bsdf.NDArray) (any, error) {
	dtype := array.DType()
	if dtype == "" {
		return nil, fmt.Errorf("ndarray data is %T, not a typed numeric slice", array.Data)
	}
	elements := reflect.ValueOf(array.Data)
	data := make([]any, elements.Len())
	for i := range data {
		element := elements.Index(i)
		switch element.Kind() {
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			data[i] = element.Int()
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			data[i] = element.Uint()
		default:
			data[i] = element.Float()
		}
	}
	shape := make([]any, len(array.Shape))
	for i, dimension := range array.Shape {
		shape[i] = int64(dimension)
	}
	return map[string]any{NDArrayKey: map[string]any{
		"shape": shape,
		"dtype": dtype,
		"data":  data,
	}}, nil
}

// FromInterchange converts a value decoded from JSON, YAML or CBOR into
// one the BSDF encoder accepts: numbers become int64 or float64, maps
// get string keys, and the special single-entry maps are turned back
// into blobs, complex numbers and arrays. Maps and lists are converted
// in place.
func FromInterchange(v any) (any, error) {
	switch value := v.(type) {
	case json.Number:
		return convertNumber(value)

	case int:
		return int64(value), nil

	case time.Time:
		// YAML timestamps. BSDF has no time type.
		return value.Format(time.RFC3339Nano), nil

	case map[any]any:
		result := make(map[string]any, len(value))
		for key, element := range value {
			result[fmt.Sprint(key)] = element
		}
		return FromInterchange(result)

	case map[string]any:
		for key, element := range value {
			converted, err := FromInterchange(element)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			value[key] = converted
		}
		if len(value) == 1 {
			return fromSpecial(value)
		}
		return value, nil

	case []any:
		for index, element := range value {
			converted, err := FromInterchange(element)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", index, err)
			}
			value[index] = converted
		}
		return value, nil

	default:
		return v, nil
	}
}

// convertNumber turns a json.Number into int64 when it is an integer in
// range and float64 otherwise.
func convertNumber(number json.Number) (any, error) {
	if integer, err := number.Int64(); err == nil {
		return integer, nil
	}
	float, err := number.Float64()
	if err != nil {
		return nil, fmt.Errorf("number %q is neither int64 nor float64: %w", number.String(), err)
	}
	return float, nil
}

// fromSpecial converts a single-entry map whose key is one of the
// special keys. Any other map is returned unchanged.
func fromSpecial(value map[string]any) (any, error) {
	if encoded, ok := value[BytesKey]; ok {
		switch payload := encoded.(type) {
		case string:
			decoded, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", BytesKey, err)
			}
			return decoded, nil
		case []byte:
			return payload, nil
		default:
			return nil, fmt.Errorf("%s must be base64 text, got %T", BytesKey, encoded)
		}
	}

	if parts, ok := value[ComplexKey]; ok {
		list, ok := parts.([]any)
		if !ok || len(list) != 2 {
			return nil, fmt.Errorf("%s must be a two-element list", ComplexKey)
		}
		realPart, ok := toFloat64(list[0])
		if !ok {
			return nil, fmt.Errorf("%s real part is %T, not a number", ComplexKey, list[0])
		}
		imagPart, ok := toFloat64(list[1])
		if !ok {
			return nil, fmt.Errorf("%s imaginary part is %T, not a number", ComplexKey, list[1])
		}
		return complex(realPart, imagPart), nil
	}

	if fields, ok := value[NDArrayKey]; ok {
		return ndarrayFromInterchange(fields)
	}

	return value, nil
}

func ndarrayFromInterchange(v any) (any, error) {
	fields, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a map, got %T", NDArrayKey, v)
	}
	dtype, _ := fields["dtype"].(string)
	elementType, ok := ndarrayElementTypes[dtype]
	if !ok {
		return nil, fmt.Errorf("%s dtype %q is not supported", NDArrayKey, dtype)
	}
	data, ok := fields["data"].([]any)
	if !ok {
		return nil, fmt.Errorf("%s data must be a list, got %T", NDArrayKey, fields["data"])
	}

	elements := reflect.MakeSlice(reflect.SliceOf(elementType), len(data), len(data))
	for i, number := range data {
		if err := setElement(elements.Index(i), number); err != nil {
			return nil, fmt.Errorf("%s data[%d]: %w", NDArrayKey, i, err)
		}
	}

	array := bsdf.NDArray{Data: elements.Interface()}
	if rawShape, present := fields["shape"]; present {
		list, ok := rawShape.([]any)
		if !ok {
			return nil, fmt.Errorf("%s shape must be a list, got %T", NDArrayKey, rawShape)
		}
		array.Shape = make([]int, len(list))
		for i, dimension := range list {
			size, ok := dimension.(int64)
			if !ok || size < 0 {
				return nil, fmt.Errorf("%s shape[%d] must be a non-negative integer, got %v", NDArrayKey, i, dimension)
			}
			array.Shape[i] = int(size)
		}
	}
	return array, nil
}

// setElement stores a decoded number in a typed slice element,
// rejecting values the element type cannot hold exactly.
func setElement(element reflect.Value, number any) error {
	switch element.Kind() {
	case reflect.Float32, reflect.Float64:
		float, ok := toFloat64(number)
		if !ok {
			return fmt.Errorf("%T is not a number", number)
		}
		element.SetFloat(float)
		return nil

	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		integer, ok := number.(int64)
		if !ok || element.OverflowInt(integer) {
			return fmt.Errorf("%v does not fit %s", number, element.Type())
		}
		element.SetInt(integer)
		return nil

	default:
		var unsigned uint64
		switch n := number.(type) {
		case int64:
			if n < 0 {
				return fmt.Errorf("%d does not fit %s", n, element.Type())
			}
			unsigned = uint64(n)
		case uint64:
			unsigned = n
		default:
			return fmt.Errorf("%v does not fit %s", number, element.Type())
		}
		if element.OverflowUint(unsigned) {
			return fmt.Errorf("%d does not fit %s", unsigned, element.Type())
		}
		element.SetUint(unsigned)
		return nil
	}
}

func toFloat64(v any) (float64, bool) {
	switch number := v.(type) {
	case int64:
		return float64(number), true
	case uint64:
		return float64(number), true
	case float64:
		return number, true
	case float32:
		return float64(number), true
	}
	return math.NaN(), false
}
