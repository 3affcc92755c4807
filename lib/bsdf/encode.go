// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"unicode/utf8"
)

// encodeState carries one Encode call: the output buffer, the current
// nesting depth, and the maps and slices on the current recursion path
// (for cycle detection).
type encodeState struct {
	codec  *Codec
	writer *Writer
	depth  int
	active map[visit]struct{}
}

// visit identifies a map or slice by its backing storage. Length is
// part of the key because two slices of one array are distinct values.
type visit struct {
	kind    reflect.Kind
	pointer uintptr
	length  int
}

func (c *Codec) newEncodeState(writer *Writer) *encodeState {
	return &encodeState{
		codec:  c,
		writer: writer,
		active: make(map[visit]struct{}),
	}
}

// encode writes one record for v. extension is the name of the
// extension that produced v, or "" for a plain value.
func (e *encodeState) encode(v any, extension string) error {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.codec.options.MaxDepth {
		return &EncodeError{
			Type:   fmt.Sprintf("%T", v),
			Reason: fmt.Sprintf("nesting exceeds the maximum depth of %d", e.codec.options.MaxDepth),
		}
	}

	switch value := v.(type) {
	case nil:
		e.writeTag(tagNull, extension)
	case Undefined:
		return &EncodeError{Type: "bsdf.Undefined", Reason: "absence of a value; use nil for null"}
	case bool:
		if value {
			e.writeTag(tagTrue, extension)
		} else {
			e.writeTag(tagFalse, extension)
		}
	case int:
		e.writeInt(int64(value), extension)
	case int8:
		e.writeInt(int64(value), extension)
	case int16:
		e.writeInt(int64(value), extension)
	case int32:
		e.writeInt(int64(value), extension)
	case int64:
		e.writeInt(value, extension)
	case uint8:
		e.writeInt(int64(value), extension)
	case uint16:
		e.writeInt(int64(value), extension)
	case uint32:
		e.writeInt(int64(value), extension)
	case uint:
		return e.writeUint(uint64(value), extension)
	case uint64:
		return e.writeUint(value, extension)
	case float32:
		e.writeFloat32(value, extension)
	case float64:
		e.writeFloat64(value, extension)
	case string:
		return e.writeString(value, extension)
	case []any:
		return e.encodeList(value, extension)
	case map[string]any:
		return e.encodeMap(value, extension)
	case []byte:
		return e.encodeBlob(Blob{Data: value}, extension)
	case Blob:
		return e.encodeBlob(value, extension)
	case *Blob:
		if value == nil {
			e.writeTag(tagNull, extension)
			return nil
		}
		return e.encodeBlob(*value, extension)
	default:
		return e.encodeOther(v, extension)
	}
	return nil
}

// writeTag writes a type tag, uppercased and followed by the extension
// name when the value came from an extension.
func (e *encodeState) writeTag(tag byte, extension string) {
	if extension == "" {
		e.writer.WriteChar(tag)
		return
	}
	e.writer.WriteChar(toUpper(tag))
	e.writer.WriteString(extension)
}

// writeInt picks the 16-bit form whenever the value fits, regardless
// of the Go type it came from.
func (e *encodeState) writeInt(n int64, extension string) {
	if n >= math.MinInt16 && n <= math.MaxInt16 {
		e.writeTag(tagInt16, extension)
		e.writer.WriteInt16(int16(n))
		return
	}
	e.writeTag(tagInt64, extension)
	e.writer.WriteInt64(n)
}

func (e *encodeState) writeUint(n uint64, extension string) error {
	if n > math.MaxInt64 {
		return &EncodeError{Type: "uint64", Reason: fmt.Sprintf("%d exceeds the int64 range", n)}
	}
	e.writeInt(int64(n), extension)
	return nil
}

// integral reports whether f is exactly an int64. Negative zero is
// kept as a float so its sign survives.
func integral(f float64) bool {
	if f != math.Trunc(f) {
		return false
	}
	if f == 0 && math.Signbit(f) {
		return false
	}
	return f >= math.MinInt64 && f < math.MaxInt64
}

func (e *encodeState) writeFloat64(f float64, extension string) {
	if integral(f) {
		e.writeInt(int64(f), extension)
		return
	}
	if e.codec.options.Float32 {
		e.writeTag(tagFloat32, extension)
		e.writer.WriteFloat32(float32(f))
		return
	}
	e.writeTag(tagFloat64, extension)
	e.writer.WriteFloat64(f)
}

func (e *encodeState) writeFloat32(f float32, extension string) {
	if integral(float64(f)) {
		e.writeInt(int64(f), extension)
		return
	}
	e.writeTag(tagFloat32, extension)
	e.writer.WriteFloat32(f)
}

func (e *encodeState) writeString(s string, extension string) error {
	if !utf8.ValidString(s) {
		return &EncodeError{Type: "string", Reason: "not valid UTF-8"}
	}
	e.writeTag(tagString, extension)
	e.writer.WriteString(s)
	return nil
}

// enter records a map or slice on the recursion path, failing if it is
// already there.
func (e *encodeState) enter(key visit, v any) error {
	if _, seen := e.active[key]; seen {
		return &EncodeError{Type: fmt.Sprintf("%T", v), Reason: "cyclic reference"}
	}
	e.active[key] = struct{}{}
	return nil
}

func (e *encodeState) leave(key visit) {
	delete(e.active, key)
}

func (e *encodeState) encodeList(items []any, extension string) error {
	if len(items) > 0 {
		key := visit{kind: reflect.Slice, pointer: reflect.ValueOf(items).Pointer(), length: len(items)}
		if err := e.enter(key, items); err != nil {
			return err
		}
		defer e.leave(key)
	}

	e.writeTag(tagList, extension)
	e.writer.WriteSize(uint64(len(items)))
	for _, item := range items {
		if err := e.encode(item, ""); err != nil {
			return err
		}
	}
	return nil
}

func (e *encodeState) encodeMap(entries map[string]any, extension string) error {
	if len(entries) > 0 {
		key := visit{kind: reflect.Map, pointer: reflect.ValueOf(entries).Pointer()}
		if err := e.enter(key, entries); err != nil {
			return err
		}
		defer e.leave(key)
	}

	keys := make([]string, 0, len(entries))
	for name := range entries {
		keys = append(keys, name)
	}
	slices.Sort(keys)

	e.writeTag(tagMap, extension)
	e.writer.WriteSize(uint64(len(keys)))
	for _, name := range keys {
		if !utf8.ValidString(name) {
			return &EncodeError{Type: "map key", Reason: fmt.Sprintf("%q is not valid UTF-8", name)}
		}
		e.writer.WriteString(name)
		if err := e.encode(entries[name], ""); err != nil {
			return err
		}
	}
	return nil
}

// encodeBlob writes a blob record: three sizes, the compression byte,
// the checksum flag (and digest), alignment padding for uncompressed
// payloads, the stored bytes, and the reserved extra space.
func (e *encodeState) encodeBlob(blob Blob, extension string) error {
	compression := e.codec.options.Compression
	checksum := e.codec.options.Checksum
	if blob.Override {
		compression = blob.Compression
		checksum = blob.Checksum
	}
	if blob.ExtraSize < 0 {
		return &EncodeError{Type: "bsdf.Blob", Reason: fmt.Sprintf("negative extra size %d", blob.ExtraSize)}
	}

	stored, err := compressBlob(blob.Data, compression)
	if err != nil {
		return err
	}

	dataSize := uint64(len(blob.Data))
	usedSize := uint64(len(stored))
	allocatedSize := usedSize + uint64(blob.ExtraSize)

	e.writeTag(tagBlob, extension)

	// Large or compressed blobs always use the wide size form so the
	// sizes can be rewritten in place when the blob is updated.
	if allocatedSize > maxShortSize || compression != CompressionNone {
		e.writer.WriteSizeWide(allocatedSize)
		e.writer.WriteSizeWide(usedSize)
		e.writer.WriteSizeWide(dataSize)
	} else {
		e.writer.WriteSize(allocatedSize)
		e.writer.WriteSize(usedSize)
		e.writer.WriteSize(dataSize)
	}

	e.writer.WriteUint8(uint8(compression))
	if checksum {
		digest := blobChecksum(stored)
		e.writer.WriteUint8(checksumPresent)
		e.writer.WriteBytes(digest[:])
	} else {
		e.writer.WriteUint8(0)
	}

	if compression == CompressionNone {
		// +1 for the alignment byte itself.
		alignment := 8 - (e.writer.Tell()+1)%8
		e.writer.WriteUint8(uint8(alignment))
		e.writer.WriteZeros(int(alignment))
	} else {
		e.writer.WriteUint8(0)
	}

	e.writer.WriteBytes(stored)
	e.writer.WriteZeros(blob.ExtraSize)
	return nil
}

// encodeOther handles values outside the closed set of plain Go types:
// extension values first, then reflection over named basic types,
// slices, arrays, string-keyed maps and pointers.
func (e *encodeState) encodeOther(v any, extension string) error {
	if matched, ok := e.codec.registry.Match(v); ok {
		if extension != "" {
			return &ExtensionProtocolError{Extension: extension, Type: fmt.Sprintf("%T", v)}
		}
		converted, err := matched.Encode(v)
		if err != nil {
			return fmt.Errorf("bsdf: extension %q encode: %w", matched.Name, err)
		}
		return e.encode(converted, matched.Name)
	}

	value := reflect.ValueOf(v)
	switch value.Kind() {
	case reflect.Bool:
		return e.encode(value.Bool(), extension)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.writeInt(value.Int(), extension)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return e.writeUint(value.Uint(), extension)
	case reflect.Float32:
		e.writeFloat32(float32(value.Float()), extension)
		return nil
	case reflect.Float64:
		e.writeFloat64(value.Float(), extension)
		return nil
	case reflect.String:
		return e.writeString(value.String(), extension)
	case reflect.Slice:
		if value.Type().Elem().Kind() == reflect.Uint8 {
			return e.encodeBlob(Blob{Data: value.Bytes()}, extension)
		}
		return e.encodeReflectList(value, extension)
	case reflect.Array:
		return e.encodeReflectList(value, extension)
	case reflect.Map:
		if value.Type().Key().Kind() == reflect.String {
			return e.encodeReflectMap(value, extension)
		}
	case reflect.Pointer:
		if value.IsNil() {
			e.writeTag(tagNull, extension)
			return nil
		}
		return e.encode(value.Elem().Interface(), extension)
	}

	return &EncodeError{
		Type:   fmt.Sprintf("%T", v),
		Reason: "not a BSDF value and no registered extension matches it",
	}
}

func (e *encodeState) encodeReflectList(value reflect.Value, extension string) error {
	length := value.Len()
	if value.Kind() == reflect.Slice && length > 0 {
		key := visit{kind: reflect.Slice, pointer: value.Pointer(), length: length}
		if err := e.enter(key, value.Interface()); err != nil {
			return err
		}
		defer e.leave(key)
	}

	e.writeTag(tagList, extension)
	e.writer.WriteSize(uint64(length))
	for i := range length {
		if err := e.encode(value.Index(i).Interface(), ""); err != nil {
			return err
		}
	}
	return nil
}

func (e *encodeState) encodeReflectMap(value reflect.Value, extension string) error {
	if value.Len() > 0 {
		key := visit{kind: reflect.Map, pointer: value.Pointer()}
		if err := e.enter(key, value.Interface()); err != nil {
			return err
		}
		defer e.leave(key)
	}

	keys := value.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		}
		return 0
	})

	e.writeTag(tagMap, extension)
	e.writer.WriteSize(uint64(len(keys)))
	for _, key := range keys {
		name := key.String()
		if !utf8.ValidString(name) {
			return &EncodeError{Type: "map key", Reason: fmt.Sprintf("%q is not valid UTF-8", name)}
		}
		e.writer.WriteString(name)
		if err := e.encode(value.MapIndex(key).Interface(), ""); err != nil {
			return err
		}
	}
	return nil
}
