// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Reader consumes an encoded stream from an immutable byte slice. All
// reads are bounds-checked: reading past the end returns a
// [FormatError] and leaves the cursor unchanged.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Tell returns the offset of the next byte to be read.
func (r *Reader) Tell() int64 {
	return int64(r.pos)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// AtEnd reports whether all bytes have been consumed.
func (r *Reader) AtEnd() bool {
	return r.pos >= len(r.data)
}

// peek returns the next byte without consuming it.
func (r *Reader) peek() (byte, bool) {
	if r.AtEnd() {
		return 0, false
	}
	return r.data[r.pos], true
}

// need returns the next n bytes and advances past them.
func (r *Reader) need(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, &FormatError{
			Offset: r.Tell(),
			Reason: fmt.Sprintf("truncated data: need %d bytes, %d available", n, r.Remaining()),
		}
	}
	region := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return region, nil
}

// ReadChar reads one byte interpreted as an ASCII character.
func (r *Reader) ReadChar() (byte, error) {
	return r.ReadUint8()
}

// ReadUint8 reads one byte.
func (r *Reader) ReadUint8() (uint8, error) {
	region, err := r.need(1)
	if err != nil {
		return 0, err
	}
	return region[0], nil
}

// ReadBytes returns the next n bytes without copying. The result
// aliases the Reader's input and has its capacity clipped, so
// appending to it never overwrites the input.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.need(n)
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.need(n)
	return err
}

// ReadInt16 reads a little-endian two's complement 16-bit integer.
func (r *Reader) ReadInt16() (int16, error) {
	region, err := r.need(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(region)), nil
}

// ReadInt64 reads a little-endian two's complement 64-bit integer.
func (r *Reader) ReadInt64() (int64, error) {
	region, err := r.need(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(region)), nil
}

// ReadFloat32 reads a little-endian IEEE-754 single.
func (r *Reader) ReadFloat32() (float32, error) {
	region, err := r.need(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(region)), nil
}

// ReadFloat64 reads a little-endian IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	region, err := r.need(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(region)), nil
}

// ReadSize reads a variable-length size. A first byte below 253 is the
// size itself. Markers 253 and 254 are followed by a 64-bit size; 255
// marks a list stream that was never closed and yields [SizeUnknown]
// after consuming its 8-byte placeholder.
func (r *Reader) ReadSize() (int64, error) {
	start := r.Tell()
	first, err := r.ReadUint8()
	if err != nil {
		return 0, err
	}
	if first < sizeMarkerWide {
		return int64(first), nil
	}
	if first == sizeMarkerUnknown {
		if err := r.Skip(8); err != nil {
			return 0, err
		}
		return SizeUnknown, nil
	}

	// sizeMarkerWide or sizeMarkerClosed.
	region, err := r.need(8)
	if err != nil {
		return 0, err
	}
	low := uint64(binary.LittleEndian.Uint32(region[0:4]))
	high := uint64(binary.LittleEndian.Uint32(region[4:8]))
	size := low | high<<32
	if size > math.MaxInt64 {
		return 0, &FormatError{Offset: start, Reason: fmt.Sprintf("size %d overflows int64", size)}
	}
	return int64(size), nil
}

// readLength reads a size that must be a concrete byte count no larger
// than the remaining input.
func (r *Reader) readLength(what string) (int, error) {
	start := r.Tell()
	size, err := r.ReadSize()
	if err != nil {
		return 0, err
	}
	if size < 0 || size > int64(r.Remaining()) {
		return 0, &FormatError{
			Offset: start,
			Reason: fmt.Sprintf("%s length %d exceeds the %d bytes available", what, size, r.Remaining()),
		}
	}
	return int(size), nil
}

// ReadString reads a size-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	start := r.Tell()
	length, err := r.readLength("string")
	if err != nil {
		return "", err
	}
	region, err := r.need(length)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(region) {
		return "", &FormatError{Offset: start, Reason: "string is not valid UTF-8"}
	}
	return string(region), nil
}
