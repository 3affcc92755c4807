// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

import (
	"encoding/binary"
	"math"
)

// minWriterCapacity is the initial buffer size of a Writer.
const minWriterCapacity = 1024

// Writer accumulates an encoded stream in memory. The total size does
// not need to be known upfront: the buffer grows geometrically, so a
// sequence of small writes costs amortized O(1) per byte.
//
// A Writer may be positioned inside a larger stream (see
// [NewWriterAt]); [Writer.Tell] then reports absolute stream offsets,
// which blob alignment depends on.
type Writer struct {
	buf  []byte
	base int64
}

// NewWriter returns an empty Writer positioned at stream offset 0.
func NewWriter() *Writer {
	return NewWriterAt(0)
}

// NewWriterAt returns an empty Writer whose first byte lands at the
// given absolute stream offset.
func NewWriterAt(base int64) *Writer {
	return &Writer{
		buf:  make([]byte, 0, minWriterCapacity),
		base: base,
	}
}

// ensure guarantees at least n bytes of spare capacity.
func (w *Writer) ensure(n int) {
	if cap(w.buf)-len(w.buf) >= n {
		return
	}
	grown := make([]byte, len(w.buf), cap(w.buf)*2+n)
	copy(grown, w.buf)
	w.buf = grown
}

// grow extends the buffer by n bytes and returns the new region.
func (w *Writer) grow(n int) []byte {
	w.ensure(n)
	start := len(w.buf)
	w.buf = w.buf[:start+n]
	return w.buf[start:]
}

// Tell returns the absolute stream offset of the next byte written.
func (w *Writer) Tell() int64 {
	return w.base + int64(len(w.buf))
}

// Len returns the number of bytes written to this Writer.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the bytes written so far. The slice aliases the
// Writer's buffer until the next write.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reset discards the written bytes and moves the Writer to a new
// absolute offset, keeping the allocated buffer.
func (w *Writer) Reset(base int64) {
	w.buf = w.buf[:0]
	w.base = base
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(p []byte) {
	w.ensure(len(p))
	w.buf = append(w.buf, p...)
}

// WriteChar appends a single ASCII character, such as a type tag.
func (w *Writer) WriteChar(c byte) {
	w.WriteUint8(c)
}

// WriteUint8 appends one byte.
func (w *Writer) WriteUint8(n uint8) {
	w.ensure(1)
	w.buf = append(w.buf, n)
}

// WriteZeros appends n zero bytes.
func (w *Writer) WriteZeros(n int) {
	clear(w.grow(n))
}

// WriteInt16 appends n as little-endian two's complement.
func (w *Writer) WriteInt16(n int16) {
	binary.LittleEndian.PutUint16(w.grow(2), uint16(n))
}

// WriteInt64 appends n as little-endian two's complement.
func (w *Writer) WriteInt64(n int64) {
	binary.LittleEndian.PutUint64(w.grow(8), uint64(n))
}

// WriteFloat32 appends n as a little-endian IEEE-754 single.
func (w *Writer) WriteFloat32(n float32) {
	binary.LittleEndian.PutUint32(w.grow(4), math.Float32bits(n))
}

// WriteFloat64 appends n as a little-endian IEEE-754 double.
func (w *Writer) WriteFloat64(n float64) {
	binary.LittleEndian.PutUint64(w.grow(8), math.Float64bits(n))
}

// WriteString appends the UTF-8 bytes of s prefixed by their length.
func (w *Writer) WriteString(s string) {
	w.WriteSize(uint64(len(s)))
	w.ensure(len(s))
	w.buf = append(w.buf, s...)
}

// WriteSize appends a variable-length size: one byte for sizes up to
// 250, otherwise the wide form.
func (w *Writer) WriteSize(n uint64) {
	if n <= maxShortSize {
		w.WriteUint8(uint8(n))
		return
	}
	w.WriteSizeWide(n)
}

// WriteSizeWide appends the nine-byte size form regardless of n:
// marker 253 followed by the low and high 32-bit halves, each
// little-endian. Blob records use it so that a size can later be
// rewritten in place without moving the payload.
func (w *Writer) WriteSizeWide(n uint64) {
	w.writeSizeMarker(sizeMarkerWide, n)
}

func (w *Writer) writeSizeMarker(marker uint8, n uint64) {
	region := w.grow(9)
	region[0] = marker
	binary.LittleEndian.PutUint32(region[1:5], uint32(n&0xffffffff))
	binary.LittleEndian.PutUint32(region[5:9], uint32(n>>32))
}
