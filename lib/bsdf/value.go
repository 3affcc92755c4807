// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

// Undefined marks the absence of a value. Encoding it is an error:
// callers must say nil when they mean null, rather than having a
// missing value silently become one.
type Undefined struct{}

// Blob is a byte payload with storage metadata. Encoding a plain
// []byte is equivalent to encoding Blob{Data: b} with the codec's
// default compression and checksum settings.
type Blob struct {
	// Data is the uncompressed payload.
	Data []byte

	// ExtraSize reserves unused bytes after the payload so the blob
	// can later grow in place.
	ExtraSize int

	// Compression overrides the codec's default when Override is set.
	Compression Compression

	// Checksum stores an md5 digest of the stored bytes when Override
	// is set.
	Checksum bool

	// Override selects Compression and Checksum from this Blob rather
	// than from the codec options.
	Override bool
}

// NDArray is a dense N-dimensional numeric array. Data holds the
// elements in row-major order as one of []int8, []int16, []int32,
// []int64, []uint8, []uint16, []uint32, []uint64, []float32 or
// []float64. Shape lists the dimensions; their product equals the
// element count.
type NDArray struct {
	Shape []int
	Data  any
}
