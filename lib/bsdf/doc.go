// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bsdf implements the Binary Structured Data Format, a compact
// self-describing binary serialization for structured and scientific
// data.
//
// A BSDF document is a six-byte header ("BSDF", major version, minor
// version) followed by exactly one record. Records start with a
// one-byte type tag:
//
//	v  null            n / y  false / true
//	h  int16           i      int64
//	f  float32         d      float64
//	s  string          l      list
//	m  map             b      blob
//
// An uppercase tag marks a value produced by an extension and is
// followed by the extension's name. Sizes use one byte up to 250 and a
// nine-byte form above that. All numbers are little-endian.
//
// Values map onto Go as follows. Any Go integer, and any float with an
// exact integer value, is written as int16 when it fits and int64
// otherwise; both decode to int64. Non-integral floats are written as
// float64 (or float32 for float32 inputs and with Options.Float32).
// Lists decode to []any, maps to map[string]any, and blobs to []byte.
// Uncompressed blobs decode as a view into the input buffer: copy them
// before modifying the input.
//
// Types outside this model are handled by extensions. Every codec
// registers two by default: "c" for complex numbers and "ndarray" for
// typed numeric slices and [NDArray]:
//
//	data, err := bsdf.Marshal(map[string]any{
//	    "name":    "sample",
//	    "samples": []float32{0.5, 1.5, 2.5},
//	    "phase":   complex(0, 1),
//	})
//	value, err := bsdf.Unmarshal(data)
//
// Use [New] for non-default options such as blob compression,
// checksums, or a custom extension set, and [Codec.NewListStream] to
// write a top-level list incrementally.
package bsdf
