// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec transcodes between BSDF value trees and the common
// interchange formats: JSON (and JSONC), YAML and CBOR.
//
// BSDF carries a few kinds the interchange formats lack. They travel
// as single-entry maps with reserved keys:
//
//	{"$bytes": "AQID"}                          blob, base64 (CBOR uses byte strings)
//	{"$complex": [1.5, -2]}                     complex number
//	{"$ndarray": {"shape": [2], "dtype": "float32", "data": [0.5, 1]}}
//
// [Parse] reads a document and returns a value ready for bsdf.Encode;
// [Write] takes a value from bsdf.Decode and writes it out:
//
//	value, err := codec.Parse(input, codec.FormatJSON)
//	data, err := bsdf.Marshal(value)
//
//	value, err := bsdf.Unmarshal(data)
//	err = codec.Write(os.Stdout, value, codec.FormatYAML, codec.WriteOptions{})
//
// JSON input is parsed with json.Number so integers stay integers:
// "3" becomes int64(3) and encodes as a BSDF integer, "3.5" becomes a
// float64. CBOR output uses Core Deterministic Encoding (RFC 8949
// §4.2), so the same BSDF document always produces the same bytes.
package codec
