// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// cborEncMode writes CBOR with Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Transcoding one BSDF document twice yields
// identical bytes.
var cborEncMode cbor.EncMode

// cborDecMode reads arbitrary CBOR. It keeps the library's default map
// type (map[any]any) so maps with integer keys decode; normalize then
// turns every key into a string, since BSDF maps are string-keyed.
var cborDecMode cbor.DecMode

func init() {
	var err error

	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	cborDecMode, err = cbor.DecOptions{
		// BSDF has a single 64-bit signed integer kind, so positive
		// integers decode as int64 too. Values above MaxInt64 fail
		// here rather than in the BSDF encoder.
		IntDec: cbor.IntDecConvertSigned,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

func marshalCBOR(v any) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

func unmarshalCBOR(data []byte) (any, error) {
	var value any
	if err := cborDecMode.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// DiagnoseCBOR returns the CBOR diagnostic notation (RFC 8949 §8) for
// data. [Write] uses it for CBOR output with Diagnose set.
func DiagnoseCBOR(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
