// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fingerprint

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/bsdf/lib/bsdf"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing.
type domainKey [32]byte

// documentDomainKey separates document fingerprints from any other
// BLAKE3 hash of the same bytes. Changing it invalidates every
// recorded fingerprint. The bytes are the ASCII domain name,
// zero-padded to 32 bytes.
var documentDomainKey = domainKey{
	'b', 's', 'd', 'f', '.', 'd', 'o', 'c', 'u', 'm', 'e', 'n', 't', 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// canonicalCodec reads any document it can (compressed blobs
// included) and writes with default options: no compression, no
// checksums, 64-bit floats, sorted map keys.
var canonicalCodec *bsdf.Codec

func init() {
	var err error
	canonicalCodec, err = bsdf.New(bsdf.Options{Decompress: true})
	if err != nil {
		panic("fingerprint: canonical codec initialization failed: " + err.Error())
	}
}

// Canonicalize decodes a document and re-encodes it with default
// options. Two documents holding the same values canonicalize to the
// same bytes regardless of compression, checksums, reserved blob space
// or size encoding. Values tagged with an unregistered extension lose
// their tag.
func Canonicalize(data []byte) ([]byte, error) {
	value, err := canonicalCodec.Decode(data)
	if err != nil {
		return nil, err
	}
	return canonicalCodec.Encode(value)
}

// Document returns the fingerprint of a BSDF document: the keyed hash
// of its canonical encoding.
func Document(data []byte) (Hash, error) {
	canonical, err := Canonicalize(data)
	if err != nil {
		return Hash{}, err
	}
	return Canonical(canonical), nil
}

// Value returns the fingerprint of a value, equal to the fingerprint
// of any document that decodes to it.
func Value(v any) (Hash, error) {
	canonical, err := canonicalCodec.Encode(v)
	if err != nil {
		return Hash{}, err
	}
	return Canonical(canonical), nil
}

// Canonical hashes bytes that are already a canonical encoding.
func Canonical(canonical []byte) Hash {
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(documentDomainKey[:])
	if err != nil {
		panic("fingerprint: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(canonical)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// String returns the hex encoding of the hash, the form used in CLI
// output.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns "bsdf-" followed by the first 12 hex characters, for
// display where the full hash is too long.
func (h Hash) Short() string {
	return "bsdf-" + hex.EncodeToString(h[:6])
}

// Parse parses a 64-character hex string into a Hash.
func Parse(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing fingerprint: %w", err)
	}
	if len(decoded) != len(hash) {
		return hash, fmt.Errorf("fingerprint is %d bytes, want %d", len(decoded), len(hash))
	}
	copy(hash[:], decoded)
	return hash, nil
}
