// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

import (
	"errors"
	"fmt"
)

// FormatError reports malformed input: a bad header, an unsupported
// major version, an unknown type tag, a truncated buffer, or a blob
// whose checksum or decompressed size does not match.
type FormatError struct {
	// Offset is the byte position in the stream where the problem was
	// detected.
	Offset int64

	// Reason describes the problem.
	Reason string

	// Err is an optional underlying cause.
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bsdf: format error at byte %d: %s: %v", e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("bsdf: format error at byte %d: %s", e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// EncodeError reports a value the encoder cannot represent.
type EncodeError struct {
	// Type is the Go type of the offending value.
	Type string

	// Reason describes why the value was rejected.
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("bsdf: cannot encode %s: %s", e.Type, e.Reason)
}

// ExtensionProtocolError reports an extension whose Encode returned a
// value that itself needs an extension. Extensions must encode to
// plain values; those may contain further extension values, but the
// top level may not be one.
type ExtensionProtocolError struct {
	// Extension is the name of the misbehaving extension.
	Extension string

	// Type is the Go type the extension produced.
	Type string
}

func (e *ExtensionProtocolError) Error() string {
	return fmt.Sprintf("bsdf: extension %q encodes to another extension value (%s); "+
		"it may encode to a list or map containing extension values, but not to one directly",
		e.Extension, e.Type)
}

// UnsupportedCompressionError reports a blob stored with a compression
// method this codec is not configured to read.
type UnsupportedCompressionError struct {
	Method Compression
}

func (e *UnsupportedCompressionError) Error() string {
	return fmt.Sprintf("bsdf: unsupported blob compression %s", e.Method)
}

// ErrChecksumMismatch is wrapped in the FormatError returned when a
// blob's stored checksum does not match its payload.
var ErrChecksumMismatch = errors.New("blob checksum mismatch")
