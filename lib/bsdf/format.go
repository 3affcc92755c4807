// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

import "fmt"

// Wire format version implemented by this package. Streams with a
// different major version are rejected; streams with a newer minor
// version are read with a warning.
const (
	VersionMajor = 2
	VersionMinor = 2
)

// magic is the four-byte signature at the start of every BSDF stream.
const magic = "BSDF"

// headerSize is the length of magic plus the two version bytes.
const headerSize = 6

// Type tags. Lowercase tags are plain values; the uppercase form of a
// tag marks a value produced by an extension and is followed by the
// extension name.
const (
	tagNull    = 'v'
	tagFalse   = 'n'
	tagTrue    = 'y'
	tagInt16   = 'h'
	tagInt64   = 'i'
	tagFloat32 = 'f'
	tagFloat64 = 'd'
	tagString  = 's'
	tagList    = 'l'
	tagMap     = 'm'
	tagBlob    = 'b'
)

// tagEndOfData is read past the last record of an unclosed list
// stream by readers that pad with zeros.
const tagEndOfData = 0x00

// Size markers. Writers use a single size byte up to maxShortSize;
// readers take any leading byte below sizeMarkerWide as the size
// itself. The markers below are followed by a little-endian uint64.
const (
	maxShortSize      = 250
	sizeMarkerWide    = 253
	sizeMarkerClosed  = 254
	sizeMarkerUnknown = 255
)

// SizeUnknown is returned by [Reader.ReadSize] for a list stream that
// was never closed: the element count is not recorded and the list
// ends at the end of the data.
const SizeUnknown = -1

// maxExtensionName bounds extension names so they always fit the
// single-byte size form.
const maxExtensionName = 250

// DefaultMaxDepth is the nesting limit used when Options.MaxDepth is
// zero.
const DefaultMaxDepth = 512

// Compression identifies how a blob payload is stored. Values are
// protocol constants shared with every BSDF implementation.
type Compression uint8

const (
	// CompressionNone stores the payload as-is, 8-byte aligned.
	CompressionNone Compression = 0

	// CompressionZlib stores a zlib stream (RFC 1950).
	CompressionZlib Compression = 1

	// CompressionBZ2 stores a bzip2 stream. Readable only.
	CompressionBZ2 Compression = 2
)

// String returns the name used in configuration files and flags.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionBZ2:
		return "bz2"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name. The empty string and
// "no" are accepted as aliases for "none".
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none", "no":
		return CompressionNone, nil
	case "zlib":
		return CompressionZlib, nil
	case "bz2":
		return CompressionBZ2, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, zlib or bz2)", name)
	}
}

func isUpper(tag byte) bool { return tag >= 'A' && tag <= 'Z' }

func toLower(tag byte) byte {
	if isUpper(tag) {
		return tag + ('a' - 'A')
	}
	return tag
}

func toUpper(tag byte) byte {
	if tag >= 'a' && tag <= 'z' {
		return tag - ('a' - 'A')
	}
	return tag
}
