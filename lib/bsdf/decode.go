// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

import (
	"bytes"
	"fmt"
)

// decodeState carries one Decode call.
type decodeState struct {
	codec  *Codec
	reader *Reader
	depth  int
}

func (c *Codec) newDecodeState(reader *Reader) *decodeState {
	return &decodeState{codec: c, reader: reader}
}

// decode reads exactly one record. Running out of data is an error
// here; only a streaming list may end that way.
func (d *decodeState) decode() (any, error) {
	start := d.reader.Tell()
	value, ok, err := d.tryDecodeNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &FormatError{Offset: start, Reason: "unexpected end of data"}
	}
	return value, nil
}

// tryDecodeNext reads the next record. ok is false when no bytes remain
// or the next tag byte is 0x00, the end-of-data marker.
func (d *decodeState) tryDecodeNext() (value any, ok bool, err error) {
	if d.reader.AtEnd() {
		return nil, false, nil
	}
	start := d.reader.Tell()
	tag, err := d.reader.ReadChar()
	if err != nil {
		return nil, false, err
	}
	if tag == tagEndOfData {
		return nil, false, nil
	}

	d.depth++
	defer func() { d.depth-- }()
	if d.depth > d.codec.options.MaxDepth {
		return nil, false, &FormatError{
			Offset: start,
			Reason: fmt.Sprintf("nesting exceeds the maximum depth of %d", d.codec.options.MaxDepth),
		}
	}

	var extension string
	isExtension := isUpper(tag)
	if isExtension {
		extension, err = d.reader.ReadString()
		if err != nil {
			return nil, false, err
		}
		tag = toLower(tag)
	}

	value, err = d.decodeRecord(tag, start)
	if err != nil {
		return nil, false, err
	}

	if isExtension {
		value, err = d.applyExtension(extension, value)
		if err != nil {
			return nil, false, err
		}
	}
	return value, true, nil
}

// decodeRecord reads the body of a record whose lowercase tag has
// already been consumed.
func (d *decodeState) decodeRecord(tag byte, start int64) (any, error) {
	switch tag {
	case tagNull:
		return nil, nil
	case tagFalse:
		return false, nil
	case tagTrue:
		return true, nil
	case tagInt16:
		n, err := d.reader.ReadInt16()
		return int64(n), err
	case tagInt64:
		return d.reader.ReadInt64()
	case tagFloat32:
		return d.reader.ReadFloat32()
	case tagFloat64:
		return d.reader.ReadFloat64()
	case tagString:
		return d.reader.ReadString()
	case tagList:
		return d.decodeList()
	case tagMap:
		return d.decodeMap()
	case tagBlob:
		return d.decodeBlob(start)
	default:
		return nil, &FormatError{Offset: start, Reason: fmt.Sprintf("invalid type tag 0x%02x", tag)}
	}
}

func (d *decodeState) decodeList() ([]any, error) {
	start := d.reader.Tell()
	size, err := d.reader.ReadSize()
	if err != nil {
		return nil, err
	}

	if size == SizeUnknown {
		// Open stream: elements run until end-of-data.
		items := []any{}
		for {
			item, ok, err := d.tryDecodeNext()
			if err != nil {
				return nil, err
			}
			if !ok {
				return items, nil
			}
			items = append(items, item)
		}
	}

	// Every element takes at least one byte, which bounds the
	// preallocation for hostile sizes.
	if size > int64(d.reader.Remaining()) {
		return nil, &FormatError{
			Offset: start,
			Reason: fmt.Sprintf("list of %d elements exceeds the %d bytes available", size, d.reader.Remaining()),
		}
	}
	items := make([]any, size)
	for i := range items {
		items[i], err = d.decode()
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (d *decodeState) decodeMap() (map[string]any, error) {
	start := d.reader.Tell()
	size, err := d.reader.ReadSize()
	if err != nil {
		return nil, err
	}
	if size < 0 || size > int64(d.reader.Remaining()) {
		return nil, &FormatError{
			Offset: start,
			Reason: fmt.Sprintf("map of %d entries exceeds the %d bytes available", size, d.reader.Remaining()),
		}
	}

	entries := make(map[string]any, size)
	for range size {
		key, err := d.reader.ReadString()
		if err != nil {
			return nil, err
		}
		entries[key], err = d.decode()
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// decodeBlob reads a blob record. Uncompressed payloads are returned as
// a view into the input.
func (d *decodeState) decodeBlob(start int64) ([]byte, error) {
	layout, checksum, err := readBlobLayout(d.reader, start)
	if err != nil {
		return nil, err
	}
	usedSize, dataSize, compression := layout.Used, layout.DataSize, layout.Compression

	stored, err := d.reader.ReadBytes(int(usedSize))
	if err != nil {
		return nil, err
	}
	if err := d.reader.Skip(int(layout.Allocated - usedSize)); err != nil {
		return nil, err
	}

	if checksum != nil && d.codec.options.VerifyChecksum {
		digest := blobChecksum(stored)
		if !bytes.Equal(digest[:], checksum) {
			return nil, &FormatError{Offset: start, Reason: "blob checksum does not match", Err: ErrChecksumMismatch}
		}
	}

	// The data size of an uncompressed blob is informational; the
	// payload is the used bytes.
	if compression == CompressionNone {
		return stored, nil
	}
	if !d.codec.options.Decompress {
		return nil, &UnsupportedCompressionError{Method: compression}
	}
	payload, err := decompressBlob(stored, compression, dataSize)
	if err != nil {
		if _, unsupported := err.(*UnsupportedCompressionError); unsupported {
			return nil, err
		}
		return nil, &FormatError{Offset: start, Reason: "blob decompression failed", Err: err}
	}
	return payload, nil
}

// applyExtension converts a decoded plain value through the named
// extension. Unknown names pass the plain value through.
func (d *decodeState) applyExtension(name string, value any) (any, error) {
	extension, ok := d.codec.registry.Lookup(name)
	if !ok {
		d.codec.logger().Warn("no BSDF extension registered; passing value through undecoded",
			"extension", name)
		return value, nil
	}
	converted, err := extension.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("bsdf: extension %q decode: %w", name, err)
	}
	return converted, nil
}
