// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

import "fmt"

// Inspection is the wire layout of a document, as reported by
// [Inspect].
type Inspection struct {
	// VersionMajor and VersionMinor are the header's format version.
	VersionMajor, VersionMinor int

	// Records lists every record in document order. Children follow
	// their list or map with Depth one greater.
	Records []Record

	// Trailing counts the bytes after the top-level record, which
	// decoders ignore.
	Trailing int
}

// Record describes one encoded value without interpreting extensions.
type Record struct {
	// Offset is the position of the type tag.
	Offset int64

	// Depth is 0 for the top-level record.
	Depth int

	// Key is the map key the record is stored under; InMap reports
	// whether there is one.
	Key   string
	InMap bool

	// Tag is the lowercase type tag.
	Tag byte

	// Extension is the extension name of an uppercase tag.
	Extension string

	// Count is the element count of a list or map and the byte length
	// of a string. Open list streams report [SizeUnknown].
	Count int64

	// Stream reports how a list's size was written.
	Stream StreamState

	// Scalar holds the value of null, bool, number and string records.
	Scalar any

	// Blob is the layout of a blob record, nil otherwise.
	Blob *BlobLayout
}

// StreamState tells ordinary lists from list streams.
type StreamState uint8

const (
	// StreamNone is an ordinary list.
	StreamNone StreamState = iota

	// StreamClosed is a list stream whose count was recorded on close.
	StreamClosed

	// StreamOpen is a list stream that was never closed.
	StreamOpen
)

func (s StreamState) String() string {
	switch s {
	case StreamClosed:
		return "closed stream"
	case StreamOpen:
		return "open stream"
	default:
		return "list"
	}
}

// BlobLayout is the header of a blob record.
type BlobLayout struct {
	// Allocated is the reserved space, Used the bytes actually stored
	// and DataSize the payload size after decompression.
	Allocated, Used, DataSize int64

	Compression Compression

	// Checksum reports whether an md5 digest of the stored bytes is
	// present.
	Checksum bool

	// Padding is the number of zero bytes before the payload.
	Padding int

	// PayloadOffset is the position of the first stored byte.
	PayloadOffset int64
}

// Aligned reports whether an uncompressed payload starts on an 8-byte
// boundary. Compressed payloads are never padded and always count as
// aligned.
func (b BlobLayout) Aligned() bool {
	return b.Compression != CompressionNone || b.PayloadOffset%8 == 0
}

// Inspect walks a document's records without decoding them into
// values. On malformed input it returns the records read so far along
// with the error, so tools can show where a document goes wrong.
func Inspect(data []byte) (*Inspection, error) {
	reader := NewReader(data)
	inspection := &Inspection{}

	major, minor, err := readVersion(reader)
	if err != nil {
		return inspection, err
	}
	inspection.VersionMajor, inspection.VersionMinor = int(major), int(minor)

	walker := &inspector{reader: reader, inspection: inspection}
	start := reader.Tell()
	ok, err := walker.record(0, "", false)
	if err != nil {
		return inspection, err
	}
	if !ok {
		return inspection, &FormatError{Offset: start, Reason: "unexpected end of data"}
	}
	inspection.Trailing = reader.Remaining()
	return inspection, nil
}

type inspector struct {
	reader     *Reader
	inspection *Inspection
}

// record reads one record and its children. ok is false at the end of
// the data or at an end-of-data tag.
func (in *inspector) record(depth int, key string, inMap bool) (ok bool, err error) {
	if in.reader.AtEnd() {
		return false, nil
	}
	start := in.reader.Tell()
	tag, err := in.reader.ReadChar()
	if err != nil {
		return false, err
	}
	if tag == tagEndOfData {
		return false, nil
	}
	if depth >= DefaultMaxDepth {
		return false, &FormatError{
			Offset: start,
			Reason: fmt.Sprintf("nesting exceeds the maximum depth of %d", DefaultMaxDepth),
		}
	}

	current := Record{Offset: start, Depth: depth, Key: key, InMap: inMap, Tag: tag}
	if isUpper(tag) {
		current.Extension, err = in.reader.ReadString()
		if err != nil {
			return false, err
		}
		current.Tag = toLower(tag)
	}

	switch current.Tag {
	case tagNull:
	case tagFalse:
		current.Scalar = false
	case tagTrue:
		current.Scalar = true
	case tagInt16:
		n, err := in.reader.ReadInt16()
		if err != nil {
			return false, err
		}
		current.Scalar = int64(n)
	case tagInt64:
		current.Scalar, err = in.reader.ReadInt64()
	case tagFloat32:
		current.Scalar, err = in.reader.ReadFloat32()
	case tagFloat64:
		current.Scalar, err = in.reader.ReadFloat64()
	case tagString:
		var s string
		s, err = in.reader.ReadString()
		current.Scalar, current.Count = s, int64(len(s))
	case tagList:
		return true, in.list(current)
	case tagMap:
		return true, in.mapRecord(current)
	case tagBlob:
		var layout BlobLayout
		layout, _, err = readBlobLayout(in.reader, start)
		if err == nil {
			current.Blob = &layout
			err = in.reader.Skip(int(layout.Allocated))
		}
	default:
		return false, &FormatError{Offset: start, Reason: fmt.Sprintf("invalid type tag 0x%02x", tag)}
	}
	if err != nil {
		return false, err
	}
	in.inspection.Records = append(in.inspection.Records, current)
	return true, nil
}

func (in *inspector) list(current Record) error {
	if marker, ok := in.reader.peek(); ok {
		switch marker {
		case sizeMarkerClosed:
			current.Stream = StreamClosed
		case sizeMarkerUnknown:
			current.Stream = StreamOpen
		}
	}
	sizeOffset := in.reader.Tell()
	size, err := in.reader.ReadSize()
	if err != nil {
		return err
	}
	current.Count = size
	in.inspection.Records = append(in.inspection.Records, current)

	if size == SizeUnknown {
		for {
			ok, err := in.record(current.Depth+1, "", false)
			if err != nil || !ok {
				return err
			}
		}
	}
	if size > int64(in.reader.Remaining()) {
		return &FormatError{
			Offset: sizeOffset,
			Reason: fmt.Sprintf("list of %d elements exceeds the %d bytes available", size, in.reader.Remaining()),
		}
	}
	for range size {
		elementOffset := in.reader.Tell()
		ok, err := in.record(current.Depth+1, "", false)
		if err != nil {
			return err
		}
		if !ok {
			return &FormatError{Offset: elementOffset, Reason: "unexpected end of data"}
		}
	}
	return nil
}

func (in *inspector) mapRecord(current Record) error {
	sizeOffset := in.reader.Tell()
	size, err := in.reader.ReadSize()
	if err != nil {
		return err
	}
	if size < 0 || size > int64(in.reader.Remaining()) {
		return &FormatError{
			Offset: sizeOffset,
			Reason: fmt.Sprintf("map of %d entries exceeds the %d bytes available", size, in.reader.Remaining()),
		}
	}
	current.Count = size
	in.inspection.Records = append(in.inspection.Records, current)

	for range size {
		key, err := in.reader.ReadString()
		if err != nil {
			return err
		}
		valueOffset := in.reader.Tell()
		ok, err := in.record(current.Depth+1, key, true)
		if err != nil {
			return err
		}
		if !ok {
			return &FormatError{Offset: valueOffset, Reason: "unexpected end of data"}
		}
	}
	return nil
}

// readBlobLayout reads a blob header up to the first stored byte and
// returns the stored checksum, if any.
func readBlobLayout(reader *Reader, start int64) (BlobLayout, []byte, error) {
	var layout BlobLayout
	var err error
	if layout.Allocated, err = reader.ReadSize(); err != nil {
		return layout, nil, err
	}
	if layout.Used, err = reader.ReadSize(); err != nil {
		return layout, nil, err
	}
	if layout.DataSize, err = reader.ReadSize(); err != nil {
		return layout, nil, err
	}
	if layout.Allocated < 0 || layout.Used < 0 || layout.DataSize < 0 {
		return layout, nil, &FormatError{Offset: start, Reason: "blob sizes must be known"}
	}
	if layout.Used > layout.Allocated {
		return layout, nil, &FormatError{
			Offset: start,
			Reason: fmt.Sprintf("blob used size %d exceeds allocated size %d", layout.Used, layout.Allocated),
		}
	}

	method, err := reader.ReadUint8()
	if err != nil {
		return layout, nil, err
	}
	layout.Compression = Compression(method)

	checksumFlag, err := reader.ReadUint8()
	if err != nil {
		return layout, nil, err
	}
	var checksum []byte
	if checksumFlag != 0 {
		layout.Checksum = true
		if checksum, err = reader.ReadBytes(checksumSize); err != nil {
			return layout, nil, err
		}
	}

	padding, err := reader.ReadUint8()
	if err != nil {
		return layout, nil, err
	}
	layout.Padding = int(padding)
	if err := reader.Skip(layout.Padding); err != nil {
		return layout, nil, err
	}
	layout.PayloadOffset = reader.Tell()

	if layout.Allocated > int64(reader.Remaining()) {
		return layout, nil, &FormatError{
			Offset: start,
			Reason: fmt.Sprintf("blob of %d bytes exceeds the %d bytes available", layout.Allocated, reader.Remaining()),
		}
	}
	return layout, checksum, nil
}
