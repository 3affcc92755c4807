// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

import (
	"errors"
	"fmt"
	"io"
)

// ListStream writes a top-level list one element at a time, for data
// that is produced incrementally or is too large to hold in memory.
//
// The list is written with an unknown size. Decoders read such a list
// until the input ends. Close records the final element count when the
// destination supports seeking, turning the stream into a closed one.
type ListStream struct {
	codec *Codec
	dst   io.Writer
	// start is the destination position of the header when dst is an
	// io.WriteSeeker, and 0 otherwise.
	start  int64
	offset int64
	count  uint64
	closed bool
}

// markerOffset is the position of the list's size marker relative to
// the start of the stream: after the header and the 'l' tag.
const markerOffset = headerSize + 1

// NewListStream writes the document header and an open list to w.
func (c *Codec) NewListStream(w io.Writer) (*ListStream, error) {
	var start int64
	if seeker, ok := w.(io.WriteSeeker); ok {
		position, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("bsdf: stream start position: %w", err)
		}
		start = position
	}

	writer := NewWriter()
	writeHeader(writer)
	writer.WriteChar(tagList)
	writer.writeSizeMarker(sizeMarkerUnknown, 0)
	if _, err := w.Write(writer.Bytes()); err != nil {
		return nil, fmt.Errorf("bsdf: write stream header: %w", err)
	}
	return &ListStream{
		codec:  c,
		dst:    w,
		start:  start,
		offset: int64(writer.Len()),
	}, nil
}

// Append encodes v as the next list element. Nothing is written if
// encoding fails.
func (s *ListStream) Append(v any) error {
	if s.closed {
		return errors.New("bsdf: append to closed list stream")
	}
	// Blob alignment depends on the absolute position, so the element
	// is encoded as if the buffer started at the current offset.
	writer := NewWriterAt(s.offset)
	if err := s.codec.newEncodeState(writer).encode(v, ""); err != nil {
		return err
	}
	written, err := s.dst.Write(writer.Bytes())
	s.offset += int64(written)
	if err != nil {
		return fmt.Errorf("bsdf: write stream element: %w", err)
	}
	s.count++
	return nil
}

// Len returns the number of elements appended so far.
func (s *ListStream) Len() int {
	return int(s.count)
}

// Close finishes the stream. If the destination is an io.WriteSeeker
// the size marker is rewritten with the element count and the position
// is restored to the end of the stream. Positions are relative to
// where the destination stood when the stream was created. Otherwise the list stays open.
// Close does not close the destination.
func (s *ListStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	seeker, ok := s.dst.(io.WriteSeeker)
	if !ok {
		return nil
	}
	marker := NewWriter()
	marker.writeSizeMarker(sizeMarkerClosed, s.count)
	if _, err := seeker.Seek(s.start+markerOffset, io.SeekStart); err != nil {
		return fmt.Errorf("bsdf: seek to stream size: %w", err)
	}
	if _, err := seeker.Write(marker.Bytes()); err != nil {
		return fmt.Errorf("bsdf: write stream size: %w", err)
	}
	if _, err := seeker.Seek(s.start+s.offset, io.SeekStart); err != nil {
		return fmt.Errorf("bsdf: seek to stream end: %w", err)
	}
	return nil
}
