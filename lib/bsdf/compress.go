// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

import (
	"bytes"
	"compress/bzip2"
	"crypto/md5"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// checksumSize is the length of the md5 digest stored after a blob's
// checksum flag.
const checksumSize = md5.Size

// checksumPresent is the flag byte written before a stored checksum.
const checksumPresent = 0xff

// compressBlob returns payload stored with the given method.
func compressBlob(payload []byte, method Compression) ([]byte, error) {
	switch method {
	case CompressionNone:
		return payload, nil

	case CompressionZlib:
		var buffer bytes.Buffer
		writer, err := zlib.NewWriterLevel(&buffer, zlib.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("zlib writer: %w", err)
		}
		if _, err := writer.Write(payload); err != nil {
			return nil, fmt.Errorf("zlib compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("zlib compress: %w", err)
		}
		return buffer.Bytes(), nil

	default:
		return nil, &UnsupportedCompressionError{Method: method}
	}
}

// decompressBlob inflates stored bytes and checks the result against
// the data size recorded in the blob header.
func decompressBlob(stored []byte, method Compression, dataSize int64) ([]byte, error) {
	var source io.Reader
	switch method {
	case CompressionNone:
		return stored, nil

	case CompressionZlib:
		reader, err := zlib.NewReader(bytes.NewReader(stored))
		if err != nil {
			return nil, fmt.Errorf("zlib stream: %w", err)
		}
		defer reader.Close()
		source = reader

	case CompressionBZ2:
		source = bzip2.NewReader(bytes.NewReader(stored))

	default:
		return nil, &UnsupportedCompressionError{Method: method}
	}

	// Read one byte past the declared size so an oversized stream is
	// detected without inflating it completely.
	payload, err := io.ReadAll(io.LimitReader(source, dataSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", method, err)
	}
	if int64(len(payload)) != dataSize {
		return nil, fmt.Errorf("%s decompress: got %d bytes, header declares %d", method, len(payload), dataSize)
	}
	return payload, nil
}

// blobChecksum returns the digest stored with a blob: md5 over the
// bytes as stored (after compression).
func blobChecksum(stored []byte) [checksumSize]byte {
	return md5.Sum(stored)
}
