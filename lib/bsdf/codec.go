// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

import (
	"fmt"
	"io"
	"log/slog"
)

// Options configures a Codec. The zero value encodes without
// compression or checksums, writes 64-bit floats, rejects compressed
// blobs on decode, and registers the standard extensions.
type Options struct {
	// Compression is applied to every blob written. Only
	// CompressionNone and CompressionZlib can be written.
	Compression Compression

	// Checksum stores an md5 digest with every blob written.
	Checksum bool

	// Float32 writes non-integral float64 values as 32-bit floats.
	Float32 bool

	// Decompress allows reading zlib and bz2 blobs. Without it, any
	// compressed blob fails with UnsupportedCompressionError.
	Decompress bool

	// VerifyChecksum checks stored blob checksums on decode. Without
	// it, checksums are skipped.
	VerifyChecksum bool

	// MaxDepth bounds nesting on encode and decode. Zero means
	// DefaultMaxDepth.
	MaxDepth int

	// Extensions replaces the standard extensions when non-nil. Pass
	// an empty, non-nil slice to register none.
	Extensions []*Extension

	// Logger receives warnings about newer minor versions, unknown
	// extensions and replaced extensions. Nil means slog.Default().
	Logger *slog.Logger
}

// Codec encodes values to BSDF and decodes them back. A Codec holds
// options and an extension registry; every Encode and Decode call uses
// its own buffers, so concurrent calls are safe as long as the
// registry is not modified meanwhile.
type Codec struct {
	options  Options
	registry *Registry
}

// logger returns the configured logger, resolving slog.Default() at
// call time so the package-level codec follows slog.SetDefault.
func (c *Codec) logger() *slog.Logger {
	if c.options.Logger != nil {
		return c.options.Logger
	}
	return slog.Default()
}

// New returns a Codec configured by options.
func New(options Options) (*Codec, error) {
	switch options.Compression {
	case CompressionNone, CompressionZlib:
	default:
		return nil, fmt.Errorf("bsdf: cannot write %s compression", options.Compression)
	}
	if options.MaxDepth < 0 {
		return nil, fmt.Errorf("bsdf: negative MaxDepth %d", options.MaxDepth)
	}
	if options.MaxDepth == 0 {
		options.MaxDepth = DefaultMaxDepth
	}

	extensions := options.Extensions
	if extensions == nil {
		extensions = StandardExtensions()
	}
	registry := NewRegistry(options.Logger)
	for _, extension := range extensions {
		if err := registry.Register(extension); err != nil {
			return nil, err
		}
	}

	return &Codec{
		options:  options,
		registry: registry,
	}, nil
}

// Register adds or replaces an extension. See [Registry.Register].
func (c *Codec) Register(extension *Extension) error {
	return c.registry.Register(extension)
}

// Unregister removes the named extension.
func (c *Codec) Unregister(name string) {
	c.registry.Unregister(name)
}

// Registry returns the codec's extension registry.
func (c *Codec) Registry() *Registry {
	return c.registry
}

// Options returns the options the codec was built with, with defaults
// filled in.
func (c *Codec) Options() Options {
	return c.options
}

// Encode returns the BSDF encoding of v, header included.
func (c *Codec) Encode(v any) ([]byte, error) {
	writer := NewWriter()
	writeHeader(writer)
	state := c.newEncodeState(writer)
	if err := state.encode(v, ""); err != nil {
		return nil, err
	}
	return writer.Bytes(), nil
}

// EncodeTo writes the BSDF encoding of v to w. Nothing is written if
// encoding fails.
func (c *Codec) EncodeTo(w io.Writer, v any) error {
	data, err := c.Encode(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Decode parses a complete BSDF stream. Blob values in the result
// alias data unless they were compressed.
func (c *Codec) Decode(data []byte) (any, error) {
	reader := NewReader(data)
	if err := c.readHeader(reader); err != nil {
		return nil, err
	}
	state := c.newDecodeState(reader)
	return state.decode()
}

// DecodeFrom reads r to the end and decodes the result.
func (c *Codec) DecodeFrom(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("bsdf: read input: %w", err)
	}
	return c.Decode(data)
}

func writeHeader(writer *Writer) {
	writer.WriteBytes([]byte(magic))
	writer.WriteUint8(VersionMajor)
	writer.WriteUint8(VersionMinor)
}

// readHeader validates the magic and version bytes.
func (c *Codec) readHeader(reader *Reader) error {
	major, minor, err := readVersion(reader)
	if err != nil {
		return err
	}
	if minor > VersionMinor {
		c.logger().Warn("reading BSDF stream with a newer minor version",
			"stream_version", fmt.Sprintf("%d.%d", major, minor),
			"implementation_version", fmt.Sprintf("%d.%d", VersionMajor, VersionMinor),
		)
	}
	return nil
}

// readVersion reads the header and rejects streams with a foreign
// signature or another major version.
func readVersion(reader *Reader) (major, minor uint8, err error) {
	signature, err := reader.ReadBytes(len(magic))
	if err != nil || string(signature) != magic {
		return 0, 0, &FormatError{Offset: 0, Reason: "missing BSDF signature"}
	}
	if major, err = reader.ReadUint8(); err != nil {
		return 0, 0, err
	}
	if minor, err = reader.ReadUint8(); err != nil {
		return 0, 0, err
	}
	if major != VersionMajor {
		return 0, 0, &FormatError{
			Offset: 4,
			Reason: fmt.Sprintf("stream major version %d.%d is incompatible with implementation version %d.%d",
				major, minor, VersionMajor, VersionMinor),
		}
	}
	return major, minor, nil
}

// defaultCodec backs the package-level Marshal and Unmarshal.
var defaultCodec *Codec

func init() {
	var err error
	defaultCodec, err = New(Options{})
	if err != nil {
		panic("bsdf: default codec initialization failed: " + err.Error())
	}
}

// Marshal encodes v with the standard extensions and default options.
func Marshal(v any) ([]byte, error) {
	return defaultCodec.Encode(v)
}

// Unmarshal decodes data with the standard extensions and default
// options.
func Unmarshal(data []byte) (any, error) {
	return defaultCodec.Decode(data)
}
