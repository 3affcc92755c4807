// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/bsdf/cmd/bsdf/cli"
	"github.com/bureau-foundation/bsdf/lib/bsdf"
	"github.com/bureau-foundation/bsdf/lib/codec"
	"github.com/bureau-foundation/bsdf/lib/config"
)

type encodeParams struct {
	configParams
	From        string `json:"from"        flag:"from"        desc:"input format: json, yaml or cbor" default:"json"`
	Compression string `json:"compression" flag:"compression" desc:"blob compression: none or zlib (default: encode.compression from config)"`
	Checksum    bool   `json:"checksum"    flag:"checksum"    desc:"store an md5 checksum with every blob"`
	Float32     bool   `json:"float32"     flag:"float32"     desc:"write non-integral floats in single precision"`
}

func encodeCommand() *cli.Command {
	var params encodeParams

	return &cli.Command{
		Name:    "encode",
		Summary: "Convert JSON, YAML or CBOR to BSDF",
		Description: `Read JSON (comments and trailing commas allowed), YAML or CBOR and
write the equivalent BSDF document to stdout.

Integers become int16 or int64 records, other numbers float64 (or
float32 with --float32). The single-key maps "bsdf decode" produces
({"$bytes": ...}, {"$complex": ...}, {"$ndarray": ...}) become blobs,
complex numbers and typed arrays again, so decode and encode round-trip.
Map keys are written in sorted order, so equal input always produces
identical bytes.`,
		Usage: "bsdf encode [--from json|yaml|cbor] [--compression none|zlib] [--checksum] [--float32] [--config file] [file]",
		Examples: []cli.Example{
			{
				Description: "Encode JSON to BSDF",
				Command:     "echo '{\"count\": 42}' | bsdf encode > data.bsdf",
			},
			{
				Description: "Encode YAML with compressed, checksummed blobs",
				Command:     "bsdf encode --from yaml --compression zlib --checksum input.yaml > data.bsdf",
			},
			{
				Description: "Round-trip: encode then decode",
				Command:     "echo '[1, 2.5, \"three\"]' | bsdf encode | bsdf decode -c",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			data, remainingArgs, err := readInput(args, os.Stdin, false)
			if err != nil {
				return err
			}
			if err := requireNoArgs("encode", remainingArgs); err != nil {
				return err
			}

			from, err := codec.ParseFormat(params.From)
			if err != nil {
				return cli.Validation("--from: %w", err)
			}
			cfg, err := loadConfig(params.configParams)
			if err != nil {
				return err
			}
			if err := applyEncodeFlags(cfg, params); err != nil {
				return err
			}
			encoder, err := newCodec(cfg, logger)
			if err != nil {
				return err
			}
			return encodeDocument(data, os.Stdout, encoder, from)
		},
	}
}

// applyEncodeFlags overrides the encode section of the config with the
// flags given on the command line.
func applyEncodeFlags(cfg *config.Config, params encodeParams) error {
	if params.Compression != "" {
		cfg.Encode.Compression = params.Compression
	}
	cfg.Encode.Checksum = cfg.Encode.Checksum || params.Checksum
	cfg.Encode.Float32 = cfg.Encode.Float32 || params.Float32
	if err := cfg.Validate(); err != nil {
		return cli.Validation("%w", err)
	}
	return nil
}

// encodeDocument parses data in the given format and writes it to w as
// a BSDF document.
func encodeDocument(data []byte, w io.Writer, encoder *bsdf.Codec, from codec.Format) error {
	value, err := codec.Parse(data, from)
	if err != nil {
		return cli.Validation("%w", err)
	}

	if err := encoder.EncodeTo(w, value); err != nil {
		return cli.Internal("encode BSDF: %w", err)
	}
	return nil
}
