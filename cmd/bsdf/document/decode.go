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
	"golang.org/x/term"
)

type decodeParams struct {
	inputParams
	configParams
	To      string `json:"to"      flag:"to"        desc:"output format: json, yaml or cbor (default: output.format from config)"`
	Compact bool   `json:"compact" flag:"compact,c" desc:"compact JSON output (no indentation)"`
}

func decodeCommand() *cli.Command {
	var params decodeParams

	return &cli.Command{
		Name:    "decode",
		Summary: "Convert BSDF to JSON, YAML or CBOR",
		Description: `Read a BSDF document and write the equivalent JSON, YAML or CBOR to
stdout.

JSON output is pretty-printed with 2-space indentation unless -c is
given. Values JSON and YAML cannot carry natively become single-key
maps: {"$bytes": base64} for blobs, {"$complex": [re, im]} for complex
numbers and {"$ndarray": {"shape", "dtype", "data"}} for typed arrays.
CBOR output keeps blobs as byte strings; on a terminal it is shown in
CBOR diagnostic notation instead. "bsdf encode" reverses every one of
these forms.

Compressed blobs are inflated and stored checksums verified unless the
config file turns that off.`,
		Usage: "bsdf decode [-c] [--to json|yaml|cbor] [-x] [--config file] [file]",
		Examples: []cli.Example{
			{
				Description: "Decode a file to pretty JSON",
				Command:     "bsdf decode data.bsdf",
			},
			{
				Description: "Decode to YAML",
				Command:     "bsdf decode --to yaml < data.bsdf",
			},
			{
				Description: "Decode hex-encoded BSDF",
				Command:     "echo '42 53 44 46 02 02 68 2a 00' | bsdf decode --hex",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			data, remainingArgs, err := readInput(args, os.Stdin, params.HexInput)
			if err != nil {
				return err
			}
			if err := requireNoArgs("decode", remainingArgs); err != nil {
				return err
			}

			cfg, err := loadConfig(params.configParams)
			if err != nil {
				return err
			}
			format, options, err := outputSettings(cfg, params.To, params.Compact)
			if err != nil {
				return err
			}
			decoder, err := newCodec(cfg, logger)
			if err != nil {
				return err
			}
			return decodeDocument(data, os.Stdout, decoder, format, forTerminal(os.Stdout, format, options))
		},
	}
}

// outputSettings combines the output section of the config with the
// command-line overrides.
func outputSettings(cfg *config.Config, to string, compact bool) (codec.Format, codec.WriteOptions, error) {
	format, err := cfg.OutputFormat()
	if to != "" {
		format, err = codec.ParseFormat(to)
	}
	if err != nil {
		return "", codec.WriteOptions{}, cli.Validation("%w", err)
	}
	return format, codec.WriteOptions{Compact: compact || cfg.Output.Compact}, nil
}

// forTerminal switches binary output to diagnostic notation when w is
// a terminal.
func forTerminal(w *os.File, format codec.Format, options codec.WriteOptions) codec.WriteOptions {
	if format.Binary() && term.IsTerminal(int(w.Fd())) {
		options.Diagnose = true
	}
	return options
}

// decodeDocument decodes a BSDF document and writes it to w in format.
func decodeDocument(data []byte, w io.Writer, decoder *bsdf.Codec, format codec.Format, options codec.WriteOptions) error {
	if err := requireData(data); err != nil {
		return err
	}

	value, err := decoder.Decode(data)
	if err != nil {
		return invalidDocument(err)
	}

	if err := codec.Write(w, value, format, options); err != nil {
		return cli.Internal("write %s: %w", format, err)
	}
	return nil
}
