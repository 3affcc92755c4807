// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"context"
	"log/slog"
	"os"

	"github.com/bureau-foundation/bsdf/cmd/bsdf/cli"
)

// rootParams holds the flags of the bare "bsdf" command. Without
// arguments it decodes; otherwise the arguments are a jq filter.
type rootParams struct {
	inputParams
	configParams
	Compact   bool `json:"compact"    flag:"compact,c"    desc:"compact output (no indentation)"`
	RawOutput bool `json:"raw_output" flag:"raw-output,r" desc:"raw string output (passed to jq)"`
}

// Command returns the "bsdf" command with the document subcommands.
// When the first argument is not a subcommand, it is a jq filter.
func Command() *cli.Command {
	var params rootParams

	return &cli.Command{
		Name: "bsdf",
		Description: `Inspect, produce, and filter BSDF documents.

BSDF (Binary Structured Data Format) is a compact self-describing binary
format for structured and scientific data: nulls, booleans, integers,
floats, strings, lists, maps and binary blobs, plus extension values
such as complex numbers and typed arrays.

With no arguments, decodes BSDF on stdin to JSON on stdout (equivalent
to "bsdf decode").

When the first argument is not a subcommand name, it is treated as a jq
filter expression: the document is decoded to JSON internally and piped
through jq. The -c and -r flags are passed to jq.

All subcommands accept an optional trailing file path argument. When
provided, input is read from the file instead of stdin. With --hex,
input is hex text rather than raw binary; whitespace is ignored.`,
		Subcommands: []*cli.Command{
			decodeCommand(),
			encodeCommand(),
			diagCommand(),
			validateCommand(),
			sumCommand(),
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			data, remainingArgs, err := readInput(args, os.Stdin, params.HexInput)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(params.configParams)
			if err != nil {
				return err
			}
			decoder, err := newCodec(cfg, logger)
			if err != nil {
				return err
			}

			if len(remainingArgs) == 0 {
				format, options, err := outputSettings(cfg, "", params.Compact)
				if err != nil {
					return err
				}
				return decodeDocument(data, os.Stdout, decoder, format, forTerminal(os.Stdout, format, options))
			}

			var jqArgs []string
			if params.Compact {
				jqArgs = append(jqArgs, "-c")
			}
			if params.RawOutput {
				jqArgs = append(jqArgs, "-r")
			}
			jqArgs = append(jqArgs, remainingArgs...)

			return filterDocument(ctx, data, decoder, jqArgs, os.Stdout, os.Stderr)
		},
		Examples: []cli.Example{
			{
				Description: "Decode BSDF to pretty JSON",
				Command:     "bsdf < data.bsdf",
			},
			{
				Description: "Extract a field with jq",
				Command:     "bsdf '.name' data.bsdf",
			},
			{
				Description: "Raw string output from a jq filter",
				Command:     "bsdf -r '.items[0].label' data.bsdf",
			},
			{
				Description: "Encode JSON to BSDF",
				Command:     "echo '{\"count\": 42}' | bsdf encode > data.bsdf",
			},
			{
				Description: "Inspect the wire layout",
				Command:     "bsdf diag data.bsdf",
			},
		},
	}
}
