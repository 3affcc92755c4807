// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/bsdf/cmd/bsdf/cli"
	"github.com/bureau-foundation/bsdf/lib/bsdf"
	"github.com/bureau-foundation/bsdf/lib/fingerprint"
)

type validateParams struct {
	inputParams
	configParams
}

func validateCommand() *cli.Command {
	var params validateParams

	return &cli.Command{
		Name:    "validate",
		Summary: "Check that a BSDF document is well-formed and canonical",
		Description: `Read a BSDF document, decode it, and check that it is in canonical
form. Exits 0 with "valid" if it is, exits 1 with a description of
every problem if not.

A document is canonical when re-encoding its value with default options
reproduces it byte for byte: map keys sorted, sizes in their shortest
form, blobs uncompressed, without checksums or reserved space, and no
trailing bytes. Every uncompressed blob payload must also start on an
8-byte boundary.

Documents that cannot be decoded at all (bad header, truncated records,
checksum mismatches) are reported as errors.`,
		Usage: "bsdf validate [-x] [--config file] [file]",
		Examples: []cli.Example{
			{
				Description: "Validate a document",
				Command:     "bsdf validate data.bsdf",
			},
			{
				Description: "Validate a freshly encoded document",
				Command:     "echo '{\"b\": 1, \"a\": 2}' | bsdf encode | bsdf validate",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			data, remainingArgs, err := readInput(args, os.Stdin, params.HexInput)
			if err != nil {
				return err
			}
			if err := requireNoArgs("validate", remainingArgs); err != nil {
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
			return validateDocument(data, os.Stdout, decoder)
		},
	}
}

// validateDocument writes "valid" to w and returns nil for a canonical
// document. Otherwise it describes each problem on w and returns an
// [cli.ExitError] with code 1.
func validateDocument(data []byte, w io.Writer, decoder *bsdf.Codec) error {
	if err := requireData(data); err != nil {
		return err
	}
	if _, err := decoder.Decode(data); err != nil {
		return invalidDocument(err)
	}

	inspection, err := bsdf.Inspect(data)
	if err != nil {
		return invalidDocument(err)
	}

	problems := 0
	for _, record := range inspection.Records {
		if record.Blob != nil && !record.Blob.Aligned() {
			fmt.Fprintf(w, "blob at byte %d: payload at byte %d is not 8-byte aligned\n",
				record.Offset, record.Blob.PayloadOffset)
			problems++
		}
	}

	canonical, err := fingerprint.Canonicalize(data)
	if err != nil {
		return invalidDocument(err)
	}
	if !bytes.Equal(data, canonical) {
		fmt.Fprintf(w, "not canonical: first difference at byte %d (document %d bytes, canonical %d bytes)\n",
			firstDifference(data, canonical), len(data), len(canonical))
		problems++
	}

	if problems > 0 {
		return &cli.ExitError{Code: 1}
	}
	fmt.Fprintln(w, "valid")
	return nil
}

// firstDifference returns the offset of the first byte at which a and
// b differ, or the shorter length when one is a prefix of the other.
func firstDifference(a, b []byte) int {
	offset := 0
	for offset < len(a) && offset < len(b) && a[offset] == b[offset] {
		offset++
	}
	return offset
}
