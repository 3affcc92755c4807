// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/bsdf/cmd/bsdf/cli"
	"github.com/bureau-foundation/bsdf/lib/fingerprint"
)

type sumParams struct {
	inputParams
	Short bool   `json:"short" flag:"short" desc:"print the abbreviated bsdf-<12 hex> form"`
	Check string `json:"check" flag:"check" desc:"compare against an expected fingerprint and exit 1 on mismatch"`
}

func sumCommand() *cli.Command {
	var params sumParams

	return &cli.Command{
		Name:    "sum",
		Summary: "Print the fingerprint of a BSDF document",
		Description: `Print the BLAKE3 fingerprint of a BSDF document's canonical encoding.

Two documents holding the same value have the same fingerprint, however
they were written: compression, checksums, reserved blob space, size
encoding and map key order do not change it.

With --check, compare against an expected fingerprint instead of
printing one: exits 0 when it matches and 1 when it does not.`,
		Usage: "bsdf sum [--short] [--check fingerprint] [-x] [file]",
		Examples: []cli.Example{
			{
				Description: "Fingerprint a document",
				Command:     "bsdf sum data.bsdf",
			},
			{
				Description: "Verify a recorded fingerprint",
				Command:     "bsdf sum --check \"$(cat data.bsdf.sum)\" data.bsdf",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			data, remainingArgs, err := readInput(args, os.Stdin, params.HexInput)
			if err != nil {
				return err
			}
			if err := requireNoArgs("sum", remainingArgs); err != nil {
				return err
			}
			return sumDocument(data, os.Stdout, params)
		},
	}
}

// sumDocument writes the fingerprint of data to w, or checks it
// against params.Check.
func sumDocument(data []byte, w io.Writer, params sumParams) error {
	if err := requireData(data); err != nil {
		return err
	}

	var expected fingerprint.Hash
	if params.Check != "" {
		var err error
		expected, err = fingerprint.Parse(params.Check)
		if err != nil {
			return cli.Validation("--check: %w", err)
		}
	}

	hash, err := fingerprint.Document(data)
	if err != nil {
		return invalidDocument(err)
	}

	if params.Check != "" {
		if hash != expected {
			fmt.Fprintf(w, "mismatch: document fingerprint is %s\n", hash)
			return &cli.ExitError{Code: 1}
		}
		fmt.Fprintln(w, "ok")
		return nil
	}

	if params.Short {
		fmt.Fprintln(w, hash.Short())
	} else {
		fmt.Fprintln(w, hash)
	}
	return nil
}
