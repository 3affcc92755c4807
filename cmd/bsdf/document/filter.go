// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"

	"github.com/bureau-foundation/bsdf/cmd/bsdf/cli"
	"github.com/bureau-foundation/bsdf/lib/bsdf"
	"github.com/bureau-foundation/bsdf/lib/codec"
)

// filterDocument decodes a BSDF document, converts it to JSON, and
// pipes it through jq. jqArgs holds the filter expression followed by
// any jq flags the caller forwards.
func filterDocument(ctx context.Context, data []byte, decoder *bsdf.Codec, jqArgs []string, stdout, stderr io.Writer) error {
	if err := requireData(data); err != nil {
		return err
	}

	value, err := decoder.Decode(data)
	if err != nil {
		return invalidDocument(err)
	}

	var jsonData bytes.Buffer
	if err := codec.Write(&jsonData, value, codec.FormatJSON, codec.WriteOptions{Compact: true}); err != nil {
		return cli.Internal("encode JSON for jq: %w", err)
	}

	return runJQ(ctx, jsonData.Bytes(), jqArgs, stdout, stderr)
}

// runJQ executes jq with the given arguments, feeding jsonData to its
// stdin. jq's exit status becomes the command's, so "jq -e" works in
// pipelines.
func runJQ(ctx context.Context, jsonData []byte, jqArgs []string, stdout, stderr io.Writer) error {
	jqPath, err := exec.LookPath("jq")
	if err != nil {
		return cli.NotFound("jq not found in PATH").
			WithHint("Install jq, or use \"bsdf decode\" for plain JSON output.")
	}

	command := exec.CommandContext(ctx, jqPath, jqArgs...)
	command.Stdin = bytes.NewReader(jsonData)
	command.Stdout = stdout
	command.Stderr = stderr

	if err := command.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &cli.ExitError{Code: exitErr.ExitCode()}
		}
		return cli.Internal("run jq: %w", err)
	}
	return nil
}
