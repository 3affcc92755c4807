// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/bureau-foundation/bsdf/cmd/bsdf/cli"
	"github.com/bureau-foundation/bsdf/lib/bsdf"
)

type diagParams struct {
	inputParams
}

func diagCommand() *cli.Command {
	var params diagParams

	return &cli.Command{
		Name:    "diag",
		Summary: "List the records of a BSDF document",
		Description: `Read a BSDF document and print one line per record: its byte offset,
type tag, extension name, and sizes. Children are indented below their
list or map, prefixed with their map key.

Unlike decode, diag shows the wire representation: int16 versus int64,
float32 versus float64, list streams, and for every blob its allocated,
used and data sizes, compression, checksum and padding. A blob whose
uncompressed payload does not start on an 8-byte boundary is marked
MISALIGNED.

On malformed input, diag prints the records it could read and then the
error, so the listing ends where the document goes wrong.`,
		Usage: "bsdf diag [-x] [file]",
		Examples: []cli.Example{
			{
				Description: "Inspect a document",
				Command:     "bsdf diag data.bsdf",
			},
			{
				Description: "Inspect hex-encoded BSDF",
				Command:     "echo '42 53 44 46 02 02 6c 02 79 76' | bsdf diag --hex",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			data, remainingArgs, err := readInput(args, os.Stdin, params.HexInput)
			if err != nil {
				return err
			}
			if err := requireNoArgs("diag", remainingArgs); err != nil {
				return err
			}
			return diagDocument(data, os.Stdout)
		},
	}
}

// diagDocument writes the record listing of data to w.
func diagDocument(data []byte, w io.Writer) error {
	if err := requireData(data); err != nil {
		return err
	}

	inspection, inspectErr := bsdf.Inspect(data)
	if inspection.VersionMajor != 0 {
		fmt.Fprintf(w, "%8d  header BSDF %d.%d\n", 0, inspection.VersionMajor, inspection.VersionMinor)
	}
	for _, record := range inspection.Records {
		fmt.Fprintf(w, "%8d  %s%s\n", record.Offset, strings.Repeat("  ", record.Depth), describeRecord(record))
	}
	if inspectErr != nil {
		return invalidDocument(inspectErr)
	}
	if inspection.Trailing > 0 {
		fmt.Fprintf(w, "%8d  %d trailing bytes (ignored)\n", len(data)-inspection.Trailing, inspection.Trailing)
	}
	return nil
}

// describeRecord renders one record, e.g. `"name": s string(5) "hello"`.
func describeRecord(record bsdf.Record) string {
	var line strings.Builder
	if record.InMap {
		line.WriteString(strconv.Quote(record.Key))
		line.WriteString(": ")
	}

	if record.Extension != "" {
		fmt.Fprintf(&line, "%c(%s) ", record.Tag-'a'+'A', record.Extension)
	} else {
		fmt.Fprintf(&line, "%c ", record.Tag)
	}

	switch record.Tag {
	case 'v':
		line.WriteString("null")
	case 'n', 'y':
		fmt.Fprintf(&line, "bool %v", record.Scalar)
	case 'h':
		fmt.Fprintf(&line, "int16 %d", record.Scalar)
	case 'i':
		fmt.Fprintf(&line, "int64 %d", record.Scalar)
	case 'f':
		fmt.Fprintf(&line, "float32 %v", record.Scalar)
	case 'd':
		fmt.Fprintf(&line, "float64 %v", record.Scalar)
	case 's':
		fmt.Fprintf(&line, "string(%d) %q", record.Count, record.Scalar)
	case 'l':
		if record.Stream == bsdf.StreamOpen {
			line.WriteString("open stream")
		} else {
			fmt.Fprintf(&line, "%s(%d)", record.Stream, record.Count)
		}
	case 'm':
		fmt.Fprintf(&line, "map(%d)", record.Count)
	case 'b':
		line.WriteString(describeBlob(*record.Blob))
	}
	return line.String()
}

func describeBlob(layout bsdf.BlobLayout) string {
	description := fmt.Sprintf("blob allocated=%d used=%d data=%d compression=%s",
		layout.Allocated, layout.Used, layout.DataSize, layout.Compression)
	if layout.Checksum {
		description += " checksum=md5"
	}
	description += fmt.Sprintf(" padding=%d payload@%d", layout.Padding, layout.PayloadOffset)
	if !layout.Aligned() {
		description += " MISALIGNED"
	}
	return description
}
