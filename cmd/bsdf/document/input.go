// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"encoding/hex"
	"io"
	"os"
	"unicode"

	"github.com/bureau-foundation/bsdf/cmd/bsdf/cli"
)

// readInput resolves input data from either a file (the last element
// of args, if it names a regular file on disk) or stdin. It returns the
// input bytes and the args with any consumed file path removed.
//
// When hexMode is true, the input is hex text: whitespace is stripped
// and the rest decoded to binary.
func readInput(args []string, stdin io.Reader, hexMode bool) ([]byte, []string, error) {
	var data []byte
	remainingArgs := args

	if length := len(args); length > 0 {
		candidate := args[length-1]
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			data, err = os.ReadFile(candidate)
			if err != nil {
				return nil, nil, cli.NotFound("read %s: %w", candidate, err)
			}
			remainingArgs = args[:length-1]
		}
	}

	if data == nil {
		var err error
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, nil, cli.Internal("read stdin: %w", err)
		}
	}

	if hexMode {
		decoded, err := decodeHexInput(data)
		if err != nil {
			return nil, nil, err
		}
		data = decoded
	}

	return data, remainingArgs, nil
}

// decodeHexInput strips whitespace from hex text and decodes it.
// Whitespace may appear anywhere, as in "42 53 44 46 02 02 76".
func decodeHexInput(data []byte) ([]byte, error) {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)

	if len(cleaned) == 0 {
		return nil, cli.Validation("empty input after stripping whitespace from hex")
	}

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	count, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, cli.Validation("decode hex: %w", err)
	}
	return decoded[:count], nil
}

// requireNoArgs rejects positional arguments left after the input file.
func requireNoArgs(command string, args []string) error {
	if len(args) > 0 {
		return cli.Validation("%s takes no positional arguments besides an optional file path, got %q", command, args[0])
	}
	return nil
}

// requireData rejects empty input before it reaches a decoder.
func requireData(data []byte) error {
	if len(data) == 0 {
		return cli.Validation("empty input: expected a BSDF document")
	}
	return nil
}

// invalidDocument wraps a decode failure of user-supplied data.
func invalidDocument(err error) error {
	return cli.Validation("invalid document: %w", err)
}
