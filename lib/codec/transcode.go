// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Parse decodes one document in the given format and converts it with
// FromInterchange, ready for the BSDF encoder.
func Parse(data []byte, format Format) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty %s input", format)
	}

	var value any
	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.UseNumber()
		if err := decoder.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
		var extra any
		if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode JSON: unexpected data after the first value")
		}

	case FormatYAML:
		if err := yaml.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}

	case FormatCBOR:
		var err error
		value, err = unmarshalCBOR(data)
		if err != nil {
			return nil, fmt.Errorf("decode CBOR: %w", err)
		}

	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	return FromInterchange(value)
}

// WriteOptions controls text output.
type WriteOptions struct {
	// Compact writes JSON on a single line. YAML and CBOR ignore it.
	Compact bool

	// Diagnose writes CBOR as diagnostic notation text instead of
	// binary. Other formats ignore it.
	Diagnose bool
}

// Write converts a decoded BSDF value with ToInterchange and writes it
// to w in the given format. Text formats end with a newline.
func Write(w io.Writer, v any, format Format, options WriteOptions) error {
	value, err := ToInterchange(v, format)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		var output []byte
		if options.Compact {
			output, err = json.Marshal(value)
		} else {
			output, err = json.MarshalIndent(value, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(output))
		return err

	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		return encoder.Close()

	case FormatCBOR:
		output, err := marshalCBOR(value)
		if err != nil {
			return fmt.Errorf("encode CBOR: %w", err)
		}
		if options.Diagnose {
			notation, err := DiagnoseCBOR(output)
			if err != nil {
				return fmt.Errorf("diagnose CBOR: %w", err)
			}
			_, err = fmt.Fprintln(w, notation)
			return err
		}
		_, err = w.Write(output)
		return err

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
