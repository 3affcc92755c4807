// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "fmt"

// Format names an interchange format BSDF documents can be transcoded
// to and from.
type Format string

const (
	// FormatJSON is JSON. Input may also be JSONC: comments and
	// trailing commas are stripped before parsing.
	FormatJSON Format = "json"

	// FormatYAML is YAML 1.2 via gopkg.in/yaml.v3.
	FormatYAML Format = "yaml"

	// FormatCBOR is CBOR (RFC 8949) with deterministic encoding.
	FormatCBOR Format = "cbor"
)

// Formats lists every supported format, in the order shown in help
// text.
var Formats = []Format{FormatJSON, FormatYAML, FormatCBOR}

// ParseFormat parses a format name. "yml" and "jsonc" are accepted as
// aliases.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "json", "jsonc":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, yaml or cbor)", name)
	}
}

// Binary reports whether the format's output is binary rather than
// text.
func (f Format) Binary() bool {
	return f == FormatCBOR
}
