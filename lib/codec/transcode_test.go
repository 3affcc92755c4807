// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/bureau-foundation/bsdf/lib/bsdf"
)

func TestParseJSON(t *testing.T) {
	input := []byte(`{
		// comments and trailing commas are accepted
		"count": 42,
		"ratio": 0.25,
		"big": 9007199254740993,
		"name": "sample",
		"tags": ["a", null, true,],
	}`)
	got, err := Parse(input, FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := map[string]any{
		"count": int64(42),
		"ratio": 0.25,
		"big":   int64(9007199254740993),
		"name":  "sample",
		"tags":  []any{"a", nil, true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	if _, err := Parse([]byte(`{"a": 1} {"b": 2}`), FormatJSON); err == nil {
		t.Error("Parse accepted two JSON documents")
	}
}

func TestParseEmpty(t *testing.T) {
	for _, format := range Formats {
		if _, err := Parse([]byte("  \n"), format); err == nil {
			t.Errorf("Parse of empty %s input succeeded", format)
		}
	}
}

func TestParseYAML(t *testing.T) {
	input := []byte("count: 3\nratio: 1.5\nitems:\n  - x\n  - 7\nnested:\n  1: one\n")
	got, err := Parse(input, FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := map[string]any{
		"count":  int64(3),
		"ratio":  1.5,
		"items":  []any{"x", int64(7)},
		"nested": map[string]any{"1": "one"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestSpecialValuesRoundTrip(t *testing.T) {
	value := map[string]any{
		"blob":    []byte{0, 1, 2, 255},
		"phase":   complex(1.5, -2),
		"samples": bsdf.NDArray{Shape: []int{2, 2}, Data: []float32{0.5, 1, 1.5, 2}},
		"counts":  bsdf.NDArray{Shape: []int{3}, Data: []uint16{1, 2, 65535}},
		"list":    []any{int64(1), "two"},
	}
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			var buffer bytes.Buffer
			if err := Write(&buffer, value, format, WriteOptions{}); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := Parse(buffer.Bytes(), format)
			if err != nil {
				t.Fatalf("Parse: %v\n%s", err, buffer.String())
			}
			if !reflect.DeepEqual(got, value) {
				t.Errorf("got %#v, want %#v", got, value)
			}
		})
	}
}

func TestWriteJSONForms(t *testing.T) {
	value := map[string]any{"b": []byte("hi"), "n": int64(1)}

	var pretty bytes.Buffer
	if err := Write(&pretty, value, FormatJSON, WriteOptions{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "{\n  \"b\": {\n    \"$bytes\": \"aGk=\"\n  },\n  \"n\": 1\n}\n"
	if pretty.String() != want {
		t.Errorf("pretty output = %q, want %q", pretty.String(), want)
	}

	var compact bytes.Buffer
	if err := Write(&compact, value, FormatJSON, WriteOptions{Compact: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if compact.String() != `{"b":{"$bytes":"aGk="},"n":1}`+"\n" {
		t.Errorf("compact output = %q", compact.String())
	}
}

func TestWriteRejectsUnrepresentable(t *testing.T) {
	var buffer bytes.Buffer
	err := Write(&buffer, map[string]any{"x": struct{}{}}, FormatJSON, WriteOptions{})
	if err == nil || !strings.Contains(err.Error(), "x:") {
		t.Errorf("Write error = %v, want an error naming the key", err)
	}
}

func TestFromInterchangeErrors(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"bad base64", map[string]any{BytesKey: "!!"}},
		{"bytes not text", map[string]any{BytesKey: int64(1)}},
		{"short complex", map[string]any{ComplexKey: []any{1.0}}},
		{"complex text part", map[string]any{ComplexKey: []any{"a", 1.0}}},
		{"unknown dtype", map[string]any{NDArrayKey: map[string]any{"dtype": "float16", "data": []any{}}}},
		{"element overflow", map[string]any{NDArrayKey: map[string]any{"dtype": "int8", "data": []any{int64(300)}}}},
		{"negative unsigned", map[string]any{NDArrayKey: map[string]any{"dtype": "uint8", "data": []any{int64(-1)}}}},
		{"fractional integer", map[string]any{NDArrayKey: map[string]any{"dtype": "int32", "data": []any{0.5}}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := FromInterchange(test.value); err == nil {
				t.Error("FromInterchange succeeded, want error")
			}
		})
	}
}

func TestOrdinaryDollarKeysPassThrough(t *testing.T) {
	value := map[string]any{"$other": "kept"}
	got, err := FromInterchange(value)
	if err != nil {
		t.Fatalf("FromInterchange: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{"$other": "kept"}) {
		t.Errorf("got %#v", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"json", FormatJSON},
		{"jsonc", FormatJSON},
		{"yaml", FormatYAML},
		{"yml", FormatYAML},
		{"cbor", FormatCBOR},
	}
	for _, test := range tests {
		got, err := ParseFormat(test.input)
		if err != nil || got != test.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", test.input, got, err, test.want)
		}
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Error("ParseFormat(toml) succeeded")
	}
}
