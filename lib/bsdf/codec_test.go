// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"testing"
)

var header = []byte{'B', 'S', 'D', 'F', VersionMajor, VersionMinor}

// document prefixes body with a valid header.
func document(body ...byte) []byte {
	return append(append([]byte{}, header...), body...)
}

// newTestCodec returns a codec whose warnings are written to the
// returned buffer.
func newTestCodec(t *testing.T, options Options) (*Codec, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	options.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	codec, err := New(options)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return codec, &logs
}

func mustEncode(t *testing.T, codec *Codec, v any) []byte {
	t.Helper()
	data, err := codec.Encode(v)
	if err != nil {
		t.Fatalf("Encode(%#v): %v", v, err)
	}
	return data
}

func mustDecode(t *testing.T, codec *Codec, data []byte) any {
	t.Helper()
	value, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode(%x): %v", data, err)
	}
	return value
}

func TestEncodeWireBytes(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	tests := []struct {
		name  string
		value any
		body  []byte
	}{
		{"null", nil, []byte{'v'}},
		{"false", false, []byte{'n'}},
		{"true", true, []byte{'y'}},
		{"small int", 3, []byte{'h', 3, 0}},
		{"negative int16 bound", -32768, []byte{'h', 0x00, 0x80}},
		{"int16 upper bound", int64(32767), []byte{'h', 0xff, 0x7f}},
		{"just above int16", 32768, []byte{'i', 0x00, 0x80, 0, 0, 0, 0, 0, 0}},
		{"integral float", 3.0, []byte{'h', 3, 0}},
		{"unsigned", uint8(200), []byte{'h', 200, 0}},
		{"fractional float", 3.5, []byte{'d', 0, 0, 0, 0, 0, 0, 0x0c, 0x40}},
		{"float32", float32(1.5), []byte{'f', 0, 0, 0xc0, 0x3f}},
		{"string", "hi", []byte{'s', 2, 'h', 'i'}},
		{"empty list", []any{}, []byte{'l', 0}},
		{"list", []any{true, nil}, []byte{'l', 2, 'y', 'v'}},
		{"sorted map", map[string]any{"b": 1, "a": 2}, []byte{'m', 2, 1, 'a', 'h', 2, 0, 1, 'b', 'h', 1, 0}},
		{"complex", complex(3, 4), []byte{'L', 1, 'c', 2, 'h', 3, 0, 'h', 4, 0}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := mustEncode(t, codec, test.value)
			want := document(test.body...)
			if !bytes.Equal(got, want) {
				t.Errorf("Encode(%#v) = %x, want %x", test.value, got, want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"null", nil, nil},
		{"bool", true, true},
		{"int16 becomes int64", int16(-5), int64(-5)},
		{"int64", int64(math.MaxInt64), int64(math.MaxInt64)},
		{"min int64", int64(math.MinInt64), int64(math.MinInt64)},
		{"float", 0.1, 0.1},
		{"float32", float32(0.1), float32(0.1)},
		{"string", "héllo wörld", "héllo wörld"},
		{"bytes", []byte{1, 2, 3}, []byte{1, 2, 3}},
		{"empty bytes", []byte{}, []byte{}},
		{"nested", map[string]any{
			"list": []any{1, "two", 3.5, nil},
			"map":  map[string]any{"inner": false},
		}, map[string]any{
			"list": []any{int64(1), "two", 3.5, nil},
			"map":  map[string]any{"inner": false},
		}},
		{"typed slice of strings", []string{"a", "b"}, []any{"a", "b"}},
		{"typed map", map[string]int{"x": 1}, map[string]any{"x": int64(1)}},
		{"array", [2]bool{true, false}, []any{true, false}},
		{"pointer", func() any { n := 7; return &n }(), int64(7)},
		{"nil pointer", (*int)(nil), nil},
		{"complex", complex(1.5, -2), complex(1.5, -2)},
		{"complex64", complex64(complex(2, 0.5)), complex(2, 0.5)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := mustDecode(t, codec, mustEncode(t, codec, test.value))
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("round trip of %#v = %#v, want %#v", test.value, got, test.want)
			}
		})
	}
}

type celsius float64

type label string

func TestNamedBasicTypes(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	got := mustDecode(t, codec, mustEncode(t, codec, []any{celsius(21.5), label("kitchen")}))
	want := []any{21.5, "kitchen"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestSpecialFloatsStayFloats(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), math.Copysign(0, -1), 1e300} {
		data := mustEncode(t, codec, value)
		if data[headerSize] != 'd' {
			t.Errorf("%v encoded with tag %q, want 'd'", value, data[headerSize])
			continue
		}
		decoded, ok := mustDecode(t, codec, data).(float64)
		if !ok {
			t.Errorf("%v decoded to %T", value, decoded)
			continue
		}
		if math.Float64bits(decoded) != math.Float64bits(value) && !(math.IsNaN(value) && math.IsNaN(decoded)) {
			t.Errorf("%v decoded to %v", value, decoded)
		}
	}
}

func TestFloat32Option(t *testing.T) {
	codec, _ := newTestCodec(t, Options{Float32: true})
	data := mustEncode(t, codec, 0.5)
	if !bytes.Equal(data, document('f', 0, 0, 0, 0x3f)) {
		t.Errorf("Encode(0.5) = %x", data)
	}
	if got := mustDecode(t, codec, data); got != float32(0.5) {
		t.Errorf("decoded %#v, want float32(0.5)", got)
	}
}

func TestEncodeErrors(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	cyclicMap := map[string]any{}
	cyclicMap["self"] = cyclicMap
	cyclicList := make([]any, 1)
	cyclicList[0] = cyclicList

	tests := []struct {
		name  string
		value any
	}{
		{"undefined", Undefined{}},
		{"undefined nested", []any{1, Undefined{}}},
		{"uint64 above int64", uint64(math.MaxUint64)},
		{"struct", struct{ A int }{1}},
		{"channel", make(chan int)},
		{"int-keyed map", map[int]string{1: "a"}},
		{"invalid UTF-8", "\xff"},
		{"cyclic map", cyclicMap},
		{"cyclic list", cyclicList},
		{"negative extra size", Blob{Data: []byte{1}, ExtraSize: -1}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := codec.Encode(test.value)
			var encodeError *EncodeError
			if !errors.As(err, &encodeError) {
				t.Fatalf("Encode error = %v, want *EncodeError", err)
			}
		})
	}
}

func TestSharedValuesAreNotCycles(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	shared := []any{"x"}
	inner := map[string]any{"k": 1}
	value := []any{shared, shared, map[string]any{"a": inner, "b": inner}}
	got := mustDecode(t, codec, mustEncode(t, codec, value))
	want := []any{
		[]any{"x"}, []any{"x"},
		map[string]any{"a": map[string]any{"k": int64(1)}, "b": map[string]any{"k": int64(1)}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func nestedLists(depth int) any {
	var value any = "leaf"
	for range depth {
		value = []any{value}
	}
	return value
}

func TestEncodeMaxDepth(t *testing.T) {
	codec, _ := newTestCodec(t, Options{MaxDepth: 10})
	// Nine lists plus the leaf is ten levels.
	if _, err := codec.Encode(nestedLists(9)); err != nil {
		t.Fatalf("Encode at the limit: %v", err)
	}
	_, err := codec.Encode(nestedLists(10))
	var encodeError *EncodeError
	if !errors.As(err, &encodeError) {
		t.Fatalf("Encode past the limit: error = %v, want *EncodeError", err)
	}
}

func TestDecodeMaxDepth(t *testing.T) {
	body := bytes.Repeat([]byte{'l', 1}, 20)
	body = append(body, 'v')
	codec, _ := newTestCodec(t, Options{MaxDepth: 10})
	_, err := codec.Decode(document(body...))
	var formatError *FormatError
	if !errors.As(err, &formatError) {
		t.Fatalf("Decode error = %v, want *FormatError", err)
	}

	deep, _ := newTestCodec(t, Options{MaxDepth: 21})
	if _, err := deep.Decode(document(body...)); err != nil {
		t.Fatalf("Decode with a higher limit: %v", err)
	}
}

func TestDecodeHeader(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		offset int64
	}{
		{"empty", nil, 0},
		{"bad magic", []byte("BSDX\x02\x02v"), 0},
		{"lowercase magic", []byte("bsdf\x02\x02v"), 0},
		{"major too new", []byte("BSDF\x03\x02v"), 4},
		{"major too old", []byte("BSDF\x01\x02v"), 4},
	}
	codec, _ := newTestCodec(t, Options{})
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := codec.Decode(test.data)
			var formatError *FormatError
			if !errors.As(err, &formatError) {
				t.Fatalf("Decode error = %v, want *FormatError", err)
			}
			if formatError.Offset != test.offset {
				t.Errorf("Offset = %d, want %d", formatError.Offset, test.offset)
			}
		})
	}
}

func TestDecodeNewerMinorVersionWarns(t *testing.T) {
	codec, logs := newTestCodec(t, Options{})
	data := []byte{'B', 'S', 'D', 'F', VersionMajor, VersionMinor + 1, 'y'}
	if got := mustDecode(t, codec, data); got != true {
		t.Errorf("decoded %#v, want true", got)
	}
	if !strings.Contains(logs.String(), "newer minor version") {
		t.Errorf("expected a minor version warning, got logs: %q", logs.String())
	}

	logs.Reset()
	mustDecode(t, codec, document('y'))
	if logs.Len() != 0 {
		t.Errorf("current version logged: %q", logs.String())
	}
}

// Other writers may put 251 or 252 in the single size byte.
func TestDecodeSingleByteSizes251And252(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	for _, size := range []int{251, 252} {
		text := strings.Repeat("a", size)
		data := document(append([]byte{'s', byte(size)}, text...)...)
		got, err := codec.Decode(data)
		if err != nil {
			t.Fatalf("Decode string of %d: %v", size, err)
		}
		if got != text {
			t.Errorf("string of %d decoded to %d bytes", size, len(got.(string)))
		}

		list := []byte{'l', byte(size)}
		want := make([]any, size)
		for i := range size {
			list = append(list, 'v')
			want[i] = nil
		}
		got, err = codec.Decode(document(list...))
		if err != nil {
			t.Fatalf("Decode list of %d: %v", size, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("list of %d decoded to %#v", size, got)
		}

		payload := bytes.Repeat([]byte{0x5a}, size)
		blob := []byte{'b', byte(size), byte(size), byte(size), 0, 0, 2, 0, 0}
		got, err = codec.Decode(document(append(blob, payload...)...))
		if err != nil {
			t.Fatalf("Decode blob of %d: %v", size, err)
		}
		if !bytes.Equal(got.([]byte), payload) {
			t.Errorf("blob of %d decoded to %d bytes", size, len(got.([]byte)))
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"no record", nil},
		{"end marker at top level", []byte{0}},
		{"unknown tag", []byte{'x'}},
		{"truncated int16", []byte{'h', 1}},
		{"truncated int64", []byte{'i', 1, 2, 3}},
		{"truncated string", []byte{'s', 5, 'a'}},
		{"truncated list", []byte{'l', 3, 'v'}},
		{"list size beyond input", []byte{'l', 253, 0, 0, 0, 0x10, 0, 0, 0, 0}},
		{"map size unknown", []byte{'m', 255, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"truncated map value", []byte{'m', 1, 1, 'k'}},
		{"truncated 251-byte string", []byte{'s', 251, 'a'}},
		{"used exceeds allocated", []byte{'b', 1, 2, 2, 0, 0, 0, 1, 2}},
		{"truncated blob", []byte{'b', 4, 4, 4, 0, 0, 0, 1}},
		{"truncated extension name", []byte{'L', 5, 'a'}},
	}
	codec, _ := newTestCodec(t, Options{})
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := codec.Decode(document(test.body...))
			var formatError *FormatError
			if !errors.As(err, &formatError) {
				t.Fatalf("Decode error = %v, want *FormatError", err)
			}
		})
	}
}

func TestDecodeOpenListStream(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	placeholder := []byte{255, 0, 0, 0, 0, 0, 0, 0, 0}

	tests := []struct {
		name string
		body []byte
		want any
	}{
		{"ends at end of data", append(append([]byte{'l'}, placeholder...), 'h', 1, 0, 'h', 2, 0), []any{int64(1), int64(2)}},
		{"ends at zero tag", append(append([]byte{'l'}, placeholder...), 'y', 0, 0, 0), []any{true}},
		{"empty", append([]byte{'l'}, placeholder...), []any{}},
		{"nested in closed list", append(append([]byte{'l', 1, 'l'}, placeholder...), 's', 1, 'a'), []any{[]any{"a"}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := mustDecode(t, codec, document(test.body...))
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("got %#v, want %#v", got, test.want)
			}
		})
	}
}

func TestDecodeClosedListStream(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	body := []byte{'l', 254, 2, 0, 0, 0, 0, 0, 0, 0, 'n', 'y'}
	got := mustDecode(t, codec, document(body...))
	if !reflect.DeepEqual(got, []any{false, true}) {
		t.Errorf("got %#v", got)
	}
}

func TestLargeCollections(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	items := make([]any, 251)
	for i := range items {
		items[i] = i
	}
	data := mustEncode(t, codec, items)
	if data[headerSize+1] != sizeMarkerWide {
		t.Errorf("251-element list size byte = %d, want %d", data[headerSize+1], sizeMarkerWide)
	}
	decoded := mustDecode(t, codec, data).([]any)
	if len(decoded) != 251 || decoded[250] != int64(250) {
		t.Errorf("decoded %d elements, last %v", len(decoded), decoded[len(decoded)-1])
	}

	long := strings.Repeat("x", 1000)
	if got := mustDecode(t, codec, mustEncode(t, codec, long)); got != long {
		t.Errorf("long string did not round trip")
	}
}

func TestUnknownExtensionPassesThrough(t *testing.T) {
	standard, _ := newTestCodec(t, Options{})
	data := mustEncode(t, standard, complex(3, 4))

	bare, logs := newTestCodec(t, Options{Extensions: []*Extension{}})
	got := mustDecode(t, bare, data)
	want := []any{int64(3), int64(4)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
	if !strings.Contains(logs.String(), "extension=c") {
		t.Errorf("expected a warning naming extension c, got logs: %q", logs.String())
	}
}

func TestEmptyExtensionNamePassesThrough(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want any
	}{
		{"string", document('S', 0, 1, 'a'), "a"},
		{"list", document('L', 0, 1, 'v'), []any{nil}},
		{"int16", document('H', 0, 7, 0), int64(7)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			codec, logs := newTestCodec(t, Options{})
			got := mustDecode(t, codec, test.data)
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("got %#v, want %#v", got, test.want)
			}
			if !strings.Contains(logs.String(), "no BSDF extension registered") {
				t.Errorf("expected an unknown extension warning, got logs: %q", logs.String())
			}
		})
	}
}

type point struct{ X, Y int }

func pointExtension() *Extension {
	return &Extension{
		Name: "point",
		Match: func(v any) bool {
			_, ok := v.(point)
			return ok
		},
		Encode: func(v any) (any, error) {
			p := v.(point)
			return []any{p.X, p.Y}, nil
		},
		Decode: func(v any) (any, error) {
			parts, ok := v.([]any)
			if !ok || len(parts) != 2 {
				return nil, errors.New("point must be a two-element list")
			}
			return point{X: int(parts[0].(int64)), Y: int(parts[1].(int64))}, nil
		},
	}
}

func TestCustomExtension(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	if err := codec.Register(pointExtension()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	value := map[string]any{"origin": point{0, 0}, "corners": []any{point{1, 2}, point{-3, 40000}}}
	got := mustDecode(t, codec, mustEncode(t, codec, value))
	if !reflect.DeepEqual(got, value) {
		t.Errorf("got %#v, want %#v", got, value)
	}
}

func TestExtensionDecodeErrorIsWrapped(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	if err := codec.Register(pointExtension()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// "point" tagged string: the decode function rejects it.
	_, err := codec.Decode(document('S', 5, 'p', 'o', 'i', 'n', 't', 1, 'x'))
	if err == nil || !strings.Contains(err.Error(), `extension "point"`) {
		t.Fatalf("Decode error = %v, want an error naming the extension", err)
	}
}

func TestExtensionProtocolError(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	wrapper := &Extension{
		Name:   "wrapper",
		Match:  func(v any) bool { _, ok := v.(point); return ok },
		Encode: func(v any) (any, error) { return complex(1, 2), nil },
		Decode: func(v any) (any, error) { return v, nil },
	}
	if err := codec.Register(wrapper); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := codec.Encode(point{1, 2})
	var protocolError *ExtensionProtocolError
	if !errors.As(err, &protocolError) {
		t.Fatalf("Encode error = %v, want *ExtensionProtocolError", err)
	}
	if protocolError.Extension != "wrapper" {
		t.Errorf("Extension = %q, want wrapper", protocolError.Extension)
	}

	// Extension values nested inside an extension's output are fine.
	wrapper.Encode = func(v any) (any, error) { return []any{complex(1, 2)}, nil }
	if _, err := codec.Encode(point{1, 2}); err != nil {
		t.Errorf("nested extension value: %v", err)
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name    string
		options Options
	}{
		{"bz2 writing", Options{Compression: CompressionBZ2}},
		{"unknown compression", Options{Compression: Compression(9)}},
		{"negative depth", Options{MaxDepth: -1}},
		{"invalid extension", Options{Extensions: []*Extension{{Name: ""}}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := New(test.options); err == nil {
				t.Error("New succeeded, want error")
			}
		})
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	value := map[string]any{"samples": []float32{0.5, 1.5}, "phase": complex(0, 1)}
	data, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := map[string]any{
		"samples": NDArray{Shape: []int{2}, Data: []float32{0.5, 1.5}},
		"phase":   complex(0, 1),
	}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("got %#v, want %#v", decoded, want)
	}
}

func TestEncodeToDecodeFrom(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	var buffer bytes.Buffer
	if err := codec.EncodeTo(&buffer, []any{"a", 1}); err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	got, err := codec.DecodeFrom(&buffer)
	if err != nil {
		t.Fatalf("DecodeFrom: %v", err)
	}
	if !reflect.DeepEqual(got, []any{"a", int64(1)}) {
		t.Errorf("got %#v", got)
	}

	buffer.Reset()
	if err := codec.EncodeTo(&buffer, Undefined{}); err == nil {
		t.Fatal("EncodeTo(Undefined) succeeded")
	}
	if buffer.Len() != 0 {
		t.Errorf("failed EncodeTo wrote %d bytes", buffer.Len())
	}
}

func TestDeterministicEncoding(t *testing.T) {
	codec, _ := newTestCodec(t, Options{})
	value := map[string]any{}
	for _, key := range []string{"zeta", "alpha", "mu", "beta", "omega", "gamma"} {
		value[key] = map[string]any{key: key, "n": len(key)}
	}
	first := mustEncode(t, codec, value)
	for range 20 {
		if again := mustEncode(t, codec, value); !bytes.Equal(first, again) {
			t.Fatalf("encodings differ:\n%x\n%x", first, again)
		}
	}
}
