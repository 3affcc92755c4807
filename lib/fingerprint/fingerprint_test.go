// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fingerprint

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bureau-foundation/bsdf/lib/bsdf"
)

func encode(t *testing.T, options bsdf.Options, v any) []byte {
	t.Helper()
	codec, err := bsdf.New(options)
	if err != nil {
		t.Fatalf("bsdf.New: %v", err)
	}
	data, err := codec.Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

func TestDocumentIgnoresStorageOptions(t *testing.T) {
	payload := bytes.Repeat([]byte("payload "), 100)
	value := map[string]any{"blob": payload, "name": "sample"}

	plain := encode(t, bsdf.Options{}, value)
	compressed := encode(t, bsdf.Options{Compression: bsdf.CompressionZlib, Checksum: true}, value)
	reserved := encode(t, bsdf.Options{}, map[string]any{
		"blob": bsdf.Blob{Data: payload, ExtraSize: 64},
		"name": "sample",
	})

	want, err := Document(plain)
	if err != nil {
		t.Fatalf("Document(plain): %v", err)
	}
	for name, data := range map[string][]byte{"compressed": compressed, "reserved": reserved} {
		got, err := Document(data)
		if err != nil {
			t.Fatalf("Document(%s): %v", name, err)
		}
		if got != want {
			t.Errorf("%s document fingerprint %s differs from plain %s", name, got, want)
		}
	}

	fromValue, err := Value(value)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if fromValue != want {
		t.Errorf("Value fingerprint %s differs from Document %s", fromValue, want)
	}
}

func TestDocumentDistinguishesValues(t *testing.T) {
	first, err := Value(map[string]any{"n": 1})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Value(map[string]any{"n": 2})
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("different values share a fingerprint")
	}
}

func TestCanonicalDeterministic(t *testing.T) {
	data := []byte("BSDF\x02\x02v")
	var zero Hash
	if Canonical(data) == zero {
		t.Error("Canonical returned the zero hash")
	}
	if Canonical(data) != Canonical(bytes.Clone(data)) {
		t.Error("Canonical is not deterministic")
	}
}

func TestDomainKeyPadding(t *testing.T) {
	name := "bsdf.document"
	for i, b := range documentDomainKey {
		var want byte
		if i < len(name) {
			want = name[i]
		}
		if b != want {
			t.Fatalf("documentDomainKey[%d] = %q, want %q", i, b, want)
		}
	}
}

func TestDocumentRejectsMalformed(t *testing.T) {
	if _, err := Document([]byte("not bsdf")); err == nil {
		t.Error("Document accepted malformed input")
	}
}

func TestFormatAndParse(t *testing.T) {
	hash, err := Value("x")
	if err != nil {
		t.Fatal(err)
	}
	text := hash.String()
	if len(text) != 64 {
		t.Fatalf("String() length = %d, want 64", len(text))
	}
	parsed, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed != hash {
		t.Error("Parse(String()) did not round trip")
	}
	if !strings.HasPrefix(hash.Short(), "bsdf-") || len(hash.Short()) != 17 {
		t.Errorf("Short() = %q", hash.Short())
	}

	for _, bad := range []string{"zz", "abcd"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) succeeded", bad)
		}
	}
}
