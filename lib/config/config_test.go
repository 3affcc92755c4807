// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bureau-foundation/bsdf/lib/bsdf"
	"github.com/bureau-foundation/bsdf/lib/codec"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "bsdf.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Encode.Compression != "none" {
		t.Errorf("expected compression=none, got %s", cfg.Encode.Compression)
	}
	if !cfg.Decode.Decompress || !cfg.Decode.VerifyChecksum {
		t.Error("expected decompress and verify_checksum to default to true")
	}
	if cfg.Decode.MaxDepth != bsdf.DefaultMaxDepth {
		t.Errorf("expected max_depth=%d, got %d", bsdf.DefaultMaxDepth, cfg.Decode.MaxDepth)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected format=json, got %s", cfg.Output.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoad_WithoutBSDFConfigUsesDefault(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load() = %+v, want Default()", cfg)
	}
}

func TestLoad_WithBSDFConfig(t *testing.T) {
	t.Setenv(EnvironmentVariable, writeConfig(t, "encode:\n  compression: zlib\n"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Encode.Compression != "zlib" {
		t.Errorf("expected compression=zlib, got %s", cfg.Encode.Compression)
	}
}

func TestResolve_FlagBeatsEnvironment(t *testing.T) {
	t.Setenv(EnvironmentVariable, writeConfig(t, "output:\n  format: cbor\n"))
	flagPath := writeConfig(t, "output:\n  format: yaml\n")

	cfg, err := Resolve(flagPath)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("expected format=yaml from the flag, got %s", cfg.Output.Format)
	}

	cfg, err = Resolve("")
	if err != nil {
		t.Fatalf("Resolve without flag failed: %v", err)
	}
	if cfg.Output.Format != "cbor" {
		t.Errorf("expected format=cbor from BSDF_CONFIG, got %s", cfg.Output.Format)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
encode:
  compression: zlib
  checksum: true
  float32: true

decode:
  decompress: false
  max_depth: 64

extensions:
  disabled: [ndarray]

output:
  format: yaml
  compact: true
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Encode.Compression != "zlib" || !cfg.Encode.Checksum || !cfg.Encode.Float32 {
		t.Errorf("encode section not applied: %+v", cfg.Encode)
	}
	if cfg.Decode.Decompress {
		t.Error("expected decompress=false")
	}
	if !cfg.Decode.VerifyChecksum {
		t.Error("expected verify_checksum to keep its default")
	}
	if cfg.Decode.MaxDepth != 64 {
		t.Errorf("expected max_depth=64, got %d", cfg.Decode.MaxDepth)
	}
	if !reflect.DeepEqual(cfg.Extensions.Disabled, []string{"ndarray"}) {
		t.Errorf("expected disabled=[ndarray], got %v", cfg.Extensions.Disabled)
	}
	if cfg.Output.Format != "yaml" || !cfg.Output.Compact {
		t.Errorf("output section not applied: %+v", cfg.Output)
	}
}

func TestLoadFile_EmptyFileIsDefault(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("empty file = %+v, want Default()", cfg)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "encode:\n  compresion: zlib\n", "compresion"},
		{"bz2 writing", "encode:\n  compression: bz2\n", "encode.compression"},
		{"bad format", "output:\n  format: toml\n", "output.format"},
		{"unknown extension", "extensions:\n  disabled: [quaternion]\n", "quaternion"},
		{"negative depth", "decode:\n  max_depth: -1\n", "max_depth"},
		{"malformed yaml", "encode: [\n", "loading config"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, test.content))
			if err == nil {
				t.Fatal("LoadFile succeeded, want error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q does not mention %q", err, test.want)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadFile of a missing file succeeded")
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Encode.Compression = "lz4"
	cfg.Output.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate succeeded, want error")
	}
	for _, want := range []string{"encode.compression", "output.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("BSDF_TEST_PRESENT", "value")
	t.Setenv("BSDF_TEST_A", "first")
	t.Setenv("BSDF_TEST_B", "second")

	tests := []struct {
		input    string
		expected string
	}{
		{"${BSDF_TEST_MISSING:-default}", "default"},
		{"${BSDF_TEST_PRESENT:-default}", "value"},
		{"${BSDF_TEST_A}/${BSDF_TEST_B}", "first/second"},
		{"${BSDF_TEST_MISSING}", ""},
		{"no variables here", "no variables here"},
	}
	for _, tt := range tests {
		if result := expandVars(tt.input); result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestLoadFile_ExpandsVariables(t *testing.T) {
	t.Setenv("BSDF_TEST_COMPRESSION", "zlib")
	cfg, err := LoadFile(writeConfig(t, "encode:\n  compression: ${BSDF_TEST_COMPRESSION:-none}\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Encode.Compression != "zlib" {
		t.Errorf("expected compression=zlib, got %s", cfg.Encode.Compression)
	}
}

func TestBSDFOptions(t *testing.T) {
	cfg := Default()
	cfg.Encode.Compression = "zlib"
	cfg.Encode.Checksum = true
	cfg.Decode.MaxDepth = 32
	cfg.Extensions.Disabled = []string{"c"}

	options, err := cfg.BSDFOptions()
	if err != nil {
		t.Fatalf("BSDFOptions failed: %v", err)
	}
	if options.Compression != bsdf.CompressionZlib || !options.Checksum {
		t.Errorf("encode options not applied: %+v", options)
	}
	if !options.Decompress || !options.VerifyChecksum || options.MaxDepth != 32 {
		t.Errorf("decode options not applied: %+v", options)
	}
	if len(options.Extensions) != 1 || options.Extensions[0].Name != "ndarray" {
		t.Errorf("expected only the ndarray extension, got %d extensions", len(options.Extensions))
	}

	// The options build a working codec.
	if _, err := bsdf.New(options); err != nil {
		t.Errorf("bsdf.New with config options: %v", err)
	}
}

func TestOutputFormat(t *testing.T) {
	cfg := Default()
	cfg.Output.Format = "yml"
	format, err := cfg.OutputFormat()
	if err != nil || format != codec.FormatYAML {
		t.Errorf("OutputFormat = %q, %v; want yaml", format, err)
	}
}
