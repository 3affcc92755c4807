// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/bsdf/lib/bsdf"
	"github.com/bureau-foundation/bsdf/lib/codec"
)

// EnvironmentVariable names the variable [Load] reads the config file
// path from.
const EnvironmentVariable = "BSDF_CONFIG"

// Config is the configuration of the bsdf tool.
type Config struct {
	// Encode configures documents the tool writes.
	Encode EncodeConfig `yaml:"encode"`

	// Decode configures documents the tool reads.
	Decode DecodeConfig `yaml:"decode"`

	// Extensions selects the standard extensions.
	Extensions ExtensionsConfig `yaml:"extensions"`

	// Output configures how decoded documents are printed.
	Output OutputConfig `yaml:"output"`
}

// EncodeConfig configures encoding.
type EncodeConfig struct {
	// Compression is applied to every blob: "none" or "zlib".
	// Default: none
	Compression string `yaml:"compression"`

	// Checksum stores an md5 digest with every blob.
	// Default: false
	Checksum bool `yaml:"checksum"`

	// Float32 writes non-integral floats in single precision.
	// Default: false
	Float32 bool `yaml:"float32"`
}

// DecodeConfig configures decoding.
type DecodeConfig struct {
	// Decompress inflates zlib and bz2 blobs instead of rejecting
	// them.
	// Default: true
	Decompress bool `yaml:"decompress"`

	// VerifyChecksum checks stored blob checksums.
	// Default: true
	VerifyChecksum bool `yaml:"verify_checksum"`

	// MaxDepth bounds nesting on encode and decode.
	// Default: 512
	MaxDepth int `yaml:"max_depth"`
}

// ExtensionsConfig selects extensions.
type ExtensionsConfig struct {
	// Disabled lists standard extensions ("c", "ndarray") that are not
	// registered. Values written by a disabled extension decode to
	// their plain form.
	Disabled []string `yaml:"disabled"`
}

// OutputConfig configures decode output.
type OutputConfig struct {
	// Format is "json", "yaml" or "cbor".
	// Default: json
	Format string `yaml:"format"`

	// Compact prints JSON on a single line.
	// Default: false
	Compact bool `yaml:"compact"`
}

// Default returns the built-in configuration, used when no file is
// named and as the base every file is merged into.
func Default() *Config {
	return &Config{
		Encode: EncodeConfig{
			Compression: "none",
		},
		Decode: DecodeConfig{
			Decompress:     true,
			VerifyChecksum: true,
			MaxDepth:       bsdf.DefaultMaxDepth,
		},
		Output: OutputConfig{
			Format: string(codec.FormatJSON),
		},
	}
}

// Load loads the file named by BSDF_CONFIG, or returns [Default] when
// the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// Resolve picks the configuration source for a command: the --config
// flag value when set, then BSDF_CONFIG, then [Default].
func Resolve(flagPath string) (*Config, error) {
	if flagPath != "" {
		return LoadFile(flagPath)
	}
	return Load()
}

// LoadFile loads configuration from a specific file path, merged over
// [Default]. Unknown keys are errors so typos do not silently fall
// back to defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// loadFile merges one YAML file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in string
// settings, so one file can serve several environments:
//
//	encode:
//	  compression: ${BSDF_COMPRESSION:-none}
func (c *Config) expandVariables() {
	c.Encode.Compression = expandVars(c.Encode.Compression)
	c.Output.Format = expandVars(c.Output.Format)
	for i, name := range c.Extensions.Disabled {
		c.Extensions.Disabled[i] = expandVars(name)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// standardExtensionNames are the names Disabled may contain.
var standardExtensionNames = func() []string {
	var names []string
	for _, extension := range bsdf.StandardExtensions() {
		names = append(names, extension.Name)
	}
	return names
}()

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	compression, err := bsdf.ParseCompression(c.Encode.Compression)
	if err != nil {
		errs = append(errs, fmt.Errorf("encode.compression: %w", err))
	} else if compression != bsdf.CompressionNone && compression != bsdf.CompressionZlib {
		errs = append(errs, fmt.Errorf("encode.compression: %s can be read but not written", compression))
	}

	if c.Decode.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("decode.max_depth must not be negative, got %d", c.Decode.MaxDepth))
	}

	for _, name := range c.Extensions.Disabled {
		if !slices.Contains(standardExtensionNames, name) {
			errs = append(errs, fmt.Errorf("extensions.disabled: unknown extension %q (want one of %v)",
				name, standardExtensionNames))
		}
	}

	if _, err := codec.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// BSDFOptions converts the configuration into codec options.
func (c *Config) BSDFOptions() (bsdf.Options, error) {
	compression, err := bsdf.ParseCompression(c.Encode.Compression)
	if err != nil {
		return bsdf.Options{}, err
	}

	extensions := []*bsdf.Extension{}
	for _, extension := range bsdf.StandardExtensions() {
		if !slices.Contains(c.Extensions.Disabled, extension.Name) {
			extensions = append(extensions, extension)
		}
	}

	return bsdf.Options{
		Compression:    compression,
		Checksum:       c.Encode.Checksum,
		Float32:        c.Encode.Float32,
		Decompress:     c.Decode.Decompress,
		VerifyChecksum: c.Decode.VerifyChecksum,
		MaxDepth:       c.Decode.MaxDepth,
		Extensions:     extensions,
	}, nil
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() (codec.Format, error) {
	return codec.ParseFormat(c.Output.Format)
}
