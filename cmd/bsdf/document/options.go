// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"log/slog"

	"github.com/bureau-foundation/bsdf/cmd/bsdf/cli"
	"github.com/bureau-foundation/bsdf/lib/bsdf"
	"github.com/bureau-foundation/bsdf/lib/config"
)

// inputParams is embedded by commands that read a BSDF document.
type inputParams struct {
	HexInput bool `json:"hex_input" flag:"hex,x" desc:"treat input as hex-encoded BSDF"`
}

// configParams is embedded by commands whose behavior the config file
// shapes.
type configParams struct {
	Config string `json:"config" flag:"config" desc:"config file (default: $BSDF_CONFIG, then built-in defaults)"`
}

// loadConfig resolves the config file for a command.
func loadConfig(params configParams) (*config.Config, error) {
	cfg, err := config.Resolve(params.Config)
	if err != nil {
		return nil, cli.Validation("%w", err).
			WithHint("Check the file named by --config or " + config.EnvironmentVariable + ".")
	}
	return cfg, nil
}

// newCodec builds the codec a command reads and writes with. Codec
// warnings go to the command logger.
func newCodec(cfg *config.Config, logger *slog.Logger) (*bsdf.Codec, error) {
	options, err := cfg.BSDFOptions()
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	options.Logger = logger
	documentCodec, err := bsdf.New(options)
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	return documentCodec, nil
}
