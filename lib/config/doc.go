// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the bsdf
// tool.
//
// Configuration comes from a single file named by the --config flag
// or, failing that, the BSDF_CONFIG environment variable (see
// [Resolve]). With neither, the built-in [Default] applies. There is no
// automatic file search, so the settings in effect are always the ones
// named on the command line or in the environment.
//
// A file only needs the keys it changes; everything else keeps its
// default:
//
//	encode:
//	  compression: zlib
//	  checksum: true
//	decode:
//	  max_depth: 64
//	extensions:
//	  disabled: [ndarray]
//	output:
//	  format: yaml
//
// String settings expand ${VAR} and ${VAR:-default}. Unknown keys and
// invalid values are errors; [Config.Validate] reports every problem at
// once.
//
// Key exports:
//
//   - [Config] -- master struct with Encode, Decode, Extensions, Output
//   - [Default] -- the built-in configuration
//   - [Resolve], [Load] and [LoadFile] -- the entry points for loading
//   - [Config.BSDFOptions] -- the bsdf.Options a command builds its codec from
package config
