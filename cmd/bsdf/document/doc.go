// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package document implements the bsdf command and its subcommands:
// decode (BSDF to JSON, YAML or CBOR), encode (back to BSDF), diag
// (record-level listing), validate (canonical form and blob
// alignment), and sum (BLAKE3 fingerprint). The bare command decodes,
// or filters through jq when given a filter expression.
//
// Every command reads the trailing file argument when it names a
// regular file and stdin otherwise, and accepts hex text with --hex.
// Codec options come from lib/config, overridden by flags.
package document
