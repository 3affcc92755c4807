// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework behind the bsdf binary.
//
// A [Command] tree dispatches on the first positional argument. Leaf
// commands declare flags either directly with a pflag FlagSet or as a
// params struct whose fields carry flag, desc and default tags (see
// [BindFlags]). Unknown commands and flags produce Levenshtein-based
// suggestions, and --help prints the description, usage, commands,
// flags and examples of any command.
//
// Every Run function receives a context and the logger built by
// [NewCommandLogger]. Failures are returned as [ToolError] values
// carrying a category; [ExitError] signals a handled non-zero exit.
package cli
