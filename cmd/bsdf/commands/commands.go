// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete bsdf command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/bsdf/cmd/bsdf/cli"
	"github.com/bureau-foundation/bsdf/cmd/bsdf/document"
	"github.com/bureau-foundation/bsdf/lib/version"
)

// Root builds and returns the complete bsdf command tree.
func Root() *cli.Command {
	root := document.Command()
	root.Subcommands = append(root.Subcommands, versionCommand(os.Stdout))
	return root
}

type versionParams struct {
	Short bool `json:"short" flag:"short" desc:"print only the version number"`
}

func versionCommand(w io.Writer) *cli.Command {
	var params versionParams
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Params:  func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("version takes no arguments, got %q", args[0])
			}
			if params.Short {
				fmt.Fprintln(w, version.Short())
				return nil
			}
			fmt.Fprintf(w, "bsdf %s\n", version.Full())
			return nil
		},
	}
}
