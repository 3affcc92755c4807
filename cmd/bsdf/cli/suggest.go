// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// suggestThreshold is one more than the largest edit distance that
// still produces a suggestion.
const suggestThreshold = 4

// suggestCommand returns the name of the closest matching subcommand to
// the unknown input, or "" if nothing is within three edits.
func suggestCommand(unknown string, commands []*Command) string {
	bestName := ""
	bestDistance := suggestThreshold

	for _, command := range commands {
		distance := levenshtein(unknown, command.Name)
		if distance < bestDistance {
			bestDistance = distance
			bestName = command.Name
		}
	}

	return bestName
}

// suggestFlag finds the first flag in args that flagSet does not define
// and returns the closest defined flag, with its "--" or "-" prefix.
// Returns "" if no good suggestion is found.
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			continue
		}

		long := strings.HasPrefix(arg, "--")
		name := strings.TrimLeft(arg, "-")
		if index := strings.IndexByte(name, '='); index >= 0 {
			name = name[:index]
		}

		if long && flagSet.Lookup(name) != nil {
			continue
		}
		if !long && definedShorthands(flagSet, name) {
			continue
		}
		// A lone unknown shorthand is too short to match anything well.
		if len(name) == 1 {
			break
		}

		bestName := ""
		bestDistance := suggestThreshold
		flagSet.VisitAll(func(candidate *pflag.Flag) {
			distance := levenshtein(name, candidate.Name)
			if distance < bestDistance {
				bestDistance = distance
				bestName = candidate.Name
			}
		})

		if bestName != "" {
			return "--" + bestName
		}

		// Only check the first unrecognized flag.
		break
	}

	return ""
}

// definedShorthands reports whether every letter of a "-cx" bundle is a
// defined shorthand.
func definedShorthands(flagSet *pflag.FlagSet, bundle string) bool {
	if bundle == "" {
		return false
	}
	for _, letter := range bundle {
		if letter > 127 || flagSet.ShorthandLookup(string(letter)) == nil {
			return false
		}
	}
	return true
}

// levenshtein computes the Levenshtein edit distance between two strings:
// the minimum number of single-character insertions, deletions or
// substitutions that turn one into the other.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// A single row of the distance matrix, so space is O(min(m,n)).
	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}

	for j := 1; j <= len(b); j++ {
		current := make([]int, len(a)+1)
		current[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[i] = min(previous[i]+1, current[i-1]+1, previous[i-1]+cost)
		}

		previous = current
	}

	return previous[len(a)]
}
