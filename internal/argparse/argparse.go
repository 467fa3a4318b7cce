// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package argparse

import (
	"context"
	"strings"

	"github.com/matt-FFFFFF/gatekit/internal/ctxlog"
)

// Terminator ends flag parsing. Every token after it is positional, verbatim.
const Terminator = "--"

// Global flags recognized by the parser. Any other flag-shaped token is
// passed through to the handler as a positional argument.
const (
	FlagHelp      = "--help"
	FlagHelpShort = "-h"
	FlagVersion   = "--version"
	FlagDebug     = "--debug"
)

// Spec declares the parser's knowledge about short flags.
type Spec struct {
	// ValueShorts lists the short flag letters that require a value. When
	// such a letter appears inside a combined token, the remainder of the
	// token becomes the value ("-oVALUE" normalizes to "-o VALUE").
	ValueShorts string
}

// ParsedCommand is the canonical result of parsing a process argument list.
// It is created once per invocation and handed to the dispatcher; no parse
// state lives anywhere else.
type ParsedCommand struct {
	// Action is the requested action name, or empty when none was supplied.
	Action string
	// Debug indicates that --debug was present.
	Debug bool
	// Args are the positional arguments for the action handler.
	Args []string
}

// Normalize rewrites the raw argument list into canonical tokens:
//
//   - combined short flags are expanded ("-ab" -> "-a" "-b")
//   - a declared value-carrying short flag absorbs the token remainder
//     ("-oVALUE" -> "-o" "VALUE")
//   - "--flag=value" is split into "--flag" "value", the value verbatim
//   - everything after the bare terminator is untouched
func Normalize(spec Spec, argv []string) []string {
	out := make([]string, 0, len(argv))
	rest := false

	for _, tok := range argv {
		if rest {
			out = append(out, tok)
			continue
		}

		switch {
		case tok == Terminator:
			rest = true

			out = append(out, tok)
		case strings.HasPrefix(tok, "--"):
			if name, value, found := strings.Cut(tok, "="); found {
				out = append(out, name, value)
				continue
			}

			out = append(out, tok)
		case len(tok) > 1 && tok[0] == '-':
			out = append(out, expandShorts(spec, tok)...)
		default:
			out = append(out, tok)
		}
	}

	return out
}

// expandShorts expands a combined short-flag token ("-abc") into individual
// flags. A letter declared in ValueShorts consumes the rest of the token as
// its value.
func expandShorts(spec Spec, tok string) []string {
	out := make([]string, 0, len(tok)-1)
	body := []rune(tok[1:])

	for i, r := range body {
		out = append(out, "-"+string(r))

		if strings.ContainsRune(spec.ValueShorts, r) {
			if i+1 < len(body) {
				out = append(out, string(body[i+1:]))
			}

			break
		}
	}

	return out
}

// Parse turns the raw process arguments (excluding the program name) into a
// ParsedCommand. The first non-flag token that is not consumed as a flag
// value becomes the action name; every following token is positional.
// Unrecognized flags are tolerated and passed through as positionals.
func Parse(ctx context.Context, spec Spec, argv []string) ParsedCommand {
	toks := Normalize(spec, argv)
	pc := ParsedCommand{Args: []string{}}

	var forced string

	rest := false

	for i := 0; i < len(toks); i++ {
		tok := toks[i]

		if rest {
			pc.Args = append(pc.Args, tok)
			continue
		}

		switch {
		case tok == Terminator:
			ctxlog.Debug(ctx, "argparse: flag parsing terminated", "index", i)

			rest = true
		case tok == FlagHelp || tok == FlagHelpShort:
			if forced == "" {
				forced = "help"
			}

			ctxlog.Debug(ctx, "argparse: forcing action", "action", "help")
		case tok == FlagVersion:
			if forced == "" {
				forced = "version"
			}

			ctxlog.Debug(ctx, "argparse: forcing action", "action", "version")
		case tok == FlagDebug:
			pc.Debug = true
		case len(tok) > 1 && tok[0] == '-':
			// Unknown flag: tolerated, handed to the handler verbatim.
			ctxlog.Debug(ctx, "argparse: unknown flag kept as positional", "token", tok)

			pc.Args = append(pc.Args, tok)

			// A declared value short keeps its value attached to it, so the
			// value can never be mistaken for the action name.
			if isValueShort(spec, tok) && i+1 < len(toks) && toks[i+1] != Terminator {
				i++

				pc.Args = append(pc.Args, toks[i])
			}
		case pc.Action == "" && forced == "":
			ctxlog.Debug(ctx, "argparse: action selected", "action", tok)

			pc.Action = tok
		default:
			pc.Args = append(pc.Args, tok)
		}
	}

	if forced != "" {
		// A forced action demotes any previously selected action name to the
		// first positional, so "gatekit push -h" renders push's help.
		if pc.Action != "" {
			pc.Args = append([]string{pc.Action}, pc.Args...)
		}

		pc.Action = forced
	}

	return pc
}

func isValueShort(spec Spec, tok string) bool {
	if len(tok) != 2 || tok[0] != '-' {
		return false
	}

	return strings.ContainsRune(spec.ValueShorts, rune(tok[1]))
}
