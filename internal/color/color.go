// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	sbPadding = 16 // padding for the strings.Builder
)

// Code represents an ANSI control code for text formatting.
type Code int

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"
	reset      = "\033[0m"
	prefix     = "\033["
	suffix     = "m"
)

// Control codes for text formatting.
const (
	Reset Code = iota
	Bold
	Faint
	Italic
	Underline
)

// Foreground text colors.
const (
	FgBlack Code = iota + 30
	FgRed
	FgGreen
	FgYellow
	FgBlue
	FgMagenta
	FgCyan
	FgWhite
)

// Foreground Hi-Intensity text colors.
const (
	FgHiBlack Code = iota + 90
	FgHiRed
	FgHiGreen
	FgHiYellow
	FgHiBlue
	FgHiMagenta
	FgHiCyan
	FgHiWhite
)

var enabled bool

func init() {
	enabled = isColorEnabled()
}

// Colorize returns a string with ANSI color codes applied.
// It appends the reset code at the end of the string to reset the color.
func Colorize(str string, colorCodes ...Code) string {
	// If color output is not enabled, return the string as is
	if !enabled {
		return str
	}

	sb := strings.Builder{}
	sb.Grow(len(str) + len(prefix) + len(suffix) + len(reset) + sbPadding)
	sb.WriteString(prefix)

	for i, code := range colorCodes {
		if i > 0 && i < len(colorCodes) {
			sb.WriteString(";")
		}

		sb.WriteString(strconv.Itoa(int(code)))
	}

	sb.WriteString(suffix)
	sb.WriteString(str)
	sb.WriteString(reset)

	return sb.String()
}

// Enabled reports whether color output is enabled.
// It is initialized in package init().
//
// It is set to false if the NO_COLOR environment variable is set, to true if
// the FORCE_COLOR environment variable is set, and otherwise follows terminal
// detection via the golang.org/x/term package.
func Enabled() bool {
	return enabled
}

func isColorEnabled() bool {
	if nc := os.Getenv(NoColor); nc != "" {
		return false
	}

	if fc := os.Getenv(ForceColor); fc != "" {
		return true
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}
