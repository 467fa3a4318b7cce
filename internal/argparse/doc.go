// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package argparse normalizes the process argument list into a canonical
// ParsedCommand: an action name, a debug flag, and the positional arguments
// for the action's handler.
//
// Parsing is deliberately tolerant. Only the global flags (-h/--help,
// --version, --debug) are interpreted; anything else that looks like a flag
// is passed through to the handler unchanged.
package argparse
