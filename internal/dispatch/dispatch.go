// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/gatekit/internal/argparse"
	"github.com/matt-FFFFFF/gatekit/internal/ctxlog"
	"github.com/matt-FFFFFF/gatekit/internal/registry"
)

// ErrUnknownAction is returned when an action name is not in the registry.
var ErrUnknownAction = errors.New("unknown action")

// Exit statuses. Every failure is uniform; there is no exit-code taxonomy.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Dispatcher resolves an action name to its handler and invokes it.
type Dispatcher struct {
	// Registry holds the registered actions.
	Registry *registry.Registry
	// Default is the action name used when none is supplied. It must be a
	// registered action.
	Default string
	// Tool is the executable name used in usage text.
	Tool string
	// Out is the primary output stream.
	Out io.Writer
	// Err is the diagnostic stream.
	Err io.Writer
}

// Dispatch resolves and runs the parsed command, returning the process exit
// status. An unknown action is process-fatal: it reports the name together
// with the known actions and no handler runs.
func (d *Dispatcher) Dispatch(ctx context.Context, pc argparse.ParsedCommand) int {
	if pc.Debug {
		ctxlog.EnableDebug()
	}

	name := pc.Action
	if name == "" {
		ctxlog.Debug(ctx, "no action supplied, using default", "default", d.Default)

		name = d.Default
	}

	act, ok := d.Registry.Lookup(name)
	if !ok {
		fmt.Fprintf(d.Err, "%s: %q\n\nknown actions:\n", ErrUnknownAction.Error(), name)

		for _, n := range d.Registry.Names() {
			fmt.Fprintf(d.Err, "  %s\n", n)
		}

		return ExitFailure
	}

	ctxlog.Debug(ctx, "dispatching", "action", act.Name, "args", pc.Args)

	if err := act.Handler(ctx, pc.Args); err != nil {
		if errors.Is(err, registry.ErrUsage) {
			fmt.Fprintf(d.Err, "usage: %s\n", d.usageLine(act))
		}

		ctxlog.Error(ctx, "action failed", "action", act.Name, "error", err)

		return ExitFailure
	}

	ctxlog.Debug(ctx, "action completed", "action", act.Name)

	return ExitSuccess
}

func (d *Dispatcher) usageLine(a registry.Action) string {
	if a.Synopsis == "" {
		return fmt.Sprintf("%s %s", d.Tool, a.Name)
	}

	return fmt.Sprintf("%s %s %s", d.Tool, a.Name, a.Synopsis)
}
