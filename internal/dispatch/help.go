// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/gatekit/internal/color"
	"github.com/matt-FFFFFF/gatekit/internal/registry"
)

const listingPad = 24

// HelpAction returns the built-in help action. With no arguments it lists
// every registered action with its usage banner, in registration order. With
// an action name it prints that action's full description.
func (d *Dispatcher) HelpAction() registry.Action {
	return registry.Action{
		Name:     "help",
		Synopsis: "[<action>]",
		Short:    "print the action listing, or one action's description",
		Handler: func(_ context.Context, args []string) error {
			if len(args) == 0 {
				d.writeListing()
				return nil
			}

			act, ok := d.Registry.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownAction, args[0])
			}

			d.writeDescription(act)

			return nil
		},
	}
}

// VersionAction returns the built-in version action.
func (d *Dispatcher) VersionAction(version, commit string) registry.Action {
	return registry.Action{
		Name:  "version",
		Short: "print the version",
		Handler: func(_ context.Context, _ []string) error {
			fmt.Fprintf(d.Out, "%s %s (%s)\n", d.Tool, version, commit)
			return nil
		},
	}
}

func (d *Dispatcher) writeListing() {
	fmt.Fprintf(d.Out, "usage: %s [-h|--help] [--version] [--debug] [<action> [<args...>]]\n\nactions:\n", d.Tool)

	for _, a := range d.Registry.List() {
		banner := a.Name
		if a.Synopsis != "" {
			banner = fmt.Sprintf("%s %s", a.Name, a.Synopsis)
		}

		// Pad before colorizing so the escape codes don't skew the columns.
		fmt.Fprintf(d.Out, "  %s %s\n", color.Colorize(fmt.Sprintf("%-*s", listingPad, banner), color.Bold), a.Short)
	}
}

func (d *Dispatcher) writeDescription(a registry.Action) {
	fmt.Fprintf(d.Out, "usage: %s\n\n", d.usageLine(a))

	desc := a.Long
	if desc == "" {
		desc = a.Short
	}

	fmt.Fprintf(d.Out, "%s\n", desc)
}
