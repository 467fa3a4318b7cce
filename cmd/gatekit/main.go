// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the gatekit command-line application.
package main

import (
	"context"
	"os"
	"slices"

	"github.com/matt-FFFFFF/gatekit"
	"github.com/matt-FFFFFF/gatekit/internal/actions/fetchdeps"
	"github.com/matt-FFFFFF/gatekit/internal/actions/ignition"
	"github.com/matt-FFFFFF/gatekit/internal/actions/push"
	"github.com/matt-FFFFFF/gatekit/internal/actions/serve"
	"github.com/matt-FFFFFF/gatekit/internal/actions/usersetup"
	"github.com/matt-FFFFFF/gatekit/internal/argparse"
	"github.com/matt-FFFFFF/gatekit/internal/config"
	"github.com/matt-FFFFFF/gatekit/internal/confirm"
	"github.com/matt-FFFFFF/gatekit/internal/ctxlog"
	"github.com/matt-FFFFFF/gatekit/internal/dispatch"
	"github.com/matt-FFFFFF/gatekit/internal/proc"
	"github.com/matt-FFFFFF/gatekit/internal/registry"
	"github.com/matt-FFFFFF/gatekit/internal/signalbroker"
	"github.com/spf13/afero"
)

const toolName = "gatekit"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	// Raise verbosity before parsing so parser decisions are traced too.
	if debugRequested(argv) {
		ctxlog.EnableDebug()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	pc := argparse.Parse(ctx, argparse.Spec{}, argv)

	fs := afero.NewOsFs()

	cfg, err := config.Load(fs, "")
	if err != nil {
		ctxlog.Error(ctx, "configuration error", "error", err)
		return dispatch.ExitFailure
	}

	d := &dispatch.Dispatcher{
		Registry: registry.New(),
		Default:  "help",
		Tool:     toolName,
		Out:      os.Stdout,
		Err:      os.Stderr,
	}

	runner := proc.ExecRunner{}
	gate := confirm.Terminal{}

	acts := []registry.Action{
		serve.New(cfg, runner),
		ignition.New(cfg, fs, runner, gate),
		push.New(cfg, runner, gate),
		fetchdeps.New(cfg),
		usersetup.New(cfg, fs, runner),
		d.HelpAction(),
		d.VersionAction(gatekit.Version, gatekit.Commit),
	}

	for _, a := range acts {
		if err := d.Registry.Register(a); err != nil {
			ctxlog.Error(ctx, "action registration failed", "action", a.Name, "error", err)
			return dispatch.ExitFailure
		}
	}

	return d.Dispatch(ctx, pc)
}

// debugRequested pre-scans the raw arguments for --debug, stopping at the
// terminator. The real interpretation happens in the parser; this only
// decides whether parser tracing itself is visible.
func debugRequested(argv []string) bool {
	if i := slices.Index(argv, argparse.Terminator); i >= 0 {
		argv = argv[:i]
	}

	return slices.Contains(argv, argparse.FlagDebug)
}
