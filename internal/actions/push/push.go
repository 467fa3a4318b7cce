// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package push provides the action that synchronizes the local working tree
// to a remote host and marks it ready.
package push

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/matt-FFFFFF/gatekit/internal/config"
	"github.com/matt-FFFFFF/gatekit/internal/confirm"
	"github.com/matt-FFFFFF/gatekit/internal/ctxlog"
	"github.com/matt-FFFFFF/gatekit/internal/proc"
	"github.com/matt-FFFFFF/gatekit/internal/registry"
)

// ErrResyncDelay is returned when the configured resync delay is not positive.
var ErrResyncDelay = errors.New("resync delay must be positive")

// New creates the push action. The readiness marker is the cross-process
// contract with the remote watcher: it is touched only after a completed
// sync, and the watcher renames it to ready.processed once consumed.
func New(cfg *config.Config, runner proc.Runner, confirmer confirm.Confirmer) registry.Action {
	return registry.Action{
		Name:     "push",
		Synopsis: "<host>",
		Short:    "push the local working tree to a remote host",
		Long: `Ensures the remote directory exists and is owned by the push user,
synchronizes the local working tree to it over rsync, then touches the
readiness marker for the remote watcher.

Afterwards, optionally enters a continuous resynchronization loop with a
fixed delay between iterations. The loop runs until interrupted.`,
		Handler: func(ctx context.Context, args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("%w: host is required", registry.ErrUsage)
			}

			host := args[0]
			target := fmt.Sprintf("%s@%s", cfg.Push.User, host)

			res := runner.Run(ctx, proc.Spec{
				Path: "ssh",
				Args: []string{
					target,
					fmt.Sprintf("sudo mkdir -p %s && sudo chown %s %s", cfg.Push.Dir, cfg.Push.User, cfg.Push.Dir),
				},
			})
			if !res.Ok() {
				return fmt.Errorf("ensuring remote directory on %s: %w", host, res.Err)
			}

			if err := syncOnce(ctx, cfg, runner, target); err != nil {
				return err
			}

			ctxlog.Info(ctx, "push complete", "host", host, "dir", cfg.Push.Dir)

			ok, err := confirmer.Confirm(fmt.Sprintf("Continuously resync to %s until interrupted?", host))
			if err != nil {
				return err
			}

			if !ok {
				return nil
			}

			return resyncLoop(ctx, cfg, runner, target)
		},
	}
}

// syncOnce pushes the working tree and touches the readiness marker.
// Fail-fast: the marker is never touched after a failed sync.
func syncOnce(ctx context.Context, cfg *config.Config, runner proc.Runner, target string) error {
	res := runner.Run(ctx, proc.Spec{
		Path: "rsync",
		Args: []string{"-az", "--delete", "./", fmt.Sprintf("%s:%s/", target, cfg.Push.Dir)},
	})
	if !res.Ok() {
		return fmt.Errorf("synchronizing to %s: %w", target, res.Err)
	}

	marker := path.Join(cfg.Push.Dir, cfg.Push.ReadyMarker)

	res = runner.Run(ctx, proc.Spec{
		Path: "ssh",
		Args: []string{target, fmt.Sprintf("touch %s", marker)},
	})
	if !res.Ok() {
		return fmt.Errorf("marking %s ready: %w", target, res.Err)
	}

	return nil
}

// resyncLoop repeats syncOnce with a fixed delay until the context is
// cancelled. Interruption is a clean exit, not an error; a failed sync
// aborts the loop.
func resyncLoop(ctx context.Context, cfg *config.Config, runner proc.Runner, target string) error {
	delay := time.Duration(cfg.Push.ResyncSeconds) * time.Second
	if delay <= 0 {
		// Guarded here as well as at config load; NewTicker panics otherwise.
		return fmt.Errorf("%w: %s", ErrResyncDelay, delay)
	}

	ctxlog.Info(ctx, "entering resync loop", "target", target, "delay", delay)

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ctxlog.Info(ctx, "resync loop interrupted", "target", target)
			return nil
		case <-ticker.C:
			if err := syncOnce(ctx, cfg, runner, target); err != nil {
				return err
			}

			ctxlog.Debug(ctx, "resync iteration complete", "target", target)
		}
	}
}
