// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/gatekit/internal/ctxlog"
)

// Watch monitors the signal channel and handles signals.
// The first signal of a given type cancels the context, which unwinds any
// running handler (interrupting a resync loop or a foreground container).
// A second signal of the same type closes the channel and returns, so a
// stuck handler cannot swallow repeated interrupts.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	sigMap := make(map[os.Signal]struct{})
	for sig := range sigCh {
		if _, ok := sigMap[sig]; ok {
			ctxlog.Logger(ctx).Info("watchdog", "detail", "received second signal of type, forcefully terminating", "signal", sig.String())
			close(sigCh)

			return
		}

		ctxlog.Logger(ctx).Info("watchdog", "detail", "received first signal of type, cancelling context", "signal", sig.String())
		sigMap[sig] = struct{}{}
		cancel()
	}
}
