// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package push

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/gatekit/internal/config"
	"github.com/matt-FFFFFF/gatekit/internal/confirm"
	"github.com/matt-FFFFFF/gatekit/internal/proc"
	"github.com/matt-FFFFFF/gatekit/internal/proc/proctest"
	"github.com/matt-FFFFFF/gatekit/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMissingHostIsUsageError(t *testing.T) {
	rec := &proctest.Recorder{}
	act := New(config.Default(), rec, confirm.Fixed(false))

	err := act.Handler(context.Background(), nil)

	require.ErrorIs(t, err, registry.ErrUsage)
	assert.Empty(t, rec.Calls, "no remote calls on usage error")
}

func TestPushSequence(t *testing.T) {
	rec := &proctest.Recorder{}
	act := New(config.Default(), rec, confirm.Fixed(false))

	require.NoError(t, act.Handler(context.Background(), []string{"node1"}))

	lines := rec.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "ssh core@node1 sudo mkdir -p /opt/gatekit && sudo chown core /opt/gatekit", lines[0])
	assert.Equal(t, "rsync -az --delete ./ core@node1:/opt/gatekit/", lines[1])
	assert.Equal(t, "ssh core@node1 touch /opt/gatekit/ready", lines[2])
}

func TestPushFailFast(t *testing.T) {
	t.Run("directory ensure fails", func(t *testing.T) {
		rec := &proctest.Recorder{
			Respond: func(proc.Spec) proc.Result {
				return proc.Result{ExitCode: 255, Err: errors.New("connection refused")}
			},
		}
		act := New(config.Default(), rec, confirm.Fixed(false))

		err := act.Handler(context.Background(), []string{"node1"})
		require.Error(t, err)
		assert.Len(t, rec.Calls, 1)
	})

	t.Run("rsync fails, marker not touched", func(t *testing.T) {
		rec := &proctest.Recorder{}
		rec.Respond = func(spec proc.Spec) proc.Result {
			if spec.Path == "rsync" {
				return proc.Result{ExitCode: 23, Err: errors.New("partial transfer")}
			}

			return proc.Result{}
		}
		act := New(config.Default(), rec, confirm.Fixed(false))

		err := act.Handler(context.Background(), []string{"node1"})
		require.Error(t, err)

		for _, line := range rec.Lines() {
			assert.NotContains(t, line, "touch", "marker must not be touched after a failed sync")
		}
	})
}

func TestResyncZeroDelayIsErrorNotPanic(t *testing.T) {
	for _, seconds := range []int{0, -1} {
		cfg := config.Default()
		cfg.Push.ResyncSeconds = seconds

		rec := &proctest.Recorder{}
		act := New(cfg, rec, confirm.Fixed(true))

		err := act.Handler(context.Background(), []string{"node1"})

		require.ErrorIs(t, err, ErrResyncDelay)
	}
}

func TestResyncLoopRunsUntilInterrupted(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := config.Default()
	cfg.Push.ResyncSeconds = 1

	var mu sync.Mutex

	rsyncs := 0
	rec := &proctest.Recorder{
		Respond: func(spec proc.Spec) proc.Result {
			mu.Lock()
			defer mu.Unlock()

			if spec.Path == "rsync" {
				rsyncs++
			}

			return proc.Result{}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	act := New(cfg, rec, confirm.Fixed(true))

	done := make(chan error, 1)

	go func() {
		done <- act.Handler(ctx, []string{"node1"})
	}()

	// Let at least one loop iteration happen, then interrupt.
	time.Sleep(1500 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err, "interruption is a clean exit")
	case <-time.After(5 * time.Second):
		t.Fatal("resync loop did not stop on cancellation")
	}

	mu.Lock()
	defer mu.Unlock()

	assert.GreaterOrEqual(t, rsyncs, 2, "initial sync plus at least one resync iteration")
}

func TestResyncLoopAbortsOnSyncFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := config.Default()
	cfg.Push.ResyncSeconds = 1

	var mu sync.Mutex

	rsyncs := 0
	rec := &proctest.Recorder{
		Respond: func(spec proc.Spec) proc.Result {
			mu.Lock()
			defer mu.Unlock()

			if spec.Path == "rsync" {
				rsyncs++
				if rsyncs > 1 {
					return proc.Result{ExitCode: 12, Err: errors.New("remote disk full")}
				}
			}

			return proc.Result{}
		},
	}

	act := New(cfg, rec, confirm.Fixed(true))

	done := make(chan error, 1)

	go func() {
		done <- act.Handler(context.Background(), []string{"node1"})
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "synchronizing"))
	case <-time.After(10 * time.Second):
		t.Fatal("loop did not abort on sync failure")
	}
}
