// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/matt-FFFFFF/gatekit/internal/ctxlog"
)

var (
	// ErrCouldNotStart is returned when the process could not be started.
	ErrCouldNotStart = errors.New("could not start process")
	// ErrNonZeroExit is returned when the process exits with a non-zero status.
	ErrNonZeroExit = errors.New("process exited with non-zero status")
)

// waitDelay bounds how long Wait blocks on I/O after context cancellation
// has killed the child.
const waitDelay = 5 * time.Second

// Spec describes one external process invocation.
type Spec struct {
	// Path is the executable to run; resolved via PATH when not absolute.
	Path string
	// Args are the arguments, not including the executable name itself.
	Args []string
	// Env entries are appended to the inherited environment.
	Env map[string]string
	// Dir is the working directory; empty means the caller's.
	Dir string
	// Interactive inherits the caller's stdio instead of capturing output.
	// Used for foreground services that own the terminal.
	Interactive bool
}

// Line renders the invocation for diagnostics.
func (s Spec) Line() string {
	return strings.Join(append([]string{s.Path}, s.Args...), " ")
}

// Result is the outcome of one invocation. Output is captured only for
// non-interactive specs.
type Result struct {
	ExitCode int
	StdOut   []byte
	StdErr   []byte
	Err      error
}

// Ok reports whether the invocation succeeded.
func (r Result) Ok() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Runner executes external processes. Handlers depend on this interface so
// tests can substitute a recorder.
type Runner interface {
	Run(ctx context.Context, spec Spec) Result
}

var _ Runner = (*ExecRunner)(nil)

// ExecRunner runs processes via os/exec. Context cancellation kills the
// child; there is no supervisory timeout beyond that.
type ExecRunner struct{}

// Run implements the Runner interface.
func (ExecRunner) Run(ctx context.Context, spec Spec) Result {
	logger := ctxlog.Logger(ctx).With("runner", "exec")

	logger.Debug("process info", "path", spec.Path, "args", spec.Args, "dir", spec.Dir, "interactive", spec.Interactive)

	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...) //nolint:gosec // the whole point is running operator-chosen tools
	cmd.Dir = spec.Dir
	cmd.WaitDelay = waitDelay

	env := os.Environ()
	for k, v := range spec.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	cmd.Env = env

	var stdout, stderr bytes.Buffer

	if spec.Interactive {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()

	res := Result{
		StdOut: stdout.Bytes(),
		StdErr: stderr.Bytes(),
	}

	if err == nil {
		logger.Debug("process finished", "exitCode", 0)
		return res
	}

	var exitErr *exec.ExitError

	switch {
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		res.Err = fmt.Errorf("%w: %s: exit status %d", ErrNonZeroExit, spec.Path, res.ExitCode)

		if ctx.Err() != nil {
			res.Err = errors.Join(res.Err, ctx.Err())
		}
	default:
		res.ExitCode = -1
		res.Err = errors.Join(ErrCouldNotStart, err)
	}

	logger.Debug("process failed", "exitCode", res.ExitCode, "error", res.Err)

	return res
}
