// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package proctest provides a proc.Runner recorder for handler tests.
package proctest

import (
	"context"

	"github.com/matt-FFFFFF/gatekit/internal/proc"
)

var _ proc.Runner = (*Recorder)(nil)

// Recorder is a proc.Runner that records every invocation instead of
// executing it. Respond, when set, decides the result per invocation;
// otherwise every invocation succeeds.
type Recorder struct {
	Calls   []proc.Spec
	Respond func(spec proc.Spec) proc.Result
}

// Run implements the proc.Runner interface.
func (r *Recorder) Run(_ context.Context, spec proc.Spec) proc.Result {
	r.Calls = append(r.Calls, spec)

	if r.Respond != nil {
		return r.Respond(spec)
	}

	return proc.Result{}
}

// Lines renders the recorded invocations for assertions.
func (r *Recorder) Lines() []string {
	out := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		out = append(out, c.Line())
	}

	return out
}
