// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package confirm

import (
	"errors"
	"strings"

	"github.com/peterh/liner"
)

// Confirmer answers a yes/no prompt. Handlers receive it as a capability so
// destructive operations can be gated interactively in production and
// deterministically in tests.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

var _ Confirmer = (*Terminal)(nil)

// Terminal prompts on the controlling terminal. Anything other than an
// explicit yes, including an aborted prompt (Ctrl+C), is a decline.
type Terminal struct{}

// Confirm implements the Confirmer interface.
func (Terminal) Confirm(prompt string) (bool, error) {
	line := liner.NewLiner()
	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)

	input, err := line.Prompt(prompt + " [y/N]: ")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return false, nil
		}

		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

var _ Confirmer = Fixed(false)

// Fixed is a Confirmer returning a fixed answer. It exists for tests and for
// non-interactive invocations that pre-decide the gate.
type Fixed bool

// Confirm implements the Confirmer interface.
func (f Fixed) Confirm(string) (bool, error) {
	return bool(f), nil
}
