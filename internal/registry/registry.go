// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package registry

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrDuplicateAction is returned when an action name is registered twice.
	ErrDuplicateAction = errors.New("action already registered")
	// ErrReservedName is returned when an action name uses the reserved prefix.
	ErrReservedName = errors.New("action name uses reserved prefix")
	// ErrEmptyName is returned when an action is registered without a name.
	ErrEmptyName = errors.New("action name is empty")
	// ErrNilHandler is returned when an action is registered without a handler.
	ErrNilHandler = errors.New("action handler is nil")
	// ErrUsage is returned by handlers when required arguments are missing or
	// invalid. The dispatcher reports the action's usage text and performs no
	// part of the operation.
	ErrUsage = errors.New("usage")
)

// ReservedPrefix marks internal helper names that must never be exposed as
// actions.
const ReservedPrefix = "_"

// HandlerFunc is the executable logic behind an action. It receives the
// positional arguments that followed the action name on the command line.
type HandlerFunc func(ctx context.Context, args []string) error

// Action is a named, registered provisioning operation.
type Action struct {
	// Name is the unique action name typed on the command line.
	Name string
	// Synopsis is the argument synopsis, e.g. "<host> <mac>".
	Synopsis string
	// Short is a one-line description shown in the action listing.
	Short string
	// Long is the full description shown by "help <action>". Optional; the
	// short description is used when empty.
	Long string
	// Handler executes the action.
	Handler HandlerFunc
}

// Registry is a static table of actions, built once at process start and
// immutable afterwards by convention. Listing order is registration order.
type Registry struct {
	index map[string]Action
	order []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		index: make(map[string]Action),
	}
}

// Register adds an action to the registry. It fails on duplicate names,
// reserved names, empty names and nil handlers.
func (r *Registry) Register(a Action) error {
	if a.Name == "" {
		return ErrEmptyName
	}

	if len(a.Name) >= len(ReservedPrefix) && a.Name[:len(ReservedPrefix)] == ReservedPrefix {
		return fmt.Errorf("%w: %s", ErrReservedName, a.Name)
	}

	if a.Handler == nil {
		return fmt.Errorf("%w: %s", ErrNilHandler, a.Name)
	}

	if _, exists := r.index[a.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAction, a.Name)
	}

	r.index[a.Name] = a
	r.order = append(r.order, a.Name)

	return nil
}

// Lookup returns the action registered under name.
func (r *Registry) Lookup(name string) (Action, bool) {
	a, ok := r.index[name]
	return a, ok
}

// List returns all actions in registration order. The order is stable so the
// help listing reads most-relevant-first, not alphabetically.
func (r *Registry) List() []Action {
	out := make([]Action, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.index[name])
	}

	return out
}

// Names returns all action names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)

	return out
}
