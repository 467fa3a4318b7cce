// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package dispatch resolves a parsed command to a registered action and runs
// it, substituting the default action when none is given. It also provides
// the built-in help and version actions, which render from the registry.
package dispatch
