// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package registry provides the static action table mapping action names to
// descriptions and handlers. Actions are registered explicitly at process
// start; nothing is discovered at runtime.
package registry
