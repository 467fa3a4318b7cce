// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package confirm provides the interactive yes/no gate used before
// destructive provisioning steps.
package confirm
