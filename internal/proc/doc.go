// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package proc runs external processes (docker, ssh, rsync) on behalf of the
// action handlers. Invocations are synchronous and sequential; a handler
// blocks on each process before starting the next.
package proc
