// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color provides ANSI control codes for colored console output.
// It honors the NO_COLOR and FORCE_COLOR environment variables and falls
// back to terminal detection on stdout.
package color
