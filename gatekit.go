// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package gatekit provides the version and commit information for the gatekit application.
package gatekit

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)
