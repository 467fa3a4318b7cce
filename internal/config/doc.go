// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads the YAML tool configuration: gateway images and
// ports, push target, artifact list, and user-setup locations.
package config
