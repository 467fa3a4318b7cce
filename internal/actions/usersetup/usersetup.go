// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package usersetup provides the action that installs the shared development
// environment into user home directories.
package usersetup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-getter/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/gatekit/internal/config"
	"github.com/matt-FFFFFF/gatekit/internal/ctxlog"
	"github.com/matt-FFFFFF/gatekit/internal/proc"
	"github.com/matt-FFFFFF/gatekit/internal/registry"
	"github.com/spf13/afero"
)

var (
	// ErrTooling is returned when the shared tooling cannot be downloaded.
	ErrTooling = errors.New("failed to fetch shared tooling")
	// ErrNoHome is returned when a target user has no home directory.
	ErrNoHome = errors.New("home directory does not exist")
)

const (
	// toolingProfileName is the canonical profile inside the tooling dir.
	toolingProfileName = "profile"
	// toolingToolsDir is the canonical tool directory inside the tooling dir.
	toolingToolsDir = "tools"

	fileMode = 0o644
	execMode = 0o755
)

// GetterClient downloads the shared tooling archive.
var GetterClient = &getter.Client{
	DisableSymlinks: true,
}

// fetchTooling downloads the shared tooling once per run. Variable so tests
// can stub the network away.
var fetchTooling = func(ctx context.Context, url, dst string) error {
	wd, err := os.Getwd()
	if err != nil {
		return errors.Join(ErrTooling, err)
	}

	req := &getter.Request{
		Src:     url,
		Dst:     dst,
		Pwd:     wd,
		GetMode: getter.ModeAny,
	}

	if _, err := GetterClient.Get(ctx, req); err != nil {
		return errors.Join(ErrTooling, err)
	}

	return nil
}

// New creates the user-setup action. Every target user is attempted
// independently; failures are collected and reported together at the end so
// one broken home directory cannot mask or abort the rest.
func New(cfg *config.Config, fs afero.Fs, runner proc.Runner) registry.Action {
	return registry.Action{
		Name:     "user-setup",
		Synopsis: "[<username>]",
		Short:    "install the development environment for one or all users",
		Long: `Downloads the shared tooling once, then installs it per user: replaces
the user's shell profile and per-user tool directory, then fixes ownership
and executable permissions.

With a username, only that user is set up. Without one, every directory
under the configured home root is treated as a user. Users are processed
independently: failures are collected and reported at the end, and the
action exits non-zero if any user failed.`,
		Handler: func(ctx context.Context, args []string) error {
			us := cfg.UserSetup

			if us.ToolingURL != "" {
				ctxlog.Info(ctx, "fetching shared tooling", "url", us.ToolingURL, "dst", us.ToolingDir)

				if err := fetchTooling(ctx, us.ToolingURL, us.ToolingDir); err != nil {
					return err
				}
			}

			users, err := targetUsers(fs, us.HomeRoot, args)
			if err != nil {
				return err
			}

			if len(users) == 0 {
				ctxlog.Warn(ctx, "no users found", "homeRoot", us.HomeRoot)
				return nil
			}

			var result *multierror.Error

			for _, user := range users {
				if err := setupUser(ctx, cfg, fs, runner, user); err != nil {
					ctxlog.Error(ctx, "user setup failed", "user", user, "error", err)
					result = multierror.Append(result, fmt.Errorf("user %s: %w", user, err))

					continue
				}

				ctxlog.Info(ctx, "user setup complete", "user", user)
			}

			return result.ErrorOrNil()
		},
	}
}

func targetUsers(fs afero.Fs, homeRoot string, args []string) ([]string, error) {
	if len(args) > 0 {
		return args[:1], nil
	}

	entries, err := afero.ReadDir(fs, homeRoot)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", homeRoot, err)
	}

	users := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			users = append(users, e.Name())
		}
	}

	return users, nil
}

func setupUser(ctx context.Context, cfg *config.Config, fs afero.Fs, runner proc.Runner, user string) error {
	us := cfg.UserSetup
	home := filepath.Join(us.HomeRoot, user)

	exists, err := afero.DirExists(fs, home)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("%w: %s", ErrNoHome, home)
	}

	profile, err := afero.ReadFile(fs, filepath.Join(us.ToolingDir, toolingProfileName))
	if err != nil {
		return fmt.Errorf("reading canonical profile: %w", err)
	}

	profilePath := filepath.Join(home, us.ProfileName)
	if err := afero.WriteFile(fs, profilePath, profile, fileMode); err != nil {
		return fmt.Errorf("replacing profile: %w", err)
	}

	toolsPath := filepath.Join(home, us.ToolsDirName)
	if err := fs.RemoveAll(toolsPath); err != nil {
		return fmt.Errorf("removing stale tools: %w", err)
	}

	if err := copyTree(fs, filepath.Join(us.ToolingDir, toolingToolsDir), toolsPath); err != nil {
		return fmt.Errorf("installing tools: %w", err)
	}

	ctxlog.Debug(ctx, "fixing ownership", "user", user, "paths", []string{profilePath, toolsPath})

	res := runner.Run(ctx, proc.Spec{
		Path: "chown",
		Args: []string{"-R", fmt.Sprintf("%s:%s", user, user), profilePath, toolsPath},
	})
	if !res.Ok() {
		return fmt.Errorf("fixing ownership for %s: %w", user, res.Err)
	}

	return nil
}

// copyTree copies the tooling tree, preserving each file's permissions so
// runnables stay executable and support files do not become so.
func copyTree(fs afero.Fs, src, dst string) error {
	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return fs.MkdirAll(target, execMode)
		}

		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}

		return afero.WriteFile(fs, target, data, info.Mode().Perm())
	})
}
