// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package usersetup

import (
	"context"
	"errors"
	"os"
	"slices"
	"testing"

	"github.com/matt-FFFFFF/gatekit/internal/config"
	"github.com/matt-FFFFFF/gatekit/internal/proc"
	"github.com/matt-FFFFFF/gatekit/internal/proc/proctest"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.UserSetup.HomeRoot = "/home"
	cfg.UserSetup.ToolingDir = "/opt/tooling"
	cfg.UserSetup.ToolingURL = "" // tests pre-populate the tooling dir

	return cfg
}

func testFs(t *testing.T, users ...string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()

	require.NoError(t, afero.WriteFile(fs, "/opt/tooling/profile", []byte("export PATH=$HOME/.local/tools:$PATH\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/opt/tooling/tools/kubectl-helper", []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, afero.WriteFile(fs, "/opt/tooling/tools/lib/common.sh", []byte("true\n"), 0o644))

	for _, u := range users {
		require.NoError(t, fs.MkdirAll("/home/"+u, 0o755))
	}

	return fs
}

func TestSetupAllUsers(t *testing.T) {
	fs := testFs(t, "alpha", "bravo")
	rec := &proctest.Recorder{}
	act := New(testConfig(), fs, rec)

	require.NoError(t, act.Handler(context.Background(), nil))

	for _, u := range []string{"alpha", "bravo"} {
		profile, err := afero.ReadFile(fs, "/home/"+u+"/.bash_profile")
		require.NoError(t, err)
		assert.Contains(t, string(profile), ".local/tools")

		tool, err := afero.ReadFile(fs, "/home/"+u+"/.local/tools/kubectl-helper")
		require.NoError(t, err)
		assert.Contains(t, string(tool), "#!/bin/sh")

		nested, err := afero.ReadFile(fs, "/home/"+u+"/.local/tools/lib/common.sh")
		require.NoError(t, err)
		assert.Equal(t, "true\n", string(nested))
	}

	// One chown per user.
	require.Len(t, rec.Calls, 2)
	assert.Equal(t, "chown", rec.Calls[0].Path)
	assert.Contains(t, rec.Calls[0].Args, "alpha:alpha")
	assert.Contains(t, rec.Calls[1].Args, "bravo:bravo")
}

func TestSetupSingleUser(t *testing.T) {
	fs := testFs(t, "alpha", "bravo")
	rec := &proctest.Recorder{}
	act := New(testConfig(), fs, rec)

	require.NoError(t, act.Handler(context.Background(), []string{"bravo"}))

	exists, err := afero.Exists(fs, "/home/alpha/.bash_profile")
	require.NoError(t, err)
	assert.False(t, exists, "only the named user may be touched")

	exists, err = afero.Exists(fs, "/home/bravo/.bash_profile")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestToolModesArePreserved(t *testing.T) {
	fs := testFs(t, "alpha")
	act := New(testConfig(), fs, &proctest.Recorder{})

	require.NoError(t, act.Handler(context.Background(), nil))

	info, err := fs.Stat("/home/alpha/.local/tools/kubectl-helper")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm(), "runnables keep their exec bit")

	info, err = fs.Stat("/home/alpha/.local/tools/lib/common.sh")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), "support files must not become executable")
}

func TestStaleToolsAreReplaced(t *testing.T) {
	fs := testFs(t, "alpha")
	require.NoError(t, afero.WriteFile(fs, "/home/alpha/.local/tools/stale-tool", []byte("old"), 0o755))

	act := New(testConfig(), fs, &proctest.Recorder{})

	require.NoError(t, act.Handler(context.Background(), nil))

	exists, err := afero.Exists(fs, "/home/alpha/.local/tools/stale-tool")
	require.NoError(t, err)
	assert.False(t, exists, "stale tool directory contents must be removed")
}

func TestOneUserFailureDoesNotAbortOthers(t *testing.T) {
	fs := testFs(t, "alpha", "bravo", "charlie")
	rec := &proctest.Recorder{
		Respond: func(spec proc.Spec) proc.Result {
			if slices.Contains(spec.Args, "bravo:bravo") {
				return proc.Result{ExitCode: 1, Err: errors.New("chown: invalid user")}
			}

			return proc.Result{}
		},
	}
	act := New(testConfig(), fs, rec)

	err := act.Handler(context.Background(), nil)

	require.Error(t, err, "a per-user failure must surface in the aggregate")
	assert.Contains(t, err.Error(), "user bravo")
	assert.NotContains(t, err.Error(), "user alpha")
	assert.NotContains(t, err.Error(), "user charlie")

	// All three users were attempted.
	require.Len(t, rec.Calls, 3)

	// The users after the failing one are fully set up.
	exists, ferr := afero.Exists(fs, "/home/charlie/.bash_profile")
	require.NoError(t, ferr)
	assert.True(t, exists)
}

func TestMissingHomeDirFailsThatUserOnly(t *testing.T) {
	fs := testFs(t, "alpha")
	rec := &proctest.Recorder{}
	act := New(testConfig(), fs, rec)

	err := act.Handler(context.Background(), []string{"ghost"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoHome)
}

func TestToolingFetchedWhenConfigured(t *testing.T) {
	fs := testFs(t, "alpha")

	cfg := testConfig()
	cfg.UserSetup.ToolingURL = "https://example.com/tooling.tar.gz"

	var gotURL, gotDst string

	defer gostub.Stub(&fetchTooling, func(_ context.Context, url, dst string) error {
		gotURL, gotDst = url, dst

		// Simulate the download by leaving the pre-populated dir in place.
		return nil
	}).Reset()

	act := New(cfg, fs, &proctest.Recorder{})

	require.NoError(t, act.Handler(context.Background(), nil))
	assert.Equal(t, "https://example.com/tooling.tar.gz", gotURL)
	assert.Equal(t, "/opt/tooling", gotDst)
}

func TestToolingFetchFailureAborts(t *testing.T) {
	fs := testFs(t, "alpha")

	cfg := testConfig()
	cfg.UserSetup.ToolingURL = "https://example.com/tooling.tar.gz"

	defer gostub.Stub(&fetchTooling, func(_ context.Context, _, _ string) error {
		return ErrTooling
	}).Reset()

	rec := &proctest.Recorder{}
	act := New(cfg, fs, rec)

	err := act.Handler(context.Background(), nil)

	require.ErrorIs(t, err, ErrTooling)
	assert.Empty(t, rec.Calls, "no user may be touched when the tooling fetch fails")
}

func TestNoUsersIsNoop(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/opt/tooling/profile", []byte("x"), 0o644))
	require.NoError(t, fs.MkdirAll("/home", 0o755))

	act := New(testConfig(), fs, &proctest.Recorder{})

	require.NoError(t, act.Handler(context.Background(), nil))
}
