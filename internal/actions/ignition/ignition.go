// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ignition provides the action that fetches a rendered ignition
// config from the gateway and optionally installs it to a node's disk.
package ignition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/matt-FFFFFF/gatekit/internal/config"
	"github.com/matt-FFFFFF/gatekit/internal/confirm"
	"github.com/matt-FFFFFF/gatekit/internal/ctxlog"
	"github.com/matt-FFFFFF/gatekit/internal/proc"
	"github.com/matt-FFFFFF/gatekit/internal/registry"
	"github.com/spf13/afero"
)

var (
	// ErrFetch is returned when the rendered config cannot be fetched.
	ErrFetch = errors.New("fetch failed")
)

// HTTPClient performs the fetch. Package variable so tests can substitute a
// test server client. Deliberately no timeout: a hung gateway hangs the tool.
var HTTPClient = &http.Client{}

// OutputName is the local file the rendered config is written to.
var OutputName = "ignition.json"

const installDevice = "/dev/sda"

// RenderURL builds the gateway URL for a node's rendered config. The
// hardware identifier is normalized by rewriting colons to dashes.
func RenderURL(host string, port int, hardwareID string) string {
	mac := strings.ReplaceAll(hardwareID, ":", "-")
	return fmt.Sprintf("http://%s:%d/ignition?mac=%s&os=installed", host, port, mac)
}

// New creates the ignition action. On fetch success it offers a destructive
// disk install on the node, guarded by two explicit confirmations.
func New(cfg *config.Config, fs afero.Fs, runner proc.Runner, confirmer confirm.Confirmer) registry.Action {
	return registry.Action{
		Name:     "ignition",
		Synopsis: "<host> <mac>",
		Short:    "fetch a node's rendered ignition config from the gateway",
		Long: `Builds the gateway URL for the node identified by <mac>, fetches the
rendered ignition config and writes it to ` + OutputName + `.

On success, offers to install the operating system to the node's disk over
ssh. The install wipes the target disk and therefore requires two explicit
confirmations; declining either leaves the node untouched.`,
		Handler: func(ctx context.Context, args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("%w: host and hardware id are required", registry.ErrUsage)
			}

			host, hardwareID := args[0], args[1]
			url := RenderURL(host, cfg.Gateway.HTTPPort, hardwareID)

			ctxlog.Debug(ctx, "fetching rendered config", "url", url)

			body, err := fetch(ctx, url)
			if err != nil {
				return err
			}

			if err := afero.WriteFile(fs, OutputName, body, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", OutputName, err)
			}

			ctxlog.Info(ctx, "rendered config written", "file", OutputName, "bytes", len(body))

			return offerInstall(ctx, host, url, cfg, runner, confirmer)
		},
	}
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", ErrFetch, url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	return body, nil
}

// offerInstall is the two-step confirm gate in front of the disk install.
// There is no path back once the install starts.
func offerInstall(
	ctx context.Context,
	host, url string,
	cfg *config.Config,
	runner proc.Runner,
	confirmer confirm.Confirmer,
) error {
	ok, err := confirmer.Confirm(fmt.Sprintf("Install the operating system to disk on %s?", host))
	if err != nil {
		return err
	}

	if !ok {
		ctxlog.Debug(ctx, "install declined", "host", host)
		return nil
	}

	ok, err = confirmer.Confirm(fmt.Sprintf("This wipes %s on %s. Continue?", installDevice, host))
	if err != nil {
		return err
	}

	if !ok {
		ctxlog.Debug(ctx, "install declined at second confirmation", "host", host)
		return nil
	}

	ctxlog.Info(ctx, "installing to disk", "host", host, "device", installDevice)

	res := runner.Run(ctx, proc.Spec{
		Path: "ssh",
		Args: []string{
			fmt.Sprintf("%s@%s", cfg.Push.User, host),
			fmt.Sprintf("sudo coreos-installer install %s --ignition-url %s", installDevice, url),
		},
	})
	if !res.Ok() {
		return fmt.Errorf("disk install on %s: %w", host, res.Err)
	}

	return nil
}
