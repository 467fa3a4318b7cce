// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package fetchdeps provides the action that downloads the fixed set of
// boot artifacts into the gateway's assets directory.
package fetchdeps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/gatekit/internal/config"
	"github.com/matt-FFFFFF/gatekit/internal/ctxlog"
	"github.com/matt-FFFFFF/gatekit/internal/registry"
)

// ErrFetch is returned when an artifact download fails.
var ErrFetch = errors.New("artifact download failed")

// GetterClient downloads artifacts. go-getter gives the artifact list
// checksum and archive handling for free via its URL syntax.
var GetterClient = &getter.Client{
	DisableSymlinks: true,
}

// New creates the fetch-deps action. Downloads are sequential and there is
// no retry: the first failure aborts the whole action.
func New(cfg *config.Config) registry.Action {
	return registry.Action{
		Name:  "fetch-deps",
		Short: "download the configured boot artifacts",
		Long: `Downloads every artifact named in the configuration into the gateway's
assets directory, where matchbox serves them to PXE-booting nodes. A single
failed download aborts the action; completed downloads are kept.`,
		Handler: func(ctx context.Context, _ []string) error {
			if len(cfg.Artifacts) == 0 {
				ctxlog.Warn(ctx, "no artifacts configured, nothing to fetch")
				return nil
			}

			wd, err := os.Getwd()
			if err != nil {
				return errors.Join(ErrFetch, err)
			}

			for _, a := range cfg.Artifacts {
				dst := filepath.Join(cfg.Gateway.AssetsDir, a.Name)

				ctxlog.Info(ctx, "fetching artifact", "name", a.Name, "url", a.URL, "dst", dst)

				req := &getter.Request{
					Src:     a.URL,
					Dst:     dst,
					Pwd:     wd,
					GetMode: getter.ModeFile,
				}

				if _, err := GetterClient.Get(ctx, req); err != nil {
					return fmt.Errorf("%w: %s: %v", ErrFetch, a.Name, err)
				}
			}

			ctxlog.Info(ctx, "all artifacts fetched", "count", len(cfg.Artifacts))

			return nil
		},
	}
}
