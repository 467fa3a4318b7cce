// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package serve provides the action that runs the gateway services
// (matchbox and dnsmasq) as foreground containers.
package serve

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/gatekit/internal/config"
	"github.com/matt-FFFFFF/gatekit/internal/ctxlog"
	"github.com/matt-FFFFFF/gatekit/internal/proc"
	"github.com/matt-FFFFFF/gatekit/internal/registry"
)

const (
	matchboxName = "gatekit-matchbox"
	dnsmasqName  = "gatekit-dnsmasq"
)

// New creates the serve action. It starts dnsmasq detached, then blocks on a
// foreground matchbox container and propagates its exit status.
func New(cfg *config.Config, runner proc.Runner) registry.Action {
	return registry.Action{
		Name:  "serve",
		Short: "run the matchbox and dnsmasq gateway services",
		Long: `Starts the gateway services: a detached dnsmasq container providing
DHCP/DNS/TFTP on the host network, then a foreground matchbox container
serving rendered configs over HTTP and its gRPC API. Blocks until the
matchbox container exits and propagates its status.`,
		Handler: func(ctx context.Context, _ []string) error {
			gw := cfg.Gateway

			res := runner.Run(ctx, proc.Spec{
				Path: "docker",
				Args: []string{
					"run", "--rm", "--detach",
					"--name", dnsmasqName,
					"--cap-add=NET_ADMIN",
					"--net=host",
					gw.DnsmasqImage,
				},
			})
			if !res.Ok() {
				return fmt.Errorf("starting dnsmasq: %w", res.Err)
			}

			ctxlog.Info(ctx, "dnsmasq started", "image", gw.DnsmasqImage)
			ctxlog.Info(ctx, "starting matchbox in the foreground",
				"image", gw.MatchboxImage, "httpPort", gw.HTTPPort, "apiPort", gw.APIPort)

			res = runner.Run(ctx, proc.Spec{
				Path: "docker",
				Args: []string{
					"run", "--rm",
					"--name", matchboxName,
					"--net=host",
					"-v", fmt.Sprintf("%s:/var/lib/matchbox:Z", gw.DataDir),
					"-v", fmt.Sprintf("%s:/var/lib/matchbox/assets:Z", gw.AssetsDir),
					gw.MatchboxImage,
					fmt.Sprintf("-address=0.0.0.0:%d", gw.HTTPPort),
					fmt.Sprintf("-rpc-address=0.0.0.0:%d", gw.APIPort),
				},
				Interactive: true,
			})
			if !res.Ok() {
				return fmt.Errorf("matchbox exited: %w", res.Err)
			}

			return nil
		},
	}
}
