// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/assetpipe/pkg/handler"
	"github.com/NVIDIA/assetpipe/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Serve bundles over HTTP",
		Description: `Serves bundles at fingerprinted URLs under the configured context path and
exposes the reference API. Sending SIGHUP reloads the configuration file; a
configuration that fails to load keeps the current bundles.

# Examples

  assetpipe --config assetpipe.yaml serve --port 8080

The port also honors the PORT environment variable.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "Address to listen on (default: all interfaces)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (default: 8080)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			h, err := handler.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to load bundles: %w", err)
			}

			scfg := server.NewConfig()
			if cmd.IsSet("address") {
				scfg.Address = cmd.String("address")
			}
			if cmd.IsSet("port") {
				scfg.Port = cmd.Int("port")
			}

			return server.Run(ctx,
				server.WithConfig(scfg),
				server.WithName(name),
				server.WithVersion(version),
				server.WithBundles(h),
				server.WithReload(func(ctx context.Context) error {
					next, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return h.Reload(ctx, next)
				}),
			)
		},
	}
}
