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
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/assetpipe/pkg/handler"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

func resolveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "resolve",
		EnableShellCompletion: true,
		Usage:                 "Resolve bundle URLs for a request",
		Description: `Resolves the URL a page would reference for a bundle, building the bundle
when needed. Variants are negotiated from --locale and --cookie the way the
server negotiates them from a request.

# Examples

  assetpipe resolve --bundle /js/app.js --locale es
  assetpipe resolve --cookie skin=dark --format json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "bundle",
				Aliases: []string{"b"},
				Usage:   "Bundle ID (default: every bundle)",
			},
			&cli.StringFlag{
				Name:    "locale",
				Aliases: []string{"l"},
				Usage:   "Requested locale, e.g. es or en_US",
			},
			&cli.StringSliceFlag{
				Name:  "cookie",
				Usage: "Request cookie (format: name=value, can be repeated)",
			},
			&cli.BoolFlag{
				Name:  "inline",
				Usage: "Include the bundle content",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			rc, err := requestContext(cmd.String("locale"), cmd.StringSlice("cookie"))
			if err != nil {
				return err
			}

			w, err := newOutputWriter(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			h, err := handler.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to load bundles: %w", err)
			}

			var opts []handler.ResolveOption
			if cmd.Bool("inline") {
				opts = append(opts, handler.WithInline())
			}

			if id := cmd.String("bundle"); id != "" {
				ref, err := h.Resolve(ctx, id, rc, opts...)
				if err != nil {
					return err
				}
				return w.Serialize(ctx, ref)
			}
			refs, err := h.ResolveAll(ctx, rc, opts...)
			if err != nil {
				return err
			}
			return w.Serialize(ctx, refs)
		},
	}
}

func requestContext(locale string, cookies []string) (*variant.RequestContext, error) {
	rc := &variant.RequestContext{
		Locale:  locale,
		Cookies: make(map[string]string, len(cookies)),
	}
	for _, c := range cookies {
		k, v, ok := strings.Cut(c, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid cookie %q (format: name=value)", c)
		}
		rc.Cookies[k] = strings.TrimSpace(v)
	}
	return rc, nil
}
