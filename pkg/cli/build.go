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
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/assetpipe/pkg/defaults"
	"github.com/NVIDIA/assetpipe/pkg/handler"
	"github.com/NVIDIA/assetpipe/pkg/processor"
	pconfig "github.com/NVIDIA/assetpipe/pkg/processor/config"
)

func buildCmd() *cli.Command {
	return &cli.Command{
		Name:                  "build",
		EnableShellCompletion: true,
		Usage:                 "Prebuild every bundle and variant to a directory",
		Description: `Builds every bundle for every combination of its variants and writes the
results to the output directory, laid out the way the server addresses them.

# Output

  - <fingerprint>/<variant>/<bundle>: bundle content
  - <fingerprint>/<variant>/<bundle>.gz: gzip copy (unless --no-gzip)
  - manifest.yaml: bundle references by variant
  - checksums.txt: SHA256 of every file (unless --no-checksums)

# Examples

Build to ./dist:
  assetpipe --config assetpipe.yaml build --output ./dist

Build with a JSON manifest and stop at the first failure:
  assetpipe build -o ./dist --manifest-format json --fail-fast`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "dist",
				Usage:   "Output directory",
			},
			&cli.StringFlag{
				Name:  "manifest-format",
				Value: pconfig.ManifestYAML,
				Usage: "Manifest format: yaml or json",
			},
			&cli.BoolFlag{
				Name:  "no-gzip",
				Usage: "Do not write gzip copies",
			},
			&cli.BoolFlag{
				Name:  "no-checksums",
				Usage: "Do not write checksums.txt",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Value: defaults.BuildConcurrency,
				Usage: "Maximum number of bundles built in parallel",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "Stop at the first failed bundle",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: defaults.CLIBuildTimeout,
				Usage: "Timeout for the whole build",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			h, err := handler.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to load bundles: %w", err)
			}

			pcfg := pconfig.NewConfig(
				pconfig.WithManifestFormat(cmd.String("manifest-format")),
				pconfig.WithCompression(!cmd.Bool("no-gzip")),
				pconfig.WithIncludeChecksums(!cmd.Bool("no-checksums")),
				pconfig.WithConcurrency(cmd.Int("concurrency")),
				pconfig.WithFailFast(cmd.Bool("fail-fast")),
				pconfig.WithVerbose(cfg.Debug),
				pconfig.WithVersion(version),
			)
			p, err := processor.New(h, processor.WithConfig(pcfg))
			if err != nil {
				return err
			}

			dir := cmd.String("output")
			slog.Info("building bundles",
				"output", dir,
				"bundles", h.Epoch().Registry().Count(),
				"concurrency", pcfg.Concurrency())

			out, err := p.Run(ctx, dir)
			if err != nil {
				slog.Error("build failed", "error", err)
				return err
			}

			slog.Info("bundles built",
				"variants", out.SuccessCount(),
				"files", out.TotalFiles,
				"size_bytes", out.TotalSize,
				"duration_sec", out.TotalDuration.Seconds(),
				"output_dir", out.OutputDir,
			)
			fmt.Fprintln(stdout(cmd), out.Summary())

			if out.HasErrors() {
				return fmt.Errorf("%d bundle variants failed: %s",
					out.FailureCount(), strings.Join(out.FailedBundles(), ", "))
			}
			return nil
		},
	}
}
