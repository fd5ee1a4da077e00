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
	"github.com/NVIDIA/assetpipe/pkg/header"
)

type bundleList struct {
	header.Header `json:",inline" yaml:",inline"`

	Bundles []*handler.BundleInfo `json:"bundles" yaml:"bundles"`
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:                  "list",
		EnableShellCompletion: true,
		Usage:                 "List bundles with their members and variants",
		Flags: []cli.Flag{
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
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
			return w.Serialize(ctx, &bundleList{
				Header:  *header.New(header.KindBundleList, version),
				Bundles: h.Bundles(),
			})
		},
	}
}
