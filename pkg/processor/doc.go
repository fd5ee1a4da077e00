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

// Package processor builds bundles ahead of time.
//
// Run builds every variant combination of every bundle with bounded
// concurrency and writes the content, gzip copies, a manifest mapping
// bundles to their URLs and a checksum file:
//
//	p, err := processor.New(h, processor.WithConfig(config.NewConfig(
//	    config.WithConcurrency(4),
//	)))
//	if err != nil {
//	    return err
//	}
//	out, err := p.Run(ctx, "dist")
//
// Alternate bundles are listed in the manifest but never built.
package processor
