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

// Package cli implements the assetpipe command line.
//
// # Commands
//
// build - Prebuild every bundle and variant:
//
//	assetpipe --config assetpipe.yaml build --output ./dist
//
// Writes each bundle variant under <fingerprint>/<variant>/<bundle> with a
// gzip copy, a manifest of bundle references and a checksums file.
//
// serve - Serve bundles over HTTP:
//
//	assetpipe --config assetpipe.yaml serve --port 8080
//
// SIGHUP reloads the configuration file.
//
// list - List bundles with their members and variants:
//
//	assetpipe list --format table
//
// resolve - Resolve bundle URLs for a request:
//
//	assetpipe resolve --bundle /js/app.js --locale es
//
// verify - Verify the checksums of a build directory:
//
//	assetpipe verify ./dist
//
// # Global Flags
//
//	--config, -c   Configuration file (default: assetpipe.yaml, env ASSETPIPE_CONFIG)
//	--log-level    Log level: debug, info, warn, error (env LOG_LEVEL)
//	--debug        Serve unminified members (overrides the config file)
//
// # Output Formats
//
// list and resolve accept --format yaml (default), json or table, and
// --output to write to a file instead of stdout.
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/assetpipe/pkg/cli.version=1.0.0'"
package cli
