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

// Package logging configures log/slog for assetpipe.
//
// Records are written to stderr as JSON and carry the module and version
// of the emitting binary. Debug level adds the source location.
//
//	logging.SetDefaultStructuredLoggerWithLevel("assetpipe", version, "debug")
//	slog.Info("bundles built", "variants", 12, "output_dir", "dist")
//
// produces
//
//	{"time":"...","level":"INFO","msg":"bundles built","module":"assetpipe","version":"v1.0.0","variants":12,"output_dir":"dist"}
//
// Level names are case-insensitive: debug, info, warn (or warning) and
// error. Unknown names select info. SetDefaultStructuredLogger reads the
// level from the LOG_LEVEL environment variable.
//
// NewLogLogger adapts slog to a standard library *log.Logger for APIs such
// as http.Server.ErrorLog.
package logging
