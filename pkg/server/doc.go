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

// Package server serves asset bundles over HTTP.
//
// # Architecture
//
// The server wraps a handler.Handler and exposes its bundles at
// fingerprinted URLs. Components:
//
//   - Rate limiting using a token bucket (golang.org/x/time/rate)
//   - Request ID tracking through the X-Request-Id header
//   - Panic recovery and structured request logging
//   - Graceful shutdown on SIGINT/SIGTERM and bundle reload on SIGHUP
//   - Health and readiness probes for Kubernetes
//
// # Usage
//
//	h, err := handler.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	return server.Run(ctx,
//	    server.WithBundles(h),
//	    server.WithVersion(version),
//	    server.WithReload(func(ctx context.Context) error {
//	        next, err := config.Load(path)
//	        if err != nil {
//	            return err
//	        }
//	        return h.Reload(ctx, next)
//	    }),
//	)
//
// # API Endpoints
//
// GET <contextPath>[/<prefix>]/<fingerprint>[.<variant>]/<bundle>
//
//	Serves bundle content. Responses carry an ETag of the fingerprint and
//	are cached for a year. A fingerprint that is no longer current is
//	served with the current content and "Cache-Control: no-cache".
//	Clients sending "Accept-Encoding: gzip" receive the pre-compressed body.
//
// GET /v1/reference?bundle=<id>[&locale=<locale>][&inline=true]
//
//	Resolves the URL of a bundle for the calling request. The variant is
//	negotiated from the locale parameter, cookies and Accept-Language.
//	Without a bundle parameter, every bundle is resolved.
//
// GET /v1/bundles
//
//	Lists the registered bundles with their members and variants.
//
// GET /health, GET /ready, GET /metrics
//
//	Liveness, readiness and Prometheus metrics.
//
// # Error Handling
//
// All errors return a consistent JSON structure:
//
//	{
//	  "code": "NOT_FOUND",
//	  "message": "unknown bundle /js/nope.js",
//	  "details": {"bundle": "/js/nope.js"},
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2026-01-12T12:00:00Z",
//	  "retryable": false
//	}
//
// Structured error codes map to HTTP status codes in HTTPStatusFromCode.
package server
