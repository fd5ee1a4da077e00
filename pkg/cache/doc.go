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

// Package cache builds bundles and caches the results.
//
// Engine.GetOrBuild joins the members of a bundle for a variant tuple, runs
// the per-unit and per-bundle postprocessor chains and keeps the result,
// plain and gzipped, keyed by bundle and variant key.
//
// Every entry carries a fingerprint: a blake3 hash over the
// change-detection tokens of the members and licenses, truncated to
// defaults.FingerprintLength hex characters. A request whose fingerprint
// differs from the cached one triggers a rebuild. Builds are deduplicated
// per key with singleflight, so concurrent callers share one build and
// never observe a partial entry. Failed builds leave the cache untouched.
package cache
