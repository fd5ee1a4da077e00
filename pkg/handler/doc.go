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

// Package handler exposes built bundles to renderers and servers.
//
// A Handler owns the current Epoch, the pipeline assembled from one
// configuration: resource stores, generators, variant resolvers, the
// built bundle registry and the bundle cache. Reload assembles a new
// Epoch and swaps it in atomically.
//
// Bundles are served at
//
//	<contextPath>[/<prefix>]/<fingerprint>[.<variantKey>]<bundleID>
//
// Resolve returns that URL for a request, Content maps it back to the
// bundle bytes.
package handler
