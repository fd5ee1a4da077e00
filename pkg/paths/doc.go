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

// Package paths canonicalizes and resolves logical resource paths.
//
// Every resource handled by the pipeline is addressed by a slash separated,
// absolute path such as "/js/app/main.js". Normalize produces that form from
// any input, converting backslashes and resolving "." and ".." segments.
// A ".." that would climb above the root is reported as an INVALID_CONFIG
// error wrapping ErrEscapesRoot instead of being clamped.
//
// Join and Resolve implement the two addressing modes of asset references:
//
//	paths.Join("/css", "img/a.png")           // "/css/img/a.png"
//	paths.Resolve("/css/site.css", "../a.png") // "/a.png"
//	paths.Join("/css", "/img/a.png")          // "/img/a.png" (web-root-relative)
package paths
