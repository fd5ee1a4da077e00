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

// Package variant resolves which variant of a bundle applies to a request.
//
// A variant axis (locale, skin, ...) has a Set of declared keys and a
// default. Resolvers read the caller's RequestContext and propose a key;
// ResolverSet checks the proposal against the bundle's Set and falls back to
// the default when the key is not declared. Several axes compose into a
// Tuple whose Key encodes the values in sorted axis order:
//
//	sets := variant.Sets{"locale": locales, "skin": skins}
//	t := resolvers.ResolveTuple(variant.FromHTTPRequest(r), sets)
//	t.Key() // "es@dark"
//
// Sets.Combinations enumerates every tuple of a bundle for offline builds.
package variant
