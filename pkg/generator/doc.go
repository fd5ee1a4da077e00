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

// Package generator synthesizes resource content for prefixed paths.
//
// A generated path has the form "<prefix>:<path>[@<variant>]", for example
// "messages:app.Messages@es". The Registry maps prefixes to Generators and
// resolves a path to the generator of its longest matching prefix.
// GeneratedReader layers the registry over plain storage so that the rest
// of the pipeline reads generated and static resources through a single
// resource.Reader.
//
// Generators may implement optional capabilities: Lister for directory
// mappings over generated paths, Checker for cheap existence checks,
// VariantProvider to declare the variant axes their output depends on, and
// Tokener for cheap change-detection tokens.
//
// Built-in generators:
//
//   - messages: localization scripts from .properties message bundles
//   - jar, jar_css: text served from a secondary store
//   - skin: per-skin style sheets
//   - img: binary images, which cannot be bundle members
package generator
