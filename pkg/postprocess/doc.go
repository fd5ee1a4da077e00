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

// Package postprocess implements the content transformation chains run on
// bundle members and on joined bundles.
//
// A Chain applies its Processors strictly in sequence, handing each one the
// fully materialized output of the previous one. Two chains run per bundle:
// the per-unit chain on every member before concatenation and the
// per-bundle chain once on the joined content.
//
// Chains are assembled from keys by a Factory. Built-in keys:
//
//	cssminify   comment and whitespace stripping for style sheets
//	jsmin       script minification
//	license     appends the bundle's .license resources
//	cssurl      rewrites relative url() references for the served location
//	csscharset  keeps a single leading @charset declaration
//
// The key "none" configures an empty chain.
package postprocess
