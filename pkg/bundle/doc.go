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

// Package bundle models bundle definitions and builds them into Joinable
// bundles.
//
// A Definition lists member mappings:
//
//	/js/app.js           a single resource
//	/js/lib/             the resources of a directory
//	/js/lib/**           the resources of a directory tree
//	messages:app.Msgs    a generated resource
//
// Directory mappings keep resources matching the bundle type, ordered by
// name unless the directory holds a ".sorting" file. Files come before
// sub-directories. ".license" files are collected into the bundle's license
// list instead of its members.
//
// Builder.Build checks for duplicate identifiers before anything else,
// expands composite bundles depth first while tracking ancestors to reject
// cycles, and orders global bundles by their Order value. The resulting
// Joinables are immutable; Registry indexes them.
package bundle
