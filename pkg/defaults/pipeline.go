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

package defaults

import "time"

// Well-known resource names inside mapped directories.
const (
	// SortFileName names the ordering override file of a directory mapping.
	SortFileName = ".sorting"

	// LicenseFileName names a license resource appended to bundles.
	LicenseFileName = ".license"
)

// Path syntax shared by the generator registry and variant handling.
const (
	// GeneratorMarker separates a generator prefix from its generator path,
	// as in "messages:app.Messages".
	GeneratorMarker = ":"

	// VariantSeparator joins variant keys, both in generated member paths
	// ("messages:app.Messages@es") and in encoded variant tuples.
	VariantSeparator = "@"

	// RecursiveSuffix marks a directory mapping that includes sub-folders.
	RecursiveSuffix = "**"
)

// Pipeline defaults.
const (
	// Charset is the resource charset used when none is configured.
	Charset = "UTF-8"

	// ContextPath is the URL prefix of served bundles.
	ContextPath = "/bundles"

	// FingerprintLength is the number of hex characters of a fingerprint
	// embedded in bundle URLs.
	FingerprintLength = 16

	// BuildConcurrency bounds parallel bundle builds in offline mode.
	BuildConcurrency = 8

	// CacheMaxAge is the max-age advertised for fingerprinted bundle URLs.
	CacheMaxAge = 365 * 24 * time.Hour
)

// Variant axes recognized by the built-in resolvers.
const (
	// LocaleAxis is the axis name of the locale resolver.
	LocaleAxis = "locale"

	// SkinAxis is the axis name of the skin resolver.
	SkinAxis = "skin"

	// LocaleCookie is the default cookie consulted for the locale.
	LocaleCookie = "lang"

	// SkinCookie is the default cookie consulted for the skin.
	SkinCookie = "skin"
)
