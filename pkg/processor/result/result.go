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

package result

import (
	"time"
)

// Result records the build of one bundle variant.
type Result struct {
	// BundleID identifies the built bundle.
	BundleID string `json:"bundle_id" yaml:"bundle_id"`

	// VariantKey is the encoded variant tuple, empty for the default variant.
	VariantKey string `json:"variant_key,omitempty" yaml:"variant_key,omitempty"`

	// Fingerprint is the fingerprint of the built content.
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`

	// URL is the served URL of the variant.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Files lists the written files.
	Files []string `json:"files" yaml:"files"`

	// Size is the total size in bytes of the written files.
	Size int64 `json:"size_bytes" yaml:"size_bytes"`

	// Duration is the time taken by the build.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Success is set once every file is written.
	Success bool `json:"success" yaml:"success"`

	// Errors holds the failures of the build.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// New returns an empty result for a variant of bundle id.
func New(id, variantKey string) *Result {
	return &Result{
		BundleID:   id,
		VariantKey: variantKey,
		Files:      make([]string, 0),
		Errors:     make([]string, 0),
	}
}

// AddFile records a written file.
func (r *Result) AddFile(path string, size int64) {
	r.Files = append(r.Files, path)
	r.Size += size
}

// AddError records a failure. Nil errors are ignored.
func (r *Result) AddError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

// MarkSuccess marks the build as successful.
func (r *Result) MarkSuccess() {
	r.Success = true
}
