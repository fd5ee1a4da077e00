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
	"fmt"
	"time"
)

// Output contains the aggregated results of an offline build.
type Output struct {
	// Results contains the result of every built bundle variant.
	Results []*Result `json:"results" yaml:"results"`

	// TotalSize is the total size in bytes of all generated files.
	TotalSize int64 `json:"total_size_bytes" yaml:"total_size_bytes"`

	// TotalFiles is the total count of generated files.
	TotalFiles int `json:"total_files" yaml:"total_files"`

	// TotalDuration is the total time taken by the build.
	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`

	// Errors contains the failed bundle variants.
	Errors []BuildError `json:"errors,omitempty" yaml:"errors,omitempty"`

	// OutputDir is the directory the bundles were written to.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Manifest is the path of the written manifest.
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty"`

	// Checksums is the path of the written checksum file.
	Checksums string `json:"checksums,omitempty" yaml:"checksums,omitempty"`
}

// BuildError represents the failure of one bundle variant.
type BuildError struct {
	BundleID   string `json:"bundle_id" yaml:"bundle_id"`
	VariantKey string `json:"variant_key,omitempty" yaml:"variant_key,omitempty"`
	Error      string `json:"error" yaml:"error"`
}

// HasErrors returns true if any bundle variant failed.
func (o *Output) HasErrors() bool {
	return len(o.Errors) > 0
}

// SuccessCount returns the number of successful builds.
func (o *Output) SuccessCount() int {
	count := 0
	for _, r := range o.Results {
		if r.Success {
			count++
		}
	}
	return count
}

// FailureCount returns the number of failed builds.
func (o *Output) FailureCount() int {
	return len(o.Results) - o.SuccessCount()
}

// Summary returns a human-readable summary of the build.
func (o *Output) Summary() string {
	return fmt.Sprintf(
		"Generated %d files (%s) in %v. Success: %d/%d bundle variants.",
		o.TotalFiles,
		formatBytes(o.TotalSize),
		o.TotalDuration.Round(time.Millisecond),
		o.SuccessCount(),
		len(o.Results),
	)
}

// formatBytes formats bytes into human-readable format.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// ByBundle returns the results grouped by bundle identifier, in build order.
func (o *Output) ByBundle() map[string][]*Result {
	results := make(map[string][]*Result)
	for _, r := range o.Results {
		results[r.BundleID] = append(results[r.BundleID], r)
	}
	return results
}

// FailedBundles returns the identifiers of the bundles with a failed
// variant, without duplicates.
func (o *Output) FailedBundles() []string {
	seen := make(map[string]bool, len(o.Errors))
	failed := make([]string, 0, len(o.Errors))
	for _, e := range o.Errors {
		if !seen[e.BundleID] {
			seen[e.BundleID] = true
			failed = append(failed, e.BundleID)
		}
	}
	return failed
}
