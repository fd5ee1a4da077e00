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
	"errors"
	"strings"
	"testing"
	"time"
)

func TestResult_New(t *testing.T) {
	result := New("/js/app.js", "es")

	if result.BundleID != "/js/app.js" {
		t.Errorf("BundleID = %s, want /js/app.js", result.BundleID)
	}
	if result.VariantKey != "es" {
		t.Errorf("VariantKey = %s, want es", result.VariantKey)
	}
	if result.Files == nil || len(result.Files) != 0 {
		t.Errorf("New result should have an empty file list, got %v", result.Files)
	}
	if result.Errors == nil || len(result.Errors) != 0 {
		t.Errorf("New result should have an empty error list, got %v", result.Errors)
	}
	if result.Success {
		t.Error("New result should not be marked as success")
	}
}

func TestResult_AddFile(t *testing.T) {
	result := New("/js/app.js", "")

	result.AddFile("dist/abc/js/app.js", 100)
	result.AddFile("dist/abc/js/app.js.gz", 40)
	result.AddFile("empty", 0)

	if len(result.Files) != 3 {
		t.Errorf("Expected 3 files, got %d", len(result.Files))
	}
	if result.Size != 140 {
		t.Errorf("Size = %d, want 140", result.Size)
	}
	if result.Files[1] != "dist/abc/js/app.js.gz" {
		t.Errorf("Files[1] = %s, want dist/abc/js/app.js.gz", result.Files[1])
	}
}

func TestResult_AddError(t *testing.T) {
	result := New("/js/app.js", "")

	result.AddError(errors.New("first error"))
	result.AddError(nil)
	result.AddError(errors.New("second error"))

	if len(result.Errors) != 2 {
		t.Fatalf("Expected 2 errors (nil should be ignored), got %d", len(result.Errors))
	}
	if result.Errors[0] != "first error" || result.Errors[1] != "second error" {
		t.Errorf("Errors = %v", result.Errors)
	}
}

func TestResult_MarkSuccess(t *testing.T) {
	result := New("/js/app.js", "")
	result.MarkSuccess()
	result.MarkSuccess()

	if !result.Success {
		t.Error("Result should be marked as successful")
	}
}

func newOutput() *Output {
	ok := New("/js/app.js", "")
	ok.AddFile("a", 10)
	ok.MarkSuccess()
	okEs := New("/js/app.js", "es")
	okEs.AddFile("b", 20)
	okEs.MarkSuccess()
	failed := New("/css/site.css", "")
	failed.AddError(errors.New("boom"))

	return &Output{
		Results:       []*Result{ok, okEs, failed},
		TotalSize:     30,
		TotalFiles:    2,
		TotalDuration: 1500 * time.Millisecond,
		Errors: []BuildError{
			{BundleID: "/css/site.css", Error: "boom"},
			{BundleID: "/css/site.css", VariantKey: "x", Error: "boom"},
		},
	}
}

func TestOutput_Counts(t *testing.T) {
	out := newOutput()

	if !out.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
	if got := out.SuccessCount(); got != 2 {
		t.Errorf("SuccessCount() = %d, want 2", got)
	}
	if got := out.FailureCount(); got != 1 {
		t.Errorf("FailureCount() = %d, want 1", got)
	}
	if (&Output{}).HasErrors() {
		t.Error("empty output should not have errors")
	}
}

func TestOutput_formatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "zero bytes", bytes: 0, want: "0 B"},
		{name: "bytes only", bytes: 512, want: "512 B"},
		{name: "exactly 1 KB", bytes: 1024, want: "1.0 KB"},
		{name: "fractional KB", bytes: 1536, want: "1.5 KB"},
		{name: "exactly 1 MB", bytes: 1024 * 1024, want: "1.0 MB"},
		{name: "fractional GB", bytes: int64(2.5 * 1024 * 1024 * 1024), want: "2.5 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %s, want %s", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestOutput_Summary(t *testing.T) {
	summary := newOutput().Summary()

	for _, want := range []string{"Generated 2 files", "30 B", "1.5s", "Success: 2/3"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() = %q, want to contain %q", summary, want)
		}
	}
}

func TestOutput_ByBundle(t *testing.T) {
	byBundle := newOutput().ByBundle()

	if len(byBundle) != 2 {
		t.Fatalf("ByBundle() returned %d bundles, want 2", len(byBundle))
	}
	if len(byBundle["/js/app.js"]) != 2 {
		t.Errorf("expected 2 variants of /js/app.js, got %d", len(byBundle["/js/app.js"]))
	}
}

func TestOutput_FailedBundles(t *testing.T) {
	failed := newOutput().FailedBundles()

	if len(failed) != 1 || failed[0] != "/css/site.css" {
		t.Errorf("FailedBundles() = %v, want [/css/site.css]", failed)
	}
}
