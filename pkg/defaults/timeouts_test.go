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

import (
	"strings"
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		// Handler timeouts
		{"BundleHandlerTimeout", BundleHandlerTimeout, 10 * time.Second, 60 * time.Second},
		{"BundleBuildTimeout", BundleBuildTimeout, 10 * time.Second, 30 * time.Second},

		// Server timeouts
		{"ServerReadTimeout", ServerReadTimeout, 5 * time.Second, 30 * time.Second},
		{"ServerWriteTimeout", ServerWriteTimeout, 15 * time.Second, 60 * time.Second},
		{"ServerIdleTimeout", ServerIdleTimeout, 30 * time.Second, 300 * time.Second},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 10 * time.Second, 60 * time.Second},

		// CLI timeouts
		{"CLIBuildTimeout", CLIBuildTimeout, 1 * time.Minute, 30 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) exceeds maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestTimeoutRelationships(t *testing.T) {
	if BundleBuildTimeout >= BundleHandlerTimeout {
		t.Errorf("BundleBuildTimeout (%v) should be less than BundleHandlerTimeout (%v)",
			BundleBuildTimeout, BundleHandlerTimeout)
	}
	if ServerReadHeaderTimeout >= ServerReadTimeout {
		t.Errorf("ServerReadHeaderTimeout (%v) should be less than ServerReadTimeout (%v)",
			ServerReadHeaderTimeout, ServerReadTimeout)
	}
}

func TestPathSyntax(t *testing.T) {
	if !strings.HasPrefix(SortFileName, ".") || !strings.HasPrefix(LicenseFileName, ".") {
		t.Error("sort and license files should be hidden resource names")
	}
	if GeneratorMarker == VariantSeparator {
		t.Error("generator marker and variant separator must differ")
	}
	if FingerprintLength <= 0 || FingerprintLength > 64 {
		t.Errorf("FingerprintLength out of range: %d", FingerprintLength)
	}
}
