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

package config

import (
	"fmt"

	"github.com/NVIDIA/assetpipe/pkg/defaults"
)

// Manifest formats.
const (
	ManifestYAML = "yaml"
	ManifestJSON = "json"
)

// Config holds the settings of an offline build. It is immutable after
// construction; use the getters for read access.
type Config struct {
	// manifestFormat selects the manifest serialization (yaml, json).
	manifestFormat string

	// compression writes a gzip copy next to every bundle.
	compression bool

	// includeChecksums writes checksums.txt over the generated files.
	includeChecksums bool

	// concurrency bounds the number of bundles built at once.
	concurrency int

	// failFast stops the build at the first failing bundle.
	failFast bool

	// verbose enables detailed output during the build.
	verbose bool

	// version is recorded in the manifest.
	version string
}

// ManifestFormat returns the manifest format setting.
func (c *Config) ManifestFormat() string {
	return c.manifestFormat
}

// ManifestFileName returns the name of the manifest file.
func (c *Config) ManifestFileName() string {
	return "manifest." + c.manifestFormat
}

// Compression returns the compression setting.
func (c *Config) Compression() bool {
	return c.compression
}

// IncludeChecksums returns the include checksums setting.
func (c *Config) IncludeChecksums() bool {
	return c.includeChecksums
}

// Concurrency returns the build concurrency.
func (c *Config) Concurrency() int {
	return c.concurrency
}

// FailFast returns the fail fast setting.
func (c *Config) FailFast() bool {
	return c.failFast
}

// Verbose returns the verbose setting.
func (c *Config) Verbose() bool {
	return c.verbose
}

// Version returns the version recorded in the manifest.
func (c *Config) Version() string {
	return c.version
}

// Validate checks if the Config has valid settings.
func (c *Config) Validate() error {
	switch c.manifestFormat {
	case ManifestYAML, ManifestJSON:
	default:
		return fmt.Errorf("invalid manifest format: %s (must be yaml or json)", c.manifestFormat)
	}
	if c.concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.concurrency)
	}
	return nil
}

type Option func(*Config)

// WithManifestFormat sets the manifest format (yaml, json).
func WithManifestFormat(format string) Option {
	return func(c *Config) {
		c.manifestFormat = format
	}
}

// WithCompression sets whether gzip copies are written.
func WithCompression(enabled bool) Option {
	return func(c *Config) {
		c.compression = enabled
	}
}

// WithIncludeChecksums sets whether a checksums file is written.
func WithIncludeChecksums(enabled bool) Option {
	return func(c *Config) {
		c.includeChecksums = enabled
	}
}

// WithConcurrency sets the maximum number of concurrent bundle builds.
func WithConcurrency(n int) Option {
	return func(c *Config) {
		c.concurrency = n
	}
}

// WithFailFast sets whether the build stops at the first failure.
func WithFailFast(enabled bool) Option {
	return func(c *Config) {
		c.failFast = enabled
	}
}

// WithVerbose sets whether verbose logging is enabled.
func WithVerbose(enabled bool) Option {
	return func(c *Config) {
		c.verbose = enabled
	}
}

// WithVersion sets the version recorded in the manifest.
func WithVersion(version string) Option {
	return func(c *Config) {
		c.version = version
	}
}

// NewConfig returns a Config with default values.
func NewConfig(options ...Option) *Config {
	c := &Config{
		manifestFormat:   ManifestYAML,
		compression:      true,
		includeChecksums: true,
		concurrency:      defaults.BuildConcurrency,
		failFast:         false,
		verbose:          false,
		version:          "dev",
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}
