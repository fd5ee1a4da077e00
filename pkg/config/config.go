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
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/assetpipe/pkg/bundle"
	"github.com/NVIDIA/assetpipe/pkg/defaults"
	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/generator"
)

// Environment variables overriding file settings.
const (
	EnvDebug       = "ASSETPIPE_DEBUG"
	EnvBaseDir     = "ASSETPIPE_BASE_DIR"
	EnvContextPath = "ASSETPIPE_CONTEXT_PATH"
)

// Token modes select how resource change detection tokens are computed.
const (
	TokenModeContent = "content"
	TokenModeModTime = "modtime"
)

// ChainConfig lists the postprocessor keys of one bundle type.
// A nil list keeps the built-in default chain.
type ChainConfig struct {
	Unit   []string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Bundle []string `json:"bundle,omitempty" yaml:"bundle,omitempty"`
}

// VariantConfig configures the resolver of one variant axis.
type VariantConfig struct {
	Cookie  string `json:"cookie,omitempty" yaml:"cookie,omitempty"`
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Config is the pipeline configuration.
type Config struct {
	Charset     string `json:"charset,omitempty" yaml:"charset,omitempty"`
	Debug       bool   `json:"debug,omitempty" yaml:"debug,omitempty"`
	ContextPath string `json:"contextPath,omitempty" yaml:"contextPath,omitempty"`

	// BaseDir is the web root members are read from.
	BaseDir string `json:"baseDir" yaml:"baseDir"`
	// ClasspathDir backs the jar generators. Optional.
	ClasspathDir string `json:"classpathDir,omitempty" yaml:"classpathDir,omitempty"`
	TokenMode    string `json:"tokenMode,omitempty" yaml:"tokenMode,omitempty"`

	// PostProcessors holds the default chains per bundle type.
	PostProcessors map[bundle.Type]ChainConfig `json:"postProcessors,omitempty" yaml:"postProcessors,omitempty"`

	// Generators lists the enabled generator prefixes. Empty enables
	// every generator whose backing store is configured.
	Generators []string `json:"generators,omitempty" yaml:"generators,omitempty"`

	Variants map[string]VariantConfig `json:"variants,omitempty" yaml:"variants,omitempty"`

	Bundles []bundle.Definition `json:"bundles" yaml:"bundles"`
}

// KnownGenerators returns the generator prefixes a configuration may enable.
func KnownGenerators() []string {
	return []string{
		generator.MessagesPrefix,
		generator.ClasspathPrefix,
		generator.ClasspathCSSPrefix,
		generator.SkinPrefix,
		generator.ImagePrefix,
	}
}

// Load reads the configuration at path. Files ending in .json or .jsonc
// are read as JSON with comments, anything else as YAML. Relative
// directories resolve against the directory of the file. Environment
// overrides are applied before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidConfig,
			"failed to read config", err, map[string]any{"path": path})
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidConfig,
			"failed to parse config", err, map[string]any{"path": path})
	}

	dir := filepath.Dir(path)
	cfg.BaseDir = resolveDir(dir, cfg.BaseDir)
	cfg.ClasspathDir = resolveDir(dir, cfg.ClasspathDir)

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a configuration document. ext selects the syntax the way
// Load does. The result has no defaults applied.
func Parse(data []byte, ext string) (*Config, error) {
	switch strings.ToLower(ext) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func resolveDir(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidConfig,
				"invalid "+EnvDebug, err, map[string]any{"value": v})
		}
		c.Debug = debug
	}
	if v := os.Getenv(EnvBaseDir); v != "" {
		c.BaseDir = v
	}
	if v := os.Getenv(EnvContextPath); v != "" {
		c.ContextPath = v
	}
	return nil
}

// SetDefaults fills unset settings.
func (c *Config) SetDefaults() {
	if c.Charset == "" {
		c.Charset = defaults.Charset
	}
	if c.ContextPath == "" {
		c.ContextPath = defaults.ContextPath
	}
	c.ContextPath = "/" + strings.Trim(c.ContextPath, "/")
	if c.ContextPath == "/" {
		c.ContextPath = ""
	}
	if c.TokenMode == "" {
		c.TokenMode = TokenModeContent
	}
	if len(c.Generators) == 0 {
		c.Generators = []string{generator.MessagesPrefix, generator.SkinPrefix, generator.ImagePrefix}
		if c.ClasspathDir != "" {
			c.Generators = append(c.Generators, generator.ClasspathPrefix, generator.ClasspathCSSPrefix)
		}
	}
}

// GeneratorEnabled reports whether the generator with prefix is enabled.
func (c *Config) GeneratorEnabled(prefix string) bool {
	return slices.Contains(c.Generators, prefix)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "baseDir is required")
	}
	if _, err := htmlindex.Get(c.Charset); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidConfig,
			"unsupported charset "+c.Charset, err, map[string]any{"charset": c.Charset})
	}
	switch c.TokenMode {
	case TokenModeContent, TokenModeModTime:
	default:
		return errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"unknown token mode "+c.TokenMode, map[string]any{"tokenMode": c.TokenMode})
	}

	known := KnownGenerators()
	for _, g := range c.Generators {
		if !slices.Contains(known, g) {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"unknown generator "+g, map[string]any{"generator": g})
		}
		if (g == generator.ClasspathPrefix || g == generator.ClasspathCSSPrefix) && c.ClasspathDir == "" {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"generator "+g+" requires classpathDir", map[string]any{"generator": g})
		}
	}

	for t := range c.PostProcessors {
		if t != bundle.TypeJS && t != bundle.TypeCSS {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"postprocessors configured for unknown bundle type "+string(t),
				map[string]any{"type": string(t)})
		}
	}

	for axis := range c.Variants {
		if axis == "" || strings.Contains(axis, defaults.VariantSeparator) {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"invalid variant axis "+axis, map[string]any{"axis": axis})
		}
	}

	if len(c.Bundles) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "no bundles defined")
	}
	seen := make(map[string]bool, len(c.Bundles))
	for i := range c.Bundles {
		d := &c.Bundles[i]
		if seen[d.ID] {
			return errors.NewWithContext(errors.ErrCodeDuplicateBundle,
				"duplicate bundle id "+d.ID, map[string]any{"bundle": d.ID, "position": i})
		}
		seen[d.ID] = true
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}
