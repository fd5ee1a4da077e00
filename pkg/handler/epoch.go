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

package handler

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/NVIDIA/assetpipe/pkg/bundle"
	"github.com/NVIDIA/assetpipe/pkg/cache"
	"github.com/NVIDIA/assetpipe/pkg/config"
	"github.com/NVIDIA/assetpipe/pkg/defaults"
	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/generator"
	"github.com/NVIDIA/assetpipe/pkg/postprocess"
	"github.com/NVIDIA/assetpipe/pkg/resource"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

// Epoch is one fully assembled pipeline: the bundles built from a
// configuration together with the engine serving them. An Epoch is never
// modified; reconfiguration replaces it.
type Epoch struct {
	config    *config.Config
	reader    *generator.GeneratedReader
	resolvers *variant.ResolverSet
	registry  *bundle.Registry
	engine    *cache.Engine
	createdAt time.Time
}

// NewEpoch assembles the pipeline described by cfg and builds every bundle
// definition. cfg must be validated.
func NewEpoch(ctx context.Context, cfg *config.Config) (*Epoch, error) {
	start := time.Now()

	reader, err := newReader(cfg)
	if err != nil {
		return nil, err
	}

	resolvers, err := newResolvers(cfg)
	if err != nil {
		return nil, err
	}

	opts := []bundle.BuilderOption{bundle.WithDebug(cfg.Debug)}
	for t, cc := range cfg.PostProcessors {
		opts = append(opts, bundle.WithDefaultChains(t, cc.Unit, cc.Bundle))
	}
	builder := bundle.NewBuilder(reader, postprocess.NewFactory(), opts...)

	joinables, err := builder.Build(ctx, cfg.Bundles)
	if err != nil {
		return nil, err
	}
	registry, err := bundle.NewRegistry(joinables)
	if err != nil {
		return nil, err
	}

	e := &Epoch{
		config:    cfg,
		reader:    reader,
		resolvers: resolvers,
		registry:  registry,
		createdAt: time.Now(),
	}
	e.engine = cache.NewEngine(registry, reader,
		cache.WithCharset(cfg.Charset),
		cache.WithDebug(cfg.Debug),
		cache.WithURLFunc(e.URL),
	)

	slog.Info("bundles loaded",
		"count", registry.Count(),
		"debug", cfg.Debug,
		"duration", time.Since(start))
	return e, nil
}

func newReader(cfg *config.Config) (*generator.GeneratedReader, error) {
	var storeOpts []resource.StoreOption
	if cfg.TokenMode == config.TokenModeModTime {
		storeOpts = append(storeOpts, resource.WithModTimeTokens())
	}
	base := resource.NewDirStore(cfg.BaseDir, append(storeOpts, resource.WithName("web"))...)

	var classpath resource.Reader
	if cfg.ClasspathDir != "" {
		classpath = resource.NewDirStore(cfg.ClasspathDir, append(storeOpts, resource.WithName("classpath"))...)
	}

	gens := generator.NewRegistry()
	for _, prefix := range cfg.Generators {
		var g generator.Generator
		switch prefix {
		case generator.MessagesPrefix:
			g = generator.NewMessagesGenerator(nil)
		case generator.SkinPrefix:
			g = generator.NewSkinGenerator(nil, cfg.Variants[defaults.SkinAxis].Default)
		case generator.ImagePrefix:
			g = generator.NewImageGenerator(base)
		case generator.ClasspathPrefix, generator.ClasspathCSSPrefix:
			if classpath == nil {
				return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
					"generator "+prefix+" requires classpathDir", map[string]any{"generator": prefix})
			}
			g = generator.NewClasspathGenerator(prefix, classpath)
		default:
			return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"unknown generator "+prefix, map[string]any{"generator": prefix})
		}
		if err := gens.Register(g); err != nil {
			return nil, err
		}
	}
	return generator.NewGeneratedReader(base, gens, cfg.Charset), nil
}

func newResolvers(cfg *config.Config) (*variant.ResolverSet, error) {
	locale := cfg.Variants[defaults.LocaleAxis]
	if locale.Cookie == "" {
		locale.Cookie = defaults.LocaleCookie
	}
	skin := cfg.Variants[defaults.SkinAxis]
	if skin.Cookie == "" {
		skin.Cookie = defaults.SkinCookie
	}

	resolvers := []variant.Resolver{
		&variant.LocaleResolver{Cookie: locale.Cookie, Default: locale.Default},
		&variant.CookieResolver{Name: defaults.SkinAxis, Cookie: skin.Cookie, Default: skin.Default},
	}

	axes := make([]string, 0, len(cfg.Variants))
	for axis := range cfg.Variants {
		if axis != defaults.LocaleAxis && axis != defaults.SkinAxis {
			axes = append(axes, axis)
		}
	}
	sort.Strings(axes)
	for _, axis := range axes {
		vc := cfg.Variants[axis]
		cookie := vc.Cookie
		if cookie == "" {
			cookie = axis
		}
		resolvers = append(resolvers, &variant.CookieResolver{Name: axis, Cookie: cookie, Default: vc.Default})
	}
	return variant.NewResolverSet(resolvers...)
}

// Config returns the configuration the epoch was built from.
func (e *Epoch) Config() *config.Config {
	return e.config
}

// Registry returns the built bundles.
func (e *Epoch) Registry() *bundle.Registry {
	return e.registry
}

// Engine returns the bundle cache.
func (e *Epoch) Engine() *cache.Engine {
	return e.engine
}

// Reader returns the resource reader members are read through.
func (e *Epoch) Reader() *generator.GeneratedReader {
	return e.reader
}

// Resolvers returns the variant resolvers.
func (e *Epoch) Resolvers() *variant.ResolverSet {
	return e.resolvers
}

// CreatedAt returns the time the epoch finished building.
func (e *Epoch) CreatedAt() time.Time {
	return e.createdAt
}

// URL returns the served URL of bundle j.
func (e *Epoch) URL(j *bundle.Joinable, fingerprint, variantKey string) string {
	if j.IsAlternate() {
		return j.AlternateURL
	}
	return BuildURL(e.config.ContextPath, j.Prefix, fingerprint, variantKey, j.ID)
}
