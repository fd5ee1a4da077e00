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

package cache

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/singleflight"

	"github.com/NVIDIA/assetpipe/pkg/bundle"
	"github.com/NVIDIA/assetpipe/pkg/defaults"
	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/postprocess"
	"github.com/NVIDIA/assetpipe/pkg/resource"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

// Entry is a built bundle for one variant tuple.
type Entry struct {
	BundleID    string
	VariantKey  string
	Fingerprint string
	Text        []byte
	Gzip        []byte
	BuiltAt     time.Time
}

// URLFunc returns the URL a bundle is served at.
type URLFunc func(j *bundle.Joinable, fingerprint, variantKey string) string

// Engine builds bundles on demand and caches the results by bundle and
// variant key. Entries are rebuilt when the fingerprint of their members
// changes. Concurrent requests for the same key share one build.
type Engine struct {
	registry *bundle.Registry
	reader   resource.Reader
	charset  string
	debug    bool
	urlFunc  URLFunc
	timeout  time.Duration

	mu      sync.RWMutex
	entries map[string]*Entry
	group   singleflight.Group
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithCharset sets the charset resources are read with.
func WithCharset(charset string) Option {
	return func(e *Engine) {
		e.charset = charset
	}
}

// WithDebug marks builds as debug builds, which disables minification.
func WithDebug(debug bool) Option {
	return func(e *Engine) {
		e.debug = debug
	}
}

// WithURLFunc sets the function computing served bundle URLs, used by
// postprocessors rewriting relative references.
func WithURLFunc(f URLFunc) Option {
	return func(e *Engine) {
		e.urlFunc = f
	}
}

// WithBuildTimeout bounds a single bundle build. Builds run detached from
// the requests waiting on them, so this is the only deadline they see.
func WithBuildTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// NewEngine returns an Engine over the bundles of registry.
func NewEngine(registry *bundle.Registry, reader resource.Reader, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		reader:   reader,
		charset:  defaults.Charset,
		timeout:  defaults.BundleBuildTimeout,
		entries:  make(map[string]*Entry),
		urlFunc: func(j *bundle.Joinable, fingerprint, _ string) string {
			return "/" + fingerprint + j.ID
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the bundles served by the engine.
func (e *Engine) Registry() *bundle.Registry {
	return e.registry
}

func cacheKey(id, variantKey string) string {
	return id + "\x00" + variantKey
}

func (e *Engine) lookup(id string) (*bundle.Joinable, error) {
	j, ok := e.registry.Get(id)
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeNotFound,
			"unknown bundle "+id, map[string]any{"bundle": id})
	}
	if j.IsAlternate() {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"bundle "+id+" is served from "+j.AlternateURL, map[string]any{"bundle": id})
	}
	return j, nil
}

// Fingerprint returns the fingerprint of bundle id for tuple t. It hashes
// the change-detection tokens of the members and licenses, not their
// content.
func (e *Engine) Fingerprint(ctx context.Context, id string, t variant.Tuple) (string, error) {
	j, err := e.lookup(id)
	if err != nil {
		return "", err
	}
	return e.fingerprint(ctx, j, t.Restrict(j.Variants))
}

func (e *Engine) fingerprint(ctx context.Context, j *bundle.Joinable, t variant.Tuple) (string, error) {
	h := blake3.New()
	fmt.Fprintf(h, "%s\n%s\n", j.ID, t.Key())
	for _, p := range j.Members(t) {
		tok, err := e.reader.Token(ctx, p)
		if err != nil {
			return "", errors.WrapWithContext(errors.CodeOrInternal(err),
				"bundle "+j.ID+": cannot fingerprint "+p, err, map[string]any{"bundle": j.ID, "path": p})
		}
		fmt.Fprintf(h, "m %s %s\n", p, tok)
	}
	for _, p := range j.Licenses {
		tok, err := e.reader.Token(ctx, p)
		if err != nil {
			return "", errors.WrapWithContext(errors.CodeOrInternal(err),
				"bundle "+j.ID+": cannot fingerprint "+p, err, map[string]any{"bundle": j.ID, "path": p})
		}
		fmt.Fprintf(h, "l %s %s\n", p, tok)
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:defaults.FingerprintLength], nil
}

func (e *Engine) cached(key, fingerprint string) (*Entry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.entries[key]
	if !ok || entry.Fingerprint != fingerprint {
		return nil, false
	}
	return entry, true
}

// GetOrBuild returns the entry of bundle id for tuple t, building it when
// missing or stale. Axes of t the bundle does not declare are ignored and
// missing axes take their defaults. A failed build stores nothing.
func (e *Engine) GetOrBuild(ctx context.Context, id string, t variant.Tuple) (*Entry, error) {
	j, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	t = t.Restrict(j.Variants)
	key := cacheKey(id, t.Key())

	fp, err := e.fingerprint(ctx, j, t)
	if err != nil {
		return nil, err
	}
	if entry, ok := e.cached(key, fp); ok {
		cacheHits.Inc()
		return entry, nil
	}
	cacheMisses.Inc()

	// The shared build outlives any single waiter: a caller that gives up
	// only stops waiting, it never fails the build for the others.
	ch := e.group.DoChan(key, func() (any, error) {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()

		// The fingerprint may have moved while waiting for a previous build.
		fp, err := e.fingerprint(bctx, j, t)
		if err != nil {
			return nil, err
		}
		if entry, ok := e.cached(key, fp); ok {
			return entry, nil
		}
		entry, err := e.build(bctx, j, t, fp)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.entries[key] = entry
		e.mu.Unlock()
		return entry, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("bundle build shared", "bundle", id, "variant", t.Key())
		}
		return res.Val.(*Entry), nil
	case <-ctx.Done():
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable,
			"bundle "+id+": request ended before the build completed", ctx.Err(),
			map[string]any{"bundle": id, "variant": t.Key()})
	}
}

func (e *Engine) build(ctx context.Context, j *bundle.Joinable, t variant.Tuple, fp string) (*Entry, error) {
	start := time.Now()
	variantKey := t.Key()

	entry, err := e.assemble(ctx, j, t, fp)
	bundleBuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		bundleBuilds.WithLabelValues("error").Inc()
		slog.Warn("bundle build failed", "bundle", j.ID, "variant", variantKey, "error", err)
		return nil, err
	}
	bundleBuilds.WithLabelValues("success").Inc()

	slog.Debug("bundle built",
		"bundle", j.ID,
		"variant", variantKey,
		"fingerprint", fp,
		"bytes", len(entry.Text),
		"duration", time.Since(start))
	return entry, nil
}

func (e *Engine) assemble(ctx context.Context, j *bundle.Joinable, t variant.Tuple, fp string) (*Entry, error) {
	variantKey := t.Key()
	st := &postprocess.Status{
		BundleID:   j.ID,
		BundleType: string(j.Type),
		URL:        e.urlFunc(j, fp, variantKey),
		Licenses:   j.Licenses,
		Reader:     e.reader,
		Charset:    e.charset,
		Variants:   t,
		Debug:      e.debug,
	}

	var joined bytes.Buffer
	for _, u := range j.Units(t) {
		text, err := e.reader.ReadText(ctx, u.Path, e.charset)
		if err != nil {
			return nil, errors.WrapWithContext(errors.CodeOrInternal(err),
				"bundle "+j.ID+": cannot read "+u.Path, err, map[string]any{"bundle": j.ID, "path": u.Path})
		}
		unit := *st
		unit.Member = u.Path
		out, err := u.Chain.Process(ctx, &unit, []byte(text))
		if err != nil {
			return nil, err
		}
		joined.Write(out)
		if len(out) > 0 && out[len(out)-1] != '\n' {
			joined.WriteByte('\n')
		}
	}

	text, err := j.BundleChain.Process(ctx, st, joined.Bytes())
	if err != nil {
		return nil, err
	}

	gz, err := Compress(text)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeTransformFailure,
			"bundle "+j.ID+": compression failed", err, map[string]any{"bundle": j.ID})
	}

	return &Entry{
		BundleID:    j.ID,
		VariantKey:  variantKey,
		Fingerprint: fp,
		Text:        text,
		Gzip:        gz,
		BuiltAt:     time.Now(),
	}, nil
}

// Compress gzips data at the best compression level.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Invalidate drops every entry of bundle id.
func (e *Engine) Invalidate(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key, entry := range e.entries {
		if entry.BundleID == id {
			delete(e.entries, key)
		}
	}
}

// Purge drops every entry.
func (e *Engine) Purge() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = make(map[string]*Entry)
}

// Len returns the number of cached entries.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entries)
}
