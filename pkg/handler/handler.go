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
	"strings"
	"sync"
	"sync/atomic"

	"github.com/NVIDIA/assetpipe/pkg/bundle"
	"github.com/NVIDIA/assetpipe/pkg/cache"
	"github.com/NVIDIA/assetpipe/pkg/config"
	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

// Reference is what a renderer needs to point at a bundle.
type Reference struct {
	BundleID    string `json:"bundleId" yaml:"bundleId"`
	URL         string `json:"url" yaml:"url"`
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	VariantKey  string `json:"variantKey,omitempty" yaml:"variantKey,omitempty"`
	Type        string `json:"type" yaml:"type"`
	// Alternate is set when URL is an externally hosted replacement.
	Alternate bool `json:"alternate,omitempty" yaml:"alternate,omitempty"`
	// Inline holds the bundle content when requested with WithInline.
	Inline []byte `json:"inline,omitempty" yaml:"inline,omitempty"`
}

// Content is a served bundle.
type Content struct {
	Entry       *cache.Entry
	ContentType string
	// Stale is set when the requested fingerprint is not the current one.
	// Entry holds the current content regardless.
	Stale bool
}

type resolveOptions struct {
	inline bool
}

// ResolveOption is a functional option for Resolve.
type ResolveOption func(*resolveOptions)

// WithInline embeds the bundle content in the reference.
func WithInline() ResolveOption {
	return func(o *resolveOptions) {
		o.inline = true
	}
}

// Handler is the entry point of renderers and servers. It resolves bundle
// references for a request and serves bundle content by URL.
type Handler struct {
	epoch atomic.Pointer[Epoch]
	// serializes reloads
	mu sync.Mutex
}

// New builds the first epoch from cfg.
func New(ctx context.Context, cfg *config.Config) (*Handler, error) {
	e, err := NewEpoch(ctx, cfg)
	if err != nil {
		return nil, err
	}
	h := &Handler{}
	h.epoch.Store(e)
	return h, nil
}

// Epoch returns the current epoch.
func (h *Handler) Epoch() *Epoch {
	return h.epoch.Load()
}

// Reload builds a new epoch from cfg and swaps it in. Requests already
// holding the previous epoch complete against it. On failure the current
// epoch stays in place.
func (h *Handler) Reload(ctx context.Context, cfg *config.Config) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, err := NewEpoch(ctx, cfg)
	if err != nil {
		slog.Error("reload failed, keeping current bundles", "error", err)
		return err
	}
	old := h.epoch.Swap(e)
	slog.Info("bundles reloaded", "previous", old.registry.Count(), "current", e.registry.Count())
	return nil
}

// Resolve returns the reference of bundle id for the request rc. The
// variant tuple is resolved against the variants the bundle declares,
// then the bundle is built or fetched from the cache.
func (h *Handler) Resolve(ctx context.Context, id string, rc *variant.RequestContext, opts ...ResolveOption) (*Reference, error) {
	return h.Epoch().resolve(ctx, id, rc, opts...)
}

// ResolveAll returns the references of every bundle, global bundles
// first.
func (h *Handler) ResolveAll(ctx context.Context, rc *variant.RequestContext, opts ...ResolveOption) ([]*Reference, error) {
	e := h.Epoch()
	bundles := e.registry.List()
	refs := make([]*Reference, 0, len(bundles))
	for _, j := range bundles {
		ref, err := e.resolve(ctx, j.ID, rc, opts...)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (e *Epoch) resolve(ctx context.Context, id string, rc *variant.RequestContext, opts ...ResolveOption) (*Reference, error) {
	o := &resolveOptions{}
	for _, opt := range opts {
		opt(o)
	}

	j, ok := e.registry.Get(id)
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeNotFound,
			"unknown bundle "+id, map[string]any{"bundle": id})
	}
	if j.IsAlternate() {
		return &Reference{BundleID: j.ID, URL: j.AlternateURL, Type: string(j.Type), Alternate: true}, nil
	}

	t := e.resolvers.ResolveTuple(rc, j.Variants)
	entry, err := e.engine.GetOrBuild(ctx, j.ID, t)
	if err != nil {
		return nil, err
	}

	ref := &Reference{
		BundleID:    j.ID,
		URL:         e.URL(j, entry.Fingerprint, entry.VariantKey),
		Fingerprint: entry.Fingerprint,
		VariantKey:  entry.VariantKey,
		Type:        string(j.Type),
	}
	if o.inline {
		ref.Inline = entry.Text
	}
	return ref, nil
}

// Content returns the bundle served at url.
func (h *Handler) Content(ctx context.Context, url string) (*Content, error) {
	e := h.Epoch()

	u, err := ParseURL(e.config.ContextPath, url)
	if err != nil {
		return nil, err
	}
	j, err := e.lookup(u)
	if err != nil {
		return nil, err
	}
	if j.IsAlternate() {
		return nil, errors.NewWithContext(errors.ErrCodeNotFound,
			"bundle "+j.ID+" is served from "+j.AlternateURL, map[string]any{"bundle": j.ID})
	}
	t, err := variant.ParseKey(u.VariantKey, j.Variants)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound,
			"unknown variant of bundle "+j.ID, err, map[string]any{"bundle": j.ID, "variant": u.VariantKey})
	}

	entry, err := e.engine.GetOrBuild(ctx, j.ID, t)
	if err != nil {
		return nil, err
	}
	c := &Content{
		Entry:       entry,
		ContentType: ContentType(j.Type, e.config.Charset),
		Stale:       entry.Fingerprint != u.Fingerprint,
	}
	if c.Stale {
		slog.Debug("stale bundle fingerprint requested",
			"bundle", j.ID, "requested", u.Fingerprint, "current", entry.Fingerprint)
	}
	return c, nil
}

func (e *Epoch) lookup(u *BundleURL) (*bundle.Joinable, error) {
	j, ok := e.registry.Get(u.BundleID)
	if !ok {
		j, ok = e.registry.Get(strings.TrimPrefix(u.BundleID, "/"))
	}
	if !ok || strings.Trim(j.Prefix, "/") != u.Prefix {
		return nil, errors.NewWithContext(errors.ErrCodeNotFound,
			"unknown bundle "+u.BundleID, map[string]any{"bundle": u.BundleID, "prefix": u.Prefix})
	}
	return j, nil
}

// ContentType returns the media type a bundle of type t is served with.
func ContentType(t bundle.Type, charset string) string {
	var mt string
	switch t {
	case bundle.TypeCSS:
		mt = "text/css"
	default:
		mt = "text/javascript"
	}
	if charset == "" {
		return mt
	}
	return mt + "; charset=" + charset
}
