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

package generator

import (
	"context"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/resource"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

// GeneratedReader is a resource.Reader serving generated paths from a
// Registry and every other path from a base reader. Generators take
// priority over the base reader for the paths they own.
type GeneratedReader struct {
	base     resource.Reader
	registry *Registry
	charset  string
}

// NewGeneratedReader returns a reader layering registry over base.
func NewGeneratedReader(base resource.Reader, registry *Registry, charset string) *GeneratedReader {
	return &GeneratedReader{base: base, registry: registry, charset: charset}
}

// Base returns the plain storage reader.
func (r *GeneratedReader) Base() resource.Reader {
	return r.base
}

// Registry returns the generator registry.
func (r *GeneratedReader) Registry() *Registry {
	return r.registry
}

// Lookup resolves p to its generator and invocation context. The variant
// suffix of p is decoded against the generator's variant sets.
func (r *GeneratedReader) Lookup(ctx context.Context, p string) (Generator, *Context, error) {
	g, parsed, ok := r.registry.Resolve(p)
	if !ok {
		if IsGenerated(p) {
			return nil, nil, resource.NotFound(p)
		}
		return nil, nil, nil
	}

	gc := &Context{Path: parsed.Sub, Charset: r.charset, Reader: r.base, Variants: variant.Tuple{}}
	vp, ok := g.(VariantProvider)
	if !ok {
		return g, gc, nil
	}
	sets, err := vp.Variants(ctx, gc)
	if err != nil {
		return nil, nil, err
	}
	if parsed.Variant == "" {
		gc.Variants = sets.Defaults()
		return g, gc, nil
	}
	tuple, err := variant.ParseKey(parsed.Variant, sets)
	if err != nil {
		return nil, nil, errors.WrapWithContext(errors.ErrCodeNotFound,
			"unknown variant of "+p, err, map[string]any{"path": p})
	}
	gc.Variants = tuple
	return g, gc, nil
}

// VariantSets returns the variant sets a generated path depends on. Paths
// without variants return nil.
func (r *GeneratedReader) VariantSets(ctx context.Context, p string) (variant.Sets, error) {
	g, parsed, ok := r.registry.Resolve(p)
	if !ok {
		return nil, nil
	}
	vp, ok := g.(VariantProvider)
	if !ok {
		return nil, nil
	}
	return vp.Variants(ctx, &Context{Path: parsed.Sub, Charset: r.charset, Reader: r.base})
}

// Kind returns the kind of content served for p.
func (r *GeneratedReader) Kind(p string) Kind {
	if g, _, ok := r.registry.Resolve(p); ok {
		return g.Kind()
	}
	return Text
}

// Exists implements resource.Reader.
func (r *GeneratedReader) Exists(ctx context.Context, p string) bool {
	g, gc, err := r.Lookup(ctx, p)
	if err != nil {
		return false
	}
	if g == nil {
		return r.base.Exists(ctx, p)
	}
	if c, ok := g.(Checker); ok {
		return c.Exists(ctx, gc)
	}
	return true
}

// ReadBytes implements resource.Reader.
func (r *GeneratedReader) ReadBytes(ctx context.Context, p string) ([]byte, error) {
	g, gc, err := r.Lookup(ctx, p)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return r.base.ReadBytes(ctx, p)
	}
	if c, ok := g.(Checker); ok && !c.Exists(ctx, gc) {
		return nil, resource.NotFound(p)
	}
	data, err := g.Generate(ctx, gc)
	if err != nil {
		if resource.IsNotFound(err) {
			return nil, err
		}
		return nil, errors.WrapWithContext(errors.ErrCodeInternal,
			"generator "+g.Prefix()+" failed for "+p, err, map[string]any{"path": p})
	}
	return data, nil
}

// ReadText implements resource.Reader. Generated text is always UTF-8.
func (r *GeneratedReader) ReadText(ctx context.Context, p, charset string) (string, error) {
	g, _, err := r.Lookup(ctx, p)
	if err != nil {
		return "", err
	}
	if g == nil {
		return r.base.ReadText(ctx, p, charset)
	}
	if g.Kind() == Binary {
		return "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"generator "+g.Prefix()+" emits binary content", map[string]any{"path": p})
	}
	data, err := r.ReadBytes(ctx, p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List implements resource.Reader.
func (r *GeneratedReader) List(ctx context.Context, dir string) ([]resource.Entry, error) {
	g, gc, err := r.Lookup(ctx, dir)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return r.base.List(ctx, dir)
	}
	l, ok := g.(Lister)
	if !ok {
		return nil, resource.NotFound(dir)
	}
	return l.List(ctx, gc)
}

// Token implements resource.Reader. Generators without a Tokener are
// fingerprinted by hashing their output.
func (r *GeneratedReader) Token(ctx context.Context, p string) (string, error) {
	g, gc, err := r.Lookup(ctx, p)
	if err != nil {
		return "", err
	}
	if g == nil {
		return r.base.Token(ctx, p)
	}
	if t, ok := g.(Tokener); ok {
		return t.Token(ctx, gc)
	}
	data, err := r.ReadBytes(ctx, p)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return fmt.Sprintf("%x", sum[:]), nil
}
