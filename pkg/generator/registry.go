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
	"sort"
	"strings"
	"sync"

	"github.com/NVIDIA/assetpipe/pkg/defaults"
	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/resource"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

// Kind declares whether a generator emits character or binary content.
type Kind int

const (
	// Text generators emit UTF-8 script or style content.
	Text Kind = iota
	// Binary generators emit byte streams such as images.
	Binary
)

// String returns the kind name.
func (k Kind) String() string {
	if k == Binary {
		return "binary"
	}
	return "text"
}

// Context is passed to every generator invocation.
type Context struct {
	// Path is the generator-relative path, without prefix and variant suffix.
	Path     string
	Variants variant.Tuple
	Charset  string
	// Reader gives access to the plain resource storage.
	Reader resource.Reader
}

// Generator synthesizes the content of the paths under its prefix.
type Generator interface {
	Prefix() string
	Kind() Kind
	Generate(ctx context.Context, gc *Context) ([]byte, error)
}

// Lister is implemented by generators whose paths can be listed, which
// makes directory mappings over generated paths possible.
type Lister interface {
	List(ctx context.Context, gc *Context) ([]resource.Entry, error)
}

// Checker is implemented by generators able to tell whether a path exists
// without generating it. Generators without it accept every path.
type Checker interface {
	Exists(ctx context.Context, gc *Context) bool
}

// VariantProvider is implemented by generators whose output depends on
// variant axes.
type VariantProvider interface {
	Variants(ctx context.Context, gc *Context) (variant.Sets, error)
}

// Tokener is implemented by generators that compute change-detection
// tokens cheaper than generating the content.
type Tokener interface {
	Token(ctx context.Context, gc *Context) (string, error)
}

// Path is a generated path split into its parts, e.g.
// "messages:app.Messages@es" is {Prefix: "messages", Sub: "app.Messages", Variant: "es"}.
type Path struct {
	Prefix  string
	Sub     string
	Variant string
}

// IsGenerated reports whether p uses the generator path syntax.
// Normalized resource paths always start with a slash.
func IsGenerated(p string) bool {
	return !strings.HasPrefix(p, "/") && strings.Contains(p, defaults.GeneratorMarker)
}

// String returns the path in its textual form.
func (p Path) String() string {
	s := p.Prefix + defaults.GeneratorMarker + p.Sub
	if p.Variant != "" {
		s += defaults.VariantSeparator + p.Variant
	}
	return s
}

// WithVariant returns the generated path p with its variant suffix replaced
// by key.
func WithVariant(p, key string) string {
	if i := strings.Index(p, defaults.VariantSeparator); i >= 0 {
		p = p[:i]
	}
	if key == "" {
		return p
	}
	return p + defaults.VariantSeparator + key
}

// Registry maps path prefixes to generators.
type Registry struct {
	generators map[string]Generator
	mu         sync.RWMutex
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]Generator)}
}

// Register adds g under its prefix. Registering a prefix twice is a
// DUPLICATE_GENERATOR error.
func (r *Registry) Register(g Generator) error {
	prefix := g.Prefix()
	if prefix == "" || strings.ContainsAny(prefix, defaults.GeneratorMarker+"/") {
		return errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"invalid generator prefix "+prefix, map[string]any{"prefix": prefix})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[prefix]; exists {
		return errors.NewWithContext(errors.ErrCodeDuplicateGenerator,
			"generator prefix "+prefix+" already registered", map[string]any{"prefix": prefix})
	}
	r.generators[prefix] = g
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(g Generator) {
	if err := r.Register(g); err != nil {
		panic(err)
	}
}

// Prefixes returns the registered prefixes in sorted order.
func (r *Registry) Prefixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.generators))
	for p := range r.generators {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the generator of the longest prefix that p starts with,
// followed by the generator marker, together with the parsed path.
func (r *Registry) Resolve(p string) (Generator, Path, bool) {
	if !IsGenerated(p) {
		return nil, Path{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best   Generator
		prefix string
	)
	for pfx, g := range r.generators {
		if strings.HasPrefix(p, pfx+defaults.GeneratorMarker) && len(pfx) > len(prefix) {
			best, prefix = g, pfx
		}
	}
	if best == nil {
		return nil, Path{}, false
	}

	sub := strings.TrimPrefix(p, prefix+defaults.GeneratorMarker)
	parsed := Path{Prefix: prefix, Sub: sub}
	if i := strings.Index(sub, defaults.VariantSeparator); i >= 0 {
		parsed.Sub, parsed.Variant = sub[:i], sub[i+1:]
	}
	return best, parsed, true
}
