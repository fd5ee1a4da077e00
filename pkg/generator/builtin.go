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

	"github.com/NVIDIA/assetpipe/pkg/defaults"
	"github.com/NVIDIA/assetpipe/pkg/paths"
	"github.com/NVIDIA/assetpipe/pkg/resource"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

// Prefixes of the store-backed generators.
const (
	ClasspathPrefix    = "jar"
	ClasspathCSSPrefix = "jar_css"
	SkinPrefix         = "skin"
	ImagePrefix        = "img"
)

// StoreGenerator serves paths from a secondary store, such as vendored
// libraries kept outside the web root. "jar:/lib/x.js" reads "/lib/x.js".
type StoreGenerator struct {
	prefix string
	kind   Kind
	store  resource.Reader
}

// NewClasspathGenerator returns a text generator serving store under prefix.
func NewClasspathGenerator(prefix string, store resource.Reader) *StoreGenerator {
	return &StoreGenerator{prefix: prefix, kind: Text, store: store}
}

// NewImageGenerator returns a binary generator serving images from store.
func NewImageGenerator(store resource.Reader) *StoreGenerator {
	return &StoreGenerator{prefix: ImagePrefix, kind: Binary, store: store}
}

// Prefix implements Generator.
func (g *StoreGenerator) Prefix() string { return g.prefix }

// Kind implements Generator.
func (g *StoreGenerator) Kind() Kind { return g.kind }

// Generate implements Generator.
func (g *StoreGenerator) Generate(ctx context.Context, gc *Context) ([]byte, error) {
	p, err := paths.Normalize(gc.Path)
	if err != nil {
		return nil, err
	}
	return g.store.ReadBytes(ctx, p)
}

// Exists implements Checker.
func (g *StoreGenerator) Exists(ctx context.Context, gc *Context) bool {
	p, err := paths.Normalize(gc.Path)
	return err == nil && g.store.Exists(ctx, p)
}

// List implements Lister.
func (g *StoreGenerator) List(ctx context.Context, gc *Context) ([]resource.Entry, error) {
	p, err := paths.Normalize(gc.Path)
	if err != nil {
		return nil, err
	}
	return g.store.List(ctx, p)
}

// Token implements Tokener.
func (g *StoreGenerator) Token(ctx context.Context, gc *Context) (string, error) {
	p, err := paths.Normalize(gc.Path)
	if err != nil {
		return "", err
	}
	return g.store.Token(ctx, p)
}

// SkinGenerator serves style sheets per skin. "skin:/css/theme.css" reads
// "/css/<skin>/theme.css", where the available skins are the
// sub-directories of "/css". Without a skin the unskinned file is read.
type SkinGenerator struct {
	// Store holds the skin directories. Nil means the plain resource storage.
	Store   resource.Reader
	Default string
}

// NewSkinGenerator returns a skin generator with the given default skin.
func NewSkinGenerator(store resource.Reader, def string) *SkinGenerator {
	return &SkinGenerator{Store: store, Default: def}
}

// Prefix implements Generator.
func (g *SkinGenerator) Prefix() string { return SkinPrefix }

// Kind implements Generator.
func (g *SkinGenerator) Kind() Kind { return Text }

func (g *SkinGenerator) store(gc *Context) resource.Reader {
	if g.Store != nil {
		return g.Store
	}
	return gc.Reader
}

func (g *SkinGenerator) skinned(gc *Context) (string, error) {
	p, err := paths.Normalize(gc.Path)
	if err != nil {
		return "", err
	}
	skin := gc.Variants[defaults.SkinAxis]
	if skin == "" {
		skin = g.Default
	}
	if skin == "" {
		return p, nil
	}
	return paths.Join(paths.Dir(p), skin+"/"+paths.Base(p))
}

// Generate implements Generator.
func (g *SkinGenerator) Generate(ctx context.Context, gc *Context) ([]byte, error) {
	p, err := g.skinned(gc)
	if err != nil {
		return nil, err
	}
	return g.store(gc).ReadBytes(ctx, p)
}

// Exists implements Checker.
func (g *SkinGenerator) Exists(ctx context.Context, gc *Context) bool {
	p, err := g.skinned(gc)
	return err == nil && g.store(gc).Exists(ctx, p)
}

// Token implements Tokener.
func (g *SkinGenerator) Token(ctx context.Context, gc *Context) (string, error) {
	p, err := g.skinned(gc)
	if err != nil {
		return "", err
	}
	return g.store(gc).Token(ctx, p)
}

// Variants implements VariantProvider.
func (g *SkinGenerator) Variants(ctx context.Context, gc *Context) (variant.Sets, error) {
	p, err := paths.Normalize(gc.Path)
	if err != nil {
		return nil, err
	}
	entries, err := g.store(gc).List(ctx, paths.Dir(p))
	if err != nil {
		return nil, err
	}
	var skins []string
	for _, e := range entries {
		if e.Dir {
			skins = append(skins, e.Name)
		}
	}
	sort.Strings(skins)

	def := g.Default
	set, err := variant.NewSet(defaults.SkinAxis, def, skins...)
	if err != nil {
		return nil, err
	}
	return variant.Sets{defaults.SkinAxis: set}, nil
}
