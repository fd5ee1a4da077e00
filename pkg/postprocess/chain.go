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

package postprocess

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/resource"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

// NoneKey configures an empty chain.
const NoneKey = "none"

// Status carries the state of one bundle build through the chains.
// It is created per build and never shared between builds.
type Status struct {
	BundleID   string
	BundleType string
	// URL is the path the bundle is served at.
	URL string
	// Member is the member being processed by a per-unit chain, empty for
	// the per-bundle chain.
	Member   string
	Licenses []string
	Reader   resource.Reader
	Charset  string
	Variants variant.Tuple
	Debug    bool
}

// Processor transforms content.
type Processor interface {
	Process(ctx context.Context, st *Status, content []byte) ([]byte, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, st *Status, content []byte) ([]byte, error)

// Process implements Processor.
func (f ProcessorFunc) Process(ctx context.Context, st *Status, content []byte) ([]byte, error) {
	return f(ctx, st, content)
}

type element struct {
	key string
	p   Processor
}

// Chain runs processors strictly in order, each one receiving the complete
// output of its predecessor. A nil Chain returns content unchanged.
type Chain struct {
	elems []element
}

// Keys returns the keys of the chain elements in order.
func (c *Chain) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.elems))
	for i, e := range c.elems {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of elements.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.elems)
}

// Process runs every element over content. A failing element aborts the
// chain with a TRANSFORM_FAILURE error naming the bundle and the element.
func (c *Chain) Process(ctx context.Context, st *Status, content []byte) ([]byte, error) {
	if c == nil {
		return content, nil
	}
	for _, e := range c.elems {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTransformFailure, "context cancelled", err)
		}
		out, err := e.p.Process(ctx, st, content)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeTransformFailure,
				fmt.Sprintf("postprocessor %s failed for bundle %s", e.key, st.BundleID), err,
				map[string]any{"bundle": st.BundleID, "member": st.Member, "postprocessor": e.key})
		}
		content = out
	}
	return content, nil
}

// Constructor creates a Processor.
type Constructor func() Processor

// Factory maps postprocessor keys to constructors.
type Factory struct {
	ctors map[string]Constructor
	mu    sync.RWMutex
}

// NewFactory returns a Factory holding the built-in postprocessors.
func NewFactory() *Factory {
	f := &Factory{ctors: make(map[string]Constructor)}
	f.MustRegister(CSSMinifyKey, func() Processor { return ProcessorFunc(cssMinify) })
	f.MustRegister(JSMinKey, func() Processor { return ProcessorFunc(jsMin) })
	f.MustRegister(LicenseKey, func() Processor { return ProcessorFunc(includeLicenses) })
	f.MustRegister(CSSURLKey, func() Processor { return ProcessorFunc(rewriteCSSURLs) })
	f.MustRegister(CSSCharsetKey, func() Processor { return ProcessorFunc(filterCSSCharset) })
	return f
}

// Register adds a constructor under key.
func (f *Factory) Register(key string, ctor Constructor) error {
	if key == "" || key == NoneKey || strings.Contains(key, ",") {
		return errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"invalid postprocessor key "+key, map[string]any{"key": key})
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.ctors[key]; exists {
		return errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"postprocessor "+key+" already registered", map[string]any{"key": key})
	}
	f.ctors[key] = ctor
	return nil
}

// MustRegister is like Register but panics on error.
func (f *Factory) MustRegister(key string, ctor Constructor) {
	if err := f.Register(key, ctor); err != nil {
		panic(err)
	}
}

// Keys returns the registered keys in sorted order.
func (f *Factory) Keys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	keys := make([]string, 0, len(f.ctors))
	for k := range f.ctors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Chain builds a chain of the processors named by keys. The key "none"
// yields an empty chain. Unknown keys are an INVALID_CONFIG error.
func (f *Factory) Chain(keys []string) (*Chain, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	c := &Chain{}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" || k == NoneKey {
			continue
		}
		ctor, ok := f.ctors[k]
		if !ok {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"unknown postprocessor "+k, map[string]any{"key": k})
		}
		c.elems = append(c.elems, element{key: k, p: ctor()})
	}
	return c, nil
}

// ParseKeys splits a comma separated key list.
func ParseKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// DefaultUnitKeys returns the per-unit chain used for a bundle type when
// none is configured.
func DefaultUnitKeys(bundleType string) []string {
	switch bundleType {
	case "js":
		return []string{JSMinKey}
	case "css":
		return []string{CSSURLKey, CSSMinifyKey}
	}
	return nil
}

// DefaultBundleKeys returns the per-bundle chain used for a bundle type
// when none is configured.
func DefaultBundleKeys(bundleType string) []string {
	switch bundleType {
	case "js":
		return []string{LicenseKey}
	case "css":
		return []string{CSSCharsetKey, LicenseKey}
	}
	return nil
}
