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

package bundle

import (
	"github.com/NVIDIA/assetpipe/pkg/errors"
)

// Registry indexes the bundles of one build. It is read-only after
// construction; reconfiguration builds a new Registry.
type Registry struct {
	bundles map[string]*Joinable
	ordered []*Joinable
	globals []*Joinable
}

// NewRegistry returns a Registry over joinables, which must be in the
// order returned by Builder.Build.
func NewRegistry(joinables []*Joinable) (*Registry, error) {
	r := &Registry{
		bundles: make(map[string]*Joinable, len(joinables)),
		ordered: joinables,
	}
	for _, j := range joinables {
		if _, exists := r.bundles[j.ID]; exists {
			return nil, errors.NewWithContext(errors.ErrCodeDuplicateBundle,
				"duplicate bundle id "+j.ID, map[string]any{"bundle": j.ID})
		}
		r.bundles[j.ID] = j
		if j.Global {
			r.globals = append(r.globals, j)
		}
	}
	return r, nil
}

// Get retrieves a bundle by identifier.
func (r *Registry) Get(id string) (*Joinable, bool) {
	j, ok := r.bundles[id]
	return j, ok
}

// List returns all bundles in build order.
func (r *Registry) List() []*Joinable {
	out := make([]*Joinable, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Global returns the global bundles in inclusion order.
func (r *Registry) Global() []*Joinable {
	out := make([]*Joinable, len(r.globals))
	copy(out, r.globals)
	return out
}

// Count returns the number of bundles.
func (r *Registry) Count() int {
	return len(r.bundles)
}

// IsEmpty returns true if the registry holds no bundle.
func (r *Registry) IsEmpty() bool {
	return r.Count() == 0
}
