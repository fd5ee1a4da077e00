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

package variant

import (
	"log/slog"

	"github.com/NVIDIA/assetpipe/pkg/errors"
)

// ResolverSet resolves full variant tuples across axes.
// It is read-only after construction.
type ResolverSet struct {
	resolvers map[string]Resolver
}

// NewResolverSet returns a ResolverSet. Two resolvers for the same axis
// are a configuration error.
func NewResolverSet(resolvers ...Resolver) (*ResolverSet, error) {
	rs := &ResolverSet{resolvers: make(map[string]Resolver, len(resolvers))}
	for _, r := range resolvers {
		if _, dup := rs.resolvers[r.Axis()]; dup {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"duplicate variant resolver for axis "+r.Axis(), map[string]any{"axis": r.Axis()})
		}
		rs.resolvers[r.Axis()] = r
	}
	return rs, nil
}

// Get returns the resolver of axis.
func (rs *ResolverSet) Get(axis string) (Resolver, bool) {
	r, ok := rs.resolvers[axis]
	return r, ok
}

// ResolveTuple resolves a key for every axis of sets. A requested key the
// set does not declare falls back to the set default. Axes without a
// resolver use their default.
func (rs *ResolverSet) ResolveTuple(rc *RequestContext, sets Sets) Tuple {
	t := make(Tuple, len(sets))
	for _, axis := range sets.Axes() {
		set := sets[axis]
		r, ok := rs.resolvers[axis]
		if !ok {
			t[axis] = set.Default
			continue
		}
		requested := r.Resolve(rc)
		key, ok := r.Available(requested, set)
		if !ok {
			slog.Debug("variant not available, using default",
				"code", errors.ErrCodeUnsupportedVariant,
				"axis", axis,
				"requested", requested,
				"default", set.Default)
			key = set.Default
		}
		t[axis] = key
	}
	return t
}
