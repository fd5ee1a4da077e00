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
	"github.com/NVIDIA/assetpipe/pkg/generator"
	"github.com/NVIDIA/assetpipe/pkg/postprocess"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

// Member is one resolved member of a bundle.
type Member struct {
	// Path is a normalized resource path or a generated path without
	// variant suffix.
	Path string
	// Sets are the variant sets the member depends on.
	Sets variant.Sets
	// Unit is the per-unit chain of the bundle declaring the member.
	Unit *postprocess.Chain
}

// Unit is a member resolved for one variant tuple.
type Unit struct {
	Path  string
	Chain *postprocess.Chain
}

// Joinable is a built bundle. It is immutable once returned by the Builder
// and shared by every reader.
type Joinable struct {
	ID           string
	Type         Type
	Prefix       string
	Global       bool
	Composite    bool
	Order        int
	Children     []string
	AlternateURL string

	// Licenses lists the license resources appended to the bundle, in
	// discovery order.
	Licenses []string
	// Variants holds the merged variant sets of the bundle and its members.
	Variants variant.Sets

	UnitChain   *postprocess.Chain
	BundleChain *postprocess.Chain

	members []Member
	index   int
}

// Paths returns the member paths without variant suffixes.
func (j *Joinable) Paths() []string {
	out := make([]string, len(j.members))
	for i, m := range j.members {
		out[i] = m.Path
	}
	return out
}

// Members returns the member paths for tuple t. Generated members that
// depend on variants carry the suffix of their part of t.
func (j *Joinable) Members(t variant.Tuple) []string {
	units := j.Units(t)
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Path
	}
	return out
}

// Units returns the members for tuple t with their per-unit chains.
func (j *Joinable) Units(t variant.Tuple) []Unit {
	out := make([]Unit, len(j.members))
	for i, m := range j.members {
		p := m.Path
		if len(m.Sets) > 0 && generator.IsGenerated(p) {
			p = generator.WithVariant(p, t.Restrict(m.Sets).Key())
		}
		out[i] = Unit{Path: p, Chain: m.Unit}
	}
	return out
}

// Tuples returns every variant tuple of the bundle.
func (j *Joinable) Tuples() []variant.Tuple {
	return j.Variants.Combinations()
}

// IsAlternate reports whether the bundle is served from its alternate URL.
func (j *Joinable) IsAlternate() bool {
	return j.AlternateURL != ""
}
