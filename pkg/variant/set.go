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
	"slices"
	"sort"
	"strings"

	"github.com/NVIDIA/assetpipe/pkg/defaults"
	"github.com/NVIDIA/assetpipe/pkg/errors"
)

// Separator joins the keys of a tuple in its encoded form.
const Separator = defaults.VariantSeparator

// Set is the set of keys available on one variant axis of a bundle.
// Default is either one of Keys or empty, meaning no variant is needed.
type Set struct {
	Axis    string   `json:"axis" yaml:"axis"`
	Default string   `json:"default,omitempty" yaml:"default,omitempty"`
	Keys    []string `json:"keys" yaml:"keys"`
}

// NewSet returns a validated Set with sorted, de-duplicated keys.
func NewSet(axis, def string, keys ...string) (Set, error) {
	if axis == "" {
		return Set{}, errors.New(errors.ErrCodeInvalidConfig, "variant set requires an axis")
	}
	s := Set{Axis: axis, Default: def, Keys: normalizeKeys(keys)}
	if err := s.Validate(); err != nil {
		return Set{}, err
	}
	return s, nil
}

// Validate checks that the default is one of the keys or empty.
func (s Set) Validate() error {
	if strings.Contains(s.Axis, Separator) {
		return errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"variant axis "+s.Axis+" contains "+Separator, map[string]any{"axis": s.Axis})
	}
	for _, k := range s.Keys {
		if strings.Contains(k, Separator) {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"variant key "+k+" contains "+Separator, map[string]any{"axis": s.Axis, "key": k})
		}
	}
	if s.Default != "" && !s.Has(s.Default) {
		return errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"default variant "+s.Default+" is not declared on axis "+s.Axis,
			map[string]any{"axis": s.Axis, "default": s.Default, "keys": s.Keys})
	}
	return nil
}

// Has reports whether key is declared in the set. Keys need not be sorted.
func (s Set) Has(key string) bool {
	return slices.Contains(s.Keys, key)
}

func normalizeKeys(keys []string) []string {
	out := slices.Clone(keys)
	sort.Strings(out)
	return slices.Compact(out)
}

// Sets maps an axis name to its variant set.
type Sets map[string]Set

// Axes returns the declared axes in sorted order.
func (s Sets) Axes() []string {
	axes := make([]string, 0, len(s))
	for a := range s {
		axes = append(axes, a)
	}
	sort.Strings(axes)
	return axes
}

// Merge returns the union of s and other. Keys of a shared axis are
// combined. Defaults of a shared axis must be equal unless one side leaves
// it empty, in which case the non-empty default is kept.
func (s Sets) Merge(other Sets) (Sets, error) {
	out := make(Sets, len(s)+len(other))
	for a, set := range s {
		out[a] = set
	}
	for a, set := range other {
		cur, ok := out[a]
		if !ok {
			out[a] = set
			continue
		}
		def := cur.Default
		switch {
		case def == "":
			def = set.Default
		case set.Default != "" && set.Default != def:
			return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"conflicting defaults on variant axis "+a+": "+def+" and "+set.Default,
				map[string]any{"axis": a, "defaults": []string{def, set.Default}})
		}
		merged, err := NewSet(a, def, append(slices.Clone(cur.Keys), set.Keys...)...)
		if err != nil {
			return nil, err
		}
		out[a] = merged
	}
	return out, nil
}

// Combinations returns every tuple of the cartesian product of the sets,
// varying the last axis fastest. Without sets it returns one empty tuple.
func (s Sets) Combinations() []Tuple {
	combos := []Tuple{{}}
	for _, axis := range s.Axes() {
		keys := s[axis].Keys
		if len(keys) == 0 {
			keys = []string{s[axis].Default}
		}
		next := make([]Tuple, 0, len(combos)*len(keys))
		for _, base := range combos {
			for _, k := range keys {
				t := base.clone()
				t[axis] = k
				next = append(next, t)
			}
		}
		combos = next
	}
	return combos
}

// Defaults returns the tuple holding every axis default.
func (s Sets) Defaults() Tuple {
	t := make(Tuple, len(s))
	for a, set := range s {
		t[a] = set.Default
	}
	return t
}

// Tuple maps an axis name to the resolved key on that axis.
type Tuple map[string]string

// Key returns the canonical encoding of t: its values joined by Separator
// in sorted axis order.
func (t Tuple) Key() string {
	axes := make([]string, 0, len(t))
	for a := range t {
		axes = append(axes, a)
	}
	sort.Strings(axes)
	vals := make([]string, len(axes))
	for i, a := range axes {
		vals[i] = t[a]
	}
	return strings.Join(vals, Separator)
}

// Restrict returns the part of t covering the axes of sets. Axes missing
// from t take the set default.
func (t Tuple) Restrict(sets Sets) Tuple {
	out := make(Tuple, len(sets))
	for a, set := range sets {
		if v, ok := t[a]; ok && (v == set.Default || set.Has(v)) {
			out[a] = v
			continue
		}
		out[a] = set.Default
	}
	return out
}

func (t Tuple) clone() Tuple {
	out := make(Tuple, len(t)+1)
	for k, v := range t {
		out[k] = v
	}
	return out
}

// ParseKey decodes an encoded tuple against the axes of sets.
func ParseKey(key string, sets Sets) (Tuple, error) {
	axes := sets.Axes()
	if len(axes) == 0 {
		if key != "" {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				"unexpected variant key "+key, map[string]any{"key": key})
		}
		return Tuple{}, nil
	}
	vals := strings.Split(key, Separator)
	if len(vals) != len(axes) {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"variant key "+key+" does not match axes "+strings.Join(axes, ","),
			map[string]any{"key": key, "axes": axes})
	}
	t := make(Tuple, len(axes))
	for i, a := range axes {
		t[a] = vals[i]
	}
	return t, nil
}
