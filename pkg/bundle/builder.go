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
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/NVIDIA/assetpipe/pkg/defaults"
	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/generator"
	"github.com/NVIDIA/assetpipe/pkg/paths"
	"github.com/NVIDIA/assetpipe/pkg/postprocess"
	"github.com/NVIDIA/assetpipe/pkg/resource"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

// Builder turns bundle definitions into Joinable bundles.
type Builder struct {
	reader     *generator.GeneratedReader
	factory    *postprocess.Factory
	debug      bool
	unitKeys   map[Type][]string
	bundleKeys map[Type][]string
}

// BuilderOption is a functional option for configuring a Builder.
type BuilderOption func(*Builder)

// WithDebug selects the debug inclusion mode: debugOnly bundles are built
// and debugNever bundles are skipped.
func WithDebug(debug bool) BuilderOption {
	return func(b *Builder) {
		b.debug = debug
	}
}

// WithDefaultChains sets the postprocessor keys used by bundles of type t
// that declare none. Nil slices keep the built-in defaults.
func WithDefaultChains(t Type, unit, bundle []string) BuilderOption {
	return func(b *Builder) {
		if unit != nil {
			b.unitKeys[t] = unit
		}
		if bundle != nil {
			b.bundleKeys[t] = bundle
		}
	}
}

// NewBuilder returns a Builder resolving members through reader.
func NewBuilder(reader *generator.GeneratedReader, factory *postprocess.Factory, opts ...BuilderOption) *Builder {
	b := &Builder{
		reader:     reader,
		factory:    factory,
		unitKeys:   make(map[Type][]string),
		bundleKeys: make(map[Type][]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Debug reports the inclusion mode of the builder.
func (b *Builder) Debug() bool {
	return b.debug
}

// Build expands every definition. Global bundles come first, ordered by
// Order and then by definition order, followed by the other bundles in
// definition order. Bundles excluded by the debug mode are left out.
//
// Duplicate identifiers are reported before anything is expanded. No
// partial result is returned on error.
func (b *Builder) Build(ctx context.Context, defs []Definition) ([]*Joinable, error) {
	index := make(map[string]int, len(defs))
	for i := range defs {
		id := defs[i].ID
		if _, dup := index[id]; dup {
			return nil, errors.NewWithContext(errors.ErrCodeDuplicateBundle,
				"duplicate bundle id "+id, map[string]any{"bundle": id, "position": i})
		}
		index[id] = i
	}
	for i := range defs {
		if err := defs[i].Validate(); err != nil {
			return nil, err
		}
	}

	run := &buildRun{
		Builder: b,
		defs:    defs,
		index:   index,
		done:    make(map[string]*Joinable, len(defs)),
		owners:  mappedDirs(defs),
	}

	var globals, others []*Joinable
	for i := range defs {
		if b.skipped(&defs[i]) {
			slog.Debug("bundle skipped in this mode", "bundle", defs[i].ID, "debug", b.debug)
			continue
		}
		j, err := run.expand(ctx, defs[i].ID, nil)
		if err != nil {
			return nil, err
		}
		if j.Global {
			globals = append(globals, j)
		} else {
			others = append(others, j)
		}
	}

	sort.SliceStable(globals, func(x, y int) bool {
		if globals[x].Order != globals[y].Order {
			return globals[x].Order < globals[y].Order
		}
		return globals[x].index < globals[y].index
	})

	slog.Debug("bundles built", "count", len(globals)+len(others), "global", len(globals))
	return append(globals, others...), nil
}

func (b *Builder) skipped(d *Definition) bool {
	return (d.DebugOnly && !b.debug) || (d.DebugNever && b.debug)
}

func (b *Builder) chains(d *Definition) (*postprocess.Chain, *postprocess.Chain, error) {
	t := d.ResolvedType()
	unitKeys := d.UnitPostProcessors
	if unitKeys == nil {
		unitKeys = b.unitKeys[t]
	}
	if unitKeys == nil {
		unitKeys = postprocess.DefaultUnitKeys(string(t))
	}
	bundleKeys := d.PostProcessors
	if bundleKeys == nil {
		bundleKeys = b.bundleKeys[t]
	}
	if bundleKeys == nil {
		bundleKeys = postprocess.DefaultBundleKeys(string(t))
	}

	unit, err := b.factory.Chain(unitKeys)
	if err != nil {
		return nil, nil, errors.WrapWithContext(errors.ErrCodeInvalidConfig,
			"bundle "+d.ID+": invalid unit postprocessors", err, map[string]any{"bundle": d.ID})
	}
	bundle, err := b.factory.Chain(bundleKeys)
	if err != nil {
		return nil, nil, errors.WrapWithContext(errors.ErrCodeInvalidConfig,
			"bundle "+d.ID+": invalid postprocessors", err, map[string]any{"bundle": d.ID})
	}
	return unit, bundle, nil
}

// mappedDirs returns the owner of every plain directory mapping.
func mappedDirs(defs []Definition) map[string]string {
	owners := make(map[string]string)
	for i := range defs {
		for _, raw := range defs[i].Mappings {
			m, err := ParseMapping(raw)
			if err != nil || !m.Dir || m.Generated {
				continue
			}
			if _, ok := owners[m.Path]; !ok {
				owners[m.Path] = defs[i].ID
			}
		}
	}
	return owners
}

// buildRun holds the state of one Build call.
type buildRun struct {
	*Builder
	defs   []Definition
	index  map[string]int
	done   map[string]*Joinable
	owners map[string]string
}

func (r *buildRun) expand(ctx context.Context, id string, ancestors []string) (*Joinable, error) {
	if j, ok := r.done[id]; ok {
		return j, nil
	}
	if slices.Contains(ancestors, id) {
		cycle := strings.Join(append(slices.Clone(ancestors), id), " -> ")
		return nil, errors.NewWithContext(errors.ErrCodeCompositionCycle,
			"composition cycle "+cycle, map[string]any{"bundle": id, "path": cycle})
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "context cancelled", err)
	}

	i := r.index[id]
	d := &r.defs[i]
	unit, bundle, err := r.chains(d)
	if err != nil {
		return nil, err
	}

	j := &Joinable{
		ID:           d.ID,
		Type:         d.ResolvedType(),
		Prefix:       d.Prefix,
		Global:       d.Global,
		Composite:    d.Composite,
		Order:        d.Order,
		Children:     slices.Clone(d.Children),
		AlternateURL: d.AlternateURL,
		UnitChain:    unit,
		BundleChain:  bundle,
		index:        i,
	}
	c := newCollector(r.reader)

	switch {
	case d.AlternateURL != "":
	case d.Composite:
		path := append(slices.Clone(ancestors), id)
		for _, childID := range d.Children {
			ci, ok := r.index[childID]
			if !ok {
				return nil, errors.NewWithContext(errors.ErrCodeNotFound,
					"bundle "+id+": unknown child bundle "+childID,
					map[string]any{"bundle": id, "child": childID})
			}
			if r.skipped(&r.defs[ci]) {
				continue
			}
			cj, err := r.expand(ctx, childID, path)
			if err != nil {
				return nil, err
			}
			if cj.AlternateURL != "" {
				return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
					"bundle "+id+": child "+childID+" has an alternate url",
					map[string]any{"bundle": id, "child": childID})
			}
			if err := c.absorb(cj); err != nil {
				return nil, wrapSets(id, err)
			}
		}
	default:
		for _, raw := range d.Mappings {
			m, err := ParseMapping(raw)
			if err != nil {
				return nil, errors.WrapWithContext(errors.ErrCodeInvalidConfig,
					"bundle "+id+": invalid mapping "+raw, err, map[string]any{"bundle": id, "mapping": raw})
			}
			if err := r.expandMapping(ctx, d, m, unit, c); err != nil {
				return nil, err
			}
		}
	}

	declared := make(variant.Sets, len(d.Variants))
	for axis, set := range d.Variants {
		ns, err := variant.NewSet(axis, set.Default, set.Keys...)
		if err != nil {
			return nil, wrapSets(id, err)
		}
		declared[axis] = ns
	}
	if err := c.merge(declared); err != nil {
		return nil, wrapSets(id, err)
	}

	j.members = c.members
	j.Licenses = c.licenses
	j.Variants = c.sets
	r.done[id] = j
	return j, nil
}

func wrapSets(id string, err error) error {
	return errors.WrapWithContext(errors.ErrCodeInvalidConfig,
		"bundle "+id+": incompatible variant sets", err, map[string]any{"bundle": id})
}

func notFound(d *Definition, raw, p string, cause error) error {
	return errors.WrapWithContext(errors.ErrCodeNotFound,
		fmt.Sprintf("bundle %s: mapping %s: resource %s not found", d.ID, raw, p), cause,
		map[string]any{"bundle": d.ID, "mapping": raw, "path": p})
}

func (r *buildRun) expandMapping(ctx context.Context, d *Definition, m Mapping, unit *postprocess.Chain, c *collector) error {
	if m.Dir {
		return r.expandDir(ctx, d, m.Raw, m.Path, m.Recursive, unit, c)
	}
	if IsLicense(m.Path) {
		if !r.reader.Exists(ctx, m.Path) {
			return notFound(d, m.Raw, m.Path, nil)
		}
		c.addLicense(m.Path)
		return nil
	}
	return r.addMember(ctx, d, m.Raw, m.Path, unit, c)
}

func (r *buildRun) addMember(ctx context.Context, d *Definition, raw, p string, unit *postprocess.Chain, c *collector) error {
	if generator.IsGenerated(p) {
		g, _, ok := r.reader.Registry().Resolve(p)
		if !ok {
			return notFound(d, raw, p, nil)
		}
		if g.Kind() == generator.Binary {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("bundle %s: mapping %s: generator %s emits binary content", d.ID, raw, g.Prefix()),
				map[string]any{"bundle": d.ID, "mapping": raw, "path": p})
		}
	}
	if !r.reader.Exists(ctx, p) {
		return notFound(d, raw, p, nil)
	}
	sets, err := r.reader.VariantSets(ctx, p)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("bundle %s: mapping %s: cannot resolve variants of %s", d.ID, raw, p), err,
			map[string]any{"bundle": d.ID, "mapping": raw, "path": p})
	}
	if err := c.add(Member{Path: p, Sets: sets, Unit: unit}); err != nil {
		return wrapSets(d.ID, err)
	}
	return nil
}

func (r *buildRun) expandDir(ctx context.Context, d *Definition, raw, dir string, recursive bool, unit *postprocess.Chain, c *collector) error {
	entries, err := r.reader.List(ctx, dir)
	if err != nil {
		if resource.IsNotFound(err) {
			return notFound(d, raw, dir, err)
		}
		return err
	}

	var (
		files    []string
		subdirs  []string
		hasOrder bool
	)
	ext := d.ResolvedType().Extension()
	for _, e := range entries {
		p := child(dir, e.Name)
		switch {
		case e.Dir:
			subdirs = append(subdirs, p)
		case e.Name == defaults.SortFileName:
			hasOrder = true
		case IsLicense(e.Name):
			c.addLicense(p)
		case strings.HasSuffix(e.Name, ext):
			files = append(files, p)
		}
	}

	if hasOrder {
		sortFile := child(dir, defaults.SortFileName)
		content, err := r.reader.ReadText(ctx, sortFile, "")
		if err != nil {
			return notFound(d, raw, sortFile, err)
		}
		files = MergeSortOrder(sortFileLines(dir, content), files)
	}

	for _, f := range files {
		if err := r.addMember(ctx, d, raw, f, unit, c); err != nil {
			return err
		}
	}

	if !recursive {
		return nil
	}
	for _, sub := range subdirs {
		if r.excluded(d, sub) {
			continue
		}
		if err := r.expandDir(ctx, d, raw, sub, true, unit, c); err != nil {
			return err
		}
	}
	return nil
}

// excluded reports whether the recursive expansion of d skips dir, either
// because it matches one of the exclusions of d or because another bundle
// maps it.
func (r *buildRun) excluded(d *Definition, dir string) bool {
	for _, pattern := range d.Exclusions {
		if ok, _ := doublestar.Match(strings.TrimSuffix(pattern, "/"), dir); ok {
			slog.Debug("directory excluded", "bundle", d.ID, "dir", dir, "pattern", pattern)
			return true
		}
	}
	if owner, ok := r.owners[dir]; ok && owner != d.ID {
		slog.Debug("directory mapped by another bundle", "bundle", d.ID, "dir", dir, "owner", owner)
		return true
	}
	return false
}

// sortFileLines resolves the lines of a sort file against its directory.
func sortFileLines(dir, content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		if generator.IsGenerated(dir) {
			out = append(out, child(dir, strings.TrimPrefix(name, "/")))
			continue
		}
		p, err := paths.Join(dir, name)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MergeSortOrder orders available by the sort file entries in order:
// every entry found in available is moved to the result in file order,
// then the remaining resources follow in their original order. Entries
// absent from available are ignored.
func MergeSortOrder(order, available []string) []string {
	remaining := slices.Clone(available)
	out := make([]string, 0, len(available))
	for _, p := range order {
		idx := slices.Index(remaining, p)
		if idx < 0 {
			continue
		}
		out = append(out, p)
		remaining = slices.Delete(remaining, idx, idx+1)
	}
	return append(out, remaining...)
}

// collector accumulates the members of one bundle.
type collector struct {
	reader   *generator.GeneratedReader
	members  []Member
	seen     map[string]bool
	licenses []string
	licSeen  map[string]bool
	sets     variant.Sets
}

func newCollector(reader *generator.GeneratedReader) *collector {
	return &collector{
		reader:  reader,
		seen:    make(map[string]bool),
		licSeen: make(map[string]bool),
		sets:    variant.Sets{},
	}
}

func (c *collector) add(m Member) error {
	if c.seen[m.Path] {
		return nil
	}
	c.seen[m.Path] = true
	c.members = append(c.members, m)
	return c.merge(m.Sets)
}

func (c *collector) addLicense(p string) {
	if c.licSeen[p] {
		return
	}
	c.licSeen[p] = true
	c.licenses = append(c.licenses, p)
}

func (c *collector) merge(sets variant.Sets) error {
	if len(sets) == 0 {
		return nil
	}
	merged, err := c.sets.Merge(sets)
	if err != nil {
		return err
	}
	c.sets = merged
	return nil
}

func (c *collector) absorb(j *Joinable) error {
	for _, m := range j.members {
		if err := c.add(m); err != nil {
			return err
		}
	}
	for _, l := range j.Licenses {
		c.addLicense(l)
	}
	return c.merge(j.Variants)
}
