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

package resource

import (
	"context"
	"sort"
)

// Composite is a Reader over an ordered list of readers where the first
// reader holding a path wins.
type Composite struct {
	readers []Reader
}

// NewComposite returns a Composite consulting readers in order.
func NewComposite(readers ...Reader) *Composite {
	return &Composite{readers: readers}
}

func (c *Composite) find(ctx context.Context, path string) (Reader, bool) {
	for _, r := range c.readers {
		if r.Exists(ctx, path) {
			return r, true
		}
	}
	return nil, false
}

// Exists implements Reader.
func (c *Composite) Exists(ctx context.Context, path string) bool {
	_, ok := c.find(ctx, path)
	return ok
}

// ReadText implements Reader.
func (c *Composite) ReadText(ctx context.Context, path, charset string) (string, error) {
	r, ok := c.find(ctx, path)
	if !ok {
		return "", NotFound(path)
	}
	return r.ReadText(ctx, path, charset)
}

// ReadBytes implements Reader.
func (c *Composite) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	r, ok := c.find(ctx, path)
	if !ok {
		return nil, NotFound(path)
	}
	return r.ReadBytes(ctx, path)
}

// List merges the children of dir across every reader holding it.
// Names present in several readers are reported once, as seen by the
// first of them.
func (c *Composite) List(ctx context.Context, dir string) ([]Entry, error) {
	seen := make(map[string]bool)
	var merged []Entry
	found := false
	for _, r := range c.readers {
		if !r.Exists(ctx, dir) {
			continue
		}
		entries, err := r.List(ctx, dir)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		found = true
		for _, e := range entries {
			if seen[e.Name] {
				continue
			}
			seen[e.Name] = true
			merged = append(merged, e)
		}
	}
	if !found {
		return nil, NotFound(dir)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })
	return merged, nil
}

// Token implements Reader.
func (c *Composite) Token(ctx context.Context, path string) (string, error) {
	r, ok := c.find(ctx, path)
	if !ok {
		return "", NotFound(path)
	}
	return r.Token(ctx, path)
}
