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
	stderrors "errors"
	"fmt"
	"os"
	"sort"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/zeebo/blake3"

	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/paths"
)

// FSStore is a Reader over a billy filesystem.
type FSStore struct {
	fs            billy.Filesystem
	name          string
	modTimeTokens bool
}

// StoreOption is a functional option for configuring an FSStore.
type StoreOption func(*FSStore)

// WithName sets the store name used in log records.
func WithName(name string) StoreOption {
	return func(s *FSStore) {
		s.name = name
	}
}

// WithModTimeTokens makes Token derive from size and modification time
// instead of hashing the content.
func WithModTimeTokens() StoreOption {
	return func(s *FSStore) {
		s.modTimeTokens = true
	}
}

// NewFSStore returns a store reading from fs.
func NewFSStore(fs billy.Filesystem, opts ...StoreOption) *FSStore {
	s := &FSStore{fs: fs, name: "fs"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDirStore returns a store rooted at the directory dir on disk.
func NewDirStore(dir string, opts ...StoreOption) *FSStore {
	return NewFSStore(osfs.New(dir), append([]StoreOption{WithName(dir)}, opts...)...)
}

// NewMemStore returns an empty in-memory store.
func NewMemStore(opts ...StoreOption) *FSStore {
	return NewFSStore(memfs.New(), append([]StoreOption{WithName("memory")}, opts...)...)
}

// Name returns the store name.
func (s *FSStore) Name() string {
	return s.name
}

// WriteFile creates or replaces the file at path, creating parent directories.
func (s *FSStore) WriteFile(path string, data []byte) error {
	p, err := paths.Normalize(path)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(paths.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", p, err)
	}
	if err := util.WriteFile(s.fs, p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// Exists implements Reader.
func (s *FSStore) Exists(_ context.Context, path string) bool {
	_, err := s.fs.Stat(path)
	return err == nil
}

// ReadBytes implements Reader.
func (s *FSStore) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "context cancelled", err)
	}
	info, err := s.fs.Stat(path)
	if err != nil || info.IsDir() {
		return nil, s.statError(path, err)
	}
	data, err := util.ReadFile(s.fs, path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal,
			"failed to read "+path, err, map[string]any{"path": path, "store": s.name})
	}
	return data, nil
}

// ReadText implements Reader.
func (s *FSStore) ReadText(ctx context.Context, path, charset string) (string, error) {
	data, err := s.ReadBytes(ctx, path)
	if err != nil {
		return "", err
	}
	return Decode(data, charset)
}

// List implements Reader.
func (s *FSStore) List(_ context.Context, dir string) ([]Entry, error) {
	infos, err := s.fs.ReadDir(dir)
	if err != nil {
		return nil, s.statError(dir, err)
	}
	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, Entry{Name: fi.Name(), Dir: fi.IsDir()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Token implements Reader.
func (s *FSStore) Token(ctx context.Context, path string) (string, error) {
	if s.modTimeTokens {
		info, err := s.fs.Stat(path)
		if err != nil || info.IsDir() {
			return "", s.statError(path, err)
		}
		return fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano()), nil
	}
	data, err := s.ReadBytes(ctx, path)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return fmt.Sprintf("%x", sum[:]), nil
}

func (s *FSStore) statError(path string, err error) error {
	if err == nil || stderrors.Is(err, os.ErrNotExist) {
		return NotFound(path)
	}
	return errors.WrapWithContext(errors.ErrCodeInternal,
		"failed to access "+path, err, map[string]any{"path": path, "store": s.name})
}
