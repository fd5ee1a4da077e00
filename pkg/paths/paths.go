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

package paths

import (
	stderrors "errors"
	"path"
	"strings"

	"github.com/NVIDIA/assetpipe/pkg/errors"
)

// Root is the normalized root path.
const Root = "/"

// ErrEscapesRoot is the cause of every error returned for a path whose ".."
// segments walk above the root.
var ErrEscapesRoot = stderrors.New("path escapes root")

// Normalize returns the canonical form of p: slash separated, absolute,
// without "." segments, ".." segments or duplicate slashes, and without a
// trailing slash unless p is the root. Backslashes are treated as
// separators. Normalizing a normalized path returns it unchanged.
func Normalize(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")

	segments := strings.Split(p, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", errors.WrapWithContext(errors.ErrCodeInvalidConfig,
					"cannot normalize "+p, ErrEscapesRoot, map[string]any{"path": p})
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}
	return Root + strings.Join(out, "/"), nil
}

// MustNormalize is like Normalize but panics when p escapes the root.
// Use it only for literals known to be valid.
func MustNormalize(p string) string {
	n, err := Normalize(p)
	if err != nil {
		panic(err)
	}
	return n
}

// IsWebRootRelative reports whether ref is addressed from the web root
// rather than relative to a base.
func IsWebRootRelative(ref string) bool {
	return strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "\\")
}

// Join resolves ref against the directory base. A web-root-relative ref is
// only normalized.
func Join(base, ref string) (string, error) {
	if IsWebRootRelative(ref) {
		return Normalize(ref)
	}
	return Normalize(base + "/" + ref)
}

// Resolve resolves ref against the directory containing the file at base.
func Resolve(base, ref string) (string, error) {
	dir, err := Normalize(base)
	if err != nil {
		return "", err
	}
	return Join(path.Dir(dir), ref)
}

// Dir returns the parent directory of a normalized path.
func Dir(p string) string {
	return path.Dir(p)
}

// Base returns the last element of a normalized path.
func Base(p string) string {
	return path.Base(p)
}

// Ext returns the file name extension of p without the leading dot.
func Ext(p string) string {
	return strings.TrimPrefix(path.Ext(p), ".")
}

// HasPrefix reports whether the normalized path p equals dir or lies below it.
func HasPrefix(p, dir string) bool {
	if dir == Root {
		return strings.HasPrefix(p, Root)
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}

// Rel returns the relative reference that leads from directory fromDir to
// the path to. Both arguments must be normalized.
func Rel(fromDir, to string) string {
	from := split(fromDir)
	target := split(to)

	common := 0
	for common < len(from) && common < len(target) && from[common] == target[common] {
		common++
	}

	parts := make([]string, 0, len(from)-common+len(target)-common)
	for range from[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, target[common:]...)
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}

func split(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
