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
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/NVIDIA/assetpipe/pkg/errors"
)

// Entry is one child of a listed directory.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	Dir  bool   `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// Reader reads resources by normalized logical path.
//
// Implementations must be safe for concurrent use. Every miss is reported
// as a NOT_FOUND structured error created by NotFound.
type Reader interface {
	// Exists reports whether path names a file or directory.
	Exists(ctx context.Context, path string) bool

	// ReadText returns the content of path decoded from charset.
	ReadText(ctx context.Context, path, charset string) (string, error)

	// ReadBytes returns the raw content of path.
	ReadBytes(ctx context.Context, path string) ([]byte, error)

	// List returns the children of the directory path sorted by name.
	List(ctx context.Context, dir string) ([]Entry, error)

	// Token returns a change-detection token for path. Two reads of an
	// unchanged resource return the same token.
	Token(ctx context.Context, path string) (string, error)
}

// NotFound returns the error reported for a missing resource.
func NotFound(path string) error {
	return errors.NewWithContext(errors.ErrCodeNotFound,
		"resource not found: "+path, map[string]any{"path": path})
}

// IsNotFound reports whether err reports a missing resource.
func IsNotFound(err error) bool {
	return errors.IsCode(err, errors.ErrCodeNotFound)
}

// Decode converts data from the named charset to a UTF-8 string.
// An empty name or any spelling of UTF-8 returns data unchanged.
func Decode(data []byte, charset string) (string, error) {
	if isUTF8(charset) {
		return string(data), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeInvalidConfig,
			"unsupported charset "+charset, err, map[string]any{"charset": charset})
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to decode "+charset+" content", err)
	}
	return string(out), nil
}

func isUTF8(charset string) bool {
	switch strings.ToLower(strings.ReplaceAll(charset, "_", "-")) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}
