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
	"strings"

	"github.com/NVIDIA/assetpipe/pkg/defaults"
	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/generator"
	"github.com/NVIDIA/assetpipe/pkg/paths"
)

// Mapping is one parsed member mapping.
type Mapping struct {
	Raw string
	// Path is the normalized path, keeping the generator prefix of
	// generated paths.
	Path      string
	Dir       bool
	Recursive bool
	Generated bool
}

// ParseMapping parses a mapping string:
//
//	/js/app.js            literal file
//	/js/lib/              directory, files only
//	/js/lib/**            directory and sub-directories
//	jar:/vendor/x.js      generated path
//	jar:/vendor/**        directory of a listing generator
func ParseMapping(raw string) (Mapping, error) {
	m := Mapping{Raw: raw}
	s := strings.TrimSpace(raw)
	if s == "" {
		return m, errors.New(errors.ErrCodeInvalidConfig, "empty mapping")
	}

	switch {
	case strings.HasSuffix(s, "/"+defaults.RecursiveSuffix):
		m.Dir, m.Recursive = true, true
		s = strings.TrimSuffix(s, defaults.RecursiveSuffix)
	case s == defaults.RecursiveSuffix:
		m.Dir, m.Recursive = true, true
		s = "/"
	case strings.HasSuffix(s, "/"):
		m.Dir = true
	}

	if generator.IsGenerated(s) {
		m.Generated = true
		i := strings.Index(s, defaults.GeneratorMarker)
		prefix, sub := s[:i+1], s[i+1:]
		if strings.HasPrefix(sub, "/") || m.Dir {
			n, err := paths.Normalize(sub)
			if err != nil {
				return m, err
			}
			sub = n
		}
		m.Path = prefix + sub
		return m, nil
	}

	n, err := paths.Normalize(s)
	if err != nil {
		return m, err
	}
	m.Path = n
	return m, nil
}

// IsLicense reports whether p names a license resource.
func IsLicense(p string) bool {
	return strings.HasSuffix(p, defaults.LicenseFileName)
}

// child returns the path of the entry name inside dir, keeping the
// generator prefix of generated directories.
func child(dir, name string) string {
	if generator.IsGenerated(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	if dir == paths.Root {
		return "/" + name
	}
	return dir + "/" + name
}
