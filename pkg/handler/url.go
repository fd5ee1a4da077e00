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

package handler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/NVIDIA/assetpipe/pkg/defaults"
	"github.com/NVIDIA/assetpipe/pkg/errors"
)

var fingerprintSegment = regexp.MustCompile(fmt.Sprintf(`^([0-9a-f]{%d})(?:\.(.*))?$`, defaults.FingerprintLength))

// BundleURL is a served bundle URL split into its parts.
type BundleURL struct {
	Prefix      string
	Fingerprint string
	VariantKey  string
	BundleID    string
}

// BuildURL returns <contextPath>[/<prefix>]/<fingerprint>[.<variantKey>]<id>.
func BuildURL(contextPath, prefix, fingerprint, variantKey, id string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(contextPath, "/"))
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		b.WriteString("/")
		b.WriteString(prefix)
	}
	b.WriteString("/")
	b.WriteString(fingerprint)
	if variantKey != "" {
		b.WriteString(".")
		b.WriteString(variantKey)
	}
	if !strings.HasPrefix(id, "/") {
		b.WriteString("/")
	}
	b.WriteString(id)
	return b.String()
}

// ParseURL splits a URL produced by BuildURL. Query strings are ignored.
func ParseURL(contextPath, url string) (*BundleURL, error) {
	invalid := func(msg string) error {
		return errors.NewWithContext(errors.ErrCodeNotFound, msg, map[string]any{"url": url})
	}

	p, _, _ := strings.Cut(url, "?")
	contextPath = strings.TrimSuffix(contextPath, "/")
	if contextPath != "" {
		if !strings.HasPrefix(p, contextPath+"/") {
			return nil, invalid("url outside of context path " + contextPath)
		}
		p = p[len(contextPath):]
	}
	p = strings.TrimPrefix(p, "/")

	u := &BundleURL{}
	first, rest, ok := strings.Cut(p, "/")
	if !ok {
		return nil, invalid("malformed bundle url")
	}
	m := fingerprintSegment.FindStringSubmatch(first)
	if m == nil {
		u.Prefix = first
		first, rest, ok = strings.Cut(rest, "/")
		if !ok {
			return nil, invalid("malformed bundle url")
		}
		if m = fingerprintSegment.FindStringSubmatch(first); m == nil {
			return nil, invalid("bundle url without fingerprint")
		}
	}
	if rest == "" {
		return nil, invalid("bundle url without bundle id")
	}
	u.Fingerprint = m[1]
	u.VariantKey = m[2]
	u.BundleID = "/" + rest
	return u, nil
}
