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
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/NVIDIA/assetpipe/pkg/defaults"
)

// RequestContext carries the caller state consulted by resolvers.
type RequestContext struct {
	// Locale is an explicit locale that takes precedence over cookies and headers.
	Locale  string
	Cookies map[string]string
	Headers http.Header
	Path    string
}

// FromHTTPRequest builds a RequestContext from an HTTP request.
func FromHTTPRequest(r *http.Request) *RequestContext {
	rc := &RequestContext{
		Cookies: make(map[string]string),
		Headers: r.Header.Clone(),
		Path:    r.URL.Path,
	}
	for _, c := range r.Cookies() {
		rc.Cookies[c.Name] = c.Value
	}
	return rc
}

func (rc *RequestContext) cookie(name string) string {
	if rc == nil || name == "" {
		return ""
	}
	return rc.Cookies[name]
}

// Resolver selects the variant key of one axis for a request.
type Resolver interface {
	// Axis names the axis the resolver handles.
	Axis() string

	// Resolve returns the key requested by rc, or the resolver default.
	Resolve(rc *RequestContext) string

	// Available returns the key of set serving requested, if any.
	Available(requested string, set Set) (string, bool)
}

// LocaleResolver resolves locales from an explicit context locale, a
// cookie or the Accept-Language header, in that order.
type LocaleResolver struct {
	Cookie  string
	Default string
}

// Axis implements Resolver.
func (r *LocaleResolver) Axis() string {
	return defaults.LocaleAxis
}

// Resolve implements Resolver.
func (r *LocaleResolver) Resolve(rc *RequestContext) string {
	if rc != nil && rc.Locale != "" {
		return CanonicalLocale(rc.Locale)
	}
	if v := rc.cookie(r.Cookie); v != "" {
		return CanonicalLocale(v)
	}
	if rc != nil && rc.Headers != nil {
		tags, _, err := language.ParseAcceptLanguage(rc.Headers.Get("Accept-Language"))
		if err == nil && len(tags) > 0 {
			return CanonicalLocale(tags[0].String())
		}
	}
	return r.Default
}

// Available walks the locale hierarchy of requested, so "es_ES" falls back
// to "es" when only the language is declared.
func (r *LocaleResolver) Available(requested string, set Set) (string, bool) {
	loc := CanonicalLocale(requested)
	for loc != "" {
		if set.Has(loc) {
			return loc, true
		}
		i := strings.LastIndex(loc, "_")
		if i < 0 {
			break
		}
		loc = loc[:i]
	}
	return "", false
}

// CanonicalLocale converts a BCP 47 tag or a lang_REGION locale to the
// underscore form used as variant key, e.g. "en-us" to "en_US".
func CanonicalLocale(loc string) string {
	loc = strings.TrimSpace(strings.ReplaceAll(loc, "_", "-"))
	if loc == "" {
		return ""
	}
	if tag, err := language.Parse(loc); err == nil {
		loc = tag.String()
	}
	return strings.ReplaceAll(loc, "-", "_")
}

// CookieResolver resolves an axis from a named cookie. It serves skins and
// any other axis selected by client state.
type CookieResolver struct {
	Name    string
	Cookie  string
	Default string
}

// Axis implements Resolver.
func (r *CookieResolver) Axis() string {
	return r.Name
}

// Resolve implements Resolver.
func (r *CookieResolver) Resolve(rc *RequestContext) string {
	if v := rc.cookie(r.Cookie); v != "" {
		return v
	}
	return r.Default
}

// Available implements Resolver with exact membership.
func (r *CookieResolver) Available(requested string, set Set) (string, bool) {
	if set.Has(requested) {
		return requested, true
	}
	return "", false
}
