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

package postprocess

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	esbuild "github.com/evanw/esbuild/pkg/api"

	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/generator"
	"github.com/NVIDIA/assetpipe/pkg/paths"
)

// Built-in postprocessor keys.
const (
	CSSMinifyKey  = "cssminify"
	JSMinKey      = "jsmin"
	LicenseKey    = "license"
	CSSURLKey     = "cssurl"
	CSSCharsetKey = "csscharset"
)

// MinifyCSS strips comments, turns raw newlines, tabs and form feeds into
// spaces, then collapses whitespace: runs next to one of "{}():;" or at
// either end of the input are removed, other runs become a single space.
// Quoted strings are copied verbatim.
func MinifyCSS(css string) string {
	return collapseSpaces(stripComments(css))
}

func cssMinify(_ context.Context, st *Status, content []byte) ([]byte, error) {
	if st.Debug {
		return content, nil
	}
	return []byte(MinifyCSS(string(content))), nil
}

// quoted copies the string literal starting at s[i] to b and returns the
// index following it. An unterminated literal runs to the end of s.
func quoted(b *strings.Builder, s string, i int) int {
	q := s[i]
	b.WriteByte(q)
	for i++; i < len(s); i++ {
		b.WriteByte(s[i])
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case q:
			return i + 1
		}
	}
	return i
}

func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			i = quoted(&b, s, i)
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 4
		case c == '\r' || c == '\n' || c == '\t' || c == '\f':
			b.WriteByte(' ')
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func isStructural(c byte) bool {
	switch c {
	case '{', '}', '(', ')', ':', ';':
		return true
	}
	return false
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev byte
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			i = quoted(&b, s, i)
			prev = s[i-1]
		case c == ' ':
			j := i
			for j < len(s) && s[j] == ' ' {
				j++
			}
			if b.Len() > 0 && j < len(s) && !isStructural(prev) && !isStructural(s[j]) {
				b.WriteByte(' ')
				prev = ' '
			}
			i = j
		default:
			b.WriteByte(c)
			prev = c
			i++
		}
	}
	return b.String()
}

func jsMin(_ context.Context, st *Status, content []byte) ([]byte, error) {
	if st.Debug || len(bytes.TrimSpace(content)) == 0 {
		return content, nil
	}
	res := esbuild.Transform(string(content), esbuild.TransformOptions{
		Loader:           esbuild.LoaderJS,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		LegalComments:    esbuild.LegalCommentsNone,
		Charset:          esbuild.CharsetUTF8,
		Sourcefile:       st.Member,
		LogLevel:         esbuild.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		m := res.Errors[0]
		details := map[string]any{"member": st.Member, "text": m.Text}
		if m.Location != nil {
			details["line"] = m.Location.Line
			details["column"] = m.Location.Column
		}
		return nil, errors.NewWithContext(errors.ErrCodeTransformFailure,
			"javascript syntax error: "+m.Text, details)
	}
	return res.Code, nil
}

func includeLicenses(ctx context.Context, st *Status, content []byte) ([]byte, error) {
	if len(st.Licenses) == 0 {
		return content, nil
	}
	out := bytes.Clone(content)
	for _, lic := range st.Licenses {
		text, err := st.Reader.ReadText(ctx, lic, st.Charset)
		if err != nil {
			return nil, err
		}
		if len(out) > 0 && out[len(out)-1] != '\n' {
			out = append(out, '\n')
		}
		out = append(out, text...)
	}
	return out, nil
}

var cssURLPattern = regexp.MustCompile(`url\(\s*(['"]?)([^'")]*?)(['"]?)\s*\)`)

// RewriteCSSURLs rewrites the relative url() references of the style sheet
// at member so they stay valid when served from bundleURL.
func RewriteCSSURLs(css, member, bundleURL string) (string, error) {
	var rerr error
	out := cssURLPattern.ReplaceAllStringFunc(css, func(m string) string {
		parts := cssURLPattern.FindStringSubmatch(m)
		ref := strings.TrimSpace(parts[2])
		if !isRelativeURL(ref) {
			return m
		}
		target, suffix := ref, ""
		if i := strings.IndexAny(ref, "?#"); i >= 0 {
			target, suffix = ref[:i], ref[i:]
		}
		abs, err := paths.Resolve(member, target)
		if err != nil {
			rerr = err
			return m
		}
		rel := paths.Rel(paths.Dir(bundleURL), abs)
		return "url(" + parts[1] + rel + suffix + parts[3] + ")"
	})
	if rerr != nil {
		return "", rerr
	}
	return out, nil
}

func isRelativeURL(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || paths.IsWebRootRelative(ref) {
		return false
	}
	lower := strings.ToLower(ref)
	return !strings.HasPrefix(lower, "data:") && !strings.Contains(lower, "://")
}

// Generated members have no location on the web root and keep their urls.
func rewriteCSSURLs(_ context.Context, st *Status, content []byte) ([]byte, error) {
	if st.URL == "" || st.Member == "" || generator.IsGenerated(st.Member) {
		return content, nil
	}
	out, err := RewriteCSSURLs(string(content), st.Member, st.URL)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

var charsetPattern = regexp.MustCompile(`@charset\s*["'][^"']*["']\s*;`)

// FilterCSSCharset keeps the first @charset declaration, moved to the top
// of the sheet, and drops every other one.
func FilterCSSCharset(css string) string {
	first := charsetPattern.FindString(css)
	if first == "" {
		return css
	}
	rest := charsetPattern.ReplaceAllString(css, "")
	return first + "\n" + strings.TrimLeft(rest, "\n")
}

func filterCSSCharset(_ context.Context, _ *Status, content []byte) ([]byte, error) {
	return []byte(FilterCSSCharset(string(content))), nil
}
