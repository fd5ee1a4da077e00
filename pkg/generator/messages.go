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

package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/NVIDIA/assetpipe/pkg/defaults"
	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/resource"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

// MessagesPrefix is the prefix of the localization script generator.
const MessagesPrefix = "messages"

// DefaultMessagesNamespace is the script variable holding the messages
// when the path names none.
const DefaultMessagesNamespace = "messages"

var namespacePattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// MessagesGenerator builds a localization script from .properties message
// bundles. A path such as
//
//	messages:app.Messages|app.Errors[button|error](i18n)
//
// merges the bundles /app/Messages.properties and /app/Errors.properties,
// keeps the keys starting with "button" or "error", and emits
//
//	var i18n = {"button":{...},"error":{...}};
//
// Locale specific files (Messages_es.properties, Messages_es_MX.properties)
// override the base file, the most specific one winning.
type MessagesGenerator struct {
	// Store holds the message bundles. Nil means the plain resource storage.
	Store resource.Reader
}

// NewMessagesGenerator returns a messages generator reading from store.
func NewMessagesGenerator(store resource.Reader) *MessagesGenerator {
	return &MessagesGenerator{Store: store}
}

// Prefix implements Generator.
func (g *MessagesGenerator) Prefix() string { return MessagesPrefix }

// Kind implements Generator.
func (g *MessagesGenerator) Kind() Kind { return Text }

type messagesPath struct {
	bundles   []string
	filters   []string
	namespace string
}

func parseMessagesPath(s string) (messagesPath, error) {
	mp := messagesPath{namespace: DefaultMessagesNamespace}
	s = strings.TrimSpace(s)

	if strings.HasSuffix(s, ")") {
		i := strings.LastIndex(s, "(")
		if i < 0 {
			return mp, errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"unbalanced namespace in messages path "+s, map[string]any{"path": s})
		}
		mp.namespace = strings.TrimSpace(s[i+1 : len(s)-1])
		s = s[:i]
	}
	if strings.HasSuffix(s, "]") {
		i := strings.LastIndex(s, "[")
		if i < 0 {
			return mp, errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"unbalanced filter in messages path "+s, map[string]any{"path": s})
		}
		mp.filters = splitList(s[i+1 : len(s)-1])
		s = s[:i]
	}
	mp.bundles = splitList(s)

	if len(mp.bundles) == 0 {
		return mp, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"messages path names no bundle", map[string]any{"path": s})
	}
	if !namespacePattern.MatchString(mp.namespace) {
		return mp, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"invalid messages namespace "+mp.namespace, map[string]any{"namespace": mp.namespace})
	}
	return mp, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func bundleFile(name, locale string) string {
	base := "/" + strings.ReplaceAll(name, ".", "/")
	if locale != "" {
		base += "_" + locale
	}
	return base + ".properties"
}

// localeChain returns the locales whose files apply to loc, from the most
// general (the base file) to loc itself.
func localeChain(loc string) []string {
	chain := []string{""}
	if loc == "" {
		return chain
	}
	parts := strings.Split(loc, "_")
	for i := range parts {
		chain = append(chain, strings.Join(parts[:i+1], "_"))
	}
	return chain
}

func (g *MessagesGenerator) store(gc *Context) resource.Reader {
	if g.Store != nil {
		return g.Store
	}
	return gc.Reader
}

// files returns the existing files contributing to gc, in overlay order.
func (g *MessagesGenerator) files(ctx context.Context, gc *Context, mp messagesPath) ([]string, error) {
	store := g.store(gc)
	chain := localeChain(gc.Variants[defaults.LocaleAxis])

	var files []string
	for _, name := range mp.bundles {
		found := false
		for _, loc := range chain {
			f := bundleFile(name, loc)
			if store.Exists(ctx, f) {
				files = append(files, f)
				found = true
			}
		}
		if !found {
			return nil, resource.NotFound(bundleFile(name, ""))
		}
	}
	return files, nil
}

// Generate implements Generator.
func (g *MessagesGenerator) Generate(ctx context.Context, gc *Context) ([]byte, error) {
	mp, err := parseMessagesPath(gc.Path)
	if err != nil {
		return nil, err
	}
	files, err := g.files(ctx, gc, mp)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]string)
	for _, f := range files {
		content, err := g.store(gc).ReadText(ctx, f, gc.Charset)
		if err != nil {
			return nil, err
		}
		for k, v := range parseProperties(content) {
			if matchesFilter(k, mp.filters) {
				merged[k] = v
			}
		}
	}

	body, err := json.Marshal(nest(merged))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to encode messages", err)
	}
	return fmt.Appendf(nil, "var %s = %s;\n", mp.namespace, body), nil
}

func matchesFilter(key string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if strings.HasPrefix(key, f) {
			return true
		}
	}
	return false
}

// nest turns dotted keys into nested objects. A key that is also the parent
// of other keys becomes an object; the sorted insertion order makes the
// outcome deterministic.
func nest(flat map[string]string) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := make(map[string]any)
	for _, k := range keys {
		parts := strings.Split(k, ".")
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[p] = child
			}
			node = child
		}
		leaf := parts[len(parts)-1]
		if _, isObj := node[leaf].(map[string]any); !isObj {
			node[leaf] = flat[k]
		}
	}
	return root
}

// Exists implements Checker.
func (g *MessagesGenerator) Exists(ctx context.Context, gc *Context) bool {
	mp, err := parseMessagesPath(gc.Path)
	if err != nil {
		return false
	}
	_, err = g.files(ctx, gc, mp)
	return err == nil
}

// Variants implements VariantProvider. The locale keys are those with a
// message file for any of the bundles; the base file is the empty key.
func (g *MessagesGenerator) Variants(ctx context.Context, gc *Context) (variant.Sets, error) {
	mp, err := parseMessagesPath(gc.Path)
	if err != nil {
		return nil, err
	}
	store := g.store(gc)

	var keys []string
	for _, name := range mp.bundles {
		base := bundleFile(name, "")
		if store.Exists(ctx, base) {
			keys = append(keys, "")
		}
		dir := base[:strings.LastIndex(base, "/")]
		if dir == "" {
			dir = "/"
		}
		stem := strings.TrimSuffix(base[len(dir):], ".properties")
		stem = strings.TrimPrefix(stem, "/") + "_"

		entries, err := store.List(ctx, dir)
		if err != nil {
			if resource.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		for _, e := range entries {
			if e.Dir || !strings.HasPrefix(e.Name, stem) || !strings.HasSuffix(e.Name, ".properties") {
				continue
			}
			keys = append(keys, strings.TrimSuffix(strings.TrimPrefix(e.Name, stem), ".properties"))
		}
	}

	set, err := variant.NewSet(defaults.LocaleAxis, "", keys...)
	if err != nil {
		return nil, err
	}
	return variant.Sets{defaults.LocaleAxis: set}, nil
}

// Token implements Tokener by combining the tokens of the contributing files.
func (g *MessagesGenerator) Token(ctx context.Context, gc *Context) (string, error) {
	mp, err := parseMessagesPath(gc.Path)
	if err != nil {
		return "", err
	}
	files, err := g.files(ctx, gc, mp)
	if err != nil {
		return "", err
	}
	h := blake3.New()
	fmt.Fprintf(h, "%s\n", gc.Path)
	for _, f := range files {
		tok, err := g.store(gc).Token(ctx, f)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s %s\n", f, tok)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
