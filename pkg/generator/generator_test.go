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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/resource"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

type stubGenerator struct {
	prefix string
	body   string
}

func (g *stubGenerator) Prefix() string { return g.prefix }
func (g *stubGenerator) Kind() Kind     { return Text }
func (g *stubGenerator) Generate(_ context.Context, gc *Context) ([]byte, error) {
	return []byte(g.body + ":" + gc.Path), nil
}

func memStore(t *testing.T, files map[string]string) *resource.FSStore {
	t.Helper()
	s := resource.NewMemStore()
	for p, c := range files {
		require.NoError(t, s.WriteFile(p, []byte(c)))
	}
	return s
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(&stubGenerator{prefix: "jar"}))
	require.NoError(t, r.Register(&stubGenerator{prefix: "jar_css"}))

	err := r.Register(&stubGenerator{prefix: "jar"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDuplicateGenerator, errors.CodeOf(err))

	err = r.Register(&stubGenerator{prefix: ""})
	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))

	assert.Equal(t, []string{"jar", "jar_css"}, r.Prefixes())
	assert.Panics(t, func() { r.MustRegister(&stubGenerator{prefix: "jar_css"}) })
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(&stubGenerator{prefix: "jar"})
	r.MustRegister(&stubGenerator{prefix: "jar_css"})
	r.MustRegister(&stubGenerator{prefix: "messages"})

	tests := []struct {
		path   string
		want   Path
		wantOK bool
	}{
		{"jar:/lib/a.js", Path{Prefix: "jar", Sub: "/lib/a.js"}, true},
		{"jar_css:/lib/a.css", Path{Prefix: "jar_css", Sub: "/lib/a.css"}, true},
		{"messages:app.Messages@es", Path{Prefix: "messages", Sub: "app.Messages", Variant: "es"}, true},
		{"/js/a.js", Path{}, false},
		{"unknown:/a.js", Path{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			g, got, ok := r.Resolve(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.Equal(t, tt.want.Prefix, g.Prefix())
				assert.Equal(t, tt.path, got.String())
			}
		})
	}
}

func TestWithVariant(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "messages:a.M@es", WithVariant("messages:a.M", "es"))
	assert.Equal(t, "messages:a.M@fr", WithVariant("messages:a.M@es", "fr"))
	assert.Equal(t, "messages:a.M", WithVariant("messages:a.M@es", ""))
	assert.True(t, IsGenerated("jar:/a.js"))
	assert.False(t, IsGenerated("/a:b.js"))
}

func TestGeneratedReaderPriority(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	base := memStore(t, map[string]string{"/js/a.js": "static"})
	reg := NewRegistry()
	reg.MustRegister(&stubGenerator{prefix: "gen", body: "generated"})
	r := NewGeneratedReader(base, reg, "UTF-8")

	text, err := r.ReadText(ctx, "gen:/js/a.js", "")
	require.NoError(t, err)
	assert.Equal(t, "generated:/js/a.js", text)

	text, err = r.ReadText(ctx, "/js/a.js", "")
	require.NoError(t, err)
	assert.Equal(t, "static", text)

	_, err = r.ReadText(ctx, "nogen:/x", "")
	assert.True(t, resource.IsNotFound(err))

	tok1, err := r.Token(ctx, "gen:/js/a.js")
	require.NoError(t, err)
	tok2, err := r.Token(ctx, "gen:/js/a.js")
	require.NoError(t, err)
	assert.Equal(t, tok1, tok2)

	_, err = r.List(ctx, "gen:/js")
	assert.True(t, resource.IsNotFound(err), "generators without Lister cannot be listed")
}

func TestMessagesGenerator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := memStore(t, map[string]string{
		"/app/Messages.properties":       "button.ok=OK\nbutton.cancel = Cancel\nerror.fatal: Fatal\ntitle=Home\n",
		"/app/Messages_es.properties":    "button.ok=Vale\n# comment\ntitle=Inicio\n",
		"/app/Messages_es_MX.properties": "title=Casa\n",
		"/app/Other.properties":          "button.help=Help\n",
	})
	reg := NewRegistry()
	reg.MustRegister(NewMessagesGenerator(nil))
	r := NewGeneratedReader(store, reg, "UTF-8")

	text, err := r.ReadText(ctx, "messages:app.Messages", "")
	require.NoError(t, err)
	assert.Equal(t,
		`var messages = {"button":{"cancel":"Cancel","ok":"OK"},"error":{"fatal":"Fatal"},"title":"Home"};`+"\n",
		text)

	text, err = r.ReadText(ctx, "messages:app.Messages@es", "")
	require.NoError(t, err)
	assert.Contains(t, text, `"ok":"Vale"`)
	assert.Contains(t, text, `"title":"Inicio"`)
	assert.Contains(t, text, `"cancel":"Cancel"`, "base keys remain when not overridden")

	text, err = r.ReadText(ctx, "messages:app.Messages@es_MX", "")
	require.NoError(t, err)
	assert.Contains(t, text, `"title":"Casa"`)

	text, err = r.ReadText(ctx, "messages:app.Messages|app.Other[button](i18n)", "")
	require.NoError(t, err)
	assert.Equal(t,
		`var i18n = {"button":{"cancel":"Cancel","help":"Help","ok":"OK"}};`+"\n",
		text)

	sets, err := r.VariantSets(ctx, "messages:app.Messages")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "es", "es_MX"}, sets["locale"].Keys)

	assert.True(t, r.Exists(ctx, "messages:app.Messages"))
	assert.False(t, r.Exists(ctx, "messages:app.Missing"))
	_, err = r.ReadText(ctx, "messages:app.Missing", "")
	assert.True(t, resource.IsNotFound(err))

	tokBase, err := r.Token(ctx, "messages:app.Messages")
	require.NoError(t, err)
	tokES, err := r.Token(ctx, "messages:app.Messages@es")
	require.NoError(t, err)
	assert.NotEqual(t, tokBase, tokES)
}

func TestParseMessagesPath(t *testing.T) {
	t.Parallel()

	mp, err := parseMessagesPath("a.b.Msgs|other[p1|p2](ns)")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.b.Msgs", "other"}, mp.bundles)
	assert.Equal(t, []string{"p1", "p2"}, mp.filters)
	assert.Equal(t, "ns", mp.namespace)

	_, err = parseMessagesPath("a.Msgs(bad-name)")
	assert.Error(t, err)
	_, err = parseMessagesPath("[p]")
	assert.Error(t, err)
}

func TestParseProperties(t *testing.T) {
	t.Parallel()

	props := parseProperties("# header\n! bang\nkey1=value1\nkey2 : value 2\nkey3 value3\n" +
		"multi=line one \\\n    line two\nescaped\\=key=a\\tb\nunicode=caf\\u00e9\nempty=\n")

	assert.Equal(t, map[string]string{
		"key1":        "value1",
		"key2":        "value 2",
		"key3":        "value3",
		"multi":       "line one line two",
		"escaped=key": "a\tb",
		"unicode":     "café",
		"empty":       "",
	}, props)
}

func TestStoreGenerators(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	vendor := memStore(t, map[string]string{
		"/lib/a.js":     "lib a",
		"/lib/sub/b.js": "lib b",
		"/img/logo.png": "\x89PNG",
	})
	reg := NewRegistry()
	reg.MustRegister(NewClasspathGenerator(ClasspathPrefix, vendor))
	reg.MustRegister(NewImageGenerator(vendor))
	r := NewGeneratedReader(memStore(t, nil), reg, "")

	text, err := r.ReadText(ctx, "jar:/lib/a.js", "")
	require.NoError(t, err)
	assert.Equal(t, "lib a", text)

	entries, err := r.List(ctx, "jar:/lib")
	require.NoError(t, err)
	assert.Equal(t, []resource.Entry{{Name: "a.js"}, {Name: "sub", Dir: true}}, entries)

	assert.Equal(t, Binary, r.Kind("img:/img/logo.png"))
	data, err := r.ReadBytes(ctx, "img:/img/logo.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data)

	_, err = r.ReadText(ctx, "img:/img/logo.png", "")
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))

	assert.False(t, r.Exists(ctx, "jar:/lib/missing.js"))
	_, err = r.ReadBytes(ctx, "jar:/lib/missing.js")
	assert.True(t, resource.IsNotFound(err))
}

func TestSkinGenerator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := memStore(t, map[string]string{
		"/css/light/theme.css": "light",
		"/css/dark/theme.css":  "dark",
	})
	reg := NewRegistry()
	reg.MustRegister(NewSkinGenerator(nil, "light"))
	r := NewGeneratedReader(store, reg, "")

	sets, err := r.VariantSets(ctx, "skin:/css/theme.css")
	require.NoError(t, err)
	assert.Equal(t, variant.Set{Axis: "skin", Default: "light", Keys: []string{"dark", "light"}}, sets["skin"])

	text, err := r.ReadText(ctx, "skin:/css/theme.css", "")
	require.NoError(t, err)
	assert.Equal(t, "light", text)

	text, err = r.ReadText(ctx, "skin:/css/theme.css@dark", "")
	require.NoError(t, err)
	assert.Equal(t, "dark", text)

	_, err = r.ReadText(ctx, "skin:/css/theme.css@dark@extra", "")
	assert.True(t, resource.IsNotFound(err))
}
