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
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/assetpipe/pkg/errors"
)

func mustSet(t *testing.T, axis, def string, keys ...string) Set {
	t.Helper()
	s, err := NewSet(axis, def, keys...)
	require.NoError(t, err)
	return s
}

func TestNewSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		axis    string
		def     string
		keys    []string
		wantErr bool
	}{
		{"default declared", "skin", "light", []string{"light", "dark"}, false},
		{"empty default", "locale", "", []string{"en", "es"}, false},
		{"undeclared default", "skin", "blue", []string{"light"}, true},
		{"missing axis", "", "", nil, true},
		{"separator in key", "skin", "", []string{"a@b"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewSet(tt.axis, tt.def, tt.keys...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
		})
	}

	s := mustSet(t, "skin", "", "b", "a", "b")
	assert.Equal(t, []string{"a", "b"}, s.Keys)
}

func TestSetsMerge(t *testing.T) {
	t.Parallel()

	a := Sets{"skin": mustSet(t, "skin", "light", "light", "dark")}
	b := Sets{
		"skin":   mustSet(t, "skin", "", "blue"),
		"locale": mustSet(t, "locale", "", "en", "fr"),
	}

	merged, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"locale", "skin"}, merged.Axes())
	assert.Equal(t, "light", merged["skin"].Default)
	assert.Equal(t, []string{"blue", "dark", "light"}, merged["skin"].Keys)

	conflict := Sets{"skin": mustSet(t, "skin", "dark", "dark")}
	_, err = a.Merge(conflict)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))
}

func TestCombinations(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Tuple{{}}, Sets{}.Combinations())

	sets := Sets{
		"skin":   mustSet(t, "skin", "light", "light", "dark"),
		"locale": mustSet(t, "locale", "", "en", "es"),
	}
	combos := sets.Combinations()
	keys := make([]string, len(combos))
	for i, c := range combos {
		keys[i] = c.Key()
	}
	assert.Equal(t, []string{"en@dark", "en@light", "es@dark", "es@light"}, keys)
}

func TestTupleKeyAndParse(t *testing.T) {
	t.Parallel()

	sets := Sets{
		"skin":   mustSet(t, "skin", "light", "light", "dark"),
		"locale": mustSet(t, "locale", "", "", "es"),
	}
	tuple := Tuple{"skin": "dark", "locale": ""}
	assert.Equal(t, "@dark", tuple.Key())

	parsed, err := ParseKey("@dark", sets)
	require.NoError(t, err)
	assert.Equal(t, tuple, parsed)

	_, err = ParseKey("es", sets)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))

	empty, err := ParseKey("", Sets{})
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseKey("x", Sets{})
	require.Error(t, err)
}

func TestTupleRestrict(t *testing.T) {
	t.Parallel()

	sets := Sets{"skin": mustSet(t, "skin", "light", "light", "dark")}
	got := Tuple{"skin": "neon", "locale": "es"}.Restrict(sets)
	assert.Equal(t, Tuple{"skin": "light"}, got)

	got = Tuple{"skin": "dark"}.Restrict(sets)
	assert.Equal(t, Tuple{"skin": "dark"}, got)
}

func TestLocaleResolver(t *testing.T) {
	t.Parallel()

	r := &LocaleResolver{Cookie: "lang", Default: "en"}
	assert.Equal(t, "locale", r.Axis())

	assert.Equal(t, "en", r.Resolve(nil))
	assert.Equal(t, "fr_CA", r.Resolve(&RequestContext{Locale: "fr-ca"}))
	assert.Equal(t, "de", r.Resolve(&RequestContext{Cookies: map[string]string{"lang": "de"}}))

	headers := http.Header{}
	headers.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.5")
	assert.Equal(t, "es_ES", r.Resolve(&RequestContext{Headers: headers}))

	set := mustSet(t, "locale", "", "", "es", "pt_BR")
	tests := []struct {
		requested string
		want      string
		ok        bool
	}{
		{"es_ES", "es", true},
		{"es", "es", true},
		{"pt_BR", "pt_BR", true},
		{"pt", "", false},
		{"de", "", false},
	}
	for _, tt := range tests {
		got, ok := r.Available(tt.requested, set)
		assert.Equal(t, tt.ok, ok, tt.requested)
		assert.Equal(t, tt.want, got, tt.requested)
	}
}

func TestCookieResolver(t *testing.T) {
	t.Parallel()

	r := &CookieResolver{Name: "skin", Cookie: "skin", Default: "light"}
	req := httptest.NewRequest(http.MethodGet, "/bundles/app.css", nil)
	req.AddCookie(&http.Cookie{Name: "skin", Value: "dark"})

	rc := FromHTTPRequest(req)
	assert.Equal(t, "/bundles/app.css", rc.Path)
	assert.Equal(t, "dark", r.Resolve(rc))
	assert.Equal(t, "light", r.Resolve(&RequestContext{}))

	set := mustSet(t, "skin", "light", "light", "dark")
	_, ok := r.Available("neon", set)
	assert.False(t, ok)
}

func TestResolveTupleFallsBack(t *testing.T) {
	t.Parallel()

	rs, err := NewResolverSet(
		&LocaleResolver{Cookie: "lang"},
		&CookieResolver{Name: "skin", Cookie: "skin"},
	)
	require.NoError(t, err)

	sets := Sets{
		"skin":   mustSet(t, "skin", "light", "light", "dark"),
		"locale": mustSet(t, "locale", "", "", "es"),
		"env":    mustSet(t, "env", "prod", "prod", "dev"),
	}

	rc := &RequestContext{Cookies: map[string]string{"skin": "unregistered", "lang": "es_MX"}}
	got := rs.ResolveTuple(rc, sets)
	assert.Equal(t, Tuple{"skin": "light", "locale": "es", "env": "prod"}, got)

	_, err = NewResolverSet(&LocaleResolver{}, &LocaleResolver{})
	require.Error(t, err)
}

func TestUnsortedDeclaredSet(t *testing.T) {
	t.Parallel()

	set := Set{Axis: "skin", Default: "blue", Keys: []string{"red", "blue", "green"}}
	require.NoError(t, set.Validate())
	for _, k := range set.Keys {
		assert.True(t, set.Has(k), k)
	}
	assert.False(t, set.Has("purple"))

	rs, err := NewResolverSet(&CookieResolver{Name: "skin", Cookie: "skin"})
	require.NoError(t, err)

	sets := Sets{"skin": {Axis: "skin", Default: "green", Keys: []string{"red", "blue", "green"}}}
	got := rs.ResolveTuple(&RequestContext{Cookies: map[string]string{"skin": "red"}}, sets)
	assert.Equal(t, Tuple{"skin": "red"}, got)
}
