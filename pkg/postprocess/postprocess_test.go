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
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/resource"
)

func TestMinifyCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "structural tokens",
			in:   "a { color : red; }\n\n.b{margin:0 ;}",
			want: "a{color:red;}.b{margin:0;}",
		},
		{
			name: "quoted spaces preserved",
			in:   `p { content: "a  b"; font-family: 'x   y'; }`,
			want: `p{content:"a  b";font-family:'x   y';}`,
		},
		{
			name: "comments removed",
			in:   "/* header */a{/* inner ** comment */color:red}",
			want: "a{color:red}",
		},
		{
			name: "comment markers inside strings kept",
			in:   `a{content:"/* not a comment */"}`,
			want: `a{content:"/* not a comment */"}`,
		},
		{
			name: "descendant selector spaces collapsed",
			in:   "ul    li  a{x:1}",
			want: "ul li a{x:1}",
		},
		{
			name: "tabs removed",
			in:   "a\t{\tb:c\t}",
			want: "a{b:c}",
		},
		{
			name: "line breaks in selectors keep the combinator",
			in:   "div\n.b {color:red}\nul\tli{x:y}",
			want: "div .b{color:red}ul li{x:y}",
		},
		{
			name: "crlf between selectors",
			in:   "h1,\r\nh2\r\n{margin:0}",
			want: "h1, h2{margin:0}",
		},
		{
			name: "leading and trailing whitespace trimmed",
			in:   "  \n a{b:c} \n ",
			want: "a{b:c}",
		},
		{
			name: "leading comment then space",
			in:   "/* license */ a{b:c}",
			want: "a{b:c}",
		},
		{
			name: "escaped quote in string",
			in:   `a{content:"x\"  y"}`,
			want: `a{content:"x\"  y"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MinifyCSS(tt.in))
		})
	}
}

func TestJSMin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := NewFactory()
	chain, err := f.Chain([]string{JSMinKey})
	require.NoError(t, err)

	out, err := chain.Process(ctx, &Status{BundleID: "/app.js", Member: "/js/a.js"},
		[]byte("function add ( a , b ) {\n  // sum\n  return a + b ;\n}\n"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "function add(a,b){return a+b}")

	debug, err := chain.Process(ctx, &Status{Debug: true}, []byte("var  a = 1;"))
	require.NoError(t, err)
	assert.Equal(t, "var  a = 1;", string(debug))

	_, err = chain.Process(ctx, &Status{BundleID: "/app.js", Member: "/js/bad.js"}, []byte("function ("))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTransformFailure))
	assert.Contains(t, err.Error(), "/app.js")
	assert.Contains(t, err.Error(), JSMinKey)
}

func TestChainOrder(t *testing.T) {
	t.Parallel()

	f := NewFactory()
	for _, k := range []string{"a", "b"} {
		k := k
		f.MustRegister(k, func() Processor {
			return ProcessorFunc(func(_ context.Context, _ *Status, c []byte) ([]byte, error) {
				return append(c, k...), nil
			})
		})
	}

	chain, err := f.Chain(ParseKeys("b, a ,b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "b"}, chain.Keys())

	out, err := chain.Process(context.Background(), &Status{}, []byte(">"))
	require.NoError(t, err)
	assert.Equal(t, ">bab", string(out))

	var nilChain *Chain
	out, err = nilChain.Process(context.Background(), &Status{}, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(out))
	assert.Equal(t, 0, nilChain.Len())
}

func TestFactory(t *testing.T) {
	t.Parallel()

	f := NewFactory()
	assert.Equal(t, []string{CSSCharsetKey, CSSMinifyKey, CSSURLKey, JSMinKey, LicenseKey}, f.Keys())

	none, err := f.Chain([]string{NoneKey})
	require.NoError(t, err)
	assert.Equal(t, 0, none.Len())

	_, err = f.Chain([]string{"nope"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))

	assert.Error(t, f.Register(JSMinKey, nil))
	assert.Error(t, f.Register(NoneKey, nil))

	assert.Equal(t, []string{JSMinKey}, DefaultUnitKeys("js"))
	assert.Equal(t, []string{CSSCharsetKey, LicenseKey}, DefaultBundleKeys("css"))
	assert.Nil(t, DefaultUnitKeys("txt"))
}

func TestChainStopsOnFailure(t *testing.T) {
	t.Parallel()

	f := NewFactory()
	calls := 0
	f.MustRegister("fail", func() Processor {
		return ProcessorFunc(func(context.Context, *Status, []byte) ([]byte, error) {
			return nil, fmt.Errorf("disk error")
		})
	})
	f.MustRegister("count", func() Processor {
		return ProcessorFunc(func(_ context.Context, _ *Status, c []byte) ([]byte, error) {
			calls++
			return c, nil
		})
	})

	chain, err := f.Chain([]string{"fail", "count"})
	require.NoError(t, err)
	_, err = chain.Process(context.Background(), &Status{BundleID: "/b.js"}, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTransformFailure, errors.CodeOf(err))
	assert.Equal(t, 0, calls)
}

func TestIncludeLicenses(t *testing.T) {
	t.Parallel()

	store := resource.NewMemStore()
	require.NoError(t, store.WriteFile("/js/.license", []byte("/* root license */")))
	require.NoError(t, store.WriteFile("/js/lib/.license", []byte("/* lib license */\n")))

	chain, err := NewFactory().Chain([]string{LicenseKey})
	require.NoError(t, err)

	out, err := chain.Process(context.Background(), &Status{
		Reader:   store,
		Licenses: []string{"/js/.license", "/js/lib/.license"},
	}, []byte("var a;"))
	require.NoError(t, err)
	assert.Equal(t, "var a;\n/* root license */\n/* lib license */\n", string(out))

	_, err = chain.Process(context.Background(), &Status{
		Reader:   store,
		Licenses: []string{"/missing/.license"},
	}, []byte("x"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeTransformFailure))
	assert.True(t, resource.IsNotFound(err))
}

func TestRewriteCSSURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"relative", `a{background:url(img/a.png)}`, `a{background:url(../../../css/theme/img/a.png)}`},
		{"quoted parent", `a{background:url( "../img/b.png" )}`, `a{background:url("../../../css/img/b.png")}`},
		{"query kept", `a{src:url('f.woff?v=2')}`, `a{src:url('../../../css/theme/f.woff?v=2')}`},
		{"absolute untouched", `a{b:url(/img/a.png)}`, `a{b:url(/img/a.png)}`},
		{"data untouched", `a{b:url(data:image/png;base64,xx)}`, `a{b:url(data:image/png;base64,xx)}`},
		{"remote untouched", `a{b:url(https://cdn/x.png)}`, `a{b:url(https://cdn/x.png)}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := RewriteCSSURLs(tt.in, "/css/theme/site.css", "/bundles/0123abcd/css/all.css")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := RewriteCSSURLs(`a{b:url(../../../x.png)}`, "/css/site.css", "/bundles/f/all.css")
	assert.Error(t, err)
}

func TestCSSURLProcessorSkipsGenerated(t *testing.T) {
	t.Parallel()

	chain, err := NewFactory().Chain([]string{CSSURLKey})
	require.NoError(t, err)

	in := []byte(`a{b:url(x.png)}`)
	out, err := chain.Process(context.Background(), &Status{
		URL:    "/bundles/f/all.css",
		Member: "skin:/css/theme.css",
	}, in)
	require.NoError(t, err)
	assert.Equal(t, string(in), string(out))
}

func TestFilterCSSCharset(t *testing.T) {
	t.Parallel()

	in := "a{}\n@charset \"UTF-8\";\nb{}@charset 'ISO-8859-1';c{}"
	assert.Equal(t, "@charset \"UTF-8\";\na{}\n\nb{}c{}", FilterCSSCharset(in))
	assert.Equal(t, "a{}", FilterCSSCharset("a{}"))
}
