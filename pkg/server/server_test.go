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

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/assetpipe/pkg/bundle"
	"github.com/NVIDIA/assetpipe/pkg/config"
	"github.com/NVIDIA/assetpipe/pkg/handler"
)

func newBundleHandler(t *testing.T) *handler.Handler {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"js/a.js":                    "var a = 1;\n",
		"css/site.css":               "a { color : red ; }\n",
		"app/Messages.properties":    "greeting=Hello\n",
		"app/Messages_es.properties": "greeting=Hola\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	cfg := &config.Config{
		BaseDir: dir,
		Bundles: []bundle.Definition{
			{ID: "/js/app.js", Global: true, Mappings: []string{"/js/a.js", "messages:app.Messages(msg)"}},
			{ID: "/css/site.css", Mappings: []string{"/css/"}},
		},
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	h, err := handler.New(context.Background(), cfg)
	require.NoError(t, err)
	return h
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func resolveRef(t *testing.T, s *Server, query string) *handler.Reference {
	t.Helper()
	rec := serve(s, httptest.NewRequest(http.MethodGet, routeReference+"?"+query, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var ref handler.Reference
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ref))
	return &ref
}

func TestNew(t *testing.T) {
	routes := map[string]http.HandlerFunc{
		"/test": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		},
	}

	s := New(WithHandler(routes), WithName("test"), WithVersion("1.2.3"))
	require.NotNil(t, s)
	assert.NotNil(t, s.httpServer)
	assert.NotNil(t, s.rateLimiter)
	assert.Equal(t, "test", s.config.Name)
	assert.Equal(t, "1.2.3", s.config.Version)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s := New()

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = serve(s, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		withBundle bool
		ready      bool
		wantStatus int
	}{
		{"not started", true, false, http.StatusServiceUnavailable},
		{"no bundles", false, true, http.StatusServiceUnavailable},
		{"ready", true, true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.withBundle {
				opts = append(opts, WithBundles(newBundleHandler(t)))
			}
			s := New(opts...)
			s.SetReady(tt.ready)

			rec := serve(s, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "ready", resp.Status)
				assert.Equal(t, 2, resp.Bundles)
			} else {
				assert.Equal(t, "not_ready", resp.Status)
				assert.NotEmpty(t, resp.Reason)
			}
		})
	}
}

func TestDefaultRoute(t *testing.T) {
	s := New(WithBundles(newBundleHandler(t)), WithName("assetpipe"))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Name   string   `json:"name"`
		Routes []string `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "assetpipe", resp.Name)
	assert.Contains(t, resp.Routes, "GET /bundles/{fingerprint}[.{variant}]/{bundle}")
}

func TestReferenceEndpoint(t *testing.T) {
	s := New(WithBundles(newBundleHandler(t)))

	ref := resolveRef(t, s, "bundle=/js/app.js&locale=es&inline=true")
	assert.Equal(t, "/js/app.js", ref.BundleID)
	assert.Equal(t, "es", ref.VariantKey)
	assert.Equal(t, "/bundles/"+ref.Fingerprint+".es/js/app.js", ref.URL)
	assert.Contains(t, string(ref.Inline), "Hola")

	req := httptest.NewRequest(http.MethodGet, routeReference+"?bundle=/js/app.js", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "es"})
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"variantKey":"es"`)

	rec = serve(s, httptest.NewRequest(http.MethodGet, routeReference, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var refs []handler.Reference
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refs))
	require.Len(t, refs, 2)
	assert.Equal(t, "/js/app.js", refs[0].BundleID)

	rec = serve(s, httptest.NewRequest(http.MethodGet, routeReference+"?bundle=/nope.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Code)
	assert.NotEmpty(t, errResp.RequestID)
}

func TestBundlesEndpoint(t *testing.T) {
	s := New(WithBundles(newBundleHandler(t)))

	rec := serve(s, httptest.NewRequest(http.MethodGet, routeBundles, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []handler.BundleInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "/js/app.js", infos[0].ID)
	assert.Equal(t, "css", infos[1].Type)
}

func TestServeBundle(t *testing.T) {
	s := New(WithBundles(newBundleHandler(t)))
	ref := resolveRef(t, s, "bundle=/css/site.css")

	t.Run("plain", func(t *testing.T) {
		rec := serve(s, httptest.NewRequest(http.MethodGet, ref.URL, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/css; charset=UTF-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, `"`+ref.Fingerprint+`"`, rec.Header().Get("ETag"))
		assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Contains(t, rec.Body.String(), "color:red")
	})

	t.Run("gzip", func(t *testing.T) {
		plain := serve(s, httptest.NewRequest(http.MethodGet, ref.URL, nil))

		req := httptest.NewRequest(http.MethodGet, ref.URL, nil)
		req.Header.Set("Accept-Encoding", "br, gzip")
		rec := serve(s, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		assert.Equal(t, `"`+ref.Fingerprint+`-gz"`, rec.Header().Get("ETag"))
		assert.NotEqual(t, plain.Header().Get("ETag"), rec.Header().Get("ETag"))

		zr, err := gzip.NewReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		got, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, plain.Body.Bytes(), got)
	})

	t.Run("not modified", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, ref.URL, nil)
		req.Header.Set("If-None-Match", `"`+ref.Fingerprint+`"`)
		rec := serve(s, req)
		assert.Equal(t, http.StatusNotModified, rec.Code)
		assert.Zero(t, rec.Body.Len())

		req = httptest.NewRequest(http.MethodGet, ref.URL, nil)
		req.Header.Set("Accept-Encoding", "gzip")
		req.Header.Set("If-None-Match", `"other", "`+ref.Fingerprint+`-gz"`)
		rec = serve(s, req)
		assert.Equal(t, http.StatusNotModified, rec.Code)
		assert.Equal(t, `"`+ref.Fingerprint+`-gz"`, rec.Header().Get("ETag"))
	})

	t.Run("head", func(t *testing.T) {
		rec := serve(s, httptest.NewRequest(http.MethodHead, ref.URL, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Content-Length"))
		assert.Zero(t, rec.Body.Len())
	})

	t.Run("stale fingerprint", func(t *testing.T) {
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/bundles/0000000000000000/css/site.css", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
		assert.Equal(t, `"`+ref.Fingerprint+`"`, rec.Header().Get("ETag"))
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name   string
			method string
			path   string
			status int
		}{
			{"unknown bundle", http.MethodGet, "/bundles/" + ref.Fingerprint + "/css/nope.css", http.StatusNotFound},
			{"bad fingerprint", http.MethodGet, "/bundles/xyz/css/site.css", http.StatusNotFound},
			{"outside context path", http.MethodGet, "/elsewhere/site.css", http.StatusNotFound},
			{"post", http.MethodPost, ref.URL, http.StatusMethodNotAllowed},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := serve(s, httptest.NewRequest(tt.method, tt.path, nil))
				assert.Equal(t, tt.status, rec.Code)

				var resp ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Code)
			})
		}
	})
}

func TestServeBundleWithoutHandler(t *testing.T) {
	s := New()

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/bundles/0000000000000000/a.js", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestETagMatches(t *testing.T) {
	const fp = "0123456789abcdef"
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`"0123456789abcdef"`, true},
		{`"0123456789abcdef-gz"`, true},
		{`W/"0123456789abcdef"`, true},
		{`"aaaa", "0123456789abcdef-gz"`, true},
		{"*", true},
		{`"fedcba9876543210"`, false},
		{"0123456789abcdef", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, etagMatches(tt.header, fp))
		})
	}
	assert.Equal(t, `"`+fp+`"`, bundleETag(fp, false))
	assert.Equal(t, `"`+fp+`-gz"`, bundleETag(fp, true))
}

func TestAcceptsGzip(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"gzip", true},
		{"deflate, gzip;q=0.5", true},
		{"GZIP", true},
		{"gzip;q=0", false},
		{"br", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Encoding", tt.header)
			assert.Equal(t, tt.want, acceptsGzip(req))
		})
	}
}

func TestRunRequiresBundles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx)
	require.Error(t, err)
}
