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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/handler"
	"github.com/NVIDIA/assetpipe/pkg/serializer"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

func (s *Server) requireBundles(w http.ResponseWriter, r *http.Request) bool {
	if s.bundles == nil {
		WriteError(w, r, http.StatusServiceUnavailable, errors.ErrCodeUnavailable,
			"no bundles configured", true, nil)
		return false
	}
	return true
}

func allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
		"method not allowed", false, map[string]any{"method": r.Method})
	return false
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		enc, q, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(enc), "gzip") {
			continue
		}
		q = strings.ReplaceAll(strings.TrimSpace(q), " ", "")
		return q != "q=0" && q != "q=0.0"
	}
	return false
}

const gzipETagSuffix = "-gz"

// bundleETag returns the strong validator of a bundle body. The gzip body
// gets its own tag.
func bundleETag(fingerprint string, gzipped bool) string {
	if gzipped {
		fingerprint += gzipETagSuffix
	}
	return strconv.Quote(fingerprint)
}

// etagMatches reports whether an If-None-Match header names either encoding
// of the bundle with the given fingerprint.
func etagMatches(header, fingerprint string) bool {
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "W/")
		if tag == "*" {
			return true
		}
		v, err := strconv.Unquote(tag)
		if err != nil {
			continue
		}
		if strings.TrimSuffix(v, gzipETagSuffix) == fingerprint {
			return true
		}
	}
	return false
}

// handleBundle serves bundle content by URL. A fingerprint that does not
// match the current content is still served, without long-term caching.
func (s *Server) handleBundle(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) || !s.requireBundles(w, r) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.BundleTimeout)
	defer cancel()

	c, err := s.bundles.Content(ctx, r.URL.Path)
	if err != nil {
		if !errors.IsCode(err, errors.ErrCodeNotFound) {
			slog.Error("bundle request failed", "path", r.URL.Path, "error", err)
		}
		WriteErrorFromErr(w, r, err, "failed to build bundle", map[string]any{"path": r.URL.Path})
		return
	}

	gzipped := len(c.Entry.Gzip) > 0 && acceptsGzip(r)
	etag := bundleETag(c.Entry.Fingerprint, gzipped)
	h := w.Header()
	h.Set("Content-Type", c.ContentType)
	h.Set("ETag", etag)
	h.Set("Vary", "Accept-Encoding")
	if c.Stale {
		bundleResponses.WithLabelValues("stale").Inc()
		h.Set("Cache-Control", "no-cache")
	} else {
		h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d, immutable", int(s.config.CacheMaxAge.Seconds())))
	}

	if etagMatches(r.Header.Get("If-None-Match"), c.Entry.Fingerprint) {
		bundleResponses.WithLabelValues("not_modified").Inc()
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if !c.Stale {
		bundleResponses.WithLabelValues("fresh").Inc()
	}

	body := c.Entry.Text
	if gzipped {
		h.Set("Content-Encoding", "gzip")
		body = c.Entry.Gzip
	}
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(body); err != nil {
		slog.Warn("bundle write failed", "path", r.URL.Path, "error", err)
	}
}

// handleReference handles GET /v1/reference. With a bundle query
// parameter it returns that bundle's reference, otherwise the references
// of every bundle. The locale parameter overrides cookie and header
// negotiation; inline=true embeds the content.
func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) || !s.requireBundles(w, r) {
		return
	}

	q := r.URL.Query()
	rc := variant.FromHTTPRequest(r)
	rc.Locale = q.Get("locale")

	var opts []handler.ResolveOption
	if inline, err := strconv.ParseBool(q.Get("inline")); err == nil && inline {
		opts = append(opts, handler.WithInline())
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.BundleTimeout)
	defer cancel()

	if id := q.Get("bundle"); id != "" {
		ref, err := s.bundles.Resolve(ctx, id, rc, opts...)
		if err != nil {
			WriteErrorFromErr(w, r, err, "failed to resolve bundle", map[string]any{"bundle": id})
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		serializer.RespondJSON(w, http.StatusOK, ref)
		return
	}

	refs, err := s.bundles.ResolveAll(ctx, rc, opts...)
	if err != nil {
		WriteErrorFromErr(w, r, err, "failed to resolve bundles", nil)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	serializer.RespondJSON(w, http.StatusOK, refs)
}

// handleBundles handles GET /v1/bundles.
func (s *Server) handleBundles(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) || !s.requireBundles(w, r) {
		return
	}
	serializer.RespondJSON(w, http.StatusOK, s.bundles.Bundles())
}
