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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

func newTestServer(limit rate.Limit, burst int) *Server {
	return &Server{
		config:      NewConfig(),
		rateLimiter: rate.NewLimiter(limit, burst),
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	provided := uuid.New().String()

	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{"generates when absent", "", false},
		{"keeps provided uuid", provided, true},
		{"replaces invalid id", "invalid-not-a-uuid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(100, 200)

			var captured string
			h := s.requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
				captured, _ = r.Context().Value(contextKeyRequestID).(string)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(headerRequestID, tt.header)
			}
			rec := httptest.NewRecorder()
			h(rec, req)

			if _, err := uuid.Parse(captured); err != nil {
				t.Fatalf("expected valid UUID, got %q", captured)
			}
			if tt.wantSame && captured != tt.header {
				t.Errorf("expected request ID %s, got %s", tt.header, captured)
			}
			if !tt.wantSame && captured == tt.header {
				t.Errorf("expected request ID to be replaced, got %s", captured)
			}
			if rec.Header().Get(headerRequestID) != captured {
				t.Errorf("expected %s header %s, got %s", headerRequestID, captured, rec.Header().Get(headerRequestID))
			}
		})
	}
}

func TestVersionMiddleware(t *testing.T) {
	s := newTestServer(100, 200)

	var captured string
	h := s.versionMiddleware(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = r.Context().Value(contextKeyAPIVersion).(string)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if captured != DefaultAPIVersion {
		t.Errorf("expected version %s in context, got %q", DefaultAPIVersion, captured)
	}
	if rec.Header().Get("X-API-Version") != DefaultAPIVersion {
		t.Errorf("expected X-API-Version %s, got %q", DefaultAPIVersion, rec.Header().Get("X-API-Version"))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("allows and sets headers", func(t *testing.T) {
		s := newTestServer(100, 200)

		called := false
		h := s.rateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})

		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		if !called || rec.Code != http.StatusOK {
			t.Fatalf("expected handler to be called with 200, got called=%v status=%d", called, rec.Code)
		}
		for _, header := range []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"} {
			if rec.Header().Get(header) == "" {
				t.Errorf("expected header %s", header)
			}
		}
	})

	t.Run("rejects when exceeded", func(t *testing.T) {
		s := newTestServer(0, 0)

		called := false
		h := s.rateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		if called {
			t.Error("handler should not be called when rate limited")
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("expected status 429, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") == "" {
			t.Error("expected Retry-After header when rate limited")
		}
	})
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	s := newTestServer(100, 200)

	h := s.panicRecoveryMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}

func TestLoggingMiddleware_PassesStatus(t *testing.T) {
	s := newTestServer(100, 200)

	for _, status := range []int{http.StatusOK, http.StatusNotModified, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			h := s.requestIDMiddleware(s.loggingMiddleware(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))

			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

			if rec.Code != status {
				t.Errorf("expected status %d, got %d", status, rec.Code)
			}
		})
	}
}

func TestMiddlewareChain(t *testing.T) {
	s := newTestServer(100, 200)

	var hasRequestID, hasAPIVersion bool
	h := s.withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		hasRequestID = r.Context().Value(contextKeyRequestID) != nil
		hasAPIVersion = r.Context().Value(contextKeyAPIVersion) != nil
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	if !hasRequestID || !hasAPIVersion {
		t.Errorf("expected request ID and API version in context, got %v/%v", hasRequestID, hasAPIVersion)
	}
	for _, header := range []string{headerRequestID, "X-RateLimit-Limit", "X-API-Version"} {
		if rec.Header().Get(header) == "" {
			t.Errorf("expected header %s to be set", header)
		}
	}
}

func TestResponseWriterCountsBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	for _, chunk := range []string{"body{}", "a{}"} {
		if _, err := rw.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	rw.WriteHeader(http.StatusNotFound)

	if rw.Status() != http.StatusOK {
		t.Errorf("Status() = %d, want %d", rw.Status(), http.StatusOK)
	}
	if rw.Bytes() != 9 {
		t.Errorf("Bytes() = %d, want 9", rw.Bytes())
	}
	if rec.Code != http.StatusOK {
		t.Errorf("recorded status = %d, want %d", rec.Code, http.StatusOK)
	}
}
