package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/api/recommend", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":"ok"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	return r
}

func TestMiddleware_RecordsByRoutePattern(t *testing.T) {
	h := newRouter()

	tests := []struct {
		method, path, status string
	}{
		{"POST", "/api/recommend", "200"},
		{"GET", "/health", "503"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, http.NoBody))

			after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status))
			if after-before != 1 {
				t.Errorf("requests_total delta = %v, want 1", after-before)
			}
		})
	}

	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_UnknownRoute(t *testing.T) {
	h := newRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nope", http.NoBody))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404"))
	if after-before != 1 {
		t.Errorf("unknown route delta = %v, want 1", after-before)
	}
}

func TestStatusWriter_FirstStatusWins(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	w.WriteHeader(http.StatusBadGateway)
	w.WriteHeader(http.StatusOK)

	if w.status != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.status)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}
