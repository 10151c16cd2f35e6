package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, http.NoBody))
	return rr
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/v1/articles/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("article"))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/articles/{id}", "200"))
	serve(r, http.MethodGet, "/v1/articles/1")
	serve(r, http.MethodGet, "/v1/articles/2")

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/articles/{id}", "200"))
	if after-before != 2 {
		t.Errorf("requests_total delta = %v, want 2", after-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
	if testutil.CollectAndCount(httpResponseBytes) == 0 {
		t.Error("expected response size observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/v1/ask", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	r.Post("/v1/index/reload", func(http.ResponseWriter, *http.Request) {})

	serve(r, http.MethodPost, "/v1/ask")
	serve(r, http.MethodPost, "/v1/index/reload")

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/ask", "502")); v < 1 {
		t.Errorf("502 count = %v", v)
	}
	// Handlers that never write still count as 200.
	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/index/reload", "200")); v < 1 {
		t.Errorf("implicit 200 count = %v", v)
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(http.ResponseWriter, *http.Request) {})

	serve(r, http.MethodGet, "/no/such/path/42")

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")); v < 1 {
		t.Errorf("unmatched count = %v", v)
	}
}

func TestMiddleware_InFlightReturnsToZero(t *testing.T) {
	var during float64
	h := Middleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		during = testutil.ToFloat64(httpInFlight)
	}))

	serve(h, http.MethodGet, "/")

	if during < 1 {
		t.Errorf("in-flight during request = %v", during)
	}
	if v := testutil.ToFloat64(httpInFlight); v != 0 {
		t.Errorf("in-flight after request = %v", v)
	}
	// Outside a chi router there is no route context.
	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "200")); v < 1 {
		t.Errorf("no-router count = %v", v)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()

	AdmissionDecisionsTotal.WithLabelValues("PCTY", "released").Inc()
	if got := testutil.ToFloat64(AdmissionDecisionsTotal.WithLabelValues("PCTY", "released")); got < 1 {
		t.Errorf("admission_decisions_total = %v", got)
	}
}
