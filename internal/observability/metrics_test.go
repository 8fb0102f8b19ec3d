package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsHandlerExposesPrometheusMetrics(t *testing.T) {
	metrics := NewMetrics()
	ledger := NewLedgerMetrics(metrics.Registerer())
	ledger.ObservePosting("posted")

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "palaka_ledger_postings_total") {
		t.Fatalf("expected body to contain palaka_ledger_postings_total, got: %s", body)
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}
	if got := testutil.ToFloat64(metrics.requestsTotal.WithLabelValues("/test", "418")); got != 1 {
		t.Fatalf("expected one recorded request, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.inFlight); got != 0 {
		t.Fatalf("expected no requests in flight, got %v", got)
	}
}

func TestMetricsMiddlewareLabelsUnroutedRequests(t *testing.T) {
	metrics := NewMetrics()
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if got := testutil.ToFloat64(metrics.requestsTotal.WithLabelValues("unmatched", "200")); got != 1 {
		t.Fatalf("expected unmatched request with implicit 200, got %v", got)
	}
}

func TestNilMetricsHandlerIsUnavailable(t *testing.T) {
	var metrics *Metrics
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestLedgerMetricsCountsOutcomes(t *testing.T) {
	ledger := NewLedgerMetrics(NewMetrics().Registerer())
	ledger.ObservePosting("posted")
	ledger.ObservePosting("unbalanced")
	ledger.ObservePosting("posted")
	ledger.ObserveReversal(true)
	ledger.ObserveReversal(false)

	if got := testutil.ToFloat64(ledger.postings.WithLabelValues("posted")); got != 2 {
		t.Fatalf("expected 2 postings, got %v", got)
	}
	if got := testutil.ToFloat64(ledger.reversals.WithLabelValues("draft_deleted")); got != 1 {
		t.Fatalf("expected 1 draft deletion, got %v", got)
	}

	var nilMetrics *LedgerMetrics
	nilMetrics.ObservePosting("posted")
}
