package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newJobsRouter(mw func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/jobs/{alias}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "alias") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestHTTPMetrics_Middleware(t *testing.T) {
	t.Parallel()

	t.Run("nil_metrics_pass_through", func(t *testing.T) {
		t.Parallel()

		mw, err := MetricsMiddleware(nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		newJobsRouter(mw).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/go-developer", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("records_route_pattern_and_status", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		mw, err := MetricsMiddleware(mp)
		require.NoError(t, err)
		router := newJobsRouter(mw)

		for _, path := range []string{"/jobs/go-developer", "/jobs/missing", "/nowhere"} {
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		}

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))

		routes := map[string]int64{}
		for _, scope := range rm.ScopeMetrics {
			for _, m := range scope.Metrics {
				if m.Name != "jobs_srv_http_requests" {
					continue
				}
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					route, _ := dp.Attributes.Value("route")
					status, _ := dp.Attributes.Value("status_code")
					routes[route.AsString()+" "+status.AsString()] += dp.Value
				}
			}
		}

		assert.Equal(t, map[string]int64{
			"/jobs/{alias} 200": 1,
			"/jobs/{alias} 404": 1,
			unknownRoute + " 404": 1,
		}, routes)
	})
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("nil_provider_pass_through", func(t *testing.T) {
		t.Parallel()

		rr := httptest.NewRecorder()
		newJobsRouter(TracingMiddleware(nil)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/go-developer", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("names_span_after_route", func(t *testing.T) {
		t.Parallel()

		exporter := tracetest.NewInMemoryExporter()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

		router := newJobsRouter(TracingMiddleware(tp))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/jobs/go-developer", nil))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/jobs/missing", nil))

		spans := exporter.GetSpans()
		require.Len(t, spans, 2)
		assert.Equal(t, "GET /jobs/{alias}", spans[0].Name)
		assert.Equal(t, codes.Ok, spans[0].Status.Code)
		assert.Equal(t, codes.Error, spans[1].Status.Code)

		var route string
		for _, attr := range spans[0].Attributes {
			if attr.Key == "http.route" {
				route = attr.Value.AsString()
			}
		}
		assert.Equal(t, "/jobs/{alias}", route)
	})
}
