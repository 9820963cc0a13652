package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func histogramCount(t *testing.T, method, route string) uint64 {
	t.Helper()
	h, ok := httpRequestDurationSeconds.WithLabelValues(method, route).(prometheus.Histogram)
	require.True(t, ok)
	var m dto.Metric
	require.NoError(t, h.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	Init()
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/pages/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	r.Get("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before202 := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "202"))
	before404 := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "404"))
	beforeRoute := histogramCount(t, http.MethodGet, "/pages/{id}")

	for _, target := range []string{"/pages/1", "/pages/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	require.InDelta(t, 2, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "202"))-before202, 0)
	require.InDelta(t, 1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "404"))-before404, 0)
	require.Equal(t, beforeRoute+2, histogramCount(t, http.MethodGet, "/pages/{id}"))
}

func TestMiddlewareWithoutRouterUsesUnknownRoute(t *testing.T) {
	Init()
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	before := histogramCount(t, http.MethodPatch, "unknown")
	beforeCode := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodPatch, "200"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/anything", nil))

	require.Equal(t, "ok", rec.Body.String())
	require.Equal(t, before+1, histogramCount(t, http.MethodPatch, "unknown"))
	require.InDelta(t, 1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodPatch, "200"))-beforeCode, 0)
}

type plainWriter struct {
	header http.Header
	code   int
}

func (w *plainWriter) Header() http.Header { return w.header }
func (w *plainWriter) Write(b []byte) (int, error) { return len(b), nil }
func (w *plainWriter) WriteHeader(code int) { w.code = code }

func TestMiddlewareFlushPassesThrough(t *testing.T) {
	Init()
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok, "wrapped writer must expose Flush")
		w.WriteHeader(http.StatusCreated)
		flusher.Flush()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/stream", nil))
	require.True(t, rec.Flushed)
	require.Equal(t, http.StatusCreated, rec.Code)

	// A writer that cannot flush is left alone.
	plain := &plainWriter{header: http.Header{}}
	require.NotPanics(t, func() {
		handler.ServeHTTP(plain, httptest.NewRequest(http.MethodPut, "/stream", nil))
	})
	require.Equal(t, http.StatusCreated, plain.code)
}
