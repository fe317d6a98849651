package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveSearch(SearchOK)
	m.ObserveSearch(SearchOK)
	m.ObserveSearch(SearchFailed)
	m.ObserveQuote(QuotePriced)
	m.ObserveQuote(QuoteRejected)

	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	m.ObserveRun("DONE", 2*time.Second, true, at)
	m.ObserveRun("ABORT_EMPTY", time.Second, false, at.Add(time.Hour))

	require.InDelta(t, 2, testutil.ToFloat64(m.SearchesTotal.WithLabelValues(SearchOK)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.SearchesTotal.WithLabelValues(SearchFailed)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.QuotesTotal.WithLabelValues(QuoteRejected)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.RunsTotal.WithLabelValues("DONE")), 0)
	require.InDelta(t, float64(at.Unix()), testutil.ToFloat64(m.LastSuccess), 0)
	require.Equal(t, 2, testutil.CollectAndCount(m.RunDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveSearch(SearchOK)
		m.ObserveQuote(QuotePriced)
		m.ObserveRun("DONE", time.Second, true, time.Now())
	})
	require.Nil(t, m.Registry())
	require.NoError(t, m.Push(context.Background(), "http://localhost:9091", "digest"))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveSearch(SearchOK)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `digest_searches_total{outcome="ok"} 1`)
}

func TestMetrics_Push(t *testing.T) {
	t.Parallel()

	type pushed struct{ path, body string }
	got := make(chan pushed, 1)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		got <- pushed{path: r.URL.Path, body: string(raw)}
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	m := New()
	m.ObserveRun("DONE", time.Second, true, time.Now())

	require.NoError(t, m.Push(context.Background(), gateway.URL, "price_digest"))
	p := <-got
	require.Equal(t, "/metrics/job/price_digest", p.path)
	require.NotEmpty(t, p.body)
}
