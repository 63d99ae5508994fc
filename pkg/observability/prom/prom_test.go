package prom

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/canonic/pkg/observability"
)

func TestMetricsCount(t *testing.T) {
	ctx := context.Background()
	m := New(nil)

	m.OnSearchComplete(ctx, observability.SearchEvent{Order: 10, Nodes: 31, GroupSize: 120, Duration: time.Millisecond})
	m.OnSearchComplete(ctx, observability.SearchEvent{Order: 6, Nodes: 11, Err: errors.New("budget")})
	m.OnCacheHit(ctx, "canon")
	m.OnCacheMiss(ctx, "canon")
	m.OnCacheMiss(ctx, "canon")
	m.OnCatalogAdd(ctx, true)
	m.OnCatalogAdd(ctx, false)
	m.OnRequest(ctx, "POST", "/v1/canon", 200, time.Millisecond)

	assert.Equal(t, 42.0, testutil.ToFloat64(m.searchNodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searches.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("canon", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.catalogAdds.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/v1/canon", "200")))
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.OnCacheHit(context.Background(), "refine")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `canonic_cache_requests_total{result="hit",type="refine"} 1`)
}

func TestRegister(t *testing.T) {
	defer observability.Reset()
	m := New(nil)
	m.Register()
	assert.Same(t, m, observability.Search())
	assert.Same(t, m, observability.Catalog())
}
