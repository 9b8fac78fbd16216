package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callscope/internal/application/explorer"
	"callscope/internal/domain"
)

func newTestMetrics(t *testing.T) (*CacheMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewCacheMetrics(reg), reg
}

func TestCacheMetrics_Counters(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.CacheHit("G", explorer.QueryMethod)
	m.CacheHit("G", explorer.QueryMethod)
	m.CacheMiss("G", explorer.QueryEdge)
	m.FetchFailed("H", explorer.QueryTree)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HitsTotal.WithLabelValues("G", "method")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MissesTotal.WithLabelValues("G", "edge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues("H", "tree")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HitsTotal.WithLabelValues("H", "method")))
}

// methodService answers every method query with a lone node
type methodService struct{}

func (methodService) ListGraphs(context.Context) ([]domain.GraphInfo, error) { return nil, nil }
func (methodService) MethodTree(context.Context, string) (*domain.TreeNode, error) {
	return &domain.TreeNode{Name: "root"}, nil
}
func (methodService) FetchMethod(_ context.Context, _, id string, _ bool) (*domain.Response, error) {
	return &domain.Response{Nodes: []domain.NodeChain{{domain.NewNode(domain.NodeData{ID: id})}}}, nil
}
func (methodService) FetchNeighbors(context.Context, string, string, domain.Relation, string) (*domain.Response, error) {
	return &domain.Response{}, nil
}
func (methodService) FetchEdge(context.Context, string, string, bool) (*domain.Response, error) {
	return &domain.Response{}, nil
}
func (methodService) FetchTopEdges(context.Context, string, int) (*domain.Response, error) {
	return &domain.Response{}, nil
}
func (methodService) StartDiff(context.Context, string, string, int) error { return nil }
func (methodService) CancelDiff(context.Context, string) error              { return nil }

func TestCacheMetrics_WiredIntoCache(t *testing.T) {
	m, reg := newTestMetrics(t)
	cache := explorer.NewCache("G", methodService{}, explorer.WithMetrics(m))
	ctx := context.Background()

	_, err := cache.GetOrFetchNode(ctx, "m1", false)
	require.NoError(t, err)
	_, err = cache.GetOrFetchNode(ctx, "m1", false)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MissesTotal.WithLabelValues("G", "method")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HitsTotal.WithLabelValues("G", "method")))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `callscope_cache_hits_total{graph="G",query="method"} 1`)
	assert.Contains(t, string(body), `callscope_cache_misses_total{graph="G",query="method"} 1`)
}
