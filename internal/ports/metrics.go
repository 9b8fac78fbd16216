package ports

// CacheMetrics records cache behaviour per graph and query kind
type CacheMetrics interface {
	CacheHit(graph, query string)
	CacheMiss(graph, query string)
	FetchFailed(graph, query string)
}

// NopMetrics discards all observations
type NopMetrics struct{}

func (NopMetrics) CacheHit(string, string)    {}
func (NopMetrics) CacheMiss(string, string)   {}
func (NopMetrics) FetchFailed(string, string) {}
