package ports

import (
	"context"

	"callscope/internal/domain"
)

// GraphService defines the interface for querying the call-graph service.
// Every query returns a fresh response; memoization happens in the explorer cache.
type GraphService interface {
	// Graph catalogue
	ListGraphs(ctx context.Context) ([]domain.GraphInfo, error)
	MethodTree(ctx context.Context, graph string) (*domain.TreeNode, error)

	// Element queries
	FetchMethod(ctx context.Context, graph, id string, withEntrypoint bool) (*domain.Response, error)
	// FetchNeighbors returns one neighbor of id, or all of them when neighborID is empty
	FetchNeighbors(ctx context.Context, graph, id string, rel domain.Relation, neighborID string) (*domain.Response, error)
	FetchEdge(ctx context.Context, graph, edgeID string, withNodes bool) (*domain.Response, error)
	FetchTopEdges(ctx context.Context, graph string, n int) (*domain.Response, error)

	// Comparison jobs
	StartDiff(ctx context.Context, graph, other string, maxIterations int) error
	CancelDiff(ctx context.Context, graph string) error
}

// DiffProgressSource streams the progress of a running comparison job
type DiffProgressSource interface {
	// Watch returns a channel that receives progress events until the job
	// ends or ctx is cancelled. The last event has Done set.
	Watch(ctx context.Context, graph string) (<-chan domain.DiffProgress, error)
}
