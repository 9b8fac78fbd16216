package ports

import "callscope/internal/domain"

// MethodIndex provides cached, searchable access to the method trees of
// the graphs on the service. Queries are served from a local database.
type MethodIndex interface {
	// Lifecycle
	Open(serviceURL string) error
	Close() error

	// Sync operations
	NeedsRebuild(graph string) bool
	Rebuild(graph string, tree *domain.TreeNode) (*domain.SyncStats, error)

	// Queries
	// Search matches method names and class paths; an empty graph searches all graphs
	Search(graph, query string, limit int) ([]domain.MethodEntry, error)
	Lookup(graph, id string) (*domain.MethodEntry, error)

	BeginTx() (IndexTx, error)
}

// IndexTx represents a transaction for atomic index updates
type IndexTx interface {
	DeleteGraph(graph string) (int, error)
	InsertMethod(entry domain.MethodEntry) error
	MarkSynced(graph string) error

	// Transaction control
	Commit() error
	Rollback() error
}
