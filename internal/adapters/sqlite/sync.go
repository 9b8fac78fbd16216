package sqlite

import (
	"fmt"
	"time"

	"callscope/internal/domain"
)

// Rebuild replaces the indexed methods of graph with the methods of tree
// in a single transaction
func (idx *Index) Rebuild(graph string, tree *domain.TreeNode) (*domain.SyncStats, error) {
	start := time.Now()
	stats := &domain.SyncStats{}

	tx, err := idx.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	deleted, err := tx.DeleteGraph(graph)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to clear graph %s: %w", graph, err)
	}
	stats.MethodsDeleted = deleted

	if tree != nil {
		for _, entry := range tree.Methods(graph) {
			if err := tx.InsertMethod(entry); err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("failed to index method %s: %w", entry.ID, err)
			}
			stats.MethodsAdded++
		}
	}

	if err := tx.MarkSynced(graph); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit index: %w", err)
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
