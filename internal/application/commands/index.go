package commands

import (
	"context"
	"fmt"

	"callscope/internal/application"
	"callscope/internal/application/explorer"
	"callscope/internal/domain"
	"callscope/internal/logger"
	"callscope/internal/ports"
)

// RebuildIndexResult contains the result of indexing a graph
type RebuildIndexResult struct {
	Graph   string
	Skipped bool
	Stats   *domain.SyncStats
	Message string
}

// RebuildIndexCommand indexes the method tree of a graph for search.
// Already indexed graphs are skipped unless Force is set.
type RebuildIndexCommand struct {
	ws    *explorer.Workspace
	index ports.MethodIndex
	Graph string
	Force bool
}

// NewRebuildIndexCommand creates a new RebuildIndexCommand
func NewRebuildIndexCommand(ws *explorer.Workspace, index ports.MethodIndex, graph string, force bool) *RebuildIndexCommand {
	return &RebuildIndexCommand{
		ws:    ws,
		index: index,
		Graph: graph,
		Force: force,
	}
}

// Validate checks the command input
func (c *RebuildIndexCommand) Validate() error {
	return application.ValidateRequired("graph", c.Graph)
}

// Execute runs the rebuild command
func (c *RebuildIndexCommand) Execute(ctx context.Context) (*RebuildIndexResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if !c.Force && !c.index.NeedsRebuild(c.Graph) {
		return &RebuildIndexResult{
			Graph:   c.Graph,
			Skipped: true,
			Message: fmt.Sprintf("Index of %s is up to date", c.Graph),
		}, nil
	}

	tree, err := NewMethodTreeCommand(c.ws, c.Graph).Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load method tree: %w", err)
	}

	stats, err := c.index.Rebuild(c.Graph, tree)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}
	logger.Info("index rebuilt", "graph", c.Graph, "added", stats.MethodsAdded, "deleted", stats.MethodsDeleted, "duration", stats.Duration)

	return &RebuildIndexResult{
		Graph:   c.Graph,
		Stats:   stats,
		Message: fmt.Sprintf("Indexed %d methods of %s", stats.MethodsAdded, c.Graph),
	}, nil
}
