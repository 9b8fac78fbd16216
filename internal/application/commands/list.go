package commands

import (
	"context"

	"callscope/internal/application/explorer"
	"callscope/internal/domain"
)

// ListGraphsCommand lists the graphs available on the service
type ListGraphsCommand struct {
	ws *explorer.Workspace
}

// NewListGraphsCommand creates a new ListGraphsCommand
func NewListGraphsCommand(ws *explorer.Workspace) *ListGraphsCommand {
	return &ListGraphsCommand{ws: ws}
}

// Execute runs the list graphs command
func (c *ListGraphsCommand) Execute(ctx context.Context) ([]domain.GraphInfo, error) {
	return c.ws.ListGraphs(ctx)
}

// MethodTreeCommand returns the package/class/method tree of a graph
type MethodTreeCommand struct {
	ws    *explorer.Workspace
	Graph string
}

// NewMethodTreeCommand creates a new MethodTreeCommand
func NewMethodTreeCommand(ws *explorer.Workspace, graph string) *MethodTreeCommand {
	return &MethodTreeCommand{
		ws:    ws,
		Graph: graph,
	}
}

// Execute runs the method tree command
func (c *MethodTreeCommand) Execute(ctx context.Context) (*domain.TreeNode, error) {
	g, err := c.ws.Open(ctx, c.Graph)
	if err != nil {
		return nil, err
	}
	return g.Cache().MethodTree(ctx)
}
