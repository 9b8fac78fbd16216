package commands

import (
	"context"
	"fmt"

	"callscope/internal/application"
	"callscope/internal/application/explorer"
	"callscope/internal/domain"
)

// QueryResult contains the elements answering a query
type QueryResult struct {
	Graph    string
	Elements domain.Elements
	Context  explorer.QueryContext
	Message  string
}

// run opens graph, answers the query from its cache and remembers the result
func run(ctx context.Context, ws *explorer.Workspace, graph, title string, query func(*explorer.Cache) (domain.Elements, error)) (*QueryResult, error) {
	g, err := ws.Open(ctx, graph)
	if err != nil {
		return nil, err
	}

	elems, err := query(g.Cache())
	if err != nil {
		return nil, err
	}

	qc := ws.AddContext(graph, title, elems)
	return &QueryResult{
		Graph:    graph,
		Elements: elems,
		Context:  qc,
		Message:  fmt.Sprintf("%s: %d nodes, %d edges", title, len(elems.Nodes), len(elems.Edges)),
	}, nil
}

// MethodCommand fetches a method with its ancestors
type MethodCommand struct {
	ws             *explorer.Workspace
	Graph          string
	NodeID         string
	WithEntrypoint bool
}

// NewMethodCommand creates a new MethodCommand
func NewMethodCommand(ws *explorer.Workspace, graph, nodeID string, withEntrypoint bool) *MethodCommand {
	return &MethodCommand{
		ws:             ws,
		Graph:          graph,
		NodeID:         nodeID,
		WithEntrypoint: withEntrypoint,
	}
}

// Validate checks the command input
func (c *MethodCommand) Validate() error {
	if err := application.ValidateRequired("graph", c.Graph); err != nil {
		return err
	}
	return application.ValidateRequired("nodeID", c.NodeID)
}

// Execute runs the method command
func (c *MethodCommand) Execute(ctx context.Context) (*QueryResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	title := "Method " + c.NodeID
	if c.WithEntrypoint {
		title += " from entrypoint"
	}
	return run(ctx, c.ws, c.Graph, title, func(cache *explorer.Cache) (domain.Elements, error) {
		return cache.GetOrFetchNode(ctx, c.NodeID, c.WithEntrypoint)
	})
}

// NeighborsCommand fetches the callers or callees of a method. With a
// neighbor ID only that neighbor is fetched.
type NeighborsCommand struct {
	ws         *explorer.Workspace
	Graph      string
	NodeID     string
	Relation   string
	NeighborID string
}

// NewNeighborsCommand creates a new NeighborsCommand
func NewNeighborsCommand(ws *explorer.Workspace, graph, nodeID, relation, neighborID string) *NeighborsCommand {
	return &NeighborsCommand{
		ws:         ws,
		Graph:      graph,
		NodeID:     nodeID,
		Relation:   relation,
		NeighborID: neighborID,
	}
}

// Validate checks the command input
func (c *NeighborsCommand) Validate() error {
	if err := application.ValidateRequired("graph", c.Graph); err != nil {
		return err
	}
	if err := application.ValidateRequired("nodeID", c.NodeID); err != nil {
		return err
	}
	_, err := application.ValidateRelation("relation", c.Relation)
	return err
}

// Execute runs the neighbors command
func (c *NeighborsCommand) Execute(ctx context.Context) (*QueryResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rel, _ := domain.ParseRelation(c.Relation)

	if c.NeighborID != "" {
		title := fmt.Sprintf("%s of %s: %s", rel, c.NodeID, c.NeighborID)
		return run(ctx, c.ws, c.Graph, title, func(cache *explorer.Cache) (domain.Elements, error) {
			return cache.GetOrFetchNeighbor(ctx, c.NodeID, rel, c.NeighborID)
		})
	}

	title := fmt.Sprintf("All %s of %s", rel, c.NodeID)
	return run(ctx, c.ws, c.Graph, title, func(cache *explorer.Cache) (domain.Elements, error) {
		return cache.GetOrFetchAllNeighbors(ctx, c.NodeID, rel)
	})
}

// EdgeCommand fetches a call edge by its source->target ID
type EdgeCommand struct {
	ws        *explorer.Workspace
	Graph     string
	EdgeID    string
	WithNodes bool
}

// NewEdgeCommand creates a new EdgeCommand
func NewEdgeCommand(ws *explorer.Workspace, graph, edgeID string, withNodes bool) *EdgeCommand {
	return &EdgeCommand{
		ws:        ws,
		Graph:     graph,
		EdgeID:    edgeID,
		WithNodes: withNodes,
	}
}

// Validate checks the command input
func (c *EdgeCommand) Validate() error {
	if err := application.ValidateRequired("graph", c.Graph); err != nil {
		return err
	}
	if err := application.ValidateRequired("edgeID", c.EdgeID); err != nil {
		return err
	}
	return application.ValidateEdgeID("edgeID", c.EdgeID)
}

// Execute runs the edge command
func (c *EdgeCommand) Execute(ctx context.Context) (*QueryResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return run(ctx, c.ws, c.Graph, "Edge "+c.EdgeID, func(cache *explorer.Cache) (domain.Elements, error) {
		return cache.GetOrFetchEdge(ctx, c.EdgeID, c.WithNodes)
	})
}

// TopEdgesCommand fetches the edges that changed most in the last diff.
// N <= 0 extends the previous ranking.
type TopEdgesCommand struct {
	ws    *explorer.Workspace
	Graph string
	N     int
}

// NewTopEdgesCommand creates a new TopEdgesCommand
func NewTopEdgesCommand(ws *explorer.Workspace, graph string, n int) *TopEdgesCommand {
	return &TopEdgesCommand{
		ws:    ws,
		Graph: graph,
		N:     n,
	}
}

// Validate checks the command input
func (c *TopEdgesCommand) Validate() error {
	return application.ValidateRequired("graph", c.Graph)
}

// Execute runs the top edges command
func (c *TopEdgesCommand) Execute(ctx context.Context) (*QueryResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	title := "Top edges"
	if c.N > 0 {
		title = fmt.Sprintf("Top %d edges", c.N)
	}
	return run(ctx, c.ws, c.Graph, title, func(cache *explorer.Cache) (domain.Elements, error) {
		return cache.GetOrFetchTopEdges(ctx, c.N)
	})
}
