package commands

import (
	"context"
	"fmt"

	"callscope/internal/application"
	"callscope/internal/application/explorer"
	"callscope/internal/domain"
)

// DiffResult contains the state of a comparison job
type DiffResult struct {
	Graph   string
	State   explorer.DiffState
	Message string
}

// StartDiffCommand starts comparing a graph against another
type StartDiffCommand struct {
	ws            *explorer.Workspace
	Graph         string
	OtherGraph    string
	MaxIterations int
}

// NewStartDiffCommand creates a new StartDiffCommand
func NewStartDiffCommand(ws *explorer.Workspace, graph, otherGraph string, maxIterations int) *StartDiffCommand {
	return &StartDiffCommand{
		ws:            ws,
		Graph:         graph,
		OtherGraph:    otherGraph,
		MaxIterations: maxIterations,
	}
}

// Validate checks the command input
func (c *StartDiffCommand) Validate() error {
	if err := application.ValidateRequired("graph", c.Graph); err != nil {
		return err
	}
	if err := application.ValidateRequired("otherGraph", c.OtherGraph); err != nil {
		return err
	}
	if c.Graph == c.OtherGraph {
		return &application.ValidationError{
			Field:   "otherGraph",
			Message: "cannot compare a graph with itself",
		}
	}
	if c.MaxIterations < 0 {
		return application.ValidatePositive("maxIterations", c.MaxIterations)
	}
	return nil
}

// Execute runs the start diff command
func (c *StartDiffCommand) Execute(ctx context.Context) (*DiffResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	g, err := c.ws.Open(ctx, c.Graph)
	if err != nil {
		return nil, err
	}
	if err := g.StartDiff(ctx, c.OtherGraph, c.MaxIterations); err != nil {
		return nil, err
	}

	state := g.Diff()
	return &DiffResult{
		Graph:   c.Graph,
		State:   state,
		Message: fmt.Sprintf("Started diff of %s against %s (max %d iterations)", c.Graph, c.OtherGraph, state.MaxIterations),
	}, nil
}

// CancelDiffCommand stops the running comparison of a graph
type CancelDiffCommand struct {
	ws    *explorer.Workspace
	Graph string
}

// NewCancelDiffCommand creates a new CancelDiffCommand
func NewCancelDiffCommand(ws *explorer.Workspace, graph string) *CancelDiffCommand {
	return &CancelDiffCommand{
		ws:    ws,
		Graph: graph,
	}
}

// Execute runs the cancel diff command
func (c *CancelDiffCommand) Execute(ctx context.Context) (*DiffResult, error) {
	if err := application.ValidateRequired("graph", c.Graph); err != nil {
		return nil, err
	}

	g, err := c.ws.Open(ctx, c.Graph)
	if err != nil {
		return nil, err
	}
	if err := g.CancelDiff(ctx); err != nil {
		return nil, fmt.Errorf("failed to cancel diff: %w", err)
	}

	return &DiffResult{
		Graph:   c.Graph,
		State:   g.Diff(),
		Message: fmt.Sprintf("Cancelled diff of %s", c.Graph),
	}, nil
}

// WatchDiffCommand waits for the running comparison of a graph to finish,
// reporting every progress update to OnUpdate
type WatchDiffCommand struct {
	ws       *explorer.Workspace
	Graph    string
	OnUpdate func(explorer.DiffState)
}

// NewWatchDiffCommand creates a new WatchDiffCommand
func NewWatchDiffCommand(ws *explorer.Workspace, graph string, onUpdate func(explorer.DiffState)) *WatchDiffCommand {
	return &WatchDiffCommand{
		ws:       ws,
		Graph:    graph,
		OnUpdate: onUpdate,
	}
}

// Execute runs the watch command. A failed comparison is returned as a
// *application.DiffError.
func (c *WatchDiffCommand) Execute(ctx context.Context) (*DiffResult, error) {
	if err := application.ValidateRequired("graph", c.Graph); err != nil {
		return nil, err
	}

	g, ok := c.ws.Graph(c.Graph)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not open", application.ErrGraphNotFound, c.Graph)
	}

	updates := make(chan explorer.DiffState, 16)
	unsubscribe := g.OnDiff(func(s explorer.DiffState) {
		select {
		case updates <- s:
		default:
		}
	})
	defer unsubscribe()

	state := g.Diff()
	if state.Status == domain.DiffIdle {
		return nil, fmt.Errorf("%w: no diff started for %s", application.ErrInvalidOperation, c.Graph)
	}

	for state.Running() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case update := <-updates:
			if c.OnUpdate != nil {
				c.OnUpdate(update)
			}
			// updates may be dropped under load; the graph holds the latest state
			state = g.Diff()
		}
	}

	return c.result(state)
}

func (c *WatchDiffCommand) result(state explorer.DiffState) (*DiffResult, error) {
	if state.Status == domain.DiffFailed {
		return nil, &application.DiffError{Graph: c.Graph, Other: state.Other, Message: state.Message}
	}
	return &DiffResult{
		Graph:   c.Graph,
		State:   state,
		Message: state.Message,
	}, nil
}
