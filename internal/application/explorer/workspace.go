package explorer

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"callscope/internal/application"
	"callscope/internal/domain"
	"callscope/internal/logger"
	"callscope/internal/ports"
)

// DefaultMaxContexts caps the number of remembered query contexts
const DefaultMaxContexts = 5

// QueryContext is a remembered query result
type QueryContext struct {
	ID        uuid.UUID
	Graph     string
	Title     string
	Timestamp time.Time
	Elements  domain.Elements
}

// WorkspaceOption configures a Workspace
type WorkspaceOption func(*Workspace)

// WithMaxContexts caps the number of remembered query contexts
func WithMaxContexts(n int) WorkspaceOption {
	return func(w *Workspace) {
		if n > 0 {
			w.maxContexts = n
		}
	}
}

// WithCacheOptions applies opts to the cache of every opened graph
func WithCacheOptions(opts ...Option) WorkspaceOption {
	return func(w *Workspace) {
		w.cacheOpts = append(w.cacheOpts, opts...)
	}
}

// WithGraphOptions applies opts to every opened graph
func WithGraphOptions(opts ...GraphOption) WorkspaceOption {
	return func(w *Workspace) {
		w.graphOpts = append(w.graphOpts, opts...)
	}
}

// Workspace holds the opened graphs of one client and its recent queries
type Workspace struct {
	service     ports.GraphService
	cacheOpts   []Option
	graphOpts   []GraphOption
	maxContexts int

	mu       sync.Mutex
	graphs   map[string]*Graph
	contexts *domain.RecencyList[QueryContext]
}

// NewWorkspace creates a workspace querying service
func NewWorkspace(service ports.GraphService, opts ...WorkspaceOption) *Workspace {
	w := &Workspace{
		service:     service,
		maxContexts: DefaultMaxContexts,
		graphs:      make(map[string]*Graph),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.contexts = domain.NewRecencyList[QueryContext](w.maxContexts)
	return w
}

// Service returns the graph service of the workspace
func (w *Workspace) Service() ports.GraphService {
	return w.service
}

// ListGraphs returns the graphs available on the service
func (w *Workspace) ListGraphs(ctx context.Context) ([]domain.GraphInfo, error) {
	graphs, err := w.service.ListGraphs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	return graphs, nil
}

// Open returns the session of a graph, creating it on first use
func (w *Workspace) Open(ctx context.Context, name string) (*Graph, error) {
	if err := application.ValidateRequired("graph", name); err != nil {
		return nil, err
	}

	w.mu.Lock()
	if g, ok := w.graphs[name]; ok {
		w.mu.Unlock()
		return g, nil
	}
	w.mu.Unlock()

	graphs, err := w.ListGraphs(ctx)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(graphs, func(info domain.GraphInfo) bool {
		return info.Name == name
	})
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", application.ErrGraphNotFound, name)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if g, ok := w.graphs[name]; ok {
		return g, nil
	}
	g := NewGraph(graphs[idx], NewCache(name, w.service, w.cacheOpts...), w.graphOpts...)
	w.graphs[name] = g
	logger.Info("graph opened", "graph", name, "nodes", graphs[idx].NodeCount, "edges", graphs[idx].EdgeCount)
	return g, nil
}

// Graph returns an opened graph
func (w *Workspace) Graph(name string) (*Graph, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	g, ok := w.graphs[name]
	return g, ok
}

// Graphs returns the opened graphs ordered by name
func (w *Workspace) Graphs() []*Graph {
	w.mu.Lock()
	defer w.mu.Unlock()
	result := make([]*Graph, 0, len(w.graphs))
	for _, name := range slices.Sorted(maps.Keys(w.graphs)) {
		result = append(result, w.graphs[name])
	}
	return result
}

// Close closes a graph and releases its views
func (w *Workspace) Close(name string) error {
	w.mu.Lock()
	g, ok := w.graphs[name]
	delete(w.graphs, name)
	w.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", application.ErrGraphNotFound, name)
	}
	g.Close()
	return nil
}

// AddContext remembers a query result; past capacity the oldest is dropped
func (w *Workspace) AddContext(graph, title string, elems domain.Elements) QueryContext {
	if title == "" {
		title = "Query"
	}
	qc := QueryContext{
		ID:        uuid.New(),
		Graph:     graph,
		Title:     title,
		Timestamp: time.Now(),
		Elements:  elems,
	}
	w.mu.Lock()
	w.contexts.Push(qc)
	w.mu.Unlock()
	return qc
}

// Contexts returns the remembered query results, newest first
func (w *Workspace) Contexts() []QueryContext {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.contexts.Items()
}
