package explorer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"callscope/internal/application"
	"callscope/internal/domain"
	"callscope/internal/logger"
	"callscope/internal/ports"
)

// Defaults for a graph session
const (
	DefaultMaxViews          = 10
	DefaultDiffMaxIterations = 1000
)

// DiffState is the observable state of the comparison job of a graph
type DiffState struct {
	Status            domain.DiffStatus
	Other             string
	MaxIterations     int
	CurrentIterations int
	Message           string
	Err               error
}

// Running reports whether the job has not reached a terminal state
func (s DiffState) Running() bool {
	return s.Status == domain.DiffRunning || s.Status == domain.DiffSaving
}

// SurfaceFactory creates the surface of a new view
type SurfaceFactory func(title string) ports.Surface

// GraphOption configures a Graph
type GraphOption func(*Graph)

// WithMaxViews caps the number of open views
func WithMaxViews(n int) GraphOption {
	return func(g *Graph) {
		if n > 0 {
			g.maxViews = n
		}
	}
}

// WithSurfaceFactory sets how view surfaces are created
func WithSurfaceFactory(f SurfaceFactory) GraphOption {
	return func(g *Graph) {
		if f != nil {
			g.newSurface = f
		}
	}
}

// WithProgressSource sets where diff progress is read from
func WithProgressSource(p ports.DiffProgressSource) GraphOption {
	return func(g *Graph) {
		g.progress = p
	}
}

// Graph is an opened graph: its cache, its views and its comparison job
type Graph struct {
	cache      *Cache
	progress   ports.DiffProgressSource
	newSurface SurfaceFactory
	maxViews   int

	mu            sync.Mutex
	info          domain.GraphInfo
	views         *domain.RecencyList[*View]
	viewIndex     int
	compoundShown bool
	diff          DiffState
	stopWatch     context.CancelFunc
	diffObservers map[int]func(DiffState)
	nextObserver  int
}

// NewGraph creates a session over an existing cache
func NewGraph(info domain.GraphInfo, cache *Cache, opts ...GraphOption) *Graph {
	g := &Graph{
		cache:         cache,
		newSurface:    func(string) ports.Surface { return ports.NopSurface{} },
		maxViews:      DefaultMaxViews,
		info:          info,
		compoundShown: true,
		diff:          DiffState{Status: domain.DiffIdle},
		diffObservers: make(map[int]func(DiffState)),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.views = domain.NewRecencyList[*View](g.maxViews)
	return g
}

// Name returns the graph name
func (g *Graph) Name() string {
	return g.cache.Graph()
}

// Info returns the graph description, including the last completed comparison
func (g *Graph) Info() domain.GraphInfo {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.info
}

// Cache returns the shared element cache
func (g *Graph) Cache() *Cache {
	return g.cache
}

// CreateView opens a new view and makes it current. Past capacity the
// oldest view is destroyed.
func (g *Graph) CreateView(title string) *View {
	g.mu.Lock()
	var opts []ViewOption
	if !g.compoundShown {
		opts = append(opts, WithCompoundNodesHidden())
	}
	view := NewView(title, g.cache, g.newSurface(title), opts...)
	evicted, ok := g.views.Push(view)
	g.viewIndex = 0
	g.mu.Unlock()

	if ok {
		logger.Debug("view evicted", "graph", g.Name(), "title", evicted.Title)
		evicted.Destroy()
	}
	return view
}

// CloseView destroys the view at index
func (g *Graph) CloseView(index int) error {
	g.mu.Lock()
	view, ok := g.views.Remove(index)
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: view %d", application.ErrNotFound, index)
	}
	if g.viewIndex > index {
		g.viewIndex--
	}
	if g.viewIndex >= g.views.Len() {
		g.viewIndex = max(g.views.Len()-1, 0)
	}
	g.mu.Unlock()

	view.Destroy()
	return nil
}

// SelectView makes the view at index current
func (g *Graph) SelectView(index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if index < 0 || index >= g.views.Len() {
		return fmt.Errorf("%w: view %d", application.ErrNotFound, index)
	}
	g.viewIndex = index
	return nil
}

// Views returns the open views, newest first
func (g *Graph) Views() []*View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.views.Items()
}

// CurrentView returns the current view and its index
func (g *Graph) CurrentView() (*View, int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.views.At(g.viewIndex)
	return v, g.viewIndex, ok
}

// CompoundNodesShown reports the compound toggle new views inherit
func (g *Graph) CompoundNodesShown() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.compoundShown
}

// SetCompoundNodesShown applies the compound toggle to every view
func (g *Graph) SetCompoundNodesShown(shown bool) {
	g.mu.Lock()
	g.compoundShown = shown
	views := g.views.Items()
	g.mu.Unlock()

	for _, v := range views {
		v.SetCompoundNodesShown(shown)
	}
}

// Diff returns the state of the comparison job
func (g *Graph) Diff() DiffState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.diff
}

// OnDiff registers fn for every change of the comparison job
func (g *Graph) OnDiff(fn func(DiffState)) (unsubscribe func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextObserver
	g.nextObserver++
	g.diffObservers[id] = fn
	return func() {
		g.mu.Lock()
		delete(g.diffObservers, id)
		g.mu.Unlock()
	}
}

// StartDiff compares the graph against other. Progress is watched before
// the job is started so no event is missed.
func (g *Graph) StartDiff(ctx context.Context, other string, maxIterations int) error {
	if err := application.ValidateRequired("otherGraph", other); err != nil {
		return err
	}
	if maxIterations == 0 {
		maxIterations = DefaultDiffMaxIterations
	}
	if err := application.ValidatePositive("maxIterations", maxIterations); err != nil {
		return err
	}

	g.mu.Lock()
	if g.diff.Running() {
		g.mu.Unlock()
		return application.ErrDiffRunning
	}
	g.diff = DiffState{Status: domain.DiffRunning, Other: other, MaxIterations: maxIterations}
	g.mu.Unlock()

	var (
		events <-chan domain.DiffProgress
		stop   context.CancelFunc = func() {}
	)
	if g.progress != nil {
		var watchCtx context.Context
		watchCtx, stop = context.WithCancel(context.Background())
		var err error
		events, err = g.progress.Watch(watchCtx, g.Name())
		if err != nil {
			stop()
			g.failDiff(err)
			return fmt.Errorf("failed to watch diff progress: %w", err)
		}
	}

	if err := g.cache.StartDiff(ctx, other, maxIterations); err != nil {
		stop()
		g.failDiff(err)
		return err
	}

	g.mu.Lock()
	g.stopWatch = stop
	g.mu.Unlock()
	g.publishDiff()

	if events != nil {
		go g.consumeDiff(events, stop)
	}
	return nil
}

// CancelDiff asks the service to stop the running comparison
func (g *Graph) CancelDiff(ctx context.Context) error {
	return g.cache.CancelDiff(ctx)
}

func (g *Graph) consumeDiff(events <-chan domain.DiffProgress, stop context.CancelFunc) {
	defer stop()
	for p := range events {
		if !p.Done {
			g.mu.Lock()
			if p.Saving {
				g.diff.Status = domain.DiffSaving
			} else {
				g.diff.Status = domain.DiffRunning
				g.diff.CurrentIterations = p.Iterations
			}
			g.mu.Unlock()
			g.publishDiff()
			continue
		}

		if p.Err != nil {
			g.failDiff(p.Err)
			return
		}
		g.completeDiff(p)
		return
	}
	g.failDiff(errors.New("progress channel closed before the diff finished"))
}

func (g *Graph) completeDiff(p domain.DiffProgress) {
	g.cache.ResetTopEdges()

	g.mu.Lock()
	g.diff.Status = domain.DiffSucceeded
	g.diff.Message = p.Message
	g.diff.CurrentIterations = p.Iterations
	g.info.OtherGraph = g.diff.Other
	g.info.Iterations = p.Iterations
	g.stopWatch = nil
	other := g.diff.Other
	g.mu.Unlock()

	logger.Info("diff finished", "graph", g.Name(), "other", other, "iterations", p.Iterations)
	g.publishDiff()
}

func (g *Graph) failDiff(err error) {
	g.mu.Lock()
	if !g.diff.Running() {
		g.mu.Unlock()
		return
	}
	g.diff.Status = domain.DiffFailed
	g.diff.Err = err
	g.diff.Message = err.Error()
	g.stopWatch = nil
	g.mu.Unlock()

	logger.Warn("diff failed", "graph", g.Name(), "err", err)
	g.publishDiff()
}

func (g *Graph) publishDiff() {
	g.mu.Lock()
	state := g.diff
	observers := make([]func(DiffState), 0, len(g.diffObservers))
	for i := 0; i < g.nextObserver; i++ {
		if fn, ok := g.diffObservers[i]; ok {
			observers = append(observers, fn)
		}
	}
	g.mu.Unlock()

	for _, fn := range observers {
		fn(state)
	}
}

// Close stops watching diff progress and destroys every view
func (g *Graph) Close() {
	g.mu.Lock()
	stop := g.stopWatch
	g.stopWatch = nil
	views := g.views.Items()
	g.views = domain.NewRecencyList[*View](g.maxViews)
	g.viewIndex = 0
	g.mu.Unlock()

	if stop != nil {
		stop()
	}
	for _, v := range views {
		v.Destroy()
	}
}
