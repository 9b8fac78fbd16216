package explorer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callscope/internal/application"
	"callscope/internal/domain"
	"callscope/internal/ports"
)

func newTestGraph(opts ...GraphOption) (*Graph, *fakeService) {
	svc := newFakeService()
	return NewGraph(domain.GraphInfo{Name: "G"}, NewCache("G", svc), opts...), svc
}

func TestGraph_ViewsAreBounded(t *testing.T) {
	var surfaces []*recordingSurface
	g, _ := newTestGraph(WithSurfaceFactory(func(string) ports.Surface {
		s := &recordingSurface{}
		surfaces = append(surfaces, s)
		return s
	}))

	for i := 0; i <= DefaultMaxViews; i++ {
		g.CreateView("")
	}

	views := g.Views()
	assert.Len(t, views, DefaultMaxViews)
	assert.True(t, surfaces[0].destroyed, "oldest view is destroyed on eviction")
	assert.False(t, surfaces[1].destroyed)

	current, index, ok := g.CurrentView()
	require.True(t, ok)
	assert.Equal(t, 0, index)
	assert.Same(t, views[0], current)
}

func TestGraph_CloseView(t *testing.T) {
	tests := []struct {
		name      string
		views     int
		current   int
		close     int
		wantIndex int
	}{
		{name: "close before current", views: 3, current: 2, close: 0, wantIndex: 1},
		{name: "close after current", views: 3, current: 0, close: 2, wantIndex: 0},
		{name: "close current last", views: 3, current: 2, close: 2, wantIndex: 1},
		{name: "close only view", views: 1, current: 0, close: 0, wantIndex: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGraph()
			for range tt.views {
				g.CreateView("")
			}
			require.NoError(t, g.SelectView(tt.current))

			require.NoError(t, g.CloseView(tt.close))

			_, index, _ := g.CurrentView()
			assert.Equal(t, tt.wantIndex, index)
			assert.Len(t, g.Views(), tt.views-1)
		})
	}
}

func TestGraph_CloseUnknownView(t *testing.T) {
	g, _ := newTestGraph()
	err := g.CloseView(4)
	assert.True(t, errors.Is(err, application.ErrNotFound))
}

func TestGraph_CompoundToggleAppliesToViews(t *testing.T) {
	g, _ := newTestGraph()
	existing := g.CreateView("")

	g.SetCompoundNodesShown(false)
	assert.False(t, existing.CompoundNodesShown())
	assert.False(t, g.CreateView("").CompoundNodesShown(), "new views inherit the toggle")

	g.SetCompoundNodesShown(true)
	assert.True(t, existing.CompoundNodesShown())
}

func waitForDiff(t *testing.T, g *Graph, want domain.DiffStatus) DiffState {
	t.Helper()
	done := make(chan DiffState, 16)
	unsubscribe := g.OnDiff(func(s DiffState) {
		if s.Status == want {
			done <- s
		}
	})
	defer unsubscribe()

	if s := g.Diff(); s.Status == want {
		return s
	}
	select {
	case s := <-done:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("diff never reached %s, last state %+v", want, g.Diff())
		return DiffState{}
	}
}

func TestGraph_DiffSucceeds(t *testing.T) {
	progress := &fakeProgress{events: make(chan domain.DiffProgress, 4)}
	g, svc := newTestGraph(WithProgressSource(progress))
	svc.top = []domain.Edge{domain.NewEdge("a", "b").WithValue(1, true)}
	_, err := g.Cache().GetOrFetchTopEdges(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, g.StartDiff(context.Background(), "G2", 0))
	assert.Equal(t, []string{"G:G2:1000"}, svc.diffs)

	err = g.StartDiff(context.Background(), "G3", 10)
	assert.True(t, errors.Is(err, application.ErrDiffRunning))

	progress.events <- domain.DiffProgress{Iterations: 10}
	progress.events <- domain.DiffProgress{Saving: true}
	progress.events <- domain.DiffProgress{Done: true, Iterations: 42, Message: "done"}

	state := waitForDiff(t, g, domain.DiffSucceeded)
	assert.Equal(t, 42, state.CurrentIterations)
	assert.Equal(t, "done", state.Message)

	info := g.Info()
	assert.Equal(t, "G2", info.OtherGraph)
	assert.Equal(t, 42, info.Iterations)
	assert.True(t, info.HasDiff())

	_, err = g.Cache().GetOrFetchTopEdges(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, svc.count(QueryTopEdges), "ranking of the previous comparison is dropped")
}

func TestGraph_DiffFailures(t *testing.T) {
	tests := []struct {
		name  string
		feed  func(chan domain.DiffProgress)
		check func(t *testing.T, s DiffState)
	}{
		{
			name: "terminal error",
			feed: func(ch chan domain.DiffProgress) {
				ch <- domain.DiffProgress{Done: true, Err: errors.New("graphs are not comparable")}
			},
			check: func(t *testing.T, s DiffState) {
				assert.Equal(t, "graphs are not comparable", s.Message)
			},
		},
		{
			name: "channel closed early",
			feed: func(ch chan domain.DiffProgress) {
				ch <- domain.DiffProgress{Iterations: 3}
				close(ch)
			},
			check: func(t *testing.T, s DiffState) {
				assert.Error(t, s.Err)
				assert.Equal(t, 3, s.CurrentIterations)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := &fakeProgress{events: make(chan domain.DiffProgress, 4)}
			g, _ := newTestGraph(WithProgressSource(progress))

			require.NoError(t, g.StartDiff(context.Background(), "G2", 5))
			tt.feed(progress.events)

			state := waitForDiff(t, g, domain.DiffFailed)
			tt.check(t, state)
			assert.False(t, g.Info().HasDiff())
		})
	}
}

func TestGraph_StartDiffValidation(t *testing.T) {
	g, svc := newTestGraph()

	err := g.StartDiff(context.Background(), " ", 10)
	assert.True(t, application.IsValidationError(err))

	err = g.StartDiff(context.Background(), "G2", -1)
	assert.True(t, application.IsValidationError(err))
	assert.Empty(t, svc.diffs)
}

func TestGraph_StartDiffServiceError(t *testing.T) {
	progress := &fakeProgress{events: make(chan domain.DiffProgress)}
	g, svc := newTestGraph(WithProgressSource(progress))
	svc.err = errBoom

	err := g.StartDiff(context.Background(), "G2", 10)
	assert.True(t, errors.Is(err, errBoom))
	assert.Equal(t, domain.DiffFailed, g.Diff().Status)

	svc.err = nil
	assert.NoError(t, g.StartDiff(context.Background(), "G2", 10), "a failed job can be restarted")
}

func TestGraph_CloseDestroysViews(t *testing.T) {
	surface := &recordingSurface{}
	g, _ := newTestGraph(WithSurfaceFactory(func(string) ports.Surface { return surface }))
	g.CreateView("")

	g.Close()

	assert.True(t, surface.destroyed)
	assert.Empty(t, g.Views())
}
