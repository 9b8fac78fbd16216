package views

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callscope/internal/application/explorer"
	"callscope/internal/domain"
)

// stubService serves one graph: app.Main.main (m1) calls app.Main.helper (m2)
type stubService struct{}

func (stubService) ListGraphs(context.Context) ([]domain.GraphInfo, error) {
	return []domain.GraphInfo{{Name: "G", NodeCount: 3, EdgeCount: 1}}, nil
}

func (stubService) MethodTree(context.Context, string) (*domain.TreeNode, error) {
	return domain.ParseMethodTree([]byte(`{"app":{"Main":{"main":"m1","helper":"m2"}}}`))
}

func (stubService) FetchMethod(_ context.Context, _, id string, _ bool) (*domain.Response, error) {
	return &domain.Response{Nodes: []domain.NodeChain{{method(id, "Main"), class("Main", "")}}}, nil
}

func (stubService) FetchNeighbors(_ context.Context, _, id string, _ domain.Relation, _ string) (*domain.Response, error) {
	return &domain.Response{
		Nodes: []domain.NodeChain{{method("m2", "Main"), class("Main", "")}},
		Edges: []domain.Edge{domain.NewEdge(id, "m2")},
	}, nil
}

func (stubService) FetchEdge(context.Context, string, string, bool) (*domain.Response, error) {
	return &domain.Response{}, nil
}

func (stubService) FetchTopEdges(context.Context, string, int) (*domain.Response, error) {
	return &domain.Response{}, nil
}

func (stubService) StartDiff(context.Context, string, string, int) error {
	return nil
}

func (stubService) CancelDiff(context.Context, string) error {
	return nil
}

func newTestExplorer(t *testing.T) *ExplorerModel {
	t.Helper()
	ws := explorer.NewWorkspace(stubService{},
		explorer.WithGraphOptions(explorer.WithSurfaceFactory(NewCanvasSurface)))
	m := NewExplorerModel(ws, 10)
	m.SetSize(120, 40)
	drain(t, m, m.Open("G"))
	require.NotNil(t, m.Graph())
	return m
}

// drain runs cmd and feeds the explorer messages it produces back into m
func drain(t *testing.T, m *ExplorerModel, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(t, m, c)
		}
	case graphOpenedMsg, treeLoadedMsg, viewChangedMsg:
		_, next := m.Update(msg)
		drain(t, m, next)
	}
}

func press(t *testing.T, m *ExplorerModel, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := m.Update(msg)
		drain(t, m, cmd)
	}
}

func TestExplorer_LoadsMethodTree(t *testing.T) {
	m := newTestExplorer(t)

	require.Len(t, m.flatNodes, 1)
	assert.Equal(t, "app", m.flatNodes[0].Name)

	press(t, m, "l", "j", "l")
	names := make([]string, 0, len(m.flatNodes))
	for _, n := range m.flatNodes {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"app", "Main", "helper", "main"}, names)

	press(t, m, "h")
	assert.Len(t, m.flatNodes, 2)
}

func TestExplorer_ShowMethodOpensView(t *testing.T) {
	m := newTestExplorer(t)

	press(t, m, "l", "j", "l", "j", "j", "enter")

	views := m.Graph().Views()
	require.Len(t, views, 1)
	assert.Equal(t, "Method main", views[0].Title)
	assert.Equal(t, []string{"Main", "m1"}, itemIDs(m.items))
	assert.Equal(t, "m1", views[0].Selection().NodeID)
	assert.False(t, m.MessageErr, m.Message)
}

func TestExplorer_CanvasActions(t *testing.T) {
	m := newTestExplorer(t)
	press(t, m, "l", "j", "l", "j", "j", "enter", "tab")

	item, ok := m.selectedItem()
	require.True(t, ok)
	require.Equal(t, "m1", item.ID)

	press(t, m, "c")
	assert.Equal(t, []string{"Main", "m1", "m2", "m1->m2"}, itemIDs(m.items))

	press(t, m, "u")
	assert.Equal(t, []string{"Main", "m1"}, itemIDs(m.items))

	press(t, m, "g")
	assert.False(t, m.Graph().CompoundNodesShown())
	assert.Equal(t, []string{"m1"}, itemIDs(m.items))

	press(t, m, "g", "w")
	assert.Empty(t, m.Graph().Views())
	assert.Empty(t, m.items)
}

func TestExplorer_NewViewAndSwitching(t *testing.T) {
	m := newTestExplorer(t)
	press(t, m, "l", "j", "l", "j", "enter", "j", "o")

	views := m.Graph().Views()
	require.Len(t, views, 2)
	assert.Equal(t, "Method main", views[0].Title)
	assert.Equal(t, "Method helper", views[1].Title)

	press(t, m, "]")
	_, idx, _ := m.Graph().CurrentView()
	assert.Equal(t, 1, idx)
	assert.Equal(t, []string{"Main", "m2"}, itemIDs(m.items))
}
