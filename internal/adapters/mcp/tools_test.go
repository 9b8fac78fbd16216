package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callscope/internal/application/explorer"
	"callscope/internal/domain"
)

// graphService serves graph G where m1 calls m2
type graphService struct {
	started []string
}

func chain(id string) domain.NodeChain {
	return domain.NodeChain{
		domain.NewNode(domain.NodeData{ID: id, Label: id + "()", Parent: "Main"}),
		domain.NewNode(domain.NodeData{ID: "Main", Label: "Main", Level: 1}),
	}
}

func (s *graphService) ListGraphs(ctx context.Context) ([]domain.GraphInfo, error) {
	return []domain.GraphInfo{
		{Name: "G", NodeCount: 3, EdgeCount: 1, OtherGraph: "H", Iterations: 8},
		{Name: "H", NodeCount: 3, EdgeCount: 1},
	}, nil
}

func (s *graphService) MethodTree(ctx context.Context, graph string) (*domain.TreeNode, error) {
	return domain.ParseMethodTree([]byte(`{"app": {"Main": {"m1": "m1", "m2": "m2"}}}`))
}

func (s *graphService) FetchMethod(ctx context.Context, graph, id string, withEntrypoint bool) (*domain.Response, error) {
	return &domain.Response{Nodes: []domain.NodeChain{chain(id)}}, nil
}

func (s *graphService) FetchNeighbors(ctx context.Context, graph, id string, rel domain.Relation, neighborID string) (*domain.Response, error) {
	return &domain.Response{
		Nodes: []domain.NodeChain{chain("m2")},
		Edges: []domain.Edge{domain.NewEdge("m1", "m2").WithValue(0.5, true)},
	}, nil
}

func (s *graphService) FetchEdge(ctx context.Context, graph, edgeID string, withNodes bool) (*domain.Response, error) {
	return &domain.Response{
		Nodes: []domain.NodeChain{chain("m1"), chain("m2")},
		Edges: []domain.Edge{domain.NewEdge("m1", "m2").WithValue(0.5, true)},
	}, nil
}

func (s *graphService) FetchTopEdges(ctx context.Context, graph string, n int) (*domain.Response, error) {
	return s.FetchEdge(ctx, graph, "m1->m2", true)
}

func (s *graphService) StartDiff(ctx context.Context, graph, other string, maxIterations int) error {
	s.started = append(s.started, graph+":"+other)
	return nil
}

func (s *graphService) CancelDiff(ctx context.Context, graph string) error {
	return nil
}

func call(t *testing.T, handler server.ToolHandlerFunc, args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, result.IsError
}

func TestReadTools(t *testing.T) {
	ws := explorer.NewWorkspace(&graphService{})

	tests := []struct {
		name    string
		handler server.ToolHandlerFunc
		args    map[string]any
		want    []string
		isError bool
	}{
		{
			name:    "list graphs",
			handler: listGraphsHandler(ws),
			want:    []string{"G  3 nodes  1 edges  diff vs H (8 iterations)", "H  3 nodes  1 edges"},
		},
		{
			name:    "get method",
			handler: getMethodHandler(ws),
			args:    map[string]any{"graph": "G", "id": "m1"},
			want:    []string{"Method m1: 2 nodes, 0 edges", "m1  method  m1()  in Main", "Main  group  Main"},
		},
		{
			name:    "get method without id",
			handler: getMethodHandler(ws),
			args:    map[string]any{"graph": "G"},
			want:    []string{"node ID is required"},
			isError: true,
		},
		{
			name:    "get callees",
			handler: getNeighborsHandler(ws),
			args:    map[string]any{"graph": "G", "id": "m1", "relation": "callees"},
			want:    []string{"All callees of m1", "m1->m2  value 0.5"},
		},
		{
			name:    "invalid relation",
			handler: getNeighborsHandler(ws),
			args:    map[string]any{"graph": "G", "id": "m1", "relation": "friends"},
			isError: true,
		},
		{
			name:    "get edge",
			handler: getEdgeHandler(ws),
			args:    map[string]any{"graph": "G", "edge_id": "m1->m2"},
			want:    []string{"Edge m1->m2", "m2  method  m2()"},
		},
		{
			name:    "top edges",
			handler: topEdgesHandler(ws),
			args:    map[string]any{"graph": "G", "n": float64(1)},
			want:    []string{"Top 1 edges", "m1->m2"},
		},
		{
			name:    "method tree",
			handler: methodTreeHandler(ws),
			args:    map[string]any{"graph": "G"},
			want:    []string{"app\n  Main\n    m1  [m1]\n    m2  [m2]\n"},
		},
		{
			name:    "unknown graph",
			handler: methodTreeHandler(ws),
			args:    map[string]any{"graph": "nope"},
			want:    []string{"graph not found"},
			isError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isError := call(t, tt.handler, tt.args)
			assert.Equal(t, tt.isError, isError, text)
			for _, w := range tt.want {
				assert.Contains(t, text, w)
			}
		})
	}
}

func TestRecentQueries(t *testing.T) {
	ws := explorer.NewWorkspace(&graphService{})

	text, _ := call(t, recentQueriesHandler(ws), nil)
	assert.Equal(t, "No results.", text)

	call(t, getMethodHandler(ws), map[string]any{"graph": "G", "id": "m1"})
	call(t, getMethodHandler(ws), map[string]any{"graph": "G", "id": "m2"})

	text, _ = call(t, recentQueriesHandler(ws), nil)
	assert.Less(t, strings.Index(text, "Method m2"), strings.Index(text, "Method m1"), "newest first")
}

func TestDiffTools(t *testing.T) {
	svc := &graphService{}
	ws := explorer.NewWorkspace(svc)

	text, isError := call(t, diffStatusHandler(ws), map[string]any{"graph": "G"})
	assert.True(t, isError)
	assert.Contains(t, text, "no diff started")

	text, isError = call(t, startDiffHandler(ws), map[string]any{"graph": "G", "other_graph": "H", "max_iterations": float64(20)})
	require.False(t, isError, text)
	assert.Contains(t, text, "Started diff of G against H (max 20 iterations)")
	assert.Equal(t, []string{"G:H"}, svc.started)

	text, _ = call(t, diffStatusHandler(ws), map[string]any{"graph": "G"})
	assert.Equal(t, "running  vs H  0/20 iterations", text)

	text, isError = call(t, startDiffHandler(ws), map[string]any{"graph": "G", "other_graph": "H"})
	assert.True(t, isError)
	assert.Contains(t, text, "diff already running")

	text, isError = call(t, cancelDiffHandler(ws), map[string]any{"graph": "G"})
	assert.False(t, isError)
	assert.Equal(t, "Cancelled diff of G", text)
}

func TestRegisterTools(t *testing.T) {
	s := server.NewMCPServer("test", "0.0.0", server.WithToolCapabilities(true))
	ws := explorer.NewWorkspace(&graphService{})

	RegisterReadTools(s, ws, nil)
	RegisterDiffTools(s, ws)

	tools := s.ListTools()
	for _, name := range []string{"list_graphs", "get_method", "get_neighbors", "get_edge", "top_edges",
		"method_tree", "recent_queries", "start_diff", "cancel_diff", "diff_status"} {
		assert.Contains(t, tools, name)
	}
	assert.NotContains(t, tools, "search_methods")
}
