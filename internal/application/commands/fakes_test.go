package commands

import (
	"context"
	"errors"
	"strings"
	"sync"

	"callscope/internal/application/explorer"
	"callscope/internal/domain"
	"callscope/internal/ports"
)

var errUnavailable = errors.New("service unavailable")

// stubService serves one graph: m1 calls m2 and m3, all inside class C
type stubService struct {
	mu       sync.Mutex
	calls    map[string]int
	failIDs  map[string]bool
	diffErr  error
	started  []string
	canceled int
}

func newStubService() *stubService {
	return &stubService{
		calls:   make(map[string]int),
		failIDs: make(map[string]bool),
	}
}

func (s *stubService) record(kind string) {
	s.mu.Lock()
	s.calls[kind]++
	s.mu.Unlock()
}

func (s *stubService) count(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[kind]
}

func method(id string) domain.NodeChain {
	return domain.NodeChain{
		domain.NewNode(domain.NodeData{ID: id, Label: id, Name: id, Parent: "C"}),
		domain.NewNode(domain.NodeData{ID: "C", Label: "C", Level: 1}),
	}
}

func callEdge(source, target string, value float64) domain.Edge {
	return domain.NewEdge(source, target).WithValue(value, true)
}

func (s *stubService) ListGraphs(ctx context.Context) ([]domain.GraphInfo, error) {
	s.record("graphs")
	return []domain.GraphInfo{{Name: "G", NodeCount: 4, EdgeCount: 2}, {Name: "H", NodeCount: 4, EdgeCount: 2}}, nil
}

func (s *stubService) MethodTree(ctx context.Context, graph string) (*domain.TreeNode, error) {
	s.record("tree")
	return domain.ParseMethodTree([]byte(`{"pkg": {"C": {"m1": "m1", "m2": "m2", "m3": "m3", "parse_args": "m4"}}}`))
}

func (s *stubService) FetchMethod(ctx context.Context, graph, id string, withEntrypoint bool) (*domain.Response, error) {
	s.record("method")
	s.mu.Lock()
	fail := s.failIDs[id]
	s.mu.Unlock()
	if fail {
		return nil, errUnavailable
	}
	return &domain.Response{Nodes: []domain.NodeChain{method(id)}, Edges: []domain.Edge{}}, nil
}

func (s *stubService) FetchNeighbors(ctx context.Context, graph, id string, rel domain.Relation, neighborID string) (*domain.Response, error) {
	s.record("neighbors:" + rel.String())
	if rel == domain.Callers || id != "m1" {
		return &domain.Response{Nodes: []domain.NodeChain{}, Edges: []domain.Edge{}}, nil
	}
	resp := &domain.Response{
		Nodes: []domain.NodeChain{method("m2"), method("m3")},
		Edges: []domain.Edge{callEdge("m1", "m2", 1), callEdge("m1", "m3", 4)},
	}
	if neighborID != "" {
		resp.Nodes = []domain.NodeChain{method(neighborID)}
		resp.Edges = []domain.Edge{callEdge("m1", neighborID, 1)}
	}
	return resp, nil
}

func (s *stubService) FetchEdge(ctx context.Context, graph, edgeID string, withNodes bool) (*domain.Response, error) {
	s.record("edge")
	source, target, err := domain.ParseEdgeID(edgeID)
	if err != nil {
		return nil, err
	}
	resp := &domain.Response{Edges: []domain.Edge{callEdge(source, target, 2)}}
	if withNodes {
		resp.Nodes = []domain.NodeChain{method(source), method(target)}
	}
	return resp, nil
}

func (s *stubService) FetchTopEdges(ctx context.Context, graph string, n int) (*domain.Response, error) {
	s.record("top")
	return &domain.Response{
		Nodes:    []domain.NodeChain{method("m1"), method("m2"), method("m3")},
		TopEdges: []domain.Edge{callEdge("m1", "m3", 4), callEdge("m1", "m2", 1)},
	}, nil
}

func (s *stubService) StartDiff(ctx context.Context, graph, other string, maxIterations int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.diffErr != nil {
		return s.diffErr
	}
	s.started = append(s.started, graph+":"+other)
	return nil
}

func (s *stubService) CancelDiff(ctx context.Context, graph string) error {
	s.mu.Lock()
	s.canceled++
	s.mu.Unlock()
	return nil
}

// stubProgress hands out one channel per Watch call
type stubProgress struct {
	events chan domain.DiffProgress
}

func (p *stubProgress) Watch(ctx context.Context, graph string) (<-chan domain.DiffProgress, error) {
	return p.events, nil
}

// memoryIndex is an in-memory method index
type memoryIndex struct {
	methods map[string][]domain.MethodEntry
	synced  map[string]bool
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{
		methods: make(map[string][]domain.MethodEntry),
		synced:  make(map[string]bool),
	}
}

func (m *memoryIndex) Open(serviceURL string) error { return nil }
func (m *memoryIndex) Close() error                 { return nil }

func (m *memoryIndex) NeedsRebuild(graph string) bool {
	return !m.synced[graph]
}

func (m *memoryIndex) Rebuild(graph string, tree *domain.TreeNode) (*domain.SyncStats, error) {
	stats := &domain.SyncStats{MethodsDeleted: len(m.methods[graph])}
	m.methods[graph] = tree.Methods(graph)
	m.synced[graph] = true
	stats.MethodsAdded = len(m.methods[graph])
	return stats, nil
}

func (m *memoryIndex) Search(graph, query string, limit int) ([]domain.MethodEntry, error) {
	var result []domain.MethodEntry
	for g, entries := range m.methods {
		if graph != "" && g != graph {
			continue
		}
		for _, e := range entries {
			if strings.Contains(strings.ToLower(e.QualifiedName()), strings.ToLower(query)) {
				result = append(result, e)
			}
		}
	}
	return result, nil
}

func (m *memoryIndex) Lookup(graph, id string) (*domain.MethodEntry, error) {
	for _, e := range m.methods[graph] {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *memoryIndex) BeginTx() (ports.IndexTx, error) {
	return nil, errors.New("transactions are not supported")
}

func newWorkspace(svc *stubService, opts ...explorer.WorkspaceOption) *explorer.Workspace {
	return explorer.NewWorkspace(svc, opts...)
}
