package explorer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"callscope/internal/domain"
)

var errBoom = errors.New("service unavailable")

// fakeService answers from canned responses and counts requests per query kind
type fakeService struct {
	mu        sync.Mutex
	graphs    []domain.GraphInfo
	methods   map[string]*domain.Response
	neighbors map[string]*domain.Response
	edges     map[string]*domain.Response
	top       []domain.Edge
	topNodes  []domain.NodeChain
	tree      *domain.TreeNode
	err       error
	calls     map[string]int
	diffs     []string
	cancels   int
	gate      chan struct{}
}

func newFakeService() *fakeService {
	return &fakeService{
		graphs:    []domain.GraphInfo{{Name: "G", NodeCount: 2, EdgeCount: 1}},
		methods:   make(map[string]*domain.Response),
		neighbors: make(map[string]*domain.Response),
		edges:     make(map[string]*domain.Response),
		calls:     make(map[string]int),
	}
}

func (f *fakeService) record(ctx context.Context, kind string) error {
	f.mu.Lock()
	f.calls[kind]++
	err := f.err
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeService) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

func (f *fakeService) ListGraphs(ctx context.Context) ([]domain.GraphInfo, error) {
	if err := f.record(ctx, "graphs"); err != nil {
		return nil, err
	}
	return f.graphs, nil
}

func (f *fakeService) MethodTree(ctx context.Context, graph string) (*domain.TreeNode, error) {
	if err := f.record(ctx, QueryTree); err != nil {
		return nil, err
	}
	return f.tree, nil
}

func (f *fakeService) FetchMethod(ctx context.Context, graph, id string, withEntrypoint bool) (*domain.Response, error) {
	if err := f.record(ctx, QueryMethod); err != nil {
		return nil, err
	}
	resp, ok := f.methods[id]
	if !ok {
		return &domain.Response{}, nil
	}
	if !withEntrypoint {
		stripped := *resp
		stripped.Path = nil
		return &stripped, nil
	}
	return resp, nil
}

func (f *fakeService) FetchNeighbors(ctx context.Context, graph, id string, rel domain.Relation, neighborID string) (*domain.Response, error) {
	kind := QueryAllNeighbors
	key := fmt.Sprintf("%s:%s", id, rel)
	if neighborID != "" {
		kind = QueryNeighbor
		key += ":" + neighborID
	}
	if err := f.record(ctx, kind); err != nil {
		return nil, err
	}
	if resp, ok := f.neighbors[key]; ok {
		return resp, nil
	}
	return &domain.Response{}, nil
}

func (f *fakeService) FetchEdge(ctx context.Context, graph, edgeID string, withNodes bool) (*domain.Response, error) {
	if err := f.record(ctx, QueryEdge); err != nil {
		return nil, err
	}
	if resp, ok := f.edges[edgeID]; ok {
		return resp, nil
	}
	return &domain.Response{}, nil
}

func (f *fakeService) FetchTopEdges(ctx context.Context, graph string, n int) (*domain.Response, error) {
	if err := f.record(ctx, QueryTopEdges); err != nil {
		return nil, err
	}
	top := f.top
	if n < len(top) {
		top = top[:n]
	}
	return &domain.Response{Nodes: f.topNodes, TopEdges: top}, nil
}

func (f *fakeService) StartDiff(ctx context.Context, graph, other string, maxIterations int) error {
	if err := f.record(ctx, "diff_start"); err != nil {
		return err
	}
	f.mu.Lock()
	f.diffs = append(f.diffs, fmt.Sprintf("%s:%s:%d", graph, other, maxIterations))
	f.mu.Unlock()
	return nil
}

func (f *fakeService) CancelDiff(ctx context.Context, graph string) error {
	if err := f.record(ctx, "diff_cancel"); err != nil {
		return err
	}
	f.mu.Lock()
	f.cancels++
	f.mu.Unlock()
	return nil
}

// fakeProgress hands out a channel the test feeds
type fakeProgress struct {
	events chan domain.DiffProgress
	err    error
}

func (p *fakeProgress) Watch(ctx context.Context, graph string) (<-chan domain.DiffProgress, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.events, nil
}

// recordingSurface mirrors the calls a view makes
type recordingSurface struct {
	mu        sync.Mutex
	restored  []string
	removed   []string
	reparents []string
	styles    map[string]domain.EdgeStyle
	relayouts int
	destroyed bool
}

func (s *recordingSurface) Restore(elems domain.Elements) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restored = append(s.restored, elems.NodeIDs()...)
	s.restored = append(s.restored, elems.EdgeIDs()...)
}

func (s *recordingSurface) Remove(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, ids...)
}

func (s *recordingSurface) Reparent(nodeID, parentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reparents = append(s.reparents, nodeID+">"+parentID)
}

func (s *recordingSurface) SetEdgeStyles(styles map[string]domain.EdgeStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.styles = styles
}

func (s *recordingSurface) Relayout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relayouts++
}

func (s *recordingSurface) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
}

func leaf(id, parent string) domain.Node {
	return domain.NewNode(domain.NodeData{ID: id, Label: id, Parent: parent})
}

func group(id, parent string, level int) domain.Node {
	return domain.NewNode(domain.NodeData{ID: id, Label: id, Parent: parent, Level: level})
}

func chain(nodes ...domain.Node) domain.NodeChain {
	return domain.NodeChain(nodes)
}
