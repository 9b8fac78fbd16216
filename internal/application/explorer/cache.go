// Package explorer implements the client-side core of call-graph exploration:
// the per-graph element cache, the views projecting it onto a surface, and
// the colouring of diff values.
package explorer

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"callscope/internal/application"
	"callscope/internal/domain"
	"callscope/internal/logger"
	"callscope/internal/ports"
)

// DefaultTopEdgeIncrement is how many extra top edges are requested when
// the caller does not name a count
const DefaultTopEdgeIncrement = 10

// Query kinds reported to CacheMetrics
const (
	QueryMethod       = "method"
	QueryNeighbor     = "neighbor"
	QueryAllNeighbors = "neighbors"
	QueryEdge         = "edge"
	QueryTopEdges     = "top_edges"
	QueryTree         = "tree"
)

// Option configures a Cache
type Option func(*Cache)

// WithMetrics records hits, misses and failed fetches
func WithMetrics(m ports.CacheMetrics) Option {
	return func(c *Cache) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTopEdgeIncrement sets how many top edges are added per unsized request
func WithTopEdgeIncrement(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.topEdgeIncrement = n
		}
	}
}

// WithCoalescedFetches merges concurrent identical fetches into one request.
// The request is not cancelled by the caller that started it.
func WithCoalescedFetches() Option {
	return func(c *Cache) {
		c.coalesce = true
	}
}

// Cache holds every element the service has returned for one graph and
// decides whether a query can be answered without a request.
//
// Nodes are first write wins, edges are last write wins. A failed fetch
// leaves the cache untouched and is never retried.
type Cache struct {
	graph            string
	service          ports.GraphService
	metrics          ports.CacheMetrics
	topEdgeIncrement int
	coalesce         bool
	flight           singleflight.Group

	mu          sync.RWMutex
	nodes       map[string]domain.Node
	edges       map[string]domain.Edge
	entrypoints map[string]domain.EntrypointPath
	topEdges    []string
	tree        *domain.TreeNode
}

// NewCache creates an empty cache for graph
func NewCache(graph string, service ports.GraphService, opts ...Option) *Cache {
	c := &Cache{
		graph:            graph,
		service:          service,
		metrics:          ports.NopMetrics{},
		topEdgeIncrement: DefaultTopEdgeIncrement,
		nodes:            make(map[string]domain.Node),
		edges:            make(map[string]domain.Edge),
		entrypoints:      make(map[string]domain.EntrypointPath),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Graph returns the name of the cached graph
func (c *Cache) Graph() string {
	return c.graph
}

// GetOrFetchNode returns the node with its ancestors and, when requested,
// its entrypoint path
func (c *Cache) GetOrFetchNode(ctx context.Context, id string, withEntrypoint bool) (domain.Elements, error) {
	c.mu.RLock()
	_, cached := c.nodes[id]
	_, hasPath := c.entrypoints[id]
	if cached && (!withEntrypoint || hasPath) {
		elems := c.nodeAnswerLocked(id, withEntrypoint)
		c.mu.RUnlock()
		c.metrics.CacheHit(c.graph, QueryMethod)
		return elems, nil
	}
	c.mu.RUnlock()

	resp, err := c.fetch(ctx, QueryMethod, fmt.Sprintf("%s:%t", id, withEntrypoint), func(ctx context.Context) (*domain.Response, error) {
		return c.service.FetchMethod(ctx, c.graph, id, withEntrypoint)
	})
	if err != nil {
		return domain.Elements{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergeLocked(resp)
	if withEntrypoint {
		c.entrypoints[id] = resp.EntrypointPathFor(id)
	}
	if _, ok := c.nodes[id]; !ok {
		return domain.Elements{}, fmt.Errorf("%w: method %s in graph %s", application.ErrNotFound, id, c.graph)
	}
	return c.nodeAnswerLocked(id, withEntrypoint), nil
}

// GetOrFetchNeighbor returns one caller or callee of a node with the edge joining them
func (c *Cache) GetOrFetchNeighbor(ctx context.Context, id string, rel domain.Relation, neighborID string) (domain.Elements, error) {
	c.mu.RLock()
	node, ok := c.nodes[id]
	if ok && c.neighborCompleteLocked(node, rel, neighborID) {
		elems := c.neighborAnswerLocked(id, rel, []string{neighborID})
		c.mu.RUnlock()
		c.metrics.CacheHit(c.graph, QueryNeighbor)
		return elems, nil
	}
	c.mu.RUnlock()

	resp, err := c.fetch(ctx, QueryNeighbor, id+":"+rel.String()+":"+neighborID, func(ctx context.Context) (*domain.Response, error) {
		return c.service.FetchNeighbors(ctx, c.graph, id, rel, neighborID)
	})
	if err != nil {
		return domain.Elements{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergeLocked(resp)
	return c.currentLocked(resp.Elements()), nil
}

// GetOrFetchAllNeighbors returns every caller or callee of a node.
// The cache answers only when every embedded neighbor is complete;
// otherwise exactly one request fetches the whole set.
func (c *Cache) GetOrFetchAllNeighbors(ctx context.Context, id string, rel domain.Relation) (domain.Elements, error) {
	c.mu.RLock()
	node, ok := c.nodes[id]
	if ok && node.HasNeighborList(rel) {
		neighbors := neighborIDs(node, rel)
		complete := true
		for _, nid := range neighbors {
			if !c.neighborCompleteLocked(node, rel, nid) {
				complete = false
				break
			}
		}
		if complete {
			elems := c.neighborAnswerLocked(id, rel, neighbors)
			c.mu.RUnlock()
			c.metrics.CacheHit(c.graph, QueryAllNeighbors)
			return elems, nil
		}
	}
	c.mu.RUnlock()

	resp, err := c.fetch(ctx, QueryAllNeighbors, id+":"+rel.String(), func(ctx context.Context) (*domain.Response, error) {
		return c.service.FetchNeighbors(ctx, c.graph, id, rel, "")
	})
	if err != nil {
		return domain.Elements{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergeLocked(resp)
	c.learnNeighborsLocked(id, rel, resp)
	return c.currentLocked(resp.Elements()), nil
}

// GetOrFetchEdge returns an edge and, when requested, both endpoints with their ancestors
func (c *Cache) GetOrFetchEdge(ctx context.Context, edgeID string, withNodes bool) (domain.Elements, error) {
	source, target, err := domain.ParseEdgeID(edgeID)
	if err != nil {
		return domain.Elements{}, err
	}

	c.mu.RLock()
	_, hasEdge := c.edges[edgeID]
	_, hasSource := c.nodes[source]
	_, hasTarget := c.nodes[target]
	if hasEdge && (!withNodes || (hasSource && hasTarget)) {
		elems := c.edgeAnswerLocked(edgeID, source, target, withNodes)
		c.mu.RUnlock()
		c.metrics.CacheHit(c.graph, QueryEdge)
		return elems, nil
	}
	c.mu.RUnlock()

	resp, err := c.fetch(ctx, QueryEdge, fmt.Sprintf("%s:%t", edgeID, withNodes), func(ctx context.Context) (*domain.Response, error) {
		return c.service.FetchEdge(ctx, c.graph, edgeID, withNodes)
	})
	if err != nil {
		return domain.Elements{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergeLocked(resp)
	if _, ok := c.edges[edgeID]; !ok {
		return domain.Elements{}, fmt.Errorf("%w: edge %s in graph %s", application.ErrNotFound, edgeID, c.graph)
	}
	return c.edgeAnswerLocked(edgeID, source, target, withNodes), nil
}

// GetOrFetchTopEdges returns the n edges with the largest diff value, in
// ranking order, with their endpoints. n <= 0 extends the cached ranking
// by the configured increment.
func (c *Cache) GetOrFetchTopEdges(ctx context.Context, n int) (domain.Elements, error) {
	c.mu.RLock()
	cachedLen := len(c.topEdges)
	if n > 0 && cachedLen >= n {
		elems := c.topEdgesAnswerLocked(n)
		c.mu.RUnlock()
		c.metrics.CacheHit(c.graph, QueryTopEdges)
		return elems, nil
	}
	c.mu.RUnlock()

	request := n
	if request <= 0 {
		request = cachedLen + c.topEdgeIncrement
	}

	resp, err := c.fetch(ctx, QueryTopEdges, fmt.Sprint(request), func(ctx context.Context) (*domain.Response, error) {
		return c.service.FetchTopEdges(ctx, c.graph, request)
	})
	if err != nil {
		return domain.Elements{}, err
	}

	ranked := resp.TopEdges
	if ranked == nil {
		ranked = resp.Edges
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergeLocked(resp)
	order := make([]string, 0, len(ranked))
	for _, e := range domain.Deduplicate(ranked) {
		order = append(order, e.Data.ID)
	}
	c.topEdges = order
	return c.topEdgesAnswerLocked(request), nil
}

// ResetTopEdges forgets the cached ranking; edges stay cached
func (c *Cache) ResetTopEdges() {
	c.mu.Lock()
	c.topEdges = nil
	c.mu.Unlock()
}

// MethodTree returns the package/class/method tree of the graph, fetched once
func (c *Cache) MethodTree(ctx context.Context) (*domain.TreeNode, error) {
	c.mu.RLock()
	tree := c.tree
	c.mu.RUnlock()
	if tree != nil {
		c.metrics.CacheHit(c.graph, QueryTree)
		return tree, nil
	}

	c.metrics.CacheMiss(c.graph, QueryTree)
	tree, err := c.service.MethodTree(ctx, c.graph)
	if err != nil {
		c.metrics.FetchFailed(c.graph, QueryTree)
		logger.Warn("method tree fetch failed", "graph", c.graph, "err", err)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tree == nil {
		c.tree = tree
	}
	return c.tree, nil
}

// StartDiff asks the service to compare the graph against other.
// Progress is observed through a ports.DiffProgressSource.
func (c *Cache) StartDiff(ctx context.Context, other string, maxIterations int) error {
	logger.Info("starting diff", "graph", c.graph, "other", other, "max_iterations", maxIterations)
	return c.service.StartDiff(ctx, c.graph, other, maxIterations)
}

// CancelDiff asks the service to stop the running comparison
func (c *Cache) CancelDiff(ctx context.Context) error {
	logger.Info("cancelling diff", "graph", c.graph)
	return c.service.CancelDiff(ctx, c.graph)
}

// Node returns a cached node
func (c *Cache) Node(id string) (domain.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nodes[id]
	return n, ok
}

// Edge returns a cached edge
func (c *Cache) Edge(id string) (domain.Edge, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.edges[id]
	return e, ok
}

// Chain returns a cached node followed by its cached ancestors
func (c *Cache) Chain(id string) domain.NodeChain {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.chainLocked(id)
}

// EntrypointPath returns the cached entrypoint path of a node
func (c *Cache) EntrypointPath(id string) (domain.EntrypointPath, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entrypoints[id]
	return p, ok
}

// Stats returns the number of cached nodes and edges
func (c *Cache) Stats() (nodes, edges int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes), len(c.edges)
}

func (c *Cache) fetch(ctx context.Context, query, key string, fn func(context.Context) (*domain.Response, error)) (*domain.Response, error) {
	c.metrics.CacheMiss(c.graph, query)
	logger.Debug("cache miss", "graph", c.graph, "query", query, "key", key)

	var (
		resp *domain.Response
		err  error
	)
	if c.coalesce {
		// The shared request outlives a cancelled caller; each caller
		// still stops waiting on its own context.
		flight := c.flight.DoChan(query+"|"+key, func() (any, error) {
			return fn(context.WithoutCancel(ctx))
		})
		select {
		case r := <-flight:
			err = r.Err
			if err == nil {
				resp = r.Val.(*domain.Response)
			}
		case <-ctx.Done():
			err = ctx.Err()
		}
	} else {
		resp, err = fn(ctx)
	}

	if err != nil {
		c.metrics.FetchFailed(c.graph, query)
		logger.Warn("fetch failed", "graph", c.graph, "query", query, "key", key, "err", err)
		return nil, err
	}
	if resp == nil {
		resp = &domain.Response{}
	}
	return resp, nil
}

func (c *Cache) mergeLocked(resp *domain.Response) {
	for _, n := range domain.Flatten(resp.Nodes) {
		c.mergeNodeLocked(n)
	}
	if resp.Path != nil {
		for _, n := range domain.Flatten(resp.Path.Chains) {
			c.mergeNodeLocked(n)
		}
		for _, e := range resp.Path.Edges {
			c.edges[e.Data.ID] = e
		}
	}
	for _, e := range resp.Edges {
		c.edges[e.Data.ID] = e
	}
	for _, e := range resp.TopEdges {
		c.edges[e.Data.ID] = e
	}
}

// mergeNodeLocked keeps an existing definition but adopts embedded
// neighbor lists and paths it was missing
func (c *Cache) mergeNodeLocked(n domain.Node) {
	if n.Data.ID == "" {
		return
	}
	existing, ok := c.nodes[n.Data.ID]
	if !ok {
		if n.Group == "" {
			n.Group = domain.GroupNodes
		}
		c.nodes[n.Data.ID] = n
		return
	}
	changed := false
	if existing.Data.Callers == nil && n.Data.Callers != nil {
		existing.Data.Callers = n.Data.Callers
		changed = true
	}
	if existing.Data.Callees == nil && n.Data.Callees != nil {
		existing.Data.Callees = n.Data.Callees
		changed = true
	}
	if existing.Data.Path == nil && n.Data.Path != nil {
		existing.Data.Path = n.Data.Path
		changed = true
	}
	if changed {
		c.nodes[n.Data.ID] = existing
	}
}

// learnNeighborsLocked records the neighbor list of id from a full
// neighbor response when the node had none embedded
func (c *Cache) learnNeighborsLocked(id string, rel domain.Relation, resp *domain.Response) {
	node, ok := c.nodes[id]
	if !ok || node.HasNeighborList(rel) {
		return
	}

	chains := make([]domain.NodeChain, 0)
	for _, chain := range resp.Nodes {
		head, ok := chain.Head()
		if !ok || head.Data.ID == id {
			continue
		}
		if _, ok := c.edges[domain.NeighborEdgeID(id, rel, head.Data.ID)]; ok {
			chains = append(chains, chain)
		}
	}

	if rel == domain.Callers {
		node.Data.Callers = chains
	} else {
		node.Data.Callees = chains
	}
	c.nodes[id] = node
}

// neighborCompleteLocked reports whether neighborID is embedded in node's
// list for rel and both the neighbor and the joining edge are cached
func (c *Cache) neighborCompleteLocked(node domain.Node, rel domain.Relation, neighborID string) bool {
	if !slices.Contains(neighborIDs(node, rel), neighborID) {
		return false
	}
	if _, ok := c.nodes[neighborID]; !ok {
		return false
	}
	_, ok := c.edges[domain.NeighborEdgeID(node.Data.ID, rel, neighborID)]
	return ok
}

func neighborIDs(node domain.Node, rel domain.Relation) []string {
	chains := node.Neighbors(rel)
	ids := make([]string, 0, len(chains))
	for _, chain := range chains {
		if head, ok := chain.Head(); ok {
			ids = append(ids, head.Data.ID)
		}
	}
	return ids
}

// chainLocked walks the parent pointers of id, stopping at a missing
// ancestor or a repeated id
func (c *Cache) chainLocked(id string) domain.NodeChain {
	var chain domain.NodeChain
	seen := make(map[string]struct{})
	for id != "" {
		if _, ok := seen[id]; ok {
			break
		}
		seen[id] = struct{}{}
		n, ok := c.nodes[id]
		if !ok {
			break
		}
		chain = append(chain, n)
		id = n.Data.Parent
	}
	return chain
}

func (c *Cache) nodeAnswerLocked(id string, withEntrypoint bool) domain.Elements {
	elems := domain.Elements{Nodes: c.chainLocked(id)}
	if withEntrypoint {
		if path, ok := c.entrypoints[id]; ok {
			elems = elems.Merge(c.currentLocked(path.Elements()))
		}
	}
	return elems.Deduplicated()
}

func (c *Cache) neighborAnswerLocked(id string, rel domain.Relation, neighbors []string) domain.Elements {
	var elems domain.Elements
	for _, nid := range neighbors {
		elems.Nodes = append(elems.Nodes, c.chainLocked(nid)...)
		if e, ok := c.edges[domain.NeighborEdgeID(id, rel, nid)]; ok {
			elems.Edges = append(elems.Edges, e)
		}
	}
	return elems.Deduplicated()
}

func (c *Cache) edgeAnswerLocked(edgeID, source, target string, withNodes bool) domain.Elements {
	elems := domain.Elements{Edges: []domain.Edge{c.edges[edgeID]}}
	if withNodes {
		elems.Nodes = append(c.chainLocked(source), c.chainLocked(target)...)
	}
	return elems.Deduplicated()
}

func (c *Cache) topEdgesAnswerLocked(n int) domain.Elements {
	ids := c.topEdges
	if n > 0 && n < len(ids) {
		ids = ids[:n]
	}
	var elems domain.Elements
	for _, id := range ids {
		e, ok := c.edges[id]
		if !ok {
			continue
		}
		elems.Edges = append(elems.Edges, e)
		elems.Nodes = append(elems.Nodes, c.chainLocked(e.Data.Source)...)
		elems.Nodes = append(elems.Nodes, c.chainLocked(e.Data.Target)...)
	}
	return elems.Deduplicated()
}

// currentLocked replaces every element with its cached definition
func (c *Cache) currentLocked(elems domain.Elements) domain.Elements {
	var out domain.Elements
	for _, n := range domain.Deduplicate(elems.Nodes) {
		if cached, ok := c.nodes[n.Data.ID]; ok {
			out.Nodes = append(out.Nodes, cached)
		}
	}
	for _, e := range domain.Deduplicate(elems.Edges) {
		if cached, ok := c.edges[e.Data.ID]; ok {
			out.Edges = append(out.Edges, cached)
		}
	}
	return out
}
