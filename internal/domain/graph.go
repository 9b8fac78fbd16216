package domain

import "time"

// GraphInfo describes a graph available on the service
type GraphInfo struct {
	Name       string `json:"name"`
	NodeCount  int    `json:"nodeCount"`
	EdgeCount  int    `json:"edgeCount"`
	OtherGraph string `json:"otherGraph,omitempty"` // graph of the last completed comparison
	Iterations int    `json:"iterations,omitempty"` // iterations of the last completed comparison
}

// HasDiff reports whether a comparison has been completed for the graph
func (g GraphInfo) HasDiff() bool {
	return g.OtherGraph != ""
}

// EntrypointPath connects a node back to an entrypoint of the call graph
type EntrypointPath struct {
	Chains []NodeChain `json:"nodes"`
	Edges  []Edge      `json:"edges"`
}

// Elements returns the path as a flat element set
func (p EntrypointPath) Elements() Elements {
	return Elements{
		Nodes: Flatten(p.Chains),
		Edges: append([]Edge(nil), p.Edges...),
	}
}

// Response is the payload of every element query
type Response struct {
	Nodes    []NodeChain     `json:"nodes"`
	Edges    []Edge          `json:"edges"`
	Path     *EntrypointPath `json:"path,omitempty"`
	TopEdges []Edge          `json:"topEdges,omitempty"`
}

// Elements returns all nodes and edges of the response, deduplicated
func (r *Response) Elements() Elements {
	if r == nil {
		return Elements{}
	}
	return Elements{
		Nodes: Flatten(r.Nodes),
		Edges: append(append([]Edge(nil), r.Edges...), r.TopEdges...),
	}.Deduplicated()
}

// Chain returns the response chain headed by id
func (r *Response) Chain(id string) (NodeChain, bool) {
	if r == nil {
		return nil, false
	}
	for _, c := range r.Nodes {
		if head, ok := c.Head(); ok && head.Data.ID == id {
			return c, true
		}
	}
	return nil, false
}

// EntrypointPathFor returns the entrypoint path of the requested node.
// A top-level path object wins; otherwise the path is rebuilt from the
// node's embedded id list and the response's chains and edges.
func (r *Response) EntrypointPathFor(id string) EntrypointPath {
	if r == nil {
		return EntrypointPath{}
	}
	if r.Path != nil {
		return *r.Path
	}

	head, ok := r.Chain(id)
	if !ok || len(head) == 0 {
		return EntrypointPath{}
	}

	edges := make(map[string]Edge, len(r.Edges))
	for _, e := range r.Edges {
		edges[e.Data.ID] = e
	}

	var path EntrypointPath
	ids := head[0].Data.Path
	for i, pid := range ids {
		if pid == id {
			continue
		}
		if c, ok := r.Chain(pid); ok {
			path.Chains = append(path.Chains, c)
		}
		if i+1 < len(ids) {
			if e, ok := edges[EdgeID(pid, ids[i+1])]; ok {
				path.Edges = append(path.Edges, e)
			}
		}
	}
	return path
}

// DiffStatus is the state of a comparison job
type DiffStatus string

const (
	DiffIdle      DiffStatus = "idle"
	DiffRunning   DiffStatus = "running"
	DiffSaving    DiffStatus = "saving"
	DiffSucceeded DiffStatus = "succeeded"
	DiffFailed    DiffStatus = "failed"
)

// DiffProgress is one event pushed by the comparison job
type DiffProgress struct {
	Iterations int
	Saving     bool
	Done       bool   // terminal event
	Message    string // terminal message
	Err        error  // set on a terminal failure
}

// EdgeStyle is the visual weight derived from an edge's diff value
type EdgeStyle struct {
	Color string  // hex colour, e.g. "#21918c"
	Width float64 // stroke width
}

// MethodEntry is a searchable method from the method tree
type MethodEntry struct {
	Graph string
	ID    string
	Name  string
	Class string // dotted class path, e.g. "java.util.ArrayList"
}

// QualifiedName returns Class.Name
func (m MethodEntry) QualifiedName() string {
	if m.Class == "" {
		return m.Name
	}
	return m.Class + "." + m.Name
}

// SyncStats holds statistics from an index rebuild
type SyncStats struct {
	MethodsAdded   int
	MethodsDeleted int
	Duration       time.Duration
}
