package domain

// Element groups as they appear on the wire
const (
	GroupNodes = "nodes"
	GroupEdges = "edges"
)

// NodeData holds the attributes of a method (leaf) or compound node
type NodeData struct {
	ID     string `json:"id"`
	Label  string `json:"label,omitempty"`
	Parent string `json:"parent,omitempty"`
	Level  int    `json:"level,omitempty"` // 0 for methods, >0 for groups

	// Method attributes; empty on compound nodes
	Name         string   `json:"name,omitempty"`
	ParentClass  string   `json:"parent_class,omitempty"`
	Parameters   []string `json:"parameters,omitempty"`
	ReturnType   string   `json:"return_type,omitempty"`
	Display      string   `json:"display,omitempty"`
	Flags        string   `json:"flags,omitempty"`
	IsEntrypoint bool     `json:"is_entrypoint,omitempty"`

	// Eagerly supplied neighbors, each as a chain (neighbor first, then its ancestors)
	Callers []NodeChain `json:"callers,omitempty"`
	Callees []NodeChain `json:"callees,omitempty"`

	// Node ids from an entrypoint down to this node
	Path []string `json:"path,omitempty"`
}

// Node is a node element definition
type Node struct {
	Group string   `json:"group,omitempty"`
	Data  NodeData `json:"data"`
}

// NewNode creates a node definition with the nodes group set
func NewNode(data NodeData) Node {
	return Node{Group: GroupNodes, Data: data}
}

// ElementID returns the node id
func (n Node) ElementID() string {
	return n.Data.ID
}

// IsLeaf reports whether the node is a method rather than a group
func (n Node) IsLeaf() bool {
	return n.Data.Level == 0
}

// Neighbors returns the embedded neighbor chains for a relation
func (n Node) Neighbors(rel Relation) []NodeChain {
	switch rel {
	case Callers:
		return n.Data.Callers
	case Callees:
		return n.Data.Callees
	default:
		return nil
	}
}

// HasNeighborList reports whether the backend embedded a neighbor list for rel.
// An embedded empty list still counts: the node is known to have no neighbors.
func (n Node) HasNeighborList(rel Relation) bool {
	switch rel {
	case Callers:
		return n.Data.Callers != nil
	case Callees:
		return n.Data.Callees != nil
	default:
		return false
	}
}

// NodeChain is a node followed by its ancestors, closest first
type NodeChain []Node

// Head returns the first node of the chain
func (c NodeChain) Head() (Node, bool) {
	if len(c) == 0 {
		return Node{}, false
	}
	return c[0], true
}

// EdgeData holds the attributes of a call edge
type EdgeData struct {
	ID       string   `json:"id"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Value    *float64 `json:"value,omitempty"`
	Relevant *bool    `json:"relevant,omitempty"`
}

// Edge is an edge element definition
type Edge struct {
	Group string   `json:"group,omitempty"`
	Data  EdgeData `json:"data"`
}

// NewEdge creates an edge between two nodes with its id derived from the endpoints
func NewEdge(source, target string) Edge {
	return Edge{
		Group: GroupEdges,
		Data: EdgeData{
			ID:     EdgeID(source, target),
			Source: source,
			Target: target,
		},
	}
}

// WithValue returns a copy of the edge carrying a diff value and relevance flag
func (e Edge) WithValue(value float64, relevant bool) Edge {
	e.Data.Value = &value
	e.Data.Relevant = &relevant
	return e
}

// ElementID returns the edge id
func (e Edge) ElementID() string {
	return e.Data.ID
}

// DiffValue returns the diff magnitude, zero when absent
func (e Edge) DiffValue() float64 {
	if e.Data.Value == nil {
		return 0
	}
	return *e.Data.Value
}

// IsRelevant reports whether the edge takes part in diff colouring.
// Edges without a relevance flag count when they carry a positive value.
func (e Edge) IsRelevant() bool {
	if e.Data.Value == nil {
		return false
	}
	if e.Data.Relevant != nil {
		return *e.Data.Relevant
	}
	return *e.Data.Value > 0
}

// Elements is a set of node and edge definitions
type Elements struct {
	Nodes []Node
	Edges []Edge
}

// Len returns the number of elements
func (e Elements) Len() int {
	return len(e.Nodes) + len(e.Edges)
}

// Deduplicated returns a copy without repeated ids, first occurrence kept
func (e Elements) Deduplicated() Elements {
	return Elements{
		Nodes: Deduplicate(e.Nodes),
		Edges: Deduplicate(e.Edges),
	}
}

// Merge appends other to e
func (e Elements) Merge(other Elements) Elements {
	return Elements{
		Nodes: append(append([]Node(nil), e.Nodes...), other.Nodes...),
		Edges: append(append([]Edge(nil), e.Edges...), other.Edges...),
	}
}

// NodeIDs returns the ids of all nodes in order
func (e Elements) NodeIDs() []string {
	ids := make([]string, 0, len(e.Nodes))
	for _, n := range e.Nodes {
		ids = append(ids, n.Data.ID)
	}
	return ids
}

// EdgeIDs returns the ids of all edges in order
func (e Elements) EdgeIDs() []string {
	ids := make([]string, 0, len(e.Edges))
	for _, ed := range e.Edges {
		ids = append(ids, ed.Data.ID)
	}
	return ids
}

// Flatten returns the nodes of all chains in order
func Flatten(chains []NodeChain) []Node {
	var nodes []Node
	for _, c := range chains {
		nodes = append(nodes, c...)
	}
	return nodes
}
