package application

import "callscope/internal/domain"

// Re-export domain types for use by adapters
type (
	Node        = domain.Node
	Edge        = domain.Edge
	Elements    = domain.Elements
	GraphInfo   = domain.GraphInfo
	TreeNode    = domain.TreeNode
	MethodEntry = domain.MethodEntry
	Relation    = domain.Relation
	EdgeStyle   = domain.EdgeStyle
)

const (
	Callers = domain.Callers
	Callees = domain.Callees
)

// ParseRelation converts a string into a Relation
func ParseRelation(s string) (Relation, error) {
	return domain.ParseRelation(s)
}

// ParseEdgeID splits an edge id into its endpoint ids
func ParseEdgeID(id string) (source, target string, err error) {
	return domain.ParseEdgeID(id)
}
