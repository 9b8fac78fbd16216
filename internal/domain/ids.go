package domain

import (
	"errors"
	"fmt"
	"strings"
)

// EdgeSeparator joins the endpoint ids of an edge id
const EdgeSeparator = "->"

// ErrInvalidEdgeID is returned when an edge id has no separator or empty endpoints
var ErrInvalidEdgeID = errors.New("invalid edge ID")

// Relation selects the direction of a neighbor query
type Relation string

const (
	Callers Relation = "callers"
	Callees Relation = "callees"
)

// String returns the relation name used in URLs
func (r Relation) String() string {
	return string(r)
}

// ParseRelation converts a string into a Relation
func ParseRelation(s string) (Relation, error) {
	switch Relation(strings.ToLower(strings.TrimSpace(s))) {
	case Callers:
		return Callers, nil
	case Callees:
		return Callees, nil
	default:
		return "", fmt.Errorf("unknown relation %q (expected callers or callees)", s)
	}
}

// EdgeID derives the id of the edge source->target
func EdgeID(source, target string) string {
	return source + EdgeSeparator + target
}

// ParseEdgeID splits an edge id into its endpoint ids.
// The first separator splits the id.
func ParseEdgeID(id string) (source, target string, err error) {
	source, target, ok := strings.Cut(id, EdgeSeparator)
	if !ok || source == "" || target == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidEdgeID, id)
	}
	return source, target, nil
}

// NeighborEdgeID derives the id of the edge joining nodeID and one of its neighbors.
// A caller points at the node, the node points at a callee.
func NeighborEdgeID(nodeID string, rel Relation, neighborID string) string {
	if rel == Callers {
		return EdgeID(neighborID, nodeID)
	}
	return EdgeID(nodeID, neighborID)
}
