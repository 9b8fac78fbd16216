package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TreeNode represents a package, class or method in the method tree
type TreeNode struct {
	Name       string
	ID         string // method id; empty for packages and classes
	Path       string // dotted path of the enclosing classes
	Children   []*TreeNode
	IsExpanded bool
	Parent     *TreeNode
}

// IsMethod reports whether the node is a method leaf
func (n *TreeNode) IsMethod() bool {
	return n.ID != ""
}

// Flatten returns all visible nodes in the tree (for list rendering)
func (n *TreeNode) Flatten() []*TreeNode {
	var result []*TreeNode
	n.flattenRecursive(&result)
	return result
}

func (n *TreeNode) flattenRecursive(result *[]*TreeNode) {
	*result = append(*result, n)
	if n.IsExpanded {
		for _, child := range n.Children {
			child.flattenRecursive(result)
		}
	}
}

// Depth returns the depth of this node in the tree
func (n *TreeNode) Depth() int {
	depth := 0
	current := n.Parent
	for current != nil {
		depth++
		current = current.Parent
	}
	return depth
}

// Toggle expands or collapses the node
func (n *TreeNode) Toggle() {
	n.IsExpanded = !n.IsExpanded
}

// Expand sets the node as expanded
func (n *TreeNode) Expand() {
	n.IsExpanded = true
}

// Collapse sets the node as collapsed
func (n *TreeNode) Collapse() {
	n.IsExpanded = false
}

// Methods returns every method below the node in depth-first order
func (n *TreeNode) Methods(graph string) []MethodEntry {
	var entries []MethodEntry
	var walk func(*TreeNode)
	walk = func(t *TreeNode) {
		if t.IsMethod() {
			entries = append(entries, MethodEntry{Graph: graph, ID: t.ID, Name: t.Name, Class: t.Path})
			return
		}
		for _, c := range t.Children {
			walk(c)
		}
	}
	walk(n)
	return entries
}

// ParseMethodTree decodes the nested tree object returned by the service.
// Objects are packages or classes, string or number values are method ids.
func ParseMethodTree(data []byte) (*TreeNode, error) {
	root := &TreeNode{Name: "root", IsExpanded: true}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode method tree: %w", err)
	}
	if err := fillTree(root, raw, nil); err != nil {
		return nil, err
	}
	return root, nil
}

func fillTree(parent *TreeNode, raw map[string]json.RawMessage, segments []string) error {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		value := bytes.TrimSpace(raw[name])
		node := &TreeNode{Name: name, Parent: parent, Path: strings.Join(segments, ".")}

		switch {
		case len(value) > 0 && value[0] == '{':
			var children map[string]json.RawMessage
			if err := json.Unmarshal(value, &children); err != nil {
				return fmt.Errorf("failed to decode tree node %q: %w", name, err)
			}
			if err := fillTree(node, children, append(slices.Clone(segments), name)); err != nil {
				return err
			}
		case len(value) > 0 && value[0] == '"':
			if err := json.Unmarshal(value, &node.ID); err != nil {
				return fmt.Errorf("failed to decode method id %q: %w", name, err)
			}
		default:
			num, err := strconv.ParseFloat(string(value), 64)
			if err != nil {
				return fmt.Errorf("unexpected value for tree node %q: %s", name, value)
			}
			node.ID = strconv.FormatFloat(num, 'f', -1, 64)
		}

		parent.Children = append(parent.Children, node)
	}
	return nil
}
