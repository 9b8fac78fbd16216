package views

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"callscope/internal/adapters/tui/styles"
	"callscope/internal/domain"
	"callscope/internal/ports"
)

// ItemKind identifies a rendered canvas line
type ItemKind int

const (
	ItemMethod ItemKind = iota
	ItemGroup
	ItemEdge
	ItemMetaEdge
)

// CanvasItem is one line of a rendered canvas
type CanvasItem struct {
	ID    string
	Kind  ItemKind
	Depth int
	Label string
	Node  domain.Node
	Edge  domain.Edge
	Style *domain.EdgeStyle
}

// IsNode reports whether the item is a method or a group
func (i CanvasItem) IsNode() bool {
	return i.Kind == ItemMethod || i.Kind == ItemGroup
}

// Canvas is a terminal surface for a view. It mirrors the elements the
// view shows and lays them out as an indented list of nodes followed by
// the calls between them.
type Canvas struct {
	mu        sync.Mutex
	title     string
	nodes     map[string]domain.Node
	edges     map[string]domain.Edge
	parents   map[string]string
	styles    map[string]domain.EdgeStyle
	layouts   int
	destroyed bool
}

var _ ports.Surface = (*Canvas)(nil)

// NewCanvas creates an empty canvas
func NewCanvas(title string) *Canvas {
	return &Canvas{
		title:   title,
		nodes:   make(map[string]domain.Node),
		edges:   make(map[string]domain.Edge),
		parents: make(map[string]string),
		styles:  make(map[string]domain.EdgeStyle),
	}
}

// NewCanvasSurface is a surface factory for explorer graphs
func NewCanvasSurface(title string) ports.Surface {
	return NewCanvas(title)
}

// Title returns the title of the view drawn on the canvas
func (c *Canvas) Title() string {
	return c.title
}

// Restore adds elements to the canvas
func (c *Canvas) Restore(elements domain.Elements) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range elements.Nodes {
		c.nodes[n.Data.ID] = n
		c.parents[n.Data.ID] = n.Data.Parent
	}
	for _, e := range elements.Edges {
		c.edges[e.Data.ID] = e
	}
}

// Remove drops nodes and edges. Edges lose a removed endpoint with it and
// children of a removed node move to the top level.
func (c *Canvas) Remove(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.nodes, id)
		delete(c.parents, id)
		delete(c.edges, id)
		delete(c.styles, id)
	}
	for id, parent := range c.parents {
		if _, ok := c.nodes[parent]; parent != "" && !ok {
			c.parents[id] = ""
		}
	}
	for id, e := range c.edges {
		_, source := c.nodes[e.Data.Source]
		_, target := c.nodes[e.Data.Target]
		if !source || !target {
			delete(c.edges, id)
			delete(c.styles, id)
		}
	}
}

// Reparent moves a node under parentID, or to the top level when empty
func (c *Canvas) Reparent(nodeID, parentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.nodes[nodeID]; ok {
		c.parents[nodeID] = parentID
	}
}

// SetEdgeStyles replaces the diff styles of the edges
func (c *Canvas) SetEdgeStyles(styles map[string]domain.EdgeStyle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.styles = maps.Clone(styles)
	if c.styles == nil {
		c.styles = make(map[string]domain.EdgeStyle)
	}
}

// Relayout counts layout requests
func (c *Canvas) Relayout() {
	c.mu.Lock()
	c.layouts++
	c.mu.Unlock()
}

// Layouts returns how many times a layout was requested
func (c *Canvas) Layouts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layouts
}

// Destroy clears the canvas
func (c *Canvas) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.nodes)
	clear(c.edges)
	clear(c.parents)
	clear(c.styles)
	c.destroyed = true
}

// Destroyed reports whether the view owning the canvas was destroyed
func (c *Canvas) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// Items lays out the canvas: nodes depth-first under their parents, then edges, each ordered by id
func (c *Canvas) Items() []CanvasItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	children := make(map[string][]string)
	for _, id := range slices.Sorted(maps.Keys(c.nodes)) {
		parent := c.parents[id]
		if _, ok := c.nodes[parent]; !ok {
			parent = ""
		}
		children[parent] = append(children[parent], id)
	}

	var items []CanvasItem
	seen := make(map[string]bool)
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		for _, id := range children[parent] {
			if seen[id] {
				continue
			}
			seen[id] = true
			n := c.nodes[id]
			kind := ItemMethod
			if !n.IsLeaf() {
				kind = ItemGroup
			}
			items = append(items, CanvasItem{ID: id, Kind: kind, Depth: depth, Label: nodeLabel(n), Node: n})
			walk(id, depth+1)
		}
	}
	walk("", 0)

	for _, id := range slices.Sorted(maps.Keys(c.edges)) {
		e := c.edges[id]
		item := CanvasItem{ID: id, Kind: ItemEdge, Label: c.edgeLabel(e), Edge: e}
		if c.isGroup(e.Data.Source) || c.isGroup(e.Data.Target) {
			item.Kind = ItemMetaEdge
		}
		if s, ok := c.styles[id]; ok {
			item.Style = &s
		}
		items = append(items, item)
	}
	return items
}

func (c *Canvas) isGroup(id string) bool {
	n, ok := c.nodes[id]
	return ok && !n.IsLeaf()
}

func (c *Canvas) edgeLabel(e domain.Edge) string {
	label := func(id string) string {
		if n, ok := c.nodes[id]; ok {
			return nodeLabel(n)
		}
		return id
	}
	text := fmt.Sprintf("%s → %s", label(e.Data.Source), label(e.Data.Target))
	if e.Data.Value != nil {
		text += fmt.Sprintf("  %.3g", e.DiffValue())
	}
	return text
}

func nodeLabel(n domain.Node) string {
	switch {
	case n.Data.Label != "":
		return n.Data.Label
	case n.Data.Name != "":
		return n.Data.Name
	default:
		return n.Data.ID
	}
}

// RenderItems draws items with the cursor on the item at index cursor.
// Only the lines in [start, end) are drawn.
func RenderItems(items []CanvasItem, cursor, start, end int) string {
	var b strings.Builder
	end = min(end, len(items))
	for i := max(start, 0); i < end; i++ {
		b.WriteString(renderItem(items[i], i == cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func renderItem(item CanvasItem, selected bool) string {
	indent := strings.Repeat("  ", item.Depth)

	var prefix, text string
	style := styles.NodeMethod
	switch item.Kind {
	case ItemGroup:
		prefix = "□ "
		text = item.Label
		style = styles.NodeGroup
	case ItemMethod:
		prefix = "● "
		text = item.Label
		if item.Node.Data.IsEntrypoint {
			style = styles.NodeEntrypoint
		}
	case ItemEdge:
		prefix = "→ "
		text = item.Label
		style = styles.EdgePlain
		if item.Style != nil {
			style = styles.EdgeColor(*item.Style)
		}
	case ItemMetaEdge:
		prefix = "⇢ "
		text = item.Label
		style = styles.EdgeMeta
	}

	if selected {
		return indent + styles.TreeBranch.Render(prefix) + styles.NodeSelected.Render(text)
	}
	return indent + styles.TreeBranch.Render(prefix) + style.Render(text)
}
