package explorer

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"callscope/internal/domain"
	"callscope/internal/ports"
)

// EventKind identifies what changed in a view
type EventKind int

const (
	EventElementsChanged EventKind = iota
	EventStylesChanged
	EventSelectionChanged
)

// Event is delivered to view subscribers after a change
type Event struct {
	Kind EventKind
	View *View
}

// Selection is the single selected element of a view: a node or an edge, never both
type Selection struct {
	NodeID string
	EdgeID string
}

// IsEmpty reports whether nothing is selected
func (s Selection) IsEmpty() bool {
	return s.NodeID == "" && s.EdgeID == ""
}

// Snapshot is the visible content of a view
type Snapshot struct {
	Nodes     []domain.Node // shown nodes; Parent is the parent on the surface
	Edges     []domain.Edge // shown call edges
	MetaEdges []domain.Edge // edges standing in for calls into collapsed groups
	Styles    map[string]domain.EdgeStyle
}

type idSet map[string]struct{}

func (s idSet) add(id string) {
	s[id] = struct{}{}
}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// View projects part of a graph's cache onto a surface. Elements added to
// a view start hidden; the Show operations move them inside, restoring
// their ancestors and the edges to already shown nodes.
type View struct {
	ID      uuid.UUID
	Title   string
	Created time.Time

	cache   *Cache
	surface ports.Surface
	colorer *DiffColorer

	mu sync.Mutex

	nodes map[string]domain.Node
	edges map[string]domain.Edge

	parentIDs map[string]string
	children  map[string]idSet
	incomers  map[string]idSet
	outgoers  map[string]idSet

	shownNodes  idSet
	shownEdges  idSet
	hiddenEdges idSet // edges hidden on request; not restored with their endpoints

	compoundShown  bool
	suppressed     []string // compound nodes that were shown when compounds were hidden
	heldMetaEdges  []domain.Edge
	metaEdges      map[string]domain.Edge
	collapsed      map[string][]string // group -> descendants hidden by its collapse
	collapsedUnder map[string]string   // hidden descendant -> collapsing group

	styles    map[string]domain.EdgeStyle
	selection Selection

	observers    map[int]func(Event)
	nextObserver int
}

// ViewOption configures a View
type ViewOption func(*View)

// WithCompoundNodesHidden creates the view with compound nodes suppressed
func WithCompoundNodesHidden() ViewOption {
	return func(v *View) {
		v.compoundShown = false
	}
}

// WithColorer replaces the default diff colorer
func WithColorer(c *DiffColorer) ViewOption {
	return func(v *View) {
		if c != nil {
			v.colorer = c
		}
	}
}

// NewView creates an empty view over cache drawing on surface
func NewView(title string, cache *Cache, surface ports.Surface, opts ...ViewOption) *View {
	if title == "" {
		title = "Query"
	}
	if surface == nil {
		surface = ports.NopSurface{}
	}
	v := &View{
		ID:             uuid.New(),
		Title:          title,
		Created:        time.Now(),
		cache:          cache,
		surface:        surface,
		colorer:        NewDiffColorer(),
		nodes:          make(map[string]domain.Node),
		edges:          make(map[string]domain.Edge),
		parentIDs:      make(map[string]string),
		children:       make(map[string]idSet),
		incomers:       make(map[string]idSet),
		outgoers:       make(map[string]idSet),
		shownNodes:     make(idSet),
		shownEdges:     make(idSet),
		hiddenEdges:    make(idSet),
		compoundShown:  true,
		metaEdges:      make(map[string]domain.Edge),
		collapsed:      make(map[string][]string),
		collapsedUnder: make(map[string]string),
		styles:         make(map[string]domain.EdgeStyle),
		observers:      make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Cache returns the cache the view draws from
func (v *View) Cache() *Cache {
	return v.cache
}

// Surface returns the rendering target of the view
func (v *View) Surface() ports.Surface {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.surface
}

// Subscribe registers fn for every change of the view and returns a
// function removing it
func (v *View) Subscribe(fn func(Event)) (unsubscribe func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextObserver
	v.nextObserver++
	v.observers[id] = fn
	return func() {
		v.mu.Lock()
		delete(v.observers, id)
		v.mu.Unlock()
	}
}

func (v *View) emit(kinds ...EventKind) {
	v.mu.Lock()
	observers := make([]func(Event), 0, len(v.observers))
	for _, id := range slices.Sorted(maps.Keys(v.observers)) {
		observers = append(observers, v.observers[id])
	}
	v.mu.Unlock()

	for _, kind := range kinds {
		for _, fn := range observers {
			fn(Event{Kind: kind, View: v})
		}
	}
}

// Add tracks elements in the view without showing them. Adding an
// element twice has no effect.
func (v *View) Add(elems domain.Elements) {
	v.mu.Lock()
	v.addLocked(elems)
	v.mu.Unlock()
}

func (v *View) addLocked(elems domain.Elements) {
	for _, n := range elems.Nodes {
		id := n.Data.ID
		if _, ok := v.nodes[id]; ok || id == "" {
			continue
		}
		v.nodes[id] = n
		if p := n.Data.Parent; p != "" {
			v.parentIDs[id] = p
			setAdd(v.children, p, id)
		}
	}
	for _, e := range elems.Edges {
		id := e.Data.ID
		if _, ok := v.edges[id]; ok || id == "" {
			continue
		}
		v.edges[id] = e
		setAdd(v.outgoers, e.Data.Source, id)
		setAdd(v.incomers, e.Data.Target, id)
	}
}

func setAdd(index map[string]idSet, key, id string) {
	s, ok := index[key]
	if !ok {
		s = make(idSet)
		index[key] = s
	}
	s.add(id)
}

// ShowNode moves a tracked node inside. Its ancestors are shown first.
// Collapsed ancestors are expanded when expand is set or the node is a
// method; otherwise the node stays represented by the collapsed group.
func (v *View) ShowNode(id string, expand bool) bool {
	v.mu.Lock()
	shown := v.showNodeLocked(id, expand)
	if shown {
		v.afterChangeLocked()
	}
	v.mu.Unlock()
	if shown {
		v.emit(EventElementsChanged, EventStylesChanged)
	}
	return shown
}

// HideNode removes a shown node, its shown descendants and every
// ancestor left without another shown child
func (v *View) HideNode(id string) bool {
	v.mu.Lock()
	hidden := v.hideNodeLocked(id)
	if hidden {
		v.afterChangeLocked()
	}
	v.mu.Unlock()
	if hidden {
		v.emit(EventElementsChanged, EventStylesChanged)
	}
	return hidden
}

// ShowEdge shows a tracked edge whose endpoints are both shown
func (v *View) ShowEdge(id string) bool {
	v.mu.Lock()
	delete(v.hiddenEdges, id)
	shown := v.showEdgeLocked(id)
	if shown {
		v.afterChangeLocked()
	}
	v.mu.Unlock()
	if shown {
		v.emit(EventElementsChanged, EventStylesChanged)
	}
	return shown
}

// HideEdge removes a shown edge; it stays hidden when its endpoints are re-shown
func (v *View) HideEdge(id string) bool {
	v.mu.Lock()
	if _, ok := v.edges[id]; !ok {
		v.mu.Unlock()
		return false
	}
	v.hiddenEdges.add(id)
	hidden := v.shownEdges.has(id)
	if hidden {
		delete(v.shownEdges, id)
		v.surface.Remove([]string{id})
		v.clearSelectionOfLocked([]string{id})
		v.afterChangeLocked()
	}
	v.mu.Unlock()
	if hidden {
		v.emit(EventElementsChanged, EventStylesChanged)
	}
	return hidden
}

// Collapse hides every shown descendant of a shown compound node and
// replaces their calls with meta-edges on the group
func (v *View) Collapse(id string) bool {
	v.mu.Lock()
	ok := v.collapseLocked(id)
	if ok {
		v.afterChangeLocked()
	}
	v.mu.Unlock()
	if ok {
		v.emit(EventElementsChanged, EventStylesChanged)
	}
	return ok
}

// Expand restores exactly the descendants hidden by collapsing id
func (v *View) Expand(id string) bool {
	v.mu.Lock()
	ok := v.expandLocked(id)
	if ok {
		v.afterChangeLocked()
	}
	v.mu.Unlock()
	if ok {
		v.emit(EventElementsChanged, EventStylesChanged)
	}
	return ok
}

// IsCollapsed reports whether id is a collapsed group
func (v *View) IsCollapsed(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.collapsed[id]
	return ok
}

// CompoundNodesShown reports whether compound nodes are drawn
func (v *View) CompoundNodesShown() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.compoundShown
}

// HideCompoundNodes detaches every shown method from its group, removes
// all compound nodes and holds the meta-edges drawn between them
func (v *View) HideCompoundNodes() {
	v.mu.Lock()
	if !v.compoundShown {
		v.mu.Unlock()
		return
	}
	v.compoundShown = false

	v.heldMetaEdges = slices.Collect(maps.Values(v.metaEdges))
	if len(v.metaEdges) > 0 {
		v.surface.Remove(slices.Sorted(maps.Keys(v.metaEdges)))
		clear(v.metaEdges)
	}

	v.suppressed = v.suppressed[:0]
	var compounds []string
	for _, id := range v.sortedShownLocked() {
		if v.nodes[id].IsLeaf() {
			if v.parentIDs[id] != "" {
				v.surface.Reparent(id, "")
			}
			continue
		}
		compounds = append(compounds, id)
	}
	v.suppressed = append(v.suppressed, compounds...)
	for _, id := range compounds {
		delete(v.shownNodes, id)
	}
	if len(compounds) > 0 {
		v.surface.Remove(compounds)
		v.clearSelectionOfLocked(compounds)
	}

	v.afterChangeLocked()
	v.mu.Unlock()
	v.emit(EventElementsChanged, EventStylesChanged)
}

// ShowCompoundNodes restores the compound nodes removed by
// HideCompoundNodes and the ancestors of every shown method, then the
// held meta-edges. Groups inside a collapsed group stay hidden.
func (v *View) ShowCompoundNodes() {
	v.mu.Lock()
	if v.compoundShown {
		v.mu.Unlock()
		return
	}
	v.compoundShown = true

	groups := v.occupiedGroupsLocked(v.suppressed)
	v.suppressed = nil
	slices.SortStableFunc(groups, func(a, b string) int {
		return len(v.ancestorsLocked(a)) - len(v.ancestorsLocked(b))
	})
	for _, id := range groups {
		v.showNodeLocked(id, false)
	}
	for _, id := range v.sortedShownLocked() {
		if v.nodes[id].IsLeaf() {
			v.showNodeLocked(id, true)
		}
	}

	var restore domain.Elements
	for _, e := range v.heldMetaEdges {
		if v.shownNodes.has(e.Data.Source) && v.shownNodes.has(e.Data.Target) {
			v.metaEdges[e.Data.ID] = e
			restore.Edges = append(restore.Edges, e)
		}
	}
	v.heldMetaEdges = nil
	if restore.Len() > 0 {
		v.surface.Restore(restore)
	}

	v.afterChangeLocked()
	v.mu.Unlock()
	v.emit(EventElementsChanged, EventStylesChanged)
}

// occupiedGroupsLocked keeps the groups that still hold a shown method or
// a collapsed group, so groups emptied while compounds were hidden stay out
func (v *View) occupiedGroupsLocked(groups []string) []string {
	occupied := idSet{}
	mark := func(id string) {
		for _, a := range v.ancestorsLocked(id) {
			occupied.add(a)
		}
	}
	for id := range v.shownNodes {
		if v.nodes[id].IsLeaf() {
			mark(id)
		}
	}
	for _, id := range groups {
		if _, ok := v.collapsed[id]; ok {
			occupied.add(id)
			mark(id)
		}
	}

	var kept []string
	for _, id := range groups {
		if occupied.has(id) {
			kept = append(kept, id)
		}
	}
	return kept
}

// SetCompoundNodesShown shows or hides compound nodes
func (v *View) SetCompoundNodesShown(shown bool) {
	if shown {
		v.ShowCompoundNodes()
	} else {
		v.HideCompoundNodes()
	}
}

// ShowMethod fetches a method when needed and shows it with its ancestors
// and, when requested, its path to an entrypoint
func (v *View) ShowMethod(ctx context.Context, id string, withEntrypoint bool) error {
	elems, err := v.cache.GetOrFetchNode(ctx, id, withEntrypoint)
	if err != nil {
		return err
	}
	v.showFetched(id, elems, false)
	return nil
}

// ShowNeighbor shows one caller or callee of a node and the call joining them
func (v *View) ShowNeighbor(ctx context.Context, id string, rel domain.Relation, neighborID string) error {
	elems, err := v.cache.GetOrFetchNeighbor(ctx, id, rel, neighborID)
	if err != nil {
		return err
	}
	v.showFetched(id, elems, false)
	return nil
}

// ShowAllNeighbors shows every caller or callee of a node. When every
// embedded neighbor is already tracked by the view they are shown
// directly; otherwise the whole set comes from the cache and the surface
// is laid out again.
func (v *View) ShowAllNeighbors(ctx context.Context, id string, rel domain.Relation) error {
	v.mu.Lock()
	local, ok := v.trackedNeighborsLocked(id, rel)
	v.mu.Unlock()
	if ok {
		v.showFetched(id, local, false)
		return nil
	}

	elems, err := v.cache.GetOrFetchAllNeighbors(ctx, id, rel)
	if err != nil {
		return err
	}
	v.showFetched(id, elems, true)
	return nil
}

// HideAllNeighbors hides every shown caller or callee of a node
func (v *View) HideAllNeighbors(id string, rel domain.Relation) bool {
	v.mu.Lock()
	index := v.outgoers
	if rel == domain.Callers {
		index = v.incomers
	}

	changed := false
	for _, eid := range slices.Sorted(maps.Keys(index[id])) {
		e := v.edges[eid]
		other := e.Data.Target
		if rel == domain.Callers {
			other = e.Data.Source
		}
		if other == id {
			continue
		}
		if v.hideNodeLocked(other) {
			changed = true
		}
	}
	if changed {
		v.afterChangeLocked()
	}
	v.mu.Unlock()
	if changed {
		v.emit(EventElementsChanged, EventStylesChanged)
	}
	return changed
}

// ShowEdgeByID fetches an edge with its endpoints when needed and shows them
func (v *View) ShowEdgeByID(ctx context.Context, edgeID string) error {
	elems, err := v.cache.GetOrFetchEdge(ctx, edgeID, true)
	if err != nil {
		return err
	}
	v.showFetched("", elems, false)
	return nil
}

// ShowTopEdges shows the n edges with the largest diff value
func (v *View) ShowTopEdges(ctx context.Context, n int) error {
	elems, err := v.cache.GetOrFetchTopEdges(ctx, n)
	if err != nil {
		return err
	}
	v.showFetched("", elems, true)
	return nil
}

// trackedNeighborsLocked returns the embedded neighbors of id with their
// edges when all of them are tracked by the view
func (v *View) trackedNeighborsLocked(id string, rel domain.Relation) (domain.Elements, bool) {
	node, ok := v.cache.Node(id)
	if !ok {
		node, ok = v.nodes[id]
	}
	if !ok || !node.HasNeighborList(rel) {
		return domain.Elements{}, false
	}

	var elems domain.Elements
	for _, nid := range neighborIDs(node, rel) {
		n, ok := v.nodes[nid]
		if !ok {
			return domain.Elements{}, false
		}
		e, ok := v.edges[domain.NeighborEdgeID(id, rel, nid)]
		if !ok {
			return domain.Elements{}, false
		}
		elems.Nodes = append(elems.Nodes, n)
		elems.Edges = append(elems.Edges, e)
	}
	return elems, true
}

// showFetched tracks elems and shows their methods and edges, plus focus
// when it names a node
func (v *View) showFetched(focus string, elems domain.Elements, relayout bool) {
	v.mu.Lock()
	v.addLocked(elems)

	if focus != "" {
		v.showNodeLocked(focus, true)
	}
	for _, n := range elems.Nodes {
		if n.IsLeaf() {
			v.showNodeLocked(n.Data.ID, true)
		}
	}
	for _, e := range elems.Edges {
		delete(v.hiddenEdges, e.Data.ID)
		v.showEdgeLocked(e.Data.ID)
	}
	v.afterChangeLocked()
	if relayout {
		v.surface.Relayout()
	}
	v.mu.Unlock()
	v.emit(EventElementsChanged, EventStylesChanged)
}

// ancestorsLocked returns the tracked ancestors of id, closest first
func (v *View) ancestorsLocked(id string) []string {
	var ancestors []string
	seen := idSet{id: {}}
	for p := v.parentIDs[id]; p != ""; p = v.parentIDs[p] {
		if seen.has(p) {
			break
		}
		if _, ok := v.nodes[p]; !ok {
			break
		}
		seen.add(p)
		ancestors = append(ancestors, p)
	}
	return ancestors
}

// descendantsLocked returns the tracked descendants of id, breadth first
func (v *View) descendantsLocked(id string) []string {
	var result []string
	seen := idSet{id: {}}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range slices.Sorted(maps.Keys(v.children[cur])) {
			if seen.has(child) {
				continue
			}
			seen.add(child)
			result = append(result, child)
			queue = append(queue, child)
		}
	}
	return result
}

func (v *View) showNodeLocked(id string, expand bool) bool {
	node, ok := v.nodes[id]
	if !ok {
		return false
	}
	if node.IsLeaf() {
		expand = true
	} else if !v.compoundShown {
		return false
	}

	path := []string{id}
	if v.compoundShown {
		ancestors := v.ancestorsLocked(id)
		slices.Reverse(ancestors)
		path = append(ancestors, id)
	}

	for i, nid := range path {
		if i > 0 {
			parent := path[i-1]
			if _, isCollapsed := v.collapsed[parent]; isCollapsed {
				if !expand {
					v.deferUnderLocked(parent, path[i:])
					return false
				}
				v.expandLocked(parent)
			}
		}
		v.restoreNodeLocked(nid)
	}
	return true
}

// deferUnderLocked records ids as hidden by the collapse of group so
// that expanding it shows them
func (v *View) deferUnderLocked(group string, ids []string) {
	for _, id := range ids {
		if v.collapsedUnder[id] == group || v.shownNodes.has(id) {
			continue
		}
		v.collapsedUnder[id] = group
		v.collapsed[group] = append(v.collapsed[group], id)
	}
}

// restoreNodeLocked puts a node inside with the edges to shown nodes and
// attaches it to its original parent when that parent is shown
func (v *View) restoreNodeLocked(id string) {
	node := v.nodes[id]
	parent := v.parentIDs[id]
	attach := v.compoundShown && parent != "" && v.shownNodes.has(parent)

	if !v.shownNodes.has(id) {
		v.shownNodes.add(id)
		delete(v.collapsedUnder, id)

		def := node
		def.Data.Parent = ""
		elems := domain.Elements{Nodes: []domain.Node{def}}
		for _, eid := range v.incidentEdgesLocked(id) {
			if v.shownEdges.has(eid) || v.hiddenEdges.has(eid) {
				continue
			}
			e := v.edges[eid]
			if v.shownNodes.has(e.Data.Source) && v.shownNodes.has(e.Data.Target) {
				v.shownEdges.add(eid)
				elems.Edges = append(elems.Edges, e)
			}
		}
		v.surface.Restore(elems)
	}

	if attach {
		v.surface.Reparent(id, parent)
	}
}

func (v *View) showEdgeLocked(id string) bool {
	e, ok := v.edges[id]
	if !ok || v.shownEdges.has(id) || v.hiddenEdges.has(id) {
		return false
	}
	if !v.shownNodes.has(e.Data.Source) || !v.shownNodes.has(e.Data.Target) {
		return false
	}
	v.shownEdges.add(id)
	v.surface.Restore(domain.Elements{Edges: []domain.Edge{e}})
	return true
}

func (v *View) incidentEdgesLocked(id string) []string {
	ids := slices.Collect(maps.Keys(v.incomers[id]))
	for eid := range v.outgoers[id] {
		if !v.incomers[id].has(eid) {
			ids = append(ids, eid)
		}
	}
	slices.Sort(ids)
	return ids
}

func (v *View) hideNodeLocked(id string) bool {
	if !v.shownNodes.has(id) {
		return false
	}

	set := []string{id}
	for _, d := range v.descendantsLocked(id) {
		if v.shownNodes.has(d) {
			set = append(set, d)
		}
	}

	child := id
	seen := idSet{id: {}}
	for p := v.parentIDs[child]; p != "" && !seen.has(p); p = v.parentIDs[p] {
		seen.add(p)
		if !v.shownNodes.has(p) || v.shownChildrenLocked(p) != 1 {
			break
		}
		set = append(set, p)
	}

	v.removeNodesLocked(set)
	return true
}

func (v *View) shownChildrenLocked(id string) int {
	count := 0
	for child := range v.children[id] {
		if v.shownNodes.has(child) {
			count++
		}
	}
	return count
}

// removeNodesLocked takes nodes off the surface with every shown edge touching them
func (v *View) removeNodesLocked(ids []string) {
	var removed []string
	for _, id := range ids {
		for _, eid := range v.incidentEdgesLocked(id) {
			if v.shownEdges.has(eid) {
				delete(v.shownEdges, eid)
				removed = append(removed, eid)
			}
		}
	}
	for _, id := range ids {
		delete(v.shownNodes, id)
		removed = append(removed, id)
	}
	v.surface.Remove(removed)
	v.clearSelectionOfLocked(removed)
}

func (v *View) collapseLocked(id string) bool {
	node, ok := v.nodes[id]
	if !ok || node.IsLeaf() || !v.compoundShown || !v.shownNodes.has(id) {
		return false
	}
	if _, ok := v.collapsed[id]; ok {
		return false
	}

	var hidden []string
	for _, d := range v.descendantsLocked(id) {
		if v.shownNodes.has(d) {
			hidden = append(hidden, d)
		}
	}
	v.collapsed[id] = hidden
	for _, d := range hidden {
		v.collapsedUnder[d] = id
	}
	if len(hidden) > 0 {
		v.removeNodesLocked(hidden)
	}
	return true
}

func (v *View) expandLocked(id string) bool {
	hidden, ok := v.collapsed[id]
	if !ok {
		return false
	}
	delete(v.collapsed, id)

	for _, d := range hidden {
		if v.collapsedUnder[d] != id {
			continue
		}
		delete(v.collapsedUnder, d)
		v.restoreNodeLocked(d)
	}
	return true
}

// representativeLocked returns the shown node standing for id: id itself
// or the collapsed group hiding it. Empty when neither is shown.
func (v *View) representativeLocked(id string) string {
	seen := make(idSet)
	for id != "" && !seen.has(id) {
		if v.shownNodes.has(id) {
			return id
		}
		seen.add(id)
		id = v.collapsedUnder[id]
	}
	return ""
}

// refreshMetaEdgesLocked derives meta-edges for every tracked call with
// an endpoint inside a collapsed group and syncs them to the surface
func (v *View) refreshMetaEdgesLocked() {
	if !v.compoundShown {
		return
	}

	want := make(map[string]domain.Edge)
	if len(v.collapsedUnder) > 0 {
		for _, e := range v.edges {
			source := v.representativeLocked(e.Data.Source)
			target := v.representativeLocked(e.Data.Target)
			if source == "" || target == "" || source == target {
				continue
			}
			if source == e.Data.Source && target == e.Data.Target {
				continue
			}
			meta := domain.NewEdge(source, target)
			want[meta.Data.ID] = meta
		}
	}

	var stale []string
	for id := range v.metaEdges {
		if _, ok := want[id]; !ok {
			stale = append(stale, id)
			delete(v.metaEdges, id)
		}
	}
	if len(stale) > 0 {
		slices.Sort(stale)
		v.surface.Remove(stale)
	}

	var fresh domain.Elements
	for _, id := range slices.Sorted(maps.Keys(want)) {
		if _, ok := v.metaEdges[id]; ok {
			continue
		}
		v.metaEdges[id] = want[id]
		fresh.Edges = append(fresh.Edges, want[id])
	}
	if fresh.Len() > 0 {
		v.surface.Restore(fresh)
	}
}

// afterChangeLocked refreshes meta-edges and recolours the shown edges
func (v *View) afterChangeLocked() {
	v.refreshMetaEdgesLocked()

	edges := make([]domain.Edge, 0, len(v.shownEdges))
	for _, id := range slices.Sorted(maps.Keys(v.shownEdges)) {
		edges = append(edges, v.edges[id])
	}
	v.styles = v.colorer.Styles(edges)
	v.surface.SetEdgeStyles(maps.Clone(v.styles))
}

func (v *View) clearSelectionOfLocked(ids []string) {
	for _, id := range ids {
		if v.selection.NodeID == id || v.selection.EdgeID == id {
			v.selection = Selection{}
			return
		}
	}
}

func (v *View) sortedShownLocked() []string {
	return slices.Sorted(maps.Keys(v.shownNodes))
}

// SelectNode selects a shown node, replacing any selected edge
func (v *View) SelectNode(id string) bool {
	return v.selectElement(Selection{NodeID: id})
}

// SelectEdge selects a shown edge, replacing any selected node
func (v *View) SelectEdge(id string) bool {
	return v.selectElement(Selection{EdgeID: id})
}

func (v *View) selectElement(sel Selection) bool {
	v.mu.Lock()
	ok := (sel.NodeID != "" && v.shownNodes.has(sel.NodeID)) ||
		(sel.EdgeID != "" && (v.shownEdges.has(sel.EdgeID) || v.metaEdges[sel.EdgeID].Data.ID != ""))
	if ok {
		v.selection = sel
	}
	v.mu.Unlock()
	if ok {
		v.emit(EventSelectionChanged)
	}
	return ok
}

// Unselect clears the selection
func (v *View) Unselect() {
	v.mu.Lock()
	changed := !v.selection.IsEmpty()
	v.selection = Selection{}
	v.mu.Unlock()
	if changed {
		v.emit(EventSelectionChanged)
	}
}

// Selection returns the selected element
func (v *View) Selection() Selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selection
}

// IsTracked reports whether the view knows the node or edge id
func (v *View) IsTracked(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, node := v.nodes[id]
	_, edge := v.edges[id]
	return node || edge
}

// IsNodeShown reports whether the node is inside
func (v *View) IsNodeShown(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.shownNodes.has(id)
}

// IsEdgeShown reports whether the call edge or meta-edge is inside
func (v *View) IsEdgeShown(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, meta := v.metaEdges[id]
	return v.shownEdges.has(id) || meta
}

// EdgeStyle returns the diff style of a shown relevant edge
func (v *View) EdgeStyle(id string) (domain.EdgeStyle, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s, ok := v.styles[id]
	return s, ok
}

// Snapshot returns the visible content ordered by id
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{Styles: maps.Clone(v.styles)}
	for _, id := range v.sortedShownLocked() {
		n := v.nodes[id]
		parent := v.parentIDs[id]
		if !v.compoundShown || !v.shownNodes.has(parent) {
			parent = ""
		}
		n.Data.Parent = parent
		snap.Nodes = append(snap.Nodes, n)
	}
	for _, id := range slices.Sorted(maps.Keys(v.shownEdges)) {
		snap.Edges = append(snap.Edges, v.edges[id])
	}
	for _, id := range slices.Sorted(maps.Keys(v.metaEdges)) {
		snap.MetaEdges = append(snap.MetaEdges, v.metaEdges[id])
	}
	return snap
}

// Destroy releases the surface and drops all subscribers
func (v *View) Destroy() {
	v.mu.Lock()
	clear(v.observers)
	surface := v.surface
	v.surface = ports.NopSurface{}
	v.mu.Unlock()
	surface.Destroy()
}
