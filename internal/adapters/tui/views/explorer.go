package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"callscope/internal/adapters/tui/styles"
	"callscope/internal/application/commands"
	"callscope/internal/application/explorer"
	"callscope/internal/domain"
	"callscope/internal/logger"
)

// ExplorerKeyMap defines key bindings for the explorer view
type ExplorerKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Enter       key.Binding
	NewView     key.Binding
	Entrypoint  key.Binding
	Pane        key.Binding
	Callees     key.Binding
	Callers     key.Binding
	HideCallees key.Binding
	HideCallers key.Binding
	Hide        key.Binding
	Collapse    key.Binding
	Compound    key.Binding
	TopEdges    key.Binding
	PrevView    key.Binding
	NextView    key.Binding
	CloseView   key.Binding
	StartDiff   key.Binding
	CancelDiff  key.Binding
	Copy        key.Binding
	Search      key.Binding
	Help        key.Binding
	Back        key.Binding
	Quit        key.Binding
}

var ExplorerKeys = ExplorerKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "show"),
	),
	NewView: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "show in new view"),
	),
	Entrypoint: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "path from entrypoint"),
	),
	Pane: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch pane"),
	),
	Callees: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "callees"),
	),
	Callers: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "callers"),
	),
	HideCallees: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "hide callees"),
	),
	HideCallers: key.NewBinding(
		key.WithKeys("U"),
		key.WithHelp("U", "hide callers"),
	),
	Hide: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "hide"),
	),
	Collapse: key.NewBinding(
		key.WithKeys("z"),
		key.WithHelp("z", "collapse/expand group"),
	),
	Compound: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "toggle groups"),
	),
	TopEdges: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "top edges"),
	),
	PrevView: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "prev view"),
	),
	NextView: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next view"),
	),
	CloseView: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "close view"),
	),
	StartDiff: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "diff"),
	),
	CancelDiff: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "cancel diff"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy id"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "graphs"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type pane int

const (
	paneTree pane = iota
	paneCanvas
)

// ExplorerModel browses the method tree of a graph and the views opened on it
type ExplorerModel struct {
	ViewState
	ws            *explorer.Workspace
	maxIterations int

	graph     *explorer.Graph
	root      *domain.TreeNode
	flatNodes []*domain.TreeNode
	tree      *Paginator

	items  []CanvasItem
	canvas *Paginator

	focus     pane
	spinner   spinner.Model
	prompt    textinput.Model
	prompting bool
	diff      explorer.DiffState
}

// NewExplorerModel creates a new explorer model. maxIterations bounds
// the diffs started from the explorer.
func NewExplorerModel(ws *explorer.Workspace, maxIterations int) *ExplorerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.MutedText

	prompt := textinput.New()
	prompt.Placeholder = "graph to compare against"

	return &ExplorerModel{
		ws:            ws,
		maxIterations: maxIterations,
		tree:          NewPaginator(20),
		canvas:        NewPaginator(20),
		spinner:       s,
		prompt:        prompt,
	}
}

type graphOpenedMsg struct {
	graph   *explorer.Graph
	message string
	err     error
}

type treeLoadedMsg struct {
	graph string
	root  *domain.TreeNode
	err   error
}

type viewChangedMsg struct {
	message string
	err     error
}

type diffStartedMsg struct {
	updates chan explorer.DiffState
	done    chan struct{}
	message string
	err     error
}

type diffProgressMsg struct {
	state   explorer.DiffState
	updates chan explorer.DiffState
	done    chan struct{}
}

type diffFinishedMsg struct {
	result *commands.DiffResult
	err    error
}

// Init initializes the explorer
func (m *ExplorerModel) Init() tea.Cmd {
	return nil
}

// Graph returns the explored graph, nil before one is opened
func (m *ExplorerModel) Graph() *explorer.Graph {
	return m.graph
}

// Open opens a graph in the explorer
func (m *ExplorerModel) Open(name string) tea.Cmd {
	return m.run(func(ctx context.Context) tea.Msg {
		g, err := m.ws.Open(ctx, name)
		if err != nil {
			return graphOpenedMsg{err: err}
		}
		return graphOpenedMsg{graph: g, message: fmt.Sprintf("Opened %s", name)}
	})
}

// ShowResult opens the graph of a search result and shows the method in a new view
func (m *ExplorerModel) ShowResult(r commands.SearchResult) tea.Cmd {
	return m.run(func(ctx context.Context) tea.Msg {
		g, err := m.ws.Open(ctx, r.Graph)
		if err != nil {
			return graphOpenedMsg{err: err}
		}
		view := g.CreateView("Method " + r.Name)
		if err := view.ShowMethod(ctx, r.ID, false); err != nil {
			return graphOpenedMsg{graph: g, err: err}
		}
		view.SelectNode(r.ID)
		return graphOpenedMsg{graph: g, message: fmt.Sprintf("Showing %s", r.QualifiedName())}
	})
}

// run executes fn off the update loop with the spinner running
func (m *ExplorerModel) run(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	cmd := func() tea.Msg {
		return fn(context.Background())
	}
	if m.BeginQuery() {
		return tea.Batch(m.spinner.Tick, cmd)
	}
	return cmd
}

func (m *ExplorerModel) loadTree(g *explorer.Graph) tea.Cmd {
	return m.run(func(ctx context.Context) tea.Msg {
		root, err := commands.NewMethodTreeCommand(m.ws, g.Name()).Execute(ctx)
		return treeLoadedMsg{graph: g.Name(), root: root, err: err}
	})
}

// Update handles messages for the explorer
func (m *ExplorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case graphOpenedMsg:
		m.EndQuery()
		if msg.graph == nil {
			m.SetMessage(msg.err.Error(), true)
			return m, nil
		}
		var cmd tea.Cmd
		if m.graph != msg.graph {
			m.graph = msg.graph
			m.root = nil
			m.flatNodes = nil
			m.tree.Reset()
			m.diff = msg.graph.Diff()
			cmd = m.loadTree(msg.graph)
		}
		m.refreshItems()
		m.Report(msg.err, msg.message)
		return m, cmd

	case treeLoadedMsg:
		m.EndQuery()
		if m.graph == nil || msg.graph != m.graph.Name() {
			return m, nil
		}
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
			return m, nil
		}
		m.root = msg.root
		m.refreshFlatNodes()
		return m, nil

	case viewChangedMsg:
		m.EndQuery()
		m.refreshItems()
		m.Report(msg.err, msg.message)
		return m, nil

	case diffStartedMsg:
		m.EndQuery()
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
			return m, nil
		}
		m.diff = m.graph.Diff()
		m.SetMessage(msg.message, false)
		return m, tea.Batch(m.watchDiff(msg.updates, msg.done), waitDiffProgress(msg.updates, msg.done))

	case diffProgressMsg:
		m.diff = msg.state
		return m, waitDiffProgress(msg.updates, msg.done)

	case diffFinishedMsg:
		if m.graph != nil {
			m.diff = m.graph.Diff()
		}
		m.refreshItems()
		finished := ""
		if msg.err == nil {
			finished = fmt.Sprintf("Diff finished: %s", msg.result.Message)
		}
		m.Report(msg.err, finished)
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m, m.updatePrompt(msg)
		}
		m.ClearMessage()
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *ExplorerModel) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompting = false
		m.prompt.Blur()
		return nil
	case tea.KeyEnter:
		m.prompting = false
		m.prompt.Blur()
		return m.startDiff(strings.TrimSpace(m.prompt.Value()))
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *ExplorerModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, ExplorerKeys.Quit):
		return tea.Quit
	case key.Matches(msg, ExplorerKeys.Back):
		return func() tea.Msg { return SwitchToGraphsMsg{} }
	case key.Matches(msg, ExplorerKeys.Search):
		return func() tea.Msg { return SwitchToSearchMsg{} }
	case key.Matches(msg, ExplorerKeys.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }
	}

	if m.graph == nil {
		return nil
	}

	switch {
	case key.Matches(msg, ExplorerKeys.Pane):
		if m.focus == paneTree {
			m.focus = paneCanvas
		} else {
			m.focus = paneTree
		}
		return nil
	case key.Matches(msg, ExplorerKeys.Compound):
		m.graph.SetCompoundNodesShown(!m.graph.CompoundNodesShown())
		m.refreshItems()
		return nil
	case key.Matches(msg, ExplorerKeys.TopEdges):
		return m.viewOp("Top edges", func(ctx context.Context, v *explorer.View) (string, error) {
			return "Showing top edges", v.ShowTopEdges(ctx, 0)
		})
	case key.Matches(msg, ExplorerKeys.PrevView):
		m.shiftView(-1)
		return nil
	case key.Matches(msg, ExplorerKeys.NextView):
		m.shiftView(1)
		return nil
	case key.Matches(msg, ExplorerKeys.CloseView):
		if _, idx, ok := m.graph.CurrentView(); ok {
			if err := m.graph.CloseView(idx); err != nil {
				m.SetMessage(err.Error(), true)
			}
			m.refreshItems()
		}
		return nil
	case key.Matches(msg, ExplorerKeys.StartDiff):
		m.prompting = true
		m.prompt.SetValue(m.graph.Info().OtherGraph)
		m.prompt.Focus()
		return textinput.Blink
	case key.Matches(msg, ExplorerKeys.CancelDiff):
		return m.cancelDiff()
	case key.Matches(msg, ExplorerKeys.Copy):
		if id := m.selectedID(); id != "" {
			if err := clipboard.WriteAll(id); err != nil {
				m.SetMessage(err.Error(), true)
			} else {
				m.SetMessage("Copied "+id, false)
			}
		}
		return nil
	}

	if m.focus == paneTree {
		return m.handleTreeKey(msg)
	}
	return m.handleCanvasKey(msg)
}

func (m *ExplorerModel) handleTreeKey(msg tea.KeyMsg) tea.Cmd {
	node := m.selectedTreeNode()
	switch {
	case key.Matches(msg, ExplorerKeys.Up):
		m.tree.CursorUp()
	case key.Matches(msg, ExplorerKeys.Down):
		m.tree.CursorDown()
	case key.Matches(msg, ExplorerKeys.Left):
		if node == nil {
			return nil
		}
		if node.IsExpanded {
			node.Collapse()
			m.refreshFlatNodes()
		} else if node.Parent != nil && node.Parent != m.root {
			for i, n := range m.flatNodes {
				if n == node.Parent {
					m.tree.SetCursor(i)
					break
				}
			}
		}
	case key.Matches(msg, ExplorerKeys.Right):
		if node != nil && !node.IsMethod() {
			node.Expand()
			m.refreshFlatNodes()
		}
	case key.Matches(msg, ExplorerKeys.Enter):
		if node == nil {
			return nil
		}
		if !node.IsMethod() {
			node.Toggle()
			m.refreshFlatNodes()
			return nil
		}
		return m.showMethod(node, false, false)
	case key.Matches(msg, ExplorerKeys.NewView):
		if node != nil && node.IsMethod() {
			return m.showMethod(node, false, true)
		}
	case key.Matches(msg, ExplorerKeys.Entrypoint):
		if node != nil && node.IsMethod() {
			return m.showMethod(node, true, false)
		}
	}
	return nil
}

func (m *ExplorerModel) handleCanvasKey(msg tea.KeyMsg) tea.Cmd {
	item, ok := m.selectedItem()
	switch {
	case key.Matches(msg, ExplorerKeys.Up):
		m.canvas.CursorUp()
		m.syncSelection()
		return nil
	case key.Matches(msg, ExplorerKeys.Down):
		m.canvas.CursorDown()
		m.syncSelection()
		return nil
	}
	if !ok {
		return nil
	}

	view, _, _ := m.graph.CurrentView()
	switch {
	case key.Matches(msg, ExplorerKeys.Callees), key.Matches(msg, ExplorerKeys.Callers):
		if item.Kind != ItemMethod {
			return nil
		}
		rel := domain.Callees
		if key.Matches(msg, ExplorerKeys.Callers) {
			rel = domain.Callers
		}
		return m.viewOp("", func(ctx context.Context, v *explorer.View) (string, error) {
			return fmt.Sprintf("Showing %s of %s", rel, item.Label), v.ShowAllNeighbors(ctx, item.ID, rel)
		})
	case key.Matches(msg, ExplorerKeys.HideCallees), key.Matches(msg, ExplorerKeys.HideCallers):
		rel := domain.Callees
		if key.Matches(msg, ExplorerKeys.HideCallers) {
			rel = domain.Callers
		}
		view.HideAllNeighbors(item.ID, rel)
	case key.Matches(msg, ExplorerKeys.Hide):
		if item.IsNode() {
			view.HideNode(item.ID)
		} else {
			view.HideEdge(item.ID)
		}
	case key.Matches(msg, ExplorerKeys.Collapse):
		if item.Kind != ItemGroup {
			return nil
		}
		if view.IsCollapsed(item.ID) {
			view.Expand(item.ID)
		} else {
			view.Collapse(item.ID)
		}
	case key.Matches(msg, ExplorerKeys.Enter):
		if item.IsNode() {
			return nil
		}
		return m.viewOp("", func(ctx context.Context, v *explorer.View) (string, error) {
			return "Showing " + item.ID, v.ShowEdgeByID(ctx, item.ID)
		})
	default:
		return nil
	}
	m.refreshItems()
	return nil
}

// showMethod shows a method of the tree in the current view, or in a new
// one when there is none or fresh is set
func (m *ExplorerModel) showMethod(node *domain.TreeNode, withEntrypoint, fresh bool) tea.Cmd {
	title := "Method " + node.Name
	if withEntrypoint {
		title += " from entrypoint"
	}
	if fresh {
		m.graph.CreateView(title)
	}
	return m.viewOp(title, func(ctx context.Context, v *explorer.View) (string, error) {
		if err := v.ShowMethod(ctx, node.ID, withEntrypoint); err != nil {
			return "", err
		}
		v.SelectNode(node.ID)
		return "Showing " + node.Name, nil
	})
}

// viewOp runs op on the current view, creating one titled title when none is open
func (m *ExplorerModel) viewOp(title string, op func(ctx context.Context, v *explorer.View) (string, error)) tea.Cmd {
	view, _, ok := m.graph.CurrentView()
	if !ok {
		if title == "" {
			return nil
		}
		view = m.graph.CreateView(title)
	}
	return m.run(func(ctx context.Context) tea.Msg {
		message, err := op(ctx, view)
		if err != nil {
			logger.Warn("view query failed", "graph", m.graph.Name(), "view", view.Title, "err", err)
		}
		return viewChangedMsg{message: message, err: err}
	})
}

func (m *ExplorerModel) startDiff(other string) tea.Cmd {
	graph := m.graph.Name()
	return m.run(func(ctx context.Context) tea.Msg {
		result, err := commands.NewStartDiffCommand(m.ws, graph, other, m.maxIterations).Execute(ctx)
		if err != nil {
			return diffStartedMsg{err: err}
		}
		return diffStartedMsg{
			updates: make(chan explorer.DiffState, 16),
			done:    make(chan struct{}),
			message: result.Message,
		}
	})
}

func (m *ExplorerModel) cancelDiff() tea.Cmd {
	graph := m.graph.Name()
	return m.run(func(ctx context.Context) tea.Msg {
		result, err := commands.NewCancelDiffCommand(m.ws, graph).Execute(ctx)
		if err != nil {
			return viewChangedMsg{err: err}
		}
		return viewChangedMsg{message: result.Message}
	})
}

func (m *ExplorerModel) watchDiff(updates chan explorer.DiffState, done chan struct{}) tea.Cmd {
	graph := m.graph.Name()
	return func() tea.Msg {
		defer close(done)
		result, err := commands.NewWatchDiffCommand(m.ws, graph, func(s explorer.DiffState) {
			select {
			case updates <- s:
			default:
			}
		}).Execute(context.Background())
		return diffFinishedMsg{result: result, err: err}
	}
}

func waitDiffProgress(updates chan explorer.DiffState, done chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-updates:
			return diffProgressMsg{state: s, updates: updates, done: done}
		case <-done:
			return nil
		}
	}
}

func (m *ExplorerModel) shiftView(delta int) {
	views := m.graph.Views()
	if len(views) == 0 {
		return
	}
	_, idx, _ := m.graph.CurrentView()
	next := (idx + delta + len(views)) % len(views)
	if err := m.graph.SelectView(next); err != nil {
		m.SetMessage(err.Error(), true)
	}
	m.refreshItems()
}

func (m *ExplorerModel) selectedTreeNode() *domain.TreeNode {
	c := m.tree.Cursor()
	if c >= 0 && c < len(m.flatNodes) {
		return m.flatNodes[c]
	}
	return nil
}

func (m *ExplorerModel) selectedItem() (CanvasItem, bool) {
	c := m.canvas.Cursor()
	if c >= 0 && c < len(m.items) {
		return m.items[c], true
	}
	return CanvasItem{}, false
}

func (m *ExplorerModel) selectedID() string {
	if m.focus == paneTree {
		if n := m.selectedTreeNode(); n != nil {
			return n.ID
		}
		return ""
	}
	item, _ := m.selectedItem()
	return item.ID
}

// syncSelection selects the element under the canvas cursor in the view
func (m *ExplorerModel) syncSelection() {
	view, _, ok := m.graph.CurrentView()
	item, found := m.selectedItem()
	if !ok || !found {
		return
	}
	if item.IsNode() {
		view.SelectNode(item.ID)
	} else {
		view.SelectEdge(item.ID)
	}
}

func (m *ExplorerModel) refreshFlatNodes() {
	if m.root == nil {
		return
	}
	m.flatNodes = m.root.Flatten()
	// Skip root node in display
	if len(m.flatNodes) > 0 {
		m.flatNodes = m.flatNodes[1:]
	}
	m.tree.SetTotal(len(m.flatNodes))
}

// refreshItems lays out the canvas of the current view again, keeping the
// cursor on the selected element
func (m *ExplorerModel) refreshItems() {
	m.items = nil
	if m.graph == nil {
		m.canvas.Reset()
		return
	}
	view, _, ok := m.graph.CurrentView()
	if !ok {
		m.canvas.Reset()
		return
	}
	if canvas, ok := view.Surface().(*Canvas); ok {
		m.items = canvas.Items()
	}
	m.canvas.SetTotal(len(m.items))

	sel := view.Selection()
	want := sel.NodeID
	if want == "" {
		want = sel.EdgeID
	}
	for i, item := range m.items {
		if item.ID == want {
			m.canvas.SetCursor(i)
			break
		}
	}
}

// SetSize updates the view dimensions
func (m *ExplorerModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	rows := max(height-12, 5)
	m.tree.SetPageSize(rows)
	m.canvas.SetPageSize(rows)
}

// View renders the explorer
func (m *ExplorerModel) View() string {
	if m.graph == nil {
		return NewViewBuilder().
			Title("Callscope").
			Muted(m.spinner.View() + " Opening graph...").
			Message(m.Message, m.MessageErr).
			String()
	}

	info := m.graph.Info()
	vb := NewViewBuilder().
		Title(info.Name).
		Subtitle(RenderGraphSummary(info)).
		Raw(m.renderPanes()).
		BlankLine().
		Status(m.statusParts()...)

	if m.prompting {
		vb.Line(RenderLabelValue("Compare against", m.prompt.View()))
	}

	return vb.Message(m.Message, m.MessageErr).
		Help(ExplorerKeys.Pane, ExplorerKeys.Enter, ExplorerKeys.Callees, ExplorerKeys.Callers, ExplorerKeys.Hide,
			ExplorerKeys.TopEdges, ExplorerKeys.StartDiff, ExplorerKeys.Search, ExplorerKeys.Help).
		String()
}

func (m *ExplorerModel) renderPanes() string {
	width := max(m.Width-8, 40)
	left := width * 2 / 5
	right := width - left

	treeStyle, canvasStyle := styles.PaneFocused, styles.Pane
	if m.focus == paneCanvas {
		treeStyle, canvasStyle = styles.Pane, styles.PaneFocused
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		treeStyle.Width(left).Render(m.renderTree()),
		canvasStyle.Width(right).Render(m.renderCanvas()),
	)
}

func (m *ExplorerModel) renderTree() string {
	if m.root == nil {
		return m.spinner.View() + " Loading methods..."
	}
	var b strings.Builder
	start, end := m.tree.VisibleRange()
	for i := start; i < end; i++ {
		b.WriteString(renderTreeNode(m.flatNodes[i], i == m.tree.Cursor() && m.focus == paneTree))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderTreeNode(node *domain.TreeNode, selected bool) string {
	indent := strings.Repeat("  ", node.Depth()-1)

	var prefix string
	var style lipgloss.Style
	switch {
	case node.IsMethod():
		prefix = styles.TreeLeaf
		style = styles.NodeMethod
	case node.IsExpanded:
		prefix = styles.TreeExpanded
		style = styles.NodeClass
	default:
		prefix = styles.TreeCollapsed
		style = styles.NodeClass
	}
	if node.Depth() == 1 && !node.IsMethod() {
		style = styles.NodePackage
	}

	if selected {
		style = styles.NodeSelected
	}
	return indent + styles.TreeBranch.Render(prefix) + style.Render(node.Name)
}

func (m *ExplorerModel) renderCanvas() string {
	var b strings.Builder

	views := m.graph.Views()
	_, current, ok := m.graph.CurrentView()
	var tabs []string
	for i, v := range views {
		if ok && i == current {
			tabs = append(tabs, styles.TabActive.Render(v.Title))
		} else {
			tabs = append(tabs, styles.Tab.Render(v.Title))
		}
	}
	if len(tabs) == 0 {
		return styles.MutedText.Render("No views. Press enter on a method to show it.")
	}
	b.WriteString(strings.Join(tabs, ""))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(styles.MutedText.Render("Empty view"))
		return b.String()
	}

	cursor := -1
	if m.focus == paneCanvas {
		cursor = m.canvas.Cursor()
	}
	start, end := m.canvas.VisibleRange()
	b.WriteString(strings.TrimSuffix(RenderItems(m.items, cursor, start, end), "\n"))
	return b.String()
}

func (m *ExplorerModel) statusParts() []string {
	nodes, edges := m.graph.Cache().Stats()
	parts := []string{
		styles.StatusKey.Render(m.graph.Name()),
		styles.StatusText.Render(fmt.Sprintf("%d views  cached %d nodes %d edges", len(m.graph.Views()), nodes, edges)),
	}
	if !m.graph.CompoundNodesShown() {
		parts = append(parts, styles.StatusText.Render("groups hidden"))
	}
	parts = append(parts, RenderDiffStatus(m.diff))
	if m.Pending() {
		parts = append(parts, m.spinner.View())
	}
	return parts
}

