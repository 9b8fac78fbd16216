package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"callscope/internal/adapters/tui/styles"
	"callscope/internal/application/commands"
	"callscope/internal/application/explorer"
	"callscope/internal/domain"
)

// GraphsKeyMap defines key bindings for the graph list
type GraphsKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Reload   key.Binding
	Search   key.Binding
	Help     key.Binding
	Quit     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
}

var GraphsKeys = GraphsKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter", "l"),
		key.WithHelp("enter", "open"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "prev page"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "next page"),
	),
}

// GraphsModel lists the graphs available on the service
type GraphsModel struct {
	ViewState
	ws        *explorer.Workspace
	graphs    []domain.GraphInfo
	paginator *Paginator
	spinner   spinner.Model
	loading   bool
}

// NewGraphsModel creates a new graph list model
func NewGraphsModel(ws *explorer.Workspace) *GraphsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.MutedText
	return &GraphsModel{
		ws:        ws,
		paginator: NewPaginator(15),
		spinner:   s,
	}
}

type graphsLoadedMsg struct {
	graphs []domain.GraphInfo
	err    error
}

// Init loads the graph list
func (m *GraphsModel) Init() tea.Cmd {
	return m.Reload()
}

// Reload fetches the graph list again
func (m *GraphsModel) Reload() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.load)
}

func (m *GraphsModel) load() tea.Msg {
	graphs, err := commands.NewListGraphsCommand(m.ws).Execute(context.Background())
	return graphsLoadedMsg{graphs: graphs, err: err}
}

// Update handles messages for the graph list
func (m *GraphsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case graphsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
			return m, nil
		}
		m.graphs = msg.graphs
		m.paginator.SetTotal(len(m.graphs))
		if len(m.graphs) == 0 {
			m.SetMessage("No graphs on the service", false)
		}
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()

		switch {
		case key.Matches(msg, GraphsKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, GraphsKeys.Up):
			m.paginator.CursorUp()
		case key.Matches(msg, GraphsKeys.Down):
			m.paginator.CursorDown()
		case key.Matches(msg, GraphsKeys.PrevPage):
			m.paginator.PrevPage()
		case key.Matches(msg, GraphsKeys.NextPage):
			m.paginator.NextPage()
		case key.Matches(msg, GraphsKeys.Reload):
			return m, m.Reload()
		case key.Matches(msg, GraphsKeys.Open):
			if g, ok := m.Selected(); ok {
				return m, func() tea.Msg {
					return OpenGraphMsg{Name: g.Name}
				}
			}
		case key.Matches(msg, GraphsKeys.Search):
			return m, func() tea.Msg {
				return SwitchToSearchMsg{}
			}
		case key.Matches(msg, GraphsKeys.Help):
			return m, func() tea.Msg {
				return SwitchToHelpMsg{}
			}
		}
	}

	return m, nil
}

// Selected returns the graph under the cursor
func (m *GraphsModel) Selected() (domain.GraphInfo, bool) {
	c := m.paginator.Cursor()
	if c < 0 || c >= len(m.graphs) {
		return domain.GraphInfo{}, false
	}
	return m.graphs[c], true
}

// View renders the graph list
func (m *GraphsModel) View() string {
	vb := NewViewBuilder().
		Title("Callscope").
		Subtitle("Call graphs")

	if m.loading {
		vb.Line(m.spinner.View() + " Loading graphs...")
	}

	start, end := m.paginator.VisibleRange()
	for i := start; i < end; i++ {
		vb.Line(m.renderGraph(m.graphs[i], i == m.paginator.Cursor()))
	}
	if m.paginator.TotalPages() > 1 {
		vb.BlankLine().Muted(fmt.Sprintf("Page %d/%d", m.paginator.CurrentPage(), m.paginator.TotalPages()))
	}

	return vb.BlankLine().
		Message(m.Message, m.MessageErr).
		Help(GraphsKeys.Up, GraphsKeys.Down, GraphsKeys.Open, GraphsKeys.Reload, GraphsKeys.Search, GraphsKeys.Help, GraphsKeys.Quit).
		String()
}

func (m *GraphsModel) renderGraph(g domain.GraphInfo, selected bool) string {
	text := fmt.Sprintf("%-24s %6d nodes %6d edges", g.Name, g.NodeCount, g.EdgeCount)
	diff := ""
	if g.HasDiff() {
		diff = fmt.Sprintf("  diff vs %s (%d iterations)", g.OtherGraph, g.Iterations)
	}
	if _, open := m.ws.Graph(g.Name); open {
		text = "* " + text
	} else {
		text = "  " + text
	}
	if selected {
		return styles.NodeSelected.Render(text) + styles.MutedText.Render(diff)
	}
	return text + styles.MutedText.Render(diff)
}
