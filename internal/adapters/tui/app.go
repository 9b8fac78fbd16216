package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"callscope/internal/adapters/tui/views"
	"callscope/internal/application/explorer"
	"callscope/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewGraphs ViewState = iota
	ViewExplorer
	ViewSearch
	ViewHelp
)

// Options configures the application
type Options struct {
	Graph             string // opened on start when set
	DiffMaxIterations int
}

// App is the main TUI application model
type App struct {
	ws    *explorer.Workspace
	index ports.MethodIndex
	opts  Options

	state    ViewState
	previous ViewState
	graphs   *views.GraphsModel
	explorer *views.ExplorerModel
	search   *views.SearchModel
	help     *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application. Views of the workspace graphs must
// be drawn on views.NewCanvasSurface; index may be nil.
func NewApp(ws *explorer.Workspace, index ports.MethodIndex, opts Options) *App {
	return &App{
		ws:       ws,
		index:    index,
		opts:     opts,
		state:    ViewGraphs,
		graphs:   views.NewGraphsModel(ws),
		explorer: views.NewExplorerModel(ws, opts.DiffMaxIterations),
		search:   views.NewSearchModel(ws, index),
		help:     views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	if a.opts.Graph != "" {
		a.state = ViewExplorer
		return tea.Batch(a.graphs.Init(), a.explorer.Open(a.opts.Graph))
	}
	return a.graphs.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.graphs.SetSize(msg.Width, msg.Height)
		a.explorer.SetSize(msg.Width, msg.Height)
		a.search.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// Spinners ignore ticks carrying another id
	case spinner.TickMsg:
		_, c1 := a.graphs.Update(msg)
		_, c2 := a.explorer.Update(msg)
		return a, tea.Batch(c1, c2)

	// View switching messages
	case views.OpenGraphMsg:
		a.state = ViewExplorer
		return a, a.explorer.Open(msg.Name)

	case views.SwitchToGraphsMsg:
		a.state = ViewGraphs
		return a, a.graphs.Reload()

	case views.SwitchToExplorerMsg:
		if a.explorer.Graph() == nil {
			a.state = ViewGraphs
		} else {
			a.state = ViewExplorer
		}
		return a, nil

	case views.SwitchToSearchMsg:
		a.previous = a.state
		a.state = ViewSearch
		graph := ""
		if g := a.explorer.Graph(); g != nil && a.previous == ViewExplorer {
			graph = g.Name()
		}
		return a, a.search.Reset(graph)

	case views.SearchSelectMsg:
		a.state = ViewExplorer
		return a, a.explorer.ShowResult(msg.Result)

	case views.SwitchToHelpMsg:
		a.previous = a.state
		a.state = ViewHelp
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewGraphs:
		_, cmd = a.graphs.Update(msg)
	case ViewExplorer:
		_, cmd = a.explorer.Update(msg)
	case ViewSearch:
		_, cmd = a.search.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	// Query results land on the explorer while another view is shown
	if a.state != ViewExplorer && !isKeyMsg(msg) {
		_, c := a.explorer.Update(msg)
		cmd = tea.Batch(cmd, c)
	}

	return a, cmd
}

func isKeyMsg(msg tea.Msg) bool {
	_, ok := msg.(tea.KeyMsg)
	return ok
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewExplorer:
		return a.explorer.View()
	case ViewSearch:
		return a.search.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.graphs.View()
	}
}
