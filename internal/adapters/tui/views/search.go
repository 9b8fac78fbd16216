package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"callscope/internal/adapters/tui/styles"
	"callscope/internal/application/commands"
	"callscope/internal/application/explorer"
	"callscope/internal/ports"
)

// SearchKeyMap defines key bindings for the search view
type SearchKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Copy   key.Binding
	Cancel key.Binding
}

var SearchKeys = SearchKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "show"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy ID"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

const maxShownResults = 10

// SearchModel searches the methods of the indexed graphs
type SearchModel struct {
	ViewState
	ws       *explorer.Workspace
	index    ports.MethodIndex
	graph    string // empty searches every indexed graph
	input    textinput.Model
	results  []commands.SearchResult
	cursor   int
	indexing bool
}

// NewSearchModel creates a new search view model. A nil index disables search.
func NewSearchModel(ws *explorer.Workspace, index ports.MethodIndex) *SearchModel {
	input := textinput.New()
	input.Placeholder = "Search methods..."
	input.Focus()

	return &SearchModel{
		ws:    ws,
		index: index,
		input: input,
	}
}

// Init initializes the search view
func (m *SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// Reset clears the query and scopes the search to graph, indexing it when
// its methods are not indexed yet
func (m *SearchModel) Reset(graph string) tea.Cmd {
	m.graph = graph
	m.input.SetValue("")
	m.results = nil
	m.cursor = 0
	m.input.Focus()
	m.ClearMessage()

	if m.index == nil {
		m.SetMessage("Search index unavailable", true)
		return nil
	}
	if graph == "" {
		return textinput.Blink
	}
	m.indexing = true
	return tea.Batch(textinput.Blink, m.rebuild(graph))
}

type indexRebuiltMsg struct {
	message string
	err     error
}

func (m *SearchModel) rebuild(graph string) tea.Cmd {
	return func() tea.Msg {
		result, err := commands.NewRebuildIndexCommand(m.ws, m.index, graph, false).Execute(context.Background())
		if err != nil {
			return indexRebuiltMsg{err: err}
		}
		return indexRebuiltMsg{message: result.Message}
	}
}

// Update handles messages for the search view
func (m *SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case indexRebuiltMsg:
		m.indexing = false
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
			return m, nil
		}
		m.SetMessage(msg.message, false)
		if query := m.input.Value(); len(query) >= 2 {
			return m, m.search(query)
		}
		return m, nil

	case searchResultsMsg:
		if msg.query != m.input.Value() {
			return m, nil
		}
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
		}
		m.results = msg.results
		m.cursor = 0
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, SearchKeys.Cancel):
			return m, func() tea.Msg {
				return SwitchToExplorerMsg{}
			}

		case key.Matches(msg, SearchKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Down):
			if m.cursor < min(len(m.results), maxShownResults)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Copy):
			if result, ok := m.selected(); ok {
				if err := clipboard.WriteAll(result.ID); err != nil {
					m.SetMessage(err.Error(), true)
				} else {
					m.SetMessage("Copied "+result.ID, false)
				}
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Select):
			if result, ok := m.selected(); ok {
				return m, func() tea.Msg {
					return SearchSelectMsg{Result: result}
				}
			}
			return m, nil
		}
	}

	// Update input
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	// Trigger search on input change
	query := m.input.Value()
	if len(query) >= 2 && m.index != nil {
		return m, tea.Batch(cmd, m.search(query))
	} else if len(query) == 0 {
		m.results = nil
	}

	return m, cmd
}

func (m *SearchModel) selected() (commands.SearchResult, bool) {
	if m.cursor >= 0 && m.cursor < len(m.results) {
		return m.results[m.cursor], true
	}
	return commands.SearchResult{}, false
}

func (m *SearchModel) search(query string) tea.Cmd {
	graph := m.graph
	return func() tea.Msg {
		results, err := commands.NewSearchCommand(m.index, graph, query).Execute(context.Background())
		return searchResultsMsg{query: query, results: results, err: err}
	}
}

type searchResultsMsg struct {
	query   string
	results []commands.SearchResult
	err     error
}

// View renders the search view
func (m *SearchModel) View() string {
	var b strings.Builder

	// Title
	title := "Search"
	if m.graph != "" {
		title += " in " + m.graph
	}
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n\n")

	// Search input
	b.WriteString(styles.InputFocused.Render(m.input.View()))
	b.WriteString("\n\n")

	// Results
	switch {
	case m.indexing:
		b.WriteString(styles.MutedText.Render("Indexing methods..."))
	case len(m.results) == 0:
		if len(m.input.Value()) >= 2 {
			b.WriteString(styles.MutedText.Render("No results found"))
		} else {
			b.WriteString(styles.MutedText.Render("Type at least 2 characters to search"))
		}
	default:
		b.WriteString(styles.Subtitle.Render(fmt.Sprintf("%d results", len(m.results))))
		b.WriteString("\n\n")

		for i := 0; i < min(len(m.results), maxShownResults); i++ {
			b.WriteString(m.renderResult(m.results[i], i == m.cursor))
			b.WriteString("\n")
		}

		if len(m.results) > maxShownResults {
			b.WriteString(styles.MutedText.Render(fmt.Sprintf("... and %d more", len(m.results)-maxShownResults)))
		}
	}

	b.WriteString("\n\n")
	if m.Message != "" {
		b.WriteString(RenderMessage(m.Message, m.MessageErr))
		b.WriteString("\n")
	}

	// Help
	b.WriteString(RenderHelpLine(SearchKeys.Up, SearchKeys.Down, SearchKeys.Select, SearchKeys.Copy, SearchKeys.Cancel))

	return styles.App.Render(b.String())
}

func (m *SearchModel) renderResult(result commands.SearchResult, selected bool) string {
	graph := ""
	if m.graph == "" {
		graph = "[" + result.Graph + "] "
	}
	text := fmt.Sprintf("%s%s  %s", graph, result.QualifiedName(), result.ID)

	if selected {
		return styles.NodeSelected.Render(text)
	}

	return text
}
