package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"callscope/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, func() tea.Msg {
				return SwitchToExplorerMsg{}
			}
		}
	}

	return m, nil
}

type helpSection struct {
	title    string
	bindings []key.Binding
}

// View renders the help view
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Callscope Help"))
	b.WriteString("\n\n")

	b.WriteString(styles.Subtitle.Render("Call graph explorer"))
	b.WriteString("\n\n")

	k := ExplorerKeys
	sections := []helpSection{
		{"Navigation", []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Pane, k.PrevView, k.NextView}},
		{"Method tree", []key.Binding{k.Enter, k.NewView, k.Entrypoint}},
		{"Views", []key.Binding{k.Callees, k.Callers, k.HideCallees, k.HideCallers, k.Hide, k.Collapse, k.Compound, k.TopEdges, k.CloseView}},
		{"Diff", []key.Binding{k.StartDiff, k.CancelDiff}},
		{"General", []key.Binding{k.Copy, k.Search, k.Back, k.Help, k.Quit}},
	}

	for _, s := range sections {
		b.WriteString(styles.InputLabel.Render(s.title))
		b.WriteString("\n")
		for _, binding := range s.bindings {
			h := binding.Help()
			b.WriteString(helpLine(h.Key, h.Desc))
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.InputLabel.Render("Diff colours"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  Edges changed by the last diff are coloured from purple (small) to yellow (large)."))
	b.WriteString("\n\n")

	// Close hint
	b.WriteString(styles.HelpDesc.Render("Press "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" or "))
	b.WriteString(styles.HelpKey.Render("?"))
	b.WriteString(styles.HelpDesc.Render(" to close"))

	return styles.App.Render(b.String())
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
