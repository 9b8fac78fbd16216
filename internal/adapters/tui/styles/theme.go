package styles

import (
	"github.com/charmbracelet/lipgloss"

	"callscope/internal/domain"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	White     = lipgloss.Color("#FFFFFF")
	Black     = lipgloss.Color("#000000")
	Info      = lipgloss.Color("#60A5FA") // Blue

	// Base styles
	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Method tree styles
	NodePackage = lipgloss.NewStyle().
			Bold(true)

	NodeClass = lipgloss.NewStyle().
			Foreground(Secondary)

	NodeMethod = lipgloss.NewStyle()

	NodeSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	// Canvas styles
	NodeGroup = lipgloss.NewStyle().
			Foreground(Info).
			Bold(true)

	NodeEntrypoint = lipgloss.NewStyle().
			Foreground(Warning)

	EdgePlain = lipgloss.NewStyle().
			Foreground(Muted)

	EdgeMeta = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	Pane = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1)

	PaneFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	Tab = lipgloss.NewStyle().
		Foreground(Muted).
		Padding(0, 1)

	TabActive = lipgloss.NewStyle().
			Foreground(White).
			Background(Primary).
			Padding(0, 1)

	// Tree indicators
	TreeBranch    = lipgloss.NewStyle().Foreground(Muted)
	TreeExpanded  = "▼ "
	TreeCollapsed = "▶ "
	TreeLeaf      = "  "

	// Status bar
	StatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(White).
			Padding(0, 1)

	StatusKey = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Padding(0, 1).
			MarginRight(1)

	StatusText = lipgloss.NewStyle().
			Foreground(Muted)

	// Input styles
	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InputField = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	InputFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Search
	SearchMatch = lipgloss.NewStyle().
			Background(Warning).
			Foreground(Black)

	// Muted text style (for using Muted color as a style)
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// EdgeColor returns the style of an edge coloured by its diff value.
// Wider edges are rendered bold.
func EdgeColor(s domain.EdgeStyle) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color))
	if s.Width >= 4.5 {
		style = style.Bold(true)
	}
	return style
}

// DiffStatusColor returns the color for the state of a comparison job
func DiffStatusColor(status domain.DiffStatus) lipgloss.Color {
	switch status {
	case domain.DiffRunning:
		return Info
	case domain.DiffSaving:
		return Warning
	case domain.DiffSucceeded:
		return Secondary
	case domain.DiffFailed:
		return Error
	default:
		return Muted
	}
}
