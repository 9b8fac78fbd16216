package views

import "callscope/internal/application/commands"

// Messages for view switching
type SwitchToGraphsMsg struct{}

type SwitchToExplorerMsg struct{}

type SwitchToSearchMsg struct{}

type SwitchToHelpMsg struct{}

// OpenGraphMsg asks the app to open a graph in the explorer
type OpenGraphMsg struct {
	Name string
}

// SearchSelectMsg is sent when a search result is selected
type SearchSelectMsg struct {
	Result commands.SearchResult
}
