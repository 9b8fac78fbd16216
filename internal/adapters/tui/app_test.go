package tui

import (
	"testing"

	"callscope/internal/adapters/tui/views"
	"callscope/internal/application/explorer"
)

func TestApp_Switching(t *testing.T) {
	app := NewApp(explorer.NewWorkspace(nil), nil, Options{})

	steps := []struct {
		name string
		msg  any
		want ViewState
	}{
		{"help from graphs", views.SwitchToHelpMsg{}, ViewHelp},
		{"back without a graph", views.SwitchToExplorerMsg{}, ViewGraphs},
		{"search", views.SwitchToSearchMsg{}, ViewSearch},
		{"open graph", views.OpenGraphMsg{Name: "G"}, ViewExplorer},
		{"help from explorer", views.SwitchToHelpMsg{}, ViewHelp},
	}

	for _, s := range steps {
		app.Update(s.msg)
		if app.state != s.want {
			t.Fatalf("%s: state = %d, want %d", s.name, app.state, s.want)
		}
	}
}

func TestApp_InitOpensConfiguredGraph(t *testing.T) {
	app := NewApp(explorer.NewWorkspace(nil), nil, Options{Graph: "G"})
	if cmd := app.Init(); cmd == nil {
		t.Fatal("Init() returned no command")
	}
	if app.state != ViewExplorer {
		t.Errorf("state = %d, want %d", app.state, ViewExplorer)
	}
}
