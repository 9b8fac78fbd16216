package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callscope/internal/application/explorer"
)

func loadedGraphs(t *testing.T) *GraphsModel {
	t.Helper()
	m := NewGraphsModel(explorer.NewWorkspace(stubService{}))
	for _, msg := range collect(m.Init()) {
		if _, ok := msg.(graphsLoadedMsg); ok {
			m.Update(msg)
		}
	}
	require.False(t, m.loading)
	return m
}

func TestGraphs_LoadsAndOpens(t *testing.T) {
	m := loadedGraphs(t)

	g, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "G", g.Name)
	assert.Contains(t, m.View(), "G")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, OpenGraphMsg{Name: "G"}, msgs[0])
}

func TestGraphs_SwitchMessages(t *testing.T) {
	tests := []struct {
		key  string
		want tea.Msg
	}{
		{"/", SwitchToSearchMsg{}},
		{"?", SwitchToHelpMsg{}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := loadedGraphs(t)
			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.key)})
			msgs := collect(cmd)
			require.Len(t, msgs, 1)
			assert.Equal(t, tt.want, msgs[0])
		})
	}
}

func TestGraphs_MarksOpenGraphs(t *testing.T) {
	ws := explorer.NewWorkspace(stubService{})
	m := NewGraphsModel(ws)
	for _, msg := range collect(m.Reload()) {
		m.Update(msg)
	}
	assert.NotContains(t, m.View(), "* G")

	_, err := ws.Open(t.Context(), "G")
	require.NoError(t, err)
	assert.Contains(t, m.View(), "* G")
}
