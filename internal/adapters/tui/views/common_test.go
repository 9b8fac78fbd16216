package views

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewState_Report(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		ok      string
		want    string
		wantErr bool
	}{
		{"error wins", errors.New("service down"), "Showing m1", "service down", true},
		{"success", nil, "Showing m1", "Showing m1", false},
		{"nothing to say keeps message", nil, "", "earlier", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s ViewState
			s.SetMessage("earlier", false)
			s.Report(tt.err, tt.ok)
			if s.Message != tt.want || s.MessageErr != tt.wantErr {
				t.Errorf("Report() = (%q, %v), want (%q, %v)", s.Message, s.MessageErr, tt.want, tt.wantErr)
			}
		})
	}
}

func TestViewState_QueriesInFlight(t *testing.T) {
	var s ViewState
	assert.False(t, s.Pending())

	assert.True(t, s.BeginQuery(), "first query starts the spinner")
	assert.False(t, s.BeginQuery(), "second query reuses it")
	assert.True(t, s.Pending())

	s.EndQuery()
	assert.True(t, s.Pending())
	s.EndQuery()
	assert.False(t, s.Pending())

	// Answers to queries the view never counted must not go negative
	s.EndQuery()
	assert.False(t, s.Pending())
	assert.True(t, s.BeginQuery())
}
