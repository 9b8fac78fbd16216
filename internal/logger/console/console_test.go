package console

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Params{Writer: &buf})

	l.Debug("hidden")
	l.Info("visible", "graph", "G")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "graph=G")
}

func TestLogger_DebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	New(Params{Writer: &buf, Debug: true}).Debug("cache miss")
	assert.Contains(t, buf.String(), "cache miss")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "callscope.log")

	l, closer, err := OpenFile(path, false)
	require.NoError(t, err)
	l.Warn("written")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}
