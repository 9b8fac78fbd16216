package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuildIndexCommand(t *testing.T) {
	svc := newStubService()
	ws := newWorkspace(svc)
	index := newMemoryIndex()
	ctx := context.Background()

	result, err := NewRebuildIndexCommand(ws, index, "G", false).Execute(ctx)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 4, result.Stats.MethodsAdded)
	assert.Equal(t, "Indexed 4 methods of G", result.Message)

	result, err = NewRebuildIndexCommand(ws, index, "G", false).Execute(ctx)
	require.NoError(t, err)
	assert.True(t, result.Skipped)

	result, err = NewRebuildIndexCommand(ws, index, "G", true).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Stats.MethodsDeleted)
	assert.Equal(t, 1, svc.count("tree"), "the tree is fetched once per graph")
}

func TestSearchCommand(t *testing.T) {
	svc := newStubService()
	ws := newWorkspace(svc)
	index := newMemoryIndex()
	ctx := context.Background()

	_, err := NewRebuildIndexCommand(ws, index, "G", false).Execute(ctx)
	require.NoError(t, err)

	results, err := NewSearchCommand(index, "G", "parse").Execute(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "m4", results[0].ID)
	assert.Equal(t, "pkg.C.parse_args", results[0].QualifiedName())

	results, err = NewSearchCommand(index, "", "m").Execute(ctx)
	require.NoError(t, err)
	assert.Empty(t, results, "single character queries are ignored")
}
