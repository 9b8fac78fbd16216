package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const methodPayload = `{
	"nodes": [
		[
			{"group": "nodes", "data": {"id": "m2", "label": "run", "parent": "app.Worker", "path": ["m0", "m1", "m2"],
			  "callers": [[{"group": "nodes", "data": {"id": "m1", "label": "start", "parent": "app.Main"}}]],
			  "callees": []}},
			{"group": "nodes", "data": {"id": "app.Worker", "label": "Worker", "parent": "app", "level": 1}},
			{"group": "nodes", "data": {"id": "app", "label": "app", "level": 2}}
		],
		[{"group": "nodes", "data": {"id": "m0", "label": "main", "parent": "app.Main"}}],
		[{"group": "nodes", "data": {"id": "m1", "label": "start", "parent": "app.Main"}}]
	],
	"edges": [
		{"group": "edges", "data": {"id": "m0->m1", "source": "m0", "target": "m1", "value": 0.5, "relevant": true}},
		{"group": "edges", "data": {"id": "m1->m2", "source": "m1", "target": "m2", "value": null, "relevant": null}}
	]
}`

func TestResponse_Decode(t *testing.T) {
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(methodPayload), &resp))

	require.Len(t, resp.Nodes, 3)
	head, ok := resp.Nodes[0].Head()
	require.True(t, ok)
	assert.True(t, head.IsLeaf())
	assert.False(t, resp.Nodes[0][1].IsLeaf())
	assert.True(t, head.HasNeighborList(Callees))
	assert.Empty(t, head.Neighbors(Callees))
	require.Len(t, head.Neighbors(Callers), 1)
	assert.Equal(t, "m1", head.Neighbors(Callers)[0][0].Data.ID)

	assert.True(t, resp.Edges[0].IsRelevant())
	assert.Equal(t, 0.5, resp.Edges[0].DiffValue())
	assert.False(t, resp.Edges[1].IsRelevant())

	elems := resp.Elements()
	assert.Equal(t, []string{"m2", "app.Worker", "app", "m0", "m1"}, elems.NodeIDs())
}

func TestResponse_EntrypointPathFromEmbeddedIDs(t *testing.T) {
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(methodPayload), &resp))

	path := resp.EntrypointPathFor("m2")

	assert.Equal(t, []string{"m0", "m1"}, path.Elements().NodeIDs())
	assert.Equal(t, []string{"m0->m1", "m1->m2"}, path.Elements().EdgeIDs())
}

func TestResponse_EntrypointPathPrefersPathObject(t *testing.T) {
	resp := Response{
		Nodes: []NodeChain{{node("x")}},
		Path: &EntrypointPath{
			Chains: []NodeChain{{node("root")}},
			Edges:  []Edge{NewEdge("root", "x")},
		},
	}

	path := resp.EntrypointPathFor("x")
	assert.Equal(t, []string{"root"}, path.Elements().NodeIDs())
}

func TestEdge_RelevanceWithoutFlag(t *testing.T) {
	positive := NewEdge("a", "b")
	v := 2.0
	positive.Data.Value = &v
	assert.True(t, positive.IsRelevant())

	zero := NewEdge("a", "c")
	z := 0.0
	zero.Data.Value = &z
	assert.False(t, zero.IsRelevant())

	flagged := NewEdge("a", "d").WithValue(0, true)
	assert.True(t, flagged.IsRelevant())
}
