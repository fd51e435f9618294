package loader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportMinimalDocument(t *testing.T) {
	res, err := importDoc(t, obj{"asset": obj{"version": "2.0"}}, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, res.Nodes)
	assert.Empty(t, res.Meshes)
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Materials, 1, "only the default material")
	assert.NotEqual(t, uuid.Nil, res.ID)
}

func TestNodeTransforms(t *testing.T) {
	doc := embeddedTriangleDoc()
	doc["nodes"] = arr{obj{
		"name":        "moved",
		"mesh":        0,
		"translation": arr{1, 2, 3},
		"rotation":    arr{0.5, 0.5, 0.5, 0.5},
		"scale":       arr{2, 2, 2},
	}}

	res, err := importDoc(t, doc, t.TempDir())
	require.NoError(t, err)
	require.Len(t, res.Nodes, 1)

	n := res.Nodes[0]
	assert.Equal(t, "moved", n.Name)
	assert.Equal(t, model.MeshHandle(0), n.Mesh)
	assert.Equal(t, [3]float32{1, 2, 3}, n.Translation)
	assert.Equal(t, [4]float32{0.5, 0.5, 0.5, 0.5}, n.Rotation)
	assert.Equal(t, [3]float32{2, 2, 2}, n.Scale)

	m := n.LocalMatrix()
	assert.Equal(t, [3]float32{1, 2, 3}, [3]float32{m[12], m[13], m[14]})
}

func TestNodeMalformedRotationKeepsIdentity(t *testing.T) {
	doc := embeddedTriangleDoc()
	doc["nodes"] = arr{obj{"mesh": 0, "rotation": arr{0, 1, 0}, "scale": arr{1, "2", 1}, "translation": arr{5, 6, 7}}}

	res, err := importDoc(t, doc, t.TempDir())
	require.NoError(t, err)

	n := res.Nodes[0]
	assert.Equal(t, common.IdentityQuat(), n.Rotation)
	assert.Equal(t, [3]float32{1, 1, 1}, n.Scale)
	assert.Equal(t, [3]float32{5, 6, 7}, n.Translation)

	var malformed int
	for _, d := range res.Diagnostics {
		if d.Stage == model.StageNodes && d.Severity == model.SeverityWarn {
			assert.ErrorIs(t, d, ErrMalformedTransform)
			malformed++
		}
	}
	assert.Equal(t, 2, malformed)
}

func TestNodeMeshOutOfRange(t *testing.T) {
	doc := embeddedTriangleDoc()
	doc["nodes"] = arr{obj{"name": "orphan", "mesh": 3}}

	res, err := importDoc(t, doc, t.TempDir())
	require.NoError(t, err)
	require.Len(t, res.Nodes, 1)
	assert.Equal(t, "orphan", res.Nodes[0].Name)
	assert.Equal(t, model.NoMesh, res.Nodes[0].Mesh)
	d := requireDiagnostic(t, res.Diagnostics, model.StageNodes, model.SeveritySkip, ErrIndexOutOfRange)
	assert.Equal(t, 0, d.Index)
}

func TestSceneNodeIndexOutOfRange(t *testing.T) {
	doc := embeddedTriangleDoc()
	doc["scenes"] = arr{obj{"nodes": arr{0, 7, "x", 0}}}

	res, err := importDoc(t, doc, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, res.Nodes, 2)

	var skipped int
	for _, d := range res.Diagnostics {
		if d.Stage == model.StageNodes && d.Severity == model.SeveritySkip {
			skipped++
		}
	}
	assert.Equal(t, 2, skipped)
}

func TestActiveSceneSelection(t *testing.T) {
	doc := embeddedTriangleDoc()
	doc["nodes"] = arr{obj{"name": "a"}, obj{"name": "b"}, obj{"name": "c"}}
	doc["scenes"] = arr{obj{"nodes": arr{0}}, obj{"nodes": arr{1}}, obj{"nodes": arr{2}}}

	names := func(res *model.ImportResult) []string {
		var out []string
		for _, n := range res.Nodes {
			out = append(out, n.Name)
		}
		return out
	}

	res, err := importDoc(t, doc, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(res))

	doc["defaultScene"] = 1
	res, err = importDoc(t, doc, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names(res))

	doc["scene"] = 2
	res, err = importDoc(t, doc, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, names(res))

	doc["scene"] = "x"
	res, err = importDoc(t, doc, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names(res), "a non-integer scene falls back to defaultScene")

	doc["scene"] = 5
	res, err = importDoc(t, doc, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, res.Nodes)
	d := requireDiagnostic(t, res.Diagnostics, model.StageNodes, model.SeverityWarn, ErrInvalidScene)
	assert.Equal(t, -1, d.Index)
}

func TestNodeUnsupportedFields(t *testing.T) {
	doc := embeddedTriangleDoc()
	doc["nodes"] = arr{
		obj{"mesh": 0, "matrix": arr{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}, "children": arr{1}},
		obj{"name": "child"},
	}

	res, err := importDoc(t, doc, t.TempDir())
	require.NoError(t, err)
	require.Len(t, res.Nodes, 1, "children are not followed")
	requireDiagnostic(t, res.Diagnostics, model.StageNodes, model.SeverityWarn, ErrUnsupportedNodeField)
}
