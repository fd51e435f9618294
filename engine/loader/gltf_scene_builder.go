package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/chewxy/math32"
)

// quatTolerance is how far a rotation's length may stray from 1 before it is reported.
const quatTolerance = 1e-3

// gltfSceneBuilderImpl is the implementation of the gltfSceneBuilder interface.
type gltfSceneBuilderImpl struct {
	imp *gltfImport
}

// gltfSceneBuilder builds the flat node list of the active scene.
type gltfSceneBuilder interface {
	// ActiveScene returns the index of the scene to import: the "scene" property when it is an
	// integer, else "defaultScene", else 0.
	ActiveScene() int

	// BuildNode decodes one node. Transform components with the wrong arity keep their defaults.
	//
	// Parameters:
	//   - nodeIndex: the index of the node in the document
	//   - entry: the node object
	//   - report: receives diagnostics for invalid mesh references and malformed transforms
	//
	// Returns:
	//   - model.SceneNode: the node
	BuildNode(nodeIndex int, entry document.Value, report *stageReport) model.SceneNode

	// BuildNodes decodes the root nodes of the active scene in scene order. Child hierarchies are
	// not followed. It must run after the meshes are assembled.
	//
	// Returns:
	//   - []model.SceneNode: the root nodes
	//   - []model.Diagnostic: skip and warn diagnostics
	BuildNodes() ([]model.SceneNode, []model.Diagnostic)
}

var _ gltfSceneBuilder = &gltfSceneBuilderImpl{}

// newGLTFSceneBuilder creates a scene builder for an import in progress.
func newGLTFSceneBuilder(imp *gltfImport) gltfSceneBuilder {
	return &gltfSceneBuilderImpl{imp: imp}
}

func (b *gltfSceneBuilderImpl) ActiveScene() int {
	doc := b.imp.container.doc
	if scene, ok := doc.Field("scene").AsInt(); ok {
		return scene
	}
	return doc.IntOr("defaultScene", 0)
}

func (b *gltfSceneBuilderImpl) BuildNodes() ([]model.SceneNode, []model.Diagnostic) {
	report := newStageReport(model.StageNodes, b.imp.logger)
	scenes := b.imp.table("scenes")
	if len(scenes) == 0 {
		return nil, report.diagnostics
	}

	active := b.ActiveScene()
	if !common.InBounds(scenes, active) {
		report.warn(-1, fmt.Errorf("%w: scene %d (have %d), no nodes imported", ErrInvalidScene, active, len(scenes)))
		return nil, report.diagnostics
	}
	scene := scenes[active]
	logx.Verbose(b.imp.logger, "glTF scene", "index", active, "name", scene.StringOr("name", ""))

	nodes := b.imp.table("nodes")
	roots := scene.Field("nodes").Elems()
	result := make([]model.SceneNode, 0, len(roots))
	for _, ref := range roots {
		index, ok := ref.AsInt()
		if !ok || !common.InBounds(nodes, index) {
			report.skip(-1, fmt.Errorf("scene %d: %w: node %s (have %d)", active, ErrIndexOutOfRange, ref, len(nodes)))
			continue
		}
		result = append(result, b.BuildNode(index, nodes[index], report))
	}
	return result, report.diagnostics
}

func (b *gltfSceneBuilderImpl) BuildNode(nodeIndex int, entry document.Value, report *stageReport) model.SceneNode {
	node := model.NewSceneNode(entry.StringOr("name", ""))

	if entry.Has("mesh") {
		mesh := entry.IntOr("mesh", -1)
		if mesh >= 0 && mesh < len(b.imp.meshes) {
			node.Mesh = model.MeshHandle(mesh)
		} else {
			report.skip(nodeIndex, fmt.Errorf("%w: mesh %s (have %d), node kept without mesh", ErrIndexOutOfRange, entry.Field("mesh"), len(b.imp.meshes)))
		}
	}

	if v, ok := b.transform(nodeIndex, entry, "translation", 3, report); ok {
		copy(node.Translation[:], v)
	}
	if v, ok := b.transform(nodeIndex, entry, "rotation", 4, report); ok {
		copy(node.Rotation[:], v)
		if length := common.QuatLength(node.Rotation); math32.Abs(length-1) > quatTolerance {
			logx.Verbose(b.imp.logger, "glTF node rotation is not unit length", "node", nodeIndex, "length", length)
		}
	}
	if v, ok := b.transform(nodeIndex, entry, "scale", 3, report); ok {
		copy(node.Scale[:], v)
	}

	for _, field := range []string{"matrix", "camera", "skin"} {
		if entry.Has(field) {
			report.warn(nodeIndex, fmt.Errorf("%w: %s ignored", ErrUnsupportedNodeField, field))
		}
	}
	if children := entry.Field("children"); children.Len() > 0 {
		logx.Verbose(b.imp.logger, "glTF node children not followed", "node", nodeIndex, "children", children.Len())
	}

	logx.Verbose(b.imp.logger, "glTF node", "index", nodeIndex, "name", node.Name, "mesh", int(node.Mesh))
	return node
}

// transform reads a fixed-arity numeric array. An absent key is not reported; a present key with the
// wrong arity or non-numeric elements is a warning.
func (b *gltfSceneBuilderImpl) transform(nodeIndex int, entry document.Value, key string, arity int, report *stageReport) ([]float32, bool) {
	raw, ok := entry.Get(key)
	if !ok {
		return nil, false
	}
	v, ok := vecN(raw, arity)
	if !ok {
		report.warn(nodeIndex, fmt.Errorf("%w: %s must be %d numbers, found %s", ErrMalformedTransform, key, arity, raw))
		return nil, false
	}
	return v, true
}
