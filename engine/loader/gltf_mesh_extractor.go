package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	imp *gltfImport
}

// gltfMeshExtractor defines the interface for assembling meshes from a decoded glTF document.
// Primitives refer to buffer-view bytes in place; no vertex or index data is copied.
type gltfMeshExtractor interface {
	// ExtractMesh assembles a single mesh. Primitives that cannot be drawn are dropped; the mesh is
	// always returned so mesh indices stay aligned with the document.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh in the document
	//   - entry: the mesh object
	//   - report: receives diagnostics for dropped primitives and attributes
	//
	// Returns:
	//   - model.Mesh: the mesh and its surviving primitives
	ExtractMesh(meshIndex int, entry document.Value, report *stageReport) model.Mesh

	// ExtractAllMeshes assembles every mesh. It must run after the accessors and materials are decoded.
	//
	// Returns:
	//   - []model.Mesh: one mesh per document entry
	//   - []model.Geometry: the geometry arena referenced by Primitive.Geometry
	//   - []model.Diagnostic: skip and warn diagnostics
	ExtractAllMeshes() ([]model.Mesh, []model.Geometry, []model.Diagnostic)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for an import in progress.
//
// Parameters:
//   - imp: the import state, with accessors and materials decoded
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(imp *gltfImport) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{imp: imp}
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]model.Mesh, []model.Geometry, []model.Diagnostic) {
	report := newStageReport(model.StageMeshes, e.imp.logger)
	entries := e.imp.table("meshes")

	e.imp.geometries = e.imp.geometries[:0]
	meshes := make([]model.Mesh, len(entries))
	for i, entry := range entries {
		if !entry.IsObject() {
			report.warn(i, fmt.Errorf("%w: mesh is %s, not an object", ErrInvalidDocument, entry.Kind()))
		}
		meshes[i] = e.ExtractMesh(i, entry, report)
	}

	logx.Verbose(e.imp.logger, "glTF meshes assembled", "meshes", len(meshes), "geometries", len(e.imp.geometries))
	return meshes, e.imp.geometries, report.diagnostics
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int, entry document.Value, report *stageReport) model.Mesh {
	mesh := model.Mesh{Name: entry.StringOr("name", "")}

	for primIndex, prim := range entry.Field("primitives").Elems() {
		p, err := e.extractPrimitive(meshIndex, primIndex, prim, report)
		if err != nil {
			report.skip(meshIndex, fmt.Errorf("primitive %d: %w", primIndex, err))
			continue
		}
		mesh.Primitives = append(mesh.Primitives, p)
	}
	return mesh
}

// extractPrimitive builds one primitive and appends its geometry to the arena. An error drops the
// primitive; problems confined to a single attribute or to the material are reported and survived.
func (e *gltfMeshExtractorImpl) extractPrimitive(meshIndex, primIndex int, prim document.Value, report *stageReport) (model.Primitive, error) {
	if !prim.Has("indices") {
		return model.Primitive{}, fmt.Errorf("%w: non-indexed primitives are not supported", ErrUnsupportedPrimitive)
	}

	indexAcc, indexView, indexData, err := e.imp.accessorData(prim.IntOr("indices", -1))
	if err != nil {
		return model.Primitive{}, fmt.Errorf("indices: %w", err)
	}
	if indexAcc.Shape != model.ShapeScalar {
		return model.Primitive{}, fmt.Errorf("%w: index accessor has type %s", ErrInvalidAccessor, indexAcc.Shape)
	}
	switch indexAcc.ComponentType {
	case model.ComponentUnsignedByte, model.ComponentUnsignedShort, model.ComponentUnsignedInt:
	default:
		return model.Primitive{}, fmt.Errorf("%w: index accessor has componentType %s", ErrInvalidAccessor, indexAcc.ComponentType)
	}

	result := model.Primitive{
		Geometry:           model.NoGeometry,
		Mode:               model.ModeTriangles,
		IndexCount:         indexAcc.Count,
		IndexComponentType: indexAcc.ComponentType,
		IndexByteOffset:    indexAcc.ByteOffset,
		Bounds:             common.EmptyBox(),
		Material:           e.imp.defaultMaterial,
		Skin:               model.NoSkin,
	}

	if prim.Has("mode") {
		mode := model.DrawMode(prim.IntOr("mode", -1))
		if mode.Valid() {
			result.Mode = mode
		} else {
			report.warn(meshIndex, fmt.Errorf("primitive %d: %w: %s, using TRIANGLES", primIndex, ErrInvalidDrawMode, prim.Field("mode")))
		}
	}

	if prim.Has("material") {
		// The default material is the last arena entry and is not addressable from the document.
		material := prim.IntOr("material", -1)
		if material >= 0 && material < int(e.imp.defaultMaterial) {
			result.Material = model.MaterialHandle(material)
		} else {
			report.skip(meshIndex, fmt.Errorf("primitive %d: %w: material %d (have %d), using default",
				primIndex, ErrIndexOutOfRange, material, int(e.imp.defaultMaterial)))
		}
	}

	geometry := model.Geometry{
		Indices:     indexData,
		IndexTarget: indexView.Target,
	}
	geometry.Attributes, result.Bounds = e.extractAttributes(meshIndex, primIndex, prim.Field("attributes"), report)

	result.Geometry = model.GeometryHandle(len(e.imp.geometries))
	e.imp.geometries = append(e.imp.geometries, geometry)

	logx.Verbose(e.imp.logger, "glTF primitive", "mesh", meshIndex, "primitive", primIndex, "mode", result.Mode,
		"indices", result.IndexCount, "attributes", len(geometry.Attributes), "material", int(result.Material))
	return result, nil
}

// extractAttributes maps the attribute semantics to vertex slots, ordered by slot. A semantic that
// appears twice resolves to its last occurrence. The bounds are taken from POSITION when it is a
// FLOAT VEC3 accessor.
func (e *gltfMeshExtractorImpl) extractAttributes(meshIndex, primIndex int, attrs document.Value, report *stageReport) ([]model.VertexAttribute, common.Box) {
	type boundAttribute struct {
		acc  model.Accessor
		view model.BufferView
		data []byte
		ok   bool
	}
	var slots [model.AttributeSlotCount]boundAttribute

	for _, m := range attrs.Members() {
		slot, ok := model.SlotForSemantic(m.Key)
		if !ok {
			report.skip(meshIndex, fmt.Errorf("primitive %d: %w: %s", primIndex, ErrUnknownAttribute, m.Key))
			continue
		}

		index, ok := m.Value.AsInt()
		if !ok {
			index = -1
		}
		acc, view, data, err := e.imp.accessorData(index)
		if err != nil {
			report.skip(meshIndex, fmt.Errorf("primitive %d: %s: %w", primIndex, m.Key, err))
			slots[slot] = boundAttribute{}
			continue
		}
		slots[slot] = boundAttribute{acc: acc, view: view, data: data, ok: true}
	}

	bounds := common.EmptyBox()
	var out []model.VertexAttribute
	for i, b := range slots {
		if !b.ok {
			continue
		}
		slot := model.AttributeSlot(i)
		out = append(out, model.VertexAttribute{
			Slot:          slot,
			Components:    b.acc.Shape.Components(),
			ComponentType: b.acc.ComponentType,
			Normalized:    b.acc.Normalized,
			ByteStride:    b.view.ByteStride,
			ByteOffset:    b.acc.ByteOffset,
			Count:         b.acc.Count,
			Target:        b.view.Target,
			Data:          b.data,
		})
		logx.Verbose(e.imp.logger, "glTF attribute", "mesh", meshIndex, "primitive", primIndex,
			"semantic", slot, "type", b.acc.ComponentType, "shape", b.acc.Shape, "count", b.acc.Count)

		if slot == model.AttributePosition && b.acc.ComponentType == model.ComponentFloat && b.acc.Shape == model.ShapeVec3 {
			forEachVec3(b.acc, b.view, b.data, func(p [3]float32) {
				bounds.Extend(p)
			})
		}
	}
	return out, bounds
}
