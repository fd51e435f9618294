package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	imp *gltfImport
}

// gltfMaterialExtractor defines the interface for decoding the PBR metallic-roughness materials table.
type gltfMaterialExtractor interface {
	// ExtractMaterial decodes a single material entry. Every field absent from the entry keeps its
	// glTF default. Texture references are checked against the resolved texture table.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document
	//   - entry: the material object
	//   - report: receives diagnostics for invalid texture references
	//
	// Returns:
	//   - model.Material: the decoded material
	ExtractMaterial(materialIndex int, entry document.Value, report *stageReport) model.Material

	// ExtractAllMaterials decodes every material and appends the single default material shared by
	// primitives that have no valid material of their own.
	//
	// Returns:
	//   - []model.Material: the decoded materials followed by the default material
	//   - model.MaterialHandle: the handle of the default material
	//   - []model.Diagnostic: skip and warn diagnostics for texture references
	ExtractAllMaterials() ([]model.Material, model.MaterialHandle, []model.Diagnostic)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for an import in progress.
// The texture table must already be resolved.
//
// Parameters:
//   - imp: the import state
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(imp *gltfImport) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{imp: imp}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex int, entry document.Value, report *stageReport) model.Material {
	result := model.DefaultMaterial()
	result.Name = entry.StringOr("name", "")

	if pbr := entry.Field("pbrMetallicRoughness"); pbr.IsObject() {
		if f, ok := vecN(pbr.Field("baseColorFactor"), 4); ok {
			copy(result.BaseColorFactor[:], f)
		}
		result.MetallicFactor = pbr.Float32Or("metallicFactor", result.MetallicFactor)
		result.RoughnessFactor = pbr.Float32Or("roughnessFactor", result.RoughnessFactor)
		result.BaseColorTexture = e.textureRef(materialIndex, "baseColorTexture", pbr.Field("baseColorTexture"), report)
		result.MetallicRoughnessTexture = e.textureRef(materialIndex, "metallicRoughnessTexture", pbr.Field("metallicRoughnessTexture"), report)
	}

	if normal := entry.Field("normalTexture"); normal.IsObject() {
		result.NormalTexture = e.textureRef(materialIndex, "normalTexture", normal, report)
		result.NormalScale = normal.Float32Or("scale", result.NormalScale)
	}

	if occlusion := entry.Field("occlusionTexture"); occlusion.IsObject() {
		result.OcclusionTexture = e.textureRef(materialIndex, "occlusionTexture", occlusion, report)
		result.OcclusionStrength = occlusion.Float32Or("strength", result.OcclusionStrength)
	}

	if f, ok := vecN(entry.Field("emissiveFactor"), 3); ok {
		copy(result.EmissiveFactor[:], f)
	}
	result.EmissiveTexture = e.textureRef(materialIndex, "emissiveTexture", entry.Field("emissiveTexture"), report)

	switch mode := model.AlphaMode(entry.StringOr("alphaMode", string(model.AlphaOpaque))); mode {
	case model.AlphaOpaque, model.AlphaMask, model.AlphaBlend:
		result.AlphaMode = mode
	default:
		report.warn(materialIndex, fmt.Errorf("%w: unknown alphaMode %q, using OPAQUE", ErrInvalidDocument, mode))
	}
	result.AlphaCutoff = entry.Float32Or("alphaCutoff", result.AlphaCutoff)
	result.DoubleSided = entry.BoolOr("doubleSided", false)

	return result
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]model.Material, model.MaterialHandle, []model.Diagnostic) {
	report := newStageReport(model.StageMaterials, e.imp.logger)
	entries := e.imp.table("materials")

	materials := make([]model.Material, 0, len(entries)+1)
	for i, entry := range entries {
		materials = append(materials, e.ExtractMaterial(i, entry, report))
	}

	defaultHandle := model.MaterialHandle(len(materials))
	materials = append(materials, model.DefaultMaterial())

	logx.Verbose(e.imp.logger, "glTF materials decoded", "count", len(entries), "default", int(defaultHandle))
	return materials, defaultHandle, report.diagnostics
}

// textureRef resolves a textureInfo object to a texture handle. An absent reference is NoTexture;
// an index outside the texture table, or naming a skipped texture, is NoTexture plus a skip diagnostic.
// Only the first UV set is supported, so a non-zero texCoord is a warning.
func (e *gltfMaterialExtractorImpl) textureRef(materialIndex int, slot string, info document.Value, report *stageReport) model.TextureHandle {
	if !info.IsObject() {
		return model.NoTexture
	}

	index := info.IntOr("index", -1)
	if !common.InBounds(e.imp.textures, index) {
		report.skip(materialIndex, fmt.Errorf("%s: %w: texture %d (have %d)", slot, ErrIndexOutOfRange, index, len(e.imp.textures)))
		return model.NoTexture
	}
	if !e.imp.textures[index].Valid() {
		report.skip(materialIndex, fmt.Errorf("%s: texture %d has no image: %w", slot, index, ErrImageDecode))
		return model.NoTexture
	}

	if texCoord := info.IntOr("texCoord", 0); texCoord != 0 {
		report.warn(materialIndex, fmt.Errorf("%s: %w: texCoord %d, using TEXCOORD_0", slot, ErrMultipleTexCoords, texCoord))
	}
	return model.TextureHandle(index)
}

// vecN converts v to exactly n floats; any other arity or a non-numeric element fails.
func vecN(v document.Value, n int) ([]float32, bool) {
	f, ok := v.Float32s()
	if !ok || len(f) != n {
		return nil, false
	}
	return f, true
}
