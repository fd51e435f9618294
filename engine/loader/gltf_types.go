// gltf_types.go contains the glTF 2.0 container constants and the per-import state shared by the pipeline stages.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// --- GLB Binary Format ---

// GLB header magic number ("glTF" in ASCII, little-endian).
const gltfGLBMagic uint32 = 0x46546C67

// GLB container version supported by this loader.
const gltfGLBVersion uint32 = 2

// GLB chunk types.
const (
	gltfGLBChunkJSON uint32 = 0x4E4F534A // "JSON"
	gltfGLBChunkBIN  uint32 = 0x004E4942 // "BIN\0"
)

// gltfGLBHeader is the 12-byte header at the start of a GLB file.
type gltfGLBHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

// gltfGLBChunkHeader precedes each chunk in a GLB file.
type gltfGLBChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

// gltfAssetVersion is the only asset.version accepted.
const gltfAssetVersion = "2.0"

// gltfDataURIPrefix marks an inline resource URI.
const gltfDataURIPrefix = "data:"

// --- Import State ---

// gltfContainer is the output of the container parser: the document, the GLB binary chunks in file
// order, and the directory that relative URIs resolve against.
type gltfContainer struct {
	doc    document.Value
	chunks [][]byte
	dir    string
	path   string
	isGLB  bool

	// diagnostics holds the warnings raised while validating the container (extensionsUsed).
	diagnostics []model.Diagnostic
}

// gltfImport carries the tables built so far by one import. Every stage reads the tables of the
// stages before it and returns its own; nothing here is shared between imports.
type gltfImport struct {
	container *gltfContainer
	logger    *slog.Logger
	flipY     bool

	buffers   [][]byte
	views     []model.BufferView
	accessors []model.Accessor

	images   []model.Image
	samplers []model.SamplerOptions
	textures []model.Texture

	materials       []model.Material
	defaultMaterial model.MaterialHandle

	meshes     []model.Mesh
	geometries []model.Geometry

	nodes []model.SceneNode

	// sources lists the external files read so far, in read order.
	sources []string

	diagnostics []model.Diagnostic
}

// addSource records an external file the import read.
func (g *gltfImport) addSource(path string) {
	for _, p := range g.sources {
		if p == path {
			return
		}
	}
	g.sources = append(g.sources, path)
}

// table returns the named top-level array of the document; absent or non-array tables are empty.
func (g *gltfImport) table(name string) []document.Value {
	return g.container.doc.Field(name).Elems()
}
