package loader

import (
	"io"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/Carmen-Shannon/oxy-gltf/engine/profiler"
	"github.com/google/uuid"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	parser    gltfParser
	logger    *slog.Logger
	flipY     bool
	profiling bool
}

// gltfImporter defines the interface for orchestrating a full glTF/GLB import.
// It runs the container parser and every extraction stage strictly in order; each stage sees only
// the tables of the stages before it.
type gltfImporter interface {
	// Import resolves name against the search path and imports it.
	//
	// Parameters:
	//   - name: the file name, relative to a search root
	//
	// Returns:
	//   - *model.ImportResult: the populated result, or an empty result when err is non-nil
	//   - error: a fatal container error
	Import(name string) (*model.ImportResult, error)

	// ImportReader imports a glTF JSON or GLB stream.
	// External URIs in the document resolve against dir.
	//
	// Parameters:
	//   - name: the name recorded on the result
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data, false for glTF JSON
	//   - dir: the directory relative URIs resolve against
	//
	// Returns:
	//   - *model.ImportResult: the populated result, or an empty result when err is non-nil
	//   - error: a fatal container error
	ImportReader(name string, r io.Reader, isGLB bool, dir string) (*model.ImportResult, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - searchPath: the roots Import resolves names against
//   - logger: the destination for diagnostics and progress
//   - flipY: whether decoded images are flipped vertically
//   - profiling: whether per-stage timings are logged at the PERF level
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(searchPath SearchPath, logger *slog.Logger, flipY, profiling bool) gltfImporter {
	logger = logx.OrDiscard(logger)
	return &gltfImporterImpl{
		parser:    newGLTFParser(searchPath, logger),
		logger:    logger,
		flipY:     flipY,
		profiling: profiling,
	}
}

func (imp *gltfImporterImpl) Import(name string) (*model.ImportResult, error) {
	prof := profiler.NewProfiler(imp.profiling)

	done := prof.Stage(string(model.StageContainer))
	container, err := imp.parser.Parse(name)
	done()
	if err != nil {
		imp.logger.Error("glTF import failed", "name", name, "error", err)
		return &model.ImportResult{}, err
	}

	res := imp.run(container, prof)
	res.Name = name
	prof.Report(imp.logger, name)
	return res, nil
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader, isGLB bool, dir string) (*model.ImportResult, error) {
	prof := profiler.NewProfiler(imp.profiling)

	done := prof.Stage(string(model.StageContainer))
	container, err := imp.parser.ParseReader(r, isGLB, dir)
	done()
	if err != nil {
		imp.logger.Error("glTF import failed", "name", name, "error", err)
		return &model.ImportResult{}, err
	}

	res := imp.run(container, prof)
	res.Name = name
	prof.Report(imp.logger, name)
	return res, nil
}

// run executes the extraction stages over a validated container.
func (imp *gltfImporterImpl) run(container *gltfContainer, prof *profiler.Profiler) *model.ImportResult {
	state := &gltfImport{
		container:   container,
		logger:      imp.logger,
		flipY:       imp.flipY,
		diagnostics: append([]model.Diagnostic(nil), container.diagnostics...),
	}

	stage := func(s model.Stage, fn func() []model.Diagnostic) {
		done := prof.Stage(string(s))
		state.diagnostics = append(state.diagnostics, fn()...)
		done()
	}

	buffers := newGLTFBufferResolver(state)
	stage(model.StageBuffers, func() (d []model.Diagnostic) {
		state.buffers, d = buffers.ResolveBuffers()
		return d
	})

	accessors := newGLTFAccessorDecoder(state)
	stage(model.StageBufferViews, func() (d []model.Diagnostic) {
		state.views, d = accessors.DecodeBufferViews()
		return d
	})
	stage(model.StageAccessors, func() (d []model.Diagnostic) {
		state.accessors, d = accessors.DecodeAccessors()
		return d
	})

	images := newGLTFImageResolver(state)
	stage(model.StageImages, func() (d []model.Diagnostic) {
		state.images, d = images.ResolveImages()
		return d
	})
	stage(model.StageSamplers, func() (d []model.Diagnostic) {
		state.samplers, d = images.ResolveSamplers()
		return d
	})
	stage(model.StageTextures, func() (d []model.Diagnostic) {
		state.textures, d = images.ResolveTextures()
		return d
	})

	materials := newGLTFMaterialExtractor(state)
	stage(model.StageMaterials, func() (d []model.Diagnostic) {
		state.materials, state.defaultMaterial, d = materials.ExtractAllMaterials()
		return d
	})

	meshes := newGLTFMeshExtractor(state)
	stage(model.StageMeshes, func() (d []model.Diagnostic) {
		state.meshes, state.geometries, d = meshes.ExtractAllMeshes()
		return d
	})

	scene := newGLTFSceneBuilder(state)
	stage(model.StageNodes, func() (d []model.Diagnostic) {
		state.nodes, d = scene.BuildNodes()
		return d
	})

	res := &model.ImportResult{
		ID:              uuid.Must(uuid.NewV7()),
		Path:            container.path,
		Sources:         state.sources,
		Nodes:           state.nodes,
		Meshes:          state.meshes,
		Geometries:      state.geometries,
		Materials:       state.materials,
		DefaultMaterial: state.defaultMaterial,
		Textures:        state.textures,
		Images:          state.images,
		Diagnostics:     state.diagnostics,
	}

	logx.Load(imp.logger, "imported glTF",
		"path", container.path,
		"nodes", len(res.Nodes),
		"meshes", len(res.Meshes),
		"materials", len(res.Materials),
		"textures", len(res.Textures),
		"diagnostics", len(res.Diagnostics),
	)
	return res
}
