package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - importer: the importer that runs the pipeline
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(importer gltfImporter) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: importer,
	}
}

func (b *gltfLoaderBackendImpl) Load(name string) (*model.ImportResult, error) {
	return b.importer.Import(name)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader, isGLB bool, dir string) (*model.ImportResult, error) {
	return b.importer.ImportReader(name, r, isGLB, dir)
}
