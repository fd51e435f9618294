package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// loaderBackend defines the generic interface for importing models from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load performs a full import of the named file.
	//
	// Parameters:
	//   - name: the file name, resolved against the search roots
	//
	// Returns:
	//   - *model.ImportResult: the import result, empty on error
	//   - error: error if the container could not be read
	Load(name string) (*model.ImportResult, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - name: the name recorded on the result
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data, false for text-based formats
	//   - dir: the directory relative URIs resolve against
	//
	// Returns:
	//   - *model.ImportResult: the import result, empty on error
	//   - error: error if the container could not be read
	LoadReader(name string, r io.Reader, isGLB bool, dir string) (*model.ImportResult, error)
}
