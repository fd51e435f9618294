package loader

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loaderQueueSize is the task queue depth of the LoadAll worker pool.
const loaderQueueSize = 256

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	searchPath SearchPath
	logger     *slog.Logger
	workers    int
	flipY      bool
	watch      bool
	profiling  bool

	resultCache map[string]*model.ImportResult

	backend loaderBackend
	pool    worker.DynamicWorkerPool
	watcher *resultWatcher
}

// Loader defines the public-facing interface for importing and caching glTF assets.
// It abstracts the file format behind a backend and manages a cache of previous results
// keyed by the name they were requested under. A Loader is safe for concurrent use.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the name is already cached, the cached result is returned without touching the file.
	// The name is resolved against the search roots; .gltf and .glb (any case) are accepted.
	// Partial failures are reported on ImportResult.Diagnostics; err is only set when the
	// container itself could not be read, in which case the result is empty and not cached.
	//
	// Parameters:
	//   - name: the file name, relative to a search root
	//
	// Returns:
	//   - *model.ImportResult: the import result
	//   - error: a fatal error wrapping ErrFileNotFound, ErrUnsupportedFormat or a container error
	Load(name string) (*model.ImportResult, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the result
	//   - r: the reader providing glTF JSON or GLB data
	//   - isGLB: true if the reader provides GLB binary data
	//   - dir: the directory relative URIs in the document resolve against
	//
	// Returns:
	//   - *model.ImportResult: the import result
	//   - error: a fatal container error
	LoadReader(name string, r io.Reader, isGLB bool, dir string) (*model.ImportResult, error)

	// LoadAll imports several files on the loader's worker pool. Each import is independent;
	// results and errors are aligned with names.
	//
	// Parameters:
	//   - names: the file names, relative to a search root
	//
	// Returns:
	//   - []*model.ImportResult: one result per name
	//   - []error: one error per name, nil where the import succeeded
	LoadAll(names []string) ([]*model.ImportResult, []error)

	// Get retrieves a cached result by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *model.ImportResult: the cached result or nil
	Get(name string) *model.ImportResult

	// Models returns a copy of the result cache.
	//
	// Returns:
	//   - map[string]*model.ImportResult: all cached results keyed by name
	Models() map[string]*model.ImportResult

	// Evict removes a cached result so the next Load imports it again.
	//
	// Parameters:
	//   - name: the cache key to remove
	//
	// Returns:
	//   - bool: true if a result was removed
	Evict(name string) bool

	// SearchPath returns the roots names are resolved against.
	SearchPath() SearchPath

	// Close stops watching source files. The cache stays readable.
	//
	// Returns:
	//   - error: error if the file watcher fails to close
	Close() error
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:          sync.RWMutex{},
		searchPath:  NewSearchPath(),
		logger:      logx.Discard(),
		workers:     1,
		resultCache: make(map[string]*model.ImportResult),
	}

	for _, option := range options {
		option(l)
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(newGLTFImporter(l.searchPath, l.logger, l.flipY, l.profiling))
	}

	// The pool is created after options so WithWorkers can override the default.
	l.pool = worker.NewDynamicWorkerPool(l.workers, loaderQueueSize, 1*time.Second)

	if l.watch {
		w, err := newResultWatcher(l.logger, l.evictPath)
		if err != nil {
			l.logger.Error("file watching disabled", "error", err)
		} else {
			l.watcher = w
		}
	}
	return l
}

func (l *loader) Load(name string) (*model.ImportResult, error) {
	l.mu.RLock()
	if cached, ok := l.resultCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(name)
	if err != nil {
		return &model.ImportResult{}, err
	}

	res, err := backend.Load(name)
	if err != nil {
		return res, fmt.Errorf("failed to load %s: %w", name, err)
	}

	l.store(name, res)
	return res, nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool, dir string) (*model.ImportResult, error) {
	l.mu.RLock()
	if cached, ok := l.resultCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	if l.backend == nil {
		return &model.ImportResult{}, ErrUnsupportedFormat
	}

	res, err := l.backend.LoadReader(name, r, isGLB, dir)
	if err != nil {
		return res, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	l.store(name, res)
	return res, nil
}

func (l *loader) LoadAll(names []string) ([]*model.ImportResult, []error) {
	results := make([]*model.ImportResult, len(names))
	errs := make([]error, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		id, n := i, name
		l.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				results[id], errs[id] = l.Load(n)
				return results[id], errs[id]
			},
		})
	}
	wg.Wait()

	return results, errs
}

func (l *loader) Get(name string) *model.ImportResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.resultCache[name]
}

func (l *loader) Models() map[string]*model.ImportResult {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*model.ImportResult, len(l.resultCache))
	for k, v := range l.resultCache {
		result[k] = v
	}
	return result
}

func (l *loader) Evict(name string) bool {
	l.mu.Lock()
	res, ok := l.resultCache[name]
	delete(l.resultCache, name)
	l.mu.Unlock()

	if ok && l.watcher != nil {
		for _, path := range res.Files() {
			l.watcher.Remove(path)
		}
	}
	return ok
}

func (l *loader) SearchPath() SearchPath {
	return l.searchPath
}

func (l *loader) Close() error {
	if l.watcher == nil {
		return nil
	}
	return l.watcher.Close()
}

// store caches res under name and starts watching its container and external files when watching is enabled.
func (l *loader) store(name string, res *model.ImportResult) {
	l.mu.Lock()
	l.resultCache[name] = res
	l.mu.Unlock()

	if l.watcher != nil {
		for _, path := range res.Files() {
			l.watcher.Add(path)
		}
	}
}

// evictPath removes every cached result that read path and stops watching their other files.
func (l *loader) evictPath(path string) {
	l.mu.Lock()
	var evicted []string
	var others []string
	for name, res := range l.resultCache {
		files := res.Files()
		if !slices.Contains(files, path) {
			continue
		}
		delete(l.resultCache, name)
		evicted = append(evicted, name)
		for _, f := range files {
			if f != path {
				others = append(others, f)
			}
		}
	}
	l.mu.Unlock()

	for _, f := range others {
		l.watcher.Remove(f)
	}
	for _, name := range evicted {
		logx.Load(l.logger, "evicted cached result", "name", name, "path", path)
	}
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only glTF/GLB is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		if l.backend == nil {
			return nil, fmt.Errorf("%w: no backend for %s", ErrUnsupportedFormat, ext)
		}
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}
