package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gltf/engine/config"
	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithSearchRoots is an option builder that sets the directories file names are resolved against,
// in priority order. The roots are copied; later changes to the slice have no effect.
//
// Parameters:
//   - roots: the search roots
//
// Returns:
//   - LoaderBuilderOption: a function that applies the search roots option to a loader
func WithSearchRoots(roots ...string) LoaderBuilderOption {
	return func(l *loader) {
		l.searchPath = NewSearchPath(roots...)
	}
}

// WithLogger is an option builder that sets the destination for diagnostics and progress.
// A nil logger discards everything.
//
// Parameters:
//   - logger: the logger instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		l.logger = logx.OrDiscard(logger)
	}
}

// WithWorkers is an option builder that sets the number of concurrent imports run by LoadAll.
//
// Parameters:
//   - n: the worker count, at least 1
//
// Returns:
//   - LoaderBuilderOption: a function that applies the workers option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithFlipImagesY is an option builder that flips every decoded image vertically, for renderers
// whose texture origin is the bottom-left corner.
func WithFlipImagesY(flip bool) LoaderBuilderOption {
	return func(l *loader) {
		l.flipY = flip
	}
}

// WithWatch is an option builder that evicts cached results when their source file changes.
func WithWatch(watch bool) LoaderBuilderOption {
	return func(l *loader) {
		l.watch = watch
	}
}

// WithProfiling is an option builder that logs per-stage timings at the PERF level.
func WithProfiling(profiling bool) LoaderBuilderOption {
	return func(l *loader) {
		l.profiling = profiling
	}
}

// WithResult is an option builder that pre-populates the result cache.
//
// Parameters:
//   - key: the cache key for the result
//   - res: the result to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the result option to a loader
func WithResult(key string, res *model.ImportResult) LoaderBuilderOption {
	return func(l *loader) {
		l.resultCache[key] = res
	}
}

// WithConfig is an option builder that applies every setting of a config.Config except the log
// level, which belongs to the logger passed with WithLogger.
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - LoaderBuilderOption: a function that applies the configuration to a loader
func WithConfig(cfg config.Config) LoaderBuilderOption {
	return func(l *loader) {
		l.searchPath = SearchPath{roots: cfg.Roots()}
		l.workers = max(cfg.Workers, 1)
		l.flipY = cfg.FlipImagesY
		l.watch = cfg.Watch
		l.profiling = cfg.Profiling
	}
}
