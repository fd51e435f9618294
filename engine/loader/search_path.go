package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-gltf/engine/config"
	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
)

// SearchPath is an ordered list of root directories that asset names are resolved against.
// It is immutable once built and safe to share between concurrent imports.
type SearchPath struct {
	roots []string
}

// NewSearchPath builds a SearchPath. Each root has "~" expanded and a trailing separator appended;
// an empty list resolves against the working directory.
//
// Parameters:
//   - roots: the candidate root directories, in priority order
//
// Returns:
//   - SearchPath: the search path
func NewSearchPath(roots ...string) SearchPath {
	return SearchPath{roots: config.NormalizeRoots(roots)}
}

// Roots returns a copy of the roots in priority order.
func (s SearchPath) Roots() []string {
	if len(s.roots) == 0 {
		return []string{config.DefaultSearchRoot}
	}
	out := make([]string, len(s.roots))
	copy(out, s.roots)
	return out
}

// Resolve returns the first root + name that exists as a regular file. Absolute names are checked as given.
//
// Parameters:
//   - name: the asset file name, relative to a root
//   - logger: receives each candidate at the Verbose level
//
// Returns:
//   - string: the resolved path
//   - error: wrapping ErrFileNotFound when no root holds the file
func (s SearchPath) Resolve(name string, logger *slog.Logger) (string, error) {
	logger = logx.OrDiscard(logger)

	candidates := make([]string, 0, len(s.roots))
	if filepath.IsAbs(name) {
		candidates = append(candidates, name)
	} else {
		for _, root := range s.Roots() {
			candidates = append(candidates, root+name)
		}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		found := err == nil && info.Mode().IsRegular()
		logx.Verbose(logger, "search path candidate", "path", candidate, "found", found)
		if found {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFileNotFound, name)
}
