package loader

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/fsnotify/fsnotify"
)

// resultWatcher reports changes to the source files of cached results.
// Directories are watched rather than the files themselves so that editors that save by
// replacing the file are still seen.
type resultWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	onChange func(path string)

	// files maps an absolute path to the path it was added under and how many results read it.
	files map[string]*watchedFile
	// dirs counts the watched files in each directory.
	dirs map[string]int

	done chan struct{}
}

type watchedFile struct {
	path string
	refs int
}

func newResultWatcher(logger *slog.Logger, onChange func(path string)) (*resultWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &resultWatcher{
		watcher:  fw,
		logger:   logger,
		onChange: onChange,
		files:    make(map[string]*watchedFile),
		dirs:     make(map[string]int),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Add starts reporting changes to path.
func (w *resultWatcher) Add(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		w.logger.Warn("cannot watch file", "path", path, "error", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if f, ok := w.files[abs]; ok {
		f.refs++
		return
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("cannot watch directory", "dir", dir, "error", err)
			return
		}
	}
	w.dirs[dir]++
	w.files[abs] = &watchedFile{path: path, refs: 1}
	logx.Verbose(w.logger, "watching file", "path", abs)
}

// Remove releases one Add of path; changes stop being reported once every Add is released.
func (w *resultWatcher) Remove(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if f, ok := w.files[abs]; ok {
		f.refs--
		if f.refs <= 0 {
			w.forget(abs)
		}
	}
}

// forget drops abs and, with it, the directory watch once no file in it is left. w.mu must be held.
func (w *resultWatcher) forget(abs string) {
	if _, ok := w.files[abs]; !ok {
		return
	}
	delete(w.files, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.watcher.Remove(dir)
	}
}

func (w *resultWatcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.watcher.Close()
}

func (w *resultWatcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Create) {
				continue
			}
			w.changed(event.Name, event.Op)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *resultWatcher) changed(name string, op fsnotify.Op) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return
	}

	w.mu.Lock()
	f, ok := w.files[abs]
	if ok {
		w.forget(abs)
	}
	w.mu.Unlock()

	if ok {
		logx.Verbose(w.logger, "watched file changed", "path", abs, "op", op.String())
		w.onChange(f.path)
	}
}
