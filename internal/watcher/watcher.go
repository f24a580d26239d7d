// Package watcher rebuilds the guideline index when the reference
// document changes on disk.
package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/PjVineeth/vocab-assist/internal/engine"
)

// Watcher monitors the reference document and triggers an index rebuild
// on writes. A failed rebuild leaves the previous index in service.
type Watcher struct {
	watcher *fsnotify.Watcher
	engine  *engine.Engine
	path    string
}

// New creates a watcher for the given document path. The parent directory
// is watched so editors that replace the file atomically are still seen.
func New(eng *engine.Engine, path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{watcher: w, engine: eng, path: path}, nil
}

// Run blocks until ctx is cancelled, rebuilding the index whenever the
// document is written or recreated.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.rebuild(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch error: %v", err)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		log.Printf("reindex skipped, cannot read %s: %v", w.path, err)
		return
	}
	if err := w.engine.BuildIndex(ctx, string(data)); err != nil {
		log.Printf("reindex of %s failed: %v", w.path, err)
		return
	}
	log.Printf("reindexed %s (%d chunks)", w.path, w.engine.ChunkCount())
}
