package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch invalidates the path index when the directory behind the store
// changes outside of it (editors, git checkouts, sync tools). It
// watches the filesystem root and every non-hidden subdirectory,
// picking up directories created later. The watcher shuts down when
// ctx is cancelled.
//
// Only meaningful for stores backed by a real directory; the in-memory
// filesystems used in tests have nothing to watch.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	root := s.fs.Root()
	if err := addWatchDirs(watcher, root); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", root, err)
	}

	go s.watchLoop(ctx, watcher, root)
	return nil
}

// addWatchDirs registers root and its subdirectories, skipping hidden
// ones (.git above all).
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, root string) {
	defer watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if hiddenEvent(root, event.Name) {
				continue
			}
			s.index.markStale()
			if event.Op&fsnotify.Create == fsnotify.Create {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						s.log.Warn("watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// hiddenEvent reports whether the event path sits under a hidden
// segment relative to root.
func hiddenEvent(root, name string) bool {
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return false
	}
	return isHiddenPath(filepath.ToSlash(rel))
}
