package dqm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Extension of raw run files picked up in online mode.
const RunFileExtension = ".rd"

func isRunFile(path string) bool {
	return strings.HasSuffix(path, RunFileExtension)
}

// WatchRunFiles calls onFile once for every run file already in dir and for
// every run file created there afterwards. It runs until ctx is cancelled.
// Files are passed in the order they are seen; a file is never passed twice.
func WatchRunFiles(ctx context.Context, dir string, onFile func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("error watching %s: %w", dir, err)
	}
	logger.Info(fmt.Sprintf("Watching %s for run files", dir), "watcher")

	seen := make(map[string]bool)
	handle := func(path string) {
		if !isRunFile(path) || seen[path] {
			return
		}
		seen[path] = true
		onFile(path)
	}

	existing, err := existingRunFiles(dir)
	if err != nil {
		return err
	}
	for _, path := range existing {
		handle(path)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Run files are renamed into place once complete, which shows up as Create.
			if !event.Has(fsnotify.Create) {
				continue
			}
			handle(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error(fmt.Sprintf("watcher error: %v", err))
		}
	}
}

func existingRunFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ErrOpenFile{Filename: dir, Err: err}
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !isRunFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
