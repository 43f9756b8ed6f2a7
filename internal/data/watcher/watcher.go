// Package watcher pushes filesystem change hints for JSONL usage logs.
// Events only shorten the wait before the next polling cycle; the scanner
// remains the source of truth for which files exist.
package watcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/util"
)

type FileWatcher struct {
	watcher *fsnotify.Watcher
	roots   []string
	events  chan model.FileEvent
}

// NewFileWatcher watches the given roots recursively. Roots missing at
// start are tolerated and simply not watched.
func NewFileWatcher(roots []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		roots:   roots,
		events:  make(chan model.FileEvent, 100),
	}

	for _, root := range roots {
		fw.addPath(root)
	}

	go fw.processEvents()

	return fw, nil
}

func (fw *FileWatcher) addPath(path string) {
	// Recursively add directories; unreadable entries are skipped.
	filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() {
			fw.watcher.Add(p)
		}

		return nil
	})
}

func (fw *FileWatcher) processEvents() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				// New directories under a watched root need their own watch.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					fw.addPath(event.Name)
					continue
				}
			}

			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.HasSuffix(strings.ToLower(event.Name), ".jsonl") {
				continue
			}

			// Hints are droppable: a full buffer already guarantees a wakeup.
			select {
			case fw.events <- model.FileEvent{Path: event.Name, Operation: event.Op.String()}:
			default:
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File monitoring error: " + err.Error())
		}
	}
}

func (fw *FileWatcher) Events() <-chan model.FileEvent {
	return fw.events
}

func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
