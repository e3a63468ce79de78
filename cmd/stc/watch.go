package main

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSourceTree watches every directory under root and reports a debounced
// signal on the returned channel whenever a .st file is created, written,
// removed, or renamed. The close func stops the watcher and must be called
// once the caller is done. Grounded on standardbeagle-lci's
// internal/indexing.FileWatcher: recursively fsnotify.Add every directory,
// then drain Events/Errors on a background goroutine, debouncing bursts of
// editor saves into a single rebuild trigger.
func watchSourceTree(root string) (<-chan struct{}, func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		w.Close()
		return nil, nil, err
	}

	out := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(out)
		var pending bool
		debounce := time.NewTimer(time.Hour)
		if !debounce.Stop() {
			<-debounce.C
		}
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(ev.Name, ".st") {
					continue
				}
				if !pending {
					pending = true
					debounce.Reset(150 * time.Millisecond)
				}
			case <-debounce.C:
				pending = false
				select {
				case out <- struct{}{}:
				default:
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	closeFn := func() {
		close(done)
		w.Close()
	}
	return out, closeFn, nil
}
