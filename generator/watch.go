package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// OnChange receives the result of regenerating a changed grammar file, or a
// watcher error with a zero Result.
type OnChange func(Result, error)

// Watcher regenerates grammar files below a directory, or a single grammar
// file, when they change
type Watcher struct {
	watcher *fsnotify.Watcher
	// file is set when a single grammar file is watched
	file string
}

// NewWatcher starts watching input. A directory is watched with all of its
// subdirectories. A file is watched through its parent directory, so that
// editors replacing the file by rename are seen too. Events that happen
// before Run is called are queued.
func NewWatcher(input string) (*Watcher, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{watcher: watcher}

	if info.IsDir() {
		err = w.addDirs(input)
	} else {
		w.file = filepath.Clean(input)
		err = watcher.Add(filepath.Dir(w.file))
	}

	if err != nil {
		watcher.Close()
		return nil, err
	}

	return w, nil
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run handles events until ctx is done or the watcher is closed. Grammar
// files that are created or written are regenerated when stale, and
// directories created later are watched too.
func (w *Watcher) Run(ctx context.Context, opts Options, onChange OnChange) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			w.handleEvent(evt, opts, onChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}

			onChange(Result{}, err)
		}
	}
}

func (w *Watcher) handleEvent(evt fsnotify.Event, opts Options, onChange OnChange) {
	if evt.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	if w.file != "" && filepath.Clean(evt.Name) != w.file {
		return
	}

	info, err := os.Stat(evt.Name)
	if err != nil {
		// removed again before we got here
		return
	}

	if info.IsDir() {
		if evt.Op&fsnotify.Create != 0 {
			if err := w.addDirs(evt.Name); err != nil {
				onChange(Result{}, err)
			}
		}

		return
	}

	if IsGrammarFile(evt.Name) {
		onChange(GenerateFile(evt.Name, opts), nil)
	}
}

// addDirs adds dir and its subdirectories, since fsnotify watches are not recursive.
func (w *Watcher) addDirs(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			return nil
		}

		if path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}

		return w.watcher.Add(path)
	})
}
