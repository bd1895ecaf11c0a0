package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileWatcher reports changes to a set of files. It watches their
// directories, since editors often replace a file instead of writing it, and
// coalesces bursts of events per file into one callback.
//
// A path naming a directory stands for every file in it with extension Ext.
type FileWatcher struct {
	Paths    []string
	Ext      string
	Debounce time.Duration
	onChange func(string) // called with path that changed
	log      *zap.Logger

	fw     *fsnotify.Watcher
	stopCh chan struct{}
	done   chan struct{}
}

// NewFileWatcher creates a watcher for given paths.
func NewFileWatcher(paths []string, onChange func(string), log *zap.Logger) *FileWatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileWatcher{
		Paths:    paths,
		Ext:      ".yaml",
		Debounce: 100 * time.Millisecond,
		onChange: onChange,
		log:      log,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins watching in a goroutine.
func (w *FileWatcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	wanted := make(map[string]bool, len(w.Paths))
	dirs := make(map[string]bool)
	whole := make(map[string]bool)
	for _, p := range w.Paths {
		p = filepath.Clean(p)
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			whole[p] = true
			dirs[p] = true
			continue
		}
		wanted[p] = true
		dirs[filepath.Dir(p)] = true
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			_ = fw.Close()
			return err
		}
	}
	w.fw = fw
	go w.run(wanted, whole)
	return nil
}

func (w *FileWatcher) run(wanted, whole map[string]bool) {
	defer close(w.done)

	pending := make(map[string]bool)
	var fire <-chan time.Time
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			name := filepath.Clean(ev.Name)
			if !wanted[name] && !(whole[filepath.Dir(name)] && filepath.Ext(name) == w.Ext) {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			pending[name] = true
			fire = time.After(w.Debounce)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch", zap.Error(err))
		case <-fire:
			fire = nil
			for p := range pending {
				delete(pending, p)
				if w.onChange != nil {
					w.onChange(p)
				}
			}
		case <-w.stopCh:
			return
		}
	}
}

// Stop terminates the watcher and waits for its goroutine.
func (w *FileWatcher) Stop() {
	if w.fw == nil {
		return
	}
	close(w.stopCh)
	_ = w.fw.Close()
	<-w.done
}
