package config

import (
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher delivers a change notification when the config file is rewritten by
// an external editor. Editors write via rename or truncate+write, usually in
// bursts, so events are coalesced before notifying.
type Watcher struct {
	fw   *fsnotify.Watcher
	path string
	log  zerolog.Logger

	// Changes receives one signal per coalesced burst of file events.
	Changes chan struct{}

	done chan struct{}
}

// Watch starts watching the given config file path.
func Watch(path string, log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: rename-based saves replace the
	// inode and would silently detach a file watch.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		fw:      fw,
		path:    path,
		log:     log,
		Changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	coalesce := debounce.New(250 * time.Millisecond)

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			coalesce(w.notify)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("config watch error")
		}
	}
}

func (w *Watcher) notify() {
	select {
	case w.Changes <- struct{}{}:
	default: // a notification is already pending
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
