package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const reloadDebounce = 250 * time.Millisecond

// Watcher reloads a File config when it changes on disk.
type Watcher struct {
	file     *File
	onReload func()

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	stopOnce  sync.Once

	debounceMu sync.Mutex
	debounce   *time.Timer
}

// Watch starts watching the directory of f. Editors often replace files
// instead of writing them in place, so the directory is watched rather than
// the file itself. onReload is called after every successful reload.
func Watch(f *File, onReload func()) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create config watcher")
	}

	dir := filepath.Dir(f.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = fsWatcher.Close()
		return nil, pkgerrors.Wrapf(err, "failed to create %s", dir)
	}
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, pkgerrors.Wrapf(err, "failed to watch %s", dir)
	}

	w := &Watcher{
		file:      f,
		onReload:  onReload,
		fsWatcher: fsWatcher,
		done:      make(chan struct{}),
	}
	go w.processEvents()

	return w, nil
}

// Stop stops watching.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	target := filepath.Clean(w.file.Path())

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logrus.WithError(err).Warn("config watcher error")
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(reloadDebounce, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	if err := w.file.Load(); err != nil {
		logrus.WithError(err).Error("failed to reload config, keeping the previous one")
		return
	}
	logrus.WithFields(w.file.LogrusFields()).Info("config reloaded")

	if w.onReload != nil {
		w.onReload()
	}
}
