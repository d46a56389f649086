package cli

import (
	"path/filepath"
	"sync"
	"time"

	cydterm "github.com/CheshirCa/CYD-terminal"
	"github.com/fsnotify/fsnotify"
)

const schemeReloadDebounce = 100 * time.Millisecond

// schemeWatcher reloads the color scheme file when it changes on disk.
// Events are debounced because editors typically emit several writes
// per save.
type schemeWatcher struct {
	watcher *fsnotify.Watcher
	term    *Terminal
	path    string

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

func newSchemeWatcher(term *Terminal, path string) (*schemeWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &schemeWatcher{
		watcher: watcher,
		term:    term,
		path:    filepath.Clean(path),
	}

	// Watch the directory: saves that replace the file would otherwise
	// drop the watch.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

func (w *schemeWatcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *schemeWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(schemeReloadDebounce, w.reload)
}

func (w *schemeWatcher) reload() {
	scheme, err := cydterm.LoadColorScheme(w.path)
	if err != nil {
		return
	}
	w.term.setScheme(scheme)
}

func (w *schemeWatcher) Close() {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.watcher.Close()
}
