package identity

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports identity changes made to a FileStore's file by other
// processes. The parent directory is watched because writers replace the
// file by rename.
type Watcher struct {
	Changes <-chan Identity // Read-only external channel

	store   *FileStore
	changes chan Identity
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for store. Call Start to begin watching.
func NewWatcher(store *FileStore) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Identity, 8)
	return &Watcher{
		Changes: ch,
		store:   store,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start begins watching the store's directory, creating it if necessary.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.store.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce bursts (write temp + rename) into a single reload.
	const debounce = 100 * time.Millisecond
	var pending time.Time
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	target := filepath.Clean(w.store.Path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if !pending.IsZero() {
					w.reload()
				}
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= debounce {
				pending = time.Time{}
				w.reload()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Ignore watch errors; they're non-fatal.
		}
	}
}

func (w *Watcher) reload() {
	changed, err := w.store.Reload()
	if err != nil || !changed {
		return
	}
	select {
	case w.changes <- w.store.Snapshot():
	default:
		// Slow consumer: drop, the next change carries the latest state.
	}
}
