// Package watch re-runs work when watched files change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is how long a burst of events must settle before onChange runs
const DefaultDelay = 100 * time.Millisecond

// FileWatcher monitors a fixed set of files. It watches their parent
// directories so files replaced by rename (as most editors save) keep
// being tracked.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	files     map[string]bool
	dirs      []string
	log       *zap.Logger
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewFileWatcher creates a watcher for files. onChange receives the
// changed paths, sorted, once per settled burst of events.
func NewFileWatcher(files []string, log *zap.Logger, onChange func([]string)) (*FileWatcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if log == nil {
		log = zap.NewNop()
	}

	fw := &FileWatcher{
		debouncer: NewDebouncer(DefaultDelay),
		files:     make(map[string]bool),
		log:       log,
		stopChan:  make(chan struct{}),
	}
	seen := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		fw.files[abs] = true
		if dir := filepath.Dir(abs); !seen[dir] {
			seen[dir] = true
			fw.dirs = append(fw.dirs, dir)
		}
	}

	fw.debouncer.SetCallback(func(changed []string) {
		sort.Strings(changed)
		onChange(changed)
	})
	return fw, nil
}

// SetDelay replaces the debounce delay. Call it before Start.
func (fw *FileWatcher) SetDelay(d time.Duration) {
	fw.debouncer.mutex.Lock()
	fw.debouncer.duration = d
	fw.debouncer.mutex.Unlock()
}

// Start begins watching in the background
func (fw *FileWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	for _, dir := range fw.dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		fw.log.Debug("watching directory", zap.String("dir", dir))
	}
	fw.watcher = watcher

	fw.wg.Add(1)
	go fw.watch()
	return nil
}

// Stop stops the watcher and drops pending changes. It is safe to call
// more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopChan)
		fw.wg.Wait()
		fw.debouncer.Stop()
		if fw.watcher != nil {
			err = fw.watcher.Close()
		}
	})
	return err
}

// Run watches until ctx is cancelled
func (fw *FileWatcher) Run(ctx context.Context) error {
	if err := fw.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return fw.Stop()
}

func (fw *FileWatcher) watch() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fw.log.Debug("file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
				fw.debouncer.Add(event.Name)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("watch error", zap.Error(err))

		case <-fw.stopChan:
			return
		}
	}
}

// Debouncer collects file changes and triggers callbacks after a delay
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	callback func([]string)
	stopped  bool
}

// NewDebouncer creates a new debouncer instance
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
	}
}

// Add records a change and restarts the delay
func (d *Debouncer) Add(file string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}
	d.files[file] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

// flush runs the callback outside the lock so it may take its time
func (d *Debouncer) flush() {
	d.mutex.Lock()
	if d.stopped || len(d.files) == 0 {
		d.mutex.Unlock()
		return
	}
	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	d.files = make(map[string]struct{})
	callback := d.callback
	d.mutex.Unlock()

	if callback != nil {
		callback(files)
	}
}

// SetCallback sets the callback function
func (d *Debouncer) SetCallback(callback func([]string)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

// Stop cancels any pending flush
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
