// Package resume implements a debounced filesystem watcher over a
// validation run's output directory, the mechanism that lets `swesmith
// validate` resume after an interruption: instances that already have a
// report.json on disk are skipped, and a live watcher reports newly
// completed instances to a progress view without any direct callback
// wiring into the worker pool. Adapted from the teacher's
// internal/core/mangle_watcher.go debounce-and-dispatch loop, generalized
// from watching *.mg rule edits to watching report.json completions.
package resume

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"swesmith/internal/logging"
)

// AlreadyDone scans outDir for instance subdirectories that already contain
// a report.json, returning the set of their instance_id_stubs. A resumed
// validate run skips these rather than re-running their container.
func AlreadyDone(outDir string) (map[string]bool, error) {
	done := make(map[string]bool)
	entries, err := os.ReadDir(outDir)
	if err != nil {
		if os.IsNotExist(err) {
			return done, nil
		}
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(outDir, e.Name(), "report.json")); err == nil {
			done[e.Name()] = true
		}
	}
	return done, nil
}

// Watcher watches a validation run's output directory and reports each
// instance_id_stub the instant its report.json is written, debounced so a
// half-written file under concurrent validator workers isn't reported
// twice.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	outDir      string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	onComplete  func(instanceIDStub string)
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// New returns a Watcher over outDir. onComplete is invoked (from the
// watcher's own goroutine) once per instance whose report.json settles.
func New(outDir string, onComplete func(instanceIDStub string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(outDir); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		outDir:      outDir,
		debounceMap: make(map[string]time.Time),
		debounceDur: 300 * time.Millisecond,
		onComplete:  onComplete,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins the non-blocking watch loop.
func (w *Watcher) Start() {
	go w.run()
}

// Stop closes the watcher and waits for its loop to exit.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}

func (w *Watcher) run() {
	defer close(w.doneCh)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryValidator).Warn("resume watcher error: %v", err)
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != "report.json" {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	stub := filepath.Base(filepath.Dir(event.Name))
	w.mu.Lock()
	w.debounceMap[stub] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for stub, t := range w.debounceMap {
		if now.Sub(t) >= w.debounceDur {
			ready = append(ready, stub)
			delete(w.debounceMap, stub)
		}
	}
	w.mu.Unlock()

	for _, stub := range ready {
		if strings.TrimSpace(stub) == "" {
			continue
		}
		w.onComplete(stub)
	}
}
