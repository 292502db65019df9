// Package watcher observes the drop directory and produces stable files:
// entries whose size and modification time stayed unchanged across a fixed
// number of consecutive polling samples.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type Config struct {
	DropDir        string
	PollInterval   time.Duration
	StableSamples  int
	RescanInterval time.Duration
}

func (c Config) normalize() Config {
	out := c
	if out.PollInterval <= 0 {
		out.PollInterval = 500 * time.Millisecond
	}
	if out.StableSamples <= 0 {
		out.StableSamples = 2
	}
	if out.RescanInterval <= 0 {
		out.RescanInterval = 10 * time.Second
	}
	return out
}

// StableFile is one ready-to-process drop-directory entry.
type StableFile struct {
	Path      string
	FirstSeen time.Time
}

type pendingFile struct {
	firstSeen   time.Time
	sampled     bool
	lastSize    int64
	lastMod     time.Time
	stableCount int
}

type Watcher struct {
	cfg       Config
	fsWatcher *fsnotify.Watcher
	logger    *slog.Logger

	// pending and order track candidates under stability polling; order
	// preserves detection order so ties emit first-seen-first.
	pending map[string]*pendingFile
	order   []string

	// inFlight guards against a second job for a path whose first job
	// has not reached a terminal state. Workers release entries, so it
	// takes its own lock.
	mu       sync.Mutex
	inFlight map[string]struct{}

	stable chan StableFile

	// StabilityObserver, when set, receives the delay between first
	// sighting and stability.
	StabilityObserver func(wait time.Duration)
}

// New initializes the filesystem watch. A failure here is process-fatal
// for the daemon: without the watch mechanism there is nothing to run.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	cfg = cfg.normalize()

	if err := os.MkdirAll(cfg.DropDir, 0o755); err != nil {
		return nil, fmt.Errorf("create drop dir: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("init fsnotify: %w", err)
	}
	if err := fsWatcher.Add(cfg.DropDir); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch drop dir: %w", err)
	}

	return &Watcher{
		cfg:       cfg,
		fsWatcher: fsWatcher,
		logger:    logger,
		pending:   make(map[string]*pendingFile),
		inFlight:  make(map[string]struct{}),
		stable:    make(chan StableFile, 64),
	}, nil
}

// Stable is the stream of stable file paths, first-stable-first.
func (w *Watcher) Stable() <-chan StableFile {
	return w.stable
}

// Release marks a path's job as terminal so a re-drop can trigger again.
func (w *Watcher) Release(path string) {
	w.mu.Lock()
	delete(w.inFlight, path)
	w.mu.Unlock()
}

func (w *Watcher) claim(path string) {
	w.mu.Lock()
	w.inFlight[path] = struct{}{}
	w.mu.Unlock()
}

func (w *Watcher) busy(path string) bool {
	w.mu.Lock()
	_, ok := w.inFlight[path]
	w.mu.Unlock()
	return ok
}

// Run drives the watch loop until the context is canceled. A failure of
// the underlying notification stream is returned as a fatal error;
// per-file I/O problems are logged and the file is skipped.
func (w *Watcher) Run(ctx context.Context) error {
	w.rescan()

	poll := time.NewTicker(w.cfg.PollInterval)
	defer poll.Stop()
	rescan := time.NewTicker(w.cfg.RescanInterval)
	defer rescan.Stop()
	defer w.fsWatcher.Close()
	defer close(w.stable)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return fmt.Errorf("filesystem watch stream closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.track(event.Name)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return fmt.Errorf("filesystem watch error stream closed")
			}
			w.logger.Warn("watch_error", "error", err)

		case <-poll.C:
			w.pollPending(ctx)

		case <-rescan.C:
			// Safety net for events lost while the process was busy.
			w.rescan()
		}
	}
}

func (w *Watcher) rescan() {
	entries, err := os.ReadDir(w.cfg.DropDir)
	if err != nil {
		w.logger.Warn("rescan_failed", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.track(filepath.Join(w.cfg.DropDir, entry.Name()))
	}
}

func (w *Watcher) track(path string) {
	if ignoredName(filepath.Base(path)) {
		return
	}
	if w.busy(path) {
		return
	}
	if _, known := w.pending[path]; known {
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	w.pending[path] = &pendingFile{firstSeen: time.Now()}
	w.order = append(w.order, path)
	w.logger.Info("file_detected", "path", path)
}

func (w *Watcher) pollPending(ctx context.Context) {
	var keep []string
	for _, path := range w.order {
		p, ok := w.pending[path]
		if !ok {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				w.logger.Warn("stability_poll_failed", "path", path, "error", err)
			}
			// Vanished before stability: dropped silently, no job.
			delete(w.pending, path)
			continue
		}

		if p.sampled && info.Size() == p.lastSize && info.ModTime().Equal(p.lastMod) {
			p.stableCount++
		} else {
			p.sampled = true
			p.lastSize = info.Size()
			p.lastMod = info.ModTime()
			p.stableCount = 0
		}

		if p.stableCount < w.cfg.StableSamples {
			keep = append(keep, path)
			continue
		}

		delete(w.pending, path)
		w.claim(path)
		if w.StabilityObserver != nil {
			w.StabilityObserver(time.Since(p.firstSeen))
		}
		w.logger.Info("file_stable", "path", path)

		select {
		case w.stable <- StableFile{Path: path, FirstSeen: p.firstSeen}:
		case <-ctx.Done():
			return
		}
	}
	w.order = keep
}

// ignoredName filters hidden and temporary entries (.DS_Store, editor
// swap files, partial downloads).
func ignoredName(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasPrefix(name, "~") ||
		strings.HasSuffix(name, ".tmp") ||
		strings.HasSuffix(name, ".part")
}
