package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Kind classifies a changed file.
type Kind int

const (
	Level Kind = iota
	Script
)

func (k Kind) String() string {
	if k == Script {
		return "script"
	}
	return "level"
}

// Change is one debounced file change.
type Change struct {
	Path string
	Kind Kind
}

// Watcher reports edits to level (.yaml/.yml) and script (.lua) files in
// the watched directories. Bursts of events for one file within the
// debounce window collapse into one Change.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      *zap.Logger

	Changes chan Change

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func New(debounce time.Duration, log *zap.Logger, dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
		log.Debug("watching directory", zap.String("dir", dir))
	}

	w := &Watcher{
		watcher:  fw,
		debounce: debounce,
		log:      log,
		Changes:  make(chan Change, 16),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher and closes Changes.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

// Drain returns every change queued so far without blocking.
func (w *Watcher) Drain() []Change {
	var out []Change
	for {
		select {
		case c, ok := <-w.Changes:
			if !ok {
				return out
			}
			out = append(out, c)
		default:
			return out
		}
	}
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.Changes)

	pending := make(map[string]Kind)
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			kind, ok := classify(ev.Name)
			if !ok {
				continue
			}
			pending[filepath.Clean(ev.Name)] = kind
			timer.Reset(w.debounce)
		case <-timer.C:
			for path, kind := range pending {
				select {
				case w.Changes <- Change{Path: path, Kind: kind}:
				case <-w.closeCh:
					return
				}
			}
			clear(pending)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", zap.Error(err))
		case <-w.closeCh:
			return
		}
	}
}

func classify(path string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Level, true
	case ".lua":
		return Script, true
	}
	return 0, false
}
