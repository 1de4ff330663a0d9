package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk. Editors often
// replace files instead of writing them, so the parent directory is watched.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	Updates chan *Config
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once

	base     *Config
	override func(*Config)
}

// WatchOption configures how a Watcher builds each reloaded Config.
type WatchOption func(*Watcher)

// WithBase reads every reload over a copy of base instead of DefaultConfig.
func WithBase(base *Config) WatchOption {
	return func(w *Watcher) { w.base = base.Clone() }
}

// WithOverride runs fn on each reloaded Config before it is validated.
func WithOverride(fn func(*Config)) WatchOption {
	return func(w *Watcher) { w.override = fn }
}

func Watch(path string, opts ...WatchOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		watcher: fw,
		Updates: make(chan *Config, 1),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.run()
	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	// Saves arrive as bursts of events; reload once the file
	// has been quiet for the debounce interval.
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

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
			timer.Reset(debounce)
		case <-timer.C:
			cfg, err := w.load()
			if err != nil {
				slog.Warn("config reload failed", "path", w.path, "err", err)
				w.send(nil, err)
				continue
			}
			slog.Info("config reloaded", "path", w.path, "count", cfg.Count)
			w.send(cfg, nil)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.send(nil, err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) load() (*Config, error) {
	cfg, err := LoadInto(w.base, w.path)
	if err != nil {
		return nil, err
	}
	if w.override != nil {
		w.override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// send delivers the newest result, dropping a stale one nobody has read.
func (w *Watcher) send(cfg *Config, err error) {
	if err != nil {
		select {
		case w.Errors <- err:
		default:
		}
		return
	}
	select {
	case <-w.Updates:
	default:
	}
	select {
	case w.Updates <- cfg:
	case <-w.closeCh:
	}
}
