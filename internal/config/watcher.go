package config

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher hot-reloads a TOML configuration file, swapping an
// atomic.Pointer[Config] only when the new file parses and validates
// (spec §7.2 "Configuration drift": on a rejected reload, the previous
// valid configuration is retained and a warning is emitted). This is new
// infrastructure the teacher's config package does not have — miface loads
// once at startup — built in the teacher's own Validate-then-use idiom.
type Watcher struct {
	path    string
	current atomic.Pointer[Config]
	fsw     *fsnotify.Watcher
	log     zerolog.Logger
	done    chan struct{}
	once    sync.Once
}

// NewWatcher loads path once synchronously and arms an fsnotify watch on it.
// Pass "" to run with defaults and no file watch (Watcher.Close is then a
// no-op).
func NewWatcher(path string, log zerolog.Logger) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{path: path, log: log, done: make(chan struct{})}
	w.current.Store(cfg)

	if path == "" {
		return w, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching config file: %w", err)
	}
	w.fsw = fsw

	go w.loop()
	return w, nil
}

// Current returns the currently-active, validated configuration.
func (w *Watcher) Current() *Config {
	return w.current.Load()
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("config watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn().Err(err).Msg("rejected config reload, retaining previous configuration")
		return
	}
	w.current.Store(cfg)
	w.log.Info().Msg("configuration reloaded")
}

// Close stops the watch goroutine and releases the fsnotify watcher. Safe to
// call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.fsw != nil {
			err = w.fsw.Close()
		}
	})
	return err
}
