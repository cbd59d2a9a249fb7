package typegen

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/convex-typegen/config"
	"github.com/teranos/convex-typegen/errors"
	"github.com/teranos/convex-typegen/logger"
)

// DefaultDebounce collapses the burst of events a single save produces.
const DefaultDebounce = 300 * time.Millisecond

// ResultFunc receives the outcome of every generation run in watch mode.
type ResultFunc func(*Result, error)

// Watcher regenerates the output whenever the schema or a function file
// changes.
type Watcher struct {
	cfg      *config.Config
	onResult ResultFunc
	debounce time.Duration
	watcher  *fsnotify.Watcher
	// absolute paths of the watched inputs
	files map[string]bool
	log   *zap.SugaredLogger
}

// NewWatcher creates a watcher for the inputs named by cfg. Parent
// directories are watched rather than the files, so editors that save by
// renaming a temporary file are noticed too.
func NewWatcher(cfg *config.Config, onResult ResultFunc) (*Watcher, error) {
	if onResult == nil {
		onResult = func(*Result, error) {}
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		cfg:      cfg,
		onResult: onResult,
		debounce: DefaultDebounce,
		watcher:  fw,
		files:    make(map[string]bool),
		log:      logger.Named("typegen.watch"),
	}

	dirs := make(map[string]bool)
	for _, p := range append([]string{cfg.SchemaPath}, cfg.FunctionPaths...) {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, errors.NewIOError(p, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
	}
	return w, nil
}

// SetDebounce overrides DefaultDebounce.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run generates once, then again after every change, until ctx is done.
// Generation errors are reported to the callback and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	w.generate(ctx)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugw("Watcher detected change",
				"file", event.Name,
				"op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.generate(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", "error", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	return err == nil && w.files[abs]
}

func (w *Watcher) generate(ctx context.Context) {
	res, err := Generate(ctx, w.cfg)
	if err != nil {
		w.log.Warnw("Generation failed", "error", err)
	}
	w.onResult(res, err)
}

// Watch runs a Watcher for cfg until ctx is done.
func Watch(ctx context.Context, cfg *config.Config, onResult ResultFunc) error {
	w, err := NewWatcher(cfg, onResult)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx)
}
