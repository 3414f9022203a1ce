package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const DefaultDebounce = 200 * time.Millisecond

// Action is run with the current file content.
type Action func(ctx context.Context, data []byte) error

// Watcher runs an action whenever the content of one file changes.
// Editors often replace files instead of writing them in place, so the
// file's directory is watched and events are filtered by name.
type Watcher struct {
	path     string
	debounce time.Duration
	log      zerolog.Logger
}

func NewWatcher(path string, debounce time.Duration, log zerolog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: filepath.Clean(path), debounce: debounce, log: log}
}

// Run calls action once for the current content, then again after every
// burst of file events that leaves the content changed. Action errors are
// logged and watching continues. Run returns when ctx is done.
func (w *Watcher) Run(ctx context.Context, action Action) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}
	last := Sum(data)
	w.run(ctx, action, data)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			w.log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("file event")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("file watcher error")
		case <-fire:
			fire = nil
			data, err := os.ReadFile(w.path)
			if err != nil {
				w.log.Warn().Err(err).Str("file", w.path).Msg("failed to read watched file")
				continue
			}
			sum := Sum(data)
			if sum == last {
				w.log.Debug().Str("file", w.path).Msg("content unchanged")
				continue
			}
			last = sum
			w.run(ctx, action, data)
		}
	}
}

func (w *Watcher) run(ctx context.Context, action Action, data []byte) {
	start := time.Now()
	if err := action(ctx, data); err != nil {
		w.log.Error().Err(err).Str("file", w.path).Msg("action failed")
		return
	}
	w.log.Info().Str("file", w.path).Dur("took", time.Since(start)).Msg("action completed")
}
