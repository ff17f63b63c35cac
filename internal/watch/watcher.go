// Package watch monitors the configuration file and revalidates it on change.
// Validation failures are routed through the failure handler, so watch mode
// continuously exercises classification and recovery.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/imageforge/internal/config"
	"git.home.luguber.info/inful/imageforge/internal/handler"
)

const defaultDebounce = 2 * time.Second

// Watcher reloads and validates the config whenever it changes on disk.
type Watcher struct {
	configPath string
	facade     *handler.Facade
	logger     *slog.Logger

	watcher   *fsnotify.Watcher
	scheduler gocron.Scheduler
	debounce  time.Duration

	reloadChan chan struct{}

	// onValid is called with each successfully reloaded config.
	onValid func(*config.Config)
}

// New creates a watcher for the given config path.
func New(configPath string, facade *handler.Facade, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		configPath: absPath,
		facade:     facade,
		logger:     logger,
		watcher:    fsw,
		debounce:   defaultDebounce,
		reloadChan: make(chan struct{}, 1),
	}, nil
}

// OnValid registers a callback invoked after each successful reload.
func (w *Watcher) OnValid(fn func(*config.Config)) {
	w.onValid = fn
}

// WithDebounce overrides the debounce interval (tests only).
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Start begins watching. When revalidateEvery is positive a periodic
// revalidation job runs as well, catching drift fsnotify cannot see, such as
// referenced env vars changing meaning. Blocks until ctx is done.
func (w *Watcher) Start(ctx context.Context, revalidateEvery time.Duration) error {
	// Watching the directory survives editors that replace the file.
	configDir := filepath.Dir(w.configPath)
	if err := w.watcher.Add(configDir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", configDir, err)
	}

	if revalidateEvery > 0 {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		if _, err := scheduler.NewJob(
			gocron.DurationJob(revalidateEvery),
			gocron.NewTask(w.reload),
			gocron.WithName("config-revalidation"),
		); err != nil {
			return fmt.Errorf("failed to schedule revalidation: %w", err)
		}
		scheduler.Start()
		w.scheduler = scheduler
	}

	w.logger.Info("watching configuration", "path", w.configPath, "revalidate_every", revalidateEvery)

	go w.reloadLoop(ctx)
	w.watchLoop(ctx)

	if w.scheduler != nil {
		if err := w.scheduler.Shutdown(); err != nil {
			w.logger.Warn("scheduler shutdown failed", "error", err)
		}
	}
	return w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	configFile := filepath.Base(w.configPath)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}
			switch {
			case event.Op.Has(fsnotify.Write), event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Rename):
				w.logger.Debug("config change detected", "op", event.Op.String())
				w.triggerReload()
			case event.Op.Has(fsnotify.Remove):
				w.logger.Warn("config file removed", "path", event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) triggerReload() {
	select {
	case w.reloadChan <- struct{}{}:
	default: // reload already pending
	}
}

func (w *Watcher) reloadLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.reloadChan:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()
		}
	}
}

// reload loads and validates the config, feeding failures to the handler.
func (w *Watcher) reload() {
	cfg, err := config.Load(w.configPath)
	if err != nil {
		if herr := w.facade.Handle(err, map[string]string{
			"path":      w.configPath,
			"operation": "config-reload",
		}); herr != nil {
			w.logger.Error("configuration invalid", "error", herr)
		}
		return
	}

	w.logger.Info("configuration reloaded", "image", cfg.Image.Name)
	if w.onValid != nil {
		w.onValid(cfg)
	}
}
