package commands

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/imageforge/internal/metrics"
	"git.home.luguber.info/inful/imageforge/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Interval time.Duration `help:"Periodic revalidation interval (0 disables)" default:"5m"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	s, err := newSession(g, root.Config)
	if err != nil {
		return err
	}
	defer s.Close()

	if s.Cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		s.Facade.WithRecorder(metrics.NewPrometheusRecorder(reg))

		srv := &http.Server{
			Addr:              s.Cfg.Metrics.Listen,
			Handler:           metrics.HTTPHandler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			g.Logger.Info("metrics listening", "addr", s.Cfg.Metrics.Listen)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				g.Logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	watcher, err := watch.New(root.Config, s.Facade, g.Logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watcher.Start(ctx, w.Interval)
}
