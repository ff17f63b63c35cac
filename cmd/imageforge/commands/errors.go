package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/imageforge/internal/config"
	"git.home.luguber.info/inful/imageforge/internal/errors"
	"git.home.luguber.info/inful/imageforge/internal/eventstore"
)

// ErrorsCmd implements the 'errors' command: inspection of the persistent
// error log written by previous runs.
type ErrorsCmd struct {
	Limit   int    `short:"n" help:"Number of recent entries to show" default:"20"`
	Kind    string `short:"k" help:"Show only failures of this kind"`
	Session string `short:"s" help:"Show only failures from this session ID"`
	Stats   bool   `help:"Show aggregate counts instead of entries"`
	Prune   string `help:"Delete entries older than this duration (e.g. 720h)"`
}

func (e *ErrorsCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return errors.ConfigLoadError(root.Config, err)
	}
	if !cfg.Store.Enabled {
		return fmt.Errorf("error store is disabled; enable store.enabled in %s", root.Config)
	}

	store, err := eventstore.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open error store: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	if e.Prune != "" {
		age, perr := time.ParseDuration(e.Prune)
		if perr != nil {
			return errors.ArgumentError("--prune", "must be a duration like 720h")
		}
		removed, perr := store.Prune(ctx, time.Now().Add(-age))
		if perr != nil {
			return perr
		}
		fmt.Printf("removed %d entries older than %s\n", removed, age)
		return nil
	}

	if e.Stats {
		stats, serr := store.Stats(ctx)
		if serr != nil {
			return serr
		}
		fmt.Printf("total: %d\n", stats.Total)
		for _, kind := range errors.Kinds() {
			if n := stats.ByKind[kind]; n > 0 {
				fmt.Printf("  %-12s %d\n", kind, n)
			}
		}
		for _, sev := range []errors.Severity{errors.SeverityLow, errors.SeverityMedium, errors.SeverityHigh, errors.SeverityCritical} {
			if n := stats.BySeverity[sev]; n > 0 {
				fmt.Printf("  %-12s %d\n", sev, n)
			}
		}
		return nil
	}

	var entries []eventstore.StoredError
	switch {
	case e.Session != "":
		entries, err = store.GetBySession(ctx, e.Session)
	case e.Kind != "":
		entries, err = store.GetByKind(ctx, errors.Kind(e.Kind))
	default:
		entries, err = store.GetRecent(ctx, e.Limit)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("no recorded failures")
		return nil
	}
	for _, entry := range entries {
		fmt.Printf("%s  [%s/%s]  %s\n",
			entry.Timestamp.Format(time.RFC3339), entry.Kind, entry.Severity, entry.Message)
	}
	return nil
}
