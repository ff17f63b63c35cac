package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/imageforge/internal/config"
	"git.home.luguber.info/inful/imageforge/internal/errors"
	"git.home.luguber.info/inful/imageforge/internal/events"
	"git.home.luguber.info/inful/imageforge/internal/eventstore"
	"git.home.luguber.info/inful/imageforge/internal/handler"
)

// Global carries state shared by subcommands. The logger is constructed once
// at process start and threaded through explicitly instead of relying on the
// process-wide default.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command definition.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"imageforge.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build      BuildCmd      `cmd:"" help:"Build the configured container image"`
	Push       PushCmd       `cmd:"" help:"Push built images to the registry"`
	Manifest   ManifestCmd   `cmd:"" help:"Create the multi-arch manifest list"`
	Test       TestCmd       `cmd:"" help:"Run the built image's local smoke test"`
	Dockerfile DockerfileCmd `cmd:"" help:"Generate the Dockerfile"`
	Init       InitCmd       `cmd:"" help:"Initialize a new configuration file"`
	Errors     ErrorsCmd     `cmd:"" help:"Inspect the persistent error log"`
	Watch      WatchCmd      `cmd:"" help:"Watch the configuration file and revalidate on change"`

	logger *slog.Logger
}

// AfterApply runs after flag parsing; sets up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// Logger returns the logger built in AfterApply.
func (c *CLI) Logger() *slog.Logger {
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return c.logger
}

// session holds the failure handling engine plus the resources behind it.
type session struct {
	ID     string
	Cfg    *config.Config
	Facade *handler.Facade

	store eventstore.Store
	pub   events.Publisher
}

// newSession loads the config and assembles the handler facade with the
// configured side channels.
func newSession(g *Global, configPath string) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.ConfigLoadError(configPath, err)
	}

	s := &session{
		ID:     uuid.NewString(),
		Cfg:    cfg,
		Facade: handler.New(cfg.HandlerOptions(), g.Logger),
	}

	if cfg.Store.Enabled {
		store, err := eventstore.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			// A broken side channel must not block the run.
			g.Logger.Warn("error store unavailable", "path", cfg.Store.Path, "error", err)
		} else {
			s.store = store
			s.Facade.WithSink(handler.NewStoreSink(store, s.ID))
		}
	}

	if cfg.Events.Enabled {
		pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject, g.Logger)
		if err != nil {
			g.Logger.Warn("event publisher unavailable", "url", cfg.Events.NATSURL, "error", err)
		} else {
			s.pub = pub
			s.Facade.WithSink(handler.NewPublishSink(pub, s.ID))
		}
	}

	return s, nil
}

// Close releases the session's side channels.
func (s *session) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.pub != nil {
		s.pub.Close()
	}
}

// handleUntilFatal feeds a failing operation through the facade, re-running
// it while recovery reports success. The first failure's normalized record is
// reused on subsequent attempts so the retry budget tracks one identity key.
// Returns nil when the operation eventually succeeds, or the final
// normalized failure.
func (s *session) handleUntilFatal(op func() error, context map[string]string) error {
	var rec *errors.ErrorRecord
	for {
		err := op()
		if err == nil {
			return nil
		}
		if rec == nil {
			rec = errors.Normalize(err, context)
		}
		if herr := s.Facade.Handle(rec, nil); herr != nil {
			return herr
		}
	}
}
