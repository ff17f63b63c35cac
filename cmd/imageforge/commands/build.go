package commands

import (
	"context"

	"git.home.luguber.info/inful/imageforge/internal/gitsource"
	"git.home.luguber.info/inful/imageforge/internal/imagebuild"
	"git.home.luguber.info/inful/imageforge/internal/workspace"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Arch     string `short:"a" help:"Build only this architecture (default: all configured)"`
	KeepWork bool   `help:"Keep the workspace directory after the build"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	s, err := newSession(g, root.Config)
	if err != nil {
		return err
	}
	defer s.Close()

	contextDir := s.Cfg.Image.ContextDir

	// A configured source repository is cloned into a fresh workspace; the
	// local context directory is used otherwise.
	if s.Cfg.Source != nil {
		ws := workspace.NewManager("", g.Logger)
		if err := ws.Create(); err != nil {
			if herr := s.Facade.Handle(err, map[string]string{"operation": "workspace-create"}); herr != nil {
				return herr
			}
			if err := ws.Create(); err != nil {
				return err
			}
		}
		if !b.KeepWork {
			defer func() {
				if err := ws.Cleanup(); err != nil {
					g.Logger.Warn("workspace cleanup failed", "error", err)
				}
			}()
		}

		client := gitsource.NewClient(ws.Path(), g.Logger)
		err := s.handleUntilFatal(func() error {
			dir, cerr := client.Clone(s.Cfg.Source)
			if cerr == nil {
				contextDir = dir
			}
			return cerr
		}, map[string]string{"operation": "source-clone"})
		if err != nil {
			return err
		}
	}

	builder := imagebuild.NewStubBuilder(g.Logger)
	architectures := s.Cfg.Image.Architectures
	if b.Arch != "" {
		architectures = []string{b.Arch}
	}

	for _, arch := range architectures {
		err := s.handleUntilFatal(func() error {
			result, berr := builder.Build(context.Background(), s.Cfg.Image, contextDir, arch)
			if berr != nil {
				return berr
			}
			g.Logger.Info("build finished", "build_id", result.BuildID, "image", result.ImageRef, "arch", arch)
			return nil
		}, map[string]string{"operation": "image-build", "architecture": arch})
		if err != nil {
			return err
		}
	}
	return nil
}
