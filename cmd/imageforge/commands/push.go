package commands

import (
	"context"

	"git.home.luguber.info/inful/imageforge/internal/registry"
)

// PushCmd implements the 'push' command.
type PushCmd struct {
	Arch string `short:"a" help:"Push only this architecture (default: all configured)"`
}

func (p *PushCmd) Run(g *Global, root *CLI) error {
	s, err := newSession(g, root.Config)
	if err != nil {
		return err
	}
	defer s.Close()

	client := registry.NewStubClient(s.Cfg.Registry, g.Logger)
	imageRef := s.Cfg.Image.Name + ":" + s.Cfg.Image.Tag

	architectures := s.Cfg.Image.Architectures
	if p.Arch != "" {
		architectures = []string{p.Arch}
	}

	for _, arch := range architectures {
		err := s.handleUntilFatal(func() error {
			return client.Push(context.Background(), imageRef, arch)
		}, map[string]string{
			"operation":    "registry-push",
			"registry":     s.Cfg.Registry.URL,
			"architecture": arch,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
