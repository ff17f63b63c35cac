package commands

import (
	"context"

	"git.home.luguber.info/inful/imageforge/internal/registry"
)

// ManifestCmd implements the 'manifest' command.
type ManifestCmd struct{}

func (m *ManifestCmd) Run(g *Global, root *CLI) error {
	s, err := newSession(g, root.Config)
	if err != nil {
		return err
	}
	defer s.Close()

	client := registry.NewStubClient(s.Cfg.Registry, g.Logger)
	imageRef := s.Cfg.Image.Name + ":" + s.Cfg.Image.Tag

	return s.handleUntilFatal(func() error {
		return client.CreateManifest(context.Background(), imageRef, s.Cfg.Image.Architectures)
	}, map[string]string{
		"operation": "manifest-create",
		"registry":  s.Cfg.Registry.URL,
	})
}
