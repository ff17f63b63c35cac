package commands

import (
	"context"

	"git.home.luguber.info/inful/imageforge/internal/imagebuild"
)

// TestCmd implements the 'test' command.
type TestCmd struct {
	Image string `help:"Image reference to test (default: configured name:tag)"`
}

func (t *TestCmd) Run(g *Global, root *CLI) error {
	s, err := newSession(g, root.Config)
	if err != nil {
		return err
	}
	defer s.Close()

	imageRef := t.Image
	if imageRef == "" {
		imageRef = s.Cfg.Image.Name + ":" + s.Cfg.Image.Tag
	}

	builder := imagebuild.NewStubBuilder(g.Logger)
	return s.handleUntilFatal(func() error {
		return builder.Test(context.Background(), imageRef)
	}, map[string]string{"operation": "image-test"})
}
