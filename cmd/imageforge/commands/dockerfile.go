package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/imageforge/internal/dockerfile"
	"git.home.luguber.info/inful/imageforge/internal/errors"
)

// DockerfileCmd implements the 'dockerfile' command.
type DockerfileCmd struct {
	Output string `short:"o" help:"Write the Dockerfile here instead of stdout"`
}

func (d *DockerfileCmd) Run(g *Global, root *CLI) error {
	s, err := newSession(g, root.Config)
	if err != nil {
		return err
	}
	defer s.Close()

	gen := dockerfile.NewStubGenerator(g.Logger)

	var content string
	err = s.handleUntilFatal(func() error {
		out, gerr := gen.Generate(s.Cfg.Image)
		if gerr == nil {
			content = out
		}
		return gerr
	}, map[string]string{"operation": "dockerfile-generate"})
	if err != nil {
		return err
	}

	if content == "" {
		// The stub produced nothing; nothing to write yet.
		return nil
	}

	if d.Output != "" {
		if werr := os.WriteFile(d.Output, []byte(content), 0o644); werr != nil {
			return errors.FileWriteError(d.Output, werr)
		}
		return nil
	}
	fmt.Print(content)
	return nil
}
