// Package dockerfile will render hardened Dockerfiles from templates.
package dockerfile

import (
	"log/slog"

	"git.home.luguber.info/inful/imageforge/internal/config"
)

// Generator renders a Dockerfile for the configured image.
type Generator interface {
	// Generate returns the rendered Dockerfile content.
	Generate(img config.ImageConfig) (string, error)
}

// StubGenerator is the placeholder until template rendering lands.
type StubGenerator struct {
	logger *slog.Logger
}

// NewStubGenerator returns the placeholder generator.
func NewStubGenerator(logger *slog.Logger) *StubGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubGenerator{logger: logger}
}

func (g *StubGenerator) Generate(img config.ImageConfig) (string, error) {
	g.logger.Warn("dockerfile generation not yet implemented", "image", img.Name, "base", img.BaseImage)
	return "", nil
}
