// Package registry will push images and manifests to container registries.
package registry

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/imageforge/internal/config"
)

// Client talks to a container registry.
type Client interface {
	// Push uploads one architecture image.
	Push(ctx context.Context, imageRef, arch string) error

	// CreateManifest assembles the multi-arch manifest list.
	CreateManifest(ctx context.Context, imageRef string, architectures []string) error
}

// StubClient is the placeholder until a registry backend is integrated.
type StubClient struct {
	cfg    config.RegistryConfig
	logger *slog.Logger
}

// NewStubClient returns the placeholder client.
func NewStubClient(cfg config.RegistryConfig, logger *slog.Logger) *StubClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubClient{cfg: cfg, logger: logger}
}

func (c *StubClient) Push(ctx context.Context, imageRef, arch string) error {
	c.logger.Warn("registry push not yet implemented", "image", imageRef, "arch", arch, "registry", c.cfg.URL)
	return nil
}

func (c *StubClient) CreateManifest(ctx context.Context, imageRef string, architectures []string) error {
	c.logger.Warn("manifest creation not yet implemented", "image", imageRef, "architectures", architectures, "registry", c.cfg.URL)
	return nil
}
