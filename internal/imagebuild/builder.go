// Package imagebuild will drive the container image build.
package imagebuild

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/imageforge/internal/config"
)

// Result describes one finished build.
type Result struct {
	BuildID      string
	ImageRef     string
	Architecture string
}

// Builder produces container images from a build context.
type Builder interface {
	// Build builds the image for one architecture from contextDir.
	Build(ctx context.Context, img config.ImageConfig, contextDir, arch string) (*Result, error)

	// Test runs the built image's smoke test locally.
	Test(ctx context.Context, imageRef string) error
}

// StubBuilder is the placeholder until a builder backend is integrated.
type StubBuilder struct {
	logger *slog.Logger
}

// NewStubBuilder returns the placeholder builder.
func NewStubBuilder(logger *slog.Logger) *StubBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubBuilder{logger: logger}
}

func (b *StubBuilder) Build(ctx context.Context, img config.ImageConfig, contextDir, arch string) (*Result, error) {
	buildID := uuid.NewString()
	b.logger.Warn("image build not yet implemented",
		"build_id", buildID,
		"image", img.Name,
		"arch", arch,
		"context", contextDir)
	return &Result{
		BuildID:      buildID,
		ImageRef:     img.Name + ":" + img.Tag,
		Architecture: arch,
	}, nil
}

func (b *StubBuilder) Test(ctx context.Context, imageRef string) error {
	b.logger.Warn("local image test not yet implemented", "image", imageRef)
	return nil
}
