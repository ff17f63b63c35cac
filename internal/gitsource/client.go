// Package gitsource fetches the build context from a git repository.
package gitsource

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/imageforge/internal/config"
	"git.home.luguber.info/inful/imageforge/internal/errors"
)

// Client clones build-context repositories into a workspace directory.
type Client struct {
	workspaceDir string
	depth        int
	logger       *slog.Logger
}

// NewClient creates a client cloning under the given workspace directory.
func NewClient(workspaceDir string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{workspaceDir: workspaceDir, depth: 1, logger: logger}
}

// Clone fetches the source repository and returns the checkout path. Shallow
// by default; the build only needs the tip of the branch.
func (c *Client) Clone(src *config.SourceConfig) (string, error) {
	name := repoName(src.URL)
	path := filepath.Join(c.workspaceDir, name)

	if err := os.RemoveAll(path); err != nil {
		return "", errors.FileWriteError(path, err)
	}

	opts := &git.CloneOptions{
		URL:   src.URL,
		Depth: c.depth,
	}
	if src.Branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + src.Branch)
		opts.SingleBranch = true
	}
	if src.Token != "" {
		opts.Auth = &http.BasicAuth{Username: "token", Password: src.Token}
	}

	c.logger.Debug("cloning build context", "url", src.URL, "branch", src.Branch, "path", path)

	repo, err := git.PlainClone(path, false, opts)
	if err != nil {
		return "", classifyCloneError(src.URL, err)
	}

	if ref, herr := repo.Head(); herr == nil {
		c.logger.Info("build context cloned", "url", src.URL, "commit", ref.Hash().String()[:8])
	} else {
		c.logger.Info("build context cloned", "url", src.URL)
	}
	return path, nil
}

// classifyCloneError maps go-git failures onto the error taxonomy so the
// handler can decide on recovery without string parsing downstream.
func classifyCloneError(url string, err error) *errors.ErrorRecord {
	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "authentication") || strings.Contains(l, "authorization") || strings.Contains(l, "invalid username or password"):
		return errors.Wrap(err, errors.KindSecurity, errors.SeverityHigh, "source repository authentication failed").
			WithDetail("url", url).
			WithSuggestions("Check the source.token value", "Verify the token has read access to the repository")
	case strings.Contains(l, "repository not found") || strings.Contains(l, "repository does not exist"):
		return errors.Wrap(err, errors.KindValidation, errors.SeverityMedium, "source repository not found").
			WithDetail("url", url).
			WithSuggestions("Check the source.url value")
	case strings.Contains(l, "timeout") || strings.Contains(l, "i/o timeout") || strings.Contains(l, "connection refused"):
		return errors.NetworkError("failed to reach source repository", err).
			WithDetail("url", url)
	default:
		return errors.Wrap(err, errors.KindNetwork, errors.SeverityMedium, "failed to clone source repository").
			WithDetail("url", url)
	}
}

func repoName(url string) string {
	name := strings.TrimSuffix(filepath.Base(url), ".git")
	if name == "" || name == "." || name == "/" {
		return "source"
	}
	return name
}
