// Package workspace manages the temporary directories builds run in.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Manager creates and removes per-run build directories.
type Manager struct {
	baseDir string
	dir     string
	logger  *slog.Logger
}

// NewManager returns a manager creating timestamped directories under baseDir.
func NewManager(baseDir string, logger *slog.Logger) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{baseDir: baseDir, logger: logger}
}

// Create makes a fresh workspace directory for this run.
func (m *Manager) Create() error {
	timestamp := time.Now().Format("20060102-150405")
	dir := filepath.Join(m.baseDir, fmt.Sprintf("imageforge-%s", timestamp))

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	m.dir = dir
	m.logger.Debug("created workspace", "path", dir)
	return nil
}

// Path returns the workspace directory, empty before Create.
func (m *Manager) Path() string {
	return m.dir
}

// Cleanup removes the workspace directory.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	m.logger.Debug("cleaned up workspace", "path", m.dir)
	m.dir = ""
	return nil
}
