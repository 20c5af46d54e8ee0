package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/fbox/internal/logfields"
)

// Manager handles workspace operations (both temporary and persistent)
type Manager struct {
	baseDir    string
	dir        string
	persistent bool // If true, use baseDir/subdir directly without timestamps
	now        func() time.Time
}

// NewManager creates a new workspace manager with ephemeral timestamped directories.
// The staging directory is created inside baseDir so Promote can rename it
// without crossing filesystems.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{
		baseDir: baseDir,
		now:     time.Now,
	}
}

// NewPersistentManager creates a workspace manager that uses a persistent directory.
// The workspace directory is fixed (baseDir/subdirName) and not cleaned up on Cleanup().
func NewPersistentManager(baseDir, subdirName string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if subdirName == "" {
		subdirName = "tmp"
	}
	return &Manager{
		baseDir:    baseDir,
		dir:        filepath.Join(baseDir, subdirName),
		persistent: true,
		now:        time.Now,
	}
}

// Create creates a workspace directory
// For ephemeral mode: creates a timestamped directory
// For persistent mode: ensures the fixed directory exists
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.dir, 0o750); err != nil {
			return fmt.Errorf("failed to create persistent workspace directory: %w", err)
		}
		slog.Debug("Using persistent workspace", logfields.Path(m.dir))
		return nil
	}

	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace base directory: %w", err)
	}
	pattern := fmt.Sprintf(".fbox-%s-*", m.now().Format("20060102-150405"))
	dir, err := os.MkdirTemp(m.baseDir, pattern)
	if err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	m.dir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// GetPath returns the path to the workspace directory
func (m *Manager) GetPath() string {
	return m.dir
}

// Promote moves the staged workspace to dst. dst must not exist yet. After a
// successful promote the manager no longer owns a directory and Cleanup is a no-op.
func (m *Manager) Promote(dst string) error {
	if m.persistent {
		return fmt.Errorf("cannot promote a persistent workspace")
	}
	if m.dir == "" {
		return fmt.Errorf("workspace not created")
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("destination exists: %s", dst)
	}
	if err := os.Rename(m.dir, dst); err != nil {
		return fmt.Errorf("failed to promote workspace: %w", err)
	}
	slog.Debug("Promoted workspace", logfields.Path(dst))
	m.dir = ""
	return nil
}

// Cleanup removes the workspace directory
// For persistent mode: does nothing
// For ephemeral mode: removes the timestamped directory
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}

	if m.persistent {
		slog.Debug("Skipping cleanup for persistent workspace", logfields.Path(m.dir))
		return nil
	}

	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}

	slog.Debug("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}
