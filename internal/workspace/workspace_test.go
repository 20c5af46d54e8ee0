package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManager_EphemeralMode(t *testing.T) {
	base := t.TempDir()
	mgr := NewManager(base)
	mgr.now = func() time.Time { return time.Date(2026, 10, 18, 12, 23, 36, 0, time.UTC) }

	require.NoError(t, mgr.Create())

	wsPath := mgr.GetPath()
	require.NotEmpty(t, wsPath)
	require.Equal(t, base, filepath.Dir(wsPath))
	require.True(t, strings.HasPrefix(filepath.Base(wsPath), ".fbox-20261018-122336-"), wsPath)
	require.DirExists(t, wsPath)

	require.NoError(t, mgr.Cleanup())
	require.NoDirExists(t, wsPath)

	// A second cleanup is a no-op.
	require.NoError(t, mgr.Cleanup())
}

func TestManager_Promote(t *testing.T) {
	base := t.TempDir()
	mgr := NewManager(base)
	require.NoError(t, mgr.Create())
	require.NoError(t, os.WriteFile(filepath.Join(mgr.GetPath(), "file.txt"), []byte("x"), 0o600))

	dst := filepath.Join(base, "example_com")
	require.NoError(t, mgr.Promote(dst))
	require.FileExists(t, filepath.Join(dst, "file.txt"))
	require.Empty(t, mgr.GetPath())

	// Cleanup after promote must not remove the promoted tree.
	require.NoError(t, mgr.Cleanup())
	require.DirExists(t, dst)
}

func TestManager_PromoteRefusesExistingDestination(t *testing.T) {
	base := t.TempDir()
	dst := filepath.Join(base, "taken")
	require.NoError(t, os.Mkdir(dst, 0o750))

	mgr := NewManager(base)
	require.NoError(t, mgr.Create())
	require.Error(t, mgr.Promote(dst))
	require.NoError(t, mgr.Cleanup())
}

func TestManager_PersistentMode(t *testing.T) {
	base := t.TempDir()
	mgr := NewPersistentManager(base, "")

	require.NoError(t, mgr.Create())
	require.Equal(t, filepath.Join(base, "tmp"), mgr.GetPath())
	require.DirExists(t, mgr.GetPath())

	// Cleanup keeps the directory.
	require.NoError(t, mgr.Cleanup())
	require.DirExists(t, filepath.Join(base, "tmp"))

	require.Error(t, mgr.Promote(filepath.Join(base, "elsewhere")))
}
