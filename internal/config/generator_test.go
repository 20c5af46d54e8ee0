package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadGeneratorDefaults_BuiltIn(t *testing.T) {
	t.Setenv("SERVER", "")
	require.NoError(t, os.Unsetenv("SERVER"))

	d, err := LoadGeneratorDefaults(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "www-data@feinheit04.nine.ch", d.Server)
	require.Equal(t, "box", d.ProjectName)
	require.Empty(t, d.Loaded)
}

func TestLoadGeneratorDefaults_BoxEnvFile(t *testing.T) {
	for _, k := range []string{"SERVER", "BOX_DESTINATION"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	home := t.TempDir()
	path := filepath.Join(home, BoxEnvFile)
	require.NoError(t, os.WriteFile(path, []byte("SERVER=deploy@web1.example.net\nBOX_DESTINATION=/srv/projects\n"), 0o600))

	d, err := LoadGeneratorDefaults(home)
	require.NoError(t, err)
	require.Equal(t, "deploy@web1.example.net", d.Server)
	require.Equal(t, "/srv/projects", d.Destination)
	require.Equal(t, path, d.Loaded)
}

func TestLoadGeneratorDefaults_EnvironmentWins(t *testing.T) {
	t.Setenv("SERVER", "env@host")
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, BoxEnvFile), []byte("SERVER=file@host\n"), 0o600))

	d, err := LoadGeneratorDefaults(home)
	require.NoError(t, err)
	require.Equal(t, "env@host", d.Server)
}
