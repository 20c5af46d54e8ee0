package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
project_name: box
domain: www.example.com
database: www_example_com
host: www-data@web1.example.net
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "box", cfg.ProjectName)
	require.Equal(t, "www_example_com", cfg.DatabaseLocal)
	require.Equal(t, "box/static", cfg.StaticFiles)
	require.Equal(t, "python3", cfg.Python)
	require.Equal(t, "www-data@web1.example.net", cfg.Host)
	require.Equal(t, "postgres://localhost:5432/postgres", cfg.Services.PostgresDSN)
	require.Equal(t, "localhost:6379", cfg.Services.RedisAddr)
	require.False(t, cfg.Services.Disabled)
}

func TestLoad_ExpandsAndOverlaysEnvironment(t *testing.T) {
	t.Setenv("DEPLOY_HOST", "deploy@web2.example.net")
	t.Setenv("FBOX_DATABASE_LOCAL", "example_dev")
	t.Setenv("FBOX_SKIP_SERVICE_CHECKS", "true")
	t.Setenv("FBOX_REDIS_ADDR", "127.0.0.1:6380")

	path := writeConfig(t, t.TempDir(), `
project_name: box
domain: example.com
database: example_com
host: ${DEPLOY_HOST}
python: python3.12
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "deploy@web2.example.net", cfg.Host)
	require.Equal(t, "example_dev", cfg.DatabaseLocal)
	require.Equal(t, "python3.12", cfg.Python)
	require.True(t, cfg.Services.Disabled)
	require.Equal(t, "127.0.0.1:6380", cfg.Services.RedisAddr)
}

func TestLoad_ServiceRetries(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
project_name: box
domain: example.com
database: example_com
services:
  retries: 3
  retry_delay: 250ms
  retry_backoff: exponential
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Services.Retries)
	require.Equal(t, 250*time.Millisecond, cfg.Services.RetryDelay)
	require.Equal(t, RetryBackoffExponential, cfg.Services.RetryBackoff)

	path = writeConfig(t, t.TempDir(), `
project_name: box
domain: example.com
database: example_com
services:
  retry_backoff: sometimes
`)
	_, err = Load(path)
	require.True(t, ferrors.IsCategory(err, ferrors.CategoryValidation))
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.True(t, ferrors.IsCategory(err, ferrors.CategoryConfig))

	path := writeConfig(t, dir, "project_name: [unterminated\n")
	_, err = Load(path)
	require.True(t, ferrors.IsCategory(err, ferrors.CategoryConfig))

	path = writeConfig(t, dir, "project_name: box\ndomain: example.com\n")
	_, err = Load(path)
	require.Error(t, err)
	fe, ok := ferrors.As(err)
	require.True(t, ok)
	require.Equal(t, "database", fe.Context["field"])
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "project_name: box\n")
	nested := filepath.Join(root, "box", "static")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	found, err := Find(nested, DefaultFileName)
	require.NoError(t, err)
	want, err := filepath.Abs(root)
	require.NoError(t, err)
	require.Equal(t, want, found)

	_, err = Find(t.TempDir(), "definitely-not-here.yaml")
	require.True(t, ferrors.IsCategory(err, ferrors.CategoryConfig))
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	require.NoError(t, Init(path, false, Project{ProjectName: "shop", Domain: "shop.example.com", Database: "shop"}))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "shop", cfg.ProjectName)
	require.Equal(t, "shop.example.com", cfg.Domain)
	require.Equal(t, "www-data@example.com", cfg.Host)

	err = Init(path, false, Project{})
	require.Error(t, err)
	require.True(t, ferrors.IsCategory(err, ferrors.CategoryConfig))

	require.NoError(t, Init(path, true, Project{}))
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, "box", cfg.ProjectName)
}
