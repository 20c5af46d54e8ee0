package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fbox/internal/config"
	"git.home.luguber.info/inful/fbox/internal/console"
	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
	"git.home.luguber.info/inful/fbox/internal/exec"
	"git.home.luguber.info/inful/fbox/internal/metrics"
)

type testEnv struct {
	global *Global
	out    *bytes.Buffer
	fake   *exec.FakeRunner
}

func newTestEnv(t *testing.T, workdir string) *testEnv {
	t.Helper()
	out := &bytes.Buffer{}
	fake := exec.NewFakeRunner()
	return &testEnv{
		out:  out,
		fake: fake,
		global: &Global{
			Ctx:      context.Background(),
			Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
			RunID:    "test",
			Console:  console.New(out, strings.NewReader(""), console.WithAutoYes(true)),
			Recorder: metrics.NoopRecorder{},
			Runner:   fake,
			Home:     t.TempDir(),
			Workdir:  workdir,
		},
	}
}

func parse(t *testing.T, cli *CLI, args ...string) *kong.Context {
	t.Helper()
	parser, err := kong.New(cli, kong.Name("fbox"), kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return kctx
}

// isolateEnv keeps git and generator settings of the developer machine out
// of the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, k := range []string{"SERVER", "BOX_PROJECT_NAME", "BOX_DESTINATION", "BOX_TEMPLATE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeProject(t *testing.T, dir string) {
	t.Helper()
	cfg := "project_name: box\ndomain: example.com\ndatabase: example_com\nhost: www-data@web1.example.net\nservices:\n  disabled: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFileName), []byte(cfg), 0o600))
}

func TestGenerateCmd_Options(t *testing.T) {
	cmd := &GenerateCmd{Domain: "www.example.com", NiceName: "Example", Template: "/srv/templates/project"}

	opts := cmd.Options(&config.GeneratorDefaults{Server: "deploy@web1", ProjectName: "box", Destination: "/srv/projects"}, "/work")

	assert.Equal(t, "box", opts.ProjectName)
	assert.Equal(t, "deploy@web1", opts.Server)
	assert.Equal(t, "/srv/projects", opts.Destination)
	assert.Equal(t, "/srv/templates/project", opts.TemplateDir)
	assert.Equal(t, filepath.Join("/srv/templates", ".gitignore"), opts.IgnoreFile)
	assert.False(t, opts.Charge)

	cmd.ProjectName = "shop"
	cmd.Destination = "/tmp/out"
	cmd.Charge = true
	opts = cmd.Options(&config.GeneratorDefaults{}, "/work")
	assert.Equal(t, "shop", opts.ProjectName)
	assert.Equal(t, "/tmp/out", opts.Destination)
	assert.True(t, opts.Charge)
}

func TestGenerateCmd_Run(t *testing.T) {
	isolateEnv(t)

	templates := t.TempDir()
	tmpl := filepath.Join(templates, "project")
	require.NoError(t, os.MkdirAll(filepath.Join(tmpl, "$PROJECT_NAME"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "fbox.yaml"), []byte("domain: $DOMAIN\nhost: $SERVER\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "$PROJECT_NAME", "__init__.py"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "$PROJECT_NAME", "cache.pyc"), []byte{0}, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(templates, ".gitignore"), []byte("*.pyc\n"), 0o600))

	dest := t.TempDir()
	env := newTestEnv(t, dest)
	require.NoError(t, os.WriteFile(filepath.Join(env.global.Home, config.BoxEnvFile), []byte("SERVER=deploy@web1.example.net\n"), 0o600))

	cli := &CLI{}
	kctx := parse(t, cli, "generate", "www.example.com", "Example Site", "--template", tmpl, "--charge")
	require.NoError(t, kctx.Run(env.global, cli))

	projectDir := filepath.Join(dest, "www_example_com")
	data, err := os.ReadFile(filepath.Join(projectDir, "fbox.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "domain: www.example.com\nhost: deploy@web1.example.net\n", string(data))
	assert.FileExists(t, filepath.Join(projectDir, "box", "__init__.py"))
	assert.NoFileExists(t, filepath.Join(projectDir, "box", "cache.pyc"))

	repo, err := gogit.PlainOpen(projectDir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Initial commit", strings.TrimSpace(commit.Message))

	output := env.out.String()
	assert.Contains(t, output, "DOMAIN_SLUG: www_example_com")
	assert.Contains(t, output, "fbox local setup")
	assert.NotContains(t, output, "No ~/.box.env found")
}

func TestGenerateCmd_RefusesExistingProject(t *testing.T) {
	isolateEnv(t)
	tmpl := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.MkdirAll(tmpl, 0o750))

	dest := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dest, "example_com"), 0o750))
	env := newTestEnv(t, dest)

	cli := &CLI{}
	kctx := parse(t, cli, "generate", "example.com", "Example", "--template", tmpl, "--charge")
	err := kctx.Run(env.global, cli)

	require.Error(t, err)
	assert.True(t, ferrors.IsCategory(err, ferrors.CategoryFileSystem))
	assert.Contains(t, env.out.String(), "No ~/.box.env found")
}

func TestGenerateCmd_InvalidProjectName(t *testing.T) {
	isolateEnv(t)
	env := newTestEnv(t, t.TempDir())

	cli := &CLI{}
	kctx := parse(t, cli, "generate", "example.com", "Example", "-p", "my-project", "--template", t.TempDir(), "--charge")
	err := kctx.Run(env.global, cli)

	assert.True(t, ferrors.IsCategory(err, ferrors.CategoryValidation))
}

func TestLocalCommand_FindsProjectUpwards(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root)
	sub := filepath.Join(root, "box", "static")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	env := newTestEnv(t, sub)

	cli := &CLI{}
	kctx := parse(t, cli, "local", "update")
	assert.Equal(t, "local update", kctx.Command())
	require.NoError(t, kctx.Run(env.global, cli))

	assert.Equal(t, []string{
		"venv/bin/pip install -r requirements/dev.txt",
		"venv/bin/python manage.py migrate",
	}, env.fake.Lines())
	assert.Equal(t, root, env.fake.Commands[0].Dir)
}

func TestLocalCommand_MissingConfig(t *testing.T) {
	env := newTestEnv(t, t.TempDir())

	cli := &CLI{}
	kctx := parse(t, cli, "local", "setup")
	err := kctx.Run(env.global, cli)

	assert.True(t, ferrors.IsCategory(err, ferrors.CategoryConfig))
	assert.Empty(t, env.fake.Lines())
}

func TestLocalLoadDB_ResolvesAgainstWorkdir(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root)
	require.NoError(t, os.WriteFile(filepath.Join(root, "dump.sql"), nil, 0o600))
	env := newTestEnv(t, root)

	cli := &CLI{}
	kctx := parse(t, cli, "local", "load-db", "dump.sql")
	require.NoError(t, kctx.Run(env.global, cli))

	lines := env.fake.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "psql example_com < "+filepath.Join(root, "dump.sql"), lines[2])
}

func TestCheckCommand_DefaultsToAll(t *testing.T) {
	cli := &CLI{}
	kctx := parse(t, cli, "check")
	assert.Equal(t, "check all", kctx.Command())

	kctx = parse(t, cli, "check", "ready")
	assert.Equal(t, "check ready", kctx.Command())
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()
	env := newTestEnv(t, dir)

	cli := &CLI{}
	kctx := parse(t, cli, "init", "--domain", "www.example.com", "--host", "deploy@web1")
	require.NoError(t, kctx.Run(env.global, cli))

	cfg, err := config.Load(filepath.Join(dir, config.DefaultFileName))
	require.NoError(t, err)
	assert.Equal(t, "www_example_com", cfg.Database)
	assert.Equal(t, "deploy@web1", cfg.Host)

	kctx = parse(t, cli, "init")
	require.Error(t, kctx.Run(env.global, cli))
}

func TestGlobal_WriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fbox.prom")
	g := NewGlobal(context.Background(), &CLI{MetricsFile: path}, strings.NewReader(""), io.Discard)
	g.Recorder.IncTaskResult("local update", metrics.ResultSuccess)

	require.NoError(t, g.WriteMetrics(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `fbox_task_results_total{result="success",task="local update"} 1`)

	plain := NewGlobal(context.Background(), &CLI{}, strings.NewReader(""), io.Discard)
	require.NoError(t, plain.WriteMetrics(""))
}
