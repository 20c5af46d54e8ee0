package exec

import (
	"context"
	"errors"
	"testing"

	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestShell_LocalRunsInDir(t *testing.T) {
	fake := NewFakeRunner()
	sh := NewShell(fake, "/srv/project", nil)

	require.NoError(t, sh.Local(context.Background(), "npm install"))
	require.Len(t, fake.Commands, 1)
	require.Equal(t, "/srv/project", fake.Commands[0].Dir)
	require.Equal(t, "npm install", fake.Commands[0].Line)
}

func TestShell_LocalAbortsOnNonZeroExit(t *testing.T) {
	fake := NewFakeRunner().On("flake8", Result{ExitCode: 1}, nil)
	sh := NewShell(fake, "", nil)

	err := sh.Local(context.Background(), "flake8 .")
	require.Error(t, err)
	require.True(t, ferrors.IsCategory(err, ferrors.CategoryProcess))

	fe, ok := ferrors.As(err)
	require.True(t, ok)
	require.Equal(t, "flake8 .", fe.Context["command"])
	require.Equal(t, 1, fe.Context["exit_code"])
}

func TestShell_ExecutionFailure(t *testing.T) {
	fake := NewFakeRunner().On("missing", Result{}, errors.New("exec: not found"))
	sh := NewShell(fake, "", nil)

	err := sh.Local(context.Background(), "missing-binary")
	require.Error(t, err)
	require.True(t, ferrors.IsCategory(err, ferrors.CategoryProcess))
}

func TestShell_WarnOnlyContinues(t *testing.T) {
	fake := NewFakeRunner().On("venv/bin/python manage.py makemigrations", Result{ExitCode: 1}, nil)
	sh := NewShell(fake, "", nil)

	ok, err := sh.WarnOnly(context.Background(), "venv/bin/python manage.py makemigrations page")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = sh.WarnOnly(context.Background(), "true")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestShell_LocalEnvPassesEnvironment(t *testing.T) {
	fake := NewFakeRunner()
	sh := NewShell(fake, "", nil)

	require.NoError(t, sh.LocalEnv(context.Background(), "pip install", map[string]string{"CFLAGS": "-Qunused-arguments"}))
	require.Equal(t, "-Qunused-arguments", fake.Commands[0].Env["CFLAGS"])
}

func TestShell_ProbeCaptures(t *testing.T) {
	fake := NewFakeRunner().On("git grep", Result{ExitCode: 1}, nil)
	sh := NewShell(fake, "", nil)

	res, err := sh.Probe(context.Background(), "git grep -n foo")
	require.NoError(t, err)
	require.Equal(t, 1, res.ExitCode)
	require.True(t, fake.Commands[0].Capture)
}

func TestShell_ReadOutput(t *testing.T) {
	fake := NewFakeRunner().
		On("git config user.name", Result{Stdout: "Jane Doe\n"}, nil).
		On("git config user.email", Result{ExitCode: 1}, nil)
	sh := NewShell(fake, "/srv/project", nil)

	name, err := sh.ReadOutput(context.Background(), "git config user.name", false)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", name)
	require.Equal(t, "/srv/project", fake.Commands[0].Dir)
	require.True(t, fake.Commands[0].Capture)

	email, err := sh.ReadOutput(context.Background(), "git config user.email", true)
	require.NoError(t, err)
	require.Empty(t, email)

	_, err = sh.ReadOutput(context.Background(), "git config user.email", false)
	require.Error(t, err)
	require.True(t, ferrors.IsCategory(err, ferrors.CategoryProcess))
}

func TestShell_InChangesDirectoryOnly(t *testing.T) {
	fake := NewFakeRunner()
	sh := NewShell(fake, "/srv/project", nil)
	sub := sh.In("/srv/project/box")

	require.NoError(t, sub.Local(context.Background(), "ls"))
	require.Equal(t, "/srv/project/box", fake.Commands[0].Dir)
	require.Equal(t, "/srv/project", sh.Dir())
}
