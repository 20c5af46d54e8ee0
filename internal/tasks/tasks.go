// Package tasks implements the developer tasks run inside a generated
// project: local setup, database and media synchronisation, and the
// pre-deployment checks.
//
// Every task is a named, linear sequence of shell commands. A failing command
// aborts the task; a declined confirmation skips it and lets the calling task
// continue.
package tasks

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"git.home.luguber.info/inful/fbox/internal/config"
	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
	"git.home.luguber.info/inful/fbox/internal/exec"
	"git.home.luguber.info/inful/fbox/internal/logfields"
	"git.home.luguber.info/inful/fbox/internal/metrics"
	"git.home.luguber.info/inful/fbox/internal/retry"
	"git.home.luguber.info/inful/fbox/internal/services"
)

// UI is the user-facing side of a task run.
type UI interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
	Headline(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Confirm(question string) (bool, error)
}

// Options wires a Tasks instance.
type Options struct {
	Root     string          // project directory holding fbox.yaml
	Config   *config.Project // loaded project configuration
	Runner   exec.Runner
	UI       UI
	Probes   []services.Probe // defaults to the configured PostgreSQL and Redis probes
	Recorder metrics.Recorder
	Logger   *slog.Logger
	Random   io.Reader        // secret key source, crypto/rand when nil
	Now      func() time.Time // clock for dump file names
	GOOS     string           // defaults to runtime.GOOS
}

// Tasks runs project tasks.
type Tasks struct {
	root     string
	cfg      *config.Project
	sh       *exec.Shell
	ui       UI
	probes   []services.Probe
	recorder metrics.Recorder
	logger   *slog.Logger
	random   io.Reader
	now      func() time.Time
	goos     string

	servicesChecked bool
}

// errDeclined marks a task the user chose not to run.
var errDeclined = stderrors.New("declined by user")

// New creates Tasks from opts.
func New(opts Options) *Tasks {
	t := &Tasks{
		root:     opts.Root,
		cfg:      opts.Config,
		ui:       opts.UI,
		probes:   opts.Probes,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		random:   opts.Random,
		now:      opts.Now,
		goos:     opts.GOOS,
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.recorder == nil {
		t.recorder = metrics.NoopRecorder{}
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.goos == "" {
		t.goos = runtime.GOOS
	}
	if t.probes == nil && t.cfg != nil {
		t.probes = services.FromConfig(t.cfg.Services.PostgresDSN, t.cfg.Services.RedisAddr)
	}
	runner := opts.Runner
	if runner == nil {
		runner = exec.NewShellRunner()
	}
	t.sh = exec.NewShell(runner, t.root, t.logger).WithRecorder(t.recorder)
	return t
}

// run executes fn as the task name, logging and recording its outcome.
func (t *Tasks) run(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := t.logger.With(logfields.Task(name))
	logger.Info("Task started")

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	t.recorder.ObserveTaskDuration(name, elapsed)

	switch {
	case stderrors.Is(err, errDeclined):
		t.recorder.IncTaskResult(name, metrics.ResultSkipped)
		logger.Info("Task skipped", logfields.DurationMS(elapsed.Milliseconds()))
		return nil
	case err != nil && ctx.Err() != nil:
		t.recorder.IncTaskResult(name, metrics.ResultCanceled)
		logger.Warn("Task canceled", logfields.DurationMS(elapsed.Milliseconds()))
		return err
	case err != nil:
		t.recorder.IncTaskResult(name, metrics.ResultFailed)
		logger.Error("Task failed", logfields.Error(err), logfields.DurationMS(elapsed.Milliseconds()))
		return err
	}
	t.recorder.IncTaskResult(name, metrics.ResultSuccess)
	logger.Info("Task completed", logfields.DurationMS(elapsed.Milliseconds()))
	return nil
}

// requireEnv aborts unless a production host is configured.
func (t *Tasks) requireEnv() error {
	if strings.TrimSpace(t.cfg.Host) == "" {
		return ferrors.Aborted("no production host configured, set host in " + config.DefaultFileName)
	}
	return nil
}

// requireServices aborts unless the local services are reachable. A
// successful check is remembered for the rest of the run.
func (t *Tasks) requireServices(ctx context.Context) error {
	if t.servicesChecked || t.cfg.Services.Disabled {
		return nil
	}
	policy, err := retry.FromConfig(t.cfg.Services)
	if err != nil {
		return ferrors.ValidationFailed("services", err.Error())
	}
	if err := services.Check(ctx, policy, t.probes...); err != nil {
		if fe, ok := ferrors.As(err); ok {
			if svc, ok := fe.Context["service"].(string); ok {
				t.ui.Error("%s is not reachable, start it and try again.", svc)
			}
		}
		return err
	}
	t.servicesChecked = true
	return nil
}

// confirm asks question and returns errDeclined on a negative answer.
func (t *Tasks) confirm(question string) error {
	ok, err := t.ui.Confirm(question)
	if err != nil {
		return ferrors.InternalError("read confirmation", err)
	}
	if !ok {
		return errDeclined
	}
	return nil
}

func (t *Tasks) path(rel string) string {
	return filepath.Join(t.root, filepath.FromSlash(rel))
}

func (t *Tasks) exists(rel string) bool {
	_, err := os.Stat(t.path(rel))
	return err == nil
}

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9_./:@%+=,-]+$`)

// shellQuote quotes s for sh when it contains anything beyond plain path
// characters.
func shellQuote(s string) string {
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
