package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/fbox/internal/config"
	"git.home.luguber.info/inful/fbox/internal/console"
	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
	"git.home.luguber.info/inful/fbox/internal/exec"
	"git.home.luguber.info/inful/fbox/internal/logfields"
	"git.home.luguber.info/inful/fbox/internal/metrics"
	"git.home.luguber.info/inful/fbox/internal/tasks"
)

// Global carries the state shared by all subcommands of one run.
type Global struct {
	Ctx      context.Context
	Logger   *slog.Logger
	RunID    string
	Console  *console.Console
	Recorder metrics.Recorder
	Runner   exec.Runner
	Home     string // directory holding .box.env
	Workdir  string // directory fbox was started in

	prometheus *metrics.PrometheusRecorder
}

// CLI definition & global flags.
type CLI struct {
	Config      string           `short:"c" help:"Project configuration file, searched upwards from the working directory" default:"fbox.yaml"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	NoColor     bool             `name:"no-color" help:"Disable colored output"`
	Yes         bool             `short:"y" help:"Answer yes to every confirmation prompt"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this path on exit" type:"path"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" help:"Generate a new project from the template"`
	Init     InitCmd     `cmd:"" help:"Write an fbox.yaml for an existing project"`
	Local    LocalCmd    `cmd:"" help:"Local development tasks"`
	Check    CheckCmd    `cmd:"" help:"Coding style and deployment readiness checks"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// NewGlobal wires the shared state for cli. ctx is canceled on interrupt.
func NewGlobal(ctx context.Context, cli *CLI, stdin io.Reader, stdout io.Writer) *Global {
	runID := uuid.NewString()
	logger := slog.Default().With(logfields.RunID(runID))
	slog.SetDefault(logger)

	opts := []console.Option{console.WithAutoYes(cli.Yes)}
	if cli.NoColor {
		opts = append(opts, console.WithColor(false))
	}

	g := &Global{
		Ctx:      ctx,
		Logger:   logger,
		RunID:    runID,
		Console:  console.New(stdout, stdin, opts...),
		Recorder: metrics.NoopRecorder{},
		Runner:   exec.NewShellRunner(),
	}
	if cli.MetricsFile != "" {
		g.prometheus = metrics.NewPrometheusRecorder(nil)
		g.Recorder = g.prometheus
	}
	if home, err := os.UserHomeDir(); err == nil {
		g.Home = home
	}
	if wd, err := os.Getwd(); err == nil {
		g.Workdir = wd
	}
	return g
}

// WriteMetrics writes the collected metrics when --metrics-file is set.
func (g *Global) WriteMetrics(path string) error {
	if g.prometheus == nil || path == "" {
		return nil
	}
	if err := g.prometheus.WriteTextfile(path); err != nil {
		return ferrors.FileSystemError("write metrics", err).WithContext("path", path)
	}
	g.Logger.Debug("Wrote metrics", logfields.Path(path))
	return nil
}

// ResolveConfigPath returns the project configuration file for c. The
// default file name is searched upwards from the working directory.
func (g *Global) ResolveConfigPath(c *CLI) (string, error) {
	path := c.Config
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.Workdir, path)
	}
	if _, err := os.Stat(path); err == nil || c.Config != config.DefaultFileName {
		return path, nil
	}
	dir, err := config.Find(g.Workdir, config.DefaultFileName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.DefaultFileName), nil
}

// Tasks loads the project configuration and returns the task runner for it.
func (g *Global) Tasks(c *CLI) (*tasks.Tasks, error) {
	path, err := g.ResolveConfigPath(c)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(path)
	g.Logger.Debug("Loaded project configuration", logfields.Path(path), logfields.Dir(root))

	return tasks.New(tasks.Options{
		Root:     root,
		Config:   cfg,
		Runner:   g.Runner,
		UI:       g.Console,
		Recorder: g.Recorder,
		Logger:   g.Logger,
	}), nil
}

// observe records the duration and outcome of a top-level command.
func (g *Global) observe(name string, start time.Time, err error) {
	g.Recorder.ObserveTaskDuration(name, time.Since(start))
	switch {
	case err == nil:
		g.Recorder.IncTaskResult(name, metrics.ResultSuccess)
	case g.Ctx.Err() != nil:
		g.Recorder.IncTaskResult(name, metrics.ResultCanceled)
	default:
		g.Recorder.IncTaskResult(name, metrics.ResultFailed)
	}
}
