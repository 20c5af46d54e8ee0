package exec

import (
	"context"
	"log/slog"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
	"git.home.luguber.info/inful/fbox/internal/logfields"
	"git.home.luguber.info/inful/fbox/internal/metrics"
)

// Shell runs task commands inside one directory and aborts on failure.
type Shell struct {
	runner   Runner
	dir      string
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewShell creates a Shell running commands in dir.
func NewShell(runner Runner, dir string, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{
		runner:   runner,
		dir:      dir,
		logger:   logger,
		recorder: metrics.NoopRecorder{},
	}
}

// WithRecorder sets the metrics recorder used for command durations.
func (s *Shell) WithRecorder(r metrics.Recorder) *Shell {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Dir returns the directory commands run in.
func (s *Shell) Dir() string {
	return s.dir
}

// In returns a copy of s running commands in dir.
func (s *Shell) In(dir string) *Shell {
	c := *s
	c.dir = dir
	return &c
}

// Local runs line and returns a process error when it exits non-zero.
func (s *Shell) Local(ctx context.Context, line string) error {
	_, err := s.run(ctx, Command{Line: line}, modeFail)
	return err
}

// LocalEnv is Local with extra environment variables.
func (s *Shell) LocalEnv(ctx context.Context, line string, env map[string]string) error {
	_, err := s.run(ctx, Command{Line: line, Env: env}, modeFail)
	return err
}

// WarnOnly runs line and only logs a non-zero exit. It reports whether the
// command succeeded.
func (s *Shell) WarnOnly(ctx context.Context, line string) (bool, error) {
	res, err := s.run(ctx, Command{Line: line}, modeWarn)
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// Probe runs line capturing its stdout and returns the raw result without
// judging the exit code.
func (s *Shell) Probe(ctx context.Context, line string) (Result, error) {
	return s.run(ctx, Command{Line: line, Capture: true}, modeProbe)
}

type runMode int

const (
	modeFail runMode = iota
	modeWarn
	modeProbe
)

func (s *Shell) run(ctx context.Context, cmd Command, mode runMode) (Result, error) {
	if cmd.Dir == "" {
		cmd.Dir = s.dir
	}
	s.logger.Info("Running command", logfields.Command(cmd.Line), logfields.Dir(cmd.Dir))

	start := time.Now()
	res, err := s.runner.Run(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, ferrors.ProcessError(cmd.Line, err)
	}
	s.recorder.ObserveCommandDuration(time.Since(start), res.ExitCode)

	if res.ExitCode != 0 {
		switch mode {
		case modeProbe:
			s.logger.Debug("Command exited non-zero", logfields.Command(cmd.Line), logfields.ExitCode(res.ExitCode))
			return res, nil
		case modeWarn:
			s.logger.Warn("Command failed, continuing", logfields.Command(cmd.Line), logfields.ExitCode(res.ExitCode))
			return res, nil
		}
		s.logger.Error("Command failed", logfields.Command(cmd.Line), logfields.ExitCode(res.ExitCode))
		return res, ferrors.ProcessFailed(cmd.Line, res.ExitCode)
	}
	return res, nil
}

// ReadOutput runs line in the shell directory and returns its trimmed
// stdout. With failSilently a failing command yields an empty string instead
// of an error.
func (s *Shell) ReadOutput(ctx context.Context, line string, failSilently bool) (string, error) {
	res, err := s.run(ctx, Command{Line: line, Capture: true}, modeProbe)
	if err == nil && res.ExitCode != 0 {
		err = ferrors.ProcessFailed(line, res.ExitCode)
	}
	if err != nil {
		if failSilently && ctx.Err() == nil {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}
