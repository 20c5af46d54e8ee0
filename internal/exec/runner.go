// Package exec runs external programs for fbox tasks.
//
// Every task is a linear sequence of shell lines (pip, npm, git, createdb,
// rsync, ...). Commands go through `sh -c` so pipes and redirects behave like
// they do on the command line.
package exec

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
)

// Command describes one shell line to run.
type Command struct {
	Line    string            // passed to `sh -c`
	Dir     string            // working directory (optional)
	Env     map[string]string // extra environment variables (overlay)
	Capture bool              // collect stdout into Result.Stdout instead of streaming it
}

// Result holds the outcome of a command that ran to completion.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner is the interface for running external commands.
type Runner interface {
	// Run executes a command and returns the result.
	// A non-zero exit is reported through Result.ExitCode, not as an error.
	// Errors are reserved for execution failures (shell not found, ctx canceled, io failure).
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ShellRunner is the production Runner backed by os/exec.
type ShellRunner struct {
	Shell  string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewShellRunner creates a ShellRunner wired to the process' standard streams.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{
		Shell:  "/bin/sh",
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes cmd.Line with the configured shell.
func (r *ShellRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, r.Shell, "-c", cmd.Line) // #nosec G204 -- task lines are fixed by fbox
	c.Dir = cmd.Dir
	c.Stdin = r.Stdin

	var stdout, stderr bytes.Buffer
	if cmd.Capture {
		c.Stdout = &stdout
		c.Stderr = &stderr
		if r.Stderr != nil {
			c.Stderr = io.MultiWriter(&stderr, r.Stderr)
		}
	} else {
		c.Stdout = r.Stdout
		c.Stderr = r.Stderr
	}

	if len(cmd.Env) > 0 {
		c.Env = c.Environ()
		for k, v := range cmd.Env {
			c.Env = append(c.Env, k+"="+v)
		}
	}

	err := c.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}
