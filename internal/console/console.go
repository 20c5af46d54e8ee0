// Package console prints user-facing task output and asks for confirmation.
//
// Logs go to stderr through slog; console output is the short colored
// feedback a developer reads while tasks run.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiYel   = "\033[33m"
	ansiCyan  = "\033[36m"
)

// Console writes messages to out and reads answers from in.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	in      *bufio.Reader
	color   bool
	autoYes bool
}

// Option configures a Console.
type Option func(*Console)

// WithColor forces colored output on or off.
func WithColor(enabled bool) Option {
	return func(c *Console) { c.color = enabled }
}

// WithAutoYes makes Confirm answer yes without reading input.
func WithAutoYes(yes bool) Option {
	return func(c *Console) { c.autoYes = yes }
}

// New creates a Console. Color is enabled when out is a terminal and
// NO_COLOR is unset.
func New(out io.Writer, in io.Reader, opts ...Option) *Console {
	if in == nil {
		in = strings.NewReader("")
	}
	c := &Console{
		out:   out,
		in:    bufio.NewReader(in),
		color: isTerminal(out) && os.Getenv("NO_COLOR") == "",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *Console) paint(code, msg string) string {
	if !c.color {
		return msg
	}
	return code + msg + ansiReset
}

func (c *Console) println(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out, msg)
}

// Info prints msg as is.
func (c *Console) Info(format string, args ...any) {
	c.println(fmt.Sprintf(format, args...))
}

// Step prints msg in cyan.
func (c *Console) Step(format string, args ...any) {
	c.println(c.paint(ansiCyan, fmt.Sprintf(format, args...)))
}

// Success prints msg in green.
func (c *Console) Success(format string, args ...any) {
	c.println(c.paint(ansiGreen, fmt.Sprintf(format, args...)))
}

// Headline prints msg in bold green.
func (c *Console) Headline(format string, args ...any) {
	c.println(c.paint(ansiBold+ansiGreen, fmt.Sprintf(format, args...)))
}

// Warn prints msg in yellow.
func (c *Console) Warn(format string, args ...any) {
	c.println(c.paint(ansiYel, fmt.Sprintf(format, args...)))
}

// Error prints msg in red.
func (c *Console) Error(format string, args ...any) {
	c.println(c.paint(ansiRed, fmt.Sprintf(format, args...)))
}

// Confirm asks a yes/no question defaulting to no.
func (c *Console) Confirm(question string) (bool, error) {
	if c.autoYes {
		c.println(question + " [y/N] y")
		return true, nil
	}

	c.mu.Lock()
	_, _ = fmt.Fprintf(c.out, "%s [y/N] ", question)
	c.mu.Unlock()

	answer, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// WaitForEnter prints prompt and blocks until a line is read or ctx is done.
// Closed input counts as confirmation.
func (c *Console) WaitForEnter(ctx context.Context, prompt string) error {
	c.mu.Lock()
	_, _ = fmt.Fprint(c.out, prompt)
	c.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := c.in.ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
