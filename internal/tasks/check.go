package tasks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
	"git.home.luguber.info/inful/fbox/internal/exec"
	"git.home.luguber.info/inful/fbox/internal/git"
	"git.home.luguber.info/inful/fbox/internal/logfields"
)

// jshintExclude matches vendored libraries that are not linted.
var jshintExclude = regexp.MustCompile(`(ckeditor/|lightbox)`)

// Check runs the coding style checks and Django's system checks.
func (t *Tasks) Check(ctx context.Context) error {
	return t.run(ctx, "check.check", func(ctx context.Context) error {
		if err := t.codingStyleCheck(ctx, t.sh, t.cfg.ProjectName); err != nil {
			return err
		}
		return t.sh.Local(ctx, "venv/bin/python manage.py check")
	})
}

// Ready checks whether the project is ready for production.
func (t *Tasks) Ready(ctx context.Context) error {
	return t.run(ctx, "check.ready", func(ctx context.Context) error {
		if err := t.Check(ctx); err != nil {
			return err
		}
		if err := t.forbid(ctx, t.sh, "^Disallow: /$", "'robots.txt'"); err != nil {
			return err
		}
		project := t.sh.In(t.path(t.cfg.ProjectName))
		if err := t.forbid(ctx, project, "meta.*robots.*noindex", ""); err != nil {
			return err
		}
		if err := t.forbid(ctx, project, "(XXX|FIXME|TODO)", ""); err != nil {
			return err
		}
		t.ui.Headline("Everything looks ready for production.")
		return nil
	})
}

func (t *Tasks) codingStyleCheck(ctx context.Context, sh *exec.Shell, projectName string) error {
	forbidden := []struct{ pattern, pathspec string }{
		{"import i?pdb", "'*.py'"},
		{`console\.log`, "'*.html' '*.js'"},
		{`(^| )print( |\(|$)`, fmt.Sprintf("'%s/*py'", projectName)},
	}
	for _, f := range forbidden {
		if err := t.forbid(ctx, sh, f.pattern, f.pathspec); err != nil {
			return err
		}
	}

	if err := sh.Local(ctx, "flake8 ."); err != nil {
		return err
	}
	if err := t.jshint(ctx, sh); err != nil {
		return err
	}

	// Reminder only; there are good reasons for some of these.
	noqa, err := sh.ReadOutput(ctx, grepLine("-n -E", "#.*noqa", fmt.Sprintf("'%s/*.py'", projectName)), true)
	if err != nil {
		return err
	}
	if noqa != "" {
		t.ui.Warn("Found noqa markers, make sure they are still needed:")
		t.ui.Info("%s", noqa)
	}
	return nil
}

func (t *Tasks) jshint(ctx context.Context, sh *exec.Shell) error {
	files, err := git.TrackedFiles(sh.Dir(), "*.js", jshintExclude)
	if err != nil {
		return ferrors.GitError("list tracked files", err)
	}
	if len(files) == 0 {
		t.logger.Info("No JavaScript files to check", logfields.Dir(sh.Dir()))
		return nil
	}
	quoted := make([]string, len(files))
	for i, f := range files {
		quoted[i] = shellQuote(f)
	}
	return sh.Local(ctx, "jshint "+strings.Join(quoted, " "))
}

func grepLine(flags, pattern, pathspec string) string {
	line := fmt.Sprintf("git grep %s '%s'", flags, pattern)
	if pathspec != "" {
		line += " -- " + pathspec
	}
	return line
}

// forbid fails when git grep finds pattern. git grep exits 1 when nothing
// matches; any other non-zero exit is an error of its own.
func (t *Tasks) forbid(ctx context.Context, sh *exec.Shell, pattern, pathspec string) error {
	line := grepLine("-n -C3 -E", pattern, pathspec)
	res, err := sh.Probe(ctx, line)
	if err != nil {
		return err
	}
	switch res.ExitCode {
	case 1:
		return nil
	case 0:
		t.ui.Error("Forbidden pattern %q found:", pattern)
		t.ui.Info("%s", strings.TrimRight(res.Stdout, "\n"))
		return ferrors.ProcessFailed("! "+line, 1).WithContext("pattern", pattern)
	default:
		return ferrors.ProcessFailed(line, res.ExitCode)
	}
}
