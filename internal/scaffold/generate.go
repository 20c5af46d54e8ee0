package scaffold

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
	"git.home.luguber.info/inful/fbox/internal/git"
	"git.home.luguber.info/inful/fbox/internal/logfields"
	"git.home.luguber.info/inful/fbox/internal/workspace"
)

// Result describes a generated project.
type Result struct {
	ProjectDir string
	Commit     string
	Stats      WalkStats
}

// ProjectDir returns the directory a project with ctx is generated into.
func ProjectDir(destination string, ctx Context) string {
	return filepath.Join(destination, ctx[KeyDomainSlug])
}

// Generate renders the template into destination/<DOMAIN_SLUG> and turns it
// into a git repository with a single initial commit. The project is staged
// next to its final location and moved into place only after every file has
// been written.
func Generate(opts Options, ctx Context) (*Result, error) {
	for _, k := range []string{KeyDomain, KeyDomainSlug, KeyProjectName} {
		if ctx[k] == "" {
			return nil, ferrors.ConfigRequired(k)
		}
	}

	projectDir := ProjectDir(opts.Destination, ctx)
	if _, err := os.Lstat(projectDir); err == nil {
		return nil, ferrors.ProjectExists(projectDir)
	}

	rootInfo, err := os.Stat(opts.TemplateDir)
	if err != nil {
		return nil, ferrors.FileSystemError("read template", err).WithContext("path", opts.TemplateDir)
	}
	if !rootInfo.IsDir() {
		return nil, ferrors.ValidationFailed("template", opts.TemplateDir+" is not a directory")
	}

	ignore, err := git.LoadIgnoreFile(opts.IgnoreFile)
	if err != nil {
		return nil, ferrors.FileSystemError("read ignore file", err).WithContext("path", opts.IgnoreFile)
	}

	if err := os.MkdirAll(opts.Destination, 0o750); err != nil {
		return nil, ferrors.FileSystemError("create destination", err)
	}

	ws := workspace.NewManager(opts.Destination)
	if err := ws.Create(); err != nil {
		return nil, ferrors.FileSystemError("create staging directory", err)
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup staging directory", logfields.Error(err))
		}
	}()

	base := IgnoreBase(opts.TemplateDir, opts.IgnoreFile)
	slog.Info("Rendering template",
		logfields.Path(opts.TemplateDir),
		slog.Int("ignore_patterns", len(ignore.Patterns())),
		slog.String("ignore_base", base))

	stats, err := NewWalker(ctx, ignore).WithIgnoreBase(base).Walk(opts.TemplateDir, ws.GetPath())
	if err != nil {
		if _, ok := ferrors.As(err); ok {
			return nil, err
		}
		return nil, ferrors.FileSystemError("render template", err)
	}
	if len(stats.Unresolved) > 0 {
		slog.Warn("Template references unknown placeholders, left as is",
			slog.String("placeholders", strings.Join(stats.Unresolved, ",")))
	}
	if err := os.Chmod(ws.GetPath(), rootInfo.Mode().Perm()|0o700); err != nil {
		return nil, ferrors.FileSystemError("chmod project directory", err)
	}

	// The repository is created while the project is still staged so a failed
	// commit leaves nothing behind.
	commit, err := git.InitRepository(ws.GetPath(), ctx.Identity())
	if err != nil {
		return nil, ferrors.GitError("init", err).WithContext("path", projectDir)
	}
	if err := ws.Promote(projectDir); err != nil {
		return nil, ferrors.FileSystemError("move project into place", err)
	}

	slog.Info("Template rendered",
		logfields.Path(projectDir),
		slog.Int("rendered", stats.Rendered),
		slog.Int("copied", stats.Copied),
		slog.Int("skipped", stats.Skipped+stats.SkippedDirs))

	return &Result{ProjectDir: projectDir, Commit: commit, Stats: stats}, nil
}

// DefaultIgnoreFile returns the .gitignore next to the template directory,
// which is where the template's own repository keeps it.
func DefaultIgnoreFile(templateDir string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(templateDir)), ".gitignore")
}

// String renders a one-line summary.
func (r *Result) String() string {
	return fmt.Sprintf("%s (%d files, commit %.8s)", r.ProjectDir, r.Stats.Rendered+r.Stats.Copied, r.Commit)
}
