package scaffold

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
	"git.home.luguber.info/inful/fbox/internal/git"
	"git.home.luguber.info/inful/fbox/internal/logfields"
)

// WalkStats summarises a template copy.
type WalkStats struct {
	Dirs        int
	Rendered    int // text files written with substitution
	Copied      int // binary files copied verbatim
	Symlinks    int
	Skipped     int // entries matched by an ignore pattern
	SkippedDirs int
	Unresolved  []string // placeholder names without a context value
}

// Walker copies a template tree while substituting placeholders.
type Walker struct {
	ctx        Context
	ignore     *git.IgnoreMatcher
	ignoreBase string
	logger     *slog.Logger
	unresolved map[string]bool
}

// NewWalker creates a Walker. A nil ignore matcher ignores nothing.
func NewWalker(ctx Context, ignore *git.IgnoreMatcher) *Walker {
	return &Walker{ctx: ctx, ignore: ignore, logger: slog.Default()}
}

// WithIgnoreBase sets the path of the template root relative to the
// directory holding the ignore file. Ignore patterns are matched against
// base/<path below the root>, so rooted patterns such as /project/media/*
// apply.
func (w *Walker) WithIgnoreBase(base string) *Walker {
	w.ignoreBase = base
	return w
}

// IgnoreBase returns the path of templateDir relative to the directory that
// holds ignoreFile, or "" when the ignore file does not sit above it.
func IgnoreBase(templateDir, ignoreFile string) string {
	if ignoreFile == "" {
		return ""
	}
	tpl, err := filepath.Abs(templateDir)
	if err != nil {
		return ""
	}
	dir, err := filepath.Abs(filepath.Dir(ignoreFile))
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(dir, tpl)
	if err != nil || rel == "." || escapes(rel) {
		return ""
	}
	return rel
}

// escapes reports whether the relative path rel leaves its base directory.
func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Walk copies everything below templateRoot into outDir. Path components
// below the root are substituted; the root itself maps onto outDir, which
// must already exist.
func (w *Walker) Walk(templateRoot, outDir string) (WalkStats, error) {
	var stats WalkStats
	w.unresolved = map[string]bool{}

	info, err := os.Stat(templateRoot)
	if err != nil {
		return stats, fmt.Errorf("template directory: %w", err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("template %s is not a directory", templateRoot)
	}

	err = filepath.WalkDir(templateRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(templateRoot, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if w.ignore.Match(filepath.Join(w.ignoreBase, rel), d.IsDir()) {
			if d.IsDir() {
				stats.SkippedDirs++
				w.logger.Debug("Skipping ignored directory", logfields.Path(rel))
				return filepath.SkipDir
			}
			stats.Skipped++
			w.logger.Debug("Skipping ignored file", logfields.Path(rel))
			return nil
		}

		w.collectUnresolved(rel)
		name := Substitute(rel, w.ctx)
		target := filepath.Join(outDir, name)
		if inside, err := filepath.Rel(outDir, target); err != nil || inside == "." || escapes(inside) {
			return ferrors.ValidationFailed("template", fmt.Sprintf("%s renders to %q, which is outside the project directory", rel, name))
		}

		switch {
		case d.IsDir():
			fi, err := d.Info()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(target, fi.Mode().Perm()|0o700); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			stats.Dirs++
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			if err := os.Symlink(Substitute(link, w.ctx), target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}
			stats.Symlinks++
		case d.Type().IsRegular():
			rendered, err := w.copyFile(path, target)
			if err != nil {
				return err
			}
			if rendered {
				stats.Rendered++
			} else {
				stats.Copied++
			}
		default:
			w.logger.Warn("Skipping special file", logfields.Path(rel))
		}
		return nil
	})
	for name := range w.unresolved {
		stats.Unresolved = append(stats.Unresolved, name)
	}
	sort.Strings(stats.Unresolved)
	return stats, err
}

func (w *Walker) collectUnresolved(text string) {
	for _, name := range Placeholders(text) {
		if _, ok := w.ctx[name]; !ok {
			w.unresolved[name] = true
		}
	}
}

// copyFile writes src to dst, substituting placeholders when src is valid
// UTF-8 text. Binary files are copied unchanged. It reports whether the file
// was rendered as text.
func (w *Walker) copyFile(src, dst string) (bool, error) {
	info, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	// #nosec G304 -- src is inside the template tree being walked.
	data, err := os.ReadFile(src)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", src, err)
	}

	rendered := utf8.Valid(data)
	if rendered {
		w.collectUnresolved(string(data))
		data = []byte(Substitute(string(data), w.ctx))
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return false, fmt.Errorf("create directory for %s: %w", dst, err)
	}
	if err := os.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write %s: %w", dst, err)
	}
	// WriteFile honours umask; keep the template's bits.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("chmod %s: %w", dst, err)
	}
	return rendered, nil
}
