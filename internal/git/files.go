package git

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// TrackedFiles lists index entries below dir whose base name matches glob,
// like `git ls-files '<glob>'` run in dir. Entries matching exclude (when
// non-nil) are dropped. Paths are slash separated and relative to dir, which
// may be a subdirectory of the worktree.
func TrackedFiles(dir, glob string, exclude *regexp.Regexp) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	prefix, err := filepath.Rel(wt.Filesystem.Root(), abs)
	if err != nil {
		return nil, fmt.Errorf("locate %s in worktree: %w", abs, err)
	}
	prefix = filepath.ToSlash(prefix)
	if prefix == "." {
		prefix = ""
	} else {
		prefix += "/"
	}

	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var files []string
	for _, entry := range idx.Entries {
		if !strings.HasPrefix(entry.Name, prefix) {
			continue
		}
		name := strings.TrimPrefix(entry.Name, prefix)
		ok, err := path.Match(glob, path.Base(name))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", glob, err)
		}
		if !ok {
			continue
		}
		if exclude != nil && exclude.MatchString(name) {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}
