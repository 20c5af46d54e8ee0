package git

import (
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/fbox/internal/logfields"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// InitialCommitMessage is the message of the commit created for new projects.
const InitialCommitMessage = "Initial commit"

var fallbackIdentity = Identity{Name: "fbox", Email: "fbox@localhost"}

// InitRepository runs the equivalent of `git init`, `git add -A` and
// `git commit -m "Initial commit"` in dir and returns the commit hash.
func InitRepository(dir string, author Identity) (string, error) {
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		return "", fmt.Errorf("init repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("get worktree: %w", err)
	}

	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("stage files: %w", err)
	}

	author = author.OrDefault(fallbackIdentity)
	hash, err := wt.Commit(InitialCommitMessage, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	slog.Debug("Initialized repository",
		logfields.Path(dir),
		slog.String("commit", hash.String()[:8]),
		slog.String("author", author.Name))
	return hash.String(), nil
}
