package git

import (
	"log/slog"

	"git.home.luguber.info/inful/fbox/internal/logfields"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// Identity is the author identity taken from git config.
type Identity struct {
	Name  string
	Email string
}

// LookupIdentity reads user.name and user.email the way `git config` would
// when run in dir: repository config first, then global config. Missing
// values are returned empty; lookup never fails.
func LookupIdentity(dir string) Identity {
	cfg, err := loadScopedConfig(dir)
	if err != nil {
		slog.Debug("git identity unavailable", logfields.Path(dir), logfields.Error(err))
		return Identity{}
	}
	return Identity{Name: cfg.User.Name, Email: cfg.User.Email}
}

func loadScopedConfig(dir string) (*config.Config, error) {
	if dir != "" {
		repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
		if err == nil {
			return repo.ConfigScoped(config.GlobalScope)
		}
	}
	return config.LoadConfig(config.GlobalScope)
}

// OrDefault fills empty fields from fallback.
func (i Identity) OrDefault(fallback Identity) Identity {
	if i.Name == "" {
		i.Name = fallback.Name
	}
	if i.Email == "" {
		i.Email = fallback.Email
	}
	return i
}
