package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"git.home.luguber.info/inful/fbox/internal/dotenv"
	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
	"git.home.luguber.info/inful/fbox/internal/logfields"
	"git.home.luguber.info/inful/fbox/internal/workspace"
)

const alreadySetUp = "It seems that this project is already set up, aborting."

// Setup performs the initial setup of a freshly generated project.
func (t *Tasks) Setup(ctx context.Context) error {
	return t.run(ctx, "local.setup", func(ctx context.Context) error {
		if err := t.requireServices(ctx); err != nil {
			return err
		}
		if t.exists("venv") {
			t.ui.Error(alreadySetUp)
			return ferrors.Aborted(alreadySetUp)
		}

		for _, step := range []func(context.Context) error{
			t.CreateVirtualenv,
			t.UpdateRequirementFiles,
			t.FrontendTools,
			t.CreateDotenv,
			t.CreateAndMigrateDatabase,
		} {
			if err := step(ctx); err != nil {
				return err
			}
		}

		t.ui.Headline("Initial setup has completed successfully!")
		t.ui.Success("Next steps:")
		t.ui.Success("- Update the README: edit README.rst")
		t.ui.Success("- Create a superuser: venv/bin/python manage.py createsuperuser")
		t.ui.Success("- Run the development server: venv/bin/python manage.py runserver")
		t.ui.Success("- Check the project before deploying: fbox check ready")
		return nil
	})
}

// SetupWithProductionData installs the project and replicates the
// production database and media files.
func (t *Tasks) SetupWithProductionData(ctx context.Context) error {
	return t.run(ctx, "local.setup-with-production-data", func(ctx context.Context) error {
		if err := t.requireEnv(); err != nil {
			return err
		}
		if err := t.requireServices(ctx); err != nil {
			return err
		}
		if t.exists("venv") {
			t.ui.Error(alreadySetUp)
			return ferrors.Aborted(alreadySetUp)
		}

		for _, step := range []func(context.Context) error{
			t.CreateVirtualenv,
			t.FrontendTools,
			t.CreateDotenv,
			t.PullDatabase,
			t.EmptyToPassword,
			t.PullMediafiles,
		} {
			if err := step(ctx); err != nil {
				return err
			}
		}

		t.ui.Headline("Setup with production data has completed successfully!")
		t.ui.Success("Next steps:")
		t.ui.Success("- Create a superuser: venv/bin/python manage.py createsuperuser")
		t.ui.Success("- Run the development server: venv/bin/python manage.py runserver")
		return nil
	})
}

// Update installs new requirements and frontend tools and migrates.
func (t *Tasks) Update(ctx context.Context) error {
	return t.run(ctx, "local.update", func(ctx context.Context) error {
		if err := t.requireServices(ctx); err != nil {
			return err
		}
		if err := t.sh.Local(ctx, "venv/bin/pip install -r requirements/dev.txt"); err != nil {
			return err
		}
		if err := t.FrontendTools(ctx); err != nil {
			return err
		}
		return t.sh.Local(ctx, "venv/bin/python manage.py migrate")
	})
}

// CreateVirtualenv creates venv/ and installs the development requirements.
func (t *Tasks) CreateVirtualenv(ctx context.Context) error {
	return t.run(ctx, "local.create-virtualenv", func(ctx context.Context) error {
		line := fmt.Sprintf("virtualenv --python %s --prompt \"(venv:%s)\" venv", t.cfg.Python, t.cfg.Domain)
		if err := t.sh.Local(ctx, line); err != nil {
			return err
		}
		if err := t.sh.Local(ctx, "venv/bin/pip install -U wheel setuptools pip"); err != nil {
			return err
		}
		install := "venv/bin/pip install -r requirements/dev.txt"
		if t.goos == "darwin" {
			// clang rejects unknown compiler flags some C extensions pass.
			return t.sh.LocalEnv(ctx, install, map[string]string{
				"CFLAGS":   "-Qunused-arguments",
				"CPPFLAGS": "-Qunused-arguments",
			})
		}
		return t.sh.Local(ctx, install)
	})
}

// UpdateRequirementFiles pins the installed versions into the requirement
// files. common.txt goes first so it collects every package not listed
// elsewhere.
func (t *Tasks) UpdateRequirementFiles(ctx context.Context) error {
	return t.run(ctx, "local.update-requirement-files", func(ctx context.Context) error {
		return t.sh.Local(ctx, "venv/bin/pip-dump requirements/common.txt requirements/dev.txt")
	})
}

// FrontendTools installs npm, bower and bundler dependencies where the
// project declares them.
func (t *Tasks) FrontendTools(ctx context.Context) error {
	return t.run(ctx, "local.frontend-tools", func(ctx context.Context) error {
		static := t.cfg.StaticFiles
		var lines []string
		if t.exists("package.json") {
			lines = append(lines, "npm install")
		}
		if t.exists("bower.json") {
			lines = append(lines, "bower install")
		}
		if t.exists(static + "/bower.json") {
			lines = append(lines,
				"cd "+shellQuote(static)+" && npm install",
				"cd "+shellQuote(static)+" && bower install")
		}
		if t.exists("Gemfile") {
			lines = append(lines, "bundle install --path=.bundle/gems")
		}
		for _, line := range lines {
			if err := t.sh.Local(ctx, line); err != nil {
				return err
			}
		}

		if !t.exists(static + "/bower_components") {
			return nil
		}
		settings := static + "/scss/_settings.scss"
		if t.exists(settings) {
			t.ui.Warn("Not replacing %s with Foundation's version, file exists already.", settings)
			return nil
		}
		line := fmt.Sprintf("cp %s/bower_components/foundation/scss/foundation/_settings.scss %s/scss/",
			shellQuote(static), shellQuote(static))
		if err := t.sh.Local(ctx, line); err != nil {
			return err
		}
		t.ui.Warn("Please commit %s if you intend to modify this file!", settings)
		return nil
	})
}

// CreateDotenv writes .env with the local development settings and a fresh
// secret key.
func (t *Tasks) CreateDotenv(ctx context.Context) error {
	return t.run(ctx, "local.create-dotenv", func(context.Context) error {
		secret, err := dotenv.RandomString(t.random, dotenv.SecretKeyLength)
		if err != nil {
			return ferrors.InternalError("generate secret key", err)
		}
		path := t.path(dotenv.FileName)
		if err := dotenv.Write(path, dotenv.ForProject(t.cfg.ProjectName, t.cfg.DatabaseLocal, secret)); err != nil {
			return err
		}
		t.logger.Info("Wrote dotenv file", logfields.Path(path))
		return nil
	})
}

func (t *Tasks) recreateLocalDatabase(ctx context.Context) error {
	db := shellQuote(t.cfg.DatabaseLocal)
	if err := t.sh.Local(ctx, "dropdb --if-exists "+db); err != nil {
		return err
	}
	return t.sh.Local(ctx, "createdb "+db+" --encoding=UTF8 --template=template0")
}

func (t *Tasks) confirmReplaceDatabase() error {
	return t.confirm(fmt.Sprintf("Completely replace the local database %q (if it exists)?", t.cfg.DatabaseLocal))
}

// CreateAndMigrateDatabase replaces the local database with an empty,
// migrated one.
func (t *Tasks) CreateAndMigrateDatabase(ctx context.Context) error {
	return t.run(ctx, "local.create-and-migrate-database", func(ctx context.Context) error {
		if err := t.requireServices(ctx); err != nil {
			return err
		}
		if err := t.confirmReplaceDatabase(); err != nil {
			return err
		}
		if err := t.recreateLocalDatabase(ctx); err != nil {
			return err
		}
		for _, app := range []string{"elephantblog", "page"} {
			if _, err := t.sh.WarnOnly(ctx, "venv/bin/python manage.py makemigrations "+app); err != nil {
				return err
			}
		}
		return t.sh.Local(ctx, "venv/bin/python manage.py migrate")
	})
}

// PullDatabase replaces the local database with a dump of the production
// database streamed over ssh.
func (t *Tasks) PullDatabase(ctx context.Context) error {
	return t.run(ctx, "local.pull-database", func(ctx context.Context) error {
		if err := t.requireEnv(); err != nil {
			return err
		}
		if err := t.requireServices(ctx); err != nil {
			return err
		}
		if err := t.confirmReplaceDatabase(); err != nil {
			return err
		}
		if err := t.recreateLocalDatabase(ctx); err != nil {
			return err
		}
		t.logger.Info("Pulling database", logfields.Host(t.cfg.Host), logfields.Database(t.cfg.Database))
		line := fmt.Sprintf(
			"ssh %s \"source .profile && pg_dump %s --no-privileges --no-owner --no-reconnect\" | psql %s",
			shellQuote(t.cfg.Host), shellQuote(t.cfg.Database), shellQuote(t.cfg.DatabaseLocal))
		return t.sh.Local(ctx, line)
	})
}

// EmptyToPassword sets the password of users without one (for example SSO
// users) to "password".
func (t *Tasks) EmptyToPassword(ctx context.Context) error {
	return t.run(ctx, "local.empty-to-password", func(ctx context.Context) error {
		if err := t.requireEnv(); err != nil {
			return err
		}
		if err := t.requireServices(ctx); err != nil {
			return err
		}
		if err := t.sh.Local(ctx, "venv/bin/python manage.py update_empty_passwords password"); err != nil {
			return err
		}
		t.ui.Success("Users with empty passwords (for example SSO users) now have a password of \"password\" (without quotes).")
		return nil
	})
}

// PullMediafiles downloads the production media files. Local files missing
// on the server are kept.
func (t *Tasks) PullMediafiles(ctx context.Context) error {
	return t.run(ctx, "local.pull-mediafiles", func(ctx context.Context) error {
		if err := t.requireEnv(); err != nil {
			return err
		}
		if err := t.confirm("Completely replace local mediafiles?"); err != nil {
			return err
		}
		remote := fmt.Sprintf("%s:%s/media/", t.cfg.Host, t.cfg.Domain)
		return t.sh.Local(ctx, "rsync -pthrvz "+shellQuote(remote)+" media/")
	})
}

// Pull refreshes database and media files from production and updates the
// local installation.
func (t *Tasks) Pull(ctx context.Context) error {
	return t.run(ctx, "local.pull", func(ctx context.Context) error {
		if err := t.requireEnv(); err != nil {
			return err
		}
		if err := t.requireServices(ctx); err != nil {
			return err
		}
		for _, step := range []func(context.Context) error{
			t.PullDatabase,
			t.PullMediafiles,
			t.EmptyToPassword,
			t.Update,
		} {
			if err := step(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// DumpFileName returns the dump path below tmp/ for a dump taken at now.
func (t *Tasks) DumpFileName(now time.Time) string {
	stamp := now.Format("2006-01-02") + "-" + strconv.FormatInt(now.Unix(), 10)
	return t.path(fmt.Sprintf("tmp/%s-local-%s.sql", t.cfg.Database, stamp))
}

// DumpDB dumps the local database into tmp/ and returns the file written.
func (t *Tasks) DumpDB(ctx context.Context) (string, error) {
	var filename string
	err := t.run(ctx, "local.dump-db", func(ctx context.Context) error {
		if err := t.requireEnv(); err != nil {
			return err
		}
		if err := t.requireServices(ctx); err != nil {
			return err
		}
		filename = t.DumpFileName(t.now())
		dumps := workspace.NewPersistentManager(t.root, filepath.Base(filepath.Dir(filename)))
		if err := dumps.Create(); err != nil {
			return ferrors.FileSystemError("create dump directory", err)
		}
		line := fmt.Sprintf("pg_dump %s --no-privileges --no-owner --no-reconnect > %s",
			shellQuote(t.cfg.DatabaseLocal), shellQuote(filename))
		if err := t.sh.Local(ctx, line); err != nil {
			return err
		}
		t.ui.Success("Wrote a dump to %s", filename)
		return nil
	})
	if err != nil {
		return "", err
	}
	return filename, nil
}

// LoadDB replaces the local database with the contents of filename.
func (t *Tasks) LoadDB(ctx context.Context, filename string) error {
	return t.run(ctx, "local.load-db", func(ctx context.Context) error {
		if err := t.requireEnv(); err != nil {
			return err
		}
		if err := t.requireServices(ctx); err != nil {
			return err
		}
		if filename == "" {
			return ferrors.ValidationFailed("filename", `dump missing, run "fbox local load-db FILENAME"`)
		}
		path := filename
		if !filepath.IsAbs(path) {
			path = t.path(filename)
		}
		if _, err := os.Stat(path); err != nil {
			return ferrors.Aborted(fmt.Sprintf("%q does not exist.", filename)).WithContext("path", path)
		}
		if err := t.recreateLocalDatabase(ctx); err != nil {
			return err
		}
		return t.sh.Local(ctx, fmt.Sprintf("psql %s < %s", shellQuote(t.cfg.DatabaseLocal), shellQuote(path)))
	})
}
