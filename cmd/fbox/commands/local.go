package commands

import (
	"context"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/fbox/internal/tasks"
)

// LocalCmd groups the local development tasks.
type LocalCmd struct {
	Setup                    LocalSetupCmd                    `cmd:"" help:"Initial setup of a freshly generated project"`
	SetupWithProductionData  LocalSetupWithProductionDataCmd  `cmd:"" help:"Install everything and replicate the production database and media files"`
	Update                   LocalUpdateCmd                   `cmd:"" help:"Install new requirements and frontend tools, then migrate"`
	CreateVirtualenv         LocalCreateVirtualenvCmd         `cmd:"" help:"Create the virtualenv and install the Python requirements"`
	UpdateRequirementFiles   LocalUpdateRequirementFilesCmd   `cmd:"" help:"Pin installed versions in the requirement files"`
	FrontendTools            LocalFrontendToolsCmd            `cmd:"" help:"Install npm, bower and bundler dependencies"`
	CreateDotenv             LocalCreateDotenvCmd             `cmd:"" help:"Write a .env for local development"`
	CreateAndMigrateDatabase LocalCreateAndMigrateDatabaseCmd `cmd:"" help:"Replace the local database with an empty, migrated one"`
	PullDatabase             LocalPullDatabaseCmd             `cmd:"" help:"Replace the local database with the production database"`
	EmptyToPassword          LocalEmptyToPasswordCmd          `cmd:"" help:"Give users without a password the password \"password\""`
	PullMediafiles           LocalPullMediafilesCmd           `cmd:"" help:"Download the production media files"`
	Pull                     LocalPullCmd                     `cmd:"" help:"Pull database and media files, then update"`
	DumpDb                   LocalDumpDBCmd                   `cmd:"" name:"dump-db" help:"Dump the local database into tmp/"`
	LoadDb                   LocalLoadDBCmd                   `cmd:"" name:"load-db" help:"Replace the local database with a dump"`
}

// runTask loads the project and runs fn as the top-level command name.
func runTask(global *Global, root *CLI, name string, fn func(*tasks.Tasks, context.Context) error) (err error) {
	start := time.Now()
	defer func() { global.observe(name, start, err) }()

	t, err := global.Tasks(root)
	if err != nil {
		return err
	}
	return fn(t, global.Ctx)
}

type LocalSetupCmd struct{}

func (c *LocalSetupCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "local setup", (*tasks.Tasks).Setup)
}

type LocalSetupWithProductionDataCmd struct{}

func (c *LocalSetupWithProductionDataCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "local setup-with-production-data", (*tasks.Tasks).SetupWithProductionData)
}

type LocalUpdateCmd struct{}

func (c *LocalUpdateCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "local update", (*tasks.Tasks).Update)
}

type LocalCreateVirtualenvCmd struct{}

func (c *LocalCreateVirtualenvCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "local create-virtualenv", (*tasks.Tasks).CreateVirtualenv)
}

type LocalUpdateRequirementFilesCmd struct{}

func (c *LocalUpdateRequirementFilesCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "local update-requirement-files", (*tasks.Tasks).UpdateRequirementFiles)
}

type LocalFrontendToolsCmd struct{}

func (c *LocalFrontendToolsCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "local frontend-tools", (*tasks.Tasks).FrontendTools)
}

type LocalCreateDotenvCmd struct{}

func (c *LocalCreateDotenvCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "local create-dotenv", (*tasks.Tasks).CreateDotenv)
}

type LocalCreateAndMigrateDatabaseCmd struct{}

func (c *LocalCreateAndMigrateDatabaseCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "local create-and-migrate-database", (*tasks.Tasks).CreateAndMigrateDatabase)
}

type LocalPullDatabaseCmd struct{}

func (c *LocalPullDatabaseCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "local pull-database", (*tasks.Tasks).PullDatabase)
}

type LocalEmptyToPasswordCmd struct{}

func (c *LocalEmptyToPasswordCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "local empty-to-password", (*tasks.Tasks).EmptyToPassword)
}

type LocalPullMediafilesCmd struct{}

func (c *LocalPullMediafilesCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "local pull-mediafiles", (*tasks.Tasks).PullMediafiles)
}

type LocalPullCmd struct{}

func (c *LocalPullCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "local pull", (*tasks.Tasks).Pull)
}

type LocalDumpDBCmd struct{}

func (c *LocalDumpDBCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "local dump-db", func(t *tasks.Tasks, ctx context.Context) error {
		_, err := t.DumpDB(ctx)
		return err
	})
}

// LocalLoadDBCmd implements 'local load-db'.
type LocalLoadDBCmd struct {
	Filename string `arg:"" optional:"" help:"SQL dump to load"`
}

func (c *LocalLoadDBCmd) Run(g *Global, root *CLI) error {
	filename := c.Filename
	if filename != "" && !filepath.IsAbs(filename) {
		filename = filepath.Join(g.Workdir, filename)
	}
	return runTask(g, root, "local load-db", func(t *tasks.Tasks, ctx context.Context) error {
		return t.LoadDB(ctx, filename)
	})
}
