package commands

import (
	"path/filepath"

	"git.home.luguber.info/inful/fbox/internal/config"
	"git.home.luguber.info/inful/fbox/internal/scaffold"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force       bool   `help:"Overwrite existing configuration file"`
	ProjectName string `name:"project-name" help:"Python package of the Django project" default:"box"`
	Domain      string `help:"Production domain"`
	Database    string `help:"Production database name (default: derived from the domain)"`
	Host        string `help:"Production server as user@host"`
}

func (i *InitCmd) Run(global *Global, root *CLI) error {
	path := root.Config
	if !filepath.IsAbs(path) {
		path = filepath.Join(global.Workdir, path)
	}

	example := config.Project{
		ProjectName: i.ProjectName,
		Domain:      i.Domain,
		Database:    i.Database,
		Host:        i.Host,
	}
	if example.Database == "" && example.Domain != "" {
		example.Database = scaffold.Slugify(example.Domain)
	}

	global.Console.Info("Writing configuration to %s", path)
	if err := config.Init(path, i.Force, example); err != nil {
		global.Console.Error("Initialization failed")
		return err
	}
	global.Console.Success("Initialized successfully")
	return nil
}
