package commands

import "git.home.luguber.info/inful/fbox/internal/tasks"

// CheckCmd groups the project checks. Without a subcommand it runs 'all'.
type CheckCmd struct {
	All   CheckAllCmd   `cmd:"" default:"1" help:"Run coding style checks and Django's system checks"`
	Ready CheckReadyCmd `cmd:"" help:"Check whether the project is ready for production"`
}

type CheckAllCmd struct{}

func (c *CheckAllCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "check", (*tasks.Tasks).Check)
}

type CheckReadyCmd struct{}

func (c *CheckReadyCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, "check ready", (*tasks.Tasks).Ready)
}
