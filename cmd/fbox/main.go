package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/fbox/cmd/fbox/commands"
	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
	"git.home.luguber.info/inful/fbox/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("fbox"),
		kong.Description("Generate Django projects and run their development tasks."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	global := commands.NewGlobal(ctx, cli, os.Stdin, os.Stdout)

	err := parser.Run(global, cli)
	stop()

	if merr := global.WriteMetrics(cli.MetricsFile); merr != nil && err == nil {
		err = merr
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			global.Console.Error("Interrupted")
		}
		ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
