package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/imageforge/cmd/imageforge/commands"
	"git.home.luguber.info/inful/imageforge/internal/errors"
	"git.home.luguber.info/inful/imageforge/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("imageforge"),
		kong.Description("Generate and publish hardened container images."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	global := &commands.Global{Logger: cli.Logger()}
	if err := ctx.Run(global, &cli); err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
		adapter.HandleError(err)
	}
}
