package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the party card game server"`
	Seed    SeedCmd          `cmd:"" help:"Load a card dictionary into the database"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("partydeck"),
		kong.Description("Room-based party card game server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
