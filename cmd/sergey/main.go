// Command sergey compiles a folder of HTML written with sergey markup into a
// static site.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sergey/cmd/sergey/commands"
	"git.home.luguber.info/inful/sergey/internal/config"
	"git.home.luguber.info/inful/sergey/internal/foundation/errors"
	"git.home.luguber.info/inful/sergey/internal/version"
)

func main() {
	if _, err := config.LoadDotEnv(""); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	cli := &commands.CLI{}
	global := &commands.Global{}
	ctx := kong.Parse(cli,
		kong.Name("sergey"),
		kong.Description("A tiny static site compiler for HTML with imports, slots and links."),
		kong.UsageOnError(),
		kong.Bind(global, cli),
		kong.Vars{"version": version.String()},
	)
	if err := ctx.Run(); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
