package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sergey/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file."`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Config
	if path == "" {
		path = config.DefaultFile
	}
	if err := config.Init(path, i.Force); err != nil {
		return err
	}
	_, err := fmt.Fprintf(g.stderr(), "Wrote %s\n", path)
	return err
}
