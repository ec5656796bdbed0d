// gordinal evaluates ordered logistic distributions from the command
// line.
package main

import (
	"fmt"
	"os"

	"github.com/samuelfneumann/gordinal/internal/config"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "gordinal",
		Usage: "evaluate ordered logistic distributions",
		Flags: []cli.Flag{
			&config.ConfigFlag,
			&config.LogLevelFlag,
		},
		Commands: []*cli.Command{
			&ProbsCommand,
			&KLCommand,
		},
	}
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
