// Command bufy is the budgeting CLI. Run "bufy help" for the list of
// subcommands and "bufy topic" for the user documentation.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/brunoclpinto/BUFY/cmd"
)

func main() {
	// Shell completion: when invoked by the completion machinery this
	// prints the candidates and exits, otherwise it is a no-op.
	completion().Complete("bufy")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	sub := make(map[string]*complete.Command, 16)
	for _, c := range cmd.Commands() {
		sub[c.Name()] = &complete.Command{
			Flags: map[string]complete.Predictor{
				"l": predict.Something,
			},
		}
	}
	return &complete.Command{Sub: sub}
}
