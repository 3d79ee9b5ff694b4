// Command invest manages a portfolio of equities, bonds and fixed deposits.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/etnz/folio/cmd"
)

func main() {
	// Answers shell completion requests (COMP_LINE) and exits.
	cmd.Completion(flag.CommandLine).Complete("invest")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	known := map[string]bool{"help": true, "flags": true}
	for _, c := range cmd.Commands {
		commander.Register(c, "")
		known[c.Name()] = true
	}

	flag.Parse()

	// Unknown subcommands are looked up as invest-<name> executables.
	if sub := flag.Arg(0); sub != "" && !known[sub] {
		if found, code := cmd.RunExtension(sub, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}
