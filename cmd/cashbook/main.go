// Command cashbook is the operator CLI for the ledger. It talks to the same
// database as the server and honours the same reconciliation lock.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	s := newSession(os.Stdout, loadApp)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range commands(s) {
		commander.Register(c, "ledger")
	}

	flag.Parse()
	status := commander.Execute(context.Background())
	s.Close()
	os.Exit(int(status))
}
