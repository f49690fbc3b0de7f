// Command finctl looks up quotes, charts and portfolio valuations from the
// terminal, using the same market data pipeline as the API.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"finboard/internal/logger"
)

var commands = []subcommands.Command{
	&quoteCmd{},
	&historyCmd{},
	&valueCmd{},
	&tokenCmd{},
}

func main() {
	logger.Init(os.Getenv("ENV"), "warn")
	defer logger.Sync()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
