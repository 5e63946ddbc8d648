// Command alpaca-cli is a terminal client for the Alpaca brokerage:
// account queries, order placement, market data, watchlists, portfolio
// rebalancing, and a live dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/NISCHALPI/alpaca-cli/internal/cli"
	"github.com/NISCHALPI/alpaca-cli/internal/config"
	"github.com/NISCHALPI/alpaca-cli/internal/util"
)

var (
	configPath = flag.String("config", config.DefaultPath(), "path to the config file")
	debug      = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if *debug {
		level = "debug"
	}
	logger := util.NewLogger(level)
	util.SetDefault(logger)

	app := &cli.App{
		Config:     cfg,
		ConfigPath: *configPath,
		Log:        logger,
	}

	commander := subcommands.NewCommander(flag.CommandLine, "alpaca-cli")
	cli.Register(commander, app)

	os.Exit(int(commander.Execute(context.Background())))
}
