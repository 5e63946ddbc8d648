// Package cli implements the alpaca-cli subcommands. Each command is a thin
// mapping from flags to brokerage SDK calls; the only command with real
// logic of its own is rebalance, which drives the order calculator in
// internal/rebalance.
package cli

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/subcommands"

	"github.com/NISCHALPI/alpaca-cli/internal/broker"
	"github.com/NISCHALPI/alpaca-cli/internal/config"
	"github.com/NISCHALPI/alpaca-cli/internal/render"
)

// App carries the shared state every command needs: configuration, logger,
// and a lazily constructed broker.
type App struct {
	Config     *config.Config
	ConfigPath string
	Log        *slog.Logger

	alpaca *broker.Alpaca
}

// Register adds all commands to the commander, grouped the way help output
// should present them.
func Register(c *subcommands.Commander, app *App) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&statusCmd{app: app}, "account")
	c.Register(&positionsCmd{app: app}, "account")
	c.Register(&historyCmd{app: app}, "account")

	c.Register(&buyCmd{app: app}, "trading")
	c.Register(&sellCmd{app: app}, "trading")
	c.Register(&ordersCmd{app: app}, "trading")
	c.Register(&cancelCmd{app: app}, "trading")
	c.Register(&closeCmd{app: app}, "trading")
	c.Register(&rebalanceCmd{app: app}, "trading")
	c.Register(&optionsCmd{app: app}, "trading")

	c.Register(&watchlistCmd{app: app}, "watchlists")

	c.Register(&clockCmd{app: app}, "market")
	c.Register(&calendarCmd{app: app}, "market")
	c.Register(&quoteCmd{app: app}, "market")
	c.Register(&snapshotCmd{app: app}, "market")
	c.Register(&barsCmd{app: app}, "market")
	c.Register(&cryptoQuoteCmd{app: app}, "market")
	c.Register(&newsCmd{app: app}, "market")

	c.Register(&dashboardCmd{app: app}, "other")
	c.Register(&journalCmd{app: app}, "other")
	c.Register(&configCmd{app: app}, "other")
}

// Broker returns the Alpaca broker, validating credentials on first use so
// commands that never touch the API (config, journal) work without keys.
func (a *App) Broker() (*broker.Alpaca, error) {
	if a.alpaca != nil {
		return a.alpaca, nil
	}
	if err := a.Config.Validate(); err != nil {
		return nil, err
	}
	a.alpaca = broker.NewAlpaca(a.Config.Alpaca.APIKey, a.Config.Alpaca.APISecret, a.Config.Alpaca.BaseURL)
	return a.alpaca, nil
}

// fail prints the error to stderr and maps it to an exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// outputFlags are the shared --format/--export flags carried by every
// listing command.
type outputFlags struct {
	format string
	export string
}

func (o *outputFlags) register(f *flag.FlagSet) {
	f.StringVar(&o.format, "format", "table", "output format: table, json, or csv")
	f.StringVar(&o.export, "export", "", "write output to a file (.json for JSON, otherwise CSV)")
}

// emit writes the table to stdout in the chosen format, plus to the export
// file when one was requested.
func (o *outputFlags) emit(t *render.Table) subcommands.ExitStatus {
	if err := t.Write(os.Stdout, o.format); err != nil {
		return fail(err)
	}
	if o.export != "" {
		if err := t.Export(o.export); err != nil {
			return fail(err)
		}
		fmt.Fprintf(os.Stderr, "exported to %s\n", o.export)
	}
	return subcommands.ExitSuccess
}
