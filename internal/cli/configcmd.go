package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/NISCHALPI/alpaca-cli/internal/render"
)

// configCmd inspects and edits the tool configuration.
type configCmd struct {
	app *App
}

func (*configCmd) Name() string     { return "config" }
func (*configCmd) Synopsis() string { return "show, verify, or edit configuration" }
func (*configCmd) Usage() string {
	return `alpaca-cli config show
alpaca-cli config verify
alpaca-cli config set-mode paper|live
`
}

func (*configCmd) SetFlags(_ *flag.FlagSet) {}

func (c *configCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	switch f.Arg(0) {
	case "show":
		return c.show()
	case "verify":
		return c.verify(ctx)
	case "set-mode":
		if f.NArg() != 2 {
			fmt.Fprint(os.Stderr, c.Usage())
			return subcommands.ExitUsageError
		}
		return c.setMode(f.Arg(1))
	default:
		fmt.Fprintf(os.Stderr, "unknown config action %q\n", f.Arg(0))
		return subcommands.ExitUsageError
	}
}

func (c *configCmd) show() subcommands.ExitStatus {
	cfg := c.app.Config
	fmt.Printf("config file:   %s\n", c.app.ConfigPath)
	fmt.Printf("mode:          %s\n", render.ModeTag(cfg.IsPaper()))
	fmt.Printf("base url:      %s\n", cfg.Alpaca.BaseURL)
	fmt.Printf("api key:       %s\n", maskKey(cfg.Alpaca.APIKey))
	if cfg.Source != "" {
		fmt.Printf("key source:    %s\n", cfg.Source)
	}
	fmt.Printf("journal:       %s\n", cfg.Storage.JournalPath)
	fmt.Printf("max position:  %.0f%% of equity\n", cfg.Trading.MaxPositionPct*100)
	fmt.Printf("log level:     %s\n", cfg.Logging.Level)
	return subcommands.ExitSuccess
}

// verify checks credentials by making one authenticated API call.
func (c *configCmd) verify(ctx context.Context) subcommands.ExitStatus {
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	acct, err := b.GetAccount(ctx)
	if err != nil {
		return fail(fmt.Errorf("credentials rejected: %w", err))
	}
	fmt.Printf("credentials OK: account %s (%s) %s\n",
		acct.ID, acct.Status, render.ModeTag(c.app.Config.IsPaper()))
	return subcommands.ExitSuccess
}

func (c *configCmd) setMode(mode string) subcommands.ExitStatus {
	if err := c.app.Config.SetMode(c.app.ConfigPath, mode); err != nil {
		return fail(err)
	}
	fmt.Printf("mode set to %s (%s)\n", strings.ToLower(mode), c.app.Config.Alpaca.BaseURL)
	return subcommands.ExitSuccess
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
