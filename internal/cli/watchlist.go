package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/subcommands"

	"github.com/NISCHALPI/alpaca-cli/internal/render"
)

// watchlistCmd manages account watchlists. The first positional argument
// selects the action.
type watchlistCmd struct {
	app *App
	out outputFlags
}

func (*watchlistCmd) Name() string     { return "watchlist" }
func (*watchlistCmd) Synopsis() string { return "manage watchlists" }
func (*watchlistCmd) Usage() string {
	return `alpaca-cli watchlist list
alpaca-cli watchlist show <id|name>
alpaca-cli watchlist create <name> [symbol ...]
alpaca-cli watchlist update <id|name> <new-name> [symbol ...]
alpaca-cli watchlist add <id|name> <symbol>
alpaca-cli watchlist remove <id|name> <symbol>
alpaca-cli watchlist delete <id|name>
`
}

func (c *watchlistCmd) SetFlags(f *flag.FlagSet) { c.out.register(f) }

func (c *watchlistCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	ac := b.Trading()
	action, args := f.Arg(0), f.Args()[1:]

	switch action {
	case "list":
		return c.list(ac)
	case "show":
		if len(args) != 1 {
			return usage(c)
		}
		return c.show(ac, args[0])
	case "create":
		if len(args) < 1 {
			return usage(c)
		}
		return c.create(ac, args[0], upperAll(args[1:]))
	case "update":
		if len(args) < 2 {
			return usage(c)
		}
		return c.update(ac, args[0], args[1], upperAll(args[2:]))
	case "add":
		if len(args) != 2 {
			return usage(c)
		}
		return c.add(ac, args[0], strings.ToUpper(args[1]))
	case "remove":
		if len(args) != 2 {
			return usage(c)
		}
		return c.remove(ac, args[0], strings.ToUpper(args[1]))
	case "delete":
		if len(args) != 1 {
			return usage(c)
		}
		return c.delete(ac, args[0])
	default:
		fmt.Fprintf(os.Stderr, "unknown watchlist action %q\n", action)
		return subcommands.ExitUsageError
	}
}

func usage(c subcommands.Command) subcommands.ExitStatus {
	fmt.Fprint(os.Stderr, c.Usage())
	return subcommands.ExitUsageError
}

func upperAll(syms []string) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = strings.ToUpper(s)
	}
	return out
}

// resolve accepts either a watchlist ID or a case-insensitive name.
func resolve(ac *alpaca.Client, idOrName string) (string, error) {
	lists, err := ac.GetWatchlists()
	if err != nil {
		return "", fmt.Errorf("fetching watchlists: %w", err)
	}
	for _, w := range lists {
		if w.ID == idOrName || strings.EqualFold(w.Name, idOrName) {
			return w.ID, nil
		}
	}
	return "", fmt.Errorf("no watchlist matching %q", idOrName)
}

func (c *watchlistCmd) list(ac *alpaca.Client) subcommands.ExitStatus {
	lists, err := ac.GetWatchlists()
	if err != nil {
		return fail(err)
	}
	t := &render.Table{
		Title:   "Watchlists",
		Columns: []string{"ID", "Name", "Updated"},
	}
	for _, w := range lists {
		updated := w.UpdatedAt
		if ts, err := time.Parse(time.RFC3339, w.UpdatedAt); err == nil {
			updated = ts.Format("2006-01-02 15:04")
		}
		t.AddRow(w.ID, w.Name, updated)
	}
	return c.out.emit(t)
}

func (c *watchlistCmd) show(ac *alpaca.Client, idOrName string) subcommands.ExitStatus {
	id, err := resolve(ac, idOrName)
	if err != nil {
		return fail(err)
	}
	// GetWatchlists omits assets; the single fetch includes them.
	w, err := ac.GetWatchlist(id)
	if err != nil {
		return fail(err)
	}
	t := &render.Table{
		Title:   "Watchlist " + w.Name,
		Columns: []string{"Symbol", "Name", "Exchange", "Tradable"},
	}
	for _, a := range w.Assets {
		t.AddRow(a.Symbol, a.Name, a.Exchange, fmt.Sprintf("%t", a.Tradable))
	}
	return c.out.emit(t)
}

func (c *watchlistCmd) create(ac *alpaca.Client, name string, symbols []string) subcommands.ExitStatus {
	w, err := ac.CreateWatchlist(alpaca.CreateWatchlistRequest{Name: name, Symbols: symbols})
	if err != nil {
		return fail(err)
	}
	fmt.Printf("created watchlist %q (%s) with %d symbols\n", w.Name, w.ID, len(symbols))
	return subcommands.ExitSuccess
}

func (c *watchlistCmd) update(ac *alpaca.Client, idOrName, newName string, symbols []string) subcommands.ExitStatus {
	id, err := resolve(ac, idOrName)
	if err != nil {
		return fail(err)
	}
	w, err := ac.UpdateWatchlist(id, alpaca.UpdateWatchlistRequest{Name: newName, Symbols: symbols})
	if err != nil {
		return fail(err)
	}
	fmt.Printf("updated watchlist %q (%s)\n", w.Name, w.ID)
	return subcommands.ExitSuccess
}

func (c *watchlistCmd) add(ac *alpaca.Client, idOrName, symbol string) subcommands.ExitStatus {
	id, err := resolve(ac, idOrName)
	if err != nil {
		return fail(err)
	}
	if _, err := ac.AddSymbolToWatchlist(id, alpaca.AddSymbolToWatchlistRequest{Symbol: symbol}); err != nil {
		return fail(err)
	}
	fmt.Printf("added %s\n", symbol)
	return subcommands.ExitSuccess
}

func (c *watchlistCmd) remove(ac *alpaca.Client, idOrName, symbol string) subcommands.ExitStatus {
	id, err := resolve(ac, idOrName)
	if err != nil {
		return fail(err)
	}
	if err := ac.RemoveSymbolFromWatchlist(id, alpaca.RemoveSymbolFromWatchlistRequest{Symbol: symbol}); err != nil {
		return fail(err)
	}
	fmt.Printf("removed %s\n", symbol)
	return subcommands.ExitSuccess
}

func (c *watchlistCmd) delete(ac *alpaca.Client, idOrName string) subcommands.ExitStatus {
	id, err := resolve(ac, idOrName)
	if err != nil {
		return fail(err)
	}
	if err := ac.DeleteWatchlist(id); err != nil {
		return fail(err)
	}
	fmt.Println("watchlist deleted")
	return subcommands.ExitSuccess
}
