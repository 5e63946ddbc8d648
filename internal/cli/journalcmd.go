package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/NISCHALPI/alpaca-cli/internal/journal"
	"github.com/NISCHALPI/alpaca-cli/internal/render"
)

// journalCmd lists the local rebalance journal.
type journalCmd struct {
	app   *App
	out   outputFlags
	limit int
}

func (*journalCmd) Name() string     { return "journal" }
func (*journalCmd) Synopsis() string { return "list locally journaled rebalance orders" }
func (*journalCmd) Usage() string {
	return `alpaca-cli journal [-limit 50]
`
}

func (c *journalCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "limit", 50, "maximum entries to show")
	c.out.register(f)
}

func (c *journalCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	j, err := journal.Open(c.app.Config.Storage.JournalPath)
	if err != nil {
		return fail(err)
	}
	defer j.Close()

	entries, err := j.List(ctx, c.limit)
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   "Rebalance Journal",
		Columns: []string{"Time", "Symbol", "Side", "Qty", "Kind", "Order ID", "Dry Run"},
	}
	for _, e := range entries {
		t.AddRow(
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Symbol,
			e.Side,
			render.Qty(e.Qty),
			e.Kind,
			e.OrderID,
			fmt.Sprintf("%t", e.DryRun),
		)
	}
	return c.out.emit(t)
}
