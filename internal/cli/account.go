package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/subcommands"

	"github.com/NISCHALPI/alpaca-cli/internal/render"
)

// statusCmd shows account financial metrics.
type statusCmd struct {
	app *App
	out outputFlags
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show account status and financial metrics" }
func (*statusCmd) Usage() string {
	return `alpaca-cli status [-format table|json|csv] [-export <path>]

  Displays cash, equity, buying power, and margin figures for the account.
`
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) { c.out.register(f) }

func (c *statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	acct, err := b.GetAccount(ctx)
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   "Account " + render.ModeTag(c.app.Config.IsPaper()),
		Columns: []string{"Metric", "Value"},
	}
	dayPL := acct.Equity.Sub(acct.LastEquity)
	t.AddRow("ID", acct.ID)
	t.AddRow("Status", acct.Status)
	t.AddRow("Currency", acct.Currency)
	t.AddRow("Cash", render.Currency(acct.Cash))
	t.AddRow("Equity", render.Currency(acct.Equity))
	t.AddRow("Day P/L", render.Signed(render.Currency(dayPL), !dayPL.IsNegative()))
	t.AddRow("Buying Power", render.Currency(acct.BuyingPower))
	t.AddRow("Portfolio Value", render.Currency(acct.PortfolioValue))
	t.AddRow("Initial Margin", render.Currency(acct.InitialMargin))
	t.AddRow("Maintenance Margin", render.Currency(acct.MaintenanceMargin))
	t.AddRow("Daytrade Count", fmt.Sprintf("%d", acct.DaytradeCount))
	t.AddRow("Pattern Day Trader", fmt.Sprintf("%t", acct.PatternDayTrader))
	t.AddRow("Trading Blocked", fmt.Sprintf("%t", acct.TradingBlocked))
	return c.out.emit(t)
}

// positionsCmd lists open positions.
type positionsCmd struct {
	app *App
	out outputFlags
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "list open positions with P/L" }
func (*positionsCmd) Usage() string {
	return `alpaca-cli positions [-format table|json|csv] [-export <path>]
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) { c.out.register(f) }

func (c *positionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	positions, err := b.GetPositions(ctx)
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   "Positions " + render.ModeTag(c.app.Config.IsPaper()),
		Columns: []string{"Symbol", "Qty", "Side", "Entry", "Current", "Market Value", "P/L", "P/L %"},
	}
	for _, p := range positions {
		up := !p.UnrealizedPL.IsNegative()
		t.AddRow(
			p.Symbol,
			render.Qty(p.Qty),
			p.Side,
			render.Currency(p.AvgEntryPrice),
			render.Currency(p.CurrentPrice),
			render.Currency(p.MarketValue),
			render.Signed(render.Currency(p.UnrealizedPL), up),
			render.Signed(render.Percent(p.UnrealizedPLPC), up),
		)
	}
	return c.out.emit(t)
}

// historyCmd shows portfolio value history.
type historyCmd struct {
	app       *App
	out       outputFlags
	period    string
	timeframe string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show portfolio value history" }
func (*historyCmd) Usage() string {
	return `alpaca-cli history [-period 1M] [-timeframe 1D] [-format table|json|csv]

  Periods: 1D, 1W, 1M, 3M, 1A, all. Timeframes: 1Min, 5Min, 15Min, 1H, 1D.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", "1M", "history period (1D, 1W, 1M, 3M, 1A, all)")
	f.StringVar(&c.timeframe, "timeframe", "1D", "sampling timeframe (1Min, 5Min, 15Min, 1H, 1D)")
	c.out.register(f)
}

func (c *historyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	hist, err := b.Trading().GetPortfolioHistory(alpaca.GetPortfolioHistoryRequest{
		Period:    c.period,
		TimeFrame: alpaca.TimeFrame(c.timeframe),
	})
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   fmt.Sprintf("Portfolio History (%s)", c.period),
		Columns: []string{"Time", "Equity", "P/L", "P/L %"},
	}
	for i := range hist.Timestamp {
		if i >= len(hist.Equity) {
			break
		}
		ts := time.Unix(hist.Timestamp[i], 0).Format("2006-01-02 15:04")
		row := []string{ts, render.Currency(hist.Equity[i]), "", ""}
		if i < len(hist.ProfitLoss) {
			up := !hist.ProfitLoss[i].IsNegative()
			row[2] = render.Signed(render.Currency(hist.ProfitLoss[i]), up)
		}
		if i < len(hist.ProfitLossPct) {
			row[3] = render.Signed(render.Percent(hist.ProfitLossPct[i]), !hist.ProfitLossPct[i].IsNegative())
		}
		t.AddRow(row...)
	}
	return c.out.emit(t)
}
