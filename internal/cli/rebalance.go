package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/NISCHALPI/alpaca-cli/internal/broker"
	"github.com/NISCHALPI/alpaca-cli/internal/journal"
	"github.com/NISCHALPI/alpaca-cli/internal/rebalance"
	"github.com/NISCHALPI/alpaca-cli/internal/render"
)

// rebalanceCmd computes and optionally executes the orders that move the
// account to a target weight allocation.
type rebalanceCmd struct {
	app         *App
	out         outputFlags
	weightsPath string
	execute     bool
	yes         bool
	force       bool
	allowShort  bool
	orderType   string
	tif         string
}

func (*rebalanceCmd) Name() string     { return "rebalance" }
func (*rebalanceCmd) Synopsis() string { return "rebalance the portfolio to target weights" }
func (*rebalanceCmd) Usage() string {
	return `alpaca-cli rebalance -weights <file> [-execute [-yes]] [-force] [-allow-short] [-order-type market|limit] [-tif day|gtc]

  Reads a symbol -> fraction map from a JSON or YAML file, compares it to the
  current account, and prints the orders needed to reach the targets. Orders
  are only submitted with -execute; sells always go in before buys. A CASH
  entry (or the remainder up to 1.0) stays uninvested.
`
}

func (c *rebalanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.weightsPath, "weights", "", "path to the target weights file (required)")
	f.BoolVar(&c.execute, "execute", false, "submit the orders (default is a dry run)")
	f.BoolVar(&c.yes, "yes", false, "skip the confirmation prompt")
	f.BoolVar(&c.force, "force", false, "proceed even when the market is closed")
	f.BoolVar(&c.allowShort, "allow-short", false, "allow rebalancing into short positions")
	f.StringVar(&c.orderType, "order-type", "market", "order type for generated orders: market or limit")
	f.StringVar(&c.tif, "tif", "day", "time in force for generated orders")
	c.out.register(f)
}

func (c *rebalanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.weightsPath == "" {
		return fail(fmt.Errorf("-weights is required"))
	}
	if c.orderType != "market" && c.orderType != "limit" {
		return fail(fmt.Errorf("unsupported -order-type %q", c.orderType))
	}

	weights, err := rebalance.LoadWeights(c.weightsPath)
	if err != nil {
		return fail(err)
	}

	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}

	if st := c.checkMarketOpen(b, weights); st != subcommands.ExitSuccess {
		return st
	}

	acct, err := b.GetAccount(ctx)
	if err != nil {
		return fail(err)
	}
	held, err := b.GetPositions(ctx)
	if err != nil {
		return fail(err)
	}

	positions := make(map[string]float64, len(held))
	for _, p := range held {
		positions[p.Symbol] = p.Qty.InexactFloat64()
	}

	if err := c.checkTradable(ctx, b, weights); err != nil {
		return fail(err)
	}

	symbols := tradeUniverse(positions, weights)
	prices, err := b.LatestPrices(ctx, symbols)
	if err != nil {
		return fail(err)
	}

	equity := acct.Equity.InexactFloat64()
	orders, err := rebalance.Calculate(equity, positions, weights, prices, c.allowShort)
	if err != nil {
		return fail(err)
	}
	orders = rebalance.SortForExecution(orders)

	if len(orders) == 0 {
		fmt.Println("portfolio already balanced, nothing to do")
		return subcommands.ExitSuccess
	}

	t := c.planTable(orders, prices)
	if st := c.out.emit(t); st != subcommands.ExitSuccess {
		return st
	}

	if !c.execute {
		fmt.Println(render.Dim("dry run; re-run with -execute to submit"))
		return c.submit(ctx, broker.NewSimulator(), orders, prices, true)
	}

	if !c.yes && !confirm(len(orders), c.app.Config.IsPaper()) {
		fmt.Println("aborted")
		return subcommands.ExitSuccess
	}
	return c.submitGuarded(ctx, b, acct.Equity, orders, prices)
}

// checkMarketOpen fails when the equity market is closed, unless -force is
// set or every target trades around the clock (crypto).
func (c *rebalanceCmd) checkMarketOpen(b *broker.Alpaca, weights map[string]float64) subcommands.ExitStatus {
	if c.force {
		return subcommands.ExitSuccess
	}
	allCrypto := true
	for sym := range weights {
		if sym != rebalance.CashSymbol && !strings.Contains(sym, "/") {
			allCrypto = false
			break
		}
	}
	if allCrypto {
		return subcommands.ExitSuccess
	}
	clock, err := b.Trading().GetClock()
	if err != nil {
		return fail(fmt.Errorf("fetching market clock: %w", err))
	}
	if !clock.IsOpen {
		return fail(fmt.Errorf("market is closed (next open %s); use -force to override",
			clock.NextOpen.Local().Format("Mon Jan 2 15:04 MST")))
	}
	return subcommands.ExitSuccess
}

// checkTradable rejects target symbols the brokerage will not accept orders
// for, before any order math happens.
func (c *rebalanceCmd) checkTradable(ctx context.Context, b *broker.Alpaca, weights map[string]float64) error {
	for sym, w := range weights {
		if sym == rebalance.CashSymbol || w == 0 {
			continue
		}
		ok, err := b.IsAssetTradable(ctx, sym)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("asset %s is not tradable", sym)
		}
	}
	return nil
}

func (c *rebalanceCmd) planTable(orders []rebalance.OrderIntent, prices map[string]float64) *render.Table {
	t := &render.Table{
		Title:   "Rebalance Plan " + render.ModeTag(c.app.Config.IsPaper()),
		Columns: []string{"Side", "Symbol", "Qty", "Est. Price", "Est. Notional"},
	}
	for _, o := range orders {
		price := decimal.NewFromFloat(prices[o.Symbol])
		notional := o.Qty.Mul(price)
		t.AddRow(
			strings.ToUpper(string(o.Side)),
			o.Symbol,
			render.Qty(o.Qty),
			render.Currency(price),
			render.Currency(notional),
		)
	}
	return t
}

func (c *rebalanceCmd) submitGuarded(ctx context.Context, b *broker.Alpaca, equity decimal.Decimal, orders []rebalance.OrderIntent, prices map[string]float64) subcommands.ExitStatus {
	guard := broker.NewRiskGuard(c.app.Config.Trading.MaxPositionPct)
	for _, o := range orders {
		req := c.toRequest(o, prices)
		if err := guard.CheckOrder(req, decimal.NewFromFloat(prices[o.Symbol]), equity); err != nil {
			return fail(err)
		}
	}
	return c.submit(ctx, b, orders, prices, false)
}

// submit sends every order to the sink in sequence and journals the result.
// A submission failure stops the run immediately; orders already accepted
// stay accepted, which the remaining journal entries make auditable.
func (c *rebalanceCmd) submit(ctx context.Context, sink broker.OrderSink, orders []rebalance.OrderIntent, prices map[string]float64, dryRun bool) subcommands.ExitStatus {
	j, err := journal.Open(c.app.Config.Storage.JournalPath)
	if err != nil {
		return fail(err)
	}
	defer j.Close()

	for _, o := range orders {
		req := c.toRequest(o, prices)

		placed, err := sink.SubmitOrder(ctx, req)
		if err != nil {
			return fail(err)
		}
		var orderID string
		if !dryRun {
			orderID = placed.ID
			c.app.Log.Info("order submitted",
				"symbol", o.Symbol, "side", o.Side, "qty", o.Qty.String(), "id", orderID)
			fmt.Printf("submitted %s %s %s (order %s)\n", o.Side, render.Qty(o.Qty), o.Symbol, orderID)
		}

		entry := journal.Entry{
			Symbol:  o.Symbol,
			Side:    string(o.Side),
			Qty:     o.Qty,
			Kind:    req.Type,
			OrderID: orderID,
			DryRun:  dryRun,
		}
		if err := j.Record(ctx, entry); err != nil {
			c.app.Log.Warn("journal write failed", "symbol", o.Symbol, "err", err)
		}
	}
	if !dryRun {
		fmt.Printf("%d orders submitted\n", len(orders))
	}
	return subcommands.ExitSuccess
}

func (c *rebalanceCmd) toRequest(o rebalance.OrderIntent, prices map[string]float64) broker.OrderRequest {
	req := broker.OrderRequest{
		Symbol:      o.Symbol,
		Qty:         o.Qty,
		Side:        string(o.Side),
		Type:        c.orderType,
		TimeInForce: c.tif,
	}
	if c.orderType == "limit" {
		limit := decimal.NewFromFloat(prices[o.Symbol]).Round(2)
		req.LimitPrice = &limit
	}
	return req
}

// tradeUniverse returns every symbol the rebalance touches, CASH excluded.
func tradeUniverse(positions, weights map[string]float64) []string {
	seen := make(map[string]bool, len(positions)+len(weights))
	var symbols []string
	for sym := range positions {
		if sym != rebalance.CashSymbol && !seen[sym] {
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}
	for sym := range weights {
		if sym != rebalance.CashSymbol && !seen[sym] {
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}
	return symbols
}

func confirm(n int, paper bool) bool {
	mode := "LIVE"
	if paper {
		mode = "paper"
	}
	fmt.Printf("submit %d orders to the %s account? [y/N] ", n, mode)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
