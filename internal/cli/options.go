package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/NISCHALPI/alpaca-cli/internal/render"
)

// optionsCmd covers option contract discovery, chain snapshots, quotes, and
// contract orders. The first positional argument selects the action.
type optionsCmd struct {
	app *App
	out outputFlags

	expiry     string
	expiryFrom string
	expiryTo   string
	optType    string
	strikeFrom string
	strikeTo   string
	limit      int

	limitPrice string
	tif        string
}

func (*optionsCmd) Name() string     { return "options" }
func (*optionsCmd) Synopsis() string { return "browse and trade option contracts" }
func (*optionsCmd) Usage() string {
	return `alpaca-cli options contracts <underlying> [-expiry|-expiry-from|-expiry-to YYYY-MM-DD] [-type call|put] [-strike-from n] [-strike-to n] [-limit 20]
alpaca-cli options contract <contract-symbol>
alpaca-cli options chain <underlying> [-expiry YYYY-MM-DD] [-type call|put] [-strike-from n] [-strike-to n] [-limit 50]
alpaca-cli options quote <contract-symbol> [contract-symbol ...]
alpaca-cli options buy <contract-symbol> <qty> [-limit-price n] [-tif day|gtc|ioc|fok]
alpaca-cli options sell <contract-symbol> <qty> [-limit-price n] [-tif day|gtc|ioc|fok]

  Contract symbols use OCC notation, e.g. AAPL240315C00150000.
`
}

func (c *optionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.expiry, "expiry", "", "exact expiration date (YYYY-MM-DD)")
	f.StringVar(&c.expiryFrom, "expiry-from", "", "earliest expiration date (YYYY-MM-DD)")
	f.StringVar(&c.expiryTo, "expiry-to", "", "latest expiration date (YYYY-MM-DD)")
	f.StringVar(&c.optType, "type", "", "contract type: call or put")
	f.StringVar(&c.strikeFrom, "strike-from", "", "minimum strike price")
	f.StringVar(&c.strikeTo, "strike-to", "", "maximum strike price")
	f.IntVar(&c.limit, "limit", 0, "maximum results (contracts default 20, chain 50)")
	f.StringVar(&c.limitPrice, "limit-price", "", "limit price per contract (buy/sell)")
	f.StringVar(&c.tif, "tif", "day", "time in force: day, gtc, ioc, fok")
	c.out.register(f)
}

func (c *optionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	action, args := f.Arg(0), f.Args()[1:]

	switch action {
	case "contracts":
		if len(args) != 1 {
			return usage(c)
		}
		return c.contracts(strings.ToUpper(args[0]))
	case "contract":
		if len(args) != 1 {
			return usage(c)
		}
		return c.contract(strings.ToUpper(args[0]))
	case "chain":
		if len(args) != 1 {
			return usage(c)
		}
		return c.chain(strings.ToUpper(args[0]))
	case "quote":
		if len(args) < 1 {
			return usage(c)
		}
		return c.quote(upperAll(args))
	case "buy":
		if len(args) != 2 {
			return usage(c)
		}
		return c.order(strings.ToUpper(args[0]), args[1], alpaca.Buy)
	case "sell":
		if len(args) != 2 {
			return usage(c)
		}
		return c.order(strings.ToUpper(args[0]), args[1], alpaca.Sell)
	default:
		fmt.Fprintf(os.Stderr, "unknown options action %q\n", action)
		return subcommands.ExitUsageError
	}
}

// parseCivilDate parses an optional YYYY-MM-DD flag; empty input yields the
// zero date, which the SDK treats as unset.
func parseCivilDate(name, v string) (civil.Date, error) {
	if v == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(v)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid -%s %q: want YYYY-MM-DD", name, v)
	}
	return d, nil
}

func parseOptionType(v string) (string, error) {
	switch strings.ToLower(v) {
	case "":
		return "", nil
	case "call", "put":
		return strings.ToLower(v), nil
	default:
		return "", fmt.Errorf("invalid -type %q: want call or put", v)
	}
}

func (c *optionsCmd) buildContractsRequest(underlying string) (alpaca.GetOptionContractsRequest, error) {
	var req alpaca.GetOptionContractsRequest

	expiry, err := parseCivilDate("expiry", c.expiry)
	if err != nil {
		return req, err
	}
	expiryFrom, err := parseCivilDate("expiry-from", c.expiryFrom)
	if err != nil {
		return req, err
	}
	expiryTo, err := parseCivilDate("expiry-to", c.expiryTo)
	if err != nil {
		return req, err
	}
	optType, err := parseOptionType(c.optType)
	if err != nil {
		return req, err
	}
	strikeFrom, err := parseDecimalFlag("strike-from", c.strikeFrom)
	if err != nil {
		return req, err
	}
	strikeTo, err := parseDecimalFlag("strike-to", c.strikeTo)
	if err != nil {
		return req, err
	}

	limit := c.limit
	if limit == 0 {
		limit = 20
	}
	req = alpaca.GetOptionContractsRequest{
		UnderlyingSymbols: underlying,
		ExpirationDate:    expiry,
		ExpirationDateGTE: expiryFrom,
		ExpirationDateLTE: expiryTo,
		Type:              alpaca.OptionType(optType),
		TotalLimit:        limit,
	}
	if strikeFrom != nil {
		req.StrikePriceGTE = *strikeFrom
	}
	if strikeTo != nil {
		req.StrikePriceLTE = *strikeTo
	}
	return req, nil
}

func (c *optionsCmd) contracts(underlying string) subcommands.ExitStatus {
	req, err := c.buildContractsRequest(underlying)
	if err != nil {
		return fail(err)
	}
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	contracts, err := b.Trading().GetOptionContracts(req)
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   "Option Contracts: " + underlying,
		Columns: []string{"Symbol", "Type", "Expiry", "Strike", "Status", "Open Int"},
	}
	for _, oc := range contracts {
		openInt := "-"
		if oc.OpenInterest != nil {
			openInt = oc.OpenInterest.String()
		}
		t.AddRow(
			oc.Symbol,
			string(oc.Type),
			oc.ExpirationDate.String(),
			render.Currency(oc.StrikePrice),
			string(oc.Status),
			openInt,
		)
	}
	return c.out.emit(t)
}

func (c *optionsCmd) contract(symbol string) subcommands.ExitStatus {
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	oc, err := b.Trading().GetOptionContract(symbol)
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   "Contract " + oc.Symbol,
		Columns: []string{"Field", "Value"},
	}
	t.AddRow("Name", oc.Name)
	t.AddRow("Underlying", oc.UnderlyingSymbol)
	t.AddRow("Type", string(oc.Type))
	t.AddRow("Style", string(oc.Style))
	t.AddRow("Expiration", oc.ExpirationDate.String())
	t.AddRow("Strike", render.Currency(oc.StrikePrice))
	t.AddRow("Multiplier", oc.Multiplier.String())
	t.AddRow("Status", string(oc.Status))
	t.AddRow("Tradable", fmt.Sprintf("%t", oc.Tradable))
	if oc.OpenInterest != nil {
		t.AddRow("Open Interest", oc.OpenInterest.String())
	}
	if oc.ClosePrice != nil {
		t.AddRow("Close Price", render.Currency(*oc.ClosePrice))
	}
	if oc.RootSymbol != nil {
		t.AddRow("Root Symbol", *oc.RootSymbol)
	}
	return c.out.emit(t)
}

func (c *optionsCmd) buildChainRequest() (marketdata.GetOptionChainRequest, error) {
	var req marketdata.GetOptionChainRequest

	expiry, err := parseCivilDate("expiry", c.expiry)
	if err != nil {
		return req, err
	}
	optType, err := parseOptionType(c.optType)
	if err != nil {
		return req, err
	}
	strikeFrom, err := parseDecimalFlag("strike-from", c.strikeFrom)
	if err != nil {
		return req, err
	}
	strikeTo, err := parseDecimalFlag("strike-to", c.strikeTo)
	if err != nil {
		return req, err
	}

	limit := c.limit
	if limit == 0 {
		limit = 50
	}
	req = marketdata.GetOptionChainRequest{
		ExpirationDate: expiry,
		Type:           optType,
		TotalLimit:     limit,
	}
	if strikeFrom != nil {
		req.StrikePriceGte = strikeFrom.InexactFloat64()
	}
	if strikeTo != nil {
		req.StrikePriceLte = strikeTo.InexactFloat64()
	}
	return req, nil
}

func (c *optionsCmd) chain(underlying string) subcommands.ExitStatus {
	req, err := c.buildChainRequest()
	if err != nil {
		return fail(err)
	}
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	chain, err := b.MarketData().GetOptionChain(underlying, req)
	if err != nil {
		return fail(err)
	}

	symbols := make([]string, 0, len(chain))
	for sym := range chain {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	t := &render.Table{
		Title:   "Option Chain: " + underlying,
		Columns: []string{"Symbol", "Bid", "Ask", "Last", "Delta", "IV"},
	}
	for _, sym := range symbols {
		snap := chain[sym]
		row := []string{sym, "-", "-", "-", "-", "-"}
		if q := snap.LatestQuote; q != nil {
			row[1] = fmt.Sprintf("%.2f", q.BidPrice)
			row[2] = fmt.Sprintf("%.2f", q.AskPrice)
		}
		if tr := snap.LatestTrade; tr != nil {
			row[3] = fmt.Sprintf("%.2f", tr.Price)
		}
		if g := snap.Greeks; g != nil {
			row[4] = fmt.Sprintf("%.3f", g.Delta)
		}
		if snap.ImpliedVolatility != 0 {
			row[5] = fmt.Sprintf("%.1f%%", snap.ImpliedVolatility*100)
		}
		t.AddRow(row...)
	}
	return c.out.emit(t)
}

func (c *optionsCmd) quote(symbols []string) subcommands.ExitStatus {
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	quotes, err := b.MarketData().GetLatestOptionQuotes(symbols, marketdata.GetLatestOptionQuoteRequest{})
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   "Option Quotes",
		Columns: []string{"Symbol", "Bid", "Bid Size", "Ask", "Ask Size", "Time"},
	}
	for _, sym := range symbols {
		q, ok := quotes[sym]
		if !ok {
			t.AddRow(sym, "-", "-", "-", "-", render.Dim("no quote"))
			continue
		}
		t.AddRow(
			sym,
			fmt.Sprintf("%.2f", q.BidPrice),
			fmt.Sprintf("%d", q.BidSize),
			fmt.Sprintf("%.2f", q.AskPrice),
			fmt.Sprintf("%d", q.AskSize),
			q.Timestamp.Local().Format("15:04:05"),
		)
	}
	return c.out.emit(t)
}

// buildOptionOrder assembles a contract order. Contracts trade in whole
// units, so fractional quantities are rejected up front.
func buildOptionOrder(symbol, qty string, side alpaca.Side, limitPrice, tif string) (alpaca.PlaceOrderRequest, error) {
	var req alpaca.PlaceOrderRequest

	q, err := decimal.NewFromString(qty)
	if err != nil || !q.IsInteger() || !q.IsPositive() {
		return req, fmt.Errorf("invalid qty %q: want a positive whole number of contracts", qty)
	}

	switch strings.ToLower(tif) {
	case "day", "gtc", "ioc", "fok":
	default:
		return req, fmt.Errorf("invalid -tif %q: want day, gtc, ioc, or fok", tif)
	}

	req = alpaca.PlaceOrderRequest{
		Symbol:      symbol,
		Qty:         &q,
		Side:        side,
		Type:        alpaca.Market,
		TimeInForce: alpaca.TimeInForce(strings.ToLower(tif)),
	}
	if limitPrice != "" {
		lp, err := parseDecimalFlag("limit-price", limitPrice)
		if err != nil {
			return req, err
		}
		req.Type = alpaca.Limit
		req.LimitPrice = lp
	}
	return req, nil
}

func (c *optionsCmd) order(symbol, qty string, side alpaca.Side) subcommands.ExitStatus {
	req, err := buildOptionOrder(symbol, qty, side, c.limitPrice, c.tif)
	if err != nil {
		return fail(err)
	}
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	order, err := b.Trading().PlaceOrder(req)
	if err != nil {
		return fail(fmt.Errorf("placing option order: %w", err))
	}

	fmt.Printf("%s option order %s: %s %s %s (%s, %s) status=%s\n",
		render.ModeTag(c.app.Config.IsPaper()),
		order.ID, order.Side, qtyOrNotional(order), order.Symbol,
		order.Type, order.TimeInForce, order.Status)
	return subcommands.ExitSuccess
}
