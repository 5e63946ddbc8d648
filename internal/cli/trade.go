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
	"github.com/shopspring/decimal"

	"github.com/NISCHALPI/alpaca-cli/internal/render"
)

// orderFlags are the flags shared by buy and sell. Exactly one of qty and
// notional must be set; which extra prices are required depends on the order
// type.
type orderFlags struct {
	qty           string
	notional      string
	orderType     string
	limitPrice    string
	stopPrice     string
	trailPrice    string
	trailPercent  string
	tif           string
	extendedHours bool
	clientOrderID string
	takeProfit    string
	stopLossStop  string
	stopLossLimit string
}

func (o *orderFlags) register(f *flag.FlagSet) {
	f.StringVar(&o.qty, "qty", "", "quantity of shares (fractional allowed)")
	f.StringVar(&o.notional, "notional", "", "dollar amount to trade instead of a share quantity")
	f.StringVar(&o.orderType, "type", "market", "order type: market, limit, stop, stop_limit, trailing_stop")
	f.StringVar(&o.limitPrice, "limit-price", "", "limit price (limit and stop_limit orders)")
	f.StringVar(&o.stopPrice, "stop-price", "", "stop price (stop and stop_limit orders)")
	f.StringVar(&o.trailPrice, "trail-price", "", "trail amount in dollars (trailing_stop orders)")
	f.StringVar(&o.trailPercent, "trail-percent", "", "trail amount in percent (trailing_stop orders)")
	f.StringVar(&o.tif, "tif", "day", "time in force: day, gtc, opg, cls, ioc, fok")
	f.BoolVar(&o.extendedHours, "extended-hours", false, "allow execution outside regular hours (limit/day only)")
	f.StringVar(&o.clientOrderID, "client-order-id", "", "client-assigned order identifier")
	f.StringVar(&o.takeProfit, "take-profit", "", "take-profit limit price (makes this a bracket order)")
	f.StringVar(&o.stopLossStop, "stop-loss", "", "stop-loss stop price (makes this a bracket order)")
	f.StringVar(&o.stopLossLimit, "stop-loss-limit", "", "stop-loss limit price (with -stop-loss)")
}

func parseDecimalFlag(name, v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("invalid -%s %q: %w", name, v, err)
	}
	return &d, nil
}

// buildRequest assembles the SDK request for one order. Each order type gets
// its own explicit construction so an unsupported flag combination fails
// here rather than at the API.
func (o *orderFlags) buildRequest(symbol string, side alpaca.Side) (alpaca.PlaceOrderRequest, error) {
	var req alpaca.PlaceOrderRequest

	qty, err := parseDecimalFlag("qty", o.qty)
	if err != nil {
		return req, err
	}
	notional, err := parseDecimalFlag("notional", o.notional)
	if err != nil {
		return req, err
	}
	if (qty == nil) == (notional == nil) {
		return req, fmt.Errorf("exactly one of -qty and -notional is required")
	}
	limitPrice, err := parseDecimalFlag("limit-price", o.limitPrice)
	if err != nil {
		return req, err
	}
	stopPrice, err := parseDecimalFlag("stop-price", o.stopPrice)
	if err != nil {
		return req, err
	}
	trailPrice, err := parseDecimalFlag("trail-price", o.trailPrice)
	if err != nil {
		return req, err
	}
	trailPercent, err := parseDecimalFlag("trail-percent", o.trailPercent)
	if err != nil {
		return req, err
	}

	base := alpaca.PlaceOrderRequest{
		Symbol:        strings.ToUpper(symbol),
		Qty:           qty,
		Notional:      notional,
		Side:          side,
		TimeInForce:   alpaca.TimeInForce(strings.ToLower(o.tif)),
		ExtendedHours: o.extendedHours,
		ClientOrderID: o.clientOrderID,
	}

	switch strings.ToLower(o.orderType) {
	case "market":
		req = base
		req.Type = alpaca.Market
	case "limit":
		if limitPrice == nil {
			return req, fmt.Errorf("limit orders require -limit-price")
		}
		req = base
		req.Type = alpaca.Limit
		req.LimitPrice = limitPrice
	case "stop":
		if stopPrice == nil {
			return req, fmt.Errorf("stop orders require -stop-price")
		}
		req = base
		req.Type = alpaca.Stop
		req.StopPrice = stopPrice
	case "stop_limit":
		if limitPrice == nil || stopPrice == nil {
			return req, fmt.Errorf("stop_limit orders require -limit-price and -stop-price")
		}
		req = base
		req.Type = alpaca.StopLimit
		req.LimitPrice = limitPrice
		req.StopPrice = stopPrice
	case "trailing_stop":
		if (trailPrice == nil) == (trailPercent == nil) {
			return req, fmt.Errorf("trailing_stop orders require exactly one of -trail-price and -trail-percent")
		}
		req = base
		req.Type = alpaca.TrailingStop
		req.TrailPrice = trailPrice
		req.TrailPercent = trailPercent
	default:
		return req, fmt.Errorf("unknown order type %q", o.orderType)
	}

	// Bracket legs apply on top of the entry order.
	if o.takeProfit != "" || o.stopLossStop != "" {
		if o.takeProfit == "" || o.stopLossStop == "" {
			return req, fmt.Errorf("bracket orders require both -take-profit and -stop-loss")
		}
		tp, err := parseDecimalFlag("take-profit", o.takeProfit)
		if err != nil {
			return req, err
		}
		sl, err := parseDecimalFlag("stop-loss", o.stopLossStop)
		if err != nil {
			return req, err
		}
		slLimit, err := parseDecimalFlag("stop-loss-limit", o.stopLossLimit)
		if err != nil {
			return req, err
		}
		req.OrderClass = alpaca.Bracket
		req.TakeProfit = &alpaca.TakeProfit{LimitPrice: tp}
		req.StopLoss = &alpaca.StopLoss{StopPrice: sl, LimitPrice: slLimit}
	}

	return req, nil
}

func placeOrder(app *App, symbol string, side alpaca.Side, flags *orderFlags) subcommands.ExitStatus {
	b, err := app.Broker()
	if err != nil {
		return fail(err)
	}
	req, err := flags.buildRequest(symbol, side)
	if err != nil {
		return fail(err)
	}
	order, err := b.Trading().PlaceOrder(req)
	if err != nil {
		return fail(fmt.Errorf("placing order: %w", err))
	}

	fmt.Printf("%s order %s: %s %s %s (%s, %s) status=%s\n",
		render.ModeTag(app.Config.IsPaper()),
		order.ID, order.Side, qtyOrNotional(order), order.Symbol,
		order.Type, order.TimeInForce, order.Status)
	return subcommands.ExitSuccess
}

func qtyOrNotional(o *alpaca.Order) string {
	if o.Qty != nil {
		return render.Qty(*o.Qty)
	}
	if o.Notional != nil {
		return "$" + o.Notional.StringFixed(2)
	}
	return "?"
}

// buyCmd places a buy order.
type buyCmd struct {
	app   *App
	flags orderFlags
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "place a buy order" }
func (*buyCmd) Usage() string {
	return `alpaca-cli buy <symbol> -qty <n> [-type market|limit|stop|stop_limit|trailing_stop] [flags]

  Examples:
    alpaca-cli buy AAPL -qty 10
    alpaca-cli buy AAPL -notional 500 -type limit -limit-price 180.50 -tif gtc
    alpaca-cli buy AAPL -qty 5 -take-profit 200 -stop-loss 170
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) { c.flags.register(f) }

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	return placeOrder(c.app, f.Arg(0), alpaca.Buy, &c.flags)
}

// sellCmd places a sell order.
type sellCmd struct {
	app   *App
	flags orderFlags
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "place a sell order" }
func (*sellCmd) Usage() string {
	return `alpaca-cli sell <symbol> -qty <n> [-type market|limit|stop|stop_limit|trailing_stop] [flags]
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) { c.flags.register(f) }

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	return placeOrder(c.app, f.Arg(0), alpaca.Sell, &c.flags)
}

// ordersCmd lists orders.
type ordersCmd struct {
	app     *App
	out     outputFlags
	status  string
	limit   int
	days    int
	side    string
	symbols string
}

func (*ordersCmd) Name() string     { return "orders" }
func (*ordersCmd) Synopsis() string { return "list orders" }
func (*ordersCmd) Usage() string {
	return `alpaca-cli orders [-status open|closed|all] [-limit n] [-days n] [-side buy|sell] [-symbols AAPL,MSFT]
`
}

func (c *ordersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.status, "status", "open", "order status filter: open, closed, all")
	f.IntVar(&c.limit, "limit", 50, "maximum orders to return")
	f.IntVar(&c.days, "days", 7, "look back this many days")
	f.StringVar(&c.side, "side", "", "filter by side: buy or sell")
	f.StringVar(&c.symbols, "symbols", "", "comma-separated symbol filter")
	c.out.register(f)
}

func (c *ordersCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	req := alpaca.GetOrdersRequest{
		Status:    c.status,
		Limit:     c.limit,
		After:     time.Now().AddDate(0, 0, -c.days),
		Direction: "desc",
		Side:      c.side,
	}
	if c.symbols != "" {
		for _, s := range strings.Split(c.symbols, ",") {
			req.Symbols = append(req.Symbols, strings.ToUpper(strings.TrimSpace(s)))
		}
	}
	orders, err := b.Trading().GetOrders(req)
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   "Orders " + render.ModeTag(c.app.Config.IsPaper()),
		Columns: []string{"ID", "Symbol", "Side", "Qty", "Type", "TIF", "Status", "Submitted"},
	}
	for _, o := range orders {
		t.AddRow(
			o.ID,
			o.Symbol,
			string(o.Side),
			qtyOrNotional(&o),
			string(o.Type),
			string(o.TimeInForce),
			o.Status,
			o.SubmittedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return c.out.emit(t)
}

// cancelCmd cancels one order or all open orders.
type cancelCmd struct {
	app *App
	all bool
}

func (*cancelCmd) Name() string     { return "cancel" }
func (*cancelCmd) Synopsis() string { return "cancel an order by ID, or all open orders" }
func (*cancelCmd) Usage() string {
	return `alpaca-cli cancel <order-id>
alpaca-cli cancel -all
`
}

func (c *cancelCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "cancel all open orders")
}

func (c *cancelCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	if c.all {
		if err := b.Trading().CancelAllOrders(); err != nil {
			return fail(err)
		}
		fmt.Println("all open orders cancelled")
		return subcommands.ExitSuccess
	}
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	if err := b.CancelOrder(ctx, id); err != nil {
		return fail(err)
	}
	fmt.Printf("order %s cancelled\n", id)
	return subcommands.ExitSuccess
}

// closeCmd liquidates a position, part of one, or everything.
type closeCmd struct {
	app        *App
	all        bool
	qty        string
	percentage string
}

func (*closeCmd) Name() string     { return "close" }
func (*closeCmd) Synopsis() string { return "close a position (fully or partially), or all positions" }
func (*closeCmd) Usage() string {
	return `alpaca-cli close <symbol> [-qty <n> | -percentage <pct>]
alpaca-cli close -all
`
}

func (c *closeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "close all open positions")
	f.StringVar(&c.qty, "qty", "", "number of shares to close (default: all)")
	f.StringVar(&c.percentage, "percentage", "", "percentage of the position to close")
}

func (c *closeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	if c.all {
		orders, err := b.Trading().CloseAllPositions(alpaca.CloseAllPositionsRequest{})
		if err != nil {
			return fail(err)
		}
		fmt.Printf("closing %d positions\n", len(orders))
		return subcommands.ExitSuccess
	}
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	symbol := strings.ToUpper(f.Arg(0))

	var req alpaca.ClosePositionRequest
	if c.qty != "" && c.percentage != "" {
		return fail(fmt.Errorf("-qty and -percentage are mutually exclusive"))
	}
	if c.qty != "" {
		d, err := decimal.NewFromString(c.qty)
		if err != nil {
			return fail(fmt.Errorf("invalid -qty %q: %w", c.qty, err))
		}
		req.Qty = d
	}
	if c.percentage != "" {
		d, err := decimal.NewFromString(c.percentage)
		if err != nil {
			return fail(fmt.Errorf("invalid -percentage %q: %w", c.percentage, err))
		}
		req.Percentage = d
	}

	order, err := b.Trading().ClosePosition(symbol, req)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%s closing %s: order %s status=%s\n",
		render.ModeTag(c.app.Config.IsPaper()), symbol, order.ID, order.Status)
	return subcommands.ExitSuccess
}
