package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/NISCHALPI/alpaca-cli/internal/render"
)

// clockCmd shows the market clock.
type clockCmd struct {
	app *App
}

func (*clockCmd) Name() string             { return "clock" }
func (*clockCmd) Synopsis() string         { return "show whether the market is open" }
func (*clockCmd) Usage() string            { return "alpaca-cli clock\n" }
func (*clockCmd) SetFlags(_ *flag.FlagSet) {}

func (c *clockCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	clock, err := b.Trading().GetClock()
	if err != nil {
		return fail(err)
	}
	state := "CLOSED"
	if clock.IsOpen {
		state = "OPEN"
	}
	fmt.Printf("market is %s\n", render.Signed(state, clock.IsOpen))
	fmt.Printf("server time: %s\n", clock.Timestamp.Local().Format(time.RFC1123))
	fmt.Printf("next open:   %s\n", clock.NextOpen.Local().Format(time.RFC1123))
	fmt.Printf("next close:  %s\n", clock.NextClose.Local().Format(time.RFC1123))
	return subcommands.ExitSuccess
}

// calendarCmd lists trading days.
type calendarCmd struct {
	app   *App
	out   outputFlags
	start string
	end   string
}

func (*calendarCmd) Name() string     { return "calendar" }
func (*calendarCmd) Synopsis() string { return "list trading days and session hours" }
func (*calendarCmd) Usage() string {
	return `alpaca-cli calendar [-start YYYY-MM-DD] [-end YYYY-MM-DD]

  Defaults to the next two weeks.
`
}

func (c *calendarCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "first date (YYYY-MM-DD, default today)")
	f.StringVar(&c.end, "end", "", "last date (YYYY-MM-DD, default start+14d)")
	c.out.register(f)
}

func (c *calendarCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	start := time.Now()
	if c.start != "" {
		var err error
		start, err = time.Parse("2006-01-02", c.start)
		if err != nil {
			return fail(fmt.Errorf("invalid -start: %w", err))
		}
	}
	end := start.AddDate(0, 0, 14)
	if c.end != "" {
		var err error
		end, err = time.Parse("2006-01-02", c.end)
		if err != nil {
			return fail(fmt.Errorf("invalid -end: %w", err))
		}
	}

	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	days, err := b.Trading().GetCalendar(alpaca.GetCalendarRequest{Start: start, End: end})
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   "Trading Calendar",
		Columns: []string{"Date", "Open", "Close"},
	}
	for _, d := range days {
		t.AddRow(d.Date, d.Open, d.Close)
	}
	return c.out.emit(t)
}

// quoteCmd shows latest stock quotes.
type quoteCmd struct {
	app *App
	out outputFlags
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "show the latest quote for one or more symbols" }
func (*quoteCmd) Usage() string {
	return `alpaca-cli quote <symbol> [symbol ...]
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) { c.out.register(f) }

func (c *quoteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	symbols := upperAll(f.Args())
	quotes, err := b.MarketData().GetLatestQuotes(symbols, marketdata.GetLatestQuoteRequest{
		Feed: marketdata.IEX,
	})
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   "Quotes",
		Columns: []string{"Symbol", "Bid", "Bid Size", "Ask", "Ask Size", "Mid", "Time"},
	}
	for _, sym := range symbols {
		q, ok := quotes[sym]
		if !ok {
			t.AddRow(sym, "-", "-", "-", "-", "-", render.Dim("no quote"))
			continue
		}
		mid := (q.BidPrice + q.AskPrice) / 2
		t.AddRow(
			sym,
			fmt.Sprintf("%.2f", q.BidPrice),
			fmt.Sprintf("%d", q.BidSize),
			fmt.Sprintf("%.2f", q.AskPrice),
			fmt.Sprintf("%d", q.AskSize),
			fmt.Sprintf("%.2f", mid),
			q.Timestamp.Local().Format("15:04:05"),
		)
	}
	return c.out.emit(t)
}

// cryptoQuoteCmd shows latest crypto quotes.
type cryptoQuoteCmd struct {
	app *App
	out outputFlags
}

func (*cryptoQuoteCmd) Name() string     { return "crypto-quote" }
func (*cryptoQuoteCmd) Synopsis() string { return "show the latest quote for crypto pairs" }
func (*cryptoQuoteCmd) Usage() string {
	return `alpaca-cli crypto-quote <pair> [pair ...]

  Pairs use slash notation, e.g. BTC/USD.
`
}

func (c *cryptoQuoteCmd) SetFlags(f *flag.FlagSet) { c.out.register(f) }

func (c *cryptoQuoteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	pairs := upperAll(f.Args())
	quotes, err := b.MarketData().GetLatestCryptoQuotes(pairs, marketdata.GetLatestCryptoQuoteRequest{})
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   "Crypto Quotes",
		Columns: []string{"Pair", "Bid", "Ask", "Mid", "Time"},
	}
	for _, pair := range pairs {
		q, ok := quotes[pair]
		if !ok {
			t.AddRow(pair, "-", "-", "-", render.Dim("no quote"))
			continue
		}
		mid := (q.BidPrice + q.AskPrice) / 2
		t.AddRow(
			pair,
			fmt.Sprintf("%.2f", q.BidPrice),
			fmt.Sprintf("%.2f", q.AskPrice),
			fmt.Sprintf("%.2f", mid),
			q.Timestamp.Local().Format("15:04:05"),
		)
	}
	return c.out.emit(t)
}

// snapshotCmd shows a full market snapshot per symbol.
type snapshotCmd struct {
	app *App
	out outputFlags
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "show price snapshot (trade, daily bar, prev close)" }
func (*snapshotCmd) Usage() string {
	return `alpaca-cli snapshot <symbol> [symbol ...]
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) { c.out.register(f) }

func (c *snapshotCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	symbols := upperAll(f.Args())
	snaps, err := b.MarketData().GetSnapshots(symbols, marketdata.GetSnapshotRequest{
		Feed: marketdata.IEX,
	})
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   "Snapshots",
		Columns: []string{"Symbol", "Last", "Day Open", "Day High", "Day Low", "Prev Close", "Change"},
	}
	for _, sym := range symbols {
		s, ok := snaps[sym]
		if !ok || s == nil {
			t.AddRow(sym, "-", "-", "-", "-", "-", render.Dim("no data"))
			continue
		}
		var last float64
		if s.LatestTrade != nil {
			last = s.LatestTrade.Price
		}
		row := []string{sym, fmt.Sprintf("%.2f", last), "-", "-", "-", "-", "-"}
		if s.DailyBar != nil {
			row[2] = fmt.Sprintf("%.2f", s.DailyBar.Open)
			row[3] = fmt.Sprintf("%.2f", s.DailyBar.High)
			row[4] = fmt.Sprintf("%.2f", s.DailyBar.Low)
		}
		if s.PrevDailyBar != nil && s.PrevDailyBar.Close > 0 && last > 0 {
			prev := s.PrevDailyBar.Close
			row[5] = fmt.Sprintf("%.2f", prev)
			change := decimal.NewFromFloat((last - prev) / prev)
			row[6] = render.Signed(render.Percent(change), !change.IsNegative())
		}
		t.AddRow(row...)
	}
	return c.out.emit(t)
}

// barsCmd shows historical OHLCV bars.
type barsCmd struct {
	app       *App
	out       outputFlags
	days      int
	timeframe string
	limit     int
}

func (*barsCmd) Name() string     { return "bars" }
func (*barsCmd) Synopsis() string { return "show historical OHLCV bars for a symbol" }
func (*barsCmd) Usage() string {
	return `alpaca-cli bars <symbol> [-days 30] [-timeframe day|hour|minute] [-limit n]
`
}

func (c *barsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 30, "look back this many days")
	f.StringVar(&c.timeframe, "timeframe", "day", "bar timeframe: day, hour, minute")
	f.IntVar(&c.limit, "limit", 100, "maximum bars to return")
	c.out.register(f)
}

func (c *barsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	symbol := strings.ToUpper(f.Arg(0))

	var tf marketdata.TimeFrame
	switch c.timeframe {
	case "day":
		tf = marketdata.OneDay
	case "hour":
		tf = marketdata.OneHour
	case "minute":
		tf = marketdata.OneMin
	default:
		return fail(fmt.Errorf("unknown timeframe %q", c.timeframe))
	}

	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	bars, err := b.MarketData().GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  tf,
		Start:      time.Now().AddDate(0, 0, -c.days),
		TotalLimit: c.limit,
		Feed:       marketdata.IEX,
	})
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   symbol + " Bars",
		Columns: []string{"Time", "Open", "High", "Low", "Close", "Volume"},
	}
	for _, bar := range bars {
		t.AddRow(
			bar.Timestamp.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f", bar.Open),
			fmt.Sprintf("%.2f", bar.High),
			fmt.Sprintf("%.2f", bar.Low),
			fmt.Sprintf("%.2f", bar.Close),
			fmt.Sprintf("%d", bar.Volume),
		)
	}
	return c.out.emit(t)
}

// newsCmd shows recent market news.
type newsCmd struct {
	app     *App
	out     outputFlags
	symbols string
	limit   int
}

func (*newsCmd) Name() string     { return "news" }
func (*newsCmd) Synopsis() string { return "show recent market news" }
func (*newsCmd) Usage() string {
	return `alpaca-cli news [-symbols AAPL,TSLA] [-limit 10]
`
}

func (c *newsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "symbols", "", "comma-separated symbol filter")
	f.IntVar(&c.limit, "limit", 10, "maximum articles")
	c.out.register(f)
}

func (c *newsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	req := marketdata.GetNewsRequest{TotalLimit: c.limit}
	if c.symbols != "" {
		req.Symbols = upperAll(strings.Split(c.symbols, ","))
	}
	articles, err := b.MarketData().GetNews(req)
	if err != nil {
		return fail(err)
	}

	t := &render.Table{
		Title:   "News",
		Columns: []string{"Time", "Symbols", "Headline", "Author"},
	}
	for _, a := range articles {
		t.AddRow(newsRow(a)...)
	}
	return c.out.emit(t)
}

func newsRow(a marketdata.News) []string {
	return []string{
		a.CreatedAt.Local().Format("01-02 15:04"),
		strings.Join(a.Symbols, ","),
		a.Headline,
		a.Author,
	}
}
