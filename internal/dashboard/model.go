// Package dashboard implements the live terminal dashboard: market status,
// major index snapshots, account overview, open positions, and news,
// refreshed on a fixed tick.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NISCHALPI/alpaca-cli/internal/broker"
	"github.com/NISCHALPI/alpaca-cli/internal/render"
)

// indexSymbols are the broad-market ETFs shown in the indices panel.
var indexSymbols = []string{"SPY", "QQQ", "DIA", "IWM"}

const (
	refreshInterval = 5 * time.Second
	newsLimit       = 6
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")).Padding(0, 1)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	symbolStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	openStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	closedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// snapshot is one refresh worth of dashboard data.
type snapshot struct {
	clock     *alpaca.Clock
	account   *broker.Account
	positions []broker.Position
	indices   map[string]*marketdata.Snapshot
	news      []marketdata.News
	fetchedAt time.Time
	err       error
}

type snapshotMsg snapshot

// Model is the bubbletea model for the dashboard.
type Model struct {
	b     *broker.Alpaca
	log   *slog.Logger
	paper bool

	width  int
	height int

	// body scrolls the positions and news panels when they outgrow the
	// terminal.
	body      viewport.Model
	bodyReady bool

	data    snapshot
	loading bool
}

// NewModel creates a dashboard model over the given broker.
func NewModel(b *broker.Alpaca, log *slog.Logger, paper bool) Model {
	return Model{b: b, log: log, paper: paper, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.fetchCmd())
}

func (m Model) fetchCmd() tea.Cmd {
	b := m.b
	log := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshInterval)
		defer cancel()

		s := snapshot{fetchedAt: time.Now()}

		s.clock, s.err = b.Trading().GetClock()
		if s.err != nil {
			log.Warn("dashboard clock fetch failed", "err", s.err)
			return snapshotMsg(s)
		}
		if s.account, s.err = b.GetAccount(ctx); s.err != nil {
			return snapshotMsg(s)
		}
		if s.positions, s.err = b.GetPositions(ctx); s.err != nil {
			return snapshotMsg(s)
		}
		s.indices, s.err = b.MarketData().GetSnapshots(indexSymbols, marketdata.GetSnapshotRequest{
			Feed: marketdata.IEX,
		})
		if s.err != nil {
			return snapshotMsg(s)
		}
		s.news, s.err = b.MarketData().GetNews(marketdata.GetNewsRequest{TotalLimit: newsLimit})
		return snapshotMsg(s)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, m.fetchCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Header, status, and indices panels take the top of the screen;
		// the rest scrolls.
		bodyHeight := msg.Height - 12
		if bodyHeight < 4 {
			bodyHeight = 4
		}
		if !m.bodyReady {
			m.body = viewport.New(msg.Width, bodyHeight)
			m.bodyReady = true
		} else {
			m.body.Width = msg.Width
			m.body.Height = bodyHeight
		}
		m.body.SetContent(m.bodyContent())

	case tickMsg:
		return m, tea.Batch(tickCmd(), m.fetchCmd())

	case snapshotMsg:
		m.data = snapshot(msg)
		m.loading = false
		if m.bodyReady {
			m.body.SetContent(m.bodyContent())
		}
	}

	if m.bodyReady {
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) bodyContent() string {
	return panelStyle.Render(m.positionsPanel()) + "\n" + panelStyle.Render(m.newsPanel())
}

func (m Model) View() string {
	var b strings.Builder

	mode := "PAPER"
	if !m.paper {
		mode = "LIVE"
	}
	b.WriteString(titleStyle.Render("alpaca-cli dashboard ["+mode+"]") + "  ")
	b.WriteString(m.statusLine() + "\n\n")

	if m.data.err != nil {
		b.WriteString(errStyle.Render("error: "+m.data.err.Error()) + "\n")
		b.WriteString(dimStyle.Render("retrying on next refresh; press q to quit") + "\n")
		return b.String()
	}
	if m.loading && m.data.account == nil {
		b.WriteString(dimStyle.Render("loading...") + "\n")
		return b.String()
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.indicesPanel()),
		panelStyle.Render(m.accountPanel()),
	)
	b.WriteString(top + "\n")
	if m.bodyReady {
		b.WriteString(m.body.View() + "\n")
	} else {
		b.WriteString(m.bodyContent() + "\n")
	}
	b.WriteString(dimStyle.Render("q quit · r refresh · updated " + m.data.fetchedAt.Format("15:04:05")))
	return b.String()
}

func (m Model) statusLine() string {
	if m.data.clock == nil {
		return dimStyle.Render("market status unknown")
	}
	if m.data.clock.IsOpen {
		return openStyle.Render("MARKET OPEN") + dimStyle.Render(
			"  closes "+m.data.clock.NextClose.Local().Format("15:04"))
	}
	return closedStyle.Render("MARKET CLOSED") + dimStyle.Render(
		"  opens "+m.data.clock.NextOpen.Local().Format("Mon 15:04"))
}

func (m Model) indicesPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Indices") + "\n")
	for _, sym := range indexSymbols {
		s, ok := m.data.indices[sym]
		if !ok || s == nil || s.LatestTrade == nil {
			b.WriteString(fmt.Sprintf("%-5s %s\n", sym, dimStyle.Render("no data")))
			continue
		}
		last := s.LatestTrade.Price
		line := fmt.Sprintf("%s %9.2f", symbolStyle.Render(fmt.Sprintf("%-5s", sym)), last)
		if s.PrevDailyBar != nil && s.PrevDailyBar.Close > 0 {
			pct := (last - s.PrevDailyBar.Close) / s.PrevDailyBar.Close * 100
			line += "  " + render.Signed(fmt.Sprintf("%+.2f%%", pct), pct >= 0)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) accountPanel() string {
	acct := m.data.account
	if acct == nil {
		return headerStyle.Render("Account") + "\n" + dimStyle.Render("no data")
	}
	dayPL := acct.Equity.Sub(acct.LastEquity)
	var b strings.Builder
	b.WriteString(headerStyle.Render("Account") + "\n")
	b.WriteString(fmt.Sprintf("Equity        %s\n", render.Currency(acct.Equity)))
	b.WriteString(fmt.Sprintf("Cash          %s\n", render.Currency(acct.Cash)))
	b.WriteString(fmt.Sprintf("Buying Power  %s\n", render.Currency(acct.BuyingPower)))
	b.WriteString(fmt.Sprintf("Day P/L       %s", render.Signed(render.Currency(dayPL), !dayPL.IsNegative())))
	return b.String()
}

func (m Model) positionsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Positions") + "\n")
	if len(m.data.positions) == 0 {
		b.WriteString(dimStyle.Render("none"))
		return b.String()
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-7s %10s %12s %12s %9s", "Symbol", "Qty", "Value", "P/L", "P/L %")) + "\n")
	for _, p := range m.data.positions {
		up := !p.UnrealizedPL.IsNegative()
		b.WriteString(fmt.Sprintf("%s %10s %12s %s %s\n",
			symbolStyle.Render(fmt.Sprintf("%-7s", p.Symbol)),
			render.Qty(p.Qty),
			render.Currency(p.MarketValue),
			render.Signed(fmt.Sprintf("%12s", render.Currency(p.UnrealizedPL)), up),
			render.Signed(fmt.Sprintf("%9s", render.Percent(p.UnrealizedPLPC)), up),
		))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) newsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("News") + "\n")
	if len(m.data.news) == 0 {
		b.WriteString(dimStyle.Render("none"))
		return b.String()
	}
	for _, n := range m.data.news {
		headline := n.Headline
		if m.width > 20 {
			headline = truncate(headline, m.width-18)
		}
		b.WriteString(fmt.Sprintf("%s  %s\n",
			dimStyle.Render(n.CreatedAt.Local().Format("01-02 15:04")), headline))
	}
	return strings.TrimRight(b.String(), "\n")
}

// truncate shortens s to at most max characters, counting runes so
// multi-byte headlines are never cut mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
