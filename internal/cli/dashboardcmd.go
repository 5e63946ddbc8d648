package cli

import (
	"context"
	"flag"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/subcommands"

	"github.com/NISCHALPI/alpaca-cli/internal/dashboard"
)

// dashboardCmd launches the live terminal dashboard.
type dashboardCmd struct {
	app *App
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "live dashboard: market, account, positions, news" }
func (*dashboardCmd) Usage() string {
	return `alpaca-cli dashboard

  Full-screen view refreshed every 5 seconds. Press q to quit, r to refresh.
`
}

func (*dashboardCmd) SetFlags(_ *flag.FlagSet) {}

func (c *dashboardCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := c.app.Broker()
	if err != nil {
		return fail(err)
	}
	p := tea.NewProgram(
		dashboard.NewModel(b, c.app.Log, c.app.Config.IsPaper()),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
