package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/brunoclpinto/BUFY/renderer"
)

type summaryCmd struct {
	ledgerName string
	from       string
	to         string
	offset     int
	sim        string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the budget summary of a period" }
func (*summaryCmd) Usage() string {
	return `bufy summary [-from <date>] [-to <date>] [-offset <n>] [-sim <name>]

  Summarizes a period: inflow and outflow totals, per-category budget
  health and per-account flows. Defaults to the current budget period.
  With -sim, shows the period as it would look with the simulation
  applied, next to the real numbers.

Usage Examples:
$ bufy summary
$ bufy summary -offset -1
$ bufy summary -from 2025-06-01 -to 2025-07-01
$ bufy summary -sim "new car"
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to report on. Defaults to the current ledger.")
	f.StringVar(&c.from, "from", "", "Start of the period (defaults to the current budget period).")
	f.StringVar(&c.to, "to", "", "End of the period, exclusive.")
	f.IntVar(&c.offset, "offset", 0, "Budget periods away from the current one (-1 is the previous period).")
	f.StringVar(&c.sim, "sim", "", "Overlay this simulation and show the deltas.")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	w, err := reportWindow(l, c.from, c.to, c.offset)
	if err != nil {
		return fail(err)
	}

	if c.sim != "" {
		sim, ok := l.SimulationByName(c.sim)
		if !ok {
			return fail(fmt.Errorf("simulation %q not found", c.sim))
		}
		impact, err := l.SimulateWindow(sim.ID, w)
		if err != nil {
			return fail(err)
		}
		printMarkdown(renderer.ImpactMarkdown(impact))
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.SummaryMarkdown(l.Summarize(w)))
	return subcommands.ExitSuccess
}

type forecastCmd struct {
	ledgerName string
	from       string
	to         string
	offset     int
	date       string
	sim        string
}

func (*forecastCmd) Name() string     { return "forecast" }
func (*forecastCmd) Synopsis() string { return "project the cash flow of a period" }
func (*forecastCmd) Usage() string {
	return `bufy forecast [-from <date>] [-to <date>] [-offset <n>] [-d <date>] [-sim <name>]

  Projects the period: concrete transactions plus the occurrences every
  recurring series would produce, each counted exactly once. Defaults to
  the current budget period.

Usage Examples:
$ bufy forecast
$ bufy forecast -from 2025-06-01 -to 2025-09-01
$ bufy forecast -sim "new car"
`
}

func (c *forecastCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to report on. Defaults to the current ledger.")
	f.StringVar(&c.from, "from", "", "Start of the period (defaults to the current budget period).")
	f.StringVar(&c.to, "to", "", "End of the period, exclusive.")
	f.IntVar(&c.offset, "offset", 0, "Budget periods away from the current one (-1 is the previous period).")
	f.StringVar(&c.date, "d", "", "Reference date for overdue/pending classification (defaults to today).")
	f.StringVar(&c.sim, "sim", "", "Project over this simulation's overlay.")
}

func (c *forecastCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	w, err := reportWindow(l, c.from, c.to, c.offset)
	if err != nil {
		return fail(err)
	}
	asOf, err := parseDate(c.date)
	if err != nil {
		return fail(err)
	}

	if c.sim != "" {
		sim, ok := l.SimulationByName(c.sim)
		if !ok {
			return fail(fmt.Errorf("simulation %q not found", c.sim))
		}
		fc, err := l.ForecastSimulation(sim.ID, w, asOf)
		if err != nil {
			return fail(err)
		}
		printMarkdown(renderer.ForecastMarkdown(fc))
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.ForecastMarkdown(l.Forecast(w, asOf)))
	return subcommands.ExitSuccess
}
