package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/brunoclpinto/BUFY"
)

// SummaryMarkdown renders a window summary: totals, per-category budget
// health and per-account flows.
func SummaryMarkdown(s bufy.WindowSummary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Summary %s", s.Window))
	doc.PlainText(fmt.Sprintf("Net %s (in %s, out %s)",
		signed(s.Net), amount(s.Inflow), amount(s.Outflow)))
	if s.Incomplete {
		doc.PlainText("Some amounts are in another currency and were left out of the totals.")
	}

	doc.H2("Categories")
	rows := make([][]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		rows = append(rows, []string{
			c.Name,
			amount(c.Budgeted),
			amount(c.Actual),
			signed(c.Variance),
			healthLabel(c),
			fmt.Sprintf("%d", c.Count),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Category", "Budgeted", "Actual", "Variance", "Health", "Txs"},
		Rows:   rows,
	})

	doc.H2("Accounts")
	rows = rows[:0]
	for _, a := range s.Accounts {
		rows = append(rows, []string{
			a.Name,
			amount(a.In),
			amount(a.Out),
			signed(a.In.Sub(a.Out)),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Account", "In", "Out", "Net"},
		Rows:   rows,
	})

	return doc.String()
}

func healthLabel(c bufy.CategorySummary) string {
	if c.Incomplete {
		return c.Health.String() + " *"
	}
	return c.Health.String()
}

// ImpactMarkdown renders a simulation's effect on a window next to the
// unmodified baseline.
func ImpactMarkdown(i bufy.SimulationImpact) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Simulation %q on %s", i.Name, i.Base.Window))
	doc.Table(md.TableSet{
		Header: []string{"", "Inflow", "Outflow", "Net"},
		Rows: [][]string{
			{"Actual", amount(i.Base.Inflow), amount(i.Base.Outflow), signed(i.Base.Net)},
			{"Simulated", amount(i.Simulated.Inflow), amount(i.Simulated.Outflow), signed(i.Simulated.Net)},
			{"Delta", signed(i.InflowDelta), signed(i.OutflowDelta), signed(i.NetDelta)},
		},
	})

	return doc.String()
}
