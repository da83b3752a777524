package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/brunoclpinto/BUFY"
)

// ForecastMarkdown renders a forecast window as a markdown document.
func ForecastMarkdown(f bufy.Forecast) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Forecast %s", f.Window))
	doc.PlainText(fmt.Sprintf("As of %s: net %s (in %s, out %s)",
		f.AsOf, signed(f.Net), amount(f.Inflow), amount(f.Outflow)))
	if f.Incomplete {
		doc.PlainText("Some amounts are in another currency and were left out of the totals.")
	}

	doc.H2("Schedule")
	doc.PlainText(fmt.Sprintf("%s overdue, %s pending, %s ahead.",
		count(f.Overdue, "occurrence"), count(f.Pending, "occurrence"), count(f.Future, "occurrence")))

	rows := make([][]string, 0, len(f.Entries))
	for _, e := range f.Entries {
		origin := "scheduled"
		if e.Projected {
			origin = "projected"
		}
		value := e.Transaction.Budgeted
		if e.Transaction.ActualAmount != nil {
			value = *e.Transaction.ActualAmount
		}
		cur := e.Transaction.Currency
		if cur == "" {
			cur = f.Currency
		}
		rows = append(rows, []string{
			e.Transaction.Scheduled.String(),
			fmt.Sprintf("%s %s", amount(bufy.M(value, cur)), flowLabel(e.Flow)),
			origin,
			e.Status.String(),
			e.Transaction.Notes,
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Date", "Amount", "Origin", "Status", "Notes"},
		Rows:   rows,
	})

	return doc.String()
}

func flowLabel(flow int) string {
	switch flow {
	case +1:
		return "in"
	case -1:
		return "out"
	default:
		return "transfer"
	}
}

// SnapshotsMarkdown renders the per-series recurrence overview.
func SnapshotsMarkdown(snaps []bufy.RecurrenceSnapshot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Recurring series")
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		next := "-"
		if s.NextDue != nil {
			next = s.NextDue.String()
		}
		rows = append(rows, []string{
			s.SeriesID.String()[:8],
			s.Interval,
			s.Start.String(),
			next,
			fmt.Sprintf("%d", s.Overdue),
			fmt.Sprintf("%d", s.Pending),
			s.Status.String(),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Series", "Interval", "Since", "Next due", "Overdue", "Pending", "Status"},
		Rows:   rows,
	})

	return doc.String()
}
