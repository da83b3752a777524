package bufy

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brunoclpinto/BUFY/date"
)

// ForecastEntry is one projected or already-materialized occurrence inside
// a forecast window.
type ForecastEntry struct {
	Transaction Transaction
	Projected   bool // true when the entry only exists in the recurrence walk
	Status      ScheduleStatus
	Flow        int // +1 inflow, -1 outflow, 0 transfer
}

// Forecast is the merged cash outlook of a window: concrete transactions
// plus projected recurrence occurrences, each counted exactly once.
type Forecast struct {
	Window     date.Window
	AsOf       date.Date
	Currency   string
	Inflow     Money
	Outflow    Money
	Net        Money
	Overdue    int
	Pending    int
	Future     int
	Entries    []ForecastEntry
	Incomplete bool
}

// Upcoming returns the n soonest entries on or after the forecast's
// reference date.
func (f Forecast) Upcoming(n int) []ForecastEntry {
	var out []ForecastEntry
	for _, e := range f.Entries {
		if e.Transaction.Scheduled.Before(f.AsOf) {
			continue
		}
		out = append(out, e)
		if len(out) >= n {
			break
		}
	}
	return out
}

// Forecast projects the window's cash flow as of a reference date.
// Materialized transactions appear as-is; recurrence occurrences that have
// no materialized transaction yet are projected from their template. A
// slot never contributes twice.
func (l *Ledger) Forecast(w date.Window, asOf date.Date) Forecast {
	s := l.Snapshot()
	return s.forecast(s.transactions, w, asOf)
}

// ForecastSimulation projects the window over a simulation's overlay.
func (l *Ledger) ForecastSimulation(id uuid.UUID, w date.Window, asOf date.Date) (Forecast, error) {
	s := l.Snapshot()
	sim, ok := s.simulation(id)
	if !ok {
		return Forecast{}, Validationf("simulation %s not found", id)
	}
	if sim.Status == SimulationDiscarded {
		return Forecast{}, StateConflictf("simulation %q is discarded", sim.Name)
	}
	return s.forecast(overlay(s.transactions, sim), w, asOf), nil
}

func (l *Ledger) forecast(txs []Transaction, w date.Window, asOf date.Date) Forecast {
	out := Forecast{Window: w, AsOf: asOf, Currency: l.currency}
	period := l.budgetWindow(asOf)
	index := seriesIndex(txs)

	var entries []ForecastEntry

	// concrete transactions; a recurrence template counts as the concrete
	// transaction of its own first slot
	for i := range txs {
		tx := &txs[i]
		if !w.Contains(tx.Scheduled) {
			continue
		}
		entries = append(entries, ForecastEntry{
			Transaction: tx.Clone(),
			Status:      classifySchedule(tx.Scheduled, asOf, period),
			Flow:        l.flowSign(tx),
		})
	}

	// projected occurrences of active series
	for i := range txs {
		template := &txs[i]
		r := template.Recurrence
		if r == nil || !r.IsActive() {
			continue
		}
		series, _ := template.Series()
		members := index[series]
		if len(members) == 0 {
			members = []*Transaction{template}
		}
		for _, occ := range walkSeries(r, members, w.End) {
			if occ.tx != nil || !w.Contains(occ.on) {
				continue
			}
			projected := template.Clone()
			projected.ID = uuid.Nil
			projected.Scheduled = occ.on
			projected.Actual = nil
			projected.ActualAmount = nil
			projected.Status = Scheduled
			projected.Recurrence = nil
			sid := series
			projected.SeriesID = &sid
			entries = append(entries, ForecastEntry{
				Transaction: projected,
				Projected:   true,
				Status:      classifySchedule(occ.on, asOf, period),
				Flow:        l.flowSign(template),
			})
		}
	}

	slices.SortStableFunc(entries, func(a, b ForecastEntry) int {
		return a.Transaction.Scheduled.Sub(b.Transaction.Scheduled)
	})

	inflow, outflow := decimal.Zero, decimal.Zero
	for _, e := range entries {
		cur := e.Transaction.Currency
		if cur == "" {
			cur = l.currency
		}
		if cur != l.currency {
			out.Incomplete = true
		} else {
			switch e.Flow {
			case +1:
				inflow = inflow.Add(e.Transaction.effective())
			case -1:
				outflow = outflow.Add(e.Transaction.effective())
			}
		}
		switch e.Status {
		case ScheduleOverdue:
			out.Overdue++
		case SchedulePending:
			out.Pending++
		case ScheduleFuture:
			out.Future++
		}
	}

	out.Inflow = M(inflow, l.currency)
	out.Outflow = M(outflow, l.currency)
	out.Net = out.Inflow.Sub(out.Outflow)
	out.Entries = entries
	return out
}
