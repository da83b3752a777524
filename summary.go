package bufy

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brunoclpinto/BUFY/date"
)

// Health classifies a category's spending against its budget.
type Health int

const (
	// HealthNoData means no actual amount was recorded in the window.
	HealthNoData Health = iota
	// HealthWithinBudget means actual spending did not exceed the budget.
	HealthWithinBudget
	// HealthOverBudget means actual spending exceeded the budget.
	HealthOverBudget
)

func (h Health) String() string {
	switch h {
	case HealthNoData:
		return "no-data"
	case HealthWithinBudget:
		return "within-budget"
	case HealthOverBudget:
		return "over-budget"
	default:
		return "unknown"
	}
}

// accumulator sums budgeted and actual amounts in one currency. A
// transaction in a different currency flips the incomplete flag instead
// of silently converting.
type accumulator struct {
	currency      string
	budgeted      decimal.Decimal
	actual        decimal.Decimal
	budgetedCount int
	actualCount   int
	incomplete    bool
}

func (a *accumulator) add(tx *Transaction, fallback string) {
	cur := tx.Currency
	if cur == "" {
		cur = fallback
	}
	if cur != a.currency {
		a.incomplete = true
		return
	}
	a.budgeted = a.budgeted.Add(tx.Budgeted)
	a.budgetedCount++
	if tx.ActualAmount != nil {
		a.actual = a.actual.Add(*tx.ActualAmount)
		a.actualCount++
	}
}

// effective is the amount a transaction contributes to totals: the actual
// amount when recorded, the budgeted amount otherwise.
func (tx *Transaction) effective() decimal.Decimal {
	if tx.ActualAmount != nil {
		return *tx.ActualAmount
	}
	return tx.Budgeted
}

// CategorySummary is one category row of a window summary.
type CategorySummary struct {
	CategoryID *uuid.UUID // nil for uncategorized
	Name       string
	Budgeted   Money
	Actual     Money
	Variance   Money // actual minus budgeted
	Health     Health
	Count      int
	Incomplete bool
}

// AccountSummary is one account row of a window summary.
type AccountSummary struct {
	AccountID  uuid.UUID
	Name       string
	In         Money
	Out        Money
	Incomplete bool
}

// WindowSummary condenses all transactions scheduled in a window.
type WindowSummary struct {
	Window     date.Window
	Currency   string
	Inflow     Money
	Outflow    Money
	Net        Money
	Categories []CategorySummary
	Accounts   []AccountSummary
	Incomplete bool
}

// Summarize condenses the transactions scheduled inside the window:
// inflow and outflow totals, per-category budget health and per-account
// flows. Transactions in a foreign currency mark the affected totals
// incomplete rather than being converted.
func (l *Ledger) Summarize(w date.Window) WindowSummary {
	s := l.Snapshot()
	return s.summarize(s.transactions, w)
}

func (l *Ledger) summarize(txs []Transaction, w date.Window) WindowSummary {
	out := WindowSummary{Window: w, Currency: l.currency}

	inflow, outflow := decimal.Zero, decimal.Zero
	byCategory := make(map[uuid.UUID]*accumulator)
	var uncategorized *accumulator
	byAccount := make(map[uuid.UUID]*accountFlows)

	for i := range txs {
		tx := &txs[i]
		if !w.Contains(tx.Scheduled) {
			continue
		}
		cur := tx.Currency
		if cur == "" {
			cur = l.currency
		}
		if cur != l.currency {
			out.Incomplete = true
		} else {
			switch l.flowSign(tx) {
			case +1:
				inflow = inflow.Add(tx.effective())
			case -1:
				outflow = outflow.Add(tx.effective())
			}
		}

		acc := uncategorized
		if tx.CategoryID != nil {
			acc = byCategory[*tx.CategoryID]
			if acc == nil {
				acc = &accumulator{currency: l.currency}
				byCategory[*tx.CategoryID] = acc
			}
		} else if acc == nil {
			acc = &accumulator{currency: l.currency}
			uncategorized = acc
		}
		acc.add(tx, l.currency)

		l.accountFlow(byAccount, tx.From, tx, cur, false)
		l.accountFlow(byAccount, tx.To, tx, cur, true)
	}

	out.Inflow = M(inflow, l.currency)
	out.Outflow = M(outflow, l.currency)
	out.Net = out.Inflow.Sub(out.Outflow)

	for id, acc := range byCategory {
		name := "unknown"
		if c, ok := l.category(id); ok {
			name = c.Name
		}
		cid := id
		out.Categories = append(out.Categories, categoryRow(&cid, name, acc, l.currency))
	}
	if uncategorized != nil {
		out.Categories = append(out.Categories, categoryRow(nil, "uncategorized", uncategorized, l.currency))
	}
	slices.SortStableFunc(out.Categories, func(a, b CategorySummary) int {
		return strings.Compare(a.Name, b.Name)
	})

	for id, flows := range byAccount {
		name := "unknown"
		if a, ok := l.account(id); ok {
			name = a.Name
		}
		out.Accounts = append(out.Accounts, AccountSummary{
			AccountID:  id,
			Name:       name,
			In:         M(flows.in, l.currency),
			Out:        M(flows.out, l.currency),
			Incomplete: flows.incomplete,
		})
	}
	slices.SortStableFunc(out.Accounts, func(a, b AccountSummary) int {
		return strings.Compare(a.Name, b.Name)
	})

	for i := range out.Categories {
		if out.Categories[i].Incomplete {
			out.Incomplete = true
		}
	}
	return out
}

type accountFlows struct {
	in, out    decimal.Decimal
	incomplete bool
}

func (l *Ledger) accountFlow(flows map[uuid.UUID]*accountFlows, id uuid.UUID, tx *Transaction, cur string, incoming bool) {
	f := flows[id]
	if f == nil {
		f = &accountFlows{}
		flows[id] = f
	}
	if cur != l.currency {
		f.incomplete = true
		return
	}
	if incoming {
		f.in = f.in.Add(tx.effective())
	} else {
		f.out = f.out.Add(tx.effective())
	}
}

func categoryRow(id *uuid.UUID, name string, acc *accumulator, currency string) CategorySummary {
	variance := acc.actual.Sub(acc.budgeted)
	health := HealthNoData
	if acc.actualCount > 0 {
		if variance.IsPositive() {
			health = HealthOverBudget
		} else {
			health = HealthWithinBudget
		}
	}
	return CategorySummary{
		CategoryID: id,
		Name:       name,
		Budgeted:   M(acc.budgeted, currency),
		Actual:     M(acc.actual, currency),
		Variance:   M(variance, currency),
		Health:     health,
		Count:      acc.budgetedCount,
		Incomplete: acc.incomplete,
	}
}

// SimulationImpact compares a window summary with and without a
// simulation's changes.
type SimulationImpact struct {
	Simulation   uuid.UUID
	Name         string
	Base         WindowSummary
	Simulated    WindowSummary
	InflowDelta  Money
	OutflowDelta Money
	NetDelta     Money
}

// SimulateWindow summarizes a window twice, with and without the
// simulation overlay, and reports the deltas. The overlay is built fresh
// from the current data; the real transactions are never modified.
func (l *Ledger) SimulateWindow(id uuid.UUID, w date.Window) (SimulationImpact, error) {
	s := l.Snapshot()
	sim, ok := s.simulation(id)
	if !ok {
		return SimulationImpact{}, Validationf("simulation %s not found", id)
	}
	if sim.Status == SimulationDiscarded {
		return SimulationImpact{}, StateConflictf("simulation %q is discarded", sim.Name)
	}
	base := s.summarize(s.transactions, w)
	simulated := s.summarize(overlay(s.transactions, sim), w)
	return SimulationImpact{
		Simulation:   sim.ID,
		Name:         sim.Name,
		Base:         base,
		Simulated:    simulated,
		InflowDelta:  simulated.Inflow.Sub(base.Inflow),
		OutflowDelta: simulated.Outflow.Sub(base.Outflow),
		NetDelta:     simulated.Net.Sub(base.Net),
	}, nil
}
