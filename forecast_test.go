package bufy

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/brunoclpinto/BUFY/date"
)

func TestForecast_MergesRealAndProjected(t *testing.T) {
	// Arrange: monthly rent from January, materialized through February.
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)
	addRecurringTx(t, l, checking, landlord, "2025-01-01", 800)
	if _, err := l.MaterializeDue(date.MustParse("2025-02-15")); err != nil {
		t.Fatalf("MaterializeDue() error = %v", err)
	}

	// Act
	got := l.Forecast(window(t, "2025-01-01", "2025-05-01"), date.MustParse("2025-02-15"))

	// Assert: four slots, each exactly once.
	if len(got.Entries) != 4 {
		t.Fatalf("Forecast() returned %d entries, want 4: %v", len(got.Entries), got.Entries)
	}
	wantProjected := []bool{false, false, true, true}
	for i, e := range got.Entries {
		if e.Projected != wantProjected[i] {
			t.Errorf("entry %d (%s): Projected = %v, want %v", i, e.Transaction.Scheduled, e.Projected, wantProjected[i])
		}
	}
	if !got.Outflow.Equal(EUR(3200)) {
		t.Errorf("Outflow = %s, want %s", got.Outflow, EUR(3200))
	}
	if got.Overdue != 2 || got.Pending != 0 || got.Future != 2 {
		t.Errorf("Overdue/Pending/Future = %d/%d/%d, want 2/0/2", got.Overdue, got.Pending, got.Future)
	}
}

func TestForecast_TotalsMatchEntries(t *testing.T) {
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	employer := addAccount(t, l, "employer", Bucket)
	landlord := addAccount(t, l, "landlord", Liability)
	addRecurringTx(t, l, employer, checking, "2025-01-25", 2000)
	addRecurringTx(t, l, checking, landlord, "2025-01-01", 800)
	addTx(t, l, checking, landlord, "2025-02-10", 65)

	got := l.Forecast(window(t, "2025-01-01", "2025-07-01"), date.MustParse("2025-01-15"))

	// recompute the totals from the entries themselves
	in, out := decimal.Zero, decimal.Zero
	for _, e := range got.Entries {
		switch e.Flow {
		case +1:
			in = in.Add(e.Transaction.effective())
		case -1:
			out = out.Add(e.Transaction.effective())
		}
	}
	if !got.Inflow.Amount().Equal(in) {
		t.Errorf("Inflow = %s, entries sum to %s", got.Inflow.Amount(), in)
	}
	if !got.Outflow.Amount().Equal(out) {
		t.Errorf("Outflow = %s, entries sum to %s", got.Outflow.Amount(), out)
	}
	if !got.Net.Amount().Equal(in.Sub(out)) {
		t.Errorf("Net = %s, want %s", got.Net.Amount(), in.Sub(out))
	}
}

func TestForecast_CompletedActualReplacesBudget(t *testing.T) {
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)
	tx := addTx(t, l, checking, landlord, "2025-01-05", 800)
	if err := l.CompleteTransaction(tx.ID, date.MustParse("2025-01-06"), dec(820)); err != nil {
		t.Fatalf("CompleteTransaction() error = %v", err)
	}

	got := l.Forecast(window(t, "2025-01-01", "2025-02-01"), date.MustParse("2025-01-15"))

	if !got.Outflow.Equal(EUR(820)) {
		t.Errorf("Outflow = %s, want the actual %s", got.Outflow, EUR(820))
	}
}

func TestForecast_Upcoming(t *testing.T) {
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)
	addRecurringTx(t, l, checking, landlord, "2025-01-01", 800)

	got := l.Forecast(window(t, "2025-01-01", "2026-01-01"), date.MustParse("2025-03-15"))
	upcoming := got.Upcoming(3)

	if len(upcoming) != 3 {
		t.Fatalf("Upcoming(3) returned %d entries", len(upcoming))
	}
	if first := upcoming[0].Transaction.Scheduled; first != date.MustParse("2025-04-01") {
		t.Errorf("first upcoming = %s, want 2025-04-01", first)
	}
}

func TestForecastSimulation_OverlaysChanges(t *testing.T) {
	// Arrange: rent exists, the simulation excludes it.
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)
	rent := addTx(t, l, checking, landlord, "2025-01-05", 800)

	sim, err := l.CreateSimulation("moving out", "")
	if err != nil {
		t.Fatalf("CreateSimulation() error = %v", err)
	}
	target := rent.ID
	if err := l.AddSimulationChange(sim.ID, SimulationChange{Kind: ChangeExclude, Target: &target}); err != nil {
		t.Fatalf("AddSimulationChange() error = %v", err)
	}

	// Act
	got, err := l.ForecastSimulation(sim.ID, window(t, "2025-01-01", "2025-02-01"), date.MustParse("2025-01-15"))
	if err != nil {
		t.Fatalf("ForecastSimulation() error = %v", err)
	}

	// Assert
	if len(got.Entries) != 0 {
		t.Errorf("overlay forecast has %d entries, want 0", len(got.Entries))
	}
	real := l.Forecast(window(t, "2025-01-01", "2025-02-01"), date.MustParse("2025-01-15"))
	if len(real.Entries) != 1 {
		t.Errorf("real forecast has %d entries, want 1", len(real.Entries))
	}
}
