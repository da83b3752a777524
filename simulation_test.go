package bufy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunoclpinto/BUFY/date"
)

func TestSimulationLifecycle(t *testing.T) {
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)
	rent := addTx(t, l, checking, landlord, "2025-01-05", 800)

	sim, err := l.CreateSimulation("cheaper flat", "what if rent drops")
	require.NoError(t, err)
	assert.Equal(t, SimulationDraft, sim.Status)

	// a draft accepts changes
	lower := dec(600)
	target := rent.ID
	err = l.AddSimulationChange(sim.ID, SimulationChange{
		Kind:   ChangeModify,
		Target: &target,
		Patch:  &TransactionPatch{Budgeted: &lower},
	})
	require.NoError(t, err)

	// applying folds the change into the real data
	require.NoError(t, l.ApplySimulation(sim.ID))
	got, ok := l.Transaction(rent.ID)
	require.True(t, ok)
	assert.True(t, got.Budgeted.Equal(dec(600)), "rent budget should be patched to 600, got %s", got.Budgeted)

	applied, _ := l.Simulation(sim.ID)
	assert.Equal(t, SimulationApplied, applied.Status)
	assert.NotNil(t, applied.AppliedAt)

	// terminal states reject everything
	err = l.AddSimulationChange(sim.ID, SimulationChange{Kind: ChangeExclude, Target: &target})
	assert.True(t, IsStateConflict(err), "adding to an applied simulation: got %v", err)
	assert.True(t, IsStateConflict(l.ApplySimulation(sim.ID)))
	assert.True(t, IsStateConflict(l.DiscardSimulation(sim.ID)))
}

func TestDiscardSimulation_RetainsIt(t *testing.T) {
	l := newTestLedger(t)

	sim, err := l.CreateSimulation("abandoned idea", "")
	require.NoError(t, err)
	require.NoError(t, l.DiscardSimulation(sim.ID))

	// still there, just unusable
	got, ok := l.Simulation(sim.ID)
	require.True(t, ok, "discarded simulation must be retained")
	assert.Equal(t, SimulationDiscarded, got.Status)

	_, err = l.SimulateWindow(sim.ID, date.WindowOf(date.Monthly(), date.Today(), date.Today()))
	assert.True(t, IsStateConflict(err), "summarizing a discarded simulation: got %v", err)
}

func TestSimulationChanges_ValidateAgainstLedger(t *testing.T) {
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)

	sim, err := l.CreateSimulation("broken", "")
	require.NoError(t, err)

	t.Run("add with dangling account", func(t *testing.T) {
		bad, err := NewTransaction(checking.ID, landlord.ID, date.MustParse("2025-01-05"), dec(10))
		require.NoError(t, err)
		bad.To = uuid.New()
		err = l.AddSimulationChange(sim.ID, SimulationChange{Kind: ChangeAdd, Transaction: &bad})
		assert.True(t, IsValidation(err), "got %v", err)
	})

	t.Run("modify unknown target", func(t *testing.T) {
		target := uuid.New()
		amount := dec(10)
		err := l.AddSimulationChange(sim.ID, SimulationChange{
			Kind:   ChangeModify,
			Target: &target,
			Patch:  &TransactionPatch{Budgeted: &amount},
		})
		assert.True(t, IsValidation(err), "got %v", err)
	})

	t.Run("modify with empty patch", func(t *testing.T) {
		rent := addTx(t, l, checking, landlord, "2025-01-05", 800)
		target := rent.ID
		err := l.AddSimulationChange(sim.ID, SimulationChange{
			Kind:   ChangeModify,
			Target: &target,
			Patch:  &TransactionPatch{},
		})
		assert.True(t, IsValidation(err), "got %v", err)
	})
}

func TestOverlay_NeverMutatesBase(t *testing.T) {
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)
	rent := addTx(t, l, checking, landlord, "2025-01-05", 800)

	sim, err := l.CreateSimulation("what if", "")
	require.NoError(t, err)
	lower := dec(1)
	target := rent.ID
	require.NoError(t, l.AddSimulationChange(sim.ID, SimulationChange{
		Kind:   ChangeModify,
		Target: &target,
		Patch:  &TransactionPatch{Budgeted: &lower},
	}))

	// run the overlay twice
	for range 2 {
		_, err := l.SimulateWindow(sim.ID, window(t, "2025-01-01", "2025-02-01"))
		require.NoError(t, err)
	}

	got, _ := l.Transaction(rent.ID)
	assert.True(t, got.Budgeted.Equal(dec(800)), "base transaction changed: %s", got.Budgeted)
}

func TestOverlayTransactions(t *testing.T) {
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)
	rent := addTx(t, l, checking, landlord, "2025-01-05", 800)
	insurance := addTx(t, l, checking, landlord, "2025-01-20", 45)

	sim, err := l.CreateSimulation("restructure", "")
	require.NoError(t, err)
	extra, err := NewTransaction(checking.ID, landlord.ID, date.MustParse("2025-01-10"), dec(50))
	require.NoError(t, err)
	require.NoError(t, l.AddSimulationChange(sim.ID, SimulationChange{Kind: ChangeAdd, Transaction: &extra}))
	target := insurance.ID
	require.NoError(t, l.AddSimulationChange(sim.ID, SimulationChange{Kind: ChangeExclude, Target: &target}))

	txs, err := l.OverlayTransactions(sim.ID)
	require.NoError(t, err)

	// the addition appears in scheduled order, the exclusion is gone, and
	// the real data is untouched
	require.Len(t, txs, 2)
	assert.Equal(t, rent.ID, txs[0].ID)
	assert.Equal(t, extra.ID, txs[1].ID)
	_, ok := l.Transaction(insurance.ID)
	assert.True(t, ok, "overlay must not touch the real transactions")

	require.NoError(t, l.DiscardSimulation(sim.ID))
	_, err = l.OverlayTransactions(sim.ID)
	assert.True(t, IsStateConflict(err), "overlaying a discarded simulation: got %v", err)
}

func TestApplySimulation_AddAndExclude(t *testing.T) {
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)
	rent := addTx(t, l, checking, landlord, "2025-01-05", 800)

	sim, err := l.CreateSimulation("restructure", "")
	require.NoError(t, err)

	extra, err := NewTransaction(checking.ID, landlord.ID, date.MustParse("2025-01-20"), dec(50))
	require.NoError(t, err)
	require.NoError(t, l.AddSimulationChange(sim.ID, SimulationChange{Kind: ChangeAdd, Transaction: &extra}))
	target := rent.ID
	require.NoError(t, l.AddSimulationChange(sim.ID, SimulationChange{Kind: ChangeExclude, Target: &target}))

	require.NoError(t, l.ApplySimulation(sim.ID))

	_, ok := l.Transaction(rent.ID)
	assert.False(t, ok, "excluded transaction survived the apply")
	_, ok = l.Transaction(extra.ID)
	assert.True(t, ok, "added transaction missing after the apply")
}
