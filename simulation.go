package bufy

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brunoclpinto/BUFY/date"
)

// SimulationStatus is the lifecycle of a simulation. Applied and Discarded
// are terminal.
type SimulationStatus int

const (
	SimulationDraft SimulationStatus = iota
	SimulationApplied
	SimulationDiscarded
)

func (s SimulationStatus) String() string {
	switch s {
	case SimulationDraft:
		return "draft"
	case SimulationApplied:
		return "applied"
	case SimulationDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// ParseSimulationStatus parses a string into a SimulationStatus.
func ParseSimulationStatus(s string) (SimulationStatus, error) {
	switch s {
	case "draft":
		return SimulationDraft, nil
	case "applied":
		return SimulationApplied, nil
	case "discarded":
		return SimulationDiscarded, nil
	default:
		return 0, fmt.Errorf("unknown simulation status: %q", s)
	}
}

// ChangeKind is the kind of a simulation change.
type ChangeKind int

const (
	// ChangeAdd introduces a hypothetical transaction.
	ChangeAdd ChangeKind = iota
	// ChangeModify overrides fields of an existing transaction.
	ChangeModify
	// ChangeExclude removes an existing transaction from the overlay.
	ChangeExclude
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdd:
		return "add"
	case ChangeModify:
		return "modify"
	case ChangeExclude:
		return "exclude"
	default:
		return "unknown"
	}
}

// ParseChangeKind parses a string into a ChangeKind.
func ParseChangeKind(s string) (ChangeKind, error) {
	switch s {
	case "add":
		return ChangeAdd, nil
	case "modify":
		return ChangeModify, nil
	case "exclude":
		return ChangeExclude, nil
	default:
		return 0, fmt.Errorf("unknown change kind: %q", s)
	}
}

// TransactionPatch carries field overrides for a modify change. Nil fields
// keep the underlying value.
type TransactionPatch struct {
	From       *uuid.UUID
	To         *uuid.UUID
	CategoryID *uuid.UUID
	Scheduled  *date.Date
	Budgeted   *decimal.Decimal
	Currency   *string
	Notes      *string
}

func (p *TransactionPatch) isEmpty() bool {
	return p.From == nil && p.To == nil && p.CategoryID == nil &&
		p.Scheduled == nil && p.Budgeted == nil && p.Currency == nil && p.Notes == nil
}

// apply overlays the patch onto a transaction clone.
func (p *TransactionPatch) apply(tx *Transaction) {
	if p.From != nil {
		tx.From = *p.From
	}
	if p.To != nil {
		tx.To = *p.To
	}
	if p.CategoryID != nil {
		v := *p.CategoryID
		tx.CategoryID = &v
	}
	if p.Scheduled != nil {
		tx.Scheduled = *p.Scheduled
	}
	if p.Budgeted != nil {
		tx.Budgeted = *p.Budgeted
	}
	if p.Currency != nil {
		tx.Currency = *p.Currency
	}
	if p.Notes != nil {
		tx.Notes = *p.Notes
	}
}

func (p *TransactionPatch) clone() *TransactionPatch {
	if p == nil {
		return nil
	}
	c := &TransactionPatch{}
	if p.From != nil {
		v := *p.From
		c.From = &v
	}
	if p.To != nil {
		v := *p.To
		c.To = &v
	}
	if p.CategoryID != nil {
		v := *p.CategoryID
		c.CategoryID = &v
	}
	if p.Scheduled != nil {
		v := *p.Scheduled
		c.Scheduled = &v
	}
	if p.Budgeted != nil {
		v := *p.Budgeted
		c.Budgeted = &v
	}
	if p.Currency != nil {
		v := *p.Currency
		c.Currency = &v
	}
	if p.Notes != nil {
		v := *p.Notes
		c.Notes = &v
	}
	return c
}

// SimulationChange is a single hypothetical edit inside a simulation.
type SimulationChange struct {
	ID          uuid.UUID
	Kind        ChangeKind
	Target      *uuid.UUID        // modify, exclude
	Transaction *Transaction      // add
	Patch       *TransactionPatch // modify
}

func (c SimulationChange) clone() SimulationChange {
	out := c
	if c.Target != nil {
		v := *c.Target
		out.Target = &v
	}
	if c.Transaction != nil {
		tx := c.Transaction.Clone()
		out.Transaction = &tx
	}
	out.Patch = c.Patch.clone()
	return out
}

// Simulation is a named what-if scenario layered over the ledger. Its
// changes never touch the real data until the simulation is applied.
type Simulation struct {
	ID        uuid.UUID
	Name      string
	Notes     string
	Status    SimulationStatus
	Changes   []SimulationChange
	CreatedAt time.Time
	UpdatedAt time.Time
	AppliedAt *time.Time

	extra rawFields
}

// Clone deep-copies the simulation.
func (s Simulation) Clone() Simulation {
	out := s
	out.Changes = make([]SimulationChange, len(s.Changes))
	for i := range s.Changes {
		out.Changes[i] = s.Changes[i].clone()
	}
	if s.AppliedAt != nil {
		v := *s.AppliedAt
		out.AppliedAt = &v
	}
	out.extra = s.extra.clone()
	return out
}

// IsTerminal reports whether the simulation can no longer change.
func (s Simulation) IsTerminal() bool {
	return s.Status == SimulationApplied || s.Status == SimulationDiscarded
}

// --- ledger operations ---

// CreateSimulation starts a new draft simulation.
func (l *Ledger) CreateSimulation(name, notes string) (Simulation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if name == "" {
		return Simulation{}, Validationf("simulation name is required")
	}
	for i := range l.simulations {
		if l.simulations[i].Name == name && !l.simulations[i].IsTerminal() {
			return Simulation{}, Validationf("simulation name %q already in use", name)
		}
	}
	now := time.Now().UTC()
	sim := Simulation{
		ID:        uuid.New(),
		Name:      name,
		Notes:     notes,
		Status:    SimulationDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	l.simulations = append(l.simulations, sim)
	l.touch()
	return sim.Clone(), nil
}

// Simulation returns the simulation with the given id.
func (l *Ledger) Simulation(id uuid.UUID) (Simulation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if sim, ok := l.simulation(id); ok {
		return sim.Clone(), true
	}
	return Simulation{}, false
}

func (l *Ledger) simulation(id uuid.UUID) (*Simulation, bool) {
	for i := range l.simulations {
		if l.simulations[i].ID == id {
			return &l.simulations[i], true
		}
	}
	return nil, false
}

// SimulationByName looks a simulation up by name, preferring drafts.
func (l *Ledger) SimulationByName(name string) (Simulation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var found *Simulation
	for i := range l.simulations {
		if l.simulations[i].Name != name {
			continue
		}
		if !l.simulations[i].IsTerminal() {
			return l.simulations[i].Clone(), true
		}
		if found == nil {
			found = &l.simulations[i]
		}
	}
	if found != nil {
		return found.Clone(), true
	}
	return Simulation{}, false
}

// Simulations iterates over all simulations, in creation order.
func (l *Ledger) Simulations() iter.Seq[Simulation] {
	l.mu.Lock()
	sims := make([]Simulation, len(l.simulations))
	for i := range l.simulations {
		sims[i] = l.simulations[i].Clone()
	}
	l.mu.Unlock()
	return slices.Values(sims)
}

// validateChange checks a change against the current ledger state.
func (l *Ledger) validateChange(c *SimulationChange) error {
	switch c.Kind {
	case ChangeAdd:
		if c.Transaction == nil {
			return Validationf("add change requires a transaction")
		}
		if err := c.Transaction.Validate(); err != nil {
			return err
		}
		return l.checkRefs(c.Transaction)
	case ChangeModify:
		if c.Target == nil {
			return Validationf("modify change requires a target transaction")
		}
		if _, ok := l.transaction(*c.Target); !ok {
			return Validationf("target transaction %s not found", *c.Target)
		}
		if c.Patch == nil || c.Patch.isEmpty() {
			return Validationf("modify change requires a non-empty patch")
		}
		if c.Patch.From != nil {
			if _, ok := l.account(*c.Patch.From); !ok {
				return Validationf("source account %s not found", *c.Patch.From)
			}
		}
		if c.Patch.To != nil {
			if _, ok := l.account(*c.Patch.To); !ok {
				return Validationf("destination account %s not found", *c.Patch.To)
			}
		}
		if c.Patch.CategoryID != nil {
			if _, ok := l.category(*c.Patch.CategoryID); !ok {
				return Validationf("category %s not found", *c.Patch.CategoryID)
			}
		}
		if c.Patch.Budgeted != nil && c.Patch.Budgeted.IsNegative() {
			return Validationf("budgeted amount cannot be negative")
		}
		return nil
	case ChangeExclude:
		if c.Target == nil {
			return Validationf("exclude change requires a target transaction")
		}
		if _, ok := l.transaction(*c.Target); !ok {
			return Validationf("target transaction %s not found", *c.Target)
		}
		return nil
	default:
		return Validationf("unknown change kind %d", c.Kind)
	}
}

// AddSimulationChange appends a change to a draft simulation.
func (l *Ledger) AddSimulationChange(id uuid.UUID, change SimulationChange) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	sim, ok := l.simulation(id)
	if !ok {
		return Validationf("simulation %s not found", id)
	}
	if sim.IsTerminal() {
		return StateConflictf("simulation %q is %s and cannot change", sim.Name, sim.Status)
	}
	if err := l.validateChange(&change); err != nil {
		return err
	}
	if change.ID == uuid.Nil {
		change.ID = uuid.New()
	}
	sim.Changes = append(sim.Changes, change.clone())
	sim.UpdatedAt = time.Now().UTC()
	l.touch()
	return nil
}

// RemoveSimulationChange drops a change from a draft simulation.
func (l *Ledger) RemoveSimulationChange(id, changeID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	sim, ok := l.simulation(id)
	if !ok {
		return Validationf("simulation %s not found", id)
	}
	if sim.IsTerminal() {
		return StateConflictf("simulation %q is %s and cannot change", sim.Name, sim.Status)
	}
	n := len(sim.Changes)
	sim.Changes = slices.DeleteFunc(sim.Changes, func(c SimulationChange) bool { return c.ID == changeID })
	if len(sim.Changes) == n {
		return Validationf("change %s not found in simulation %q", changeID, sim.Name)
	}
	sim.UpdatedAt = time.Now().UTC()
	l.touch()
	return nil
}

// ApplySimulation folds a draft simulation's changes into the real ledger
// data and marks it applied. Every change is validated again first; when
// any fails, nothing is committed.
func (l *Ledger) ApplySimulation(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	sim, ok := l.simulation(id)
	if !ok {
		return Validationf("simulation %s not found", id)
	}
	if sim.IsTerminal() {
		return StateConflictf("simulation %q is already %s", sim.Name, sim.Status)
	}
	for i := range sim.Changes {
		if err := l.validateChange(&sim.Changes[i]); err != nil {
			return err
		}
	}
	for i := range sim.Changes {
		c := &sim.Changes[i]
		switch c.Kind {
		case ChangeAdd:
			l.transactions = append(l.transactions, c.Transaction.Clone())
		case ChangeModify:
			if tx, ok := l.transaction(*c.Target); ok {
				c.Patch.apply(tx)
			}
		case ChangeExclude:
			l.transactions = slices.DeleteFunc(l.transactions, func(t Transaction) bool { return t.ID == *c.Target })
		}
	}
	now := time.Now().UTC()
	sim.Status = SimulationApplied
	sim.AppliedAt = &now
	sim.UpdatedAt = now
	l.refreshRecurrenceMetadata()
	l.touch()
	return nil
}

// DiscardSimulation marks a draft simulation discarded. The simulation is
// retained for audit; it only stops being usable.
func (l *Ledger) DiscardSimulation(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	sim, ok := l.simulation(id)
	if !ok {
		return Validationf("simulation %s not found", id)
	}
	if sim.IsTerminal() {
		return StateConflictf("simulation %q is already %s", sim.Name, sim.Status)
	}
	sim.Status = SimulationDiscarded
	sim.UpdatedAt = time.Now().UTC()
	l.touch()
	return nil
}

// DeleteSimulation removes a simulation entirely.
func (l *Ledger) DeleteSimulation(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.simulations)
	l.simulations = slices.DeleteFunc(l.simulations, func(s Simulation) bool { return s.ID == id })
	if len(l.simulations) == n {
		return Validationf("simulation %s not found", id)
	}
	l.touch()
	return nil
}

// OverlayTransactions returns the hypothetical transaction view of a
// simulation: the real transactions with its changes layered on top, in
// scheduled-date order. A discarded simulation has no overlay.
func (l *Ledger) OverlayTransactions(id uuid.UUID) ([]Transaction, error) {
	s := l.Snapshot()
	sim, ok := s.simulation(id)
	if !ok {
		return nil, Validationf("simulation %s not found", id)
	}
	if sim.Status == SimulationDiscarded {
		return nil, StateConflictf("simulation %q is discarded", sim.Name)
	}
	txs := overlay(s.transactions, sim)
	slices.SortStableFunc(txs, func(a, b Transaction) int {
		return a.Scheduled.Sub(b.Scheduled)
	})
	return txs, nil
}

// overlay builds the hypothetical transaction set of a simulation: the
// real transactions with the simulation's changes layered on top, in
// order. The overlay is rebuilt fresh on every call and never stored.
func overlay(base []Transaction, sim *Simulation) []Transaction {
	txs := make([]Transaction, 0, len(base)+len(sim.Changes))
	for i := range base {
		txs = append(txs, base[i].Clone())
	}
	for i := range sim.Changes {
		c := &sim.Changes[i]
		switch c.Kind {
		case ChangeAdd:
			txs = append(txs, c.Transaction.Clone())
		case ChangeModify:
			for j := range txs {
				if txs[j].ID == *c.Target {
					c.Patch.apply(&txs[j])
					break
				}
			}
		case ChangeExclude:
			txs = slices.DeleteFunc(txs, func(t Transaction) bool { return t.ID == *c.Target })
		}
	}
	return txs
}
