package bufy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brunoclpinto/BUFY/date"
)

// TransactionStatus is the lifecycle state of a ledger transaction.
type TransactionStatus int

const (
	// Scheduled is a planned transaction with no actuals yet.
	Scheduled TransactionStatus = iota
	// Pending is a transaction awaiting confirmation of its actuals.
	Pending
	// Completed carries an actual date and amount.
	Completed
)

func (s TransactionStatus) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case Pending:
		return "pending"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// ParseTransactionStatus parses a transaction status name.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch strings.ToLower(s) {
	case "scheduled":
		return Scheduled, nil
	case "pending":
		return Pending, nil
	case "completed":
		return Completed, nil
	default:
		return Scheduled, fmt.Errorf("unknown transaction status %q", s)
	}
}

// Transaction is a planned or realized money flow between two accounts.
type Transaction struct {
	ID         uuid.UUID
	From       uuid.UUID
	To         uuid.UUID
	CategoryID *uuid.UUID

	Scheduled date.Date
	Actual    *date.Date

	Budgeted     decimal.Decimal
	ActualAmount *decimal.Decimal
	Currency     string // optional override of the ledger's accounting currency

	Notes  string
	Status TransactionStatus

	// Recurrence makes this transaction the template of a series.
	Recurrence *Recurrence
	// SeriesID tags a transaction generated from a recurring template.
	SeriesID *uuid.UUID

	extra rawFields
}

// NewTransaction builds a validated scheduled transaction with a fresh id.
func NewTransaction(from, to uuid.UUID, scheduled date.Date, budgeted decimal.Decimal) (Transaction, error) {
	tx := Transaction{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		Scheduled: scheduled,
		Budgeted:  budgeted,
		Status:    Scheduled,
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// WithCategory returns a copy of the transaction labeled with a category.
func (t Transaction) WithCategory(id uuid.UUID) Transaction {
	c := id
	t.CategoryID = &c
	return t
}

// WithNotes returns a copy of the transaction with free-form notes.
func (t Transaction) WithNotes(notes string) Transaction {
	t.Notes = notes
	return t
}

// Validate checks the transaction's own invariants. Cross-references are
// checked by the owning ledger.
func (t *Transaction) Validate() error {
	if t.From == uuid.Nil || t.To == uuid.Nil {
		return Validationf("transaction %s must reference a source and a destination account", t.ID)
	}
	if t.Budgeted.IsNegative() {
		return Validationf("transaction %s budgeted amount %s is negative", t.ID, t.Budgeted)
	}
	if t.ActualAmount != nil && t.ActualAmount.IsNegative() {
		return Validationf("transaction %s actual amount %s is negative", t.ID, t.ActualAmount)
	}
	// actual date and amount are populated together or not at all.
	if (t.Actual == nil) != (t.ActualAmount == nil) {
		return Validationf("transaction %s must carry actual date and amount together", t.ID)
	}
	if t.Recurrence != nil {
		if err := t.Recurrence.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SetRecurrence attaches (or detaches) a recurrence rule, keeping the
// series id and start date consistent with the template.
func (t *Transaction) SetRecurrence(r *Recurrence) error {
	if r == nil {
		t.Recurrence = nil
		t.SeriesID = nil
		return nil
	}
	if err := r.Validate(); err != nil {
		return err
	}
	if r.SeriesID == uuid.Nil {
		r.SeriesID = t.ID
	}
	if r.Start.IsZero() {
		r.Start = t.Scheduled
	}
	series := r.SeriesID
	t.Recurrence = r
	t.SeriesID = &series
	return nil
}

// Series returns the recurrence series this transaction belongs to, either
// as a generated instance or as the template itself.
func (t *Transaction) Series() (uuid.UUID, bool) {
	if t.SeriesID != nil {
		return *t.SeriesID, true
	}
	if t.Recurrence != nil {
		return t.ID, true
	}
	return uuid.Nil, false
}

// MarkCompleted records the actuals and flips the status.
func (t *Transaction) MarkCompleted(on date.Date, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return Validationf("transaction %s actual amount %s is negative", t.ID, amount)
	}
	d := on
	a := amount
	t.Actual = &d
	t.ActualAmount = &a
	t.Status = Completed
	return nil
}

// Clone returns a deep copy, safe to mutate independently.
func (t Transaction) Clone() Transaction {
	c := t
	if t.CategoryID != nil {
		id := *t.CategoryID
		c.CategoryID = &id
	}
	if t.Actual != nil {
		d := *t.Actual
		c.Actual = &d
	}
	if t.ActualAmount != nil {
		a := *t.ActualAmount
		c.ActualAmount = &a
	}
	if t.SeriesID != nil {
		id := *t.SeriesID
		c.SeriesID = &id
	}
	if t.Recurrence != nil {
		r := t.Recurrence.Clone()
		c.Recurrence = &r
	}
	c.extra = t.extra.clone()
	return c
}

// RecurrenceMode selects how the next occurrence date is anchored.
type RecurrenceMode int

const (
	// FixedSchedule follows the planned schedule regardless of actual timing.
	FixedSchedule RecurrenceMode = iota
	// AfterLastPerformed starts the next period after the actual performed date.
	AfterLastPerformed
)

func (m RecurrenceMode) String() string {
	switch m {
	case FixedSchedule:
		return "fixed-schedule"
	case AfterLastPerformed:
		return "after-last-performed"
	default:
		return "unknown"
	}
}

// ParseRecurrenceMode parses a recurrence mode name.
func ParseRecurrenceMode(s string) (RecurrenceMode, error) {
	switch strings.ToLower(s) {
	case "fixed-schedule", "fixed":
		return FixedSchedule, nil
	case "after-last-performed", "after-last":
		return AfterLastPerformed, nil
	default:
		return FixedSchedule, fmt.Errorf("unknown recurrence mode %q", s)
	}
}

// RecurrenceStatus is the lifecycle state of a recurrence rule.
type RecurrenceStatus int

const (
	RecurrenceActive RecurrenceStatus = iota
	RecurrencePaused
	RecurrenceCompleted
)

func (s RecurrenceStatus) String() string {
	switch s {
	case RecurrenceActive:
		return "active"
	case RecurrencePaused:
		return "paused"
	case RecurrenceCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ParseRecurrenceStatus parses a string into a RecurrenceStatus.
func ParseRecurrenceStatus(s string) (RecurrenceStatus, error) {
	switch s {
	case "active":
		return RecurrenceActive, nil
	case "paused":
		return RecurrencePaused, nil
	case "completed":
		return RecurrenceCompleted, nil
	default:
		return 0, fmt.Errorf("unknown recurrence status: %q", s)
	}
}

// EndKind selects how a recurrence terminates.
type EndKind int

const (
	// EndNever keeps the series open-ended.
	EndNever EndKind = iota
	// EndAfter stops after a fixed number of occurrences.
	EndAfter
	// EndOn stops after a calendar date.
	EndOn
)

func (k EndKind) String() string {
	switch k {
	case EndNever:
		return "never"
	case EndAfter:
		return "after-occurrences"
	case EndOn:
		return "on-date"
	default:
		return "unknown"
	}
}

// ParseEndKind parses a string into an EndKind.
func ParseEndKind(s string) (EndKind, error) {
	switch s {
	case "never":
		return EndNever, nil
	case "after-occurrences":
		return EndAfter, nil
	case "on-date":
		return EndOn, nil
	default:
		return 0, fmt.Errorf("unknown recurrence end kind: %q", s)
	}
}

// RecurrenceEnd is the termination condition of a recurrence.
type RecurrenceEnd struct {
	Kind  EndKind
	Count int       // occurrences, when Kind is EndAfter
	On    date.Date // last admissible date, when Kind is EndOn
}

// Never keeps the series open-ended.
func Never() RecurrenceEnd { return RecurrenceEnd{Kind: EndNever} }

// After stops the series after n occurrences.
func After(n int) RecurrenceEnd { return RecurrenceEnd{Kind: EndAfter, Count: n} }

// On stops the series after the given date.
func On(d date.Date) RecurrenceEnd { return RecurrenceEnd{Kind: EndOn, On: d} }

// Recurrence describes how a template transaction repeats over time.
// The derived fields at the bottom are a cache rebuilt by
// Ledger.RefreshRecurrenceMetadata; they are never a source of truth and
// may be stale or absent after loading an older file.
type Recurrence struct {
	SeriesID   uuid.UUID
	Start      date.Date
	Interval   date.Interval
	Mode       RecurrenceMode
	End        RecurrenceEnd
	Exceptions []date.Date
	Status     RecurrenceStatus

	// derived metadata (cache)
	LastGenerated *date.Date
	LastCompleted *date.Date
	Generated     int
	NextScheduled *date.Date

	extra rawFields
}

// NewRecurrence builds a validated recurrence rule. A malformed rule (for
// example every = 0) fails here, never during a later walk.
func NewRecurrence(start date.Date, interval date.Interval, mode RecurrenceMode) (*Recurrence, error) {
	r := &Recurrence{
		SeriesID: uuid.New(),
		Start:    start,
		Interval: interval,
		Mode:     mode,
		End:      Never(),
		Status:   RecurrenceActive,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the rule's own invariants.
func (r *Recurrence) Validate() error {
	if err := r.Interval.Validate(); err != nil {
		return Validationf("recurrence %s: %v", r.SeriesID, err)
	}
	if r.Start.IsZero() {
		return Validationf("recurrence %s has no start date", r.SeriesID)
	}
	if r.End.Kind == EndAfter && r.End.Count < 1 {
		return Validationf("recurrence %s must allow at least one occurrence", r.SeriesID)
	}
	if r.End.Kind == EndOn && r.End.On.Before(r.Start) {
		return Validationf("recurrence %s ends %s before it starts %s", r.SeriesID, r.End.On, r.Start)
	}
	return nil
}

// WithEnd returns a copy of the rule with the given termination condition.
func (r Recurrence) WithEnd(end RecurrenceEnd) *Recurrence {
	r.End = end
	return &r
}

// AddException excludes a single date from the schedule. Exceptions do not
// consume an occurrence-count slot.
func (r *Recurrence) AddException(d date.Date) {
	if !r.isException(d) {
		r.Exceptions = append(r.Exceptions, d)
		slices.SortFunc(r.Exceptions, func(a, b date.Date) int {
			switch {
			case a.Before(b):
				return -1
			case b.Before(a):
				return 1
			default:
				return 0
			}
		})
	}
}

func (r *Recurrence) isException(d date.Date) bool {
	return slices.Contains(r.Exceptions, d)
}

// allows reports whether the rule admits one more occurrence at candidate,
// given how many occurrences were already admitted before it.
func (r *Recurrence) allows(index int, candidate date.Date) bool {
	if candidate.Before(r.Start) {
		return false
	}
	switch r.End.Kind {
	case EndNever:
		return true
	case EndOn:
		return !candidate.After(r.End.On)
	case EndAfter:
		return index < r.End.Count
	default:
		return false
	}
}

// IsActive reports whether the rule still generates occurrences.
func (r *Recurrence) IsActive() bool { return r.Status == RecurrenceActive }

// Clone returns a deep copy of the rule.
func (r Recurrence) Clone() Recurrence {
	c := r
	c.Exceptions = slices.Clone(r.Exceptions)
	if r.LastGenerated != nil {
		d := *r.LastGenerated
		c.LastGenerated = &d
	}
	if r.LastCompleted != nil {
		d := *r.LastCompleted
		c.LastCompleted = &d
	}
	if r.NextScheduled != nil {
		d := *r.NextScheduled
		c.NextScheduled = &d
	}
	c.extra = r.extra.clone()
	return c
}
