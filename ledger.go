package bufy

import (
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brunoclpinto/BUFY/date"
)

// schemaVersion is the current on-disk document version.
const schemaVersion = 4

// DefaultCurrency is assumed for ledger files that predate an explicit
// base currency.
const DefaultCurrency = "USD"

// Ledger is the root aggregate: accounts, categories, transactions and
// simulations under one base currency and one budget period.
//
// All exported methods are safe for concurrent use; reports work on a
// Snapshot so long computations never hold the lock.
type Ledger struct {
	mu sync.Mutex

	name         string
	currency     string
	budgetPeriod date.Interval

	accounts     []Account
	categories   []Category
	transactions []Transaction
	simulations  []Simulation

	createdAt time.Time
	updatedAt time.Time
	notes     []string // migration notes, newest last

	extra rawFields
}

// NewLedger creates an empty ledger with the given base currency and
// budget period.
func NewLedger(name, currency string, period date.Interval) (*Ledger, error) {
	if name == "" {
		return nil, Validationf("ledger name is required")
	}
	if currency == "" {
		return nil, Validationf("ledger currency is required")
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Ledger{
		name:         name,
		currency:     currency,
		budgetPeriod: period,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

func (l *Ledger) Name() string { return l.name }
func (l *Ledger) Notes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.notes)
}

func (l *Ledger) Currency() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currency
}

func (l *Ledger) BudgetPeriod() date.Interval {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.budgetPeriod
}

func (l *Ledger) CreatedAt() time.Time { return l.createdAt }
func (l *Ledger) UpdatedAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.updatedAt
}

func (l *Ledger) touch() { l.updatedAt = time.Now().UTC() }

// SetBudgetPeriod changes the budgeting cadence for future reports.
func (l *Ledger) SetBudgetPeriod(period date.Interval) error {
	if err := period.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.budgetPeriod = period
	l.touch()
	return nil
}

// BudgetWindow returns the budget period containing reference. Periods are
// anchored at the earliest scheduled transaction, normalized to the period
// unit; an empty ledger anchors at the reference itself.
func (l *Ledger) BudgetWindow(reference date.Date) date.Window {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.budgetWindow(reference)
}

// BudgetWindowOffset returns the budget period offset whole periods away
// from the one containing reference: -1 is the previous period, +1 the
// next.
func (l *Ledger) BudgetWindowOffset(reference date.Date, offset int) date.Window {
	l.mu.Lock()
	defer l.mu.Unlock()
	return date.WindowOffset(l.budgetPeriod, l.budgetAnchor(reference), reference, offset)
}

func (l *Ledger) budgetWindow(reference date.Date) date.Window {
	return date.WindowOf(l.budgetPeriod, l.budgetAnchor(reference), reference)
}

func (l *Ledger) budgetAnchor(reference date.Date) date.Date {
	anchor := reference
	for i := range l.transactions {
		if d := l.transactions[i].Scheduled; d.Before(anchor) {
			anchor = d
		}
	}
	return l.budgetPeriod.Anchor(anchor)
}

// --- accounts ---

// AddAccount registers a new account. Accounts without a currency inherit
// the ledger currency.
func (l *Ledger) AddAccount(a Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a.Name == "" {
		return Validationf("account name is required")
	}
	if _, ok := l.account(a.ID); ok {
		return Validationf("account %s already exists", a.ID)
	}
	for i := range l.accounts {
		if l.accounts[i].Name == a.Name {
			return Validationf("account name %q already in use", a.Name)
		}
	}
	if a.Currency == "" {
		a.Currency = l.currency
	}
	l.accounts = append(l.accounts, a)
	l.touch()
	return nil
}

// UpdateAccount replaces an existing account definition.
func (l *Ledger) UpdateAccount(a Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a.Name == "" {
		return Validationf("account name is required")
	}
	for i := range l.accounts {
		if l.accounts[i].ID == a.ID {
			if a.Currency == "" {
				a.Currency = l.currency
			}
			a.extra = l.accounts[i].extra
			l.accounts[i] = a
			l.touch()
			return nil
		}
	}
	return Validationf("account %s not found", a.ID)
}

// RemoveAccount deletes an account. It fails when any transaction still
// references the account.
func (l *Ledger) RemoveAccount(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.account(id); !ok {
		return Validationf("account %s not found", id)
	}
	for i := range l.transactions {
		if l.transactions[i].From == id || l.transactions[i].To == id {
			return StateConflictf("account %s is referenced by transaction %s", id, l.transactions[i].ID)
		}
	}
	l.accounts = slices.DeleteFunc(l.accounts, func(a Account) bool { return a.ID == id })
	l.touch()
	return nil
}

// Account returns the account with the given id.
func (l *Ledger) Account(id uuid.UUID) (Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.account(id)
}

func (l *Ledger) account(id uuid.UUID) (Account, bool) {
	for i := range l.accounts {
		if l.accounts[i].ID == id {
			return l.accounts[i], true
		}
	}
	return Account{}, false
}

// AccountByName looks an account up by its exact name.
func (l *Ledger) AccountByName(name string) (Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.accounts {
		if l.accounts[i].Name == name {
			return l.accounts[i], true
		}
	}
	return Account{}, false
}

// Accounts iterates over all accounts, in insertion order.
func (l *Ledger) Accounts() iter.Seq[Account] {
	l.mu.Lock()
	accounts := slices.Clone(l.accounts)
	l.mu.Unlock()
	return slices.Values(accounts)
}

// --- categories ---

// AddCategory registers a new category. A parent reference must point at
// an existing top-level category: the hierarchy is one level deep.
func (l *Ledger) AddCategory(c Category) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c.Name == "" {
		return Validationf("category name is required")
	}
	if _, ok := l.category(c.ID); ok {
		return Validationf("category %s already exists", c.ID)
	}
	if err := l.checkParent(&c); err != nil {
		return err
	}
	l.categories = append(l.categories, c)
	l.touch()
	return nil
}

// UpdateCategory replaces an existing category definition.
func (l *Ledger) UpdateCategory(c Category) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c.Name == "" {
		return Validationf("category name is required")
	}
	if err := l.checkParent(&c); err != nil {
		return err
	}
	for i := range l.categories {
		if l.categories[i].ID == c.ID {
			c.extra = l.categories[i].extra
			l.categories[i] = c
			l.touch()
			return nil
		}
	}
	return Validationf("category %s not found", c.ID)
}

// checkParent enforces the one-level category hierarchy: a parent must
// exist, be top-level, and a category with children cannot itself become a
// child. That rules out grandchildren and cycles alike.
func (l *Ledger) checkParent(c *Category) error {
	if c.ParentID == nil {
		return nil
	}
	if *c.ParentID == c.ID {
		return Validationf("category %s cannot be its own parent", c.ID)
	}
	parent, ok := l.category(*c.ParentID)
	if !ok {
		return Validationf("parent category %s not found", *c.ParentID)
	}
	if parent.ParentID != nil {
		return Validationf("category %s is a subcategory and cannot have children", parent.ID)
	}
	for i := range l.categories {
		if p := l.categories[i].ParentID; p != nil && *p == c.ID {
			return Validationf("category %s has children and cannot become a subcategory", c.ID)
		}
	}
	return nil
}

// RemoveCategory deletes a category. It fails when the category still has
// children or transactions attached.
func (l *Ledger) RemoveCategory(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.category(id); !ok {
		return Validationf("category %s not found", id)
	}
	for i := range l.categories {
		if p := l.categories[i].ParentID; p != nil && *p == id {
			return StateConflictf("category %s has child category %s", id, l.categories[i].ID)
		}
	}
	for i := range l.transactions {
		if c := l.transactions[i].CategoryID; c != nil && *c == id {
			return StateConflictf("category %s is referenced by transaction %s", id, l.transactions[i].ID)
		}
	}
	l.categories = slices.DeleteFunc(l.categories, func(c Category) bool { return c.ID == id })
	l.touch()
	return nil
}

// Category returns the category with the given id.
func (l *Ledger) Category(id uuid.UUID) (Category, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.category(id)
}

func (l *Ledger) category(id uuid.UUID) (Category, bool) {
	for i := range l.categories {
		if l.categories[i].ID == id {
			return l.categories[i], true
		}
	}
	return Category{}, false
}

// CategoryByName returns the first category with the given name.
func (l *Ledger) CategoryByName(name string) (Category, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.categories {
		if l.categories[i].Name == name {
			return l.categories[i], true
		}
	}
	return Category{}, false
}

// Categories iterates over all categories, in insertion order.
func (l *Ledger) Categories() iter.Seq[Category] {
	l.mu.Lock()
	categories := slices.Clone(l.categories)
	l.mu.Unlock()
	return slices.Values(categories)
}

// --- transactions ---

// checkRefs verifies that every reference carried by tx resolves.
func (l *Ledger) checkRefs(tx *Transaction) error {
	if _, ok := l.account(tx.From); !ok {
		return Validationf("source account %s not found", tx.From)
	}
	if _, ok := l.account(tx.To); !ok {
		return Validationf("destination account %s not found", tx.To)
	}
	if tx.CategoryID != nil {
		if _, ok := l.category(*tx.CategoryID); !ok {
			return Validationf("category %s not found", *tx.CategoryID)
		}
	}
	return nil
}

// AddTransaction validates and appends a transaction. Nothing is mutated
// when validation fails.
func (l *Ledger) AddTransaction(tx Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := l.checkRefs(&tx); err != nil {
		return err
	}
	if _, ok := l.transaction(tx.ID); ok {
		return Validationf("transaction %s already exists", tx.ID)
	}
	l.transactions = append(l.transactions, tx.Clone())
	l.refreshRecurrenceMetadata()
	l.touch()
	return nil
}

// UpdateTransaction replaces an existing transaction.
func (l *Ledger) UpdateTransaction(tx Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := l.checkRefs(&tx); err != nil {
		return err
	}
	for i := range l.transactions {
		if l.transactions[i].ID == tx.ID {
			tx.extra = l.transactions[i].extra
			l.transactions[i] = tx.Clone()
			l.refreshRecurrenceMetadata()
			l.touch()
			return nil
		}
	}
	return Validationf("transaction %s not found", tx.ID)
}

// RemoveTransaction deletes a transaction by id.
func (l *Ledger) RemoveTransaction(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.transaction(id); !ok {
		return Validationf("transaction %s not found", id)
	}
	l.transactions = slices.DeleteFunc(l.transactions, func(t Transaction) bool { return t.ID == id })
	l.refreshRecurrenceMetadata()
	l.touch()
	return nil
}

// CompleteTransaction records the actual execution of a transaction and
// refreshes the recurrence metadata of its series, if any.
func (l *Ledger) CompleteTransaction(id uuid.UUID, on date.Date, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	tx, ok := l.transaction(id)
	if !ok {
		return Validationf("transaction %s not found", id)
	}
	if err := tx.MarkCompleted(on, amount); err != nil {
		return err
	}
	l.refreshRecurrenceMetadata()
	l.touch()
	return nil
}

// Transaction returns the transaction with the given id.
func (l *Ledger) Transaction(id uuid.UUID) (Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tx, ok := l.transaction(id); ok {
		return tx.Clone(), true
	}
	return Transaction{}, false
}

func (l *Ledger) transaction(id uuid.UUID) (*Transaction, bool) {
	for i := range l.transactions {
		if l.transactions[i].ID == id {
			return &l.transactions[i], true
		}
	}
	return nil, false
}

// Transactions iterates over transactions matching every filter, in
// scheduled-date order.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	l.mu.Lock()
	txs := make([]Transaction, 0, len(l.transactions))
	for i := range l.transactions {
		txs = append(txs, l.transactions[i].Clone())
	}
	l.mu.Unlock()
	slices.SortStableFunc(txs, func(a, b Transaction) int {
		return a.Scheduled.Sub(b.Scheduled)
	})
	return func(yield func(int, Transaction) bool) {
		for i, tx := range txs {
			keep := true
			for _, f := range filters {
				if !f(tx) {
					keep = false
					break
				}
			}
			if keep && !yield(i, tx) {
				return
			}
		}
	}
}

// BySeries filters transactions belonging to a recurrence series.
func BySeries(series uuid.UUID) func(Transaction) bool {
	return func(t Transaction) bool {
		s, ok := t.Series()
		return ok && s == series
	}
}

// ByStatus filters transactions with the given lifecycle status.
func ByStatus(status TransactionStatus) func(Transaction) bool {
	return func(t Transaction) bool { return t.Status == status }
}

// ScheduledIn filters transactions scheduled inside the window.
func ScheduledIn(w date.Window) func(Transaction) bool {
	return func(t Transaction) bool { return w.Contains(t.Scheduled) }
}

// --- recurrence ---

// MaterializeDue creates concrete transactions for every recurrence
// occurrence due on or before asOf that does not exist yet. It returns the
// created transactions; calling it again for the same date creates
// nothing.
func (l *Ledger) MaterializeDue(asOf date.Date) ([]Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	created := materializeDue(l.transactions, asOf)
	if len(created) == 0 {
		return nil, nil
	}
	l.transactions = append(l.transactions, created...)
	l.refreshRecurrenceMetadata()
	l.touch()
	out := make([]Transaction, len(created))
	for i := range created {
		out[i] = created[i].Clone()
	}
	return out, nil
}

// RefreshRecurrenceMetadata recomputes all derived recurrence state from
// the authoritative rules and transactions. It is idempotent.
func (l *Ledger) RefreshRecurrenceMetadata() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshRecurrenceMetadata()
}

func (l *Ledger) refreshRecurrenceMetadata() {
	applySeriesMetadata(l.transactions, rebuildSeriesMetadata(l.transactions))
}

// PauseSeries suspends materialization for a recurrence series.
func (l *Ledger) PauseSeries(series uuid.UUID) error {
	return l.setSeriesStatus(series, RecurrencePaused)
}

// ResumeSeries reactivates a paused recurrence series.
func (l *Ledger) ResumeSeries(series uuid.UUID) error {
	return l.setSeriesStatus(series, RecurrenceActive)
}

func (l *Ledger) setSeriesStatus(series uuid.UUID, status RecurrenceStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.transactions {
		r := l.transactions[i].Recurrence
		if r == nil {
			continue
		}
		if s, _ := l.transactions[i].Series(); s == series {
			r.Status = status
			l.refreshRecurrenceMetadata()
			l.touch()
			return nil
		}
	}
	return Validationf("recurrence series %s not found", series)
}

// RecurrenceSnapshots summarizes every recurrence series against the
// reference date.
func (l *Ledger) RecurrenceSnapshots(reference date.Date) []RecurrenceSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return snapshotSeries(l.transactions, reference, l.budgetWindow(reference))
}

// --- consistency ---

// Warnings reports dangling references: transactions pointing at missing
// accounts or categories, and orphaned series members. Warnings never
// block loading; mutating APIs reject them upfront.
func (l *Ledger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	templates := make(map[uuid.UUID]bool)
	for i := range l.transactions {
		if l.transactions[i].Recurrence != nil {
			s, _ := l.transactions[i].Series()
			templates[s] = true
		}
	}
	for i := range l.transactions {
		tx := &l.transactions[i]
		if _, ok := l.account(tx.From); !ok {
			out = append(out, fmt.Sprintf("transaction %s: source account %s not found", tx.ID, tx.From))
		}
		if _, ok := l.account(tx.To); !ok {
			out = append(out, fmt.Sprintf("transaction %s: destination account %s not found", tx.ID, tx.To))
		}
		if tx.CategoryID != nil {
			if _, ok := l.category(*tx.CategoryID); !ok {
				out = append(out, fmt.Sprintf("transaction %s: category %s not found", tx.ID, *tx.CategoryID))
			}
		}
		if tx.Recurrence == nil && tx.SeriesID != nil && !templates[*tx.SeriesID] {
			out = append(out, fmt.Sprintf("transaction %s: recurrence series %s has no definition", tx.ID, *tx.SeriesID))
		}
	}
	for i := range l.categories {
		if p := l.categories[i].ParentID; p != nil {
			if _, ok := l.category(*p); !ok {
				out = append(out, fmt.Sprintf("category %s: parent %s not found", l.categories[i].ID, *p))
			}
		}
	}
	return out
}

// Snapshot returns a deep copy of the ledger. Reports work on snapshots so
// they never observe concurrent mutation.
func (l *Ledger) Snapshot() *Ledger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *Ledger) snapshot() *Ledger {
	s := &Ledger{
		name:         l.name,
		currency:     l.currency,
		budgetPeriod: l.budgetPeriod,
		createdAt:    l.createdAt,
		updatedAt:    l.updatedAt,
		notes:        slices.Clone(l.notes),
		extra:        l.extra.clone(),
	}
	s.accounts = make([]Account, len(l.accounts))
	for i := range l.accounts {
		s.accounts[i] = l.accounts[i]
		s.accounts[i].extra = l.accounts[i].extra.clone()
	}
	s.categories = make([]Category, len(l.categories))
	for i := range l.categories {
		s.categories[i] = l.categories[i]
		s.categories[i].extra = l.categories[i].extra.clone()
		if p := l.categories[i].ParentID; p != nil {
			v := *p
			s.categories[i].ParentID = &v
		}
	}
	s.transactions = make([]Transaction, len(l.transactions))
	for i := range l.transactions {
		s.transactions[i] = l.transactions[i].Clone()
	}
	s.simulations = make([]Simulation, len(l.simulations))
	for i := range l.simulations {
		s.simulations[i] = l.simulations[i].Clone()
	}
	return s
}

// flowSign classifies a transaction's effect on the household: +1 inflow,
// -1 outflow, 0 internal transfer. Only the asset-account boundary counts.
func (l *Ledger) flowSign(tx *Transaction) int {
	from, _ := l.account(tx.From)
	to, _ := l.account(tx.To)
	fromAsset := from.Kind == Asset
	toAsset := to.Kind == Asset
	switch {
	case toAsset && !fromAsset:
		return +1
	case fromAsset && !toAsset:
		return -1
	default:
		return 0
	}
}
