package bufy

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/brunoclpinto/BUFY/date"
)

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// newTestLedger builds an empty household ledger in EUR with a monthly
// budget period.
func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := NewLedger("household", "EUR", date.Monthly())
	if err != nil {
		t.Fatalf("NewLedger() error = %v", err)
	}
	return l
}

func addAccount(t *testing.T, l *Ledger, name string, kind AccountKind) Account {
	t.Helper()
	a, err := NewAccount(name, kind)
	if err != nil {
		t.Fatalf("NewAccount(%q) error = %v", name, err)
	}
	if err := l.AddAccount(a); err != nil {
		t.Fatalf("AddAccount(%q) error = %v", name, err)
	}
	a, _ = l.Account(a.ID)
	return a
}

func addCategory(t *testing.T, l *Ledger, name string, kind CategoryKind) Category {
	t.Helper()
	c, err := NewCategory(name, kind)
	if err != nil {
		t.Fatalf("NewCategory(%q) error = %v", name, err)
	}
	if err := l.AddCategory(c); err != nil {
		t.Fatalf("AddCategory(%q) error = %v", name, err)
	}
	return c
}

func addTx(t *testing.T, l *Ledger, from, to Account, day string, amount float64) Transaction {
	t.Helper()
	tx, err := NewTransaction(from.ID, to.ID, date.MustParse(day), dec(amount))
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	if err := l.AddTransaction(tx); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	return tx
}

// addRecurringTx adds a monthly recurring template starting at day.
func addRecurringTx(t *testing.T, l *Ledger, from, to Account, day string, amount float64) Transaction {
	t.Helper()
	tx, err := NewTransaction(from.ID, to.ID, date.MustParse(day), dec(amount))
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	r, err := NewRecurrence(date.MustParse(day), date.Monthly(), FixedSchedule)
	if err != nil {
		t.Fatalf("NewRecurrence() error = %v", err)
	}
	if err := tx.SetRecurrence(r); err != nil {
		t.Fatalf("SetRecurrence() error = %v", err)
	}
	if err := l.AddTransaction(tx); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	return tx
}

func window(t *testing.T, start, end string) date.Window {
	t.Helper()
	w, err := date.NewWindow(date.MustParse(start), date.MustParse(end))
	if err != nil {
		t.Fatalf("NewWindow() error = %v", err)
	}
	return w
}
