package renderer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/brunoclpinto/BUFY"
	"github.com/brunoclpinto/BUFY/date"
)

func testLedger(t *testing.T) (*bufy.Ledger, bufy.Account, bufy.Account, bufy.Category) {
	t.Helper()
	l, err := bufy.NewLedger("household", "EUR", date.Monthly())
	if err != nil {
		t.Fatal(err)
	}

	checking, err := bufy.NewAccount("Checking", bufy.Asset)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.AddAccount(checking); err != nil {
		t.Fatal(err)
	}
	landlord, err := bufy.NewAccount("Landlord", bufy.Bucket)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.AddAccount(landlord); err != nil {
		t.Fatal(err)
	}
	rent, err := bufy.NewCategory("Rent", bufy.Expense)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.AddCategory(rent); err != nil {
		t.Fatal(err)
	}
	return l, checking, landlord, rent
}

func TestSummaryMarkdown(t *testing.T) {
	// Arrange
	l, checking, landlord, rent := testLedger(t)
	tx, err := bufy.NewTransaction(checking.ID, landlord.ID, date.New(2025, 6, 1), decimal.NewFromInt(800))
	if err != nil {
		t.Fatal(err)
	}
	tx = tx.WithCategory(rent.ID)
	if err := l.AddTransaction(tx); err != nil {
		t.Fatal(err)
	}
	w := date.Window{Start: date.New(2025, 6, 1), End: date.New(2025, 7, 1)}

	// Act
	out := SummaryMarkdown(l.Summarize(w))

	// Assert
	for _, want := range []string{"# Summary", "## Categories", "Rent", "## Accounts", "Checking"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary markdown missing %q:\n%s", want, out)
		}
	}
}

func TestForecastMarkdown(t *testing.T) {
	// Arrange
	l, checking, landlord, rent := testLedger(t)
	tx, err := bufy.NewTransaction(checking.ID, landlord.ID, date.New(2025, 6, 1), decimal.NewFromInt(800))
	if err != nil {
		t.Fatal(err)
	}
	tx = tx.WithCategory(rent.ID)
	if err := l.AddTransaction(tx); err != nil {
		t.Fatal(err)
	}
	w := date.Window{Start: date.New(2025, 6, 1), End: date.New(2025, 7, 1)}

	// Act
	out := ForecastMarkdown(l.Forecast(w, date.New(2025, 6, 15)))

	// Assert
	for _, want := range []string{"# Forecast", "## Schedule", "2025-06-01", "out"} {
		if !strings.Contains(out, want) {
			t.Errorf("forecast markdown missing %q:\n%s", want, out)
		}
	}
}

func TestTransactionsMarkdown_ResolvesNames(t *testing.T) {
	// Arrange
	l, checking, landlord, rent := testLedger(t)
	tx, err := bufy.NewTransaction(checking.ID, landlord.ID, date.New(2025, 6, 1), decimal.NewFromInt(800))
	if err != nil {
		t.Fatal(err)
	}
	tx = tx.WithCategory(rent.ID).WithNotes("june rent")
	if err := l.AddTransaction(tx); err != nil {
		t.Fatal(err)
	}
	var txs []bufy.Transaction
	for _, got := range l.Transactions() {
		txs = append(txs, got)
	}

	// Act
	out := TransactionsMarkdown(l, "Transactions", txs)

	// Assert
	for _, want := range []string{"Checking", "Landlord", "Rent", "june rent"} {
		if !strings.Contains(out, want) {
			t.Errorf("transaction markdown missing %q:\n%s", want, out)
		}
	}
}
