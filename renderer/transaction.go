package renderer

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	md "github.com/nao1215/markdown"

	"github.com/brunoclpinto/BUFY"
)

// TransactionsMarkdown renders a transaction listing against the ledger
// that owns the referenced accounts and categories.
func TransactionsMarkdown(l *bufy.Ledger, title string, txs []bufy.Transaction) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(title)
	doc.PlainText(count(len(txs), "transaction"))

	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			tx.ID.String()[:8],
			tx.Scheduled.String(),
			accountName(l, tx.From),
			accountName(l, tx.To),
			categoryName(l, tx.CategoryID),
			txAmount(l, tx),
			txStatus(tx),
			tx.Notes,
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Id", "Scheduled", "From", "To", "Category", "Amount", "Status", "Notes"},
		Rows:   rows,
	})

	return doc.String()
}

// AccountsMarkdown renders the ledger's account register.
func AccountsMarkdown(l *bufy.Ledger) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Accounts of %q", l.Name()))
	var rows [][]string
	for a := range l.Accounts() {
		rows = append(rows, []string{
			a.ID.String()[:8],
			a.Name,
			a.Kind.String(),
			a.Currency,
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Id", "Name", "Kind", "Currency"},
		Rows:   rows,
	})

	return doc.String()
}

// CategoriesMarkdown renders the ledger's category tree as a flat table.
func CategoriesMarkdown(l *bufy.Ledger) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Categories of %q", l.Name()))
	var rows [][]string
	for c := range l.Categories() {
		rows = append(rows, []string{
			c.ID.String()[:8],
			c.Name,
			c.Kind.String(),
			categoryName(l, c.ParentID),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Id", "Name", "Kind", "Parent"},
		Rows:   rows,
	})

	return doc.String()
}

// SimulationsMarkdown renders the simulation register.
func SimulationsMarkdown(sims []bufy.Simulation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Simulations")
	rows := make([][]string, 0, len(sims))
	for _, s := range sims {
		rows = append(rows, []string{
			s.ID.String()[:8],
			s.Name,
			s.Status.String(),
			count(len(s.Changes), "change"),
			s.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Id", "Name", "Status", "Changes", "Updated"},
		Rows:   rows,
	})

	return doc.String()
}

func accountName(l *bufy.Ledger, id uuid.UUID) string {
	if a, ok := l.Account(id); ok {
		return a.Name
	}
	return id.String()[:8]
}

func categoryName(l *bufy.Ledger, id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	if c, ok := l.Category(*id); ok {
		return c.Name
	}
	return id.String()[:8]
}

func txAmount(l *bufy.Ledger, tx bufy.Transaction) string {
	cur := tx.Currency
	if cur == "" {
		cur = l.Currency()
	}
	if tx.ActualAmount != nil {
		return amount(bufy.M(*tx.ActualAmount, cur))
	}
	return amount(bufy.M(tx.Budgeted, cur))
}

func txStatus(tx bufy.Transaction) string {
	s := tx.Status.String()
	if tx.Recurrence != nil {
		return s + " (recurring)"
	}
	if tx.SeriesID != nil {
		return s + " (series)"
	}
	return s
}
