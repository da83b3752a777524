package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brunoclpinto/BUFY"
	"github.com/brunoclpinto/BUFY/renderer"
)

type addTxCmd struct {
	ledgerName string
	from       string
	to         string
	category   string
	date       string
	amount     string
	currency   string
	notes      string
}

func (*addTxCmd) Name() string     { return "add" }
func (*addTxCmd) Synopsis() string { return "schedule a transaction between two accounts" }
func (*addTxCmd) Usage() string {
	return `bufy add -from <account> -to <account> -amount <n> [-d <date>] [-category <name>] [-notes <text>]

  Schedules a transaction. The amount is the budgeted amount; use
  'bufy complete' once the money actually moved.

Usage Examples:
$ bufy add -from Checking -to Landlord -amount 800 -d 2025-06-01 -category Rent
$ bufy add -from Employer -to Checking -amount 2000 -category Salary
`
}

func (c *addTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
	f.StringVar(&c.from, "from", "", "Source account name.")
	f.StringVar(&c.to, "to", "", "Destination account name.")
	f.StringVar(&c.category, "category", "", "Category name.")
	f.StringVar(&c.date, "d", "", "Scheduled date (defaults to today).")
	f.StringVar(&c.amount, "amount", "", "Budgeted amount.")
	f.StringVar(&c.currency, "currency", "", "Currency override for this transaction.")
	f.StringVar(&c.notes, "notes", "", "Free-form notes.")
}

func (c *addTxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" || c.amount == "" {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}

	on, err := parseDate(c.date)
	if err != nil {
		return fail(err)
	}
	budgeted, err := decimal.NewFromString(c.amount)
	if err != nil {
		return fail(fmt.Errorf("invalid amount %q: %w", c.amount, err))
	}

	s, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	from, ok := l.AccountByName(c.from)
	if !ok {
		return fail(fmt.Errorf("account %q not found", c.from))
	}
	to, ok := l.AccountByName(c.to)
	if !ok {
		return fail(fmt.Errorf("account %q not found", c.to))
	}

	tx, err := bufy.NewTransaction(from.ID, to.ID, on, budgeted)
	if err != nil {
		return fail(err)
	}
	if c.category != "" {
		cat, ok := l.CategoryByName(c.category)
		if !ok {
			return fail(fmt.Errorf("category %q not found", c.category))
		}
		tx = tx.WithCategory(cat.ID)
	}
	tx.Currency = c.currency
	tx.Notes = c.notes

	if err := l.AddTransaction(tx); err != nil {
		return fail(err)
	}
	if err := s.Save(l); err != nil {
		return fail(err)
	}

	fmt.Printf("Scheduled %s from %q to %q on %s (%s)\n", c.amount, from.Name, to.Name, on, tx.ID)
	return subcommands.ExitSuccess
}

type txCmd struct {
	ledgerName string
	from       string
	to         string
	status     string
	series     string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions in the ledger" }
func (*txCmd) Usage() string {
	return `bufy tx [-from <date>] [-to <date>] [-status <status>] [-series <id>]

  Lists transactions ordered by scheduled date, with options for
  filtering by window, status or recurrence series.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
	f.StringVar(&c.from, "from", "", "Start of the window (defaults to the current budget period).")
	f.StringVar(&c.to, "to", "", "End of the window, exclusive.")
	f.StringVar(&c.status, "status", "", "Only transactions in this status (scheduled, pending, completed).")
	f.StringVar(&c.series, "series", "", "Only transactions of this recurrence series (uuid).")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}

	var filters []func(bufy.Transaction) bool
	if c.from != "" || c.to != "" {
		w, err := reportWindow(l, c.from, c.to, 0)
		if err != nil {
			return fail(err)
		}
		filters = append(filters, bufy.ScheduledIn(w))
	}
	if c.status != "" {
		status, err := bufy.ParseTransactionStatus(c.status)
		if err != nil {
			return fail(err)
		}
		filters = append(filters, bufy.ByStatus(status))
	}
	if c.series != "" {
		series, err := uuid.Parse(c.series)
		if err != nil {
			return fail(fmt.Errorf("invalid series id %q: %w", c.series, err))
		}
		filters = append(filters, bufy.BySeries(series))
	}

	var txs []bufy.Transaction
	for _, tx := range l.Transactions(filters...) {
		txs = append(txs, tx)
	}
	printMarkdown(renderer.TransactionsMarkdown(l, fmt.Sprintf("Transactions of %q", l.Name()), txs))
	return subcommands.ExitSuccess
}

type completeCmd struct {
	ledgerName string
	date       string
	amount     string
}

func (*completeCmd) Name() string     { return "complete" }
func (*completeCmd) Synopsis() string { return "record that a scheduled transaction happened" }
func (*completeCmd) Usage() string {
	return `bufy complete [-d <date>] [-amount <n>] <transaction-id>

  Marks a transaction completed, recording the actual date and amount.
  Both default to the scheduled values. For a recurring series this also
  advances the next due date.

Usage Examples:
$ bufy complete 7f3c21aa-...
$ bufy complete -d 2025-06-03 -amount 812.50 7f3c21aa-...
`
}

func (c *completeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
	f.StringVar(&c.date, "d", "", "Actual date (defaults to today).")
	f.StringVar(&c.amount, "amount", "", "Actual amount (defaults to the budgeted amount).")
}

func (c *completeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}
	id, err := uuid.Parse(f.Arg(0))
	if err != nil {
		return fail(fmt.Errorf("invalid transaction id %q: %w", f.Arg(0), err))
	}
	on, err := parseDate(c.date)
	if err != nil {
		return fail(err)
	}

	s, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}

	amount := decimal.Zero
	if c.amount != "" {
		amount, err = decimal.NewFromString(c.amount)
		if err != nil {
			return fail(fmt.Errorf("invalid amount %q: %w", c.amount, err))
		}
	} else if tx, ok := l.Transaction(id); ok {
		amount = tx.Budgeted
	}

	if err := l.CompleteTransaction(id, on, amount); err != nil {
		return fail(err)
	}
	if err := s.Save(l); err != nil {
		return fail(err)
	}

	fmt.Printf("Completed transaction %s on %s\n", id, on)
	return subcommands.ExitSuccess
}
