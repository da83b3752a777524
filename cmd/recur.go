package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/brunoclpinto/BUFY"
	"github.com/brunoclpinto/BUFY/date"
	"github.com/brunoclpinto/BUFY/renderer"
)

type recurCmd struct {
	ledgerName string
	interval   string
	mode       string
	start      string
	count      int
	until      string
	except     string
}

func (*recurCmd) Name() string     { return "recur" }
func (*recurCmd) Synopsis() string { return "make a transaction the template of a recurring series" }
func (*recurCmd) Usage() string {
	return `bufy recur -every <interval> [-mode fixed|after-last] [-count <n> | -until <date>] <transaction-id>

  Attaches a recurrence rule to a transaction. The transaction itself
  becomes the first occurrence of the series; following occurrences are
  created by 'bufy materialize'.

  In fixed mode occurrences follow the planned schedule from the start
  date; in after-last mode each occurrence is counted from the date the
  previous one actually happened.

Usage Examples:
$ bufy recur -every monthly 7f3c21aa-...
$ bufy recur -every "2 weeks" -count 10 7f3c21aa-...
$ bufy recur -every yearly -until 2030-01-01 -mode after-last 7f3c21aa-...
`
}

func (c *recurCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
	f.StringVar(&c.interval, "every", "monthly", "Recurrence interval (daily, weekly, monthly, yearly, \"2 weeks\", ...).")
	f.StringVar(&c.mode, "mode", "fixed", "Scheduling mode (fixed, after-last).")
	f.StringVar(&c.start, "start", "", "Start date of the series (defaults to the transaction's scheduled date).")
	f.IntVar(&c.count, "count", 0, "Stop after this many occurrences (0 means never).")
	f.StringVar(&c.until, "until", "", "Stop after this date.")
	f.StringVar(&c.except, "except", "", "Date the series should skip. Run again to add more.")
}

func (c *recurCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}
	id, err := uuid.Parse(f.Arg(0))
	if err != nil {
		return fail(fmt.Errorf("invalid transaction id %q: %w", f.Arg(0), err))
	}
	interval, err := date.ParseInterval(c.interval)
	if err != nil {
		return fail(err)
	}
	mode, err := bufy.ParseRecurrenceMode(c.mode)
	if err != nil {
		return fail(err)
	}
	if c.count > 0 && c.until != "" {
		return fail(fmt.Errorf("-count and -until cannot be used together"))
	}

	s, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	tx, ok := l.Transaction(id)
	if !ok {
		return fail(fmt.Errorf("transaction %s not found", id))
	}

	start := tx.Scheduled
	if c.start != "" {
		if start, err = date.Parse(c.start); err != nil {
			return fail(err)
		}
	}
	r, err := bufy.NewRecurrence(start, interval, mode)
	if err != nil {
		return fail(err)
	}
	switch {
	case c.count > 0:
		r = r.WithEnd(bufy.After(c.count))
	case c.until != "":
		until, err := date.Parse(c.until)
		if err != nil {
			return fail(err)
		}
		r = r.WithEnd(bufy.On(until))
	}
	if c.except != "" {
		d, err := date.Parse(c.except)
		if err != nil {
			return fail(err)
		}
		r.AddException(d)
	}

	if err := tx.SetRecurrence(r); err != nil {
		return fail(err)
	}
	if err := l.UpdateTransaction(tx); err != nil {
		return fail(err)
	}
	if err := s.Save(l); err != nil {
		return fail(err)
	}

	fmt.Printf("Transaction %s now repeats %s (series %s)\n", id, interval, r.SeriesID)
	return subcommands.ExitSuccess
}

type materializeCmd struct {
	ledgerName string
	date       string
}

func (*materializeCmd) Name() string     { return "materialize" }
func (*materializeCmd) Synopsis() string { return "create the due occurrences of every recurring series" }
func (*materializeCmd) Usage() string {
	return `bufy materialize [-d <date>]

  Creates a concrete scheduled transaction for every recurrence
  occurrence due on or before the given date. Running it twice creates
  nothing new.
`
}

func (c *materializeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
	f.StringVar(&c.date, "d", "", "Materialize occurrences due up to this date (defaults to today).")
}

func (c *materializeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	asOf, err := parseDate(c.date)
	if err != nil {
		return fail(err)
	}

	s, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	created, err := l.MaterializeDue(asOf)
	if err != nil {
		return fail(err)
	}
	if len(created) == 0 {
		fmt.Println("Nothing due.")
		return subcommands.ExitSuccess
	}
	if err := s.Save(l); err != nil {
		return fail(err)
	}

	printMarkdown(renderer.TransactionsMarkdown(l, fmt.Sprintf("Materialized %d occurrences", len(created)), created))
	return subcommands.ExitSuccess
}

type seriesCmd struct {
	ledgerName string
	date       string
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "show the schedule of every recurring series" }
func (*seriesCmd) Usage() string {
	return `bufy series [-d <date>]

  Shows, for every recurring series, its next due date and how many
  occurrences are overdue or fall in the current budget period.
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
	f.StringVar(&c.date, "d", "", "Reference date (defaults to today).")
}

func (c *seriesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDate(c.date)
	if err != nil {
		return fail(err)
	}
	_, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.SnapshotsMarkdown(l.RecurrenceSnapshots(on)))
	return subcommands.ExitSuccess
}

type pauseCmd struct {
	ledgerName string
}

func (*pauseCmd) Name() string     { return "pause" }
func (*pauseCmd) Synopsis() string { return "pause a recurring series" }
func (*pauseCmd) Usage() string {
	return `bufy pause <series-id>

  Pauses a recurring series: no new occurrences are created until the
  series is resumed. Existing transactions are untouched.
`
}

func (c *pauseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
}

func (c *pauseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return setSeries(c.ledgerName, f, "Paused", (*bufy.Ledger).PauseSeries)
}

type resumeCmd struct {
	ledgerName string
}

func (*resumeCmd) Name() string     { return "resume" }
func (*resumeCmd) Synopsis() string { return "resume a paused series" }
func (*resumeCmd) Usage() string {
	return `bufy resume <series-id>

  Resumes a paused series. Occurrences that became due while the series
  was paused are created by the next 'bufy materialize'.
`
}

func (c *resumeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
}

func (c *resumeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return setSeries(c.ledgerName, f, "Resumed", (*bufy.Ledger).ResumeSeries)
}

func setSeries(ledgerName string, f *flag.FlagSet, verb string, op func(*bufy.Ledger, uuid.UUID) error) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println("expected exactly one series id")
		return subcommands.ExitUsageError
	}
	series, err := uuid.Parse(f.Arg(0))
	if err != nil {
		return fail(fmt.Errorf("invalid series id %q: %w", f.Arg(0), err))
	}

	s, l, err := loadLedger(ledgerName)
	if err != nil {
		return fail(err)
	}
	if err := op(l, series); err != nil {
		return fail(err)
	}
	if err := s.Save(l); err != nil {
		return fail(err)
	}

	fmt.Printf("%s series %s\n", verb, series)
	return subcommands.ExitSuccess
}
