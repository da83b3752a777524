package cmd

import (
	"context"
	"flag"
	"fmt"
	"slices"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brunoclpinto/BUFY"
	"github.com/brunoclpinto/BUFY/date"
	"github.com/brunoclpinto/BUFY/renderer"
)

type simNewCmd struct {
	ledgerName string
	notes      string
}

func (*simNewCmd) Name() string     { return "sim-new" }
func (*simNewCmd) Synopsis() string { return "create a draft simulation" }
func (*simNewCmd) Usage() string {
	return `bufy sim-new [-notes <text>] <name>

  Creates a draft simulation, an overlay of what-if changes that never
  touches the real transactions until it is applied.

Usage Examples:
$ bufy sim-new "new car"
$ bufy sim-new -notes "switch to the cheaper plan in Q3" "new isp"
`
}

func (c *simNewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
	f.StringVar(&c.notes, "notes", "", "Free-form notes.")
}

func (c *simNewCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}

	s, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	sim, err := l.CreateSimulation(f.Arg(0), c.notes)
	if err != nil {
		return fail(err)
	}
	if err := s.Save(l); err != nil {
		return fail(err)
	}

	fmt.Printf("Created simulation %q (%s)\n", sim.Name, sim.ID)
	return subcommands.ExitSuccess
}

type simChangeCmd struct {
	ledgerName string
	sim        string
	kind       string
	target     string
	from       string
	to         string
	category   string
	date       string
	amount     string
	notes      string
}

func (*simChangeCmd) Name() string     { return "sim-change" }
func (*simChangeCmd) Synopsis() string { return "add a what-if change to a draft simulation" }
func (*simChangeCmd) Usage() string {
	return `bufy sim-change -sim <name> -kind add|modify|exclude [flags]

  Adds one change to a draft simulation.

  add      schedules a hypothetical transaction: -from, -to, -amount,
           and optionally -d, -category, -notes.
  modify   patches an existing transaction: -target plus any of -from,
           -to, -category, -d, -amount, -notes.
  exclude  removes an existing transaction from the overlay: -target.

Usage Examples:
$ bufy sim-change -sim "new car" -kind add -from Checking -to Dealer -amount 350 -d 2025-07-01
$ bufy sim-change -sim "new car" -kind modify -target 7f3c21aa-... -amount 900
$ bufy sim-change -sim "new car" -kind exclude -target 7f3c21aa-...
`
}

func (c *simChangeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
	f.StringVar(&c.sim, "sim", "", "Name of the draft simulation.")
	f.StringVar(&c.kind, "kind", "", "Change kind (add, modify, exclude).")
	f.StringVar(&c.target, "target", "", "Transaction id the change applies to (modify, exclude).")
	f.StringVar(&c.from, "from", "", "Source account name.")
	f.StringVar(&c.to, "to", "", "Destination account name.")
	f.StringVar(&c.category, "category", "", "Category name.")
	f.StringVar(&c.date, "d", "", "Scheduled date.")
	f.StringVar(&c.amount, "amount", "", "Budgeted amount.")
	f.StringVar(&c.notes, "notes", "", "Free-form notes.")
}

func (c *simChangeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.sim == "" || c.kind == "" {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}
	kind, err := bufy.ParseChangeKind(c.kind)
	if err != nil {
		return fail(err)
	}

	s, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	sim, ok := l.SimulationByName(c.sim)
	if !ok {
		return fail(fmt.Errorf("simulation %q not found", c.sim))
	}

	change := bufy.SimulationChange{Kind: kind}
	switch kind {
	case bufy.ChangeAdd:
		tx, status := c.buildAdd(l)
		if status != subcommands.ExitSuccess {
			return status
		}
		change.Transaction = tx
	case bufy.ChangeModify:
		target, patch, status := c.buildPatch(l)
		if status != subcommands.ExitSuccess {
			return status
		}
		change.Target = target
		change.Patch = patch
	case bufy.ChangeExclude:
		target, status := c.parseTarget()
		if status != subcommands.ExitSuccess {
			return status
		}
		change.Target = target
	}

	if err := l.AddSimulationChange(sim.ID, change); err != nil {
		return fail(err)
	}
	if err := s.Save(l); err != nil {
		return fail(err)
	}

	fmt.Printf("Added %s change to simulation %q\n", kind, sim.Name)
	return subcommands.ExitSuccess
}

func (c *simChangeCmd) parseTarget() (*uuid.UUID, subcommands.ExitStatus) {
	if c.target == "" {
		fmt.Println("missing -target")
		return nil, subcommands.ExitUsageError
	}
	id, err := uuid.Parse(c.target)
	if err != nil {
		return nil, fail(fmt.Errorf("invalid target id %q: %w", c.target, err))
	}
	return &id, subcommands.ExitSuccess
}

func (c *simChangeCmd) buildAdd(l *bufy.Ledger) (*bufy.Transaction, subcommands.ExitStatus) {
	if c.from == "" || c.to == "" || c.amount == "" {
		fmt.Println("add changes require -from, -to and -amount")
		return nil, subcommands.ExitUsageError
	}
	from, ok := l.AccountByName(c.from)
	if !ok {
		return nil, fail(fmt.Errorf("account %q not found", c.from))
	}
	to, ok := l.AccountByName(c.to)
	if !ok {
		return nil, fail(fmt.Errorf("account %q not found", c.to))
	}
	on, err := parseDate(c.date)
	if err != nil {
		return nil, fail(err)
	}
	budgeted, err := decimal.NewFromString(c.amount)
	if err != nil {
		return nil, fail(fmt.Errorf("invalid amount %q: %w", c.amount, err))
	}
	tx, err := bufy.NewTransaction(from.ID, to.ID, on, budgeted)
	if err != nil {
		return nil, fail(err)
	}
	if c.category != "" {
		cat, ok := l.CategoryByName(c.category)
		if !ok {
			return nil, fail(fmt.Errorf("category %q not found", c.category))
		}
		tx = tx.WithCategory(cat.ID)
	}
	tx.Notes = c.notes
	return &tx, subcommands.ExitSuccess
}

func (c *simChangeCmd) buildPatch(l *bufy.Ledger) (*uuid.UUID, *bufy.TransactionPatch, subcommands.ExitStatus) {
	target, status := c.parseTarget()
	if status != subcommands.ExitSuccess {
		return nil, nil, status
	}

	var patch bufy.TransactionPatch
	if c.from != "" {
		a, ok := l.AccountByName(c.from)
		if !ok {
			return nil, nil, fail(fmt.Errorf("account %q not found", c.from))
		}
		id := a.ID
		patch.From = &id
	}
	if c.to != "" {
		a, ok := l.AccountByName(c.to)
		if !ok {
			return nil, nil, fail(fmt.Errorf("account %q not found", c.to))
		}
		id := a.ID
		patch.To = &id
	}
	if c.category != "" {
		cat, ok := l.CategoryByName(c.category)
		if !ok {
			return nil, nil, fail(fmt.Errorf("category %q not found", c.category))
		}
		id := cat.ID
		patch.CategoryID = &id
	}
	if c.date != "" {
		on, err := date.Parse(c.date)
		if err != nil {
			return nil, nil, fail(err)
		}
		patch.Scheduled = &on
	}
	if c.amount != "" {
		budgeted, err := decimal.NewFromString(c.amount)
		if err != nil {
			return nil, nil, fail(fmt.Errorf("invalid amount %q: %w", c.amount, err))
		}
		patch.Budgeted = &budgeted
	}
	if c.notes != "" {
		notes := c.notes
		patch.Notes = &notes
	}
	return target, &patch, subcommands.ExitSuccess
}

type simListCmd struct {
	ledgerName string
}

func (*simListCmd) Name() string     { return "sims" }
func (*simListCmd) Synopsis() string { return "list the simulations of the ledger" }
func (*simListCmd) Usage() string {
	return "bufy sims [-l <ledger>]\n\n  Lists every simulation, drafts and terminal ones alike.\n"
}

func (c *simListCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
}

func (c *simListCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.SimulationsMarkdown(slices.Collect(l.Simulations())))
	return subcommands.ExitSuccess
}

type simTxsCmd struct {
	ledgerName string
}

func (*simTxsCmd) Name() string     { return "sim-txs" }
func (*simTxsCmd) Synopsis() string { return "list the transactions a simulation would produce" }
func (*simTxsCmd) Usage() string {
	return `bufy sim-txs <name>

  Lists the real transactions with the simulation's changes layered on
  top: additions appear, exclusions disappear, modifications show their
  patched values. The real transactions are never touched.
`
}

func (c *simTxsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to report on. Defaults to the current ledger.")
}

func (c *simTxsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}

	_, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	sim, ok := l.SimulationByName(f.Arg(0))
	if !ok {
		return fail(fmt.Errorf("simulation %q not found", f.Arg(0)))
	}
	txs, err := l.OverlayTransactions(sim.ID)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.TransactionsMarkdown(l, fmt.Sprintf("Simulation %q", sim.Name), txs))
	return subcommands.ExitSuccess
}

type simImpactCmd struct {
	ledgerName string
	from       string
	to         string
}

func (*simImpactCmd) Name() string     { return "sim-impact" }
func (*simImpactCmd) Synopsis() string { return "compare a period with and without a simulation" }
func (*simImpactCmd) Usage() string {
	return `bufy sim-impact [-from <date>] [-to <date>] <name>

  Summarizes a period twice, with and without the simulation overlay,
  and reports the deltas. Defaults to the current budget period.
`
}

func (c *simImpactCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to report on. Defaults to the current ledger.")
	f.StringVar(&c.from, "from", "", "Start of the period (defaults to the current budget period).")
	f.StringVar(&c.to, "to", "", "End of the period, exclusive.")
}

func (c *simImpactCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}

	_, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	sim, ok := l.SimulationByName(f.Arg(0))
	if !ok {
		return fail(fmt.Errorf("simulation %q not found", f.Arg(0)))
	}
	w, err := reportWindow(l, c.from, c.to, 0)
	if err != nil {
		return fail(err)
	}
	impact, err := l.SimulateWindow(sim.ID, w)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.ImpactMarkdown(impact))
	return subcommands.ExitSuccess
}

type simApplyCmd struct {
	ledgerName string
}

func (*simApplyCmd) Name() string     { return "sim-apply" }
func (*simApplyCmd) Synopsis() string { return "fold a simulation into the real transactions" }
func (*simApplyCmd) Usage() string {
	return `bufy sim-apply <name>

  Applies every change of the simulation to the real transactions. The
  simulation becomes terminal and cannot change afterwards. The ledger
  is backed up first.
`
}

func (c *simApplyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
}

func (c *simApplyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}

	s, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	sim, ok := l.SimulationByName(f.Arg(0))
	if !ok {
		return fail(fmt.Errorf("simulation %q not found", f.Arg(0)))
	}
	if err := l.ApplySimulation(sim.ID); err != nil {
		return fail(err)
	}
	if err := s.SaveWithBackup(l, "pre_apply"); err != nil {
		return fail(err)
	}

	fmt.Printf("Applied simulation %q (%s)\n", sim.Name, count(len(sim.Changes)))
	return subcommands.ExitSuccess
}

type simDiscardCmd struct {
	ledgerName string
}

func (*simDiscardCmd) Name() string     { return "sim-discard" }
func (*simDiscardCmd) Synopsis() string { return "discard a draft simulation" }
func (*simDiscardCmd) Usage() string {
	return `bufy sim-discard <name>

  Marks the simulation discarded. It stays in the ledger for reference
  but can no longer change or be applied.
`
}

func (c *simDiscardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
}

func (c *simDiscardCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}

	s, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	sim, ok := l.SimulationByName(f.Arg(0))
	if !ok {
		return fail(fmt.Errorf("simulation %q not found", f.Arg(0)))
	}
	if err := l.DiscardSimulation(sim.ID); err != nil {
		return fail(err)
	}
	if err := s.Save(l); err != nil {
		return fail(err)
	}

	fmt.Printf("Discarded simulation %q\n", sim.Name)
	return subcommands.ExitSuccess
}

func count(n int) string {
	if n == 1 {
		return "1 change"
	}
	return fmt.Sprintf("%d changes", n)
}
