package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/brunoclpinto/BUFY"
	"github.com/brunoclpinto/BUFY/date"
)

type initCmd struct {
	currency string
	period   string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a new ledger" }
func (*initCmd) Usage() string {
	return `bufy init [-currency <code>] [-period <interval>] <name>

  Creates a new ledger file in the store and makes it the current one.

Usage Examples:
$ bufy init household
$ bufy init -currency USD -period "2 weeks" paychecks
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "EUR", "Accounting currency of the ledger (ISO 4217 code).")
	f.StringVar(&c.period, "period", "monthly", "Budget period interval (daily, weekly, monthly, yearly, \"2 weeks\", ...).")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}
	name := strings.TrimSpace(f.Arg(0))

	period, err := date.ParseInterval(c.period)
	if err != nil {
		return fail(err)
	}
	l, err := bufy.NewLedger(name, c.currency, period)
	if err != nil {
		return fail(err)
	}

	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	if err := s.Save(l); err != nil {
		return fail(err)
	}

	fmt.Printf("Created ledger %q (%s, %s budget period) in %s\n",
		l.Name(), l.Currency(), l.BudgetPeriod(), s.Home())
	return subcommands.ExitSuccess
}

type listCmd struct{}

func (*listCmd) Name() string             { return "ledgers" }
func (*listCmd) Synopsis() string         { return "list the ledgers in the store" }
func (*listCmd) Usage() string            { return "bufy ledgers\n\n  Lists every ledger file in the store.\n" }
func (*listCmd) SetFlags(f *flag.FlagSet) {}

func (c *listCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	names, err := s.List()
	if err != nil {
		return fail(err)
	}
	last, _ := s.LastLedger()
	for _, name := range names {
		marker := " "
		if name == last {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
	if len(names) == 0 {
		fmt.Println("No ledgers yet. Create one with: bufy init <name>")
	}
	return subcommands.ExitSuccess
}
