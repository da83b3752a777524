package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/brunoclpinto/BUFY"
	"github.com/brunoclpinto/BUFY/renderer"
)

type addAccountCmd struct {
	ledgerName string
	kind       string
	currency   string
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "add an account to the ledger" }
func (*addAccountCmd) Usage() string {
	return `bufy add-account [-kind asset|liability|bucket] [-currency <code>] <name>

  Adds an account. Accounts with no explicit currency use the ledger's
  accounting currency.

Usage Examples:
$ bufy add-account Checking
$ bufy add-account -kind bucket Landlord
$ bufy add-account -kind liability -currency USD "US Credit Card"
`
}

func (c *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
	f.StringVar(&c.kind, "kind", "asset", "Account kind (asset, liability, bucket).")
	f.StringVar(&c.currency, "currency", "", "Currency override for this account.")
}

func (c *addAccountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}

	kind, err := bufy.ParseAccountKind(c.kind)
	if err != nil {
		return fail(err)
	}
	a, err := bufy.NewAccount(f.Arg(0), kind)
	if err != nil {
		return fail(err)
	}
	a.Currency = c.currency

	s, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	if err := l.AddAccount(a); err != nil {
		return fail(err)
	}
	if err := s.Save(l); err != nil {
		return fail(err)
	}

	fmt.Printf("Added %s account %q (%s)\n", kind, a.Name, a.ID)
	return subcommands.ExitSuccess
}

type accountsCmd struct {
	ledgerName string
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list the accounts of the ledger" }
func (*accountsCmd) Usage() string {
	return "bufy accounts [-l <ledger>]\n\n  Lists every account of the ledger.\n"
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
}

func (c *accountsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.AccountsMarkdown(l))
	return subcommands.ExitSuccess
}

type removeAccountCmd struct {
	ledgerName string
}

func (*removeAccountCmd) Name() string     { return "remove-account" }
func (*removeAccountCmd) Synopsis() string { return "remove an unused account" }
func (*removeAccountCmd) Usage() string {
	return `bufy remove-account <name>

  Removes an account by name. Accounts referenced by transactions cannot
  be removed.
`
}

func (c *removeAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
}

func (c *removeAccountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}

	s, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	a, ok := l.AccountByName(f.Arg(0))
	if !ok {
		return fail(fmt.Errorf("account %q not found", f.Arg(0)))
	}
	if err := l.RemoveAccount(a.ID); err != nil {
		return fail(err)
	}
	if err := s.Save(l); err != nil {
		return fail(err)
	}

	fmt.Printf("Removed account %q\n", a.Name)
	return subcommands.ExitSuccess
}
