package cmd

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/google/subcommands"

	"github.com/brunoclpinto/BUFY"
)

type backupCmd struct {
	ledgerName string
	note       string
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "take a timestamped backup of the ledger" }
func (*backupCmd) Usage() string {
	return `bufy backup [-note <text>] [-l <ledger>]

  Copies the ledger file into its backup directory. Old backups beyond
  the retention limit are pruned, oldest first.

Usage Examples:
$ bufy backup
$ bufy backup -note "before vacation import"
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to back up. Defaults to the current ledger.")
	f.StringVar(&c.note, "note", "", "Short note appended to the backup file name.")
}

func (c *backupCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	name, err := resolveLedger(s, c.ledgerName)
	if err != nil {
		return fail(err)
	}
	path, err := s.Backup(name, c.note)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("Backed up %q to %s\n", name, path)
	return subcommands.ExitSuccess
}

type backupsCmd struct {
	ledgerName string
}

func (*backupsCmd) Name() string     { return "backups" }
func (*backupsCmd) Synopsis() string { return "list the backups of the ledger" }
func (*backupsCmd) Usage() string {
	return "bufy backups [-l <ledger>]\n\n  Lists the ledger's backups, newest first.\n"
}

func (c *backupsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to inspect. Defaults to the current ledger.")
}

func (c *backupsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	name, err := resolveLedger(s, c.ledgerName)
	if err != nil {
		return fail(err)
	}
	backups, err := s.Backups(name)
	if err != nil {
		return fail(err)
	}
	if len(backups) == 0 {
		fmt.Printf("No backups of %q yet.\n", name)
		return subcommands.ExitSuccess
	}
	for _, b := range backups {
		fmt.Println(filepath.Base(b))
	}
	return subcommands.ExitSuccess
}

type restoreCmd struct {
	ledgerName string
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "restore the ledger from a backup" }
func (*restoreCmd) Usage() string {
	return `bufy restore <backup-file>

  Replaces the ledger with the given backup. The backup is validated
  first, and the current ledger is itself backed up before being
  overwritten, so a restore is never destructive.

Usage Examples:
$ bufy restore household_20250601_0930.json
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to restore. Defaults to the current ledger.")
}

func (c *restoreCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}

	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	name, err := resolveLedger(s, c.ledgerName)
	if err != nil {
		return fail(err)
	}

	// A bare file name refers to the ledger's backup directory.
	backup := f.Arg(0)
	if backup == filepath.Base(backup) {
		backup = filepath.Join(s.Home(), "backups", bufy.CanonicalName(name), backup)
	}

	l, err := s.Restore(name, backup)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("Restored ledger %q from %s\n", l.Name(), filepath.Base(f.Arg(0)))
	return subcommands.ExitSuccess
}
