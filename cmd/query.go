package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/subcommands"
)

type queryCmd struct {
	ledgerName string
}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "run a jsonpath query against the ledger document" }
func (*queryCmd) Usage() string {
	return `bufy query <jsonpath>

  Evaluates a jsonpath expression against the ledger's persisted form
  and prints the result as JSON. Useful for scripting.

Usage Examples:
$ bufy query '$.accounts[*].name'
$ bufy query '$.transactions[?(@.status=="scheduled")].budgetedAmount'
$ bufy query '$.simulations[-1:]'
`
}

func (c *queryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to query. Defaults to the current ledger.")
}

func (c *queryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}
	path := f.Arg(0)

	_, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}

	// Query the document form, so paths match what is on disk.
	var buf bytes.Buffer
	if err := l.EncodeLedger(&buf); err != nil {
		return fail(err)
	}
	var jobj any
	if err := json.Unmarshal(buf.Bytes(), &jobj); err != nil {
		return fail(err)
	}

	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return fail(fmt.Errorf("evaluating %q: %w", path, err))
	}

	out, err := json.MarshalIndent(jval, "", "  ")
	if err != nil {
		return fail(err)
	}
	fmt.Println(string(out))
	return subcommands.ExitSuccess
}
