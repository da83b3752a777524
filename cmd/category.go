package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/brunoclpinto/BUFY"
	"github.com/brunoclpinto/BUFY/renderer"
)

type addCategoryCmd struct {
	ledgerName string
	kind       string
	parent     string
}

func (*addCategoryCmd) Name() string     { return "add-category" }
func (*addCategoryCmd) Synopsis() string { return "add a budgeting category" }
func (*addCategoryCmd) Usage() string {
	return `bufy add-category [-kind expense|income|transfer] [-parent <name>] <name>

  Adds a category. A category may have one parent; the hierarchy is at
  most one level deep.

Usage Examples:
$ bufy add-category Groceries
$ bufy add-category -kind income Salary
$ bufy add-category -parent Groceries "Farmers Market"
`
}

func (c *addCategoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
	f.StringVar(&c.kind, "kind", "expense", "Category kind (expense, income, transfer).")
	f.StringVar(&c.parent, "parent", "", "Name of the parent category.")
}

func (c *addCategoryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}

	kind, err := bufy.ParseCategoryKind(c.kind)
	if err != nil {
		return fail(err)
	}
	cat, err := bufy.NewCategory(f.Arg(0), kind)
	if err != nil {
		return fail(err)
	}

	s, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	if c.parent != "" {
		parent, ok := l.CategoryByName(c.parent)
		if !ok {
			return fail(fmt.Errorf("parent category %q not found", c.parent))
		}
		id := parent.ID
		cat.ParentID = &id
	}
	if err := l.AddCategory(cat); err != nil {
		return fail(err)
	}
	if err := s.Save(l); err != nil {
		return fail(err)
	}

	fmt.Printf("Added %s category %q (%s)\n", kind, cat.Name, cat.ID)
	return subcommands.ExitSuccess
}

type categoriesCmd struct {
	ledgerName string
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list the categories of the ledger" }
func (*categoriesCmd) Usage() string {
	return "bufy categories [-l <ledger>]\n\n  Lists every category of the ledger.\n"
}

func (c *categoriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to operate on. Defaults to the current ledger.")
}

func (c *categoriesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.CategoriesMarkdown(l))
	return subcommands.ExitSuccess
}
