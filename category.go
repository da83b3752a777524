package bufy

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CategoryKind classifies ledger activity for budgeting and reporting.
type CategoryKind int

const (
	Expense CategoryKind = iota
	Income
	Transfer
)

func (k CategoryKind) String() string {
	switch k {
	case Expense:
		return "expense"
	case Income:
		return "income"
	case Transfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// ParseCategoryKind parses a category kind name.
func ParseCategoryKind(s string) (CategoryKind, error) {
	switch strings.ToLower(s) {
	case "expense":
		return Expense, nil
	case "income":
		return Income, nil
	case "transfer":
		return Transfer, nil
	default:
		return Expense, fmt.Errorf("unknown category kind %q", s)
	}
}

// Category labels transactions. A category may have one parent; the
// hierarchy is at most one level deep and that is enforced when the
// category is attached to a ledger.
type Category struct {
	ID       uuid.UUID
	Name     string
	Kind     CategoryKind
	ParentID *uuid.UUID

	extra rawFields
}

// NewCategory builds a validated category with a fresh id.
func NewCategory(name string, kind CategoryKind) (Category, error) {
	c := Category{ID: uuid.New(), Name: strings.TrimSpace(name), Kind: kind}
	if c.Name == "" {
		return Category{}, Validationf("category name must not be empty")
	}
	return c, nil
}

// WithParent returns a copy of the category nested under parent.
func (c Category) WithParent(parent uuid.UUID) Category {
	p := parent
	c.ParentID = &p
	return c
}
