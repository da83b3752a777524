package bufy

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AccountKind classifies what an account represents.
type AccountKind int

const (
	// Asset holds money the household owns (checking, savings, cash).
	Asset AccountKind = iota
	// Liability tracks money owed (credit card, loan).
	Liability
	// Bucket is an external or virtual counterpart (employer, landlord,
	// envelope) used as the other side of a flow.
	Bucket
)

func (k AccountKind) String() string {
	switch k {
	case Asset:
		return "asset"
	case Liability:
		return "liability"
	case Bucket:
		return "bucket"
	default:
		return "unknown"
	}
}

// ParseAccountKind parses an account kind name.
func ParseAccountKind(s string) (AccountKind, error) {
	switch strings.ToLower(s) {
	case "asset":
		return Asset, nil
	case "liability":
		return Liability, nil
	case "bucket":
		return Bucket, nil
	default:
		return Asset, fmt.Errorf("unknown account kind %q", s)
	}
}

// Account is one side of a money flow. It is owned by the ledger and
// referenced by transactions by id.
type Account struct {
	ID       uuid.UUID
	Name     string
	Kind     AccountKind
	Currency string // optional override of the ledger's accounting currency

	extra rawFields
}

// NewAccount builds a validated account with a fresh id.
func NewAccount(name string, kind AccountKind) (Account, error) {
	a := Account{ID: uuid.New(), Name: strings.TrimSpace(name), Kind: kind}
	if a.Name == "" {
		return Account{}, Validationf("account name must not be empty")
	}
	return a, nil
}
