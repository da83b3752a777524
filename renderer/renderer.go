// Package renderer turns ledger reports into markdown documents for
// terminal display.
package renderer

import (
	"fmt"

	"github.com/brunoclpinto/BUFY"
)

// amount formats a money value for a table cell.
func amount(m bufy.Money) string {
	return m.String()
}

// signed formats a money delta with an explicit sign, zero as "-".
func signed(m bufy.Money) string {
	return m.SignedString()
}

// count pluralizes a row count label.
func count(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}
