package bufy

import "testing"

func TestMoney_Arithmetic(t *testing.T) {
	a := EUR(10.50)
	b := EUR(4.25)

	if got := a.Add(b); !got.Equal(EUR(14.75)) {
		t.Errorf("Add = %s, want %s", got, EUR(14.75))
	}
	if got := a.Sub(b); !got.Equal(EUR(6.25)) {
		t.Errorf("Sub = %s, want %s", got, EUR(6.25))
	}
	if got := b.Sub(a); !got.IsNegative() {
		t.Errorf("Sub = %s, want a negative amount", got)
	}
}

func TestMoney_MismatchedCurrencyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("adding EUR to USD did not panic")
		}
	}()
	_ = EUR(1).Add(USD(1))
}

func TestMoney_WeakCurrencyMerges(t *testing.T) {
	// an amount without a currency adopts the other side's
	got := M(5, "").Add(EUR(5))
	if got.Currency() != "EUR" {
		t.Errorf("Currency = %q, want EUR", got.Currency())
	}
}
