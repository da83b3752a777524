package date

import (
	"testing"
	"time"
)

// TestTime asserts that time() is canonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestNewNormalizes(t *testing.T) {
	// day overflow rolls into the next month, like time.Date.
	got := New(2025, time.January, 32)
	want := New(2025, time.February, 1)
	if got != want {
		t.Errorf("New(2025, 1, 32) = %s, want %s", got, want)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2025-01-31", New(2025, time.January, 31), true},
		{"2025-7-1", New(2025, time.July, 1), true},
		{"31/01/2025", Date{}, false},
		{"", Date{}, false},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("Parse(%q) = %v, %v, want %v", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("Parse(%q) should have failed", c.in)
		}
	}
}

func TestSub(t *testing.T) {
	a := New(2024, time.February, 28)
	b := New(2024, time.March, 1)
	if got := b.Sub(a); got != 2 { // 2024 is a leap year
		t.Errorf("Sub over leap day = %d, want 2", got)
	}
}

func TestDaysIn(t *testing.T) {
	cases := []struct {
		y    int
		m    time.Month
		want int
	}{
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, c := range cases {
		if got := DaysIn(c.y, c.m); got != c.want {
			t.Errorf("DaysIn(%d, %s) = %d, want %d", c.y, c.m, got, c.want)
		}
	}
}
