package date

import (
	"testing"
	"time"
)

func TestShiftClampsMonthEnd(t *testing.T) {
	monthly := Interval{Every: 1, Unit: Month}
	start := New(2025, time.January, 31)

	// The shift is anchored on the origin, so the day-31 anchor survives
	// the short month in between.
	cases := []struct {
		steps int
		want  Date
	}{
		{0, New(2025, time.January, 31)},
		{1, New(2025, time.February, 28)},
		{2, New(2025, time.March, 31)},
		{3, New(2025, time.April, 30)},
		{13, New(2026, time.February, 28)},
	}
	for _, c := range cases {
		if got := monthly.Shift(start, c.steps); got != c.want {
			t.Errorf("Shift(%s, %d) = %s, want %s", start, c.steps, got, c.want)
		}
	}
}

func TestShiftLeapYear(t *testing.T) {
	yearly := Interval{Every: 1, Unit: Year}
	leap := New(2024, time.February, 29)
	if got := yearly.Shift(leap, 1); got != New(2025, time.February, 28) {
		t.Errorf("yearly shift from leap day = %s, want 2025-02-28", got)
	}
	if got := yearly.Shift(leap, 4); got != New(2028, time.February, 29) {
		t.Errorf("yearly shift to next leap year = %s, want 2028-02-29", got)
	}
}

func TestShiftDayAndWeek(t *testing.T) {
	every10d := Interval{Every: 10, Unit: Day}
	if got := every10d.Shift(New(2025, time.December, 28), 1); got != New(2026, time.January, 7) {
		t.Errorf("day shift over year end = %s", got)
	}
	biweekly := Interval{Every: 2, Unit: Week}
	if got := biweekly.Prev(New(2025, time.January, 6)); got != New(2024, time.December, 23) {
		t.Errorf("biweekly prev = %s", got)
	}
}

func TestValidate(t *testing.T) {
	if err := (Interval{Every: 0, Unit: Month}).Validate(); err == nil {
		t.Error("zero interval should be invalid")
	}
	if err := (Interval{Every: -3, Unit: Day}).Validate(); err == nil {
		t.Error("negative interval should be invalid")
	}
	if err := Monthly().Validate(); err != nil {
		t.Errorf("monthly should be valid: %v", err)
	}
}

func TestAnchor(t *testing.T) {
	d := New(2025, time.August, 20) // a Wednesday
	if got := (Interval{Every: 1, Unit: Week}).Anchor(d); got != New(2025, time.August, 18) {
		t.Errorf("week anchor = %s, want the preceding Monday", got)
	}
	if got := (Interval{Every: 1, Unit: Month}).Anchor(d); got != New(2025, time.August, 1) {
		t.Errorf("month anchor = %s, want 2025-08-01", got)
	}
	if got := (Interval{Every: 2, Unit: Year}).Anchor(d); got != New(2025, time.January, 1) {
		t.Errorf("year anchor = %s, want 2025-01-01", got)
	}
}

func TestCycleStart(t *testing.T) {
	monthly := Monthly()
	anchor := New(2025, time.January, 1)
	if got := monthly.CycleStart(anchor, New(2025, time.March, 15)); got != New(2025, time.March, 1) {
		t.Errorf("monthly cycle start = %s, want 2025-03-01", got)
	}
	// reference before the anchor still lands on the containing cycle.
	if got := monthly.CycleStart(anchor, New(2024, time.December, 15)); got != New(2024, time.December, 1) {
		t.Errorf("monthly cycle start before anchor = %s, want 2024-12-01", got)
	}

	q := Interval{Every: 3, Unit: Month}
	if got := q.CycleStart(anchor, New(2025, time.May, 2)); got != New(2025, time.April, 1) {
		t.Errorf("quarterly cycle start = %s, want 2025-04-01", got)
	}

	// a day-31 anchor clamps each boundary independently; Mar 29 belongs to
	// the cycle starting Feb 28, not to one starting on a drifted Mar 28.
	endAnchor := New(2025, time.January, 31)
	if got := monthly.CycleStart(endAnchor, New(2025, time.March, 29)); got != New(2025, time.February, 28) {
		t.Errorf("clamped cycle start = %s, want 2025-02-28", got)
	}
	if got := monthly.CycleStart(endAnchor, New(2025, time.March, 31)); got != New(2025, time.March, 31) {
		t.Errorf("boundary cycle start = %s, want 2025-03-31", got)
	}
}

func TestUnitJSONRoundTrip(t *testing.T) {
	for _, u := range []Unit{Day, Week, Month, Year} {
		b, err := u.MarshalJSON()
		if err != nil {
			t.Fatalf("marshal %s: %v", u, err)
		}
		var back Unit
		if err := back.UnmarshalJSON(b); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if back != u {
			t.Errorf("round trip %s gave %s", u, back)
		}
	}
}

func TestParseInterval(t *testing.T) {
	cases := []struct {
		in   string
		want Interval
	}{
		{"monthly", Interval{Every: 1, Unit: Month}},
		{"weekly", Interval{Every: 1, Unit: Week}},
		{"2 weeks", Interval{Every: 2, Unit: Week}},
		{"every 3 months", Interval{Every: 3, Unit: Month}},
		{"Yearly", Interval{Every: 1, Unit: Year}},
	}
	for _, c := range cases {
		got, err := ParseInterval(c.in)
		if err != nil {
			t.Errorf("ParseInterval(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseInterval(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	for _, bad := range []string{"", "sometimes", "0 weeks", "two weeks"} {
		if _, err := ParseInterval(bad); err == nil {
			t.Errorf("ParseInterval(%q) should fail", bad)
		}
	}
}
