package date

import (
	"testing"
	"time"
)

func TestWindowContains(t *testing.T) {
	w, err := NewWindow(New(2025, time.March, 1), New(2025, time.April, 1))
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	if !w.Contains(New(2025, time.March, 1)) {
		t.Error("window start must be included")
	}
	if w.Contains(New(2025, time.April, 1)) {
		t.Error("window end must be excluded")
	}
	if !w.Contains(New(2025, time.March, 31)) {
		t.Error("last day before end must be included")
	}
}

func TestWindowZeroLength(t *testing.T) {
	d := New(2025, time.March, 1)
	w, err := NewWindow(d, d)
	if err != nil {
		t.Fatalf("a zero-length window is valid: %v", err)
	}
	if !w.IsEmpty() || w.Days() != 0 {
		t.Errorf("zero-length window should be empty, got %d days", w.Days())
	}
	if w.Contains(d) {
		t.Error("zero-length window contains no dates")
	}
}

func TestWindowRejectsInverted(t *testing.T) {
	_, err := NewWindow(New(2025, time.April, 1), New(2025, time.March, 1))
	if err == nil {
		t.Error("inverted window should be rejected")
	}
}

func TestWindowOf(t *testing.T) {
	w := WindowOf(Monthly(), New(2025, time.January, 1), New(2025, time.February, 14))
	if w.Start != New(2025, time.February, 1) || w.End != New(2025, time.March, 1) {
		t.Errorf("WindowOf = %s, want [2025-02-01, 2025-03-01)", w)
	}
}

func TestWindowOf_MonthEndAnchorLeavesNoGap(t *testing.T) {
	// A day-31 anchor clamps per cycle: Feb 28, Mar 31, Apr 30. The cycle
	// ending Mar 31 must cover every date up to it, clamped start included.
	anchor := New(2025, time.January, 31)
	for _, ref := range []Date{
		New(2025, time.February, 28),
		New(2025, time.March, 28),
		New(2025, time.March, 29),
		New(2025, time.March, 30),
	} {
		w := WindowOf(Monthly(), anchor, ref)
		if !w.Contains(ref) {
			t.Errorf("WindowOf(monthly, %s, %s) = %s does not contain its reference", anchor, ref, w)
		}
		if w.Start != New(2025, time.February, 28) || w.End != New(2025, time.March, 31) {
			t.Errorf("WindowOf(monthly, %s, %s) = %s, want [2025-02-28, 2025-03-31)", anchor, ref, w)
		}
	}
	next := WindowOf(Monthly(), anchor, New(2025, time.March, 31))
	if next.Start != New(2025, time.March, 31) || next.End != New(2025, time.April, 30) {
		t.Errorf("next cycle = %s, want [2025-03-31, 2025-04-30)", next)
	}
}

func TestWindowOffset(t *testing.T) {
	anchor := New(2025, time.January, 31)
	ref := New(2025, time.March, 15)

	prev := WindowOffset(Monthly(), anchor, ref, -1)
	next := WindowOffset(Monthly(), anchor, ref, +1)

	if prev.Start != New(2025, time.January, 31) || prev.End != New(2025, time.February, 28) {
		t.Errorf("offset -1 = %s, want [2025-01-31, 2025-02-28)", prev)
	}
	if next.Start != New(2025, time.March, 31) || next.End != New(2025, time.April, 30) {
		t.Errorf("offset +1 = %s, want [2025-03-31, 2025-04-30)", next)
	}
}
