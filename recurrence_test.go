package bufy

import (
	"testing"

	"github.com/brunoclpinto/BUFY/date"
)

func collectOccurrences(r *Recurrence, limit date.Date) []date.Date {
	var out []date.Date
	for _, on := range r.Occurrences(limit) {
		out = append(out, on)
	}
	return out
}

func TestOccurrences_MonthEndClamping(t *testing.T) {
	// Arrange: a monthly rule anchored at the 31st.
	r, err := NewRecurrence(date.MustParse("2025-01-31"), date.Monthly(), FixedSchedule)
	if err != nil {
		t.Fatalf("NewRecurrence() error = %v", err)
	}

	// Act
	got := collectOccurrences(r, date.MustParse("2025-05-01"))

	// Assert: short months clamp, the day-31 anchor is not lost.
	want := []date.Date{
		date.MustParse("2025-01-31"),
		date.MustParse("2025-02-28"),
		date.MustParse("2025-03-31"),
		date.MustParse("2025-04-30"),
	}
	if len(got) != len(want) {
		t.Fatalf("Occurrences() returned %d dates, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("occurrence %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestOccurrences_EndAfter(t *testing.T) {
	r, _ := NewRecurrence(date.MustParse("2025-01-01"), date.Monthly(), FixedSchedule)
	r = r.WithEnd(After(3))

	got := collectOccurrences(r, date.MustParse("2026-01-01"))

	if len(got) != 3 {
		t.Fatalf("Occurrences() returned %d dates, want 3: %v", len(got), got)
	}
	if last := got[2]; last != date.MustParse("2025-03-01") {
		t.Errorf("last occurrence = %s, want 2025-03-01", last)
	}
}

func TestOccurrences_EndOn(t *testing.T) {
	r, _ := NewRecurrence(date.MustParse("2025-01-01"), date.Monthly(), FixedSchedule)
	r = r.WithEnd(On(date.MustParse("2025-02-15")))

	got := collectOccurrences(r, date.MustParse("2026-01-01"))

	if len(got) != 2 {
		t.Fatalf("Occurrences() returned %d dates, want 2: %v", len(got), got)
	}
}

func TestOccurrences_ExceptionSkipsWithoutConsumingSlot(t *testing.T) {
	// Arrange: three occurrences allowed, the second date excluded.
	r, _ := NewRecurrence(date.MustParse("2025-01-01"), date.Monthly(), FixedSchedule)
	r = r.WithEnd(After(3))
	r.AddException(date.MustParse("2025-02-01"))

	// Act
	got := collectOccurrences(r, date.MustParse("2026-01-01"))

	// Assert: still three occurrences, the excluded date replaced by the
	// next admissible one.
	want := []date.Date{
		date.MustParse("2025-01-01"),
		date.MustParse("2025-03-01"),
		date.MustParse("2025-04-01"),
	}
	if len(got) != len(want) {
		t.Fatalf("Occurrences() returned %d dates, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("occurrence %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestOccurrences_IterationCap(t *testing.T) {
	r, _ := NewRecurrence(date.MustParse("2025-01-01"), date.Interval{Every: 1, Unit: date.Day}, FixedSchedule)

	got := collectOccurrences(r, date.MustParse("2100-01-01"))

	if len(got) != maxWalkIterations {
		t.Errorf("Occurrences() returned %d dates, want the %d cap", len(got), maxWalkIterations)
	}
}

func TestClassifySchedule(t *testing.T) {
	today := date.MustParse("2025-06-10")
	period := window(t, "2025-06-01", "2025-07-01")

	cases := []struct {
		on   string
		want ScheduleStatus
	}{
		{"2025-06-09", ScheduleOverdue},
		{"2025-06-10", SchedulePending},
		{"2025-06-30", SchedulePending},
		{"2025-07-01", ScheduleFuture},
	}
	for _, tc := range cases {
		if got := classifySchedule(date.MustParse(tc.on), today, period); got != tc.want {
			t.Errorf("classifySchedule(%s) = %s, want %s", tc.on, got, tc.want)
		}
	}
}

func TestMaterializeDue_IsIdempotent(t *testing.T) {
	// Arrange: a monthly rent template starting January.
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)
	template := addRecurringTx(t, l, checking, landlord, "2025-01-01", 800)

	// Act
	created, err := l.MaterializeDue(date.MustParse("2025-03-15"))
	if err != nil {
		t.Fatalf("MaterializeDue() error = %v", err)
	}

	// Assert: the template holds the January slot, February and March are
	// materialized.
	if len(created) != 2 {
		t.Fatalf("MaterializeDue() created %d transactions, want 2", len(created))
	}
	for i, want := range []string{"2025-02-01", "2025-03-01"} {
		tx := created[i]
		if tx.Scheduled != date.MustParse(want) {
			t.Errorf("created[%d].Scheduled = %s, want %s", i, tx.Scheduled, want)
		}
		if tx.Recurrence != nil {
			t.Errorf("created[%d] still carries the recurrence definition", i)
		}
		if tx.SeriesID == nil || *tx.SeriesID != template.ID {
			t.Errorf("created[%d] is not tagged with series %s", i, template.ID)
		}
		if tx.Status != Scheduled {
			t.Errorf("created[%d].Status = %s, want scheduled", i, tx.Status)
		}
		if tx.Actual != nil || tx.ActualAmount != nil {
			t.Errorf("created[%d] carries actuals", i)
		}
	}

	// Act again: same date, nothing new.
	again, err := l.MaterializeDue(date.MustParse("2025-03-15"))
	if err != nil {
		t.Fatalf("MaterializeDue() second call error = %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second MaterializeDue() created %d transactions, want 0", len(again))
	}
}

func TestRefreshRecurrenceMetadata_IsIdempotent(t *testing.T) {
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)
	template := addRecurringTx(t, l, checking, landlord, "2025-01-01", 800)
	if _, err := l.MaterializeDue(date.MustParse("2025-02-15")); err != nil {
		t.Fatalf("MaterializeDue() error = %v", err)
	}

	first, _ := l.Transaction(template.ID)
	l.RefreshRecurrenceMetadata()
	second, _ := l.Transaction(template.ID)

	r1, r2 := first.Recurrence, second.Recurrence
	if r1 == nil || r2 == nil {
		t.Fatal("template lost its recurrence definition")
	}
	if r1.Generated != r2.Generated {
		t.Errorf("Generated changed on refresh: %d then %d", r1.Generated, r2.Generated)
	}
	if (r1.NextScheduled == nil) != (r2.NextScheduled == nil) ||
		(r1.NextScheduled != nil && *r1.NextScheduled != *r2.NextScheduled) {
		t.Errorf("NextScheduled changed on refresh: %v then %v", r1.NextScheduled, r2.NextScheduled)
	}
}

func TestRecurrenceMetadata_NextDue(t *testing.T) {
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)
	template := addRecurringTx(t, l, checking, landlord, "2025-01-31", 800)

	got, _ := l.Transaction(template.ID)
	r := got.Recurrence
	if r.NextScheduled == nil {
		t.Fatal("NextScheduled is nil")
	}
	// clamped February, computed from the series anchor
	if *r.NextScheduled != date.MustParse("2025-02-28") {
		t.Errorf("NextScheduled = %s, want 2025-02-28", *r.NextScheduled)
	}
	if r.LastGenerated == nil || *r.LastGenerated != date.MustParse("2025-01-31") {
		t.Errorf("LastGenerated = %v, want 2025-01-31", r.LastGenerated)
	}
}

func TestAfterLastPerformed_ChainsFromActualDate(t *testing.T) {
	// Arrange: a haircut every month after the last one actually happened.
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	barber := addAccount(t, l, "barber", Liability)
	tx, err := NewTransaction(checking.ID, barber.ID, date.MustParse("2025-01-10"), dec(30))
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	r, err := NewRecurrence(date.MustParse("2025-01-10"), date.Monthly(), AfterLastPerformed)
	if err != nil {
		t.Fatalf("NewRecurrence() error = %v", err)
	}
	if err := tx.SetRecurrence(r); err != nil {
		t.Fatalf("SetRecurrence() error = %v", err)
	}
	if err := l.AddTransaction(tx); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	// Act: the haircut happened ten days late.
	if err := l.CompleteTransaction(tx.ID, date.MustParse("2025-01-20"), dec(30)); err != nil {
		t.Fatalf("CompleteTransaction() error = %v", err)
	}

	// Assert: the next one chains from the actual date.
	got, _ := l.Transaction(tx.ID)
	if got.Recurrence.NextScheduled == nil {
		t.Fatal("NextScheduled is nil")
	}
	if *got.Recurrence.NextScheduled != date.MustParse("2025-02-20") {
		t.Errorf("NextScheduled = %s, want 2025-02-20", *got.Recurrence.NextScheduled)
	}
}

func TestRecurrence_CompletesWhenExhausted(t *testing.T) {
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)

	tx, _ := NewTransaction(checking.ID, landlord.ID, date.MustParse("2025-01-01"), dec(800))
	r, _ := NewRecurrence(date.MustParse("2025-01-01"), date.Monthly(), FixedSchedule)
	r = r.WithEnd(After(2))
	if err := tx.SetRecurrence(r); err != nil {
		t.Fatalf("SetRecurrence() error = %v", err)
	}
	if err := l.AddTransaction(tx); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	if _, err := l.MaterializeDue(date.MustParse("2025-06-01")); err != nil {
		t.Fatalf("MaterializeDue() error = %v", err)
	}

	got, _ := l.Transaction(tx.ID)
	if got.Recurrence.Status != RecurrenceCompleted {
		t.Errorf("Status = %s, want completed", got.Recurrence.Status)
	}
	if got.Recurrence.NextScheduled != nil {
		t.Errorf("NextScheduled = %s, want nil", *got.Recurrence.NextScheduled)
	}
}

func TestPauseSeries_StopsMaterialization(t *testing.T) {
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)
	template := addRecurringTx(t, l, checking, landlord, "2025-01-01", 800)

	if err := l.PauseSeries(template.ID); err != nil {
		t.Fatalf("PauseSeries() error = %v", err)
	}
	created, err := l.MaterializeDue(date.MustParse("2025-06-01"))
	if err != nil {
		t.Fatalf("MaterializeDue() error = %v", err)
	}
	if len(created) != 0 {
		t.Errorf("paused series materialized %d transactions, want 0", len(created))
	}

	if err := l.ResumeSeries(template.ID); err != nil {
		t.Fatalf("ResumeSeries() error = %v", err)
	}
	created, err = l.MaterializeDue(date.MustParse("2025-03-15"))
	if err != nil {
		t.Fatalf("MaterializeDue() error = %v", err)
	}
	if len(created) != 2 {
		t.Errorf("resumed series materialized %d transactions, want 2", len(created))
	}
}

func TestRecurrenceSnapshots(t *testing.T) {
	l := newTestLedger(t)
	checking := addAccount(t, l, "checking", Asset)
	landlord := addAccount(t, l, "landlord", Liability)
	addRecurringTx(t, l, checking, landlord, "2025-01-01", 800)

	snaps := l.RecurrenceSnapshots(date.MustParse("2025-02-15"))

	if len(snaps) != 1 {
		t.Fatalf("RecurrenceSnapshots() returned %d snapshots, want 1", len(snaps))
	}
	s := snaps[0]
	if s.Interval != "monthly" {
		t.Errorf("Interval = %q, want monthly", s.Interval)
	}
	// Jan 1 and Feb 1 are in the past and not completed.
	if s.Overdue != 2 {
		t.Errorf("Overdue = %d, want 2", s.Overdue)
	}
}
