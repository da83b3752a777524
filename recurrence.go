package bufy

import (
	"iter"
	"slices"

	"github.com/google/uuid"

	"github.com/brunoclpinto/BUFY/date"
)

// maxWalkIterations bounds every recurrence walk, so a never-ending rule
// combined with a far-future window cannot spin forever.
const maxWalkIterations = 1024

// snapshotLookaheadDays is how far ahead RecurrenceSnapshots scans.
const snapshotLookaheadDays = 365 * 5

// ScheduleStatus classifies an occurrence relative to a reference date and
// the current budget period.
type ScheduleStatus int

const (
	// ScheduleOverdue is an occurrence before the reference date.
	ScheduleOverdue ScheduleStatus = iota
	// SchedulePending is an occurrence inside the current budget period.
	SchedulePending
	// ScheduleFuture is an occurrence beyond the current budget period.
	ScheduleFuture
)

func (s ScheduleStatus) String() string {
	switch s {
	case ScheduleOverdue:
		return "overdue"
	case SchedulePending:
		return "pending"
	case ScheduleFuture:
		return "future"
	default:
		return "unknown"
	}
}

// classifySchedule buckets an occurrence date against today and the budget
// period containing today.
func classifySchedule(on, today date.Date, period date.Window) ScheduleStatus {
	if on.Before(today) {
		return ScheduleOverdue
	}
	if on.Before(period.End) {
		return SchedulePending
	}
	return ScheduleFuture
}

// Occurrences returns the rule's ordered, lazy sequence of occurrence
// dates strictly before limit, paired with their occurrence index.
// Exception dates are skipped without consuming an index. The walk
// terminates at the rule's end condition, at limit, or at the iteration
// cap, whichever comes first.
//
// Without materialized transactions AfterLastPerformed degenerates to the
// fixed schedule; series-aware walks go through the ledger.
func (r *Recurrence) Occurrences(limit date.Date) iter.Seq2[int, date.Date] {
	return func(yield func(int, date.Date) bool) {
		index, step := 0, 0
		candidate := r.Start
		for guard := 0; guard < maxWalkIterations; guard++ {
			if !candidate.Before(limit) || !r.allows(index, candidate) {
				return
			}
			if !r.isException(candidate) {
				if !yield(index, candidate) {
					return
				}
				index++
			}
			step++
			candidate = r.next(candidate, nil, step)
		}
	}
}

// next computes the candidate following current. Fixed schedules shift
// from the series start so a day-31 anchor survives short months; the
// after-last-performed mode chains from the recorded actual date when one
// exists.
func (r *Recurrence) next(current date.Date, actual *date.Date, step int) date.Date {
	if r.Mode == AfterLastPerformed {
		anchor := current
		if actual != nil {
			anchor = *actual
		}
		return r.Interval.Next(anchor)
	}
	return r.Interval.Shift(r.Start, step)
}

// occurrence is one slot of a series walk: the occurrence index, its date,
// and the materialized transaction occupying the slot, if any.
type occurrence struct {
	index int
	on    date.Date
	tx    *Transaction
}

// walkSeries enumerates the rule's occurrences strictly before limit and
// pairs each with the materialized series transaction scheduled on that
// date. entries must all belong to the rule's series.
func walkSeries(r *Recurrence, entries []*Transaction, limit date.Date) []occurrence {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b *Transaction) int {
		return a.Scheduled.Sub(b.Scheduled)
	})

	var out []occurrence
	index, step, cursor := 0, 0, 0
	candidate := r.Start
	for guard := 0; guard < maxWalkIterations; guard++ {
		if !candidate.Before(limit) || !r.allows(index, candidate) {
			return out
		}
		if r.isException(candidate) {
			step++
			candidate = r.next(candidate, nil, step)
			continue
		}
		for cursor < len(sorted) && sorted[cursor].Scheduled.Before(candidate) {
			cursor++
		}
		var tx *Transaction
		if cursor < len(sorted) && sorted[cursor].Scheduled == candidate {
			tx = sorted[cursor]
			cursor++
		}
		out = append(out, occurrence{index: index, on: candidate, tx: tx})
		index++
		step++
		var actual *date.Date
		if tx != nil {
			actual = tx.Actual
		}
		candidate = r.next(candidate, actual, step)
	}
	return out
}

// seriesIndex groups transactions by series id. It is rebuilt on demand,
// never persisted.
func seriesIndex(txs []Transaction) map[uuid.UUID][]*Transaction {
	index := make(map[uuid.UUID][]*Transaction)
	for i := range txs {
		if series, ok := txs[i].Series(); ok {
			index[series] = append(index[series], &txs[i])
		}
	}
	return index
}

// seriesMetadata is the rebuilt derived state of one recurrence series.
type seriesMetadata struct {
	lastGenerated *date.Date
	lastCompleted *date.Date
	nextDue       *date.Date
	occurrences   int
}

// rebuildSeriesMetadata recomputes derived recurrence state from the rules
// and the materialized transactions. It reads only authoritative fields,
// so applying it twice yields identical results.
func rebuildSeriesMetadata(txs []Transaction) map[uuid.UUID]seriesMetadata {
	index := seriesIndex(txs)

	out := make(map[uuid.UUID]seriesMetadata)
	for i := range txs {
		template := &txs[i]
		if template.Recurrence == nil {
			continue
		}
		series, _ := template.Series()
		if _, done := out[series]; done {
			continue
		}
		entries := index[series]
		if len(entries) == 0 {
			entries = []*Transaction{template}
		}

		var meta seriesMetadata
		meta.occurrences = len(entries)
		last := template.Recurrence.Start
		for _, e := range entries {
			if e.Scheduled.After(last) {
				last = e.Scheduled
			}
			if e.Actual != nil && (meta.lastCompleted == nil || e.Actual.After(*meta.lastCompleted)) {
				d := *e.Actual
				meta.lastCompleted = &d
			}
		}
		meta.lastGenerated = &last
		meta.nextDue = nextDue(template.Recurrence, entries, last)
		out[series] = meta
	}
	return out
}

// nextDue finds the first admissible occurrence after the last generated
// one, or nil when the series is exhausted.
func nextDue(r *Recurrence, entries []*Transaction, lastGenerated date.Date) *date.Date {
	if r.Status == RecurrenceCompleted && r.NextScheduled == nil {
		return nil
	}
	count := len(entries)

	if r.Mode == AfterLastPerformed {
		anchor := lastGenerated
		// the entry holding the last generated slot may carry an actual date.
		for _, e := range entries {
			if e.Scheduled == lastGenerated && e.Actual != nil {
				anchor = *e.Actual
			}
		}
		candidate := r.Interval.Next(anchor)
		for guard := 0; r.isException(candidate); guard++ {
			if guard >= maxWalkIterations {
				return nil
			}
			candidate = r.Interval.Next(candidate)
		}
		if r.allows(count, candidate) {
			return &candidate
		}
		return nil
	}

	// Fixed schedule: walk the pure rule past the last generated date. The
	// horizon only bounds the walk; the iteration cap does the real work.
	horizon := r.Interval.Shift(date.Max(lastGenerated, r.Start), maxWalkIterations)
	for index, on := range r.Occurrences(horizon) {
		if on.After(lastGenerated) {
			if r.allows(count, on) && index >= count {
				d := on
				return &d
			}
			return nil
		}
	}
	return nil
}

// applySeriesMetadata writes rebuilt metadata back onto the recurrence
// rules and reconciles their status: an exhausted unpaused rule becomes
// Completed, a rule with a next date becomes Active again.
func applySeriesMetadata(txs []Transaction, metadata map[uuid.UUID]seriesMetadata) {
	for i := range txs {
		r := txs[i].Recurrence
		if r == nil {
			continue
		}
		series, _ := txs[i].Series()
		meta, ok := metadata[series]
		if !ok {
			continue
		}
		r.LastGenerated = meta.lastGenerated
		r.LastCompleted = meta.lastCompleted
		r.NextScheduled = meta.nextDue
		r.Generated = meta.occurrences
		if r.Status != RecurrencePaused {
			if meta.nextDue == nil {
				r.Status = RecurrenceCompleted
			} else {
				r.Status = RecurrenceActive
			}
		}
	}
}

// materializeDue builds concrete transactions for every active series
// occurrence scheduled on or before asOf that is missing from txs. The
// clones are detached from the recurrence definition and tagged with their
// series id, ready to append to the ledger.
func materializeDue(txs []Transaction, asOf date.Date) []Transaction {
	index := seriesIndex(txs)
	limit := asOf.Add(1)

	var created []Transaction
	for i := range txs {
		template := &txs[i]
		r := template.Recurrence
		if r == nil || !r.IsActive() {
			continue
		}
		series, _ := template.Series()
		entries := index[series]
		if len(entries) == 0 {
			entries = []*Transaction{template}
		}
		for _, occ := range walkSeries(r, entries, limit) {
			if occ.tx != nil || occ.on.After(asOf) {
				continue
			}
			tx := template.Clone()
			tx.ID = uuid.New()
			tx.Scheduled = occ.on
			tx.Actual = nil
			tx.ActualAmount = nil
			tx.Status = Scheduled
			tx.Recurrence = nil
			s := series
			tx.SeriesID = &s
			created = append(created, tx)
			if len(created) >= maxWalkIterations {
				return created
			}
		}
	}
	return created
}

// RecurrenceSnapshot is a per-series schedule overview for display.
type RecurrenceSnapshot struct {
	SeriesID   uuid.UUID
	TemplateID uuid.UUID
	Start      date.Date
	Interval   string
	NextDue    *date.Date
	Overdue    int
	Pending    int
	Status     RecurrenceStatus
}

// snapshotSeries summarizes every recurrence series against a reference
// date, scanning a five-year lookahead.
func snapshotSeries(txs []Transaction, reference date.Date, period date.Window) []RecurrenceSnapshot {
	index := seriesIndex(txs)
	lookahead := reference.Add(snapshotLookaheadDays)

	var out []RecurrenceSnapshot
	for i := range txs {
		template := &txs[i]
		r := template.Recurrence
		if r == nil {
			continue
		}
		series, _ := template.Series()
		entries := index[series]
		if len(entries) == 0 {
			entries = []*Transaction{template}
		}

		snap := RecurrenceSnapshot{
			SeriesID:   series,
			TemplateID: template.ID,
			Start:      r.Start,
			Interval:   r.Interval.String(),
			NextDue:    r.NextScheduled,
			Status:     r.Status,
		}
		for _, occ := range walkSeries(r, entries, lookahead) {
			open := occ.tx != nil && occ.tx.Actual == nil
			projected := occ.tx == nil && r.IsActive()
			if !open && !projected {
				continue
			}
			switch classifySchedule(occ.on, reference, period) {
			case ScheduleOverdue:
				snap.Overdue++
			case SchedulePending:
				snap.Pending++
			}
			if snap.NextDue == nil && !occ.on.Before(reference) {
				d := occ.on
				snap.NextDue = &d
			}
		}
		out = append(out, snap)
	}
	slices.SortStableFunc(out, func(a, b RecurrenceSnapshot) int {
		switch {
		case a.NextDue == nil && b.NextDue == nil:
			return 0
		case a.NextDue == nil:
			return 1
		case b.NextDue == nil:
			return -1
		default:
			return a.NextDue.Sub(*b.NextDue)
		}
	})
	return out
}
