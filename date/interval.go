package date

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Unit is the calendar unit a recurrence interval counts in.
type Unit int

const (
	Day Unit = iota
	Week
	Month
	Year
)

func (u Unit) String() string {
	switch u {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		panic(fmt.Sprintf("unknown unit %d", u))
	}
}

// ParseUnit parses a calendar unit, accepting singular and plural forms.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSuffix(s, "s")) {
	case "day", "daily":
		return Day, nil
	case "week", "weekly":
		return Week, nil
	case "month", "monthly":
		return Month, nil
	case "year", "yearly", "annual":
		return Year, nil
	default:
		return Day, fmt.Errorf("unknown unit %q", s)
	}
}

func (u Unit) MarshalJSON() ([]byte, error) { return json.Marshal(u.String()) }

func (u *Unit) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseUnit(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Interval is a calendar distance: every N days, weeks, months or years.
type Interval struct {
	Every int  `json:"every"`
	Unit  Unit `json:"unit"`
}

// Monthly is the default budget period interval.
func Monthly() Interval { return Interval{Every: 1, Unit: Month} }

// ParseInterval parses an interval the way it is displayed: "monthly",
// "weekly", "2 weeks", "every 3 months".
func ParseInterval(s string) (Interval, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) > 0 && fields[0] == "every" {
		fields = fields[1:]
	}
	switch len(fields) {
	case 1:
		u, err := ParseUnit(fields[0])
		if err != nil {
			return Interval{}, err
		}
		return Interval{Every: 1, Unit: u}, nil
	case 2:
		var every int
		if _, err := fmt.Sscanf(fields[0], "%d", &every); err != nil {
			return Interval{}, fmt.Errorf("invalid interval %q", s)
		}
		u, err := ParseUnit(fields[1])
		if err != nil {
			return Interval{}, err
		}
		iv := Interval{Every: every, Unit: u}
		return iv, iv.Validate()
	default:
		return Interval{}, fmt.Errorf("invalid interval %q", s)
	}
}

// Validate reports whether the interval is usable in a schedule.
func (iv Interval) Validate() error {
	if iv.Every < 1 {
		return fmt.Errorf("interval must repeat every 1 or more %ss, got %d", iv.Unit, iv.Every)
	}
	return nil
}

// String names the interval the way it is displayed in schedules.
func (iv Interval) String() string {
	if iv.Every == 1 {
		switch iv.Unit {
		case Day:
			return "daily"
		case Week:
			return "weekly"
		case Month:
			return "monthly"
		case Year:
			return "yearly"
		}
	}
	return fmt.Sprintf("every %d %ss", iv.Every, iv.Unit)
}

// Shift returns from moved by steps intervals. Month and year arithmetic
// clamps to the last day of a shorter target month, so shifting Jan 31 by
// one month lands on Feb 28 (or 29), never on an invalid date. The shift is
// always computed from its origin, which keeps a day-31 anchor sticky:
// Shift(Jan 31, 2) is Mar 31, not Mar 28.
func (iv Interval) Shift(from Date, steps int) Date {
	n := iv.Every * steps
	switch iv.Unit {
	case Day:
		return from.Add(n)
	case Week:
		return from.Add(7 * n)
	case Month:
		return shiftMonths(from, n)
	case Year:
		return shiftMonths(from, 12*n)
	default:
		panic(fmt.Sprintf("unknown unit %d", iv.Unit))
	}
}

// Next returns the date one interval after from.
func (iv Interval) Next(from Date) Date { return iv.Shift(from, 1) }

// Prev returns the date one interval before from.
func (iv Interval) Prev(from Date) Date { return iv.Shift(from, -1) }

// Anchor normalizes a date to the natural start of its unit: the same day
// for Day, the preceding Monday for Week, the first of the month for Month,
// January 1st for Year.
func (iv Interval) Anchor(d Date) Date {
	switch iv.Unit {
	case Day:
		return d
	case Week:
		delta := (int(d.Weekday()) + 6) % 7 // days since Monday
		return d.Add(-delta)
	case Month:
		return New(d.Year(), d.Month(), 1)
	case Year:
		return New(d.Year(), time.January, 1)
	default:
		panic(fmt.Sprintf("unknown unit %d", iv.Unit))
	}
}

// CycleStart returns the start of the interval cycle that contains
// reference, counting whole cycles from anchor.
func (iv Interval) CycleStart(anchor, reference Date) Date {
	return iv.Shift(anchor, iv.cycleSteps(anchor, reference))
}

// cycleSteps returns how many whole cycles separate anchor from the cycle
// containing reference. Every boundary is shifted from the anchor itself,
// so a day-31 anchor keeps clamping per cycle instead of drifting: cycle 2
// of a monthly Jan 31 anchor starts Mar 31, not Mar 28.
func (iv Interval) cycleSteps(anchor, reference Date) int {
	var steps int
	switch iv.Unit {
	case Day:
		steps = floorDiv(reference.Sub(anchor), iv.Every)
	case Week:
		steps = floorDiv(reference.Sub(anchor), 7*iv.Every)
	case Month:
		steps = floorDiv(monthIndex(reference)-monthIndex(anchor), iv.Every)
	case Year:
		steps = floorDiv(reference.Year()-anchor.Year(), iv.Every)
	default:
		panic(fmt.Sprintf("unknown unit %d", iv.Unit))
	}
	// clamping can land the boundary past the reference within the same
	// month; the previous cycle then owns the reference
	if iv.Shift(anchor, steps).After(reference) {
		steps--
	}
	return steps
}

// shiftMonths moves a date by whole months, clamping the day to the length
// of the target month.
func shiftMonths(from Date, months int) Date {
	idx := monthIndex(from) + months
	year := idx / 12
	month := time.Month(idx%12 + 1)
	day := from.Day()
	if max := DaysIn(year, month); day > max {
		day = max
	}
	return New(year, month, day)
}

func monthIndex(d Date) int { return d.Year()*12 + int(d.Month()) - 1 }

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
