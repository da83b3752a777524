package date

import "fmt"

// Window is a half-open date range: Start is included, End is not.
type Window struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// NewWindow builds a window, rejecting an end before its start. A window
// with Start == End is valid and contains no dates.
func NewWindow(start, end Date) (Window, error) {
	if end.Before(start) {
		return Window{}, fmt.Errorf("window end %s is before start %s", end, start)
	}
	return Window{Start: start, End: end}, nil
}

// WindowOf returns the cycle of the given interval that contains reference,
// counting cycles from anchor.
func WindowOf(iv Interval, anchor, reference Date) Window {
	return WindowOffset(iv, anchor, reference, 0)
}

// WindowOffset returns the cycle offset whole cycles away from the one
// containing reference: -1 is the previous cycle, +1 the next. Both bounds
// are shifted from the anchor, so consecutive cycles tile the calendar
// with no gap even when month-end clamping moves a boundary.
func WindowOffset(iv Interval, anchor, reference Date, offset int) Window {
	steps := iv.cycleSteps(anchor, reference) + offset
	return Window{Start: iv.Shift(anchor, steps), End: iv.Shift(anchor, steps+1)}
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d Date) bool { return !d.Before(w.Start) && d.Before(w.End) }

// IsEmpty reports whether the window contains no dates.
func (w Window) IsEmpty() bool { return !w.Start.Before(w.End) }

// Days returns the number of dates the window contains.
func (w Window) Days() int {
	if w.IsEmpty() {
		return 0
	}
	return w.End.Sub(w.Start)
}

// String formats the window as "[start, end)".
func (w Window) String() string { return fmt.Sprintf("[%s, %s)", w.Start, w.End) }
