package service

import (
	"time"
)

// Window is a half-open booking interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseWindow parses two RFC 3339 timestamps and rejects empty or inverted ranges.
func ParseWindow(start, end string) (Window, error) {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return Window{}, newError(KindInvalidRange, "start_time must be an RFC 3339 timestamp")
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return Window{}, newError(KindInvalidRange, "end_time must be an RFC 3339 timestamp")
	}
	return NewWindow(s, e)
}

func NewWindow(start, end time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, newError(KindInvalidRange, "start_time and end_time are required")
	}
	if !start.Before(end) {
		return Window{}, newError(KindInvalidRange, "start_time must be before end_time")
	}
	return Window{Start: start.UTC(), End: end.UTC()}, nil
}

func (w Window) Overlaps(start, end time.Time) bool {
	return w.Start.Before(end) && w.End.After(start)
}

// DayHour returns the weekday (Monday=0 .. Sunday=6) and hour of the window
// start in loc.
func (w Window) DayHour(loc *time.Location) (day, hour int) {
	if loc == nil {
		loc = time.UTC
	}
	t := w.Start.In(loc)
	return DayIndex(t.Weekday()), t.Hour()
}

// DayIndex maps time.Weekday (Sunday=0) onto Monday=0 .. Sunday=6.
func DayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
