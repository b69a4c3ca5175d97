package schedule

import (
	"time"
)

// =============================================================================
// DAY - Calendar date at day granularity (this IS a calendar-driven system)
// =============================================================================

// Day is a calendar date pinned to UTC midnight. All scheduling math in this
// package happens at day granularity; wall-clock time never matters.
type Day struct {
	t time.Time
}

// Constructors
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

func Today() Day {
	return DayOf(time.Now())
}

// dayFormats are tried in order by ParseDay. Upstream exports are not
// consistent about date rendering, so parsing is deliberately lenient.
var dayFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// ParseDay parses a date string leniently. The second return value reports
// whether any known format matched; callers decide whether a miss is a
// dropped constraint or a hard data-shape error.
func ParseDay(s string) (Day, bool) {
	if s == "" {
		return Day{}, false
	}
	for _, layout := range dayFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return DayOf(t), true
		}
	}
	return Day{}, false
}

// MustDay parses an ISO date or panics. Test and scenario fixture helper.
func MustDay(s string) Day {
	d, ok := ParseDay(s)
	if !ok {
		panic("schedule: unparseable day: " + s)
	}
	return d
}

// Comparison
func (d Day) Before(other Day) bool        { return d.t.Before(other.t) }
func (d Day) After(other Day) bool         { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool         { return d.t.Equal(other.t) }
func (d Day) BeforeOrEqual(other Day) bool { return !d.t.After(other.t) }
func (d Day) AfterOrEqual(other Day) bool  { return !d.t.Before(other.t) }

// Arithmetic
func (d Day) AddDays(n int) Day   { return DayOf(d.t.AddDate(0, 0, n)) }
func (d Day) AddMonths(n int) Day { return DayOf(d.t.AddDate(0, n, 0)) }
func (d Day) AddYears(n int) Day  { return DayOf(d.t.AddDate(n, 0, 0)) }

// DaysBetween returns the signed day count from one date to the other.
func DaysBetween(from, to Day) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// Properties
func (d Day) IsZero() bool          { return d.t.IsZero() }
func (d Day) Weekday() time.Weekday { return d.t.Weekday() }
func (d Day) Time() time.Time       { return d.t }
func (d Day) String() string        { return d.t.Format("2006-01-02") }

// =============================================================================
// WEEK - The seven-day scheduling window
// =============================================================================

// DaysPerWeek is the length of every scheduling window.
const DaysPerWeek = 7

// Week is the seven-day window starting at WeekStart (conventionally a
// Monday, though nothing below depends on the weekday).
type Week struct {
	Start Day
}

// Days returns the seven days of the week in order.
func (w Week) Days() [DaysPerWeek]Day {
	var days [DaysPerWeek]Day
	for i := range days {
		days[i] = w.Start.AddDays(i)
	}
	return days
}

// End returns the last day of the window (Start + 6).
func (w Week) End() Day { return w.Start.AddDays(DaysPerWeek - 1) }

// Contains reports whether d falls inside the window.
func (w Week) Contains(d Day) bool {
	return d.AfterOrEqual(w.Start) && d.BeforeOrEqual(w.End())
}

// Index returns d's offset from Start, or -1 when d is outside the window.
func (w Week) Index(d Day) int {
	n := DaysBetween(w.Start, d)
	if n < 0 || n >= DaysPerWeek {
		return -1
	}
	return n
}
