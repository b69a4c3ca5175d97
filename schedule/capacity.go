package schedule

// =============================================================================
// CAPACITY LEDGER - Office loan starts per day vs ops quota
// =============================================================================

// CapacityLedger tracks remaining hand-off slots per calendar day for one
// office week. Single-owner, single-writer inside the assigner; no locking.
type CapacityLedger struct {
	office    Office
	remaining map[Day]int
}

// NewCapacityLedger seeds the week's seven buckets from ops capacity.
// Days with no ops_capacity row default to 0 slots.
func NewCapacityLedger(slots []CapacitySlot, office Office, weekStart Day) *CapacityLedger {
	ledger := &CapacityLedger{office: office, remaining: make(map[Day]int, DaysPerWeek)}
	week := Week{Start: weekStart}
	for _, day := range week.Days() {
		ledger.remaining[day] = 0
	}
	for _, slot := range slots {
		if slot.Office != office {
			continue
		}
		if _, inWeek := ledger.remaining[slot.Date]; inWeek {
			ledger.remaining[slot.Date] = slot.Slots
		}
	}
	return ledger
}

// Remaining returns the open slots for a day (0 for days outside the week).
func (l *CapacityLedger) Remaining(day Day) int { return l.remaining[day] }

// Available reports whether a loan can start on the day.
func (l *CapacityLedger) Available(day Day) bool { return l.remaining[day] > 0 }

// Commit consumes one slot; false when the bucket is already empty.
func (l *CapacityLedger) Commit(day Day) bool {
	if l.remaining[day] <= 0 {
		return false
	}
	l.remaining[day]--
	return true
}
