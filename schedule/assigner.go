/*
assigner.go - Constrained greedy committer

PURPOSE:
  Walks scored candidates in the scorer's total order and commits every
  candidate that clears all live constraints, updating the ledgers as it
  goes. Greedy is deliberate: the per-row constraints are independent given
  the ledger state, so any admissible order yields a valid schedule, and
  score-ordered greed keeps the highest-value pairings. Global optimality is
  out of scope.

START-DAY SELECTION:
  The earliest day in the week where the VIN is free for the full loan
  window AND a capacity slot remains. Days beyond the grid carry no known
  constraint and count as free (missing data is never a constraint).

ADMISSION (all must hold at commit time):
  - VIN not yet used this week
  - partner below the weekly limit
  - tier-cap headroom remains for (partner, make)
  - a capacity slot remains on the start day

FAILURE SEMANTICS:
  No errors escape. Inadmissible candidates are skipped silently; a run with
  nothing admissible produces an empty schedule, not a failure.

SEE ALSO:
  - score.go: the iteration order
  - capacity.go, tiercap.go: the drawn-down ledgers
*/
package schedule

// SkipReason classifies why a candidate was passed over. Only surfaced in
// aggregate (metrics); never logged per row.
type SkipReason string

const (
	SkipVINUsed      SkipReason = "vin_used"
	SkipPartnerLimit SkipReason = "partner_week_limit"
	SkipTierCap      SkipReason = "tier_cap"
	SkipNoStartDay   SkipReason = "no_start_day"
)

// AssignResult is the assigner's output: the schedule plus aggregate skip
// counts for observability.
type AssignResult struct {
	Assignments []Assignment
	Skips       map[SkipReason]int
}

// GenerateWeekSchedule commits scored candidates against the live ledgers.
// Candidates must already be scored; ordering is imposed here so callers
// cannot accidentally feed an unsorted slice.
func GenerateWeekSchedule(
	candidates []Candidate,
	caps *TierCapLedger,
	capacity *CapacityLedger,
	office Office,
	weekStart Day,
	opts Options,
) *AssignResult {
	SortCandidates(candidates)

	vinUsed := make(map[VIN]bool)
	partnerCount := make(map[PersonID]int)
	result := &AssignResult{Skips: make(map[SkipReason]int)}

	for _, c := range candidates {
		if vinUsed[c.VIN] {
			result.Skips[SkipVINUsed]++
			continue
		}
		if partnerCount[c.PersonID] >= opts.MaxPerPartnerPerWeek {
			result.Skips[SkipPartnerLimit]++
			continue
		}
		if opts.EnableTierCaps && !caps.Admit(c.PersonID, c.Make) {
			result.Skips[SkipTierCap]++
			continue
		}

		startIdx, ok := pickStartDay(c, capacity, weekStart, opts)
		if !ok {
			result.Skips[SkipNoStartDay]++
			continue
		}
		startDay := weekStart.AddDays(startIdx)

		// Commit.
		vinUsed[c.VIN] = true
		partnerCount[c.PersonID]++
		if opts.EnableTierCaps {
			caps.Commit(c.PersonID, c.Make)
		}
		if opts.EnableCapacity {
			capacity.Commit(startDay)
		}
		result.Assignments = append(result.Assignments, Assignment{
			VIN:       c.VIN,
			PersonID:  c.PersonID,
			StartDay:  startDay,
			EndDay:    startDay.AddDays(opts.LoanLengthDays - 1),
			Make:      c.Make,
			Model:     c.Model,
			Office:    office,
			Score:     c.Score,
			WeekStart: weekStart,
		})
	}
	return result
}

// pickStartDay finds the earliest in-week start index where the VIN is free
// for the whole loan window and capacity remains. In-week days must be free;
// window days past the grid are unconstrained.
func pickStartDay(c Candidate, capacity *CapacityLedger, weekStart Day, opts Options) (int, bool) {
	for start := 0; start < DaysPerWeek; start++ {
		if opts.EnableCapacity && !capacity.Available(weekStart.AddDays(start)) {
			continue
		}
		free := true
		for offset := 0; offset < opts.LoanLengthDays; offset++ {
			idx := start + offset
			if idx >= DaysPerWeek {
				break
			}
			if !c.DayFree[idx] {
				free = false
				break
			}
		}
		if free {
			return start, true
		}
	}
	return 0, false
}
