/*
cooldown.go - Per-partner cooldown state at model granularity

PURPOSE:
  A loan of (make, model) to a partner blocks new loans of the SAME MODEL to
  the same partner for the cooldown period after the loan ends. Other models
  of the same make stay admissible. When a historical row doesn't record the
  model, its block applies at make granularity for that row.

LOOKUP PRECEDENCE (two-level, documented, not accidental join behavior):
  1. (person, make, model) exact grain
  2. (person, make) make-level grain (model-less history rows)
  A grain with no history at all is admissible: missing means OK.

COOLDOWN PERIOD:
  From the rule matching (make, partner's rank for make) when that rule
  carries one; otherwise the run default (60 days).

SEE ALSO:
  - tiercap.go: RuleBook, which resolves the per-rule period
  - candidates.go: applies the flags with the same fallback
*/
package schedule

// CooldownStatus is the evaluated state for one grain.
type CooldownStatus struct {
	OK    bool
	Until Day
}

type cooldownKey struct {
	Person PersonID
	Make   string
	Model  string // "" = make-level grain
}

// CooldownSet holds cooldown state for every (person, make, model) grain
// observed in history. Absent grains are admissible.
type CooldownSet struct {
	weekStart Day
	byGrain   map[cooldownKey]CooldownStatus
}

// ComputeCooldowns evaluates cooldown state as of weekStart. Eligibility is
// needed to resolve each partner's rank for the rule lookup; defaultDays
// applies when no rule covers the grain.
func ComputeCooldowns(history []LoanRecord, eligibility []Eligibility, rules *RuleBook, weekStart Day, defaultDays int) *CooldownSet {
	rankFor := make(map[cooldownKey]Rank, len(eligibility))
	for _, e := range eligibility {
		rankFor[cooldownKey{Person: e.PersonID, Make: e.Make}] = e.Rank
	}

	cs := &CooldownSet{weekStart: weekStart, byGrain: make(map[cooldownKey]CooldownStatus)}
	for _, loan := range history {
		if loan.End.IsZero() {
			// No end date, no window to anchor the cooldown on.
			continue
		}
		rank := rankFor[cooldownKey{Person: loan.PersonID, Make: loan.Make}]
		days := rules.CooldownDays(loan.Make, rank, defaultDays)
		until := loan.End.AddDays(days)

		key := cooldownKey{Person: loan.PersonID, Make: loan.Make, Model: loan.Model}
		if cur, ok := cs.byGrain[key]; !ok || until.After(cur.Until) {
			cs.byGrain[key] = CooldownStatus{OK: weekStart.AfterOrEqual(until), Until: until}
		}
	}
	return cs
}

// Status resolves a grain with the model -> make fallback. Grains with no
// history report OK with a zero Until.
func (cs *CooldownSet) Status(person PersonID, make, model string) CooldownStatus {
	if model != "" {
		if st, ok := cs.byGrain[cooldownKey{Person: person, Make: make, Model: model}]; ok {
			return st
		}
	}
	if st, ok := cs.byGrain[cooldownKey{Person: person, Make: make}]; ok {
		return st
	}
	return CooldownStatus{OK: true}
}

// Len returns the number of evaluated grains.
func (cs *CooldownSet) Len() int { return len(cs.byGrain) }
