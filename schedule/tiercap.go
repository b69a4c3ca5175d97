/*
tiercap.go - Annual tier caps: rule book, fallback ladder, usage counts

PURPOSE:
  Each (partner, make) pair has an annual loan cap. Resolution order:

  1. Explicit Rule for (make, partner's rank for the make).
  2. Rank-keyed fallback ladder:
       A+ -> unlimited sentinel, A -> 6, B -> 2, C -> 0,
       Pending/unranked -> UnrankedCap (0 unless configured up).

  Usage is the count of loans in the trailing 12 months; a candidate is
  admissible while loans_12m + committed_in_run < cap.

SEE ALSO:
  - options.go: the ladder defaults
  - assigner.go: draws down the ledger on commit
*/
package schedule

// =============================================================================
// RULE BOOK - Indexed (make, rank) policy lookup
// =============================================================================

type ruleKey struct {
	Make string
	Rank Rank
}

// RuleBook indexes explicit rules by (make, rank).
type RuleBook struct {
	byKey map[ruleKey]Rule
}

// NewRuleBook indexes the rule rows. Later duplicates win, matching the
// store's "latest row is authoritative" convention.
func NewRuleBook(rules []Rule) *RuleBook {
	rb := &RuleBook{byKey: make(map[ruleKey]Rule, len(rules))}
	for _, r := range rules {
		rb.byKey[ruleKey{Make: r.Make, Rank: r.Rank}] = r
	}
	return rb
}

// Lookup returns the explicit rule for (make, rank), if any.
func (rb *RuleBook) Lookup(make string, rank Rank) (Rule, bool) {
	r, ok := rb.byKey[ruleKey{Make: make, Rank: rank}]
	return r, ok
}

// CooldownDays resolves the cooldown period for (make, rank), falling back
// to def when no rule carries one.
func (rb *RuleBook) CooldownDays(make string, rank Rank, def int) int {
	if r, ok := rb.Lookup(make, rank); ok && r.CooldownDays != nil {
		return *r.CooldownDays
	}
	return def
}

// AnnualCap resolves the cap for (make, rank) through the rule-then-ladder
// precedence.
func (rb *RuleBook) AnnualCap(make string, rank Rank, opts Options) int {
	if r, ok := rb.Lookup(make, rank); ok {
		return r.LoanCapPerYear
	}
	return opts.fallbackCap(rank)
}

// =============================================================================
// USAGE COUNT - Trailing 12-month consumption
// =============================================================================

type capKey struct {
	Person PersonID
	Make   string
}

// LoansLast12Months counts completed loans per (partner, make) with end_date
// in [weekStart-365d, weekStart). With countInProgress, loans straddling
// weekStart count too.
func LoansLast12Months(history []LoanRecord, weekStart Day, countInProgress bool) map[PersonID]map[string]int {
	windowStart := weekStart.AddDays(-365)
	counts := make(map[PersonID]map[string]int)

	add := func(person PersonID, mk string) {
		if counts[person] == nil {
			counts[person] = map[string]int{}
		}
		counts[person][mk]++
	}

	for _, loan := range history {
		switch {
		case !loan.End.IsZero() && loan.End.AfterOrEqual(windowStart) && loan.End.Before(weekStart):
			add(loan.PersonID, loan.Make)
		case countInProgress && !loan.Start.IsZero() && loan.Start.Before(weekStart) &&
			(loan.End.IsZero() || loan.End.AfterOrEqual(weekStart)):
			add(loan.PersonID, loan.Make)
		}
	}
	return counts
}

// =============================================================================
// TIER-CAP LEDGER - Remaining headroom per (partner, make) within a run
// =============================================================================

// TierCapLedger tracks cap_remaining = cap - loans_12m for every grain the
// run touches. Single-owner, single-writer inside the assigner.
type TierCapLedger struct {
	remaining map[capKey]int
}

// NewTierCapLedger seeds headroom for every candidate grain.
func NewTierCapLedger(candidates []Candidate, history []LoanRecord, rules *RuleBook, weekStart Day, opts Options) *TierCapLedger {
	used := LoansLast12Months(history, weekStart, opts.CountInProgressLoans)

	ledger := &TierCapLedger{remaining: make(map[capKey]int)}
	for _, c := range candidates {
		key := capKey{Person: c.PersonID, Make: c.Make}
		if _, seen := ledger.remaining[key]; seen {
			continue
		}
		cap := rules.AnnualCap(c.Make, c.Rank, opts)
		ledger.remaining[key] = cap - used[c.PersonID][c.Make]
	}
	return ledger
}

// Remaining returns the current headroom for a grain.
func (l *TierCapLedger) Remaining(person PersonID, make string) int {
	return l.remaining[capKey{Person: person, Make: make}]
}

// Admit reports whether one more loan fits under the cap.
func (l *TierCapLedger) Admit(person PersonID, make string) bool {
	return l.remaining[capKey{Person: person, Make: make}] > 0
}

// Commit draws down one loan of headroom.
func (l *TierCapLedger) Commit(person PersonID, make string) {
	l.remaining[capKey{Person: person, Make: make}]--
}
