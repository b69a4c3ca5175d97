/*
publication.go - Rolling 24-month publication stats per (partner, make)

PURPOSE:
  For each (partner, make), over loans ending in the trailing window:
    loans_total        all loans in window
    loans_observed     loans with a known clips outcome
    publications       observed loans whose clips normalized to published
    rate               publications / observed, NIL when nothing observed
    coverage           observed / total (0 when total is 0)
    supported          observed >= min_observed

  The nil-vs-zero distinction on rate is load-bearing. A partner nobody has
  tracked is UNKNOWN, not a zero performer; the scorer treats nil as "no
  history bonus", never as worst case.

CLIPS NORMALIZATION (free-form text tolerated):
  {true, yes}        -> published
  {false, no}        -> not published
  {"", null, none, nan} -> unknown
  any numeric        -> non-zero published, zero not

SEE ALSO:
  - score.go: turns rate into the bounded history bonus
*/
package schedule

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Publication stat defaults.
const (
	DefaultWindowMonths = 24
	DefaultMinObserved  = 3
)

// PublicationStats is the windowed outcome record for one (partner, make).
type PublicationStats struct {
	PersonID PersonID
	Make     string

	LoansTotal           int
	LoansObserved        int
	PublicationsObserved int

	// Rate is nil when LoansObserved is 0: unknown, not zero.
	Rate      *decimal.Decimal
	Coverage  decimal.Decimal
	Supported bool
}

type publicationKey struct {
	Person PersonID
	Make   string
}

// PublicationSet indexes stats by (partner, make).
type PublicationSet struct {
	byGrain map[publicationKey]PublicationStats
}

// Get returns the stats for a grain, with ok=false when nothing in the
// window touched it.
func (ps *PublicationSet) Get(person PersonID, make string) (PublicationStats, bool) {
	st, ok := ps.byGrain[publicationKey{Person: person, Make: make}]
	return st, ok
}

// Len returns the number of populated grains.
func (ps *PublicationSet) Len() int { return len(ps.byGrain) }

// NormalizeClips folds a free-form clips value into (published, known).
func NormalizeClips(raw string) (published, known bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "", "null", "none", "nan":
		return false, false
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f != 0, true
	}
	return false, false
}

// ComputePublicationStats aggregates the trailing window ending at asOf.
func ComputePublicationStats(history []LoanRecord, asOf Day, windowMonths, minObserved int) *PublicationSet {
	windowStart := asOf.AddMonths(-windowMonths)

	type tally struct{ total, observed, published int }
	tallies := make(map[publicationKey]*tally)

	for _, loan := range history {
		anchor := loan.End
		if anchor.IsZero() {
			anchor = loan.Start
		}
		if anchor.IsZero() || anchor.Before(windowStart) || anchor.After(asOf) {
			continue
		}
		key := publicationKey{Person: loan.PersonID, Make: loan.Make}
		t := tallies[key]
		if t == nil {
			t = &tally{}
			tallies[key] = t
		}
		t.total++
		if published, known := NormalizeClips(loan.ClipsReceived); known {
			t.observed++
			if published {
				t.published++
			}
		}
	}

	set := &PublicationSet{byGrain: make(map[publicationKey]PublicationStats, len(tallies))}
	for key, t := range tallies {
		st := PublicationStats{
			PersonID:             key.Person,
			Make:                 key.Make,
			LoansTotal:           t.total,
			LoansObserved:        t.observed,
			PublicationsObserved: t.published,
			Supported:            t.observed >= minObserved,
		}
		if t.observed > 0 {
			rate := decimal.NewFromInt(int64(t.published)).Div(decimal.NewFromInt(int64(t.observed)))
			st.Rate = &rate
		}
		if t.total > 0 {
			st.Coverage = decimal.NewFromInt(int64(t.observed)).Div(decimal.NewFromInt(int64(t.total)))
		}
		set.byGrain[key] = st
	}
	return set
}
