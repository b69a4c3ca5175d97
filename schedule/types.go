/*
Package schedule implements the weekly press-loan scheduling pipeline.

PURPOSE:
  Each week, for one regional office, the pipeline decides which fleet
  vehicles (by VIN) go to which media partners. It joins the fleet calendar,
  partner eligibility, cooldown state, and publication history into a
  candidate set, scores every candidate, and greedily commits the ones that
  clear every live constraint: availability, cooldown, annual tier caps,
  per-day office capacity, and per-partner weekly limits.

PIPELINE:
  inputs -> availability grid ─┐
            cooldown flags    ─┼─> candidate join -> scorer -> greedy assigner
            publication stats ─┘         (tier caps + capacity ledger feed the
                                          assigner's admission checks)

KEY CONCEPTS IN THIS FILE (types.go):
  - VIN / PersonID / Office: type-safe identifiers
  - Rank: closed ordinal tier set with a canonicalizer
  - Input records: Vehicle, Partner, Eligibility, Rule, LoanRecord,
    Activity, CapacitySlot
  - Candidate: a feasible (vin, partner, week) pairing, immutable per run
  - Assignment: a committed candidate with a concrete start day

DESIGN PRINCIPLES:
  1. Typed records everywhere; joins are indexed map lookups, not merges.
  2. Unknown is not zero: optional values use pointers (publication rate)
     or zero Days (missing dates) and are never collapsed to a worst case.
  3. Everything inside a run is pure; only the final assignment list leaves.

SEE ALSO:
  - engine.go: run orchestration
  - assigner.go: the greedy committer
  - provider.go: the read-only data source interface
*/
package schedule

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type VIN string
type PersonID string
type Office string

// =============================================================================
// RANK - Closed ordinal tier set
// =============================================================================

// Rank is a partner's quality tier for one make. The set is closed; free-form
// strings from upstream fold into it through ParseRank.
type Rank int

const (
	RankUnranked Rank = iota
	RankPending
	RankC
	RankB
	RankA
	RankAPlus
)

func (r Rank) String() string {
	switch r {
	case RankAPlus:
		return "A+"
	case RankA:
		return "A"
	case RankB:
		return "B"
	case RankC:
		return "C"
	case RankPending:
		return "Pending"
	default:
		return "Unranked"
	}
}

// ParseRank canonicalizes a free-form rank string. Folding is
// case-insensitive and whitespace-blind: "A PLUS", "a+", and "A +" all
// yield RankAPlus. Anything unrecognized is RankUnranked.
func ParseRank(s string) Rank {
	folded := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	switch folded {
	case "A+", "APLUS", "A-PLUS":
		return RankAPlus
	case "A":
		return RankA
	case "B":
		return RankB
	case "C":
		return RankC
	case "PENDING":
		return RankPending
	default:
		return RankUnranked
	}
}

// =============================================================================
// INPUT RECORDS - Read-only rows from the operational store
// =============================================================================

// Vehicle is one fleet unit. InServiceDate and TurnInDate are optional;
// a zero Day means "no constraint in that dimension".
type Vehicle struct {
	VIN           VIN
	Make          string
	Model         string
	Office        Office
	InServiceDate Day
	TurnInDate    Day
}

// Partner is a media outlet person who may receive a loaner.
type Partner struct {
	ID        PersonID
	Name      string
	Office    Office
	Latitude  *float64
	Longitude *float64
}

// Eligibility approves a partner for one make at a rank.
type Eligibility struct {
	PersonID PersonID
	Make     string
	Rank     Rank
}

// Rule carries the loan policy for a (make, rank) pair. CooldownDays is
// optional; nil defers to the run-level default.
type Rule struct {
	Make           string
	Rank           Rank
	LoanCapPerYear int
	CooldownDays   *int
}

// LoanRecord is one historical loan. Model may be empty (older rows);
// ClipsReceived is free-form text normalized by NormalizeClips.
type LoanRecord struct {
	ActivityID    string
	PersonID      PersonID
	Make          string
	Model         string
	Start         Day
	End           Day
	ClipsReceived string
}

// Activity is a current fleet booking (service, event, another loan) that
// blocks the VIN for the closed interval [Start, End].
type Activity struct {
	ActivityID string
	VIN        VIN
	Start      Day
	End        Day
	Type       string
}

// CapacitySlot is the ops team's hand-off capacity for one office day.
type CapacitySlot struct {
	Office Office
	Date   Day
	Slots  int
}

// =============================================================================
// CANDIDATE - A feasible (vin, partner, week) pairing
// =============================================================================

// Candidate is one feasible pairing for the target week, produced by the
// candidate join and immutable afterwards (the scorer fills Score).
type Candidate struct {
	VIN       VIN
	PersonID  PersonID
	Market    Office
	Make      string
	Model     string
	WeekStart Day

	AvailableDays int
	DayFree       [DaysPerWeek]bool
	CooldownOK    bool

	// PublicationRate is nil when the partner has no observed loans for the
	// make. Nil means unknown, which scores as "no history bonus" — it must
	// never be rendered as a zero rate.
	PublicationRate *decimal.Decimal
	Supported       bool
	Coverage        decimal.Decimal

	Rank  Rank
	Score int
}

// =============================================================================
// ASSIGNMENT - Terminal output of a run
// =============================================================================

// Assignment is a committed candidate with a concrete loan window.
type Assignment struct {
	VIN       VIN
	PersonID  PersonID
	StartDay  Day
	EndDay    Day
	Make      string
	Model     string
	Office    Office
	Score     int
	WeekStart Day
}
