package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleBook_AnnualCapPrecedence(t *testing.T) {
	// GIVEN: An explicit (Toyota, A) rule of 4
	rb := NewRuleBook([]Rule{{Make: "Toyota", Rank: RankA, LoanCapPerYear: 4}})
	opts := DefaultOptions()

	// THEN: The rule beats the ladder for its own grain only
	assert.Equal(t, 4, rb.AnnualCap("Toyota", RankA, opts))
	assert.Equal(t, 6, rb.AnnualCap("Honda", RankA, opts))
	assert.Equal(t, 2, rb.AnnualCap("Toyota", RankB, opts))
	assert.Equal(t, 0, rb.AnnualCap("Toyota", RankC, opts))
	assert.Equal(t, UnlimitedCap, rb.AnnualCap("Toyota", RankAPlus, opts))
}

func TestRuleBook_UnrankedCapConfigurable(t *testing.T) {
	rb := NewRuleBook(nil)
	opts := DefaultOptions()

	assert.Equal(t, 0, rb.AnnualCap("Toyota", RankPending, opts))
	assert.Equal(t, 0, rb.AnnualCap("Toyota", RankUnranked, opts))

	opts.UnrankedCap = 1
	assert.Equal(t, 1, rb.AnnualCap("Toyota", RankPending, opts))
	assert.Equal(t, 1, rb.AnnualCap("Toyota", RankUnranked, opts))
}

func TestRuleBook_LaterDuplicateWins(t *testing.T) {
	rb := NewRuleBook([]Rule{
		{Make: "Toyota", Rank: RankA, LoanCapPerYear: 4},
		{Make: "Toyota", Rank: RankA, LoanCapPerYear: 9},
	})
	r, ok := rb.Lookup("Toyota", RankA)
	require.True(t, ok)
	assert.Equal(t, 9, r.LoanCapPerYear)
}

func TestLoansLast12Months_WindowBoundaries(t *testing.T) {
	// GIVEN: Loans ending exactly at both edges of the trailing year
	weekStart := MustDay("2026-09-07")
	history := []LoanRecord{
		{ActivityID: "h1", PersonID: "p1", Make: "Toyota", End: weekStart.AddDays(-365)}, // inclusive lower edge
		{ActivityID: "h2", PersonID: "p1", Make: "Toyota", End: weekStart.AddDays(-366)}, // just outside
		{ActivityID: "h3", PersonID: "p1", Make: "Toyota", End: weekStart.AddDays(-1)},   // inside
		{ActivityID: "h4", PersonID: "p1", Make: "Toyota", End: weekStart},               // exclusive upper edge
	}

	counts := LoansLast12Months(history, weekStart, false)
	assert.Equal(t, 2, counts["p1"]["Toyota"])
}

func TestLoansLast12Months_InProgressOptIn(t *testing.T) {
	// GIVEN: A loan started before week start with no end yet
	weekStart := MustDay("2026-09-07")
	history := []LoanRecord{
		{ActivityID: "h1", PersonID: "p1", Make: "Toyota", Start: weekStart.AddDays(-3)},
	}

	// THEN: Excluded by default, counted only on opt-in
	assert.Empty(t, LoansLast12Months(history, weekStart, false))
	assert.Equal(t, 1, LoansLast12Months(history, weekStart, true)["p1"]["Toyota"])
}

func TestTierCapLedger_AdmitAndCommit(t *testing.T) {
	// GIVEN: A B-rank partner (ladder cap 2) with one loan already used
	weekStart := MustDay("2026-09-07")
	cands := []Candidate{{VIN: "V1", PersonID: "p1", Make: "Toyota", Rank: RankB}}
	history := []LoanRecord{
		{ActivityID: "h1", PersonID: "p1", Make: "Toyota", End: weekStart.AddDays(-30)},
	}

	ledger := NewTierCapLedger(cands, history, NewRuleBook(nil), weekStart, DefaultOptions())

	require.Equal(t, 1, ledger.Remaining("p1", "Toyota"))
	assert.True(t, ledger.Admit("p1", "Toyota"))

	ledger.Commit("p1", "Toyota")
	assert.Equal(t, 0, ledger.Remaining("p1", "Toyota"))
	assert.False(t, ledger.Admit("p1", "Toyota"))
}

func TestTierCapLedger_CRankStartsExhausted(t *testing.T) {
	cands := []Candidate{{VIN: "V1", PersonID: "p1", Make: "Toyota", Rank: RankC}}
	ledger := NewTierCapLedger(cands, nil, NewRuleBook(nil), MustDay("2026-09-07"), DefaultOptions())
	assert.False(t, ledger.Admit("p1", "Toyota"))
}

func TestTierCapLedger_APlusIsEffectivelyUnlimited(t *testing.T) {
	// GIVEN: An A+ partner with heavy trailing-year usage
	weekStart := MustDay("2026-09-07")
	cands := []Candidate{{VIN: "V1", PersonID: "p1", Make: "Toyota", Rank: RankAPlus}}
	var history []LoanRecord
	for i := 0; i < 40; i++ {
		history = append(history, LoanRecord{PersonID: "p1", Make: "Toyota", End: weekStart.AddDays(-10 - i)})
	}

	ledger := NewTierCapLedger(cands, history, NewRuleBook(nil), weekStart, DefaultOptions())
	assert.True(t, ledger.Admit("p1", "Toyota"))
	assert.Equal(t, UnlimitedCap-40, ledger.Remaining("p1", "Toyota"))
}

func TestTierCapLedger_GrainIsPerMake(t *testing.T) {
	// Usage against one make never charges another
	weekStart := MustDay("2026-09-07")
	cands := []Candidate{
		{VIN: "V1", PersonID: "p1", Make: "Toyota", Rank: RankB},
		{VIN: "V2", PersonID: "p1", Make: "Honda", Rank: RankB},
	}
	history := []LoanRecord{
		{ActivityID: "h1", PersonID: "p1", Make: "Toyota", End: weekStart.AddDays(-30)},
		{ActivityID: "h2", PersonID: "p1", Make: "Toyota", End: weekStart.AddDays(-60)},
	}

	ledger := NewTierCapLedger(cands, history, NewRuleBook(nil), weekStart, DefaultOptions())
	assert.False(t, ledger.Admit("p1", "Toyota"))
	assert.True(t, ledger.Admit("p1", "Honda"))
	assert.Equal(t, 2, ledger.Remaining("p1", "Honda"))
}
