package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var assignWeek = MustDay("2026-09-07")

func fullCapacity(office Office, slots int) *CapacityLedger {
	week := Week{Start: assignWeek}
	var rows []CapacitySlot
	for _, day := range week.Days() {
		rows = append(rows, CapacitySlot{Office: office, Date: day, Slots: slots})
	}
	return NewCapacityLedger(rows, office, assignWeek)
}

func allFree() [DaysPerWeek]bool {
	return [DaysPerWeek]bool{true, true, true, true, true, true, true}
}

func testCand(vin VIN, person PersonID, score int) Candidate {
	return Candidate{
		VIN: vin, PersonID: person, Market: "LA", Make: "Toyota", Model: "Camry",
		WeekStart: assignWeek, AvailableDays: 7, DayFree: allFree(),
		CooldownOK: true, Rank: RankA, Score: score,
	}
}

func openLedger(cands []Candidate) *TierCapLedger {
	return NewTierCapLedger(cands, nil, NewRuleBook(nil), assignWeek, DefaultOptions())
}

func TestGenerateWeekSchedule_CommitsHighestScoreFirst(t *testing.T) {
	// GIVEN: Two partners competing for one VIN
	cands := []Candidate{
		testCand("V1", "p1", 50),
		testCand("V1", "p2", 80),
	}

	result := GenerateWeekSchedule(cands, openLedger(cands), fullCapacity("LA", 3), "LA", assignWeek, DefaultOptions())

	// THEN: The higher score wins the VIN; the loser is a vin_used skip
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, PersonID("p2"), result.Assignments[0].PersonID)
	assert.Equal(t, 1, result.Skips[SkipVINUsed])
}

func TestGenerateWeekSchedule_VINAssignedAtMostOnce(t *testing.T) {
	cands := []Candidate{
		testCand("V1", "p1", 50),
		testCand("V1", "p2", 50),
		testCand("V1", "p3", 50),
	}
	result := GenerateWeekSchedule(cands, openLedger(cands), fullCapacity("LA", 9), "LA", assignWeek, DefaultOptions())

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, 2, result.Skips[SkipVINUsed])
}

func TestGenerateWeekSchedule_PartnerWeeklyLimit(t *testing.T) {
	// GIVEN: One partner eligible for two VINs, limit 1
	cands := []Candidate{
		testCand("V1", "p1", 80),
		testCand("V2", "p1", 50),
	}
	result := GenerateWeekSchedule(cands, openLedger(cands), fullCapacity("LA", 9), "LA", assignWeek, DefaultOptions())

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, VIN("V1"), result.Assignments[0].VIN)
	assert.Equal(t, 1, result.Skips[SkipPartnerLimit])

	// Raising the limit admits both
	opts := DefaultOptions()
	opts.MaxPerPartnerPerWeek = 2
	result = GenerateWeekSchedule(cands, openLedger(cands), fullCapacity("LA", 9), "LA", assignWeek, opts)
	assert.Len(t, result.Assignments, 2)
}

func TestGenerateWeekSchedule_TierCapDrawsDown(t *testing.T) {
	// GIVEN: A B-rank partner (cap 2) facing three VINs, limit lifted
	cands := []Candidate{
		testCand("V1", "p1", 80),
		testCand("V2", "p1", 70),
		testCand("V3", "p1", 60),
	}
	for i := range cands {
		cands[i].Rank = RankB
	}
	opts := DefaultOptions()
	opts.MaxPerPartnerPerWeek = 5

	ledger := NewTierCapLedger(cands, nil, NewRuleBook(nil), assignWeek, opts)
	result := GenerateWeekSchedule(cands, ledger, fullCapacity("LA", 9), "LA", assignWeek, opts)

	assert.Len(t, result.Assignments, 2)
	assert.Equal(t, 1, result.Skips[SkipTierCap])

	// Disabling tier caps admits all three
	opts.EnableTierCaps = false
	result = GenerateWeekSchedule(cands, NewTierCapLedger(cands, nil, NewRuleBook(nil), assignWeek, opts), fullCapacity("LA", 9), "LA", assignWeek, opts)
	assert.Len(t, result.Assignments, 3)
}

func TestGenerateWeekSchedule_StartDayIsEarliestFeasible(t *testing.T) {
	// GIVEN: A VIN blocked Monday and Tuesday
	c := testCand("V1", "p1", 50)
	c.DayFree[0] = false
	c.DayFree[1] = false
	cands := []Candidate{c}

	result := GenerateWeekSchedule(cands, openLedger(cands), fullCapacity("LA", 3), "LA", assignWeek, DefaultOptions())

	// THEN: Wednesday start; the loan window runs past the grid unconstrained
	require.Len(t, result.Assignments, 1)
	a := result.Assignments[0]
	assert.Equal(t, assignWeek.AddDays(2).String(), a.StartDay.String())
	assert.Equal(t, assignWeek.AddDays(8).String(), a.EndDay.String())
}

func TestGenerateWeekSchedule_CapacityShiftsStartDay(t *testing.T) {
	// GIVEN: Monday's quota already consumed by a stronger candidate
	cands := []Candidate{
		testCand("V1", "p1", 80),
		testCand("V2", "p2", 50),
	}
	week := Week{Start: assignWeek}
	weekDays := week.Days()
	rows := []CapacitySlot{{Office: "LA", Date: weekDays[0], Slots: 1}}
	for _, day := range weekDays[1:] {
		rows = append(rows, CapacitySlot{Office: "LA", Date: day, Slots: 1})
	}
	capacity := NewCapacityLedger(rows, "LA", assignWeek)

	result := GenerateWeekSchedule(cands, openLedger(cands), capacity, "LA", assignWeek, DefaultOptions())

	require.Len(t, result.Assignments, 2)
	assert.Equal(t, assignWeek.String(), result.Assignments[0].StartDay.String())
	assert.Equal(t, assignWeek.AddDays(1).String(), result.Assignments[1].StartDay.String())
}

func TestGenerateWeekSchedule_ZeroCapacityWeekCommitsNothing(t *testing.T) {
	// GIVEN: No ops_capacity rows at all (every day defaults to 0 slots)
	cands := []Candidate{testCand("V1", "p1", 80)}
	capacity := NewCapacityLedger(nil, "LA", assignWeek)

	result := GenerateWeekSchedule(cands, openLedger(cands), capacity, "LA", assignWeek, DefaultOptions())

	assert.Empty(t, result.Assignments)
	assert.Equal(t, 1, result.Skips[SkipNoStartDay])

	// Disabling the capacity constraint admits the candidate
	opts := DefaultOptions()
	opts.EnableCapacity = false
	result = GenerateWeekSchedule(cands, openLedger(cands), NewCapacityLedger(nil, "LA", assignWeek), "LA", assignWeek, opts)
	assert.Len(t, result.Assignments, 1)
}

func TestGenerateWeekSchedule_ShortLoanFitsInsideWeek(t *testing.T) {
	// GIVEN: A 3-day loan and a VIN free only Thursday through Saturday
	c := testCand("V1", "p1", 50)
	c.DayFree = [DaysPerWeek]bool{false, false, false, true, true, true, false}
	cands := []Candidate{c}
	opts := DefaultOptions()
	opts.LoanLengthDays = 3
	opts.MinAvailableDays = 3

	result := GenerateWeekSchedule(cands, openLedger(cands), fullCapacity("LA", 3), "LA", assignWeek, opts)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, assignWeek.AddDays(3).String(), result.Assignments[0].StartDay.String())
	assert.Equal(t, assignWeek.AddDays(5).String(), result.Assignments[0].EndDay.String())
}

func TestGenerateWeekSchedule_NoWindowMeansSkip(t *testing.T) {
	// GIVEN: Scattered free days that never form a window under a 3-day loan
	c := testCand("V1", "p1", 50)
	c.DayFree = [DaysPerWeek]bool{true, false, true, false, true, false, true}
	cands := []Candidate{c}
	opts := DefaultOptions()
	opts.LoanLengthDays = 3
	opts.MinAvailableDays = 3

	result := GenerateWeekSchedule(cands, openLedger(cands), fullCapacity("LA", 3), "LA", assignWeek, opts)

	// Saturday start works: only the in-week tail must be free
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, assignWeek.AddDays(6).String(), result.Assignments[0].StartDay.String())

	// With the whole week blocked there is nothing left
	c.DayFree = [DaysPerWeek]bool{}
	cands = []Candidate{c}
	result = GenerateWeekSchedule(cands, openLedger(cands), fullCapacity("LA", 3), "LA", assignWeek, opts)
	assert.Empty(t, result.Assignments)
	assert.Equal(t, 1, result.Skips[SkipNoStartDay])
}

func TestGenerateWeekSchedule_EmptyCandidateSet(t *testing.T) {
	result := GenerateWeekSchedule(nil, openLedger(nil), fullCapacity("LA", 3), "LA", assignWeek, DefaultOptions())
	assert.Empty(t, result.Assignments)
	assert.Empty(t, result.Skips)
}
