package schedule

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeClips(t *testing.T) {
	cases := []struct {
		in        string
		published bool
		known     bool
	}{
		{"yes", true, true},
		{"YES", true, true},
		{"true", true, true},
		{"no", false, true},
		{"false", false, true},
		{"", false, false},
		{"null", false, false},
		{"None", false, false},
		{"NaN", false, false},
		{"0", false, true},
		{"1.0", true, true},
		{"3", true, true},
		{"-1", true, true},
		{"maybe", false, false},
	}
	for _, tc := range cases {
		published, known := NormalizeClips(tc.in)
		assert.Equal(t, tc.known, known, "input %q", tc.in)
		assert.Equal(t, tc.published, published, "input %q", tc.in)
	}
}

func TestComputePublicationStats_RateIsNilWhenNothingObserved(t *testing.T) {
	// GIVEN: Two loans, neither with a known clips outcome
	asOf := MustDay("2026-09-07")
	history := []LoanRecord{
		{ActivityID: "h1", PersonID: "p1", Make: "Toyota", End: asOf.AddDays(-30), ClipsReceived: ""},
		{ActivityID: "h2", PersonID: "p1", Make: "Toyota", End: asOf.AddDays(-60), ClipsReceived: "null"},
	}

	set := ComputePublicationStats(history, asOf, DefaultWindowMonths, DefaultMinObserved)
	st, ok := set.Get("p1", "Toyota")
	require.True(t, ok)

	// THEN: Unknown, not zero
	assert.Nil(t, st.Rate)
	assert.Equal(t, 2, st.LoansTotal)
	assert.Equal(t, 0, st.LoansObserved)
	assert.False(t, st.Supported)
	assert.True(t, st.Coverage.IsZero())
}

func TestComputePublicationStats_RateAndCoverage(t *testing.T) {
	// GIVEN: Four loans: published, not published, numeric published, unknown
	asOf := MustDay("2026-09-07")
	history := []LoanRecord{
		{ActivityID: "h1", PersonID: "p1", Make: "Toyota", End: asOf.AddDays(-10), ClipsReceived: "yes"},
		{ActivityID: "h2", PersonID: "p1", Make: "Toyota", End: asOf.AddDays(-20), ClipsReceived: "no"},
		{ActivityID: "h3", PersonID: "p1", Make: "Toyota", End: asOf.AddDays(-30), ClipsReceived: "2"},
		{ActivityID: "h4", PersonID: "p1", Make: "Toyota", End: asOf.AddDays(-40), ClipsReceived: ""},
	}

	set := ComputePublicationStats(history, asOf, DefaultWindowMonths, DefaultMinObserved)
	st, ok := set.Get("p1", "Toyota")
	require.True(t, ok)

	require.NotNil(t, st.Rate)
	assert.True(t, st.Rate.Equal(decimal.NewFromInt(2).Div(decimal.NewFromInt(3))),
		"rate = %s", st.Rate)
	assert.True(t, st.Coverage.Equal(decimal.NewFromFloat(0.75)), "coverage = %s", st.Coverage)
	assert.Equal(t, 4, st.LoansTotal)
	assert.Equal(t, 3, st.LoansObserved)
	assert.Equal(t, 2, st.PublicationsObserved)
	assert.True(t, st.Supported) // 3 observed >= min 3
}

func TestComputePublicationStats_WindowExcludesOldLoans(t *testing.T) {
	asOf := MustDay("2026-09-07")
	history := []LoanRecord{
		{ActivityID: "h1", PersonID: "p1", Make: "Toyota", End: asOf.AddMonths(-25), ClipsReceived: "yes"},
		{ActivityID: "h2", PersonID: "p1", Make: "Toyota", End: asOf.AddMonths(-23), ClipsReceived: "yes"},
	}
	set := ComputePublicationStats(history, asOf, 24, 3)

	st, ok := set.Get("p1", "Toyota")
	require.True(t, ok)
	assert.Equal(t, 1, st.LoansTotal)
}

func TestComputePublicationStats_GrainsSplitByMake(t *testing.T) {
	asOf := MustDay("2026-09-07")
	history := []LoanRecord{
		{ActivityID: "h1", PersonID: "p1", Make: "Toyota", End: asOf.AddDays(-10), ClipsReceived: "yes"},
		{ActivityID: "h2", PersonID: "p1", Make: "Honda", End: asOf.AddDays(-10), ClipsReceived: "no"},
	}
	set := ComputePublicationStats(history, asOf, 24, 1)

	toyota, ok := set.Get("p1", "Toyota")
	require.True(t, ok)
	honda, ok := set.Get("p1", "Honda")
	require.True(t, ok)

	assert.True(t, toyota.Rate.Equal(decimal.NewFromInt(1)))
	assert.True(t, honda.Rate.IsZero())
	assert.True(t, toyota.Supported)
}

func TestComputePublicationStats_AbsentGrain(t *testing.T) {
	set := ComputePublicationStats(nil, MustDay("2026-09-07"), 24, 3)
	_, ok := set.Get("p1", "Toyota")
	assert.False(t, ok)
}
