package schedule

// =============================================================================
// OPTIONS - Per-run configuration with spec'd defaults
// =============================================================================

// UnlimitedCap is the sentinel annual cap for ranks with no yearly limit.
// Large enough that no realistic fleet exhausts it, small enough that cap
// arithmetic never overflows.
const UnlimitedCap = 1_000_000

// DefaultPageSize matches the upstream store's page boundary. A bulk read
// returning exactly this many rows fails the run (see engine.go).
const DefaultPageSize = 1000

// Options configures one scheduling run. The zero value is NOT usable;
// start from DefaultOptions.
type Options struct {
	// MinAvailableDays is the weekly availability floor for a VIN to enter
	// the candidate set.
	MinAvailableDays int

	// LoanLengthDays is the length of each committed loan window.
	LoanLengthDays int

	// MaxPerPartnerPerWeek caps assignments per partner in one run.
	MaxPerPartnerPerWeek int

	// DefaultCooldownDays applies when no rule carries a cooldown period.
	DefaultCooldownDays int

	// TierCapFallback maps rank to annual cap when no explicit rule matches.
	TierCapFallback map[Rank]int

	// UnrankedCap is the fallback cap for Pending/unranked partners.
	// 0 blocks them; a positive value unblocks new partners.
	UnrankedCap int

	// AdmitUnlisted, when set, admits partners with no eligibility row under
	// a synthetic C rank instead of excluding them.
	AdmitUnlisted bool

	// CountInProgressLoans, when set, counts loans straddling week start
	// toward the annual tier cap alongside completed ones.
	CountInProgressLoans bool

	// PageSize is the page boundary for the truncation guard; 0 disables
	// the guard.
	PageSize int

	// Admission toggles, for diagnostics. When off, the corresponding
	// check is skipped entirely.
	EnableTierCaps bool
	EnableCooldown bool
	EnableCapacity bool
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		MinAvailableDays:     5,
		LoanLengthDays:       7,
		MaxPerPartnerPerWeek: 1,
		DefaultCooldownDays:  60,
		TierCapFallback:      DefaultTierCapFallback(),
		UnrankedCap:          0,
		PageSize:             DefaultPageSize,
		EnableTierCaps:       true,
		EnableCooldown:       true,
		EnableCapacity:       true,
	}
}

// DefaultTierCapFallback is the rank-keyed cap ladder used when no explicit
// (make, rank) rule exists.
func DefaultTierCapFallback() map[Rank]int {
	return map[Rank]int{
		RankAPlus: UnlimitedCap,
		RankA:     6,
		RankB:     2,
		RankC:     0,
	}
}

// fallbackCap resolves the ladder for a rank, routing Pending/unranked to
// UnrankedCap.
func (o Options) fallbackCap(rank Rank) int {
	switch rank {
	case RankPending, RankUnranked:
		return o.UnrankedCap
	}
	if cap, ok := o.TierCapFallback[rank]; ok {
		return cap
	}
	return o.UnrankedCap
}
