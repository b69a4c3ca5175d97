/*
engine.go - Run orchestration

PURPOSE:
  One run = one office + one week. The engine reads the seven input tables
  through the DataProvider (the ingest reads fan out concurrently and must
  all land before the join), then drives the synchronous stages:

    ingest -> availability/cooldown/publication -> candidate join
           -> scorer -> greedy assigner -> RunResult

CANCELLATION:
  The context is honored between stages. The assigner has no side effects
  before its final emit, so a cancelled run discards partial output cleanly.

TRUNCATION GUARD:
  Any ingest slice whose length equals Options.PageSize exactly fails the
  run. Upstream pagination bugs that drop the tail of a 1,000-row read look
  exactly like this, and a schedule built on a truncated fleet is worse than
  no schedule.

SEE ALSO:
  - provider.go: the data source contract
  - assigner.go: the final stage
*/
package schedule

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunResult is everything a run produces.
type RunResult struct {
	Office      Office
	WeekStart   Day
	Assignments []Assignment
	Candidates  int
	Vehicles    int
	Skips       map[SkipReason]int
	Elapsed     time.Duration
}

// Engine runs the scheduling pipeline against a DataProvider.
type Engine struct {
	Provider DataProvider
	Options  Options
}

// NewEngine creates an engine with production defaults.
func NewEngine(provider DataProvider) *Engine {
	return &Engine{Provider: provider, Options: DefaultOptions()}
}

// runInputs is the materialized ingest output.
type runInputs struct {
	vehicles    []Vehicle
	partners    []Partner
	eligibility []Eligibility
	rules       []Rule
	history     []LoanRecord
	activity    []Activity
	capacity    []CapacitySlot
}

// Run executes one scheduling run. An empty schedule is a valid outcome;
// only data-shape violations, truncation, and cancellation are errors.
func (e *Engine) Run(ctx context.Context, office Office, weekStart Day) (*RunResult, error) {
	started := time.Now()
	opts := e.Options

	in, err := e.ingest(ctx, office, weekStart)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRunCancelled, err)
	}

	rules := NewRuleBook(in.rules)
	grid := BuildAvailabilityGrid(in.vehicles, in.activity, weekStart, office)
	cooldowns := ComputeCooldowns(in.history, in.eligibility, rules, weekStart, opts.DefaultCooldownDays)
	pubs := ComputePublicationStats(in.history, weekStart, DefaultWindowMonths, DefaultMinObserved)
	eligibility := NewEligibilityIndex(in.eligibility)

	candidates := BuildWeeklyCandidates(grid, cooldowns, pubs, eligibility, in.partners, opts)
	ScoreCandidates(candidates, in.partners)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRunCancelled, err)
	}

	caps := NewTierCapLedger(candidates, in.history, rules, weekStart, opts)
	capacity := NewCapacityLedger(in.capacity, office, weekStart)
	assigned := GenerateWeekSchedule(candidates, caps, capacity, office, weekStart, opts)

	result := &RunResult{
		Office:      office,
		WeekStart:   weekStart,
		Assignments: assigned.Assignments,
		Candidates:  len(candidates),
		Vehicles:    grid.Len(),
		Skips:       assigned.Skips,
		Elapsed:     time.Since(started),
	}
	log.Printf("[Engine] %s week of %s: %d vehicles, %d candidates, %d assignments in %v",
		office, weekStart, result.Vehicles, result.Candidates, len(result.Assignments), result.Elapsed)
	return result, nil
}

// ingest fans the table reads out concurrently and joins on completion.
func (e *Engine) ingest(ctx context.Context, office Office, weekStart Day) (*runInputs, error) {
	in := &runInputs{}
	week := Week{Start: weekStart}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.vehicles, err = e.Provider.Vehicles(ctx, office)
		return err
	})
	g.Go(func() (err error) {
		in.activity, err = e.Provider.CurrentActivity(ctx)
		return err
	})
	g.Go(func() (err error) {
		in.history, err = e.Provider.LoanHistory(ctx)
		return err
	})
	g.Go(func() (err error) {
		if in.partners, err = e.Provider.Partners(ctx); err != nil {
			return err
		}
		if in.eligibility, err = e.Provider.ApprovedMakes(ctx); err != nil {
			return err
		}
		in.rules, err = e.Provider.Rules(ctx)
		return err
	})
	g.Go(func() (err error) {
		in.capacity, err = e.Provider.OpsCapacity(ctx, office, week.Start, week.End())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, check := range []struct {
		table string
		rows  int
	}{
		{"vehicles", len(in.vehicles)},
		{"media_partners", len(in.partners)},
		{"approved_makes", len(in.eligibility)},
		{"rules", len(in.rules)},
		{"loan_history", len(in.history)},
		{"current_activity", len(in.activity)},
		{"ops_capacity", len(in.capacity)},
	} {
		if e.Options.PageSize > 0 && check.rows == e.Options.PageSize {
			return nil, &TruncationError{Table: check.table, Rows: check.rows, PageSize: e.Options.PageSize}
		}
	}
	return in, nil
}
