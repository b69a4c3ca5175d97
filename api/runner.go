/*
runner.go - Automated weekly scheduling runner

PURPOSE:
  Periodically checks whether the upcoming week has been scheduled for each
  configured office and triggers a run when it hasn't. The manual
  POST /api/runs path and this runner share the same execution code.

DESIGN:
  - Background goroutine with a configurable check interval
  - Targets the next Monday relative to now
  - Skips offices that already have a completed run for that week
  - Records every run for audit and the ops dashboard

USAGE:
  runner := NewWeeklyRunner(handler, []schedule.Office{"LA", "SEA"})
  runner.Start()
  // ... later
  runner.Stop()

SEE ALSO:
  - handlers.go: ExecuteRun, the shared run path
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fleetline/loan-scheduler/schedule"
)

// WeeklyRunner triggers the upcoming week's run per office.
type WeeklyRunner struct {
	Handler       *Handler
	Offices       []schedule.Office
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewWeeklyRunner creates a runner with a 6-hour check interval.
func NewWeeklyRunner(handler *Handler, offices []schedule.Office) *WeeklyRunner {
	return &WeeklyRunner{
		Handler:       handler,
		Offices:       offices,
		CheckInterval: 6 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the runner.
func (wr *WeeklyRunner) Start() {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if !wr.Enabled || len(wr.Offices) == 0 {
		log.Println("[Runner] Disabled or no offices configured, not starting")
		return
	}

	wr.ticker = time.NewTicker(wr.CheckInterval)
	wr.wg.Add(1)
	go wr.run()

	log.Printf("[Runner] Started for %d office(s), check interval %v", len(wr.Offices), wr.CheckInterval)
}

// Stop stops the runner.
func (wr *WeeklyRunner) Stop() {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if wr.ticker != nil {
		wr.ticker.Stop()
		close(wr.stop)
		wr.wg.Wait()
		log.Println("[Runner] Stopped")
	}
}

func (wr *WeeklyRunner) run() {
	defer wr.wg.Done()

	// Run immediately on start
	wr.checkAndRun()

	for {
		select {
		case <-wr.ticker.C:
			wr.checkAndRun()
		case <-wr.stop:
			return
		}
	}
}

func (wr *WeeklyRunner) checkAndRun() {
	ctx := context.Background()
	weekStart := NextMonday(schedule.Today())

	runs, err := wr.Handler.Store.ListRuns(ctx)
	if err != nil {
		log.Printf("[Runner] Error listing runs: %v", err)
		return
	}
	done := make(map[schedule.Office]bool)
	for _, run := range runs {
		if run.Status == "completed" && run.WeekStart.Equal(weekStart) {
			done[run.Office] = true
		}
	}

	for _, office := range wr.Offices {
		if done[office] {
			continue
		}
		record, _, err := wr.Handler.ExecuteRun(ctx, office, weekStart, wr.Handler.Options)
		if err != nil {
			log.Printf("[Runner] Run failed for %s week of %s: %v", office, weekStart, err)
			continue
		}
		log.Printf("[Runner] Scheduled %s week of %s: %d assignments (run %s)",
			office, weekStart, record.Assignments, record.ID)
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (wr *WeeklyRunner) RunNow() {
	wr.checkAndRun()
}

// NextMonday returns the Monday strictly after d unless d itself is a
// Monday, in which case d is returned.
func NextMonday(d schedule.Day) schedule.Day {
	offset := (int(time.Monday) - int(d.Weekday()) + 7) % 7
	return d.AddDays(offset)
}
