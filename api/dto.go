/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the API surface, decoupled from the schedule package's
  internal records so field names can evolve without touching the pipeline.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/fleetline/loan-scheduler/schedule"
	"github.com/fleetline/loan-scheduler/store/sqlite"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// TriggerRunRequest asks for one scheduling run. Every option override is
// optional; omitted fields keep the server defaults.
type TriggerRunRequest struct {
	Office    string `json:"office"`
	WeekStart string `json:"week_start"`

	MinAvailableDays     *int  `json:"min_available_days,omitempty"`
	LoanLengthDays       *int  `json:"loan_length_days,omitempty"`
	MaxPerPartnerPerWeek *int  `json:"max_per_partner_per_week,omitempty"`
	DefaultCooldownDays  *int  `json:"default_cooldown_days,omitempty"`
	UnrankedCap          *int  `json:"unranked_cap,omitempty"`
	AdmitUnlisted        *bool `json:"admit_unlisted,omitempty"`
	EnableTierCaps       *bool `json:"enable_tier_caps,omitempty"`
	EnableCooldown       *bool `json:"enable_cooldown,omitempty"`
	EnableCapacity       *bool `json:"enable_capacity,omitempty"`
}

// RunDTO is a run record in API responses.
type RunDTO struct {
	ID          string `json:"id"`
	Office      string `json:"office"`
	WeekStart   string `json:"week_start"`
	Status      string `json:"status"`
	Vehicles    int    `json:"vehicles"`
	Candidates  int    `json:"candidates"`
	Assignments int    `json:"assignments"`
	Error       string `json:"error,omitempty"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// AssignmentDTO is one committed loan in API responses.
type AssignmentDTO struct {
	VIN       string `json:"vin"`
	PersonID  string `json:"person_id"`
	StartDay  string `json:"start_day"`
	EndDay    string `json:"end_day"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	Office    string `json:"office"`
	Score     int    `json:"score"`
	WeekStart string `json:"week_start"`
}

// CapacityDTO is one office/day capacity bucket.
type CapacityDTO struct {
	Office string `json:"office"`
	Date   string `json:"date"`
	Slots  int    `json:"slots"`
}

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func runToDTO(run sqlite.RunRecord) RunDTO {
	dto := RunDTO{
		ID:          run.ID,
		Office:      string(run.Office),
		WeekStart:   run.WeekStart.String(),
		Status:      run.Status,
		Vehicles:    run.Vehicles,
		Candidates:  run.Candidates,
		Assignments: run.Assignments,
		Error:       run.Error,
		StartedAt:   run.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if run.CompletedAt != nil {
		dto.CompletedAt = run.CompletedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return dto
}

func assignmentToDTO(a schedule.Assignment) AssignmentDTO {
	return AssignmentDTO{
		VIN:       string(a.VIN),
		PersonID:  string(a.PersonID),
		StartDay:  a.StartDay.String(),
		EndDay:    a.EndDay.String(),
		Make:      a.Make,
		Model:     a.Model,
		Office:    string(a.Office),
		Score:     a.Score,
		WeekStart: a.WeekStart.String(),
	}
}

// applyOverrides folds request overrides onto the server's default options.
func (r TriggerRunRequest) applyOverrides(opts schedule.Options) schedule.Options {
	if r.MinAvailableDays != nil {
		opts.MinAvailableDays = *r.MinAvailableDays
	}
	if r.LoanLengthDays != nil {
		opts.LoanLengthDays = *r.LoanLengthDays
	}
	if r.MaxPerPartnerPerWeek != nil {
		opts.MaxPerPartnerPerWeek = *r.MaxPerPartnerPerWeek
	}
	if r.DefaultCooldownDays != nil {
		opts.DefaultCooldownDays = *r.DefaultCooldownDays
	}
	if r.UnrankedCap != nil {
		opts.UnrankedCap = *r.UnrankedCap
	}
	if r.AdmitUnlisted != nil {
		opts.AdmitUnlisted = *r.AdmitUnlisted
	}
	if r.EnableTierCaps != nil {
		opts.EnableTierCaps = *r.EnableTierCaps
	}
	if r.EnableCooldown != nil {
		opts.EnableCooldown = *r.EnableCooldown
	}
	if r.EnableCapacity != nil {
		opts.EnableCapacity = *r.EnableCapacity
	}
	return opts
}
