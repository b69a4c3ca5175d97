/*
handlers.go - HTTP handlers for the loan scheduler

PURPOSE:
  Exposes the scheduling pipeline over REST. Handlers parse HTTP, delegate
  to the engine and store, and serialize responses.

ENDPOINTS:
  Runs:
    POST   /api/runs                      Trigger a scheduling run
    GET    /api/runs                      List run records
    GET    /api/runs/{id}                 One run record
    GET    /api/runs/{id}/assignments     The run's schedule

  Offices:
    GET    /api/offices/{office}/capacity Week capacity (?week_start=)

  Scenarios:
    GET    /api/scenarios                 List demo scenarios
    POST   /api/scenarios/load            Load a demo scenario
    POST   /api/scenarios/reset           Clear the database

ERROR HANDLING:
  Errors return JSON with appropriate status:
  - 400: bad input (unparseable week_start, unknown scenario)
  - 404: unknown run
  - 422: data-shape or truncation failure inside a run
  - 500: store errors

SECURITY NOTE:
  No authentication. Deploy behind the fleet VPN only.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
  - runner.go: the weekly auto-trigger that shares TriggerRun's path
*/
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fleetline/loan-scheduler/schedule"
	"github.com/fleetline/loan-scheduler/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Options schedule.Options
	Metrics *Metrics

	// Track currently loaded scenario (demo environments).
	currentScenario string
}

// NewHandler creates a handler with production default options.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:   store,
		Options: schedule.DefaultOptions(),
		Metrics: NewMetrics(),
	}
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// TriggerRun runs the pipeline for one office/week and persists the result.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req TriggerRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Office == "" {
		writeError(w, http.StatusBadRequest, "office is required")
		return
	}
	weekStart, ok := schedule.ParseDay(req.WeekStart)
	if !ok {
		writeError(w, http.StatusBadRequest, "week_start must be an ISO date (YYYY-MM-DD)")
		return
	}

	run, status, err := h.ExecuteRun(r.Context(), schedule.Office(req.Office), weekStart, req.applyOverrides(h.Options))
	if err != nil && run == nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, status, runToDTO(*run))
}

// ExecuteRun is the shared run path for the HTTP trigger and the weekly
// runner: execute, persist the record, persist the schedule.
func (h *Handler) ExecuteRun(ctx context.Context, office schedule.Office, weekStart schedule.Day, opts schedule.Options) (*sqlite.RunRecord, int, error) {
	engine := &schedule.Engine{Provider: h.Store, Options: opts}
	record := sqlite.RunRecord{
		ID:        uuid.NewString(),
		Office:    office,
		WeekStart: weekStart,
		Status:    "running",
		StartedAt: time.Now(),
	}
	if err := h.Store.SaveRun(ctx, record); err != nil {
		return nil, http.StatusInternalServerError, err
	}

	result, err := engine.Run(ctx, office, weekStart)
	completed := time.Now()
	record.CompletedAt = &completed

	if err != nil {
		record.Status = "failed"
		record.Error = err.Error()
		if saveErr := h.Store.SaveRun(ctx, record); saveErr != nil {
			log.Printf("[API] failed to record failed run %s: %v", record.ID, saveErr)
		}
		h.Metrics.ObserveRun(nil, err)
		status := http.StatusInternalServerError
		if schedule.IsDataShape(err) || schedule.IsTruncation(err) {
			status = http.StatusUnprocessableEntity
		}
		return &record, status, err
	}

	record.Status = "completed"
	record.Vehicles = result.Vehicles
	record.Candidates = result.Candidates
	record.Assignments = len(result.Assignments)
	if err := h.Store.SaveAssignments(ctx, record.ID, result.Assignments); err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if err := h.Store.SaveRun(ctx, record); err != nil {
		return nil, http.StatusInternalServerError, err
	}
	h.Metrics.ObserveRun(result, nil)
	return &record, http.StatusCreated, nil
}

// ListRuns returns all run records, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dtos := make([]RunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, runToDTO(run))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRun returns one run record.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := h.Store.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, runToDTO(*run))
}

// GetRunAssignments returns a run's schedule.
func (h *Handler) GetRunAssignments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := h.Store.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	assignments, err := h.Store.AssignmentsByRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dtos := make([]AssignmentDTO, 0, len(assignments))
	for _, a := range assignments {
		dtos = append(dtos, assignmentToDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// OFFICE HANDLERS
// =============================================================================

// GetOfficeCapacity returns the seven capacity buckets for a week.
func (h *Handler) GetOfficeCapacity(w http.ResponseWriter, r *http.Request) {
	office := schedule.Office(chi.URLParam(r, "office"))
	weekStart, ok := schedule.ParseDay(r.URL.Query().Get("week_start"))
	if !ok {
		writeError(w, http.StatusBadRequest, "week_start query parameter must be an ISO date")
		return
	}
	week := schedule.Week{Start: weekStart}
	slots, err := h.Store.OpsCapacity(r.Context(), office, week.Start, week.End())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dtos := make([]CapacityDTO, 0, len(slots))
	for _, slot := range slots {
		dtos = append(dtos, CapacityDTO{Office: string(slot.Office), Date: slot.Date.String(), Slots: slot.Slots})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
