package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetline/loan-scheduler/schedule"
	"github.com/fleetline/loan-scheduler/store/sqlite"
)

// newTestServer builds a router over a fresh in-memory store. Metrics stay
// nil: promauto binds to the process-global registry, and per-test handlers
// would collide there.
func newTestServer(t *testing.T) (*Handler, *httptest.Server) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := &Handler{Store: store, Options: schedule.DefaultOptions()}
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return h, srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestTriggerRun_HappyPath(t *testing.T) {
	// GIVEN: The west-coast demo dataset
	h, srv := newTestServer(t)
	require.NoError(t, h.SeedScenario(context.Background(), "west-coast-week"))

	// WHEN: Triggering a run for the scenario week
	resp := postJSON(t, srv.URL+"/api/runs", TriggerRunRequest{Office: "LA", WeekStart: "2026-09-07"})

	// THEN: 201 with a completed, persisted run
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	run := decode[RunDTO](t, resp)
	assert.Equal(t, "completed", run.Status)
	assert.Equal(t, "LA", run.Office)
	assert.Equal(t, "2026-09-07", run.WeekStart)
	assert.NotEmpty(t, run.ID)
	assert.Greater(t, run.Assignments, 0)

	// AND: The record is retrievable with its schedule
	getResp, err := http.Get(srv.URL + "/api/runs/" + run.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	fetched := decode[RunDTO](t, getResp)
	assert.Equal(t, run.ID, fetched.ID)

	aResp, err := http.Get(srv.URL + "/api/runs/" + run.ID + "/assignments")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, aResp.StatusCode)
	assignments := decode[[]AssignmentDTO](t, aResp)
	assert.Len(t, assignments, run.Assignments)
	for _, a := range assignments {
		assert.Equal(t, "LA", a.Office)
		assert.Equal(t, "2026-09-07", a.WeekStart)
	}
}

func TestTriggerRun_BadRequests(t *testing.T) {
	_, srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/runs", TriggerRunRequest{WeekStart: "2026-09-07"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/runs", TriggerRunRequest{Office: "LA", WeekStart: "next monday"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Contains(t, body.Error, "week_start")
}

func TestTriggerRun_EmptyFleetStillCompletes(t *testing.T) {
	h, srv := newTestServer(t)
	require.NoError(t, h.SeedScenario(context.Background(), "empty-fleet"))

	resp := postJSON(t, srv.URL+"/api/runs", TriggerRunRequest{Office: "LA", WeekStart: "2026-09-07"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	run := decode[RunDTO](t, resp)
	assert.Equal(t, "completed", run.Status)
	assert.Zero(t, run.Vehicles)
	assert.Zero(t, run.Assignments)
}

func TestTriggerRun_OptionOverrides(t *testing.T) {
	// GIVEN: The fully-booked scenario (zero capacity all week)
	h, srv := newTestServer(t)
	require.NoError(t, h.SeedScenario(context.Background(), "fully-booked"))

	resp := postJSON(t, srv.URL+"/api/runs", TriggerRunRequest{Office: "LA", WeekStart: "2026-09-07"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Zero(t, decode[RunDTO](t, resp).Assignments)

	// WHEN: The request disables the capacity constraint
	off := false
	resp = postJSON(t, srv.URL+"/api/runs", TriggerRunRequest{
		Office: "LA", WeekStart: "2026-09-07", EnableCapacity: &off,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, decode[RunDTO](t, resp).Assignments)
}

func TestTriggerRun_DataShapeFailureIs422(t *testing.T) {
	// GIVEN: A loan_history row with a garbage end_date seeded around the
	// store's own write path
	h, srv := newTestServer(t)
	require.NoError(t, h.SeedScenario(context.Background(), "west-coast-week"))
	require.NoError(t, h.Store.SaveLoan(context.Background(), schedule.LoanRecord{
		ActivityID: "bad", PersonID: "p-100", Make: "Toyota",
	}))
	_, err := h.Store.DB().ExecContext(context.Background(),
		`UPDATE loan_history SET end_date = 'garbage' WHERE activity_id = 'bad'`)
	require.NoError(t, err)

	resp := postJSON(t, srv.URL+"/api/runs", TriggerRunRequest{Office: "LA", WeekStart: "2026-09-07"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	// The failed run is still on the record
	listResp, err := http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	runs := decode[[]RunDTO](t, listResp)
	require.NotEmpty(t, runs)
	assert.Equal(t, "failed", runs[0].Status)
	assert.NotEmpty(t, runs[0].Error)
}

func TestGetRun_NotFound(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/runs/no-such-run")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/runs/no-such-run/assignments")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetOfficeCapacity(t *testing.T) {
	h, srv := newTestServer(t)
	require.NoError(t, h.SeedScenario(context.Background(), "west-coast-week"))

	resp, err := http.Get(srv.URL + "/api/offices/LA/capacity?week_start=2026-09-07")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	slots := decode[[]CapacityDTO](t, resp)
	require.Len(t, slots, 7)
	assert.Equal(t, "2026-09-07", slots[0].Date)
	assert.Equal(t, 2, slots[0].Slots)

	resp, err = http.Get(srv.URL + "/api/offices/LA/capacity")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestScenarios_ListLoadReset(t *testing.T) {
	h, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/scenarios")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	catalog := decode[struct {
		Scenarios []ScenarioDTO `json:"scenarios"`
		Current   string        `json:"current"`
	}](t, resp)
	assert.Len(t, catalog.Scenarios, 5)
	assert.Empty(t, catalog.Current)

	resp = postJSON(t, srv.URL+"/api/scenarios/load", LoadScenarioRequest{ScenarioID: "cap-ladder"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, "cap-ladder", h.currentScenario)

	resp = postJSON(t, srv.URL+"/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/scenarios/reset", struct{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Empty(t, h.currentScenario)

	vehicles, err := h.Store.Vehicles(context.Background(), "LA")
	require.NoError(t, err)
	assert.Empty(t, vehicles)
}

func TestCapLadderScenario_GatesAtTwo(t *testing.T) {
	// GIVEN: Three Toyotas, one B-rank partner, no explicit rule
	h, srv := newTestServer(t)
	require.NoError(t, h.SeedScenario(context.Background(), "cap-ladder"))

	// WHEN: The weekly partner limit is lifted out of the way
	limit := 5
	resp := postJSON(t, srv.URL+"/api/runs", TriggerRunRequest{
		Office: "LA", WeekStart: "2026-09-07", MaxPerPartnerPerWeek: &limit,
	})

	// THEN: The fallback cap of 2 is the binding constraint
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 2, decode[RunDTO](t, resp).Assignments)
}

func TestCooldownSplitScenario(t *testing.T) {
	// The rule's 30-day cooldown lapsed 45 days ago: both Toyotas go out
	h, srv := newTestServer(t)
	require.NoError(t, h.SeedScenario(context.Background(), "cooldown-split"))

	limit := 2
	resp := postJSON(t, srv.URL+"/api/runs", TriggerRunRequest{
		Office: "LA", WeekStart: "2026-09-07", MaxPerPartnerPerWeek: &limit,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	run := decode[RunDTO](t, resp)
	assert.Equal(t, 2, run.Assignments)
}
