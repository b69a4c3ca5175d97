/*
Package sqlite provides the SQLite-backed store for the loan scheduler.

PURPOSE:
  Implements schedule.DataProvider over the seven operational tables and
  persists run records and committed assignments. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  vehicles, media_partners, approved_makes, rules, loan_history,
  current_activity, ops_capacity:  inputs, read-only to the pipeline
  runs, assignments:               outputs, written after each run

PAGED READS:
  Every bulk read loops LIMIT/OFFSET pages until a short page arrives, so a
  caller always gets the whole table. The engine's exact-page truncation
  guard sits on top as a second line of defense; with this store it should
  never fire.

DATE POLICY:
  Dates are stored as ISO 8601 text. An EMPTY date is an absent constraint
  and maps to the zero Day. A NON-EMPTY date that fails lenient parsing is
  handled per table: hard failure (DataShapeError) on loan_history and
  ops_capacity, silently dropped constraint on vehicles and
  current_activity, matching the pipeline's row-level leniency.

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, single
  writer, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/fleet.db")
  if err != nil { log.Fatal(err) }
  defer store.Close()
  engine := schedule.NewEngine(store)

SEE ALSO:
  - schedule/provider.go: the interface this implements
  - store/memory: in-memory twin for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fleetline/loan-scheduler/schedule"
)

// pageSize is the LIMIT used by paged bulk reads.
const pageSize = 1000

// Store implements schedule.DataProvider plus run persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the raw handle for ad-hoc queries (tests, migrations tooling).
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS vehicles (
		vin TEXT PRIMARY KEY,
		make TEXT NOT NULL,
		model TEXT NOT NULL,
		office TEXT NOT NULL,
		in_service_date TEXT,
		expected_turn_in_date TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_vehicles_office ON vehicles(office);

	CREATE TABLE IF NOT EXISTS media_partners (
		person_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		office TEXT NOT NULL,
		latitude REAL,
		longitude REAL
	);

	CREATE TABLE IF NOT EXISTS approved_makes (
		person_id TEXT NOT NULL,
		make TEXT NOT NULL,
		rank TEXT NOT NULL,
		PRIMARY KEY (person_id, make)
	);

	CREATE TABLE IF NOT EXISTS rules (
		make TEXT NOT NULL,
		rank TEXT NOT NULL,
		loan_cap_per_year INTEGER NOT NULL,
		cooldown_period_days INTEGER,
		PRIMARY KEY (make, rank)
	);

	CREATE TABLE IF NOT EXISTS loan_history (
		activity_id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL,
		make TEXT NOT NULL,
		model TEXT,
		start_date TEXT,
		end_date TEXT,
		clips_received TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_loan_history_person_make ON loan_history(person_id, make);
	CREATE INDEX IF NOT EXISTS idx_loan_history_end ON loan_history(end_date);

	CREATE TABLE IF NOT EXISTS current_activity (
		activity_id TEXT PRIMARY KEY,
		vin TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT,
		activity_type TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_current_activity_vin ON current_activity(vin);

	CREATE TABLE IF NOT EXISTS ops_capacity (
		office TEXT NOT NULL,
		date TEXT NOT NULL,
		slots INTEGER NOT NULL,
		PRIMARY KEY (office, date)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		office TEXT NOT NULL,
		week_start TEXT NOT NULL,
		status TEXT NOT NULL,
		vehicles INTEGER NOT NULL DEFAULT 0,
		candidates INTEGER NOT NULL DEFAULT 0,
		assignments INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_office_week ON runs(office, week_start);

	CREATE TABLE IF NOT EXISTS assignments (
		run_id TEXT NOT NULL,
		vin TEXT NOT NULL,
		person_id TEXT NOT NULL,
		start_day TEXT NOT NULL,
		end_day TEXT NOT NULL,
		make TEXT NOT NULL,
		model TEXT NOT NULL,
		office TEXT NOT NULL,
		score INTEGER NOT NULL,
		week_start TEXT NOT NULL,
		PRIMARY KEY (run_id, vin)
	);
	CREATE INDEX IF NOT EXISTS idx_assignments_person ON assignments(person_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DATE HELPERS
// =============================================================================

// lenientDay drops an unparseable constraint (zero Day).
func lenientDay(s sql.NullString) schedule.Day {
	if !s.Valid || s.String == "" {
		return schedule.Day{}
	}
	d, _ := schedule.ParseDay(s.String)
	return d
}

// strictDay fails the read on garbage. Empty is still an absent value.
func strictDay(table, column string, s sql.NullString) (schedule.Day, error) {
	if !s.Valid || s.String == "" {
		return schedule.Day{}, nil
	}
	d, ok := schedule.ParseDay(s.String)
	if !ok {
		return schedule.Day{}, &schedule.DataShapeError{Table: table, Column: column, Value: s.String}
	}
	return d, nil
}

// =============================================================================
// DATA PROVIDER - Paged reads over the input tables
// =============================================================================

// forEachPage runs query with LIMIT/OFFSET until a short page, handing every
// *sql.Rows to scan. Accumulating all pages here is what keeps the engine's
// truncation guard quiet.
func (s *Store) forEachPage(ctx context.Context, query string, scan func(*sql.Rows) (int, error), args ...any) error {
	offset := 0
	for {
		pagedArgs := append(append([]any(nil), args...), pageSize, offset)
		rows, err := s.db.QueryContext(ctx, query+" LIMIT ? OFFSET ?", pagedArgs...)
		if err != nil {
			return err
		}
		n, err := scan(rows)
		rows.Close()
		if err != nil {
			return err
		}
		if n < pageSize {
			return nil
		}
		offset += n
	}
}

func (s *Store) Vehicles(ctx context.Context, office schedule.Office) ([]schedule.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schedule.Vehicle
	err := s.forEachPage(ctx,
		`SELECT vin, make, model, office, in_service_date, expected_turn_in_date
		 FROM vehicles WHERE office = ? ORDER BY vin`,
		func(rows *sql.Rows) (int, error) {
			n := 0
			for rows.Next() {
				var v schedule.Vehicle
				var inService, turnIn sql.NullString
				if err := rows.Scan(&v.VIN, &v.Make, &v.Model, &v.Office, &inService, &turnIn); err != nil {
					return n, err
				}
				v.InServiceDate = lenientDay(inService)
				v.TurnInDate = lenientDay(turnIn)
				out = append(out, v)
				n++
			}
			return n, rows.Err()
		}, string(office))
	return out, err
}

func (s *Store) Partners(ctx context.Context) ([]schedule.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schedule.Partner
	err := s.forEachPage(ctx,
		`SELECT person_id, name, office, latitude, longitude
		 FROM media_partners ORDER BY person_id`,
		func(rows *sql.Rows) (int, error) {
			n := 0
			for rows.Next() {
				var p schedule.Partner
				var lat, lon sql.NullFloat64
				if err := rows.Scan(&p.ID, &p.Name, &p.Office, &lat, &lon); err != nil {
					return n, err
				}
				if lat.Valid {
					v := lat.Float64
					p.Latitude = &v
				}
				if lon.Valid {
					v := lon.Float64
					p.Longitude = &v
				}
				out = append(out, p)
				n++
			}
			return n, rows.Err()
		})
	return out, err
}

func (s *Store) ApprovedMakes(ctx context.Context) ([]schedule.Eligibility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schedule.Eligibility
	err := s.forEachPage(ctx,
		`SELECT person_id, make, rank FROM approved_makes ORDER BY person_id, make`,
		func(rows *sql.Rows) (int, error) {
			n := 0
			for rows.Next() {
				var e schedule.Eligibility
				var rank string
				if err := rows.Scan(&e.PersonID, &e.Make, &rank); err != nil {
					return n, err
				}
				e.Rank = schedule.ParseRank(rank)
				out = append(out, e)
				n++
			}
			return n, rows.Err()
		})
	return out, err
}

func (s *Store) Rules(ctx context.Context) ([]schedule.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schedule.Rule
	err := s.forEachPage(ctx,
		`SELECT make, rank, loan_cap_per_year, cooldown_period_days FROM rules ORDER BY make, rank`,
		func(rows *sql.Rows) (int, error) {
			n := 0
			for rows.Next() {
				var r schedule.Rule
				var rank string
				var cooldown sql.NullInt64
				if err := rows.Scan(&r.Make, &rank, &r.LoanCapPerYear, &cooldown); err != nil {
					return n, err
				}
				r.Rank = schedule.ParseRank(rank)
				if cooldown.Valid {
					days := int(cooldown.Int64)
					r.CooldownDays = &days
				}
				out = append(out, r)
				n++
			}
			return n, rows.Err()
		})
	return out, err
}

func (s *Store) LoanHistory(ctx context.Context) ([]schedule.LoanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schedule.LoanRecord
	err := s.forEachPage(ctx,
		`SELECT activity_id, person_id, make, model, start_date, end_date, clips_received
		 FROM loan_history ORDER BY activity_id`,
		func(rows *sql.Rows) (int, error) {
			n := 0
			for rows.Next() {
				var l schedule.LoanRecord
				var model, clips, start, end sql.NullString
				if err := rows.Scan(&l.ActivityID, &l.PersonID, &l.Make, &model, &start, &end, &clips); err != nil {
					return n, err
				}
				l.Model = model.String
				l.ClipsReceived = clips.String
				var err error
				if l.Start, err = strictDay("loan_history", "start_date", start); err != nil {
					return n, err
				}
				if l.End, err = strictDay("loan_history", "end_date", end); err != nil {
					return n, err
				}
				out = append(out, l)
				n++
			}
			return n, rows.Err()
		})
	return out, err
}

func (s *Store) CurrentActivity(ctx context.Context) ([]schedule.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schedule.Activity
	err := s.forEachPage(ctx,
		`SELECT activity_id, vin, start_date, end_date, activity_type
		 FROM current_activity ORDER BY activity_id`,
		func(rows *sql.Rows) (int, error) {
			n := 0
			for rows.Next() {
				var a schedule.Activity
				var start, end, typ sql.NullString
				if err := rows.Scan(&a.ActivityID, &a.VIN, &start, &end, &typ); err != nil {
					return n, err
				}
				a.Start = lenientDay(start)
				a.End = lenientDay(end)
				a.Type = typ.String
				out = append(out, a)
				n++
			}
			return n, rows.Err()
		})
	return out, err
}

func (s *Store) OpsCapacity(ctx context.Context, office schedule.Office, from, to schedule.Day) ([]schedule.CapacitySlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schedule.CapacitySlot
	err := s.forEachPage(ctx,
		`SELECT office, date, slots FROM ops_capacity
		 WHERE office = ? AND date >= ? AND date <= ? ORDER BY date`,
		func(rows *sql.Rows) (int, error) {
			n := 0
			for rows.Next() {
				var slot schedule.CapacitySlot
				var date sql.NullString
				if err := rows.Scan(&slot.Office, &date, &slot.Slots); err != nil {
					return n, err
				}
				var err error
				if slot.Date, err = strictDay("ops_capacity", "date", date); err != nil {
					return n, err
				}
				out = append(out, slot)
				n++
			}
			return n, rows.Err()
		}, string(office), from.String(), to.String())
	return out, err
}

// =============================================================================
// SEEDING - Write paths for the input tables (scenarios, CLI, tests)
// =============================================================================

func (s *Store) SaveVehicle(ctx context.Context, v schedule.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO vehicles (vin, make, model, office, in_service_date, expected_turn_in_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.VIN, v.Make, v.Model, v.Office, dayString(v.InServiceDate), dayString(v.TurnInDate))
	return err
}

func (s *Store) SavePartner(ctx context.Context, p schedule.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var lat, lon any
	if p.Latitude != nil {
		lat = *p.Latitude
	}
	if p.Longitude != nil {
		lon = *p.Longitude
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO media_partners (person_id, name, office, latitude, longitude)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Office, lat, lon)
	return err
}

func (s *Store) SaveEligibility(ctx context.Context, e schedule.Eligibility) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO approved_makes (person_id, make, rank) VALUES (?, ?, ?)`,
		e.PersonID, e.Make, e.Rank.String())
	return err
}

func (s *Store) SaveRule(ctx context.Context, r schedule.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cooldown any
	if r.CooldownDays != nil {
		cooldown = *r.CooldownDays
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO rules (make, rank, loan_cap_per_year, cooldown_period_days)
		 VALUES (?, ?, ?, ?)`,
		r.Make, r.Rank.String(), r.LoanCapPerYear, cooldown)
	return err
}

func (s *Store) SaveLoan(ctx context.Context, l schedule.LoanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO loan_history (activity_id, person_id, make, model, start_date, end_date, clips_received)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ActivityID, l.PersonID, l.Make, l.Model, dayString(l.Start), dayString(l.End), l.ClipsReceived)
	return err
}

func (s *Store) SaveActivity(ctx context.Context, a schedule.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO current_activity (activity_id, vin, start_date, end_date, activity_type)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ActivityID, a.VIN, dayString(a.Start), dayString(a.End), a.Type)
	return err
}

func (s *Store) SaveCapacity(ctx context.Context, slot schedule.CapacitySlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO ops_capacity (office, date, slots) VALUES (?, ?, ?)`,
		slot.Office, slot.Date.String(), slot.Slots)
	return err
}

// Reset clears every table. Scenarios only; never exposed in production.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, table := range []string{
		"vehicles", "media_partners", "approved_makes", "rules",
		"loan_history", "current_activity", "ops_capacity", "runs", "assignments",
	} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func dayString(d schedule.Day) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

// =============================================================================
// RUN PERSISTENCE - Output side
// =============================================================================

// RunRecord is the persisted outcome of one scheduling run.
type RunRecord struct {
	ID          string
	Office      schedule.Office
	WeekStart   schedule.Day
	Status      string // "completed" or "failed"
	Vehicles    int
	Candidates  int
	Assignments int
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// SaveRun upserts a run record.
func (s *Store) SaveRun(ctx context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var completed any
	if run.CompletedAt != nil {
		completed = run.CompletedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, office, week_start, status, vehicles, candidates, assignments, error, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Office, run.WeekStart.String(), run.Status,
		run.Vehicles, run.Candidates, run.Assignments, run.Error,
		run.StartedAt.UTC().Format(time.RFC3339), completed)
	return err
}

// SaveAssignments persists a run's schedule atomically.
func (s *Store) SaveAssignments(ctx context.Context, runID string, assignments []schedule.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assignments (run_id, vin, person_id, start_day, end_day, make, model, office, score, week_start)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, a := range assignments {
		if _, err := stmt.ExecContext(ctx,
			runID, a.VIN, a.PersonID, a.StartDay.String(), a.EndDay.String(),
			a.Make, a.Model, a.Office, a.Score, a.WeekStart.String()); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListRuns returns runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, office, week_start, status, vehicles, candidates, assignments, error, started_at, completed_at
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// GetRun returns one run, or nil when unknown.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, office, week_start, status, vehicles, candidates, assignments, error, started_at, completed_at
		 FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	run, err := scanRun(rows)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func scanRun(rows *sql.Rows) (RunRecord, error) {
	var run RunRecord
	var week, started string
	var errMsg, completed sql.NullString
	if err := rows.Scan(&run.ID, &run.Office, &week, &run.Status,
		&run.Vehicles, &run.Candidates, &run.Assignments, &errMsg, &started, &completed); err != nil {
		return run, err
	}
	run.WeekStart = schedule.MustDay(week)
	run.Error = errMsg.String
	if t, err := time.Parse(time.RFC3339, started); err == nil {
		run.StartedAt = t
	}
	if completed.Valid {
		if t, err := time.Parse(time.RFC3339, completed.String); err == nil {
			run.CompletedAt = &t
		}
	}
	return run, nil
}

// AssignmentsByRun returns a run's schedule in stored order.
func (s *Store) AssignmentsByRun(ctx context.Context, runID string) ([]schedule.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT vin, person_id, start_day, end_day, make, model, office, score, week_start
		 FROM assignments WHERE run_id = ? ORDER BY score DESC, vin`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schedule.Assignment
	for rows.Next() {
		var a schedule.Assignment
		var start, end, week string
		if err := rows.Scan(&a.VIN, &a.PersonID, &start, &end, &a.Make, &a.Model, &a.Office, &a.Score, &week); err != nil {
			return nil, err
		}
		a.StartDay = schedule.MustDay(start)
		a.EndDay = schedule.MustDay(end)
		a.WeekStart = schedule.MustDay(week)
		out = append(out, a)
	}
	return out, rows.Err()
}
