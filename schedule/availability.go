/*
availability.go - Per-VIN weekly availability grid

PURPOSE:
  For every VIN in the target office, decide for each of the seven days of
  the week whether the vehicle can start or continue a loan that day.

A day is UNAVAILABLE when any of:
  - day < in_service_date        (not yet in service)
  - day >= expected_turn_in_date (turn-in already scheduled)
  - day falls inside the closed [start, end] of any current activity

FAILURE POLICY:
  Row-level gaps are silent. A zero/missing date drops that constraint, not
  the vehicle. An empty fleet yields an empty grid.

SEE ALSO:
  - candidates.go: reduces the grid to available-day counts
  - assigner.go: re-reads the grid to pick a start day
*/
package schedule

// VehicleAvailability is one VIN's seven-day availability row.
type VehicleAvailability struct {
	Vehicle Vehicle
	Days    [DaysPerWeek]bool
}

// AvailableDays counts the week's available days.
func (va *VehicleAvailability) AvailableDays() int {
	n := 0
	for _, ok := range va.Days {
		if ok {
			n++
		}
	}
	return n
}

// AvailabilityGrid holds availability for every office VIN in one week.
type AvailabilityGrid struct {
	Week Week
	rows map[VIN]*VehicleAvailability
}

// Row returns the availability row for a VIN, or nil.
func (g *AvailabilityGrid) Row(vin VIN) *VehicleAvailability {
	return g.rows[vin]
}

// VINs returns the grid's VINs in no particular order.
func (g *AvailabilityGrid) VINs() []VIN {
	vins := make([]VIN, 0, len(g.rows))
	for vin := range g.rows {
		vins = append(vins, vin)
	}
	return vins
}

// Len returns the number of vehicles in the grid.
func (g *AvailabilityGrid) Len() int { return len(g.rows) }

// BuildAvailabilityGrid produces the weekly grid for one office.
func BuildAvailabilityGrid(vehicles []Vehicle, activity []Activity, weekStart Day, office Office) *AvailabilityGrid {
	week := Week{Start: weekStart}
	grid := &AvailabilityGrid{Week: week, rows: make(map[VIN]*VehicleAvailability)}

	// Index blocking activity by VIN once; the fleet loop stays O(days).
	blocked := make(map[VIN][]Activity)
	for _, act := range activity {
		blocked[act.VIN] = append(blocked[act.VIN], act)
	}

	days := week.Days()
	for _, v := range vehicles {
		if v.Office != office {
			continue
		}
		row := &VehicleAvailability{Vehicle: v}
		for i, day := range days {
			row.Days[i] = dayAvailable(v, blocked[v.VIN], day)
		}
		grid.rows[v.VIN] = row
	}
	return grid
}

func dayAvailable(v Vehicle, activity []Activity, day Day) bool {
	if !v.InServiceDate.IsZero() && day.Before(v.InServiceDate) {
		return false
	}
	if !v.TurnInDate.IsZero() && day.AfterOrEqual(v.TurnInDate) {
		return false
	}
	for _, act := range activity {
		// Missing interval ends drop that side of the constraint.
		startOK := act.Start.IsZero() || day.AfterOrEqual(act.Start)
		endOK := act.End.IsZero() || day.BeforeOrEqual(act.End)
		if startOK && endOK && !(act.Start.IsZero() && act.End.IsZero()) {
			return false
		}
	}
	return true
}
