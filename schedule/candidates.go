/*
candidates.go - The weekly candidate join

PURPOSE:
  Intersects availability, eligibility, cooldown, and publication state into
  the full set of feasible (vin, partner) pairings for the week.

PROCEDURE:
  1. Reduce the grid to VINs with available_days >= min_available_days.
  2. Cross with partners approved for the VIN's make (or, with
     AdmitUnlisted, all partners under a synthetic C rank).
  3. Attach cooldown flags via the (person, make, model) -> (person, make)
     fallback; absent grains are admissible. Filter to cooldown_ok.
  4. Attach publication stats; absent grains carry a nil rate,
     supported=false, coverage 0.

  Output order is stabilized (vin, then person) so the scorer's sort is the
  only ordering that matters downstream.

SEE ALSO:
  - score.go: fills Score and imposes the total order
*/
package schedule

import "sort"

// EligibilityIndex groups approved partners by make.
type EligibilityIndex struct {
	byMake map[string][]Eligibility
}

// NewEligibilityIndex builds the make-keyed index.
func NewEligibilityIndex(rows []Eligibility) *EligibilityIndex {
	idx := &EligibilityIndex{byMake: make(map[string][]Eligibility)}
	for _, e := range rows {
		idx.byMake[e.Make] = append(idx.byMake[e.Make], e)
	}
	return idx
}

// ApprovedFor returns the eligibility rows for one make.
func (idx *EligibilityIndex) ApprovedFor(mk string) []Eligibility {
	return idx.byMake[mk]
}

// BuildWeeklyCandidates runs the candidate join for one week.
func BuildWeeklyCandidates(
	grid *AvailabilityGrid,
	cooldowns *CooldownSet,
	pubs *PublicationSet,
	eligibility *EligibilityIndex,
	partners []Partner,
	opts Options,
) []Candidate {
	var out []Candidate

	for _, vin := range grid.VINs() {
		row := grid.Row(vin)
		availableDays := row.AvailableDays()
		if availableDays < opts.MinAvailableDays {
			continue
		}
		v := row.Vehicle

		for _, e := range approvedPartners(eligibility, partners, v.Make, opts) {
			status := cooldowns.Status(e.PersonID, v.Make, v.Model)
			if opts.EnableCooldown && !status.OK {
				continue
			}

			c := Candidate{
				VIN:           v.VIN,
				PersonID:      e.PersonID,
				Market:        v.Office,
				Make:          v.Make,
				Model:         v.Model,
				WeekStart:     grid.Week.Start,
				AvailableDays: availableDays,
				DayFree:       row.Days,
				CooldownOK:    status.OK,
				Rank:          e.Rank,
			}
			if st, ok := pubs.Get(e.PersonID, v.Make); ok {
				c.PublicationRate = st.Rate
				c.Supported = st.Supported
				c.Coverage = st.Coverage
			}
			out = append(out, c)
		}
	}

	// Stable pre-score order so scoring ties resolve identically run to run.
	sort.Slice(out, func(i, j int) bool {
		if out[i].VIN != out[j].VIN {
			return out[i].VIN < out[j].VIN
		}
		return out[i].PersonID < out[j].PersonID
	})
	return out
}

// approvedPartners resolves step 2 of the join. With no eligibility rows for
// the make and AdmitUnlisted set, every partner gets a synthetic C-rank
// record (the C fallback cap still gates them at admission time).
func approvedPartners(idx *EligibilityIndex, partners []Partner, mk string, opts Options) []Eligibility {
	if rows := idx.ApprovedFor(mk); len(rows) > 0 {
		return rows
	}
	if !opts.AdmitUnlisted {
		return nil
	}
	rows := make([]Eligibility, 0, len(partners))
	for _, p := range partners {
		rows = append(rows, Eligibility{PersonID: p.ID, Make: mk, Rank: RankC})
	}
	return rows
}
