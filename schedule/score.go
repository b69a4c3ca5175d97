/*
score.go - Deterministic candidate scoring

PURPOSE:
  score = rank_base + geo_bonus + history_bonus, clamped at >= 0.

    rank_base      A+ 80, A 50, B 20, C 15, otherwise 0
    geo_bonus      30 when the partner's office equals the candidate market
    history_bonus  round(publication_rate * 20), clamped to [0, 20];
                   nil rate contributes nothing. Linear was chosen for
                   explainability; any monotone bounded shape satisfies the
                   contract.

ORDERING:
  SortCandidates imposes the run's single source of determinism: score desc,
  available_days desc, person_id asc, vin asc. The order is total.

SEE ALSO:
  - assigner.go: consumes candidates strictly in this order
*/
package schedule

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Score weights.
const (
	scoreRankAPlus   = 80
	scoreRankA       = 50
	scoreRankB       = 20
	scoreRankC       = 15
	scoreGeoBonus    = 30
	scoreHistoryceil = 20
)

// RankBase returns the rank component of the score.
func RankBase(r Rank) int {
	switch r {
	case RankAPlus:
		return scoreRankAPlus
	case RankA:
		return scoreRankA
	case RankB:
		return scoreRankB
	case RankC:
		return scoreRankC
	default:
		return 0
	}
}

// HistoryBonus maps a publication rate to the bounded history component.
// nil means unknown and contributes 0 (not worst case).
func HistoryBonus(rate *decimal.Decimal) int {
	if rate == nil {
		return 0
	}
	bonus := int(rate.Mul(decimal.NewFromInt(scoreHistoryceil)).Round(0).IntPart())
	if bonus < 0 {
		return 0
	}
	if bonus > scoreHistoryceil {
		return scoreHistoryceil
	}
	return bonus
}

// ScoreCandidates fills Score for every candidate in place.
func ScoreCandidates(candidates []Candidate, partners []Partner) {
	office := make(map[PersonID]Office, len(partners))
	for _, p := range partners {
		office[p.ID] = p.Office
	}

	for i := range candidates {
		c := &candidates[i]
		score := RankBase(c.Rank)
		if off, ok := office[c.PersonID]; ok && off == c.Market {
			score += scoreGeoBonus
		}
		score += HistoryBonus(c.PublicationRate)
		if score < 0 {
			score = 0
		}
		c.Score = score
	}
}

// SortCandidates orders candidates score-descending with the total
// tiebreak: available_days desc, person_id asc, vin asc.
func SortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.AvailableDays != b.AvailableDays {
			return a.AvailableDays > b.AvailableDays
		}
		if a.PersonID != b.PersonID {
			return a.PersonID < b.PersonID
		}
		return a.VIN < b.VIN
	})
}
