package engine

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/scoutlab/vexscout/internal/models"
)

const (
	// closeMatchMargin and blowoutMargin split matches into "decided by a
	// whisker" and "never in doubt" buckets for the clutch and blowout
	// counters.
	closeMatchMargin = 12.0
	blowoutMargin    = 35.0

	// lowerRankedSlack: a loss only counts as "lost to lower ranked" when
	// the opponent sits more than this many places below the team.
	lowerRankedSlack = 3

	// Defaults for teams with fewer than two recorded scores: their mean is
	// estimated from the solo skills score, with an assumed spread.
	skillsMeanFactor   = 0.5
	preEventMean       = 30.0
	preEventStdDev     = 12.0
	preEventCeilFactor = 1.2
	preEventFloorFact  = 0.8
)

// ScanMatches walks the chronological match list once, accumulating raw
// per-team counters: scores, close/blowout results, upsets, bracket record
// and per-team match history. Malformed matches were already dropped at
// ingestion; a side referencing an unranked team simply skips that team.
func ScanMatches(teams map[string]*models.Team, matches []models.Match) {
	for _, m := range matches {
		margin := m.Margin()
		isClose := margin <= closeMatchMargin
		isBlowout := margin >= blowoutMargin

		sides := []struct {
			mine, opp models.Alliance
		}{
			{m.Red, m.Blue},
			{m.Blue, m.Red},
		}
		for _, side := range sides {
			won := side.mine.Score > side.opp.Score
			for _, number := range side.mine.Teams {
				t, ok := teams[number]
				if !ok {
					continue
				}
				t.Scores = append(t.Scores, side.mine.Score)
				t.History = append(t.History, models.MatchResult{
					Name:     m.Name,
					Score:    side.mine.Score,
					OppScore: side.opp.Score,
					Won:      won,
					IsElim:   m.IsElim,
					Round:    m.Round,
				})

				if m.IsElim {
					if won {
						t.ElimWins++
					} else {
						t.ElimLosses++
					}
					if m.Round > t.ElimExit {
						t.ElimExit = m.Round
					}
				}
				if isClose {
					t.CloseMatches++
					if won {
						t.CloseWins++
					}
				}
				if isBlowout && won {
					t.BlowoutWins++
				}
				for _, oppNumber := range side.opp.Teams {
					opp, ok := teams[oppNumber]
					if !ok {
						continue
					}
					if opp.Rank < t.Rank && won {
						t.WinsVsHigher++
					} else if opp.Rank > t.Rank+lowerRankedSlack && !won {
						t.LossesToLower++
					}
				}
			}
		}
	}
}

// DeriveStats fills in each team's summary statistics from the accumulated
// counters: mean, spread, percentile ceiling/floor, trend, clutch rate,
// bracket win rate and exit round, and the 1-10 schedule-strength rating.
// Teams with fewer than two scores get skills-based estimates instead.
func DeriveStats(teams map[string]*models.Team) {
	var allSP []float64
	for _, t := range teams {
		if t.SPAvg > 0 {
			allSP = append(allSP, t.SPAvg)
		}
	}

	for _, t := range teams {
		if t.HasMatches() {
			t.Mean = mean(t.Scores)
			if len(t.Scores) > 2 {
				t.StdDev = stdDev(t.Scores)
			}
			t.Ceiling = percentile(t.Scores, 0.90)
			t.Floor = percentile(t.Scores, 0.10)
			t.Trend = trend(t.Scores)
		} else {
			t.Mean = preEventMean
			if t.SkillsScore > 0 {
				t.Mean = t.SkillsScore * skillsMeanFactor
			}
			t.StdDev = preEventStdDev
			t.Ceiling = t.Mean * preEventCeilFactor
			t.Floor = t.Mean * preEventFloorFact
		}

		t.ClutchRate = 0.5
		if t.CloseMatches > 0 {
			t.ClutchRate = float64(t.CloseWins) / float64(t.CloseMatches)
		}

		t.ElimWinRate = 0.5
		if total := t.ElimWins + t.ElimLosses; total > 0 {
			t.ElimWinRate = float64(t.ElimWins) / float64(total)
		}

		// A team that won every finals match it played is the champion.
		if t.ElimExit == models.RoundFinals && wonAllFinals(t.History) {
			t.ElimExit = models.RoundChampion
		}

		t.SOS = scheduleStrength(t.SPAvg, allSP)
	}
}

func wonAllFinals(history []models.MatchResult) bool {
	played := false
	for _, h := range history {
		if h.Round == models.RoundFinals {
			played = true
			if !h.Won {
				return false
			}
		}
	}
	return played
}

// scheduleStrength rescales a team's SP onto a 1-10 scale across the field.
// A degenerate field (empty, or all identical) yields the midpoint 5.0.
func scheduleStrength(sp float64, allSP []float64) float64 {
	if len(allSP) == 0 {
		return 5.0
	}
	lo, hi := allSP[0], allSP[0]
	for _, v := range allSP {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return 5.0
	}
	return 1 + (sp-lo)/(hi-lo)*9
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// percentile interpolates the p-quantile of xs; with fewer than three
// samples it collapses to the max (p >= 0.5) or min.
func percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if len(sorted) < 3 {
		if p >= 0.5 {
			return sorted[len(sorted)-1]
		}
		return sorted[0]
	}
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// trend is the mean of the later half of the score sequence minus the mean
// of the earlier half; it needs at least four samples to say anything.
func trend(scores []float64) float64 {
	if len(scores) < 4 {
		return 0
	}
	mid := len(scores) / 2
	return mean(scores[mid:]) - mean(scores[:mid])
}
