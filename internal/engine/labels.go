package engine

import (
	"fmt"

	"github.com/scoutlab/vexscout/internal/models"
)

// Momentum and pressure cutoffs for the label families.
const (
	momentumHotTrend  = 6.0
	momentumUpTrend   = 2.0
	momentumDownTrend = -6.0

	pressureMinGames   = 2
	pressureClutchRate = 0.6
	pressureChokeRate  = 0.4

	elimLabelChampWins  = 4
	elimLabelWinnerWins = 2
	elimLabelChokeRate  = 0.4
)

// AssignLabels fills in the closed label families for every team. The
// consistency label is relative to the field: the stdLow/stdHigh cutoffs are
// the 30th and 70th percentile of all teams' spreads.
func AssignLabels(teams []*models.Team) {
	var spreads []float64
	for _, t := range teams {
		if len(t.Scores) >= 3 {
			spreads = append(spreads, t.StdDev)
		}
	}
	stdLow, stdHigh := 8.0, 16.0
	if len(spreads) > 0 {
		stdLow = percentile(spreads, 0.30)
		stdHigh = percentile(spreads, 0.70)
	}

	for _, t := range teams {
		switch {
		case !t.HasMatches():
			t.PlayStyle = models.PlayStylePreEvent
		case t.StdDev <= stdLow:
			t.PlayStyle = models.PlayStyleReliable
		case t.StdDev <= stdHigh:
			t.PlayStyle = models.PlayStyleBalanced
		default:
			t.PlayStyle = models.PlayStyleWildCard
		}

		switch {
		case t.CloseMatches < pressureMinGames:
			t.Pressure = models.PressureUnknown
		case t.ClutchRate >= pressureClutchRate:
			t.Pressure = models.PressureClutch
		case t.ClutchRate >= pressureChokeRate:
			t.Pressure = models.PressureAverage
		default:
			t.Pressure = models.PressureChokes
		}

		switch {
		case t.Trend >= momentumHotTrend:
			t.Momentum = models.MomentumHot
		case t.Trend >= momentumUpTrend:
			t.Momentum = models.MomentumUp
		case t.Trend <= momentumDownTrend:
			t.Momentum = models.MomentumDown
		default:
			t.Momentum = models.MomentumSteady
		}

		elimTotal := t.ElimWins + t.ElimLosses
		switch {
		case t.ElimWins >= elimLabelChampWins:
			t.ElimLabel = models.ElimChampion
		case t.ElimWins >= elimLabelWinnerWins:
			t.ElimLabel = models.ElimWinner
		case elimTotal > 0 && t.ElimWinRate < elimLabelChokeRate:
			t.ElimLabel = models.ElimChoker
		case elimTotal == 0:
			t.ElimLabel = models.ElimNone
		default:
			t.ElimLabel = models.ElimMixed
		}
	}
}

// GenerateNotes builds the auto-generated scouting notes for one team:
// one line for every standout signal a scout should know at a glance.
func GenerateNotes(t *models.Team) []string {
	var notes []string
	if t.AutoAvg >= sleeperEliteAutoMin {
		notes = append(notes, "Elite auto")
	}
	if t.SkillsScore >= sleeperStrongSkillsMin {
		notes = append(notes, fmt.Sprintf("Strong skills (%.0f)", t.SkillsScore))
	}
	if t.Rating.Mu >= synergyEliteMu {
		notes = append(notes, "High skill rating")
	}
	if t.ClutchRate >= 0.65 && t.CloseMatches >= 3 {
		notes = append(notes, "Clutch performer")
	}
	if t.WinsVsHigher >= 2 {
		notes = append(notes, fmt.Sprintf("Beat %d higher ranked", t.WinsVsHigher))
	}
	if t.Trend >= sleeperHotStreakTrend {
		notes = append(notes, "Hot streak")
	}
	if t.ElimWins >= 3 {
		notes = append(notes, fmt.Sprintf("%d elim wins", t.ElimWins))
	}
	if t.Ceiling > t.Mean*sleeperCeilingFactor {
		notes = append(notes, fmt.Sprintf("High ceiling (%.0f)", t.Ceiling))
	}
	return notes
}
