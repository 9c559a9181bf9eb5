package engine

import (
	"fmt"

	"github.com/scoutlab/vexscout/internal/models"
)

// Fraud rule point values. Each rule fires independently and contributes its
// points plus a human-readable flag; the flag is what a scout acts on, the
// points only decide whether the label sticks.
const (
	fraudMaxRank = 12

	fraudLossesToLowerRepeat = 25
	fraudLossToLowerTopSeed  = 12
	fraudHeadToHeadLoss      = 30
	fraudChokesCloseGames    = 25
	fraudEarlyElimExit       = 30
	fraudBadElimRecord       = 20
	fraudWeakSchedule        = 18
	fraudNoDominantWins      = 12
	fraudLowSkills           = 15
	fraudDecliningTrend      = 15

	fraudCloseGamesMin    = 3
	fraudChokeClutchRate  = 0.35
	fraudElimMatchesMin   = 2
	fraudBadElimWinRate   = 0.4
	fraudWeakScheduleFrac = 0.65
	fraudMinWinsForBlow   = 5
	fraudLowSkillsScore   = 30.0
	fraudDecliningCutoff  = -8.0
)

// DetectFraud decides whether a team's rank overstates its performance.
// Only teams ranked in the top 12 are candidates; anyone lower cannot be
// "overrated" in a way that matters for alliance selection. The returned
// flags explain every rule that fired, whether or not the label stuck.
func DetectFraud(t *models.Team, fieldAvgSP float64, overrides models.OverrideSnapshot, params Params) (bool, int, []string) {
	if t.Rank > fraudMaxRank {
		return false, 0, nil
	}

	score := 0
	var flags []string

	if t.LossesToLower >= 2 {
		score += fraudLossesToLowerRepeat
		flags = append(flags, fmt.Sprintf("Lost %dx to lower ranked", t.LossesToLower))
	} else if t.LossesToLower == 1 && t.Rank <= 5 {
		score += fraudLossToLowerTopSeed
		flags = append(flags, "Lost to lower ranked team")
	}

	// A confirmed elimination loss entered by a human is the strongest
	// single signal there is: the team was beaten head to head when it
	// mattered.
	if losses := overrides.LossesFor(t.Number); len(losses) > 0 {
		score += fraudHeadToHeadLoss
		for _, h := range losses {
			round := h.Round
			if round == "" {
				round = "elims"
			}
			flags = append(flags, fmt.Sprintf("Lost to %s in %s", h.Winner, round))
		}
	}

	if t.CloseMatches >= fraudCloseGamesMin && t.ClutchRate < fraudChokeClutchRate {
		score += fraudChokesCloseGames
		flags = append(flags, fmt.Sprintf("Chokes close games (%d%%)", int(t.ClutchRate*100)))
	}

	if t.Rank <= 5 && t.ElimExit > models.RoundNone && t.ElimExit <= models.RoundQuarterfinals {
		score += fraudEarlyElimExit
		flags = append(flags, fmt.Sprintf("Early elim exit (%s)", t.ElimExit.Short()))
	}

	if total := t.ElimWins + t.ElimLosses; total >= fraudElimMatchesMin &&
		t.ElimWinRate < fraudBadElimWinRate && t.Rank <= 8 {
		score += fraudBadElimRecord
		flags = append(flags, fmt.Sprintf("Bad elim record (%d-%d)", t.ElimWins, t.ElimLosses))
	}

	if fieldAvgSP > 0 && t.SPAvg < fieldAvgSP*fraudWeakScheduleFrac {
		score += fraudWeakSchedule
		flags = append(flags, "Very weak schedule")
	}

	if t.Wins >= fraudMinWinsForBlow && t.BlowoutWins == 0 {
		score += fraudNoDominantWins
		flags = append(flags, "No dominant wins")
	}

	if t.Rank <= 8 && t.SkillsScore < fraudLowSkillsScore {
		score += fraudLowSkills
		flags = append(flags, fmt.Sprintf("Low skills (%.0f)", t.SkillsScore))
	}

	if t.Trend <= fraudDecliningCutoff {
		score += fraudDecliningTrend
		flags = append(flags, "Getting worse")
	}

	threshold := params.FraudThreshold
	if t.Rank <= 5 {
		threshold = params.FraudThresholdTop5
	}
	return score >= threshold, score, flags
}
