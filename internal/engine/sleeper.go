package engine

import (
	"fmt"

	"github.com/scoutlab/vexscout/internal/models"
)

// Sleeper rule point values. Mirrors the fraud detector but accumulates
// positive signals: reasons a low seed could outperform its rank.
const (
	sleeperMinRank = 10 // top 10 cannot be underrated by definition

	sleeperHighCeiling     = 20
	sleeperStrongSkills    = 25
	sleeperDecentSkills    = 12
	sleeperEliteAuto       = 20
	sleeperGoodAuto        = 10
	sleeperHotStreak       = 18
	sleeperImproving       = 8
	sleeperGiantKiller     = 20
	sleeperUpsetWins       = 10
	sleeperUnderranked     = 15
	sleeperClutch          = 12
	sleeperElimStreak      = 25
	sleeperElimWinner      = 12
	sleeperBlowouts        = 10
	sleeperHiddenValue     = 8

	sleeperCeilingFactor    = 1.25
	sleeperStrongSkillsMin  = 80.0
	sleeperDecentSkillsMin  = 50.0
	sleeperEliteAutoMin     = 7.0
	sleeperGoodAutoMin      = 5.5
	sleeperHotStreakTrend   = 8.0
	sleeperImprovingTrend   = 4.0
	sleeperGiantKillerWins  = 3
	sleeperUpsetWinsMin     = 2
	sleeperUnderrankedRank  = 15
	sleeperUnderrankedMu    = 27.0
	sleeperClutchRateMin    = 0.6
	sleeperClutchGamesMin   = 3
	sleeperElimStreakWins   = 3
	sleeperBlowoutsMin      = 2
	sleeperHiddenValueRank  = 20
)

// DetectSleeper scores how likely a team is to be underrated. Teams already
// ranked in the top 10 are excluded. The score accumulates from independent
// positive signals, plus a flat bonus that grows the deeper the team is
// buried in the standings.
func DetectSleeper(t *models.Team, params Params) (bool, int, []string) {
	if t.Rank <= sleeperMinRank {
		return false, 0, nil
	}

	score := 0
	var reasons []string

	if t.Ceiling > t.Mean*sleeperCeilingFactor {
		score += sleeperHighCeiling
		reasons = append(reasons, fmt.Sprintf("High ceiling (%.0f vs %.0f avg)", t.Ceiling, t.Mean))
	}

	// Skills runs are solo, so a big score proves the robot itself works
	// rather than reflecting lucky partner draws.
	if t.SkillsScore >= sleeperStrongSkillsMin {
		score += sleeperStrongSkills
		reasons = append(reasons, fmt.Sprintf("Strong skills (%.0f)", t.SkillsScore))
	} else if t.SkillsScore >= sleeperDecentSkillsMin {
		score += sleeperDecentSkills
		reasons = append(reasons, fmt.Sprintf("Decent skills (%.0f)", t.SkillsScore))
	}

	if t.AutoAvg >= sleeperEliteAutoMin {
		score += sleeperEliteAuto
		reasons = append(reasons, fmt.Sprintf("Elite auto (%.1f)", t.AutoAvg))
	} else if t.AutoAvg >= sleeperGoodAutoMin {
		score += sleeperGoodAuto
		reasons = append(reasons, fmt.Sprintf("Good auto (%.1f)", t.AutoAvg))
	}

	if t.Trend >= sleeperHotStreakTrend {
		score += sleeperHotStreak
		reasons = append(reasons, fmt.Sprintf("Hot streak (+%.0f)", t.Trend))
	} else if t.Trend >= sleeperImprovingTrend {
		score += sleeperImproving
		reasons = append(reasons, "Improving")
	}

	if t.WinsVsHigher >= sleeperGiantKillerWins {
		score += sleeperGiantKiller
		reasons = append(reasons, fmt.Sprintf("Giant killer (%d upsets)", t.WinsVsHigher))
	} else if t.WinsVsHigher >= sleeperUpsetWinsMin {
		score += sleeperUpsetWins
		reasons = append(reasons, fmt.Sprintf("Beat %d higher ranked", t.WinsVsHigher))
	}

	if t.Rank > sleeperUnderrankedRank && t.Rating.Mu >= sleeperUnderrankedMu {
		score += sleeperUnderranked
		reasons = append(reasons, fmt.Sprintf("Underranked (rating %.0f)", t.Rating.Mu))
	}

	if t.CloseMatches >= sleeperClutchGamesMin && t.ClutchRate >= sleeperClutchRateMin {
		score += sleeperClutch
		reasons = append(reasons, fmt.Sprintf("Clutch (%d%%)", int(t.ClutchRate*100)))
	}

	if t.ElimWins >= sleeperElimStreakWins {
		score += sleeperElimStreak
		reasons = append(reasons, fmt.Sprintf("%d elim wins", t.ElimWins))
	} else if t.ElimWins >= 1 {
		score += sleeperElimWinner
		reasons = append(reasons, "Won in elims")
	}

	if t.BlowoutWins >= sleeperBlowoutsMin {
		score += sleeperBlowouts
		reasons = append(reasons, fmt.Sprintf("%d blowout wins", t.BlowoutWins))
	}

	if t.Rank >= sleeperHiddenValueRank {
		score += sleeperHiddenValue
		reasons = append(reasons, fmt.Sprintf("Hidden at #%d", t.Rank))
	}

	return score >= params.SleeperThreshold, score, reasons
}
