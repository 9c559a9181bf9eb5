package engine

import (
	"math"

	"github.com/scoutlab/vexscout/internal/models"
)

const (
	// ratingBeta is the assumed standard deviation of single-match
	// performance; more beta means noisier outcomes and smaller updates.
	ratingBeta = 4.1667

	// ratingEpsilon keeps the v multiplier finite when the cumulative
	// distribution term approaches zero for lopsided matchups.
	ratingEpsilon = 0.001

	// marginDivisor and marginCap bound the margin factor: a win by 25
	// points updates 1.5x as hard as a narrow one, and the factor never
	// exceeds 1 + marginCap.
	marginDivisor = 50.0
	marginCap     = 0.5

	// elimMarginMultiplier inflates the margin of elimination matches
	// before the update, so bracket results move ratings harder.
	elimMarginMultiplier = 1.5
)

// UpdateMatch applies one Bayesian rating update for a decided match and
// returns updated copies of both sides' ratings; the inputs are not mutated.
// Winners' means rise and losers' fall by the same group-level delta, and
// both sides' uncertainty shrinks, floored at models.TrueSkillSigmaFloor.
// Degenerate input (an empty side) is a no-op.
func UpdateMatch(winners, losers []models.TrueSkill, margin float64) ([]models.TrueSkill, []models.TrueSkill) {
	w := append([]models.TrueSkill(nil), winners...)
	l := append([]models.TrueSkill(nil), losers...)
	if len(w) == 0 || len(l) == 0 {
		return w, l
	}

	winnerMu, winnerSigma := groupRating(w)
	loserMu, loserSigma := groupRating(l)

	c := math.Sqrt(2*ratingBeta*ratingBeta + winnerSigma*winnerSigma + loserSigma*loserSigma)
	t := (winnerMu - loserMu) / c

	// v = phi(t) / Phi(t) with an epsilon guard; w = v*(v+t).
	cdf := 0.5 * (1 + math.Erf(t/math.Sqrt2))
	v := math.Exp(-t*t/2) / (cdf*math.Sqrt(2*math.Pi) + ratingEpsilon)
	wMult := v * (v + t)

	marginFactor := 1 + math.Min(margin/marginDivisor, marginCap)

	for i := range w {
		delta := (w[i].Sigma * w[i].Sigma / c) * v * marginFactor
		w[i].Mu += delta
		w[i].Sigma = shrinkSigma(w[i].Sigma, c, wMult)
	}
	for i := range l {
		delta := (l[i].Sigma * l[i].Sigma / c) * v * marginFactor
		l[i].Mu -= delta
		l[i].Sigma = shrinkSigma(l[i].Sigma, c, wMult)
	}
	return w, l
}

func groupRating(ratings []models.TrueSkill) (mu, sigma float64) {
	var sumMu, sumVar float64
	for _, r := range ratings {
		sumMu += r.Mu
		sumVar += r.Sigma * r.Sigma
	}
	n := float64(len(ratings))
	return sumMu / n, math.Sqrt(sumVar) / n
}

func shrinkSigma(sigma, c, w float64) float64 {
	factor := 1 - (sigma*sigma/(c*c))*w*0.5
	if factor < 0 {
		factor = 0
	}
	return math.Max(models.TrueSkillSigmaFloor, sigma*math.Sqrt(factor))
}

// FoldRatings runs the updater over a chronological match sequence, starting
// every team at the fixed prior. Order matters: each update conditions on the
// current estimate, so the same matches in a different order produce a
// different result. Ties and matches with no rated participants are skipped.
func FoldRatings(matches []models.Match) map[string]models.TrueSkill {
	ratings := make(map[string]models.TrueSkill)
	ensure := func(teams []string) {
		for _, t := range teams {
			if _, ok := ratings[t]; !ok {
				ratings[t] = models.NewTrueSkill()
			}
		}
	}

	for _, m := range matches {
		ensure(m.Red.Teams)
		ensure(m.Blue.Teams)
		if !m.Decided() {
			continue
		}
		winSide, loseSide := m.Winners()
		margin := m.Margin()
		if m.IsElim {
			margin *= elimMarginMultiplier
		}

		winners := make([]models.TrueSkill, len(winSide.Teams))
		for i, t := range winSide.Teams {
			winners[i] = ratings[t]
		}
		losers := make([]models.TrueSkill, len(loseSide.Teams))
		for i, t := range loseSide.Teams {
			losers[i] = ratings[t]
		}

		winners, losers = UpdateMatch(winners, losers, margin)
		for i, t := range winSide.Teams {
			ratings[t] = winners[i]
		}
		for i, t := range loseSide.Teams {
			ratings[t] = losers[i]
		}
	}
	return ratings
}
