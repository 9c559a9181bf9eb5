package engine

import "github.com/scoutlab/vexscout/internal/models"

// Signal normalization ceilings. Each raw signal is rescaled to [0,1]
// against an assumed range before weighting.
const (
	ratingNormFloor = 15.0
	ratingNormSpan  = 25.0
	oprNormCeiling  = 50.0
	skillsCeiling   = 120.0
	ceilingCeiling  = 80.0
	noSkillsDefault = 0.3
	consistencySpan = 30.0
)

// Composite weights, in points of the 0-100 overall score.
const (
	weightClassifier  = 10.0
	weightRating      = 20.0
	weightOPR         = 10.0
	weightSkills      = 20.0
	weightCeiling     = 10.0
	weightClutch      = 10.0
	weightElim        = 15.0
	weightConsistency = 5.0
)

// CompositeScore blends the normalized signals and the classifier output
// into one overall score in [0,100]. A manual rating, when present, is
// blended in afterwards with the configured weights; human observation
// dominates the algorithmic score.
func CompositeScore(t *models.Team, c Classifier, params Params) float64 {
	ml := successProbability(c, t)

	tsNorm := clamp01((t.Rating.Mu - ratingNormFloor) / ratingNormSpan)
	oprNorm := clamp01(t.OPR / oprNormCeiling)
	skillsNorm := noSkillsDefault
	if t.SkillsScore > 0 {
		skillsNorm = clamp01(t.SkillsScore / skillsCeiling)
	}
	ceilingNorm := clamp01(t.Ceiling / ceilingCeiling)

	elimNorm := 0.5
	if t.ElimWins+t.ElimLosses > 0 {
		elimNorm = t.ElimWinRate
	}

	consistency := clamp01(1 - t.StdDev/consistencySpan)

	overall := ml*weightClassifier +
		tsNorm*weightRating +
		oprNorm*weightOPR +
		skillsNorm*weightSkills +
		ceilingNorm*weightCeiling +
		t.ClutchRate*weightClutch +
		elimNorm*weightElim +
		consistency*weightConsistency
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	if t.ManualRating > 0 {
		manual := float64(t.ManualRating) * 10
		overall = overall*params.OverrideAlgoWeight + manual*params.OverrideManualWeight
	}
	return overall
}

// gradeBuckets is the fixed percentile table: top 5% A+, next 7% A, and so
// on down to the bottom 6% F.
var gradeBuckets = []struct {
	percentile float64
	grade      string
}{
	{0.95, "A+"},
	{0.88, "A"},
	{0.80, "A-"},
	{0.70, "B+"},
	{0.60, "B"},
	{0.50, "B-"},
	{0.40, "C+"},
	{0.30, "C"},
	{0.20, "C-"},
	{0.12, "D+"},
	{0.06, "D"},
}

const (
	gradeBottom  = "F"
	gradeDefault = "C"
	minGradeable = 5
)

// Grade assigns a percentile-based letter grade relative to the full field.
// With fewer than five teams there is not enough sample to curve fairly and
// everyone gets the default mid grade.
func Grade(score float64, allScores []float64) string {
	if len(allScores) < minGradeable {
		return gradeDefault
	}
	below := 0
	for _, s := range allScores {
		if score > s {
			below++
		}
	}
	percentile := float64(below) / float64(len(allScores))
	for _, b := range gradeBuckets {
		if percentile >= b.percentile {
			return b.grade
		}
	}
	return gradeBottom
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
