package engine

import "github.com/scoutlab/vexscout/internal/models"

// Classifier is a pretrained success model. Predict takes the fixed-order
// feature vector built by Features and returns the probability, in [0,1],
// that the team reaches a successful outcome.
type Classifier interface {
	Predict(features []float64) (float64, error)
}

// neutralProbability substitutes for the classifier whenever it fails or
// returns something outside [0,1]. The analysis must never abort on a
// classifier problem.
const neutralProbability = 0.5

// Features builds the classifier input for one team. The order is fixed and
// must match the order the model was trained with.
func Features(t *models.Team) []float64 {
	winRate := float64(t.Wins) / (float64(t.Wins) + float64(t.Losses) + 0.1)
	return []float64{
		float64(t.Rank),
		t.AutoAvg,
		t.SPAvg,
		t.WPAvg,
		t.Mean,
		t.StdDev,
		t.Ceiling,
		t.Trend,
		winRate,
		t.ElimWinRate,
	}
}

// successProbability queries the classifier, absorbing every failure mode
// into the neutral default.
func successProbability(c Classifier, t *models.Team) float64 {
	if c == nil {
		return neutralProbability
	}
	p, err := c.Predict(Features(t))
	if err != nil || p < 0 || p > 1 {
		return neutralProbability
	}
	return p
}
