package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutlab/vexscout/internal/models"
)

type fixedClassifier struct {
	p   float64
	err error
}

func (c fixedClassifier) Predict([]float64) (float64, error) { return c.p, c.err }

func strongTeam() *models.Team {
	return &models.Team{
		Number:      "100A",
		Rank:        1,
		Rating:      models.TrueSkill{Mu: 38, Sigma: 2},
		OPR:         55,
		SkillsScore: 130,
		Ceiling:     85,
		ClutchRate:  1.0,
		ElimWins:    4,
		ElimWinRate: 1.0,
		StdDev:      2,
	}
}

func TestCompositeScore_Range(t *testing.T) {
	params := DefaultParams()

	weak := &models.Team{Number: "999Z", Rank: 40, Rating: models.TrueSkill{Mu: 10, Sigma: 8}}
	assert.GreaterOrEqual(t, CompositeScore(weak, nil, params), 0.0)

	strong := strongTeam()
	score := CompositeScore(strong, fixedClassifier{p: 1}, params)
	assert.LessOrEqual(t, score, 100.0)
	assert.Greater(t, score, 90.0, "every signal maxed should score near the top")
}

func TestCompositeScore_ClassifierFailureIsNeutral(t *testing.T) {
	params := DefaultParams()
	team := strongTeam()

	baseline := CompositeScore(team, fixedClassifier{p: 0.5}, params)

	assert.Equal(t, baseline, CompositeScore(team, nil, params))
	assert.Equal(t, baseline, CompositeScore(team, fixedClassifier{err: errors.New("model offline")}, params))
	assert.Equal(t, baseline, CompositeScore(team, fixedClassifier{p: 1.7}, params))
	assert.Equal(t, baseline, CompositeScore(team, fixedClassifier{p: -0.2}, params))
}

func TestCompositeScore_ManualOverrideBlend(t *testing.T) {
	params := DefaultParams()
	team := strongTeam()

	algo := CompositeScore(team, nil, params)

	team.ManualRating = 3
	blended := CompositeScore(team, nil, params)
	assert.InDelta(t, algo*0.4+30*0.6, blended, 1e-9)
	assert.Less(t, blended, algo, "a low manual rating drags a strong team down")

	team.ManualRating = 10
	assert.InDelta(t, algo*0.4+100*0.6, CompositeScore(team, nil, params), 1e-9)
}

func TestCompositeScore_NoElimHistoryIsNeutral(t *testing.T) {
	params := DefaultParams()
	played := strongTeam()
	unplayed := strongTeam()
	unplayed.ElimWins = 0
	unplayed.ElimLosses = 0
	unplayed.ElimWinRate = 0 // ignored without any elim matches

	diff := CompositeScore(played, nil, params) - CompositeScore(unplayed, nil, params)
	assert.InDelta(t, weightElim*0.5, diff, 1e-9)
}

func TestGrade_SmallFieldGetsDefault(t *testing.T) {
	scores := []float64{80, 60, 40, 20}
	assert.Equal(t, "C", Grade(80, scores))
	assert.Equal(t, "C", Grade(20, scores))
}

func TestGrade_DistributionAcrossField(t *testing.T) {
	// 20 teams, strictly ordered scores 5, 10, ..., 100. The i-th lowest
	// score sits at percentile i/20, so the full distribution over the
	// bucket table is fixed.
	scores := make([]float64, 20)
	for i := range scores {
		scores[i] = float64((i + 1) * 5)
	}

	expected := []string{
		"F", "F", "D", "D+",
		"C-", "C-", "C", "C",
		"C+", "C+", "B-", "B-",
		"B", "B", "B+", "B+",
		"A-", "A-", "A", "A+",
	}
	require.Len(t, expected, len(scores))

	for i, score := range scores {
		assert.Equal(t, expected[i], Grade(score, scores),
			fmt.Sprintf("score %.0f at percentile %.2f", score, float64(i)/20))
	}
}

func TestFeatures_FixedOrder(t *testing.T) {
	team := &models.Team{
		Rank: 7, AutoAvg: 6.5, SPAvg: 18, WPAvg: 1.5,
		Mean: 42, StdDev: 9, Ceiling: 55, Trend: 3.5,
		Wins: 8, Losses: 2, ElimWinRate: 0.75,
	}

	f := Features(team)
	require.Len(t, f, 10)
	assert.Equal(t, 7.0, f[0])
	assert.Equal(t, 6.5, f[1])
	assert.InDelta(t, 8.0/10.1, f[8], 1e-9)
	assert.Equal(t, 0.75, f[9])
}
