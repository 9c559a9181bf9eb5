package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutlab/vexscout/internal/models"
)

func TestScanMatches_Counters(t *testing.T) {
	teams := map[string]*models.Team{
		"100A": {Number: "100A", Rank: 1},
		"200B": {Number: "200B", Rank: 8},
	}
	matches := []models.Match{
		// Close win for 100A (margin 10).
		qualMatch(0, []string{"100A"}, 40, []string{"200B"}, 30),
		// Blowout win for 100A (margin 40).
		qualMatch(1, []string{"100A"}, 60, []string{"200B"}, 20),
		// Upset: 200B beats the higher-ranked 100A.
		qualMatch(2, []string{"200B"}, 35, []string{"100A"}, 25),
	}

	ScanMatches(teams, matches)

	a := teams["100A"]
	assert.Equal(t, []float64{40, 60, 25}, a.Scores)
	assert.Equal(t, 1, a.CloseWins)
	assert.Equal(t, 2, a.CloseMatches) // the loss was close too
	assert.Equal(t, 1, a.BlowoutWins)
	assert.Equal(t, 1, a.LossesToLower, "200B sits more than 3 places below")
	require.Len(t, a.History, 3)
	assert.True(t, a.History[0].Won)
	assert.False(t, a.History[2].Won)

	b := teams["200B"]
	assert.Equal(t, 1, b.WinsVsHigher)
	assert.Equal(t, 0, b.LossesToLower)
}

func TestScanMatches_ElimCounters(t *testing.T) {
	teams := map[string]*models.Team{
		"100A": {Number: "100A", Rank: 1},
		"200B": {Number: "200B", Rank: 2},
	}
	matches := []models.Match{
		{
			Name:   "QF 1-1",
			Red:    models.Alliance{Teams: []string{"100A"}, Score: 50},
			Blue:   models.Alliance{Teams: []string{"200B"}, Score: 30},
			IsElim: true,
			Round:  models.RoundQuarterfinals,
		},
		{
			Name:   "SF 1-1",
			Red:    models.Alliance{Teams: []string{"100A"}, Score: 30},
			Blue:   models.Alliance{Teams: []string{"200B"}, Score: 50},
			IsElim: true,
			Round:  models.RoundSemifinals,
		},
	}

	ScanMatches(teams, matches)

	a := teams["100A"]
	assert.Equal(t, 1, a.ElimWins)
	assert.Equal(t, 1, a.ElimLosses)
	assert.Equal(t, models.RoundSemifinals, a.ElimExit)
}

func TestScanMatches_UnknownTeamSkipped(t *testing.T) {
	teams := map[string]*models.Team{"100A": {Number: "100A", Rank: 1}}
	matches := []models.Match{
		qualMatch(0, []string{"100A", "999Z"}, 40, []string{"888Y"}, 30),
	}

	assert.NotPanics(t, func() { ScanMatches(teams, matches) })
	assert.Len(t, teams["100A"].Scores, 1)
}

func TestDeriveStats_FromScores(t *testing.T) {
	teams := map[string]*models.Team{
		"100A": {Number: "100A", Rank: 1, SPAvg: 20,
			Scores: []float64{30, 35, 45, 50}},
		"200B": {Number: "200B", Rank: 2, SPAvg: 10,
			Scores: []float64{40, 40, 40, 40}},
	}

	DeriveStats(teams)

	a := teams["100A"]
	assert.InDelta(t, 40.0, a.Mean, 1e-9)
	assert.Greater(t, a.StdDev, 0.0)
	assert.GreaterOrEqual(t, a.Ceiling, a.Floor)
	assert.InDelta(t, 15.0, a.Trend, 1e-9, "later half mean 47.5 minus earlier half 32.5")
	assert.InDelta(t, 10.0, a.SOS, 1e-9, "highest SP in the field maps to 10")
	assert.InDelta(t, 1.0, teams["200B"].SOS, 1e-9, "lowest SP maps to 1")
}

func TestDeriveStats_PreEventEstimates(t *testing.T) {
	teams := map[string]*models.Team{
		"100A": {Number: "100A", Rank: 1, SkillsScore: 90},
		"200B": {Number: "200B", Rank: 2},
	}

	DeriveStats(teams)

	a := teams["100A"]
	assert.InDelta(t, 45.0, a.Mean, 1e-9, "skills-based estimate")
	assert.InDelta(t, 54.0, a.Ceiling, 1e-9)
	assert.InDelta(t, 36.0, a.Floor, 1e-9)
	assert.Equal(t, preEventStdDev, a.StdDev)

	b := teams["200B"]
	assert.Equal(t, preEventMean, b.Mean, "no skills score falls back to the field default")
}

func TestDeriveStats_NeutralRatesWithoutSamples(t *testing.T) {
	teams := map[string]*models.Team{
		"100A": {Number: "100A", Rank: 1, Scores: []float64{30, 40}},
	}

	DeriveStats(teams)

	a := teams["100A"]
	assert.Equal(t, 0.5, a.ClutchRate)
	assert.Equal(t, 0.5, a.ElimWinRate)
	assert.Equal(t, 0.0, a.Trend, "trend needs at least four samples")
}

func TestDeriveStats_ChampionPromotion(t *testing.T) {
	teams := map[string]*models.Team{
		"100A": {Number: "100A", Rank: 1,
			Scores:   []float64{40, 45, 50},
			ElimWins: 3, ElimExit: models.RoundFinals,
			History: []models.MatchResult{
				{Round: models.RoundSemifinals, Won: true},
				{Round: models.RoundFinals, Won: true},
				{Round: models.RoundFinals, Won: true},
			}},
		"200B": {Number: "200B", Rank: 2,
			Scores:   []float64{40, 45, 30},
			ElimWins: 2, ElimLosses: 1, ElimExit: models.RoundFinals,
			History: []models.MatchResult{
				{Round: models.RoundFinals, Won: true},
				{Round: models.RoundFinals, Won: false},
			}},
	}

	DeriveStats(teams)

	assert.Equal(t, models.RoundChampion, teams["100A"].ElimExit)
	assert.Equal(t, models.RoundFinals, teams["200B"].ElimExit, "a finals loss blocks promotion")
}

func TestScheduleStrength_DegenerateField(t *testing.T) {
	assert.Equal(t, 5.0, scheduleStrength(12, nil))
	assert.Equal(t, 5.0, scheduleStrength(12, []float64{12, 12, 12}))
}

func TestPercentile_SmallSamples(t *testing.T) {
	assert.Equal(t, 0.0, percentile(nil, 0.9))
	assert.Equal(t, 20.0, percentile([]float64{10, 20}, 0.9), "under three samples the ceiling is the max")
	assert.Equal(t, 10.0, percentile([]float64{10, 20}, 0.1), "and the floor is the min")
}
