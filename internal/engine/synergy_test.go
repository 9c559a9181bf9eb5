package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutlab/vexscout/internal/models"
)

func TestSynergy_CoversAutoWeakness(t *testing.T) {
	self := &models.Team{Number: "100A", AutoAvg: 3, Mean: 35}
	strongAuto := &models.Team{Number: "200B", AutoAvg: 8.5, Mean: 30, StdDev: 20}
	weakAuto := &models.Team{Number: "300C", AutoAvg: 3, Mean: 30, StdDev: 20}

	strongScore, strongReasons := Synergy(self, strongAuto)
	weakScore, _ := Synergy(self, weakAuto)

	assert.Greater(t, strongScore, weakScore)
	assert.Contains(t, strongReasons, "Covers auto weakness")
	assert.Less(t, weakScore, 0, "two weak autos together is a liability")
}

func TestSynergy_RewardsCombinedStrengths(t *testing.T) {
	self := &models.Team{Number: "100A", AutoAvg: 7, Mean: 45}
	partner := &models.Team{
		Number: "200B", AutoAvg: 7.5, Mean: 42, StdDev: 6,
		Rating: models.TrueSkill{Mu: 31, Sigma: 2}, SkillsScore: 95, ElimWins: 3,
	}

	score, reasons := Synergy(self, partner)

	// 25 (elite auto) + 15 (scoring duo) + 10 (reliable) + 12 (rating)
	// + 10 (skills) + 15 (elims) = 87.
	assert.Equal(t, 87, score)
	assert.Contains(t, reasons, "Elite combined auto")
	assert.Contains(t, reasons, "High scoring duo")
	assert.Contains(t, reasons, "Proven in elims (3W)")
}

func TestRankPartners_AvailabilityRelativeToSelf(t *testing.T) {
	self := &models.Team{Number: "100A", Rank: 5, AutoAvg: 5, Mean: 35}
	above := &models.Team{Number: "200B", Rank: 2, OverallScore: 70, StdDev: 20}
	contested := &models.Team{Number: "300C", Rank: 7, OverallScore: 60, StdDev: 20}
	open := &models.Team{Number: "400D", Rank: 15, OverallScore: 40, StdDev: 20}
	teams := []*models.Team{self, above, contested, open}

	RankPartners(self, teams)

	assert.Equal(t, models.AvailabilityPicksBefore, above.Availability)
	assert.False(t, above.CanPick)
	assert.Equal(t, models.AvailabilityMaybeTaken, contested.Availability)
	assert.True(t, contested.CanPick)
	assert.Equal(t, models.AvailabilityOpen, open.Availability)
	assert.True(t, open.CanPick)
}

func TestRankPartners_NilSelfEverythingOpen(t *testing.T) {
	teams := []*models.Team{
		{Number: "100A", Rank: 1, OverallScore: 80, StdDev: 20},
		{Number: "200B", Rank: 2, OverallScore: 75, StdDev: 20},
	}

	RankPartners(nil, teams)

	for _, team := range teams {
		assert.Equal(t, models.AvailabilityOpen, team.Availability)
		assert.True(t, team.CanPick)
	}
}

func TestRankPartners_SleeperAndFraudAdjustment(t *testing.T) {
	self := &models.Team{Number: "100A", Rank: 1, AutoAvg: 5, Mean: 35}
	sleeper := &models.Team{Number: "200B", Rank: 12, OverallScore: 50, StdDev: 20, IsSleeper: true}
	fraud := &models.Team{Number: "300C", Rank: 12, OverallScore: 50, StdDev: 20, IsFraud: true}

	RankPartners(self, []*models.Team{self, sleeper, fraud})

	assert.InDelta(t, 40.0, sleeper.PartnerScore-fraud.PartnerScore, 1e-9,
		"sleeper bonus plus fraud penalty")
}

func TestPickTiers_SizesAndExclusions(t *testing.T) {
	self := &models.Team{Number: "0S", Rank: 1, OverallScore: 90}
	teams := []*models.Team{self}
	for i := 0; i < 25; i++ {
		teams = append(teams, &models.Team{
			Number:       string(rune('A'+i)) + "1",
			Rank:         i + 2,
			OverallScore: float64(90 - i),
		})
	}
	teams[3].IsFraud = true
	RankPartners(self, teams)

	tierA, tierB, tierC, pickable := PickTiers(self, teams)

	assert.Len(t, tierA, 5)
	assert.Len(t, tierB, 7)
	assert.Len(t, tierC, 8)
	assert.Len(t, pickable, 24, "25 candidates minus the fraud")

	for _, team := range pickable {
		assert.NotEqual(t, self.Number, team.Number, "self is never a pick candidate")
		assert.False(t, team.IsFraud)
	}
	for i := 1; i < len(pickable); i++ {
		assert.GreaterOrEqual(t, pickable[i-1].PartnerScore, pickable[i].PartnerScore)
	}
}

func TestPickTiers_ShortField(t *testing.T) {
	self := &models.Team{Number: "0S", Rank: 1}
	teams := []*models.Team{
		self,
		{Number: "100A", Rank: 2, OverallScore: 60},
		{Number: "200B", Rank: 3, OverallScore: 50},
	}
	RankPartners(self, teams)

	tierA, tierB, tierC, _ := PickTiers(self, teams)
	assert.Len(t, tierA, 2)
	assert.Empty(t, tierB)
	assert.Empty(t, tierC)
}

func TestPredictAlliances_GreedyWithoutReuse(t *testing.T) {
	var teams []*models.Team
	for i := 1; i <= 17; i++ {
		teams = append(teams, &models.Team{
			Number:       string(rune('A'+i-1)) + "9",
			Rank:         i,
			OverallScore: float64(100 - i*3),
			AutoAvg:      5,
		})
	}
	teams[8].IsFraud = true // rank 9, best non-captain, must never be picked

	predictions := PredictAlliances(teams)

	require.Len(t, predictions, 8)
	picked := make(map[string]bool)
	for _, p := range predictions {
		assert.False(t, picked[p.Pick], "a team is picked at most once")
		picked[p.Pick] = true
		assert.Greater(t, p.PickRank, 8, "captains cannot be picked")
	}
	assert.False(t, picked[teams[8].Number])
	assert.Equal(t, 1, predictions[0].CaptainRank)
	assert.Equal(t, teams[9].Number, predictions[0].Pick,
		"the top seed takes the best available non-fraud")
}

func TestPredictSuitors_WantsTheSelfTeam(t *testing.T) {
	// Candidates must be ranked below the captain, so only the rank-8
	// captain, with nothing stronger than self left to take, wants self.
	var teams []*models.Team
	for i := 1; i <= 12; i++ {
		teams = append(teams, &models.Team{
			Number:       string(rune('A'+i-1)) + "7",
			Rank:         i,
			OverallScore: float64(100 - i),
			AutoAvg:      5,
		})
	}
	self := teams[8] // rank 9

	suitors := PredictSuitors(self, teams)

	require.Len(t, suitors, 1)
	assert.Equal(t, 8, suitors[0].CaptainRank)
	assert.Nil(t, PredictSuitors(nil, teams))
}
