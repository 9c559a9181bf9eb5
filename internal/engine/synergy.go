package engine

import (
	"fmt"
	"sort"

	"github.com/scoutlab/vexscout/internal/models"
)

// Synergy rule values: how well two robots complement each other, evaluated
// pairwise with the same signal vocabulary the detectors use.
const (
	synergyEliteAutoCombo  = 25
	synergyStrongAutoCombo = 15
	synergyWeakAutoCombo   = -10
	synergyCoversWeakness  = 12
	synergyScoringDuo      = 15
	synergyReliable        = 10
	synergyRatingElite     = 12
	synergySkillsProven    = 10
	synergyElimProven      = 15

	synergyEliteAutoSum   = 14.0
	synergyStrongAutoSum  = 11.0
	synergyWeakAutoSum    = 7.0
	synergyWeakAutoSelf   = 4.5
	synergyStrongAutoPart = 6.0
	synergyScoringDuoSum  = 85.0
	synergyReliableStdDev = 10.0
	synergyEliteMu        = 30.0
	synergySkillsMin      = 70.0
	synergyElimWinsMin    = 2
)

// Availability and partner-score tuning.
const (
	availRankSlack      = 3
	availContestedScore = 55.0
	availUnavailable    = -100.0
	availOpenBonus      = 5.0

	partnerWeightOverall = 0.4
	partnerWeightSynergy = 0.3
	partnerSleeperBonus  = 15.0
	partnerFraudPenalty  = -25.0
	partnerElimBonus     = 10.0
	partnerProximityBase = 80.0
	partnerProximityMult = 0.15

	captainPoolMaxRank = 8

	tierASize = 5
	tierBSize = 7
	tierCSize = 8
)

// Synergy scores how well a candidate would complement the self team in an
// alliance. Two good robots are not automatically a good pairing: the rules
// reward covered weaknesses and combined strengths, not raw quality.
func Synergy(self, partner *models.Team) (int, []string) {
	score := 0
	var reasons []string

	combinedAuto := self.AutoAvg + partner.AutoAvg
	switch {
	case combinedAuto >= synergyEliteAutoSum:
		score += synergyEliteAutoCombo
		reasons = append(reasons, "Elite combined auto")
	case combinedAuto >= synergyStrongAutoSum:
		score += synergyStrongAutoCombo
		reasons = append(reasons, "Strong auto combo")
	case combinedAuto < synergyWeakAutoSum:
		score += synergyWeakAutoCombo
		reasons = append(reasons, "Weak auto together")
	}

	if self.AutoAvg < synergyWeakAutoSelf && partner.AutoAvg >= synergyStrongAutoPart {
		score += synergyCoversWeakness
		reasons = append(reasons, "Covers auto weakness")
	}

	if self.Mean+partner.Mean >= synergyScoringDuoSum {
		score += synergyScoringDuo
		reasons = append(reasons, "High scoring duo")
	}

	if partner.StdDev < synergyReliableStdDev {
		score += synergyReliable
		reasons = append(reasons, "Reliable")
	}

	if partner.Rating.Mu >= synergyEliteMu {
		score += synergyRatingElite
		reasons = append(reasons, "Rating elite")
	}

	if partner.SkillsScore >= synergySkillsMin {
		score += synergySkillsProven
		reasons = append(reasons, fmt.Sprintf("Skills: %.0f", partner.SkillsScore))
	}

	if partner.ElimWins >= synergyElimWinsMin {
		score += synergyElimProven
		reasons = append(reasons, fmt.Sprintf("Proven in elims (%dW)", partner.ElimWins))
	}

	return score, reasons
}

// availability classifies whether the self team can still pick a candidate
// when its turn comes. A better-ranked candidate picks before you; a
// candidate close behind you with a strong score may be taken by another
// captain first.
func availability(selfRank int, candidate *models.Team) (models.Availability, bool, float64) {
	switch {
	case selfRank <= 0:
		return models.AvailabilityOpen, true, 0
	case candidate.Rank < selfRank:
		return models.AvailabilityPicksBefore, false, availUnavailable
	case candidate.Rank <= selfRank+availRankSlack && candidate.OverallScore >= availContestedScore:
		return models.AvailabilityMaybeTaken, true, 0
	default:
		return models.AvailabilityOpen, true, availOpenBonus
	}
}

// RankPartners fills in synergy, availability and partner score for every
// team relative to self, which may be nil when the user's team is not at the
// event (everything is then "available"). It does not sort.
func RankPartners(self *models.Team, teams []*models.Team) {
	selfRank := 0
	selfStats := &models.Team{Rank: 0}
	if self != nil {
		selfRank = self.Rank
		selfStats = self
	}

	for _, t := range teams {
		syn, reasons := Synergy(selfStats, t)
		t.SynergyScore = syn
		t.SynergyReasons = reasons

		avail, canPick, bonus := availability(selfRank, t)
		t.Availability = avail
		t.CanPick = canPick

		partner := t.OverallScore*partnerWeightOverall + float64(syn)*partnerWeightSynergy + bonus
		if t.IsSleeper {
			partner += partnerSleeperBonus
		}
		if t.IsFraud {
			partner += partnerFraudPenalty
		}
		if t.ElimWins >= synergyElimWinsMin {
			partner += partnerElimBonus
		}
		partner += partnerProximityBase / float64(t.Rank+1) * partnerProximityMult
		t.PartnerScore = partner
	}
}

// PickTiers partitions the pickable, non-fraud candidates into the fixed
// presentation tiers, best partner score first.
func PickTiers(self *models.Team, teams []*models.Team) (tierA, tierB, tierC, pickable []*models.Team) {
	for _, t := range teams {
		if self != nil && t.Number == self.Number {
			continue
		}
		if t.CanPick && !t.IsFraud {
			pickable = append(pickable, t)
		}
	}
	sort.SliceStable(pickable, func(i, j int) bool {
		return pickable[i].PartnerScore > pickable[j].PartnerScore
	})

	cut := func(lo, hi int) []*models.Team {
		if lo >= len(pickable) {
			return nil
		}
		if hi > len(pickable) {
			hi = len(pickable)
		}
		return pickable[lo:hi]
	}
	return cut(0, tierASize), cut(tierASize, tierASize+tierBSize),
		cut(tierASize+tierBSize, tierASize+tierBSize+tierCSize), pickable
}

// PredictAlliances simulates the first round of alliance selection: captains
// seeded 1 through 8 greedily take the remaining candidate that best blends
// overall quality, synergy with the captain, and sleeper upside. Frauds are
// never predicted picks.
func PredictAlliances(teams []*models.Team) []models.AlliancePrediction {
	byRank := make(map[int]*models.Team, len(teams))
	for _, t := range teams {
		byRank[t.Rank] = t
	}

	var pool []*models.Team
	for _, t := range teams {
		if t.Rank > captainPoolMaxRank {
			pool = append(pool, t)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Rank < pool[j].Rank })
	taken := make(map[string]bool)

	var predictions []models.AlliancePrediction
	for seed := 1; seed <= captainPoolMaxRank; seed++ {
		captain, ok := byRank[seed]
		if !ok {
			continue
		}
		var best *models.Team
		bestScore := -1e9
		for _, cand := range pool {
			if cand.IsFraud || taken[cand.Number] {
				continue
			}
			syn, _ := Synergy(captain, cand)
			score := cand.OverallScore*0.5 + float64(syn)*0.4 + float64(cand.SleeperScore)*0.1
			if score > bestScore {
				bestScore, best = score, cand
			}
		}
		if best == nil {
			continue
		}
		predictions = append(predictions, models.AlliancePrediction{
			Captain:     captain.Number,
			CaptainRank: seed,
			Pick:        best.Number,
			PickRank:    best.Rank,
		})
		taken[best.Number] = true
	}
	return predictions
}

// PredictSuitors returns the captains whose single best pick, judged half on
// overall score and half on synergy with that captain, is the self team.
func PredictSuitors(self *models.Team, teams []*models.Team) []models.Suitor {
	if self == nil {
		return nil
	}
	var suitors []models.Suitor
	for _, captain := range teams {
		if captain.Rank > captainPoolMaxRank || captain.Number == self.Number {
			continue
		}
		var best *models.Team
		bestScore := -1e9
		for _, cand := range teams {
			if cand.Rank <= captain.Rank {
				continue
			}
			syn, _ := Synergy(captain, cand)
			score := cand.OverallScore*0.5 + float64(syn)*0.5
			if score > bestScore {
				bestScore, best = score, cand
			}
		}
		if best != nil && best.Number == self.Number {
			suitors = append(suitors, models.Suitor{Captain: captain.Number, CaptainRank: captain.Rank})
		}
	}
	return suitors
}
