package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/scoutlab/vexscout/internal/models"
)

// Named failure conditions. ErrTeamNotFound is a partial failure: the
// analysis for the rest of the field is still returned alongside it.
var (
	ErrNoRankings   = errors.New("no ranking data for event")
	ErrTeamNotFound = errors.New("self team not found in event")
)

const sleepersListMax = 10

// Analyzer runs one full analysis over a materialized snapshot. It holds no
// state between runs; everything request-scoped lives on the stack of
// Analyze.
type Analyzer struct {
	classifier Classifier
	params     Params
	logger     *logrus.Logger
}

// NewAnalyzer wires an analyzer. A nil classifier is allowed and behaves as
// an always-failing one (neutral probability for every team).
func NewAnalyzer(classifier Classifier, params Params, logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Analyzer{classifier: classifier, params: params, logger: logger}
}

// Analyze processes one event snapshot end to end: rating fold, contribution
// solve, statistics, composite scoring, fraud/sleeper detection, and partner
// recommendations for selfTeam (which may be empty). The only hard failure
// is an empty ranking list; an unknown selfTeam returns ErrTeamNotFound
// together with the full analysis for everyone else.
func (a *Analyzer) Analyze(snapshot models.Snapshot, selfTeam string) (*models.Analysis, error) {
	if len(snapshot.Rankings) == 0 {
		return nil, ErrNoRankings
	}

	teams := make(map[string]*models.Team, len(snapshot.Rankings))
	order := make([]*models.Team, 0, len(snapshot.Rankings))
	for _, r := range snapshot.Rankings {
		t := &models.Team{
			TeamID:  r.TeamID,
			Number:  r.Number,
			Rank:    r.Rank,
			Wins:    r.Wins,
			Losses:  r.Losses,
			Ties:    r.Ties,
			Record:  fmt.Sprintf("%d-%d-%d", r.Wins, r.Losses, r.Ties),
			AutoAvg: r.AutoAvg,
			WPAvg:   r.WPAvg,
			SPAvg:   r.SPAvg,
			Rating:  models.NewTrueSkill(),
		}
		if s, ok := snapshot.Skills[r.Number]; ok {
			t.SkillsScore = s
		}
		t.ManualRating = snapshot.Overrides.RatingFor(r.Number)
		teams[r.Number] = t
		order = append(order, t)
	}

	// Chronological fold first: every later step reads the final ratings.
	ratings := FoldRatings(snapshot.Matches)
	for number, t := range teams {
		if r, ok := ratings[number]; ok {
			t.Rating = r
		}
	}

	ScanMatches(teams, snapshot.Matches)
	DeriveStats(teams)

	numbers := make([]string, 0, len(order))
	for _, t := range order {
		numbers = append(numbers, t.Number)
	}
	opr := SolveContributions(snapshot.Matches, numbers)
	for _, t := range order {
		if v, ok := opr[t.Number]; ok {
			t.OPR = v
		} else {
			// Least-squares fallback: half the mean observed score.
			t.OPR = t.Mean * 0.5
		}
	}

	fieldAvgSP := fieldAverageSP(order)

	for _, t := range order {
		t.OverallScore = CompositeScore(t, a.classifier, a.params)
	}
	allScores := make([]float64, len(order))
	for i, t := range order {
		allScores[i] = t.OverallScore
	}
	for _, t := range order {
		t.Grade = Grade(t.OverallScore, allScores)
		t.IsFraud, t.FraudScore, t.FraudFlags = DetectFraud(t, fieldAvgSP, snapshot.Overrides, a.params)
		t.IsSleeper, t.SleeperScore, t.SleeperReasons = DetectSleeper(t, a.params)
	}

	AssignLabels(order)
	for _, t := range order {
		t.Notes = GenerateNotes(t)
	}

	var self *models.Team
	var selfErr error
	if selfTeam != "" {
		self = findTeam(order, selfTeam)
		if self == nil {
			selfErr = fmt.Errorf("%w: %s", ErrTeamNotFound, selfTeam)
		}
	}

	RankPartners(self, order)
	// Teams marked picked during live selection are off the board no matter
	// what the seeding says.
	for _, t := range order {
		if snapshot.Overrides.IsPicked(t.Number) {
			t.Availability = models.AvailabilityTaken
			t.CanPick = false
		}
	}
	tierA, tierB, tierC, pickable := PickTiers(self, order)

	analysis := &models.Analysis{
		RunID:       uuid.NewString(),
		EventSKU:    snapshot.EventSKU,
		EventName:   snapshot.EventName,
		MyTeam:      self,
		TotalTeams:  len(order),
		Leaderboard: leaderboard(order),
		Sleepers:    sleepers(order),
		Frauds:      frauds(order),
		TierA:       tierA,
		TierB:       tierB,
		TierC:       tierC,
		Predictions: PredictAlliances(order),
		WhoWantsYou: PredictSuitors(self, order),
		AllTeams:    order,
	}
	if self != nil {
		analysis.MyRank = self.Rank
	}
	if len(pickable) > 0 {
		analysis.Recommended = pickable[0]
	}

	a.logger.WithFields(logrus.Fields{
		"run_id":   analysis.RunID,
		"event":    snapshot.EventSKU,
		"teams":    len(order),
		"matches":  len(snapshot.Matches),
		"frauds":   len(analysis.Frauds),
		"sleepers": len(analysis.Sleepers),
	}).Info("analysis complete")

	return analysis, selfErr
}

func findTeam(teams []*models.Team, number string) *models.Team {
	needle := strings.TrimSpace(number)
	for _, t := range teams {
		if strings.EqualFold(t.Number, needle) {
			return t
		}
	}
	return nil
}

func fieldAverageSP(teams []*models.Team) float64 {
	var sum float64
	var n int
	for _, t := range teams {
		if t.SPAvg > 0 {
			sum += t.SPAvg
			n++
		}
	}
	if n == 0 {
		return 15
	}
	return sum / float64(n)
}

// leaderboard sorts by overall score, frauds excluded; flagged teams appear
// only in the frauds list.
func leaderboard(teams []*models.Team) []*models.Team {
	var out []*models.Team
	for _, t := range teams {
		if !t.IsFraud {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OverallScore > out[j].OverallScore
	})
	return out
}

func sleepers(teams []*models.Team) []*models.Team {
	var out []*models.Team
	for _, t := range teams {
		if t.IsSleeper {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SleeperScore > out[j].SleeperScore
	})
	if len(out) > sleepersListMax {
		out = out[:sleepersListMax]
	}
	return out
}

func frauds(teams []*models.Team) []*models.Team {
	var out []*models.Team
	for _, t := range teams {
		if t.IsFraud {
			out = append(out, t)
		}
	}
	return out
}
