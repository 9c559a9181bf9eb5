package models

import "fmt"

// TrueSkill default priors and the minimum uncertainty a team can reach.
const (
	TrueSkillInitialMu    = 25.0
	TrueSkillInitialSigma = 8.333
	TrueSkillSigmaFloor   = 1.0
)

// TrueSkill is a Bayesian skill estimate: Mu is the estimated skill level,
// Sigma the uncertainty in that estimate. Values are only meaningful relative
// to other teams rated over the same match sequence.
type TrueSkill struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// NewTrueSkill returns the fixed prior every team starts from.
func NewTrueSkill() TrueSkill {
	return TrueSkill{Mu: TrueSkillInitialMu, Sigma: TrueSkillInitialSigma}
}

// Conservative is the skill level the rating is near-certain the team is at
// least at (mu - 3 sigma).
func (ts TrueSkill) Conservative() float64 {
	return ts.Mu - 3*ts.Sigma
}

// PlayStyle labels how consistent a team's scoring is, relative to the field.
type PlayStyle string

const (
	PlayStylePreEvent PlayStyle = "pre_event"
	PlayStyleReliable PlayStyle = "reliable"
	PlayStyleBalanced PlayStyle = "balanced"
	PlayStyleWildCard PlayStyle = "wild_card"
)

// PressureLabel summarizes close-match performance.
type PressureLabel string

const (
	PressureUnknown PressureLabel = "unknown"
	PressureClutch  PressureLabel = "clutch"
	PressureAverage PressureLabel = "average"
	PressureChokes  PressureLabel = "chokes"
)

// MomentumLabel summarizes the early-vs-late score trend.
type MomentumLabel string

const (
	MomentumHot    MomentumLabel = "hot"
	MomentumUp     MomentumLabel = "up"
	MomentumSteady MomentumLabel = "steady"
	MomentumDown   MomentumLabel = "down"
)

// ElimLabel summarizes elimination-bracket performance.
type ElimLabel string

const (
	ElimChampion ElimLabel = "champion"
	ElimWinner   ElimLabel = "elim_winner"
	ElimChoker   ElimLabel = "elim_choker"
	ElimNone     ElimLabel = "no_elims"
	ElimMixed    ElimLabel = "mixed"
)

// Availability describes whether the self team can realistically pick a
// candidate during alliance selection.
type Availability string

const (
	AvailabilityOpen        Availability = "available"
	AvailabilityMaybeTaken  Availability = "might_be_taken"
	AvailabilityPicksBefore Availability = "picks_before_you"
	AvailabilityTaken       Availability = "taken"
)

// TeamRanking is one raw ranking record as supplied by the data provider.
type TeamRanking struct {
	TeamID   int     `json:"team_id"`
	Number   string  `json:"number"`
	Rank     int     `json:"rank"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Ties     int     `json:"ties"`
	AutoAvg  float64 `json:"auto_avg"`  // autonomous points per match
	WPAvg    float64 `json:"wp_avg"`    // win points per match
	SPAvg    float64 `json:"sp_avg"`    // strength-of-schedule points per match
}

// MatchResult is one match from a single team's perspective, kept for the
// per-team match history in the analysis output.
type MatchResult struct {
	Name     string    `json:"name"`
	Score    float64   `json:"score"`
	OppScore float64   `json:"opp_score"`
	Won      bool      `json:"won"`
	IsElim   bool      `json:"is_elim"`
	Round    ElimRound `json:"round"`
}

// Team is one competitor with everything the engine derives for it over a
// single analysis run. Counters are accumulated while scanning matches in
// chronological order; derived fields are filled in afterwards in one pass.
type Team struct {
	TeamID  int    `json:"team_id"`
	Number  string `json:"number"`
	Rank    int    `json:"rank"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	Ties    int    `json:"ties"`
	Record  string `json:"record"`
	AutoAvg float64 `json:"auto_avg"`
	WPAvg   float64 `json:"wp_avg"`
	SPAvg   float64 `json:"sp_avg"`

	SkillsScore float64   `json:"skills_score"`
	Scores      []float64 `json:"scores"`
	History     []MatchResult `json:"matches"`

	Rating TrueSkill `json:"rating"`
	OPR    float64   `json:"opr"`

	// Match-scan counters.
	CloseWins     int `json:"close_wins"`
	CloseMatches  int `json:"close_matches"`
	BlowoutWins   int `json:"blowout_wins"`
	WinsVsHigher  int `json:"wins_vs_higher"`
	LossesToLower int `json:"losses_to_lower"`
	ElimWins      int `json:"elim_wins"`
	ElimLosses    int `json:"elim_losses"`

	// Derived statistics.
	Mean        float64   `json:"mean"`
	StdDev      float64   `json:"std_dev"`
	Ceiling     float64   `json:"ceiling"`
	Floor       float64   `json:"floor"`
	Trend       float64   `json:"trend"`
	ClutchRate  float64   `json:"clutch_rate"`
	ElimWinRate float64   `json:"elim_win_rate"`
	ElimExit    ElimRound `json:"elim_exit"`
	SOS         float64   `json:"sos"`

	OverallScore float64 `json:"overall_score"`
	Grade        string  `json:"grade"`

	PlayStyle PlayStyle     `json:"play_style"`
	Pressure  PressureLabel `json:"pressure"`
	Momentum  MomentumLabel `json:"momentum"`
	ElimLabel ElimLabel     `json:"elim_label"`

	ManualRating int `json:"manual_rating,omitempty"` // 0 means unrated

	IsFraud    bool     `json:"is_fraud"`
	FraudScore int      `json:"fraud_score"`
	FraudFlags []string `json:"fraud_flags,omitempty"`

	IsSleeper      bool     `json:"is_sleeper"`
	SleeperScore   int      `json:"sleeper_score"`
	SleeperReasons []string `json:"sleeper_reasons,omitempty"`

	Notes []string `json:"notes,omitempty"`

	// Filled in relative to the designated self team.
	SynergyScore   int          `json:"synergy_score"`
	SynergyReasons []string     `json:"synergy_reasons,omitempty"`
	Availability   Availability `json:"availability"`
	CanPick        bool         `json:"can_pick"`
	PartnerScore   float64      `json:"partner_score"`
}

// ElimRecord renders the bracket record, or "-" if the team never played in
// eliminations.
func (t *Team) ElimRecord() string {
	if t.ElimWins+t.ElimLosses == 0 {
		return "-"
	}
	return fmt.Sprintf("%d-%d", t.ElimWins, t.ElimLosses)
}

// HasMatches reports whether enough scores exist to derive real statistics.
func (t *Team) HasMatches() bool {
	return len(t.Scores) >= 2
}
