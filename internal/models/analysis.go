package models

// Snapshot is the fully materialized input for one analysis run: everything
// the engine needs, already fetched. Matches must be in chronological order.
type Snapshot struct {
	EventSKU  string             `json:"event_sku"`
	EventName string             `json:"event_name"`
	Rankings  []TeamRanking      `json:"rankings"`
	Matches   []Match            `json:"matches"`
	Skills    map[string]float64 `json:"skills"`
	Overrides OverrideSnapshot   `json:"overrides"`
}

// AlliancePrediction is one predicted first-round pick: the captain seed and
// the partner the engine expects them to take.
type AlliancePrediction struct {
	Captain     string `json:"captain"`
	CaptainRank int    `json:"captain_rank"`
	Pick        string `json:"pick"`
	PickRank    int    `json:"pick_rank"`
}

// Suitor is an alliance captain whose best predicted pick is the self team.
type Suitor struct {
	Captain     string `json:"captain"`
	CaptainRank int    `json:"captain_rank"`
}

// Analysis is the complete output of one run. Leaderboard and pick tiers
// exclude fraud-flagged teams; those appear only in Frauds.
type Analysis struct {
	RunID     string `json:"run_id"`
	EventSKU  string `json:"event_sku"`
	EventName string `json:"event_name"`

	MyTeam     *Team `json:"my_team,omitempty"`
	MyRank     int   `json:"my_rank"`
	TotalTeams int   `json:"total_teams"`

	Leaderboard []*Team `json:"leaderboard"`
	Sleepers    []*Team `json:"sleepers"`
	Frauds      []*Team `json:"frauds"`

	TierA       []*Team `json:"tier_a"`
	TierB       []*Team `json:"tier_b"`
	TierC       []*Team `json:"tier_c"`
	Recommended *Team   `json:"recommended,omitempty"`

	Predictions []AlliancePrediction `json:"alliance_predictions"`
	WhoWantsYou []Suitor             `json:"who_wants_you"`

	AllTeams []*Team `json:"all_teams"`
}
