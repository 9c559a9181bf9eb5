package models

import "strings"

// ElimRound identifies how deep into the elimination bracket a match sits.
// Higher values are later rounds; RoundChampion is a terminal state assigned
// to a team that won every finals match, not a round matches are tagged with.
type ElimRound int

const (
	RoundNone ElimRound = iota
	RoundOf16
	RoundQuarterfinals
	RoundSemifinals
	RoundFinals
	RoundChampion
)

func (r ElimRound) String() string {
	switch r {
	case RoundOf16:
		return "Round of 16"
	case RoundQuarterfinals:
		return "Quarterfinals"
	case RoundSemifinals:
		return "Semifinals"
	case RoundFinals:
		return "Finals"
	case RoundChampion:
		return "Champion"
	default:
		return "None"
	}
}

// Short returns the bracket abbreviation used in flag strings ("QF", "SF"...).
func (r ElimRound) Short() string {
	switch r {
	case RoundOf16:
		return "R16"
	case RoundQuarterfinals:
		return "QF"
	case RoundSemifinals:
		return "SF"
	case RoundFinals:
		return "Finals"
	case RoundChampion:
		return "Champion"
	default:
		return "-"
	}
}

// ParseMatchName classifies a match by its scheduled name, e.g. "Q-15" is a
// qualification match and "SF 1-2" is a semifinal. Unknown names are treated
// as qualification matches.
func ParseMatchName(name string) (isElim bool, round ElimRound) {
	if name == "" {
		return false, RoundNone
	}
	n := strings.ToUpper(name)
	switch {
	case strings.Contains(n, "F-") || strings.Contains(n, "FINAL"):
		return true, RoundFinals
	case strings.Contains(n, "SF") || strings.Contains(n, "SEMI"):
		return true, RoundSemifinals
	case strings.Contains(n, "QF") || strings.Contains(n, "QUARTER"):
		return true, RoundQuarterfinals
	case strings.Contains(n, "R16"):
		return true, RoundOf16
	}
	return false, RoundNone
}

// ParseRoundLabel maps free-form round text from head-to-head entries ("QF",
// "semis", "Finals") onto the closed ElimRound set.
func ParseRoundLabel(label string) ElimRound {
	_, round := ParseMatchName(strings.ToUpper(strings.TrimSpace(label)))
	return round
}

// Alliance is one side of a match: the teams on it and the score they posted.
type Alliance struct {
	Teams []string `json:"teams"`
	Score float64  `json:"score"`
}

// Match is one concluded contest between two alliances. Matches are immutable
// once ingested; Index records chronological position within the event.
type Match struct {
	Index  int       `json:"index"`
	Name   string    `json:"name"`
	Red    Alliance  `json:"red"`
	Blue   Alliance  `json:"blue"`
	IsElim bool      `json:"is_elim"`
	Round  ElimRound `json:"round"`
}

// Margin returns the absolute score differential.
func (m Match) Margin() float64 {
	d := m.Red.Score - m.Blue.Score
	if d < 0 {
		return -d
	}
	return d
}

// Decided reports whether the match produced a winner. Exact ties are not
// decided and never move ratings.
func (m Match) Decided() bool {
	return m.Red.Score != m.Blue.Score
}

// Winners returns the winning and losing alliances of a decided match.
func (m Match) Winners() (winners, losers Alliance) {
	if m.Red.Score > m.Blue.Score {
		return m.Red, m.Blue
	}
	return m.Blue, m.Red
}
