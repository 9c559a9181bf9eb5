package models

import "strings"

// Manual rating bounds. A rating of 0 means "remove".
const (
	ManualRatingMin = 1
	ManualRatingMax = 10
)

// HeadToHead is one human-entered elimination outcome: Winner beat Loser in
// the named round.
type HeadToHead struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
	Round  string `json:"round"`
}

// OverrideSnapshot is a read-only copy of the override store taken at the
// start of an analysis run. The engine never writes it, so one snapshot
// guarantees a consistent result even if the store changes mid-run.
type OverrideSnapshot struct {
	Ratings    map[string]int `json:"ratings"`
	HeadToHead []HeadToHead   `json:"head_to_head"`
	Notes      map[string]string `json:"notes"`
	Picked     []string          `json:"picked"`
}

// LossesFor returns the head-to-head records in which the given team was the
// loser. Team numbers compare case-insensitively.
func (s OverrideSnapshot) LossesFor(number string) []HeadToHead {
	var out []HeadToHead
	for _, h := range s.HeadToHead {
		if strings.EqualFold(h.Loser, number) {
			out = append(out, h)
		}
	}
	return out
}

// IsPicked reports whether a team was marked as taken during live alliance
// selection.
func (s OverrideSnapshot) IsPicked(number string) bool {
	for _, p := range s.Picked {
		if strings.EqualFold(p, number) {
			return true
		}
	}
	return false
}

// RatingFor returns the manual rating for a team, or 0 if none is recorded.
func (s OverrideSnapshot) RatingFor(number string) int {
	for name, r := range s.Ratings {
		if strings.EqualFold(name, number) {
			return r
		}
	}
	return 0
}
