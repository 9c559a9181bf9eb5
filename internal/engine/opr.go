package engine

import (
	"gonum.org/v1/gonum/mat"

	"github.com/scoutlab/vexscout/internal/models"
)

// SolveContributions estimates each team's individual scoring contribution
// (OPR) from alliance scores. Every alliance in every match contributes one
// equation: the sum of its members' unknown contributions equals the
// alliance score. The overdetermined system is solved by least squares and
// contributions are clamped at zero.
//
// A nil map is returned when the system cannot be solved (no matches, no
// teams, or a rank-deficient matrix); callers fall back to half the team's
// mean observed score.
func SolveContributions(matches []models.Match, teams []string) map[string]float64 {
	if len(matches) == 0 || len(teams) == 0 {
		return nil
	}

	// Only teams that actually appear in a match get a column. A ranked
	// no-show would otherwise contribute an all-zero column and sink the
	// whole solve; this way it just misses from the result and takes the
	// caller's per-team fallback.
	played := make(map[string]bool)
	for _, m := range matches {
		for _, t := range m.Red.Teams {
			played[t] = true
		}
		for _, t := range m.Blue.Teams {
			played[t] = true
		}
	}

	idx := make(map[string]int, len(teams))
	for _, t := range teams {
		if played[t] {
			idx[t] = len(idx)
		}
	}
	if len(idx) == 0 {
		return nil
	}

	rows := len(matches) * 2
	cols := len(idx)
	a := mat.NewDense(rows, cols, nil)
	b := mat.NewVecDense(rows, nil)

	for i, m := range matches {
		for _, t := range m.Red.Teams {
			if j, ok := idx[t]; ok {
				a.Set(i*2, j, 1)
			}
		}
		for _, t := range m.Blue.Teams {
			if j, ok := idx[t]; ok {
				a.Set(i*2+1, j, 1)
			}
		}
		b.SetVec(i*2, m.Red.Score)
		b.SetVec(i*2+1, m.Blue.Score)
	}

	if rows < cols {
		// Fewer equations than unknowns; any solution would be arbitrary.
		return nil
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return nil
	}

	opr := make(map[string]float64, cols)
	for t, j := range idx {
		v := x.AtVec(j)
		if v < 0 {
			v = 0
		}
		opr[t] = v
	}
	return opr
}
