package rules

import (
	"slices"

	"github.com/nstehr/bastion/model"
)

// PlacementGroup is one row of the fortress plan: a role and the cells it
// should occupy, most important first.
type PlacementGroup struct {
	Name  string
	Role  Role
	Cells []model.Coordinate
}

func cells(xy ...[2]int) []model.Coordinate {
	out := make([]model.Coordinate, len(xy))
	for i, p := range xy {
		out[i] = model.Coordinate{X: p[0], Y: p[1]}
	}
	return out
}

// span returns the cells of row y from column x0 to x1 inclusive.
func span(y, x0, x1 int) []model.Coordinate {
	out := make([]model.Coordinate, 0, x1-x0+1)
	for x := x0; x <= x1; x++ {
		out = append(out, model.Coordinate{X: x, Y: y})
	}
	return out
}

// DefenseGroups returns the fortress plan, front line to back and center
// outward. The front wall leaves [14,13] open as the exit for our own units.
func DefenseGroups() []PlacementGroup {
	return []PlacementGroup{
		{Name: "first_row", Role: Wall, Cells: slices.Concat(span(13, 0, 13), span(13, 15, 27))},
		{Name: "destructor_loc1", Role: Defense, Cells: cells([2]int{12, 11}, [2]int{16, 11})},
		{Name: "second_row", Role: Wall, Cells: slices.Concat(
			cells([2]int{13, 12}, [2]int{15, 12}, [2]int{12, 12}, [2]int{16, 12}, [2]int{11, 12}, [2]int{17, 12}),
			span(12, 1, 10),
			span(12, 18, 26),
		)},
		{Name: "destructor_loc2", Role: Defense, Cells: cells([2]int{8, 11}, [2]int{20, 11})},
		{Name: "encryptor_loc1", Role: Economy, Cells: cells([2]int{13, 11}, [2]int{15, 11})},
		{Name: "destructor_loc3", Role: Defense, Cells: cells([2]int{4, 11}, [2]int{24, 11})},
		{Name: "encryptor_row1", Role: Economy, Cells: cells([2]int{13, 10}, [2]int{15, 10})},
		{Name: "destructor_row1", Role: Defense, Cells: cells([2]int{12, 10}, [2]int{16, 10})},
		{Name: "encryptor_row2", Role: Economy, Cells: cells([2]int{13, 9}, [2]int{15, 9})},
		{Name: "destructor_row2", Role: Defense, Cells: cells([2]int{12, 9}, [2]int{16, 9})},
		{Name: "encryptor_row3", Role: Economy, Cells: cells([2]int{13, 8}, [2]int{15, 8})},
		{Name: "destructor_row3", Role: Defense, Cells: cells([2]int{12, 8}, [2]int{16, 8})},
	}
}

// Attacker placements.
var (
	AreaAttackerCell = model.Coordinate{X: 11, Y: 2}
	// DebuffCandidates are friendly edge cells close to the bottom tip.
	DebuffCandidates = cells(
		[2]int{10, 3}, [2]int{17, 3},
		[2]int{11, 2}, [2]int{16, 2},
		[2]int{12, 1}, [2]int{15, 1},
		[2]int{13, 0}, [2]int{14, 0},
	)
)

const AreaAttackerCount = 3
