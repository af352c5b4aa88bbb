package model

import "fmt"

// The arena is a diamond inscribed in a 28x28 grid. Row 0 is the bottom tip
// on our side; rows 0..13 are ours, 14..27 belong to the opponent.
const (
	ArenaSize = 28
	HalfArena = ArenaSize / 2
)

// Coordinate is a grid cell: X is the column, Y the row.
type Coordinate struct {
	X int
	Y int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("[%d,%d]", c.X, c.Y)
}

// Edge names one of the four diagonal borders of the diamond.
type Edge int

const (
	TopRight Edge = iota
	TopLeft
	BottomLeft
	BottomRight
)

func (e Edge) String() string {
	switch e {
	case TopRight:
		return "top_right"
	case TopLeft:
		return "top_left"
	case BottomLeft:
		return "bottom_left"
	case BottomRight:
		return "bottom_right"
	}
	return fmt.Sprintf("edge(%d)", int(e))
}

// InArena reports whether c lies inside the diamond.
func InArena(c Coordinate) bool {
	if c.Y < 0 || c.Y >= ArenaSize {
		return false
	}
	rowSize := c.Y + 1
	if c.Y >= HalfArena {
		rowSize = ArenaSize - c.Y
	}
	startX := HalfArena - rowSize
	endX := startX + 2*rowSize - 1
	return c.X >= startX && c.X <= endX
}

// OwnHalf reports whether c is in the rows we may build on.
func OwnHalf(c Coordinate) bool {
	return c.Y >= 0 && c.Y < HalfArena
}

// EdgeCells lists the cells of an edge, starting at the tip of the diamond
// and walking along the diagonal toward the midline.
func EdgeCells(e Edge) []Coordinate {
	cells := make([]Coordinate, 0, HalfArena)
	for n := range HalfArena {
		switch e {
		case TopRight:
			cells = append(cells, Coordinate{X: HalfArena + n, Y: ArenaSize - 1 - n})
		case TopLeft:
			cells = append(cells, Coordinate{X: HalfArena - 1 - n, Y: ArenaSize - 1 - n})
		case BottomLeft:
			cells = append(cells, Coordinate{X: HalfArena - 1 - n, Y: n})
		case BottomRight:
			cells = append(cells, Coordinate{X: HalfArena + n, Y: n})
		}
	}
	return cells
}

// FriendlyEdge reports whether c is on the bottom-left or bottom-right edge,
// the only cells where mobile units may be deployed.
func FriendlyEdge(c Coordinate) bool {
	if !OwnHalf(c) {
		return false
	}
	return c.X == HalfArena-1-c.Y || c.X == HalfArena+c.Y
}
