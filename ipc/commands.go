package ipc

import "encoding/json"

// PlacementCommand is one [shorthand, x, y] entry of a build or deploy line.
type PlacementCommand struct {
	Type string
	X    int
	Y    int
}

func (p PlacementCommand) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Type, p.X, p.Y})
}
