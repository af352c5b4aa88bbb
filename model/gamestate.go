package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Phase is turnInfo[0].
type Phase int

const (
	PhaseDeploy Phase = 0 // we place units and submit
	PhaseAction Phase = 1 // a simulation frame, informational
	PhaseEnd    Phase = 2 // game over
)

func (p Phase) String() string {
	switch p {
	case PhaseDeploy:
		return "deploy"
	case PhaseAction:
		return "action"
	case PhaseEnd:
		return "end"
	}
	return "phase(" + strconv.Itoa(int(p)) + ")"
}

var ErrMalformedState = errors.New("malformed turn state")

// TurnState is one frame from the engine. Units are grouped by unit type
// index, matching the order of GameConfig.UnitInformation.
type TurnState struct {
	TurnInfo []int     `json:"turnInfo"` // [phase, turn number, action frame]
	P1Stats  []float64 `json:"p1Stats"`  // [health, cores, bits, time]
	P2Stats  []float64 `json:"p2Stats"`
	P1Units  [][]Unit  `json:"p1Units"`
	P2Units  [][]Unit  `json:"p2Units"`
}

// PlayerStats is the decoded form of a p1Stats / p2Stats array.
type PlayerStats struct {
	Health float64
	Cores  float64
	Bits   float64
	Time   float64
}

// ParseTurnState decodes and validates a turn-state frame.
func ParseTurnState(data []byte) (TurnState, error) {
	var ts TurnState
	if err := json.Unmarshal(data, &ts); err != nil {
		return TurnState{}, fmt.Errorf("unmarshal turn state: %w", err)
	}
	if len(ts.TurnInfo) < 2 {
		return TurnState{}, fmt.Errorf("%w: turnInfo has %d entries", ErrMalformedState, len(ts.TurnInfo))
	}
	if ts.Phase() == PhaseDeploy && len(ts.P1Stats) < 3 {
		return TurnState{}, fmt.Errorf("%w: p1Stats has %d entries", ErrMalformedState, len(ts.P1Stats))
	}
	return ts, nil
}

func (ts TurnState) Phase() Phase    { return Phase(ts.TurnInfo[0]) }
func (ts TurnState) TurnNumber() int { return ts.TurnInfo[1] }

// ActionFrame returns the simulation frame, or -1 when the engine omitted it.
func (ts TurnState) ActionFrame() int {
	if len(ts.TurnInfo) < 3 {
		return -1
	}
	return ts.TurnInfo[2]
}

func (ts TurnState) Self() PlayerStats     { return decodeStats(ts.P1Stats) }
func (ts TurnState) Opponent() PlayerStats { return decodeStats(ts.P2Stats) }

func decodeStats(s []float64) PlayerStats {
	var ps PlayerStats
	fields := []*float64{&ps.Health, &ps.Cores, &ps.Bits, &ps.Time}
	for i := range min(len(s), len(fields)) {
		*fields[i] = s[i]
	}
	return ps
}

// Unit is one entry of a p1Units / p2Units group: [x, y, health, id].
// The engine sends the id as a string, older builds as a number.
type Unit struct {
	X      int
	Y      int
	Health float64
	ID     string
}

func (u Unit) Location() Coordinate { return Coordinate{X: u.X, Y: u.Y} }

func (u *Unit) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unit entry: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("%w: unit entry has %d fields", ErrMalformedState, len(raw))
	}
	var x, y float64
	if err := json.Unmarshal(raw[0], &x); err != nil {
		return fmt.Errorf("unit x: %w", err)
	}
	if err := json.Unmarshal(raw[1], &y); err != nil {
		return fmt.Errorf("unit y: %w", err)
	}
	u.X, u.Y = int(x), int(y)
	if len(raw) > 2 {
		if err := json.Unmarshal(raw[2], &u.Health); err != nil {
			return fmt.Errorf("unit health: %w", err)
		}
	}
	if len(raw) > 3 {
		var id any
		if err := json.Unmarshal(raw[3], &id); err != nil {
			return fmt.Errorf("unit id: %w", err)
		}
		switch v := id.(type) {
		case string:
			u.ID = v
		case float64:
			u.ID = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return nil
}
