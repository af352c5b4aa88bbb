package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame kinds. The engine does not tag its frames; a turn state is recognised
// by its turnInfo key and anything else is the game-start config.
const (
	FrameConfig    = "config"
	FrameTurnState = "turn_state"
)

// ErrGameOver is returned by a handler to end ReadLoop cleanly.
var ErrGameOver = errors.New("game over")

// Classify reports which kind of frame a line carries.
func Classify(frame []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(frame, &fields); err != nil {
		return "", fmt.Errorf("unmarshal frame: %w", err)
	}
	if _, ok := fields["turnInfo"]; ok {
		return FrameTurnState, nil
	}
	return FrameConfig, nil
}
