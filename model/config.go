package model

// GameConfig is the game-start frame. Only the fields the bot reads are decoded;
// the engine sends a much larger document.
type GameConfig struct {
	UnitInformation []UnitInformation `json:"unitInformation"`
}

// UnitInformation describes one unit type. Order matters: the engine lists
// structures first, then mobile units.
type UnitInformation struct {
	Shorthand string  `json:"shorthand"`
	Display   string  `json:"display,omitempty"`
	Cost      float64 `json:"cost"`
}
