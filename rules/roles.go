package rules

import (
	"errors"
	"fmt"

	"github.com/nstehr/bastion/model"
)

// Role is the logical job of a unit type. The engine's config lists unit
// types in this order, so a Role doubles as the descriptor index.
type Role int

const (
	Wall           Role = iota // blocks a cell, no damage
	Economy                    // generates bits over time
	Defense                    // damages enemy mobile units in range
	FastAttacker               // cheap, fast mobile unit
	AreaAttacker               // mobile unit with splash damage against structures
	DebuffAttacker             // mobile unit that disrupts enemy mobile units
	roleCount
)

var roleNames = [roleCount]string{
	Wall:           "wall",
	Economy:        "economy",
	Defense:        "defense",
	FastAttacker:   "fast_attacker",
	AreaAttacker:   "area_attacker",
	DebuffAttacker: "debuff_attacker",
}

func (r Role) String() string {
	if r < 0 || r >= roleCount {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// Structure reports whether the role is a stationary unit paid for in cores.
func (r Role) Structure() bool {
	return r >= Wall && r <= Defense
}

// Currency selects one of the two resource pools.
type Currency int

const (
	Cores Currency = iota // structures
	Bits                  // mobile units
)

func (c Currency) String() string {
	if c == Cores {
		return "cores"
	}
	return "bits"
}

// CurrencyOf returns the pool a role is paid from.
func CurrencyOf(r Role) Currency {
	if r.Structure() {
		return Cores
	}
	return Bits
}

var (
	ErrTooFewUnitTypes = errors.New("too few unit types in config")
	ErrInvalidUnitType = errors.New("invalid unit type in config")
)

type unitType struct {
	shorthand string
	cost      float64
}

// Registry binds each role to the engine's unit type. It is built once at
// game start and has no setters.
type Registry struct {
	types [roleCount]unitType
}

// NewRegistry reads the first six unit descriptors of the game config.
func NewRegistry(cfg model.GameConfig) (Registry, error) {
	if len(cfg.UnitInformation) < int(roleCount) {
		return Registry{}, fmt.Errorf("%w: need %d, got %d", ErrTooFewUnitTypes, roleCount, len(cfg.UnitInformation))
	}
	var reg Registry
	for r := Wall; r < roleCount; r++ {
		info := cfg.UnitInformation[r]
		if info.Shorthand == "" {
			return Registry{}, fmt.Errorf("%w: %s (index %d) has no shorthand", ErrInvalidUnitType, r, int(r))
		}
		if info.Cost <= 0 {
			return Registry{}, fmt.Errorf("%w: %s (%s) has cost %v", ErrInvalidUnitType, r, info.Shorthand, info.Cost)
		}
		reg.types[r] = unitType{shorthand: info.Shorthand, cost: info.Cost}
	}
	return reg, nil
}

func (reg Registry) Shorthand(r Role) string { return reg.types[r].shorthand }
func (reg Registry) Cost(r Role) float64     { return reg.types[r].cost }

// RoleOf maps an engine shorthand back to its role.
func (reg Registry) RoleOf(shorthand string) (Role, bool) {
	for r := Wall; r < roleCount; r++ {
		if reg.types[r].shorthand == shorthand {
			return r, true
		}
	}
	return 0, false
}
