package rules

import (
	"golang.org/x/exp/rand"

	"github.com/nstehr/bastion/model"
)

// RuleEnv exposes the live board to rule conditions and actions. It holds
// the board handle itself, never a copy, so a condition evaluated after an
// earlier rule's action sees that rule's spending.
type RuleEnv struct {
	Board Placer
	Rand  *rand.Rand
}

func (e RuleEnv) Bits() float64  { return e.Board.Resource(Bits) }
func (e RuleEnv) Cores() float64 { return e.Board.Resource(Cores) }

// CanPlaceAt asks the board whether count units of the named role fit at
// (x, y). Unknown role names are never placeable.
func (e RuleEnv) CanPlaceAt(role string, x, y, count int) bool {
	r, ok := roleByName(role)
	if !ok {
		return false
	}
	return e.Board.CanPlace(r, model.Coordinate{X: x, Y: y}, count)
}

func roleByName(name string) (Role, bool) {
	for r := Wall; r < roleCount; r++ {
		if roleNames[r] == name {
			return r, true
		}
	}
	return 0, false
}
