package rules

import (
	"errors"

	"go.uber.org/zap"

	"github.com/nstehr/bastion/logs"
)

var ErrNoRandomSource = errors.New("rule needs a random source")

// placeGroup walks a group in order. A rejected cell is skipped, never
// fatal: later cells may still be empty and affordable.
func placeGroup(p Placer, g PlacementGroup) int {
	placed := 0
	for _, c := range g.Cells {
		if !p.CanPlace(g.Role, c, 1) {
			continue
		}
		placed += p.AttemptPlace(g.Role, c, 1)
	}
	return placed
}

// ActionAreaAttackerPush sends a stack of area attackers up the left lane.
func ActionAreaAttackerPush(env RuleEnv) error {
	if !env.Board.CanPlace(AreaAttacker, AreaAttackerCell, AreaAttackerCount) {
		return nil
	}
	n := env.Board.AttemptPlace(AreaAttacker, AreaAttackerCell, AreaAttackerCount)
	logs.Debug("area attackers queued", zap.Stringer("at", AreaAttackerCell), zap.Int("count", n))
	return nil
}

// ActionDebuffAttackerScreen drops a single debuff attacker on a random
// candidate cell so its entry point is not predictable.
func ActionDebuffAttackerScreen(env RuleEnv) error {
	if env.Rand == nil {
		return ErrNoRandomSource
	}
	at := DebuffCandidates[env.Rand.Intn(len(DebuffCandidates))]
	if !env.Board.CanPlace(DebuffAttacker, at, 1) {
		return nil
	}
	n := env.Board.AttemptPlace(DebuffAttacker, at, 1)
	logs.Debug("debuff attacker queued", zap.Stringer("at", at), zap.Int("count", n))
	return nil
}
