package rules

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/nstehr/bastion/ipc"
	"github.com/nstehr/bastion/logs"
	"github.com/nstehr/bastion/model"
)

// Placer is the engine boundary the planner works against. Every attempt
// must be visible to the next query in the same turn.
type Placer interface {
	CanPlace(role Role, at model.Coordinate, count int) bool
	AttemptPlace(role Role, at model.Coordinate, count int) int
	Resource(c Currency) float64
}

// CommandWriter sends one command line to the engine.
type CommandWriter interface {
	Send(v any) error
}

var ErrAlreadySubmitted = errors.New("turn already submitted")

// Board mirrors the engine's view of our side for one turn: resources,
// occupancy and the commands queued so far. It is rebuilt from every deploy
// phase frame and discarded after Submit.
type Board struct {
	reg       Registry
	turn      int
	resources [2]float64
	occupied  map[model.Coordinate][]Role
	build     []ipc.PlacementCommand
	deploy    []ipc.PlacementCommand
	quiet     bool
	submitted bool
}

var _ Placer = (*Board)(nil)

func NewBoard(reg Registry, ts model.TurnState) *Board {
	self := ts.Self()
	b := &Board{
		reg:       reg,
		turn:      ts.TurnNumber(),
		resources: [2]float64{Cores: self.Cores, Bits: self.Bits},
		occupied:  make(map[model.Coordinate][]Role),
		build:     []ipc.PlacementCommand{},
		deploy:    []ipc.PlacementCommand{},
	}
	b.addUnits(ts.P1Units)
	b.addUnits(ts.P2Units)
	return b
}

// addUnits records existing units. Groups past the six roles (removal
// markers and the like) do not occupy cells.
func (b *Board) addUnits(groups [][]model.Unit) {
	for i, group := range groups {
		if i >= int(roleCount) {
			break
		}
		for _, u := range group {
			loc := u.Location()
			b.occupied[loc] = append(b.occupied[loc], Role(i))
		}
	}
}

// SuppressWarnings silences the warning logged for requests outside the arena.
func (b *Board) SuppressWarnings(quiet bool) {
	b.quiet = quiet
}

func (b *Board) Turn() int { return b.turn }

func (b *Board) Resource(c Currency) float64 {
	return b.resources[c]
}

// Affordable returns how many units of role the current pool can pay for.
func (b *Board) Affordable(role Role) int {
	return int(math.Floor(b.resources[CurrencyOf(role)] / b.reg.Cost(role)))
}

func (b *Board) hasStructure(at model.Coordinate) bool {
	for _, r := range b.occupied[at] {
		if r.Structure() {
			return true
		}
	}
	return false
}

// CanPlace reports whether count units of role could be placed at once.
// Structures go one per empty cell on our half; mobile units stack but only
// on a friendly edge cell free of structures.
func (b *Board) CanPlace(role Role, at model.Coordinate, count int) bool {
	if role < 0 || role >= roleCount || count < 1 {
		return false
	}
	if !model.InArena(at) {
		if !b.quiet {
			logs.Warn("placement outside arena", zap.Stringer("role", role), zap.Stringer("at", at))
		}
		return false
	}
	if !model.OwnHalf(at) {
		return false
	}
	if b.Affordable(role) < count {
		return false
	}
	if role.Structure() {
		return count == 1 && len(b.occupied[at]) == 0
	}
	return !b.hasStructure(at) && model.FriendlyEdge(at)
}

// AttemptPlace places up to count units one at a time, re-checking before
// each, and returns how many were queued.
func (b *Board) AttemptPlace(role Role, at model.Coordinate, count int) int {
	placed := 0
	for range count {
		if !b.CanPlace(role, at, 1) {
			break
		}
		b.resources[CurrencyOf(role)] -= b.reg.Cost(role)
		b.occupied[at] = append(b.occupied[at], role)

		cmd := ipc.PlacementCommand{Type: b.reg.Shorthand(role), X: at.X, Y: at.Y}
		if role.Structure() {
			b.build = append(b.build, cmd)
		} else {
			b.deploy = append(b.deploy, cmd)
		}
		placed++
	}
	if placed == 0 {
		logs.Debug("placement rejected", zap.Stringer("role", role), zap.Stringer("at", at), zap.Int("count", count))
	}
	return placed
}

func (b *Board) BuildStack() []ipc.PlacementCommand  { return b.build }
func (b *Board) DeployStack() []ipc.PlacementCommand { return b.deploy }

// Submit sends the build line then the deploy line. A board submits at most
// once; the engine would read a second pair as the next turn's commands.
func (b *Board) Submit(w CommandWriter) error {
	if b.submitted {
		return ErrAlreadySubmitted
	}
	b.submitted = true
	if err := w.Send(b.build); err != nil {
		return fmt.Errorf("send build stack: %w", err)
	}
	if err := w.Send(b.deploy); err != nil {
		return fmt.Errorf("send deploy stack: %w", err)
	}
	return nil
}
