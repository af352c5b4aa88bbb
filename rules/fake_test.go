package rules

import (
	"math"

	"github.com/nstehr/bastion/model"
)

// call is one query or attempt seen by fakePlacer.
type call struct {
	op    string // "can" or "attempt"
	role  Role
	at    model.Coordinate
	count int
}

// fakePlacer is a minimal engine: flat per-role costs, a blocked set, and a
// log of every boundary call in order.
type fakePlacer struct {
	resources [2]float64
	cost      map[Role]float64
	blocked   map[model.Coordinate]bool
	calls     []call
}

func newFakePlacer(cores, bits float64) *fakePlacer {
	return &fakePlacer{
		resources: [2]float64{Cores: cores, Bits: bits},
		cost: map[Role]float64{
			Wall: 1, Economy: 4, Defense: 3,
			FastAttacker: 1, AreaAttacker: 3, DebuffAttacker: 1,
		},
		blocked: make(map[model.Coordinate]bool),
	}
}

func (f *fakePlacer) fits(role Role, at model.Coordinate, count int) bool {
	if f.blocked[at] {
		return false
	}
	return int(math.Floor(f.resources[CurrencyOf(role)]/f.cost[role])) >= count
}

func (f *fakePlacer) CanPlace(role Role, at model.Coordinate, count int) bool {
	f.calls = append(f.calls, call{op: "can", role: role, at: at, count: count})
	return f.fits(role, at, count)
}

func (f *fakePlacer) AttemptPlace(role Role, at model.Coordinate, count int) int {
	f.calls = append(f.calls, call{op: "attempt", role: role, at: at, count: count})
	placed := 0
	for range count {
		if !f.fits(role, at, 1) {
			break
		}
		f.resources[CurrencyOf(role)] -= f.cost[role]
		placed++
	}
	if role.Structure() && placed > 0 {
		f.blocked[at] = true
	}
	return placed
}

func (f *fakePlacer) Resource(c Currency) float64 { return f.resources[c] }

func (f *fakePlacer) attempts() []call {
	var out []call
	for _, c := range f.calls {
		if c.op == "attempt" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakePlacer) attemptsFor(role Role) []call {
	var out []call
	for _, c := range f.attempts() {
		if c.role == role {
			out = append(out, c)
		}
	}
	return out
}

// sliceWriter collects every line handed to Send.
type sliceWriter struct {
	lines []any
	err   error
}

func (w *sliceWriter) Send(v any) error {
	if w.err != nil {
		return w.err
	}
	w.lines = append(w.lines, v)
	return nil
}

func testConfig() model.GameConfig {
	return model.GameConfig{UnitInformation: []model.UnitInformation{
		{Shorthand: "FF", Display: "Filter", Cost: 1},
		{Shorthand: "EF", Display: "Encryptor", Cost: 4},
		{Shorthand: "DF", Display: "Destructor", Cost: 3},
		{Shorthand: "PI", Display: "Ping", Cost: 1},
		{Shorthand: "EI", Display: "EMP", Cost: 3},
		{Shorthand: "SI", Display: "Scrambler", Cost: 1},
		{Shorthand: "RM", Display: "Remove", Cost: 1},
	}}
}

func totalDefenseCells() int {
	n := 0
	for _, g := range DefenseGroups() {
		n += len(g.Cells)
	}
	return n
}
