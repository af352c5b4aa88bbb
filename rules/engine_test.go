package rules

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/bastion/model"
)

func newTestEngine(t *testing.T, seed uint64) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultRules(), WithSeed(seed))
	require.NoError(t, err)
	return e
}

func TestDefaultRulesCompile(t *testing.T) {
	engine := newTestEngine(t, 1)
	require.Len(t, engine.rules, 2)
	require.Equal(t, "area-attacker-push", engine.rules[0].Name)
	require.Equal(t, "debuff-attacker-screen", engine.rules[1].Name)
	for i := 1; i < len(engine.rules); i++ {
		require.LessOrEqual(t, engine.rules[i].Priority, engine.rules[i-1].Priority)
	}
}

func TestNewEngineRejectsBadRules(t *testing.T) {
	_, err := NewEngine([]*Rule{{Name: "broken", ConditionSrc: `Bits() >=`, Action: ActionAreaAttackerPush}})
	require.ErrorContains(t, err, `compile rule "broken"`)

	_, err = NewEngine([]*Rule{{Name: "not-bool", ConditionSrc: `Bits()`, Action: ActionAreaAttackerPush}})
	require.Error(t, err)

	_, err = NewEngine([]*Rule{{Name: "no-action", ConditionSrc: `true`}})
	require.ErrorContains(t, err, "no action")
}

func TestNewEngineKeepsOrderOnTies(t *testing.T) {
	noop := func(RuleEnv) error { return nil }
	e, err := NewEngine([]*Rule{
		{Name: "a", Priority: 1, ConditionSrc: `true`, Action: noop},
		{Name: "b", Priority: 1, ConditionSrc: `true`, Action: noop},
		{Name: "c", Priority: 5, ConditionSrc: `true`, Action: noop},
	})
	require.NoError(t, err)
	var names []string
	for _, r := range e.rules {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{"c", "a", "b"}, names)
}

func TestPlanDefensesOrder(t *testing.T) {
	p := newFakePlacer(1000, 0)
	newTestEngine(t, 1).PlanDefenses(p)

	var want []call
	for _, g := range DefenseGroups() {
		for _, c := range g.Cells {
			want = append(want, call{op: "attempt", role: g.Role, at: c, count: 1})
		}
	}
	require.Equal(t, want, p.attempts())

	// first_row walls, then destructor_loc1, then second_row walls.
	got := p.attempts()
	require.Equal(t, call{op: "attempt", role: Wall, at: model.Coordinate{X: 0, Y: 13}, count: 1}, got[0])
	require.Equal(t, call{op: "attempt", role: Defense, at: model.Coordinate{X: 12, Y: 11}, count: 1}, got[27])
	require.Equal(t, call{op: "attempt", role: Wall, at: model.Coordinate{X: 13, Y: 12}, count: 1}, got[29])
}

func TestPlanDefensesCustomGroups(t *testing.T) {
	plan := []PlacementGroup{
		{Name: "gate", Role: Defense, Cells: []model.Coordinate{{X: 13, Y: 13}, {X: 14, Y: 13}}},
		{Name: "bank", Role: Economy, Cells: []model.Coordinate{{X: 13, Y: 5}}},
	}
	e, err := NewEngine(DefaultRules(), WithSeed(1), WithGroups(plan))
	require.NoError(t, err)

	p := newFakePlacer(7, 0)
	require.Equal(t, 2, e.PlanDefenses(p))
	require.Equal(t, []call{
		{op: "attempt", role: Defense, at: model.Coordinate{X: 13, Y: 13}, count: 1},
		{op: "attempt", role: Defense, at: model.Coordinate{X: 14, Y: 13}, count: 1},
	}, p.attempts())
	require.Equal(t, 1.0, p.Resource(Cores))
	require.Len(t, p.calls, 5, "the economy cell is still checked")

	empty, err := NewEngine(DefaultRules(), WithGroups(nil))
	require.NoError(t, err)
	p = newFakePlacer(1000, 0)
	require.Zero(t, empty.PlanDefenses(p))
	require.Empty(t, p.calls)
}

func TestPlanDefensesChecksBeforeEveryAttempt(t *testing.T) {
	p := newFakePlacer(1000, 0)
	newTestEngine(t, 1).PlanDefenses(p)

	for i, c := range p.calls {
		if c.op != "attempt" {
			continue
		}
		require.Greater(t, i, 0)
		prev := p.calls[i-1]
		require.Equal(t, call{op: "can", role: c.role, at: c.at, count: c.count}, prev)
	}
}

func TestPlanDefensesSkipsOccupiedCells(t *testing.T) {
	p := newFakePlacer(1000, 0)
	occupied := []model.Coordinate{{X: 0, Y: 13}, {X: 12, Y: 11}, {X: 13, Y: 8}}
	for _, c := range occupied {
		p.blocked[c] = true
	}

	placed := newTestEngine(t, 1).PlanDefenses(p)
	require.Equal(t, totalDefenseCells()-len(occupied), placed)
	for _, a := range p.attempts() {
		require.NotContains(t, occupied, a.at, "attempted placement on occupied cell")
	}
}

func TestPlanDefensesContinuesWhenPoorForOneRole(t *testing.T) {
	// 2 cores: two walls fit, then no defense (3) or economy (4) ever does,
	// but the walls are still attempted in order.
	p := newFakePlacer(2, 0)
	placed := newTestEngine(t, 1).PlanDefenses(p)
	require.Equal(t, 2, placed)

	attempts := p.attempts()
	require.Len(t, attempts, 2)
	require.Equal(t, model.Coordinate{X: 0, Y: 13}, attempts[0].at)
	require.Equal(t, model.Coordinate{X: 1, Y: 13}, attempts[1].at)
	// Every remaining cell was still queried.
	require.Len(t, p.calls, totalDefenseCells()+2)
}

func TestAreaAttackerThreshold(t *testing.T) {
	p := newFakePlacer(0, 11)
	require.NoError(t, newTestEngine(t, 1).DeployAttackers(p))
	require.Empty(t, p.attemptsFor(AreaAttacker))

	p = newFakePlacer(0, 12)
	require.NoError(t, newTestEngine(t, 1).DeployAttackers(p))
	require.Equal(t, []call{{op: "attempt", role: AreaAttacker, at: model.Coordinate{X: 11, Y: 2}, count: 3}}, p.attemptsFor(AreaAttacker))
	require.Contains(t, p.calls, call{op: "can", role: AreaAttacker, at: model.Coordinate{X: 11, Y: 2}, count: 3})
}

func TestDebuffSeesAreaSpending(t *testing.T) {
	// 12 bits, area attacker at 3.5: 1.5 left after the push, still > 1.
	p := newFakePlacer(0, 12)
	p.cost[AreaAttacker] = 3.5
	require.NoError(t, newTestEngine(t, 1).DeployAttackers(p))
	require.Len(t, p.attemptsFor(AreaAttacker), 1)
	require.Len(t, p.attemptsFor(DebuffAttacker), 1)

	// At 4 the push spends everything and the debuff rule must not fire.
	p = newFakePlacer(0, 12)
	p.cost[AreaAttacker] = 4
	require.NoError(t, newTestEngine(t, 1).DeployAttackers(p))
	require.Len(t, p.attemptsFor(AreaAttacker), 1)
	require.Empty(t, p.attemptsFor(DebuffAttacker))
	require.Zero(t, p.Resource(Bits))
}

func TestDebuffThreshold(t *testing.T) {
	p := newFakePlacer(0, 1)
	require.NoError(t, newTestEngine(t, 1).DeployAttackers(p))
	require.Empty(t, p.calls)

	p = newFakePlacer(0, 1.5)
	require.NoError(t, newTestEngine(t, 1).DeployAttackers(p))
	require.Len(t, p.attemptsFor(DebuffAttacker), 1)
}

func TestDebuffCandidates(t *testing.T) {
	e := newTestEngine(t, 7)
	seen := make(map[model.Coordinate]int)
	for range 400 {
		p := newFakePlacer(0, 5)
		require.NoError(t, e.DeployAttackers(p))
		attempts := p.attemptsFor(DebuffAttacker)
		require.Len(t, attempts, 1)
		require.Contains(t, DebuffCandidates, attempts[0].at)
		require.Equal(t, 1, attempts[0].count)
		seen[attempts[0].at]++
	}
	require.Len(t, seen, len(DebuffCandidates), "every candidate should come up over 400 turns")
}

func TestDebuffSkipsBlockedCandidate(t *testing.T) {
	p := newFakePlacer(0, 5)
	for _, c := range DebuffCandidates {
		p.blocked[c] = true
	}
	require.NoError(t, newTestEngine(t, 3).DeployAttackers(p))
	require.Empty(t, p.attempts())
	require.Len(t, p.calls, 1)
}

func TestSameSeedSameChoices(t *testing.T) {
	pick := func(seed uint64) []model.Coordinate {
		e := newTestEngine(t, seed)
		var out []model.Coordinate
		for range 20 {
			p := newFakePlacer(0, 5)
			require.NoError(t, e.DeployAttackers(p))
			out = append(out, p.attemptsFor(DebuffAttacker)[0].at)
		}
		return out
	}
	require.Equal(t, pick(99), pick(99))
}

func TestRandomSourceSurvivesTurns(t *testing.T) {
	// Reseeding each turn would repeat the first pick every turn.
	e := newTestEngine(t, 5)
	first := map[model.Coordinate]bool{}
	for range 50 {
		p := newFakePlacer(0, 5)
		require.NoError(t, e.DeployAttackers(p))
		first[p.attemptsFor(DebuffAttacker)[0].at] = true
	}
	require.Greater(t, len(first), 1)
}

func TestAttemptUpperBound(t *testing.T) {
	for _, res := range []struct{ cores, bits float64 }{{0, 0}, {5, 3}, {30, 12}, {1000, 1000}} {
		p := newFakePlacer(res.cores, res.bits)
		require.NoError(t, newTestEngine(t, 11).Evaluate(p))
		assert.LessOrEqual(t, len(p.attempts()), totalDefenseCells()+2, "cores=%v bits=%v", res.cores, res.bits)
	}
}

func TestFixedRulesAreDeterministic(t *testing.T) {
	run := func() []call {
		p := newFakePlacer(40, 0)
		p.blocked[model.Coordinate{X: 5, Y: 13}] = true
		require.NoError(t, newTestEngine(t, 1).Evaluate(p))
		return slices.Clone(p.calls)
	}
	require.Equal(t, run(), run())
}

func TestEvaluateOnBoard(t *testing.T) {
	reg, err := NewRegistry(testConfig())
	require.NoError(t, err)
	ts := model.TurnState{TurnInfo: []int{0, 1, -1}, P1Stats: []float64{30, 40, 12, 0}}
	b := NewBoard(reg, ts)

	require.NoError(t, newTestEngine(t, 1).Evaluate(b))

	// 40 cores: 27 front walls, both centre destructors (6), then the first
	// 7 cells of the second row.
	build := b.BuildStack()
	require.Len(t, build, 27+2+7)
	require.Equal(t, "FF", build[0].Type)
	require.Equal(t, "DF", build[27].Type)
	require.Zero(t, b.Resource(Cores))

	// 12 bits: three EMPs at [11,2] (9), then one scrambler (1).
	deploy := b.DeployStack()
	require.Len(t, deploy, 4)
	for _, d := range deploy[:3] {
		require.Equal(t, "EI", d.Type)
		require.Equal(t, 11, d.X)
		require.Equal(t, 2, d.Y)
	}
	require.Equal(t, "SI", deploy[3].Type)
	require.Equal(t, 2.0, b.Resource(Bits))
}

func TestDebuffNeedsRandomSource(t *testing.T) {
	p := newFakePlacer(0, 5)
	err := ActionDebuffAttackerScreen(RuleEnv{Board: p})
	require.ErrorIs(t, err, ErrNoRandomSource)
	require.Empty(t, p.calls)
	require.Equal(t, 5.0, p.Resource(Bits))
}

func TestDeployAttackersWrapsActionError(t *testing.T) {
	boom := errors.New("boom")
	var ran []string
	e, err := NewEngine([]*Rule{
		{Name: "fails", Priority: 2, ConditionSrc: `Bits() > 1`, Action: func(RuleEnv) error {
			ran = append(ran, "fails")
			return boom
		}},
		{Name: "after", Priority: 1, ConditionSrc: `true`, Action: func(RuleEnv) error {
			ran = append(ran, "after")
			return nil
		}},
	}, WithSeed(1))
	require.NoError(t, err)

	err = e.DeployAttackers(newFakePlacer(0, 5))
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, `rule "fails" action`)
	require.Equal(t, []string{"fails"}, ran, "later rules do not run after a failure")
}
