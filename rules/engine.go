package rules

import (
	"fmt"
	"sort"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/nstehr/bastion/logs"
)

// Engine plans a turn: the fixed fortress groups first, then the attacker
// rules in priority order. The random source lives as long as the engine,
// so it is seeded once per process rather than once per turn.
type Engine struct {
	groups []PlacementGroup
	rules  []*Rule
	seed   uint64
	rng    *rand.Rand
}

type Option func(e *Engine)

// WithSeed makes the attacker choices reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithGroups replaces the fortress plan.
func WithGroups(groups []PlacementGroup) Option {
	return func(e *Engine) {
		e.groups = groups
	}
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule, opts ...Option) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		groups: DefenseGroups(),
		rules:  compiled,
		seed:   uint64(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rng = rand.New(rand.NewSource(e.seed))
	return e, nil
}

func (e *Engine) Seed() uint64 { return e.seed }

// Evaluate runs the whole plan against one turn's board.
func (e *Engine) Evaluate(p Placer) error {
	e.PlanDefenses(p)
	return e.DeployAttackers(p)
}

// PlanDefenses places every fortress group in order and returns the number
// of structures queued.
func (e *Engine) PlanDefenses(p Placer) int {
	total := 0
	for _, g := range e.groups {
		n := placeGroup(p, g)
		if n > 0 {
			logs.Debug("group placed", zap.String("group", g.Name), zap.Stringer("role", g.Role), zap.Int("count", n))
		}
		total += n
	}
	return total
}

// DeployAttackers evaluates each rule's condition against the live board
// just before running it, so a rule sees what earlier rules spent.
func (e *Engine) DeployAttackers(p Placer) error {
	env := RuleEnv{Board: p, Rand: e.rng}
	for _, r := range e.rules {
		result, err := vm.Run(r.program, env)
		if err != nil {
			return fmt.Errorf("rule %q condition: %w", r.Name, err)
		}
		if match, ok := result.(bool); !ok || !match {
			continue
		}

		logs.Debug("rule fired", zap.String("rule", r.Name), zap.Int("priority", r.Priority), zap.Float64("bits", env.Bits()))
		if err := r.Action(env); err != nil {
			return fmt.Errorf("rule %q action: %w", r.Name, err)
		}
	}
	return nil
}

// DefaultRules returns the attacker rules: a 3-stack area push when bits
// allow, then a single debuff attacker with whatever is left.
func DefaultRules() []*Rule {
	return []*Rule{
		{
			Name:         "area-attacker-push",
			Priority:     200,
			ConditionSrc: `Bits() >= 12`,
			Action:       ActionAreaAttackerPush,
		},
		{
			Name:         "debuff-attacker-screen",
			Priority:     100,
			ConditionSrc: `Bits() > 1`,
			Action:       ActionDebuffAttackerScreen,
		},
	}
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		if r.Action == nil {
			return nil, fmt.Errorf("rule %q has no action", r.Name)
		}
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(RuleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
