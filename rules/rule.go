package rules

import "github.com/expr-lang/expr/vm"

// ActionFunc performs a rule's placements once its condition holds.
type ActionFunc func(env RuleEnv) error

// Rule is a condition → action pair evaluated once per turn.
// Conditions are expr source compiled against RuleEnv, e.g. `Bits() >= 12`.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first; ties keep list order
	ConditionSrc string      // expr source (preserved for logging)
	program      *vm.Program // compiled bytecode
	Action       ActionFunc
}
