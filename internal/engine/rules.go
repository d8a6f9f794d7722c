package engine

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"curia-backend/internal/metadata"
)

// EvaluateRules runs the entity's cross-field rules against a mapped row and
// returns one detail per violated rule. Rules whose fields are not all set
// are skipped.
func EvaluateRules(entity *metadata.Entity, record map[string]any, now time.Time) []ErrorDetail {
	if len(entity.Rules) == 0 {
		return nil
	}

	env := ruleEnv(record, now)

	var errs []ErrorDetail
	for _, r := range entity.Rules {
		if !fieldsSet(record, r.Fields) {
			continue
		}
		if detail := EvaluateExpressionRule(r, env); detail != nil {
			errs = append(errs, *detail)
		}
	}
	return errs
}

func ruleEnv(record map[string]any, now time.Time) map[string]any {
	return map[string]any{
		"record": record,
		"today":  now,
		"before": before,
	}
}

// CompileRules compiles every rule of the given entities up front so that
// request handling never writes to a shared rule.
func CompileRules(entities []*metadata.Entity) error {
	for _, e := range entities {
		for _, r := range e.Rules {
			prog, err := CompileExpression(r.Expression)
			if err != nil {
				return fmt.Errorf("%s rule %s: %w", e.Name, r.Name, err)
			}
			r.Compiled = prog
		}
	}
	return nil
}

// CompileExpression compiles an expression string into an expr-lang program.
func CompileExpression(expression string) (*vm.Program, error) {
	prog, err := expr.Compile(expression, expr.Env(ruleEnv(map[string]any{}, time.Time{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile expression: %w", err)
	}
	return prog, nil
}

// EvaluateExpressionRule evaluates a rule against an environment.
// Returns nil if the rule passes (expression is false), or an ErrorDetail if violated (expression is true).
func EvaluateExpressionRule(rule *metadata.Rule, env map[string]any) *ErrorDetail {
	prog, ok := rule.Compiled.(*vm.Program)
	if !ok || prog == nil {
		compiled, err := CompileExpression(rule.Expression)
		if err != nil {
			return &ErrorDetail{Rule: rule.Name, Message: fmt.Sprintf("compile error: %v", err)}
		}
		rule.Compiled = compiled
		prog = compiled
	}

	result, err := expr.Run(prog, env)
	if err != nil {
		return &ErrorDetail{Rule: rule.Name, Message: fmt.Sprintf("rule evaluation error: %v", err)}
	}

	violated, ok := result.(bool)
	if !ok || !violated {
		return nil
	}

	msg := rule.Message
	if msg == "" {
		msg = "Expression rule violated"
	}
	detail := &ErrorDetail{Rule: rule.Name, Message: msg}
	if len(rule.Fields) > 0 {
		detail.Field = rule.Fields[0]
	}
	return detail
}

// before reports whether date a falls on an earlier calendar day than b.
// Non-date arguments compare as false.
func before(a, b any) bool {
	ta, err := dateValue(a)
	if err != nil {
		return false
	}
	tb, err := dateValue(b)
	if err != nil {
		return false
	}
	if sameDay(ta, tb) {
		return false
	}
	return ta.Before(tb)
}

func fieldsSet(record map[string]any, names []string) bool {
	for _, n := range names {
		if isEmpty(record[n]) {
			return false
		}
	}
	return true
}
