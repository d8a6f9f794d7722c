package engine

import (
	"testing"
	"time"

	"curia-backend/internal/metadata"
)

func date(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBefore(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"earlier day", date("2020-01-01"), date("2020-01-02"), true},
		{"later day", date("2020-01-02"), date("2020-01-01"), false},
		{"same day different time", date("2020-01-01T23:00:00Z"), date("2020-01-01T01:00:00Z"), false},
		{"strings", "01.01.2020", "2020-06-01", true},
		{"nil first", nil, date("2020-01-01"), false},
		{"nil second", date("2020-01-01"), nil, false},
		{"garbage", "soon", "later", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := before(tt.a, tt.b); got != tt.want {
				t.Fatalf("before(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEvaluateRules_CuriaDates(t *testing.T) {
	entity := metadata.Catalog(metadata.CodePrefixes{})[1]
	if err := CompileRules([]*metadata.Entity{entity}); err != nil {
		t.Fatal(err)
	}
	now := date("2024-01-01")

	tests := []struct {
		name   string
		record map[string]any
		rules  []string
	}{
		{
			name:   "ordered dates",
			record: map[string]any{"appointment_date": date("2020-01-01"), "installation_date": date("2020-02-01"), "mandate_end_date": date("2023-01-01")},
		},
		{
			name:   "same day is allowed",
			record: map[string]any{"appointment_date": date("2020-01-01"), "installation_date": date("2020-01-01")},
		},
		{
			name:   "installation before appointment",
			record: map[string]any{"appointment_date": date("2020-06-01"), "installation_date": date("2020-01-01")},
			rules:  []string{"installation_after_appointment"},
		},
		{
			name:   "mandate end before installation",
			record: map[string]any{"installation_date": date("2020-06-01"), "mandate_end_date": date("2020-01-01")},
			rules:  []string{"mandate_end_after_installation"},
		},
		{
			name:   "missing dates skip rules",
			record: map[string]any{"installation_date": date("2020-06-01"), "appointment_date": nil},
		},
		{
			name:   "both violated",
			record: map[string]any{"appointment_date": date("2021-01-01"), "installation_date": date("2020-06-01"), "mandate_end_date": date("2020-01-01")},
			rules:  []string{"mandate_end_after_installation", "installation_after_appointment"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := EvaluateRules(entity, tt.record, now)
			if len(details) != len(tt.rules) {
				t.Fatalf("expected %d violations, got %+v", len(tt.rules), details)
			}
			for i, r := range tt.rules {
				if details[i].Rule != r {
					t.Fatalf("violation %d: expected %s, got %s", i, r, details[i].Rule)
				}
				if details[i].Field == "" || details[i].Message == "" {
					t.Fatalf("violation %d lacks field or message: %+v", i, details[i])
				}
			}
		})
	}
}

func TestEvaluateRules_BirthDateUsesToday(t *testing.T) {
	entity := metadata.Catalog(metadata.CodePrefixes{})[2]
	now := date("2024-05-01")

	if d := EvaluateRules(entity, map[string]any{"birth_date": date("2024-05-01")}, now); len(d) != 0 {
		t.Fatalf("birth today should pass, got %+v", d)
	}
	d := EvaluateRules(entity, map[string]any{"birth_date": date("2024-05-02")}, now)
	if len(d) != 1 || d[0].Rule != "birth_date_not_in_future" || d[0].Field != "birth_date" {
		t.Fatalf("expected future birth date rejected, got %+v", d)
	}
}

func TestCompileRules_RejectsBadExpression(t *testing.T) {
	entity := &metadata.Entity{
		Name:  "broken",
		Rules: []*metadata.Rule{{Name: "bad", Expression: "record.a =="}},
	}
	if err := CompileRules([]*metadata.Entity{entity}); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestEvaluateExpressionRule_CompilesLazily(t *testing.T) {
	rule := &metadata.Rule{Name: "r", Expression: "before(record.a, record.b)", Message: "a before b"}
	env := ruleEnv(map[string]any{"a": "2020-01-01", "b": "2021-01-01"}, time.Now())
	detail := EvaluateExpressionRule(rule, env)
	if detail == nil || detail.Message != "a before b" {
		t.Fatalf("expected violation, got %+v", detail)
	}
	if rule.Compiled == nil {
		t.Fatal("expected program cached on rule")
	}
}
