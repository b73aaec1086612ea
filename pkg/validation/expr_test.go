package validation_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/validation"
)

func TestParsePredicate(t *testing.T) {
	t.Parallel()

	fields := map[string]string{
		"first_name":      "Ann",
		"num_employees":   "2-5",
		"technical_level": "Technical",
		"last_name":       "  ",
	}
	cases := []struct {
		expr string
		want bool
	}{
		{`first_name`, true},
		{`last_name`, false},
		{`!last_name`, true},
		{`company_name`, false},
		{`num_employees == "2-5"`, true},
		{`num_employees != "2-5"`, false},
		{`technical_level == Technical`, true},
		{`num_employees in ["1", "2-5", "6-10"]`, true},
		{`num_employees in ['11-50', '500+']`, false},
		{`num_employees in []`, false},
		{`first_name && technical_level == "Neutral"`, false},
		{`first_name && (technical_level == "Neutral" || num_employees == "2-5")`, true},
		{`!(first_name || company_name)`, false},
	}
	for _, tc := range cases {
		fn, err := validation.ParsePredicate(tc.expr)
		if err != nil {
			t.Fatalf("%s: parse: %v", tc.expr, err)
		}
		if got := fn(fields); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestParsePredicate_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":               "empty",
		`a = "x"`:        "use '=='",
		`a & b`:          "use '&&'",
		`a == "x`:        "unterminated",
		`(a || b`:        "missing closing",
		`a in "x"`:       "expects a [list]",
		`a in ["x" "y"]`: "expected ',' or ']'",
		`a ==`:           "missing value",
		`== "x"`:         "expected field name",
		`a b`:            "unexpected token",
	}
	for expr, want := range cases {
		_, err := validation.ParsePredicate(expr)
		if err == nil {
			t.Fatalf("%q: expected error", expr)
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("%q: expected %q in %v", expr, want, err)
		}
	}
}

func TestExpressionFields(t *testing.T) {
	t.Parallel()

	got, err := validation.ExpressionFields(`email && (num_employees in ["1"] || !email || job_title != CTO)`)
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	want := []string{"email", "num_employees", "job_title"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestRules_ExpressionPredicates(t *testing.T) {
	rules := validation.NewRules()

	fn, err := rules.Condition(`num_employees in ["1", "2-5"]`)
	if err != nil {
		t.Fatalf("expected expression to resolve: %v", err)
	}
	if !fn(map[string]string{"num_employees": "1"}) {
		t.Fatalf("expected match")
	}
	if _, err := rules.Condition(`num_employees ==`); err == nil {
		t.Fatalf("expected malformed expression to fail")
	}

	named, err := rules.Condition(validation.PredicateSmallCompany)
	if err != nil {
		t.Fatalf("registered name should resolve: %v", err)
	}
	if !named(map[string]string{"num_employees": "2-5"}) {
		t.Fatalf("expected registered predicate to run")
	}

	def := model.MustDefaultDefinition()
	def.Steps[1].Transition.When = `num_employees in ["1", "2-5", "6-10"] && technical_level != Technical`
	if err := validation.CheckReferences(def, rules); err != nil {
		t.Fatalf("expression over known fields should resolve: %v", err)
	}
	def.Steps[1].Transition.When = `favourite_colour == "blue"`
	if err := validation.CheckReferences(def, rules); err == nil {
		t.Fatalf("expected unknown field to fail")
	}
}

func TestRules_PredicateOnlyReturnsRegisteredNames(t *testing.T) {
	rules := validation.NewRules()

	if _, ok := rules.Predicate("smal_company"); ok {
		t.Fatalf("typo should not resolve as a registered predicate")
	}
	if _, err := rules.Condition("smal_company"); err != nil {
		t.Fatalf("bare field condition should compile: %v", err)
	}
	if _, ok := rules.Predicate("smal_company"); ok {
		t.Fatalf("compiled condition leaked into the predicate registry")
	}
	_, predicates := rules.Names()
	want := []string{validation.PredicatePersonalEmail, validation.PredicateSmallCompany}
	if diff := cmp.Diff(want, predicates); diff != "" {
		t.Fatalf("predicates mismatch (-want +got):\n%s", diff)
	}
}
