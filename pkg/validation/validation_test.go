package validation_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/validation"
)

func TestPersonalDomains_Verbatim(t *testing.T) {
	want := []string{
		"aol.com", "gmail.com", "googlemail.com", "hotmail.co.uk", "hotmail.com",
		"icloud.com", "live.com", "mac.com", "mail.com", "me.com", "msn.com",
		"outlook.co.uk", "outlook.com", "proton.me", "protonmail.com",
		"yahoo.ca", "yahoo.co.in", "yahoo.co.uk", "yahoo.com", "yandex.com", "zoho.com",
	}
	if diff := cmp.Diff(want, validation.PersonalDomains()); diff != "" {
		t.Fatalf("denylist mismatch (-want +got):\n%s", diff)
	}
}

func TestIsCompanyEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"ann@acmecorp.com", true},
		{"ANN@AcmeCorp.COM", true},
		{"ops@sub.example.io", true},
		{"user@gmail.com", false},
		{"user@GMAIL.com", false},
		{"user@yahoo.co.uk", false},
		{"user@proton.me", false},
		{"student@mit.edu", false},
		{"student@cs.stanford.edu", false},
		{"user@education.com", true},
		{"", false},
		{"no-at-sign", false},
		{"two@@acme.com", false},
		{"a@b@acme.com", false},
		{"@acme.com", false},
		{"ann@", false},
	}
	for _, tc := range cases {
		if got := validation.IsCompanyEmail(tc.email); got != tc.want {
			t.Errorf("IsCompanyEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}

func TestIsWellFormedEmail(t *testing.T) {
	if !validation.IsWellFormedEmail(" ann@gmail.com ") {
		t.Fatalf("surrounding whitespace should be tolerated")
	}
	for _, bad := range []string{"ann smith@acme.com", "ann", "ann@@acme.com", "@acme.com"} {
		if validation.IsWellFormedEmail(bad) {
			t.Errorf("expected %q to be malformed", bad)
		}
	}
}

func TestIsSmallCompany(t *testing.T) {
	for _, label := range []string{"1", "2-5", "6-10"} {
		if !validation.IsSmallCompany(label) {
			t.Errorf("expected %q to be small", label)
		}
	}
	for _, label := range []string{"11-50", "51-100", "101-500", "500+", "Select", "", "7"} {
		if validation.IsSmallCompany(label) {
			t.Errorf("expected %q not to be small", label)
		}
	}
}

func TestEmployeeBucketLabels_MatchDefaultDefinition(t *testing.T) {
	def := model.MustDefaultDefinition()
	field, _ := def.Field("num_employees")
	if diff := cmp.Diff(field.Options, validation.EmployeeBucketLabels()); diff != "" {
		t.Fatalf("bucket labels drifted from definition (-def +validation):\n%s", diff)
	}
}

func TestValidateStep(t *testing.T) {
	def := model.MustDefaultDefinition()
	step1, _ := def.Step(1)
	step2, _ := def.Step(2)
	step3, _ := def.Step(3)

	cases := []struct {
		name   string
		step   model.StepDefinition
		values map[string]string
		want   *validation.Issue
	}{
		{
			name:   "missing first name",
			step:   step1,
			values: map[string]string{"email": "ann@acme.com"},
			want:   &validation.Issue{Field: "first_name", Message: "Please enter your first name"},
		},
		{
			name:   "whitespace only counts as missing",
			step:   step1,
			values: map[string]string{"first_name": "   ", "email": "ann@acme.com"},
			want:   &validation.Issue{Field: "first_name", Message: "Please enter your first name"},
		},
		{
			name:   "malformed email",
			step:   step1,
			values: map[string]string{"first_name": "Ann", "email": "ann.acme.com"},
			want:   &validation.Issue{Field: "email", Message: validation.MessageInvalidEmail},
		},
		{
			name:   "personal email is not a validation issue",
			step:   step1,
			values: map[string]string{"first_name": "Ann", "email": "ann@gmail.com"},
		},
		{
			name:   "placeholder select is missing",
			step:   step2,
			values: map[string]string{"num_employees": "Select"},
			want:   &validation.Issue{Field: "num_employees", Message: validation.MessageEmployeeBucket},
		},
		{
			name:   "unknown option",
			step:   step2,
			values: map[string]string{"num_employees": "7"},
			want:   &validation.Issue{Field: "num_employees", Message: validation.MessageInvalidOption},
		},
		{
			name:   "optional placeholder is dropped",
			step:   step2,
			values: map[string]string{"num_employees": "500+", "how_did_you_hear_about_us": "Select"},
		},
		{
			name: "too long",
			step: step3,
			values: map[string]string{
				"company_name": strings.Repeat("a", 256),
				"job_title":    "CTO",
			},
			want: &validation.Issue{Field: "company_name", Message: "Company name must be at most 255 characters"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, issue, err := validation.ValidateStep(tc.step, tc.values, nil)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if diff := cmp.Diff(tc.want, issue); diff != "" {
				t.Fatalf("issue mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateStep_CleansValues(t *testing.T) {
	def := model.MustDefaultDefinition()
	step2, _ := def.Step(2)

	cleaned, issue, err := validation.ValidateStep(step2, map[string]string{
		"num_employees":             " 51-100 ",
		"how_did_you_hear_about_us": "Select",
		"unrelated":                 "dropped",
	}, nil)
	if err != nil || issue != nil {
		t.Fatalf("unexpected failure: issue=%v err=%v", issue, err)
	}
	want := map[string]string{
		"num_employees":             "51-100",
		"how_did_you_hear_about_us": "",
	}
	if diff := cmp.Diff(want, cleaned); diff != "" {
		t.Fatalf("cleaned values mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateStep_UnknownValidator(t *testing.T) {
	step := model.StepDefinition{
		ID:         1,
		Fields:     []model.FieldDefinition{{Name: "a", Kind: model.FieldKindText}},
		Validators: []string{"does_not_exist"},
	}
	if _, _, err := validation.ValidateStep(step, map[string]string{"a": "x"}, nil); err == nil {
		t.Fatalf("expected unknown validator to error")
	}
}

func TestRules_CustomRegistration(t *testing.T) {
	rules := validation.NewRules()
	if err := rules.RegisterPredicate("always", func(map[string]string) bool { return true }); err != nil {
		t.Fatalf("register predicate: %v", err)
	}
	if err := rules.RegisterValidator("", nil); err == nil {
		t.Fatalf("expected empty registration to fail")
	}

	validators, predicates := rules.Names()
	wantValidators := []string{validation.RuleCompanyEmail, validation.RuleEmailFormat, validation.RuleEmployeeBucket}
	if diff := cmp.Diff(wantValidators, validators); diff != "" {
		t.Fatalf("validators mismatch (-want +got):\n%s", diff)
	}
	wantPredicates := []string{"always", validation.PredicatePersonalEmail, validation.PredicateSmallCompany}
	if diff := cmp.Diff(wantPredicates, predicates); diff != "" {
		t.Fatalf("predicates mismatch (-want +got):\n%s", diff)
	}

	if _, ok := validation.DefaultRules().Predicate("always"); ok {
		t.Fatalf("custom registration leaked into the default registry")
	}
}

func TestCheckReferences(t *testing.T) {
	def := model.MustDefaultDefinition()
	if err := validation.CheckReferences(def, nil); err != nil {
		t.Fatalf("default definition should resolve: %v", err)
	}
	def.Steps[1].Transition.When = "missing"
	if err := validation.CheckReferences(def, nil); err == nil {
		t.Fatalf("expected unknown predicate to fail")
	}
}
