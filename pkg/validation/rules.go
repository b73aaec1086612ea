package validation

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Built-in rule names referenced from form definitions.
const (
	RuleEmailFormat    = "email_format"
	RuleCompanyEmail   = "company_email"
	RuleEmployeeBucket = "employee_bucket"

	PredicatePersonalEmail = "personal_email"
	PredicateSmallCompany  = "small_company"
)

// Validator inspects the values submitted for one step and returns an issue
// when they are rejected.
type Validator func(values map[string]string) *Issue

// Predicate evaluates a branch condition against the accumulated session
// fields.
type Predicate func(fields map[string]string) bool

// Rules resolves validator and predicate names. A registry is safe for
// concurrent use; definitions are resolved against it on every submission.
type Rules struct {
	mu         sync.RWMutex
	validators map[string]Validator
	predicates map[string]Predicate
	// compiled caches expressions resolved by Condition.
	compiled map[string]Predicate
}

// NewRules constructs a registry with the built-in rules registered.
func NewRules() *Rules {
	r := &Rules{
		validators: make(map[string]Validator),
		predicates: make(map[string]Predicate),
		compiled:   make(map[string]Predicate),
	}
	r.registerBuiltins()
	return r
}

var (
	defaultRulesOnce sync.Once
	defaultRules     *Rules
)

// DefaultRules returns a shared registry holding only the built-ins.
func DefaultRules() *Rules {
	defaultRulesOnce.Do(func() {
		defaultRules = NewRules()
	})
	return defaultRules
}

// RegisterValidator adds or replaces a named validator.
func (r *Rules) RegisterValidator(name string, fn Validator) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return fmt.Errorf("validation: validator name and function are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = fn
	return nil
}

// RegisterPredicate adds or replaces a named branch predicate.
func (r *Rules) RegisterPredicate(name string, fn Predicate) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return fmt.Errorf("validation: predicate name and function are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predicates[name] = fn
	return nil
}

// Validator looks up a validator by name.
func (r *Rules) Validator(name string) (Validator, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.validators[name]
	return fn, ok
}

// Predicate looks up a registered branch predicate by name.
func (r *Rules) Predicate(name string) (Predicate, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.predicates[name]
	return fn, ok
}

// Condition resolves the when clause of a branch transition. Registered
// predicate names win; anything else is compiled with ParsePredicate and
// cached on this registry.
func (r *Rules) Condition(when string) (Predicate, error) {
	if r == nil {
		return nil, fmt.Errorf("validation: no rules for condition %q", when)
	}
	r.mu.RLock()
	fn, ok := r.predicates[when]
	if !ok {
		fn, ok = r.compiled[when]
	}
	r.mu.RUnlock()
	if ok {
		return fn, nil
	}

	fn, err := ParsePredicate(when)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.compiled[when] = fn
	r.mu.Unlock()
	return fn, nil
}

// Names lists registered validators and predicates, sorted.
func (r *Rules) Names() (validators, predicates []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name := range r.validators {
		validators = append(validators, name)
	}
	for name := range r.predicates {
		predicates = append(predicates, name)
	}
	sort.Strings(validators)
	sort.Strings(predicates)
	return validators, predicates
}

func (r *Rules) registerBuiltins() {
	r.validators[RuleEmailFormat] = func(values map[string]string) *Issue {
		if !IsWellFormedEmail(values["email"]) {
			return &Issue{Field: "email", Message: MessageInvalidEmail}
		}
		return nil
	}
	r.validators[RuleCompanyEmail] = func(values map[string]string) *Issue {
		if !IsCompanyEmail(values["email"]) {
			return &Issue{Field: "email", Message: MessageCompanyEmail}
		}
		return nil
	}
	r.validators[RuleEmployeeBucket] = func(values map[string]string) *Issue {
		if _, ok := ParseEmployeeBucket(values["num_employees"]); !ok {
			return &Issue{Field: "num_employees", Message: MessageEmployeeBucket}
		}
		return nil
	}

	r.predicates[PredicatePersonalEmail] = func(fields map[string]string) bool {
		return !IsCompanyEmail(fields["email"])
	}
	r.predicates[PredicateSmallCompany] = func(fields map[string]string) bool {
		return IsSmallCompany(fields["num_employees"])
	}
}
