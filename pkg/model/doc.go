// Package model defines the static description of a multi-step lead form:
// ordered steps, the fields each step collects, the validators that run on
// submission, and the transition rule evaluated once a step is accepted.
//
// Definitions are plain data. The default lead form ships as embedded YAML
// (see DefaultDefinition) and callers can load their own with LoadDefinition
// or LoadDefinitionFile. Validators and branch predicates are referenced by
// name and resolved by the validation package at runtime, which keeps the
// definition serialisable and free of behaviour.
package model
