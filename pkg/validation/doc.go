// Package validation holds the lead form's field rules: the business email
// check and its consumer-domain denylist, employee-count buckets, and a
// registry of named validators and branch predicates that step definitions
// reference by name.
package validation
