package validation

import "strings"

// EmployeeBucket is one of the fixed headcount ranges offered by the form.
type EmployeeBucket struct {
	Label string
	// Max is the inclusive upper bound; zero means unbounded.
	Max int
}

var employeeBuckets = []EmployeeBucket{
	{Label: "1", Max: 1},
	{Label: "2-5", Max: 5},
	{Label: "6-10", Max: 10},
	{Label: "11-50", Max: 50},
	{Label: "51-100", Max: 100},
	{Label: "101-500", Max: 500},
	{Label: "500+", Max: 0},
}

// SmallCompanyMaxEmployees is the largest headcount routed to self-serve.
const SmallCompanyMaxEmployees = 10

// EmployeeBuckets returns the ordered bucket list.
func EmployeeBuckets() []EmployeeBucket {
	return append([]EmployeeBucket(nil), employeeBuckets...)
}

// EmployeeBucketLabels returns the bucket labels in display order.
func EmployeeBucketLabels() []string {
	out := make([]string, len(employeeBuckets))
	for i, bucket := range employeeBuckets {
		out[i] = bucket.Label
	}
	return out
}

// ParseEmployeeBucket resolves a submitted label.
func ParseEmployeeBucket(label string) (EmployeeBucket, bool) {
	label = strings.TrimSpace(label)
	for _, bucket := range employeeBuckets {
		if bucket.Label == label {
			return bucket, true
		}
	}
	return EmployeeBucket{}, false
}

// Small reports whether the whole bucket sits at or below the self-serve
// threshold.
func (b EmployeeBucket) Small() bool {
	return b.Max > 0 && b.Max <= SmallCompanyMaxEmployees
}

// IsSmallCompany reports whether label is one of "1", "2-5" or "6-10".
// Unknown labels are never small.
func IsSmallCompany(label string) bool {
	bucket, ok := ParseEmployeeBucket(label)
	return ok && bucket.Small()
}
