package validation

// Issue is a user-facing validation failure. Field names the input that should
// receive focus; it is empty for step-level problems.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Message constants shared by the built-in rules.
const (
	MessageInvalidEmail   = "Please enter a valid email address"
	MessageCompanyEmail   = "Please enter a valid company email - gmails, aol, me, etc are not allowed"
	MessageEmployeeBucket = "Please select a number of employees"
	MessageInvalidOption  = "Please choose one of the listed options"
)
