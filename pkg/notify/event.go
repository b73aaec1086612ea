// Package notify delivers completed leads to external systems. Deliveries are
// fire-and-forget: each sink runs in its own goroutine with its own timeout and
// failures are logged, never returned to the form workflow.
package notify

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType classifies a notification.
type EventType string

const (
	// EventLeadCompleted is sent when a session finishes the last step.
	EventLeadCompleted EventType = "lead.completed"
	// EventLeadSelfServe is sent, when enabled, for sessions routed to
	// self-serve.
	EventLeadSelfServe EventType = "lead.self_serve"
)

// Lead is the flat record of attributes collected by the form.
type Lead struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name,omitempty"`
	Email          string `json:"email"`
	NumEmployees   string `json:"num_employees,omitempty"`
	Referral       string `json:"how_did_you_hear_about_us,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	JobTitle       string `json:"job_title,omitempty"`
	InternalTools  string `json:"internal_tools,omitempty"`
	TechnicalLevel string `json:"technical_level,omitempty"`
}

// LeadFromFields maps session fields onto a Lead. Unknown fields are ignored.
func LeadFromFields(fields map[string]string) Lead {
	get := func(name string) string { return strings.TrimSpace(fields[name]) }
	return Lead{
		FirstName:      get("first_name"),
		LastName:       get("last_name"),
		Email:          get("email"),
		NumEmployees:   get("num_employees"),
		Referral:       get("how_did_you_hear_about_us"),
		CompanyName:    get("company_name"),
		JobTitle:       get("job_title"),
		InternalTools:  get("internal_tools"),
		TechnicalLevel: get("technical_level"),
	}
}

// Fields returns the non-empty attributes keyed by form field name.
func (l Lead) Fields() map[string]string {
	out := make(map[string]string)
	set := func(name, value string) {
		if value != "" {
			out[name] = value
		}
	}
	set("first_name", l.FirstName)
	set("last_name", l.LastName)
	set("email", l.Email)
	set("num_employees", l.NumEmployees)
	set("how_did_you_hear_about_us", l.Referral)
	set("company_name", l.CompanyName)
	set("job_title", l.JobTitle)
	set("internal_tools", l.InternalTools)
	set("technical_level", l.TechnicalLevel)
	return out
}

// FullName joins first and last name.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// Event is one notification. It is created per dispatch and never retained.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	SessionID  string    `json:"session_id,omitempty"`
	Terminal   string    `json:"terminal"`
	Outcome    string    `json:"outcome,omitempty"`
	Lead       Lead      `json:"lead"`
}

// NewEvent builds an event with a fresh id and the current UTC time.
func NewEvent(typ EventType, sessionID, terminal, outcome string, fields map[string]string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		SessionID:  sessionID,
		Terminal:   terminal,
		Outcome:    outcome,
		Lead:       LeadFromFields(fields),
	}
}
