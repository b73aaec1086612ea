// Package schedule builds the booking targets shown once a lead is routed to
// the sales calendar: a prefilled Cal.com link with its embed attributes, or a
// Lemcal booking calendar embed.
package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Request carries the lead details used to prefill a booking.
type Request struct {
	Name  string
	Email string
	Notes string
	// Theme is "light" or "dark"; empty means light.
	Theme string
}

// RequestFromFields builds a Request from session fields.
func RequestFromFields(fields map[string]string, theme string) Request {
	name := strings.TrimSpace(strings.TrimSpace(fields["first_name"]) + " " + strings.TrimSpace(fields["last_name"]))
	return Request{
		Name:  name,
		Email: strings.TrimSpace(fields["email"]),
		Notes: strings.TrimSpace(fields["internal_tools"]),
		Theme: theme,
	}
}

// Booking describes how a renderer should present the calendar.
type Booking struct {
	Provider  string            `json:"provider"`
	URL       string            `json:"booking_url,omitempty"`
	Class     string            `json:"class,omitempty"`
	ScriptURL string            `json:"script_url,omitempty"`
	Embed     map[string]string `json:"embed,omitempty"`
}

// Scheduler produces a Booking for a lead.
type Scheduler interface {
	Booking(req Request) (Booking, error)
}

// Cal.com defaults.
const (
	DefaultCalcomLink      = "forms/f87bd9b2-b339-4915-b4d4-0098e2db4394"
	DefaultCalcomNamespace = "talk"
	DefaultCalcomLayout    = "month_view"
	DefaultCalcomBaseURL   = "https://cal.com"
)

// Calcom builds prefilled Cal.com links.
type Calcom struct {
	Link      string
	Namespace string
	Layout    string
	BaseURL   string
}

var _ Scheduler = (*Calcom)(nil)

// NewCalcom returns a Calcom scheduler for link, falling back to the default
// form link when empty.
func NewCalcom(link string) *Calcom {
	link = strings.Trim(strings.TrimSpace(link), "/")
	if link == "" {
		link = DefaultCalcomLink
	}
	return &Calcom{
		Link:      link,
		Namespace: DefaultCalcomNamespace,
		Layout:    DefaultCalcomLayout,
		BaseURL:   DefaultCalcomBaseURL,
	}
}

type calConfig struct {
	Theme  string `json:"theme"`
	Layout string `json:"layout"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Booking implements Scheduler.
func (c *Calcom) Booking(req Request) (Booking, error) {
	if c == nil || strings.TrimSpace(c.Link) == "" {
		return Booking{}, errors.New("schedule: cal.com link is required")
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = DefaultCalcomBaseURL
	}
	target := base + "/" + strings.Trim(c.Link, "/")
	if query := PrefillQuery(req); query != "" {
		target += "?" + query
	}

	layout := c.Layout
	if layout == "" {
		layout = DefaultCalcomLayout
	}
	namespace := c.Namespace
	if namespace == "" {
		namespace = DefaultCalcomNamespace
	}
	config, err := json.Marshal(calConfig{
		Theme:  normaliseTheme(req.Theme),
		Layout: layout,
		Name:   req.Name,
		Email:  req.Email,
		Notes:  req.Notes,
	})
	if err != nil {
		return Booking{}, fmt.Errorf("schedule: encode cal.com config: %w", err)
	}

	return Booking{
		Provider: "calcom",
		URL:      target,
		Embed: map[string]string{
			"data-cal-link":      c.Link,
			"data-cal-namespace": namespace,
			"data-cal-config":    string(config),
		},
	}, nil
}

// PrefillQuery encodes name, email and notes as a URL query string using
// UTF-8 percent-encoding. Empty values are omitted and keys are sorted.
func PrefillQuery(req Request) string {
	values := url.Values{}
	if req.Name != "" {
		values.Set("name", req.Name)
	}
	if req.Email != "" {
		values.Set("email", req.Email)
	}
	if req.Notes != "" {
		values.Set("notes", req.Notes)
	}
	return values.Encode()
}

// Lemcal defaults.
const (
	DefaultLemcalUser        = "usr_8tiwtJ8nEJaFj2qH9"
	DefaultLemcalMeetingType = "met_ToQQ9dLZDYrEBv5qz"
	LemcalScriptURL          = "https://cdn.lemcal.com/lemcal-integrations.min.js"
	LemcalCalendarClass      = "lemcal-embed-booking-calendar"
)

// Lemcal renders the Lemcal booking calendar embed. The embed does not accept
// prefilled fields; the request is ignored.
type Lemcal struct {
	UserID      string
	MeetingType string
}

var _ Scheduler = (*Lemcal)(nil)

// NewLemcal returns a Lemcal scheduler with defaults for empty ids.
func NewLemcal(userID, meetingType string) *Lemcal {
	if strings.TrimSpace(userID) == "" {
		userID = DefaultLemcalUser
	}
	if strings.TrimSpace(meetingType) == "" {
		meetingType = DefaultLemcalMeetingType
	}
	return &Lemcal{UserID: userID, MeetingType: meetingType}
}

// Booking implements Scheduler.
func (l *Lemcal) Booking(Request) (Booking, error) {
	if l == nil || l.UserID == "" || l.MeetingType == "" {
		return Booking{}, errors.New("schedule: lemcal user and meeting type are required")
	}
	return Booking{
		Provider:  "lemcal",
		Class:     LemcalCalendarClass,
		ScriptURL: LemcalScriptURL,
		Embed: map[string]string{
			"data-user":         l.UserID,
			"data-meeting-type": l.MeetingType,
		},
	}, nil
}

// New selects a scheduler by provider name ("calcom", "lemcal", or "none").
func New(provider, calLink, lemcalUser, lemcalMeeting string) (Scheduler, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "calcom", "cal.com":
		return NewCalcom(calLink), nil
	case "lemcal":
		return NewLemcal(lemcalUser, lemcalMeeting), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("schedule: unknown provider %q", provider)
	}
}

func normaliseTheme(theme string) string {
	if strings.EqualFold(strings.TrimSpace(theme), "dark") {
		return "dark"
	}
	return "light"
}
