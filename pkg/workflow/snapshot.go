package workflow

import (
	"time"

	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/schedule"
)

// Phase is the visual state derived from a snapshot.
type Phase string

const (
	PhaseStep      Phase = "step"
	PhaseSelfServe Phase = "self-serve"
	PhaseCompleted Phase = "completed"
)

// Completion is the copy and booking target shown once a session leaves the
// step sequence.
type Completion struct {
	Outcome model.OutcomeKey  `json:"outcome"`
	Title   string            `json:"title,omitempty"`
	Message string            `json:"message,omitempty"`
	Action  string            `json:"action,omitempty"`
	Booking *schedule.Booking `json:"booking,omitempty"`
	EventID string            `json:"event_id,omitempty"`
}

// Snapshot is a point-in-time copy of session state. Snapshots are values:
// mutating one never affects the session it came from.
type Snapshot struct {
	ID           string              `json:"id"`
	CurrentStep  model.StepID        `json:"current_step"`
	Fields       map[string]string   `json:"fields"`
	ErrorMessage string              `json:"error_message,omitempty"`
	ErrorField   string              `json:"error_field,omitempty"`
	Terminal     model.TerminalState `json:"terminal"`
	Outcome      model.OutcomeKey    `json:"outcome,omitempty"`
	IsSubmitting bool                `json:"is_submitting"`
	Completion   *Completion         `json:"completion,omitempty"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Phase reports which screen the session is on.
func (s Snapshot) Phase() Phase {
	switch s.Terminal {
	case model.TerminalSelfServe:
		return PhaseSelfServe
	case model.TerminalSalesCalendar:
		return PhaseCompleted
	default:
		return PhaseStep
	}
}

// Done reports whether the session has left the step sequence.
func (s Snapshot) Done() bool {
	return s.Terminal != model.TerminalNone
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Fields = make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	if s.Completion != nil {
		completion := *s.Completion
		if s.Completion.Booking != nil {
			booking := *s.Completion.Booking
			if booking.Embed != nil {
				embed := make(map[string]string, len(booking.Embed))
				for k, v := range booking.Embed {
					embed[k] = v
				}
				booking.Embed = embed
			}
			completion.Booking = &booking
		}
		out.Completion = &completion
	}
	return out
}
