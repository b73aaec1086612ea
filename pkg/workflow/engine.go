// Package workflow drives lead form sessions through their steps. An Engine
// holds the static form definition and collaborators; each Session owns the
// state of one user's interaction and is never shared between users.
package workflow

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-leadform/pkg/metrics"
	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/notify"
	"github.com/goliatone/go-leadform/pkg/schedule"
	"github.com/goliatone/go-leadform/pkg/validation"
)

// Sentinel errors returned by Session operations. Validation failures are
// never errors; they are reported through the session's error message.
var (
	ErrStaleStep        = errors.New("workflow: submitted step is not the current step")
	ErrSubmitInProgress = errors.New("workflow: a submission is already in progress")
	ErrTerminal         = errors.New("workflow: session has already left the step sequence")
)

// Dispatcher receives completed lead events. *notify.Dispatcher satisfies it;
// implementations must return without waiting for delivery.
type Dispatcher interface {
	Dispatch(event notify.Event)
}

// Option customises an Engine.
type Option func(*Engine)

// WithDefinition replaces the embedded default form definition.
func WithDefinition(def model.FormDefinition) Option {
	return func(e *Engine) {
		e.def = def.Clone()
		e.defSet = true
	}
}

// WithRules supplies the validator and predicate registry.
func WithRules(rules *validation.Rules) Option {
	return func(e *Engine) {
		if rules != nil {
			e.rules = rules
		}
	}
}

// WithDispatcher wires the notification dispatcher used by finalize.
func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithScheduler sets the booking provider shown on completion. Without one,
// completed sessions show the thank-you copy.
func WithScheduler(s schedule.Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithBookingTheme selects the light or dark calendar embed.
func WithBookingTheme(theme string) Option {
	return func(e *Engine) {
		e.bookingTheme = strings.TrimSpace(theme)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records submissions and terminal states.
func WithMetrics(m *metrics.Registry) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithSelfServeNotifications also dispatches a lead.self_serve event when a
// session is routed to self-serve. Disabled by default.
func WithSelfServeNotifications(enabled bool) Option {
	return func(e *Engine) {
		e.notifySelfServe = enabled
	}
}

// WithClock overrides the time source used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine is immutable after New and safe for concurrent use by many sessions.
type Engine struct {
	def             model.FormDefinition
	defSet          bool
	rules           *validation.Rules
	dispatcher      Dispatcher
	scheduler       schedule.Scheduler
	bookingTheme    string
	logger          *slog.Logger
	metrics         *metrics.Registry
	notifySelfServe bool
	now             func() time.Time
}

// New constructs an Engine. The definition is validated and every validator
// and predicate it names must resolve against the rule registry.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		rules:  validation.DefaultRules(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if !e.defSet {
		def, err := model.DefaultDefinition()
		if err != nil {
			return nil, err
		}
		e.def = def
	}
	if err := e.def.Validate(); err != nil {
		return nil, fmt.Errorf("workflow: %w", err)
	}
	if err := validation.CheckReferences(e.def, e.rules); err != nil {
		return nil, fmt.Errorf("workflow: %w", err)
	}
	return e, nil
}

// MustNew panics when New fails.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Definition returns a copy of the form definition.
func (e *Engine) Definition() model.FormDefinition {
	return e.def.Clone()
}

// NewSession starts a session at the first step. An empty id is replaced
// with a random UUID.
func (e *Engine) NewSession(id string) *Session {
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	s := &Session{engine: e, id: id}
	s.state = e.initialState()
	return s
}

// Restore rebuilds a session from a stored snapshot.
func (e *Engine) Restore(snap Snapshot) (*Session, error) {
	if strings.TrimSpace(snap.ID) == "" {
		return nil, errors.New("workflow: snapshot id is required")
	}
	if _, ok := e.def.Step(snap.CurrentStep); !ok {
		return nil, fmt.Errorf("workflow: snapshot step %d is outside 1..%d", snap.CurrentStep, e.def.LastStep())
	}
	if !snap.Terminal.Valid() {
		return nil, fmt.Errorf("workflow: snapshot has unknown terminal state %q", snap.Terminal)
	}
	s := &Session{engine: e, id: snap.ID}
	s.state = snap.clone()
	s.state.ID = snap.ID
	s.state.IsSubmitting = false
	return s, nil
}

func (e *Engine) initialState() Snapshot {
	return Snapshot{
		CurrentStep: e.def.FirstStep(),
		Fields:      make(map[string]string),
		Terminal:    model.TerminalNone,
		UpdatedAt:   e.now().UTC(),
	}
}
