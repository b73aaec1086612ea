package workflow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-leadform/pkg/metrics"
	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/notify"
	"github.com/goliatone/go-leadform/pkg/schedule"
	"github.com/goliatone/go-leadform/pkg/validation"
)

// Session is one user's pass through the form. Its methods are safe to call
// from several goroutines, but at most one SubmitStep runs at a time; a second
// concurrent call fails fast with ErrSubmitInProgress.
type Session struct {
	engine   *Engine
	id       string
	inflight atomic.Bool

	mu    sync.Mutex
	state Snapshot
	// generation increments on Reset so a finalize that raced with a reset
	// does not resurrect the old session.
	generation uint64
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state.clone()
	snap.ID = s.id
	return snap
}

// SubmitStep validates values for step and applies the step's transition.
//
// Every call clears the previous error message. A rejected submission sets a
// new one and leaves every other piece of state untouched; it is not an error. Errors are reserved for
// misuse: submitting a step other than the current one (ErrStaleStep),
// submitting after the session has terminated (ErrTerminal), overlapping
// submissions (ErrSubmitInProgress), or a cancelled context.
func (s *Session) SubmitStep(ctx context.Context, step model.StepID, values map[string]string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.inflight.CompareAndSwap(false, true) {
		return ErrSubmitInProgress
	}
	defer s.inflight.Store(false)

	e := s.engine
	s.mu.Lock()

	if s.state.ErrorMessage != "" || s.state.ErrorField != "" {
		s.state.ErrorMessage = ""
		s.state.ErrorField = ""
		s.touch()
	}
	if s.state.Terminal != model.TerminalNone {
		s.mu.Unlock()
		e.metrics.ObserveSubmission(int(step), metrics.ResultStale)
		return ErrTerminal
	}
	if step != s.state.CurrentStep {
		current := s.state.CurrentStep
		s.mu.Unlock()
		e.metrics.ObserveSubmission(int(step), metrics.ResultStale)
		return fmt.Errorf("%w: got %d, current %d", ErrStaleStep, step, current)
	}

	def, _ := e.def.Step(step)
	cleaned, issue, err := validation.ValidateStep(def, values, e.rules)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("workflow: %w", err)
	}

	if issue != nil {
		s.state.ErrorMessage = issue.Message
		s.state.ErrorField = issue.Field
		s.touch()
		s.mu.Unlock()
		e.metrics.ObserveSubmission(int(step), metrics.ResultInvalid)
		e.logger.Debug("workflow: step rejected",
			"session_id", s.id,
			"step", step,
			"field", issue.Field)
		return nil
	}

	for name, value := range cleaned {
		s.state.Fields[name] = value
	}

	transition := def.Transition
	switch transition.Kind {
	case model.TransitionNext:
		s.advance(step)
		s.mu.Unlock()
		return nil

	case model.TransitionBranch:
		predicate, err := e.rules.Condition(transition.When)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("workflow: step %d: %w", step, err)
		}
		if !predicate(s.state.Fields) {
			s.advance(step)
			s.mu.Unlock()
			return nil
		}
		event := s.route(transition)
		s.mu.Unlock()
		e.metrics.ObserveSubmission(int(step), metrics.ResultRouted)
		if event != nil && e.dispatcher != nil {
			e.dispatcher.Dispatch(*event)
		}
		return nil

	case model.TransitionTerminal:
		e.metrics.ObserveSubmission(int(step), metrics.ResultAdvanced)
		s.finalize(transition)
		return nil

	default:
		s.mu.Unlock()
		return fmt.Errorf("workflow: step %d has unknown transition %q", step, transition.Kind)
	}
}

// advance moves to the step after step. Caller holds s.mu.
func (s *Session) advance(step model.StepID) {
	s.state.CurrentStep = step + 1
	s.touch()
	s.engine.metrics.ObserveSubmission(int(step), metrics.ResultAdvanced)
}

// route sends the session to a self-serve branch. Caller holds s.mu. It
// returns the event to dispatch when self-serve notifications are enabled.
func (s *Session) route(transition model.Transition) *notify.Event {
	e := s.engine
	s.state.Terminal = transition.Target
	s.state.Outcome = transition.Outcome
	s.state.Completion = s.completion(transition.Outcome, nil)
	s.touch()

	e.metrics.ObserveTerminal(string(transition.Target), string(transition.Outcome))
	e.logger.Info("workflow: session routed",
		"session_id", s.id,
		"terminal", transition.Target,
		"outcome", transition.Outcome)

	if !e.notifySelfServe {
		return nil
	}
	event := notify.NewEvent(notify.EventLeadSelfServe, s.id, string(transition.Target), string(transition.Outcome), s.state.Fields)
	s.state.Completion.EventID = event.ID
	return &event
}

// finalize runs on the last step's successful submission. It is entered with
// s.mu held and releases it while the booking is built and the event is
// handed to the dispatcher, so IsSubmitting is observable through Snapshot.
func (s *Session) finalize(transition model.Transition) {
	e := s.engine
	s.state.IsSubmitting = true
	s.touch()
	generation := s.generation
	fields := make(map[string]string, len(s.state.Fields))
	for k, v := range s.state.Fields {
		fields[k] = v
	}
	s.mu.Unlock()

	outcome := transition.Outcome
	var booking *schedule.Booking
	if e.scheduler != nil {
		b, err := e.scheduler.Booking(schedule.RequestFromFields(fields, e.bookingTheme))
		if err != nil {
			e.logger.Error("workflow: build booking", "session_id", s.id, "error", err)
		} else {
			booking = &b
		}
	}
	if booking == nil || outcome == "" {
		outcome = model.OutcomeThankYou
	}

	event := notify.NewEvent(notify.EventLeadCompleted, s.id, string(transition.Target), string(outcome), fields)
	if e.dispatcher != nil {
		e.dispatcher.Dispatch(event)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		e.logger.Debug("workflow: session reset during finalize", "session_id", s.id)
		return
	}
	s.state.IsSubmitting = false
	s.state.Terminal = transition.Target
	s.state.Outcome = outcome
	s.state.Completion = s.completion(outcome, booking)
	s.state.Completion.EventID = event.ID
	s.touch()

	e.metrics.ObserveTerminal(string(transition.Target), string(outcome))
	e.logger.Info("workflow: session completed",
		"session_id", s.id,
		"terminal", transition.Target,
		"outcome", outcome,
		"event_id", event.ID)
}

func (s *Session) completion(key model.OutcomeKey, booking *schedule.Booking) *Completion {
	text := s.engine.def.Outcome(key)
	return &Completion{
		Outcome: key,
		Title:   text.Title,
		Message: text.Message,
		Action:  text.Action,
		Booking: booking,
	}
}

// GoBack moves to the previous step and clears the error message. It is a
// no-op on the first step, after the session has terminated, and while a
// submission is in flight. It reports whether the step changed.
func (s *Session) GoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal != model.TerminalNone || s.state.IsSubmitting {
		return false
	}
	s.state.ErrorMessage = ""
	s.state.ErrorField = ""
	if s.state.CurrentStep <= s.engine.def.FirstStep() {
		s.touch()
		return false
	}
	s.state.CurrentStep--
	s.touch()
	return true
}

// Reset returns the session to its initial state: first step, no fields, no
// error, no terminal state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = s.engine.initialState()
}

// touch stamps the snapshot. Caller holds s.mu.
func (s *Session) touch() {
	s.state.UpdatedAt = s.engine.now().UTC()
}
