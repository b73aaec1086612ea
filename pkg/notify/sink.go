package notify

import "context"

// Sink receives lead events. Deliver is attempted exactly once per event; the
// context carries the per-sink timeout.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event Event) error
}

// FuncSink adapts a function to the Sink interface.
type FuncSink struct {
	SinkName string
	Fn       func(ctx context.Context, event Event) error
}

// Name implements Sink.
func (s FuncSink) Name() string {
	if s.SinkName == "" {
		return "func"
	}
	return s.SinkName
}

// Deliver implements Sink.
func (s FuncSink) Deliver(ctx context.Context, event Event) error {
	if s.Fn == nil {
		return nil
	}
	return s.Fn(ctx, event)
}
