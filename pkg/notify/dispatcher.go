package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-leadform/pkg/metrics"
)

// DefaultTimeout bounds a single sink delivery.
const DefaultTimeout = 5 * time.Second

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout overrides the per-sink delivery timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics records delivery counts and latency.
func WithMetrics(m *metrics.Registry) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithSinks registers sinks at construction time.
func WithSinks(sinks ...Sink) Option {
	return func(d *Dispatcher) {
		for _, sink := range sinks {
			if sink != nil {
				d.sinks = append(d.sinks, sink)
			}
		}
	}
}

// Dispatcher fans an event out to every registered sink. Sinks run
// concurrently and independently; a slow, failing, or panicking sink never
// affects the others or the caller.
type Dispatcher struct {
	mu      sync.RWMutex
	sinks   []Sink
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Registry
	wg      sync.WaitGroup
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(d)
	}
	return d
}

// Register adds a sink.
func (d *Dispatcher) Register(sink Sink) {
	if sink == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, sink)
}

// Sinks lists registered sink names, sorted.
func (d *Dispatcher) Sinks() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.sinks))
	for _, sink := range d.sinks {
		names = append(names, sink.Name())
	}
	sort.Strings(names)
	return names
}

// Dispatch starts one delivery per sink and returns immediately. The
// deliveries are detached from any request context.
func (d *Dispatcher) Dispatch(event Event) {
	d.mu.RLock()
	sinks := append([]Sink(nil), d.sinks...)
	d.mu.RUnlock()

	if len(sinks) == 0 {
		d.logger.Debug("notify: no sinks configured", "event_id", event.ID)
		return
	}

	for _, sink := range sinks {
		d.wg.Add(1)
		go d.deliver(sink, event)
	}
}

func (d *Dispatcher) deliver(sink Sink, event Event) {
	defer d.wg.Done()

	name := sink.Name()
	done := d.metrics.DeliveryStarted(name)
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notify: sink %s panicked: %v", name, r)
		}
		done(err)
		if err != nil {
			d.logger.Error("notify: delivery failed",
				"sink", name,
				"event_id", event.ID,
				"event_type", event.Type,
				"error", err)
			return
		}
		d.logger.Info("notify: delivered",
			"sink", name,
			"event_id", event.ID,
			"event_type", event.Type)
	}()

	err = sink.Deliver(ctx, event)
}

// Wait blocks until every in-flight delivery finishes or ctx is done. Servers
// call it during shutdown; tests call it to observe sink effects.
func (d *Dispatcher) Wait(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
