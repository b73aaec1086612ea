package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-leadform/pkg/metrics"
	"github.com/goliatone/go-leadform/pkg/notify"
)

type recorder struct {
	name string
	mu   sync.Mutex
	got  []notify.Event
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Deliver(_ context.Context, event notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, event)
	return nil
}

func (r *recorder) events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.got...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, d *notify.Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Wait(ctx); err != nil {
		t.Fatalf("wait for deliveries: %v", err)
	}
}

func TestDispatcher_FailuresAreIsolated(t *testing.T) {
	good := &recorder{name: "good"}
	reg := metrics.New()
	d := notify.NewDispatcher(
		notify.WithLogger(quietLogger()),
		notify.WithMetrics(reg),
		notify.WithSinks(
			notify.FuncSink{SinkName: "failing", Fn: func(context.Context, notify.Event) error {
				return errors.New("upstream unavailable")
			}},
			notify.FuncSink{SinkName: "panicking", Fn: func(context.Context, notify.Event) error {
				panic("boom")
			}},
			good,
		),
	)

	event := notify.NewEvent(notify.EventLeadCompleted, "s1", "routed-to-sales-calendar", "calendar", map[string]string{
		"first_name": "Ann",
		"email":      "ann@acmecorp.com",
	})
	d.Dispatch(event)
	waitFor(t, d)

	got := good.events()
	if len(got) != 1 {
		t.Fatalf("expected 1 delivery to the healthy sink, got %d", len(got))
	}
	if diff := cmp.Diff(event, got[0]); diff != "" {
		t.Fatalf("event mismatch (-want +got):\n%s", diff)
	}
	if n := reg.DeliveryCount("failing", "error"); n != 1 {
		t.Fatalf("expected failing sink to be counted, got %v", n)
	}
	if n := reg.DeliveryCount("panicking", "error"); n != 1 {
		t.Fatalf("expected panicking sink to be counted, got %v", n)
	}
	if n := reg.DeliveryCount("good", "success"); n != 1 {
		t.Fatalf("expected healthy sink success, got %v", n)
	}
}

func TestDispatcher_DoesNotBlockCaller(t *testing.T) {
	release := make(chan struct{})
	d := notify.NewDispatcher(
		notify.WithLogger(quietLogger()),
		notify.WithSinks(notify.FuncSink{SinkName: "slow", Fn: func(ctx context.Context, _ notify.Event) error {
			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}}),
	)

	returned := make(chan struct{})
	go func() {
		d.Dispatch(notify.Event{ID: "e1"})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatalf("Dispatch blocked on a slow sink")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wait to time out while the sink is pending, got %v", err)
	}

	close(release)
	waitFor(t, d)
}

func TestDispatcher_PerSinkTimeout(t *testing.T) {
	var (
		mu     sync.Mutex
		gotErr error
	)
	d := notify.NewDispatcher(
		notify.WithLogger(quietLogger()),
		notify.WithTimeout(15*time.Millisecond),
		notify.WithSinks(notify.FuncSink{SinkName: "hang", Fn: func(ctx context.Context, _ notify.Event) error {
			<-ctx.Done()
			mu.Lock()
			gotErr = ctx.Err()
			mu.Unlock()
			return ctx.Err()
		}}),
	)
	d.Dispatch(notify.Event{ID: "e1"})
	waitFor(t, d)

	mu.Lock()
	defer mu.Unlock()
	if !errors.Is(gotErr, context.DeadlineExceeded) {
		t.Fatalf("expected sink context to expire, got %v", gotErr)
	}
}

func TestDispatcher_Sinks(t *testing.T) {
	d := notify.NewDispatcher()
	d.Register(&recorder{name: "b"})
	d.Register(&recorder{name: "a"})
	d.Register(nil)
	if diff := cmp.Diff([]string{"a", "b"}, d.Sinks()); diff != "" {
		t.Fatalf("sinks mismatch (-want +got):\n%s", diff)
	}
}

func TestLead_FieldsRoundTrip(t *testing.T) {
	fields := map[string]string{
		"first_name":    "Ann",
		"email":         "ann@acmecorp.com",
		"num_employees": "500+",
		"company_name":  "Acme",
		"job_title":     "CTO",
		"unrelated":     "ignored",
	}
	lead := notify.LeadFromFields(fields)
	delete(fields, "unrelated")
	if diff := cmp.Diff(fields, lead.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if lead.FullName() != "Ann" {
		t.Fatalf("unexpected full name %q", lead.FullName())
	}
}
