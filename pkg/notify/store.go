package notify

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-leadform/pkg/leadstore"
)

// LeadSaver persists lead rows. *leadstore.Repository satisfies it.
type LeadSaver interface {
	Save(ctx context.Context, lead *leadstore.Lead) error
}

// StoreSink records every event in the lead store.
type StoreSink struct {
	repo LeadSaver
}

var _ Sink = (*StoreSink)(nil)

// NewStoreSink wraps repo.
func NewStoreSink(repo LeadSaver) *StoreSink {
	return &StoreSink{repo: repo}
}

// Name implements Sink.
func (s *StoreSink) Name() string { return "leadstore" }

// Deliver implements Sink.
func (s *StoreSink) Deliver(ctx context.Context, event Event) error {
	lead := event.Lead
	return s.repo.Save(ctx, &leadstore.Lead{
		ID:             event.ID,
		SessionID:      event.SessionID,
		EventType:      string(event.Type),
		Terminal:       event.Terminal,
		Outcome:        event.Outcome,
		FirstName:      lead.FirstName,
		LastName:       lead.LastName,
		Email:          strings.ToLower(lead.Email),
		CompanyName:    lead.CompanyName,
		JobTitle:       lead.JobTitle,
		NumEmployees:   lead.NumEmployees,
		Referral:       lead.Referral,
		TechnicalLevel: lead.TechnicalLevel,
		InternalTools:  lead.InternalTools,
		CreatedAt:      event.OccurredAt,
	})
}

// DefaultStream is the Redis stream written by StreamSink.
const DefaultStream = "leadform:leads"

// StreamSink appends each event to a Redis stream with XADD so downstream
// consumers (CRM sync, enrichment) can read leads with consumer groups.
type StreamSink struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

var _ Sink = (*StreamSink)(nil)

// NewStreamSink constructs the sink. maxLen caps the stream approximately;
// zero leaves it unbounded.
func NewStreamSink(client redis.Cmdable, stream string, maxLen int64) *StreamSink {
	if strings.TrimSpace(stream) == "" {
		stream = DefaultStream
	}
	return &StreamSink{client: client, stream: stream, maxLen: maxLen}
}

// Name implements Sink.
func (s *StreamSink) Name() string { return "redis-stream" }

// Deliver implements Sink.
func (s *StreamSink) Deliver(ctx context.Context, event Event) error {
	values := map[string]any{
		"id":          event.ID,
		"type":        string(event.Type),
		"occurred_at": event.OccurredAt.Format("2006-01-02T15:04:05.000Z07:00"),
		"session_id":  event.SessionID,
		"terminal":    event.Terminal,
		"outcome":     event.Outcome,
	}
	for key, value := range event.Lead.Fields() {
		values[key] = value
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	return s.client.XAdd(ctx, args).Err()
}
