package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/posthog/posthog-go"
)

// DefaultPostHogHost is the US cloud ingestion host.
const DefaultPostHogHost = "https://us.i.posthog.com"

// PostHogSink identifies the lead in PostHog, keyed by email, with the
// collected attributes as person properties.
type PostHogSink struct {
	host      string
	apiKey    string
	transport http.RoundTripper
}

var _ Sink = (*PostHogSink)(nil)

// NewPostHogSink constructs the sink. host defaults to DefaultPostHogHost.
// client, when set, supplies the transport used by the PostHog client.
func NewPostHogSink(apiKey, host string, client *http.Client) (*PostHogSink, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("notify: posthog api key is required")
	}
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		host = DefaultPostHogHost
	}
	sink := &PostHogSink{host: host, apiKey: apiKey}
	if client != nil {
		sink.transport = client.Transport
	}
	return sink, nil
}

// Name implements Sink.
func (s *PostHogSink) Name() string { return "posthog" }

// deliveryResult receives the outcome of the single message a delivery
// enqueues.
type deliveryResult chan error

func (c deliveryResult) Success(posthog.APIMessage) { c.report(nil) }

func (c deliveryResult) Failure(_ posthog.APIMessage, err error) {
	if err == nil {
		err = errors.New("delivery failed")
	}
	c.report(err)
}

func (c deliveryResult) report(err error) {
	select {
	case c <- err:
	default:
	}
}

// Deliver implements Sink. Each delivery runs its own client with a batch
// size of one and waits for the delivery callback or ctx, whichever comes
// first. The client is closed in the background so a cancelled delivery
// still releases it once the library gives up.
func (s *PostHogSink) Deliver(ctx context.Context, event Event) error {
	email := strings.ToLower(strings.TrimSpace(event.Lead.Email))
	if email == "" {
		return errors.New("notify: posthog identify requires an email")
	}

	props := posthog.NewProperties()
	for key, value := range event.Lead.Fields() {
		props.Set(key, value)
	}
	if name := event.Lead.FullName(); name != "" {
		props.Set("name", name)
	}
	props.Set("lead_outcome", event.Outcome)

	result := make(deliveryResult, 1)
	client, err := posthog.NewWithConfig(s.apiKey, posthog.Config{
		Endpoint:  s.host,
		BatchSize: 1,
		Transport: s.transport,
		Callback:  result,
	})
	if err != nil {
		return fmt.Errorf("notify: posthog client: %w", err)
	}
	defer func() {
		go func() { _ = client.Close() }()
	}()

	err = client.Enqueue(posthog.Identify{
		DistinctId: email,
		Timestamp:  event.OccurredAt,
		Properties: props,
	})
	if err != nil {
		return fmt.Errorf("notify: posthog enqueue: %w", err)
	}

	select {
	case err := <-result:
		if err != nil {
			return fmt.Errorf("notify: posthog identify: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notify: posthog identify: %w", ctx.Err())
	}
}
