package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-leadform/pkg/contract"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body when a
// webhook secret is configured.
const SignatureHeader = "X-Leadform-Signature"

const maxErrorBody = 512

// WebhookOption customises a WebhookSink.
type WebhookOption func(*WebhookSink)

// WithHTTPClient overrides the client used for deliveries.
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(s *WebhookSink) {
		if client != nil {
			s.client = client
		}
	}
}

// WithContract validates every payload against the LeadEvent schema before it
// is sent.
func WithContract(doc *contract.Document) WebhookOption {
	return func(s *WebhookSink) {
		s.contract = doc
	}
}

// WithSecret signs payloads with secret.
func WithSecret(secret string) WebhookOption {
	return func(s *WebhookSink) {
		s.secret = secret
	}
}

// WithHeader adds a static request header.
func WithHeader(key, value string) WebhookOption {
	return func(s *WebhookSink) {
		if s.headers == nil {
			s.headers = make(http.Header)
		}
		s.headers.Set(key, value)
	}
}

// WithSinkName overrides the name reported in logs and metrics.
func WithSinkName(name string) WebhookOption {
	return func(s *WebhookSink) {
		if strings.TrimSpace(name) != "" {
			s.name = name
		}
	}
}

// WebhookSink POSTs the event as JSON. Any non-2xx status is a failure.
type WebhookSink struct {
	name     string
	url      string
	client   *http.Client
	contract *contract.Document
	secret   string
	headers  http.Header
}

var _ Sink = (*WebhookSink)(nil)

// NewWebhookSink constructs a sink posting to url.
func NewWebhookSink(url string, opts ...WebhookOption) (*WebhookSink, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("notify: webhook url is required")
	}
	s := &WebhookSink{
		name:   "webhook",
		url:    url,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Name implements Sink.
func (s *WebhookSink) Name() string { return s.name }

// Deliver implements Sink.
func (s *WebhookSink) Deliver(ctx context.Context, event Event) error {
	if s.contract != nil {
		if err := s.contract.Validate(contract.SchemaLeadEvent, event); err != nil {
			return fmt.Errorf("notify: webhook payload rejected: %w", err)
		}
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build webhook request: %w", err)
	}
	for key, values := range s.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "go-leadform")
	if s.secret != "" {
		req.Header.Set(SignatureHeader, Sign(s.secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: webhook request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("notify: webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Sign returns the "sha256=<hex>" signature for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
