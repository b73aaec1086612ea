package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSubmission(t *testing.T) {
	r := New()
	r.ObserveSubmission(1, ResultAdvanced)
	r.ObserveSubmission(1, ResultAdvanced)
	r.ObserveSubmission(2, ResultInvalid)

	if got := testutil.ToFloat64(r.submissions.WithLabelValues("1", ResultAdvanced)); got != 2 {
		t.Fatalf("expected 2 advanced submissions, got %v", got)
	}
	if got := r.SubmissionCount(2, ResultInvalid); got != 1 {
		t.Fatalf("expected 1 invalid submission, got %v", got)
	}
}

func TestDeliveryStarted(t *testing.T) {
	r := New()
	done := r.DeliveryStarted("webhook")
	if got := testutil.ToFloat64(r.inflightSinks); got != 1 {
		t.Fatalf("expected 1 inflight delivery, got %v", got)
	}
	done(errors.New("boom"))
	r.DeliveryStarted("webhook")(nil)

	if got := testutil.ToFloat64(r.inflightSinks); got != 0 {
		t.Fatalf("expected no inflight deliveries, got %v", got)
	}
	if got := r.DeliveryCount("webhook", "error"); got != 1 {
		t.Fatalf("expected 1 failed delivery, got %v", got)
	}
	if got := r.DeliveryCount("webhook", "success"); got != 1 {
		t.Fatalf("expected 1 successful delivery, got %v", got)
	}
	if count := testutil.CollectAndCount(r.deliveryTime); count == 0 {
		t.Fatalf("expected delivery duration observations")
	}
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	r.ObserveSubmission(1, ResultAdvanced)
	r.ObserveTerminal("routed-to-self-serve", "personal-email")
	r.DeliveryStarted("webhook")(nil)
}

func TestHandlerExposesCollectors(t *testing.T) {
	r := New()
	r.ObserveTerminal("routed-to-sales-calendar", "calendar")

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	want := `leadform_sessions_terminated_total{outcome="calendar",terminal="routed-to-sales-calendar"} 1`
	if !strings.Contains(string(body), want) {
		t.Fatalf("metrics output missing %q:\n%s", want, body)
	}
}
