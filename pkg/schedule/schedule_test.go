package schedule_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-leadform/pkg/schedule"
)

func TestPrefillQuery_Encoding(t *testing.T) {
	got := schedule.PrefillQuery(schedule.Request{
		Name:  "Ann Müller",
		Email: "ann+demo@acmecorp.com",
		Notes: "CRM & billing/ops tools",
	})
	want := "email=ann%2Bdemo%40acmecorp.com&name=Ann+M%C3%BCller&notes=CRM+%26+billing%2Fops+tools"
	if got != want {
		t.Fatalf("query mismatch:\n got %s\nwant %s", got, want)
	}
	if q := schedule.PrefillQuery(schedule.Request{}); q != "" {
		t.Fatalf("expected empty query, got %q", q)
	}
}

func TestCalcom_Booking(t *testing.T) {
	cal := schedule.NewCalcom("")
	req := schedule.RequestFromFields(map[string]string{
		"first_name":     "Ann",
		"last_name":      "Lee",
		"email":          "ann@acmecorp.com",
		"internal_tools": "Dashboards",
	}, "dark")

	booking, err := cal.Booking(req)
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	want := schedule.Booking{
		Provider: "calcom",
		URL:      "https://cal.com/forms/f87bd9b2-b339-4915-b4d4-0098e2db4394?email=ann%40acmecorp.com&name=Ann+Lee&notes=Dashboards",
		Embed: map[string]string{
			"data-cal-link":      "forms/f87bd9b2-b339-4915-b4d4-0098e2db4394",
			"data-cal-namespace": "talk",
			"data-cal-config":    `{"theme":"dark","layout":"month_view","name":"Ann Lee","email":"ann@acmecorp.com","notes":"Dashboards"}`,
		},
	}
	if diff := cmp.Diff(want, booking); diff != "" {
		t.Fatalf("booking mismatch (-want +got):\n%s", diff)
	}
}

func TestCalcom_DefaultThemeIsLight(t *testing.T) {
	booking, err := schedule.NewCalcom("team/sales").Booking(schedule.Request{})
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if got := booking.Embed["data-cal-config"]; got != `{"theme":"light","layout":"month_view"}` {
		t.Fatalf("unexpected config %s", got)
	}
	if booking.URL != "https://cal.com/team/sales" {
		t.Fatalf("unexpected url %s", booking.URL)
	}
}

func TestLemcal_Booking(t *testing.T) {
	booking, err := schedule.NewLemcal("", "").Booking(schedule.Request{Name: "ignored"})
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	want := schedule.Booking{
		Provider:  "lemcal",
		Class:     "lemcal-embed-booking-calendar",
		ScriptURL: "https://cdn.lemcal.com/lemcal-integrations.min.js",
		Embed: map[string]string{
			"data-user":         "usr_8tiwtJ8nEJaFj2qH9",
			"data-meeting-type": "met_ToQQ9dLZDYrEBv5qz",
		},
	}
	if diff := cmp.Diff(want, booking); diff != "" {
		t.Fatalf("booking mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_Providers(t *testing.T) {
	if s, err := schedule.New("none", "", "", ""); err != nil || s != nil {
		t.Fatalf("expected no scheduler, got %v %v", s, err)
	}
	if _, err := schedule.New("zoom", "", "", ""); err == nil {
		t.Fatalf("expected unknown provider error")
	}
	s, err := schedule.New("lemcal", "", "usr_x", "met_y")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if l, ok := s.(*schedule.Lemcal); !ok || l.UserID != "usr_x" {
		t.Fatalf("unexpected scheduler %#v", s)
	}
}
