package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func envMap(values map[string]string) Option {
	return WithLookupEnv(func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	})
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(envMap(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadLayersOverride(t *testing.T) {
	file := writeFile(t, "leadform.yaml", `
http:
  addr: ":9090"
  base_path: /contact
  read_timeout: 3s
sessions:
  store: redis
redis:
  addr: localhost:6379
theme:
  variant: dark
logging:
  level: debug
  format: text
`)
	dotenv := writeFile(t, ".env", "LEADFORM_HTTP_ADDR=:7070\nLEADFORM_WEBHOOK_URL=https://hooks.example.com/lead\nDEFAULT_CAL_FORM=team/demo\n")

	cfg, err := Load(
		WithFile(file),
		WithEnvFiles(dotenv, filepath.Join(t.TempDir(), "missing.env")),
		envMap(map[string]string{
			"LEADFORM_HTTP_ADDR":   ":6060",
			"LEADFORM_SESSION_TTL": "2h",
		}),
	)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Default()
	want.HTTP.Addr = ":6060"
	want.HTTP.BasePath = "/contact"
	want.HTTP.ReadTimeout = 3 * time.Second
	want.Sessions.Store = StoreRedis
	want.Sessions.TTL = 2 * time.Hour
	want.Redis.Addr = "localhost:6379"
	want.Theme.Variant = "dark"
	want.Logging = Logging{Level: "debug", Format: "text"}
	want.Sinks.WebhookURL = "https://hooks.example.com/lead"
	want.Scheduling.CalLink = "team/demo"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCalLinkPrecedence(t *testing.T) {
	cfg, err := Load(envMap(map[string]string{
		LegacyCalFormEnv:    "legacy/form",
		"LEADFORM_CAL_LINK": "team/intro",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scheduling.CalLink != "team/intro" {
		t.Fatalf("expected LEADFORM_CAL_LINK to win, got %q", cfg.Scheduling.CalLink)
	}
}

func TestLoadRejectsUnknownYAMLKeys(t *testing.T) {
	file := writeFile(t, "bad.yaml", "http:\n  adress: \":80\"\n")
	_, err := Load(WithFile(file), envMap(nil))
	if err == nil {
		t.Fatalf("expected decode error for unknown key")
	}
	if !strings.Contains(err.Error(), "adress") {
		t.Fatalf("expected error to name the key, got %v", err)
	}
}

func TestLoadReportsBadEnvValues(t *testing.T) {
	_, err := Load(envMap(map[string]string{
		"LEADFORM_SESSION_TTL":   "forever",
		"LEADFORM_COOKIE_SECURE": "maybe",
	}))
	if err == nil {
		t.Fatalf("expected environment error")
	}
	for _, key := range []string{"LEADFORM_SESSION_TTL", "LEADFORM_COOKIE_SECURE"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected error to mention %s, got %v", key, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "unknown store",
			mutate: func(c *Config) { c.Sessions.Store = "disk" },
			errMsg: `unknown kind "disk"`,
		},
		{
			name:   "redis store without address",
			mutate: func(c *Config) { c.Sessions.Store = StoreRedis },
			errMsg: "requires redis.addr",
		},
		{
			name:   "negative timeout",
			mutate: func(c *Config) { c.HTTP.ReadTimeout = -time.Second },
			errMsg: "http.read_timeout must not be negative",
		},
		{
			name:   "store leads without database",
			mutate: func(c *Config) { c.Sinks.StoreLeads = true },
			errMsg: "requires database.driver",
		},
		{
			name:   "unknown provider",
			mutate: func(c *Config) { c.Scheduling.Provider = "calendly" },
			errMsg: `unknown provider "calendly"`,
		},
		{
			name:   "bad level",
			mutate: func(c *Config) { c.Logging.Level = "loud" },
			errMsg: `unknown level "loud"`,
		},
		{
			name:   "relative base path",
			mutate: func(c *Config) { c.HTTP.BasePath = "demo" },
			errMsg: "must start with /",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Fatalf("expected %q in %v", tt.errMsg, err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Logging{Level: "warn", Format: "text"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "step", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "step=2") {
		t.Fatalf("unexpected text output: %q", out)
	}

	buf.Reset()
	Logging{Format: "json"}.NewLogger(&buf).Info("lead", "outcome", "calendar")
	if !strings.Contains(buf.String(), `"outcome":"calendar"`) {
		t.Fatalf("unexpected json output: %q", buf.String())
	}
}
