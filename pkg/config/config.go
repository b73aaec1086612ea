// Package config loads the lead form service configuration. Values are
// layered: built-in defaults, an optional YAML file, optional .env files and
// finally the process environment, each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	HTTP       HTTP       `yaml:"http"`
	Form       Form       `yaml:"form"`
	Sessions   Sessions   `yaml:"sessions"`
	Sinks      Sinks      `yaml:"sinks"`
	Scheduling Scheduling `yaml:"scheduling"`
	Database   Database   `yaml:"database"`
	Redis      Redis      `yaml:"redis"`
	Theme      Theme      `yaml:"theme"`
	Logging    Logging    `yaml:"logging"`
}

// HTTP configures the listener and the request handling.
type HTTP struct {
	Addr            string        `yaml:"addr"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CookieName      string        `yaml:"cookie_name"`
	CookieSecure    bool          `yaml:"cookie_secure"`
	CSRF            bool          `yaml:"csrf"`
}

// Form selects the form definition and the self-serve destination.
type Form struct {
	// DefinitionPath loads a YAML definition instead of the embedded one.
	DefinitionPath string `yaml:"definition_path"`
	SelfServeURL   string `yaml:"self_serve_url"`
}

// Session store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Sessions configures where session snapshots live.
type Sessions struct {
	Store string        `yaml:"store"`
	TTL   time.Duration `yaml:"ttl"`
}

// Sinks configures lead delivery. Every sink is optional.
type Sinks struct {
	WebhookURL    string `yaml:"webhook_url"`
	WebhookSecret string `yaml:"webhook_secret"`
	PostHogKey    string `yaml:"posthog_key"`
	PostHogHost   string `yaml:"posthog_host"`
	// Stream appends lead events to this Redis stream when set.
	Stream       string        `yaml:"stream"`
	StreamMaxLen int64         `yaml:"stream_max_len"`
	StoreLeads   bool          `yaml:"store_leads"`
	Timeout      time.Duration `yaml:"timeout"`
	// NotifySelfServe also delivers leads routed to self-serve.
	NotifySelfServe bool `yaml:"notify_self_serve"`
}

// Scheduling selects the calendar provider shown after the last step.
type Scheduling struct {
	Provider      string `yaml:"provider"`
	CalLink       string `yaml:"cal_link"`
	LemcalUser    string `yaml:"lemcal_user"`
	LemcalMeeting string `yaml:"lemcal_meeting"`
}

// Database configures the lead log. An empty driver disables it.
type Database struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// Redis configures the shared client. An empty address disables it.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Theme selects the renderer theme.
type Theme struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		HTTP: HTTP{
			Addr:            ":8080",
			BasePath:        "/demo",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CookieName:      "leadform_session",
			CSRF:            true,
		},
		Form: Form{
			SelfServeURL: "/start",
		},
		Sessions: Sessions{
			Store: StoreMemory,
			TTL:   24 * time.Hour,
		},
		Sinks: Sinks{
			PostHogHost:  "https://us.i.posthog.com",
			StreamMaxLen: 10000,
			Timeout:      5 * time.Second,
		},
		Scheduling: Scheduling{
			Provider: "calcom",
		},
		Database: Database{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Redis: Redis{
			Prefix: "leadform",
		},
		Theme: Theme{
			Name:    "leadform",
			Variant: "light",
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(c.HTTP.Addr) == "" {
		add("http.addr is required")
	}
	if c.HTTP.BasePath != "" && !strings.HasPrefix(c.HTTP.BasePath, "/") {
		add("http.base_path must start with /: %q", c.HTTP.BasePath)
	}
	for name, d := range map[string]time.Duration{
		"http.read_timeout":          c.HTTP.ReadTimeout,
		"http.write_timeout":         c.HTTP.WriteTimeout,
		"http.shutdown_timeout":      c.HTTP.ShutdownTimeout,
		"sessions.ttl":               c.Sessions.TTL,
		"sinks.timeout":              c.Sinks.Timeout,
		"database.conn_max_lifetime": c.Database.ConnMaxLifetime,
	} {
		if d < 0 {
			add("%s must not be negative: %s", name, d)
		}
	}

	switch c.Sessions.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			add("sessions.store %q requires redis.addr", StoreRedis)
		}
	default:
		add("sessions.store: unknown kind %q", c.Sessions.Store)
	}
	if c.Sinks.Stream != "" && c.Redis.Addr == "" {
		add("sinks.stream requires redis.addr")
	}
	if c.Sinks.StoreLeads && c.Database.Driver == "" {
		add("sinks.store_leads requires database.driver")
	}

	switch strings.ToLower(c.Scheduling.Provider) {
	case "", "calcom", "cal.com", "lemcal", "none":
	default:
		add("scheduling.provider: unknown provider %q", c.Scheduling.Provider)
	}
	switch strings.ToLower(c.Database.Driver) {
	case "", "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		add("database.driver: unsupported driver %q", c.Database.Driver)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		add("logging.format: unknown format %q", c.Logging.Format)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(errs...))
}
