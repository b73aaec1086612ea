package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "LEADFORM_"

// LegacyCalFormEnv names the Cal.com form link variable deployments already
// set; LEADFORM_CAL_LINK takes precedence when both exist.
const LegacyCalFormEnv = "DEFAULT_CAL_FORM"

// Option configures Load.
type Option func(*loader)

type loader struct {
	file      string
	envFiles  []string
	lookupEnv func(string) (string, bool)
}

// WithFile reads a YAML file after the defaults. A missing file is an error.
func WithFile(path string) Option {
	return func(l *loader) {
		l.file = strings.TrimSpace(path)
	}
}

// WithEnvFiles reads dotenv files. Missing files are skipped; the process
// environment wins over their values.
func WithEnvFiles(paths ...string) Option {
	return func(l *loader) {
		l.envFiles = append(l.envFiles, paths...)
	}
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(l *loader) {
		if fn != nil {
			l.lookupEnv = fn
		}
	}
}

// Load builds and validates the configuration.
func Load(opts ...Option) (Config, error) {
	l := &loader{lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	cfg := Default()
	if l.file != "" {
		if err := decodeFile(l.file, &cfg); err != nil {
			return Config{}, err
		}
	}

	dotenv := make(map[string]string)
	for _, path := range l.envFiles {
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("config: read env file %s: %w", path, err)
		}
		for k, v := range values {
			dotenv[k] = v
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := l.lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

type binding struct {
	key string
	set func(string) error
}

func str(dst *string) func(string) error {
	return func(v string) error { *dst = v; return nil }
}

func boolean(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func integer(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func integer64(dst *int64) func(string) error {
	return func(v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func duration(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

func bindings(cfg *Config) []binding {
	return []binding{
		{LegacyCalFormEnv, str(&cfg.Scheduling.CalLink)},

		{EnvPrefix + "HTTP_ADDR", str(&cfg.HTTP.Addr)},
		{EnvPrefix + "BASE_PATH", str(&cfg.HTTP.BasePath)},
		{EnvPrefix + "READ_TIMEOUT", duration(&cfg.HTTP.ReadTimeout)},
		{EnvPrefix + "WRITE_TIMEOUT", duration(&cfg.HTTP.WriteTimeout)},
		{EnvPrefix + "SHUTDOWN_TIMEOUT", duration(&cfg.HTTP.ShutdownTimeout)},
		{EnvPrefix + "COOKIE_NAME", str(&cfg.HTTP.CookieName)},
		{EnvPrefix + "COOKIE_SECURE", boolean(&cfg.HTTP.CookieSecure)},
		{EnvPrefix + "CSRF", boolean(&cfg.HTTP.CSRF)},

		{EnvPrefix + "DEFINITION_PATH", str(&cfg.Form.DefinitionPath)},
		{EnvPrefix + "SELF_SERVE_URL", str(&cfg.Form.SelfServeURL)},

		{EnvPrefix + "SESSION_STORE", str(&cfg.Sessions.Store)},
		{EnvPrefix + "SESSION_TTL", duration(&cfg.Sessions.TTL)},

		{EnvPrefix + "WEBHOOK_URL", str(&cfg.Sinks.WebhookURL)},
		{EnvPrefix + "WEBHOOK_SECRET", str(&cfg.Sinks.WebhookSecret)},
		{EnvPrefix + "POSTHOG_KEY", str(&cfg.Sinks.PostHogKey)},
		{EnvPrefix + "POSTHOG_HOST", str(&cfg.Sinks.PostHogHost)},
		{EnvPrefix + "LEAD_STREAM", str(&cfg.Sinks.Stream)},
		{EnvPrefix + "LEAD_STREAM_MAX_LEN", integer64(&cfg.Sinks.StreamMaxLen)},
		{EnvPrefix + "STORE_LEADS", boolean(&cfg.Sinks.StoreLeads)},
		{EnvPrefix + "SINK_TIMEOUT", duration(&cfg.Sinks.Timeout)},
		{EnvPrefix + "NOTIFY_SELF_SERVE", boolean(&cfg.Sinks.NotifySelfServe)},

		{EnvPrefix + "SCHEDULER", str(&cfg.Scheduling.Provider)},
		{EnvPrefix + "CAL_LINK", str(&cfg.Scheduling.CalLink)},
		{EnvPrefix + "LEMCAL_USER", str(&cfg.Scheduling.LemcalUser)},
		{EnvPrefix + "LEMCAL_MEETING", str(&cfg.Scheduling.LemcalMeeting)},

		{EnvPrefix + "DB_DRIVER", str(&cfg.Database.Driver)},
		{EnvPrefix + "DB_DSN", str(&cfg.Database.DSN)},
		{EnvPrefix + "DB_MAX_OPEN_CONNS", integer(&cfg.Database.MaxOpenConns)},
		{EnvPrefix + "DB_MAX_IDLE_CONNS", integer(&cfg.Database.MaxIdleConns)},

		{EnvPrefix + "REDIS_ADDR", str(&cfg.Redis.Addr)},
		{EnvPrefix + "REDIS_PASSWORD", str(&cfg.Redis.Password)},
		{EnvPrefix + "REDIS_DB", integer(&cfg.Redis.DB)},
		{EnvPrefix + "REDIS_PREFIX", str(&cfg.Redis.Prefix)},

		{EnvPrefix + "THEME", str(&cfg.Theme.Name)},
		{EnvPrefix + "THEME_VARIANT", str(&cfg.Theme.Variant)},

		{EnvPrefix + "LOG_LEVEL", str(&cfg.Logging.Level)},
		{EnvPrefix + "LOG_FORMAT", str(&cfg.Logging.Format)},
	}
}

// applyEnv runs bindings in order, so LEADFORM_CAL_LINK overrides
// DEFAULT_CAL_FORM.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error
	for _, b := range bindings(cfg) {
		value, ok := lookup(b.key)
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if err := b.set(value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: environment: %w", errors.Join(errs...))
	}
	return nil
}
