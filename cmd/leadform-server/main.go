package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-leadform/pkg/config"
	"github.com/goliatone/go-leadform/pkg/contract"
	"github.com/goliatone/go-leadform/pkg/leadstore"
	"github.com/goliatone/go-leadform/pkg/metrics"
	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/notify"
	"github.com/goliatone/go-leadform/pkg/renderers/vanilla"
	"github.com/goliatone/go-leadform/pkg/schedule"
	"github.com/goliatone/go-leadform/pkg/server"
	"github.com/goliatone/go-leadform/pkg/session"
	"github.com/goliatone/go-leadform/pkg/themes"
	"github.com/goliatone/go-leadform/pkg/workflow"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	envFile := flag.String("env-file", ".env", "dotenv file read before the environment")
	flag.Parse()

	opts := []config.Option{config.WithEnvFiles(*envFile)}
	if *configPath != "" {
		opts = append(opts, config.WithFile(*configPath))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := cfg.Logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("leadform-server: exit", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	def, err := loadDefinition(cfg.Form)
	if err != nil {
		return err
	}
	doc, err := contract.Default()
	if err != nil {
		return err
	}
	registry := metrics.New()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}

	sinks, err := buildSinks(cfg, doc, rdb, logger)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(
		notify.WithTimeout(cfg.Sinks.Timeout),
		notify.WithLogger(logger),
		notify.WithMetrics(registry),
		notify.WithSinks(sinks...),
	)

	scheduler, err := schedule.New(cfg.Scheduling.Provider, cfg.Scheduling.CalLink, cfg.Scheduling.LemcalUser, cfg.Scheduling.LemcalMeeting)
	if err != nil {
		return err
	}
	engine, err := workflow.New(
		workflow.WithDefinition(def),
		workflow.WithDispatcher(dispatcher),
		workflow.WithScheduler(scheduler),
		workflow.WithBookingTheme(cfg.Theme.Variant),
		workflow.WithLogger(logger),
		workflow.WithMetrics(registry),
		workflow.WithSelfServeNotifications(cfg.Sinks.NotifySelfServe),
	)
	if err != nil {
		return err
	}

	selector, err := themes.NewSelector(cfg.Theme.Name, cfg.Theme.Variant)
	if err != nil {
		return err
	}
	html, err := vanilla.New(vanilla.WithSelfServeURL(cfg.Form.SelfServeURL))
	if err != nil {
		return err
	}

	var store session.Store
	switch cfg.Sessions.Store {
	case config.StoreRedis:
		store = session.NewRedisStore(rdb,
			session.WithTTL(cfg.Sessions.TTL),
			session.WithPrefix(cfg.Redis.Prefix))
	default:
		store = session.NewMemoryStore(session.WithMemoryTTL(cfg.Sessions.TTL))
	}

	srv, err := server.New(engine,
		server.WithStore(store),
		server.WithHTMLRenderer(html),
		server.WithMetrics(registry),
		server.WithContract(doc),
		server.WithThemes(selector, cfg.Theme.Name, cfg.Theme.Variant),
		server.WithBasePath(cfg.HTTP.BasePath),
		server.WithCookie(cfg.HTTP.CookieName, cfg.HTTP.CookieSecure, cfg.Sessions.TTL),
		server.WithCSRF(cfg.HTTP.CSRF),
		server.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("leadform-server: listening",
			"addr", cfg.HTTP.Addr,
			"base_path", cfg.HTTP.BasePath,
			"session_store", cfg.Sessions.Store,
			"sinks", dispatcher.Sinks())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("leadform-server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("leadform-server: shutdown", "error", err)
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.Warn("leadform-server: deliveries still running at exit", "error", err)
	}
	return nil
}

func loadDefinition(cfg config.Form) (model.FormDefinition, error) {
	if cfg.DefinitionPath == "" {
		return model.DefaultDefinition()
	}
	return model.LoadDefinitionFile(cfg.DefinitionPath)
}

func buildSinks(cfg config.Config, doc *contract.Document, rdb *redis.Client, logger *slog.Logger) ([]notify.Sink, error) {
	var sinks []notify.Sink

	if cfg.Sinks.WebhookURL != "" {
		webhook, err := notify.NewWebhookSink(cfg.Sinks.WebhookURL,
			notify.WithContract(doc),
			notify.WithSecret(cfg.Sinks.WebhookSecret))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, webhook)
	}

	if cfg.Sinks.PostHogKey != "" {
		posthog, err := notify.NewPostHogSink(cfg.Sinks.PostHogKey, cfg.Sinks.PostHogHost, nil)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, posthog)
	}

	if cfg.Sinks.StoreLeads {
		db, err := leadstore.Open(cfg.Database.Driver, cfg.Database.DSN, leadstore.Options{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		if err := leadstore.Migrate(db); err != nil {
			return nil, err
		}
		sinks = append(sinks, notify.NewStoreSink(leadstore.NewRepository(db)))
	}

	if cfg.Sinks.Stream != "" && rdb != nil {
		sinks = append(sinks, notify.NewStreamSink(rdb, cfg.Sinks.Stream, cfg.Sinks.StreamMaxLen))
	}

	if len(sinks) == 0 {
		logger.Warn("leadform-server: no notification sinks configured; leads are only logged")
		sinks = append(sinks, notify.FuncSink{
			SinkName: "log",
			Fn: func(_ context.Context, event notify.Event) error {
				logger.Info("lead", "event_id", event.ID, "type", event.Type, "email", event.Lead.Email)
				return nil
			},
		})
	}
	return sinks, nil
}
