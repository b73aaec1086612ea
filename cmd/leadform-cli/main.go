package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/goliatone/go-leadform/pkg/config"
	"github.com/goliatone/go-leadform/pkg/contract"
	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/notify"
	"github.com/goliatone/go-leadform/pkg/render"
	"github.com/goliatone/go-leadform/pkg/renderers/tui"
	"github.com/goliatone/go-leadform/pkg/schedule"
	"github.com/goliatone/go-leadform/pkg/workflow"
)

func main() {
	definition := flag.String("definition", "", "form definition YAML (embedded default if empty)")
	format := flag.String("format", string(tui.OutputFormatPrettyText), "summary format: pretty or json")
	envFile := flag.String("env-file", ".env", "dotenv file read before the environment")
	back := flag.Bool("back", true, "offer to go back after each step")
	flag.Parse()

	cfg, err := config.Load(config.WithEnvFiles(*envFile))
	if err != nil {
		log.Fatal(err)
	}
	if *definition != "" {
		cfg.Form.DefinitionPath = *definition
	}
	cfg.Logging.Format = "text"
	logger := cfg.Logging.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, tui.OutputFormat(*format), *back, logger); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(os.Stderr, "aborted")
			os.Exit(130)
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config, format tui.OutputFormat, back bool, logger *slog.Logger) error {
	def := model.MustDefaultDefinition()
	if cfg.Form.DefinitionPath != "" {
		loaded, err := model.LoadDefinitionFile(cfg.Form.DefinitionPath)
		if err != nil {
			return err
		}
		def = loaded
	}

	dispatcher := notify.NewDispatcher(notify.WithLogger(logger), notify.WithTimeout(cfg.Sinks.Timeout))
	if cfg.Sinks.WebhookURL != "" {
		webhook, err := notify.NewWebhookSink(cfg.Sinks.WebhookURL,
			notify.WithContract(contract.MustDefault()),
			notify.WithSecret(cfg.Sinks.WebhookSecret))
		if err != nil {
			return err
		}
		dispatcher.Register(webhook)
	}

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
	)
	if err != nil {
		return err
	}

	sess := engine.NewSession("")
	runner := tui.NewRunner(tui.WithBackNavigation(back))
	if _, err := runner.Run(ctx, sess); err != nil {
		return err
	}

	summary, err := tui.NewRenderer(format).Render(ctx, sess.View(nil), render.RenderOptions{})
	if err != nil {
		return err
	}
	fmt.Println(string(summary))

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return dispatcher.Wait(waitCtx)
}
