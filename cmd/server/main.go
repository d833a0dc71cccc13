package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"autoreply/internal/alerts"
	"autoreply/internal/approval"
	"autoreply/internal/classifier"
	"autoreply/internal/config"
	"autoreply/internal/db"
	"autoreply/internal/dispatch"
	"autoreply/internal/guard"
	"autoreply/internal/jobs"
	"autoreply/internal/logger"
	"autoreply/internal/metrics"
	"autoreply/internal/notify"
	"autoreply/internal/pipeline"
	"autoreply/internal/reviews"
	"autoreply/internal/server"
	"autoreply/internal/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.IsDev())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return err
	}
	zlog.Info("migrations completed")

	table, err := templates.Load(cfg.TemplatesPath)
	if err != nil {
		return err
	}
	zlog.Info("templates loaded", zap.String("path", cfg.TemplatesPath), zap.Int("count", table.Len()))

	// Optional in-flight guard
	var inflight pipeline.Guard
	if cfg.RedisURL != "" {
		g, err := guard.Connect(ctx, cfg.RedisURL, guard.DefaultTTL, zlog)
		if err != nil {
			return err
		}
		defer g.Close()
		inflight = g
		zlog.Info("in-flight guard enabled")
	}

	// Notifications
	runner := notify.NewRunner(cfg.NotifyConcurrency, cfg.HTTPTimeout, zlog.Named("notify"))
	mailer := notify.NewMailer(notify.MailerConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		StartTLS: cfg.SMTPTLS,
		Timeout:  cfg.HTTPTimeout,
	})

	var alertOpts []alerts.Option
	if cfg.AlertsToSlack() {
		alertOpts = append(alertOpts, alerts.WithSlack(notify.NewSlack(cfg.AlertSlackWebhook, cfg.HTTPTimeout)))
	}
	if cfg.AlertsToEmail() {
		alertOpts = append(alertOpts, alerts.WithEmail(mailer, splitAddresses(cfg.AlertEmailTo)...))
	}
	sink := alerts.NewSink(runner, zlog.Named("alerts"), alertOpts...)

	var approver *approval.Notifier
	switch {
	case cfg.ApprovalsToSlack():
		approver = approval.NewSlackNotifier(notify.NewSlack(cfg.ApprovalWebhook, cfg.HTTPTimeout), runner, zlog)
	case cfg.ApprovalsToEmail():
		approver = approval.NewEmailNotifier(mailer, splitAddresses(cfg.ApprovalEmailTo), runner, zlog)
	default:
		approver = approval.NewLogNotifier(zlog)
	}

	// Metrics
	metrics.Init(database, zlog)

	// Pipeline
	client := reviews.NewClient(reviews.Config{
		BaseURL: cfg.APIBase,
		Token:   cfg.BusinessToken,
		Timeout: cfg.HTTPTimeout,
	})
	if cfg.BusinessToken == "" {
		zlog.Warn("TP_BUSINESS_TOKEN is not set, direct replies will fail")
	}

	processor := pipeline.New(pipeline.Deps{
		Store:      database,
		Classifier: classifier.New(cfg.Location, table, cfg.AllowedStars),
		Approver:   approver,
		Dispatcher: dispatch.New(database, client, sink, metrics.ReplyPostDuration, zlog),
		Alerter:    sink,
		Guard:      inflight,
		Record:     metrics.RecordOutcome,
		Log:        zlog,
	}, cfg.ApprovalMode)

	// Background jobs
	if cfg.ApprovalMode && cfg.ApprovalReminderInterval > 0 {
		reminder := jobs.NewApprovalReminder(database, sink, cfg.ApprovalReminderInterval, cfg.ApprovalReminderAge, zlog)
		go reminder.Start(ctx)
	}

	srv := server.New(cfg, zlog)
	srv.RegisterRoutes(server.Deps{
		Processor: processor,
		Outcomes:  database,
		Database:  database,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	runner.Wait()
	zlog.Info("server exited")
	return nil
}

// splitAddresses parses a comma-separated recipient list.
func splitAddresses(raw string) []string {
	var out []string
	for _, addr := range strings.Split(raw, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
