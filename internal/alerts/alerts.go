// Package alerts delivers operator alerts through the configured channels.
package alerts

import (
	"context"

	"go.uber.org/zap"

	"autoreply/internal/notify"
)

// TextSender posts a plain-text chat message.
type TextSender interface {
	Send(ctx context.Context, text string) error
}

// MailSender sends a plain-text email.
type MailSender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// Scheduler runs delivery tasks in the background.
type Scheduler interface {
	Go(name string, task notify.Task) bool
}

// Sink fans alerts out to Slack and email. Either channel may be nil.
// Alerts never fail the caller: delivery errors are logged by the scheduler.
type Sink struct {
	slack   TextSender
	mail    MailSender
	emailTo []string
	runner  Scheduler
	log     *zap.Logger
}

// Option configures a Sink.
type Option func(*Sink)

// WithSlack enables the Slack channel.
func WithSlack(s TextSender) Option {
	return func(k *Sink) { k.slack = s }
}

// WithEmail enables the email channel for the given recipients.
func WithEmail(m MailSender, to ...string) Option {
	return func(k *Sink) {
		if len(to) > 0 {
			k.mail = m
			k.emailTo = to
		}
	}
}

// NewSink creates a sink. With no options every alert is only logged.
func NewSink(runner Scheduler, log *zap.Logger, opts ...Option) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Sink{runner: runner, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SlackText formats an alert for chat delivery.
func SlackText(title, detail string) string {
	return ":warning: " + title + "\n" + detail
}

// Alert queues delivery of an alert on every enabled channel and returns
// immediately.
func (s *Sink) Alert(title, detail string) {
	s.log.Warn("alert", zap.String("title", title), zap.String("detail", detail))

	if s.slack != nil {
		text := SlackText(title, detail)
		s.runner.Go("alert-slack", func(ctx context.Context) error {
			return s.slack.Send(ctx, text)
		})
	}
	if s.mail != nil {
		to := s.emailTo
		s.runner.Go("alert-email", func(ctx context.Context) error {
			return s.mail.Send(ctx, to, title, detail)
		})
	}
}
