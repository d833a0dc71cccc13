package approval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"autoreply/internal/notify"
)

// Request is a reply waiting for approval.
type Request struct {
	ReviewID string
	Stars    int
	Period   string
	Lang     string
	Message  string
}

// Text renders the approval request for a human reader.
func (r Request) Text() string {
	return fmt.Sprintf("*Trustpilot review %s*\nStars: %d | Period: %s | Lang: %s\n\n*Proposed reply:*\n%s\n\nApprove to post.",
		r.ReviewID, r.Stars, r.Period, r.Lang, r.Message)
}

// Subject is the email subject for the approval request.
func (r Request) Subject() string {
	return "Approval needed: Trustpilot review " + r.ReviewID
}

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

// Notifier sends approval requests through a single channel. A Notifier
// without a channel only logs.
type Notifier struct {
	slack   TextSender
	mail    MailSender
	emailTo []string
	runner  Scheduler
	log     *zap.Logger
}

// NewSlackNotifier sends approval requests to a chat webhook.
func NewSlackNotifier(s TextSender, runner Scheduler, log *zap.Logger) *Notifier {
	return newNotifier(runner, log, func(n *Notifier) { n.slack = s })
}

// NewEmailNotifier sends approval requests by email.
func NewEmailNotifier(m MailSender, to []string, runner Scheduler, log *zap.Logger) *Notifier {
	return newNotifier(runner, log, func(n *Notifier) {
		n.mail = m
		n.emailTo = to
	})
}

// NewLogNotifier only records approval requests in the log.
func NewLogNotifier(log *zap.Logger) *Notifier {
	return newNotifier(nil, log, nil)
}

func newNotifier(runner Scheduler, log *zap.Logger, apply func(*Notifier)) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	n := &Notifier{runner: runner, log: log}
	if apply != nil {
		apply(n)
	}
	return n
}

// Notify queues the approval request. Delivery is best-effort and never
// blocks the caller.
func (n *Notifier) Notify(req Request) {
	n.log.Info("reply queued for approval",
		zap.String("review_id", req.ReviewID),
		zap.Int("stars", req.Stars),
		zap.String("period", req.Period),
		zap.String("lang", req.Lang),
	)

	switch {
	case n.slack != nil:
		text := req.Text()
		n.runner.Go("approval-slack", func(ctx context.Context) error {
			return n.slack.Send(ctx, text)
		})
	case n.mail != nil && len(n.emailTo) > 0:
		subject, body := req.Subject(), req.Text()
		n.runner.Go("approval-email", func(ctx context.Context) error {
			return n.mail.Send(ctx, n.emailTo, subject, body)
		})
	}
}
