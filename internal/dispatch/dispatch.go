// Package dispatch posts approved replies and records how the platform
// answered.
package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"autoreply/internal/models"
	"autoreply/internal/reviews"
)

// Alert titles.
const (
	AlertUpstreamError  = "Trustpilot reply error"
	AlertTransportError = "Exception while replying"
)

// OutcomeWriter persists outcome records.
type OutcomeWriter interface {
	SaveOutcome(ctx context.Context, o *models.Outcome) error
}

// ReplyPoster posts a reply to the review platform.
type ReplyPoster interface {
	PostReply(ctx context.Context, reviewID, message string) (*reviews.Response, error)
}

// Alerter raises operator alerts.
type Alerter interface {
	Alert(title, detail string)
}

// UpstreamError is an unexpected HTTP status from the review platform.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("review platform returned %d: %s", e.StatusCode, e.Body)
}

// TransportError wraps a failure to obtain any response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Candidate is a reply ready to be posted.
type Candidate struct {
	ReviewID    string
	Stars       int
	Lang        string
	Period      string
	TemplateKey string
	Message     string
}

func (c Candidate) outcome(status string) *models.Outcome {
	return &models.Outcome{
		ReviewID:    c.ReviewID,
		Status:      status,
		TemplateKey: c.TemplateKey,
		Lang:        c.Lang,
		Stars:       c.Stars,
		Period:      c.Period,
		MessageHash: models.HashMessage(c.Message),
	}
}

// Dispatcher posts replies and records their outcome.
type Dispatcher struct {
	store    OutcomeWriter
	poster   ReplyPoster
	alerter  Alerter
	duration prometheus.Observer
	log      *zap.Logger
}

// New creates a dispatcher. duration may be nil.
func New(store OutcomeWriter, poster ReplyPoster, alerter Alerter, duration prometheus.Observer, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{store: store, poster: poster, alerter: alerter, duration: duration, log: log}
}

// Dispatch posts the candidate once and records exactly one outcome. It
// returns the recorded status. Upstream failures are returned as
// *UpstreamError and transport failures as *TransportError, after the
// outcome has been written and the alert raised.
func (d *Dispatcher) Dispatch(ctx context.Context, c Candidate) (string, error) {
	log := d.log.With(zap.String("review_id", c.ReviewID), zap.String("template_key", c.TemplateKey))

	start := time.Now()
	resp, err := d.poster.PostReply(ctx, c.ReviewID, c.Message)
	if d.duration != nil {
		d.duration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		log.Error("reply post failed", zap.Error(err))
		saveErr := d.record(ctx, c, models.StatusErrorException)
		d.alerter.Alert(AlertTransportError, fmt.Sprintf("review_id=%s error=%s", c.ReviewID, err))
		if saveErr != nil {
			return models.StatusErrorException, saveErr
		}
		return models.StatusErrorException, &TransportError{Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		log.Info("reply posted", zap.Int("status_code", resp.StatusCode))
		return models.StatusReplied, d.record(ctx, c, models.StatusReplied)

	case http.StatusConflict:
		log.Info("reply already present upstream")
		return models.StatusSkipConflict, d.record(ctx, c, models.StatusSkipConflict)

	default:
		status := models.StatusForUpstream(resp.StatusCode)
		log.Error("reply rejected", zap.Int("status_code", resp.StatusCode), zap.String("body", resp.Body))
		saveErr := d.record(ctx, c, status)
		d.alerter.Alert(AlertUpstreamError, fmt.Sprintf("review_id=%s status=%d body=%s", c.ReviewID, resp.StatusCode, resp.Body))
		if saveErr != nil {
			return status, saveErr
		}
		return status, &UpstreamError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
}

func (d *Dispatcher) record(ctx context.Context, c Candidate, status string) error {
	if err := d.store.SaveOutcome(ctx, c.outcome(status)); err != nil {
		d.log.Error("failed to record outcome",
			zap.String("review_id", c.ReviewID), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}
