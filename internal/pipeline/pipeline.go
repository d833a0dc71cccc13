// Package pipeline runs a review event through deduplication, filtering,
// classification, approval routing and dispatch, recording one outcome per
// terminal decision.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"autoreply/internal/approval"
	"autoreply/internal/classifier"
	"autoreply/internal/dispatch"
	"autoreply/internal/logger"
	"autoreply/internal/models"
)

// AlertMissingTemplate is the alert title for template misses.
const AlertMissingTemplate = "Missing template"

// ReasonInProgress marks a duplicate that arrived while the first delivery
// was still being processed.
const ReasonInProgress = "in_progress"

// Store is the outcome log.
type Store interface {
	HasOutcome(ctx context.Context, reviewID string) (bool, error)
	SaveOutcome(ctx context.Context, o *models.Outcome) error
}

// Approver receives replies held for approval.
type Approver interface {
	Notify(req approval.Request)
}

// Dispatcher posts replies and records the result.
type Dispatcher interface {
	Dispatch(ctx context.Context, c dispatch.Candidate) (string, error)
}

// Alerter raises operator alerts.
type Alerter interface {
	Alert(title, detail string)
}

// Guard hands out per-review in-flight claims.
type Guard interface {
	Claim(ctx context.Context, reviewID string) (bool, func())
}

// Result is the terminal decision for an event.
type Result struct {
	Status string
	Reason string
}

// Deps are the collaborators of a Handler.
type Deps struct {
	Store      Store
	Classifier *classifier.Classifier
	Approver   Approver
	Dispatcher Dispatcher
	Alerter    Alerter
	Guard      Guard            // optional
	Record     func(string)     // optional, called with every terminal status
	Now        func() time.Time // optional, defaults to time.Now
	Log        *zap.Logger
}

// Handler processes review events.
type Handler struct {
	deps         Deps
	approvalMode bool
}

// New creates a handler.
func New(deps Deps, approvalMode bool) *Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Handler{deps: deps, approvalMode: approvalMode}
}

// Process decides and carries out the reply for event. Skips and queued
// replies return a nil error. A missing template returns a
// *classifier.TemplateMissingError and dispatch failures return the
// dispatcher's typed errors, in both cases after the outcome is recorded.
func (h *Handler) Process(ctx context.Context, event *models.ReviewEvent) (Result, error) {
	log := logger.FromContext(ctx, h.deps.Log).With(zap.String("review_id", event.ReviewID))

	res, err := h.process(ctx, event, log)
	if res.Status != "" && h.deps.Record != nil {
		h.deps.Record(res.Status)
	}
	return res, err
}

func (h *Handler) process(ctx context.Context, event *models.ReviewEvent, log *zap.Logger) (Result, error) {
	seen, err := h.deps.Store.HasOutcome(ctx, event.ReviewID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check outcome log: %w", err)
	}
	if seen {
		log.Debug("review already handled")
		return skip(models.StatusSkipAlreadyReplied), nil
	}

	if h.deps.Guard != nil {
		claimed, release := h.deps.Guard.Claim(ctx, event.ReviewID)
		if !claimed {
			log.Info("review already in progress")
			return Result{Status: models.StatusSkipAlreadyReplied, Reason: ReasonInProgress}, nil
		}
		defer release()

		// The previous holder may have finished between the check and the claim.
		if seen, err = h.deps.Store.HasOutcome(ctx, event.ReviewID); err != nil {
			return Result{}, fmt.Errorf("failed to check outcome log: %w", err)
		}
		if seen {
			return skip(models.StatusSkipAlreadyReplied), nil
		}
	}

	if event.CompanyResponseExists {
		return h.recordSkip(ctx, event, models.StatusSkipCompanyAlreadyReplied)
	}

	if !h.deps.Classifier.StarsAllowed(event.Stars) {
		return h.recordSkip(ctx, event, models.StatusSkipStarsFiltered)
	}

	resolution, err := h.deps.Classifier.Classify(event, h.deps.Now())
	var missing *classifier.TemplateMissingError
	if errors.As(err, &missing) {
		log.Warn("no template for review", zap.String("template_key", missing.Key))
		res := skip(models.StatusSkipTemplateMissing)
		saveErr := h.save(ctx, &models.Outcome{
			ReviewID: event.ReviewID,
			Status:   res.Status,
			Lang:     missing.Lang,
			Stars:    event.Stars,
			Period:   missing.Period,
		})
		h.deps.Alerter.Alert(AlertMissingTemplate, "key="+missing.Key)
		if saveErr != nil {
			return res, saveErr
		}
		return res, missing
	}
	if err != nil {
		return Result{}, err
	}

	message := resolution.Message(event.DisplayName())

	if approval.Decide(event.Stars, resolution.Period, h.approvalMode) == approval.RouteApproval {
		h.deps.Approver.Notify(approval.Request{
			ReviewID: event.ReviewID,
			Stars:    event.Stars,
			Period:   resolution.Period,
			Lang:     resolution.Lang,
			Message:  message,
		})
		res := Result{Status: models.StatusQueuedForApproval}
		return res, h.save(ctx, &models.Outcome{
			ReviewID:    event.ReviewID,
			Status:      res.Status,
			TemplateKey: resolution.TemplateKey,
			Lang:        resolution.Lang,
			Stars:       event.Stars,
			Period:      resolution.Period,
			MessageHash: models.HashMessage(message),
		})
	}

	status, err := h.deps.Dispatcher.Dispatch(ctx, dispatch.Candidate{
		ReviewID:    event.ReviewID,
		Stars:       event.Stars,
		Lang:        resolution.Lang,
		Period:      resolution.Period,
		TemplateKey: resolution.TemplateKey,
		Message:     message,
	})
	return skip(status), err
}

// recordSkip records a filter skip, which carries no classification.
func (h *Handler) recordSkip(ctx context.Context, event *models.ReviewEvent, status string) (Result, error) {
	res := skip(status)
	return res, h.save(ctx, &models.Outcome{
		ReviewID: event.ReviewID,
		Status:   status,
		Stars:    event.Stars,
	})
}

func (h *Handler) save(ctx context.Context, o *models.Outcome) error {
	if err := h.deps.Store.SaveOutcome(ctx, o); err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}

// skip builds a result with the status's caller-facing reason, if any.
func skip(status string) Result {
	return Result{Status: status, Reason: models.SkipReason(status)}
}
