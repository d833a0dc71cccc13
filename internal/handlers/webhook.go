package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"

	"autoreply/internal/classifier"
	"autoreply/internal/dispatch"
	"autoreply/internal/logger"
	"autoreply/internal/models"
	"autoreply/internal/pipeline"
	"autoreply/internal/validation"
)

// EventProcessor runs a review event to its terminal outcome.
type EventProcessor interface {
	Process(ctx context.Context, event *models.ReviewEvent) (pipeline.Result, error)
}

// WebhookHandler receives review-posted events.
type WebhookHandler struct {
	processor EventProcessor
	validate  *validation.Validator
	log       *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(processor EventProcessor, validate *validation.Validator, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{processor: processor, validate: validate, log: log}
}

// Receive parses a review event, processes it and maps the outcome onto the
// HTTP response.
func (h *WebhookHandler) Receive(c fiber.Ctx) error {
	var req models.WebhookRequest
	if err := c.Bind().JSON(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	event, err := req.ToEvent()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid created_at: "+err.Error())
	}

	ctx := logger.WithRequestID(c.Context(), requestid.FromContext(c))
	log := logger.FromContext(ctx, h.log).With(zap.String("review_id", event.ReviewID))

	res, err := h.processor.Process(ctx, event)
	if err == nil {
		log.Info("review processed", zap.String("status", res.Status), zap.String("reason", res.Reason))
		return jsonOutcome(c, fiber.StatusOK, models.WebhookResponse{Status: res.Status, Reason: res.Reason})
	}

	var missing *classifier.TemplateMissingError
	var upstream *dispatch.UpstreamError
	var transport *dispatch.TransportError
	switch {
	case errors.As(err, &missing):
		return jsonOutcome(c, fiber.StatusBadRequest, models.WebhookResponse{
			Status: res.Status,
			Reason: res.Reason,
			Error:  missing.Error(),
		})

	case errors.As(err, &upstream):
		code := upstream.StatusCode
		if code < 400 {
			code = fiber.StatusBadGateway
		}
		return jsonOutcome(c, code, models.WebhookResponse{
			Status: res.Status,
			Error:  upstream.Body,
		})

	case errors.As(err, &transport):
		return jsonOutcome(c, fiber.StatusInternalServerError, models.WebhookResponse{
			Status: models.StatusErrorException,
			Error:  transport.Error(),
		})

	default:
		log.Error("review processing failed", zap.String("status", res.Status), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "failed to process review event")
	}
}
