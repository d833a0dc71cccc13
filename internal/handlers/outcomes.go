package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"autoreply/internal/db"
	"autoreply/internal/models"
)

// OutcomeReader reads recorded outcomes.
type OutcomeReader interface {
	GetOutcome(ctx context.Context, reviewID string) (*models.Outcome, error)
}

// OutcomeHandler exposes the outcome log for auditing.
type OutcomeHandler struct {
	store OutcomeReader
	log   *zap.Logger
}

// NewOutcomeHandler creates a new outcome handler.
func NewOutcomeHandler(store OutcomeReader, log *zap.Logger) *OutcomeHandler {
	return &OutcomeHandler{store: store, log: log}
}

// Get returns the outcome recorded for the review in the path.
func (h *OutcomeHandler) Get(c fiber.Ctx) error {
	reviewID := c.Params("review_id")
	if reviewID == "" {
		return jsonError(c, fiber.StatusBadRequest, "review id is required")
	}

	outcome, err := h.store.GetOutcome(c.Context(), reviewID)
	if err != nil {
		if errors.Is(err, db.ErrOutcomeNotFound) {
			return jsonError(c, fiber.StatusNotFound, "outcome not found")
		}
		h.log.Error("failed to fetch outcome", zap.String("review_id", reviewID), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch outcome")
	}

	return c.JSON(outcome)
}
