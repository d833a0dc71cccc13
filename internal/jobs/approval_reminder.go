package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"autoreply/internal/models"
)

// AlertApprovalPending is the alert title for stale approval requests.
const AlertApprovalPending = "Replies awaiting approval"

const reminderBatch = 100

// PendingLister lists outcomes by status and write time.
type PendingLister interface {
	ListOutcomesCreatedBetween(ctx context.Context, status string, from time.Time, afterID string, to time.Time, limit int) ([]models.Outcome, error)
}

// Alerter raises operator alerts.
type Alerter interface {
	Alert(title, detail string)
}

// ApprovalReminder periodically alerts about replies that have been waiting
// for approval longer than maxAge. Each reply is reminded about once.
type ApprovalReminder struct {
	store    PendingLister
	alerter  Alerter
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
	log      *zap.Logger

	// lastTo and lastID are the resume key of the previous scan.
	lastTo time.Time
	lastID string
}

// NewApprovalReminder creates a new approval reminder.
func NewApprovalReminder(store PendingLister, alerter Alerter, interval, maxAge time.Duration, log *zap.Logger) *ApprovalReminder {
	if log == nil {
		log = zap.NewNop()
	}
	return &ApprovalReminder{
		store:    store,
		alerter:  alerter,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
		log:      log,
	}
}

// Start begins the reminder loop. It returns when ctx is done.
func (r *ApprovalReminder) Start(ctx context.Context) {
	r.log.Info("approval reminder started", zap.Duration("interval", r.interval), zap.Duration("max_age", r.maxAge))

	// Run immediately on start
	r.checkPending(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("approval reminder stopped")
			return
		case <-ticker.C:
			r.checkPending(ctx)
		}
	}
}

// checkPending alerts about queued replies that crossed maxAge since the
// previous scan and returns how many were found.
func (r *ApprovalReminder) checkPending(ctx context.Context) int {
	to := r.now().UTC().Add(-r.maxAge)
	from, afterID := r.lastTo, r.lastID
	if from.IsZero() {
		from = to.Add(-r.interval)
	}
	if !to.After(from) {
		return 0
	}

	pending, err := r.store.ListOutcomesCreatedBetween(ctx, models.StatusQueuedForApproval, from, afterID, to, reminderBatch)
	if err != nil {
		r.log.Error("failed to list pending approvals", zap.Error(err))
		return 0
	}

	// Advance past what we saw. A full batch resumes after its last record.
	r.lastTo, r.lastID = to, ""
	if len(pending) == reminderBatch {
		last := pending[len(pending)-1]
		r.lastTo, r.lastID = last.CreatedAt, last.ReviewID
	}

	if len(pending) == 0 {
		return 0
	}

	lines := make([]string, 0, len(pending))
	for _, o := range pending {
		lines = append(lines, fmt.Sprintf("review_id=%s stars=%d lang=%s queued_at=%s",
			o.ReviewID, o.Stars, o.Lang, o.CreatedAt.UTC().Format(time.RFC3339)))
	}

	r.log.Info("replies awaiting approval", zap.Int("count", len(pending)))
	r.alerter.Alert(AlertApprovalPending, strings.Join(lines, "\n"))
	return len(pending)
}
