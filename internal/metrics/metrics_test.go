package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounter) CountOutcomesByStatus(ctx context.Context) (map[string]int64, error) {
	return f.counts, f.err
}

func TestOutcomeCollector(t *testing.T) {
	c := NewOutcomeCollector(&fakeCounter{counts: map[string]int64{
		"replied":             3,
		"queued_for_approval": 1,
	}}, nil)

	expected := `
# HELP autoreply_outcome_records Recorded review outcomes by status
# TYPE autoreply_outcome_records gauge
autoreply_outcome_records{status="queued_for_approval"} 1
autoreply_outcome_records{status="replied"} 3
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected)); err != nil {
		t.Errorf("CollectAndCompare() error = %v", err)
	}
}

func TestOutcomeCollector_StoreError(t *testing.T) {
	c := NewOutcomeCollector(&fakeCounter{err: errors.New("db down")}, nil)

	if got := testutil.CollectAndCount(c); got != 0 {
		t.Errorf("collected %d metrics on error, want 0", got)
	}
}

func TestRecordOutcome(t *testing.T) {
	before := testutil.ToFloat64(OutcomesTotal.WithLabelValues("skip_conflict"))
	RecordOutcome("skip_conflict")
	RecordOutcome("skip_conflict")

	if got := testutil.ToFloat64(OutcomesTotal.WithLabelValues("skip_conflict")) - before; got != 2 {
		t.Errorf("skip_conflict increments = %v, want 2", got)
	}
}
