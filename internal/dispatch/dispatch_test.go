package dispatch

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"autoreply/internal/models"
	"autoreply/internal/reviews"
)

type memStore struct {
	mu       sync.Mutex
	outcomes map[string]*models.Outcome
	writes   int
	err      error
}

func newMemStore() *memStore {
	return &memStore{outcomes: make(map[string]*models.Outcome)}
}

func (m *memStore) SaveOutcome(ctx context.Context, o *models.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.err != nil {
		return m.err
	}
	m.outcomes[o.ReviewID] = o
	return nil
}

type stubPoster struct {
	resp  *reviews.Response
	err   error
	calls int
}

func (s *stubPoster) PostReply(ctx context.Context, reviewID, message string) (*reviews.Response, error) {
	s.calls++
	return s.resp, s.err
}

type alert struct{ title, detail string }

type recordingAlerter struct {
	alerts []alert
}

func (r *recordingAlerter) Alert(title, detail string) {
	r.alerts = append(r.alerts, alert{title, detail})
}

func candidate() Candidate {
	return Candidate{
		ReviewID:    "rev-9",
		Stars:       4,
		Lang:        models.LangEN,
		Period:      models.PeriodOld,
		TemplateKey: "4_Vecchio_EN",
		Message:     "Thanks Ada!",
	}
}

func TestDispatch_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantStatus string
		wantAlerts int
		wantErr    bool
	}{
		{"ok", http.StatusOK, models.StatusReplied, 0, false},
		{"created", http.StatusCreated, models.StatusReplied, 0, false},
		{"conflict", http.StatusConflict, models.StatusSkipConflict, 0, false},
		{"server error", http.StatusInternalServerError, "error_500", 1, true},
		{"unauthorized", http.StatusUnauthorized, "error_401", 1, true},
		{"accepted", http.StatusAccepted, "error_202", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			poster := &stubPoster{resp: &reviews.Response{StatusCode: tt.code, Body: "upstream body"}}
			alerter := &recordingAlerter{}

			status, err := New(store, poster, alerter, nil, nil).Dispatch(context.Background(), candidate())

			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if poster.calls != 1 {
				t.Errorf("posts = %d, want exactly 1", poster.calls)
			}
			if store.writes != 1 {
				t.Errorf("writes = %d, want exactly 1", store.writes)
			}
			rec := store.outcomes["rev-9"]
			if rec == nil || rec.Status != tt.wantStatus {
				t.Fatalf("recorded = %+v, want status %q", rec, tt.wantStatus)
			}
			if rec.TemplateKey != "4_Vecchio_EN" || rec.MessageHash != models.HashMessage("Thanks Ada!") {
				t.Errorf("recorded = %+v", rec)
			}
			if len(alerter.alerts) != tt.wantAlerts {
				t.Errorf("alerts = %d, want %d", len(alerter.alerts), tt.wantAlerts)
			}

			if tt.wantErr {
				var upstream *UpstreamError
				if !errors.As(err, &upstream) {
					t.Fatalf("error = %T, want *UpstreamError", err)
				}
				if upstream.StatusCode != tt.code || upstream.Body != "upstream body" {
					t.Errorf("UpstreamError = %+v", upstream)
				}
				if alerter.alerts[0].title != AlertUpstreamError || !strings.Contains(alerter.alerts[0].detail, "body=upstream body") {
					t.Errorf("alert = %+v", alerter.alerts[0])
				}
			}
		})
	}
}

func TestDispatch_TransportError(t *testing.T) {
	store := newMemStore()
	poster := &stubPoster{err: errors.New("connection refused")}
	alerter := &recordingAlerter{}

	status, err := New(store, poster, alerter, nil, nil).Dispatch(context.Background(), candidate())

	if status != models.StatusErrorException {
		t.Errorf("status = %q", status)
	}
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if store.outcomes["rev-9"].Status != models.StatusErrorException {
		t.Errorf("recorded status = %q", store.outcomes["rev-9"].Status)
	}
	if len(alerter.alerts) != 1 || alerter.alerts[0].title != AlertTransportError {
		t.Errorf("alerts = %+v", alerter.alerts)
	}
	if alerter.alerts[0].detail != "review_id=rev-9 error=connection refused" {
		t.Errorf("alert detail = %q", alerter.alerts[0].detail)
	}
}

func TestDispatch_MissingToken(t *testing.T) {
	store := newMemStore()
	poster := &stubPoster{err: reviews.ErrMissingToken}

	_, err := New(store, poster, &recordingAlerter{}, nil, nil).Dispatch(context.Background(), candidate())

	if !errors.Is(err, reviews.ErrMissingToken) {
		t.Errorf("error = %v, want ErrMissingToken in chain", err)
	}
	if store.outcomes["rev-9"].Status != models.StatusErrorException {
		t.Errorf("recorded status = %q", store.outcomes["rev-9"].Status)
	}
}

func TestDispatch_StoreFailure(t *testing.T) {
	storeErr := errors.New("db down")
	store := newMemStore()
	store.err = storeErr
	poster := &stubPoster{resp: &reviews.Response{StatusCode: http.StatusOK}}

	status, err := New(store, poster, &recordingAlerter{}, nil, nil).Dispatch(context.Background(), candidate())

	if status != models.StatusReplied {
		t.Errorf("status = %q", status)
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("error = %v, want store error", err)
	}
}

func TestDispatch_ObservesDuration(t *testing.T) {
	hist := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_reply_post_duration_seconds"})
	poster := &stubPoster{resp: &reviews.Response{StatusCode: http.StatusOK}}

	if _, err := New(newMemStore(), poster, &recordingAlerter{}, hist, nil).Dispatch(context.Background(), candidate()); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if got := testutil.CollectAndCount(hist); got != 1 {
		t.Errorf("collected metrics = %d, want 1", got)
	}
}
