package approval

import (
	"context"
	"sync"
	"testing"
	"time"

	"autoreply/internal/models"
	"autoreply/internal/notify"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		stars    int
		period   string
		mode     bool
		expected Route
	}{
		{1, models.PeriodFresh, true, RouteApproval},
		{2, models.PeriodFresh, true, RouteApproval},
		{3, models.PeriodFresh, true, RouteDirect},
		{5, models.PeriodFresh, true, RouteDirect},
		{1, models.PeriodOld, true, RouteDirect},
		{2, models.PeriodOld, true, RouteDirect},
		{1, models.PeriodFresh, false, RouteDirect},
		{2, models.PeriodFresh, false, RouteDirect},
		{4, models.PeriodOld, false, RouteDirect},
	}

	for _, tt := range tests {
		if got := Decide(tt.stars, tt.period, tt.mode); got != tt.expected {
			t.Errorf("Decide(%d, %q, %v) = %v, want %v", tt.stars, tt.period, tt.mode, got, tt.expected)
		}
	}
}

func TestRequest_Text(t *testing.T) {
	req := Request{ReviewID: "abc", Stars: 1, Period: models.PeriodFresh, Lang: models.LangIT, Message: "Ci dispiace Cliente."}
	want := "*Trustpilot review abc*\nStars: 1 | Period: Fresco | Lang: IT\n\n*Proposed reply:*\nCi dispiace Cliente.\n\nApprove to post."
	if got := req.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

type recordingSlack struct {
	mu    sync.Mutex
	texts []string
}

func (r *recordingSlack) Send(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

type recordingMail struct {
	mu       sync.Mutex
	subjects []string
	to       [][]string
}

func (r *recordingMail) Send(ctx context.Context, to []string, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
	r.to = append(r.to, to)
	return nil
}

func TestNotifier_Slack(t *testing.T) {
	runner := notify.NewRunner(2, time.Second, nil)
	slack := &recordingSlack{}

	NewSlackNotifier(slack, runner, nil).Notify(Request{ReviewID: "r1", Stars: 2, Period: models.PeriodFresh, Lang: models.LangEN, Message: "Sorry"})
	runner.Wait()

	if len(slack.texts) != 1 {
		t.Fatalf("slack sends = %d, want 1", len(slack.texts))
	}
}

func TestNotifier_Email(t *testing.T) {
	runner := notify.NewRunner(2, time.Second, nil)
	mail := &recordingMail{}

	NewEmailNotifier(mail, []string{"approvers@example.com"}, runner, nil).Notify(Request{ReviewID: "r2", Stars: 1})
	runner.Wait()

	if len(mail.subjects) != 1 || mail.subjects[0] != "Approval needed: Trustpilot review r2" {
		t.Errorf("mail subjects = %v", mail.subjects)
	}
	if len(mail.to) != 1 || mail.to[0][0] != "approvers@example.com" {
		t.Errorf("mail recipients = %v", mail.to)
	}
}

func TestNotifier_LogOnly(t *testing.T) {
	// Must not touch a runner.
	NewLogNotifier(nil).Notify(Request{ReviewID: "r3"})
}
