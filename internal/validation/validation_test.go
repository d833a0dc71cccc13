package validation

import (
	"strings"
	"testing"
)

type payload struct {
	ReviewID string `json:"review_id" validate:"required,max=5"`
	Stars    *int   `json:"stars" validate:"required"`
	Note     string `json:"note,omitempty"`
}

func TestValidator_Struct(t *testing.T) {
	stars := 3
	v := New()

	tests := []struct {
		name    string
		in      payload
		wantErr []string
	}{
		{"valid", payload{ReviewID: "r1", Stars: &stars}, nil},
		{"missing review id", payload{Stars: &stars}, []string{"review_id is required"}},
		{"missing stars", payload{ReviewID: "r1"}, []string{"stars is required"}},
		{"too long", payload{ReviewID: "abcdef", Stars: &stars}, []string{"review_id must be at most 5 characters"}},
		{"everything missing", payload{}, []string{"review_id is required", "stars is required"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("Struct() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Struct() error = nil, want %v", tt.wantErr)
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Struct() error = %q, missing %q", err.Error(), want)
				}
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantOK bool
	}{
		{"https webhook", "https://hooks.slack.com/services/T000/B000/XXX", true},
		{"http local", "http://localhost:9000/hook", true},
		{"upper scheme", "HTTPS://api.trustpilot.com", true},
		{"empty", "", false},
		{"no scheme", "hooks.slack.com/services/x", false},
		{"ftp", "ftp://example.com/file", false},
		{"javascript", "javascript:alert(1)", false},
		{"no host", "https:///path", false},
		{"bad escape", "http://%zz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := ValidateURL(tt.url)
			if ok != tt.wantOK {
				t.Errorf("ValidateURL(%q) = %v (%s), want %v", tt.url, ok, msg, tt.wantOK)
			}
			if !ok && msg == "" {
				t.Errorf("ValidateURL(%q) returned no message", tt.url)
			}
		})
	}
}
