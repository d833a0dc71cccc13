package models

import (
	"fmt"
	"strings"
	"time"
)

// DefaultConsumerName is used in replies when the reviewer has no display name.
const DefaultConsumerName = "Cliente"

// ReviewEvent is a review-posted event delivered by the review platform.
type ReviewEvent struct {
	ReviewID              string    `json:"review_id"`
	Stars                 int       `json:"stars"`
	CreatedAt             time.Time `json:"created_at"`
	Language              string    `json:"language,omitempty"`
	ConsumerName          string    `json:"consumer_name,omitempty"`
	CompanyResponseExists bool      `json:"company_response_exists"`
}

// DisplayName returns the consumer name to greet, falling back to DefaultConsumerName.
func (e *ReviewEvent) DisplayName() string {
	if name := strings.TrimSpace(e.ConsumerName); name != "" {
		return e.ConsumerName
	}
	return DefaultConsumerName
}

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp as reported by the review platform.
// Timestamps without an offset are treated as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
