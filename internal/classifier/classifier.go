// Package classifier decides language, recency period, star eligibility and
// reply template for an inbound review event.
package classifier

import (
	"fmt"
	"strings"
	"time"

	"autoreply/internal/models"
	"autoreply/internal/templates"
)

// FreshDays is the largest age in whole days still considered fresh.
const FreshDays = 5

// TemplateLookup resolves a template table key.
type TemplateLookup interface {
	Lookup(key string) (string, bool)
}

// TemplateMissingError is returned when no template exists for the resolved
// key. Lang and Period are still resolved so the outcome can be recorded.
type TemplateMissingError struct {
	Key    string
	Lang   string
	Period string
}

func (e *TemplateMissingError) Error() string {
	return fmt.Sprintf("No template for %s", e.Key)
}

// Resolution is the classification of an event that has a reply template.
type Resolution struct {
	Lang        string
	Period      string
	TemplateKey string
	Template    string
}

// Message renders the template for the given display name.
func (r *Resolution) Message(name string) string {
	return strings.ReplaceAll(r.Template, templates.NamePlaceholder, name)
}

// Classifier holds the read-only inputs of classification.
type Classifier struct {
	location  *time.Location
	templates TemplateLookup
	allowed   map[int]bool
}

// New creates a classifier. A nil location means UTC.
func New(location *time.Location, lookup TemplateLookup, allowedStars []int) *Classifier {
	if location == nil {
		location = time.UTC
	}
	allowed := make(map[int]bool, len(allowedStars))
	for _, s := range allowedStars {
		allowed[s] = true
	}
	return &Classifier{location: location, templates: lookup, allowed: allowed}
}

// StarsAllowed reports whether replies are enabled for the rating.
func (c *Classifier) StarsAllowed(stars int) bool {
	return c.allowed[stars]
}

// Classify resolves language, period and template for the event as of now.
// A missing template yields a *TemplateMissingError.
func (c *Classifier) Classify(event *models.ReviewEvent, now time.Time) (*Resolution, error) {
	lang := ResolveLanguage(event.Language)
	period := PeriodForAge(c.AgeDays(event.CreatedAt, now))
	key := models.TemplateKey(event.Stars, period, lang)

	tpl, ok := c.templates.Lookup(key)
	if !ok {
		return nil, &TemplateMissingError{Key: key, Lang: lang, Period: period}
	}

	return &Resolution{Lang: lang, Period: period, TemplateKey: key, Template: tpl}, nil
}

// AgeDays returns the number of whole 24h periods between createdAt and now,
// measured on the wall clock of the classifier's timezone. Future timestamps
// count as zero.
func (c *Classifier) AgeDays(createdAt, now time.Time) int {
	elapsed := wallClock(now, c.location).Sub(wallClock(createdAt, c.location))
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}

// wallClock returns t's local reading in loc re-expressed in UTC, so that
// differences follow the local clock across DST changes.
func wallClock(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), time.UTC)
}

// PeriodForAge labels an age in days as fresh or old.
func PeriodForAge(days int) string {
	if days <= FreshDays {
		return models.PeriodFresh
	}
	return models.PeriodOld
}

// ResolveLanguage maps a locale hint to a supported reply language.
// Unknown or empty hints default to Italian.
func ResolveLanguage(hint string) string {
	code := strings.ToLower(strings.TrimSpace(hint))
	switch {
	case strings.HasPrefix(code, "it"):
		return models.LangIT
	case strings.HasPrefix(code, "en"):
		return models.LangEN
	case strings.HasPrefix(code, "fr"):
		return models.LangFR
	default:
		return models.LangIT
	}
}
