package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Outcome status constants
const (
	StatusSkipAlreadyReplied        = "skip_already_replied"
	StatusSkipCompanyAlreadyReplied = "skip_company_already_replied"
	StatusSkipStarsFiltered         = "skip_stars_filtered"
	StatusSkipTemplateMissing       = "skip_template_missing"
	StatusQueuedForApproval         = "queued_for_approval"
	StatusReplied                   = "replied"
	StatusSkipConflict              = "skip_conflict"
	StatusErrorException            = "error_exception"

	statusErrorPrefix = "error_"
)

// Recency periods
const (
	PeriodFresh = "Fresco"
	PeriodOld   = "Vecchio"
)

// Reply languages
const (
	LangIT = "IT"
	LangEN = "EN"
	LangFR = "FR"
)

// StatusForUpstream returns the error status recorded for an unexpected
// upstream HTTP status code, e.g. "error_503".
func StatusForUpstream(code int) string {
	return statusErrorPrefix + strconv.Itoa(code)
}

// SkipReason returns the caller-facing reason for a skip status, or "" when the
// status is not a skip.
func SkipReason(status string) string {
	switch status {
	case StatusSkipAlreadyReplied:
		return "already_replied"
	case StatusSkipCompanyAlreadyReplied:
		return "company_already_replied"
	case StatusSkipStarsFiltered:
		return "stars_filtered"
	case StatusSkipTemplateMissing:
		return "template_missing"
	case StatusSkipConflict:
		return "conflict"
	}
	return ""
}

// Outcome is the persisted terminal decision for one review.
type Outcome struct {
	ReviewID    string    `json:"review_id"`
	Status      string    `json:"status"`
	TemplateKey string    `json:"template_key"`
	Lang        string    `json:"lang"`
	Stars       int       `json:"stars"`
	Period      string    `json:"period"`
	MessageHash string    `json:"message_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// HashMessage fingerprints a reply message. An empty message has an empty hash.
func HashMessage(message string) string {
	if message == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(message))
	return hex.EncodeToString(sum[:])
}

// TemplateKey builds the template table key for a rating, period and language.
func TemplateKey(stars int, period, lang string) string {
	return strconv.Itoa(stars) + "_" + period + "_" + lang
}
