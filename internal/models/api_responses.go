package models

// WebhookRequest is the inbound review event payload.
type WebhookRequest struct {
	ReviewID              string  `json:"review_id" validate:"required,max=200"`
	Stars                 *int    `json:"stars" validate:"required"`
	CreatedAt             string  `json:"created_at" validate:"required"`
	Language              *string `json:"language"`
	ConsumerName          *string `json:"consumer_name"`
	CompanyResponseExists *bool   `json:"company_response_exists"`
}

// ToEvent converts the payload into a ReviewEvent. Optional fields fall back
// to their zero values.
func (r *WebhookRequest) ToEvent() (*ReviewEvent, error) {
	createdAt, err := ParseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, err
	}

	event := &ReviewEvent{
		ReviewID:  r.ReviewID,
		CreatedAt: createdAt,
	}
	if r.Stars != nil {
		event.Stars = *r.Stars
	}
	if r.Language != nil {
		event.Language = *r.Language
	}
	if r.ConsumerName != nil {
		event.ConsumerName = *r.ConsumerName
	}
	if r.CompanyResponseExists != nil {
		event.CompanyResponseExists = *r.CompanyResponseExists
	}
	return event, nil
}

// WebhookResponse is returned for every processed review event.
type WebhookResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse is the fixed health endpoint payload.
type HealthResponse struct {
	Status string `json:"status"`
}
