package entities

import "time"

// Event records a change made inside a company, for the activity feed
type Event struct {
	ID         string                 `json:"id"`
	CompanyID  CompanyID              `json:"company_id"`
	Type       string                 `json:"type"`
	Subject    string                 `json:"subject"`
	Actor      UserID                 `json:"actor,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}
