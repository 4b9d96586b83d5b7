// internal/model/campaign.go
package model

import "time"

const (
	CampaignDraft     = "draft"
	CampaignSending   = "sending"
	CampaignCompleted = "completed"
	CampaignFailed    = "failed"
)

type Campaign struct {
	ID              string     `db:"id" json:"id"`
	UserID          string     `db:"user_id" json:"user_id"`
	Name            string     `db:"name" json:"name"`
	TemplateID      *string    `db:"template_id" json:"template_id,omitempty"`
	Message         string     `db:"message" json:"message"`
	MediaURL        string     `db:"media_url" json:"media_url,omitempty"`
	Status          string     `db:"status" json:"status"`
	TotalRecipients int        `db:"total_recipients" json:"total_recipients"`
	SentCount       int        `db:"sent_count" json:"sent_count"`
	FailedCount     int        `db:"failed_count" json:"failed_count"`
	StartedAt       *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// CampaignPatch holds the mutable campaign fields. Nil fields are left untouched.
type CampaignPatch struct {
	Name       *string `json:"name"`
	TemplateID *string `json:"template_id"`
	Message    *string `json:"message"`
	MediaURL   *string `json:"media_url"`
	Status     *string `json:"status"`
}

// CampaignFilter controls campaign listing.
type CampaignFilter struct {
	Status string
	Limit  int
	Offset int
}
