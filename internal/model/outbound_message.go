// internal/model/outbound_message.go
package model

import "time"

const (
	MessageSent   = "sent"
	MessageFailed = "failed"
)

type OutboundMessage struct {
	ID         string    `db:"id" json:"id"`
	CampaignID *string   `db:"campaign_id" json:"campaign_id,omitempty"`
	UserID     string    `db:"user_id" json:"user_id"`
	ContactID  *string   `db:"contact_id" json:"contact_id,omitempty"`
	Phone      string    `db:"phone" json:"phone"`
	Content    string    `db:"content" json:"content"`
	Status     string    `db:"status" json:"status"` // sent, failed
	Error      string    `db:"error" json:"error,omitempty"`
	ExternalID string    `db:"external_id" json:"external_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
