package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/unclebandit/wabulk-backend/internal/model"
)

type OutboundMessageRepositoryInterface interface {
	Create(ctx context.Context, msg *model.OutboundMessage) error
	ListByCampaign(ctx context.Context, userID, campaignID string, limit, offset int) ([]model.OutboundMessage, int, error)
}

type OutboundMessageRepository struct {
	DB *sql.DB
}

// Create records the outcome of one send attempt
func (r *OutboundMessageRepository) Create(ctx context.Context, msg *model.OutboundMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO outbound_messages
        (id, campaign_id, user_id, contact_id, phone, content, status, error, external_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.DB.ExecContext(ctx, query,
		msg.ID,
		msg.CampaignID,
		msg.UserID,
		msg.ContactID,
		msg.Phone,
		msg.Content,
		msg.Status,
		msg.Error,
		msg.ExternalID,
		msg.CreatedAt,
	)
	return err
}

// ListByCampaign returns a page of a campaign's per-recipient outcomes, newest first.
func (r *OutboundMessageRepository) ListByCampaign(ctx context.Context, userID, campaignID string, limit, offset int) ([]model.OutboundMessage, int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outbound_messages WHERE user_id=$1 AND campaign_id=$2`,
		userID, campaignID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `
        SELECT id, campaign_id, user_id, contact_id, phone, content, status, error, external_id, created_at
        FROM outbound_messages
        WHERE user_id=$1 AND campaign_id=$2
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4
    `
	rows, err := r.DB.QueryContext(ctx, query, userID, campaignID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	messages := []model.OutboundMessage{}
	for rows.Next() {
		var msg model.OutboundMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.CampaignID,
			&msg.UserID,
			&msg.ContactID,
			&msg.Phone,
			&msg.Content,
			&msg.Status,
			&msg.Error,
			&msg.ExternalID,
			&msg.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

var _ OutboundMessageRepositoryInterface = (*OutboundMessageRepository)(nil)
