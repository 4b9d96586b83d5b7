package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	List(ctx context.Context, userID string, f model.CampaignFilter) ([]model.Campaign, int, error)
	GetByID(ctx context.Context, userID, id string) (*model.Campaign, error)
	Create(ctx context.Context, c *model.Campaign) error
	Update(ctx context.Context, userID, id string, p model.CampaignPatch) (*model.Campaign, error)
	Delete(ctx context.Context, userID, id string) error

	// Dispatch bookkeeping
	MarkSending(ctx context.Context, userID, id string, total int, startedAt time.Time) error
	Finish(ctx context.Context, userID, id, status string, sent, failed int, finishedAt time.Time) error
	GetCampaignStats(ctx context.Context, userID, campaignID string) (map[string]int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, user_id, name, template_id, message, media_url, status, total_recipients,
        sent_count, failed_count, started_at, completed_at, created_at, updated_at`

func scanCampaign(row scanner) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.TemplateID, &c.Message, &c.MediaURL, &c.Status,
		&c.TotalRecipients, &c.SentCount, &c.FailedCount, &c.StartedAt, &c.CompletedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	query := `
        INSERT INTO campaigns (id, user_id, name, template_id, message, media_url, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.DB.ExecContext(ctx, query, c.ID, c.UserID, c.Name, c.TemplateID, c.Message, c.MediaURL, c.Status, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CampaignRepository) GetByID(ctx context.Context, userID, id string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE user_id=$1 AND id=$2`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) List(ctx context.Context, userID string, f model.CampaignFilter) ([]model.Campaign, int, error) {
	where := ` WHERE user_id=$1`
	args := []interface{}{userID}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status=$%d", len(args))
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.DB.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

func (r *CampaignRepository) Update(ctx context.Context, userID, id string, p model.CampaignPatch) (*model.Campaign, error) {
	var b patchBuilder
	if p.Name != nil {
		b.set("name", *p.Name)
	}
	if p.TemplateID != nil {
		b.set("template_id", nullIfEmpty(*p.TemplateID))
	}
	if p.Message != nil {
		b.set("message", *p.Message)
	}
	if p.MediaURL != nil {
		b.set("media_url", *p.MediaURL)
	}
	if p.Status != nil {
		b.set("status", *p.Status)
	}
	if b.empty() {
		return r.GetByID(ctx, userID, id)
	}

	query, args := b.build("campaigns", userID, id, campaignColumns, true)
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM campaigns WHERE user_id=$1 AND id=$2`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewCampaignNotFound(id)
	}
	return nil
}

// ====================== Dispatch bookkeeping ======================

// MarkSending claims the campaign for a new dispatch run and resets its
// counters. Only one run can hold the claim.
func (r *CampaignRepository) MarkSending(ctx context.Context, userID, id string, total int, startedAt time.Time) error {
	query := `
        UPDATE campaigns
        SET status=$1, total_recipients=$2, sent_count=0, failed_count=0, started_at=$3, completed_at=NULL, updated_at=NOW()
        WHERE user_id=$4 AND id=$5 AND status <> $1
    `
	res, err := r.DB.ExecContext(ctx, query, model.CampaignSending, total, startedAt, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var exists bool
	err = r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM campaigns WHERE user_id=$1 AND id=$2)`, userID, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return appErrors.NewCampaignNotFound(id)
	}
	return appErrors.NewAlreadySending()
}

// Finish writes the final status and aggregate counts of a dispatch run.
func (r *CampaignRepository) Finish(ctx context.Context, userID, id, status string, sent, failed int, finishedAt time.Time) error {
	query := `
        UPDATE campaigns
        SET status=$1, sent_count=$2, failed_count=$3, completed_at=$4, updated_at=NOW()
        WHERE user_id=$5 AND id=$6
    `
	_, err := r.DB.ExecContext(ctx, query, status, sent, failed, finishedAt, userID, id)
	return err
}

func (r *CampaignRepository) GetCampaignStats(ctx context.Context, userID, campaignID string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM outbound_messages WHERE user_id=$1 AND campaign_id=$2 GROUP BY status`
	rows, err := r.DB.QueryContext(ctx, query, userID, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"total": 0, model.MessageSent: 0, model.MessageFailed: 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
		stats["total"] += count
	}
	return stats, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
