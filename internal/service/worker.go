package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/unclebandit/wabulk-backend/internal/logger"
)

// DispatchJob is the queued form of an async campaign send.
type DispatchJob struct {
	UserID     string   `json:"user_id"`
	CampaignID string   `json:"campaign_id"`
	ContactIDs []string `json:"contact_ids,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Worker runs queued campaign dispatches
type Worker struct {
	Campaigns *CampaignService
}

// Constructor
func NewWorker(campaigns *CampaignService) *Worker {
	return &Worker{Campaigns: campaigns}
}

// Handle decodes one job body and runs the dispatch synchronously.
func (w *Worker) Handle(body []byte) error {
	var job DispatchJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}
	if job.UserID == "" || job.CampaignID == "" {
		return fmt.Errorf("invalid job: missing user_id or campaign_id")
	}

	ctx := context.Background()
	recipients, err := w.Campaigns.ResolveRecipients(ctx, job.UserID, job.ContactIDs, job.Tags)
	if err != nil {
		return fmt.Errorf("resolve recipients for campaign %s: %w", job.CampaignID, err)
	}

	result, err := w.Campaigns.Dispatcher.Dispatch(ctx, job.UserID, job.CampaignID, recipients)
	if err != nil {
		return fmt.Errorf("dispatch campaign %s: %w", job.CampaignID, err)
	}

	logger.Info("queued dispatch processed", "campaign_id", job.CampaignID, "sent", result.Sent, "failed", result.Failed)
	return nil
}
