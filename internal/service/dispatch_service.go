package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/logger"
	"github.com/unclebandit/wabulk-backend/internal/model"
	"github.com/unclebandit/wabulk-backend/internal/repository"
	"github.com/unclebandit/wabulk-backend/internal/whatsapp"
)

const DefaultSendDelay = time.Second

// RecipientResult is the outcome of one send attempt.
type RecipientResult struct {
	ContactID  string `json:"contact_id"`
	Phone      string `json:"phone"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

// DispatchResult summarizes a bulk send. Sent + Failed always equals Total.
type DispatchResult struct {
	CampaignID string            `json:"campaign_id"`
	Status     string            `json:"status"`
	Total      int               `json:"total"`
	Sent       int               `json:"sent"`
	Failed     int               `json:"failed"`
	Results    []RecipientResult `json:"results"`
}

// BulkDispatcher sends a campaign to its recipients one at a time with a
// fixed pause between sends.
type BulkDispatcher struct {
	Campaigns   repository.CampaignRepositoryInterface
	Messages    repository.OutboundMessageRepositoryInterface
	Sender      whatsapp.Sender
	Renderer    *Renderer
	CountryCode string
	Delay       time.Duration
	Sleep       func(time.Duration)
	Now         func() time.Time
}

func (d *BulkDispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *BulkDispatcher) renderer() *Renderer {
	if d.Renderer == nil {
		return NewRenderer(time.UTC, "")
	}
	return d.Renderer
}

func (d *BulkDispatcher) sleep(dur time.Duration) {
	if dur <= 0 {
		return
	}
	if d.Sleep != nil {
		d.Sleep(dur)
		return
	}
	time.Sleep(dur)
}

// RecipientVars builds the substitution mapping for a contact.
func RecipientVars(c model.Contact) map[string]string {
	vars := make(map[string]string, len(c.CustomFields)+4)
	for k, v := range c.CustomFields {
		vars[k] = v
	}
	vars["name"] = c.Name
	vars["first_name"] = firstName(c.Name)
	vars["phone"] = c.Phone
	vars["email"] = c.Email
	return vars
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Dispatch sends the campaign message to every recipient in order. Individual
// failures are counted and recorded, never returned. Cancellation of ctx does
// not stop a run once it has started.
func (d *BulkDispatcher) Dispatch(ctx context.Context, userID, campaignID string, recipients []model.Contact) (*DispatchResult, error) {
	campaign, err := d.Campaigns.GetByID(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(campaign.Message) == "" && campaign.MediaURL == "" {
		return nil, appErrors.NewValidation("message", "campaign has no message to send")
	}
	if len(recipients) == 0 {
		return nil, appErrors.NewValidation("recipients", "no recipients selected")
	}

	ctx = context.WithoutCancel(ctx)

	if err := d.Campaigns.MarkSending(ctx, userID, campaignID, len(recipients), d.now()); err != nil {
		return nil, fmt.Errorf("mark campaign sending: %w", err)
	}

	logger.Info("campaign dispatch started", "campaign_id", campaignID, "recipients", len(recipients))

	result := &DispatchResult{
		CampaignID: campaignID,
		Total:      len(recipients),
		Results:    make([]RecipientResult, 0, len(recipients)),
	}

	for i, contact := range recipients {
		if i > 0 {
			d.sleep(d.Delay)
		}

		rr := d.sendOne(ctx, userID, campaign, contact)
		if rr.Status == model.MessageSent {
			result.Sent++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, rr)
	}

	if err := d.finish(ctx, userID, result); err != nil {
		return result, err
	}

	logger.Info("campaign dispatch finished", "campaign_id", campaignID, "status", result.Status, "sent", result.Sent, "failed", result.Failed)
	return result, nil
}

// finish stores the outcome of a run whose messages have already gone out.
// The completed write is tried twice; after that the campaign is marked
// failed with the same counts so it does not stay in sending.
func (d *BulkDispatcher) finish(ctx context.Context, userID string, result *DispatchResult) error {
	result.Status = model.CampaignCompleted
	err := d.Campaigns.Finish(ctx, userID, result.CampaignID, model.CampaignCompleted, result.Sent, result.Failed, d.now())
	if err == nil {
		return nil
	}
	logger.Warn("campaign completion not saved, retrying", "campaign_id", result.CampaignID, "error", err.Error())
	if err = d.Campaigns.Finish(ctx, userID, result.CampaignID, model.CampaignCompleted, result.Sent, result.Failed, d.now()); err == nil {
		return nil
	}

	logger.Error("campaign completion not saved, marking failed", "campaign_id", result.CampaignID, "error", err.Error())
	result.Status = model.CampaignFailed
	if ferr := d.Campaigns.Finish(ctx, userID, result.CampaignID, model.CampaignFailed, result.Sent, result.Failed, d.now()); ferr != nil {
		return fmt.Errorf("finish campaign: %w", err)
	}
	return nil
}

// personalize returns the number a saved contact is dialed on and text
// rendered for that contact.
func (d *BulkDispatcher) personalize(text string, contact model.Contact) (string, string) {
	phone := ContactPhone(contact.Phone, d.CountryCode)
	contact.Phone = phone
	return phone, d.renderer().Render(text, RecipientVars(contact))
}

func (d *BulkDispatcher) sendOne(ctx context.Context, userID string, campaign *model.Campaign, contact model.Contact) RecipientResult {
	phone, text := d.personalize(campaign.Message, contact)

	rr := RecipientResult{ContactID: contact.ID, Phone: phone, Status: model.MessageSent}
	if phone == "" {
		rr.Status = model.MessageFailed
		rr.Error = "invalid phone"
	} else if res, err := d.Sender.Send(ctx, whatsapp.OutgoingMessage{Phone: phone, Text: text, MediaURL: campaign.MediaURL}); err != nil {
		rr.Status = model.MessageFailed
		rr.Error = err.Error()
		logger.Warn("campaign message failed", "campaign_id", campaign.ID, "phone", phone, "error", err.Error())
	} else if res != nil {
		rr.ExternalID = res.ExternalID
	}

	msg := &model.OutboundMessage{
		ID:         uuid.NewString(),
		CampaignID: &campaign.ID,
		UserID:     userID,
		Phone:      phone,
		Content:    text,
		Status:     rr.Status,
		Error:      rr.Error,
		ExternalID: rr.ExternalID,
	}
	if contact.ID != "" {
		id := contact.ID
		msg.ContactID = &id
	}
	if err := d.Messages.Create(ctx, msg); err != nil {
		logger.Error("failed to record outbound message", "campaign_id", campaign.ID, "phone", phone, "error", err.Error())
	}
	return rr
}
