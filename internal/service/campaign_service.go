// internal/service/campaign_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/logger"
	"github.com/unclebandit/wabulk-backend/internal/model"
	"github.com/unclebandit/wabulk-backend/internal/queue"
	"github.com/unclebandit/wabulk-backend/internal/repository"
)

const DispatchTopic = "campaign_dispatch"

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	OutboundRepo repository.OutboundMessageRepositoryInterface
	Dispatcher   *BulkDispatcher
	Queue        queue.Queue
	Topic        string
}

type CampaignInput struct {
	Name       string  `json:"name"`
	TemplateID *string `json:"template_id"`
	Message    string  `json:"message"`
	MediaURL   string  `json:"media_url"`
}

// SendRequest selects recipients: explicit contact ids win, then tags; with
// neither, every contact of the user is selected.
type SendRequest struct {
	ContactIDs []string `json:"contact_ids"`
	Tags       []string `json:"tags"`
	Async      bool     `json:"async"`
}

// SendCampaignResult is returned by Send. Result is nil for queued sends.
type SendCampaignResult struct {
	CampaignID string          `json:"campaign_id"`
	Status     string          `json:"status"`
	Queued     bool            `json:"queued"`
	Result     *DispatchResult `json:"result,omitempty"`
}

// PreviewRequest renders a campaign for one saved contact. Message, when set,
// replaces the campaign text for this preview only.
type PreviewRequest struct {
	ContactID string  `json:"contact_id"`
	Message   *string `json:"message"`
}

type CampaignPreview struct {
	CampaignID      string   `json:"campaign_id"`
	ContactID       string   `json:"contact_id"`
	Phone           string   `json:"phone"`
	RenderedMessage string   `json:"rendered_message"`
	UsedMessage     *string  `json:"used_message,omitempty"`
	MediaURL        string   `json:"media_url,omitempty"`
	Missing         []string `json:"missing"`
}

type CampaignDetails struct {
	model.Campaign
	Stats map[string]int `json:"stats"`
}

func (s *CampaignService) topic() string {
	if s.Topic == "" {
		return DispatchTopic
	}
	return s.Topic
}

// CreateCampaign stores a draft. A campaign created from a template copies its
// content (and media) unless the caller overrides them.
func (s *CampaignService) CreateCampaign(ctx context.Context, userID string, in CampaignInput) (*model.Campaign, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, appErrors.NewValidation("name", "is required")
	}

	c := &model.Campaign{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     name,
		Message:  in.Message,
		MediaURL: strings.TrimSpace(in.MediaURL),
		Status:   model.CampaignDraft,
	}

	if in.TemplateID != nil && *in.TemplateID != "" {
		if err := checkRefID("template_id", *in.TemplateID); err != nil {
			return nil, err
		}
		t, err := s.TemplateRepo.GetByID(ctx, userID, *in.TemplateID)
		if err != nil {
			return nil, err
		}
		c.TemplateID = &t.ID
		if strings.TrimSpace(c.Message) == "" {
			c.Message = t.Content
		}
		if c.MediaURL == "" {
			c.MediaURL = t.MediaURL
		}
	}

	if strings.TrimSpace(c.Message) == "" && c.MediaURL == "" {
		return nil, appErrors.NewValidation("message", "is required")
	}

	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, userID, status string, page, pageSize int) ([]model.Campaign, map[string]int, error) {
	page, pageSize = normalizePage(page, pageSize)
	campaigns, total, err := s.CampaignRepo.List(ctx, userID, model.CampaignFilter{
		Status: status,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, nil, err
	}
	return campaigns, pagination(page, pageSize, total), nil
}

func (s *CampaignService) GetCampaignDetailsWithStats(ctx context.Context, userID, id string) (*CampaignDetails, error) {
	if err := checkID("campaign", id); err != nil {
		return nil, err
	}
	campaign, err := s.CampaignRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.CampaignRepo.GetCampaignStats(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &CampaignDetails{Campaign: *campaign, Stats: stats}, nil
}

func (s *CampaignService) UpdateCampaign(ctx context.Context, userID, id string, p model.CampaignPatch) (*model.Campaign, error) {
	if err := checkID("campaign", id); err != nil {
		return nil, err
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, appErrors.NewValidation("name", "cannot be empty")
	}
	if p.Status != nil && !validCampaignStatus(*p.Status) {
		return nil, appErrors.NewValidation("status", fmt.Sprintf("unknown status %q", *p.Status))
	}
	if p.TemplateID != nil && *p.TemplateID != "" {
		if err := checkRefID("template_id", *p.TemplateID); err != nil {
			return nil, err
		}
		if _, err := s.TemplateRepo.GetByID(ctx, userID, *p.TemplateID); err != nil {
			return nil, err
		}
	}
	return s.CampaignRepo.Update(ctx, userID, id, p)
}

func (s *CampaignService) DeleteCampaign(ctx context.Context, userID, id string) error {
	if err := checkID("campaign", id); err != nil {
		return err
	}
	return s.CampaignRepo.Delete(ctx, userID, id)
}

func validCampaignStatus(status string) bool {
	switch status {
	case model.CampaignDraft, model.CampaignSending, model.CampaignCompleted, model.CampaignFailed:
		return true
	}
	return false
}

// ResolveRecipients loads the contacts a send targets.
func (s *CampaignService) ResolveRecipients(ctx context.Context, userID string, contactIDs, tags []string) ([]model.Contact, error) {
	if len(contactIDs) > 0 {
		return s.ContactRepo.GetByIDs(ctx, userID, contactIDs)
	}
	return s.ContactRepo.ListByTags(ctx, userID, tags)
}

// SendCampaign dispatches the campaign now, or publishes a DispatchJob when
// req.Async is set.
func (s *CampaignService) SendCampaign(ctx context.Context, userID, id string, req SendRequest) (*SendCampaignResult, error) {
	if err := checkID("campaign", id); err != nil {
		return nil, err
	}
	if err := checkRefIDs("contact_ids", req.ContactIDs); err != nil {
		return nil, err
	}
	campaign, err := s.CampaignRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status == model.CampaignSending {
		return nil, appErrors.NewAlreadySending()
	}

	if req.Async {
		if s.Queue == nil {
			return nil, fmt.Errorf("async dispatch is not configured")
		}
		job := DispatchJob{UserID: userID, CampaignID: id, ContactIDs: req.ContactIDs, Tags: req.Tags}
		if err := s.Queue.Publish(s.topic(), job); err != nil {
			return nil, fmt.Errorf("enqueue dispatch: %w", err)
		}
		logger.Info("campaign dispatch queued", "campaign_id", id)
		return &SendCampaignResult{CampaignID: id, Status: "queued", Queued: true}, nil
	}

	recipients, err := s.ResolveRecipients(ctx, userID, req.ContactIDs, req.Tags)
	if err != nil {
		return nil, err
	}
	result, err := s.Dispatcher.Dispatch(ctx, userID, id, recipients)
	if result == nil {
		return nil, err
	}
	// A non-nil result with an error means the messages went out but the
	// campaign status could not be stored.
	return &SendCampaignResult{CampaignID: id, Status: result.Status, Result: result}, err
}

// RenderPreview shows exactly what the contact would receive if the campaign
// were sent now.
func (s *CampaignService) RenderPreview(ctx context.Context, userID, id string, req PreviewRequest) (*CampaignPreview, error) {
	if err := checkID("campaign", id); err != nil {
		return nil, err
	}
	if req.ContactID == "" {
		return nil, appErrors.NewValidation("contact_id", "is required")
	}
	if err := checkRefID("contact_id", req.ContactID); err != nil {
		return nil, err
	}

	campaign, err := s.CampaignRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	contact, err := s.ContactRepo.GetByID(ctx, userID, req.ContactID)
	if err != nil {
		return nil, err
	}

	text := campaign.Message
	var used *string
	if req.Message != nil && strings.TrimSpace(*req.Message) != "" {
		text = *req.Message
		used = req.Message
	}
	if strings.TrimSpace(text) == "" && campaign.MediaURL == "" {
		return nil, appErrors.NewValidation("message", "campaign has no message to preview")
	}

	d := s.Dispatcher
	if d == nil {
		d = &BulkDispatcher{}
	}
	phone, rendered := d.personalize(text, *contact)
	return &CampaignPreview{
		CampaignID:      campaign.ID,
		ContactID:       contact.ID,
		Phone:           phone,
		RenderedMessage: rendered,
		UsedMessage:     used,
		MediaURL:        campaign.MediaURL,
		Missing:         Placeholders(rendered),
	}, nil
}

// ListMessages pages through a campaign's per-recipient outcomes.
func (s *CampaignService) ListMessages(ctx context.Context, userID, id string, page, pageSize int) ([]model.OutboundMessage, map[string]int, error) {
	if err := checkID("campaign", id); err != nil {
		return nil, nil, err
	}
	if _, err := s.CampaignRepo.GetByID(ctx, userID, id); err != nil {
		return nil, nil, err
	}
	page, pageSize = normalizePage(page, pageSize)
	msgs, total, err := s.OutboundRepo.ListByCampaign(ctx, userID, id, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, err
	}
	return msgs, pagination(page, pageSize, total), nil
}
