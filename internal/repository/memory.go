package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/model"
)

// MemoryStore keeps every entity in process. It backs the server when no
// database is configured and the service tests. Records are kept in insertion
// order; listings that the SQL repositories sort by created_at DESC walk the
// slices backwards.
type MemoryStore struct {
	mu        sync.Mutex
	contacts  []*model.Contact
	templates []*model.Template
	campaigns []*model.Campaign
	messages  []*model.OutboundMessage
	media     []*model.Media
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Contacts() *MemoryContactRepository   { return &MemoryContactRepository{s} }
func (s *MemoryStore) Templates() *MemoryTemplateRepository { return &MemoryTemplateRepository{s} }
func (s *MemoryStore) Campaigns() *MemoryCampaignRepository { return &MemoryCampaignRepository{s} }
func (s *MemoryStore) Messages() *MemoryOutboundMessageRepository {
	return &MemoryOutboundMessageRepository{s}
}
func (s *MemoryStore) Media() *MemoryMediaRepository { return &MemoryMediaRepository{s} }

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ====================== Contacts ======================

type MemoryContactRepository struct{ s *MemoryStore }

func (r *MemoryContactRepository) find(userID, id string) *model.Contact {
	for _, c := range r.s.contacts {
		if c.UserID == userID && c.ID == id {
			return c
		}
	}
	return nil
}

func (r *MemoryContactRepository) List(_ context.Context, userID string, f model.ContactFilter) ([]model.Contact, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(f.Search)
	out := []model.Contact{}
	for i := len(r.s.contacts) - 1; i >= 0; i-- {
		c := r.s.contacts[i]
		if c.UserID != userID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) && !strings.Contains(c.Phone, search) {
			continue
		}
		if f.Tag != "" && !containsString(c.Tags, f.Tag) {
			continue
		}
		out = append(out, *c)
	}
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *MemoryContactRepository) GetByID(_ context.Context, userID, id string) (*model.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.find(userID, id)
	if c == nil {
		return nil, appErrors.NewContactNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryContactRepository) GetByIDs(_ context.Context, userID string, ids []string) ([]model.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Contact{}
	for _, c := range r.s.contacts {
		if c.UserID == userID && containsString(ids, c.ID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *MemoryContactRepository) ListByTags(_ context.Context, userID string, tags []string) ([]model.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Contact{}
	for _, c := range r.s.contacts {
		if c.UserID != userID {
			continue
		}
		if len(tags) > 0 {
			match := false
			for _, t := range tags {
				if containsString(c.Tags, t) {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *MemoryContactRepository) FindByPhone(_ context.Context, userID, phone string) (*model.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.contacts {
		if c.UserID == userID && c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryContactRepository) Create(_ context.Context, c *model.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.CustomFields == nil {
		c.CustomFields = map[string]string{}
	}
	cp := *c
	r.s.contacts = append(r.s.contacts, &cp)
	return nil
}

func (r *MemoryContactRepository) Update(_ context.Context, userID, id string, p model.ContactPatch) (*model.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.find(userID, id)
	if c == nil {
		return nil, appErrors.NewContactNotFound(id)
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Tags != nil {
		c.Tags = *p.Tags
	}
	if p.CustomFields != nil {
		c.CustomFields = *p.CustomFields
	}
	c.UpdatedAt = time.Now()
	cp := *c
	return &cp, nil
}

func (r *MemoryContactRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, c := range r.s.contacts {
		if c.UserID == userID && c.ID == id {
			r.s.contacts = append(r.s.contacts[:i], r.s.contacts[i+1:]...)
			return nil
		}
	}
	return appErrors.NewContactNotFound(id)
}

// ====================== Templates ======================

type MemoryTemplateRepository struct{ s *MemoryStore }

func (r *MemoryTemplateRepository) find(userID, id string) *model.Template {
	for _, t := range r.s.templates {
		if t.UserID == userID && t.ID == id {
			return t
		}
	}
	return nil
}

func (r *MemoryTemplateRepository) List(_ context.Context, userID string) ([]model.Template, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Template{}
	for i := len(r.s.templates) - 1; i >= 0; i-- {
		if t := r.s.templates[i]; t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *MemoryTemplateRepository) GetByID(_ context.Context, userID, id string) (*model.Template, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.find(userID, id)
	if t == nil {
		return nil, appErrors.NewTemplateNotFound(id)
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryTemplateRepository) Create(_ context.Context, t *model.Template) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Variables == nil {
		t.Variables = []string{}
	}
	cp := *t
	r.s.templates = append(r.s.templates, &cp)
	return nil
}

func (r *MemoryTemplateRepository) Update(_ context.Context, userID, id string, p model.TemplatePatch) (*model.Template, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.find(userID, id)
	if t == nil {
		return nil, appErrors.NewTemplateNotFound(id)
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.Variables != nil {
		t.Variables = *p.Variables
	}
	if p.MediaURL != nil {
		t.MediaURL = *p.MediaURL
	}
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (r *MemoryTemplateRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, t := range r.s.templates {
		if t.UserID == userID && t.ID == id {
			r.s.templates = append(r.s.templates[:i], r.s.templates[i+1:]...)
			return nil
		}
	}
	return appErrors.NewTemplateNotFound(id)
}

// ====================== Campaigns ======================

type MemoryCampaignRepository struct{ s *MemoryStore }

func (r *MemoryCampaignRepository) find(userID, id string) *model.Campaign {
	for _, c := range r.s.campaigns {
		if c.UserID == userID && c.ID == id {
			return c
		}
	}
	return nil
}

func (r *MemoryCampaignRepository) List(_ context.Context, userID string, f model.CampaignFilter) ([]model.Campaign, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Campaign{}
	for i := len(r.s.campaigns) - 1; i >= 0; i-- {
		c := r.s.campaigns[i]
		if c.UserID != userID || (f.Status != "" && c.Status != f.Status) {
			continue
		}
		out = append(out, *c)
	}
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *MemoryCampaignRepository) GetByID(_ context.Context, userID, id string) (*model.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.find(userID, id)
	if c == nil {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryCampaignRepository) Create(_ context.Context, c *model.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	cp := *c
	r.s.campaigns = append(r.s.campaigns, &cp)
	return nil
}

func (r *MemoryCampaignRepository) Update(_ context.Context, userID, id string, p model.CampaignPatch) (*model.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.find(userID, id)
	if c == nil {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.TemplateID != nil {
		if *p.TemplateID == "" {
			c.TemplateID = nil
		} else {
			tid := *p.TemplateID
			c.TemplateID = &tid
		}
	}
	if p.Message != nil {
		c.Message = *p.Message
	}
	if p.MediaURL != nil {
		c.MediaURL = *p.MediaURL
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	c.UpdatedAt = time.Now()
	cp := *c
	return &cp, nil
}

func (r *MemoryCampaignRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, c := range r.s.campaigns {
		if c.UserID == userID && c.ID == id {
			r.s.campaigns = append(r.s.campaigns[:i], r.s.campaigns[i+1:]...)
			return nil
		}
	}
	return appErrors.NewCampaignNotFound(id)
}

func (r *MemoryCampaignRepository) MarkSending(_ context.Context, userID, id string, total int, startedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.find(userID, id)
	if c == nil {
		return appErrors.NewCampaignNotFound(id)
	}
	if c.Status == model.CampaignSending {
		return appErrors.NewAlreadySending()
	}
	c.Status = model.CampaignSending
	c.TotalRecipients = total
	c.SentCount = 0
	c.FailedCount = 0
	c.StartedAt = &startedAt
	c.CompletedAt = nil
	c.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryCampaignRepository) Finish(_ context.Context, userID, id, status string, sent, failed int, finishedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.find(userID, id)
	if c == nil {
		return nil
	}
	c.Status = status
	c.SentCount = sent
	c.FailedCount = failed
	c.CompletedAt = &finishedAt
	c.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryCampaignRepository) GetCampaignStats(_ context.Context, userID, campaignID string) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := map[string]int{"total": 0, model.MessageSent: 0, model.MessageFailed: 0}
	for _, m := range r.s.messages {
		if m.UserID == userID && m.CampaignID != nil && *m.CampaignID == campaignID {
			stats[m.Status]++
			stats["total"]++
		}
	}
	return stats, nil
}

// ====================== Outbound messages ======================

type MemoryOutboundMessageRepository struct{ s *MemoryStore }

func (r *MemoryOutboundMessageRepository) Create(_ context.Context, msg *model.OutboundMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	cp := *msg
	r.s.messages = append(r.s.messages, &cp)
	return nil
}

func (r *MemoryOutboundMessageRepository) ListByCampaign(_ context.Context, userID, campaignID string, limit, offset int) ([]model.OutboundMessage, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.OutboundMessage{}
	for i := len(r.s.messages) - 1; i >= 0; i-- {
		m := r.s.messages[i]
		if m.UserID == userID && m.CampaignID != nil && *m.CampaignID == campaignID {
			out = append(out, *m)
		}
	}
	return page(out, limit, offset), len(out), nil
}

// All returns every recorded message in insertion order.
func (r *MemoryOutboundMessageRepository) All() []model.OutboundMessage {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.OutboundMessage, 0, len(r.s.messages))
	for _, m := range r.s.messages {
		out = append(out, *m)
	}
	return out
}

// ====================== Media ======================

type MemoryMediaRepository struct{ s *MemoryStore }

func (r *MemoryMediaRepository) List(_ context.Context, userID string) ([]model.Media, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Media{}
	for i := len(r.s.media) - 1; i >= 0; i-- {
		if m := r.s.media[i]; m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *MemoryMediaRepository) GetByID(_ context.Context, userID, id string) (*model.Media, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.media {
		if m.UserID == userID && m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, appErrors.NewMediaNotFound(id)
}

func (r *MemoryMediaRepository) Create(_ context.Context, m *model.Media) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.CreatedAt = time.Now()
	cp := *m
	r.s.media = append(r.s.media, &cp)
	return nil
}

func (r *MemoryMediaRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, m := range r.s.media {
		if m.UserID == userID && m.ID == id {
			r.s.media = append(r.s.media[:i], r.s.media[i+1:]...)
			return nil
		}
	}
	return appErrors.NewMediaNotFound(id)
}

var (
	_ ContactRepositoryInterface         = (*MemoryContactRepository)(nil)
	_ TemplateRepositoryInterface        = (*MemoryTemplateRepository)(nil)
	_ CampaignRepositoryInterface        = (*MemoryCampaignRepository)(nil)
	_ OutboundMessageRepositoryInterface = (*MemoryOutboundMessageRepository)(nil)
	_ MediaRepositoryInterface           = (*MemoryMediaRepository)(nil)
)
