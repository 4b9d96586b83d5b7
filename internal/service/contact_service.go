package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/logger"
	"github.com/unclebandit/wabulk-backend/internal/model"
	"github.com/unclebandit/wabulk-backend/internal/repository"
)

type ContactService struct {
	Repo        repository.ContactRepositoryInterface
	CountryCode string
}

// ContactInput is the client payload for creating or importing a contact.
type ContactInput struct {
	Name         string            `json:"name"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email"`
	Tags         []string          `json:"tags"`
	CustomFields map[string]string `json:"custom_fields"`
}

// Import row outcomes.
const (
	ImportImported = "imported"
	ImportSkipped  = "skipped"
)

type ImportRow struct {
	Index     int    `json:"index"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	ContactID string `json:"contact_id,omitempty"`
}

type ImportResult struct {
	Imported int         `json:"imported"`
	Skipped  int         `json:"skipped"`
	Rows     []ImportRow `json:"rows"`
}

func (s *ContactService) List(ctx context.Context, userID, search, tag string, page, pageSize int) ([]model.Contact, map[string]int, error) {
	page, pageSize = normalizePage(page, pageSize)
	contacts, total, err := s.Repo.List(ctx, userID, model.ContactFilter{
		Search: strings.TrimSpace(search),
		Tag:    strings.TrimSpace(tag),
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, nil, err
	}
	return contacts, pagination(page, pageSize, total), nil
}

func (s *ContactService) Get(ctx context.Context, userID, id string) (*model.Contact, error) {
	if err := checkID("contact", id); err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, userID, id)
}

// build validates in and returns an unsaved contact with a normalized phone.
func (s *ContactService) build(userID string, in ContactInput) (*model.Contact, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, appErrors.NewValidation("name", "is required")
	}
	phone := NormalizePhone(in.Phone, s.CountryCode)
	if phone == "" {
		return nil, appErrors.NewValidation("phone", "is not a valid phone number")
	}
	return &model.Contact{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		Phone:        phone,
		Email:        strings.TrimSpace(in.Email),
		Tags:         cleanTags(in.Tags),
		CustomFields: in.CustomFields,
	}, nil
}

func (s *ContactService) Create(ctx context.Context, userID string, in ContactInput) (*model.Contact, error) {
	c, err := s.build(userID, in)
	if err != nil {
		return nil, err
	}
	existing, err := s.Repo.FindByPhone(ctx, userID, c.Phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, appErrors.NewValidation("phone", "a contact with this phone already exists")
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Import creates contacts row by row. Invalid rows and phones already present
// (in storage or earlier in the batch) are skipped with a reason.
func (s *ContactService) Import(ctx context.Context, userID string, rows []ContactInput) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, appErrors.NewValidation("contacts", "no contacts to import")
	}

	result := &ImportResult{Rows: make([]ImportRow, 0, len(rows))}
	seen := make(map[string]bool, len(rows))
	skip := func(row ImportRow, reason string) {
		row.Status = ImportSkipped
		row.Reason = reason
		result.Skipped++
		result.Rows = append(result.Rows, row)
	}

	for i, in := range rows {
		row := ImportRow{Index: i, Phone: in.Phone}

		c, err := s.build(userID, in)
		if err != nil {
			skip(row, err.Error())
			continue
		}
		row.Phone = c.Phone

		if seen[c.Phone] {
			skip(row, "duplicate phone in batch")
			continue
		}
		seen[c.Phone] = true

		existing, err := s.Repo.FindByPhone(ctx, userID, c.Phone)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			skip(row, "contact already exists")
			continue
		}

		if err := s.Repo.Create(ctx, c); err != nil {
			return nil, err
		}
		row.Status = ImportImported
		row.ContactID = c.ID
		result.Imported++
		result.Rows = append(result.Rows, row)
	}

	logger.Info("contacts imported", "user_id", userID, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

func (s *ContactService) Update(ctx context.Context, userID, id string, p model.ContactPatch) (*model.Contact, error) {
	if err := checkID("contact", id); err != nil {
		return nil, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, appErrors.NewValidation("name", "cannot be empty")
		}
		p.Name = &name
	}
	if p.Phone != nil {
		phone := NormalizePhone(*p.Phone, s.CountryCode)
		if phone == "" {
			return nil, appErrors.NewValidation("phone", "is not a valid phone number")
		}
		p.Phone = &phone
	}
	if p.Tags != nil {
		tags := cleanTags(*p.Tags)
		p.Tags = &tags
	}
	return s.Repo.Update(ctx, userID, id, p)
}

func (s *ContactService) Delete(ctx context.Context, userID, id string) error {
	if err := checkID("contact", id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, userID, id)
}

// cleanTags trims, drops empties and de-duplicates, keeping order.
func cleanTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
