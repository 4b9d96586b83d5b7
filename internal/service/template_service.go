// internal/service/template_service.go
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/model"
	"github.com/unclebandit/wabulk-backend/internal/repository"
)

type TemplateService struct {
	Repo     repository.TemplateRepositoryInterface
	Renderer *Renderer
}

type TemplateInput struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	MediaURL string `json:"media_url"`
}

// Preview is a template rendered against sample values.
type Preview struct {
	TemplateID string   `json:"template_id"`
	Rendered   string   `json:"rendered"`
	Variables  []string `json:"variables"`
	Missing    []string `json:"missing"`
}

func (s *TemplateService) List(ctx context.Context, userID string) ([]model.Template, error) {
	return s.Repo.List(ctx, userID)
}

func (s *TemplateService) Get(ctx context.Context, userID, id string) (*model.Template, error) {
	if err := checkID("template", id); err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, userID, id)
}

func (s *TemplateService) Create(ctx context.Context, userID string, in TemplateInput) (*model.Template, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, appErrors.NewValidation("name", "is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, appErrors.NewValidation("content", "is required")
	}

	t := &model.Template{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Content:   in.Content,
		Variables: Placeholders(in.Content),
		MediaURL:  strings.TrimSpace(in.MediaURL),
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update applies p; variables are recomputed whenever content changes.
func (s *TemplateService) Update(ctx context.Context, userID, id string, p model.TemplatePatch) (*model.Template, error) {
	if err := checkID("template", id); err != nil {
		return nil, err
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, appErrors.NewValidation("name", "cannot be empty")
	}
	p.Variables = nil
	if p.Content != nil {
		if strings.TrimSpace(*p.Content) == "" {
			return nil, appErrors.NewValidation("content", "cannot be empty")
		}
		vars := Placeholders(*p.Content)
		p.Variables = &vars
	}
	return s.Repo.Update(ctx, userID, id, p)
}

func (s *TemplateService) Delete(ctx context.Context, userID, id string) error {
	if err := checkID("template", id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, userID, id)
}

// Preview renders the template with sample values. Placeholders with no
// sample and no built-in value stay in the text and are listed in Missing.
func (s *TemplateService) Preview(ctx context.Context, userID, id string, sample map[string]string) (*Preview, error) {
	if err := checkID("template", id); err != nil {
		return nil, err
	}
	t, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	r := s.Renderer
	if r == nil {
		r = NewRenderer(nil, "")
	}
	rendered := r.Render(t.Content, sample)

	return &Preview{
		TemplateID: t.ID,
		Rendered:   rendered,
		Variables:  Placeholders(t.Content),
		Missing:    Placeholders(rendered),
	}, nil
}
