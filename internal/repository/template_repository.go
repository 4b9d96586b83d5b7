package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/model"
)

type TemplateRepositoryInterface interface {
	List(ctx context.Context, userID string) ([]model.Template, error)
	GetByID(ctx context.Context, userID, id string) (*model.Template, error)
	Create(ctx context.Context, t *model.Template) error
	Update(ctx context.Context, userID, id string, p model.TemplatePatch) (*model.Template, error)
	Delete(ctx context.Context, userID, id string) error
}

type TemplateRepository struct {
	DB *sql.DB
}

const templateColumns = `id, user_id, name, content, variables, media_url, created_at, updated_at`

func scanTemplate(row scanner) (*model.Template, error) {
	var t model.Template
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Content, pq.Array(&t.Variables), &t.MediaURL, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if t.Variables == nil {
		t.Variables = []string{}
	}
	return &t, nil
}

func (r *TemplateRepository) List(ctx context.Context, userID string) ([]model.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) GetByID(ctx context.Context, userID, id string) (*model.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE user_id=$1 AND id=$2`
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewTemplateNotFound(id)
		}
		return nil, err
	}
	return t, nil
}

func (r *TemplateRepository) Create(ctx context.Context, t *model.Template) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Variables == nil {
		t.Variables = []string{}
	}
	query := `
        INSERT INTO templates (id, user_id, name, content, variables, media_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.DB.ExecContext(ctx, query, t.ID, t.UserID, t.Name, t.Content, pq.Array(t.Variables), t.MediaURL, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *TemplateRepository) Update(ctx context.Context, userID, id string, p model.TemplatePatch) (*model.Template, error) {
	var b patchBuilder
	if p.Name != nil {
		b.set("name", *p.Name)
	}
	if p.Content != nil {
		b.set("content", *p.Content)
	}
	if p.Variables != nil {
		b.set("variables", pq.Array(*p.Variables))
	}
	if p.MediaURL != nil {
		b.set("media_url", *p.MediaURL)
	}
	if b.empty() {
		return r.GetByID(ctx, userID, id)
	}

	query, args := b.build("templates", userID, id, templateColumns, true)
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewTemplateNotFound(id)
		}
		return nil, err
	}
	return t, nil
}

func (r *TemplateRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM templates WHERE user_id=$1 AND id=$2`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewTemplateNotFound(id)
	}
	return nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
