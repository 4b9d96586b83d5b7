package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/model"
)

// ContactRepositoryInterface defines methods used by services
type ContactRepositoryInterface interface {
	List(ctx context.Context, userID string, f model.ContactFilter) ([]model.Contact, int, error)
	GetByID(ctx context.Context, userID, id string) (*model.Contact, error)
	GetByIDs(ctx context.Context, userID string, ids []string) ([]model.Contact, error)
	ListByTags(ctx context.Context, userID string, tags []string) ([]model.Contact, error)
	FindByPhone(ctx context.Context, userID, phone string) (*model.Contact, error)
	Create(ctx context.Context, c *model.Contact) error
	Update(ctx context.Context, userID, id string, p model.ContactPatch) (*model.Contact, error)
	Delete(ctx context.Context, userID, id string) error
}

// ContactRepository is the PostgreSQL implementation
type ContactRepository struct {
	DB *sql.DB
}

const contactColumns = `id, user_id, name, phone, email, tags, custom_fields, created_at, updated_at`

func scanContact(row scanner) (*model.Contact, error) {
	var (
		c      model.Contact
		fields []byte
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Email, pq.Array(&c.Tags), &fields, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &c.CustomFields); err != nil {
			return nil, fmt.Errorf("decode custom_fields: %w", err)
		}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c, nil
}

func scanContacts(rows *sql.Rows) ([]model.Contact, error) {
	defer rows.Close()
	contacts := []model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

func encodeFields(fields map[string]string) ([]byte, error) {
	if fields == nil {
		fields = map[string]string{}
	}
	return json.Marshal(fields)
}

// List returns a page of contacts plus the total matching count.
func (r *ContactRepository) List(ctx context.Context, userID string, f model.ContactFilter) ([]model.Contact, int, error) {
	where := ` WHERE user_id=$1`
	args := []interface{}{userID}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(" AND (name ILIKE $%d OR phone ILIKE $%d)", len(args), len(args))
	}
	if f.Tag != "" {
		args = append(args, f.Tag)
		where += fmt.Sprintf(" AND $%d = ANY(tags)", len(args))
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + contactColumns + ` FROM contacts` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.DB.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	contacts, err := scanContacts(rows)
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

// GetByID fetches a contact owned by userID
func (r *ContactRepository) GetByID(ctx context.Context, userID, id string) (*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id=$1 AND id=$2`
	c, err := scanContact(r.DB.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewContactNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

// GetByIDs fetches the given contacts; unknown ids are silently skipped.
func (r *ContactRepository) GetByIDs(ctx context.Context, userID string, ids []string) ([]model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id=$1 AND id = ANY($2) ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, userID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return scanContacts(rows)
}

// ListByTags returns contacts carrying any of tags, or every contact when tags is empty.
func (r *ContactRepository) ListByTags(ctx context.Context, userID string, tags []string) ([]model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id=$1`
	args := []interface{}{userID}
	if len(tags) > 0 {
		query += ` AND tags && $2`
		args = append(args, pq.Array(tags))
	}
	query += ` ORDER BY created_at`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanContacts(rows)
}

// FindByPhone returns nil, nil when no contact has that phone.
func (r *ContactRepository) FindByPhone(ctx context.Context, userID, phone string) (*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id=$1 AND phone=$2 LIMIT 1`
	c, err := scanContact(r.DB.QueryRowContext(ctx, query, userID, phone))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *ContactRepository) Create(ctx context.Context, c *model.Contact) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Tags == nil {
		c.Tags = []string{}
	}
	fields, err := encodeFields(c.CustomFields)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO contacts (id, user_id, name, phone, email, tags, custom_fields, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err = r.DB.ExecContext(ctx, query, c.ID, c.UserID, c.Name, c.Phone, c.Email, pq.Array(c.Tags), fields, c.CreatedAt, c.UpdatedAt)
	return err
}

// Update applies the non-nil fields of p and returns the updated contact.
func (r *ContactRepository) Update(ctx context.Context, userID, id string, p model.ContactPatch) (*model.Contact, error) {
	var b patchBuilder
	if p.Name != nil {
		b.set("name", *p.Name)
	}
	if p.Phone != nil {
		b.set("phone", *p.Phone)
	}
	if p.Email != nil {
		b.set("email", *p.Email)
	}
	if p.Tags != nil {
		b.set("tags", pq.Array(*p.Tags))
	}
	if p.CustomFields != nil {
		fields, err := encodeFields(*p.CustomFields)
		if err != nil {
			return nil, err
		}
		b.set("custom_fields", fields)
	}
	if b.empty() {
		return r.GetByID(ctx, userID, id)
	}

	query, args := b.build("contacts", userID, id, contactColumns, true)
	c, err := scanContact(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewContactNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *ContactRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM contacts WHERE user_id=$1 AND id=$2`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewContactNotFound(id)
	}
	return nil
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
