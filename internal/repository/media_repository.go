package repository

import (
	"context"
	"database/sql"
	"time"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/model"
)

type MediaRepositoryInterface interface {
	List(ctx context.Context, userID string) ([]model.Media, error)
	GetByID(ctx context.Context, userID, id string) (*model.Media, error)
	Create(ctx context.Context, m *model.Media) error
	Delete(ctx context.Context, userID, id string) error
}

type MediaRepository struct {
	DB *sql.DB
}

const mediaColumns = `id, user_id, file_name, content_type, size_bytes, storage_key, url, created_at`

func scanMedia(row scanner) (*model.Media, error) {
	var m model.Media
	if err := row.Scan(&m.ID, &m.UserID, &m.FileName, &m.ContentType, &m.SizeBytes, &m.StorageKey, &m.URL, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MediaRepository) List(ctx context.Context, userID string) ([]model.Media, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

func (r *MediaRepository) GetByID(ctx context.Context, userID, id string) (*model.Media, error) {
	m, err := scanMedia(r.DB.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE user_id=$1 AND id=$2`, userID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewMediaNotFound(id)
		}
		return nil, err
	}
	return m, nil
}

func (r *MediaRepository) Create(ctx context.Context, m *model.Media) error {
	m.CreatedAt = time.Now()
	query := `
        INSERT INTO media (id, user_id, file_name, content_type, size_bytes, storage_key, url, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.DB.ExecContext(ctx, query, m.ID, m.UserID, m.FileName, m.ContentType, m.SizeBytes, m.StorageKey, m.URL, m.CreatedAt)
	return err
}

func (r *MediaRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM media WHERE user_id=$1 AND id=$2`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewMediaNotFound(id)
	}
	return nil
}

var _ MediaRepositoryInterface = (*MediaRepository)(nil)
