package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/model"
)

var mediaCols = []string{"id", "user_id", "file_name", "content_type", "size_bytes", "storage_key", "url", "created_at"}

func TestMediaRepository_CreateAndGet(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := &MediaRepository{DB: db}
	m := &model.Media{ID: "m1", UserID: "u1", FileName: "a.png", ContentType: "image/png", SizeBytes: 3, StorageKey: "u1/m1/a.png", URL: "https://cdn/u1/m1/a.png"}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO media`)).
		WithArgs("m1", "u1", "a.png", "image/png", int64(3), "u1/m1/a.png", "https://cdn/u1/m1/a.png", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), m))
	assert.False(t, m.CreatedAt.IsZero())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM media WHERE user_id=$1 AND id=$2`)).
		WithArgs("u1", "m1").
		WillReturnRows(sqlmock.NewRows(mediaCols).
			AddRow("m1", "u1", "a.png", "image/png", int64(3), "u1/m1/a.png", "https://cdn/u1/m1/a.png", m.CreatedAt))

	got, err := repo.GetByID(context.Background(), "u1", "m1")
	require.NoError(t, err)
	assert.Equal(t, "u1/m1/a.png", got.StorageKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaRepository_GetByIDNotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := &MediaRepository{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM media WHERE user_id=$1 AND id=$2`)).
		WithArgs("u2", "m1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "u2", "m1")
	assert.True(t, appErrors.IsNotFound(err))
}

func TestMediaRepository_DeleteNotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := &MediaRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM media WHERE user_id=$1 AND id=$2`)).
		WithArgs("u1", "m1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.True(t, appErrors.IsNotFound(repo.Delete(context.Background(), "u1", "m1")))
}
