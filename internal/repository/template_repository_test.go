package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/model"
)

var templateCols = []string{"id", "user_id", "name", "content", "variables", "media_url", "created_at", "updated_at"}

func TestTemplateRepository_List(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := &TemplateRepository{DB: db}
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM templates WHERE user_id=$1 ORDER BY created_at DESC`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(templateCols).
			AddRow("t2", "u1", "Promo", "Hi {{name}}", "{name}", "", now, now).
			AddRow("t1", "u1", "Plain", "Hello", "{}", "https://cdn/x.png", now, now))

	list, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"name"}, list[0].Variables)
	assert.Equal(t, []string{}, list[1].Variables)
	assert.Equal(t, "https://cdn/x.png", list[1].MediaURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_UpdateContentAndVariables(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := &TemplateRepository{DB: db}
	now := time.Now()
	content := "Bye {{first_name}}"
	vars := []string{"first_name"}

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE templates SET content=$1, variables=$2, updated_at=NOW() WHERE user_id=$3 AND id=$4 RETURNING`)).
		WithArgs(content, `{"first_name"}`, "u1", "t1").
		WillReturnRows(sqlmock.NewRows(templateCols).
			AddRow("t1", "u1", "Welcome", content, "{first_name}", "", now, now))

	tpl, err := repo.Update(context.Background(), "u1", "t1", model.TemplatePatch{Content: &content, Variables: &vars})
	require.NoError(t, err)
	assert.Equal(t, content, tpl.Content)
	assert.Equal(t, vars, tpl.Variables)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_EmptyPatchReadsCurrentRow(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := &TemplateRepository{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM templates WHERE user_id=$1 AND id=$2`)).
		WithArgs("u1", "t9").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "u1", "t9", model.TemplatePatch{})
	assert.True(t, appErrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_DeleteNotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := &TemplateRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM templates WHERE user_id=$1 AND id=$2`)).
		WithArgs("u1", "t1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.True(t, appErrors.IsNotFound(repo.Delete(context.Background(), "u1", "t1")))
}
