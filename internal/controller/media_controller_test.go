package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/wabulk-backend/internal/controller"
	"github.com/unclebandit/wabulk-backend/internal/model"
	"github.com/unclebandit/wabulk-backend/internal/repository"
	"github.com/unclebandit/wabulk-backend/internal/service"
)

type memObjects map[string][]byte

func (m memObjects) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	b, err := io.ReadAll(body)
	m[key] = b
	return "https://cdn.example.com/" + key, err
}

func (m memObjects) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func mediaRouter(objects memObjects, maxBytes int64) http.Handler {
	ctrl := &controller.MediaController{MediaService: &service.MediaService{
		Repo:     repository.NewMemoryStore().Media(),
		Store:    objects,
		MaxBytes: maxBytes,
	}}
	r := chi.NewRouter()
	r.Use(asUser(testUser))
	r.Get("/media", ctrl.ListMedia)
	r.Post("/media", ctrl.UploadMedia)
	r.Delete("/media/{id}", ctrl.DeleteMedia)
	return r
}

func multipartUpload(t *testing.T, field, name, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadMediaHandler(t *testing.T) {
	objects := memObjects{}
	h := mediaRouter(objects, 0)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartUpload(t, "file", "banner.png", "image/png", []byte("PNG")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var m model.Media
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &m))
	assert.Equal(t, "banner.png", m.FileName)
	assert.Equal(t, "image/png", m.ContentType)
	assert.Equal(t, int64(3), m.SizeBytes)
	assert.Contains(t, m.URL, "/banner.png")
	assert.Len(t, objects, 1)

	w = do(t, h, http.MethodGet, "/media", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.Media
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	assert.Len(t, list, 1)

	w = do(t, h, http.MethodDelete, "/media/"+m.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, objects)
}

func TestUploadMediaRejects(t *testing.T) {
	h := mediaRouter(memObjects{}, 4)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartUpload(t, "attachment", "a.png", "image/png", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, multipartUpload(t, "file", "a.png", "image/png", []byte("way too big")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decode(t, w).Error.Code)
}
