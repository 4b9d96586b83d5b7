package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/wabulk-backend/internal/auth"
	"github.com/unclebandit/wabulk-backend/internal/httputil"
	"github.com/unclebandit/wabulk-backend/internal/service"
)

// multipart overhead allowed on top of the file size limit
const formOverhead = 1 << 20

type MediaController struct {
	MediaService *service.MediaService
}

func (c *MediaController) maxBytes() int64 {
	if c.MediaService.MaxBytes > 0 {
		return c.MediaService.MaxBytes
	}
	return service.DefaultMaxUploadBytes
}

func (c *MediaController) ListMedia(w http.ResponseWriter, r *http.Request) {
	media, err := c.MediaService.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.OK(w, media)
}

// UploadMedia accepts a multipart form with a single "file" part.
func (c *MediaController) UploadMedia(w http.ResponseWriter, r *http.Request) {
	limit := c.maxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.BadRequest(w, fmt.Sprintf("file exceeds %d bytes", limit))
			return
		}
		httputil.BadRequest(w, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	media, err := c.MediaService.Upload(r.Context(), auth.UserID(r.Context()), service.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, media)
}

func (c *MediaController) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := c.MediaService.Delete(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}
