package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/logger"
	"github.com/unclebandit/wabulk-backend/internal/model"
	"github.com/unclebandit/wabulk-backend/internal/repository"
	"github.com/unclebandit/wabulk-backend/internal/storage"
)

const DefaultMaxUploadBytes = 16 << 20

// ErrStorageDisabled is returned by Upload when no object store is configured.
var ErrStorageDisabled = errors.New("media storage is not configured")

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type MediaService struct {
	Repo     repository.MediaRepositoryInterface
	Store    storage.ObjectStore
	MaxBytes int64
}

// Upload describes one incoming file.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (s *MediaService) List(ctx context.Context, userID string) ([]model.Media, error) {
	return s.Repo.List(ctx, userID)
}

// Upload stores the file under <user>/<id>/<name> and records its metadata.
// The object is removed again if the metadata row cannot be written.
func (s *MediaService) Upload(ctx context.Context, userID string, up Upload) (*model.Media, error) {
	if s.Store == nil {
		return nil, ErrStorageDisabled
	}
	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	if up.Size <= 0 {
		return nil, appErrors.NewValidation("file", "is empty")
	}
	if up.Size > limit {
		return nil, appErrors.NewValidation("file", fmt.Sprintf("exceeds %d bytes", limit))
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	m := &model.Media{
		ID:          uuid.NewString(),
		UserID:      userID,
		FileName:    sanitizeFileName(up.FileName),
		ContentType: contentType,
		SizeBytes:   up.Size,
	}
	m.StorageKey = path.Join(userID, m.ID, m.FileName)

	url, err := s.Store.Put(ctx, m.StorageKey, contentType, up.Body, up.Size)
	if err != nil {
		return nil, err
	}
	m.URL = url

	if err := s.Repo.Create(ctx, m); err != nil {
		if derr := s.Store.Delete(ctx, m.StorageKey); derr != nil {
			logger.Warn("orphaned media object", "key", m.StorageKey, "error", derr.Error())
		}
		return nil, err
	}
	return m, nil
}

// Delete removes the stored object, then the metadata row.
func (s *MediaService) Delete(ctx context.Context, userID, id string) error {
	if err := checkID("media", id); err != nil {
		return err
	}
	m, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if s.Store == nil {
		return ErrStorageDisabled
	}
	if err := s.Store.Delete(ctx, m.StorageKey); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, userID, id)
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "_")
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
