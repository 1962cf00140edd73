package service

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/templui/betterme/internal/storage"
	"github.com/templui/betterme/internal/validation"
)

var ErrStorageDisabled = errors.New("picture uploads are not configured")

// FileService stores uploaded pictures. A nil storage disables uploads.
type FileService struct {
	storage storage.Storage
}

func NewFileService(storage storage.Storage) *FileService {
	return &FileService{storage: storage}
}

func (s *FileService) Enabled() bool {
	return s.storage != nil
}

// UploadPicture validates the image and stores it under the user's prefix.
// It returns the storage key.
func (s *FileService) UploadPicture(userID string, header *multipart.FileHeader) (string, error) {
	if s.storage == nil {
		return "", ErrStorageDisabled
	}

	contentType, err := validation.ValidateFile(header, validation.ImageConstraints)
	if err != nil {
		return "", err
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	key := fmt.Sprintf("pictures/%s/%s%s", userID, uuid.New().String(), strings.ToLower(filepath.Ext(header.Filename)))

	err = s.storage.Save(key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("failed to save picture: %w", err)
	}

	return key, nil
}

// IsStored reports whether picture is one of our storage keys rather than
// a provider URL.
func (s *FileService) IsStored(picture string) bool {
	return strings.HasPrefix(picture, "pictures/")
}

// URL resolves a stored picture key. Provider URLs pass through.
func (s *FileService) URL(picture string) string {
	if !s.IsStored(picture) || s.storage == nil {
		return picture
	}
	return s.storage.PublicURL(picture)
}

// Delete removes a stored picture; failures are logged since an orphaned
// object is harmless.
func (s *FileService) Delete(picture string) {
	if !s.IsStored(picture) || s.storage == nil {
		return
	}

	err := s.storage.Delete(picture)
	if err != nil {
		slog.Warn("failed to delete picture from storage", "error", err, "path", picture)
	}
}
