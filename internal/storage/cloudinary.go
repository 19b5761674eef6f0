// Package storage uploads user avatars to Cloudinary and returns a durable
// reference (public id + delivery URL).
package storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/madac4/doCreate-server/internal/config"
	"github.com/madac4/doCreate-server/internal/domain"
)

// AvatarStore хранит изображения профиля. Интерфейс позволяет подменить
// облако заглушкой в тестах.
type AvatarStore interface {
	// Upload загружает изображение (data URI или URL) и возвращает ссылку
	Upload(ctx context.Context, image string) (domain.Avatar, error)

	// Destroy удаляет ранее загруженное изображение
	Destroy(ctx context.Context, publicID string) error
}

// CloudinaryStore реализует AvatarStore поверх Cloudinary
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore создает хранилище аватаров из конфигурации
func NewCloudinaryStore(cfg config.CloudinaryConfig) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}

	return &CloudinaryStore{cld: cld, folder: cfg.Folder}, nil
}

// Upload загружает изображение с ресайзом до фиксированной ширины 150px
func (s *CloudinaryStore) Upload(ctx context.Context, image string) (domain.Avatar, error) {
	res, err := s.cld.Upload.Upload(ctx, image, uploader.UploadParams{
		Folder:         s.folder,
		Transformation: "c_scale,w_150",
	})
	if err != nil {
		return domain.Avatar{}, fmt.Errorf("failed to upload avatar: %w", err)
	}

	return domain.Avatar{
		PublicID: res.PublicID,
		URL:      res.SecureURL,
	}, nil
}

// Destroy удаляет ранее загруженное изображение
func (s *CloudinaryStore) Destroy(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to destroy avatar %s: %w", publicID, err)
	}

	return nil
}
