package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageStorage реализует интерфейс ports.ImageStorage с использованием GORM
type ImageStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewImageStorage(db *gorm.DB, logger *slog.Logger) *ImageStorage {
	return &ImageStorage{db: db, logger: logger}
}

// SaveImage сохраняет метаданные изображения в базе данных
func (s *ImageStorage) SaveImage(ctx context.Context, image *domain.Image) error {
	start := time.Now()

	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(image).Error; err != nil {
		s.logger.Error("failed to save image", "url", image.URL, "error", err)
		return fmt.Errorf("save image: %w", err)
	}

	s.logger.Info("image saved successfully",
		"id", image.ID,
		"key", image.ImageKey,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetImageByID получает изображение вместе с владельцем
func (s *ImageStorage) GetImageByID(ctx context.Context, id uuid.UUID) (*domain.Image, error) {
	var image domain.Image
	err := s.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("image not found by id", "id", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get image by id", "id", id, "error", err)
		return nil, fmt.Errorf("get image by id: %w", err)
	}
	return &image, nil
}

// ListByUser возвращает последние изображения пользователя
func (s *ImageStorage) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Image, error) {
	var images []domain.Image
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("list images by user: %w", err)
	}
	return images, nil
}
