package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/forms"
	"github.com/GoArmGo/BlogApp/internal/slug"
	"github.com/google/uuid"
)

// imageUseCase implements ImageUseCase
type imageUseCase struct {
	images  ports.ImageStorage
	fetcher ports.ImageFetcher
	files   ports.FileStorage
	logger  *slog.Logger
	now     func() time.Time
}

// NewImageUseCase создает новый экземпляр ImageUseCase
func NewImageUseCase(
	images ports.ImageStorage,
	fetcher ports.ImageFetcher,
	files ports.FileStorage,
	logger *slog.Logger,
) ImageUseCase {
	return &imageUseCase{
		images:  images,
		fetcher: fetcher,
		files:   files,
		logger:  logger,
		now:     time.Now,
	}
}

func (uc *imageUseCase) CreateFromURL(ctx context.Context, userID uuid.UUID, in ImageInput) (*domain.Image, error) {
	start := time.Now()

	ext := forms.ImageExtension(in.URL)
	if !forms.HasImageExtension(in.URL) {
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrImageFetch, ext)
	}

	file, err := uc.fetcher.Fetch(ctx, in.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}

	imageSlug := slug.Make(in.Title)
	key := imageKey(uc.now(), imageSlug, ext)
	if _, err := uc.files.UploadFile(ctx, key, bytes.NewReader(file.Data), file.ContentType); err != nil {
		return nil, fmt.Errorf("usecase: upload image: %w", err)
	}

	image := &domain.Image{
		UserID:      userID,
		Title:       in.Title,
		Slug:        imageSlug,
		URL:         in.URL,
		ImageKey:    key,
		Description: in.Description,
	}
	if err := uc.images.SaveImage(ctx, image); err != nil {
		if delErr := uc.files.DeleteFile(ctx, key); delErr != nil {
			uc.logger.Warn("failed to remove orphaned image object", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("usecase: save image: %w", err)
	}

	uc.logger.Info("image added",
		"image_id", image.ID,
		"user_id", userID,
		"key", key,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return image, nil
}

// imageKey строит ключ images/YYYY/MM/DD/<slug>_<суффикс>.<ext>
func imageKey(now time.Time, imageSlug, ext string) string {
	if imageSlug == "" {
		imageSlug = "image"
	}
	return path.Join("images", now.UTC().Format("2006/01/02"),
		fmt.Sprintf("%s_%s.%s", imageSlug, uuid.NewString()[:8], strings.ToLower(ext)))
}

func (uc *imageUseCase) GetImage(ctx context.Context, id uuid.UUID) (*domain.Image, error) {
	return uc.images.GetImageByID(ctx, id)
}

func (uc *imageUseCase) UserImages(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Image, error) {
	return uc.images.ListByUser(ctx, userID, limit)
}

func (uc *imageUseCase) OpenMedia(ctx context.Context, key string) (io.ReadCloser, string, error) {
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" || !(strings.HasPrefix(key, "images/") || strings.HasPrefix(key, "users/")) {
		return nil, "", domain.ErrNotFound
	}
	return uc.files.GetFile(ctx, key)
}
