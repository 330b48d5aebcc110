package usecase

import (
	"context"
	"errors"
	"io"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/google/uuid"
)

// ErrImageFetch — изображение по URL не удалось скачать; текст причины показывается в форме
var ErrImageFetch = errors.New("could not download the image")

// ImageInput — проверенные данные формы добавления изображения
type ImageInput struct {
	Title       string
	URL         string
	Description string
}

// ImageUseCase определяет бизнес-логику галереи изображений
type ImageUseCase interface {
	// CreateFromURL скачивает изображение, кладёт его в объектное хранилище
	// и сохраняет запись от имени пользователя.
	CreateFromURL(ctx context.Context, userID uuid.UUID, in ImageInput) (*domain.Image, error)

	GetImage(ctx context.Context, id uuid.UUID) (*domain.Image, error)

	// UserImages возвращает последние изображения пользователя для дашборда
	UserImages(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Image, error)

	// OpenMedia открывает объект хранилища (фото профиля или изображение) для отдачи клиенту
	OpenMedia(ctx context.Context, key string) (io.ReadCloser, string, error)
}
