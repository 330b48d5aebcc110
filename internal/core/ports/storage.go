package ports

import (
	"context"
	"io"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/google/uuid"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей и профилей
type UserStorage interface {
	// CreateUserWithProfile создаёт пользователя и его профиль в одной транзакции
	CreateUserWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// EmailInUse проверяет, занят ли email другим пользователем (exceptID исключается)
	EmailInUse(ctx context.Context, email string, exceptID uuid.UUID) (bool, error)
	// UpdateUserAndProfile сохраняет поля пользователя и профиля в одной транзакции
	UpdateUserAndProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// PostFilter ограничивает выборку опубликованных постов
type PostFilter struct {
	TagID *uuid.UUID
	Sort  domain.PostSort
}

// PostStorage определяет методы для работы с постами и тегами
type PostStorage interface {
	ListPublished(ctx context.Context, filter PostFilter, limit, offset int) ([]domain.Post, error)
	CountPublished(ctx context.Context, tagID *uuid.UUID) (int64, error)
	// GetPublishedByDate ищет опубликованный пост по дате публикации и slug
	GetPublishedByDate(ctx context.Context, year, month, day int, slug string) (*domain.Post, error)
	GetPublishedByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	GetPostByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	// SimilarPosts возвращает опубликованные посты с хотя бы одним общим тегом,
	// упорядоченные по общему числу тегов кандидата и дате публикации
	SimilarPosts(ctx context.Context, post *domain.Post, limit int) ([]domain.Post, error)
	LatestPublished(ctx context.Context, limit int) ([]domain.Post, error)
	MostCommented(ctx context.Context, limit int) ([]domain.Post, error)
	// SlugTaken проверяет, занят ли slug другим постом в тот же день публикации
	SlugTaken(ctx context.Context, slug string, publish time.Time, exceptID uuid.UUID) (bool, error)
	// SavePost создаёт или обновляет пост и заменяет его набор тегов
	SavePost(ctx context.Context, post *domain.Post, tagNames []string) error
}

// CommentStorage определяет методы для работы с комментариями
type CommentStorage interface {
	SaveComment(ctx context.Context, comment *domain.Comment) error
	ActiveComments(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error)
}

// ImageStorage определяет методы для работы с изображениями
type ImageStorage interface {
	SaveImage(ctx context.Context, image *domain.Image) error
	GetImageByID(ctx context.Context, id uuid.UUID) (*domain.Image, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Image, error)
}

// SearchStorage — полнотекстовый поиск и выборки для ленты и карты сайта
type SearchStorage interface {
	SearchPublished(ctx context.Context, query string) ([]domain.Post, error)
	AllPublished(ctx context.Context) ([]domain.Post, error)
	LatestForFeed(ctx context.Context, limit int) ([]domain.Post, error)
}

// FileStorage определяет интерфейс для работы с файловым хранилищем (AWS S3, MinIO)
type FileStorage interface {
	// UploadFile загружает файл в хранилище под ключом key и возвращает его URL
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
	// GetFile возвращает содержимое объекта и его Content-Type
	GetFile(ctx context.Context, key string) (io.ReadCloser, string, error)
	DeleteFile(ctx context.Context, key string) error
}

// FetchedFile — результат скачивания внешнего файла
type FetchedFile struct {
	Data        []byte
	ContentType string
}

// ImageFetcher скачивает изображение по внешнему URL
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedFile, error)
}
