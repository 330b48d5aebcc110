package usecase

import (
	"context"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/pagination"
	"github.com/google/uuid"
)

const (
	SimilarPostsLimit = 4
	SidebarPostsLimit = 5
)

// PostListInput — параметры списка постов из URL и строки запроса
type PostListInput struct {
	TagSlug string
	Page    string
	Sort    string
}

// PostList — одна страница списка опубликованных постов
type PostList struct {
	Posts []domain.Post
	Page  pagination.Page
	Tag   *domain.Tag
	Sort  domain.PostSort
}

// PostDetail — пост с активными комментариями и похожими постами
type PostDetail struct {
	Post         *domain.Post
	Comments     []domain.Comment
	SimilarPosts []domain.Post
}

// CommentInput — проверенные данные формы комментария
type CommentInput struct {
	Name   string
	Email  string
	Body   string
	UserID *uuid.UUID
}

// ShareInput — проверенные данные формы «поделиться по email»
type ShareInput struct {
	Name     string
	Email    string
	To       string
	Comments string
}

// Sidebar — данные виджетов боковой панели
type Sidebar struct {
	TotalPosts    int64         `json:"total_posts"`
	LatestPosts   []domain.Post `json:"latest_posts"`
	MostCommented []domain.Post `json:"most_commented"`
}

// PostInput — проверенные данные формы поста
type PostInput struct {
	Title   string
	Slug    string
	Body    string
	Publish time.Time
	Status  domain.PostStatus
	Tags    []string
}

// BlogUseCase определяет бизнес-логику блога
type BlogUseCase interface {
	// ListPosts возвращает страницу опубликованных постов, при TagSlug — только с этим тегом.
	// Неизвестный тег — domain.ErrNotFound.
	ListPosts(ctx context.Context, in PostListInput) (*PostList, error)

	// PostDetail ищет опубликованный пост по дате публикации и slug
	PostDetail(ctx context.Context, year, month, day int, slug string) (*PostDetail, error)

	GetPublishedPost(ctx context.Context, id uuid.UUID) (*domain.Post, error)

	// AddComment добавляет активный комментарий к опубликованному посту
	AddComment(ctx context.Context, postID uuid.UUID, in CommentInput) (*domain.Comment, error)

	// SharePost отправляет рекомендацию поста на адрес in.To
	SharePost(ctx context.Context, postID uuid.UUID, in ShareInput, siteURL string) (*domain.Post, error)

	// Search выполняет полнотекстовый поиск по опубликованным постам
	Search(ctx context.Context, query string) ([]domain.Post, error)

	Sidebar(ctx context.Context) (*Sidebar, error)

	// Feed рендерит RSS с последними постами
	Feed(ctx context.Context, siteURL string) (string, error)

	// Sitemap рендерит карту сайта по всем опубликованным постам
	Sitemap(ctx context.Context, siteURL string) ([]byte, error)

	// PostForEdit возвращает пост для редактирования его автором, иначе domain.ErrForbidden
	PostForEdit(ctx context.Context, postID, editorID uuid.UUID) (*domain.Post, error)

	// SavePost создаёт (postID == nil) или обновляет пост.
	// Slug, занятый в ту же дату публикации, — domain.ErrSlugTaken.
	SavePost(ctx context.Context, editorID uuid.UUID, postID *uuid.UUID, in PostInput) (*domain.Post, error)
}
