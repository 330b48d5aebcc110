package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/jmoiron/sqlx"
)

const postColumns = `p.id, p.title, p.slug, p.author_id, p.body, p.publish, p.created_at, p.updated_at, p.status`

// SearchStorage выполняет полнотекстовый поиск и выборки для RSS и sitemap через sqlx
type SearchStorage struct {
	db           *sqlx.DB
	searchConfig string
	logger       *slog.Logger
}

// NewSearchStorage создаёт хранилище поиска. searchConfig — имя конфигурации
// текстового поиска PostgreSQL (english, russian, simple ...).
func NewSearchStorage(db *sqlx.DB, searchConfig string, logger *slog.Logger) *SearchStorage {
	if searchConfig == "" {
		searchConfig = "english"
	}
	return &SearchStorage{db: db, searchConfig: searchConfig, logger: logger}
}

// SearchPublished ищет опубликованные посты по заголовку и телу.
// Результаты упорядочены по релевантности; пустой запрос ничего не возвращает.
func (s *SearchStorage) SearchPublished(ctx context.Context, query string) ([]domain.Post, error) {
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	q := `
	SELECT ` + postColumns + `,
	       ts_rank(to_tsvector($1::regconfig, COALESCE(p.title, '') || ' ' || COALESCE(p.body, '')), plainto_tsquery($1::regconfig, $2)) AS rank
	FROM posts p
	WHERE p.status = $3
	  AND to_tsvector($1::regconfig, COALESCE(p.title, '') || ' ' || COALESCE(p.body, '')) @@ plainto_tsquery($1::regconfig, $2)
	ORDER BY rank DESC, p.publish DESC
	`

	var posts []domain.Post
	if err := s.db.SelectContext(ctx, &posts, q, s.searchConfig, query, domain.StatusPublished); err != nil {
		s.logger.Error("failed to search posts", "query", query, "error", err)
		return nil, fmt.Errorf("search posts: %w", err)
	}

	s.logger.Info("posts search completed",
		"query", query,
		"found", len(posts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return posts, nil
}

// AllPublished возвращает все опубликованные посты, новые первыми
func (s *SearchStorage) AllPublished(ctx context.Context) ([]domain.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts p WHERE p.status = $1 ORDER BY p.publish DESC`

	var posts []domain.Post
	if err := s.db.SelectContext(ctx, &posts, q, domain.StatusPublished); err != nil {
		s.logger.Error("failed to list all published posts", "error", err)
		return nil, fmt.Errorf("list all published posts: %w", err)
	}
	return posts, nil
}

// LatestForFeed возвращает limit последних опубликованных постов
func (s *SearchStorage) LatestForFeed(ctx context.Context, limit int) ([]domain.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts p WHERE p.status = $1 ORDER BY p.publish DESC LIMIT $2`

	var posts []domain.Post
	if err := s.db.SelectContext(ctx, &posts, q, domain.StatusPublished, limit); err != nil {
		s.logger.Error("failed to list feed posts", "limit", limit, "error", err)
		return nil, fmt.Errorf("list feed posts: %w", err)
	}
	return posts, nil
}
