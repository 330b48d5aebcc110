package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/slug"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	tagCountColumn     = "(SELECT COUNT(*) FROM post_tags t WHERE t.post_id = posts.id) AS tag_count"
	commentCountColumn = "(SELECT COUNT(*) FROM comments c WHERE c.post_id = posts.id) AS comment_count"
	hasTagCondition    = "EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = posts.id AND pt.tag_id = ?)"
	hasAnyTagCondition = "EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = posts.id AND pt.tag_id IN ?)"
)

// postTag — строка связующей таблицы post_tags
type postTag struct {
	PostID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID  uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (postTag) TableName() string {
	return "post_tags"
}

// PostStorage реализует интерфейс ports.PostStorage с использованием GORM
type PostStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewPostStorage(db *gorm.DB, logger *slog.Logger) *PostStorage {
	return &PostStorage{db: db, logger: logger}
}

func published(db *gorm.DB) *gorm.DB {
	return db.Where("posts.status = ?", domain.StatusPublished)
}

func (s *PostStorage) ListPublished(ctx context.Context, filter ports.PostFilter, limit, offset int) ([]domain.Post, error) {
	start := time.Now()

	q := s.db.WithContext(ctx).
		Model(&domain.Post{}).
		Scopes(published).
		Preload("Author").
		Preload("Tags")
	if filter.TagID != nil {
		q = q.Where(hasTagCondition, *filter.TagID)
	}

	var posts []domain.Post
	err := q.Order(filter.Sort.OrderClause()).
		Order("posts.id").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		s.logger.Error("failed to list published posts", "sort", filter.Sort, "error", err)
		return nil, fmt.Errorf("list published posts: %w", err)
	}

	s.logger.Debug("published posts listed",
		"sort", filter.Sort,
		"count", len(posts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return posts, nil
}

func (s *PostStorage) CountPublished(ctx context.Context, tagID *uuid.UUID) (int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.Post{}).Scopes(published)
	if tagID != nil {
		q = q.Where(hasTagCondition, *tagID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count published posts: %w", err)
	}
	return n, nil
}

// GetPublishedByDate ищет опубликованный пост по slug и дате публикации (UTC).
// Несуществующая дата (например, 2024/2/30) даёт domain.ErrNotFound.
func (s *PostStorage) GetPublishedByDate(ctx context.Context, year, month, day int, postSlug string) (*domain.Post, error) {
	dayStart := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if dayStart.Year() != year || int(dayStart.Month()) != month || dayStart.Day() != day {
		return nil, domain.ErrNotFound
	}

	var post domain.Post
	err := s.db.WithContext(ctx).
		Scopes(published).
		Preload("Author").
		Preload("Tags").
		Where("posts.slug = ? AND posts.publish >= ? AND posts.publish < ?", postSlug, dayStart, dayStart.AddDate(0, 0, 1)).
		First(&post).Error
	return s.onePost(&post, err, "slug", postSlug)
}

func (s *PostStorage) GetPublishedByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var post domain.Post
	err := s.db.WithContext(ctx).
		Scopes(published).
		Preload("Author").
		Preload("Tags").
		Where("posts.id = ?", id).
		First(&post).Error
	return s.onePost(&post, err, "id", id)
}

// GetPostByID возвращает пост в любом статусе, используется при редактировании
func (s *PostStorage) GetPostByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var post domain.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Where("posts.id = ?", id).
		First(&post).Error
	return s.onePost(&post, err, "id", id)
}

func (s *PostStorage) onePost(post *domain.Post, err error, key string, value any) (*domain.Post, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug("post not found", key, value)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get post", key, value, "error", err)
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

func (s *PostStorage) GetTagBySlug(ctx context.Context, tagSlug string) (*domain.Tag, error) {
	var tag domain.Tag
	err := s.db.WithContext(ctx).Where("slug = ?", tagSlug).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get tag by slug: %w", err)
	}
	return &tag, nil
}

// SimilarPosts возвращает до limit опубликованных постов, разделяющих с post
// хотя бы один тег. Порядок: по числу тегов кандидата, затем по дате публикации.
func (s *PostStorage) SimilarPosts(ctx context.Context, post *domain.Post, limit int) ([]domain.Post, error) {
	tagIDs := post.TagIDs()
	if len(tagIDs) == 0 || limit <= 0 {
		return nil, nil
	}

	var posts []domain.Post
	err := s.db.WithContext(ctx).
		Model(&domain.Post{}).
		Select("posts.*, " + tagCountColumn).
		Scopes(published).
		Where("posts.id <> ?", post.ID).
		Where(hasAnyTagCondition, tagIDs).
		Order("tag_count DESC").
		Order("posts.publish DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		s.logger.Error("failed to find similar posts", "post_id", post.ID, "error", err)
		return nil, fmt.Errorf("similar posts: %w", err)
	}
	return posts, nil
}

func (s *PostStorage) LatestPublished(ctx context.Context, limit int) ([]domain.Post, error) {
	var posts []domain.Post
	err := s.db.WithContext(ctx).
		Scopes(published).
		Order("posts.publish DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("latest published posts: %w", err)
	}
	return posts, nil
}

// MostCommented возвращает опубликованные посты с наибольшим числом комментариев
func (s *PostStorage) MostCommented(ctx context.Context, limit int) ([]domain.Post, error) {
	var posts []domain.Post
	err := s.db.WithContext(ctx).
		Model(&domain.Post{}).
		Select("posts.*, " + commentCountColumn).
		Scopes(published).
		Order("comment_count DESC").
		Order("posts.publish DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("most commented posts: %w", err)
	}
	return posts, nil
}

func (s *PostStorage) SlugTaken(ctx context.Context, postSlug string, publish time.Time, exceptID uuid.UUID) (bool, error) {
	pub := publish.UTC()
	dayStart := time.Date(pub.Year(), pub.Month(), pub.Day(), 0, 0, 0, 0, time.UTC)

	var n int64
	err := s.db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("slug = ? AND publish >= ? AND publish < ? AND id <> ?", postSlug, dayStart, dayStart.AddDate(0, 0, 1), exceptID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return n > 0, nil
}

// SavePost создаёт или обновляет пост и заменяет его теги.
// Теги ищутся по slug и создаются при отсутствии.
func (s *PostStorage) SavePost(ctx context.Context, post *domain.Post, tagNames []string) error {
	start := time.Now()
	created := post.ID == uuid.Nil
	if created {
		post.ID = uuid.New()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if created {
			err = tx.Omit(clause.Associations).Create(post).Error
		} else {
			err = tx.Omit(clause.Associations).Save(post).Error
		}
		if err != nil {
			return err
		}

		tags, err := resolveTags(tx, tagNames)
		if err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", post.ID).Delete(&postTag{}).Error; err != nil {
			return err
		}
		if len(tags) > 0 {
			rows := make([]postTag, 0, len(tags))
			for _, t := range tags {
				rows = append(rows, postTag{PostID: post.ID, TagID: t.ID})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		post.Tags = tags
		return nil
	})
	if err != nil {
		if created {
			post.ID = uuid.Nil
		}
		if isUniqueViolation(err, postSlugConstraint) {
			return domain.ErrSlugTaken
		}
		s.logger.Error("failed to save post", "title", post.Title, "error", err)
		return fmt.Errorf("save post: %w", err)
	}

	s.logger.Info("post saved",
		"post_id", post.ID,
		"created", created,
		"tags", len(post.Tags),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func resolveTags(tx *gorm.DB, names []string) ([]domain.Tag, error) {
	seen := make(map[string]bool, len(names))
	tags := make([]domain.Tag, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		tagSlug := slug.MakeUnicode(name)
		if tagSlug == "" || seen[tagSlug] {
			continue
		}
		seen[tagSlug] = true

		var tag domain.Tag
		err := tx.Where(domain.Tag{Slug: tagSlug}).
			Attrs(domain.Tag{ID: uuid.New(), Name: name}).
			FirstOrCreate(&tag).Error
		if err != nil {
			return nil, fmt.Errorf("resolve tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
