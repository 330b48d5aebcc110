package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentStorage реализует интерфейс ports.CommentStorage с использованием GORM
type CommentStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewCommentStorage(db *gorm.DB, logger *slog.Logger) *CommentStorage {
	return &CommentStorage{db: db, logger: logger}
}

// SaveComment сохраняет новый комментарий
func (s *CommentStorage) SaveComment(ctx context.Context, comment *domain.Comment) error {
	start := time.Now()

	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		s.logger.Error("failed to save comment", "post_id", comment.PostID, "error", err)
		return fmt.Errorf("save comment: %w", err)
	}

	s.logger.Info("comment saved",
		"comment_id", comment.ID,
		"post_id", comment.PostID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// ActiveComments возвращает активные комментарии поста в порядке создания
func (s *CommentStorage) ActiveComments(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND active = ?", postID, true).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		s.logger.Error("failed to list comments", "post_id", postID, "error", err)
		return nil, fmt.Errorf("active comments: %w", err)
	}
	return comments, nil
}
