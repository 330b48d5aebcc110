package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

// имена ограничений из миграций
const (
	usernameConstraint = "users_username_key"
	postSlugConstraint = "idx_posts_slug_publish_date"
)

// UserStorage реализует интерфейс ports.UserStorage с использованием GORM
type UserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *gorm.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// CreateUserWithProfile создаёт пользователя и пустой профиль в одной транзакции.
// Нарушение уникальности username возвращается как domain.ErrUsernameTaken.
func (s *UserStorage) CreateUserWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error {
	start := time.Now()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.UserID = user.ID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		if isUniqueViolation(err, usernameConstraint) {
			return domain.ErrUsernameTaken
		}
		s.logger.Error("failed to create user", "username", user.Username, "error", err)
		return fmt.Errorf("create user with profile: %w", err)
	}
	user.Profile = profile

	s.logger.Info("user created",
		"user_id", user.ID,
		"username", user.Username,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *UserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *UserStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUser(ctx, "username = ?", username)
}

// GetUserByEmail ищет активного пользователя по email без учёта регистра
func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, "LOWER(email) = LOWER(?) AND is_active = ?", email, true)
}

func (s *UserStorage) getUser(ctx context.Context, cond string, args ...any) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Preload("Profile").Where(cond, args...).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get user", "condition", cond, "error", err)
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (s *UserStorage) EmailInUse(ctx context.Context, email string, exceptID uuid.UUID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, exceptID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check email in use: %w", err)
	}
	return n > 0, nil
}

// UpdateUserAndProfile сохраняет имя, email, дату рождения и фото.
// Если профиля у пользователя ещё нет, он создаётся.
func (s *UserStorage) UpdateUserAndProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error {
	start := time.Now()
	now := time.Now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.User{}).Where("id = ?", user.ID).Updates(map[string]any{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"updated_at": now,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		res = tx.Model(&domain.Profile{}).Where("user_id = ?", user.ID).Updates(map[string]any{
			"date_of_birth": profile.DateOfBirth,
			"photo_key":     profile.PhotoKey,
			"updated_at":    now,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if profile.ID == uuid.Nil {
				profile.ID = uuid.New()
			}
			profile.UserID = user.ID
			return tx.Create(profile).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to update user profile", "user_id", user.ID, "error", err)
		return fmt.Errorf("update user and profile: %w", err)
	}

	s.logger.Info("user profile updated",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *UserStorage) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	})
	if res.Error != nil {
		s.logger.Error("failed to update password", "user_id", id, "error", res.Error)
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	s.logger.Info("password updated", "user_id", id)
	return nil
}

func (s *UserStorage) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("last_login", at.UTC()).Error
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// isUniqueViolation проверяет, что ошибка — нарушение уникального ограничения constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	return pqErr.Constraint == constraint
}
