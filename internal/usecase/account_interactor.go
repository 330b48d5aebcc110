package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
	"github.com/GoArmGo/BlogApp/internal/slug"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	mailKindPasswordReset = "password_reset"
	resetMailSubject      = "Password reset"
)

// HashPassword хэширует пароль bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash сравнивает пароль с хэшем
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// accountUseCase implements AccountUseCase
type accountUseCase struct {
	users  ports.UserStorage
	files  ports.FileStorage
	mailer ports.Mailer
	tokens *ResetTokens
	logger *slog.Logger
	now    func() time.Time
}

// NewAccountUseCase создает новый экземпляр AccountUseCase
func NewAccountUseCase(
	users ports.UserStorage,
	files ports.FileStorage,
	mailer ports.Mailer,
	tokens *ResetTokens,
	logger *slog.Logger,
) AccountUseCase {
	return &accountUseCase{
		users:  users,
		files:  files,
		mailer: mailer,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

func (uc *accountUseCase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	inUse, err := uc.users.EmailInUse(ctx, in.Email, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("usecase: check email: %w", err)
	}
	if inUse {
		return nil, domain.ErrEmailTaken
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("usecase: hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		FirstName:    in.FirstName,
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := uc.users.CreateUserWithProfile(ctx, user, &domain.Profile{}); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("usecase: create user: %w", err)
	}

	uc.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (uc *accountUseCase) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := uc.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("usecase: get user: %w", err)
	}
	if !user.IsActive || !CheckPasswordHash(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	now := uc.now().UTC()
	if err := uc.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		uc.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLogin = &now
	}
	return user, nil
}

func (uc *accountUseCase) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.users.GetUserByID(ctx, id)
}

func (uc *accountUseCase) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*domain.User, error) {
	user, err := uc.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	inUse, err := uc.users.EmailInUse(ctx, in.Email, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase: check email: %w", err)
	}
	if inUse {
		return nil, domain.ErrEmailTaken
	}

	profile := user.Profile
	if profile == nil {
		profile = &domain.Profile{UserID: user.ID}
	}
	profile.DateOfBirth = in.DateOfBirth

	oldPhotoKey, newPhotoKey := profile.PhotoKey, ""
	if in.Photo != nil {
		if !slices.Contains(domain.StoredImageTypes, in.Photo.ContentType) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedImage, in.Photo.ContentType)
		}
		newPhotoKey = profilePhotoKey(uc.now(), in.Photo.Filename)
		if _, err := uc.files.UploadFile(ctx, newPhotoKey, in.Photo.Body, in.Photo.ContentType); err != nil {
			return nil, fmt.Errorf("usecase: upload profile photo: %w", err)
		}
		profile.PhotoKey = newPhotoKey
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Email = in.Email
	if err := uc.users.UpdateUserAndProfile(ctx, user, profile); err != nil {
		if newPhotoKey != "" {
			uc.removePhoto(ctx, newPhotoKey)
		}
		return nil, fmt.Errorf("usecase: update profile: %w", err)
	}
	if newPhotoKey != "" && oldPhotoKey != "" {
		uc.removePhoto(ctx, oldPhotoKey)
	}
	user.Profile = profile
	return user, nil
}

// removePhoto удаляет объект фото, ошибка только логируется
func (uc *accountUseCase) removePhoto(ctx context.Context, key string) {
	if err := uc.files.DeleteFile(ctx, key); err != nil {
		uc.logger.Warn("failed to remove profile photo object", "key", key, "error", err)
	}
}

// profilePhotoKey строит ключ users/YYYY/MM/DD/<имя>_<суффикс>.<расширение>
func profilePhotoKey(now time.Time, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	name := slug.Make(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	if name == "" {
		name = "photo"
	}
	return fmt.Sprintf("users/%s/%s_%s%s", now.UTC().Format("2006/01/02"), name, uuid.NewString()[:8], ext)
}

func (uc *accountUseCase) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := uc.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !CheckPasswordHash(oldPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	return uc.setPassword(ctx, user, newPassword)
}

func (uc *accountUseCase) setPassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("usecase: hash password: %w", err)
	}
	if err := uc.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("usecase: update password: %w", err)
	}
	user.PasswordHash = hash
	uc.logger.Info("password changed", "user_id", user.ID)
	return nil
}

func (uc *accountUseCase) RequestPasswordReset(ctx context.Context, email, siteURL string) error {
	user, err := uc.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Info("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("usecase: get user by email: %w", err)
	}

	token, err := uc.tokens.Make(user)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/account/reset/%s/%s/", strings.TrimRight(siteURL, "/"), user.ID, token)
	body := fmt.Sprintf(
		"You're receiving this email because you requested a password reset for your user account.\n\n"+
			"Please go to the following page and choose a new password:\n%s\n\n"+
			"Your username, in case you've forgotten: %s\n",
		link, user.Username,
	)

	err = uc.mailer.Send(ctx, payloads.MailPayload{
		To:      []string{user.Email},
		Subject: resetMailSubject,
		Body:    body,
		Kind:    mailKindPasswordReset,
	})
	if err != nil {
		return fmt.Errorf("usecase: send reset mail: %w", err)
	}
	return nil
}

func (uc *accountUseCase) CheckResetLink(ctx context.Context, uid, token string) (*domain.User, error) {
	id, err := uuid.Parse(uid)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	user, err := uc.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if err := uc.tokens.Check(user, token); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *accountUseCase) ResetPassword(ctx context.Context, uid, token, newPassword string) error {
	user, err := uc.CheckResetLink(ctx, uid, token)
	if err != nil {
		return err
	}
	return uc.setPassword(ctx, user, newPassword)
}
