package usecase

import (
	"context"
	"io"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/google/uuid"
)

// RegisterInput — проверенные данные формы регистрации
type RegisterInput struct {
	Username  string
	FirstName string
	Email     string
	Password  string
}

// Upload — файл, загруженный пользователем через multipart-форму.
// ContentType определяется по содержимому файла, а не по заголовку клиента.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ProfileInput — новые значения полей пользователя и профиля.
// Photo == nil оставляет текущую фотографию.
type ProfileInput struct {
	FirstName   string
	LastName    string
	Email       string
	DateOfBirth *time.Time
	Photo       *Upload
}

// AccountUseCase определяет бизнес-логику учётных записей:
// регистрация, вход, профиль, смена и сброс пароля.
type AccountUseCase interface {
	// Register создаёт пользователя с пустым профилем.
	// Занятый username — domain.ErrUsernameTaken, занятый email — domain.ErrEmailTaken.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Authenticate проверяет пару логин/пароль и отмечает время входа.
	// Неверные данные и неактивный пользователь — domain.ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// UpdateProfile сохраняет пользователя и профиль вместе; фото загружается в хранилище.
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*domain.User, error)

	// ChangePassword меняет пароль после проверки старого
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error

	// RequestPasswordReset отправляет письмо со ссылкой сброса, если email принадлежит
	// активному пользователю. Для неизвестного email ничего не делает и не сообщает об этом.
	RequestPasswordReset(ctx context.Context, email, siteURL string) error

	// CheckResetLink проверяет пару uid/token из ссылки сброса
	CheckResetLink(ctx context.Context, uid, token string) (*domain.User, error)

	// ResetPassword устанавливает новый пароль по действительной ссылке сброса
	ResetPassword(ctx context.Context, uid, token, newPassword string) error
}
