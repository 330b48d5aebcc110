package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccountUseCase(t *testing.T) (*accountUseCase, *fakeUsers, *fakeMailer, *fakeFiles) {
	t.Helper()
	users := newFakeUsers()
	mailer := &fakeMailer{}
	files := newFakeFiles()
	uc := NewAccountUseCase(users, files, mailer, NewResetTokens("test-secret", 24*time.Hour), logger.Discard())
	return uc.(*accountUseCase), users, mailer, files
}

func registerAnna(t *testing.T, uc AccountUseCase) *domain.User {
	t.Helper()
	user, err := uc.Register(context.Background(), RegisterInput{
		Username:  "anna",
		FirstName: "Anna",
		Email:     "anna@example.com",
		Password:  "s3cret-pass",
	})
	require.NoError(t, err)
	return user
}

func TestAccount_Register(t *testing.T) {
	uc, users, _, _ := newTestAccountUseCase(t)
	ctx := context.Background()

	user := registerAnna(t, uc)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.NotNil(t, user.Profile, "профиль создаётся вместе с пользователем")

	stored, err := users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-pass", stored.PasswordHash))

	t.Run("email taken case-insensitively", func(t *testing.T) {
		_, err := uc.Register(ctx, RegisterInput{Username: "bob", Email: "ANNA@example.com", Password: "another-pass"})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	t.Run("username taken", func(t *testing.T) {
		_, err := uc.Register(ctx, RegisterInput{Username: "anna", Email: "other@example.com", Password: "another-pass"})
		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	})
}

func TestAccount_Authenticate(t *testing.T) {
	uc, users, _, _ := newTestAccountUseCase(t)
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	user := registerAnna(t, uc)

	got, err := uc.Authenticate(ctx, "anna", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	require.NotNil(t, got.LastLogin)
	assert.Equal(t, fixed, *got.LastLogin)

	_, err = uc.Authenticate(ctx, "anna", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = uc.Authenticate(ctx, "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	users.users[user.ID].IsActive = false
	_, err = uc.Authenticate(ctx, "anna", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAccount_UpdateProfile(t *testing.T) {
	uc, _, _, files := newTestAccountUseCase(t)
	ctx := context.Background()
	uc.now = func() time.Time { return time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC) }

	user := registerAnna(t, uc)
	other, err := uc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "bob-password"})
	require.NoError(t, err)

	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	updated, err := uc.UpdateProfile(ctx, user.ID, ProfileInput{
		FirstName:   "Anna",
		LastName:    "Karenina",
		Email:       "anna@example.com",
		DateOfBirth: &dob,
		Photo: &Upload{
			Filename:    "My Portrait.PNG",
			ContentType: "image/png",
			Body:        strings.NewReader("png-bytes"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Karenina", updated.LastName)
	require.NotNil(t, updated.Profile)
	assert.Equal(t, &dob, updated.Profile.DateOfBirth)
	assert.Regexp(t, `^users/2024/02/03/my-portrait_[0-9a-f]{8}\.png$`, updated.Profile.PhotoKey)
	assert.Equal(t, []byte("png-bytes"), files.objects[updated.Profile.PhotoKey])

	_, err = uc.UpdateProfile(ctx, other.ID, ProfileInput{FirstName: "Bob", Email: "anna@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAccount_UpdateProfile_PhotoObjects(t *testing.T) {
	uc, users, _, files := newTestAccountUseCase(t)
	ctx := context.Background()
	user := registerAnna(t, uc)

	photo := func(name string) *Upload {
		return &Upload{Filename: name, ContentType: "image/png", Body: strings.NewReader(name)}
	}
	profileIn := func(p *Upload) ProfileInput {
		return ProfileInput{FirstName: "Anna", Email: "anna@example.com", Photo: p}
	}

	first, err := uc.UpdateProfile(ctx, user.ID, profileIn(photo("first.png")))
	require.NoError(t, err)
	firstKey := first.Profile.PhotoKey
	require.Contains(t, files.objects, firstKey)

	t.Run("replacing the photo removes the previous object", func(t *testing.T) {
		second, err := uc.UpdateProfile(ctx, user.ID, profileIn(photo("second.png")))
		require.NoError(t, err)
		assert.NotContains(t, files.objects, firstKey)
		assert.Contains(t, files.objects, second.Profile.PhotoKey)
		firstKey = second.Profile.PhotoKey
	})

	t.Run("failed save removes the uploaded object and keeps the old one", func(t *testing.T) {
		users.updateErr = errors.New("db is down")
		defer func() { users.updateErr = nil }()

		_, err := uc.UpdateProfile(ctx, user.ID, profileIn(photo("third.png")))
		require.Error(t, err)
		assert.Len(t, files.objects, 1)
		assert.Contains(t, files.objects, firstKey)
	})

	t.Run("content other than jpeg or png is not stored", func(t *testing.T) {
		_, err := uc.UpdateProfile(ctx, user.ID, profileIn(&Upload{
			Filename:    "avatar.png",
			ContentType: "image/svg+xml",
			Body:        strings.NewReader("<svg><script>alert(1)</script></svg>"),
		}))
		assert.ErrorIs(t, err, domain.ErrUnsupportedImage)
		assert.Len(t, files.objects, 1)
	})
}

func TestAccount_ChangePassword(t *testing.T) {
	uc, _, _, _ := newTestAccountUseCase(t)
	ctx := context.Background()
	user := registerAnna(t, uc)

	err := uc.ChangePassword(ctx, user.ID, "wrong", "new-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, uc.ChangePassword(ctx, user.ID, "s3cret-pass", "new-password"))
	_, err = uc.Authenticate(ctx, "anna", "new-password")
	assert.NoError(t, err)
}

func TestAccount_PasswordReset(t *testing.T) {
	uc, _, mailer, _ := newTestAccountUseCase(t)
	ctx := context.Background()
	user := registerAnna(t, uc)

	require.NoError(t, uc.RequestPasswordReset(ctx, "Anna@Example.com", "http://blog.test/"))
	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, []string{"anna@example.com"}, msg.To)
	assert.Equal(t, "Password reset", msg.Subject)
	assert.Equal(t, "password_reset", msg.Kind)

	prefix := "http://blog.test/account/reset/" + user.ID.String() + "/"
	start := strings.Index(msg.Body, prefix)
	require.GreaterOrEqual(t, start, 0, msg.Body)
	rest := msg.Body[start+len(prefix):]
	token := rest[:strings.Index(rest, "/")]

	checked, err := uc.CheckResetLink(ctx, user.ID.String(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, checked.ID)

	_, err = uc.CheckResetLink(ctx, "not-a-uuid", token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	_, err = uc.CheckResetLink(ctx, uuid.NewString(), token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	require.NoError(t, uc.ResetPassword(ctx, user.ID.String(), token, "brand-new-pass"))
	_, err = uc.Authenticate(ctx, "anna", "brand-new-pass")
	require.NoError(t, err)

	// после смены пароля та же ссылка больше не работает
	err = uc.ResetPassword(ctx, user.ID.String(), token, "third-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestAccount_PasswordResetUnknownEmail(t *testing.T) {
	uc, _, mailer, _ := newTestAccountUseCase(t)
	registerAnna(t, uc)

	require.NoError(t, uc.RequestPasswordReset(context.Background(), "ghost@example.com", "http://blog.test"))
	assert.Empty(t, mailer.sent)
}

func TestResetTokens_Expiry(t *testing.T) {
	tokens := NewResetTokens("secret", time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }

	user := &domain.User{ID: uuid.New(), PasswordHash: "hash"}
	raw, err := tokens.Make(user)
	require.NoError(t, err)
	require.NoError(t, tokens.Check(user, raw))

	other := &domain.User{ID: uuid.New(), PasswordHash: "hash"}
	assert.ErrorIs(t, tokens.Check(other, raw), domain.ErrInvalidToken)

	forged := NewResetTokens("another-secret", time.Hour)
	assert.ErrorIs(t, forged.Check(user, raw), domain.ErrInvalidToken)

	now = now.Add(2 * time.Hour)
	assert.ErrorIs(t, tokens.Check(user, raw), domain.ErrInvalidToken)
}
